// Transaction handlers: apply a ledger operation, list history with filter
// and pagination, and produce monthly statements.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/finflow/finflow/internal/bank"
	"github.com/finflow/finflow/internal/service/query"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func (s *Server) postTransaction(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDFrom(r.Context())
	if !ok {
		unauthorized(w, "missing bearer token")
		return
	}
	var req postTransactionRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	tx, err := s.ledger.Apply(r.Context(), accountID, req.Kind, req.AmountMinor, req.Description, req.Counterparty)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDFrom(r.Context())
	if !ok {
		unauthorized(w, "missing bearer token")
		return
	}
	q := r.URL.Query()
	kind := bank.TransactionKind(q.Get("kind"))
	page, pageSize, err := parsePaging(q.Get("page"), q.Get("page_size"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	txs, err := s.query.List(r.Context(), accountID, kind)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	pageTxs := query.Paginate(txs, pageSize, page)
	items := make([]transactionResponse, 0, len(pageTxs))
	for _, t := range pageTxs {
		items = append(items, toTransactionResponse(t))
	}
	toJSON(w, http.StatusOK, listTransactionsResponse{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: len(txs),
	})
}

// getStatement handles GET /v1/statements?month=2025-04&kind=...
func (s *Server) getStatement(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDFrom(r.Context())
	if !ok {
		unauthorized(w, "missing bearer token")
		return
	}
	q := r.URL.Query()
	raw := q.Get("month")
	if raw == "" {
		badRequest(w, "month is required (YYYY-MM)")
		return
	}
	month, err := time.Parse("2006-01", raw)
	if err != nil {
		badRequest(w, "invalid month, expected YYYY-MM")
		return
	}
	kind := bank.TransactionKind(q.Get("kind"))
	txs, err := s.query.Statement(r.Context(), accountID, month.Year(), month.Month(), kind)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	items := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		items = append(items, toTransactionResponse(t))
	}
	toJSON(w, http.StatusOK, items)
}

func parsePaging(pageRaw, sizeRaw string) (page, pageSize int, err error) {
	page, pageSize = 1, defaultPageSize
	if pageRaw != "" {
		page, err = strconv.Atoi(pageRaw)
		if err != nil || page < 1 {
			return 0, 0, errBadPaging
		}
	}
	if sizeRaw != "" {
		pageSize, err = strconv.Atoi(sizeRaw)
		if err != nil || pageSize < 1 || pageSize > maxPageSize {
			return 0, 0, errBadPaging
		}
	}
	return page, pageSize, nil
}

var errBadPaging = errors.New("page and page_size must be positive integers")
