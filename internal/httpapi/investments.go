// Investment handlers: fund catalog listing and purchases. Purchases deduct
// the balance without appending a ledger transaction; the response carries
// the updated account so callers can show the new balance.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/finflow/finflow/internal/funds"
)

func (s *Server) listFunds(w http.ResponseWriter, r *http.Request) {
	toJSON(w, http.StatusOK, funds.All())
}

func (s *Server) postInvestment(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDFrom(r.Context())
	if !ok {
		unauthorized(w, "missing bearer token")
		return
	}
	var req postInvestmentRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	acc, err := s.ledger.Invest(r.Context(), accountID, req.AmountMinor, req.FundID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toAccountResponse(acc))
}
