package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/finflow/finflow/internal/errs"
	ledgersvc "github.com/finflow/finflow/internal/service/ledger"
	"github.com/finflow/finflow/internal/service/query"
)

// errorResponse is the standard error payload for the API.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) { writeErr(w, http.StatusBadRequest, msg, "") }
func unauthorized(w http.ResponseWriter, msg string) {
	writeErr(w, http.StatusUnauthorized, msg, "invalid_credentials")
}

// writeDomainErr maps the sentinel taxonomy onto HTTP statuses. Every error
// is reported synchronously; only storage_unavailable is worth retrying.
func writeDomainErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrInvalidCredentials):
		writeErr(w, http.StatusUnauthorized, err.Error(), "invalid_credentials")
	case errors.Is(err, errs.ErrDuplicateUsername):
		writeErr(w, http.StatusConflict, err.Error(), "duplicate_username")
	case errors.Is(err, errs.ErrNotFound):
		writeErr(w, http.StatusNotFound, "not_found", "not_found")
	case errors.Is(err, errs.ErrInvalidAmount):
		writeErr(w, http.StatusUnprocessableEntity, err.Error(), "invalid_amount")
	case errors.Is(err, errs.ErrInsufficientFunds):
		writeErr(w, http.StatusUnprocessableEntity, err.Error(), "insufficient_funds")
	case errors.Is(err, errs.ErrMissingCounterparty):
		writeErr(w, http.StatusUnprocessableEntity, err.Error(), "missing_counterparty")
	case errors.Is(err, errs.ErrUnknownFund):
		writeErr(w, http.StatusUnprocessableEntity, err.Error(), "unknown_fund")
	case errors.Is(err, errs.ErrBelowMinimum):
		writeErr(w, http.StatusUnprocessableEntity, err.Error(), "below_minimum_investment")
	case errors.Is(err, ledgersvc.ErrUnknownKind), errors.Is(err, query.ErrBadKind):
		writeErr(w, http.StatusBadRequest, err.Error(), "unknown_kind")
	case errors.Is(err, errs.ErrStorageUnavailable):
		writeErr(w, http.StatusServiceUnavailable, "storage unavailable", "storage_unavailable")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// client went away mid-wait; nothing was committed
		writeErr(w, 499, "request cancelled", "cancelled")
	default:
		writeErr(w, http.StatusInternalServerError, "internal error", "")
	}
}
