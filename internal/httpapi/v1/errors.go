package v1

import (
	"errors"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/tinoosan/bank/internal/errs"
)

// errorResponse is the standard error payload for the API.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeErr(w, http.StatusBadRequest, msg, "bad_request")
}

// statusFor maps a ledger error kind to its HTTP status and code.
// ok is false for errors that are not one of the known kinds.
func statusFor(err error) (status int, code string, ok bool) {
	switch {
	case errors.Is(err, errs.ErrUnknownUser):
		return http.StatusNotFound, "unknown_user", true
	case errors.Is(err, errs.ErrAccountNotFound):
		return http.StatusNotFound, "account_not_found", true
	case errors.Is(err, errs.ErrInvalidAccountID):
		return http.StatusBadRequest, "invalid_account_id", true
	case errors.Is(err, errs.ErrDuplicateAccount):
		return http.StatusConflict, "duplicate_account", true
	case errors.Is(err, errs.ErrUnderage):
		return http.StatusUnprocessableEntity, "underage", true
	case errors.Is(err, errs.ErrInvalidAmount):
		return http.StatusUnprocessableEntity, "invalid_amount", true
	case errors.Is(err, errs.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, "insufficient_funds", true
	}
	return http.StatusInternalServerError, "internal", false
}

// writeServiceErr writes the mapped error; unknown errors are logged and hidden.
func (s *Server) writeServiceErr(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status, code, ok := statusFor(err)
	if !ok {
		s.log.Error(fallback, "req_id", chimw.GetReqID(r.Context()), "err", err)
		writeErr(w, status, fallback, code)
		return
	}
	writeErr(w, status, err.Error(), code)
}
