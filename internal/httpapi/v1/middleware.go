package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	chi "github.com/go-chi/chi/v5"
	"github.com/govalues/money"
	"github.com/tinoosan/bank/internal/ledger"
)

type ctxKey string

const ctxKeyAccountID ctxKey = "accountID"
const ctxKeyOpenAccount ctxKey = "validatedOpenAccount"
const ctxKeyMovement ctxKey = "validatedMovement"

// accountIDParam parses the {id} path parameter. Only the syntax is checked
// here; an unknown or short number is the service's call.
func accountIDParam(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := ledger.ParseAccountID(chi.URLParam(r, "id"))
		if err != nil {
			writeErr(w, http.StatusBadRequest, err.Error(), "invalid_account_id")
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyAccountID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validateOpenAccount decodes POST /v1/accounts and stores the input in the
// context. Field rules are left to the service, which checks age first.
func (s *Server) validateOpenAccount() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requireJSON(w, r) {
				return
			}
			var req openAccountRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				badRequest(w, "invalid JSON: "+err.Error())
				return
			}
			// An unparseable number yields the zero id, which the service
			// rejects after the age check.
			id, _ := ledger.ParseAccountID(req.AccountID.String())
			in := openAccountInput{Username: req.Username, Age: req.Age, AccountID: id}
			ctx := context.WithValue(r.Context(), ctxKeyOpenAccount, in)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validateMovement decodes a deposit/withdraw body into a money amount in the
// ledger currency. Sign and precision are left to the service.
func (s *Server) validateMovement() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requireJSON(w, r) {
				return
			}
			id, ok := r.Context().Value(ctxKeyAccountID).(ledger.AccountID)
			if !ok {
				toJSON(w, http.StatusInternalServerError, errorResponse{Error: "account id missing"})
				return
			}
			var req movementRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				badRequest(w, "invalid JSON: "+err.Error())
				return
			}
			var amt money.Amount
			var err error
			switch {
			case req.AmountMinor != nil && req.Amount != nil:
				badRequest(w, "set only one of amount_minor or amount")
				return
			case req.AmountMinor != nil:
				amt, err = money.NewAmountFromMinorUnits(s.svc.Currency(), *req.AmountMinor)
			case req.Amount != nil:
				amt, err = money.ParseAmount(s.svc.Currency(), strings.TrimSpace(*req.Amount))
			default:
				badRequest(w, "amount_minor or amount is required")
				return
			}
			if err != nil {
				badRequest(w, "invalid amount: "+err.Error())
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyMovement, movement{AccountID: id, Amount: amt})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
