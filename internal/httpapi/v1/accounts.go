// Account handlers: open, list, balance, deposit, withdraw.
package v1

import (
	"net/http"

	"github.com/tinoosan/bank/internal/ledger"
)

func (s *Server) openAccount(w http.ResponseWriter, r *http.Request) {
	req, ok := r.Context().Value(ctxKeyOpenAccount).(openAccountInput)
	if !ok {
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: "validated request missing"})
		return
	}
	acc, err := s.svc.OpenAccount(r.Context(), req.Username, req.Age, req.AccountID)
	if err != nil {
		s.writeServiceErr(w, r, err, "could not open account")
		return
	}
	toJSON(w, http.StatusCreated, toAccountResponse(acc))
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	accs, err := s.svc.List(r.Context())
	if err != nil {
		s.writeServiceErr(w, r, err, "could not fetch accounts")
		return
	}
	out := make([]accountResponse, 0, len(accs))
	for _, a := range accs {
		out = append(out, toAccountResponse(a))
	}
	toJSON(w, http.StatusOK, out)
}

// checkBalance handles GET /v1/accounts/{id}/balance.
func (s *Server) checkBalance(w http.ResponseWriter, r *http.Request) {
	id, _ := r.Context().Value(ctxKeyAccountID).(ledger.AccountID)
	bal, err := s.svc.CheckBalance(r.Context(), id)
	if err != nil {
		s.writeServiceErr(w, r, err, "could not fetch balance")
		return
	}
	toJSON(w, http.StatusOK, toBalanceResponse(id, bal))
}

func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	m, ok := r.Context().Value(ctxKeyMovement).(movement)
	if !ok {
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: "validated request missing"})
		return
	}
	acc, err := s.svc.Deposit(r.Context(), m.AccountID, m.Amount)
	if err != nil {
		s.writeServiceErr(w, r, err, "could not deposit")
		return
	}
	toJSON(w, http.StatusOK, toAccountResponse(acc))
}

func (s *Server) withdraw(w http.ResponseWriter, r *http.Request) {
	m, ok := r.Context().Value(ctxKeyMovement).(movement)
	if !ok {
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: "validated request missing"})
		return
	}
	acc, err := s.svc.Withdraw(r.Context(), m.AccountID, m.Amount)
	if err != nil {
		s.writeServiceErr(w, r, err, "could not withdraw")
		return
	}
	toJSON(w, http.StatusOK, toAccountResponse(acc))
}
