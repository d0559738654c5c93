package v1

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
)

// userAccount handles GET /v1/users/{username}/account.
func (s *Server) userAccount(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	id, err := s.svc.AccountFor(r.Context(), username)
	if err != nil {
		s.writeServiceErr(w, r, err, "could not resolve user")
		return
	}
	toJSON(w, http.StatusOK, userAccountResponse{Username: username, AccountID: id})
}
