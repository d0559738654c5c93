// Package v1 wires the HTTP surface of the bank ledger.
// It keeps handlers thin, delegating business rules to the account service.
package v1

import (
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/tinoosan/bank/internal/service/account"
)

// Server wires handlers and middleware using Chi.
type Server struct {
	svc  account.Service
	repo account.Repo
	log  *slog.Logger
	rt   *chi.Mux
}

// New constructs the HTTP server with routes and middleware. Balances and
// amounts are held in currency.
func New(repo account.Repo, writer account.Writer, currency string, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)

	s := &Server{
		svc:  account.New(repo, writer, currency, logger),
		repo: repo,
		rt:   r,
		log:  logger,
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints and attaches any per-route middleware.
func (s *Server) routes() {
	// Accounts (v1)
	s.rt.With(s.validateOpenAccount()).Post("/v1/accounts", s.openAccount)
	s.rt.Get("/v1/accounts", s.listAccounts)
	s.rt.With(accountIDParam).Get("/v1/accounts/{id}/balance", s.checkBalance)
	s.rt.With(accountIDParam, s.validateMovement()).Post("/v1/accounts/{id}/deposit", s.deposit)
	s.rt.With(accountIDParam, s.validateMovement()).Post("/v1/accounts/{id}/withdraw", s.withdraw)
	// Users (v1)
	s.rt.Get("/v1/users/{username}/account", s.userAccount)
	// Health + metrics (unversioned)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Handle("/metrics", metricsHandler())
}
