// Package httpapi wires the HTTP surface of the bank service.
// It keeps handlers thin, delegating business rules to the service layer,
// and returns plain data shaped by the error taxonomy in internal/errs.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/finflow/finflow/internal/bank"
	ledgersvc "github.com/finflow/finflow/internal/service/ledger"
	"github.com/finflow/finflow/internal/service/query"
	"github.com/finflow/finflow/internal/service/session"
)

// Readier is implemented by storage backends that can report readiness.
type Readier interface {
	Ready(ctx context.Context) error
}

// Accounts resolves a bearer token's account id to its current state.
// Handlers that act on behalf of a token use this, never the process-wide
// session manager, so one caller's state is invisible to another's token.
type Accounts interface {
	Load(ctx context.Context, id uuid.UUID) (bank.Account, error)
}

// Server wires handlers and middleware using Chi.
type Server struct {
	sessions session.Service
	ledger   ledgersvc.Service
	query    query.Service
	accounts Accounts
	ready    Readier
	tokens   tokenIssuer
	log      *slog.Logger
	rt       *chi.Mux
}

// New constructs the HTTP server with routes and middleware. ready may be
// nil for backends without a health probe. jwtSecret signs bearer session
// tokens minted on login.
func New(sessions session.Service, ledger ledgersvc.Service, q query.Service, accounts Accounts, ready Readier, jwtSecret []byte, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)

	s := &Server{
		sessions: sessions,
		ledger:   ledger,
		query:    q,
		accounts: accounts,
		ready:    ready,
		tokens:   tokenIssuer{secret: jwtSecret, ttl: 24 * time.Hour},
		log:      logger,
		rt:       r,
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints and attaches any per-route
// middleware.
func (s *Server) routes() {
	// Authentication (v1)
	s.rt.Post("/v1/register", s.postRegister)
	s.rt.Post("/v1/login", s.postLogin)
	// Account and ledger (v1, bearer token required)
	s.rt.With(s.requireAuth).Post("/v1/logout", s.postLogout)
	s.rt.With(s.requireAuth).Get("/v1/me", s.getMe)
	s.rt.With(s.requireAuth).Post("/v1/transactions", s.postTransaction)
	s.rt.With(s.requireAuth).Get("/v1/transactions", s.listTransactions)
	s.rt.With(s.requireAuth).Get("/v1/statements", s.getStatement)
	s.rt.With(s.requireAuth).Post("/v1/investments", s.postInvestment)
	// Fund catalog (v1)
	s.rt.Get("/v1/funds", s.listFunds)
	// Health and metrics (unversioned)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Method(http.MethodGet, "/metrics", metricsHandler())
}
