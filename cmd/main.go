package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/finflow/finflow/internal/errs"
	"github.com/finflow/finflow/internal/httpapi"
	"github.com/finflow/finflow/internal/kv"
	"github.com/finflow/finflow/internal/repo"
	ledgersvc "github.com/finflow/finflow/internal/service/ledger"
	"github.com/finflow/finflow/internal/service/query"
	"github.com/finflow/finflow/internal/service/session"
	"github.com/finflow/finflow/internal/storage/memory"
	pgstore "github.com/finflow/finflow/internal/storage/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Logger (slog to stdout). Level via LOG_LEVEL; format via LOG_FORMAT (json|text, default json)
	logger := buildLoggerFromEnv()
	slog.SetDefault(logger)

	var store kv.Store
	var ready httpapi.Readier
	var closeFn func()

	if dsn := strings.TrimSpace(os.Getenv("DATABASE_URL")); dsn != "" {
		// Use Postgres store when DATABASE_URL is provided
		pg, err := pgstore.Open(ctx, dsn)
		if err != nil {
			logger.Error("failed to connect to postgres", "err", err)
			os.Exit(1)
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Error("failed to ensure schema", "err", err)
			os.Exit(1)
		}
		store = pg
		ready = pg
		closeFn = func() { pg.Close() }
		logger.Info("storage backend: postgres")
	} else {
		// Default to in-memory store
		store = memory.New()
		logger.Info("storage backend: memory")
	}

	accounts := repo.New(store)
	delay := processDelayFromEnv()
	sessions := session.New(accounts, session.WithDelay(delay))
	engine := ledgersvc.New(accounts, ledgersvc.WithDelay(delay))
	queries := query.New(accounts)

	// Optional dev seed for compose/local
	if dev := strings.ToLower(strings.TrimSpace(os.Getenv("DEV_SEED"))); dev == "1" || dev == "true" || dev == "yes" {
		seedDemoAccounts(ctx, logger, accounts)
	}

	// Restore a durable session from a previous run, if any
	if err := sessions.Restore(ctx); err != nil {
		logger.Error("session restore failed", "err", err)
	} else if id, ok := sessions.AccountID(); ok {
		logger.Info("session restored", "account_id", id.String())
	}

	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		secret = "finflow-dev-secret"
		logger.Warn("JWT_SECRET not set, using dev default")
	}

	addr := strings.TrimSpace(os.Getenv("ADDR"))
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           httpapi.New(sessions, engine, queries, accounts, ready, []byte(secret), logger).Handler(),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("finflow service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}
	if closeFn != nil {
		closeFn()
	}
}

// seedDemoAccounts registers the demo users from the original onboarding set.
// Re-running against an existing directory is a no-op per user.
func seedDemoAccounts(ctx context.Context, l *slog.Logger, accounts *repo.Repo) {
	demo := []struct{ username, secret, email string }{
		{"user1", "password1", "user1@example.com"},
		{"user2", "password2", "user2@example.com"},
		{"demo", "demo", "demo@example.com"},
	}
	for _, d := range demo {
		acc, err := accounts.Create(ctx, d.username, d.secret, d.email)
		if err != nil {
			if errors.Is(err, errs.ErrDuplicateUsername) {
				continue
			}
			l.Error("dev seed failed", "username", d.username, "err", err)
			continue
		}
		l.Info("DEV seed", "username", acc.Username, "account_id", acc.ID.String())
	}
}

// processDelayFromEnv reads the artificial processing latency applied to
// login/register and ledger mutations. Defaults to zero (disabled).
func processDelayFromEnv() time.Duration {
	raw := strings.TrimSpace(os.Getenv("PROCESS_DELAY_MS"))
	if raw == "" {
		return 0
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms < 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

// parseLogLevel maps env values to slog.Leveler
func parseLogLevel(s string) slog.Leveler {
	switch s {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "WARN", "WARNING", "warn", "warning":
		return slog.LevelWarn
	case "ERROR", "ERR", "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLoggerFromEnv() *slog.Logger {
	level := parseLogLevel(os.Getenv("LOG_LEVEL"))
	format := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT")))
	if format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	// default to JSON
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
