package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/govalues/money"
	"github.com/tinoosan/bank/internal/errs"
	httpapi "github.com/tinoosan/bank/internal/httpapi/v1"
	"github.com/tinoosan/bank/internal/ledger"
	"github.com/tinoosan/bank/internal/service/account"
	"github.com/tinoosan/bank/internal/storage/memory"
	pgstore "github.com/tinoosan/bank/internal/storage/postgres"
)

// config is read from the environment once at startup.
type config struct {
	Addr        string
	DatabaseURL string
	Currency    string
	SeedFile    string
	DevSeed     bool
}

func loadConfig() (config, error) {
	cfg := config{
		Addr:        envOr("LISTEN_ADDR", ":8080"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		Currency:    strings.ToUpper(envOr("LEDGER_CURRENCY", "GBP")),
		SeedFile:    strings.TrimSpace(os.Getenv("SEED_FILE")),
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEV_SEED"))) {
	case "1", "true", "yes":
		cfg.DevSeed = true
	}
	if _, err := money.ParseCurr(cfg.Currency); err != nil {
		return config{}, fmt.Errorf("LEDGER_CURRENCY: %w", err)
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// ledgerStore is what a backend has to offer to serve the API.
type ledgerStore interface {
	account.Repo
	account.Writer
	account.Seeder
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Logger (slog to stdout). Level via LOG_LEVEL; format via LOG_FORMAT (json|text, default json)
	logger := buildLoggerFromEnv()
	slog.SetDefault(logger)

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	var store ledgerStore
	var closeFn func()
	if cfg.DatabaseURL != "" {
		pg, err := pgstore.Open(ctx, cfg.DatabaseURL, cfg.Currency)
		if err != nil {
			logger.Error("failed to connect to postgres", "err", err)
			os.Exit(1)
		}
		closeFn = pg.Close
		store = pg
		logger.Info("storage backend: postgres")
	} else {
		store = memory.New(cfg.Currency)
		logger.Info("storage backend: memory")
	}

	seed, source, err := seedFromConfig(cfg)
	if err != nil {
		logger.Error("failed to load seed", "err", err)
		os.Exit(1)
	}
	if source != "" {
		if err := store.Seed(ctx, seed); err != nil {
			// a persistent database keeps earlier seeds; carry on with what it has
			if cfg.DatabaseURL != "" && errors.Is(err, errs.ErrDuplicateAccount) {
				logger.Warn("seed skipped: accounts already present", "source", source, "err", err)
			} else {
				logger.Error("seed failed", "source", source, "err", err)
				os.Exit(1)
			}
		} else {
			logSeed(logger, source, seed)
		}
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.New(store, store, cfg.Currency, logger).Handler(),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("bank ledger listening", "addr", srv.Addr, "currency", cfg.Currency)
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

// seedFromConfig picks the seed file when set, else the dev seed when enabled.
// source is empty when nothing should be seeded.
func seedFromConfig(cfg config) (ledger.Seed, string, error) {
	switch {
	case cfg.SeedFile != "":
		s, err := ledger.LoadSeedFile(cfg.SeedFile)
		return s, cfg.SeedFile, err
	case cfg.DevSeed:
		return ledger.DevSeed(), "dev", nil
	}
	return ledger.Seed{}, "", nil
}

// logSeed emits the seeded account ids and usernames.
func logSeed(l *slog.Logger, source string, s ledger.Seed) {
	ids := make([]string, 0, len(s.Accounts))
	for _, a := range s.Accounts {
		ids = append(ids, a.ID.String())
	}
	users := make([]string, 0, len(s.Usernames))
	for name := range s.Usernames {
		users = append(users, name)
	}
	l.Info("seed loaded", "source", source, "account_ids", ids, "usernames", users)
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
