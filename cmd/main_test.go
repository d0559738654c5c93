package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"LISTEN_ADDR", "DATABASE_URL", "LEDGER_CURRENCY", "SEED_FILE", "DEV_SEED"} {
		t.Setenv(k, "")
	}
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.Currency != "GBP" || cfg.DevSeed || cfg.DatabaseURL != "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("LEDGER_CURRENCY", "usd")
	t.Setenv("DEV_SEED", "yes")
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.Currency != "USD" || !cfg.DevSeed {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	t.Setenv("LEDGER_CURRENCY", "ZZZ")
	if _, err := loadConfig(); err == nil {
		t.Fatalf("expected error for unknown currency")
	}
}

func TestSeedFromConfig(t *testing.T) {
	if _, source, _ := seedFromConfig(config{}); source != "" {
		t.Fatalf("expected no seed, got %q", source)
	}
	s, source, err := seedFromConfig(config{DevSeed: true})
	if err != nil || source != "dev" || len(s.Accounts) != 2 {
		t.Fatalf("dev seed: %q %+v %v", source, s, err)
	}

	path := filepath.Join(t.TempDir(), "seed.json")
	doc := `{"accounts":[{"id":1234567890,"balance_minor":700}],"usernames":{"user1":1234567890}}`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, source, err = seedFromConfig(config{SeedFile: path, DevSeed: true})
	if err != nil || source != path {
		t.Fatalf("file seed: %q %v", source, err)
	}
	if s.Usernames["user1"] != 1234567890 || s.Accounts[0].BalanceMinor != 700 {
		t.Fatalf("unexpected seed: %+v", s)
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{"debug": slog.LevelDebug, "WARN": slog.LevelWarn, "err": slog.LevelError, "": slog.LevelInfo}
	for in, want := range cases {
		if got := parseLogLevel(in).Level(); got != want {
			t.Fatalf("parseLogLevel(%q)=%v want %v", in, got, want)
		}
	}
}
