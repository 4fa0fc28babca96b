package infra

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"stock_go/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

const validConfig = `
app:
  name: "Stock Go"
api:
  yahoo:
    key: "file-key"
trading:
  initial_balance: "50000.00"
`

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("API_KEY", "")
	t.Setenv("PORT", "")
	path := writeConfig(t, validConfig)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.API.Yahoo.Region != "US" {
		t.Errorf("Region = %q, want US", cfg.API.Yahoo.Region)
	}
	if cfg.API.Yahoo.TimeoutSec != DefaultQuoteTimeoutSec {
		t.Errorf("TimeoutSec = %d, want %d", cfg.API.Yahoo.TimeoutSec, DefaultQuoteTimeoutSec)
	}
	if cfg.SeedBalance().String() != "50000" {
		t.Errorf("SeedBalance = %s, want 50000", cfg.SeedBalance())
	}
}

func TestLoadConfig_MissingAPIKeyFailsFast(t *testing.T) {
	t.Setenv("API_KEY", "")
	path := writeConfig(t, `
app:
  name: "Stock Go"
`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected error for missing API key")
	}

	var ce *domain.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *domain.ConfigError", err)
	}
	if ce.Field != "api.yahoo.key" {
		t.Errorf("Field = %q, want api.yahoo.key", ce.Field)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("API_KEY", "env-key")
	t.Setenv("PORT", "9090")

	path := writeConfig(t, validConfig)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.API.Yahoo.Key != "env-key" {
		t.Errorf("Key = %q, want env-key (env must win over file)", cfg.API.Yahoo.Key)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.Server.Addr)
	}
}

func TestLoadConfig_InvalidInitialBalance(t *testing.T) {
	t.Setenv("API_KEY", "")
	path := writeConfig(t, `
api:
  yahoo:
    key: "k"
trading:
  initial_balance: "a lot"
`)

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for unparseable initial balance")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfig_DefaultInitialBalance(t *testing.T) {
	t.Setenv("API_KEY", "")
	path := writeConfig(t, `
api:
  yahoo:
    key: "k"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.SeedBalance().String() != "50000" {
		t.Errorf("SeedBalance = %s, want default 50000", cfg.SeedBalance())
	}
}
