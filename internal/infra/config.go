package infra

import (
	"errors"
	"fmt"
	"os"

	"stock_go/internal/domain"

	"github.com/caarlos0/env/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultInitialBalance seeds the simulated cash balance at startup.
	DefaultInitialBalance = "50000.00"

	// DefaultQuoteTimeoutSec bounds a single provider round trip so a hung
	// upstream cannot starve a trade request.
	DefaultQuoteTimeoutSec = 10
)

// Config holds all application settings. Loaded from YAML, then sensitive
// values are overridden from the environment.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Server struct {
		Addr       string `yaml:"addr"`
		CORSOrigin string `yaml:"cors_origin"`
	} `yaml:"server"`

	API struct {
		Yahoo struct {
			BaseURL    string `yaml:"base_url"`
			Host       string `yaml:"host"`
			Key        string `yaml:"key"`
			Region     string `yaml:"region"`
			TimeoutSec int    `yaml:"timeout_sec"`
		} `yaml:"yahoo"`
	} `yaml:"api"`

	Trading struct {
		InitialBalance string `yaml:"initial_balance"`
	} `yaml:"trading"`

	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// envOverrides carries the environment variables that take precedence over
// the YAML file. The API key is usually supplied this way.
type envOverrides struct {
	APIKey string `env:"API_KEY"`
	Port   string `env:"PORT"`
	DBPath string `env:"STOCK_DB_PATH"`
}

// LoadConfig reads and parses the configuration file, applies environment
// overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if err := overrideWithEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.CORSOrigin == "" {
		c.Server.CORSOrigin = "*"
	}
	if c.API.Yahoo.BaseURL == "" {
		c.API.Yahoo.BaseURL = "https://apidojo-yahoo-finance-v1.p.rapidapi.com"
	}
	if c.API.Yahoo.Host == "" {
		c.API.Yahoo.Host = "apidojo-yahoo-finance-v1.p.rapidapi.com"
	}
	if c.API.Yahoo.Region == "" {
		c.API.Yahoo.Region = "US"
	}
	if c.API.Yahoo.TimeoutSec <= 0 {
		c.API.Yahoo.TimeoutSec = DefaultQuoteTimeoutSec
	}
	if c.Trading.InitialBalance == "" {
		c.Trading.InitialBalance = DefaultInitialBalance
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "data/stock_go.db"
	}
}

// Validate checks configuration validity. A missing API key fails here, at
// startup, rather than surfacing as an uninterpretable 4xx from the provider.
func (c *Config) Validate() error {
	if !hasPrefix(c.API.Yahoo.BaseURL, "http://") && !hasPrefix(c.API.Yahoo.BaseURL, "https://") {
		return fmt.Errorf("invalid Yahoo base URL: %s", c.API.Yahoo.BaseURL)
	}
	if c.API.Yahoo.Key == "" {
		return &domain.ConfigError{Field: "api.yahoo.key", Err: errors.New("missing API key (set API_KEY)")}
	}
	seed, err := decimal.NewFromString(c.Trading.InitialBalance)
	if err != nil {
		return fmt.Errorf("invalid initial balance %q: %w", c.Trading.InitialBalance, err)
	}
	if seed.IsNegative() {
		return fmt.Errorf("initial balance must not be negative: %s", seed)
	}
	return nil
}

// SeedBalance returns the configured starting balance. Validate guarantees
// the value parses, so this never fails after LoadConfig.
func (c *Config) SeedBalance() decimal.Decimal {
	seed, err := decimal.NewFromString(c.Trading.InitialBalance)
	if err != nil {
		return decimal.RequireFromString(DefaultInitialBalance)
	}
	return seed
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[0:len(prefix)] == prefix
}

// overrideWithEnv applies environment variables over the file values.
func overrideWithEnv(cfg *Config) error {
	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		return err
	}
	if ov.APIKey != "" {
		cfg.API.Yahoo.Key = ov.APIKey
	}
	if ov.Port != "" {
		cfg.Server.Addr = ":" + ov.Port
	}
	if ov.DBPath != "" {
		cfg.Storage.Path = ov.DBPath
	}
	return nil
}
