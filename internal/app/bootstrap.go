package app

import (
	"log/slog"
	"os"

	"stock_go/internal/infra"
	"stock_go/internal/infra/storage"

	"github.com/shopspring/decimal"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config  *infra.Config
	Storage *storage.Storage
	Metrics *infra.Metrics
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, logger, DB).
// A missing API key fails here, before any request is served.
func (b *Bootstrap) Initialize() error {
	slog.Info("Bootstrapping Stock Go...")

	// 1. Load Config
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "configs/config.yaml"
	}
	cfg, err := infra.LoadConfig(path)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// API responses carry balances and prices as bare JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("Database initialized", slog.String("path", cfg.Storage.Path))

	// 4. Metrics
	b.Metrics = &infra.Metrics{}

	return nil
}
