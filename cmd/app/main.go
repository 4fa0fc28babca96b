package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock_go/internal/app"
	"stock_go/internal/hub"
	"stock_go/internal/infra/yahoo"
	"stock_go/internal/ledger"
	"stock_go/internal/server"
	"stock_go/internal/service"
)

func main() {
	// 1. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := bootstrap.Config

	// 2. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Real-time hub (single registry goroutine)
	h := hub.NewHub(bootstrap.Metrics)
	go h.Run(ctx)

	// 4. Core wiring: ledger broadcasts through the hub, the hub reads the
	// balance back for its manual-test trigger.
	book := ledger.New(cfg.SeedBalance(), h, bootstrap.Metrics)
	h.SetBalanceFunc(book.Balance)

	quotes := yahoo.NewClient(cfg, bootstrap.Metrics)
	trades := service.NewTradeService(quotes, book, h)

	srv := server.NewServer(trades, bootstrap.Storage, h, bootstrap.Metrics, slog.Default(), cfg.Server.CORSOrigin)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.R,
	}

	go func() {
		slog.Info("HTTP server listening", slog.String("addr", cfg.Server.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", slog.Any("error", err))
			stop()
		}
	}()

	slog.InfoContext(ctx, "Stock Go fully operational. Press Ctrl+C to exit.",
		slog.String("balance", cfg.SeedBalance().String()))

	// Wait for shutdown signal
	<-ctx.Done()

	slog.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", slog.Any("error", err))
	}
}
