package main

// live.go — modo live: feed de barras → motor live → broker simulado.
//
// El feed es la caché CSV en modo replay: sirve las barras ya cerradas a la
// hora actual. Conectar un broker real es implementar ports.BarProvider y
// ports.OrderExecutor contra su API y cambiar el wiring de aquí.

import (
	"context"
	"log/slog"
	"os"

	"github.com/alejandrodnm/trendbot/config"
	"github.com/alejandrodnm/trendbot/internal/adapters/broker"
	"github.com/alejandrodnm/trendbot/internal/adapters/csvcache"
	"github.com/alejandrodnm/trendbot/internal/adapters/notify"
	"github.com/alejandrodnm/trendbot/internal/adapters/storage"
	"github.com/alejandrodnm/trendbot/internal/application/engine/live"
)

func runLive(ctx context.Context, cfg *config.Config) {
	feed, err := csvcache.New(cfg.Data.CacheDir)
	if err != nil {
		slog.Error("failed to open bar cache", "err", err, "dir", cfg.Data.CacheDir)
		os.Exit(1)
	}

	journal, err := storage.NewSQLiteJournal(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open journal", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer journal.Close()

	executor := broker.NewPaper(cfg.Trading.InitialCapital, cfg.Strategy.ContractMultiplier, slog.Default())

	engine, err := live.New(
		feed,
		executor,
		journal,
		notify.NewConsole(),
		cfg.Strategy,
		cfg.Risk,
		live.Config{
			Symbol:         cfg.Trading.Symbol,
			PollInterval:   cfg.PollInterval(),
			Lookback:       cfg.Trading.Lookback,
			InitialCapital: cfg.Trading.InitialCapital,
		},
		slog.Default(),
	)
	if err != nil {
		slog.Error("invalid live config", "err", err)
		os.Exit(1)
	}

	if err := engine.Run(ctx); err != nil {
		slog.Error("live engine exited with error", "err", err)
		os.Exit(1)
	}
}
