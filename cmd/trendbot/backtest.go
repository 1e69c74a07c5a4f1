package main

// backtest.go — modo replay: barras cacheadas → motor determinista → informe.

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/trendbot/config"
	"github.com/alejandrodnm/trendbot/internal/adapters/csvcache"
	"github.com/alejandrodnm/trendbot/internal/adapters/notify"
	"github.com/alejandrodnm/trendbot/internal/adapters/storage"
	"github.com/alejandrodnm/trendbot/internal/backtest"
	"github.com/alejandrodnm/trendbot/internal/domain"
)

func runBacktest(ctx context.Context, cfg *config.Config, csvOut string) {
	cache, err := csvcache.New(cfg.Data.CacheDir)
	if err != nil {
		slog.Error("failed to open bar cache", "err", err, "dir", cfg.Data.CacheDir)
		os.Exit(1)
	}

	hourly, err := cache.Load(cfg.Trading.Symbol, domain.Timeframe1H)
	if err != nil && !os.IsNotExist(err) {
		slog.Error("failed to load hourly bars", "err", err, "symbol", cfg.Trading.Symbol)
		os.Exit(1)
	}
	tenMin, err := cache.Load(cfg.Trading.Symbol, domain.Timeframe10M)
	if err != nil && !os.IsNotExist(err) {
		slog.Error("failed to load 10m bars", "err", err, "symbol", cfg.Trading.Symbol)
		os.Exit(1)
	}
	if len(hourly) == 0 || len(tenMin) == 0 {
		slog.Error("no cached bars for symbol; populate the cache first",
			"symbol", cfg.Trading.Symbol, "dir", cfg.Data.CacheDir)
		os.Exit(1)
	}

	engine, err := backtest.NewEngine(cfg.Strategy, cfg.Risk, cfg.Trading.InitialCapital)
	if err != nil {
		slog.Error("invalid backtest config", "err", err)
		os.Exit(1)
	}

	startedAt := time.Now().UTC()
	result, err := engine.Run(hourly, tenMin)
	if err != nil {
		slog.Error("backtest failed", "err", err)
		os.Exit(1)
	}

	console := notify.NewConsole()
	console.PrintTrades(result.Trades)
	console.PrintReport(result.Report, cfg.Trading.InitialCapital, result.FinalEquity,
		backtest.Duration(tenMin, domain.Timeframe10M))

	saveBacktest(ctx, cfg, result, startedAt)

	if csvOut != "" {
		if err := storage.ExportTradesCSV(csvOut, result.Trades); err != nil {
			slog.Error("csv export failed", "err", err, "path", csvOut)
			os.Exit(1)
		}
		slog.Info("ledger exported", "path", csvOut, "trades", len(result.Trades))
	}
}

// saveBacktest deja el run y su ledger en el journal. Fallos de persistencia
// no tumban el replay: el informe ya se imprimió.
func saveBacktest(ctx context.Context, cfg *config.Config, result *backtest.Result, startedAt time.Time) {
	journal, err := storage.NewSQLiteJournal(cfg.Storage.DSN)
	if err != nil {
		slog.Warn("journal unavailable, skipping persistence", "err", err)
		return
	}
	defer journal.Close()

	run := domain.RunSummary{
		ID:             uuid.NewString(),
		Mode:           "backtest",
		Symbol:         cfg.Trading.Symbol,
		StartedAt:      startedAt,
		FinishedAt:     time.Now().UTC(),
		InitialCapital: cfg.Trading.InitialCapital,
		FinalEquity:    result.FinalEquity,
		TotalTrades:    len(result.Trades),
	}
	if err := journal.SaveRun(ctx, run); err != nil {
		slog.Warn("failed to save run", "err", err)
		return
	}
	for _, trade := range result.Trades {
		if err := journal.SaveTrade(ctx, run.ID, trade); err != nil {
			slog.Warn("failed to save trade", "trade_id", trade.ID, "err", err)
		}
	}
}
