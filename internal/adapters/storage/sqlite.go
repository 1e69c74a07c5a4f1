package storage

// sqlite.go — journal de trades sobre SQLite (pure Go, sin CGo).
//
// Estrategia:
//   - `runs`: una fila por ejecución (backtest o live), con capital inicial
//     y equity final. UPSERT: el resumen se reescribe al terminar.
//   - `trades`: una fila por trade cerrado, ligada a su run. Append-only.
//   - Prune automático al arrancar: runs > 90d se eliminan en cascada.

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/alejandrodnm/trendbot/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
-- Resumen por ejecución
CREATE TABLE IF NOT EXISTS runs (
    id              TEXT PRIMARY KEY,
    mode            TEXT NOT NULL,
    symbol          TEXT NOT NULL,
    started_at      DATETIME NOT NULL,
    finished_at     DATETIME,
    initial_capital REAL NOT NULL DEFAULT 0,
    final_equity    REAL NOT NULL DEFAULT 0,
    total_trades    INTEGER NOT NULL DEFAULT 0
);

-- Ledger de trades cerrados
CREATE TABLE IF NOT EXISTS trades (
    run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    trade_id    TEXT NOT NULL,
    entry_time  DATETIME NOT NULL,
    entry_price REAL NOT NULL,
    exit_time   DATETIME NOT NULL,
    exit_price  REAL NOT NULL,
    quantity    INTEGER NOT NULL,
    exit_reason TEXT NOT NULL,
    pnl         REAL NOT NULL,
    pnl_pct     REAL NOT NULL,
    PRIMARY KEY (run_id, trade_id)
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_trades_exit  ON trades(run_id, exit_time);
`

// runs más antiguos que esto se eliminan al arrancar, trades en cascada
const retentionRuns = 90 * 24 * time.Hour

// SQLiteJournal implementa ports.Journal usando SQLite.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLiteJournal abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia ejecuciones antiguas.
func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteJournal: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteJournal: enable fkeys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteJournal: apply schema: %w", err)
	}

	j := &SQLiteJournal{db: db}
	j.pruneOld(context.Background())
	return j, nil
}

// SaveRun inserta o actualiza el resumen de una ejecución. Los timestamps se
// guardan como texto RFC3339 UTC: comparables lexicográficamente y portables
// entre versiones del driver.
func (j *SQLiteJournal) SaveRun(ctx context.Context, run domain.RunSummary) error {
	var finished *string
	if !run.FinishedAt.IsZero() {
		s := encodeTime(run.FinishedAt)
		finished = &s
	}

	if _, err := j.db.ExecContext(ctx, `
		INSERT INTO runs
			(id, mode, symbol, started_at, finished_at, initial_capital, final_equity, total_trades)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			finished_at  = excluded.finished_at,
			final_equity = excluded.final_equity,
			total_trades = excluded.total_trades
	`,
		run.ID, run.Mode, run.Symbol, encodeTime(run.StartedAt), finished,
		run.InitialCapital, run.FinalEquity, run.TotalTrades,
	); err != nil {
		return fmt.Errorf("storage.SaveRun: upsert %s: %w", run.ID, err)
	}
	return nil
}

// SaveTrade añade un trade cerrado al ledger de la ejecución dada.
func (j *SQLiteJournal) SaveTrade(ctx context.Context, runID string, trade domain.TradeRecord) error {
	if _, err := j.db.ExecContext(ctx, `
		INSERT INTO trades
			(run_id, trade_id, entry_time, entry_price, exit_time, exit_price,
			 quantity, exit_reason, pnl, pnl_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		runID, trade.ID, encodeTime(trade.EntryTime), trade.EntryPrice,
		encodeTime(trade.ExitTime), trade.ExitPrice, trade.Quantity,
		string(trade.ExitReason), trade.PnL, trade.PnLPct,
	); err != nil {
		return fmt.Errorf("storage.SaveTrade: insert %s/%s: %w", runID, trade.ID, err)
	}
	return nil
}

// GetTrades devuelve el ledger de una ejecución en orden de cierre.
func (j *SQLiteJournal) GetTrades(ctx context.Context, runID string) ([]domain.TradeRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT trade_id, entry_time, entry_price, exit_time, exit_price,
		       quantity, exit_reason, pnl, pnl_pct
		FROM trades
		WHERE run_id = ?
		ORDER BY exit_time, trade_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("storage.GetTrades: query %s: %w", runID, err)
	}
	defer rows.Close()

	var trades []domain.TradeRecord
	for rows.Next() {
		var tr domain.TradeRecord
		var entryAt, exitAt, reason string
		if err := rows.Scan(
			&tr.ID, &entryAt, &tr.EntryPrice, &exitAt, &tr.ExitPrice,
			&tr.Quantity, &reason, &tr.PnL, &tr.PnLPct,
		); err != nil {
			return nil, fmt.Errorf("storage.GetTrades: scan row: %w", err)
		}
		if tr.EntryTime, err = decodeTime(entryAt); err != nil {
			return nil, fmt.Errorf("storage.GetTrades: entry_time: %w", err)
		}
		if tr.ExitTime, err = decodeTime(exitAt); err != nil {
			return nil, fmt.Errorf("storage.GetTrades: exit_time: %w", err)
		}
		tr.ExitReason = domain.ExitReason(reason)
		trades = append(trades, tr)
	}
	return trades, rows.Err()
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// Close cierra la conexión a la base de datos.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// ExportTradesCSV vuelca el ledger completo a un archivo CSV, en el mismo
// orden y formato que GetTrades.
func ExportTradesCSV(path string, trades []domain.TradeRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("storage.ExportTradesCSV: create %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"trade_id", "entry_time", "entry_price", "exit_time", "exit_price",
		"quantity", "exit_reason", "pnl", "pnl_pct",
	}); err != nil {
		return fmt.Errorf("storage.ExportTradesCSV: write header: %w", err)
	}
	for _, tr := range trades {
		record := []string{
			tr.ID,
			tr.EntryTime.UTC().Format(time.RFC3339),
			strconv.FormatFloat(tr.EntryPrice, 'f', -1, 64),
			tr.ExitTime.UTC().Format(time.RFC3339),
			strconv.FormatFloat(tr.ExitPrice, 'f', -1, 64),
			strconv.Itoa(tr.Quantity),
			string(tr.ExitReason),
			strconv.FormatFloat(tr.PnL, 'f', -1, 64),
			strconv.FormatFloat(tr.PnLPct, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("storage.ExportTradesCSV: write row %s: %w", tr.ID, err)
		}
	}
	w.Flush()
	return w.Error()
}

// pruneOld elimina ejecuciones antiguas para mantener la DB ligera.
func (j *SQLiteJournal) pruneOld(ctx context.Context) {
	cutoff := encodeTime(time.Now().Add(-retentionRuns))
	j.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff)
}
