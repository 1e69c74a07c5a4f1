package domain

import "time"

// ExitReason es el motivo de cierre de una posición.
type ExitReason string

const (
	ExitTakeProfit ExitReason = "TAKE_PROFIT"
	ExitStopLoss   ExitReason = "STOP_LOSS"
	ExitTrendFlip  ExitReason = "TREND_FLIP"
	ExitEndOfData  ExitReason = "END_OF_DATA"
)

// TradeRecord es un trade completado (entrada + salida). Inmutable una vez
// creado; se añade al ledger en orden de cierre.
type TradeRecord struct {
	ID         string
	EntryTime  time.Time
	EntryPrice float64
	ExitTime   time.Time
	ExitPrice  float64
	Quantity   int
	ExitReason ExitReason
	PnL        float64 // realizado, en dólares (incluye multiplicador del contrato)
	PnLPct     float64 // sobre el precio de entrada
}

// Win devuelve true si el trade cerró en positivo.
func (t TradeRecord) Win() bool {
	return t.PnL > 0
}

// RunSummary resume una ejecución (backtest o sesión live) para el journal.
type RunSummary struct {
	ID             string
	Mode           string // "backtest" | "live"
	Symbol         string
	StartedAt      time.Time
	FinishedAt     time.Time
	InitialCapital float64
	FinalEquity    float64
	TotalTrades    int
}
