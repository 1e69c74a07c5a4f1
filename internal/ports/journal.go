package ports

import (
	"context"

	"github.com/alejandrodnm/trendbot/internal/domain"
)

// Journal persiste el ledger de trades y los resúmenes de ejecución.
type Journal interface {
	// SaveRun inserta o actualiza el resumen de una ejecución.
	SaveRun(ctx context.Context, run domain.RunSummary) error

	// SaveTrade añade un trade completado al ledger de la ejecución dada.
	SaveTrade(ctx context.Context, runID string, trade domain.TradeRecord) error

	// GetTrades devuelve el ledger de una ejecución en orden de cierre.
	GetTrades(ctx context.Context, runID string) ([]domain.TradeRecord, error)

	// Close cierra la conexión limpiamente.
	Close() error
}
