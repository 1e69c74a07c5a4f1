package ports

import (
	"context"

	"github.com/alejandrodnm/trendbot/internal/domain"
)

// BarProvider suministra barras ordenadas por timeframe (live o replay).
// Contrato: para un timeframe dado las barras llegan en orden no decreciente
// de timestamp y sin timestamps repetidos; el consumidor descarta violaciones.
type BarProvider interface {
	// FetchBars devuelve las últimas `lookback` barras CERRADAS del símbolo
	// y timeframe dados, de más antigua a más reciente.
	FetchBars(ctx context.Context, symbol string, tf domain.Timeframe, lookback int) ([]domain.Bar, error)
}
