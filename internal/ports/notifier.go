package ports

import (
	"context"

	"github.com/alejandrodnm/trendbot/internal/domain"
)

// Notifier presenta al usuario los eventos de trading.
type Notifier interface {
	// NotifyTrade reporta un trade completado.
	NotifyTrade(ctx context.Context, trade domain.TradeRecord) error
}
