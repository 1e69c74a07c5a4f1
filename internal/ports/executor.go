package ports

import (
	"context"

	"github.com/alejandrodnm/trendbot/internal/domain"
)

// OrderExecutor traduce intenciones de orden al broker y reporta fills.
// Si falla, el core asume que NO hay posición abierta hasta que llegue la
// confirmación: la máquina de estados permanece consistente.
type OrderExecutor interface {
	// PlaceOrder envía la intención y devuelve el fill confirmado.
	PlaceOrder(ctx context.Context, intent domain.OrderIntent) (domain.Fill, error)

	// AccountBalance devuelve el balance de la cuenta según el broker.
	AccountBalance(ctx context.Context) (float64, error)

	// OpenQuantity devuelve los contratos abiertos según el broker, para
	// reconciliar contra la Position interna.
	OpenQuantity(ctx context.Context) (int, error)
}
