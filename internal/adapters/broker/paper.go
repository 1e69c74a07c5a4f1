package broker

// paper.go — ejecutor simulado: cada orden se llena inmediatamente al precio
// de la intención, sin slippage ni comisiones. Sirve para validar el loop
// live completo sin tocar un broker real.

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/alejandrodnm/trendbot/internal/domain"
)

// Paper implementa ports.OrderExecutor contra una cuenta simulada.
type Paper struct {
	mu         sync.Mutex
	balance    float64
	openQty    int
	entryPrice float64
	multiplier float64
	log        *slog.Logger
}

// NewPaper crea un ejecutor simulado con el balance inicial dado.
// El multiplicador convierte puntos de precio en dólares por contrato.
func NewPaper(initialBalance, contractMultiplier float64, log *slog.Logger) *Paper {
	return &Paper{
		balance:    initialBalance,
		multiplier: contractMultiplier,
		log:        log.With("adapter", "paper"),
	}
}

// PlaceOrder llena la orden al precio de la intención y devuelve el fill.
func (p *Paper) PlaceOrder(_ context.Context, intent domain.OrderIntent) (domain.Fill, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if intent.Quantity <= 0 {
		return domain.Fill{}, fmt.Errorf("broker.PlaceOrder: invalid quantity %d", intent.Quantity)
	}

	switch intent.Side {
	case domain.Buy:
		if p.openQty > 0 {
			return domain.Fill{}, fmt.Errorf("broker.PlaceOrder: position already open (%d contracts)", p.openQty)
		}
		p.openQty = intent.Quantity
		p.entryPrice = intent.Price

	case domain.Sell:
		if intent.Quantity > p.openQty {
			return domain.Fill{}, fmt.Errorf("broker.PlaceOrder: sell %d exceeds open %d", intent.Quantity, p.openQty)
		}
		pnl := (intent.Price - p.entryPrice) * float64(intent.Quantity) * p.multiplier
		p.balance += pnl
		p.openQty -= intent.Quantity

	default:
		return domain.Fill{}, fmt.Errorf("broker.PlaceOrder: unknown side %q", intent.Side)
	}

	fill := domain.Fill{
		OrderID: uuid.NewString(),
		Price:   intent.Price,
		Time:    intent.Time,
	}
	p.log.Debug("order filled",
		"order_id", fill.OrderID,
		"side", intent.Side,
		"qty", intent.Quantity,
		"price", intent.Price,
	)
	return fill, nil
}

// AccountBalance devuelve el balance simulado (PnL realizado incluido).
func (p *Paper) AccountBalance(_ context.Context) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.balance, nil
}

// OpenQuantity devuelve los contratos abiertos en la cuenta simulada.
func (p *Paper) OpenQuantity(_ context.Context) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.openQty, nil
}
