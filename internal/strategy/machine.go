package strategy

// machine.go — la máquina de estados de decisión (FLAT ↔ LONG, solo largos).
//
// Consume valores de indicadores ya alineados barra a barra y emite
// intenciones de orden. No conoce al broker ni al replay: el mismo código
// decide en backtest y en live, que es la garantía de paridad.

import (
	"fmt"
	"time"

	"github.com/alejandrodnm/trendbot/internal/domain"
)

// RiskGate es la vista que la máquina necesita del gestor de riesgo.
type RiskGate interface {
	PermitsNewRisk() bool
	SizePosition(entryPrice, stopPrice float64) int
}

// Decision es el resultado de procesar una barra: como mucho una intención
// de orden y, si hubo salida, el trade completado.
type Decision struct {
	Intent *domain.OrderIntent
	Trade  *domain.TradeRecord
}

// Machine es la máquina de estados de la estrategia. Estado inicial FLAT;
// no tiene estado terminal.
type Machine struct {
	params domain.StrategyParameters
	risk   RiskGate

	pos      domain.Position
	lastBar  time.Time
	tradeSeq int
}

// NewMachine valida los parámetros y crea la máquina en FLAT.
func NewMachine(params domain.StrategyParameters, gate RiskGate) (*Machine, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("strategy.NewMachine: %w", err)
	}
	return &Machine{
		params: params,
		risk:   gate,
		pos:    domain.Position{State: domain.Flat},
	}, nil
}

// OnBar procesa una barra cerrada de 10M con los flags de indicadores ya
// alineados. emaBull debe venir del último bar horario CERRADO; stBull/stReady
// del SuperTrend de 10M. Rechaza barras duplicadas o fuera de orden.
//
// Prioridad de salida en la misma barra: TP, luego SL, luego flip del
// SuperTrend. Con datos de barra el orden intrabar real es desconocido;
// TP-antes-que-SL es la política fijada. Tras una salida no se evalúa
// entrada hasta la siguiente barra.
func (m *Machine) OnBar(bar domain.Bar, emaBull, stBull, stReady bool) (Decision, error) {
	if !m.lastBar.IsZero() && !bar.Timestamp.After(m.lastBar) {
		return Decision{}, fmt.Errorf("strategy.OnBar: bar %s not after %s",
			bar.Timestamp.Format(time.RFC3339), m.lastBar.Format(time.RFC3339))
	}
	m.lastBar = bar.Timestamp

	if m.pos.Open() {
		if reason, ok := m.exitReason(bar.Close, stBull, stReady); ok {
			return m.closePosition(bar, reason), nil
		}
		return Decision{}, nil
	}

	// Entrada: confirmación horaria cerrada + SuperTrend 10M alcista + riesgo
	// permitido. Indicadores sin warm-up nunca confirman. stBear en FLAT es
	// un no-op: jamás se abren cortos.
	if !stReady || !stBull || !emaBull || !m.risk.PermitsNewRisk() {
		return Decision{}, nil
	}

	qty := m.risk.SizePosition(bar.Close, m.params.StopLossPrice(bar.Close))
	if qty <= 0 {
		return Decision{}, nil
	}

	m.pos = domain.Position{
		State:      domain.Long,
		EntryPrice: bar.Close,
		EntryTime:  bar.Timestamp,
		Quantity:   qty,
		TPPrice:    m.params.TakeProfitPrice(bar.Close),
		SLPrice:    m.params.StopLossPrice(bar.Close),
	}

	return Decision{
		Intent: &domain.OrderIntent{
			Side:     domain.Buy,
			Type:     domain.Bracket,
			Quantity: qty,
			Price:    bar.Close,
			TPPrice:  m.pos.TPPrice,
			SLPrice:  m.pos.SLPrice,
			Time:     bar.Timestamp,
		},
	}, nil
}

// ForceExit cierra la posición abierta al close de la barra dada (cierre de
// replay o de sesión). No-op si la máquina está FLAT.
func (m *Machine) ForceExit(bar domain.Bar, reason domain.ExitReason) Decision {
	if !m.pos.Open() {
		return Decision{}
	}
	return m.closePosition(bar, reason)
}

// Position devuelve una copia del estado de posición actual.
func (m *Machine) Position() domain.Position {
	return m.pos
}

func (m *Machine) exitReason(close float64, stBull, stReady bool) (domain.ExitReason, bool) {
	switch {
	case close >= m.pos.TPPrice:
		return domain.ExitTakeProfit, true
	case close <= m.pos.SLPrice:
		return domain.ExitStopLoss, true
	case stReady && !stBull:
		return domain.ExitTrendFlip, true
	}
	return "", false
}

func (m *Machine) closePosition(bar domain.Bar, reason domain.ExitReason) Decision {
	m.tradeSeq++
	pnl := (bar.Close - m.pos.EntryPrice) * float64(m.pos.Quantity) * m.params.ContractMultiplier

	trade := &domain.TradeRecord{
		ID:         fmt.Sprintf("T-%04d", m.tradeSeq),
		EntryTime:  m.pos.EntryTime,
		EntryPrice: m.pos.EntryPrice,
		ExitTime:   bar.Timestamp,
		ExitPrice:  bar.Close,
		Quantity:   m.pos.Quantity,
		ExitReason: reason,
		PnL:        pnl,
		PnLPct:     (bar.Close - m.pos.EntryPrice) / m.pos.EntryPrice * 100,
	}

	intent := &domain.OrderIntent{
		Side:     domain.Sell,
		Type:     domain.Market,
		Quantity: m.pos.Quantity,
		Price:    bar.Close,
		Time:     bar.Timestamp,
	}

	m.pos = domain.Position{State: domain.Flat}
	return Decision{Intent: intent, Trade: trade}
}
