package risk

// manager.go — sizing de posición y circuit breakers de pérdida.
//
// El Manager es el único escritor de sus contadores: el path de eventos
// (backtest o live) le notifica cada trade cerrado. Los lectores (GUI,
// analytics) usan Snapshot(), nunca los campos directamente.

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/alejandrodnm/trendbot/internal/domain"
)

// Metrics es un snapshot consistente del estado de riesgo.
type Metrics struct {
	Balance      float64
	InitialBal   float64
	DailyPnL     float64
	TotalPnL     float64
	PeakBalance  float64
	DrawdownPct  float64
	Halted       bool
	HaltedReason string
}

// Manager aplica sizing por riesgo y los límites de pérdida diaria y drawdown.
// Una vez disparado, un límite es pegajoso: no se rearma hasta un cierre de
// sesión explícito (StartNewDay), nunca en caliente.
type Manager struct {
	mu sync.Mutex

	limits     domain.RiskLimits
	multiplier float64 // $/punto por contrato

	initialBalance float64
	balance        float64
	peakBalance    float64
	dailyPnL       float64
	totalPnL       float64
	day            time.Time // día de sesión vigente (UTC)

	dailyHalt bool
	ddHalt    bool
	reason    string
}

// NewManager crea un gestor de riesgo con el balance inicial dado.
func NewManager(initialBalance float64, limits domain.RiskLimits, contractMultiplier float64) *Manager {
	return &Manager{
		limits:         limits,
		multiplier:     contractMultiplier,
		initialBalance: initialBalance,
		balance:        initialBalance,
		peakBalance:    initialBalance,
	}
}

// SizePosition calcula los contratos para que un SL pierda como máximo
// balance * risk_per_trade. Aplica el tope de nocional (% de equity) y el
// clamp [min_contracts, max_contracts]. Devuelve 0 si el stop no tiene
// distancia.
func (m *Manager) SizePosition(entryPrice, stopPrice float64) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	stopDistance := math.Abs(entryPrice - stopPrice)
	if stopDistance == 0 || entryPrice <= 0 {
		return 0
	}

	riskAmount := m.balance * m.limits.RiskPerTradePct / 100
	perContract := stopDistance * m.multiplier
	qty := int(riskAmount / perContract)

	// Tope de tamaño: nocional máximo como % del equity.
	maxByNotional := int(m.balance * m.limits.MaxPositionPct / 100 / (entryPrice * m.multiplier))
	if maxByNotional > 0 && qty > maxByNotional {
		qty = maxByNotional
	}

	if qty < m.limits.MinContracts {
		qty = m.limits.MinContracts
	}
	if qty > m.limits.MaxContracts {
		qty = m.limits.MaxContracts
	}
	return qty
}

// PermitsNewRisk devuelve false cuando algún límite está disparado. Bloquea
// entradas nuevas; nunca fuerza el cierre de la posición abierta.
func (m *Manager) PermitsNewRisk() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.dailyHalt && !m.ddHalt
}

// OnTradeClosed acumula el PnL realizado de un trade y evalúa los límites.
func (m *Manager) OnTradeClosed(pnl float64, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rollDayLocked(at)

	m.balance += pnl
	m.totalPnL += pnl
	m.dailyPnL += pnl

	if m.balance > m.peakBalance {
		m.peakBalance = m.balance
	}

	dailyLossPct := -m.dailyPnL / m.initialBalance * 100
	if !m.dailyHalt && dailyLossPct >= m.limits.MaxDailyLossPct {
		m.dailyHalt = true
		m.reason = "daily loss limit"
		slog.Warn("risk: daily loss limit tripped",
			"daily_pnl", m.dailyPnL, "limit_pct", m.limits.MaxDailyLossPct)
	}

	if !m.ddHalt && m.drawdownPctLocked() >= m.limits.MaxDrawdownPct {
		m.ddHalt = true
		m.reason = "max drawdown"
		slog.Warn("risk: max drawdown tripped",
			"drawdown_pct", m.drawdownPctLocked(), "limit_pct", m.limits.MaxDrawdownPct)
	}
}

// StartNewDay marca el límite de sesión: resetea el PnL diario y rearma el
// breaker diario. El de drawdown solo se rearma si el equity recuperó.
func (m *Manager) StartNewDay(at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startNewDayLocked(at)
}

// Equity devuelve el balance actual.
func (m *Manager) Equity() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balance
}

// Snapshot devuelve una copia consistente de las métricas de riesgo.
func (m *Manager) Snapshot() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Metrics{
		Balance:      m.balance,
		InitialBal:   m.initialBalance,
		DailyPnL:     m.dailyPnL,
		TotalPnL:     m.totalPnL,
		PeakBalance:  m.peakBalance,
		DrawdownPct:  m.drawdownPctLocked(),
		Halted:       m.dailyHalt || m.ddHalt,
		HaltedReason: m.reason,
	}
}

// rollDayLocked aplica el cambio de sesión cuando el timestamp cruza de día UTC.
func (m *Manager) rollDayLocked(at time.Time) {
	day := at.UTC().Truncate(24 * time.Hour)
	if m.day.IsZero() {
		m.day = day
		return
	}
	if day.After(m.day) {
		m.startNewDayLocked(at)
	}
}

func (m *Manager) startNewDayLocked(at time.Time) {
	m.day = at.UTC().Truncate(24 * time.Hour)
	m.dailyPnL = 0
	m.dailyHalt = false
	if m.ddHalt && m.drawdownPctLocked() < m.limits.MaxDrawdownPct {
		m.ddHalt = false
	}
	if !m.dailyHalt && !m.ddHalt {
		m.reason = ""
	}
}

func (m *Manager) drawdownPctLocked() float64 {
	if m.peakBalance <= 0 {
		return 0
	}
	return (m.peakBalance - m.balance) / m.peakBalance * 100
}
