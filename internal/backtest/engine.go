package backtest

// engine.go — replay determinista de barras históricas.
//
// Reproduce las dos series (1H y 10M) en orden de cierre de barra a través
// de la MISMA máquina de estados que usa el modo live. El modelo de fill es
// el simplificado documentado: entradas y salidas al close de la barra de
// decisión, sin slippage ni fills parciales. Una pasada, sin lookahead.

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/trendbot/internal/analytics"
	"github.com/alejandrodnm/trendbot/internal/domain"
	"github.com/alejandrodnm/trendbot/internal/indicator"
	"github.com/alejandrodnm/trendbot/internal/risk"
	"github.com/alejandrodnm/trendbot/internal/strategy"
)

// Factor de anualización de la curva de equity. La referencia anualiza con
// sqrt(252) independientemente de la frecuencia de muestreo.
const annualPeriods = 252

// Engine replays históricos por la estrategia con fills simulados.
type Engine struct {
	params         domain.StrategyParameters
	limits         domain.RiskLimits
	initialCapital float64
}

// Result es el producto de un replay: ledger, curva de equity e informe.
type Result struct {
	Trades      []domain.TradeRecord
	Equity      []domain.EquityPoint
	Report      analytics.Report
	FinalEquity float64
	SkippedBars int // barras rechazadas por timestamp duplicado o fuera de orden
}

// NewEngine valida la configuración y crea el motor de backtest.
func NewEngine(params domain.StrategyParameters, limits domain.RiskLimits, initialCapital float64) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("backtest.NewEngine: %w", err)
	}
	if err := limits.Validate(); err != nil {
		return nil, fmt.Errorf("backtest.NewEngine: %w", err)
	}
	if initialCapital <= 0 {
		return nil, fmt.Errorf("backtest.NewEngine: initial capital must be > 0, got %g", initialCapital)
	}
	return &Engine{params: params, limits: limits, initialCapital: initialCapital}, nil
}

// Run ejecuta el replay completo. Mismos (parámetros, barras) → mismo ledger,
// byte a byte: no hay reloj de pared ni aleatoriedad en el camino de decisión.
func (e *Engine) Run(hourly, tenMin []domain.Bar) (*Result, error) {
	riskMgr := risk.NewManager(e.initialCapital, e.limits, e.params.ContractMultiplier)
	aligner := strategy.NewAligner(e.params.EMAPeriod)
	st := indicator.NewSuperTrend(e.params.STATRPeriod, e.params.STMultiplier)

	machine, err := strategy.NewMachine(e.params, riskMgr)
	if err != nil {
		return nil, fmt.Errorf("backtest.Run: %w", err)
	}

	result := &Result{}
	var lastTen *domain.Bar

	hi := 0
	for _, bar := range tenMin {
		bar := bar // per-iteration copy: &bar escapes below (go directive < 1.22)
		barClose := bar.CloseTime(domain.Timeframe10M)

		// Primero los cierres horarios que ocurren en o antes del cierre de
		// esta barra de 10M: así la barra fina solo ve horas ya cerradas.
		for hi < len(hourly) && !hourly[hi].CloseTime(domain.Timeframe1H).After(barClose) {
			if err := aligner.OnHourlyClose(hourly[hi]); err != nil {
				slog.Warn("backtest: hourly bar rejected", "err", err)
				result.SkippedBars++
			}
			hi++
		}

		// Barras duplicadas o fuera de orden se descartan antes de tocar
		// ningún estado de indicador.
		if lastTen != nil && !bar.Timestamp.After(lastTen.Timestamp) {
			slog.Warn("backtest: bar rejected",
				"timestamp", bar.Timestamp, "last", lastTen.Timestamp)
			result.SkippedBars++
			continue
		}

		st.Update(bar)
		decision, err := machine.OnBar(bar, aligner.EMABull(), st.Bullish(), st.Ready())
		if err != nil {
			slog.Warn("backtest: bar rejected", "err", err)
			result.SkippedBars++
			continue
		}

		e.apply(riskMgr, result, decision)
		result.Equity = append(result.Equity, domain.EquityPoint{
			Time:   barClose,
			Equity: riskMgr.Equity(),
		})
		lastTen = &bar
	}

	// Posición abierta al agotar los datos: se cierra al último close.
	if machine.Position().Open() && lastTen != nil {
		decision := machine.ForceExit(*lastTen, domain.ExitEndOfData)
		e.apply(riskMgr, result, decision)
		result.Equity = append(result.Equity, domain.EquityPoint{
			Time:   lastTen.CloseTime(domain.Timeframe10M),
			Equity: riskMgr.Equity(),
		})
	}

	result.FinalEquity = riskMgr.Equity()
	result.Report = analytics.Analyze(result.Trades, result.Equity, annualPeriods)

	slog.Info("backtest complete",
		"bars", len(tenMin),
		"trades", len(result.Trades),
		"skipped", result.SkippedBars,
		"final_equity", fmt.Sprintf("%.2f", result.FinalEquity),
	)
	return result, nil
}

// apply acumula el resultado de una decisión: trade al ledger y PnL al riesgo.
func (e *Engine) apply(riskMgr *risk.Manager, result *Result, decision strategy.Decision) {
	if decision.Trade == nil {
		return
	}
	riskMgr.OnTradeClosed(decision.Trade.PnL, decision.Trade.ExitTime)
	result.Trades = append(result.Trades, *decision.Trade)
}

// Duration devuelve la ventana temporal cubierta por una serie de barras.
func Duration(bars []domain.Bar, tf domain.Timeframe) time.Duration {
	if len(bars) == 0 {
		return 0
	}
	return bars[len(bars)-1].CloseTime(tf).Sub(bars[0].Timestamp)
}
