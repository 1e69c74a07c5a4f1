package live

// engine.go — loop live: poll del feed, decisión y despacho de órdenes.
//
// Un solo writer muta el estado de la estrategia (aligner, SuperTrend,
// máquina); los lectores consultan Snapshot(). El feed se sondea con un rate
// limiter para no martillear al proveedor. Las barras nuevas se procesan en
// orden de cierre, igual que en el replay: esa es la garantía de paridad
// backtest/live.

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/alejandrodnm/trendbot/internal/domain"
	"github.com/alejandrodnm/trendbot/internal/indicator"
	"github.com/alejandrodnm/trendbot/internal/ports"
	"github.com/alejandrodnm/trendbot/internal/risk"
	"github.com/alejandrodnm/trendbot/internal/strategy"
)

const (
	defaultPollInterval = 30 * time.Second
	defaultLookback     = 600
)

// Config es la configuración del motor live.
type Config struct {
	Symbol         string
	PollInterval   time.Duration
	Lookback       int // barras por fetch, debe cubrir el warm-up de los indicadores
	InitialCapital float64
}

// Snapshot es el estado observable del motor para lectores externos.
type Snapshot struct {
	RunID    string
	Symbol   string
	Position domain.Position
	Risk     risk.Metrics
	Trades   int
	LastBar  time.Time
}

// Engine ejecuta la estrategia contra un feed real (o replay) de barras.
type Engine struct {
	feed     ports.BarProvider
	executor ports.OrderExecutor
	journal  ports.Journal
	notifier ports.Notifier
	cfg      Config
	limiter  *rate.Limiter
	log      *slog.Logger

	mu         sync.Mutex
	params     domain.StrategyParameters
	limits     domain.RiskLimits
	aligner    *strategy.Aligner
	st         *indicator.SuperTrend
	machine    *strategy.Machine
	riskMgr    *risk.Manager
	lastHourly time.Time
	lastTen    time.Time
	runID      string
	startedAt  time.Time
	trades     int
}

// New valida la configuración y crea el motor live en FLAT.
func New(
	feed ports.BarProvider,
	executor ports.OrderExecutor,
	journal ports.Journal,
	notifier ports.Notifier,
	params domain.StrategyParameters,
	limits domain.RiskLimits,
	cfg Config,
	log *slog.Logger,
) (*Engine, error) {
	if cfg.Symbol == "" {
		return nil, fmt.Errorf("live.New: symbol is required")
	}
	if cfg.InitialCapital <= 0 {
		return nil, fmt.Errorf("live.New: initial capital must be > 0, got %g", cfg.InitialCapital)
	}
	if err := limits.Validate(); err != nil {
		return nil, fmt.Errorf("live.New: %w", err)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = defaultLookback
	}

	riskMgr := risk.NewManager(cfg.InitialCapital, limits, params.ContractMultiplier)
	machine, err := strategy.NewMachine(params, riskMgr)
	if err != nil {
		return nil, fmt.Errorf("live.New: %w", err)
	}

	return &Engine{
		feed:     feed,
		executor: executor,
		journal:  journal,
		notifier: notifier,
		cfg:      cfg,
		limiter:  rate.NewLimiter(rate.Every(cfg.PollInterval), 1),
		log:      log.With("engine", "live", "symbol", cfg.Symbol),
		params:   params,
		limits:   limits,
		aligner:  strategy.NewAligner(params.EMAPeriod),
		st:       indicator.NewSuperTrend(params.STATRPeriod, params.STMultiplier),
		machine:  machine,
		riskMgr:  riskMgr,
		runID:    uuid.NewString(),
	}, nil
}

// Run ejecuta el loop de polling hasta que el contexto se cancele. Al salir,
// si hay posición abierta se cierra a mercado sobre la última barra vista.
func (e *Engine) Run(ctx context.Context) error {
	e.startedAt = time.Now().UTC()
	if err := e.journal.SaveRun(ctx, e.runSummary(false)); err != nil {
		return fmt.Errorf("live.Run: save run: %w", err)
	}
	e.log.Info("live engine started", "run_id", e.runID, "poll", e.cfg.PollInterval)

	for {
		if err := e.limiter.Wait(ctx); err != nil {
			return e.shutdown()
		}
		if err := e.RunOnce(ctx); err != nil {
			e.log.Warn("cycle failed", "err", err)
		}
	}
}

// RunOnce ejecuta un ciclo: fetch de barras nuevas, decisión y despacho.
func (e *Engine) RunOnce(ctx context.Context) error {
	hourly, err := e.feed.FetchBars(ctx, e.cfg.Symbol, domain.Timeframe1H, e.cfg.Lookback)
	if err != nil {
		return fmt.Errorf("live.RunOnce: fetch hourly: %w", err)
	}
	tenMin, err := e.feed.FetchBars(ctx, e.cfg.Symbol, domain.Timeframe10M, e.cfg.Lookback)
	if err != nil {
		return fmt.Errorf("live.RunOnce: fetch 10m: %w", err)
	}

	decisions := e.process(hourly, tenMin)

	for _, d := range decisions {
		e.dispatch(ctx, d)
	}
	return nil
}

// process avanza la estrategia con las barras aún no vistas y devuelve las
// decisiones emitidas. Único punto que muta el estado de indicadores.
func (e *Engine) process(hourly, tenMin []domain.Bar) []strategy.Decision {
	e.mu.Lock()
	defer e.mu.Unlock()

	var decisions []strategy.Decision

	hi := 0
	for _, bar := range tenMin {
		if !bar.Timestamp.After(e.lastTen) {
			continue
		}
		barClose := bar.CloseTime(domain.Timeframe10M)

		// Cierres horarios en o antes del cierre de esta barra de 10M.
		for hi < len(hourly) && !hourly[hi].CloseTime(domain.Timeframe1H).After(barClose) {
			hb := hourly[hi]
			hi++
			if !hb.Timestamp.After(e.lastHourly) {
				continue
			}
			if err := e.aligner.OnHourlyClose(hb); err != nil {
				e.log.Warn("hourly bar rejected", "err", err)
				continue
			}
			e.lastHourly = hb.Timestamp
		}

		e.st.Update(bar)
		decision, err := e.machine.OnBar(bar, e.aligner.EMABull(), e.st.Bullish(), e.st.Ready())
		if err != nil {
			e.log.Warn("bar rejected", "err", err)
			continue
		}
		e.lastTen = bar.Timestamp

		if decision.Trade != nil {
			e.riskMgr.OnTradeClosed(decision.Trade.PnL, decision.Trade.ExitTime)
			e.trades++
		}
		if decision.Intent != nil || decision.Trade != nil {
			decisions = append(decisions, decision)
		}
	}
	return decisions
}

// dispatch traduce una decisión a órdenes del broker y persiste el trade.
// Fuera de la sección crítica: el broker no bloquea al path de decisión.
func (e *Engine) dispatch(ctx context.Context, d strategy.Decision) {
	if d.Intent != nil {
		fill, err := e.executor.PlaceOrder(ctx, *d.Intent)
		if err != nil {
			e.log.Error("order failed",
				"side", d.Intent.Side, "qty", d.Intent.Quantity, "err", err)
		} else {
			e.log.Info("order filled",
				"order_id", fill.OrderID, "side", d.Intent.Side,
				"qty", d.Intent.Quantity, "price", fill.Price)
		}
	}

	if d.Trade != nil {
		if err := e.journal.SaveTrade(ctx, e.runID, *d.Trade); err != nil {
			e.log.Warn("journal trade failed", "trade_id", d.Trade.ID, "err", err)
		}
		if e.notifier != nil {
			if err := e.notifier.NotifyTrade(ctx, *d.Trade); err != nil {
				e.log.Warn("notify failed", "trade_id", d.Trade.ID, "err", err)
			}
		}
	}
}

// UpdateParameters cambia los parámetros de estrategia en caliente. Solo se
// admite en FLAT: los indicadores se reconstruyen y arrancan su warm-up de
// cero, y la ejecución continúa bajo un run nuevo.
func (e *Engine) UpdateParameters(ctx context.Context, params domain.StrategyParameters) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.machine.Position().Open() {
		return fmt.Errorf("live.UpdateParameters: position open, close it first")
	}

	machine, err := strategy.NewMachine(params, e.riskMgr)
	if err != nil {
		return fmt.Errorf("live.UpdateParameters: %w", err)
	}

	if err := e.journal.SaveRun(ctx, e.runSummaryLocked(true)); err != nil {
		return fmt.Errorf("live.UpdateParameters: close run: %w", err)
	}

	e.params = params
	e.machine = machine
	e.aligner = strategy.NewAligner(params.EMAPeriod)
	e.st = indicator.NewSuperTrend(params.STATRPeriod, params.STMultiplier)
	e.lastHourly = time.Time{}
	e.lastTen = time.Time{}
	e.runID = uuid.NewString()
	e.trades = 0
	e.startedAt = time.Now().UTC()

	if err := e.journal.SaveRun(ctx, e.runSummaryLocked(false)); err != nil {
		return fmt.Errorf("live.UpdateParameters: save run: %w", err)
	}
	e.log.Info("parameters updated", "run_id", e.runID)
	return nil
}

// Snapshot devuelve el estado observable actual, consistente.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		RunID:    e.runID,
		Symbol:   e.cfg.Symbol,
		Position: e.machine.Position(),
		Risk:     e.riskMgr.Snapshot(),
		Trades:   e.trades,
		LastBar:  e.lastTen,
	}
}

// shutdown cierra la posición abierta (si la hay) y sella el run. Usa un
// contexto limpio: el del loop ya está cancelado.
func (e *Engine) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	e.mu.Lock()
	var decision strategy.Decision
	if e.machine.Position().Open() && !e.lastTen.IsZero() {
		pos := e.machine.Position()
		closing := domain.Bar{Timestamp: e.lastTen.Add(time.Nanosecond), Close: pos.EntryPrice}
		// Sin barra nueva el único precio conocido es la entrada; el broker
		// real llenará a mercado.
		decision = e.machine.ForceExit(closing, domain.ExitEndOfData)
		if decision.Trade != nil {
			e.riskMgr.OnTradeClosed(decision.Trade.PnL, decision.Trade.ExitTime)
			e.trades++
		}
	}
	e.mu.Unlock()

	if decision.Intent != nil || decision.Trade != nil {
		e.dispatch(ctx, decision)
	}

	if err := e.journal.SaveRun(ctx, e.runSummary(true)); err != nil {
		return fmt.Errorf("live.shutdown: save run: %w", err)
	}
	e.log.Info("live engine stopped", "run_id", e.runID, "trades", e.trades)
	return nil
}

func (e *Engine) runSummary(finished bool) domain.RunSummary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runSummaryLocked(finished)
}

func (e *Engine) runSummaryLocked(finished bool) domain.RunSummary {
	run := domain.RunSummary{
		ID:             e.runID,
		Mode:           "live",
		Symbol:         e.cfg.Symbol,
		StartedAt:      e.startedAt,
		InitialCapital: e.cfg.InitialCapital,
		FinalEquity:    e.riskMgr.Equity(),
		TotalTrades:    e.trades,
	}
	if finished {
		run.FinishedAt = time.Now().UTC()
	}
	return run
}
