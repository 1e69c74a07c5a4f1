package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/trendbot/internal/domain"
)

func testParams() domain.StrategyParameters {
	return domain.StrategyParameters{
		EMAPeriod:          2,
		STATRPeriod:        2,
		STMultiplier:       1.0,
		TPPct:              1.2,
		SLPct:              0.4,
		ContractMultiplier: 1,
	}
}

func testLimits() domain.RiskLimits {
	return domain.RiskLimits{
		MaxDailyLossPct: 90,
		MaxDrawdownPct:  90,
		RiskPerTradePct: 1,
		MaxPositionPct:  100,
		MinContracts:    1,
		MaxContracts:    10,
	}
}

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

// genTen genera barras de 10M con closes en tendencia lineal.
func genTen(n int, base, step float64) []domain.Bar {
	bars := make([]domain.Bar, n)
	for i := range bars {
		c := base + step*float64(i)
		bars[i] = domain.Bar{
			Timestamp: t0.Add(time.Duration(i) * 10 * time.Minute),
			Open:      c - step,
			High:      c + 0.2,
			Low:       c - 0.2,
			Close:     c,
			Volume:    100,
		}
	}
	return bars
}

// genHourly genera barras horarias empezando una hora antes que las de 10M,
// de modo que el primer cierre horario coincide con el arranque del replay.
func genHourly(n int, base, step float64) []domain.Bar {
	bars := make([]domain.Bar, n)
	for i := range bars {
		c := base + step*float64(i)
		bars[i] = domain.Bar{
			Timestamp: t0.Add(time.Duration(i-1) * time.Hour),
			Open:      c - step,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    500,
		}
	}
	return bars
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(testParams(), testLimits(), 10000)
	require.NoError(t, err)
	return e
}

func TestNewEngine_RejectsInvalidConfig(t *testing.T) {
	p := testParams()
	p.STATRPeriod = -1
	_, err := NewEngine(p, testLimits(), 10000)
	assert.Error(t, err)

	l := testLimits()
	l.RiskPerTradePct = 0
	_, err = NewEngine(testParams(), l, 10000)
	assert.Error(t, err)

	_, err = NewEngine(testParams(), testLimits(), 0)
	assert.Error(t, err)
}

func TestRun_UptrendTradesAndReenters(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.Run(genHourly(16, 40, 5), genTen(80, 50, 0.05))
	require.NoError(t, err)
	require.NotEmpty(t, res.Trades)

	var tpExits int
	for _, tr := range res.Trades {
		assert.Greater(t, tr.Quantity, 0)
		assert.True(t, tr.ExitTime.After(tr.EntryTime) || tr.ExitTime.Equal(tr.EntryTime))
		if tr.ExitReason == domain.ExitTakeProfit {
			tpExits++
		}
	}
	// Tendencia sostenida: hay al menos un TP y una re-entrada posterior.
	assert.GreaterOrEqual(t, tpExits, 1)
	assert.GreaterOrEqual(t, len(res.Trades), 2)
	assert.Greater(t, res.FinalEquity, 10000.0)
	assert.GreaterOrEqual(t, len(res.Equity), 80)
}

func TestRun_DeterministicLedger(t *testing.T) {
	hourly := genHourly(16, 40, 5)
	ten := genTen(80, 50, 0.05)

	res1, err := newTestEngine(t).Run(hourly, ten)
	require.NoError(t, err)
	res2, err := newTestEngine(t).Run(hourly, ten)
	require.NoError(t, err)

	assert.Equal(t, res1.Trades, res2.Trades)
	assert.Equal(t, res1.Equity, res2.Equity)
	assert.Equal(t, res1.FinalEquity, res2.FinalEquity)
}

// SuperTrend alcista pero sin confirmación horaria cerrada → cero trades.
func TestRun_NoTradesWithoutHourlyConfirmation(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.Run(genHourly(16, 100, -10), genTen(80, 50, 0.05))
	require.NoError(t, err)
	assert.Empty(t, res.Trades)
	assert.Equal(t, 10000.0, res.FinalEquity)
}

func TestRun_EndOfDataClosesOpenPosition(t *testing.T) {
	e := newTestEngine(t)

	// Serie corta: la posición abre pero el TP no llega antes del final.
	res, err := e.Run(genHourly(5, 40, 5), genTen(16, 50, 0.05))
	require.NoError(t, err)
	require.NotEmpty(t, res.Trades)

	last := res.Trades[len(res.Trades)-1]
	assert.Equal(t, domain.ExitEndOfData, last.ExitReason)
}

func TestRun_SkipsOutOfOrderBars(t *testing.T) {
	e := newTestEngine(t)

	ten := genTen(80, 50, 0.05)
	// Duplicado en mitad del stream: se descarta con diagnóstico, sin abortar.
	ten[40] = ten[39]

	res, err := e.Run(genHourly(16, 40, 5), ten)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.SkippedBars, 1)
	assert.NotEmpty(t, res.Trades)
}

func TestDuration(t *testing.T) {
	assert.Equal(t, 30*time.Minute, Duration(genTen(3, 50, 0.05), domain.Timeframe10M))
	assert.Zero(t, Duration(nil, domain.Timeframe10M))
}
