package notify

import (
	"bytes"
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/trendbot/internal/analytics"
	"github.com/alejandrodnm/trendbot/internal/domain"
)

func sampleTrade() domain.TradeRecord {
	entry := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	return domain.TradeRecord{
		ID:         "T-0001",
		EntryTime:  entry,
		EntryPrice: 19850.25,
		ExitTime:   entry.Add(40 * time.Minute),
		ExitPrice:  20088.5,
		Quantity:   2,
		ExitReason: domain.ExitTakeProfit,
		PnL:        9530,
		PnLPct:     1.2,
	}
}

func TestNotifyTradeLine(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf)

	require.NoError(t, c.NotifyTrade(context.Background(), sampleTrade()))

	out := buf.String()
	assert.Contains(t, out, "T-0001")
	assert.Contains(t, out, "TAKE_PROFIT")
	assert.Contains(t, out, "qty:2")
	assert.Contains(t, out, "pnl:$9530.00")
}

func TestPrintTradesTable(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf)

	c.PrintTrades([]domain.TradeRecord{sampleTrade()})

	out := buf.String()
	assert.Contains(t, out, "TRADES (1)")
	assert.Contains(t, out, "T-0001")
	assert.Contains(t, out, "TAKE_PROFIT")
	assert.Contains(t, out, "19850.25")
}

func TestPrintTradesEmpty(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf)

	c.PrintTrades(nil)
	assert.Contains(t, buf.String(), "No trades executed")
}

func TestPrintReportShowsNaNAsNA(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf)

	report := analytics.Report{
		WinRate:         math.NaN(),
		ProfitFactor:    math.NaN(),
		Expectancy:      math.NaN(),
		Sharpe:          math.NaN(),
		Sortino:         math.NaN(),
		Calmar:          math.NaN(),
		AnnualReturnPct: math.NaN(),
	}
	c.PrintReport(report, 10000, 10000, 30*24*time.Hour)

	out := buf.String()
	assert.Contains(t, out, "Win rate:        n/a")
	assert.Contains(t, out, "Sharpe:          n/a")
	// Nunca se imprime un cero engañoso en ratios indefinidos
	assert.NotContains(t, out, "Sharpe:          0.00")
}

func TestPrintReportFormatsDefinedRatios(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf)

	report := analytics.Report{
		TotalTrades:     5,
		Wins:            3,
		Losses:          2,
		WinRate:         60,
		ProfitFactor:    2.5,
		Expectancy:      70,
		Sharpe:          1.84,
		Sortino:         math.NaN(),
		Calmar:          math.NaN(),
		AnnualReturnPct: 42.5,
		MaxDrawdown:     350,
		MaxDrawdownPct:  3.5,
		DrawdownBars:    12,
	}
	c.PrintReport(report, 10000, 10350, 30*24*time.Hour)

	out := buf.String()
	assert.Contains(t, out, "5 (3 wins / 2 losses)")
	assert.Contains(t, out, "60.0%")
	assert.Contains(t, out, "2.50")
	assert.Contains(t, out, "1.84")
	assert.Contains(t, out, "Sortino:         n/a")
	assert.Contains(t, out, "$350.00 (3.50%, 12 bars)")
}
