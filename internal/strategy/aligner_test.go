package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/trendbot/internal/domain"
)

func hourlyBar(ts time.Time, close float64) domain.Bar {
	return domain.Bar{
		Timestamp: ts,
		Open:      close,
		High:      close + 1,
		Low:       close - 1,
		Close:     close,
	}
}

func TestAligner_NotConfirmedDuringWarmup(t *testing.T) {
	a := NewAligner(3)
	ts := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	// Dos barras: EMA(3) aún sin warm-up → nunca confirma, aunque close > EMA.
	require.NoError(t, a.OnHourlyClose(hourlyBar(ts, 100)))
	require.NoError(t, a.OnHourlyClose(hourlyBar(ts.Add(time.Hour), 110)))
	assert.False(t, a.EMABull())
	assert.False(t, a.Ready())
}

func TestAligner_ConfirmsOnClosedBarAboveEMA(t *testing.T) {
	a := NewAligner(3)
	ts := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	closes := []float64{100, 100, 100, 120}
	for i, c := range closes {
		require.NoError(t, a.OnHourlyClose(hourlyBar(ts.Add(time.Duration(i)*time.Hour), c)))
	}
	assert.True(t, a.EMABull())
}

func TestAligner_FlipsOffWhenCloseBelowEMA(t *testing.T) {
	a := NewAligner(3)
	ts := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	closes := []float64{100, 100, 100, 120, 60}
	for i, c := range closes {
		require.NoError(t, a.OnHourlyClose(hourlyBar(ts.Add(time.Duration(i)*time.Hour), c)))
	}
	assert.False(t, a.EMABull())
}

// El flag cacheado es el del último bar CERRADO: sigue valiendo hasta que
// llega el siguiente cierre horario, sin importar lo que haga el precio
// intrahora.
func TestAligner_ConfirmationStableBetweenHourlyCloses(t *testing.T) {
	a := NewAligner(2)
	ts := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, a.OnHourlyClose(hourlyBar(ts, 100)))
	require.NoError(t, a.OnHourlyClose(hourlyBar(ts.Add(time.Hour), 130)))
	require.True(t, a.EMABull())

	// Sin nuevos cierres horarios el flag no cambia.
	for i := 0; i < 6; i++ {
		assert.True(t, a.EMABull())
	}
}

func TestAligner_RejectsOutOfOrderAndDuplicates(t *testing.T) {
	a := NewAligner(2)
	ts := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, a.OnHourlyClose(hourlyBar(ts, 100)))
	assert.Error(t, a.OnHourlyClose(hourlyBar(ts, 100)))                 // duplicado
	assert.Error(t, a.OnHourlyClose(hourlyBar(ts.Add(-time.Hour), 90))) // fuera de orden
	require.NoError(t, a.OnHourlyClose(hourlyBar(ts.Add(time.Hour), 101)))
}
