package indicator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/trendbot/internal/domain"
)

func bar(high, low, close float64) domain.Bar {
	return domain.Bar{
		Timestamp: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		Open:      close,
		High:      high,
		Low:       low,
		Close:     close,
	}
}

func TestATR_WilderSmoothing(t *testing.T) {
	atr := NewATR(2)
	atr.Update(bar(11, 9, 10)) // tr = 2
	assert.False(t, atr.Ready())
	assert.InDelta(t, 2.0, atr.Value(), 1e-9)

	atr.Update(bar(12, 10, 11)) // tr = max(2, 2, 0) = 2 → media simple = 2
	assert.True(t, atr.Ready())
	assert.InDelta(t, 2.0, atr.Value(), 1e-9)

	atr.Update(bar(15, 11, 14)) // tr = max(4, 4, 0) = 4 → (2*1+4)/2 = 3
	assert.InDelta(t, 3.0, atr.Value(), 1e-9)
}

func TestATR_TrueRangeUsesPrevClose(t *testing.T) {
	atr := NewATR(1)
	atr.Update(bar(11, 9, 10))
	// Gap alcista: high-low = 1 pero |low-prevClose| = 4
	atr.Update(bar(15, 14, 14.5))
	assert.InDelta(t, 5.0, atr.Value(), 1e-9) // |15-10| = 5 domina
}

func TestSuperTrend_NotReadyBeforeWarmup(t *testing.T) {
	st := NewSuperTrend(3, 3.0)
	st.Update(bar(11, 9, 10))
	assert.False(t, st.Ready())
	assert.False(t, st.Bullish())
}

// Recorre la recurrencia completa con periodo 1 y multiplicador 1 para
// verificar seed, tightening de bandas y flips exactos en el cruce.
func TestSuperTrend_FlipExactlyOnCross(t *testing.T) {
	st := NewSuperTrend(1, 1.0)

	// Seed: atr=2, bandas 12/8, arranca bajista sobre la superior.
	st.Update(bar(11, 9, 10))
	require.True(t, st.Ready())
	assert.False(t, st.Bullish())
	assert.InDelta(t, 12.0, st.Value(), 1e-9)

	// Mismo rango: no hay cruce, no hay flip.
	st.Update(bar(11, 9, 10))
	assert.False(t, st.Bullish())
	assert.InDelta(t, 12.0, st.Value(), 1e-9)

	// Close 12.5 cruza la banda superior vigente (12) → flip alcista.
	st.Update(bar(13, 12, 12.5))
	assert.True(t, st.Bullish())
	assert.InDelta(t, 9.5, st.Value(), 1e-9)

	// Sigue alcista: la banda inferior solo sube, nunca baja.
	st.Update(bar(13, 12, 12.2))
	assert.True(t, st.Bullish())
	assert.InDelta(t, 11.5, st.Value(), 1e-9)

	// Close 11.0 cruza la banda inferior (11.5) → flip bajista.
	st.Update(bar(11.5, 10.8, 11.0))
	assert.False(t, st.Bullish())
	assert.InDelta(t, 12.55, st.Value(), 1e-9)
}

func TestSuperTrend_NoDoubleFlipWithoutRecross(t *testing.T) {
	st := NewSuperTrend(1, 1.0)
	st.Update(bar(11, 9, 10))
	st.Update(bar(13, 12, 12.5)) // flip alcista
	require.True(t, st.Bullish())

	// Barras laterales por encima de la banda: la dirección no cambia.
	for i := 0; i < 5; i++ {
		st.Update(bar(13, 12.2, 12.6))
		assert.True(t, st.Bullish(), "bar %d", i)
	}
}
