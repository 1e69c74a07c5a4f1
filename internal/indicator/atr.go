package indicator

import (
	"math"

	"github.com/alejandrodnm/trendbot/internal/domain"
)

// ATR es un Average True Range con suavizado de Wilder.
//
// Las primeras `period` barras usan la media simple del true range; después
// aplica la recurrencia atr = (atr*(n-1) + tr) / n. Idéntico en backtest y
// live, que es el invariante que importa.
type ATR struct {
	period    int
	prevClose float64
	hasPrev   bool
	sum       float64
	count     int
	value     float64
}

// NewATR crea un ATR del periodo dado.
func NewATR(period int) *ATR {
	return &ATR{period: period}
}

// Update incorpora una barra y devuelve el ATR actualizado.
func (a *ATR) Update(bar domain.Bar) float64 {
	tr := bar.High - bar.Low
	if a.hasPrev {
		tr = math.Max(tr, math.Max(
			math.Abs(bar.High-a.prevClose),
			math.Abs(bar.Low-a.prevClose),
		))
	}

	if a.count < a.period {
		a.sum += tr
		a.count++
		a.value = a.sum / float64(a.count)
	} else {
		a.value = (a.value*float64(a.period-1) + tr) / float64(a.period)
	}

	a.prevClose = bar.Close
	a.hasPrev = true
	return a.value
}

// Value devuelve el último ATR calculado.
func (a *ATR) Value() float64 {
	return a.value
}

// Ready devuelve true tras `period` barras observadas.
func (a *ATR) Ready() bool {
	return a.count >= a.period
}
