package strategy

// aligner.go — alineación multi-timeframe sin lookahead.
//
// El timeframe fino (10M) solo puede ver la relación close > EMA del último
// bar horario CERRADO. Un bar horario en curso nunca contribuye: la
// confirmación se cachea exclusivamente en el evento de cierre horario.

import (
	"fmt"
	"time"

	"github.com/alejandrodnm/trendbot/internal/domain"
	"github.com/alejandrodnm/trendbot/internal/indicator"
)

// Aligner mantiene la EMA horaria y expone al path de decisión de 10M la
// confirmación del último bar horario cerrado.
type Aligner struct {
	ema        *indicator.EMA
	confirmed  bool
	hasClosed  bool
	lastHourly time.Time
}

// NewAligner crea un aligner con la EMA del periodo dado sin estado previo.
func NewAligner(emaPeriod int) *Aligner {
	return &Aligner{ema: indicator.NewEMA(emaPeriod)}
}

// OnHourlyClose procesa el cierre de un bar horario. Rechaza timestamps
// duplicados o fuera de orden: el bar se ignora y el stream continúa.
func (a *Aligner) OnHourlyClose(bar domain.Bar) error {
	if !a.lastHourly.IsZero() && !bar.Timestamp.After(a.lastHourly) {
		return fmt.Errorf("aligner: hourly bar %s not after %s",
			bar.Timestamp.Format(time.RFC3339), a.lastHourly.Format(time.RFC3339))
	}
	a.lastHourly = bar.Timestamp

	a.ema.Update(bar.Close)
	if a.ema.Ready() {
		a.confirmed = bar.Close > a.ema.Value()
		a.hasClosed = true
	}
	return nil
}

// EMABull devuelve true solo si el último bar horario cerrado confirmó
// close > EMA con la EMA ya calentada. Sin warm-up no hay confirmación.
func (a *Aligner) EMABull() bool {
	return a.hasClosed && a.confirmed
}

// EMAValue devuelve el valor actual de la EMA horaria.
func (a *Aligner) EMAValue() float64 {
	return a.ema.Value()
}

// Ready devuelve true cuando existe al menos una confirmación válida posible.
func (a *Aligner) Ready() bool {
	return a.hasClosed
}
