package indicator

import "github.com/alejandrodnm/trendbot/internal/domain"

// SuperTrend calcula la línea y dirección del indicador de forma incremental.
//
// Bandas básicas: (high+low)/2 ± multiplier*ATR. Las bandas finales solo se
// mueven hacia el precio, nunca se alejan, salvo que el close previo las haya
// cruzado (regla estándar de tightening). La recurrencia depende de las bandas
// finales PREVIAS, no de las básicas actuales: el estado persiste entre barras.
//
// Dirección alcista cuando close > línea; el flip ocurre exactamente en la
// barra cuyo close cruza la banda opuesta vigente.
type SuperTrend struct {
	atr        *ATR
	multiplier float64

	prevClose float64
	upper     float64 // banda superior final
	lower     float64 // banda inferior final
	bullish   bool
	line      float64
	seeded    bool
}

// NewSuperTrend crea un SuperTrend con el periodo de ATR y multiplicador dados.
func NewSuperTrend(atrPeriod int, multiplier float64) *SuperTrend {
	return &SuperTrend{
		atr:        NewATR(atrPeriod),
		multiplier: multiplier,
	}
}

// Update incorpora una barra cerrada del timeframe fino.
func (s *SuperTrend) Update(bar domain.Bar) {
	s.atr.Update(bar)
	if !s.atr.Ready() {
		s.prevClose = bar.Close
		return
	}

	basicUpper := bar.HL2() + s.multiplier*s.atr.Value()
	basicLower := bar.HL2() - s.multiplier*s.atr.Value()

	if !s.seeded {
		// Primera barra con ATR listo: arranca bajista sobre la banda superior.
		s.upper = basicUpper
		s.lower = basicLower
		s.bullish = false
		s.line = s.upper
		s.seeded = true
		s.prevClose = bar.Close
		return
	}

	if basicUpper < s.upper || s.prevClose > s.upper {
		s.upper = basicUpper
	}
	if basicLower > s.lower || s.prevClose < s.lower {
		s.lower = basicLower
	}

	if s.bullish {
		if bar.Close <= s.lower {
			s.bullish = false
			s.line = s.upper
		} else {
			s.line = s.lower
		}
	} else {
		if bar.Close >= s.upper {
			s.bullish = true
			s.line = s.lower
		} else {
			s.line = s.upper
		}
	}

	s.prevClose = bar.Close
}

// Value devuelve la línea SuperTrend vigente.
func (s *SuperTrend) Value() float64 {
	return s.line
}

// Bullish devuelve true si la dirección vigente es alcista.
func (s *SuperTrend) Bullish() bool {
	return s.seeded && s.bullish
}

// Ready devuelve true cuando el ATR completó el warm-up y hay línea válida.
func (s *SuperTrend) Ready() bool {
	return s.seeded
}
