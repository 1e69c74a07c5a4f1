package indicator

// EMA es una media móvil exponencial incremental.
//
// Se siembra con el primer close (semántica ewm adjust=false); Ready() no es
// true hasta haber visto `period` barras — el output previo al warm-up nunca
// debe tratarse como confirmación.
type EMA struct {
	period int
	alpha  float64
	value  float64
	seen   int
}

// NewEMA crea una EMA con k = 2/(period+1).
func NewEMA(period int) *EMA {
	return &EMA{
		period: period,
		alpha:  2.0 / float64(period+1),
	}
}

// Update incorpora un nuevo close y devuelve el valor actualizado.
func (e *EMA) Update(close float64) float64 {
	if e.seen == 0 {
		e.value = close
	} else {
		e.value = close*e.alpha + e.value*(1-e.alpha)
	}
	e.seen++
	return e.value
}

// Value devuelve el último valor calculado.
func (e *EMA) Value() float64 {
	return e.value
}

// Ready devuelve true cuando se han observado al menos `period` barras.
func (e *EMA) Ready() bool {
	return e.seen >= e.period
}

// Reset descarta todo el estado acumulado.
func (e *EMA) Reset() {
	e.value = 0
	e.seen = 0
}
