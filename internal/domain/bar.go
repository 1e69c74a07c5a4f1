package domain

import "time"

// Timeframe identifica la resolución de una serie de barras.
type Timeframe string

const (
	Timeframe10M Timeframe = "10M"
	Timeframe1H  Timeframe = "1H"
)

// Duration devuelve la duración del periodo de la timeframe.
func (tf Timeframe) Duration() time.Duration {
	switch tf {
	case Timeframe10M:
		return 10 * time.Minute
	case Timeframe1H:
		return time.Hour
	default:
		return 0
	}
}

// Bar es una vela OHLCV cerrada. Timestamp es el inicio del periodo;
// la barra se considera cerrada a partir de CloseTime.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// CloseTime devuelve el instante en que la barra queda cerrada.
func (b Bar) CloseTime(tf Timeframe) time.Time {
	return b.Timestamp.Add(tf.Duration())
}

// HL2 es el punto medio high/low, base de las bandas del SuperTrend.
func (b Bar) HL2() float64 {
	return (b.High + b.Low) / 2
}

// EquityPoint es un punto de la curva de equity registrada por el replay.
type EquityPoint struct {
	Time   time.Time
	Equity float64
}
