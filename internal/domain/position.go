package domain

import "time"

// PositionState es el estado de la posición. Solo se opera en largo.
type PositionState string

const (
	Flat PositionState = "FLAT"
	Long PositionState = "LONG"
)

// Position es la posición abierta (como mucho una por instancia de estrategia,
// sin piramidación). Existe exactamente entre una entrada y su salida.
type Position struct {
	State      PositionState
	EntryPrice float64
	EntryTime  time.Time
	Quantity   int
	TPPrice    float64
	SLPrice    float64
}

// Open devuelve true si hay una posición abierta.
func (p Position) Open() bool {
	return p.State == Long
}
