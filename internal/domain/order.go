package domain

import "time"

// OrderSide es el lado de una orden.
type OrderSide string

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

// OrderType distingue órdenes simples de brackets (entrada + TP + SL).
type OrderType string

const (
	Market  OrderType = "MARKET"
	Bracket OrderType = "BRACKET"
)

// OrderIntent es la intención de orden que emite la máquina de estados.
// El core no habla con el broker: el adapter la traduce y reporta el fill.
type OrderIntent struct {
	Side     OrderSide
	Type     OrderType
	Quantity int
	Price    float64 // precio de decisión (close de la barra)
	TPPrice  float64 // solo para BRACKET
	SLPrice  float64 // solo para BRACKET
	Time     time.Time
}

// Fill es la confirmación de ejecución reportada por el broker adapter.
type Fill struct {
	OrderID string
	Price   float64
	Time    time.Time
}
