package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tipo cerrado de movimiento del ledger.
type MovementKind string

const (
	MovementInbound     MovementKind = "entrada"
	MovementConsumption MovementKind = "consumo"
	MovementWaste       MovementKind = "merma"
	MovementTransfer    MovementKind = "transferencia"
	MovementAdjustment  MovementKind = "ajuste"
)

// Valid indica si el valor viene del vocabulario cerrado.
func (k MovementKind) Valid() bool {
	switch k {
	case MovementInbound, MovementConsumption, MovementWaste, MovementTransfer, MovementAdjustment:
		return true
	}
	return false
}

// Depletion indica si el tipo corresponde a una salida de stock registrable por cocina.
func (k MovementKind) Depletion() bool {
	return k == MovementConsumption || k == MovementWaste
}

// Movement es una entrada inmutable del ledger: registra un delta firmado de
// cantidad sobre un lote, con la cantidad antes y después. Nunca se actualiza
// ni se borra; el ledger es la fuente de verdad del historial de cantidades.
type Movement struct {
	ID       string
	LotID    string
	Kind     MovementKind
	Delta    decimal.Decimal // positivo entrada, negativo consumo/merma
	Before   decimal.Decimal // cantidad_anterior
	After    decimal.Decimal // cantidad_posterior
	ActorID  string
	Reason   string
	CreatedAt time.Time

	LotCode     string // lookups de solo lectura para render
	ProductName string
}
