package entity

import "github.com/shopspring/decimal"

// LineStatus estado cerrado de un item de pedido.
type LineStatus string

const (
	LinePending   LineStatus = "pendiente"
	LinePartial   LineStatus = "parcial"
	LineReceived  LineStatus = "recibido"
	LineCancelled LineStatus = "cancelado"
)

// Valid indica si el valor viene del vocabulario cerrado.
func (s LineStatus) Valid() bool {
	switch s {
	case LinePending, LinePartial, LineReceived, LineCancelled:
		return true
	}
	return false
}

// Terminal indica si el item ya no admite recepciones.
func (s LineStatus) Terminal() bool {
	return s == LineReceived || s == LineCancelled
}

// OrderLine representa un item de pedido: producto y cantidad solicitada.
// Solo el motor de recepción muta cantidad_recibida, y siempre hacia arriba.
type OrderLine struct {
	ID          string
	OrderID     string
	ProductID   string
	Requested   decimal.Decimal // cantidad_pedida
	Received    decimal.Decimal // cantidad_recibida, monótona no decreciente
	Status      LineStatus
	ProductName string // lookup de solo lectura para render, puede venir vacío
}

// Remaining devuelve lo pendiente por recibir.
func (l *OrderLine) Remaining() decimal.Decimal {
	return l.Requested.Sub(l.Received)
}

// StatusAfterReceipt calcula el estado del item tras recibir, dado el nuevo acumulado.
func StatusAfterReceipt(received, requested decimal.Decimal) LineStatus {
	if received.GreaterThanOrEqual(requested) {
		return LineReceived
	}
	return LinePartial
}

// DeriveOrderStatus deriva el estado del pedido como función pura de sus items.
// Reglas:
//   - recibido: todos los items están en recibido o cancelado, y al menos uno recibido.
//   - parcial: algún item tiene cantidad recibida > 0 pero no todos completos.
//   - en otro caso se conserva el estado actual.
func DeriveOrderStatus(current OrderStatus, lines []*OrderLine) OrderStatus {
	if current.Terminal() || len(lines) == 0 {
		return current
	}
	allDone := true
	anyReceived := false
	anyProgress := false
	for _, l := range lines {
		switch l.Status {
		case LineReceived:
			anyReceived = true
		case LineCancelled:
			// no cuenta para completitud
		default:
			allDone = false
		}
		if l.Received.GreaterThan(decimal.Zero) {
			anyProgress = true
		}
	}
	if allDone && anyReceived {
		return OrderReceived
	}
	if anyProgress {
		return OrderPartial
	}
	return current
}
