package entity

import "time"

// OrderStatus estado cerrado del pedido. La legalidad de las transiciones se
// decide aquí, nunca comparando strings sueltos en los casos de uso.
type OrderStatus string

const (
	OrderDraft     OrderStatus = "borrador"
	OrderSubmitted OrderStatus = "enviado"
	OrderPartial   OrderStatus = "parcial"
	OrderReceived  OrderStatus = "recibido"
	OrderCancelled OrderStatus = "cancelado"
)

// Valid indica si el valor viene del vocabulario cerrado (para datos leídos de la DB).
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderDraft, OrderSubmitted, OrderPartial, OrderReceived, OrderCancelled:
		return true
	}
	return false
}

// Terminal indica si el pedido ya no admite transiciones.
func (s OrderStatus) Terminal() bool {
	return s == OrderReceived || s == OrderCancelled
}

// CanCancel indica si desde este estado se permite cancelar.
func (s OrderStatus) CanCancel() bool {
	return !s.Terminal()
}

// CanSubmit indica si el pedido puede enviarse (solo desde borrador).
func (s OrderStatus) CanSubmit() bool {
	return s == OrderDraft
}

// CanReceive indica si el pedido admite recepciones contra sus items.
func (s OrderStatus) CanReceive() bool {
	return s == OrderSubmitted || s == OrderPartial
}

// Order representa un pedido de una unidad. Se crea una vez y solo muta por
// las reglas de transición; cancelar es un estado, nunca un borrado.
type Order struct {
	ID        string
	Numero    int64 // numero_pedido secuencial, legible para el personal
	UnitID    string
	Requester string // usuario que pide
	Status    OrderStatus
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
	Lines     []*OrderLine
}
