package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineInput un renglón (producto, cantidad) al crear o guardar un pedido.
type OrderLineInput struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"cantidad"`
}

// SubmitOrderRequest crea un pedido en estado enviado.
type SubmitOrderRequest struct {
	Lines []OrderLineInput `json:"items"`
	Notes string           `json:"notas"`
}

// OrderLineResponse item de pedido en respuestas.
type OrderLineResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"producto,omitempty"`
	Requested   decimal.Decimal `json:"cantidad_pedida"`
	Received    decimal.Decimal `json:"cantidad_recibida"`
	Status      string          `json:"estado"`
}

// OrderResponse pedido en respuestas, con items si se cargaron.
type OrderResponse struct {
	ID        string              `json:"id"`
	Numero    int64               `json:"numero_pedido"`
	UnitID    string              `json:"unidad_id"`
	Requester string              `json:"solicitante"`
	Status    string              `json:"estado"`
	Notes     string              `json:"notas,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	Lines     []OrderLineResponse `json:"items,omitempty"`
}
