package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DepleteRequest registra un consumo o merma contra un lote.
type DepleteRequest struct {
	Quantity decimal.Decimal `json:"cantidad"`
	Kind     string          `json:"tipo"` // consumo | merma
	Reason   string          `json:"motivo"`
}

// LotResponse lote en respuestas, con la clasificación de caducidad derivada.
type LotResponse struct {
	ID          string          `json:"id"`
	Code        string          `json:"codigo_unico"`
	UnitID      string          `json:"unidad_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"producto,omitempty"`
	LotNumber   string          `json:"lote"`
	Expiry      time.Time       `json:"fecha_caducidad"`
	ReceivedAt  time.Time       `json:"fecha_recibido"`
	Initial     decimal.Decimal `json:"cantidad_inicial"`
	Current     decimal.Decimal `json:"cantidad_actual"`
	Status      string          `json:"estado"`
	ExpiryClass string          `json:"caducidad"` // vigente | por_caducar | caducado
	Location    string          `json:"ubicacion,omitempty"`
}

// MovementResponse movimiento del ledger en respuestas.
type MovementResponse struct {
	ID          string          `json:"id"`
	LotID       string          `json:"inventario_id"`
	LotCode     string          `json:"codigo_unico,omitempty"`
	ProductName string          `json:"producto,omitempty"`
	Kind        string          `json:"tipo"`
	Delta       decimal.Decimal `json:"cantidad"`
	Before      decimal.Decimal `json:"cantidad_anterior"`
	After       decimal.Decimal `json:"cantidad_posterior"`
	ActorID     string          `json:"usuario_id"`
	Reason      string          `json:"motivo,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// LotMovementsResponse kardex de un lote: historial completo más el saldo que
// suman los deltas del ledger, contrastable con la cantidad actual del lote.
type LotMovementsResponse struct {
	Movements []MovementResponse `json:"movimientos"`
	Balance   decimal.Decimal    `json:"saldo"`
	Current   decimal.Decimal    `json:"cantidad_actual"`
}

// InventoryStatsResponse totales del tablero de inventario.
type InventoryStatsResponse struct {
	Activos    int `json:"total"`
	PorCaducar int `json:"por_caducar"`
	Agotados   int `json:"agotados"`
}
