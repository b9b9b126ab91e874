package dto

import "github.com/shopspring/decimal"

// ReceiveRequest confirma la recepción de un item de pedido.
// La fecha de caducidad llega como YYYY-MM-DD (formato del formulario).
type ReceiveRequest struct {
	LineID    string          `json:"pedido_item_id"`
	Quantity  decimal.Decimal `json:"cantidad"`
	LotNumber string          `json:"lote"`
	Expiry    string          `json:"fecha_caducidad"`
	Location  string          `json:"ubicacion"`
}

// ReceiveResponse resultado de la recepción: el lote creado y el estado
// actualizado de item y pedido, listo para imprimir la etiqueta.
type ReceiveResponse struct {
	Lot   LotResponse       `json:"inventario"`
	Line  OrderLineResponse `json:"item"`
	Order OrderResponse     `json:"pedido"`
}

// CodePreviewResponse preview del código que se generaría al confirmar hoy.
type CodePreviewResponse struct {
	Code string `json:"codigo_unico"`
}
