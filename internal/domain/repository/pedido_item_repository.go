package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/chefmanager/chefmanager-api/internal/domain/entity"
)

// PedidoItemRepository puerto de persistencia para items de pedido.
type PedidoItemRepository interface {
	GetByID(ctx context.Context, id string) (*entity.OrderLine, error)
	ListByOrder(ctx context.Context, orderID string) ([]*entity.OrderLine, error)
	// ApplyReceipt escritura condicional: avanza cantidad_recibida y estado solo
	// si cantidad_recibida todavía vale expected (compare-and-swap). Devuelve
	// false si otro escritor se adelantó; el llamador decide reintentar.
	ApplyReceipt(ctx context.Context, lineID string, expected, newReceived decimal.Decimal, newStatus entity.LineStatus) (bool, error)
	// CancelPending pasa a cancelado todos los items no terminales del pedido.
	CancelPending(ctx context.Context, orderID string) error
}
