package repository

import (
	"context"

	"github.com/chefmanager/chefmanager-api/internal/domain/entity"
)

// PedidoRepository puerto de persistencia para pedidos (DIP).
// Los métodos Get* devuelven (nil, nil) cuando el registro no existe; el caso
// de uso traduce a domain.ErrNotFound.
type PedidoRepository interface {
	// Create persiste el pedido y sus items en una sola operación y completa
	// Numero y CreatedAt con los valores asignados por la base.
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// GetByIDForUpdate lee el pedido bloqueando su fila hasta el fin de la
	// transacción. Dos recepciones concurrentes del mismo pedido se serializan
	// aquí: la última deriva el estado sobre items ya confirmados.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Order, error)
	// UpdateStatus escribe el estado derivado. Último escritor gana: es seguro
	// porque el estado siempre se deriva de una lectura fresca de los items.
	UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) error
	// ListByUnit lista pedidos de la unidad, opcionalmente filtrados por estado
	// (status vacío = todos), más recientes primero.
	ListByUnit(ctx context.Context, unitID string, status entity.OrderStatus, limit, offset int) ([]*entity.Order, error)
	// ListPendingReceiving devuelve pedidos enviados o parciales de la unidad,
	// con sus items cargados, para la pantalla de recepción.
	ListPendingReceiving(ctx context.Context, unitID string) ([]*entity.Order, error)
}
