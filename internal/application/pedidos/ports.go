package pedidos

import (
	"context"

	"github.com/chefmanager/chefmanager-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios de pedidos atados a esa tx (creación y cancelación atómicas
// de pedido + items).
type TxRunner interface {
	RunPedidos(ctx context.Context, fn func(
		pedidoRepo repository.PedidoRepository,
		itemRepo repository.PedidoItemRepository,
	) error) error
}
