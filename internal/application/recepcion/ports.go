package recepcion

import (
	"context"

	"github.com/chefmanager/chefmanager-api/internal/domain/repository"
)

// TxRunner ejecuta la recepción completa (lote + movimiento + item + pedido)
// dentro de una sola transacción de BD: o se materializa todo, o nada.
type TxRunner interface {
	RunRecepcion(ctx context.Context, fn func(
		invRepo repository.InventarioRepository,
		movRepo repository.MovimientoRepository,
		itemRepo repository.PedidoItemRepository,
		pedidoRepo repository.PedidoRepository,
	) error) error
}
