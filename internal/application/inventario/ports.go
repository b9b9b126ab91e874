package inventario

import (
	"context"

	"github.com/chefmanager/chefmanager-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que el lote y su movimiento se
// escriban juntos o no se escriban.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		invRepo repository.InventarioRepository,
		movRepo repository.MovimientoRepository,
	) error) error
}
