package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chefmanager/chefmanager-api/internal/application/inventario"
	"github.com/chefmanager/chefmanager-api/internal/application/pedidos"
	"github.com/chefmanager/chefmanager-api/internal/application/recepcion"
	"github.com/chefmanager/chefmanager-api/internal/domain/repository"
)

var (
	_ inventario.TxRunner = (*TxRunner)(nil)
	_ pedidos.TxRunner    = (*TxRunner)(nil)
	_ recepcion.TxRunner  = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL, con
// repositorios atados a esa tx.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run transacción del ledger: lote + movimiento.
func (r *TxRunner) Run(ctx context.Context, fn func(
	invRepo repository.InventarioRepository,
	movRepo repository.MovimientoRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewInventarioRepository(tx), NewMovimientoRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunPedidos transacción del ciclo de pedidos: pedido + items.
func (r *TxRunner) RunPedidos(ctx context.Context, fn func(
	pedidoRepo repository.PedidoRepository,
	itemRepo repository.PedidoItemRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewPedidoRepository(tx), NewPedidoItemRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunRecepcion transacción de la recepción completa: lote + movimiento + item + pedido.
func (r *TxRunner) RunRecepcion(ctx context.Context, fn func(
	invRepo repository.InventarioRepository,
	movRepo repository.MovimientoRepository,
	itemRepo repository.PedidoItemRepository,
	pedidoRepo repository.PedidoRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = fn(
		NewInventarioRepository(tx),
		NewMovimientoRepository(tx),
		NewPedidoItemRepository(tx),
		NewPedidoRepository(tx),
	)
	if err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
