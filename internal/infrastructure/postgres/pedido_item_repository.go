package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/chefmanager/chefmanager-api/internal/domain/entity"
	"github.com/chefmanager/chefmanager-api/internal/domain/repository"
)

var _ repository.PedidoItemRepository = (*PedidoItemRepo)(nil)

// PedidoItemRepo implementación de PedidoItemRepository sobre PostgreSQL.
type PedidoItemRepo struct {
	q Querier
}

// NewPedidoItemRepository construye el adaptador de items de pedido.
func NewPedidoItemRepository(q Querier) *PedidoItemRepo {
	return &PedidoItemRepo{q: q}
}

const itemColumns = `
	i.id, i.pedido_id, i.producto_id, i.cantidad_pedida, i.cantidad_recibida,
	i.estado, p.nombre`

func scanLine(row pgx.Row) (*entity.OrderLine, error) {
	var l entity.OrderLine
	var status string
	err := row.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Requested, &l.Received,
		&status, &l.ProductName)
	if err != nil {
		return nil, err
	}
	l.Status = entity.LineStatus(status)
	return &l, nil
}

// GetByID obtiene un item con el nombre del producto. (nil, nil) si no existe.
func (r *PedidoItemRepo) GetByID(ctx context.Context, id string) (*entity.OrderLine, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM pedido_items i
		JOIN productos p ON p.id = i.producto_id
		WHERE i.id = $1`
	line, err := scanLine(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return line, nil
}

// ListByOrder items del pedido en orden de inserción.
func (r *PedidoItemRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.OrderLine, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM pedido_items i
		JOIN productos p ON p.id = i.producto_id
		WHERE i.pedido_id = $1
		ORDER BY i.created_at ASC, i.id ASC`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var lines []*entity.OrderLine
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// ApplyReceipt avanza cantidad_recibida y estado solo si cantidad_recibida
// todavía vale expected. Devuelve false ante un snapshot obsoleto.
func (r *PedidoItemRepo) ApplyReceipt(ctx context.Context, lineID string, expected, newReceived decimal.Decimal, newStatus entity.LineStatus) (bool, error) {
	query := `
		UPDATE pedido_items
		SET cantidad_recibida = $3, estado = $4
		WHERE id = $1 AND cantidad_recibida = $2`
	tag, err := r.q.Exec(ctx, query, lineID, expected, newReceived, string(newStatus))
	if err != nil {
		return false, fmt.Errorf("apply receipt: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// CancelPending pasa a cancelado los items no terminales del pedido.
func (r *PedidoItemRepo) CancelPending(ctx context.Context, orderID string) error {
	query := `
		UPDATE pedido_items
		SET estado = $2
		WHERE pedido_id = $1 AND estado NOT IN ($3, $4)`
	_, err := r.q.Exec(ctx, query, orderID,
		string(entity.LineCancelled), string(entity.LineReceived), string(entity.LineCancelled))
	if err != nil {
		return fmt.Errorf("cancel items: %w", err)
	}
	return nil
}
