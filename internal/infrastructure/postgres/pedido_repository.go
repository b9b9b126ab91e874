package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/chefmanager/chefmanager-api/internal/domain/entity"
	"github.com/chefmanager/chefmanager-api/internal/domain/repository"
)

var _ repository.PedidoRepository = (*PedidoRepo)(nil)

// PedidoRepo implementación de PedidoRepository sobre PostgreSQL (usable con pool o tx).
type PedidoRepo struct {
	q Querier
}

// NewPedidoRepository construye el adaptador de pedidos. Pasar pool o tx (Querier).
func NewPedidoRepository(q Querier) *PedidoRepo {
	return &PedidoRepo{q: q}
}

// Create persiste el pedido y sus items. numero_pedido lo asigna la secuencia
// de la tabla y created_at el default; ambos se devuelven en el entity.
func (r *PedidoRepo) Create(ctx context.Context, order *entity.Order) error {
	query := `
		INSERT INTO pedidos (id, unidad_id, solicitante, estado, notas)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		RETURNING numero_pedido, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		order.ID, order.UnitID, order.Requester, string(order.Status), order.Notes,
	).Scan(&order.Numero, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert pedido: %w", err)
	}
	for _, line := range order.Lines {
		itemQuery := `
			INSERT INTO pedido_items (id, pedido_id, producto_id, cantidad_pedida, cantidad_recibida, estado)
			VALUES ($1, $2, $3, $4, $5, $6)`
		_, err := r.q.Exec(ctx, itemQuery,
			line.ID, order.ID, line.ProductID, line.Requested, line.Received, string(line.Status),
		)
		if err != nil {
			return fmt.Errorf("insert pedido_item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene un pedido por ID, sin items. Devuelve (nil, nil) si no existe.
func (r *PedidoRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	query := `
		SELECT id, numero_pedido, unidad_id, solicitante, estado,
		       COALESCE(notas, ''), created_at, updated_at
		FROM pedidos WHERE id = $1`
	order, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pedido: %w", err)
	}
	return order, nil
}

// GetByIDForUpdate obtiene el pedido bloqueando su fila (SELECT ... FOR UPDATE).
// Recepciones concurrentes del mismo pedido esperan aquí el commit de la
// anterior, así la derivación de estado nunca lee items a medias.
func (r *PedidoRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	query := `
		SELECT id, numero_pedido, unidad_id, solicitante, estado,
		       COALESCE(notas, ''), created_at, updated_at
		FROM pedidos WHERE id = $1
		FOR UPDATE`
	order, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pedido for update: %w", err)
	}
	return order, nil
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	var status string
	err := row.Scan(&o.ID, &o.Numero, &o.UnitID, &o.Requester, &status,
		&o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = entity.OrderStatus(status)
	return &o, nil
}

// UpdateStatus escribe el estado derivado (o la cancelación).
func (r *PedidoRepo) UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) error {
	query := `UPDATE pedidos SET estado = $2, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, string(status))
	if err != nil {
		return fmt.Errorf("update estado pedido: %w", err)
	}
	return nil
}

// ListByUnit pedidos de la unidad, más recientes primero, filtro opcional por estado.
func (r *PedidoRepo) ListByUnit(ctx context.Context, unitID string, status entity.OrderStatus, limit, offset int) ([]*entity.Order, error) {
	query := `
		SELECT id, numero_pedido, unidad_id, solicitante, estado,
		       COALESCE(notas, ''), created_at, updated_at
		FROM pedidos
		WHERE unidad_id = $1 AND ($2 = '' OR estado = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, unitID, string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list pedidos: %w", err)
	}
	defer rows.Close()

	var orders []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pedido: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ListPendingReceiving pedidos enviados o parciales de la unidad, con items
// cargados, para la pantalla de recepción.
func (r *PedidoRepo) ListPendingReceiving(ctx context.Context, unitID string) ([]*entity.Order, error) {
	orders, err := r.listByStatuses(ctx, unitID, entity.OrderSubmitted, entity.OrderPartial)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}
	itemRepo := NewPedidoItemRepository(r.q)
	for _, o := range orders {
		lines, err := itemRepo.ListByOrder(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		o.Lines = lines
	}
	return orders, nil
}

func (r *PedidoRepo) listByStatuses(ctx context.Context, unitID string, statuses ...entity.OrderStatus) ([]*entity.Order, error) {
	vals := make([]string, len(statuses))
	for i, s := range statuses {
		vals[i] = string(s)
	}
	query := `
		SELECT id, numero_pedido, unidad_id, solicitante, estado,
		       COALESCE(notas, ''), created_at, updated_at
		FROM pedidos
		WHERE unidad_id = $1 AND estado = ANY($2)
		ORDER BY created_at ASC`
	rows, err := r.q.Query(ctx, query, unitID, vals)
	if err != nil {
		return nil, fmt.Errorf("list pedidos por estado: %w", err)
	}
	defer rows.Close()

	var orders []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pedido: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
