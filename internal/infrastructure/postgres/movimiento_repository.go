package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/chefmanager/chefmanager-api/internal/domain/entity"
	"github.com/chefmanager/chefmanager-api/internal/domain/repository"
)

var _ repository.MovimientoRepository = (*MovimientoRepo)(nil)

// MovimientoRepo adaptador del ledger de movimientos. La tabla es append-only:
// este repo no expone UPDATE ni DELETE.
type MovimientoRepo struct {
	q Querier
}

// NewMovimientoRepository construye el adaptador de movimientos. Pasar pool o tx (Querier).
func NewMovimientoRepository(q Querier) *MovimientoRepo {
	return &MovimientoRepo{q: q}
}

// Create inserta un movimiento inmutable del ledger.
func (r *MovimientoRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movimientos (
			id, inventario_id, tipo, cantidad, cantidad_anterior,
			cantidad_posterior, usuario_id, motivo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::uuid, NULLIF($8, ''), $9)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.LotID, string(m.Kind), m.Delta, m.Before,
		m.After, m.ActorID, m.Reason, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert movimiento: %w", err)
	}
	return nil
}

const movementColumns = `
	m.id, m.inventario_id, m.tipo, m.cantidad, m.cantidad_anterior,
	m.cantidad_posterior, COALESCE(m.usuario_id::text, ''), COALESCE(m.motivo, ''), m.created_at,
	COALESCE(i.codigo_unico, ''), COALESCE(p.nombre, '')`

func scanMovement(rows pgx.Rows) (*entity.Movement, error) {
	var m entity.Movement
	var kind string
	err := rows.Scan(
		&m.ID, &m.LotID, &kind, &m.Delta, &m.Before,
		&m.After, &m.ActorID, &m.Reason, &m.CreatedAt,
		&m.LotCode, &m.ProductName,
	)
	if err != nil {
		return nil, err
	}
	m.Kind = entity.MovementKind(kind)
	return &m, nil
}

// ListByLot historial completo del lote, en orden de inserción.
func (r *MovimientoRepo) ListByLot(ctx context.Context, lotID string) ([]*entity.Movement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM movimientos m
		LEFT JOIN inventario i ON i.id = m.inventario_id
		LEFT JOIN productos p ON p.id = i.producto_id
		WHERE m.inventario_id = $1
		ORDER BY m.created_at ASC, m.id ASC`
	rows, err := r.q.Query(ctx, query, lotID)
	if err != nil {
		return nil, fmt.Errorf("list movimientos por lote: %w", err)
	}
	defer rows.Close()
	return collectMovements(rows)
}

// ListRecent últimos movimientos de los lotes de la unidad.
func (r *MovimientoRepo) ListRecent(ctx context.Context, unitID string, limit int) ([]*entity.Movement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM movimientos m
		JOIN inventario i ON i.id = m.inventario_id
		LEFT JOIN productos p ON p.id = i.producto_id
		WHERE i.unidad_id = $1
		ORDER BY m.created_at DESC
		LIMIT $2`
	rows, err := r.q.Query(ctx, query, unitID, limit)
	if err != nil {
		return nil, fmt.Errorf("list movimientos recientes: %w", err)
	}
	defer rows.Close()
	return collectMovements(rows)
}

func collectMovements(rows pgx.Rows) ([]*entity.Movement, error) {
	var movs []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movimiento: %w", err)
		}
		movs = append(movs, m)
	}
	return movs, rows.Err()
}

// SumDeltas suma de deltas del lote (verificación de la invariante de reconciliación).
func (r *MovimientoRepo) SumDeltas(ctx context.Context, lotID string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(cantidad), 0) FROM movimientos WHERE inventario_id = $1`
	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, lotID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum movimientos: %w", err)
	}
	return sum, nil
}
