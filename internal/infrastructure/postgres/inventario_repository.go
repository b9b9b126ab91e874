package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/chefmanager/chefmanager-api/internal/domain"
	"github.com/chefmanager/chefmanager-api/internal/domain/entity"
	"github.com/chefmanager/chefmanager-api/internal/domain/repository"
)

var _ repository.InventarioRepository = (*InventarioRepo)(nil)

// InventarioRepo implementación de InventarioRepository sobre PostgreSQL
// (usable con pool o tx).
type InventarioRepo struct {
	q Querier
}

// NewInventarioRepository construye el adaptador de inventario. Pasar pool o tx (Querier).
func NewInventarioRepository(q Querier) *InventarioRepo {
	return &InventarioRepo{q: q}
}

const lotColumns = `
	i.id, i.codigo_unico, i.unidad_id, i.producto_id,
	COALESCE(i.pedido_item_id::text, ''), i.lote,
	i.fecha_caducidad, i.fecha_recibido, i.cantidad_inicial, i.cantidad_actual,
	i.estado, COALESCE(i.ubicacion, ''), COALESCE(i.recibido_por::text, ''), i.created_at,
	COALESCE(p.nombre, '')`

func scanLot(row pgx.Row) (*entity.Lot, error) {
	var l entity.Lot
	var status string
	err := row.Scan(
		&l.ID, &l.Code, &l.UnitID, &l.ProductID, &l.LineID, &l.LotNumber,
		&l.Expiry, &l.ReceivedAt, &l.Initial, &l.Current,
		&status, &l.Location, &l.ReceivedBy, &l.CreatedAt,
		&l.ProductName,
	)
	if err != nil {
		return nil, err
	}
	l.Status = entity.LotStatus(status)
	return &l, nil
}

// Create persiste el lote. La unicidad del código la garantiza el índice único
// de la tabla; la violación se traduce a domain.ErrDuplicateCode.
func (r *InventarioRepo) Create(ctx context.Context, lot *entity.Lot) error {
	query := `
		INSERT INTO inventario (
			id, codigo_unico, unidad_id, producto_id, pedido_item_id, lote,
			fecha_caducidad, fecha_recibido, cantidad_inicial, cantidad_actual,
			estado, ubicacion, recibido_por, created_at
		) VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, $6, $7, $8, $9, $10, $11,
		          NULLIF($12, ''), NULLIF($13, '')::uuid, $14)`
	_, err := r.q.Exec(ctx, query,
		lot.ID, lot.Code, lot.UnitID, lot.ProductID, lot.LineID, lot.LotNumber,
		lot.Expiry, lot.ReceivedAt, lot.Initial, lot.Current,
		string(lot.Status), lot.Location, lot.ReceivedBy, lot.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("código %s: %w", lot.Code, domain.ErrDuplicateCode)
		}
		return fmt.Errorf("insert inventario: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID. Devuelve (nil, nil) si no existe.
func (r *InventarioRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM inventario i
		LEFT JOIN productos p ON p.id = i.producto_id
		WHERE i.id = $1`
	lot, err := scanLot(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventario: %w", err)
	}
	return lot, nil
}

// GetByCode obtiene un lote por su código único (escaneo QR o tecleo manual).
func (r *InventarioRepo) GetByCode(ctx context.Context, code string) (*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM inventario i
		LEFT JOIN productos p ON p.id = i.producto_id
		WHERE i.codigo_unico = $1`
	lot, err := scanLot(r.q.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventario por código: %w", err)
	}
	return lot, nil
}

// ListActive lotes consumibles de la unidad ordenados por caducidad ascendente (FEFO).
func (r *InventarioRepo) ListActive(ctx context.Context, unitID string) ([]*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM inventario i
		LEFT JOIN productos p ON p.id = i.producto_id
		WHERE i.unidad_id = $1
		  AND i.estado IN ('disponible', 'reservado')
		  AND i.cantidad_actual > 0
		ORDER BY i.fecha_caducidad ASC, i.created_at ASC`
	rows, err := r.q.Query(ctx, query, unitID)
	if err != nil {
		return nil, fmt.Errorf("list inventario activo: %w", err)
	}
	defer rows.Close()

	var lots []*entity.Lot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventario: %w", err)
		}
		lots = append(lots, lot)
	}
	return lots, rows.Err()
}

// UpdateQuantity escritura condicional sobre la cantidad previa: el WHERE sobre
// cantidad_actual es el compare-and-swap que serializa consumos concurrentes
// contra el mismo lote.
func (r *InventarioRepo) UpdateQuantity(ctx context.Context, lotID string, expected, newQty decimal.Decimal, newStatus entity.LotStatus) (bool, error) {
	query := `
		UPDATE inventario
		SET cantidad_actual = $3, estado = $4
		WHERE id = $1 AND cantidad_actual = $2`
	cmd, err := r.q.Exec(ctx, query, lotID, expected, newQty, string(newStatus))
	if err != nil {
		return false, fmt.Errorf("update cantidad inventario: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// Stats totales del inventario de la unidad. porCaducar usa la ventana de 7
// días sobre today, consistente con la clasificación derivada en lectura.
func (r *InventarioRepo) Stats(ctx context.Context, unitID string, today time.Time) (*repository.InventoryStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE estado IN ('disponible', 'reservado') AND cantidad_actual > 0),
			COUNT(*) FILTER (WHERE estado IN ('disponible', 'reservado') AND cantidad_actual > 0
				AND fecha_caducidad <= $2::date + 7),
			COUNT(*) FILTER (WHERE estado = 'agotado')
		FROM inventario
		WHERE unidad_id = $1`
	var s repository.InventoryStats
	err := r.q.QueryRow(ctx, query, unitID, today).Scan(&s.Activos, &s.PorCaducar, &s.Agotados)
	if err != nil {
		return nil, fmt.Errorf("stats inventario: %w", err)
	}
	return &s, nil
}
