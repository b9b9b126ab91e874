package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chefmanager/chefmanager-api/internal/domain/entity"
)

// InventoryStats totales para el tablero de inventario de una unidad.
type InventoryStats struct {
	Activos    int
	PorCaducar int
	Agotados   int
}

// InventarioRepository puerto de persistencia para lotes.
type InventarioRepository interface {
	// Create persiste un lote nuevo. Devuelve domain.ErrDuplicateCode si el
	// código único ya existe (constraint de la base, no chequeo previo).
	Create(ctx context.Context, lot *entity.Lot) error
	GetByID(ctx context.Context, id string) (*entity.Lot, error)
	GetByCode(ctx context.Context, code string) (*entity.Lot, error)
	// ListActive lotes de la unidad con estado disponible o reservado y
	// cantidad > 0, ordenados por caducidad ascendente (FEFO).
	ListActive(ctx context.Context, unitID string) ([]*entity.Lot, error)
	// UpdateQuantity escritura condicional: escribe newQty y newStatus solo si
	// cantidad_actual todavía vale expected (compare-and-swap sobre la cantidad
	// previa). Devuelve false ante un snapshot obsoleto.
	UpdateQuantity(ctx context.Context, lotID string, expected, newQty decimal.Decimal, newStatus entity.LotStatus) (bool, error)
	// Stats totales de la unidad; porCaducar usa la ventana de 7 días sobre today.
	Stats(ctx context.Context, unitID string, today time.Time) (*InventoryStats, error)
}
