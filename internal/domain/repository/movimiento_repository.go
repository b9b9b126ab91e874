package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/chefmanager/chefmanager-api/internal/domain/entity"
)

// MovimientoRepository puerto del ledger de movimientos: solo inserta y lee,
// nunca actualiza ni borra.
type MovimientoRepository interface {
	Create(ctx context.Context, m *entity.Movement) error
	ListByLot(ctx context.Context, lotID string) ([]*entity.Movement, error)
	// ListRecent últimos movimientos de lotes de la unidad, más recientes primero.
	ListRecent(ctx context.Context, unitID string, limit int) ([]*entity.Movement, error)
	// SumDeltas suma de deltas del lote, entrada incluida. Debe igualar la
	// cantidad_actual del lote (invariante de reconciliación).
	SumDeltas(ctx context.Context, lotID string) (decimal.Decimal, error)
}
