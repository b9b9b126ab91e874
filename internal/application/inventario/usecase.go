package inventario

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chefmanager/chefmanager-api/internal/application/dto"
	"github.com/chefmanager/chefmanager-api/internal/domain"
	"github.com/chefmanager/chefmanager-api/internal/domain/codigo"
	"github.com/chefmanager/chefmanager-api/internal/domain/entity"
	"github.com/chefmanager/chefmanager-api/internal/domain/repository"
)

// Reintentos del bucle optimista sobre la cantidad del lote. Agotados los
// intentos se devuelve domain.ErrConflict, recuperable reintentando la llamada.
const maxCASAttempts = 3

// LedgerUseCase es el único componente que muta cantidad_actual. Cada cambio
// de cantidad va acompañado de un movimiento en el ledger dentro de la misma
// transacción; la cantidad del lote es una proyección que siempre cuadra con
// la suma de deltas.
type LedgerUseCase struct {
	txRunner TxRunner
	invRepo  repository.InventarioRepository
	movRepo  repository.MovimientoRepository

	now func() time.Time
}

// NewLedgerUseCase construye el caso de uso. invRepo y movRepo van atados al
// pool para lecturas; las escrituras pasan siempre por txRunner.
func NewLedgerUseCase(txRunner TxRunner, invRepo repository.InventarioRepository, movRepo repository.MovimientoRepository) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner: txRunner,
		invRepo:  invRepo,
		movRepo:  movRepo,
		now:      time.Now,
	}
}

// RegisterLotInput datos de un lote a registrar desde una recepción.
type RegisterLotInput struct {
	LineID     string
	UnitID     string
	ProductID  string
	LotNumber  string
	Expiry     time.Time
	ReceivedAt time.Time
	Quantity   decimal.Decimal
	Location   string
	ReceivedBy string
}

// RegisterLot registra un lote nuevo con su movimiento de entrada, en una sola
// transacción. El código se deriva aquí (determinista, ver domain/codigo).
// Errores: ErrInvalidQuantity si la cantidad no es positiva, ErrValidation si
// lote o fechas están mal formados, ErrDuplicateCode si el código ya existe.
func (uc *LedgerUseCase) RegisterLot(ctx context.Context, in RegisterLotInput) (*entity.Lot, error) {
	lot, err := uc.buildLot(in)
	if err != nil {
		return nil, err
	}
	err = uc.txRunner.Run(ctx, func(invRepo repository.InventarioRepository, movRepo repository.MovimientoRepository) error {
		return writeLot(ctx, invRepo, movRepo, lot)
	})
	if err != nil {
		return nil, err
	}
	return lot, nil
}

// RegisterLotTx es RegisterLot ejecutado dentro de una transacción ajena (la
// del motor de recepción): mismas validaciones, sin abrir transacción propia.
func (uc *LedgerUseCase) RegisterLotTx(ctx context.Context, invRepo repository.InventarioRepository, movRepo repository.MovimientoRepository, in RegisterLotInput) (*entity.Lot, error) {
	lot, err := uc.buildLot(in)
	if err != nil {
		return nil, err
	}
	if err := writeLot(ctx, invRepo, movRepo, lot); err != nil {
		return nil, err
	}
	return lot, nil
}

func (uc *LedgerUseCase) buildLot(in RegisterLotInput) (*entity.Lot, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidQuantity
	}
	code, err := codigo.Generar(in.LotNumber, in.Expiry, in.ReceivedAt)
	if err != nil {
		return nil, err
	}
	lotNumber, _ := codigo.NormalizarLote(in.LotNumber)

	return &entity.Lot{
		ID:         uuid.New().String(),
		Code:       code,
		UnitID:     in.UnitID,
		ProductID:  in.ProductID,
		LineID:     in.LineID,
		LotNumber:  lotNumber,
		Expiry:     in.Expiry,
		ReceivedAt: in.ReceivedAt,
		Initial:    in.Quantity,
		Current:    in.Quantity,
		Status:     entity.LotAvailable,
		Location:   in.Location,
		ReceivedBy: in.ReceivedBy,
		CreatedAt:  uc.now(),
	}, nil
}

func writeLot(ctx context.Context, invRepo repository.InventarioRepository, movRepo repository.MovimientoRepository, lot *entity.Lot) error {
	if err := invRepo.Create(ctx, lot); err != nil {
		return err
	}
	return movRepo.Create(ctx, inboundMovement(lot))
}

func inboundMovement(lot *entity.Lot) *entity.Movement {
	return &entity.Movement{
		ID:        uuid.New().String(),
		LotID:     lot.ID,
		Kind:      entity.MovementInbound,
		Delta:     lot.Initial,
		Before:    decimal.Zero,
		After:     lot.Initial,
		ActorID:   lot.ReceivedBy,
		CreatedAt: lot.CreatedAt,
	}
}

// DepleteInput datos de un consumo o merma.
type DepleteInput struct {
	Quantity decimal.Decimal
	Kind     entity.MovementKind // consumo | merma
	ActorID  string
	Reason   string
}

// Deplete descuenta cantidad de un lote y registra el movimiento, de forma
// atómica. La lectura-cálculo-escritura se serializa por lote con una escritura
// condicional sobre la cantidad previa (CAS): dos consumos concurrentes nunca
// descuentan del mismo snapshot. Reintenta ante snapshot obsoleto hasta
// maxCASAttempts y devuelve ErrConflict si se agotan.
func (uc *LedgerUseCase) Deplete(ctx context.Context, lotID string, in DepleteInput) (*entity.Movement, error) {
	if !in.Kind.Depletion() {
		return nil, fmt.Errorf("tipo de movimiento %q no es consumo ni merma: %w", in.Kind, domain.ErrValidation)
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidQuantity
	}

	var movement *entity.Movement
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		err := uc.txRunner.Run(ctx, func(invRepo repository.InventarioRepository, movRepo repository.MovimientoRepository) error {
			lot, err := invRepo.GetByID(ctx, lotID)
			if err != nil {
				return err
			}
			if lot == nil {
				return domain.ErrNotFound
			}
			if in.Quantity.GreaterThan(lot.Current) {
				return domain.ErrInsufficientStock
			}
			newQty := lot.Current.Sub(in.Quantity)
			newStatus := lot.Status
			if newQty.IsZero() {
				newStatus = entity.LotDepleted
			}
			applied, err := invRepo.UpdateQuantity(ctx, lotID, lot.Current, newQty, newStatus)
			if err != nil {
				return err
			}
			if !applied {
				return domain.ErrConflict // snapshot obsoleto, reintentar fuera de la tx
			}
			movement = &entity.Movement{
				ID:        uuid.New().String(),
				LotID:     lotID,
				Kind:      in.Kind,
				Delta:     in.Quantity.Neg(),
				Before:    lot.Current,
				After:     newQty,
				ActorID:   in.ActorID,
				Reason:    in.Reason,
				CreatedAt: uc.now(),
			}
			return movRepo.Create(ctx, movement)
		})
		if err == nil {
			return movement, nil
		}
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		return nil, err
	}
	return nil, domain.ErrConflict
}

// LookupByCode busca un lote por su código único (escaneo o tecleo manual).
func (uc *LedgerUseCase) LookupByCode(ctx context.Context, code string) (*dto.LotResponse, error) {
	lot, err := uc.invRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.ErrNotFound
	}
	resp := ToLotResponse(lot, uc.now())
	return &resp, nil
}

// ListActive lotes consumibles de la unidad, ordenados por caducidad ascendente
// (el primero de la lista es el que hay que gastar primero).
func (uc *LedgerUseCase) ListActive(ctx context.Context, unitID string) ([]dto.LotResponse, error) {
	lots, err := uc.invRepo.ListActive(ctx, unitID)
	if err != nil {
		return nil, err
	}
	today := uc.now()
	out := make([]dto.LotResponse, 0, len(lots))
	for _, lot := range lots {
		out = append(out, ToLotResponse(lot, today))
	}
	return out, nil
}

// Stats totales del tablero de inventario de la unidad.
func (uc *LedgerUseCase) Stats(ctx context.Context, unitID string) (*dto.InventoryStatsResponse, error) {
	s, err := uc.invRepo.Stats(ctx, unitID, uc.now())
	if err != nil {
		return nil, err
	}
	return &dto.InventoryStatsResponse{
		Activos:    s.Activos,
		PorCaducar: s.PorCaducar,
		Agotados:   s.Agotados,
	}, nil
}

// RecentMovements últimos movimientos de la unidad (consumos recientes en pantalla).
func (uc *LedgerUseCase) RecentMovements(ctx context.Context, unitID string, limit int) ([]dto.MovementResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	movs, err := uc.movRepo.ListRecent(ctx, unitID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, ToMovementResponse(m))
	}
	return out, nil
}

// MovementsByLot historial completo del ledger para un lote, con el saldo que
// suman los deltas. Saldo y cantidad actual deben coincidir; una diferencia
// delata un descuadre del ledger.
func (uc *LedgerUseCase) MovementsByLot(ctx context.Context, lotID string) (*dto.LotMovementsResponse, error) {
	lot, err := uc.invRepo.GetByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.ErrNotFound
	}
	movs, err := uc.movRepo.ListByLot(ctx, lotID)
	if err != nil {
		return nil, err
	}
	balance, err := uc.movRepo.SumDeltas(ctx, lotID)
	if err != nil {
		return nil, err
	}
	out := &dto.LotMovementsResponse{
		Movements: make([]dto.MovementResponse, 0, len(movs)),
		Balance:   balance,
		Current:   lot.Current,
	}
	for _, m := range movs {
		out.Movements = append(out.Movements, ToMovementResponse(m))
	}
	return out, nil
}

// ToLotResponse mapea un lote a DTO adjuntando la clasificación de caducidad
// derivada respecto a today (nunca se persiste).
func ToLotResponse(lot *entity.Lot, today time.Time) dto.LotResponse {
	return dto.LotResponse{
		ID:          lot.ID,
		Code:        lot.Code,
		UnitID:      lot.UnitID,
		ProductID:   lot.ProductID,
		ProductName: lot.ProductName,
		LotNumber:   lot.LotNumber,
		Expiry:      lot.Expiry,
		ReceivedAt:  lot.ReceivedAt,
		Initial:     lot.Initial,
		Current:     lot.Current,
		Status:      string(lot.Status),
		ExpiryClass: string(lot.ExpiryStatus(today)),
		Location:    lot.Location,
	}
}

// ToMovementResponse mapea un movimiento a DTO.
func ToMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:          m.ID,
		LotID:       m.LotID,
		LotCode:     m.LotCode,
		ProductName: m.ProductName,
		Kind:        string(m.Kind),
		Delta:       m.Delta,
		Before:      m.Before,
		After:       m.After,
		ActorID:     m.ActorID,
		Reason:      m.Reason,
		CreatedAt:   m.CreatedAt,
	}
}
