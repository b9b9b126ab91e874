package inventario

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chefmanager/chefmanager-api/internal/domain"
	"github.com/chefmanager/chefmanager-api/internal/domain/entity"
	"github.com/chefmanager/chefmanager-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

// ledgerState estado compartido de los fakes. El mutex emula la serialización
// que en producción aporta la escritura condicional sobre la fila.
type ledgerState struct {
	mu   sync.Mutex
	lots map[string]*entity.Lot
	movs []*entity.Movement
}

func newLedgerState() *ledgerState {
	return &ledgerState{lots: map[string]*entity.Lot{}}
}

type fakeInvRepo struct{ s *ledgerState }

func (r *fakeInvRepo) Create(_ context.Context, lot *entity.Lot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.lots {
		if l.Code == lot.Code {
			return fmt.Errorf("código %s: %w", lot.Code, domain.ErrDuplicateCode)
		}
	}
	cp := *lot
	r.s.lots[lot.ID] = &cp
	return nil
}

func (r *fakeInvRepo) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.lots[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *fakeInvRepo) GetByCode(_ context.Context, code string) (*entity.Lot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.lots {
		if l.Code == code {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeInvRepo) ListActive(_ context.Context, unitID string) ([]*entity.Lot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Lot
	for _, l := range r.s.lots {
		if l.UnitID == unitID && l.Status.Active() && l.Current.GreaterThan(decimal.Zero) {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Expiry.Before(out[j].Expiry) })
	return out, nil
}

func (r *fakeInvRepo) UpdateQuantity(_ context.Context, lotID string, expected, newQty decimal.Decimal, newStatus entity.LotStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.lots[lotID]
	if !ok || !l.Current.Equal(expected) {
		return false, nil
	}
	l.Current = newQty
	l.Status = newStatus
	return true, nil
}

func (r *fakeInvRepo) Stats(_ context.Context, unitID string, today time.Time) (*repository.InventoryStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stats := &repository.InventoryStats{}
	for _, l := range r.s.lots {
		if l.UnitID != unitID {
			continue
		}
		if l.Status == entity.LotDepleted {
			stats.Agotados++
			continue
		}
		if l.Status.Active() && l.Current.GreaterThan(decimal.Zero) {
			stats.Activos++
			if entity.ClassifyExpiry(l.Expiry, today) != entity.ExpiryOK {
				stats.PorCaducar++
			}
		}
	}
	return stats, nil
}

type fakeMovRepo struct{ s *ledgerState }

func (r *fakeMovRepo) Create(_ context.Context, m *entity.Movement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *m
	r.s.movs = append(r.s.movs, &cp)
	return nil
}

func (r *fakeMovRepo) ListByLot(_ context.Context, lotID string) ([]*entity.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Movement
	for _, m := range r.s.movs {
		if m.LotID == lotID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeMovRepo) ListRecent(_ context.Context, _ string, limit int) ([]*entity.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Movement
	for i := len(r.s.movs) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *r.s.movs[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeMovRepo) SumDeltas(_ context.Context, lotID string) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sum := decimal.Zero
	for _, m := range r.s.movs {
		if m.LotID == lotID {
			sum = sum.Add(m.Delta)
		}
	}
	return sum, nil
}

// fakeTxRunner ejecuta la función directamente sobre los fakes: la atomicidad
// de los tests descansa en el CAS del fake, igual que en producción descansa
// en la escritura condicional.
type fakeTxRunner struct{ s *ledgerState }

func (t *fakeTxRunner) Run(ctx context.Context, fn func(repository.InventarioRepository, repository.MovimientoRepository) error) error {
	return fn(&fakeInvRepo{s: t.s}, &fakeMovRepo{s: t.s})
}

func newTestUseCase() (*LedgerUseCase, *ledgerState) {
	s := newLedgerState()
	uc := NewLedgerUseCase(&fakeTxRunner{s: s}, &fakeInvRepo{s: s}, &fakeMovRepo{s: s})
	return uc, s
}

func lotInput(lote string, qty string) RegisterLotInput {
	return RegisterLotInput{
		LineID:     "item-1",
		UnitID:     "unidad-1",
		ProductID:  "producto-1",
		LotNumber:  lote,
		Expiry:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		ReceivedAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		Quantity:   decimal.RequireFromString(qty),
		ReceivedBy: "usuario-1",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// RegisterLot
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterLot_CreaLoteConMovimientoDeEntrada(t *testing.T) {
	uc, s := newTestUseCase()

	lot, err := uc.RegisterLot(context.Background(), lotInput("A1", "10"))
	require.NoError(t, err)

	assert.Equal(t, "A1-20250601-20250501", lot.Code)
	assert.Equal(t, entity.LotAvailable, lot.Status)
	assert.True(t, lot.Current.Equal(decimal.RequireFromString("10")))
	assert.True(t, lot.Initial.Equal(lot.Current), "inicial y actual arrancan iguales")

	require.Len(t, s.movs, 1)
	mov := s.movs[0]
	assert.Equal(t, entity.MovementInbound, mov.Kind)
	assert.Equal(t, lot.ID, mov.LotID)
	assert.True(t, mov.Delta.Equal(decimal.RequireFromString("10")))
	assert.True(t, mov.Before.IsZero())
	assert.True(t, mov.After.Equal(decimal.RequireFromString("10")))
}

func TestRegisterLot_CantidadNoPositiva(t *testing.T) {
	uc, s := newTestUseCase()

	for _, qty := range []string{"0", "-3"} {
		_, err := uc.RegisterLot(context.Background(), lotInput("A1", qty))
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity, "cantidad %s", qty)
	}
	assert.Empty(t, s.lots, "nada debe persistirse")
	assert.Empty(t, s.movs)
}

func TestRegisterLot_CodigoDuplicado(t *testing.T) {
	uc, s := newTestUseCase()

	_, err := uc.RegisterLot(context.Background(), lotInput("A1", "10"))
	require.NoError(t, err)

	// mismo lote y mismas fechas: mismo código derivado
	_, err = uc.RegisterLot(context.Background(), lotInput("A1", "5"))
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)

	assert.Len(t, s.lots, 1, "el segundo lote no debe persistirse")
	assert.Len(t, s.movs, 1, "ni su movimiento de entrada")
}

func TestRegisterLot_LoteVacio(t *testing.T) {
	uc, _ := newTestUseCase()

	_, err := uc.RegisterLot(context.Background(), lotInput("   ", "10"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ──────────────────────────────────────────────────────────────────────────────
// Deplete
// ──────────────────────────────────────────────────────────────────────────────

func TestDeplete_ConsumoParcial(t *testing.T) {
	uc, s := newTestUseCase()
	lot, err := uc.RegisterLot(context.Background(), lotInput("A1", "10"))
	require.NoError(t, err)

	mov, err := uc.Deplete(context.Background(), lot.ID, DepleteInput{
		Quantity: decimal.RequireFromString("4"),
		Kind:     entity.MovementConsumption,
		ActorID:  "usuario-2",
		Reason:   "servicio de comida",
	})
	require.NoError(t, err)

	assert.True(t, mov.Delta.Equal(decimal.RequireFromString("-4")), "el delta de un consumo es negativo")
	assert.True(t, mov.Before.Equal(decimal.RequireFromString("10")))
	assert.True(t, mov.After.Equal(decimal.RequireFromString("6")))

	stored := s.lots[lot.ID]
	assert.True(t, stored.Current.Equal(decimal.RequireFromString("6")))
	assert.Equal(t, entity.LotAvailable, stored.Status, "con cantidad restante el lote sigue disponible")

	// invariante de reconciliación: actual = suma de deltas
	sum, err := (&fakeMovRepo{s: s}).SumDeltas(context.Background(), lot.ID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(stored.Current))
}

func TestDeplete_AgotaElLote(t *testing.T) {
	uc, s := newTestUseCase()
	lot, err := uc.RegisterLot(context.Background(), lotInput("A1", "10"))
	require.NoError(t, err)

	_, err = uc.Deplete(context.Background(), lot.ID, DepleteInput{
		Quantity: decimal.RequireFromString("10"),
		Kind:     entity.MovementWaste,
		ActorID:  "usuario-2",
	})
	require.NoError(t, err)

	stored := s.lots[lot.ID]
	assert.True(t, stored.Current.IsZero())
	assert.Equal(t, entity.LotDepleted, stored.Status, "al llegar a cero pasa a agotado")
}

func TestDeplete_StockInsuficiente(t *testing.T) {
	uc, s := newTestUseCase()
	lot, err := uc.RegisterLot(context.Background(), lotInput("A1", "10"))
	require.NoError(t, err)

	_, err = uc.Deplete(context.Background(), lot.ID, DepleteInput{
		Quantity: decimal.RequireFromString("10.001"),
		Kind:     entity.MovementConsumption,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	stored := s.lots[lot.ID]
	assert.True(t, stored.Current.Equal(decimal.RequireFromString("10")), "el lote no debe mutar")
	assert.Len(t, s.movs, 1, "solo la entrada original")
}

func TestDeplete_LoteInexistente(t *testing.T) {
	uc, _ := newTestUseCase()

	_, err := uc.Deplete(context.Background(), "no-existe", DepleteInput{
		Quantity: decimal.NewFromInt(1),
		Kind:     entity.MovementConsumption,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeplete_TipoInvalido(t *testing.T) {
	uc, _ := newTestUseCase()

	for _, kind := range []entity.MovementKind{entity.MovementInbound, entity.MovementKind("robo"), ""} {
		_, err := uc.Deplete(context.Background(), "x", DepleteInput{
			Quantity: decimal.NewFromInt(1),
			Kind:     kind,
		})
		assert.ErrorIs(t, err, domain.ErrValidation, "tipo %q", kind)
	}
}

func TestDeplete_CantidadNoPositiva(t *testing.T) {
	uc, _ := newTestUseCase()

	_, err := uc.Deplete(context.Background(), "x", DepleteInput{
		Quantity: decimal.Zero,
		Kind:     entity.MovementConsumption,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

// Consumos concurrentes contra el mismo lote: los que ganan el CAS descuentan,
// los demás reciben ErrConflict o, con el lote ya vaciado, ErrInsufficientStock.
// El stock nunca queda negativo y la cantidad final cuadra exactamente con los
// consumos aplicados.
func TestDeplete_ConcurrenciaNoSobreconsume(t *testing.T) {
	uc, s := newTestUseCase()
	lot, err := uc.RegisterLot(context.Background(), lotInput("A1", "100"))
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Deplete(context.Background(), lot.ID, DepleteInput{
				Quantity: decimal.NewFromInt(10),
				Kind:     entity.MovementConsumption,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	applied := 0
	for err := range results {
		switch {
		case err == nil:
			applied++
		default:
			assert.True(t,
				errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrInsufficientStock),
				"error inesperado: %v", err)
		}
	}
	require.Greater(t, applied, 0, "al menos un consumo debe aplicarse")
	require.LessOrEqual(t, applied, 10, "nunca más consumos de los que caben")

	stored := s.lots[lot.ID]
	want := decimal.NewFromInt(int64(100 - 10*applied))
	assert.True(t, stored.Current.Equal(want),
		"cantidad final %s, esperada %s con %d consumos", stored.Current, want, applied)
	assert.False(t, stored.Current.IsNegative())

	sum, err := (&fakeMovRepo{s: s}).SumDeltas(context.Background(), lot.ID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(stored.Current), "el ledger debe cuadrar con la cantidad")
}

// ──────────────────────────────────────────────────────────────────────────────
// Lecturas
// ──────────────────────────────────────────────────────────────────────────────

func TestListActive_ExcluyeAgotadosYOrdenaFEFO(t *testing.T) {
	uc, _ := newTestUseCase()

	tardio := lotInput("B2", "5")
	tardio.Expiry = time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	_, err := uc.RegisterLot(context.Background(), tardio)
	require.NoError(t, err)

	temprano, err := uc.RegisterLot(context.Background(), lotInput("A1", "5"))
	require.NoError(t, err)

	agotado := lotInput("C3", "5")
	agotado.Expiry = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	lotAgotado, err := uc.RegisterLot(context.Background(), agotado)
	require.NoError(t, err)
	_, err = uc.Deplete(context.Background(), lotAgotado.ID, DepleteInput{
		Quantity: decimal.NewFromInt(5),
		Kind:     entity.MovementConsumption,
	})
	require.NoError(t, err)

	out, err := uc.ListActive(context.Background(), "unidad-1")
	require.NoError(t, err)
	require.Len(t, out, 2, "el lote agotado no aparece")
	assert.Equal(t, temprano.Code, out[0].Code, "primero el que caduca antes")
	assert.Equal(t, "B2-20250801-20250501", out[1].Code)
}

func TestMovementsByLot_SaldoCuadraConElLote(t *testing.T) {
	uc, _ := newTestUseCase()

	lot, err := uc.RegisterLot(context.Background(), lotInput("A1", "10"))
	require.NoError(t, err)
	_, err = uc.Deplete(context.Background(), lot.ID, DepleteInput{
		Quantity: decimal.NewFromInt(4),
		Kind:     entity.MovementConsumption,
	})
	require.NoError(t, err)

	out, err := uc.MovementsByLot(context.Background(), lot.ID)
	require.NoError(t, err)
	require.Len(t, out.Movements, 2, "entrada y consumo")
	assert.True(t, out.Balance.Equal(decimal.NewFromInt(6)), "saldo = suma de deltas")
	assert.True(t, out.Balance.Equal(out.Current), "el ledger debe cuadrar con el lote")

	_, err = uc.MovementsByLot(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLookupByCode(t *testing.T) {
	uc, _ := newTestUseCase()
	uc.now = func() time.Time { return time.Date(2025, 5, 28, 10, 0, 0, 0, time.UTC) }

	_, err := uc.RegisterLot(context.Background(), lotInput("A1", "10"))
	require.NoError(t, err)

	resp, err := uc.LookupByCode(context.Background(), "A1-20250601-20250501")
	require.NoError(t, err)
	assert.Equal(t, "A1-20250601-20250501", resp.Code)
	assert.Equal(t, string(entity.ExpirySoon), resp.ExpiryClass,
		"a 4 días de caducar debe clasificar por_caducar")

	_, err = uc.LookupByCode(context.Background(), "NO-EXISTE")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStats(t *testing.T) {
	uc, _ := newTestUseCase()
	uc.now = func() time.Time { return time.Date(2025, 5, 28, 0, 0, 0, 0, time.UTC) }

	// activo y por caducar
	_, err := uc.RegisterLot(context.Background(), lotInput("A1", "10"))
	require.NoError(t, err)

	// activo y vigente
	vigente := lotInput("B2", "5")
	vigente.Expiry = time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	_, err = uc.RegisterLot(context.Background(), vigente)
	require.NoError(t, err)

	// agotado
	tercero := lotInput("C3", "5")
	tercero.Expiry = time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	lotTercero, err := uc.RegisterLot(context.Background(), tercero)
	require.NoError(t, err)
	_, err = uc.Deplete(context.Background(), lotTercero.ID, DepleteInput{
		Quantity: decimal.NewFromInt(5),
		Kind:     entity.MovementWaste,
	})
	require.NoError(t, err)

	stats, err := uc.Stats(context.Background(), "unidad-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Activos)
	assert.Equal(t, 1, stats.PorCaducar)
	assert.Equal(t, 1, stats.Agotados)
}
