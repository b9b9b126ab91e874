package recepcion

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chefmanager/chefmanager-api/internal/application/dto"
	"github.com/chefmanager/chefmanager-api/internal/application/inventario"
	"github.com/chefmanager/chefmanager-api/internal/application/pedidos"
	"github.com/chefmanager/chefmanager-api/internal/domain"
	"github.com/chefmanager/chefmanager-api/internal/domain/entity"
	"github.com/chefmanager/chefmanager-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria: una tienda completa (pedidos, items, lotes, movimientos)
// con soporte de rollback por snapshot para emular la transacción.
// ──────────────────────────────────────────────────────────────────────────────

type store struct {
	mu     sync.Mutex
	orders map[string]*entity.Order
	lines  map[string]*entity.OrderLine
	lots   map[string]*entity.Lot
	movs   []*entity.Movement

	// rowLocks emula el FOR UPDATE sobre pedidos: un mutex por fila, tomado
	// en GetByIDForUpdate y liberado al terminar la "transacción".
	rowLocks sync.Map
}

func (s *store) rowLock(id string) *sync.Mutex {
	v, _ := s.rowLocks.LoadOrStore(id, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func newStore() *store {
	return &store{
		orders: map[string]*entity.Order{},
		lines:  map[string]*entity.OrderLine{},
		lots:   map[string]*entity.Lot{},
	}
}

// snapshot copia profunda del estado, para revertir si la "transacción" falla.
func (s *store) snapshot() *store {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := newStore()
	for k, v := range s.orders {
		o := *v
		cp.orders[k] = &o
	}
	for k, v := range s.lines {
		l := *v
		cp.lines[k] = &l
	}
	for k, v := range s.lots {
		l := *v
		cp.lots[k] = &l
	}
	cp.movs = append(cp.movs, s.movs...)
	return cp
}

func (s *store) restore(snap *store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = snap.orders
	s.lines = snap.lines
	s.lots = snap.lots
	s.movs = snap.movs
}

type invRepo struct{ s *store }

func (r *invRepo) Create(_ context.Context, lot *entity.Lot) error {
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

func (r *invRepo) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if l, ok := r.s.lots[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, nil
}

func (r *invRepo) GetByCode(_ context.Context, code string) (*entity.Lot, error) {
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

func (r *invRepo) ListActive(_ context.Context, _ string) ([]*entity.Lot, error) {
	return nil, nil
}

func (r *invRepo) UpdateQuantity(_ context.Context, lotID string, expected, newQty decimal.Decimal, newStatus entity.LotStatus) (bool, error) {
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

func (r *invRepo) Stats(_ context.Context, _ string, _ time.Time) (*repository.InventoryStats, error) {
	return &repository.InventoryStats{}, nil
}

type movRepo struct{ s *store }

func (r *movRepo) Create(_ context.Context, m *entity.Movement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *m
	r.s.movs = append(r.s.movs, &cp)
	return nil
}

func (r *movRepo) ListByLot(_ context.Context, lotID string) ([]*entity.Movement, error) {
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

func (r *movRepo) ListRecent(_ context.Context, _ string, _ int) ([]*entity.Movement, error) {
	return nil, nil
}

func (r *movRepo) SumDeltas(_ context.Context, lotID string) (decimal.Decimal, error) {
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

type itemRepo struct{ s *store }

func (r *itemRepo) GetByID(_ context.Context, id string) (*entity.OrderLine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if l, ok := r.s.lines[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, nil
}

func (r *itemRepo) ListByOrder(_ context.Context, orderID string) ([]*entity.OrderLine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.OrderLine
	for _, l := range r.s.lines {
		if l.OrderID == orderID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *itemRepo) ApplyReceipt(_ context.Context, lineID string, expected, newReceived decimal.Decimal, newStatus entity.LineStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.lines[lineID]
	if !ok || !l.Received.Equal(expected) {
		return false, nil
	}
	l.Received = newReceived
	l.Status = newStatus
	return true, nil
}

func (r *itemRepo) CancelPending(_ context.Context, orderID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.lines {
		if l.OrderID == orderID && !l.Status.Terminal() {
			l.Status = entity.LineCancelled
		}
	}
	return nil
}

// heldLocks filas bloqueadas por la transacción en curso.
type heldLocks struct{ held []*sync.Mutex }

func (h *heldLocks) release() {
	for _, mu := range h.held {
		mu.Unlock()
	}
}

type pedidoRepo struct {
	s     *store
	locks *heldLocks // nil fuera de transacción
}

func (r *pedidoRepo) Create(_ context.Context, order *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *order
	cp.Lines = nil
	r.s.orders[order.ID] = &cp
	for _, l := range order.Lines {
		lcp := *l
		r.s.lines[l.ID] = &lcp
	}
	return nil
}

func (r *pedidoRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if o, ok := r.s.orders[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, nil
}

func (r *pedidoRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	if r.locks != nil {
		mu := r.s.rowLock(id)
		mu.Lock()
		r.locks.held = append(r.locks.held, mu)
	}
	return r.GetByID(ctx, id)
}

func (r *pedidoRepo) UpdateStatus(_ context.Context, id string, status entity.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if o, ok := r.s.orders[id]; ok {
		o.Status = status
	}
	return nil
}

func (r *pedidoRepo) ListByUnit(_ context.Context, _ string, _ entity.OrderStatus, _, _ int) ([]*entity.Order, error) {
	return nil, nil
}

func (r *pedidoRepo) ListPendingReceiving(_ context.Context, _ string) ([]*entity.Order, error) {
	return nil, nil
}

// txRunner implementa los tres contratos de transacción. Si la función falla,
// restaura el snapshot previo: mismo efecto observable que un ROLLBACK.
type txRunner struct{ s *store }

func (t *txRunner) Run(ctx context.Context, fn func(repository.InventarioRepository, repository.MovimientoRepository) error) error {
	snap := t.s.snapshot()
	if err := fn(&invRepo{s: t.s}, &movRepo{s: t.s}); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

func (t *txRunner) RunPedidos(ctx context.Context, fn func(repository.PedidoRepository, repository.PedidoItemRepository) error) error {
	snap := t.s.snapshot()
	if err := fn(&pedidoRepo{s: t.s}, &itemRepo{s: t.s}); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

func (t *txRunner) RunRecepcion(ctx context.Context, fn func(repository.InventarioRepository, repository.MovimientoRepository, repository.PedidoItemRepository, repository.PedidoRepository) error) error {
	snap := t.s.snapshot()
	locks := &heldLocks{}
	defer locks.release()
	if err := fn(&invRepo{s: t.s}, &movRepo{s: t.s}, &itemRepo{s: t.s}, &pedidoRepo{s: t.s, locks: locks}); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Armado del escenario
// ──────────────────────────────────────────────────────────────────────────────

func newTestEngine() (*UseCase, *store) {
	s := newStore()
	tx := &txRunner{s: s}
	ledger := inventario.NewLedgerUseCase(tx, &invRepo{s: s}, &movRepo{s: s})
	orders := pedidos.NewUseCase(tx, &pedidoRepo{s: s}, &itemRepo{s: s}, nil)
	uc := NewUseCase(tx, ledger, orders)
	uc.now = func() time.Time { return time.Date(2025, 5, 1, 11, 30, 0, 0, time.UTC) }
	return uc, s
}

// seedOrder pedido enviado con un item pendiente de 10 unidades.
func seedOrder(s *store) (orderID, lineID string) {
	orderID = uuid.New().String()
	lineID = uuid.New().String()
	s.orders[orderID] = &entity.Order{
		ID:     orderID,
		Numero: 7,
		UnitID: "unidad-1",
		Status: entity.OrderSubmitted,
	}
	s.lines[lineID] = &entity.OrderLine{
		ID:        lineID,
		OrderID:   orderID,
		ProductID: "producto-1",
		Requested: decimal.NewFromInt(10),
		Received:  decimal.Zero,
		Status:    entity.LinePending,
	}
	return orderID, lineID
}

func receiveReq(lineID, qty, lote string) dto.ReceiveRequest {
	return dto.ReceiveRequest{
		LineID:    lineID,
		Quantity:  decimal.RequireFromString(qty),
		LotNumber: lote,
		Expiry:    "2025-06-01",
		Location:  "cámara 2",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Recepción
// ──────────────────────────────────────────────────────────────────────────────

func TestReceive_ParcialLuegoCompleto(t *testing.T) {
	uc, s := newTestEngine()
	orderID, lineID := seedOrder(s)

	// primera entrega: 6 de 10
	resp, err := uc.Receive(context.Background(), "usuario-9", receiveReq(lineID, "6", "A1"))
	require.NoError(t, err)

	assert.Equal(t, "A1-20250601-20250501", resp.Lot.Code,
		"código derivado de lote, caducidad y fecha de recepción")
	assert.Equal(t, string(entity.LotAvailable), resp.Lot.Status)
	assert.True(t, resp.Lot.Current.Equal(decimal.NewFromInt(6)))
	assert.Equal(t, string(entity.LinePartial), resp.Line.Status)
	assert.True(t, resp.Line.Received.Equal(decimal.NewFromInt(6)))
	assert.Equal(t, string(entity.OrderPartial), resp.Order.Status)

	// segunda entrega: los 4 restantes, otro lote físico
	resp, err = uc.Receive(context.Background(), "usuario-9", receiveReq(lineID, "4", "B7"))
	require.NoError(t, err)

	assert.Equal(t, "B7-20250601-20250501", resp.Lot.Code)
	assert.Equal(t, string(entity.LineReceived), resp.Line.Status)
	assert.Equal(t, string(entity.OrderReceived), resp.Order.Status)

	assert.Len(t, s.lots, 2, "cada entrega produce su propio lote")
	assert.Len(t, s.movs, 2, "una entrada por lote")
	assert.Equal(t, entity.OrderReceived, s.orders[orderID].Status)
}

// Dos recepcionistas confirman a la vez los dos items de un pedido. El bloqueo
// de la fila del pedido serializa ambas transacciones: la última recomputa el
// estado con los dos items ya escritos y el pedido termina recibido, nunca
// parcial con todo recibido.
func TestReceive_ItemsConcurrentesDelMismoPedido(t *testing.T) {
	uc, s := newTestEngine()
	orderID, line1 := seedOrder(s)
	line2 := uuid.New().String()
	s.lines[line2] = &entity.OrderLine{
		ID:        line2,
		OrderID:   orderID,
		ProductID: "producto-2",
		Requested: decimal.NewFromInt(4),
		Received:  decimal.Zero,
		Status:    entity.LinePending,
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	receive := func(lineID, qty, lote string) {
		defer wg.Done()
		_, err := uc.Receive(context.Background(), "usuario-9", receiveReq(lineID, qty, lote))
		errs <- err
	}
	wg.Add(2)
	go receive(line1, "10", "A1")
	go receive(line2, "4", "B7")
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, entity.LineReceived, s.lines[line1].Status)
	assert.Equal(t, entity.LineReceived, s.lines[line2].Status)
	assert.Equal(t, entity.OrderReceived, s.orders[orderID].Status,
		"con todos los items recibidos el pedido no puede quedar parcial")
}

func TestReceive_ExcesoSeRechazaSinRecortar(t *testing.T) {
	uc, s := newTestEngine()
	_, lineID := seedOrder(s)

	_, err := uc.Receive(context.Background(), "usuario-9", receiveReq(lineID, "10.5", "A1"))
	assert.ErrorIs(t, err, domain.ErrOverReceipt)

	line := s.lines[lineID]
	assert.True(t, line.Received.IsZero(), "el item no debe mutar")
	assert.Equal(t, entity.LinePending, line.Status)
	assert.Empty(t, s.lots, "no se crea lote")
	assert.Empty(t, s.movs)
}

func TestReceive_ExcesoContraLoYaRecibido(t *testing.T) {
	uc, s := newTestEngine()
	_, lineID := seedOrder(s)

	_, err := uc.Receive(context.Background(), "usuario-9", receiveReq(lineID, "6", "A1"))
	require.NoError(t, err)

	// quedan 4 pendientes; 5 es exceso
	_, err = uc.Receive(context.Background(), "usuario-9", receiveReq(lineID, "5", "B7"))
	assert.ErrorIs(t, err, domain.ErrOverReceipt)
	assert.True(t, s.lines[lineID].Received.Equal(decimal.NewFromInt(6)))
}

func TestReceive_CodigoDuplicadoAbortaTodo(t *testing.T) {
	uc, s := newTestEngine()
	_, lineID := seedOrder(s)

	_, err := uc.Receive(context.Background(), "usuario-9", receiveReq(lineID, "6", "A1"))
	require.NoError(t, err)

	// mismo lote, misma caducidad, mismo día: colisión de código
	_, err = uc.Receive(context.Background(), "usuario-9", receiveReq(lineID, "4", "A1"))
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)

	line := s.lines[lineID]
	assert.True(t, line.Received.Equal(decimal.NewFromInt(6)),
		"la recepción fallida no avanza el item")
	assert.Equal(t, entity.LinePartial, line.Status)
	assert.Len(t, s.lots, 1, "solo el lote de la primera recepción")
	assert.Len(t, s.movs, 1)
}

func TestReceive_ItemTerminalEsConflicto(t *testing.T) {
	uc, s := newTestEngine()
	_, lineID := seedOrder(s)
	s.lines[lineID].Status = entity.LineCancelled

	_, err := uc.Receive(context.Background(), "usuario-9", receiveReq(lineID, "1", "A1"))
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestReceive_ItemInexistente(t *testing.T) {
	uc, _ := newTestEngine()

	_, err := uc.Receive(context.Background(), "usuario-9", receiveReq("no-existe", "1", "A1"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReceive_Validaciones(t *testing.T) {
	uc, s := newTestEngine()
	_, lineID := seedOrder(s)

	cases := []struct {
		name string
		req  dto.ReceiveRequest
	}{
		{"sin item", receiveReq("", "1", "A1")},
		{"cantidad cero", receiveReq(lineID, "0", "A1")},
		{"cantidad negativa", receiveReq(lineID, "-2", "A1")},
		{"lote en blanco", receiveReq(lineID, "1", "   ")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Receive(context.Background(), "usuario-9", tc.req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	fecha := receiveReq(lineID, "1", "A1")
	fecha.Expiry = "01/06/2025"
	_, err := uc.Receive(context.Background(), "usuario-9", fecha)
	assert.ErrorIs(t, err, domain.ErrValidation, "la fecha debe ser YYYY-MM-DD")

	assert.Empty(t, s.lots, "ninguna validación fallida toca el estado")
}

func TestReceive_LoteNormalizadoEnCodigo(t *testing.T) {
	uc, s := newTestEngine()
	_, lineID := seedOrder(s)

	resp, err := uc.Receive(context.Background(), "usuario-9", receiveReq(lineID, "2", " añejo 01 "))
	require.NoError(t, err)
	assert.Equal(t, "ANEJO01-20250601-20250501", resp.Lot.Code,
		"mayúsculas, sin espacios y sin diacríticos")
	assert.Len(t, s.lots, 1)
}

func TestReceive_FechaDelCodigoEsLaLocal(t *testing.T) {
	uc, s := newTestEngine()
	_, lineID := seedOrder(s)
	// madrugada local en una zona al este de UTC: el día UTC aún es el anterior
	uc.now = func() time.Time {
		return time.Date(2025, 5, 1, 0, 30, 0, 0, time.FixedZone("CEST", 2*60*60))
	}

	resp, err := uc.Receive(context.Background(), "usuario-9", receiveReq(lineID, "2", "A1"))
	require.NoError(t, err)
	assert.Equal(t, "A1-20250601-20250501", resp.Lot.Code,
		"la fecha de recepción es la del calendario local, no el día UTC")
}

// ──────────────────────────────────────────────────────────────────────────────
// Preview de código
// ──────────────────────────────────────────────────────────────────────────────

func TestPreviewCode(t *testing.T) {
	uc, _ := newTestEngine()

	out, err := uc.PreviewCode("A1", "2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, "A1-20250601-20250501", out.Code)

	_, err = uc.PreviewCode("A1", "junio")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.PreviewCode("", "2025-06-01")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
