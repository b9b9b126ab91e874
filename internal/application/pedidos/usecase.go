package pedidos

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chefmanager/chefmanager-api/internal/application/dto"
	"github.com/chefmanager/chefmanager-api/internal/domain"
	"github.com/chefmanager/chefmanager-api/internal/domain/entity"
	"github.com/chefmanager/chefmanager-api/internal/domain/repository"
)

// UseCase máquina de estados de pedidos e items. El estado del pedido nunca se
// fija a mano: siempre se deriva de los estados de sus items, salvo la
// cancelación explícita.
type UseCase struct {
	txRunner    TxRunner
	pedidoRepo  repository.PedidoRepository
	itemRepo    repository.PedidoItemRepository
	productRepo repository.ProductoRepository

	now func() time.Time
}

// NewUseCase construye el caso de uso de pedidos.
func NewUseCase(txRunner TxRunner, pedidoRepo repository.PedidoRepository, itemRepo repository.PedidoItemRepository, productRepo repository.ProductoRepository) *UseCase {
	return &UseCase{
		txRunner:    txRunner,
		pedidoRepo:  pedidoRepo,
		itemRepo:    itemRepo,
		productRepo: productRepo,
		now:         time.Now,
	}
}

// SubmitOrder crea un pedido en estado enviado con un item pendiente por cada
// renglón. Errores: ErrEmptyOrder sin renglones, ErrValidation con cantidades
// no positivas o productos inexistentes.
func (uc *UseCase) SubmitOrder(ctx context.Context, unitID, actor string, in dto.SubmitOrderRequest) (*dto.OrderResponse, error) {
	return uc.createOrder(ctx, unitID, actor, in, entity.OrderSubmitted)
}

// SaveDraft crea un pedido en borrador: mismas validaciones que SubmitOrder
// pero queda editable y sin entrar al flujo de recepción hasta enviarse.
func (uc *UseCase) SaveDraft(ctx context.Context, unitID, actor string, in dto.SubmitOrderRequest) (*dto.OrderResponse, error) {
	return uc.createOrder(ctx, unitID, actor, in, entity.OrderDraft)
}

func (uc *UseCase) createOrder(ctx context.Context, unitID, actor string, in dto.SubmitOrderRequest, status entity.OrderStatus) (*dto.OrderResponse, error) {
	if unitID == "" || actor == "" {
		return nil, domain.ErrValidation
	}
	if len(in.Lines) == 0 {
		return nil, domain.ErrEmptyOrder
	}
	now := uc.now()
	order := &entity.Order{
		ID:        uuid.New().String(),
		UnitID:    unitID,
		Requester: actor,
		Status:    status,
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, line := range in.Lines {
		if !line.Quantity.GreaterThan(decimal.Zero) {
			return nil, fmt.Errorf("cantidad no positiva para producto %s: %w", line.ProductID, domain.ErrValidation)
		}
		product, err := uc.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("producto %s no existe: %w", line.ProductID, domain.ErrValidation)
		}
		order.Lines = append(order.Lines, &entity.OrderLine{
			ID:          uuid.New().String(),
			OrderID:     order.ID,
			ProductID:   line.ProductID,
			Requested:   line.Quantity,
			Received:    decimal.Zero,
			Status:      entity.LinePending,
			ProductName: product.Name,
		})
	}
	// encabezado e items en una sola transacción: un insert de item fallido
	// no deja un pedido a medias visible para recepción
	err := uc.txRunner.RunPedidos(ctx, func(pedidoRepo repository.PedidoRepository, _ repository.PedidoItemRepository) error {
		return pedidoRepo.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// SubmitDraft envía un pedido en borrador. ErrConflict si ya no está en borrador.
func (uc *UseCase) SubmitDraft(ctx context.Context, orderID string) (*dto.OrderResponse, error) {
	order, err := uc.pedidoRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if !order.Status.CanSubmit() {
		return nil, fmt.Errorf("el pedido %d no está en borrador: %w", order.Numero, domain.ErrConflict)
	}
	if err := uc.pedidoRepo.UpdateStatus(ctx, orderID, entity.OrderSubmitted); err != nil {
		return nil, err
	}
	order.Status = entity.OrderSubmitted
	resp := ToOrderResponse(order)
	return &resp, nil
}

// RecomputeStatus deriva el estado del pedido de una lectura fresca de todos
// sus items y lo persiste si cambió. Idempotente: dos llamadas seguidas dejan
// el mismo resultado. Lo invoca el motor de recepción tras cada item.
func (uc *UseCase) RecomputeStatus(ctx context.Context, orderID string) (entity.OrderStatus, error) {
	return uc.RecomputeStatusTx(ctx, uc.pedidoRepo, uc.itemRepo, orderID)
}

// RecomputeStatusTx es RecomputeStatus sobre repositorios ya atados a una
// transacción, para ejecutarse dentro de la tx de la recepción.
func (uc *UseCase) RecomputeStatusTx(ctx context.Context, pedidoRepo repository.PedidoRepository, itemRepo repository.PedidoItemRepository, orderID string) (entity.OrderStatus, error) {
	order, err := pedidoRepo.GetByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if order == nil {
		return "", domain.ErrNotFound
	}
	lines, err := itemRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	derived := entity.DeriveOrderStatus(order.Status, lines)
	if derived != order.Status {
		if err := pedidoRepo.UpdateStatus(ctx, orderID, derived); err != nil {
			return "", err
		}
	}
	return derived, nil
}

// CancelOrder cancela el pedido y todos sus items no terminales, en una sola
// transacción. ErrConflict si el pedido ya es terminal.
func (uc *UseCase) CancelOrder(ctx context.Context, orderID string) error {
	return uc.txRunner.RunPedidos(ctx, func(pedidoRepo repository.PedidoRepository, itemRepo repository.PedidoItemRepository) error {
		order, err := pedidoRepo.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if !order.Status.CanCancel() {
			return fmt.Errorf("el pedido %d ya es terminal: %w", order.Numero, domain.ErrConflict)
		}
		if err := itemRepo.CancelPending(ctx, orderID); err != nil {
			return err
		}
		return pedidoRepo.UpdateStatus(ctx, orderID, entity.OrderCancelled)
	})
}

// Get devuelve el pedido con sus items.
func (uc *UseCase) Get(ctx context.Context, orderID string) (*dto.OrderResponse, error) {
	order, err := uc.pedidoRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.itemRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Lines = lines
	resp := ToOrderResponse(order)
	return &resp, nil
}

// ListByUnit pedidos de la unidad, filtro opcional por estado.
func (uc *UseCase) ListByUnit(ctx context.Context, unitID, status string, page dto.PageRequest) ([]dto.OrderResponse, error) {
	filter := entity.OrderStatus(status)
	if status != "" && !filter.Valid() {
		return nil, fmt.Errorf("estado %q desconocido: %w", status, domain.ErrValidation)
	}
	page.DefaultPage()
	orders, err := uc.pedidoRepo.ListByUnit(ctx, unitID, filter, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, ToOrderResponse(o))
	}
	return out, nil
}

// ListPendingReceiving pedidos enviados o parciales con items por recibir,
// para la pantalla de recepción.
func (uc *UseCase) ListPendingReceiving(ctx context.Context, unitID string) ([]dto.OrderResponse, error) {
	orders, err := uc.pedidoRepo.ListPendingReceiving(ctx, unitID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, ToOrderResponse(o))
	}
	return out, nil
}

// ToOrderResponse mapea un pedido (con los items que traiga cargados) a DTO.
func ToOrderResponse(o *entity.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:        o.ID,
		Numero:    o.Numero,
		UnitID:    o.UnitID,
		Requester: o.Requester,
		Status:    string(o.Status),
		Notes:     o.Notes,
		CreatedAt: o.CreatedAt,
	}
	for _, l := range o.Lines {
		resp.Lines = append(resp.Lines, ToLineResponse(l))
	}
	return resp
}

// ToLineResponse mapea un item de pedido a DTO.
func ToLineResponse(l *entity.OrderLine) dto.OrderLineResponse {
	return dto.OrderLineResponse{
		ID:          l.ID,
		ProductID:   l.ProductID,
		ProductName: l.ProductName,
		Requested:   l.Requested,
		Received:    l.Received,
		Status:      string(l.Status),
	}
}
