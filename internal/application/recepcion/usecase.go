package recepcion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chefmanager/chefmanager-api/internal/application/dto"
	"github.com/chefmanager/chefmanager-api/internal/application/inventario"
	"github.com/chefmanager/chefmanager-api/internal/application/pedidos"
	"github.com/chefmanager/chefmanager-api/internal/domain"
	"github.com/chefmanager/chefmanager-api/internal/domain/codigo"
	"github.com/chefmanager/chefmanager-api/internal/domain/entity"
	"github.com/chefmanager/chefmanager-api/internal/domain/repository"
)

// Formato de fecha del formulario de recepción.
const dateLayout = "2006-01-02"

// Reintentos ante un item que otro recepcionista avanzó entre lectura y escritura.
const maxCASAttempts = 3

// UseCase motor de recepción: convierte un item pendiente o parcial en un lote
// de inventario y avanza los estados de item y pedido. Toda la secuencia corre
// en una transacción: si el registro del lote falla (código duplicado,
// cantidad inválida) el item y el pedido quedan intactos.
type UseCase struct {
	txRunner TxRunner
	ledger   *inventario.LedgerUseCase
	orders   *pedidos.UseCase

	now func() time.Time
}

// NewUseCase construye el motor de recepción sobre el ledger y el ciclo de pedidos.
func NewUseCase(txRunner TxRunner, ledger *inventario.LedgerUseCase, orders *pedidos.UseCase) *UseCase {
	return &UseCase{
		txRunner: txRunner,
		ledger:   ledger,
		orders:   orders,
		now:      time.Now,
	}
}

// Receive confirma la recepción de un item de pedido.
// Valida entrada, verifica lo pendiente (ErrOverReceipt si se excede: se
// rechaza, nunca se recorta), registra el lote con su movimiento de entrada,
// avanza cantidad_recibida con escritura condicional y recomputa el estado del
// pedido leyendo los items frescos. Devuelve lote, item y pedido actualizados
// para que el llamador imprima la etiqueta.
func (uc *UseCase) Receive(ctx context.Context, actor string, in dto.ReceiveRequest) (*dto.ReceiveResponse, error) {
	if in.LineID == "" {
		return nil, fmt.Errorf("pedido_item_id obligatorio: %w", domain.ErrValidation)
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("cantidad no positiva: %w", domain.ErrValidation)
	}
	if strings.TrimSpace(in.LotNumber) == "" {
		return nil, fmt.Errorf("lote obligatorio: %w", domain.ErrValidation)
	}
	expiry, err := time.Parse(dateLayout, in.Expiry)
	if err != nil {
		return nil, fmt.Errorf("fecha de caducidad %q no válida: %w", in.Expiry, domain.ErrValidation)
	}
	// fecha calendario en la zona del servidor; truncar sobre el epoch UTC
	// corre el día para recepciones de madrugada
	year, month, day := uc.now().Date()
	today := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)

	var resp *dto.ReceiveResponse
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		err := uc.txRunner.RunRecepcion(ctx, func(
			invRepo repository.InventarioRepository,
			movRepo repository.MovimientoRepository,
			itemRepo repository.PedidoItemRepository,
			pedidoRepo repository.PedidoRepository,
		) error {
			line, err := itemRepo.GetByID(ctx, in.LineID)
			if err != nil {
				return err
			}
			if line == nil {
				return domain.ErrNotFound
			}
			if line.Status.Terminal() {
				return fmt.Errorf("el item ya está %s: %w", line.Status, domain.ErrConflict)
			}
			if in.Quantity.GreaterThan(line.Remaining()) {
				return fmt.Errorf("pendiente %s, pedido recibir %s: %w",
					line.Remaining(), in.Quantity, domain.ErrOverReceipt)
			}
			// bloquea la fila del pedido: recepciones concurrentes de items
			// distintos del mismo pedido se serializan y la última recomputa
			// el estado con todos los items ya escritos
			order, err := pedidoRepo.GetByIDForUpdate(ctx, line.OrderID)
			if err != nil {
				return err
			}
			if order == nil {
				return domain.ErrNotFound
			}

			lot, err := uc.ledger.RegisterLotTx(ctx, invRepo, movRepo, inventario.RegisterLotInput{
				LineID:     line.ID,
				UnitID:     order.UnitID,
				ProductID:  line.ProductID,
				LotNumber:  in.LotNumber,
				Expiry:     expiry,
				ReceivedAt: today,
				Quantity:   in.Quantity,
				Location:   in.Location,
				ReceivedBy: actor,
			})
			if err != nil {
				return err
			}

			newReceived := line.Received.Add(in.Quantity)
			newStatus := entity.StatusAfterReceipt(newReceived, line.Requested)
			applied, err := itemRepo.ApplyReceipt(ctx, line.ID, line.Received, newReceived, newStatus)
			if err != nil {
				return err
			}
			if !applied {
				// otro recepcionista avanzó el item: abortar la tx (el lote
				// insertado se revierte) y reintentar desde la lectura
				return domain.ErrConflict
			}
			line.Received = newReceived
			line.Status = newStatus

			orderStatus, err := uc.orders.RecomputeStatusTx(ctx, pedidoRepo, itemRepo, order.ID)
			if err != nil {
				return err
			}
			order.Status = orderStatus

			resp = &dto.ReceiveResponse{
				Lot:   inventario.ToLotResponse(lot, today),
				Line:  pedidos.ToLineResponse(line),
				Order: pedidos.ToOrderResponse(order),
			}
			return nil
		})
		if err == nil {
			return resp, nil
		}
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		return nil, err
	}
	return nil, domain.ErrConflict
}

// PreviewCode deriva el código que se generaría confirmando hoy, para mostrarlo
// en el formulario antes del commit. Mismo algoritmo determinista que el registro.
func (uc *UseCase) PreviewCode(lote, caducidad string) (*dto.CodePreviewResponse, error) {
	expiry, err := time.Parse(dateLayout, caducidad)
	if err != nil {
		return nil, fmt.Errorf("fecha de caducidad %q no válida: %w", caducidad, domain.ErrValidation)
	}
	code, err := codigo.Generar(lote, expiry, uc.now())
	if err != nil {
		return nil, err
	}
	return &dto.CodePreviewResponse{Code: code}, nil
}
