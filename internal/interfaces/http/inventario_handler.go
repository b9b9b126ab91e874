package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/chefmanager/chefmanager-api/internal/application/dto"
	"github.com/chefmanager/chefmanager-api/internal/application/inventario"
	"github.com/chefmanager/chefmanager-api/internal/domain"
	"github.com/chefmanager/chefmanager-api/internal/domain/entity"
	"github.com/chefmanager/chefmanager-api/pkg/metrics"
)

// InventarioHandler maneja lotes, consumos y el tablero de inventario (protegido).
type InventarioHandler struct {
	uc *inventario.LedgerUseCase
}

// NewInventarioHandler construye el handler de inventario.
func NewInventarioHandler(uc *inventario.LedgerUseCase) *InventarioHandler {
	return &InventarioHandler{uc: uc}
}

// List godoc
// @Summary      Lotes activos de la unidad (orden FEFO)
// @Tags         inventario
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.LotResponse
// @Router       /api/inventario [get]
func (h *InventarioHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.ListActive(c.UserContext(), GetUnitID(c))
	if err != nil {
		return inventoryError(c, err)
	}
	return c.JSON(out)
}

// GetByCode godoc
// @Summary      Buscar lote por código único (escaneo de etiqueta)
// @Tags         inventario
// @Security     Bearer
// @Produce      json
// @Param        codigo  path  string  true  "Código único del lote"
// @Success      200  {object}  dto.LotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventario/codigo/{codigo} [get]
func (h *InventarioHandler) GetByCode(c *fiber.Ctx) error {
	code := c.Params("codigo")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_CODE", Message: "código es requerido"})
	}
	out, err := h.uc.LookupByCode(c.UserContext(), code)
	if err != nil {
		return inventoryError(c, err)
	}
	return c.JSON(out)
}

// Deplete godoc
// @Summary      Registrar consumo o merma contra un lote
// @Tags         inventario
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del lote"
// @Param        body  body  dto.DepleteRequest  true  "cantidad, tipo, motivo"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventario/{id}/consumo [post]
func (h *InventarioHandler) Deplete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.DepleteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	kind := entity.MovementKind(in.Kind)
	mov, err := h.uc.Deplete(c.UserContext(), id, inventario.DepleteInput{
		Quantity: in.Quantity,
		Kind:     kind,
		ActorID:  GetUserID(c),
		Reason:   in.Reason,
	})
	if err != nil {
		return inventoryError(c, err)
	}
	metrics.Movimientos.WithLabelValues(string(kind)).Inc()
	return c.Status(fiber.StatusCreated).JSON(inventario.ToMovementResponse(mov))
}

// Stats godoc
// @Summary      Totales del tablero de inventario
// @Tags         inventario
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.InventoryStatsResponse
// @Router       /api/inventario/stats [get]
func (h *InventarioHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.UserContext(), GetUnitID(c))
	if err != nil {
		return inventoryError(c, err)
	}
	return c.JSON(out)
}

// Movements godoc
// @Summary      Historial de movimientos de un lote
// @Tags         inventario
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del lote"
// @Success      200  {object}  dto.LotMovementsResponse
// @Router       /api/inventario/{id}/movimientos [get]
func (h *InventarioHandler) Movements(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.uc.MovementsByLot(c.UserContext(), id)
	if err != nil {
		return inventoryError(c, err)
	}
	return c.JSON(out)
}

// RecentMovements godoc
// @Summary      Últimos movimientos de la unidad
// @Tags         inventario
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Límite"  default(20)
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/movimientos [get]
func (h *InventarioHandler) RecentMovements(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	out, err := h.uc.RecentMovements(c.UserContext(), GetUnitID(c), limit)
	if err != nil {
		return inventoryError(c, err)
	}
	return c.JSON(out)
}

// inventoryError traduce errores de dominio de inventario a códigos HTTP.
func inventoryError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidQuantity):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "lote no encontrado"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
