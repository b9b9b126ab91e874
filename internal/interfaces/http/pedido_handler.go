package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/chefmanager/chefmanager-api/internal/application/dto"
	"github.com/chefmanager/chefmanager-api/internal/application/pedidos"
	"github.com/chefmanager/chefmanager-api/internal/domain"
	"github.com/chefmanager/chefmanager-api/pkg/metrics"
)

// PedidoHandler maneja las peticiones HTTP para pedidos (protegido).
type PedidoHandler struct {
	uc *pedidos.UseCase
}

// NewPedidoHandler construye el handler de pedidos.
func NewPedidoHandler(uc *pedidos.UseCase) *PedidoHandler {
	return &PedidoHandler{uc: uc}
}

// Submit godoc
// @Summary      Crear y enviar pedido
// @Tags         pedidos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubmitOrderRequest  true  "items y notas"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/pedidos [post]
func (h *PedidoHandler) Submit(c *fiber.Ctx) error {
	var in dto.SubmitOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.SubmitOrder(c.UserContext(), GetUnitID(c), GetUserID(c), in)
	if err != nil {
		return orderError(c, err)
	}
	metrics.PedidosCreados.Inc()
	return c.Status(fiber.StatusCreated).JSON(out)
}

// SaveDraft godoc
// @Summary      Guardar borrador de pedido
// @Tags         pedidos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubmitOrderRequest  true  "items y notas"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/pedidos/borrador [post]
func (h *PedidoHandler) SaveDraft(c *fiber.Ctx) error {
	var in dto.SubmitOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.SaveDraft(c.UserContext(), GetUnitID(c), GetUserID(c), in)
	if err != nil {
		return orderError(c, err)
	}
	metrics.PedidosCreados.Inc()
	return c.Status(fiber.StatusCreated).JSON(out)
}

// SubmitDraft godoc
// @Summary      Enviar un borrador existente
// @Tags         pedidos
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/pedidos/{id}/enviar [post]
func (h *PedidoHandler) SubmitDraft(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.uc.SubmitDraft(c.UserContext(), id)
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar pedido
// @Tags         pedidos
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del pedido"
// @Success      204  "cancelado"
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/pedidos/{id}/cancelar [post]
func (h *PedidoHandler) Cancel(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	if err := h.uc.CancelOrder(c.UserContext(), id); err != nil {
		return orderError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetByID godoc
// @Summary      Obtener pedido con items
// @Tags         pedidos
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/pedidos/{id} [get]
func (h *PedidoHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.uc.Get(c.UserContext(), id)
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar pedidos de la unidad
// @Tags         pedidos
// @Security     Bearer
// @Produce      json
// @Param        estado  query  string  false  "Filtro por estado"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.OrderResponse
// @Router       /api/pedidos [get]
func (h *PedidoHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	out, err := h.uc.ListByUnit(c.UserContext(), GetUnitID(c), c.Query("estado"), page)
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(out)
}

// ListPending godoc
// @Summary      Pedidos pendientes de recepción
// @Tags         pedidos
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.OrderResponse
// @Router       /api/pedidos/pendientes [get]
func (h *PedidoHandler) ListPending(c *fiber.Ctx) error {
	out, err := h.uc.ListPendingReceiving(c.UserContext(), GetUnitID(c))
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(out)
}

// orderError traduce errores de dominio de pedidos a códigos HTTP.
func orderError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrEmptyOrder):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "EMPTY_ORDER", Message: "el pedido no tiene items"})
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "pedido no encontrado"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
