package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/chefmanager/chefmanager-api/internal/application/dto"
	"github.com/chefmanager/chefmanager-api/internal/application/recepcion"
	"github.com/chefmanager/chefmanager-api/internal/domain"
	"github.com/chefmanager/chefmanager-api/pkg/metrics"
)

// RecepcionHandler maneja la confirmación de recepciones (protegido).
type RecepcionHandler struct {
	uc *recepcion.UseCase
}

// NewRecepcionHandler construye el handler de recepción.
func NewRecepcionHandler(uc *recepcion.UseCase) *RecepcionHandler {
	return &RecepcionHandler{uc: uc}
}

// Receive godoc
// @Summary      Confirmar recepción de un item
// @Tags         recepcion
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveRequest  true  "item, cantidad, lote, caducidad"
// @Success      201   {object}  dto.ReceiveResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/recepcion [post]
func (h *RecepcionHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Receive(c.UserContext(), GetUserID(c), in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidQuantity):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "item de pedido no encontrado"})
		case errors.Is(err, domain.ErrOverReceipt):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "OVER_RECEIPT", Message: err.Error()})
		case errors.Is(err, domain.ErrDuplicateCode):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_CODE", Message: err.Error()})
		case errors.Is(err, domain.ErrConflict):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
	}
	metrics.Recepciones.Inc()
	metrics.Movimientos.WithLabelValues("entrada").Inc()
	return c.Status(fiber.StatusCreated).JSON(out)
}

// PreviewCode godoc
// @Summary      Previsualizar el código único de un lote
// @Tags         recepcion
// @Security     Bearer
// @Produce      json
// @Param        lote             query  string  true  "Número de lote del proveedor"
// @Param        fecha_caducidad  query  string  true  "Caducidad YYYY-MM-DD"
// @Success      200  {object}  dto.CodePreviewResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/recepcion/codigo [get]
func (h *RecepcionHandler) PreviewCode(c *fiber.Ctx) error {
	out, err := h.uc.PreviewCode(c.Query("lote"), c.Query("fecha_caducidad"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	return c.JSON(out)
}
