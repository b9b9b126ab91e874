package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/chefmanager/chefmanager-api/internal/application/catalogo"
	"github.com/chefmanager/chefmanager-api/internal/application/dto"
)

// CatalogoHandler lecturas de datos maestros (protegido, cualquier rol).
type CatalogoHandler struct {
	uc *catalogo.UseCase
}

// NewCatalogoHandler construye el handler de catálogo.
func NewCatalogoHandler(uc *catalogo.UseCase) *CatalogoHandler {
	return &CatalogoHandler{uc: uc}
}

// ListProducts godoc
// @Summary      Listar productos activos
// @Tags         catalogo
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200  {array}  dto.ProductResponse
// @Router       /api/productos [get]
func (h *CatalogoHandler) ListProducts(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	out, err := h.uc.ListProducts(c.UserContext(), page)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// ListUnits godoc
// @Summary      Listar unidades activas
// @Tags         catalogo
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.UnitResponse
// @Router       /api/unidades [get]
func (h *CatalogoHandler) ListUnits(c *fiber.Ctx) error {
	out, err := h.uc.ListUnits(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}
