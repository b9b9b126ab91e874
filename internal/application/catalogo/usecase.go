// Package catalogo expone los datos maestros en solo lectura: el formulario
// de pedido necesita productos y unidades pero nunca los muta.
package catalogo

import (
	"context"

	"github.com/chefmanager/chefmanager-api/internal/application/dto"
	"github.com/chefmanager/chefmanager-api/internal/domain/repository"
)

// UseCase consultas de catálogo.
type UseCase struct {
	productRepo repository.ProductoRepository
	unitRepo    repository.UnidadRepository
}

// NewUseCase construye el caso de uso de catálogo.
func NewUseCase(productRepo repository.ProductoRepository, unitRepo repository.UnidadRepository) *UseCase {
	return &UseCase{productRepo: productRepo, unitRepo: unitRepo}
}

// ListProducts productos activos, paginados, en orden alfabético.
func (uc *UseCase) ListProducts(ctx context.Context, page dto.PageRequest) ([]dto.ProductResponse, error) {
	products, err := uc.productRepo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, dto.ProductResponse{ID: p.ID, Name: p.Name, Brand: p.Brand, Format: p.Format})
	}
	return out, nil
}

// ListUnits unidades activas.
func (uc *UseCase) ListUnits(ctx context.Context) ([]dto.UnitResponse, error) {
	units, err := uc.unitRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UnitResponse, 0, len(units))
	for _, u := range units {
		out = append(out, dto.UnitResponse{ID: u.ID, Name: u.Name, Address: u.Address})
	}
	return out, nil
}
