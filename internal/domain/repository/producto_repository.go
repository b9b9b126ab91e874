package repository

import (
	"context"

	"github.com/chefmanager/chefmanager-api/internal/domain/entity"
)

// ProductoRepository puerto de lectura de datos maestros de producto.
// El núcleo nunca los muta.
type ProductoRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
}

// UnidadRepository puerto de lectura de unidades.
type UnidadRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Unit, error)
	List(ctx context.Context) ([]*entity.Unit, error)
}
