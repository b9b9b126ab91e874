package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/chefmanager/chefmanager-api/internal/domain/entity"
	"github.com/chefmanager/chefmanager-api/internal/domain/repository"
)

var (
	_ repository.ProductoRepository = (*ProductoRepo)(nil)
	_ repository.UnidadRepository   = (*UnidadRepo)(nil)
)

// ProductoRepo lectura de datos maestros de producto.
type ProductoRepo struct {
	q Querier
}

func NewProductoRepository(q Querier) *ProductoRepo {
	return &ProductoRepo{q: q}
}

const productColumns = `
	id, nombre, COALESCE(marca, ''), COALESCE(formato, ''),
	COALESCE(categoria_id::text, ''), COALESCE(proveedor_id::text, ''),
	activo, created_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.Name, &p.Brand, &p.Format,
		&p.CategoryID, &p.SupplierID, &p.Active, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID devuelve (nil, nil) si el producto no existe.
func (r *ProductoRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM productos WHERE id = $1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get producto: %w", err)
	}
	return p, nil
}

func (r *ProductoRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM productos
		WHERE activo
		ORDER BY nombre ASC
		LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list productos: %w", err)
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan producto: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// UnidadRepo lectura de unidades organizativas.
type UnidadRepo struct {
	q Querier
}

func NewUnidadRepository(q Querier) *UnidadRepo {
	return &UnidadRepo{q: q}
}

// GetByID devuelve (nil, nil) si la unidad no existe.
func (r *UnidadRepo) GetByID(ctx context.Context, id string) (*entity.Unit, error) {
	query := `
		SELECT id, nombre, COALESCE(direccion, ''), activo, created_at
		FROM unidades WHERE id = $1`
	var u entity.Unit
	err := r.q.QueryRow(ctx, query, id).Scan(&u.ID, &u.Name, &u.Address, &u.Active, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get unidad: %w", err)
	}
	return &u, nil
}

func (r *UnidadRepo) List(ctx context.Context) ([]*entity.Unit, error) {
	query := `
		SELECT id, nombre, COALESCE(direccion, ''), activo, created_at
		FROM unidades
		WHERE activo
		ORDER BY nombre ASC`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list unidades: %w", err)
	}
	defer rows.Close()

	var units []*entity.Unit
	for rows.Next() {
		var u entity.Unit
		if err := rows.Scan(&u.ID, &u.Name, &u.Address, &u.Active, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan unidad: %w", err)
		}
		units = append(units, &u)
	}
	return units, rows.Err()
}
