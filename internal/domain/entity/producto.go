package entity

import "time"

// Product datos maestros de producto; el núcleo los consume en solo lectura.
type Product struct {
	ID         string
	Name       string
	Brand      string
	Format     string // presentación: "caja 6x1L", "saco 25kg", etc.
	CategoryID string
	SupplierID string
	Active     bool
	CreatedAt  time.Time
}

// Category categoría de producto (datos maestros).
type Category struct {
	ID   string
	Name string
}

// Supplier proveedor (datos maestros).
type Supplier struct {
	ID    string
	Name  string
	Phone string
}
