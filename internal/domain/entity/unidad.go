package entity

import "time"

// Unit unidad organizativa (cocina, barra, almacén central) que pide y
// mantiene inventario propio.
type Unit struct {
	ID        string
	Name      string
	Address   string
	Active    bool
	CreatedAt time.Time
}
