package entity

import "time"

// Roles válidos para User. La tabla de permisos por categoría de operación
// vive en la capa de interfaces; el dominio solo conoce el vocabulario.
const (
	RoleSuperuser = "superuser"
	RoleAdmin     = "admin"
	RoleRecepcion = "recepcion"
	RoleCocina    = "cocina"
	RoleViewer    = "viewer"
)

// User usuario del sistema, asociado a una unidad.
type User struct {
	ID           string
	UnitID       string
	Email        string
	PasswordHash string // bcrypt, nunca plano después de persistir
	Name         string
	Role         string // superuser, admin, recepcion, cocina, viewer
	Active       bool
	CreatedAt    time.Time
}
