package dto

import "time"

// RegisterRequest alta de usuario.
type RegisterRequest struct {
	UnitID   string `json:"unidad_id"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"nombre"`
	Role     string `json:"rol"`
}

// LoginRequest credenciales de acceso.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse usuario en respuestas (nunca incluye el hash).
type UserResponse struct {
	ID        string    `json:"id"`
	UnitID    string    `json:"unidad_id"`
	Email     string    `json:"email"`
	Name      string    `json:"nombre"`
	Role      string    `json:"rol"`
	Active    bool      `json:"activo"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse token más el usuario autenticado.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
