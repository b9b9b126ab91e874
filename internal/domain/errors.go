package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrValidation        = errors.New("entrada inválida")
	ErrInvalidQuantity   = errors.New("cantidad inválida")
	ErrEmptyOrder        = errors.New("el pedido no tiene items")
	ErrOverReceipt       = errors.New("la cantidad excede lo pendiente por recibir")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrDuplicateCode     = errors.New("el código único ya existe")
	ErrConflict          = errors.New("conflicto de concurrencia, reintentar")
	ErrStoreUnavailable  = errors.New("almacén de datos no disponible")

	// Auth
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
)
