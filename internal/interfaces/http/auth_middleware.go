package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/chefmanager/chefmanager-api/internal/application/dto"
	"github.com/chefmanager/chefmanager-api/pkg/jwt"
)

// Locals keys para UserID, UnitID y Role en Fiber.
const (
	LocalUserID = "user_id"
	LocalUnitID = "unidad_id"
	LocalRole   = "rol"
)

// Permisos por categoría de operación. Replica la tabla de la aplicación
// original: recepcion solo recibe, cocina pide y consume, viewer solo lee.
const (
	PermPedir    = "pedir"
	PermRecibir  = "recibir"
	PermConsumir = "consumir"
)

var rolePermissions = map[string][]string{
	"superuser": {PermPedir, PermRecibir, PermConsumir},
	"admin":     {PermPedir, PermRecibir, PermConsumir},
	"recepcion": {PermRecibir},
	"cocina":    {PermPedir, PermConsumir},
	"viewer":    {},
}

// AuthMiddleware valida el Bearer Token JWT y extrae UserID, UnitID y Role a c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		userID, unitID, role, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalUserID, userID)
		c.Locals(LocalUnitID, unitID)
		c.Locals(LocalRole, role)
		return c.Next()
	}
}

// RequirePermission corta con 403 si el rol del token no tiene el permiso.
// Va después de AuthMiddleware.
func RequirePermission(perm string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		for _, p := range rolePermissions[role] {
			if p == perm {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "el rol " + role + " no tiene permiso " + perm})
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	v := c.Locals(LocalUserID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// GetUnitID devuelve el UnitID del contexto (después del middleware de auth).
func GetUnitID(c *fiber.Ctx) string {
	v := c.Locals(LocalUnitID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// GetRole devuelve el rol del contexto (después del middleware de auth).
func GetRole(c *fiber.Ctx) string {
	v := c.Locals(LocalRole)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
