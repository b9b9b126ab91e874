package repository

import (
	"context"

	"github.com/chefmanager/chefmanager-api/internal/domain/entity"
)

// UsuarioRepository puerto de persistencia para usuarios (auth).
type UsuarioRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}
