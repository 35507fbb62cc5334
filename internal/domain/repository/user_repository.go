package repository

import (
	"context"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
}

// PasswordResetRepository guarda los OTP de restablecimiento.
type PasswordResetRepository interface {
	Create(ctx context.Context, reset *entity.PasswordReset) error
	// LatestActive devuelve el OTP no usado más reciente del email, o nil.
	LatestActive(ctx context.Context, email string) (*entity.PasswordReset, error)
	MarkUsed(ctx context.Context, id string) error
}
