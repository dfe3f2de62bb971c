package repositories

import (
	"context"

	"cipherstudio/internal/domain/models"
)

// UserRepository persists user accounts.
type UserRepository interface {
	// Create inserts a new user. Fails with domain.ErrConflict when the
	// username or email is already taken.
	Create(ctx context.Context, user *models.User) error

	GetByID(ctx context.Context, id string) (*models.User, error)

	GetByEmail(ctx context.Context, email string) (*models.User, error)

	Update(ctx context.Context, user *models.User) error
}
