package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"cipherstudio/internal/domain"
	"cipherstudio/internal/domain/models"
	"cipherstudio/internal/domain/repositories"
)

// PostgresUserRepository implements the UserRepository interface
type PostgresUserRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewUserRepository creates a new user repository
func NewUserRepository(config *RepositoryConfig) repositories.UserRepository {
	return &PostgresUserRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new user
func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = strings.ToLower(user.Email)

	query := fmt.Sprintf(`
		INSERT INTO %s (id, username, email, password_hash, avatar, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, r.tables.Users)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Avatar,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      "a user with this username or email already exists",
				ResourceType: "user",
			}
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, username, email, password_hash, avatar, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Users)

	var user models.User
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Avatar,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

// GetByEmail retrieves a user by email
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, username, email, password_hash, avatar, created_at, updated_at
		FROM %s
		WHERE email = $1
	`, r.tables.Users)

	var user models.User
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, strings.ToLower(email)).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Avatar,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}

// Update updates a user's profile fields
func (r *PostgresUserRepository) Update(ctx context.Context, user *models.User) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET username = $1, email = $2, avatar = $3, updated_at = $4
		WHERE id = $5
	`, r.tables.Users)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		user.Username,
		strings.ToLower(user.Email),
		user.Avatar,
		user.UpdatedAt,
		user.ID,
	)

	if err != nil {
		if isPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      "a user with this username or email already exists",
				ResourceType: "user",
			}
		}
		return fmt.Errorf("update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", user.ID, domain.ErrNotFound)
	}

	return nil
}
