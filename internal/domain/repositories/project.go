package repositories

import (
	"context"

	"cipherstudio/internal/domain/models"
)

// ProjectFilter narrows project listings.
type ProjectFilter struct {
	Page   int
	Limit  int
	Search string // Matches name, description, and tags, case-insensitive
}

// ProjectRepository persists projects.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error

	// GetByID retrieves a project owned by the given user.
	GetByID(ctx context.Context, id, userID string) (*models.Project, error)

	// List returns the user's projects ordered by most recently updated,
	// plus the total count for pagination.
	List(ctx context.Context, userID string, filter ProjectFilter) ([]models.Project, int, error)

	Update(ctx context.Context, project *models.Project) error

	Delete(ctx context.Context, id, userID string) error
}
