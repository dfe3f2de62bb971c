package repositories

import (
	"context"

	"cipherstudio/internal/domain/models"
)

// FileRepository persists file-tree nodes for a project.
type FileRepository interface {
	// Create inserts a new node. Fails with domain.ErrConflict when a
	// sibling with the same name already exists.
	Create(ctx context.Context, file *models.File) error

	// GetByID retrieves a node scoped to a project.
	GetByID(ctx context.Context, id, projectID string) (*models.File, error)

	// GetByIDOnly retrieves a node without project scoping (used after
	// authorization has already been checked).
	GetByIDOnly(ctx context.Context, id string) (*models.File, error)

	// ListByProject returns all nodes in a project ordered by type then
	// name ascending.
	ListByProject(ctx context.Context, projectID string) ([]models.File, error)

	// ListChildren returns the direct children of a folder (nil parentID
	// = root level), ordered by type then name ascending.
	ListChildren(ctx context.Context, parentID *string, projectID string) ([]models.File, error)

	// CountChildren returns the number of direct children of a folder.
	CountChildren(ctx context.Context, parentID *string, projectID string) (int, error)

	// FindByNameAndParent returns the sibling with the given name, or nil.
	FindByNameAndParent(ctx context.Context, projectID, name string, parentID *string) (*models.File, error)

	// Update persists changed fields of a node.
	Update(ctx context.Context, file *models.File) error

	// Delete removes a node.
	Delete(ctx context.Context, id, projectID string) error

	// DeleteByProject removes every node of a project.
	DeleteByProject(ctx context.Context, projectID string) error
}
