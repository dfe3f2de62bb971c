package editor

import (
	"context"

	"cipherstudio/internal/domain/models"
)

// CreateNode describes a node to add to the tree.
type CreateNode struct {
	Name     string
	Kind     models.FileType
	ParentID *string
	Content  string
}

// UpdateNode describes a partial node update. Nil fields are left
// unchanged. NewParent is non-nil when the node is being moved; a move
// to root is expressed as a NewParent with a nil ID.
type UpdateNode struct {
	Name      *string
	Content   *string
	NewParent *ParentRef
}

// ParentRef names a move destination. A nil ID means root level.
type ParentRef struct {
	ID *string
}

// TreeStore is where a project's tree lives. A Draft project uses the
// in-memory LocalTreeStore; a Bound project uses RemoteTreeStore, which
// round-trips every mutation through the server. The engine treats both
// identically: mutate, then reload the authoritative flat list.
type TreeStore interface {
	// Load returns every record of the project.
	Load(ctx context.Context) ([]models.File, error)

	// Create adds a node. Duplicate sibling names fail with
	// domain.ErrConflict; a file parent fails with domain.ErrValidation.
	Create(ctx context.Context, req CreateNode) (*models.File, error)

	// Update renames, moves, or rewrites a node, cascading path changes
	// to descendants when a folder changes place.
	Update(ctx context.Context, id string, req UpdateNode) (*models.File, error)

	// Delete removes a node. Non-empty folders fail with
	// domain.ErrConflict.
	Delete(ctx context.Context, id string) error
}
