package editor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"cipherstudio/internal/domain"
	"cipherstudio/internal/domain/models"
)

// LocalTreeStore keeps a Draft project's records in memory. It enforces
// the same rules the server does (sibling uniqueness, parent must be a
// folder, non-empty folders cannot be deleted, path cascade on folder
// moves) so Draft and Bound projects behave identically to the caller.
type LocalTreeStore struct {
	mu      sync.Mutex
	records map[string]*models.File
}

// NewLocalTreeStore creates an empty draft store.
func NewLocalTreeStore() *LocalTreeStore {
	return &LocalTreeStore{records: make(map[string]*models.File)}
}

// NewLocalTreeStoreFrom seeds a draft store with records restored from
// a snapshot.
func NewLocalTreeStoreFrom(records []models.File) *LocalTreeStore {
	s := NewLocalTreeStore()
	for i := range records {
		r := records[i]
		s.records[r.ID] = &r
	}
	return s
}

// Load returns all records ordered by type then name ascending.
func (s *LocalTreeStore) Load(ctx context.Context) ([]models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.File, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Create adds a node to the draft.
func (s *LocalTreeStore) Create(ctx context.Context, req CreateNode) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("%w: type must be 'file' or 'folder'", domain.ErrValidation)
	}

	parentPath := ""
	if req.ParentID != nil {
		parent, ok := s.records[*req.ParentID]
		if !ok {
			return nil, &domain.NotFoundError{Message: "parent not found"}
		}
		if !parent.IsFolder() {
			return nil, fmt.Errorf("%w: parent must be a folder", domain.ErrValidation)
		}
		parentPath = parent.Path
	}

	if dup := s.findSibling(req.Name, req.ParentID); dup != nil {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("a node named %q already exists here", req.Name),
			ResourceType: "file",
			ResourceID:   dup.ID,
		}
	}

	now := time.Now()
	record := &models.File{
		ID:        uuid.NewString(),
		ParentID:  req.ParentID,
		Name:      req.Name,
		Type:      req.Kind,
		Path:      parentPath + "/" + req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if !record.IsFolder() {
		record.Content = req.Content
		record.Size = len(req.Content)
		record.StorageType = models.StorageDatabase
	}

	s.records[record.ID] = record
	out := *record
	return &out, nil
}

// Update applies a rename, move, or content change to a draft node.
func (s *LocalTreeStore) Update(ctx context.Context, id string, req UpdateNode) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: "file not found"}
	}

	newName := record.Name
	newParentID := record.ParentID

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
		}
		newName = *req.Name
	}
	if req.NewParent != nil {
		newParentID = req.NewParent.ID
	}

	parentPath := ""
	if newParentID != nil {
		parent, ok := s.records[*newParentID]
		if !ok {
			return nil, &domain.NotFoundError{Message: "parent not found"}
		}
		if !parent.IsFolder() {
			return nil, fmt.Errorf("%w: parent must be a folder", domain.ErrValidation)
		}
		if record.IsFolder() && (parent.ID == record.ID || strings.HasPrefix(parent.Path, record.Path+"/")) {
			return nil, fmt.Errorf("%w: cannot move a folder into itself", domain.ErrValidation)
		}
		parentPath = parent.Path
	}

	if newName != record.Name || !samePointer(newParentID, record.ParentID) {
		if dup := s.findSibling(newName, newParentID); dup != nil && dup.ID != record.ID {
			return nil, &domain.ConflictError{
				Message:      fmt.Sprintf("a node named %q already exists here", newName),
				ResourceType: "file",
				ResourceID:   dup.ID,
			}
		}
	}

	oldPath := record.Path
	record.Name = newName
	record.ParentID = newParentID
	record.Path = parentPath + "/" + newName
	record.UpdatedAt = time.Now()

	if req.Content != nil && !record.IsFolder() {
		record.Content = *req.Content
		record.Size = len(*req.Content)
	}

	if record.IsFolder() && record.Path != oldPath {
		s.rewriteDescendants(oldPath, record.Path)
	}

	out := *record
	return &out, nil
}

// Delete removes a draft node. Folders must be empty.
func (s *LocalTreeStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return &domain.NotFoundError{Message: "file not found"}
	}

	if record.IsFolder() {
		for _, r := range s.records {
			if r.ParentID != nil && *r.ParentID == id {
				return &domain.ConflictError{
					Message:      "folder is not empty",
					ResourceType: "file",
					ResourceID:   id,
				}
			}
		}
	}

	delete(s.records, id)
	return nil
}

// findSibling returns the record with the given name under parentID, or
// nil. Callers must hold the lock.
func (s *LocalTreeStore) findSibling(name string, parentID *string) *models.File {
	for _, r := range s.records {
		if r.Name != name {
			continue
		}
		if samePointer(r.ParentID, parentID) {
			return r
		}
	}
	return nil
}

// rewriteDescendants swaps the path prefix on everything under a moved
// folder. Callers must hold the lock.
func (s *LocalTreeStore) rewriteDescendants(oldPrefix, newPrefix string) {
	for _, r := range s.records {
		if strings.HasPrefix(r.Path, oldPrefix+"/") {
			r.Path = newPrefix + strings.TrimPrefix(r.Path, oldPrefix)
			r.UpdatedAt = time.Now()
		}
	}
}

func samePointer(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
