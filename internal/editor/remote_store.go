package editor

import (
	"context"

	"cipherstudio/internal/client"
	"cipherstudio/internal/domain/models"
	"cipherstudio/internal/httputil"
)

// RemoteTreeStore backs a Bound project. Every mutation round-trips
// through the server API; validation and cascading happen server side,
// and the engine reloads the authoritative list afterwards.
type RemoteTreeStore struct {
	api       *client.Client
	projectID string
}

// NewRemoteTreeStore binds a store to a server project.
func NewRemoteTreeStore(api *client.Client, projectID string) *RemoteTreeStore {
	return &RemoteTreeStore{api: api, projectID: projectID}
}

// ProjectID returns the bound project's id.
func (s *RemoteTreeStore) ProjectID() string {
	return s.projectID
}

// Load fetches every record of the project from the server.
func (s *RemoteTreeStore) Load(ctx context.Context) ([]models.File, error) {
	return s.api.ListFiles(ctx, s.projectID)
}

// Create adds a node through the server API.
func (s *RemoteTreeStore) Create(ctx context.Context, req CreateNode) (*models.File, error) {
	return s.api.CreateFile(ctx, &client.CreateFileRequest{
		ProjectID: s.projectID,
		Name:      req.Name,
		Type:      string(req.Kind),
		ParentID:  req.ParentID,
		Content:   req.Content,
	})
}

// Update renames, moves, or rewrites a node through the server API.
func (s *RemoteTreeStore) Update(ctx context.Context, id string, req UpdateNode) (*models.File, error) {
	wire := &client.UpdateFileRequest{
		Name:    req.Name,
		Content: req.Content,
	}
	if req.NewParent != nil {
		wire.ParentID = &httputil.OptionalString{Present: true, Value: req.NewParent.ID}
	}
	return s.api.UpdateFile(ctx, id, wire)
}

// Delete removes a node through the server API.
func (s *RemoteTreeStore) Delete(ctx context.Context, id string) error {
	return s.api.DeleteFile(ctx, id)
}
