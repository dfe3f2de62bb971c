// Package blob routes file content between inline database storage and an
// external S3-compatible object store, transparently to callers.
package blob

import (
	"context"
	"fmt"
)

// Store is the interface for object storage backends.
type Store interface {
	// Put uploads content to the given key.
	Put(ctx context.Context, key, content, mimeType string) error

	// Get retrieves content by key.
	Get(ctx context.Context, key string) (string, error)

	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
}

// ObjectKey builds the object key for a file's content.
func ObjectKey(projectID, fileID, name string) string {
	return fmt.Sprintf("projects/%s/files/%s/%s", projectID, fileID, name)
}
