package blob

import (
	"context"
	"log/slog"

	"cipherstudio/internal/domain/models"
)

// Adapter applies the content placement policy: file content goes to the
// object store only when the store is enabled, the node is file-kind, and
// the content is non-empty. Everything else stays inline in the record.
//
// Failures never reach the caller as errors: a failed Put falls back to
// inline storage, a failed Get yields empty content so the node entry
// stays visible.
type Adapter struct {
	store   Store // nil when object storage is disabled
	enabled bool
	logger  *slog.Logger
}

// NewAdapter creates a content store adapter. Pass a nil store to keep
// all content inline.
func NewAdapter(store Store, enabled bool, logger *slog.Logger) *Adapter {
	return &Adapter{
		store:   store,
		enabled: enabled && store != nil,
		logger:  logger,
	}
}

// Place stores content for a file node, deciding between inline and
// object storage, and records the outcome on the node (Content, S3Key,
// Size, StorageType).
func (a *Adapter) Place(ctx context.Context, file *models.File, content string) {
	if file.IsFolder() {
		file.Content = ""
		file.S3Key = nil
		file.Size = 0
		file.StorageType = models.StorageDatabase
		return
	}

	file.Size = len(content)

	if !a.enabled || content == "" {
		file.Content = content
		file.S3Key = nil
		file.StorageType = models.StorageDatabase
		return
	}

	key := ObjectKey(file.ProjectID, file.ID, file.Name)
	mimeType := "text/plain"
	if file.MimeType != nil {
		mimeType = *file.MimeType
	}

	if err := a.store.Put(ctx, key, content, mimeType); err != nil {
		// Fall back to inline storage; the content must not be lost.
		a.logger.Warn("object store write failed, storing inline",
			"file_id", file.ID,
			"key", key,
			"error", err,
		)
		file.Content = content
		file.S3Key = nil
		file.StorageType = models.StorageDatabase
		return
	}

	file.Content = ""
	file.S3Key = &key
	file.StorageType = models.StorageS3
}

// Resolve loads a file node's content from wherever its storage tag says
// it lives, populating file.Content. Inline-stored nodes are untouched.
func (a *Adapter) Resolve(ctx context.Context, file *models.File) {
	if file.StorageType != models.StorageS3 || file.S3Key == nil || file.IsFolder() {
		return
	}

	content, err := a.store.Get(ctx, *file.S3Key)
	if err != nil {
		// Content becomes unavailable but the node entry remains visible.
		a.logger.Warn("object store read failed, returning empty content",
			"file_id", file.ID,
			"key", *file.S3Key,
			"error", err,
		)
		file.Content = ""
		return
	}

	file.Content = content
}

// Remove deletes a file's object-store content, if any. Best effort: a
// dangling object is preferable to a failed delete.
func (a *Adapter) Remove(ctx context.Context, file *models.File) {
	if file.StorageType != models.StorageS3 || file.S3Key == nil {
		return
	}

	if err := a.store.Delete(ctx, *file.S3Key); err != nil {
		a.logger.Warn("object store delete failed",
			"file_id", file.ID,
			"key", *file.S3Key,
			"error", err,
		)
	}
}
