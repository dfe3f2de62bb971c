package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"cipherstudio/internal/blob"
	"cipherstudio/internal/config"
	"cipherstudio/internal/domain"
	"cipherstudio/internal/domain/models"
	"cipherstudio/internal/domain/repositories"
	"cipherstudio/internal/httputil"
)

// CreateFileRequest carries the fields for node creation.
type CreateFileRequest struct {
	ProjectID string  `json:"projectId"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	ParentID  *string `json:"parentId,omitempty"`
	Content   string  `json:"content"`
}

// UpdateFileRequest carries a partial node update. ParentID distinguishes
// "absent" from "move to root" (JSON null).
type UpdateFileRequest struct {
	Name     *string                 `json:"name,omitempty"`
	Content  *string                 `json:"content,omitempty"`
	ParentID httputil.OptionalString `json:"parentId,omitempty"`
}

// FileService handles file-tree node CRUD for a project.
type FileService struct {
	fileRepo    repositories.FileRepository
	projectRepo repositories.ProjectRepository
	txManager   repositories.TransactionManager
	blobs       *blob.Adapter
	languages   *config.LanguageRegistry
	logger      *slog.Logger
}

// NewFileService creates a new file service
func NewFileService(
	fileRepo repositories.FileRepository,
	projectRepo repositories.ProjectRepository,
	txManager repositories.TransactionManager,
	blobs *blob.Adapter,
	languages *config.LanguageRegistry,
	logger *slog.Logger,
) *FileService {
	return &FileService{
		fileRepo:    fileRepo,
		projectRepo: projectRepo,
		txManager:   txManager,
		blobs:       blobs,
		languages:   languages,
		logger:      logger,
	}
}

// Create adds a node to the project tree. Folders ignore content. The
// node's path is derived from its parent; sibling names must be unique.
func (s *FileService) Create(ctx context.Context, userID string, req *CreateFileRequest) (*models.File, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxFileNameLength),
		),
		validation.Field(&req.Type, validation.Required),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	fileType := models.FileType(req.Type)
	if !fileType.Valid() {
		return nil, fmt.Errorf("%w: type must be 'file' or 'folder'", domain.ErrValidation)
	}
	if err := validateNodeName(req.Name); err != nil {
		return nil, err
	}

	if _, err := s.projectRepo.GetByID(ctx, req.ProjectID, userID); err != nil {
		return nil, err
	}

	parentPath := ""
	if req.ParentID != nil {
		parent, err := s.fileRepo.GetByID(ctx, *req.ParentID, req.ProjectID)
		if err != nil {
			return nil, err
		}
		if !parent.IsFolder() {
			return nil, fmt.Errorf("%w: parent must be a folder", domain.ErrValidation)
		}
		parentPath = parent.Path
	}

	if existing, err := s.fileRepo.FindByNameAndParent(ctx, req.ProjectID, req.Name, req.ParentID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("a node named %q already exists here", req.Name),
			ResourceType: "file",
			ResourceID:   existing.ID,
		}
	}

	path := joinPath(parentPath, req.Name)
	if len(path) > config.MaxFilePathLength {
		return nil, fmt.Errorf("%w: path too long", domain.ErrValidation)
	}

	// The ID is minted here, not in the repository, so the blob adapter
	// can derive a per-file object key before anything is stored.
	file := &models.File{
		ID:        uuid.NewString(),
		ProjectID: req.ProjectID,
		ParentID:  req.ParentID,
		Name:      req.Name,
		Type:      fileType,
		Path:      path,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if !file.IsFolder() {
		mime := s.languages.MimeTypeFor(req.Name)
		file.MimeType = &mime
	}

	s.blobs.Place(ctx, file, req.Content)

	if err := s.fileRepo.Create(ctx, file); err != nil {
		s.blobs.Remove(ctx, file)
		return nil, err
	}

	s.logger.Info("file created",
		"id", file.ID,
		"project_id", file.ProjectID,
		"path", file.Path,
		"type", file.Type,
	)

	return file, nil
}

// Get retrieves a node with its content materialized.
func (s *FileService) Get(ctx context.Context, userID, id string) (*models.File, error) {
	file, err := s.fileRepo.GetByIDOnly(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.projectRepo.GetByID(ctx, file.ProjectID, userID); err != nil {
		return nil, err
	}

	s.blobs.Resolve(ctx, file)

	return file, nil
}

// List returns project nodes ordered folders-first then by name. With a
// parent filter it returns direct children only; otherwise the whole
// project. Contents are materialized so the caller gets complete nodes.
func (s *FileService) List(ctx context.Context, userID, projectID string, parentID *string, childrenOnly bool) ([]models.File, error) {
	if _, err := s.projectRepo.GetByID(ctx, projectID, userID); err != nil {
		return nil, err
	}

	var (
		files []models.File
		err   error
	)
	if childrenOnly {
		files, err = s.fileRepo.ListChildren(ctx, parentID, projectID)
	} else {
		files, err = s.fileRepo.ListByProject(ctx, projectID)
	}
	if err != nil {
		return nil, err
	}

	for i := range files {
		s.blobs.Resolve(ctx, &files[i])
	}

	return files, nil
}

// Update applies rename, move, and content changes to a node. Renaming or
// moving a folder rewrites the paths of everything underneath it in the
// same transaction.
func (s *FileService) Update(ctx context.Context, userID, id string, req *UpdateFileRequest) (*models.File, error) {
	file, err := s.fileRepo.GetByIDOnly(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.projectRepo.GetByID(ctx, file.ProjectID, userID); err != nil {
		return nil, err
	}

	oldPath := file.Path
	newName := file.Name
	newParentID := file.ParentID

	if req.Name != nil {
		if err := validateNodeName(*req.Name); err != nil {
			return nil, err
		}
		if len(*req.Name) > config.MaxFileNameLength {
			return nil, fmt.Errorf("%w: name too long", domain.ErrValidation)
		}
		newName = *req.Name
	}
	if req.ParentID.Present {
		newParentID = req.ParentID.Value
	}

	parentPath := ""
	if newParentID != nil {
		parent, err := s.fileRepo.GetByID(ctx, *newParentID, file.ProjectID)
		if err != nil {
			return nil, err
		}
		if !parent.IsFolder() {
			return nil, fmt.Errorf("%w: parent must be a folder", domain.ErrValidation)
		}
		if file.IsFolder() && (parent.ID == file.ID || strings.HasPrefix(parent.Path, file.Path+"/")) {
			return nil, fmt.Errorf("%w: cannot move a folder into itself", domain.ErrValidation)
		}
		parentPath = parent.Path
	}

	placeChanged := newName != file.Name || !sameParent(newParentID, file.ParentID)
	if placeChanged {
		if existing, err := s.fileRepo.FindByNameAndParent(ctx, file.ProjectID, newName, newParentID); err != nil {
			return nil, err
		} else if existing != nil && existing.ID != file.ID {
			return nil, &domain.ConflictError{
				Message:      fmt.Sprintf("a node named %q already exists here", newName),
				ResourceType: "file",
				ResourceID:   existing.ID,
			}
		}
	}

	file.Name = newName
	file.ParentID = newParentID
	file.Path = joinPath(parentPath, newName)
	if len(file.Path) > config.MaxFilePathLength {
		return nil, fmt.Errorf("%w: path too long", domain.ErrValidation)
	}
	file.UpdatedAt = time.Now()

	if req.Content != nil && !file.IsFolder() {
		oldKey := file.S3Key
		s.blobs.Place(ctx, file, *req.Content)
		if oldKey != nil && (file.S3Key == nil || *file.S3Key != *oldKey) {
			s.blobs.Remove(ctx, &models.File{S3Key: oldKey, StorageType: models.StorageS3})
		}
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.fileRepo.Update(txCtx, file); err != nil {
			return err
		}
		if file.IsFolder() && placeChanged && file.Path != oldPath {
			return s.rewriteDescendantPaths(txCtx, file.ProjectID, oldPath, file.Path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return file, nil
}

// Delete removes a node. Folders must be emptied first.
func (s *FileService) Delete(ctx context.Context, userID, id string) error {
	file, err := s.fileRepo.GetByIDOnly(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.projectRepo.GetByID(ctx, file.ProjectID, userID); err != nil {
		return err
	}

	if file.IsFolder() {
		count, err := s.fileRepo.CountChildren(ctx, &file.ID, file.ProjectID)
		if err != nil {
			return err
		}
		if count > 0 {
			return &domain.ConflictError{
				Message:      "folder is not empty",
				ResourceType: "file",
				ResourceID:   file.ID,
			}
		}
	}

	if err := s.fileRepo.Delete(ctx, file.ID, file.ProjectID); err != nil {
		return err
	}

	s.blobs.Remove(ctx, file)

	s.logger.Info("file deleted", "id", file.ID, "project_id", file.ProjectID, "path", file.Path)

	return nil
}

// rewriteDescendantPaths swaps the path prefix on everything under a moved
// or renamed folder.
func (s *FileService) rewriteDescendantPaths(ctx context.Context, projectID, oldPrefix, newPrefix string) error {
	files, err := s.fileRepo.ListByProject(ctx, projectID)
	if err != nil {
		return err
	}

	for i := range files {
		f := &files[i]
		if !strings.HasPrefix(f.Path, oldPrefix+"/") {
			continue
		}
		f.Path = newPrefix + strings.TrimPrefix(f.Path, oldPrefix)
		f.UpdatedAt = time.Now()
		if err := s.fileRepo.Update(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

func validateNodeName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("%w: name cannot contain path separators", domain.ErrValidation)
	}
	return nil
}

func joinPath(parentPath, name string) string {
	if parentPath == "" {
		return "/" + name
	}
	return parentPath + "/" + name
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
