package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"cipherstudio/internal/config"
	"cipherstudio/internal/domain"
	"cipherstudio/internal/domain/models"
	"cipherstudio/internal/domain/repositories"
)

// CreateProjectRequest carries the fields for project creation.
type CreateProjectRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	IsPublic    bool     `json:"isPublic"`
	Tags        []string `json:"tags"`
}

// UpdateProjectRequest carries project updates. Nil fields are left unchanged.
type UpdateProjectRequest struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	IsPublic    *bool     `json:"isPublic,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

// ProjectList is a paginated page of projects.
type ProjectList struct {
	Projects []models.Project `json:"projects"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
}

// ProjectService handles project CRUD and listing.
type ProjectService struct {
	projectRepo repositories.ProjectRepository
	fileRepo    repositories.FileRepository
	txManager   repositories.TransactionManager
	logger      *slog.Logger
}

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo repositories.ProjectRepository,
	fileRepo repositories.FileRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		fileRepo:    fileRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// Create creates a project owned by userID.
func (s *ProjectService) Create(ctx context.Context, userID string, req *CreateProjectRequest) (*models.Project, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxProjectNameLength),
		),
		validation.Field(&req.Description,
			validation.Length(0, config.MaxProjectDescriptionLength),
		),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	project := &models.Project{
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		IsPublic:    req.IsPublic,
		Tags:        req.Tags,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if project.Tags == nil {
		project.Tags = []string{}
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project created", "id", project.ID, "user_id", userID)

	return project, nil
}

// Get retrieves a project owned by userID.
func (s *ProjectService) Get(ctx context.Context, id, userID string) (*models.Project, error) {
	return s.projectRepo.GetByID(ctx, id, userID)
}

// List returns a page of the user's projects, newest activity first.
func (s *ProjectService) List(ctx context.Context, userID string, filter repositories.ProjectFilter) (*ProjectList, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	projects, total, err := s.projectRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	return &ProjectList{
		Projects: projects,
		Total:    total,
		Page:     filter.Page,
		Limit:    filter.Limit,
	}, nil
}

// Update applies a partial update to a project.
func (s *ProjectService) Update(ctx context.Context, id, userID string, req *UpdateProjectRequest) (*models.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" || len(name) > config.MaxProjectNameLength {
			return nil, fmt.Errorf("%w: project name must be 1-%d characters",
				domain.ErrValidation, config.MaxProjectNameLength)
		}
		project.Name = name
	}
	if req.Description != nil {
		if len(*req.Description) > config.MaxProjectDescriptionLength {
			return nil, fmt.Errorf("%w: description too long", domain.ErrValidation)
		}
		project.Description = *req.Description
	}
	if req.IsPublic != nil {
		project.IsPublic = *req.IsPublic
	}
	if req.Tags != nil {
		project.Tags = *req.Tags
	}

	project.UpdatedAt = time.Now()

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

// Delete removes a project and all of its files in one transaction.
func (s *ProjectService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.projectRepo.GetByID(ctx, id, userID); err != nil {
		return err
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.fileRepo.DeleteByProject(txCtx, id); err != nil {
			return err
		}
		return s.projectRepo.Delete(txCtx, id, userID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("project deleted", "id", id, "user_id", userID)

	return nil
}
