package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"cipherstudio/internal/domain"
	"cipherstudio/internal/domain/models"
	"cipherstudio/internal/domain/repositories"
)

// PostgresProjectRepository implements the ProjectRepository interface
type PostgresProjectRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(config *RepositoryConfig) repositories.ProjectRepository {
	return &PostgresProjectRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new project
func (r *PostgresProjectRepository) Create(ctx context.Context, project *models.Project) error {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	if project.Tags == nil {
		project.Tags = []string{}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, name, description, is_public, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, r.tables.Projects)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		project.ID,
		project.UserID,
		project.Name,
		project.Description,
		project.IsPublic,
		project.Tags,
		project.CreatedAt,
		project.UpdatedAt,
	).Scan(&project.CreatedAt, &project.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}

	return nil
}

// GetByID retrieves a project owned by the given user
func (r *PostgresProjectRepository) GetByID(ctx context.Context, id, userID string) (*models.Project, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, name, description, is_public, tags, created_at, updated_at
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Projects)

	var project models.Project
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, id, userID).Scan(
		&project.ID,
		&project.UserID,
		&project.Name,
		&project.Description,
		&project.IsPublic,
		&project.Tags,
		&project.CreatedAt,
		&project.UpdatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get project: %w", err)
	}

	return &project, nil
}

// List returns the user's projects ordered by most recently updated
func (r *PostgresProjectRepository) List(ctx context.Context, userID string, filter repositories.ProjectFilter) ([]models.Project, int, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	where := `user_id = $1`
	args := []interface{}{userID}
	if filter.Search != "" {
		where += ` AND (name ILIKE $2 OR description ILIKE $2 OR EXISTS (
			SELECT 1 FROM unnest(tags) AS tag WHERE tag ILIKE $2
		))`
		args = append(args, "%"+filter.Search+"%")
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, r.tables.Projects, where)
	var total int
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT id, user_id, name, description, is_public, tags, created_at, updated_at
		FROM %s
		WHERE %s
		ORDER BY updated_at DESC
		LIMIT %d OFFSET %d
	`, r.tables.Projects, where, limit, offset)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]models.Project, 0)
	for rows.Next() {
		var project models.Project
		if err := rows.Scan(
			&project.ID,
			&project.UserID,
			&project.Name,
			&project.Description,
			&project.IsPublic,
			&project.Tags,
			&project.CreatedAt,
			&project.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate projects: %w", err)
	}

	return projects, total, nil
}

// Update updates a project
func (r *PostgresProjectRepository) Update(ctx context.Context, project *models.Project) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, description = $2, is_public = $3, tags = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7
	`, r.tables.Projects)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		project.Name,
		project.Description,
		project.IsPublic,
		project.Tags,
		project.UpdatedAt,
		project.ID,
		project.UserID,
	)

	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", project.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a project
func (r *PostgresProjectRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.tables.Projects)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
