package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cipherstudio/internal/domain"
	"cipherstudio/internal/domain/models"
	"cipherstudio/internal/domain/repositories"
)

const fileColumns = `id, project_id, parent_id, name, type, path, content, s3_key, size, mime_type, storage_type, created_at, updated_at`

// PostgresFileRepository implements the FileRepository interface
type PostgresFileRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *RepositoryConfig) repositories.FileRepository {
	return &PostgresFileRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts a new file-tree node
func (r *PostgresFileRepository) Create(ctx context.Context, file *models.File) error {
	// Guard against duplicate siblings at the application level; the
	// unique index backs this up under concurrency.
	existing, err := r.FindByNameAndParent(ctx, file.ProjectID, file.Name, file.ParentID)
	if err != nil {
		return err
	}
	if existing != nil {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("a file or folder named %q already exists in this location", file.Name),
			ResourceType: string(file.Type),
			ResourceID:   existing.ID,
		}
	}

	if file.ID == "" {
		file.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, project_id, parent_id, name, type, path, content, s3_key, size, mime_type, storage_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`, r.tables.Files)

	err = GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		file.ID,
		file.ProjectID,
		file.ParentID,
		file.Name,
		file.Type,
		file.Path,
		file.Content,
		file.S3Key,
		file.Size,
		file.MimeType,
		file.StorageType,
		file.CreatedAt,
		file.UpdatedAt,
	).Scan(&file.CreatedAt, &file.UpdatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("file %q: %w", file.Name, domain.ErrConflict)
		}
		if isPgForeignKeyError(err) {
			return fmt.Errorf("parent of %q: %w", file.Name, domain.ErrNotFound)
		}
		return fmt.Errorf("create file: %w", err)
	}

	return nil
}

// GetByID retrieves a node scoped to a project
func (r *PostgresFileRepository) GetByID(ctx context.Context, id, projectID string) (*models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND project_id = $2
	`, fileColumns, r.tables.Files)

	row := GetExecutor(ctx, r.pool).QueryRow(ctx, query, id, projectID)
	file, err := scanFile(row)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}

	return file, nil
}

// GetByIDOnly retrieves a node without project scoping
func (r *PostgresFileRepository) GetByIDOnly(ctx context.Context, id string) (*models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, fileColumns, r.tables.Files)

	row := GetExecutor(ctx, r.pool).QueryRow(ctx, query, id)
	file, err := scanFile(row)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}

	return file, nil
}

// ListByProject returns all nodes of a project ordered by type then name
func (r *PostgresFileRepository) ListByProject(ctx context.Context, projectID string) ([]models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE project_id = $1
		ORDER BY type ASC, name ASC
	`, fileColumns, r.tables.Files)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	return collectFiles(rows)
}

// ListChildren returns the direct children of a folder (nil = root level)
func (r *PostgresFileRepository) ListChildren(ctx context.Context, parentID *string, projectID string) ([]models.File, error) {
	var query string
	var rows pgx.Rows
	var err error

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE project_id = $1 AND parent_id IS NULL
			ORDER BY type ASC, name ASC
		`, fileColumns, r.tables.Files)
		rows, err = GetExecutor(ctx, r.pool).Query(ctx, query, projectID)
	} else {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE project_id = $1 AND parent_id = $2
			ORDER BY type ASC, name ASC
		`, fileColumns, r.tables.Files)
		rows, err = GetExecutor(ctx, r.pool).Query(ctx, query, projectID, *parentID)
	}

	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	return collectFiles(rows)
}

// CountChildren returns the number of direct children of a folder
func (r *PostgresFileRepository) CountChildren(ctx context.Context, parentID *string, projectID string) (int, error) {
	var count int
	var err error

	if parentID == nil {
		query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE project_id = $1 AND parent_id IS NULL`, r.tables.Files)
		err = GetExecutor(ctx, r.pool).QueryRow(ctx, query, projectID).Scan(&count)
	} else {
		query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE project_id = $1 AND parent_id = $2`, r.tables.Files)
		err = GetExecutor(ctx, r.pool).QueryRow(ctx, query, projectID, *parentID).Scan(&count)
	}

	if err != nil {
		return 0, fmt.Errorf("count children: %w", err)
	}

	return count, nil
}

// FindByNameAndParent returns the sibling with the given name, or nil
func (r *PostgresFileRepository) FindByNameAndParent(ctx context.Context, projectID, name string, parentID *string) (*models.File, error) {
	var query string
	var row pgx.Row

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE project_id = $1 AND name = $2 AND parent_id IS NULL
		`, fileColumns, r.tables.Files)
		row = GetExecutor(ctx, r.pool).QueryRow(ctx, query, projectID, name)
	} else {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE project_id = $1 AND name = $2 AND parent_id = $3
		`, fileColumns, r.tables.Files)
		row = GetExecutor(ctx, r.pool).QueryRow(ctx, query, projectID, name, *parentID)
	}

	file, err := scanFile(row)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find sibling: %w", err)
	}

	return file, nil
}

// Update persists changed fields of a node
func (r *PostgresFileRepository) Update(ctx context.Context, file *models.File) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, name = $2, path = $3, content = $4, s3_key = $5, size = $6, mime_type = $7, storage_type = $8, updated_at = $9
		WHERE id = $10 AND project_id = $11
	`, r.tables.Files)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		file.ParentID,
		file.Name,
		file.Path,
		file.Content,
		file.S3Key,
		file.Size,
		file.MimeType,
		file.StorageType,
		file.UpdatedAt,
		file.ID,
		file.ProjectID,
	)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("file %q: %w", file.Name, domain.ErrConflict)
		}
		return fmt.Errorf("update file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", file.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a node
func (r *PostgresFileRepository) Delete(ctx context.Context, id, projectID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND project_id = $2`, r.tables.Files)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id, projectID)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteByProject removes every node of a project
func (r *PostgresFileRepository) DeleteByProject(ctx context.Context, projectID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE project_id = $1`, r.tables.Files)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, projectID); err != nil {
		return fmt.Errorf("delete project files: %w", err)
	}

	return nil
}

func scanFile(row pgx.Row) (*models.File, error) {
	var file models.File
	err := row.Scan(
		&file.ID,
		&file.ProjectID,
		&file.ParentID,
		&file.Name,
		&file.Type,
		&file.Path,
		&file.Content,
		&file.S3Key,
		&file.Size,
		&file.MimeType,
		&file.StorageType,
		&file.CreatedAt,
		&file.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func collectFiles(rows pgx.Rows) ([]models.File, error) {
	files := make([]models.File, 0)
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, *file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}
	return files, nil
}
