package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"cipherstudio/internal/auth"
	"cipherstudio/internal/blob"
	"cipherstudio/internal/config"
	"cipherstudio/internal/domain/models"
	"cipherstudio/internal/repository/postgres"
	"cipherstudio/internal/service"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed demo data")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("BLOCKED: Cannot run --drop-tables in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log.Printf("Preparing database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("Tables dropped")
	}

	log.Println("Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("Schema ready")

	if *schemaOnly {
		return
	}

	if err := seedDemoProject(ctx, pool, tables, cfg, logger); err != nil {
		log.Fatalf("Failed to seed demo data: %v", err)
	}
	log.Println("Demo data seeded")
}

func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	createUsers := `
		CREATE TABLE IF NOT EXISTS ` + tables.Users + ` (
			id UUID PRIMARY KEY,
			username TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			avatar TEXT,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createUsers); err != nil {
		return err
	}

	createProjects := `
		CREATE TABLE IF NOT EXISTS ` + tables.Projects + ` (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES ` + tables.Users + `(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			is_public BOOLEAN NOT NULL DEFAULT FALSE,
			tags TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createProjects); err != nil {
		return err
	}

	createFiles := `
		CREATE TABLE IF NOT EXISTS ` + tables.Files + ` (
			id UUID PRIMARY KEY,
			project_id UUID NOT NULL REFERENCES ` + tables.Projects + `(id) ON DELETE CASCADE,
			parent_id UUID REFERENCES ` + tables.Files + `(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			type TEXT NOT NULL CHECK (type IN ('file', 'folder')),
			path TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			s3_key TEXT,
			size INTEGER NOT NULL DEFAULT 0,
			mime_type TEXT,
			storage_type TEXT NOT NULL DEFAULT 'database',
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE(project_id, parent_id, name)
		)
	`
	if _, err := pool.Exec(ctx, createFiles); err != nil {
		return err
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `projects_user_id ON ` + tables.Projects + `(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `files_project_id ON ` + tables.Files + `(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `files_project_parent ON ` + tables.Files + `(project_id, parent_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_` + tablePrefix + `files_root_unique ON ` + tables.Files + `(project_id, name) WHERE parent_id IS NULL`,
	}
	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}

// dropAllTables drops all tables in reverse order (to respect foreign keys)
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.Files,
		tables.Projects,
		tables.Users,
	}
	for _, table := range tableNames {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return err
		}
	}
	return nil
}

// seedDemoProject creates a demo account with a small starter project,
// skipping when the account already exists.
func seedDemoProject(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, cfg *config.Config, logger *slog.Logger) error {
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	userRepo := postgres.NewUserRepository(repoConfig)
	projectRepo := postgres.NewProjectRepository(repoConfig)
	fileRepo := postgres.NewFileRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return err
	}
	languages, err := config.NewLanguageRegistry()
	if err != nil {
		return err
	}
	blobs := blob.NewAdapter(nil, false, logger)

	userService := service.NewUserService(userRepo, tokens, logger)
	projectService := service.NewProjectService(projectRepo, fileRepo, txManager, logger)
	fileService := service.NewFileService(fileRepo, projectRepo, txManager, blobs, languages, logger)

	if _, err := userRepo.GetByEmail(ctx, "demo@cipherstudio.dev"); err == nil {
		log.Println("Demo account already exists, skipping seed")
		return nil
	}

	result, err := userService.Register(ctx, &service.RegisterRequest{
		Username: "demo",
		Email:    "demo@cipherstudio.dev",
		Password: "demo-password",
	})
	if err != nil {
		return err
	}

	project, err := projectService.Create(ctx, result.User.ID, &service.CreateProjectRequest{
		Name:        "Welcome",
		Description: "A starter project",
		Tags:        []string{"demo"},
	})
	if err != nil {
		return err
	}

	src, err := fileService.Create(ctx, result.User.ID, &service.CreateFileRequest{
		ProjectID: project.ID,
		Name:      "src",
		Type:      string(models.FileTypeFolder),
	})
	if err != nil {
		return err
	}

	files := []service.CreateFileRequest{
		{ProjectID: project.ID, Name: "App.jsx", ParentID: &src.ID, Type: string(models.FileTypeFile), Content: "import React from 'react';\n\nfunction App() {\n  return <h1>Welcome</h1>;\n}\n\nexport default App;\n"},
		{ProjectID: project.ID, Name: "index.js", Type: string(models.FileTypeFile), Content: "import React from 'react';\nimport ReactDOM from 'react-dom/client';\nimport App from './src/App';\n\nconst root = ReactDOM.createRoot(document.getElementById('root'));\nroot.render(<App />);\n"},
		{ProjectID: project.ID, Name: "index.css", Type: string(models.FileTypeFile), Content: "body {\n  margin: 0;\n}\n"},
	}
	for i := range files {
		if _, err := fileService.Create(ctx, result.User.ID, &files[i]); err != nil {
			return err
		}
	}

	return nil
}
