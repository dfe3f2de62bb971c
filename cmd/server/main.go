package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"cipherstudio/internal/auth"
	"cipherstudio/internal/blob"
	"cipherstudio/internal/config"
	"cipherstudio/internal/handler"
	"cipherstudio/internal/middleware"
	"cipherstudio/internal/repository/postgres"
	"cipherstudio/internal/service"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOut io.Writer = os.Stdout
	if cfg.Debug {
		logFile, err := config.SetupLogFile("logs", 10)
		if err != nil {
			log.Printf("warning: file logging disabled: %v", err)
		} else {
			defer logFile.Close()
			logOut = io.MultiWriter(os.Stdout, logFile)
		}
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Token service for issuing and verifying access tokens
	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create repositories
	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	userRepo := postgres.NewUserRepository(repoConfig)
	projectRepo := postgres.NewProjectRepository(repoConfig)
	fileRepo := postgres.NewFileRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Blob storage for large file content (optional)
	var store blob.Store
	if cfg.UseS3Storage {
		s3Store, err := blob.NewS3Store(ctx, blob.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			log.Fatalf("Failed to create S3 store: %v", err)
		}
		store = s3Store
		logger.Info("blob storage enabled", "bucket", cfg.S3Bucket)
	}
	blobs := blob.NewAdapter(store, cfg.UseS3Storage, logger)

	// Language registry (mime types for created files)
	languages, err := config.NewLanguageRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize language registry: %v", err)
	}

	// Create services
	userService := service.NewUserService(userRepo, tokens, logger)
	projectService := service.NewProjectService(projectRepo, fileRepo, txManager, logger)
	fileService := service.NewFileService(fileRepo, projectRepo, txManager, blobs, languages, logger)

	// Create handlers
	userHandler := handler.NewUserHandler(userService, logger)
	projectHandler := handler.NewProjectHandler(projectService, logger)
	fileHandler := handler.NewFileHandler(fileService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", handler.HealthCheck)

	// User routes
	mux.HandleFunc("POST /api/users/register", userHandler.Register)
	mux.HandleFunc("POST /api/users/login", userHandler.Login)
	mux.HandleFunc("GET /api/users/me", userHandler.GetProfile)
	mux.HandleFunc("PATCH /api/users/me", userHandler.UpdateProfile)

	// Project routes
	mux.HandleFunc("GET /api/projects", projectHandler.ListProjects)
	mux.HandleFunc("POST /api/projects", projectHandler.CreateProject)
	mux.HandleFunc("GET /api/projects/{id}", projectHandler.GetProject)
	mux.HandleFunc("PATCH /api/projects/{id}", projectHandler.UpdateProject)
	mux.HandleFunc("DELETE /api/projects/{id}", projectHandler.DeleteProject)

	// File tree routes
	mux.HandleFunc("GET /api/files", fileHandler.ListFiles)
	mux.HandleFunc("POST /api/files", fileHandler.CreateFile)
	mux.HandleFunc("GET /api/files/{id}", fileHandler.GetFile)
	mux.HandleFunc("PUT /api/files/{id}", fileHandler.UpdateFile)
	mux.HandleFunc("DELETE /api/files/{id}", fileHandler.DeleteFile)

	// Build middleware chain
	var httpHandler http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	httpHandler = middleware.Auth(tokens, logger)(httpHandler)
	httpHandler = middleware.Recovery(logger)(httpHandler)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	httpHandler = corsHandler.Handler(httpHandler)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
