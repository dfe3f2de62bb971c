package config

import (
	"os"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	CORSOrigins string
	TablePrefix string
	// Auth
	JWTSecret string
	// Blob storage (S3-compatible). File content lives inline in the
	// database unless UseS3Storage is enabled.
	UseS3Storage bool
	S3Bucket     string
	S3Region     string
	S3Endpoint   string
	S3AccessKey  string
	S3SecretKey  string
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: tablePrefix,
		JWTSecret:   getEnv("JWT_SECRET", ""),
		// Blob storage
		UseS3Storage: getEnv("USE_S3_STORAGE", "false") == "true",
		S3Bucket:     getEnv("AWS_S3_BUCKET", ""),
		S3Region:     getEnv("AWS_REGION", "us-east-1"),
		S3Endpoint:   getEnv("AWS_S3_ENDPOINT", ""),
		S3AccessKey:  getEnv("AWS_ACCESS_KEY_ID", ""),
		S3SecretKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		// Debug defaults to true outside production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
