// Package config loads server configuration from the environment, with a
// .env file picked up in development.
package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Template source drivers.
const (
	DriverDir = "dir"
	DriverS3  = "s3"
)

// Config holds everything the server needs to start.
type Config struct {
	Port   string
	DBPath string

	// TemplateDriver selects where SAFE templates are fetched from:
	// DriverDir reads a local directory, DriverS3 reads a bucket.
	TemplateDriver string
	TemplateDir    string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool

	JWTSecret     string
	TokenDuration time.Duration
}

// devSecret is the fallback signing secret. Fine for local development,
// never for anything reachable from outside.
const devSecret = "dev-secret-change-me"

// Load reads configuration from the environment. A missing .env file is
// not an error; unset variables fall back to development defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		DBPath:         getEnv("DB_PATH", "./data/safes.db"),
		TemplateDriver: getEnv("TEMPLATE_DRIVER", DriverDir),
		TemplateDir:    getEnv("TEMPLATE_DIR", "./templates"),
		S3Bucket:       getEnv("TEMPLATE_S3_BUCKET", ""),
		S3Region:       getEnv("TEMPLATE_S3_REGION", ""),
		S3Endpoint:     getEnv("TEMPLATE_S3_ENDPOINT", ""),
		S3PathStyle:    getEnv("TEMPLATE_S3_PATH_STYLE", "") == "true",
		JWTSecret:      getEnv("JWT_SECRET", ""),
		TokenDuration:  24 * time.Hour,
	}

	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET not set, using development default")
		cfg.JWTSecret = devSecret
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
