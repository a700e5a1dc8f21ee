// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendGitHub = "github"
	BackendMinio  = "minio"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Port     string
	AppEnv   string
	LogLevel string
	LogFile  string // optional rotating log file, in addition to stdout

	// GitHub content store. The credential is process-wide and read once.
	GitHubToken  string
	GitHubUser   string
	GitHubRepo   string
	GitHubFolder string
	GitHubAPIURL string
	CDNBaseURL   string

	StorageBackend string

	// Object storage (S3-compatible) used when StorageBackend is "minio"
	StorageEndpoint   string
	StorageAccessKey  string
	StorageSecretKey  string
	StorageBucket     string
	StorageUseSSL     bool
	StoragePublicBase string // browser-accessible base URL, e.g. "http://localhost:9000/images"

	DatabaseURL     string // enables the activity log when set
	JWTSecret       string // enables auth on write endpoints when set
	MaxUploadBytes  int64
	UpstreamTimeout time.Duration
}

// Load reads configuration from a .env file (if present) and environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading from environment")
	}

	return &Config{
		Port:     getEnv("PORT", "3000"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		GitHubToken:  getEnv("GITHUB_TOKEN", ""),
		GitHubUser:   getEnv("GITHUB_USER", ""),
		GitHubRepo:   getEnv("GITHUB_REPO", ""),
		GitHubFolder: getEnv("GITHUB_FOLDER", ""),
		GitHubAPIURL: getEnv("GITHUB_API_URL", "https://api.github.com"),
		CDNBaseURL:   getEnv("CDN_BASE_URL", "https://cdn.jsdelivr.net/gh"),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendGitHub)),

		StorageEndpoint:   getEnv("STORAGE_ENDPOINT", "localhost:9000"),
		StorageAccessKey:  getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
		StorageSecretKey:  getEnv("STORAGE_SECRET_KEY", "minioadmin"),
		StorageBucket:     getEnv("STORAGE_BUCKET", "images"),
		StorageUseSSL:     getEnv("STORAGE_USE_SSL", "false") == "true",
		StoragePublicBase: getEnv("STORAGE_PUBLIC_BASE", "http://localhost:9000/images"),

		DatabaseURL:     getEnv("DATABASE_URL", ""),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		MaxUploadBytes:  uploadBytes(getInt("MAX_UPLOAD_MB", 10)),
		UpstreamTimeout: getDuration("UPSTREAM_TIMEOUT", 30*time.Second),
	}
}

// Validate reports missing settings that the selected backend needs.
func (c *Config) Validate() error {
	var missing []string
	switch c.StorageBackend {
	case BackendGitHub:
		for name, v := range map[string]string{
			"GITHUB_TOKEN":  c.GitHubToken,
			"GITHUB_USER":   c.GitHubUser,
			"GITHUB_REPO":   c.GitHubRepo,
			"GITHUB_FOLDER": c.GitHubFolder,
		} {
			if v == "" {
				missing = append(missing, name)
			}
		}
	case BackendMinio:
		if c.GitHubFolder == "" {
			missing = append(missing, "GITHUB_FOLDER")
		}
		if c.StorageBucket == "" {
			missing = append(missing, "STORAGE_BUCKET")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	if len(missing) > 0 {
		slices.Sort(missing)
		return errors.New("missing required configuration: " + strings.Join(missing, ", "))
	}
	if c.MaxUploadBytes <= 0 || c.MaxUploadBytes > maxUploadMB<<20 {
		return fmt.Errorf("MAX_UPLOAD_MB must be between 1 and %d", maxUploadMB)
	}
	return nil
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// maxUploadMB is the largest file the GitHub Contents API accepts.
const maxUploadMB = 100

// uploadBytes converts a megabyte limit to bytes. Values outside
// [1, maxUploadMB] yield 0, which Validate rejects.
func uploadBytes(mb int64) int64 {
	if mb <= 0 || mb > maxUploadMB {
		return 0
	}
	return mb << 20
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int64) int64 {
	v, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
