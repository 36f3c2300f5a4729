// Package config loads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/logger"
)

// Store backends
const (
	StoreMemory    = "memory"
	StoreSQLite    = "sqlite"
	StoreFirestore = "firestore"
)

// Config holds all runtime settings
type Config struct {
	Port     string
	LogLevel string

	Store                string
	DatabasePath         string
	FirestoreProject     string
	FirestoreCredentials string

	MaxUploadBytes int64
	RulesFile      string
	PreviewTTL     time.Duration
	AllowedOrigin  string
}

// Load reads the first existing file of envFiles (default ".env") into the
// process environment without overriding variables already set, then builds
// the Config. A missing file is not an error.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		err := godotenv.Load(f)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	maxUpload, err := getEnvAsInt64("KAKEIBO_MAX_UPLOAD_BYTES", 10<<20)
	if err != nil {
		return nil, err
	}
	previewTTL, err := getEnvAsDuration("KAKEIBO_PREVIEW_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:                 getEnv("KAKEIBO_PORT", "8080"),
		LogLevel:             getEnv("KAKEIBO_LOG_LEVEL", "info"),
		Store:                strings.ToLower(getEnv("KAKEIBO_STORE", StoreMemory)),
		DatabasePath:         getEnv("KAKEIBO_DATABASE_PATH", "kakeibo.db"),
		FirestoreProject:     getEnv("KAKEIBO_FIRESTORE_PROJECT", ""),
		FirestoreCredentials: getEnv("KAKEIBO_FIRESTORE_CREDENTIALS", ""),
		MaxUploadBytes:       maxUpload,
		RulesFile:            getEnv("KAKEIBO_RULES_FILE", ""),
		PreviewTTL:           previewTTL,
		AllowedOrigin:        getEnv("KAKEIBO_ALLOWED_ORIGIN", "*"),
	}
	return cfg, cfg.Validate()
}

// Validate checks settings that have no usable fallback
func (c *Config) Validate() error {
	var errs []error

	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %q", c.Port))
	}
	if _, err := logger.ParseLevelStrict(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	switch c.Store {
	case StoreMemory:
	case StoreSQLite:
		if c.DatabasePath == "" {
			errs = append(errs, errors.New("sqlite store requires KAKEIBO_DATABASE_PATH"))
		}
	case StoreFirestore:
		if c.FirestoreProject == "" {
			errs = append(errs, errors.New("firestore store requires KAKEIBO_FIRESTORE_PROJECT"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store %q (must be memory, sqlite or firestore)", c.Store))
	}

	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("max upload bytes must be positive, got %d", c.MaxUploadBytes))
	}
	if c.PreviewTTL <= 0 {
		errs = append(errs, fmt.Errorf("preview TTL must be positive, got %s", c.PreviewTTL))
	}

	return errors.Join(errs...)
}

// Addr returns the HTTP listen address
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) (int64, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
