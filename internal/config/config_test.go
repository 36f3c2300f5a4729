package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"KAKEIBO_PORT", "KAKEIBO_LOG_LEVEL", "KAKEIBO_STORE", "KAKEIBO_DATABASE_PATH",
	"KAKEIBO_FIRESTORE_PROJECT", "KAKEIBO_FIRESTORE_CREDENTIALS", "KAKEIBO_MAX_UPLOAD_BYTES",
	"KAKEIBO_RULES_FILE", "KAKEIBO_PREVIEW_TTL", "KAKEIBO_ALLOWED_ORIGIN",
}

// clearEnv blanks every key for the test; t.Setenv restores the previous values
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "kakeibo.db", cfg.DatabasePath)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 15*time.Minute, cfg.PreviewTTL)
	assert.Equal(t, "*", cfg.AllowedOrigin)
	assert.Empty(t, cfg.RulesFile)
}

func TestLoad_FromEnvFile(t *testing.T) {
	clearEnv(t)

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "KAKEIBO_PORT=9090\n" +
		"KAKEIBO_STORE=SQLite\n" +
		"KAKEIBO_DATABASE_PATH=/tmp/ledger.db\n" +
		"KAKEIBO_PREVIEW_TTL=5m\n" +
		"KAKEIBO_MAX_UPLOAD_BYTES=2048\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0644))

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, "/tmp/ledger.db", cfg.DatabasePath)
	assert.Equal(t, 5*time.Minute, cfg.PreviewTTL)
	assert.Equal(t, int64(2048), cfg.MaxUploadBytes)
}

func TestLoad_EnvironmentWinsOverFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("KAKEIBO_PORT", "7070")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("KAKEIBO_PORT=9090\n"), 0644))

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value, wantErr string
	}{
		{"KAKEIBO_MAX_UPLOAD_BYTES", "lots", "invalid KAKEIBO_MAX_UPLOAD_BYTES"},
		{"KAKEIBO_PREVIEW_TTL", "soon", "invalid KAKEIBO_PREVIEW_TTL"},
		{"KAKEIBO_PORT", "http", "invalid port"},
		{"KAKEIBO_STORE", "postgres", "unknown store"},
		{"KAKEIBO_LOG_LEVEL", "loud", "unknown log level"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:           "8080",
			LogLevel:       "info",
			Store:          StoreMemory,
			MaxUploadBytes: 1,
			PreviewTTL:     time.Minute,
		}
	}
	assert.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Store = StoreFirestore
	assert.ErrorContains(t, cfg.Validate(), "KAKEIBO_FIRESTORE_PROJECT")
	cfg.FirestoreProject = "demo"
	assert.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Store = StoreSQLite
	assert.ErrorContains(t, cfg.Validate(), "KAKEIBO_DATABASE_PATH")

	cfg = valid()
	cfg.MaxUploadBytes = 0
	cfg.PreviewTTL = 0
	err := cfg.Validate()
	assert.ErrorContains(t, err, "max upload bytes")
	assert.ErrorContains(t, err, "preview TTL")
}
