package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"DATABASE_URL", "DATABASE_DRIVER", "OUTPUT_DIR", "INVOICE_DEFAULT_PREFIX", "GENERATE_WORKERS", "NUMBERING_RETRIES", "LOG_LEVEL", "LOG_OUTPUT", "ARCHIVE_S3_BUCKET"} {
		t.Setenv(key, "")
	}

	cfg, err := Load(Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "./invoice.db", cfg.DatabaseURL)
	assert.Equal(t, "sqlite3", cfg.DatabaseDriver)
	assert.Equal(t, ".", cfg.OutputDir)
	assert.Equal(t, "INV-", cfg.DefaultPrefix)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 5, cfg.NumberingRetries)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "stderr", cfg.LogOutput)
	assert.False(t, cfg.ArchiveEnabled())
}

func TestLoadOverridesWinOverEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "/env/path.db")
	t.Setenv("OUTPUT_DIR", "/env/out")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(Overrides{DatabaseURL: "/flag/path.db", OutputDir: "/flag/out", Debug: true})
	require.NoError(t, err)

	assert.Equal(t, "/flag/path.db", cfg.DatabaseURL)
	assert.Equal(t, "/flag/out", cfg.OutputDir)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsBadWorkerCount(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("GENERATE_WORKERS", "many")
	_, err := Load(Overrides{})
	assert.Error(t, err)

	t.Setenv("GENERATE_WORKERS", "0")
	_, err = Load(Overrides{})
	assert.Error(t, err)
}

func TestLoadRejectsAmbiguousDefaultPrefix(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("INVOICE_DEFAULT_PREFIX", "INV1")
	_, err := Load(Overrides{})
	assert.Error(t, err)
}
