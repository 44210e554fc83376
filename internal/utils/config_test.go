package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
DB_DRIVER: sqlite
DB_PATH: ./data/pantry.db
GEMINI_MODEL: gemini-2.0-flash
PROPOSER_MAX_ATTEMPTS: "4"
LABEL_MIN_CONFIDENCE: "0.75"
`), 0o600))

	LoadConfigFrom(path)

	assert.Equal(t, "sqlite", GetConfig("DB_DRIVER"))
	assert.Equal(t, "./data/pantry.db", GetConfig("DB_PATH"))
	assert.Equal(t, "gemini-2.0-flash", GetConfig("GEMINI_MODEL"))
	assert.Equal(t, 4, GetConfigInt("PROPOSER_MAX_ATTEMPTS", 1))
	assert.InDelta(t, 0.75, GetConfigFloat("LABEL_MIN_CONFIDENCE", 0), 1e-9)
	assert.Equal(t, 30, GetConfigInt("PROPOSER_TIMEOUT_SECONDS", 30))
	assert.Equal(t, "", GetConfig("UNKNOWN_KEY"))
}

func TestGetConfigEnvOverride(t *testing.T) {
	t.Setenv("PANTRY_DB_DRIVER", "postgres")
	assert.Equal(t, "postgres", GetConfig("DB_DRIVER"))
}
