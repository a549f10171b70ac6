package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestJSONLoggerCarriesComponent(t *testing.T) {
	var buf bytes.Buffer
	log := WithComponent(NewWithWriter(&buf, zerolog.InfoLevel, "json"), "generate")

	log.Debug().Msg("hidden")
	log.Info().Int64("id", 7).Msg("rendered")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "generate", entry["component"])
	assert.Equal(t, "rendered", entry["message"])
	assert.EqualValues(t, 7, entry["id"])
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoice.log")
	log, err := New(LogConfig{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	log.Info().Str("run_id", "r1").Msg("generation finished")

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &entry))
	assert.Equal(t, "generation finished", entry["message"])
	assert.Equal(t, "r1", entry["run_id"])
}
