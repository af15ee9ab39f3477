package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommandStructure(t *testing.T) {
	assert.NotNil(t, validateCmd)
	assert.Equal(t, "validate", validateCmd.Use)
	assert.NotEmpty(t, validateCmd.Short)
	assert.NotEmpty(t, validateCmd.Long)
	assert.NotNil(t, validateCmd.RunE)
}

func TestValidateIsAddedToRoot(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == "validate" {
			found = true
			break
		}
	}
	assert.True(t, found, "validate command should be added to root command")
}

func TestValidateValidConfig(t *testing.T) {
	path := writeInput(t, "goshape.yaml", `engine:
  reservoir_size: 10
logging:
  level: debug
`)
	out, err := runCLI(t, "validate", "--config", path)
	require.NoError(t, err)

	assert.Contains(t, out, "=== Configuration Validation ===")
	assert.Contains(t, out, "reservoir_size=10")
	assert.Contains(t, out, "level=debug")
	assert.Contains(t, out, "Source: not configured")
	assert.Contains(t, out, "✅ Configuration is valid")
}

func TestValidateConfiguredSource(t *testing.T) {
	path := writeInput(t, "goshape.yaml", `source:
  host: db.internal
  user: shape
  database: app
`)
	out, err := runCLI(t, "validate", "--config", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Source: db.internal:3306/app (tls=preferred)")
}

func TestValidateSourceQuery(t *testing.T) {
	path := writeConfig(t, map[string]interface{}{
		"source": map[string]interface{}{
			"host":     "db.internal",
			"user":     "shape",
			"database": "app",
			"query":    "SELECT id, name FROM events",
		},
	})
	out, err := runCLI(t, "validate", "--config", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Query: SELECT id, name FROM events")
}

func TestValidateSourceTable(t *testing.T) {
	path := writeConfig(t, map[string]interface{}{
		"source": map[string]interface{}{
			"host":     "db.internal",
			"user":     "shape",
			"database": "app",
			"table":    "events",
		},
	})
	out, err := runCLI(t, "validate", "--config", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Table: events")
}

func TestValidateQueryTableConflict(t *testing.T) {
	path := writeConfig(t, map[string]interface{}{
		"source": map[string]interface{}{
			"host":     "db.internal",
			"user":     "shape",
			"database": "app",
			"query":    "SELECT 1",
			"table":    "events",
		},
	})
	out, err := runCLI(t, "validate", "--config", path)
	require.Error(t, err)

	assert.ErrorContains(t, err, "configuration is not valid")
	assert.Contains(t, out, "source.table")
}

func TestValidateInvalidConfig(t *testing.T) {
	path := writeInput(t, "goshape.yaml", `engine:
  reservoir_size: -2
  binary_threshold: 7
`)
	out, err := runCLI(t, "validate", "--config", path)
	require.Error(t, err)

	assert.ErrorContains(t, err, "configuration is not valid")
	assert.Contains(t, out, "engine.reservoir_size")
	assert.Contains(t, out, "engine.binary_threshold")
}

func TestValidateMissingConfig(t *testing.T) {
	_, err := runCLI(t, "validate", "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "failed to load config")
}
