package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tedeval/pkg/config"
)

// TestDefaultConfig verifies the default evaluation setup.
func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.Equal(t, 100.0, cfg.Evaluation.DistanceThreshold)
	assert.Equal(t, 1.0, cfg.Evaluation.VoxelSize.X)
	assert.Equal(t, 1.0, cfg.Evaluation.VoxelSize.Y)
	assert.Equal(t, 10.0, cfg.Evaluation.VoxelSize.Z)
	assert.Greater(t, cfg.Evaluation.NumWorkers, 0)
	assert.False(t, cfg.Evaluation.ComputeCorrected)
	assert.Greater(t, cfg.Solver.MaxNodes, 0)
}

// TestLoadConfig_Missing verifies that a missing file falls back to
// defaults.
func TestLoadConfig_Missing(t *testing.T) {
	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

// TestConfig_RoundTrip verifies save and reload.
func TestConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tedeval.yaml")

	cfg := config.DefaultConfig()
	cfg.Evaluation.DistanceThreshold = 42
	cfg.Evaluation.VoxelSize.Z = 40
	cfg.Evaluation.ComputeCorrected = true
	cfg.Output.ReportPath = "report.yaml"

	require.NoError(t, config.SaveConfig(cfg, path))

	loaded, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

// TestLoadConfig_Invalid verifies the parse error path.
func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("evaluation: ["), 0644))

	_, err := config.LoadConfig(path)
	assert.Error(t, err)
}

// TestCreateDefaultConfigFile verifies the convenience writer.
func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "tedeval.yaml")

	require.NoError(t, config.CreateDefaultConfigFile(path))

	loaded, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), loaded)
}
