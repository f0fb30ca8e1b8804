package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "Survived", cfg.LabelCol)
	assert.InDelta(t, 29.7, cfg.Fill.Age, 1e-12)
	assert.InDelta(t, 32.2, cfg.Fill.Fare, 1e-12)
	assert.InDelta(t, 0.2, cfg.Split.TestRatio, 1e-12)
	assert.EqualValues(t, 42, cfg.Split.Seed)
	assert.Len(t, cfg.Features, 7)
}

func TestLoadYAMLOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	body := `
data: other.csv
fill:
  age: 30
split:
  test_ratio: 0.3
models:
  forest:
    trees: 10
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "other.csv", cfg.Data)
	assert.InDelta(t, 30.0, cfg.Fill.Age, 1e-12)
	assert.InDelta(t, 0.3, cfg.Split.TestRatio, 1e-12)
	assert.Equal(t, 10, cfg.Models.Forest.Trees)
	// untouched values keep their defaults
	assert.Equal(t, "Survived", cfg.LabelCol)
	assert.InDelta(t, 32.2, cfg.Fill.Fare, 1e-12)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TITANIC_DATA", "env.csv")
	t.Setenv("TITANIC_SEED", "7")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env.csv", cfg.Data)
	assert.EqualValues(t, 7, cfg.Split.Seed)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	for _, mutate := range []func(*Config){
		func(c *Config) { c.Data = "" },
		func(c *Config) { c.LabelCol = "" },
		func(c *Config) { c.Features = nil },
		func(c *Config) { c.Split.TestRatio = 0 },
		func(c *Config) { c.Split.TestRatio = 1 },
		func(c *Config) { c.Split.CVFolds = 1 },
		func(c *Config) { c.Split.CVFolds = -2 },
	} {
		cfg := Default()
		mutate(&cfg)
		assert.Error(t, cfg.Validate())
	}
}
