package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configData := `
provider:
  name: "groq"
  base_url: "https://api.groq.com/openai/v1"

topics:
  toc_threshold: 0.5
  toc_max_pages: 8
  chunk_pages: 40
  overlap_pages: 5

questions:
  batch_delay_seconds: 3
  temperature: 0.2

database:
  url: "postgres://localhost:5432/quiz"
`
	err := os.WriteFile(configPath, []byte(configData), 0644)
	require.NoError(t, err)

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "groq", config.Provider.Name)
	assert.Equal(t, 0.5, config.Topics.TOCThreshold)
	assert.Equal(t, 8, config.Topics.TOCMaxPages)
	assert.Equal(t, 40, config.Topics.ChunkPages)
	assert.Equal(t, 5, config.Topics.OverlapPages)
	assert.Equal(t, 3, config.Questions.BatchDelaySeconds)
	assert.Equal(t, "postgres://localhost:5432/quiz", config.Database.URL)

	// Unset values picked up defaults.
	assert.Equal(t, 11.0, config.Topics.MinFontSize)
	assert.Equal(t, 3, config.Topics.TitlePageThreshold)
}

func TestDefaults(t *testing.T) {
	config := &Config{}
	applyDefaults(config)

	assert.Equal(t, "openai", config.Provider.Name)
	assert.Equal(t, 0.4, config.Topics.TOCThreshold)
	assert.Equal(t, 10, config.Topics.TOCMaxPages)
	assert.Equal(t, 30, config.Topics.ChunkPages)
	assert.Equal(t, 3, config.Topics.OverlapPages)
	assert.Equal(t, 2, config.Questions.BatchDelaySeconds)
	assert.Equal(t, 0.1, config.Questions.Temperature)
}

func TestConfigValidation(t *testing.T) {
	config := &Config{}
	applyDefaults(config)
	assert.Empty(t, config.Validate())

	config.Topics.TOCThreshold = 1.5
	config.Topics.OverlapPages = 99
	config.Questions.Temperature = 3.0

	errors := config.Validate()
	require.Len(t, errors, 3)
	assert.Contains(t, errors[0].Error(), "toc_threshold")
	assert.Contains(t, errors[1].Error(), "overlap_pages")
	assert.Contains(t, errors[2].Error(), "temperature")
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "deepseek")
	t.Setenv("DATABASE_URL", "postgres://env-db:5432/quiz")

	config := &Config{}
	mergeWithEnv(config)

	assert.Equal(t, "deepseek", config.Provider.Name)
	assert.Equal(t, "postgres://env-db:5432/quiz", config.Database.URL)
}
