package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Provider struct {
		Name    string `yaml:"name"`
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"provider"`

	Topics struct {
		TOCThreshold       float64 `yaml:"toc_threshold"`
		TOCMaxPages        int     `yaml:"toc_max_pages"`
		MinFontSize        float64 `yaml:"min_font_size"`
		TitlePageThreshold int     `yaml:"title_page_threshold"`
		ChunkPages         int     `yaml:"chunk_pages"`
		OverlapPages       int     `yaml:"overlap_pages"`
	} `yaml:"topics"`

	Questions struct {
		BatchDelaySeconds int     `yaml:"batch_delay_seconds"`
		Temperature       float64 `yaml:"temperature"`
	} `yaml:"questions"`

	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/quizforge/config.yaml"),
			"/etc/quizforge/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	// Merge with environment variables
	mergeWithEnv(&config)

	// Apply defaults for unset values
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.Provider.Name == "" {
		config.Provider.Name = "openai"
	}

	if config.Topics.TOCThreshold == 0 {
		config.Topics.TOCThreshold = 0.4
	}
	if config.Topics.TOCMaxPages == 0 {
		config.Topics.TOCMaxPages = 10
	}
	if config.Topics.MinFontSize == 0 {
		config.Topics.MinFontSize = 11.0
	}
	if config.Topics.TitlePageThreshold == 0 {
		config.Topics.TitlePageThreshold = 3
	}
	if config.Topics.ChunkPages == 0 {
		config.Topics.ChunkPages = 30
	}
	if config.Topics.OverlapPages == 0 {
		config.Topics.OverlapPages = 3
	}

	if config.Questions.BatchDelaySeconds == 0 {
		config.Questions.BatchDelaySeconds = 2
	}
	if config.Questions.Temperature == 0 {
		config.Questions.Temperature = 0.1
	}
}

func mergeWithEnv(config *Config) {
	if name := os.Getenv("LLM_PROVIDER"); name != "" {
		config.Provider.Name = name
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
}
