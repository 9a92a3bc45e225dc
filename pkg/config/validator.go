package config

import (
	"fmt"
	"net/url"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate provider config
	if c.Provider.Name == "" {
		errors = append(errors, ValidationError{
			Field:   "provider.name",
			Message: "provider name is required",
		})
	}

	if c.Provider.BaseURL != "" {
		if _, err := url.Parse(c.Provider.BaseURL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "provider.base_url",
				Message: "invalid base URL",
			})
		}
	}

	// Validate topic identification config
	if c.Topics.TOCThreshold < 0 || c.Topics.TOCThreshold > 1 {
		errors = append(errors, ValidationError{
			Field:   "topics.toc_threshold",
			Message: "toc_threshold must be between 0 and 1",
		})
	}

	if c.Topics.TOCMaxPages < 1 {
		errors = append(errors, ValidationError{
			Field:   "topics.toc_max_pages",
			Message: "toc_max_pages must be positive",
		})
	}

	if c.Topics.MinFontSize <= 0 {
		errors = append(errors, ValidationError{
			Field:   "topics.min_font_size",
			Message: "min_font_size must be positive",
		})
	}

	if c.Topics.ChunkPages < 1 {
		errors = append(errors, ValidationError{
			Field:   "topics.chunk_pages",
			Message: "chunk_pages must be positive",
		})
	}

	if c.Topics.OverlapPages < 0 || c.Topics.OverlapPages >= c.Topics.ChunkPages {
		errors = append(errors, ValidationError{
			Field:   "topics.overlap_pages",
			Message: "overlap_pages must be non-negative and less than chunk_pages",
		})
	}

	// Validate question generation config
	if c.Questions.BatchDelaySeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "questions.batch_delay_seconds",
			Message: "batch_delay_seconds cannot be negative",
		})
	}

	if c.Questions.Temperature < 0 || c.Questions.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "questions.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	// Validate database config
	if c.Database.URL != "" {
		if _, err := url.Parse(c.Database.URL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "database.url",
				Message: "invalid database URL",
			})
		}
	}

	return errors
}
