package provider

import "github.com/quizforge/quizforge/internal/types"

// newOpenAI builds the OpenAI provider: fast cheap model for topic
// identification, better quality for question generation.
func newOpenAI(apiKey, baseURL string) types.Provider {
	return &openaiCompat{
		name:    "openai",
		apiKey:  apiKey,
		baseURL: baseURL,
		contextLimits: map[string]int{
			"gpt-3.5-turbo": 16385,
			"gpt-4o-mini":   128000,
			"gpt-4o":        128000,
			"gpt-4-turbo":   128000,
		},
		defaultContext: 8192,
		maxOutput:      16000,
		structured:     true,
		topicModel:     "gpt-3.5-turbo",
		questionModel:  "gpt-4o-mini",
	}
}
