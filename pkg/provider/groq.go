package provider

import "github.com/quizforge/quizforge/internal/types"

const groqBaseURL = "https://api.groq.com/openai/v1"

// newGroq builds the Groq provider. The 3000-token default batch limit
// fits the free tier's 12,000 TPM quota; paying accounts raise it via
// GROQ_BATCH_TOKEN_LIMIT.
func newGroq(apiKey, baseURL string) types.Provider {
	if baseURL == "" {
		baseURL = groqBaseURL
	}
	return &openaiCompat{
		name:    "groq",
		apiKey:  apiKey,
		baseURL: baseURL,
		contextLimits: map[string]int{
			"llama-3.3-70b":      131072,
			"llama-3.1-8b":       131072,
			"mixtral-8x7b-32768": 32768,
			"gemma2-9b-it":       8192,
		},
		defaultContext:    32768,
		maxOutput:         4096,
		structured:        true,
		defaultBatchLimit: 3000,
		topicModel:        "llama-3.3-70b-versatile",
		questionModel:     "llama-3.3-70b-versatile",
	}
}
