package provider

import "github.com/quizforge/quizforge/internal/types"

const deepseekBaseURL = "https://api.deepseek.com"

// newDeepSeek builds the DeepSeek provider. Strict JSON schemas are not
// supported; callers fall back to JSON mode.
func newDeepSeek(apiKey, baseURL string) types.Provider {
	if baseURL == "" {
		baseURL = deepseekBaseURL
	}
	return &openaiCompat{
		name:    "deepseek",
		apiKey:  apiKey,
		baseURL: baseURL,
		contextLimits: map[string]int{
			"deepseek-chat":  64000,
			"deepseek-coder": 64000,
		},
		defaultContext: 64000,
		maxOutput:      8192,
		structured:     false,
		topicModel:     "deepseek-chat",
		questionModel:  "deepseek-chat",
	}
}
