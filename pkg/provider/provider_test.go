package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"deepseek", "groq", "openai"}, Names())
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New("anthropic", "key", "")

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "anthropic", cfgErr.Provider)
	assert.Contains(t, cfgErr.Message, "unknown provider")
}

func TestNewMissingAPIKey(t *testing.T) {
	_, err := New("groq", "", "")

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Message, "GROQ_API_KEY")
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "deepseek")
	t.Setenv("DEEPSEEK_API_KEY", "sk-test")

	p, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "deepseek", p.Name())
}

func TestFromEnvDefaultsToOpenAI(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	p, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())
}

func TestContextLimits(t *testing.T) {
	p, err := New("openai", "sk-test", "")
	require.NoError(t, err)

	assert.Equal(t, 16385, p.ContextLimit("gpt-3.5-turbo"))
	assert.Equal(t, 128000, p.ContextLimit("gpt-4o-mini"))
	assert.Equal(t, 8192, p.ContextLimit("some-future-model"))
	assert.Equal(t, 16000, p.MaxOutputTokens("gpt-4o-mini"))
	assert.True(t, p.SupportsStructuredOutput())
}

func TestDefaultModels(t *testing.T) {
	p, err := New("openai", "sk-test", "")
	require.NoError(t, err)
	assert.Equal(t, "gpt-3.5-turbo", p.DefaultTopicModel())
	assert.Equal(t, "gpt-4o-mini", p.DefaultQuestionModel())

	d, err := New("deepseek", "sk-test", "")
	require.NoError(t, err)
	assert.Equal(t, "deepseek-chat", d.DefaultTopicModel())
	assert.False(t, d.SupportsStructuredOutput())
}

func TestBatchTokenLimitDerived(t *testing.T) {
	t.Setenv("OPENAI_BATCH_TOKEN_LIMIT", "")

	p, err := New("openai", "sk-test", "")
	require.NoError(t, err)

	// 0.8 * (128000 - 16000)
	assert.Equal(t, 89600, p.BatchTokenLimit("gpt-4o-mini"))
}

func TestBatchTokenLimitProviderDefault(t *testing.T) {
	t.Setenv("GROQ_BATCH_TOKEN_LIMIT", "")

	p, err := New("groq", "sk-test", "")
	require.NoError(t, err)

	// Groq's free-tier default beats the derived value.
	assert.Equal(t, 3000, p.BatchTokenLimit("llama-3.3-70b-versatile"))
}

func TestBatchTokenLimitEnvOverride(t *testing.T) {
	p, err := New("groq", "sk-test", "")
	require.NoError(t, err)

	t.Setenv("GROQ_BATCH_TOKEN_LIMIT", "8000")
	assert.Equal(t, 8000, p.BatchTokenLimit("llama-3.3-70b-versatile"))

	// Clamped to [1000, 100000].
	t.Setenv("GROQ_BATCH_TOKEN_LIMIT", "50")
	assert.Equal(t, 1000, p.BatchTokenLimit("llama-3.3-70b-versatile"))

	t.Setenv("GROQ_BATCH_TOKEN_LIMIT", "9999999")
	assert.Equal(t, 100000, p.BatchTokenLimit("llama-3.3-70b-versatile"))

	// Garbage falls back to the provider default.
	t.Setenv("GROQ_BATCH_TOKEN_LIMIT", "not-a-number")
	assert.Equal(t, 3000, p.BatchTokenLimit("llama-3.3-70b-versatile"))
}
