// Package provider implements the completion backend abstraction. All
// supported backends speak the OpenAI wire protocol, so one compat base
// carries the transport while per-provider tables carry model limits
// and capabilities.
package provider

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkoukk/tiktoken-go"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/quizforge/quizforge/internal/types"
)

// ConfigurationError reports a provider that cannot be constructed:
// unknown name, missing credentials. It is raised before any document
// processing begins.
type ConfigurationError struct {
	Provider string
	Message  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("provider %q: %s", e.Provider, e.Message)
}

// Factory builds a provider from its credentials. BaseURL overrides the
// provider's default endpoint when non-empty.
type Factory func(apiKey, baseURL string) types.Provider

var registry = map[string]Factory{
	"openai":   newOpenAI,
	"groq":     newGroq,
	"deepseek": newDeepSeek,
}

// Names lists the registered provider names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New constructs a named provider, failing fast on an unknown name or
// an empty API key.
func New(name, apiKey, baseURL string) (types.Provider, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, &ConfigurationError{
			Provider: name,
			Message:  fmt.Sprintf("unknown provider, expected one of %s", strings.Join(Names(), ", ")),
		}
	}
	if apiKey == "" {
		return nil, &ConfigurationError{
			Provider: name,
			Message:  fmt.Sprintf("missing API key, set %s_API_KEY", strings.ToUpper(name)),
		}
	}
	return factory(apiKey, baseURL), nil
}

// FromEnv constructs the provider selected by LLM_PROVIDER (default
// openai), reading {NAME}_API_KEY and optional {NAME}_BASE_URL.
func FromEnv() (types.Provider, error) {
	name := os.Getenv("LLM_PROVIDER")
	if name == "" {
		name = "openai"
	}
	name = strings.ToLower(name)

	upper := strings.ToUpper(name)
	return New(name, os.Getenv(upper+"_API_KEY"), os.Getenv(upper+"_BASE_URL"))
}

// Batch token limit clamp bounds for env overrides.
const (
	minBatchTokenLimit = 1000
	maxBatchTokenLimit = 100000
)

// envBatchTokenLimit reads {NAME}_BATCH_TOKEN_LIMIT and clamps it to
// the allowed range. Returns 0 when unset or unparseable.
func envBatchTokenLimit(name string) int {
	raw := os.Getenv(strings.ToUpper(name) + "_BATCH_TOKEN_LIMIT")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return clampBatchTokenLimit(limit)
}

func clampBatchTokenLimit(limit int) int {
	if limit < minBatchTokenLimit {
		return minBatchTokenLimit
	}
	if limit > maxBatchTokenLimit {
		return maxBatchTokenLimit
	}
	return limit
}

// openaiCompat is the shared implementation behind every registered
// provider. Model tables and capability flags are the only things that
// differ between backends.
type openaiCompat struct {
	name    string
	apiKey  string
	baseURL string

	// contextLimits maps model prefixes to context window sizes;
	// defaultContext covers unknown models.
	contextLimits  map[string]int
	defaultContext int
	maxOutput      int
	structured     bool
	// defaultBatchLimit, when non-zero, overrides the derived
	// 0.8*(context-output) budget. Free-tier backends need it.
	defaultBatchLimit int

	topicModel    string
	questionModel string
}

func (p *openaiCompat) Name() string                   { return p.name }
func (p *openaiCompat) SupportsStructuredOutput() bool { return p.structured }
func (p *openaiCompat) DefaultTopicModel() string      { return p.topicModel }
func (p *openaiCompat) DefaultQuestionModel() string   { return p.questionModel }

func (p *openaiCompat) ContextLimit(model string) int {
	for prefix, limit := range p.contextLimits {
		if strings.HasPrefix(model, prefix) {
			return limit
		}
	}
	return p.defaultContext
}

func (p *openaiCompat) MaxOutputTokens(model string) int { return p.maxOutput }

// BatchTokenLimit resolves the effective batch budget: env override
// (clamped), then the provider default, then 80% of what remains of the
// context window after reserving output space.
func (p *openaiCompat) BatchTokenLimit(model string) int {
	if limit := envBatchTokenLimit(p.name); limit > 0 {
		return limit
	}
	if p.defaultBatchLimit > 0 {
		return p.defaultBatchLimit
	}
	return int(0.8 * float64(p.ContextLimit(model)-p.MaxOutputTokens(model)))
}

// CountTokens estimates token usage with the model's tiktoken encoding,
// falling back to cl100k_base and finally to a chars/4 heuristic. The
// result feeds budget safety margins, not billing.
func (p *openaiCompat) CountTokens(text, model string) int {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
	}
	if err != nil {
		return len(text) / 4
	}
	return len(enc.Encode(text, nil, nil))
}

// Completion issues one chat completion. A fresh client is built per
// request because the response format is a client option, not a call
// option, and it changes between schema and JSON-mode requests.
func (p *openaiCompat) Completion(ctx context.Context, cfg types.CompletionConfig) (*types.CompletionResponse, error) {
	opts := []openai.Option{
		openai.WithToken(p.apiKey),
		openai.WithModel(cfg.Model),
	}
	if p.baseURL != "" {
		opts = append(opts, openai.WithBaseURL(p.baseURL))
	}

	useSchema := cfg.Schema != nil && p.structured
	if useSchema {
		opts = append(opts, openai.WithResponseFormat(&openai.ResponseFormat{
			Type:       "json_schema",
			JSONSchema: toResponseSchema(cfg.Schema),
		}))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize %s client: %w", p.name, err)
	}

	content := make([]llms.MessageContent, 0, len(cfg.Messages))
	for _, msg := range cfg.Messages {
		content = append(content, llms.TextParts(chatMessageType(msg.Role), msg.Content))
	}

	callOpts := []llms.CallOption{
		llms.WithMaxTokens(cfg.MaxTokens),
		llms.WithTemperature(cfg.Temperature),
	}
	if !useSchema && (cfg.JSONMode || cfg.Schema != nil) {
		callOpts = append(callOpts, llms.WithJSONMode())
	}

	resp, err := client.GenerateContent(ctx, content, callOpts...)
	if err != nil {
		return nil, fmt.Errorf("%s completion: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s completion: empty response", p.name)
	}

	choice := resp.Choices[0]
	return &types.CompletionResponse{
		Content: choice.Content,
		Model:   cfg.Model,
		Usage: types.Usage{
			PromptTokens:     generationInfoInt(choice.GenerationInfo, "PromptTokens"),
			CompletionTokens: generationInfoInt(choice.GenerationInfo, "CompletionTokens"),
			TotalTokens:      generationInfoInt(choice.GenerationInfo, "TotalTokens"),
		},
	}, nil
}

func chatMessageType(role string) llms.ChatMessageType {
	switch role {
	case "system":
		return llms.ChatMessageTypeSystem
	case "assistant":
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}

func generationInfoInt(info map[string]any, key string) int {
	if info == nil {
		return 0
	}
	if n, ok := info[key].(int); ok {
		return n
	}
	return 0
}

// toResponseSchema converts the provider-agnostic schema into the
// OpenAI json_schema response format. AdditionalProperties stays false
// on every object node: strict mode requires it.
func toResponseSchema(s *types.Schema) *openai.ResponseFormatJSONSchema {
	return &openai.ResponseFormatJSONSchema{
		Name:   s.Name,
		Strict: s.Strict,
		Schema: toSchemaProperty(s.Root),
	}
}

func toSchemaProperty(p *types.SchemaProperty) *openai.ResponseFormatJSONSchemaProperty {
	if p == nil {
		return nil
	}

	out := &openai.ResponseFormatJSONSchemaProperty{
		Type:        p.Type,
		Description: p.Description,
		Items:       toSchemaProperty(p.Items),
		Required:    p.Required,
	}
	if len(p.Properties) > 0 {
		out.Properties = make(map[string]*openai.ResponseFormatJSONSchemaProperty, len(p.Properties))
		for name, child := range p.Properties {
			out.Properties[name] = toSchemaProperty(child)
		}
	}
	return out
}
