package types

import (
	"context"

	"github.com/quizforge/quizforge/internal/models"
)

// ChatMessage is one turn in a completion conversation.
type ChatMessage struct {
	Role    string // "system", "user" or "assistant"
	Content string
}

// Schema is a provider-agnostic JSON schema for strict structured output.
// Providers that only offer best-effort JSON mode ignore it.
type Schema struct {
	Name   string
	Strict bool
	Root   *SchemaProperty
}

// SchemaProperty is a node in a Schema definition.
type SchemaProperty struct {
	Type        string
	Description string
	Items       *SchemaProperty
	Properties  map[string]*SchemaProperty
	Required    []string
}

// CompletionConfig describes a single completion request.
type CompletionConfig struct {
	Model       string
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float64
	Schema      *Schema // strict structured output; nil when unused
	JSONMode    bool    // best-effort JSON mode when Schema is nil
}

// Usage reports token accounting for a completion, when the backend
// provides it.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionResponse is the result of one completion request.
type CompletionResponse struct {
	Content string
	Model   string
	Usage   Usage
}

// Provider is the uniform contract over completion backends. Token
// counts are provider-specific estimates used for budget safety
// margins, not exact accounting.
type Provider interface {
	Name() string
	Completion(ctx context.Context, cfg CompletionConfig) (*CompletionResponse, error)
	CountTokens(text, model string) int
	ContextLimit(model string) int
	MaxOutputTokens(model string) int
	SupportsStructuredOutput() bool
	BatchTokenLimit(model string) int
	DefaultTopicModel() string
	DefaultQuestionModel() string
}

// TopicStrategy is one topic identification approach. Attempt returns
// an error when the strategy cannot produce a confident result; the
// orchestrator then advances to the next strategy.
type TopicStrategy interface {
	Name() string
	Attempt(ctx context.Context, text string, totalPages int) ([]models.Topic, error)
}

// Pacer throttles the batch-processing loop between completion requests.
type Pacer interface {
	Wait(ctx context.Context) error
}

// ProgressFunc reports pipeline progress. Metadata carries a
// human-readable detail string and may be empty.
type ProgressFunc func(stage string, current, total int, metadata string)

// QuestionStore is the persistence collaborator. The generation engine
// never depends on it; callers compose it at the boundary.
type QuestionStore interface {
	SaveTopics(ctx context.Context, sessionID string, topics []models.Topic) error
	CreateDomains(ctx context.Context, sessionID string, topics []models.Topic) (map[string]string, error)
	SaveQuestions(ctx context.Context, sessionID string, questions []models.Question) error
}
