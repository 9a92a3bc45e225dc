// Package questions packs topic texts into token-budgeted batches and
// drives them through a completion provider to produce quiz questions.
package questions

import (
	"fmt"
	"strings"

	"github.com/quizforge/quizforge/internal/models"
	"github.com/quizforge/quizforge/internal/types"
)

// ReservedTokens is held back from every batch budget for the system
// prompt and response headroom.
const ReservedTokens = 2000

// Builder packs topic texts into batches bounded by the provider's
// effective token budget for its question model.
type Builder struct {
	provider types.Provider
	reserved int
}

func NewBuilder(provider types.Provider) Builder {
	return Builder{provider: provider, reserved: ReservedTokens}
}

// Build greedily packs topics in document order. A topic that alone
// exceeds the budget still gets its own batch.
func (b Builder) Build(topicTexts []models.TopicText) []models.Batch {
	model := b.provider.DefaultQuestionModel()
	budget := b.provider.BatchTokenLimit(model) - b.reserved

	var batches []models.Batch
	var current models.Batch
	running := 0

	for _, tt := range topicTexts {
		tokens := b.provider.CountTokens(tt.Name+"\n"+tt.Text, model)

		if len(current) > 0 && running+tokens > budget {
			batches = append(batches, current)
			current = models.Batch{tt}
			running = tokens
			continue
		}

		current = append(current, tt)
		running += tokens
	}

	if len(current) > 0 {
		batches = append(batches, current)
	}

	return batches
}

// formatBatchContent renders a batch as topic-delimited blocks the
// model can attribute questions to.
func formatBatchContent(batch models.Batch) string {
	var sb strings.Builder
	for _, tt := range batch {
		fmt.Fprintf(&sb, "--- Topic: %s ---\n%s\n\n", tt.Name, tt.Text)
	}
	return sb.String()
}
