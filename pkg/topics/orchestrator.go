// Package topics runs the topic identification cascade and extracts
// per-topic text for downstream question generation.
package topics

import (
	"context"
	"log"
	"sort"

	"github.com/quizforge/quizforge/internal/models"
	"github.com/quizforge/quizforge/internal/types"
)

// FallbackTopicName labels the synthetic whole-document topic used when
// every strategy fails.
const FallbackTopicName = "Document Content"

// StageTopics is the progress stage reported when identification
// completes.
const StageTopics = "topics"

// Orchestrator tries strategies in priority order and accepts the first
// that produces a usable topic map. It holds no state across calls.
type Orchestrator struct {
	strategies []types.TopicStrategy
	progress   types.ProgressFunc
}

func New(strategies []types.TopicStrategy, progress types.ProgressFunc) Orchestrator {
	return Orchestrator{strategies: strategies, progress: progress}
}

// Identify produces the document's topic map. Strategy failures never
// escape: each failed strategy advances the cascade, and exhausting all
// of them yields a single synthetic topic spanning the whole document.
func (o Orchestrator) Identify(ctx context.Context, text string, totalPages int) models.TopicMap {
	for _, strategy := range o.strategies {
		topics, err := strategy.Attempt(ctx, text, totalPages)
		if err != nil {
			log.Printf("topics: strategy %s: %v", strategy.Name(), err)
			continue
		}
		if len(topics) == 0 {
			log.Printf("topics: strategy %s returned no topics", strategy.Name())
			continue
		}

		sort.SliceStable(topics, func(i, j int) bool { return topics[i].Start < topics[j].Start })
		o.report(len(topics), strategy.Name())
		return models.TopicMap{Topics: topics}
	}

	log.Printf("topics: all strategies exhausted, falling back to single topic")
	fallback := models.Topic{Name: FallbackTopicName, Start: 1, End: totalPages}
	if fallback.End < 1 {
		fallback.End = 1
	}
	o.report(1, "fallback")
	return models.TopicMap{Topics: []models.Topic{fallback}}
}

func (o Orchestrator) report(count int, strategy string) {
	if o.progress != nil {
		o.progress(StageTopics, count, count, strategy)
	}
}
