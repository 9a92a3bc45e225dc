package topics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizforge/quizforge/internal/models"
	"github.com/quizforge/quizforge/internal/types"
)

type stubStrategy struct {
	name   string
	topics []models.Topic
	err    error
	called bool
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Attempt(context.Context, string, int) ([]models.Topic, error) {
	s.called = true
	return s.topics, s.err
}

func TestIdentifyFirstSuccessWins(t *testing.T) {
	first := &stubStrategy{name: "first", topics: []models.Topic{{Name: "A", Start: 1, End: 5}}}
	second := &stubStrategy{name: "second", topics: []models.Topic{{Name: "B", Start: 1, End: 5}}}

	o := New([]types.TopicStrategy{first, second}, nil)
	result := o.Identify(context.Background(), "text", 5)

	require.Len(t, result.Topics, 1)
	assert.Equal(t, "A", result.Topics[0].Name)
	assert.False(t, second.called)
}

func TestIdentifyFallsThroughOnError(t *testing.T) {
	failing := &stubStrategy{name: "failing", err: errors.New("insufficient evidence")}
	empty := &stubStrategy{name: "empty"}
	working := &stubStrategy{name: "working", topics: []models.Topic{
		{Name: "B", Start: 6, End: 9},
		{Name: "A", Start: 1, End: 5},
	}}

	o := New([]types.TopicStrategy{failing, empty, working}, nil)
	result := o.Identify(context.Background(), "text", 9)

	assert.True(t, failing.called)
	assert.True(t, empty.called)
	require.Len(t, result.Topics, 2)
	// Output is sorted by start page.
	assert.Equal(t, "A", result.Topics[0].Name)
	assert.Equal(t, "B", result.Topics[1].Name)
}

func TestIdentifySyntheticFallback(t *testing.T) {
	failing := &stubStrategy{name: "failing", err: errors.New("no luck")}

	var stage, metadata string
	progress := func(s string, _, _ int, m string) { stage, metadata = s, m }

	o := New([]types.TopicStrategy{failing}, progress)
	result := o.Identify(context.Background(), "text", 42)

	require.Len(t, result.Topics, 1)
	assert.Equal(t, FallbackTopicName, result.Topics[0].Name)
	assert.Equal(t, 1, result.Topics[0].Start)
	assert.Equal(t, 42, result.Topics[0].End)
	assert.Equal(t, StageTopics, stage)
	assert.Equal(t, "fallback", metadata)
}

func TestIdentifyReportsProgress(t *testing.T) {
	strategy := &stubStrategy{name: "stub", topics: []models.Topic{
		{Name: "A", Start: 1, End: 2},
		{Name: "B", Start: 3, End: 4},
	}}

	var gotStage, gotMeta string
	var gotCurrent, gotTotal int
	o := New([]types.TopicStrategy{strategy}, func(stage string, current, total int, meta string) {
		gotStage, gotCurrent, gotTotal, gotMeta = stage, current, total, meta
	})

	o.Identify(context.Background(), "text", 4)
	assert.Equal(t, StageTopics, gotStage)
	assert.Equal(t, 2, gotCurrent)
	assert.Equal(t, 2, gotTotal)
	assert.Equal(t, "stub", gotMeta)
}

func TestExtractTopicTexts(t *testing.T) {
	text := "--- Page 1 ---\nuno\n--- Page 2 ---\ndos\n--- Page 3 ---\ntres"
	topicMap := models.TopicMap{Topics: []models.Topic{
		{Name: "First", Start: 1, End: 2},
		{Name: "Second", Start: 3, End: 3},
		{Name: "Empty", Start: 4, End: 9},
	}}

	texts := ExtractTopicTexts(text, topicMap)

	require.Len(t, texts, 2)
	assert.Equal(t, "First", texts[0].Name)
	assert.Equal(t, "uno\n\ndos", texts[0].Text)
	assert.Equal(t, "Second", texts[1].Name)
	assert.Equal(t, "tres", texts[1].Text)
}
