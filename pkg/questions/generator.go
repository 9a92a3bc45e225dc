package questions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/quizforge/quizforge/internal/models"
	"github.com/quizforge/quizforge/internal/types"
)

// ErrMalformedResponse is returned when a batch response cannot be
// parsed into a questions payload.
var ErrMalformedResponse = errors.New("questions: malformed generation response")

// StageBatch is the progress stage reported before each batch.
const StageBatch = "ai_batch"

// Generator drives topic batches through the provider and assembles
// validated, domain-resolved questions. One failed batch never aborts
// the run.
type Generator struct {
	provider types.Provider
	pacer    types.Pacer
	progress types.ProgressFunc
	builder  Builder
}

func New(provider types.Provider, pacer types.Pacer, progress types.ProgressFunc) Generator {
	return Generator{
		provider: provider,
		pacer:    pacer,
		progress: progress,
		builder:  NewBuilder(provider),
	}
}

// Generate produces questions for every topic text, batch by batch.
// The domain mapping resolves topic names to external domain IDs;
// questions whose topic cannot be resolved are dropped with a
// diagnostic. The only fatal error is context cancellation.
func (g Generator) Generate(ctx context.Context, topicTexts []models.TopicText, domainMapping map[string]string) ([]models.Question, error) {
	batches := g.builder.Build(topicTexts)
	log.Printf("questions: packed %d topics into %d batches", len(topicTexts), len(batches))

	totalTopics := len(topicTexts)
	topicsProcessed := 0

	var all []models.Question
	for i, batch := range batches {
		if g.pacer != nil {
			if err := g.pacer.Wait(ctx); err != nil {
				return all, fmt.Errorf("pacing interrupted: %w", err)
			}
		}

		topicStart := topicsProcessed + 1
		topicEnd := topicsProcessed + len(batch)
		if g.progress != nil {
			g.progress(StageBatch, topicStart, totalTopics, fmt.Sprintf("topics_%d_to_%d", topicStart, topicEnd))
		}

		generated, err := g.generateBatch(ctx, batch)
		if err != nil {
			log.Printf("questions: batch %d/%d failed, continuing: %v", i+1, len(batches), err)
			topicsProcessed = topicEnd
			continue
		}

		all = append(all, resolveDomains(generated, domainMapping)...)
		topicsProcessed = topicEnd
	}

	logTopicCoverage(topicTexts, all)
	return all, nil
}

const generationSystemPrompt = `You are an expert educational content creator that generates high-quality multiple-choice quiz questions from educational materials.

Your task:
1. Generate questions for ALL topics provided in the content
2. Generate the MAXIMUM number of questions possible from each topic
3. Each question should test understanding of concepts from the content
4. Provide at least 3 multiple-choice options per question
5. Mark the correct answer with its index (0-based)
6. Include a brief source text excerpt showing where the answer can be found
7. Label each question with the exact topic name it belongs to
8. If the text is in Spanish, generate questions in Spanish

CRITICAL: You MUST return valid JSON. Use double quotes (") for all strings, not single quotes (').

Return a JSON object with this exact structure:
{
  "questions": [
    {
      "topic_name": "Exact topic name from the input",
      "question": "Question text here?",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correct_answer_index": 0,
      "source_text": "Brief relevant excerpt from the source text"
    }
  ]
}

Guidelines:
- Maximize the number of questions - more questions = better learning coverage
- Generate questions from EVERY topic in the batch
- Extract multiple different concepts from each topic to create diverse questions
- Questions should test facts, definitions, relationships, and applications from the content
- Avoid ambiguous or trick questions
- Options should be plausible but clearly distinguishable
- Source text should be concise but sufficient to verify the answer
- Use the exact topic name provided in the input

REMEMBER: Your response must be valid, parseable JSON with proper syntax!`

// generateBatch issues one completion for a batch and parses the
// result. Schema enforcement is used when the provider supports it,
// otherwise JSON mode.
func (g Generator) generateBatch(ctx context.Context, batch models.Batch) ([]models.Question, error) {
	names := make([]string, 0, len(batch))
	for _, tt := range batch {
		names = append(names, tt.Name)
	}

	userPrompt := fmt.Sprintf(`Generate quiz questions for these topics: %s

Content:
%s

IMPORTANT: Return ONLY valid JSON with double quotes. No markdown, no code blocks, just pure JSON.`,
		strings.Join(names, ", "), formatBatchContent(batch))

	model := g.provider.DefaultQuestionModel()
	cfg := types.CompletionConfig{
		Model: model,
		Messages: []types.ChatMessage{
			{Role: "system", Content: generationSystemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   g.provider.MaxOutputTokens(model),
		Temperature: 0.1,
	}
	if g.provider.SupportsStructuredOutput() {
		cfg.Schema = generationSchema()
	} else {
		cfg.JSONMode = true
	}

	resp, err := g.provider.Completion(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return parseQuestions(resp.Content)
}

// questionPayload mirrors the wire format. CorrectAnswerIndex is a
// pointer so a missing key is distinguishable from index 0.
type questionPayload struct {
	TopicName          string   `json:"topic_name"`
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectAnswerIndex *int     `json:"correct_answer_index"`
	SourceText         string   `json:"source_text"`
}

// parseQuestions decodes a generation response, dropping invalid items
// individually rather than failing the batch.
func parseQuestions(content string) ([]models.Question, error) {
	content = stripFences(content)

	var payload struct {
		Questions []questionPayload `json:"questions"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if payload.Questions == nil {
		return nil, fmt.Errorf("%w: missing questions key", ErrMalformedResponse)
	}

	questions := make([]models.Question, 0, len(payload.Questions))
	for _, q := range payload.Questions {
		if q.CorrectAnswerIndex == nil {
			log.Printf("questions: item missing correct_answer_index, dropping: %.50s", q.Question)
			continue
		}
		question := models.Question{
			Question:           q.Question,
			Options:            q.Options,
			CorrectAnswerIndex: *q.CorrectAnswerIndex,
			SourceText:         q.SourceText,
			TopicName:          q.TopicName,
		}
		if err := question.Validate(); err != nil {
			log.Printf("questions: invalid item, dropping: %v", err)
			continue
		}
		questions = append(questions, question)
	}

	return questions, nil
}

// resolveDomains attaches domain IDs from the caller-supplied mapping.
// Unresolved topics drop their questions; the rest of the batch is
// unaffected.
func resolveDomains(questions []models.Question, domainMapping map[string]string) []models.Question {
	resolved := make([]models.Question, 0, len(questions))
	for _, q := range questions {
		if q.TopicName == "" {
			log.Printf("questions: item missing topic_name, dropping: %.50s", q.Question)
			continue
		}
		domainID, ok := domainMapping[q.TopicName]
		if !ok {
			log.Printf("questions: no domain for topic %q, dropping question", q.TopicName)
			continue
		}
		q.DomainID = domainID
		resolved = append(resolved, q)
	}
	return resolved
}

// logTopicCoverage reports the question distribution per topic so thin
// coverage is visible in the run output.
func logTopicCoverage(topicTexts []models.TopicText, questions []models.Question) {
	perTopic := make(map[string]int, len(topicTexts))
	for _, tt := range topicTexts {
		perTopic[tt.Name] = 0
	}
	for _, q := range questions {
		if _, ok := perTopic[q.TopicName]; ok {
			perTopic[q.TopicName]++
		}
	}

	names := make([]string, 0, len(perTopic))
	for name := range perTopic {
		names = append(names, name)
	}
	sort.Strings(names)

	log.Printf("questions: distribution across %d topics:", len(names))
	for _, name := range names {
		log.Printf("  %s: %d question(s)", name, perTopic[name])
	}
}

// stripFences removes markdown code fences some backends wrap around
// JSON output despite instructions.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}
	return strings.TrimSpace(content)
}
