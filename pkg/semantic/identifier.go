// Package semantic identifies topics by asking a completion backend to
// analyze document structure. Small documents go out as a single
// request over a header digest; large ones are chunked with overlap and
// the per-chunk results merged.
package semantic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/quizforge/quizforge/internal/models"
	"github.com/quizforge/quizforge/internal/types"
	"github.com/quizforge/quizforge/pkg/pageindex"
)

// ErrMalformedResponse is returned when the backend's output cannot be
// parsed into a valid topic list.
var ErrMalformedResponse = errors.New("semantic: malformed topics response")

// ErrInvalidRange is returned when a parsed topic carries an impossible
// page range.
var ErrInvalidRange = errors.New("semantic: topic page range invalid")

type IdentifierConfig struct {
	// SingleRequestChars is the document size under which one request
	// covers the whole text.
	SingleRequestChars int
	// ChunkPages is the chunk size for large documents.
	ChunkPages int
	// OverlapPages is how many pages consecutive chunks share, so
	// topics crossing a boundary are seen by both requests.
	OverlapPages int
	// MaxTokens bounds the completion output. Topic lists are small.
	MaxTokens int
	// Temperature for the completion; low for stable boundaries.
	Temperature float64
}

// Identifier asks a completion provider for the document's topic map.
type Identifier struct {
	provider types.Provider
	config   IdentifierConfig
}

func New(provider types.Provider) Identifier {
	return NewWithConfig(provider, IdentifierConfig{})
}

func NewWithConfig(provider types.Provider, config IdentifierConfig) Identifier {
	if config.SingleRequestChars == 0 {
		config.SingleRequestChars = 50000
	}
	if config.ChunkPages == 0 {
		config.ChunkPages = 30
	}
	if config.OverlapPages == 0 {
		config.OverlapPages = 3
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 2000
	}
	if config.Temperature == 0 {
		config.Temperature = 0.1
	}
	return Identifier{provider: provider, config: config}
}

func (id Identifier) Name() string { return "semantic" }

// Attempt identifies topics for the document, chunking when the text is
// too large for a single request.
func (id Identifier) Attempt(ctx context.Context, text string, totalPages int) ([]models.Topic, error) {
	if len(text) <= id.config.SingleRequestChars || totalPages <= id.config.ChunkPages {
		return id.identify(ctx, pageindex.HeaderDigest(text), totalPages)
	}
	return id.identifyChunked(ctx, text, totalPages)
}

// identifyChunked walks the document in overlapping page windows,
// shifts each chunk's topics back to absolute page numbers, and merges
// duplicates across chunk boundaries.
func (id Identifier) identifyChunked(ctx context.Context, text string, totalPages int) ([]models.Topic, error) {
	step := id.config.ChunkPages - id.config.OverlapPages
	if step < 1 {
		step = 1
	}

	var all []models.Topic
	for chunkStart := 1; chunkStart <= totalPages; chunkStart += step {
		chunkEnd := chunkStart + id.config.ChunkPages - 1
		if chunkEnd > totalPages {
			chunkEnd = totalPages
		}

		chunkText := pageindex.ExtractPageRange(text, chunkStart, chunkEnd)
		chunkTopics, err := id.identify(ctx, chunkText, chunkEnd-chunkStart+1)
		if err != nil {
			return nil, fmt.Errorf("chunk pages %d-%d: %w", chunkStart, chunkEnd, err)
		}

		for _, t := range chunkTopics {
			start := t.Start + chunkStart - 1
			end := t.End + chunkStart - 1
			if end > totalPages {
				end = totalPages
			}
			topic, err := models.NewTopic(t.Name, start, end)
			if err != nil {
				return nil, fmt.Errorf("chunk pages %d-%d: %w", chunkStart, chunkEnd, err)
			}
			all = append(all, topic)
		}

		if chunkEnd == totalPages {
			break
		}
	}

	return mergeChunkTopics(all), nil
}

const systemPrompt = `You are an expert document structure analyzer that identifies topics in educational and medical documents.

Your task:
1. Analyze the provided text which contains header markers with metadata
2. Identify the main TOPICS (major sections) of the document
3. Topics often span multiple pages and may have sub-sections
4. Use header metadata (font size, bold, etc.) to understand hierarchy
5. Larger font sizes usually indicate major topic boundaries
6. Return topic names with their start and end page numbers

Header marker format:
### [HEADER, SIZE=20.0pt] [BOLD] Header Text

Guidelines for topic identification:
- Focus on MAJOR topics, not every single header
- A topic should be substantial (usually at least 1-2 pages)
- Largest headers (18pt+) are usually main topics
- Consider semantic meaning: "Introduction", "Chapter 1", "Conclusion" are topics
- Don't create separate topics for every page - look for true topic boundaries
- If a header appears on multiple pages with similar styling, it's likely one continuous topic

Return topics in chronological order (by start page).`

// identify sends one completion request and validates the returned
// topic map against the page count of the supplied text.
func (id Identifier) identify(ctx context.Context, text string, totalPages int) ([]models.Topic, error) {
	userPrompt := fmt.Sprintf(`Analyze this document and identify the main topics with their page ranges.

Document has %d pages total.

Headers and structure:
%s

You MUST return ONLY a valid JSON object (no other text) with this EXACT structure:
{
  "topics": [
    {"name": "Topic name", "start": 1, "end": 5},
    {"name": "Another topic", "start": 6, "end": 10}
  ]
}

Important:
- Start and end page numbers are 1-indexed (first page is 1)
- Topics should not overlap
- Cover the entire document (start from page 1 to page %d)
- Use descriptive topic names based on header content
- If no clear topics exist, create broad topics like "Section 1", "Section 2", etc.
- Return ONLY the JSON object, no markdown formatting or additional text`, totalPages, text, totalPages)

	resp, err := id.provider.Completion(ctx, types.CompletionConfig{
		Model: id.provider.DefaultTopicModel(),
		Messages: []types.ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   id.config.MaxTokens,
		Temperature: id.config.Temperature,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("topic completion: %w", err)
	}

	return parseTopics(resp.Content, totalPages)
}

type topicsPayload struct {
	Topics []struct {
		Name  string `json:"name"`
		Start int    `json:"start"`
		End   int    `json:"end"`
	} `json:"topics"`
}

// parseTopics decodes and validates a topics response. The topics key
// must be present; every range must be 1-indexed, ordered, and within
// the document.
func parseTopics(content string, totalPages int) ([]models.Topic, error) {
	content = stripFences(content)

	var payload topicsPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if payload.Topics == nil {
		return nil, fmt.Errorf("%w: missing topics key", ErrMalformedResponse)
	}

	topics := make([]models.Topic, 0, len(payload.Topics))
	for _, t := range payload.Topics {
		if t.Start < 1 || t.End > totalPages {
			return nil, fmt.Errorf("%w: %q pages %d-%d outside 1-%d", ErrInvalidRange, t.Name, t.Start, t.End, totalPages)
		}
		topic, err := models.NewTopic(t.Name, t.Start, t.End)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRange, err)
		}
		topics = append(topics, topic)
	}

	sort.SliceStable(topics, func(i, j int) bool { return topics[i].Start < topics[j].Start })
	return topics, nil
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
