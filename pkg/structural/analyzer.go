// Package structural identifies topics from font-size heading
// annotations embedded in OCR text. Larger fonts outrank smaller ones;
// the analyzer picks the shallowest heading level that yields enough
// topic boundaries.
package structural

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/quizforge/quizforge/internal/models"
	"github.com/quizforge/quizforge/pkg/pageindex"
)

// ErrInsufficientHeadings is returned when the text carries no usable
// heading annotations or they produce fewer than two topics.
var ErrInsufficientHeadings = errors.New("structural: insufficient headings for topic boundaries")

type AnalyzerConfig struct {
	// MinFontSize excludes annotations below this size; smaller fonts
	// are body text that slipped through OCR header detection.
	MinFontSize float64
	// TitlePageThreshold skips headings on the first N pages, which are
	// usually cover and title material.
	TitlePageThreshold int
	// MinHeadingsPerLevel gates each rung of the level ladder.
	MinHeadingsPerLevel int
	// MaxTopics caps the fallback that uses headings of every level.
	MaxTopics int
}

type Analyzer struct {
	config AnalyzerConfig
}

func NewWithConfig(config AnalyzerConfig) Analyzer {
	if config.MinFontSize == 0 {
		config.MinFontSize = 11.0
	}
	if config.TitlePageThreshold == 0 {
		config.TitlePageThreshold = 3
	}
	if config.MinHeadingsPerLevel == 0 {
		config.MinHeadingsPerLevel = 5
	}
	if config.MaxTopics == 0 {
		config.MaxTopics = 20
	}
	return Analyzer{config: config}
}

func (a Analyzer) Name() string { return "structural" }

type leveledHeading struct {
	pageindex.Heading
	level int
}

// Attempt derives topic boundaries from heading annotations. It returns
// ErrInsufficientHeadings when no annotations survive filtering or the
// boundaries collapse to fewer than two topics.
func (a Analyzer) Attempt(_ context.Context, text string, totalPages int) ([]models.Topic, error) {
	headings := a.collectHeadings(text)
	if len(headings) == 0 {
		return nil, ErrInsufficientHeadings
	}

	leveled := assignLevels(headings)
	boundaries := a.selectBoundaries(leveled)

	topics, err := buildTopics(boundaries, totalPages)
	if err != nil {
		return nil, err
	}
	topics = mergeShortTopics(topics)

	if len(topics) < 2 {
		return nil, ErrInsufficientHeadings
	}
	return topics, nil
}

func (a Analyzer) collectHeadings(text string) []pageindex.Heading {
	var kept []pageindex.Heading
	for _, h := range pageindex.ExtractHeadings(text) {
		if h.Size < a.config.MinFontSize {
			continue
		}
		if len(h.Text) < 2 {
			continue
		}
		name := cleanHeadingText(h.Text)
		if name == "" {
			continue
		}
		h.Text = name
		kept = append(kept, h)
	}
	return kept
}

var (
	ordinalPrefixRe = regexp.MustCompile(`^\d+[.)]\s*`)
	romanPrefixRe   = regexp.MustCompile(`^[IVXLC]+[.)]\s+`)
	punctuationRe   = regexp.MustCompile(`[^\p{L}\p{N}\s\-]`)
)

// cleanHeadingText normalizes a heading into a topic name: numbering
// prefixes and stray punctuation go, whitespace collapses, long names
// are truncated, and the first letter is capitalized.
func cleanHeadingText(text string) string {
	clean := ordinalPrefixRe.ReplaceAllString(text, "")
	clean = romanPrefixRe.ReplaceAllString(clean, "")
	clean = punctuationRe.ReplaceAllString(clean, "")
	clean = strings.Join(strings.Fields(clean), " ")

	if len(clean) > 80 {
		clean = clean[:77] + "..."
	}
	if clean != "" {
		r := []rune(clean)
		r[0] = unicode.ToUpper(r[0])
		clean = string(r)
	}
	return clean
}

// assignLevels maps each distinct font size to a heading level, largest
// size first.
func assignLevels(headings []pageindex.Heading) []leveledHeading {
	seen := make(map[float64]struct{})
	var sizes []float64
	for _, h := range headings {
		if _, ok := seen[h.Size]; !ok {
			seen[h.Size] = struct{}{}
			sizes = append(sizes, h.Size)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sizes)))

	sizeToLevel := make(map[float64]int, len(sizes))
	for i, size := range sizes {
		sizeToLevel[size] = i + 1
	}

	leveled := make([]leveledHeading, 0, len(headings))
	for _, h := range headings {
		leveled = append(leveled, leveledHeading{Heading: h, level: sizeToLevel[h.Size]})
	}
	return leveled
}

// selectBoundaries picks which headings mark topic starts. Title-page
// headings are skipped unless that leaves too few; then the level
// ladder widens (level 1, then 1-2, then 1-3) until enough boundaries
// exist, finally falling back to all headings capped at MaxTopics.
func (a Analyzer) selectBoundaries(headings []leveledHeading) []leveledHeading {
	content := make([]leveledHeading, 0, len(headings))
	for _, h := range headings {
		if h.Page > a.config.TitlePageThreshold {
			content = append(content, h)
		}
	}
	if len(content) < 3 {
		content = headings
	}

	byMaxLevel := func(max int) []leveledHeading {
		var out []leveledHeading
		for _, h := range content {
			if h.level <= max {
				out = append(out, h)
			}
		}
		return out
	}

	var selected []leveledHeading
	for max := 1; max <= 3; max++ {
		if candidate := byMaxLevel(max); len(candidate) >= a.config.MinHeadingsPerLevel {
			selected = candidate
			break
		}
	}
	if selected == nil {
		selected = content
		if len(selected) > a.config.MaxTopics {
			selected = selected[:a.config.MaxTopics]
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		if selected[i].Page != selected[j].Page {
			return selected[i].Page < selected[j].Page
		}
		return selected[i].Position < selected[j].Position
	})
	return selected
}

func buildTopics(boundaries []leveledHeading, totalPages int) ([]models.Topic, error) {
	topics := make([]models.Topic, 0, len(boundaries))
	for i, h := range boundaries {
		start := h.Page
		end := totalPages
		if i+1 < len(boundaries) {
			end = boundaries[i+1].Page - 1
		}
		if end < start {
			end = start
		}

		topic, err := models.NewTopic(h.Text, start, end)
		if err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}
	return topics, nil
}

// mergeShortTopics joins a single-page topic with its successor when
// the successor is also short (two pages or fewer), so runs of dense
// sub-headings don't fragment the map.
func mergeShortTopics(topics []models.Topic) []models.Topic {
	if len(topics) <= 2 {
		return topics
	}

	var merged []models.Topic
	for i := 0; i < len(topics); {
		current := topics[i]

		if current.Pages() == 1 && i+1 < len(topics) && topics[i+1].Pages() <= 2 {
			next := topics[i+1]
			merged = append(merged, models.Topic{
				Name:  current.Name + " / " + next.Name,
				Start: current.Start,
				End:   next.End,
			})
			i += 2
			continue
		}

		merged = append(merged, current)
		i++
	}
	return merged
}
