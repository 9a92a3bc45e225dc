// Package toc detects and parses a table of contents from page-marked
// OCR text using feature-based likelihood scoring rather than fixed
// formats.
package toc

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/quizforge/quizforge/internal/models"
	"github.com/quizforge/quizforge/pkg/pageindex"
)

// ErrNoTOC is returned when no section scores high enough to be a
// table of contents, or too few entries can be extracted from the
// winning section.
var ErrNoTOC = errors.New("toc: no table of contents detected")

type DetectorConfig struct {
	// MaxPages restricts the search to the first N pages.
	MaxPages int
	// Threshold is the minimum likelihood score a section must reach.
	Threshold float64
	// MinEntries is the minimum number of name/page pairs required.
	MinEntries int
	// MaxPageGap is the largest jump between consecutive page numbers
	// before the sequential score is penalized.
	MaxPageGap int
}

// Detector scores candidate front-matter sections for TOC likelihood
// and converts the winning section's entries into topic ranges.
type Detector struct {
	config DetectorConfig
}

func NewWithConfig(config DetectorConfig) Detector {
	if config.MaxPages == 0 {
		config.MaxPages = 10
	}
	if config.Threshold == 0 {
		config.Threshold = 0.4
	}
	if config.MinEntries == 0 {
		config.MinEntries = 3
	}
	if config.MaxPageGap == 0 {
		config.MaxPageGap = 20
	}
	return Detector{config: config}
}

func (d Detector) Name() string { return "toc" }

// Attempt scans the first pages for a TOC-like section and builds
// topics from its entries. It returns ErrNoTOC when the evidence is
// insufficient.
func (d Detector) Attempt(_ context.Context, text string, totalPages int) ([]models.Topic, error) {
	sections := splitIntoSections(text, d.config.MaxPages)
	if len(sections) == 0 {
		return nil, ErrNoTOC
	}

	var best string
	bestScore := 0.0
	for _, section := range sections {
		if score := d.scoreLikelihood(section); score > bestScore {
			bestScore = score
			best = section
		}
	}

	if bestScore < d.config.Threshold {
		return nil, ErrNoTOC
	}

	entries := extractEntries(best)
	if len(entries) < d.config.MinEntries {
		return nil, ErrNoTOC
	}

	return convertToTopics(entries, totalPages)
}

// splitIntoSections breaks the document into page-bounded sections,
// looking only at the first maxPages pages.
func splitIntoSections(text string, maxPages int) []string {
	var sections []string
	var current []string
	pageCount := 0

	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "--- Page") {
			if len(current) > 0 {
				sections = append(sections, strings.Join(current, "\n"))
			}
			current = nil
			pageCount++
			if pageCount > maxPages {
				return sections
			}
			continue
		}
		current = append(current, line)
	}

	if len(current) > 0 && pageCount <= maxPages {
		sections = append(sections, strings.Join(current, "\n"))
	}

	return sections
}

var (
	digitRunRe   = regexp.MustCompile(`\d+`)
	firstNumRe   = regexp.MustCompile(`\b(\d+)\b`)
	tocPatternRe = regexp.MustCompile(`^[A-ZÁ-Ú\s]+\s*\d+$|^\d+$`)
	sizeMarkerRe = regexp.MustCompile(`SIZE=(\d+\.?\d*)pt`)
)

type featureWeights struct {
	numberDensity     float64
	sequentialNumbers float64
	lineConsistency   float64
	uppercaseDensity  float64
	patternRepetition float64
}

// scoreLikelihood rates a section between 0 and 1 using weighted
// structural features. Weights adapt to TOC keywords and prominent
// headers so that differently formatted front matter still scores well.
func (d Detector) scoreLikelihood(section string) float64 {
	var cleanLines []string
	for _, raw := range strings.Split(section, "\n") {
		if clean := pageindex.StripAnnotations(raw); clean != "" {
			cleanLines = append(cleanLines, clean)
		}
	}
	if len(cleanLines) < 5 {
		return 0.0
	}

	hasKeyword := hasTOCKeyword(section)
	hasLargeHeader := hasLargeHeaderMarker(section)
	weights := adaptiveWeights(hasKeyword, hasLargeHeader)

	score := 0.0

	// Number density: fraction of lines carrying a digit run.
	withNumbers := 0
	for _, line := range cleanLines {
		if digitRunRe.MatchString(line) {
			withNumbers++
		}
	}
	score += float64(withNumbers) / float64(len(cleanLines)) * weights.numberDensity

	// Sequential order: page references should be non-decreasing.
	// Repeated numbers are fine (sub-topics on the same page).
	var numbers []int
	for _, line := range cleanLines {
		if m := firstNumRe.FindStringSubmatch(line); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				numbers = append(numbers, n)
			}
		}
	}
	if len(numbers) >= 3 {
		nonDecreasing := 0
		maxJump := 0
		for i := 0; i+1 < len(numbers); i++ {
			if numbers[i+1] >= numbers[i] {
				nonDecreasing++
			}
			if jump := numbers[i+1] - numbers[i]; jump > maxJump {
				maxJump = jump
			}
		}
		sequential := float64(nonDecreasing) / float64(len(numbers)-1)
		if maxJump > d.config.MaxPageGap {
			sequential *= 0.5
		}
		score += sequential * weights.sequentialNumbers
	}

	// Line length consistency: TOC entries are similar length.
	score += lengthConsistency(cleanLines) * weights.lineConsistency

	// Uppercase density: entries are often all-caps.
	upper, letters := 0, 0
	for _, line := range cleanLines {
		for _, r := range line {
			if unicode.IsLetter(r) {
				letters++
				if unicode.IsUpper(r) {
					upper++
				}
			}
		}
	}
	if letters > 0 {
		score += float64(upper) / float64(letters) * weights.uppercaseDensity
	}

	// Pattern repetition: lines shaped like TEXT<ws>NUMBER.
	matches := 0
	for _, line := range cleanLines {
		if tocPatternRe.MatchString(strings.ToUpper(line)) {
			matches++
		}
	}
	score += float64(matches) / float64(len(cleanLines)) * weights.patternRepetition

	if hasKeyword {
		score += 0.15
	}
	if hasLargeHeader {
		score += 0.05
	}

	return math.Min(score, 1.0)
}

func lengthConsistency(lines []string) float64 {
	if len(lines) == 0 {
		return 0
	}

	sum := 0.0
	for _, line := range lines {
		sum += float64(len(line))
	}
	mean := sum / float64(len(lines))
	if mean <= 0 {
		return 0
	}

	variance := 0.0
	for _, line := range lines {
		d := float64(len(line)) - mean
		variance += d * d
	}
	stddev := math.Sqrt(variance / float64(len(lines)))

	return math.Max(0, 1-stddev/mean)
}

var tocKeywords = []string{
	"ÍNDICE", "INDICE", "TABLA DE CONTENIDO", "CONTENIDO", "CONTENTS",
	"TABLE OF CONTENTS", "INDEX",
}

// hasTOCKeyword checks the first lines of a section for an index or
// contents heading.
func hasTOCKeyword(section string) bool {
	lines := strings.Split(section, "\n")
	if len(lines) > 5 {
		lines = lines[:5]
	}
	for _, line := range lines {
		clean := strings.ToUpper(pageindex.StripAnnotations(line))
		for _, kw := range tocKeywords {
			if strings.Contains(clean, kw) {
				return true
			}
		}
	}
	return false
}

// hasLargeHeaderMarker checks whether the section opens with an 18pt+
// heading annotation.
func hasLargeHeaderMarker(section string) bool {
	lines := strings.Split(section, "\n")
	if len(lines) > 3 {
		lines = lines[:3]
	}
	for _, line := range lines {
		if m := sizeMarkerRe.FindStringSubmatch(line); m != nil {
			if size, err := strconv.ParseFloat(m[1], 64); err == nil && size >= 18.0 {
				return true
			}
		}
	}
	return false
}

func adaptiveWeights(hasKeyword, hasLargeHeader bool) featureWeights {
	weights := featureWeights{
		numberDensity:     0.30,
		sequentialNumbers: 0.25,
		lineConsistency:   0.15,
		uppercaseDensity:  0.15,
		patternRepetition: 0.15,
	}

	// A contents heading makes the page-number features decisive and
	// the formatting features unreliable.
	if hasKeyword {
		weights.numberDensity = 0.35
		weights.sequentialNumbers = 0.30
		weights.uppercaseDensity = 0.10
		weights.lineConsistency = 0.10
		weights.patternRepetition = 0.15
	}

	if hasLargeHeader {
		weights.patternRepetition = 0.20
		weights.lineConsistency = 0.10
	}

	return weights
}
