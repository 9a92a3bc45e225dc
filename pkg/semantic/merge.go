package semantic

import (
	"sort"
	"strings"

	"github.com/quizforge/quizforge/internal/models"
)

// jaccardThreshold is the minimum word-overlap ratio for two topic
// names to count as the same topic.
const jaccardThreshold = 0.7

// mergeGap is the largest page gap between two ranges that still
// merges; chunk overlap can leave a page or two unclaimed between the
// halves of a split topic.
const mergeGap = 2

// mergeChunkTopics collapses duplicates produced by overlapping chunks.
// Two topics merge when their names are similar and their ranges
// overlap or nearly touch; the merged range is the union.
func mergeChunkTopics(topics []models.Topic) []models.Topic {
	if len(topics) == 0 {
		return nil
	}

	sorted := make([]models.Topic, len(topics))
	copy(sorted, topics)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	merged := []models.Topic{sorted[0]}
	for _, next := range sorted[1:] {
		last := &merged[len(merged)-1]

		if namesSimilar(last.Name, next.Name) && rangesClose(*last, next) {
			if next.End > last.End {
				last.End = next.End
			}
			if next.Start < last.Start {
				last.Start = next.Start
			}
			continue
		}

		merged = append(merged, next)
	}

	return merged
}

func rangesClose(a, b models.Topic) bool {
	return b.Start <= a.End+mergeGap && a.Start <= b.End+mergeGap
}

// namesSimilar matches on case-insensitive equality, substring
// containment, or word-level Jaccard overlap.
func namesSimilar(a, b string) bool {
	la, lb := strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if la == lb {
		return true
	}
	if la != "" && lb != "" && (strings.Contains(la, lb) || strings.Contains(lb, la)) {
		return true
	}
	return jaccard(la, lb) > jaccardThreshold
}

func jaccard(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection

	return float64(intersection) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}
