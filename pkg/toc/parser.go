package toc

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/quizforge/quizforge/internal/models"
	"github.com/quizforge/quizforge/pkg/pageindex"
)

// entry is a name/page pair extracted from a TOC section. Start pages
// only; end pages are inferred during conversion.
type entry struct {
	name string
	page int
}

var (
	ordinalPrefixRe = regexp.MustCompile(`^\d+[.)]\s*`)
	trailingPageRe  = regexp.MustCompile(`^(.+?)\s*[.\s]*(\d+)$`)
	bareNumberRe    = regexp.MustCompile(`^\d+$`)
)

// skipKeywords are label lines that appear inside TOC sections but are
// not entries themselves.
var skipKeywords = []string{
	"ÍNDICE", "INDICE", "TABLA DE CONTENIDO", "CONTENIDO", "CONTENTS",
	"PÁGINA", "PÁGINAS", "PAG", "PAGS", "PÁG", "PÁGS",
	"DESCRIPCIÓN:", "DESCRIPCION:", "DESCRIPTION:",
	"EJEMPLO:", "EXAMPLE:", "EJEMPLO DE LA PETICIÓN:",
	"RESPUESTA:", "RESPONSE:", "NOTA:", "NOTE:",
}

// extractEntries pulls name/page pairs out of a TOC section. Two
// layouts are recognized: name and page number on the same line, and
// name with the page number alone on the following line.
func extractEntries(section string) []entry {
	var cleanLines []string
	for _, raw := range strings.Split(section, "\n") {
		clean := pageindex.StripAnnotations(raw)
		if clean == "" || isSkipLine(clean) {
			continue
		}
		cleanLines = append(cleanLines, clean)
	}

	var entries []entry
	for i := 0; i < len(cleanLines); {
		if bareNumberRe.MatchString(cleanLines[i]) {
			// A stray page number without a preceding name.
			i++
			continue
		}

		if e, consumed, ok := extractSingleEntry(cleanLines, i); ok {
			entries = append(entries, e)
			i += consumed
			continue
		}
		i++
	}

	return entries
}

func isSkipLine(clean string) bool {
	upper := strings.ToUpper(clean)
	for _, kw := range skipKeywords {
		if upper == kw || strings.HasPrefix(upper, kw) {
			return true
		}
	}
	return false
}

// extractSingleEntry tries both entry layouts at index idx and reports
// how many lines it consumed.
func extractSingleEntry(lines []string, idx int) (entry, int, bool) {
	line := ordinalPrefixRe.ReplaceAllString(lines[idx], "")

	// Same-line layout: "TOPIC NAME 5", "TOPIC NAME ... 5".
	if m := trailingPageRe.FindStringSubmatch(line); m != nil {
		name := strings.TrimSpace(m[1])
		if page, err := strconv.Atoi(m[2]); err == nil && validEntry(name, page) {
			return entry{name: name, page: page}, 1, true
		}
	}

	// Split layout: name on this line, page number alone on the next.
	if idx+1 < len(lines) && bareNumberRe.MatchString(lines[idx+1]) {
		name := strings.TrimSpace(line)
		if page, err := strconv.Atoi(lines[idx+1]); err == nil && validEntry(name, page) {
			return entry{name: name, page: page}, 2, true
		}
	}

	return entry{}, 0, false
}

func validEntry(name string, page int) bool {
	return len(name) >= 3 && page >= 1 && page <= 1000
}

// convertToTopics turns start-page entries into contiguous page ranges:
// each topic ends one page before the next begins, the last runs to the
// end of the document, and a range never ends before it starts.
func convertToTopics(entries []entry, totalPages int) ([]models.Topic, error) {
	sorted := make([]entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].page < sorted[j].page })

	topics := make([]models.Topic, 0, len(sorted))
	for i, e := range sorted {
		start := e.page
		end := totalPages
		if i+1 < len(sorted) {
			end = sorted[i+1].page - 1
		}
		if end < start {
			end = start
		}

		topic, err := models.NewTopic(e.name, start, end)
		if err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}

	return topics, nil
}
