package pageindex

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	pageMarkerRe = regexp.MustCompile(`--- Page (\d+) ---`)
	headerLineRe = regexp.MustCompile(`### \[HEADER, SIZE=([\d.]+)pt\](?:\s*\[BOLD\])?\s*(.+)`)
	annotationRe = regexp.MustCompile(`### \[HEADER[^\]]*\]\s*`)
)

// Parse splits page-marker delimited OCR text into an ordered page
// number to content mapping. Text before the first marker is ignored;
// text between markers belongs to the preceding page. When no markers
// are present the whole input becomes a single synthetic page 1.
// Parse never fails.
func Parse(text string) map[int]string {
	pages := make(map[int]string)

	locs := pageMarkerRe.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		pages[1] = text
		return pages
	}

	for i, loc := range locs {
		num, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil {
			continue
		}

		contentStart := loc[1]
		contentEnd := len(text)
		if i+1 < len(locs) {
			contentEnd = locs[i+1][0]
		}

		pages[num] = strings.TrimSpace(text[contentStart:contentEnd])
	}

	return pages
}

// TotalPages returns the highest page marker number in the text, or 1
// when no markers are found.
func TotalPages(text string) int {
	last := 1
	for _, m := range pageMarkerRe.FindAllStringSubmatch(text, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > last {
			last = n
		}
	}
	return last
}

// ExtractRange concatenates the text of pages in [start,end], joined by
// blank lines. Missing pages in the range are skipped.
func ExtractRange(pages map[int]string, start, end int) string {
	var texts []string
	for num := start; num <= end; num++ {
		if content, ok := pages[num]; ok {
			texts = append(texts, content)
		}
	}
	return strings.Join(texts, "\n\n")
}

// ExtractPageRange cuts the text for pages [start,end] out of the full
// document and renumbers the page markers to be 1-indexed relative to
// the chunk. Completion backends reason about small page numbers far
// more reliably than offsets into a larger document.
func ExtractPageRange(text string, start, end int) string {
	var lines []string
	include := false

	for _, line := range strings.Split(text, "\n") {
		if m := pageMarkerRe.FindStringSubmatch(line); m != nil && strings.HasPrefix(line, "--- Page") {
			current, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			include = current >= start && current <= end
			if include {
				lines = append(lines, fmt.Sprintf("--- Page %d ---", current-start+1))
			}
			continue
		}
		if include {
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n")
}

// HeaderDigest reduces the document to its page markers and heading
// annotation lines, cutting completion payloads down to the structure
// the model actually needs. Sparse documents (fewer than 10 such lines)
// fall back to a 10k-character prefix of the full text.
func HeaderDigest(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "--- Page") || strings.HasPrefix(line, "### [HEADER") {
			lines = append(lines, line)
		}
	}

	if len(lines) < 10 {
		if len(text) > 10000 {
			return text[:10000]
		}
		return text
	}

	return strings.Join(lines, "\n")
}

// Heading is an annotated heading line recovered from OCR text.
type Heading struct {
	Text string
	Size float64
	Bold bool
	Page int
	// Position is the byte offset of the heading line, used to keep
	// same-page headings in document order.
	Position int
}

// ExtractHeadings collects all heading annotations with their page
// numbers, walking the text once and tracking the current page.
func ExtractHeadings(text string) []Heading {
	var headings []Heading
	currentPage := 1
	position := 0

	for _, line := range strings.Split(text, "\n") {
		position += len(line) + 1

		if m := pageMarkerRe.FindStringSubmatch(line); m != nil && strings.HasPrefix(line, "--- Page") {
			if n, err := strconv.Atoi(m[1]); err == nil {
				currentPage = n
			}
			continue
		}

		m := headerLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		size, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}

		headings = append(headings, Heading{
			Text:     strings.TrimSpace(m[2]),
			Size:     size,
			Bold:     strings.Contains(line, "[BOLD]"),
			Page:     currentPage,
			Position: position,
		})
	}

	return headings
}

// StripAnnotations removes heading markers from a line, leaving the
// plain heading text.
func StripAnnotations(line string) string {
	clean := annotationRe.ReplaceAllString(line, "")
	clean = strings.ReplaceAll(clean, "[BOLD]", "")
	return strings.TrimSpace(clean)
}
