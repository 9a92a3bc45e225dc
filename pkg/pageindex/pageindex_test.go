package pageindex

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleText = `--- Page 1 ---
### [HEADER, SIZE=20.0pt] [BOLD] Introduction
Welcome to the course.
--- Page 2 ---
Body text on page two.
--- Page 3 ---
### [HEADER, SIZE=14.0pt] Background
More details here.`

func TestParse(t *testing.T) {
	pages := Parse(sampleText)

	require.Len(t, pages, 3)
	assert.Contains(t, pages[1], "Introduction")
	assert.Equal(t, "Body text on page two.", pages[2])
	assert.Contains(t, pages[3], "Background")
}

func TestParseNoMarkers(t *testing.T) {
	pages := Parse("just plain text without any markers")

	require.Len(t, pages, 1)
	assert.Equal(t, "just plain text without any markers", pages[1])
}

func TestParseIgnoresTextBeforeFirstMarker(t *testing.T) {
	pages := Parse("preamble\n--- Page 1 ---\ncontent")

	require.Len(t, pages, 1)
	assert.Equal(t, "content", pages[1])
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 3, TotalPages(sampleText))
	assert.Equal(t, 1, TotalPages("no markers at all"))
}

func TestExtractRange(t *testing.T) {
	pages := map[int]string{1: "one", 2: "two", 4: "four"}

	// Missing page 3 is skipped, not an error.
	assert.Equal(t, "two\n\nfour", ExtractRange(pages, 2, 4))
	assert.Equal(t, "one\n\ntwo\n\nfour", ExtractRange(pages, 1, 4))
	assert.Equal(t, "", ExtractRange(pages, 5, 9))
}

func TestExtractPageRangeRenumbers(t *testing.T) {
	chunk := ExtractPageRange(sampleText, 2, 3)

	assert.Contains(t, chunk, "--- Page 1 ---")
	assert.Contains(t, chunk, "--- Page 2 ---")
	assert.NotContains(t, chunk, "--- Page 3 ---")
	assert.Contains(t, chunk, "Body text on page two.")
	assert.Contains(t, chunk, "Background")
	assert.NotContains(t, chunk, "Introduction")
}

func TestHeaderDigest(t *testing.T) {
	// Sparse documents fall back to a raw prefix.
	sparse := HeaderDigest(sampleText)
	assert.Equal(t, sampleText, sparse)

	var sb strings.Builder
	for i := 1; i <= 12; i++ {
		fmt.Fprintf(&sb, "--- Page %d ---\nbody line that should be dropped\n### [HEADER, SIZE=14.0pt] Section\n", i)
	}
	digest := HeaderDigest(sb.String())
	assert.NotContains(t, digest, "body line")
	assert.Contains(t, digest, "### [HEADER, SIZE=14.0pt] Section")
}

func TestExtractHeadings(t *testing.T) {
	headings := ExtractHeadings(sampleText)

	require.Len(t, headings, 2)
	assert.Equal(t, "Introduction", headings[0].Text)
	assert.Equal(t, 20.0, headings[0].Size)
	assert.True(t, headings[0].Bold)
	assert.Equal(t, 1, headings[0].Page)

	assert.Equal(t, "Background", headings[1].Text)
	assert.Equal(t, 14.0, headings[1].Size)
	assert.False(t, headings[1].Bold)
	assert.Equal(t, 3, headings[1].Page)
}

func TestStripAnnotations(t *testing.T) {
	assert.Equal(t, "Introduction", StripAnnotations("### [HEADER, SIZE=20.0pt] [BOLD] Introduction"))
	assert.Equal(t, "Plain line", StripAnnotations("Plain line"))
	assert.Equal(t, "", StripAnnotations("   "))
}
