package toc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tocDocument = `--- Page 1 ---
### [HEADER, SIZE=20.0pt] [BOLD] ÍNDICE
DEFINICIONES DE FAMILIA 3
DEFINICIONES DE MEDICINA FAMILIAR 4
FUNCIONES DE LA FAMILIA 6
CLASIFICACIONES DE FAMILIA 9
ETAPAS DEL CICLO VITAL 12
--- Page 2 ---
Some introductory text here.
--- Page 3 ---
Content about family definitions.
`

const bodyDocument = `--- Page 1 ---
The family is the basic unit of society and has been studied from many
perspectives over the years. Researchers agree that family structures
vary widely across cultures and historical periods, which complicates
any attempt at a single definition. Modern approaches prefer functional
definitions over structural ones, focusing on what families do rather
than what they look like.
--- Page 2 ---
More narrative body text without any numbered entries follows here and
continues the discussion from the previous page in full sentences.
`

func TestAttemptDetectsTOC(t *testing.T) {
	detector := NewWithConfig(DetectorConfig{})

	topics, err := detector.Attempt(context.Background(), tocDocument, 15)
	require.NoError(t, err)
	require.Len(t, topics, 5)

	assert.Equal(t, "DEFINICIONES DE FAMILIA", topics[0].Name)
	assert.Equal(t, 3, topics[0].Start)
	assert.Equal(t, 3, topics[0].End)

	// Last topic runs to the end of the document.
	assert.Equal(t, "ETAPAS DEL CICLO VITAL", topics[4].Name)
	assert.Equal(t, 12, topics[4].Start)
	assert.Equal(t, 15, topics[4].End)
}

func TestAttemptRejectsBodyText(t *testing.T) {
	detector := NewWithConfig(DetectorConfig{})

	_, err := detector.Attempt(context.Background(), bodyDocument, 2)
	assert.ErrorIs(t, err, ErrNoTOC)
}

func TestScoreLikelihoodBodyTextStaysLow(t *testing.T) {
	detector := NewWithConfig(DetectorConfig{})

	sections := splitIntoSections(bodyDocument, 10)
	require.NotEmpty(t, sections)
	for _, section := range sections {
		assert.Less(t, detector.scoreLikelihood(section), detector.config.Threshold)
	}
}

func TestScoreLikelihoodShortSectionIsZero(t *testing.T) {
	detector := NewWithConfig(DetectorConfig{})
	assert.Zero(t, detector.scoreLikelihood("ÍNDICE\nTEMA 1\n"))
}

func TestExtractEntriesSameLine(t *testing.T) {
	entries := extractEntries("ÍNDICE\nDEFINICIONES DE FAMILIA 3\nFUNCIONES .... 6\n1. CLASIFICACIONES 9")

	require.Len(t, entries, 3)
	assert.Equal(t, entry{name: "DEFINICIONES DE FAMILIA", page: 3}, entries[0])
	assert.Equal(t, entry{name: "FUNCIONES", page: 6}, entries[1])
	assert.Equal(t, entry{name: "CLASIFICACIONES", page: 9}, entries[2])
}

func TestExtractEntriesSplitLines(t *testing.T) {
	entries := extractEntries("DEFINICIONES DE FAMILIA\n3\nFUNCIONES DE LA FAMILIA\n6")

	require.Len(t, entries, 2)
	assert.Equal(t, entry{name: "DEFINICIONES DE FAMILIA", page: 3}, entries[0])
	assert.Equal(t, entry{name: "FUNCIONES DE LA FAMILIA", page: 6}, entries[1])
}

func TestExtractEntriesSkipsLabels(t *testing.T) {
	entries := extractEntries("PÁGINAS\nDESCRIPCIÓN: something 4\nTEMA UNO 5")

	require.Len(t, entries, 1)
	assert.Equal(t, "TEMA UNO", entries[0].name)
}

func TestConvertToTopics(t *testing.T) {
	entries := []entry{
		{name: "Intro", page: 3},
		{name: "Methods", page: 9},
		{name: "Results", page: 15},
	}

	topics, err := convertToTopics(entries, 20)
	require.NoError(t, err)
	require.Len(t, topics, 3)

	assert.Equal(t, 3, topics[0].Start)
	assert.Equal(t, 8, topics[0].End)
	assert.Equal(t, 9, topics[1].Start)
	assert.Equal(t, 14, topics[1].End)
	assert.Equal(t, 15, topics[2].Start)
	assert.Equal(t, 20, topics[2].End)
}

func TestConvertToTopicsClampsEnd(t *testing.T) {
	// Two entries on the same page: the first range would end before it
	// starts without clamping.
	entries := []entry{
		{name: "Primero", page: 5},
		{name: "Segundo", page: 5},
	}

	topics, err := convertToTopics(entries, 10)
	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.Equal(t, 5, topics[0].End)
	assert.Equal(t, 10, topics[1].End)
}
