package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avaxML/cite-right/core"
)

func TestAnswerSplitterSentencesAndParagraphs(t *testing.T) {
	answer := "First fact. Second fact.\n\nThird fact in a new paragraph."
	splitter := NewAnswerSplitter()

	spans, err := splitter.Segment(answer)
	require.NoError(t, err)
	require.Len(t, spans, 3)

	assert.Equal(t, "First fact.", spans[0].Text)
	assert.Equal(t, "Second fact.", spans[1].Text)
	assert.Equal(t, "Third fact in a new paragraph.", spans[2].Text)

	assert.Equal(t, 0, spans[0].ParagraphIndex)
	assert.Equal(t, 0, spans[1].ParagraphIndex)
	assert.Equal(t, 1, spans[2].ParagraphIndex)

	// Sentence index runs across paragraphs.
	assert.Equal(t, 0, spans[0].SentenceIndex)
	assert.Equal(t, 1, spans[1].SentenceIndex)
	assert.Equal(t, 2, spans[2].SentenceIndex)

	for _, span := range spans {
		assert.Equal(t, core.SpanKindSentence, span.Kind)
		assert.Equal(t, span.Text, answer[span.CharStart:span.CharEnd])
	}
}

func TestAnswerSplitterSingleNewlineIsNotAParagraphBreak(t *testing.T) {
	answer := "A line.\nAnother line."
	splitter := NewAnswerSplitter()

	spans, err := splitter.Segment(answer)
	require.NoError(t, err)
	require.Len(t, spans, 2)

	assert.Equal(t, 0, spans[0].ParagraphIndex)
	assert.Equal(t, 0, spans[1].ParagraphIndex)
}

func TestAnswerSplitterBlankLineWithSpacesBreaksParagraphs(t *testing.T) {
	answer := "First.\n \t\nSecond."
	splitter := NewAnswerSplitter()

	spans, err := splitter.Segment(answer)
	require.NoError(t, err)
	require.Len(t, spans, 2)

	assert.Equal(t, 0, spans[0].ParagraphIndex)
	assert.Equal(t, 1, spans[1].ParagraphIndex)
	for _, span := range spans {
		assert.Equal(t, span.Text, answer[span.CharStart:span.CharEnd])
	}
}

func TestAnswerSplitterEmptyInput(t *testing.T) {
	splitter := NewAnswerSplitter()

	for _, input := range []string{"", "   ", "\n\n\n", " \t \n \n"} {
		spans, err := splitter.Segment(input)
		require.NoError(t, err)
		assert.Empty(t, spans, "input %q", input)
	}
}

func TestAnswerSplitterOffsetsAreAbsolute(t *testing.T) {
	answer := "\n\nIndented paragraph one. Tail.\n\n\nParagraph two."
	splitter := NewAnswerSplitter()

	spans, err := splitter.Segment(answer)
	require.NoError(t, err)
	require.Len(t, spans, 3)

	for _, span := range spans {
		assert.Equal(t, span.Text, answer[span.CharStart:span.CharEnd])
	}
	assert.Equal(t, 1, spans[2].ParagraphIndex)
}
