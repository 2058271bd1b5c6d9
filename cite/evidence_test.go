package cite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avaxML/cite-right/align"
	"github.com/avaxML/cite-right/core"
)

// gappedFixture is an alignment that matched "Alpha beta" and "gamma delta"
// around an unmatched token, as two blocks.
func gappedFixture() (align.Alignment, core.Passage, core.Source) {
	source := core.Source{Text: "Alpha beta X gamma delta."}
	passage := core.Passage{
		SourceIndex:  0,
		DocCharStart: 0,
		DocCharEnd:   25,
		Text:         source.Text,
		TokenIDs:     []int{1, 2, 3, 4, 5},
		TokenSpans: []core.Span{
			{Start: 0, End: 5}, {Start: 6, End: 10}, {Start: 11, End: 12},
			{Start: 13, End: 18}, {Start: 19, End: 24},
		},
	}
	alignment := align.Alignment{
		Score: 7, QueryStart: 0, QueryEnd: 4,
		TargetStart: 0, TargetEnd: 5, Matches: 4,
		Blocks: []align.MatchBlock{
			{QueryStart: 0, TargetStart: 0, Length: 2},
			{QueryStart: 2, TargetStart: 3, Length: 2},
		},
	}
	return alignment, passage, source
}

func TestMaterializeEvidenceSingleSpan(t *testing.T) {
	alignment, passage, source := gappedFixture()
	cfg := core.DefaultConfig()

	ev := materializeEvidence(alignment, &passage, &source, &cfg)

	assert.Equal(t, 0, ev.CharStart)
	assert.Equal(t, 24, ev.CharEnd)
	assert.Equal(t, "Alpha beta X gamma delta", ev.Text)
	require.Len(t, ev.Spans, 1)
	assert.Equal(t, core.EvidenceSpan{CharStart: 0, CharEnd: 24, Text: ev.Text}, ev.Spans[0])
}

func TestMaterializeEvidenceMultiSpan(t *testing.T) {
	alignment, passage, source := gappedFixture()

	t.Run("blocks become separate spans", func(t *testing.T) {
		cfg := core.NewConfig(core.WithMultiSpanEvidence(0, 5))
		ev := materializeEvidence(alignment, &passage, &source, &cfg)

		assert.Equal(t, 0, ev.CharStart)
		assert.Equal(t, 24, ev.CharEnd)
		require.Len(t, ev.Spans, 2)
		assert.Equal(t, core.EvidenceSpan{CharStart: 0, CharEnd: 10, Text: "Alpha beta"}, ev.Spans[0])
		assert.Equal(t, core.EvidenceSpan{CharStart: 13, CharEnd: 24, Text: "gamma delta"}, ev.Spans[1])
	})

	t.Run("small gaps merge", func(t *testing.T) {
		// The unmatched "X" separates the blocks by three characters.
		cfg := core.NewConfig(core.WithMultiSpanEvidence(3, 5))
		ev := materializeEvidence(alignment, &passage, &source, &cfg)

		require.Len(t, ev.Spans, 1)
		assert.Equal(t, core.EvidenceSpan{CharStart: 0, CharEnd: 24, Text: "Alpha beta X gamma delta"}, ev.Spans[0])
	})

	t.Run("span cap falls back to the enclosing range", func(t *testing.T) {
		cfg := core.NewConfig(core.WithMultiSpanEvidence(0, 1))
		ev := materializeEvidence(alignment, &passage, &source, &cfg)

		require.Len(t, ev.Spans, 1)
		assert.Equal(t, 0, ev.Spans[0].CharStart)
		assert.Equal(t, 24, ev.Spans[0].CharEnd)
	})

	t.Run("contiguous alignment stays one span", func(t *testing.T) {
		cfg := core.NewConfig(core.WithMultiSpanEvidence(0, 5))
		contiguous := align.Alignment{
			Score: 4, QueryEnd: 2, TargetStart: 0, TargetEnd: 2, Matches: 2,
			Blocks: []align.MatchBlock{{QueryStart: 0, TargetStart: 0, Length: 2}},
		}
		ev := materializeEvidence(contiguous, &passage, &source, &cfg)

		require.Len(t, ev.Spans, 1)
		assert.Equal(t, core.EvidenceSpan{CharStart: 0, CharEnd: 10, Text: "Alpha beta"}, ev.Spans[0])
	})
}

func TestMaterializeEvidenceChunkResolution(t *testing.T) {
	parent := "0123456789Alpha beta X gamma delta."
	alignment, passage, _ := gappedFixture()

	// Shift the passage to live at offset 10 of the parent document.
	passage.DocCharStart += 10
	passage.DocCharEnd += 10
	for i := range passage.TokenSpans {
		passage.TokenSpans[i].Start += 10
		passage.TokenSpans[i].End += 10
	}

	t.Run("with parent text", func(t *testing.T) {
		source := core.Source{
			Text:         "Alpha beta X gamma delta.",
			DocCharStart: 10,
			DocumentText: parent,
		}
		cfg := core.NewConfig(core.WithMultiSpanEvidence(0, 5))
		ev := materializeEvidence(alignment, &passage, &source, &cfg)

		assert.Equal(t, 10, ev.CharStart)
		assert.Equal(t, 34, ev.CharEnd)
		assert.Equal(t, "Alpha beta X gamma delta", ev.Text)
		require.Len(t, ev.Spans, 2)
		assert.Equal(t, "Alpha beta", ev.Spans[0].Text)
		assert.Equal(t, 23, ev.Spans[1].CharStart)
	})

	t.Run("without parent text offsets rebase into the chunk", func(t *testing.T) {
		source := core.Source{
			Text:         "Alpha beta X gamma delta.",
			DocCharStart: 10,
		}
		cfg := core.DefaultConfig()
		ev := materializeEvidence(alignment, &passage, &source, &cfg)

		assert.Equal(t, 10, ev.CharStart)
		assert.Equal(t, "Alpha beta X gamma delta", ev.Text)
	})
}

func TestBlockSpansEmpty(t *testing.T) {
	_, passage, source := gappedFixture()
	cfg := core.DefaultConfig()
	assert.Nil(t, blockSpans(nil, &passage, &source, &cfg))
}
