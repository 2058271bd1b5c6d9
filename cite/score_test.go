package cite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avaxML/cite-right/align"
	"github.com/avaxML/cite-right/core"
)

// scoreFixture is a fully matched three token passage.
func scoreFixture() (core.Source, core.Passage) {
	source := core.Source{Text: "alpha beta gamma"}
	passage := core.Passage{
		SourceIndex:  0,
		DocCharStart: 0,
		DocCharEnd:   16,
		Text:         source.Text,
		TokenIDs:     []int{1, 2, 3},
		TokenSpans:   []core.Span{{Start: 0, End: 5}, {Start: 6, End: 10}, {Start: 11, End: 16}},
	}
	return source, passage
}

func fullAlignment() align.Alignment {
	return align.Alignment{
		Score: 6, QueryStart: 0, QueryEnd: 3,
		TargetStart: 0, TargetEnd: 3, Matches: 3,
		Blocks: []align.MatchBlock{{QueryStart: 0, TargetStart: 0, Length: 3}},
	}
}

func TestBuildCitation(t *testing.T) {
	source, passage := scoreFixture()
	cand := Candidate{Passage: &passage, LexicalScore: 0.5, EmbeddingScore: 0.25, Index: 3}

	t.Run("perfect match", func(t *testing.T) {
		cfg := core.DefaultConfig()
		citation, ok := buildCitation(fullAlignment(), 3, &cand, &source, &cfg)
		require.True(t, ok)

		// 1.0*alignment + 1.0*coverage + 0*evidence + 0.5*0.5 + 0.5*0.25
		assert.InDelta(t, 2.375, citation.Score, 1e-12)
		assert.Equal(t, source.EffectiveID(), citation.SourceID)
		assert.Equal(t, 0, citation.SourceIndex)
		assert.Equal(t, 3, citation.CandidateIndex)
		assert.Equal(t, 0, citation.CharStart)
		assert.Equal(t, 16, citation.CharEnd)
		assert.Equal(t, "alpha beta gamma", citation.Evidence)
		require.Len(t, citation.EvidenceSpans, 1)

		assert.InDelta(t, 1.0, citation.Components[core.ComponentAlignmentScore], 1e-12)
		assert.InDelta(t, 1.0, citation.Components[core.ComponentAnswerCoverage], 1e-12)
		assert.InDelta(t, 1.0, citation.Components[core.ComponentEvidenceCoverage], 1e-12)
		assert.InDelta(t, 0.5, citation.Components[core.ComponentLexicalScore], 1e-12)
		assert.InDelta(t, 0.25, citation.Components[core.ComponentEmbeddingScore], 1e-12)
		assert.Equal(t, 1.0, citation.Components[core.ComponentNumEvidenceSpans])
		assert.Zero(t, citation.Components[core.ComponentEmbeddingOnly])
	})

	t.Run("no matches", func(t *testing.T) {
		cfg := core.DefaultConfig()
		_, ok := buildCitation(align.Alignment{}, 3, &cand, &source, &cfg)
		assert.False(t, ok)
	})

	partial := align.Alignment{
		Score: 2, QueryStart: 0, QueryEnd: 1,
		TargetStart: 0, TargetEnd: 1, Matches: 1,
		Blocks: []align.MatchBlock{{QueryStart: 0, TargetStart: 0, Length: 1}},
	}

	t.Run("alignment score threshold", func(t *testing.T) {
		cfg := core.NewConfig(core.WithMinAlignmentScore(0.5))
		_, ok := buildCitation(partial, 3, &cand, &source, &cfg)
		assert.False(t, ok)
	})

	t.Run("answer coverage threshold", func(t *testing.T) {
		cfg := core.NewConfig(core.WithMinAnswerCoverage(0.5))
		_, ok := buildCitation(partial, 3, &cand, &source, &cfg)
		assert.False(t, ok)
	})

	t.Run("final score threshold", func(t *testing.T) {
		cfg := core.NewConfig(core.WithMinFinalScore(10))
		_, ok := buildCitation(fullAlignment(), 3, &cand, &source, &cfg)
		assert.False(t, ok)
	})

	t.Run("thresholds at the boundary pass", func(t *testing.T) {
		cfg := core.NewConfig(
			core.WithMinAlignmentScore(1.0),
			core.WithMinAnswerCoverage(1.0),
			core.WithMinFinalScore(2.375),
		)
		_, ok := buildCitation(fullAlignment(), 3, &cand, &source, &cfg)
		assert.True(t, ok)
	})
}

func TestBuildEmbeddingOnlyCitation(t *testing.T) {
	source, passage := scoreFixture()
	cand := Candidate{Passage: &passage, LexicalScore: 0.1, EmbeddingScore: 0.85, Index: 2}

	citation := buildEmbeddingOnlyCitation(&cand, &source)

	assert.Equal(t, 0.85, citation.Score)
	assert.Equal(t, 0, citation.CharStart)
	assert.Equal(t, 16, citation.CharEnd)
	assert.Equal(t, "alpha beta gamma", citation.Evidence)
	assert.Equal(t, 2, citation.CandidateIndex)
	require.Len(t, citation.EvidenceSpans, 1)
	assert.Equal(t, citation.Evidence, citation.EvidenceSpans[0].Text)

	assert.Equal(t, 1.0, citation.Components[core.ComponentEmbeddingOnly])
	assert.Equal(t, 0.85, citation.Components[core.ComponentEmbeddingScore])
	assert.Equal(t, 0.1, citation.Components[core.ComponentLexicalScore])
	assert.Equal(t, 1.0, citation.Components[core.ComponentNumEvidenceSpans])
}

// testCitation builds the minimal citation finalizeCitations cares about.
func testCitation(score float64, sourceIndex, candidateIndex, start, end int, coverage float64) core.Citation {
	return core.Citation{
		Score:          score,
		SourceIndex:    sourceIndex,
		CandidateIndex: candidateIndex,
		CharStart:      start,
		CharEnd:        end,
		Components:     map[string]float64{core.ComponentAnswerCoverage: coverage},
	}
}

func TestFinalizeCitations(t *testing.T) {
	t.Run("empty is unsupported", func(t *testing.T) {
		cfg := core.DefaultConfig()
		ranked, status := finalizeCitations(nil, &cfg)
		assert.Nil(t, ranked)
		assert.Equal(t, core.StatusUnsupported, status)
	})

	t.Run("orders by score", func(t *testing.T) {
		cfg := core.DefaultConfig()
		ranked, status := finalizeCitations([]core.Citation{
			testCitation(1, 0, 0, 0, 10, 0.9),
			testCitation(3, 1, 1, 20, 30, 0.9),
			testCitation(2, 2, 2, 40, 50, 0.9),
		}, &cfg)

		require.Len(t, ranked, 3)
		assert.Equal(t, []float64{3, 2, 1}, []float64{ranked[0].Score, ranked[1].Score, ranked[2].Score})
		assert.Equal(t, core.StatusSupported, status)
	})

	t.Run("duplicate evidence ranges collapse to the best", func(t *testing.T) {
		cfg := core.DefaultConfig()
		ranked, _ := finalizeCitations([]core.Citation{
			testCitation(1, 0, 1, 5, 15, 0.9),
			testCitation(2, 0, 0, 5, 15, 0.9),
		}, &cfg)

		require.Len(t, ranked, 1)
		assert.Equal(t, 2.0, ranked[0].Score)
	})

	t.Run("same range in different sources is kept", func(t *testing.T) {
		cfg := core.DefaultConfig()
		ranked, _ := finalizeCitations([]core.Citation{
			testCitation(2, 0, 0, 5, 15, 0.9),
			testCitation(1, 1, 1, 5, 15, 0.9),
		}, &cfg)
		assert.Len(t, ranked, 2)
	})

	t.Run("per source cap", func(t *testing.T) {
		cfg := core.NewConfig(core.WithTopK(10))
		ranked, _ := finalizeCitations([]core.Citation{
			testCitation(4, 0, 0, 0, 10, 0.9),
			testCitation(3, 0, 1, 20, 30, 0.9),
			testCitation(2, 0, 2, 40, 50, 0.9),
			testCitation(1, 1, 3, 0, 10, 0.9),
		}, &cfg)

		require.Len(t, ranked, 3)
		assert.Equal(t, []float64{4, 3, 1}, []float64{ranked[0].Score, ranked[1].Score, ranked[2].Score})
	})

	t.Run("top-k truncates after the cap", func(t *testing.T) {
		cfg := core.NewConfig(core.WithTopK(1))
		ranked, status := finalizeCitations([]core.Citation{
			testCitation(1, 0, 0, 0, 10, 0.9),
			testCitation(2, 1, 1, 0, 10, 0.9),
		}, &cfg)

		require.Len(t, ranked, 1)
		assert.Equal(t, 2.0, ranked[0].Score)
		assert.Equal(t, core.StatusSupported, status)
	})

	t.Run("top-k zero returns status without citations", func(t *testing.T) {
		cfg := core.NewConfig(core.WithTopK(0))
		ranked, status := finalizeCitations([]core.Citation{
			testCitation(2, 0, 0, 0, 10, 0.9),
		}, &cfg)

		assert.Nil(t, ranked)
		assert.Equal(t, core.StatusSupported, status)
	})

	t.Run("status follows the best citation", func(t *testing.T) {
		cfg := core.DefaultConfig()
		_, status := finalizeCitations([]core.Citation{
			testCitation(5, 0, 0, 0, 10, 0.3),
			testCitation(1, 0, 1, 20, 30, 0.9),
		}, &cfg)
		assert.Equal(t, core.StatusPartial, status)
	})

	t.Run("embedding-only status uses the similarity threshold", func(t *testing.T) {
		cfg := core.DefaultConfig()
		embeddingOnly := func(score float64) core.Citation {
			return core.Citation{
				Score: score, CharStart: 0, CharEnd: 10,
				Components: map[string]float64{
					core.ComponentEmbeddingOnly:  1,
					core.ComponentEmbeddingScore: score,
				},
			}
		}

		_, status := finalizeCitations([]core.Citation{embeddingOnly(0.7)}, &cfg)
		assert.Equal(t, core.StatusSupported, status)

		_, status = finalizeCitations([]core.Citation{embeddingOnly(0.5)}, &cfg)
		assert.Equal(t, core.StatusPartial, status)
	})
}

func TestRankLess(t *testing.T) {
	base := func() core.Citation { return testCitation(1, 0, 0, 0, 10, 0) }

	t.Run("higher score first", func(t *testing.T) {
		a, b := base(), base()
		a.Score = 2
		assert.True(t, rankLess(&a, &b, true))
		assert.False(t, rankLess(&b, &a, true))
	})

	t.Run("source order preferred", func(t *testing.T) {
		a, b := base(), base()
		a.SourceIndex, a.CharStart = 0, 50
		b.SourceIndex, b.CharStart = 1, 0
		assert.True(t, rankLess(&a, &b, true))
		assert.False(t, rankLess(&a, &b, false))
	})

	t.Run("document position preferred", func(t *testing.T) {
		a, b := base(), base()
		a.SourceIndex, a.CharStart, a.CharEnd = 1, 0, 10
		b.SourceIndex, b.CharStart, b.CharEnd = 0, 50, 60
		assert.True(t, rankLess(&a, &b, false))
	})

	t.Run("longer evidence wins positional ties", func(t *testing.T) {
		a, b := base(), base()
		a.CharEnd = 30
		b.CharEnd = 20
		assert.True(t, rankLess(&a, &b, true))
	})

	t.Run("candidate index is the final key", func(t *testing.T) {
		a, b := base(), base()
		a.CandidateIndex = 0
		b.CandidateIndex = 1
		assert.True(t, rankLess(&a, &b, true))
		assert.False(t, rankLess(&b, &a, true))
	})
}
