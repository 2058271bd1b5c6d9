// Copyright 2025 AvaxML
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package cite

import (
	"sort"

	"github.com/avaxML/cite-right/align"
	"github.com/avaxML/cite-right/core"
)

// buildCitation scores one candidate's alignment and assembles the citation.
// Returns false when the alignment matched nothing or a threshold filter
// rejects it.
func buildCitation(a align.Alignment, queryLen int, cand *Candidate, source *core.Source, cfg *core.Config) (core.Citation, bool) {
	if a.Matches == 0 {
		return core.Citation{}, false
	}

	alignmentScore := float64(a.Score) / float64(cfg.MatchScore*queryLen)
	answerCoverage := float64(a.Matches) / float64(queryLen)
	evidenceCoverage := float64(a.Matches) / float64(a.TargetEnd-a.TargetStart)

	w := cfg.Weights
	final := w.Alignment*alignmentScore +
		w.AnswerCoverage*answerCoverage +
		w.EvidenceCoverage*evidenceCoverage +
		w.Lexical*cand.LexicalScore +
		w.Embedding*cand.EmbeddingScore

	if alignmentScore < cfg.MinAlignmentScore ||
		answerCoverage < cfg.MinAnswerCoverage ||
		final < cfg.MinFinalScore {
		return core.Citation{}, false
	}

	ev := materializeEvidence(a, cand.Passage, source, cfg)
	return core.Citation{
		Score:          final,
		SourceID:       source.EffectiveID(),
		SourceIndex:    cand.Passage.SourceIndex,
		CandidateIndex: cand.Index,
		CharStart:      ev.CharStart,
		CharEnd:        ev.CharEnd,
		Evidence:       ev.Text,
		EvidenceSpans:  ev.Spans,
		Components: map[string]float64{
			core.ComponentAlignmentScore:   alignmentScore,
			core.ComponentAnswerCoverage:   answerCoverage,
			core.ComponentEvidenceCoverage: evidenceCoverage,
			core.ComponentLexicalScore:     cand.LexicalScore,
			core.ComponentEmbeddingScore:   cand.EmbeddingScore,
			core.ComponentNumEvidenceSpans: float64(len(ev.Spans)),
		},
	}, true
}

// buildEmbeddingOnlyCitation cites the whole passage window on embedding
// similarity alone. The caller gates on AllowEmbeddingOnly, the similarity
// threshold, and the absence of a surviving aligned citation for the
// candidate.
func buildEmbeddingOnlyCitation(cand *Candidate, source *core.Source) core.Citation {
	p := cand.Passage
	text := source.Excerpt(p.DocCharStart, p.DocCharEnd)
	return core.Citation{
		Score:          cand.EmbeddingScore,
		SourceID:       source.EffectiveID(),
		SourceIndex:    p.SourceIndex,
		CandidateIndex: cand.Index,
		CharStart:      p.DocCharStart,
		CharEnd:        p.DocCharEnd,
		Evidence:       text,
		EvidenceSpans: []core.EvidenceSpan{
			{CharStart: p.DocCharStart, CharEnd: p.DocCharEnd, Text: text},
		},
		Components: map[string]float64{
			core.ComponentEmbeddingOnly:    1,
			core.ComponentEmbeddingScore:   cand.EmbeddingScore,
			core.ComponentLexicalScore:     cand.LexicalScore,
			core.ComponentNumEvidenceSpans: 1,
		},
	}
}

// finalizeCitations ranks one span's citations, collapses duplicate
// evidence ranges, classifies the span, applies the per-source cap and
// truncates to TopK. Status reflects the survivors before capping.
func finalizeCitations(citations []core.Citation, cfg *core.Config) ([]core.Citation, core.Status) {
	sort.Slice(citations, func(i, j int) bool {
		return rankLess(&citations[i], &citations[j], cfg.PreferSourceOrder)
	})

	type evidenceKey struct{ source, start, end int }
	seen := make(map[evidenceKey]struct{}, len(citations))
	deduped := make([]core.Citation, 0, len(citations))
	for _, c := range citations {
		k := evidenceKey{c.SourceIndex, c.CharStart, c.CharEnd}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		deduped = append(deduped, c)
	}

	if len(deduped) == 0 {
		return nil, core.StatusUnsupported
	}
	status := citationStatus(&deduped[0], cfg)

	perSource := make(map[int]int, len(deduped))
	kept := make([]core.Citation, 0, len(deduped))
	for _, c := range deduped {
		if perSource[c.SourceIndex] >= cfg.MaxCitationsPerSource {
			continue
		}
		perSource[c.SourceIndex]++
		kept = append(kept, c)
	}

	if cfg.TopK <= 0 {
		return nil, status
	}
	if len(kept) > cfg.TopK {
		kept = kept[:cfg.TopK]
	}
	return kept, status
}

// rankLess orders citations for presentation: higher score first, score
// ties broken by document position so overlapping evidence keeps a stable
// reader-facing order.
func rankLess(a, b *core.Citation, preferSourceOrder bool) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if preferSourceOrder {
		if a.SourceIndex != b.SourceIndex {
			return a.SourceIndex < b.SourceIndex
		}
		if a.CharStart != b.CharStart {
			return a.CharStart < b.CharStart
		}
	} else {
		if a.CharStart != b.CharStart {
			return a.CharStart < b.CharStart
		}
		if a.SourceIndex != b.SourceIndex {
			return a.SourceIndex < b.SourceIndex
		}
	}
	if la, lb := a.CharEnd-a.CharStart, b.CharEnd-b.CharStart; la != lb {
		return la > lb
	}
	return a.CandidateIndex < b.CandidateIndex
}

// citationStatus classifies a span from its best surviving citation.
func citationStatus(best *core.Citation, cfg *core.Config) core.Status {
	if best.Components[core.ComponentEmbeddingOnly] == 1 {
		if best.Components[core.ComponentEmbeddingScore] >= cfg.SupportedEmbeddingSimilarity {
			return core.StatusSupported
		}
		return core.StatusPartial
	}
	if best.Components[core.ComponentAnswerCoverage] >= cfg.SupportedAnswerCoverage {
		return core.StatusSupported
	}
	return core.StatusPartial
}
