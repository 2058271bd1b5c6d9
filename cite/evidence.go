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
	"github.com/avaxML/cite-right/align"
	"github.com/avaxML/cite-right/core"
)

// evidenceRange is the materialized character extent of one alignment:
// the enclosing contiguous range plus its evidence spans.
type evidenceRange struct {
	CharStart int
	CharEnd   int
	Text      string
	Spans     []core.EvidenceSpan
}

// materializeEvidence converts an alignment's token ranges into absolute
// character evidence. The alignment must have at least one match, which
// guarantees a non-empty target range that starts and ends on matched
// tokens.
func materializeEvidence(a align.Alignment, passage *core.Passage, source *core.Source, cfg *core.Config) evidenceRange {
	charStart := passage.TokenSpans[a.TargetStart].Start
	charEnd := passage.TokenSpans[a.TargetEnd-1].End
	ev := evidenceRange{
		CharStart: charStart,
		CharEnd:   charEnd,
		Text:      source.Excerpt(charStart, charEnd),
	}

	if cfg.MultiSpanEvidence {
		if spans := blockSpans(a.Blocks, passage, source, cfg); spans != nil {
			ev.Spans = spans
			return ev
		}
	}

	ev.Spans = []core.EvidenceSpan{{CharStart: charStart, CharEnd: charEnd, Text: ev.Text}}
	return ev
}

// blockSpans maps match blocks to character ranges, merging neighbors whose
// gap is within MultiSpanMergeGapChars. Returns nil when the pieces exceed
// MultiSpanMaxSpans, which sends the caller back to the enclosing range.
func blockSpans(blocks []align.MatchBlock, passage *core.Passage, source *core.Source, cfg *core.Config) []core.EvidenceSpan {
	if len(blocks) == 0 {
		return nil
	}

	ranges := make([]core.Span, 0, len(blocks))
	for _, block := range blocks {
		start := passage.TokenSpans[block.TargetStart].Start
		end := passage.TokenSpans[block.TargetStart+block.Length-1].End
		if n := len(ranges); n > 0 && start-ranges[n-1].End <= cfg.MultiSpanMergeGapChars {
			ranges[n-1].End = end
			continue
		}
		ranges = append(ranges, core.Span{Start: start, End: end})
	}

	if len(ranges) > cfg.MultiSpanMaxSpans {
		return nil
	}

	spans := make([]core.EvidenceSpan, len(ranges))
	for i, r := range ranges {
		spans[i] = core.EvidenceSpan{
			CharStart: r.Start,
			CharEnd:   r.End,
			Text:      source.Excerpt(r.Start, r.End),
		}
	}
	return spans
}
