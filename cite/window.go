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

	"github.com/avaxML/cite-right/core"
)

// buildPassages cuts overlapping windows of `window` consecutive segments
// advancing by `stride`, reusing one tokenization of the whole source. A
// window's tokens are the source tokens lying fully inside its character
// range. Fewer segments than the window size yields one window covering
// all of them.
//
// The segment and token offsets are local to source.Text; the returned
// passages carry absolute offsets in the parent document, so downstream
// evidence extraction never needs the chunk offset again.
func buildPassages(sourceIndex int, source *core.Source, segments []core.Segment, tokenized core.TokenizedText, window, stride int) []core.Passage {
	if len(segments) == 0 {
		return nil
	}
	if window < 1 {
		window = 1
	}
	if stride < 1 {
		stride = 1
	}

	var passages []core.Passage
	idx := 0
	for {
		end := idx + window
		if end > len(segments) {
			end = len(segments)
		}
		passages = append(passages, windowPassage(sourceIndex, source, tokenized,
			segments[idx].DocCharStart, segments[end-1].DocCharEnd))
		if end == len(segments) {
			break
		}
		idx += stride
		if idx >= len(segments) {
			break
		}
	}

	return passages
}

// windowPassage builds one passage for the local character range
// [charStart, charEnd) of source.Text.
func windowPassage(sourceIndex int, source *core.Source, tokenized core.TokenizedText, charStart, charEnd int) core.Passage {
	base := source.DocCharStart

	// First token starting inside the window.
	first := sort.Search(len(tokenized.Spans), func(i int) bool {
		return tokenized.Spans[i].Start >= charStart
	})

	var (
		ids   []int
		spans []core.Span
	)
	for i := first; i < len(tokenized.Spans); i++ {
		span := tokenized.Spans[i]
		if span.End > charEnd {
			break
		}
		ids = append(ids, tokenized.IDs[i])
		spans = append(spans, core.Span{Start: base + span.Start, End: base + span.End})
	}

	return core.Passage{
		SourceIndex:  sourceIndex,
		DocCharStart: base + charStart,
		DocCharEnd:   base + charEnd,
		Text:         source.Text[charStart:charEnd],
		TokenIDs:     ids,
		TokenSpans:   spans,
	}
}
