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


package text

import (
	"regexp"

	"github.com/avaxML/cite-right/core"
)

// AnswerSplitter splits a generated answer into citable sentence spans.
// Paragraphs are separated by blank lines; sentences within a paragraph are
// found by a SentenceSegmenter that ignores single newlines. Each span
// carries its paragraph index and a running sentence index across the whole
// answer.
//
// An AnswerSplitter is stateless and safe for concurrent use.
type AnswerSplitter struct {
	sentences *SentenceSegmenter
}

var _ core.AnswerSegmenter = (*AnswerSplitter)(nil)

// NewAnswerSplitter creates an AnswerSplitter.
func NewAnswerSplitter() *AnswerSplitter {
	return &AnswerSplitter{
		sentences: NewSentenceSegmenter(WithoutNewlineSplit()),
	}
}

var paragraphBreakRE = regexp.MustCompile(`\n[ \t]*\n+`)

// Segment implements core.AnswerSegmenter. Offsets are absolute byte
// positions in the full answer text.
func (a *AnswerSplitter) Segment(answer string) ([]core.AnswerSpan, error) {
	var spans []core.AnswerSpan
	sentenceIndex := 0

	for paragraphIndex, para := range paragraphRanges(answer) {
		paragraphText := answer[para.Start:para.End]
		sentences, err := a.sentences.Segment(paragraphText)
		if err != nil {
			return nil, err
		}
		for _, sentence := range sentences {
			spans = append(spans, core.AnswerSpan{
				Text:           sentence.Text,
				CharStart:      para.Start + sentence.DocCharStart,
				CharEnd:        para.Start + sentence.DocCharEnd,
				Kind:           core.SpanKindSentence,
				ParagraphIndex: paragraphIndex,
				SentenceIndex:  sentenceIndex,
			})
			sentenceIndex++
		}
	}

	return spans, nil
}

// paragraphRanges returns the trimmed byte ranges of non-blank paragraphs.
func paragraphRanges(answer string) []core.Span {
	var ranges []core.Span
	start := 0

	for _, brk := range paragraphBreakRE.FindAllStringIndex(answer, -1) {
		if s, e, ok := trimRange(answer, start, brk[0]); ok {
			ranges = append(ranges, core.Span{Start: s, End: e})
		}
		start = brk[1]
	}
	if s, e, ok := trimRange(answer, start, len(answer)); ok {
		ranges = append(ranges, core.Span{Start: s, End: e})
	}

	return ranges
}
