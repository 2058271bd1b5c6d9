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
	"unicode"
	"unicode/utf8"

	"github.com/avaxML/cite-right/core"
)

// SentenceSegmenter splits text into sentence-level segments on runs of
// '.', '?' and '!' followed by whitespace or end of input, on ';', and
// optionally on newlines. Offsets are exact half-open byte ranges into the
// input; surrounding whitespace is trimmed out of each segment.
//
// A SentenceSegmenter is stateless and safe for concurrent use.
type SentenceSegmenter struct {
	splitOnNewlines bool
}

var _ core.Segmenter = (*SentenceSegmenter)(nil)

// SegmenterOption configures a SentenceSegmenter.
type SegmenterOption func(*SentenceSegmenter)

// WithoutNewlineSplit treats newlines as ordinary whitespace instead of
// segment boundaries. Answer splitting uses this so paragraph structure is
// handled one level up.
func WithoutNewlineSplit() SegmenterOption {
	return func(s *SentenceSegmenter) { s.splitOnNewlines = false }
}

// NewSentenceSegmenter creates a segmenter that splits on sentence
// boundaries and newlines.
func NewSentenceSegmenter(opts ...SegmenterOption) *SentenceSegmenter {
	s := &SentenceSegmenter{splitOnNewlines: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Segment implements core.Segmenter.
func (s *SentenceSegmenter) Segment(input string) ([]core.Segment, error) {
	var segments []core.Segment
	start := 0
	idx := 0
	length := len(input)

	for idx < length {
		char := input[idx]

		if char == '\n' && s.splitOnNewlines {
			segments = appendSegment(segments, input, start, idx)
			start = idx + 1
			idx++
			continue
		}

		if (char == '.' || char == '?' || char == '!') && isSentenceBoundary(input, idx) {
			end := idx + 1
			for end < length && (input[end] == '.' || input[end] == '?' || input[end] == '!') {
				end++
			}
			segments = appendSegment(segments, input, start, end)
			start = end
			idx = end
			continue
		}

		if char == ';' {
			segments = appendSegment(segments, input, start, idx+1)
			start = idx + 1
			idx++
			continue
		}

		idx++
	}

	segments = appendSegment(segments, input, start, length)
	return segments, nil
}

// isSentenceBoundary reports whether the terminator at idx ends a sentence:
// it must be followed by whitespace or the end of input, so decimals like
// "5.2" stay intact.
func isSentenceBoundary(input string, idx int) bool {
	if idx+1 >= len(input) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(input[idx+1:])
	return unicode.IsSpace(r)
}

// appendSegment trims [start, end) and appends it when non-empty.
func appendSegment(segments []core.Segment, input string, start, end int) []core.Segment {
	trimStart, trimEnd, ok := trimRange(input, start, end)
	if !ok {
		return segments
	}
	return append(segments, core.Segment{
		Text:         input[trimStart:trimEnd],
		DocCharStart: trimStart,
		DocCharEnd:   trimEnd,
	})
}

// trimRange shrinks [start, end) past leading and trailing whitespace,
// keeping offsets exact. ok is false when nothing remains.
func trimRange(input string, start, end int) (int, int, bool) {
	if start >= end {
		return 0, 0, false
	}
	for start < end {
		r, size := utf8.DecodeRuneInString(input[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		start += size
	}
	for end > start {
		r, size := utf8.DecodeLastRuneInString(input[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		end -= size
	}
	if start >= end {
		return 0, 0, false
	}
	return start, end, true
}
