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
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/avaxML/cite-right/core"
)

// WordTokenizer converts text to word-level tokens with exact byte spans
// into the input. Token identifiers are assigned first-seen starting at 1
// and live in a per-instance vocabulary, so every text tokenized by the
// same instance shares one identifier space.
//
// Normalization folds case (NFKC), joins words across internal apostrophes
// and hyphens, collapses digit runs with internal separators into one number
// token, and maps %, $, € and £ to word tokens so "5.2%" and "5.2 percent"
// align.
//
// A WordTokenizer is stateful and not safe for concurrent use; build one
// per alignment call.
type WordTokenizer struct {
	normalizeNumbers  bool
	normalizePercent  bool
	normalizeCurrency bool

	fold   cases.Caser
	vocab  map[string]int
	nextID int
}

var _ core.Tokenizer = (*WordTokenizer)(nil)

// TokenizerOption configures a WordTokenizer.
type TokenizerOption func(*WordTokenizer)

// WithoutNumberNormalization keeps thousands separators inside number tokens.
func WithoutNumberNormalization() TokenizerOption {
	return func(t *WordTokenizer) { t.normalizeNumbers = false }
}

// WithoutPercentNormalization keeps "%" as a literal token.
func WithoutPercentNormalization() TokenizerOption {
	return func(t *WordTokenizer) { t.normalizePercent = false }
}

// WithoutCurrencyNormalization keeps currency symbols as literal tokens.
func WithoutCurrencyNormalization() TokenizerOption {
	return func(t *WordTokenizer) { t.normalizeCurrency = false }
}

// NewWordTokenizer creates a tokenizer with an empty vocabulary and all
// normalizations enabled.
func NewWordTokenizer(opts ...TokenizerOption) *WordTokenizer {
	t := &WordTokenizer{
		normalizeNumbers:  true,
		normalizePercent:  true,
		normalizeCurrency: true,
		fold:              cases.Fold(),
		vocab:             make(map[string]int),
		nextID:            1,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tokenize implements core.Tokenizer. Spans index the raw input bytes; the
// normalized form only keys the vocabulary.
func (t *WordTokenizer) Tokenize(input string) (core.TokenizedText, error) {
	var (
		ids   []int
		spans []core.Span
	)

	for _, span := range scanTokenSpans(input) {
		normalized := t.normalize(input[span.Start:span.End])
		if normalized == "" {
			continue
		}
		id, ok := t.vocab[normalized]
		if !ok {
			id = t.nextID
			t.vocab[normalized] = id
			t.nextID++
		}
		ids = append(ids, id)
		spans = append(spans, span)
	}

	return core.TokenizedText{Text: input, IDs: ids, Spans: spans}, nil
}

// VocabSize returns the number of distinct normalized tokens seen so far.
func (t *WordTokenizer) VocabSize() int {
	return len(t.vocab)
}

func (t *WordTokenizer) normalize(raw string) string {
	normalized := t.fold.String(norm.NFKC.String(raw))
	normalized = strings.ReplaceAll(normalized, "’", "'")

	if t.normalizeNumbers && normalized != "" && isDigit([]rune(normalized)[0]) {
		normalized = strings.ReplaceAll(normalized, ",", "")
	}

	if t.normalizePercent && normalized == "%" {
		return "percent"
	}

	if t.normalizeCurrency {
		switch normalized {
		case "$":
			return "dollar"
		case "€":
			return "euro"
		case "£":
			return "pound"
		}
	}

	return normalized
}

// scanTokenSpans finds the byte ranges of word, number and symbol tokens.
// Number runs absorb '.' and ',' between digits; word runs absorb
// apostrophes and hyphens between alphanumerics. Everything else separates
// tokens.
func scanTokenSpans(input string) []core.Span {
	runes := []rune(input)
	offsets := make([]int, len(runes)+1)
	pos := 0
	for i, r := range runes {
		offsets[i] = pos
		pos += len(string(r))
	}
	offsets[len(runes)] = pos

	var spans []core.Span
	idx := 0

	for idx < len(runes) {
		r := runes[idx]

		if isDigit(r) {
			start := idx
			idx++
			for idx < len(runes) {
				r = runes[idx]
				if isDigit(r) {
					idx++
					continue
				}
				if (r == '.' || r == ',') &&
					idx+1 < len(runes) &&
					isDigit(runes[idx-1]) && isDigit(runes[idx+1]) {
					idx++
					continue
				}
				break
			}
			spans = append(spans, core.Span{Start: offsets[start], End: offsets[idx]})
			continue
		}

		if r == '%' || r == '$' || r == '€' || r == '£' {
			spans = append(spans, core.Span{Start: offsets[idx], End: offsets[idx+1]})
			idx++
			continue
		}

		if isAlnum(r) {
			start := idx
			idx++
			for idx < len(runes) {
				r = runes[idx]
				if isAlnum(r) {
					idx++
					continue
				}
				if (r == '\'' || r == '’' || r == '-') &&
					idx+1 < len(runes) &&
					isAlnum(runes[idx-1]) && isAlnum(runes[idx+1]) {
					idx++
					continue
				}
				break
			}
			spans = append(spans, core.Span{Start: offsets[start], End: offsets[idx]})
			continue
		}

		idx++
	}

	return spans
}

func isDigit(r rune) bool {
	return unicode.IsDigit(r)
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
