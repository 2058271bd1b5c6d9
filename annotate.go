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


package citeright

import (
	"fmt"
	"strings"

	"github.com/avaxML/cite-right/core"
)

// AnnotationStyle selects how citation markers are rendered.
type AnnotationStyle string

const (
	// StyleMarkdown renders markers as [1].
	StyleMarkdown AnnotationStyle = "markdown"
	// StyleSuperscript renders markers as superscript digits.
	StyleSuperscript AnnotationStyle = "superscript"
	// StyleFootnote renders markers as [^1] and appends a footnote block.
	StyleFootnote AnnotationStyle = "footnote"
)

// unsupportedMarker flags spans with no surviving citation.
const unsupportedMarker = "[?]"

// reference is one numbered entry in the answer's reference list.
type reference struct {
	Number   int
	SourceID string
	Evidence string
}

// referenceList numbers the cited sources in order of first appearance,
// walking spans in answer order and citations in rank order. The evidence
// kept for a number is the highest-ranked citation that introduced it.
func referenceList(results []core.SpanResult) (refs []reference, bySource map[string]int) {
	bySource = make(map[string]int)
	for _, result := range results {
		for _, citation := range result.Citations {
			if _, seen := bySource[citation.SourceID]; seen {
				continue
			}
			number := len(refs) + 1
			bySource[citation.SourceID] = number
			refs = append(refs, reference{
				Number:   number,
				SourceID: citation.SourceID,
				Evidence: citation.Evidence,
			})
		}
	}
	return refs, bySource
}

// spanMarkers returns the reference numbers cited by one span, deduplicated,
// in rank order of its citations.
func spanMarkers(result core.SpanResult, bySource map[string]int) []int {
	var numbers []int
	seen := make(map[int]bool)
	for _, citation := range result.Citations {
		number := bySource[citation.SourceID]
		if number == 0 || seen[number] {
			continue
		}
		seen[number] = true
		numbers = append(numbers, number)
	}
	return numbers
}

var superscriptDigits = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴',
	'5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹',
}

func toSuperscript(n int) string {
	var b strings.Builder
	for _, r := range fmt.Sprint(n) {
		b.WriteRune(superscriptDigits[r])
	}
	return b.String()
}

func renderMarker(numbers []int, style AnnotationStyle) string {
	var b strings.Builder
	for _, n := range numbers {
		switch style {
		case StyleSuperscript:
			b.WriteString(toSuperscript(n))
		case StyleFootnote:
			fmt.Fprintf(&b, "[^%d]", n)
		default:
			fmt.Fprintf(&b, "[%d]", n)
		}
	}
	return b.String()
}

// AnnotateAnswer inserts a citation marker after every answer span that has
// citations and the unsupported marker [?] after every span that has none.
// The rest of the answer text is untouched; StyleFootnote appends a
// footnote block listing each cited source with its evidence.
func AnnotateAnswer(answer string, results []core.SpanResult, style AnnotationStyle) string {
	if len(results) == 0 {
		return answer
	}

	refs, bySource := referenceList(results)

	var b strings.Builder
	cursor := 0
	for _, result := range results {
		span := result.AnswerSpan
		if span.CharEnd > len(answer) || span.CharStart < cursor {
			continue
		}
		b.WriteString(answer[cursor:span.CharEnd])
		cursor = span.CharEnd

		if numbers := spanMarkers(result, bySource); len(numbers) > 0 {
			b.WriteString(renderMarker(numbers, style))
		} else {
			b.WriteString(unsupportedMarker)
		}
	}
	b.WriteString(answer[cursor:])

	if style == StyleFootnote && len(refs) > 0 {
		b.WriteString("\n")
		for _, ref := range refs {
			fmt.Fprintf(&b, "\n[^%d]: %s: %q", ref.Number, ref.SourceID, condense(ref.Evidence, 120))
		}
	}
	return b.String()
}

// FormatWithCitations returns the markdown-annotated answer followed by a
// references block. Results without citations leave the answer unchanged.
func FormatWithCitations(answer string, results []core.SpanResult) string {
	refs, _ := referenceList(results)
	if len(refs) == 0 {
		return answer
	}

	var b strings.Builder
	b.WriteString(AnnotateAnswer(answer, results, StyleMarkdown))
	b.WriteString("\n\nReferences:\n")
	for _, ref := range refs {
		fmt.Fprintf(&b, "[%d] %s: %q\n", ref.Number, ref.SourceID, condense(ref.Evidence, 120))
	}
	return strings.TrimRight(b.String(), "\n")
}

// CitationSummary renders a human-readable per-span summary of an
// alignment run. Empty results yield "No spans."
func CitationSummary(results []core.SpanResult) string {
	if len(results) == 0 {
		return "No spans."
	}

	counts := map[core.Status]int{}
	for _, result := range results {
		counts[result.Status]++
	}

	var b strings.Builder
	b.WriteString("Citation Summary\n")
	fmt.Fprintf(&b, "%d spans: %d supported, %d partial, %d unsupported\n",
		len(results),
		counts[core.StatusSupported],
		counts[core.StatusPartial],
		counts[core.StatusUnsupported])

	for _, result := range results {
		fmt.Fprintf(&b, "\n[%s] %q\n", result.Status, condense(result.AnswerSpan.Text, 80))
		for _, citation := range result.Citations {
			fmt.Fprintf(&b, "  %.3f %s [%d:%d] %q\n",
				citation.Score, citation.SourceID,
				citation.CharStart, citation.CharEnd,
				condense(citation.Evidence, 80))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// condense truncates s to at most max bytes on a rune boundary, appending
// an ellipsis when anything was cut.
func condense(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut] + "…"
}
