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


// Package groundedness condenses a list of span results into one
// answer-level report: a character-weighted score in [0, 1], status counts
// and per-span metrics. Longer spans move the score more than short ones,
// so a single unsupported aside does not drown a well-cited paragraph.
package groundedness

import "github.com/avaxML/cite-right/core"

// Weights map each span status to its contribution per character.
type Weights struct {
	Supported   float64
	Partial     float64
	Unsupported float64
}

// DefaultWeights returns the standard status weights: supported spans count
// fully, partially supported spans count half, unsupported spans count
// nothing.
func DefaultWeights() Weights {
	return Weights{Supported: 1.0, Partial: 0.5, Unsupported: 0.0}
}

// Option configures an evaluation.
type Option func(*Weights)

// WithWeights replaces the status weights.
func WithWeights(w Weights) Option {
	return func(cur *Weights) { *cur = w }
}

// WithPartialWeight adjusts only the weight of partially supported spans.
func WithPartialWeight(v float64) Option {
	return func(cur *Weights) { cur.Partial = v }
}

// SpanMetric is the groundedness view of one answer span.
type SpanMetric struct {
	Span   core.AnswerSpan
	Status core.Status

	// Weight is the per-character weight the span contributed.
	Weight float64

	// BestScore and BestCoverage come from the top-ranked citation;
	// both are zero when the span has none.
	BestScore    float64
	BestCoverage float64

	// CitationCount is the number of citations returned for the span.
	CitationCount int
}

// Report is the answer-level groundedness summary.
type Report struct {
	// Score is the character-weighted groundedness in [0, 1]:
	// sum(span length * status weight) / sum(span length).
	Score float64

	// TotalChars is the combined length of all evaluated spans.
	TotalChars int

	Supported   int
	Partial     int
	Unsupported int

	Spans []SpanMetric
}

// Grounded reports whether the score reaches the threshold.
func (r Report) Grounded(threshold float64) bool {
	return r.Score >= threshold
}

// Evaluate computes the groundedness report for one alignment result list.
// Empty input yields a zero report.
func Evaluate(results []core.SpanResult, opts ...Option) Report {
	weights := DefaultWeights()
	for _, opt := range opts {
		opt(&weights)
	}

	report := Report{Spans: make([]SpanMetric, 0, len(results))}
	var weighted float64

	for _, result := range results {
		metric := SpanMetric{
			Span:          result.AnswerSpan,
			Status:        result.Status,
			CitationCount: len(result.Citations),
		}

		switch result.Status {
		case core.StatusSupported:
			report.Supported++
			metric.Weight = weights.Supported
		case core.StatusPartial:
			report.Partial++
			metric.Weight = weights.Partial
		default:
			report.Unsupported++
			metric.Weight = weights.Unsupported
		}

		if len(result.Citations) > 0 {
			best := result.Citations[0]
			metric.BestScore = best.Score
			metric.BestCoverage = best.Components[core.ComponentAnswerCoverage]
		}

		length := result.AnswerSpan.CharEnd - result.AnswerSpan.CharStart
		report.TotalChars += length
		weighted += float64(length) * metric.Weight

		report.Spans = append(report.Spans, metric)
	}

	if report.TotalChars > 0 {
		report.Score = weighted / float64(report.TotalChars)
	}
	return report
}
