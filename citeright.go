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


// Package citeright is the one-call surface of the citation alignment
// engine. It wraps the cite and groundedness packages into single
// functions for the common cases: align an answer against sources, check
// whether it is grounded, or decorate it with citation markers.
//
// Callers who run many alignments should build a cite.Aligner once and
// reuse it instead; every function here constructs a fresh one.
package citeright

import (
	"context"

	"github.com/avaxML/cite-right/cite"
	"github.com/avaxML/cite-right/core"
	"github.com/avaxML/cite-right/groundedness"
)

// Sources wraps plain texts as core.Source values in order. It is a
// convenience for callers without IDs or chunk offsets; each source gets
// a content-derived ID when results are produced.
func Sources(texts ...string) []core.Source {
	sources := make([]core.Source, len(texts))
	for i, text := range texts {
		sources[i] = core.Source{Text: text}
	}
	return sources
}

// Align builds a default Aligner, applies the options and aligns the
// answer against the sources. One SpanResult is returned per answer span.
func Align(ctx context.Context, answer string, sources []core.Source, opts ...cite.Option) ([]core.SpanResult, error) {
	aligner, err := cite.New(opts...)
	if err != nil {
		return nil, err
	}
	defer aligner.Release()
	return aligner.Align(ctx, answer, sources)
}

// CheckGroundedness aligns the answer and condenses the results into one
// answer-level groundedness report.
func CheckGroundedness(ctx context.Context, answer string, sources []core.Source, opts ...cite.Option) (groundedness.Report, error) {
	results, err := Align(ctx, answer, sources, opts...)
	if err != nil {
		return groundedness.Report{}, err
	}
	return groundedness.Evaluate(results), nil
}

// IsGrounded reports whether the answer's character-weighted groundedness
// score reaches the threshold.
func IsGrounded(ctx context.Context, answer string, sources []core.Source, threshold float64, opts ...cite.Option) (bool, error) {
	report, err := CheckGroundedness(ctx, answer, sources, opts...)
	if err != nil {
		return false, err
	}
	return report.Grounded(threshold), nil
}

// IsHallucinated is the complement of IsGrounded: true when the answer's
// groundedness score falls below the threshold.
func IsHallucinated(ctx context.Context, answer string, sources []core.Source, threshold float64, opts ...cite.Option) (bool, error) {
	grounded, err := IsGrounded(ctx, answer, sources, threshold, opts...)
	if err != nil {
		return false, err
	}
	return !grounded, nil
}
