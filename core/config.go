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


package core

import (
	"fmt"
	"runtime"
)

// BackendMode selects which alignment backend executes a call.
type BackendMode string

const (
	// BackendAuto prefers the parallel backend and falls back to the
	// reference backend silently when the pool cannot be built.
	BackendAuto BackendMode = "auto"
	// BackendReference forces the single-threaded reference backend.
	BackendReference BackendMode = "reference"
	// BackendParallel requires the parallel backend; construction fails
	// when it is unavailable.
	BackendParallel BackendMode = "parallel"
)

// Weights are the coefficients of the final-score weighted sum.
type Weights struct {
	Alignment        float64 `yaml:"alignment"`
	AnswerCoverage   float64 `yaml:"answer_coverage"`
	EvidenceCoverage float64 `yaml:"evidence_coverage"`
	Lexical          float64 `yaml:"lexical"`
	Embedding        float64 `yaml:"embedding"`
}

// DefaultWeights returns the standard scoring weights.
func DefaultWeights() Weights {
	return Weights{
		Alignment:        1.0,
		AnswerCoverage:   1.0,
		EvidenceCoverage: 0.0,
		Lexical:          0.5,
		Embedding:        0.5,
	}
}

// Config holds every tunable of a citation alignment call.
// All fields are optional; DefaultConfig supplies working values.
type Config struct {
	// TopK is the maximum number of citations returned per answer span.
	// Zero or negative means "return no citations" and is not an error.
	TopK int `yaml:"top_k"`

	// MinFinalScore drops citations whose weighted final score falls below it.
	MinFinalScore float64 `yaml:"min_final_score"`

	// MinAlignmentScore drops citations whose normalized alignment score
	// falls below it.
	MinAlignmentScore float64 `yaml:"min_alignment_score"`

	// MinAnswerCoverage drops citations covering less of the answer span.
	MinAnswerCoverage float64 `yaml:"min_answer_coverage"`

	// SupportedAnswerCoverage is the coverage at which a span counts as
	// fully supported rather than partial.
	SupportedAnswerCoverage float64 `yaml:"supported_answer_coverage"`

	// AllowEmbeddingOnly emits whole-window citations on embedding
	// similarity alone when alignment finds nothing.
	AllowEmbeddingOnly bool `yaml:"allow_embedding_only"`

	// MinEmbeddingSimilarity gates embedding-only citations.
	MinEmbeddingSimilarity float64 `yaml:"min_embedding_similarity"`

	// SupportedEmbeddingSimilarity is the similarity at which an
	// embedding-only citation counts as fully supported.
	SupportedEmbeddingSimilarity float64 `yaml:"supported_embedding_similarity"`

	// WindowSentences is the passage window size in sentences.
	WindowSentences int `yaml:"window_sentences"`

	// StrideSentences is the passage window stride in sentences.
	StrideSentences int `yaml:"stride_sentences"`

	// MaxLexicalCandidates caps the lexical selection list.
	MaxLexicalCandidates int `yaml:"max_lexical_candidates"`

	// MaxEmbeddingCandidates caps the embedding selection list.
	MaxEmbeddingCandidates int `yaml:"max_embedding_candidates"`

	// MaxTotalCandidates caps the merged candidate set.
	MaxTotalCandidates int `yaml:"max_total_candidates"`

	// MaxCitationsPerSource bounds citations from one source per span.
	MaxCitationsPerSource int `yaml:"max_citations_per_source"`

	// Weights are the final-score coefficients.
	Weights Weights `yaml:"weights"`

	// MatchScore rewards a token match in the alignment kernel. Must be positive.
	MatchScore int `yaml:"match_score"`

	// MismatchScore penalizes a token mismatch. Must not be positive.
	MismatchScore int `yaml:"mismatch_score"`

	// GapScore penalizes an insertion or deletion. Must not be positive.
	GapScore int `yaml:"gap_score"`

	// PreferSourceOrder breaks score ties by source index before character
	// position; false prefers character position first.
	PreferSourceOrder bool `yaml:"prefer_source_order"`

	// MultiSpanEvidence splits non-contiguous matches into separate
	// evidence spans instead of one enclosing range.
	MultiSpanEvidence bool `yaml:"multi_span_evidence"`

	// MultiSpanMergeGapChars merges evidence spans separated by at most
	// this many characters.
	MultiSpanMergeGapChars int `yaml:"multi_span_merge_gap_chars"`

	// MultiSpanMaxSpans caps evidence spans per citation; exceeding it
	// falls back to one contiguous span.
	MultiSpanMaxSpans int `yaml:"multi_span_max_spans"`

	// Backend selects the execution strategy.
	Backend BackendMode `yaml:"backend"`

	// PoolSize is the parallel backend's worker count. Zero or negative
	// defaults to the number of CPUs.
	PoolSize int `yaml:"pool_size"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithTopK sets the maximum number of citations per answer span.
func WithTopK(k int) ConfigOption {
	return func(c *Config) { c.TopK = k }
}

// WithMinFinalScore sets the minimum weighted final score.
func WithMinFinalScore(s float64) ConfigOption {
	return func(c *Config) { c.MinFinalScore = s }
}

// WithMinAlignmentScore sets the minimum normalized alignment score.
func WithMinAlignmentScore(s float64) ConfigOption {
	return func(c *Config) { c.MinAlignmentScore = s }
}

// WithMinAnswerCoverage sets the minimum answer coverage.
func WithMinAnswerCoverage(c64 float64) ConfigOption {
	return func(c *Config) { c.MinAnswerCoverage = c64 }
}

// WithSupportedAnswerCoverage sets the coverage for supported status.
func WithSupportedAnswerCoverage(c64 float64) ConfigOption {
	return func(c *Config) { c.SupportedAnswerCoverage = c64 }
}

// WithAllowEmbeddingOnly toggles embedding-only citations.
func WithAllowEmbeddingOnly(allow bool) ConfigOption {
	return func(c *Config) { c.AllowEmbeddingOnly = allow }
}

// WithMinEmbeddingSimilarity sets the embedding-only gate.
func WithMinEmbeddingSimilarity(s float64) ConfigOption {
	return func(c *Config) { c.MinEmbeddingSimilarity = s }
}

// WithSupportedEmbeddingSimilarity sets the similarity for supported status
// on embedding-only citations.
func WithSupportedEmbeddingSimilarity(s float64) ConfigOption {
	return func(c *Config) { c.SupportedEmbeddingSimilarity = s }
}

// WithWindow sets the passage window size and stride in sentences.
func WithWindow(size, stride int) ConfigOption {
	return func(c *Config) {
		c.WindowSentences = size
		c.StrideSentences = stride
	}
}

// WithCandidateCaps sets the lexical, embedding and total candidate caps.
func WithCandidateCaps(lexical, embedding, total int) ConfigOption {
	return func(c *Config) {
		c.MaxLexicalCandidates = lexical
		c.MaxEmbeddingCandidates = embedding
		c.MaxTotalCandidates = total
	}
}

// WithMaxCitationsPerSource bounds citations from one source per span.
func WithMaxCitationsPerSource(n int) ConfigOption {
	return func(c *Config) { c.MaxCitationsPerSource = n }
}

// WithWeights replaces the final-score coefficients.
func WithWeights(w Weights) ConfigOption {
	return func(c *Config) { c.Weights = w }
}

// WithAlignmentScores sets the kernel match, mismatch and gap scores.
func WithAlignmentScores(match, mismatch, gap int) ConfigOption {
	return func(c *Config) {
		c.MatchScore = match
		c.MismatchScore = mismatch
		c.GapScore = gap
	}
}

// WithPreferSourceOrder selects the score tie-break preference.
func WithPreferSourceOrder(prefer bool) ConfigOption {
	return func(c *Config) { c.PreferSourceOrder = prefer }
}

// WithMultiSpanEvidence enables multi-span evidence with the given merge
// gap and span cap.
func WithMultiSpanEvidence(mergeGapChars, maxSpans int) ConfigOption {
	return func(c *Config) {
		c.MultiSpanEvidence = true
		c.MultiSpanMergeGapChars = mergeGapChars
		c.MultiSpanMaxSpans = maxSpans
	}
}

// WithBackend selects the execution backend.
func WithBackend(mode BackendMode) ConfigOption {
	return func(c *Config) { c.Backend = mode }
}

// WithPoolSize sets the parallel backend's worker count.
func WithPoolSize(n int) ConfigOption {
	return func(c *Config) { c.PoolSize = n }
}

// DefaultConfig returns a Config with the standard defaults.
func DefaultConfig() Config {
	return Config{
		TopK:                         3,
		MinFinalScore:                0.0,
		MinAlignmentScore:            0.0,
		MinAnswerCoverage:            0.2,
		SupportedAnswerCoverage:      0.6,
		AllowEmbeddingOnly:           false,
		MinEmbeddingSimilarity:       0.3,
		SupportedEmbeddingSimilarity: 0.6,
		WindowSentences:              1,
		StrideSentences:              1,
		MaxLexicalCandidates:         200,
		MaxEmbeddingCandidates:       200,
		MaxTotalCandidates:           400,
		MaxCitationsPerSource:        2,
		Weights:                      DefaultWeights(),
		MatchScore:                   2,
		MismatchScore:                -1,
		GapScore:                     -1,
		PreferSourceOrder:            true,
		MultiSpanEvidence:            false,
		MultiSpanMergeGapChars:       0,
		MultiSpanMaxSpans:            5,
		Backend:                      BackendAuto,
		PoolSize:                     runtime.NumCPU(),
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options. This is the recommended way to build a custom Config.
//
// Example:
//
//	cfg := NewConfig(
//	    WithTopK(5),
//	    WithWindow(2, 1),
//	)
func NewConfig(opts ...ConfigOption) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Normalize fills fields whose zero value has no meaning of its own:
// an empty backend selector, a non-positive pool size and an all-zero
// weight set. Explicitly configured zero thresholds are left alone.
func (c *Config) Normalize() {
	if c.Backend == "" {
		c.Backend = BackendAuto
	}
	if c.PoolSize <= 0 {
		c.PoolSize = runtime.NumCPU()
	}
	if c.Weights == (Weights{}) {
		c.Weights = DefaultWeights()
	}
}

// Validate checks that the configuration is usable. It normalizes first.
// A non-positive TopK is valid: it means "return no citations".
func (c *Config) Validate() error {
	c.Normalize()

	if c.WindowSentences < 1 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrNonPositiveWindow)
	}
	if c.StrideSentences < 1 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrNonPositiveStride)
	}
	if c.MaxLexicalCandidates < 1 || c.MaxEmbeddingCandidates < 1 || c.MaxTotalCandidates < 1 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrNonPositiveCandidates)
	}
	if c.MaxCitationsPerSource < 1 {
		return fmt.Errorf("%w: %w: max citations per source", ErrInvalidConfig, ErrNonPositiveCandidates)
	}
	if c.MatchScore <= 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrInvalidMatchScore)
	}
	if c.MismatchScore > 0 || c.GapScore > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrInvalidPenalty)
	}
	// MinFinalScore is a cut on the weighted sum, which is not bounded by 1,
	// so it is exempt from the range check below.
	for _, t := range []float64{
		c.MinAlignmentScore,
		c.MinAnswerCoverage,
		c.SupportedAnswerCoverage,
		c.MinEmbeddingSimilarity,
		c.SupportedEmbeddingSimilarity,
	} {
		if t < 0 || t > 1 {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrInvalidThreshold)
		}
	}
	if c.MultiSpanMaxSpans < 1 || c.MultiSpanMergeGapChars < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrInvalidMultiSpan)
	}
	switch c.Backend {
	case BackendAuto, BackendReference, BackendParallel:
	default:
		return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, ErrUnknownBackend, c.Backend)
	}
	return nil
}
