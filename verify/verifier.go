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


// Package verify checks a generated answer claim by claim. A claim
// extractor breaks the answer into atomic factual statements, each claim is
// aligned against the reference sources on its own, and the results are
// aggregated into a per-answer report. Claims are verified concurrently;
// the report keeps extraction order.
package verify

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/avaxML/cite-right/ai"
	"github.com/avaxML/cite-right/cite"
	"github.com/avaxML/cite-right/core"
)

// DefaultParallelism is the number of claims verified at once when no
// override is given.
const DefaultParallelism = 4

// ClaimResult is the verification outcome for one extracted claim.
type ClaimResult struct {
	Claim     ai.Claim
	Status    core.Status
	Citations []core.Citation
}

// Report aggregates the claim results for one answer.
type Report struct {
	// Claims holds one result per extracted claim, in extraction order.
	Claims []ClaimResult

	// SupportedRatio is the fraction of claims with supported status.
	// An answer with no extractable claims is trivially verified: the
	// ratio is 1 and AllSupported is true.
	SupportedRatio float64

	// AllSupported reports whether every claim is supported.
	AllSupported bool
}

// Verifier couples a claim extractor with an aligner.
type Verifier struct {
	extractor   ai.ClaimExtractor
	aligner     *cite.Aligner
	parallelism int
	logger      *slog.Logger
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithParallelism bounds how many claims are verified concurrently.
// Values below one fall back to serial verification.
func WithParallelism(n int) Option {
	return func(v *Verifier) {
		if n < 1 {
			n = 1
		}
		v.parallelism = n
	}
}

// WithLogger replaces the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Verifier) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// New creates a Verifier from a claim extractor and an aligner.
func New(extractor ai.ClaimExtractor, aligner *cite.Aligner, opts ...Option) (*Verifier, error) {
	if extractor == nil {
		return nil, ErrNoExtractor
	}
	if aligner == nil {
		return nil, ErrNoAligner
	}

	v := &Verifier{
		extractor:   extractor,
		aligner:     aligner,
		parallelism: DefaultParallelism,
		logger:      slog.Default().With("component", "verify"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Verify extracts the answer's claims and aligns each one against the
// sources as an independent single-span query. Extraction errors abort the
// call; so does the first alignment error.
func (v *Verifier) Verify(ctx context.Context, answer string, sources []core.Source) (*Report, error) {
	claims, err := v.extractor.ExtractClaims(ctx, answer)
	if err != nil {
		return nil, fmt.Errorf("extract claims: %w", err)
	}

	v.logger.Debug("claims extracted", "count", len(claims))

	if len(claims) == 0 {
		return &Report{
			Claims:         []ClaimResult{},
			SupportedRatio: 1,
			AllSupported:   true,
		}, nil
	}

	results := make([]ClaimResult, len(claims))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(v.parallelism)
	for i, claim := range claims {
		group.Go(func() error {
			span := core.AnswerSpan{
				Text:      claim.Text,
				CharStart: 0,
				CharEnd:   len(claim.Text),
				Kind:      core.SpanKindClause,
			}

			spanResults, err := v.aligner.AlignSpans(gctx, []core.AnswerSpan{span}, sources)
			if err != nil {
				return fmt.Errorf("align claim %d: %w", i, err)
			}

			result := ClaimResult{Claim: claim, Status: core.StatusUnsupported}
			if len(spanResults) > 0 {
				result.Status = spanResults[0].Status
				result.Citations = spanResults[0].Citations
			}
			results[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	supported := 0
	for _, result := range results {
		if result.Status == core.StatusSupported {
			supported++
		}
	}

	report := &Report{
		Claims:         results,
		SupportedRatio: float64(supported) / float64(len(results)),
		AllSupported:   supported == len(results),
	}

	v.logger.Info("answer verified",
		"claims", len(results),
		"supported", supported,
		"all_supported", report.AllSupported)

	return report, nil
}
