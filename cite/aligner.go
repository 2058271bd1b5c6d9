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
	"context"
	"log/slog"

	"github.com/avaxML/cite-right/ai"
	"github.com/avaxML/cite-right/align"
	"github.com/avaxML/cite-right/core"
	"github.com/avaxML/cite-right/text"
)

// Aligner locates evidence in reference sources for answer spans.
// It is safe for concurrent use; every call builds its own tokenizer,
// passages and scores and discards them afterwards.
type Aligner struct {
	cfg              core.Config
	tokenizerFactory func() core.Tokenizer
	segmenter        core.Segmenter
	answerSegmenter  core.AnswerSegmenter
	embedder         ai.Embedder
	backend          align.Backend
	ownedBackend     *align.Parallel
	logger           *slog.Logger
}

// Option configures an Aligner.
type Option func(*Aligner) error

// WithConfig replaces the default configuration. The config is validated
// during New.
func WithConfig(cfg core.Config) Option {
	return func(a *Aligner) error {
		a.cfg = cfg
		return nil
	}
}

// WithTokenizerFactory sets the factory building the per-call tokenizer.
// One tokenizer instance serves a whole call so answer and source token
// identifiers agree.
func WithTokenizerFactory(factory func() core.Tokenizer) Option {
	return func(a *Aligner) error {
		if factory == nil {
			return ErrNoTokenizer
		}
		a.tokenizerFactory = factory
		return nil
	}
}

// WithSegmenter sets the sentence segmenter applied to source text.
func WithSegmenter(segmenter core.Segmenter) Option {
	return func(a *Aligner) error {
		if segmenter == nil {
			return ErrNoSegmenter
		}
		a.segmenter = segmenter
		return nil
	}
}

// WithAnswerSegmenter sets the segmenter Align uses to split answers.
func WithAnswerSegmenter(segmenter core.AnswerSegmenter) Option {
	return func(a *Aligner) error {
		if segmenter == nil {
			return ErrNoAnswerSegmenter
		}
		a.answerSegmenter = segmenter
		return nil
	}
}

// WithEmbedder enables embedding-based candidate selection and scoring.
// Without one, selection is lexical only.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(a *Aligner) error {
		a.embedder = embedder
		return nil
	}
}

// WithAlignBackend overrides the configured backend selection with a
// caller-managed backend. The caller keeps ownership: Release will not
// touch it.
func WithAlignBackend(backend align.Backend) Option {
	return func(a *Aligner) error {
		if backend == nil {
			return ErrNoBackend
		}
		a.backend = backend
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aligner) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// New creates an Aligner with the default word tokenizer, sentence
// segmenter and answer splitter, then applies the options and validates
// the configuration.
func New(opts ...Option) (*Aligner, error) {
	a := &Aligner{
		cfg:              core.DefaultConfig(),
		tokenizerFactory: func() core.Tokenizer { return text.NewWordTokenizer() },
		segmenter:        text.NewSentenceSegmenter(),
		answerSegmenter:  text.NewAnswerSplitter(),
		logger:           slog.Default().With("component", "cite"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}

	if a.backend == nil {
		if err := a.selectBackend(); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// selectBackend builds the backend the configuration asks for. Auto mode
// prefers the parallel backend and quietly falls back to the reference
// implementation when the pool cannot be built; forced parallel mode
// surfaces the failure.
func (a *Aligner) selectBackend() error {
	switch a.cfg.Backend {
	case core.BackendReference:
		a.backend = align.NewReference()
	case core.BackendParallel:
		pool, err := align.NewParallel(a.cfg.PoolSize, align.WithLogger(a.logger))
		if err != nil {
			return err
		}
		a.backend = pool
		a.ownedBackend = pool
	default: // core.BackendAuto
		pool, err := align.NewParallel(a.cfg.PoolSize, align.WithLogger(a.logger))
		if err != nil {
			a.logger.Debug("parallel backend unavailable, using reference", "err", err)
			a.backend = align.NewReference()
			break
		}
		a.backend = pool
		a.ownedBackend = pool
	}
	return nil
}

// BackendName reports which alignment backend the Aligner runs on.
func (a *Aligner) BackendName() string {
	return a.backend.Name()
}

// Release frees the worker pool when the Aligner owns one. The Aligner
// must not be used after Release.
func (a *Aligner) Release() {
	if a.ownedBackend != nil {
		a.ownedBackend.Release()
		a.ownedBackend = nil
	}
}

// Align splits the answer into spans and aligns each against the sources.
// A blank answer yields an empty result list.
func (a *Aligner) Align(ctx context.Context, answer string, sources []core.Source) ([]core.SpanResult, error) {
	spans, err := a.answerSegmenter.Segment(answer)
	if err != nil {
		return nil, err
	}
	return a.AlignSpans(ctx, spans, sources)
}

// AlignSpans aligns the given answer spans against the sources and returns
// one SpanResult per span, in span order.
func (a *Aligner) AlignSpans(ctx context.Context, spans []core.AnswerSpan, sources []core.Source) ([]core.SpanResult, error) {
	return a.AlignSpansWithMonitor(ctx, spans, sources, nil)
}

// AlignSpansWithMonitor aligns answer spans with monitoring. The monitor
// receives callbacks at each stage of the pipeline.
func (a *Aligner) AlignSpansWithMonitor(ctx context.Context, spans []core.AnswerSpan, sources []core.Source, monitor AlignMonitor) ([]core.SpanResult, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	for i := range spans {
		if err := core.ValidateAnswerSpan(&spans[i]); err != nil {
			return nil, err
		}
	}
	for i := range sources {
		if err := core.ValidateSource(&sources[i]); err != nil {
			return nil, err
		}
	}

	monitor.Start(spans, len(sources))

	if len(spans) == 0 {
		monitor.Finish(nil)
		return []core.SpanResult{}, nil
	}
	if len(sources) == 0 {
		results := make([]core.SpanResult, len(spans))
		for i, span := range spans {
			results[i] = core.SpanResult{AnswerSpan: span, Status: core.StatusUnsupported}
		}
		monitor.Finish(results)
		return results, nil
	}

	tokenizer := a.tokenizerFactory()

	// 1. Segment, tokenize and window every source once.
	var passages []core.Passage
	for i := range sources {
		source := &sources[i]
		segments, err := a.segmenter.Segment(source.Text)
		if err != nil {
			a.logger.Error("segmenting source failed", "source", source.EffectiveID(), "err", err)
			return nil, err
		}
		tokenized, err := tokenizer.Tokenize(source.Text)
		if err != nil {
			a.logger.Error("tokenizing source failed", "source", source.EffectiveID(), "err", err)
			return nil, err
		}
		passages = append(passages, buildPassages(i, source, segments, tokenized,
			a.cfg.WindowSentences, a.cfg.StrideSentences)...)
	}
	monitor.AfterWindowing(passages)

	// 2. Embed all passage and span texts in two batches.
	var passageVecs, spanVecs [][]float32
	if a.embedder != nil && len(passages) > 0 {
		texts := make([]string, len(passages))
		for i := range passages {
			texts[i] = passages[i].Text
		}
		var err error
		passageVecs, err = a.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			a.logger.Error("embedding passages failed", "passages", len(passages), "err", err)
			return nil, err
		}
		spanTexts := make([]string, len(spans))
		for i := range spans {
			spanTexts[i] = spans[i].Text
		}
		spanVecs, err = a.embedder.EmbedTexts(ctx, spanTexts)
		if err != nil {
			a.logger.Error("embedding answer spans failed", "spans", len(spans), "err", err)
			return nil, err
		}
		monitor.AfterEmbedding(len(spanVecs), len(passageVecs))
	}

	lexical := newLexicalIndex(passages)
	params := align.Params{
		Match:    a.cfg.MatchScore,
		Mismatch: a.cfg.MismatchScore,
		Gap:      a.cfg.GapScore,
	}

	// 3. Per span: select candidates, align, score, rank.
	results := make([]core.SpanResult, 0, len(spans))
	for si := range spans {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		span := spans[si]
		monitor.SpanStart(span)

		query, err := tokenizer.Tokenize(span.Text)
		if err != nil {
			a.logger.Error("tokenizing answer span failed", "span", span.Text, "err", err)
			return nil, err
		}

		lexScores := lexical.scores(query.IDs)
		var embScores []float64
		if passageVecs != nil {
			embScores = make([]float64, len(passages))
			for pi := range passages {
				embScores[pi] = cosineSimilarity(spanVecs[si], passageVecs[pi])
			}
		}

		candidates := selectCandidates(passages, lexScores, embScores, &a.cfg)
		monitor.AfterSelection(span, candidates)

		result, err := a.alignSpan(ctx, span, query.IDs, candidates, sources, params, monitor)
		if err != nil {
			return nil, err
		}
		monitor.SpanFinish(result)
		results = append(results, result)
	}

	monitor.Finish(results)
	return results, nil
}

// alignSpan runs the alignment backend over one span's candidates and
// reduces the alignments to ranked citations.
func (a *Aligner) alignSpan(ctx context.Context, span core.AnswerSpan, queryIDs []int, candidates []Candidate, sources []core.Source, params align.Params, monitor AlignMonitor) (core.SpanResult, error) {
	targets := make([][]int, len(candidates))
	for i := range candidates {
		targets[i] = candidates[i].Passage.TokenIDs
	}

	alignments, err := a.backend.AlignMany(ctx, queryIDs, targets, params)
	if err != nil {
		a.logger.Error("alignment failed", "backend", a.backend.Name(), "err", err)
		return core.SpanResult{}, err
	}
	monitor.AfterAlignment(span, alignments)

	citations := make([]core.Citation, 0, len(candidates))
	aligned := make([]bool, len(candidates))
	for i := range candidates {
		cand := &candidates[i]
		source := &sources[cand.Passage.SourceIndex]
		if citation, ok := buildCitation(alignments[i], len(queryIDs), cand, source, &a.cfg); ok {
			citations = append(citations, citation)
			aligned[i] = true
		}
	}

	// Candidates whose alignment produced nothing may still be cited on
	// embedding similarity alone.
	if a.cfg.AllowEmbeddingOnly && a.embedder != nil {
		for i := range candidates {
			cand := &candidates[i]
			if aligned[i] || cand.EmbeddingScore < a.cfg.MinEmbeddingSimilarity {
				continue
			}
			source := &sources[cand.Passage.SourceIndex]
			citations = append(citations, buildEmbeddingOnlyCitation(cand, source))
		}
	}

	ranked, status := finalizeCitations(citations, &a.cfg)
	return core.SpanResult{AnswerSpan: span, Citations: ranked, Status: status}, nil
}
