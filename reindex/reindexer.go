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


package reindex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avaxML/cite-right/ai"
	"github.com/avaxML/cite-right/core"
	"github.com/avaxML/cite-right/store"
)

// Config holds configuration for a reindex run.
type Config struct {
	// Model names the embedding model whose vector namespace is rebuilt.
	// Required.
	Model string

	// BatchSize is the number of sources embedded per call
	BatchSize int

	// MaxRetries is the maximum number of attempts per embedding call
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Force re-embeds content even when it already has a vector under
	// Model.
	Force bool

	// Retryable decides which embedding errors are worth another attempt.
	// Nil retries everything.
	Retryable func(error) bool
}

// DefaultConfig returns a Config with sensible defaults. Model must still
// be set by the caller.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:  100,
		MaxRetries: 3,
		RetryDelay: 1 * time.Second,
	}
}

// Report summarizes a reindex run.
type Report struct {
	// Embedded counts sources whose vectors were written during the run.
	Embedded int

	// Skipped counts sources whose content already had a vector.
	Skipped int

	// Failed counts sources whose batch exhausted its embedding attempts.
	Failed int

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration
}

// Reindexer rebuilds the vectors of a stored corpus for one embedding
// model.
type Reindexer struct {
	corpus   store.CorpusStore
	config   *Config
	progress Progress
	embedder *BatchEmbedder
	iterator *SourceIterator
	logger   *slog.Logger
}

// New creates a reindexer. A nil config uses DefaultConfig; a nil
// progress discards progress events.
func New(corpus store.CorpusStore, embedder ai.Embedder, config *Config, progress Progress) *Reindexer {
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = nopProgress{}
	}

	return &Reindexer{
		corpus:   corpus,
		config:   config,
		progress: progress,
		embedder: NewBatchEmbedder(embedder, config.MaxRetries, config.RetryDelay, config.Retryable),
		iterator: NewSourceIterator(corpus, config.BatchSize),
		logger:   slog.Default().With("component", "reindex"),
	}
}

// Run walks the corpus and writes a vector for every source whose content
// does not yet have one under the configured model, or for every source
// when Force is set. A batch that exhausts its embedding attempts is
// counted as failed and the run continues; storage failures abort. When
// the context is cancelled the partial report is returned together with
// ErrStopped.
func (r *Reindexer) Run(ctx context.Context) (*Report, error) {
	if r.config.Model == "" {
		return nil, errors.New("embedding model name is required")
	}

	start := time.Now()

	total, err := r.corpus.CountSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("count sources: %w", err)
	}

	r.progress.Start(total)
	r.logger.Info("reindex started", "model", r.config.Model, "sources", total, "batch_size", r.iterator.batchSize)

	report := &Report{}
	dim := 0

	err = r.iterator.ForEach(ctx, func(batch []core.Source) error {
		pending, skipped, err := r.partition(ctx, batch)
		if err != nil {
			return err
		}
		report.Skipped += skipped

		if len(pending) > 0 {
			texts := make([]string, len(pending))
			for i, source := range pending {
				texts[i] = source.Text
			}

			vectors, err := r.embedder.Embed(ctx, texts)
			switch {
			case err == nil:
				for i, source := range pending {
					contentID := core.ContentIDOf(source.Text)
					if err := r.corpus.PutVector(ctx, r.config.Model, contentID, vectors[i]); err != nil {
						return fmt.Errorf("store vector for %q: %w", source.EffectiveID(), err)
					}
					if dim == 0 {
						dim = len(vectors[i])
					}
				}
				report.Embedded += len(pending)
			case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
				return err
			default:
				r.logger.Warn("batch failed, continuing", "sources", len(pending), "error", err)
				report.Failed += len(pending)
			}
		}

		r.progress.Advance(report.Embedded+report.Skipped+report.Failed, total)
		return nil
	})

	report.Elapsed = time.Since(start)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			r.progress.Done(*report)
			r.logger.Warn("reindex stopped", "embedded", report.Embedded, "skipped", report.Skipped, "failed", report.Failed)
			return report, fmt.Errorf("%w: %w", ErrStopped, err)
		}
		return nil, err
	}

	if report.Embedded > 0 && dim > 0 {
		meta := &store.Meta{EmbeddingModel: r.config.Model, EmbeddingDim: dim}
		if err := r.corpus.SaveMeta(ctx, meta); err != nil {
			return nil, fmt.Errorf("save corpus meta: %w", err)
		}
	}

	r.progress.Done(*report)
	r.logger.Info("reindex complete",
		"embedded", report.Embedded, "skipped", report.Skipped, "failed", report.Failed,
		"elapsed", report.Elapsed.Round(time.Millisecond))

	return report, nil
}

// partition splits a batch into sources that still need a vector and
// counts those whose content already has one.
func (r *Reindexer) partition(ctx context.Context, batch []core.Source) ([]core.Source, int, error) {
	if r.config.Force {
		return batch, 0, nil
	}

	pending := make([]core.Source, 0, len(batch))
	skipped := 0
	for _, source := range batch {
		ok, err := r.corpus.HasVector(ctx, r.config.Model, core.ContentIDOf(source.Text))
		if err != nil {
			return nil, 0, fmt.Errorf("check vector for %q: %w", source.EffectiveID(), err)
		}
		if ok {
			skipped++
			continue
		}
		pending = append(pending, source)
	}

	return pending, skipped, nil
}
