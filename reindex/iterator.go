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

	"github.com/avaxML/cite-right/core"
	"github.com/avaxML/cite-right/store"
)

const (
	// DefaultBatchSize is the default number of sources handed to fn per batch
	DefaultBatchSize = 100
)

// SourceIterator streams stored sources in batches.
type SourceIterator struct {
	corpus    store.CorpusStore
	batchSize int
}

// NewSourceIterator creates a new source iterator.
// batchSize: number of sources per batch (must be > 0)
func NewSourceIterator(corpus store.CorpusStore, batchSize int) *SourceIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &SourceIterator{
		corpus:    corpus,
		batchSize: batchSize,
	}
}

// ForEach walks the corpus in ID order, calling fn once per batch. The
// final batch may be short. Iteration stops on the first error from fn.
// Context cancellation is checked between batches.
func (it *SourceIterator) ForEach(ctx context.Context, fn func([]core.Source) error) error {
	// Check context before starting
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// fn may retain its batch, so each call gets a fresh slice.
	batch := make([]core.Source, 0, it.batchSize)

	err := it.corpus.ForEachSource(ctx, func(source core.Source) error {
		batch = append(batch, source)
		if len(batch) < it.batchSize {
			return nil
		}

		if err := fn(batch); err != nil {
			return err
		}
		batch = make([]core.Source, 0, it.batchSize)

		// Check context after each batch
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		return nil
	})
	if err != nil {
		return err
	}

	if len(batch) > 0 {
		return fn(batch)
	}

	return nil
}
