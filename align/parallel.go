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


package align

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// Parallel fans a batch of alignments across a worker pool. Each task
// computes its own DP matrix and writes one caller-indexed result slot, so
// tasks share no mutable state and the output is identical to the
// reference backend's for any input.
type Parallel struct {
	pool   *ants.Pool
	logger *slog.Logger
}

var _ Backend = (*Parallel)(nil)

// ParallelOption configures a Parallel backend.
type ParallelOption func(*Parallel) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ParallelOption {
	return func(p *Parallel) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewParallel creates a pool-backed backend with size workers.
// A non-positive size defaults to runtime.NumCPU(). Pool construction
// failure is reported as ErrBackendUnavailable.
func NewParallel(size int, opts ...ParallelOption) (*Parallel, error) {
	if size < 1 {
		size = runtime.NumCPU()
	}

	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	p := &Parallel{
		pool:   pool,
		logger: slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(p); err != nil {
			pool.Release()
			return nil, err
		}
	}

	return p, nil
}

// Name implements Backend.
func (*Parallel) Name() string { return "parallel" }

// AlignMany aligns query against every target, one pool task per target.
// Tasks that cannot be submitted run inline on the caller's goroutine, so
// the result never depends on pool health.
func (p *Parallel) AlignMany(ctx context.Context, query []int, targets [][]int, params Params) ([]Alignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]Alignment, len(targets))
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			out[i] = Align(query, target, params)
		})
		if err != nil {
			p.logger.Warn("pool submit failed, aligning inline", "targetIndex", i, "err", err)
			out[i] = Align(query, target, params)
			wg.Done()
		}
	}
	wg.Wait()

	return out, nil
}

// Release returns the pool's resources. The backend must not be used
// afterwards.
func (p *Parallel) Release() {
	p.pool.Release()
}
