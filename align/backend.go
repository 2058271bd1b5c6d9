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
	"sort"
)

// Backend executes the alignment kernel against a batch of targets.
// Implementations must be safe for concurrent use, and for identical input
// must produce identical output regardless of scheduling: the kernel itself
// is deterministic and each target is aligned independently.
type Backend interface {
	// AlignMany aligns query against every target. Result i is the
	// alignment for targets[i].
	AlignMany(ctx context.Context, query []int, targets [][]int, p Params) ([]Alignment, error)

	// Name identifies the backend in logs.
	Name() string
}

// Reference is the single-threaded backend. It is the correctness oracle
// the parallel backend is tested against.
type Reference struct{}

var _ Backend = (*Reference)(nil)

// NewReference returns the single-threaded backend.
func NewReference() *Reference {
	return &Reference{}
}

// Name implements Backend.
func (*Reference) Name() string { return "reference" }

// AlignMany aligns query against each target in index order.
func (*Reference) AlignMany(ctx context.Context, query []int, targets [][]int, p Params) ([]Alignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Alignment, len(targets))
	for i, target := range targets {
		out[i] = Align(query, target, p)
	}
	return out, nil
}

// AlignTopK aligns query against every target on b and returns the best k
// candidates ordered by score descending, then the kernel tie-break, then
// TargetIndex ascending. k <= 0 or an empty target list yields nil.
func AlignTopK(ctx context.Context, b Backend, query []int, targets [][]int, p Params, k int) ([]Candidate, error) {
	if k <= 0 || len(targets) == 0 {
		return nil, nil
	}
	alignments, err := b.AlignMany(ctx, query, targets, p)
	if err != nil {
		return nil, err
	}
	candidates := make([]Candidate, len(alignments))
	for i, a := range alignments {
		candidates[i] = Candidate{Alignment: a, TargetIndex: i}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return lessCandidate(candidates[i], candidates[j])
	})
	if k < len(candidates) {
		candidates = candidates[:k]
	}
	return candidates, nil
}

// AlignBest returns the single best candidate. The boolean is false when
// there are no targets.
func AlignBest(ctx context.Context, b Backend, query []int, targets [][]int, p Params) (Candidate, bool, error) {
	top, err := AlignTopK(ctx, b, query, targets, p, 1)
	if err != nil || len(top) == 0 {
		return Candidate{}, false, err
	}
	return top[0], true, nil
}
