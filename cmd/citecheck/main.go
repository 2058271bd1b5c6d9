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


// citecheck cross-checks the parallel alignment backend against the
// single-threaded reference backend on randomized inputs. Any divergence
// is a defect in one of the backends; the tool prints the reproducing
// seed and exits non-zero.
//
// Two layers are exercised per iteration: the raw kernel batch operation
// over random token sequences (built to contain score ties), and the full
// citation pipeline over a randomized corpus with an answer stitched from
// corpus fragments.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"reflect"
	"strings"

	"github.com/avaxML/cite-right/align"
	"github.com/avaxML/cite-right/cite"
	"github.com/avaxML/cite-right/core"
)

var words = strings.Fields(
	"acme plant revenue billion dollars reported growth quarter output " +
		"solar panels doubled opened market share price profit margin region " +
		"europe asia decline steady annual report fiscal year record")

func main() {
	iterations := flag.Int("iterations", 200, "iterations to run")
	seed := flag.Int64("seed", 1, "base random seed")
	poolSize := flag.Int("pool", 4, "parallel backend worker count")
	maxSources := flag.Int("max-sources", 4, "maximum sources per corpus")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	parallel, err := align.NewParallel(*poolSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parallel backend unavailable: %v\n", err)
		os.Exit(1)
	}
	defer parallel.Release()
	reference := align.NewReference()

	ctx := context.Background()
	for i := 0; i < *iterations; i++ {
		rng := rand.New(rand.NewSource(*seed + int64(i)))

		if err := checkKernel(ctx, rng, reference, parallel); err != nil {
			fmt.Fprintf(os.Stderr, "kernel divergence at seed %d: %v\n", *seed+int64(i), err)
			os.Exit(1)
		}
		if err := checkPipeline(ctx, rng, parallel, *maxSources); err != nil {
			fmt.Fprintf(os.Stderr, "pipeline divergence at seed %d: %v\n", *seed+int64(i), err)
			os.Exit(1)
		}
	}

	fmt.Printf("OK: %d iterations, no divergence\n", *iterations)
}

// checkKernel compares AlignMany and AlignTopK across backends on random
// token sequences. Targets are drawn from a tiny id alphabet so equal-score
// alignments are common and the tie-break rule is actually exercised.
func checkKernel(ctx context.Context, rng *rand.Rand, reference, parallel align.Backend) error {
	params := align.Params{Match: 2, Mismatch: -1, Gap: -1}

	query := randomIDs(rng, 1+rng.Intn(12), 4)
	targets := make([][]int, 1+rng.Intn(20))
	for i := range targets {
		targets[i] = randomIDs(rng, rng.Intn(30), 4)
	}
	// Duplicated targets guarantee ties in the top-k reduction.
	if len(targets) > 1 {
		targets[len(targets)-1] = targets[0]
	}

	refMany, err := reference.AlignMany(ctx, query, targets, params)
	if err != nil {
		return err
	}
	parMany, err := parallel.AlignMany(ctx, query, targets, params)
	if err != nil {
		return err
	}
	if !reflect.DeepEqual(refMany, parMany) {
		return fmt.Errorf("AlignMany mismatch:\nreference: %+v\nparallel:  %+v", refMany, parMany)
	}

	k := 1 + rng.Intn(5)
	refTop, err := align.AlignTopK(ctx, reference, query, targets, params, k)
	if err != nil {
		return err
	}
	parTop, err := align.AlignTopK(ctx, parallel, query, targets, params, k)
	if err != nil {
		return err
	}
	if !reflect.DeepEqual(refTop, parTop) {
		return fmt.Errorf("AlignTopK mismatch:\nreference: %+v\nparallel:  %+v", refTop, parTop)
	}
	return nil
}

// checkPipeline aligns a stitched answer against a random corpus on both
// backends and requires byte-identical SpanResult lists.
func checkPipeline(ctx context.Context, rng *rand.Rand, parallel align.Backend, maxSources int) error {
	sources := randomCorpus(rng, maxSources)
	answer := stitchedAnswer(rng, sources)

	cfg := core.NewConfig(
		core.WithTopK(1+rng.Intn(4)),
		core.WithWindow(1+rng.Intn(3), 1+rng.Intn(2)),
		core.WithMultiSpanEvidence(rng.Intn(10), 1+rng.Intn(5)),
	)
	if rng.Intn(2) == 0 {
		cfg.MultiSpanEvidence = false
	}
	cfg.PreferSourceOrder = rng.Intn(2) == 0

	run := func(backend align.Backend) ([]core.SpanResult, error) {
		aligner, err := cite.New(cite.WithConfig(cfg), cite.WithAlignBackend(backend))
		if err != nil {
			return nil, err
		}
		return aligner.Align(ctx, answer, sources)
	}

	refResults, err := run(align.NewReference())
	if err != nil {
		return err
	}
	parResults, err := run(parallel)
	if err != nil {
		return err
	}
	if !reflect.DeepEqual(refResults, parResults) {
		return fmt.Errorf("SpanResult mismatch:\nanswer: %q\nreference: %+v\nparallel:  %+v",
			answer, refResults, parResults)
	}
	return nil
}

func randomIDs(rng *rand.Rand, n, alphabet int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = 1 + rng.Intn(alphabet)
	}
	return ids
}

// randomCorpus builds 1..max sources of random sentences. A small word
// list keeps lexical overlap high so candidates survive selection.
func randomCorpus(rng *rand.Rand, max int) []core.Source {
	sources := make([]core.Source, 1+rng.Intn(max))
	for i := range sources {
		var b strings.Builder
		for s := 0; s < 2+rng.Intn(4); s++ {
			for w := 0; w < 3+rng.Intn(8); w++ {
				if w > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(words[rng.Intn(len(words))])
			}
			b.WriteString(". ")
		}
		sources[i] = core.Source{
			ID:   fmt.Sprintf("doc-%d", i),
			Text: strings.TrimSpace(b.String()),
		}
	}
	return sources
}

// stitchedAnswer mixes fragments copied from the corpus with random words,
// so some spans align cleanly and others only partially.
func stitchedAnswer(rng *rand.Rand, sources []core.Source) string {
	var b strings.Builder
	for s := 0; s < 1+rng.Intn(3); s++ {
		source := sources[rng.Intn(len(sources))]
		fields := strings.Fields(source.Text)
		start := rng.Intn(len(fields))
		end := start + 1 + rng.Intn(6)
		if end > len(fields) {
			end = len(fields)
		}
		fragment := strings.TrimRight(strings.Join(fields[start:end], " "), ".")
		b.WriteString(fragment)
		if rng.Intn(2) == 0 {
			b.WriteByte(' ')
			b.WriteString(words[rng.Intn(len(words))])
		}
		b.WriteString(". ")
	}
	return strings.TrimSpace(b.String())
}
