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
	"math"
	"sort"

	"github.com/avaxML/cite-right/core"
)

// Candidate is a passage selected for alignment against one answer span.
type Candidate struct {
	// Passage points into the call's passage slice.
	Passage *core.Passage

	// LexicalScore is the IDF-weighted token overlap with the span, in [0,1].
	LexicalScore float64

	// EmbeddingScore is the cosine similarity between span and passage
	// vectors. Zero when no embedder is configured.
	EmbeddingScore float64

	// SelectionScore is the score that admitted the candidate: the higher
	// of the two list scores when both lists picked it.
	SelectionScore float64

	// Index is the candidate's position in the final selection ordering.
	// It doubles as the target index during alignment, so selection order
	// decides alignment ties between equal passages.
	Index int
}

// selectCandidates merges the lexical and embedding rankings for one span.
// embScores may be nil (no embedder); lexScores and embScores are indexed
// like passages.
func selectCandidates(passages []core.Passage, lexScores, embScores []float64, cfg *core.Config) []Candidate {
	if len(passages) == 0 {
		return nil
	}

	lexTop := rankPassages(lexScores, cfg.MaxLexicalCandidates)

	byPassage := make(map[int]*Candidate, len(lexTop))
	for _, pi := range lexTop {
		byPassage[pi] = &Candidate{
			Passage:        &passages[pi],
			LexicalScore:   lexScores[pi],
			SelectionScore: lexScores[pi],
		}
	}

	if embScores != nil {
		for _, pi := range rankPassages(embScores, cfg.MaxEmbeddingCandidates) {
			if c, ok := byPassage[pi]; ok {
				c.EmbeddingScore = embScores[pi]
				if embScores[pi] > c.SelectionScore {
					c.SelectionScore = embScores[pi]
				}
				continue
			}
			byPassage[pi] = &Candidate{
				Passage:        &passages[pi],
				LexicalScore:   lexScores[pi],
				EmbeddingScore: embScores[pi],
				SelectionScore: embScores[pi],
			}
		}
	}

	selected := make([]Candidate, 0, len(byPassage))
	for _, c := range byPassage {
		selected = append(selected, *c)
	}

	sort.Slice(selected, func(i, j int) bool {
		a, b := &selected[i], &selected[j]
		if a.SelectionScore != b.SelectionScore {
			return a.SelectionScore > b.SelectionScore
		}
		if a.Passage.SourceIndex != b.Passage.SourceIndex {
			return a.Passage.SourceIndex < b.Passage.SourceIndex
		}
		return a.Passage.DocCharStart < b.Passage.DocCharStart
	})

	if len(selected) > cfg.MaxTotalCandidates {
		selected = selected[:cfg.MaxTotalCandidates]
	}
	for i := range selected {
		selected[i].Index = i
	}
	return selected
}

// rankPassages returns the indices of the top limit passages by score,
// score descending with passage index breaking ties.
func rankPassages(scores []float64, limit int) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if scores[a] != scores[b] {
			return scores[a] > scores[b]
		}
		return a < b
	})
	if len(order) > limit {
		order = order[:limit]
	}
	return order
}

// cosineSimilarity tolerates mismatched lengths by truncating to the
// shorter vector. Zero-norm vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
