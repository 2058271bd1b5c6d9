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

	"github.com/avaxML/cite-right/core"
)

// lexicalIndex scores passages by IDF-weighted token overlap. Document
// frequencies are computed over the passage set of the current call only,
// which keeps lexical scores a pure function of the call's input.
type lexicalIndex struct {
	passageCount float64
	frequency    map[int]int        // token id -> passages containing it
	passages     []map[int]struct{} // unique token set per passage
}

// newLexicalIndex builds the per-call index.
func newLexicalIndex(passages []core.Passage) *lexicalIndex {
	ix := &lexicalIndex{
		passageCount: float64(len(passages)),
		frequency:    make(map[int]int),
		passages:     make([]map[int]struct{}, len(passages)),
	}
	for i, passage := range passages {
		unique := make(map[int]struct{}, len(passage.TokenIDs))
		for _, id := range passage.TokenIDs {
			unique[id] = struct{}{}
		}
		ix.passages[i] = unique
		for id := range unique {
			ix.frequency[id]++
		}
	}
	return ix
}

// idf weights rarer tokens higher: ln(1 + N/(1 + df)). Tokens absent from
// every passage still carry weight in the query mass, pulling the score of
// partial overlaps down.
func (ix *lexicalIndex) idf(id int) float64 {
	return math.Log(1 + ix.passageCount/float64(1+ix.frequency[id]))
}

// scores returns the lexical score of every passage for one query: the IDF
// mass of the overlapping tokens normalized by the query's total IDF mass,
// so scores live in [0, 1]. Summation follows the query's first-seen token
// order, keeping the floats identical across calls.
func (ix *lexicalIndex) scores(queryIDs []int) []float64 {
	out := make([]float64, len(ix.passages))

	seen := make(map[int]struct{}, len(queryIDs))
	unique := make([]int, 0, len(queryIDs))
	for _, id := range queryIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	var mass float64
	for _, id := range unique {
		mass += ix.idf(id)
	}
	if mass == 0 {
		return out
	}

	for i, tokens := range ix.passages {
		var overlap float64
		for _, id := range unique {
			if _, ok := tokens[id]; ok {
				overlap += ix.idf(id)
			}
		}
		out[i] = overlap / mass
	}

	return out
}
