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

// Params holds the kernel scoring constants. Match must be positive;
// Mismatch and Gap must not be.
type Params struct {
	Match    int
	Mismatch int
	Gap      int
}

// MatchBlock is one maximal run of matched token pairs inside an alignment.
// Runs are maximal on the target side: consecutive target tokens belong to
// one block even when the query side skipped a token between them.
type MatchBlock struct {
	QueryStart  int
	TargetStart int
	Length      int
}

// Alignment is the best local alignment of a query token sequence against
// one target. Ranges are half-open token indices. The zero value means
// "no alignment found".
type Alignment struct {
	Score       int
	QueryStart  int
	QueryEnd    int
	TargetStart int
	TargetEnd   int
	Matches     int
	Blocks      []MatchBlock
}

// Candidate pairs an Alignment with the index of the target it was
// computed against, for best-of-many reductions.
type Candidate struct {
	Alignment
	TargetIndex int
}

// Traceback pointers. On equal cell values the preference is diagonal,
// then up, then left; the tie-break below depends on this being fixed.
const (
	dirNone byte = iota
	dirDiag
	dirUp
	dirLeft
)

// Align computes the best local alignment of query against target under the
// classic Smith-Waterman recurrence:
//
//	cell(i,j) = max(0, diag+match/mismatch, up+gap, left+gap)
//
// Every cell achieving the global maximum is traced back to a zero cell or
// the matrix edge; ties between the resulting alignments are broken by
// lowest TargetEnd, then TargetStart, then QueryStart, then QueryEnd. The
// result is therefore a pure function of (query, target, p), independent of
// scheduling or backend.
//
// Empty query or target yields the zero Alignment, never an error.
func Align(query, target []int, p Params) Alignment {
	if len(query) == 0 || len(target) == 0 {
		return Alignment{}
	}

	rows := len(query) + 1
	cols := len(target) + 1
	scores := make([]int, rows*cols)
	dirs := make([]byte, rows*cols)

	maxScore := 0
	var maxCells [][2]int

	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			sub := p.Mismatch
			if query[i-1] == target[j-1] {
				sub = p.Match
			}
			diag := scores[(i-1)*cols+j-1] + sub
			up := scores[(i-1)*cols+j] + p.Gap
			left := scores[i*cols+j-1] + p.Gap

			best, dir := diag, dirDiag
			if up > best {
				best, dir = up, dirUp
			}
			if left > best {
				best, dir = left, dirLeft
			}
			if best <= 0 {
				best, dir = 0, dirNone
			}

			idx := i*cols + j
			scores[idx] = best
			dirs[idx] = dir

			if best > maxScore {
				maxScore = best
				maxCells = maxCells[:0]
				maxCells = append(maxCells, [2]int{i, j})
			} else if best == maxScore && best > 0 {
				maxCells = append(maxCells, [2]int{i, j})
			}
		}
	}

	if maxScore == 0 {
		return Alignment{}
	}

	var best Alignment
	for n, cell := range maxCells {
		iEnd, jEnd := cell[0], cell[1]
		iStart, jStart, matches, blocks := traceback(scores, dirs, cols, iEnd, jEnd, query, target)
		cand := Alignment{
			Score:       maxScore,
			QueryStart:  iStart,
			QueryEnd:    iEnd,
			TargetStart: jStart,
			TargetEnd:   jEnd,
			Matches:     matches,
			Blocks:      blocks,
		}
		if n == 0 || lessAlignment(cand, best) {
			best = cand
		}
	}
	return best
}

type matchPair struct {
	q int
	t int
}

// traceback walks pointers from (iEnd, jEnd) to a zero cell or the matrix
// edge and returns the alignment start, the match count and the matched
// pairs merged into target-side runs.
func traceback(scores []int, dirs []byte, cols, iEnd, jEnd int, query, target []int) (iStart, jStart, matches int, blocks []MatchBlock) {
	i, j := iEnd, jEnd
	var pairs []matchPair // collected end-to-start

	for i > 0 && j > 0 {
		idx := i*cols + j
		if dirs[idx] == dirNone || scores[idx] <= 0 {
			break
		}
		switch dirs[idx] {
		case dirDiag:
			i--
			j--
			if query[i] == target[j] {
				pairs = append(pairs, matchPair{q: i, t: j})
			}
		case dirUp:
			i--
		default:
			j--
		}
	}

	if len(pairs) == 0 {
		return i, j, 0, nil
	}

	// Reverse into start-to-end order, then merge runs of consecutive
	// target indices.
	for a, b := 0, len(pairs)-1; a < b; a, b = a+1, b-1 {
		pairs[a], pairs[b] = pairs[b], pairs[a]
	}

	cur := MatchBlock{QueryStart: pairs[0].q, TargetStart: pairs[0].t, Length: 1}
	prev := pairs[0].t
	for _, p := range pairs[1:] {
		if p.t == prev+1 {
			cur.Length++
			prev = p.t
			continue
		}
		blocks = append(blocks, cur)
		cur = MatchBlock{QueryStart: p.q, TargetStart: p.t, Length: 1}
		prev = p.t
	}
	blocks = append(blocks, cur)

	return i, j, len(pairs), blocks
}

// lessAlignment reports whether a precedes b: higher score first, then the
// fixed tie-break (lowest TargetEnd, TargetStart, QueryStart, QueryEnd).
// The order is total for alignments of the same pair.
func lessAlignment(a, b Alignment) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.TargetEnd != b.TargetEnd {
		return a.TargetEnd < b.TargetEnd
	}
	if a.TargetStart != b.TargetStart {
		return a.TargetStart < b.TargetStart
	}
	if a.QueryStart != b.QueryStart {
		return a.QueryStart < b.QueryStart
	}
	return a.QueryEnd < b.QueryEnd
}

// lessCandidate extends lessAlignment with TargetIndex as the final key,
// making the order total across targets. Both backends reduce with this
// comparator, so the top-k result is independent of completion order.
func lessCandidate(a, b Candidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.TargetEnd != b.TargetEnd {
		return a.TargetEnd < b.TargetEnd
	}
	if a.TargetStart != b.TargetStart {
		return a.TargetStart < b.TargetStart
	}
	if a.QueryStart != b.QueryStart {
		return a.QueryStart < b.QueryStart
	}
	if a.QueryEnd != b.QueryEnd {
		return a.QueryEnd < b.QueryEnd
	}
	return a.TargetIndex < b.TargetIndex
}
