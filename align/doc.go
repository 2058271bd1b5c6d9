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


// Package align implements token-level local sequence alignment.
//
// The kernel is a Smith-Waterman variant over integer token sequences:
//   - Align scores one query against one target and returns the best local
//     alignment with its match blocks.
//   - AlignMany runs the kernel independently per target on a Backend.
//   - AlignTopK reduces many targets to the best k under a fixed comparator.
//
// Two backends implement the same contract: a single-threaded reference
// backend and a goroutine-pool backend. Their outputs are identical for any
// input because ties are resolved by a fixed rule (lowest target end, then
// lowest target start, then lowest query start) and the top-k reduction is a
// total order shared by both.
package align
