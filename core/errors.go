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


package core

import "errors"

// Configuration errors
var (
	// ErrInvalidConfig indicates a Config failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNonPositiveWindow indicates a window size below one sentence.
	ErrNonPositiveWindow = errors.New("window size must be at least 1 sentence")

	// ErrNonPositiveStride indicates a window stride below one sentence.
	ErrNonPositiveStride = errors.New("window stride must be at least 1 sentence")

	// ErrNonPositiveCandidates indicates a candidate cap below one.
	ErrNonPositiveCandidates = errors.New("candidate caps must be at least 1")

	// ErrInvalidMatchScore indicates a non-positive match score.
	ErrInvalidMatchScore = errors.New("match score must be positive")

	// ErrInvalidPenalty indicates a positive mismatch or gap score.
	ErrInvalidPenalty = errors.New("mismatch and gap scores must not be positive")

	// ErrInvalidThreshold indicates a score threshold outside [0, 1].
	ErrInvalidThreshold = errors.New("score thresholds must lie in [0, 1]")

	// ErrInvalidMultiSpan indicates an invalid multi-span evidence setting.
	ErrInvalidMultiSpan = errors.New("multi-span settings must allow at least 1 span and a non-negative merge gap")

	// ErrUnknownBackend indicates an unrecognized backend selector.
	ErrUnknownBackend = errors.New("unknown alignment backend")
)

// Input errors
var (
	// ErrInvalidSource indicates a Source failed validation.
	ErrInvalidSource = errors.New("invalid source")

	// ErrInvalidSpan indicates an AnswerSpan failed validation.
	ErrInvalidSpan = errors.New("invalid answer span")

	// ErrNegativeOffset indicates a negative character offset.
	ErrNegativeOffset = errors.New("character offsets must not be negative")

	// ErrReversedRange indicates a range whose start exceeds its end.
	ErrReversedRange = errors.New("range start exceeds range end")

	// ErrChunkOutOfBounds indicates a chunk that does not fit inside its document text.
	ErrChunkOutOfBounds = errors.New("chunk range exceeds document text")
)
