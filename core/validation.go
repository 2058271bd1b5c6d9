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

import "fmt"

// ValidateSource validates a Source according to domain rules.
//
// Validation rules:
//   - DocCharStart must not be negative
//   - when DocumentText is set, the chunk range must lie inside it
//
// NOT validated:
//   - ID (empty means "derive from content")
//   - Text (an empty source simply yields no passages)
func ValidateSource(source *Source) error {
	if source == nil {
		return fmt.Errorf("%w: source is nil", ErrInvalidSource)
	}

	if source.DocCharStart < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSource, ErrNegativeOffset)
	}

	if source.DocumentText != "" && source.DocCharEnd() > len(source.DocumentText) {
		return fmt.Errorf("%w: %w", ErrInvalidSource, ErrChunkOutOfBounds)
	}

	return nil
}

// ValidateAnswerSpan validates an AnswerSpan according to domain rules.
//
// Validation rules:
//   - offsets must not be negative
//   - CharStart must not exceed CharEnd
//   - the recorded range must match the text length
func ValidateAnswerSpan(span *AnswerSpan) error {
	if span == nil {
		return fmt.Errorf("%w: span is nil", ErrInvalidSpan)
	}

	if span.CharStart < 0 || span.CharEnd < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSpan, ErrNegativeOffset)
	}

	if span.CharStart > span.CharEnd {
		return fmt.Errorf("%w: %w", ErrInvalidSpan, ErrReversedRange)
	}

	if span.CharEnd-span.CharStart != len(span.Text) {
		return fmt.Errorf("%w: span range covers %d bytes but text has %d",
			ErrInvalidSpan, span.CharEnd-span.CharStart, len(span.Text))
	}

	return nil
}
