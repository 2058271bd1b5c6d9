package verify

import "errors"

var (
	// ErrNoExtractor indicates a nil claim extractor was supplied.
	ErrNoExtractor = errors.New("claim extractor is required")

	// ErrNoAligner indicates a nil aligner was supplied.
	ErrNoAligner = errors.New("aligner is required")
)
