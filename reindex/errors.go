package reindex

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrStopped is returned by Run when the context is cancelled before
	// the whole corpus has been processed. The partial report is returned
	// alongside it.
	ErrStopped = errors.New("reindex stopped")
)
