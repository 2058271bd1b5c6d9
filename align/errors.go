package align

import "errors"

// Backend construction and selection errors.
var (
	// ErrBackendUnavailable indicates the parallel worker pool could not
	// be built. Under forced-parallel selection this is a configuration
	// error; under automatic selection callers fall back to the reference
	// backend instead.
	ErrBackendUnavailable = errors.New("alignment backend unavailable")
)
