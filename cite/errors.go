package cite

import "errors"

// Construction errors. All are configuration mistakes surfaced at New time,
// never during an alignment call.
var (
	// ErrNoTokenizer indicates a nil tokenizer factory was supplied.
	ErrNoTokenizer = errors.New("tokenizer factory is required")

	// ErrNoSegmenter indicates a nil sentence segmenter was supplied.
	ErrNoSegmenter = errors.New("segmenter is required")

	// ErrNoAnswerSegmenter indicates a nil answer segmenter was supplied.
	ErrNoAnswerSegmenter = errors.New("answer segmenter is required")

	// ErrNoBackend indicates a nil alignment backend was supplied.
	ErrNoBackend = errors.New("alignment backend is required")
)
