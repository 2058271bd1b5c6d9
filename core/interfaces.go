package core

// Tokenizer converts text to integer token identifiers with the exact
// character span each token covers. Identifiers only need to be stable
// within one alignment call; answer and source text must be tokenized by
// the same instance so their identifiers agree.
type Tokenizer interface {
	Tokenize(text string) (TokenizedText, error)
}

// Segmenter splits source text into sentence-level segments with exact
// half-open character offsets into the input.
type Segmenter interface {
	Segment(text string) ([]Segment, error)
}

// AnswerSegmenter splits a generated answer into the spans that request
// citations.
type AnswerSegmenter interface {
	Segment(text string) ([]AnswerSpan, error)
}
