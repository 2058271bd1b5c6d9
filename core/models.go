package core

import (
	"encoding/binary"
	"strconv"

	"github.com/go-crypt/x/blake2b"
)

// ContentID is a deterministic 64-bit fingerprint of a piece of text.
// It is used for default source identifiers and embedding-cache keys.
type ContentID uint64

// ContentIDOf generates a deterministic ContentID from text using BLAKE2b hashing.
// Identical content produces identical IDs.
func ContentIDOf(text string) ContentID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ContentID(binary.LittleEndian.Uint64(sum))
}

// SourceIDFromContent derives a stable string identifier for a source whose
// caller did not assign one.
func SourceIDFromContent(text string) string {
	return "src-" + strconv.FormatUint(uint64(ContentIDOf(text)), 16)
}

// Span is a half-open [Start, End) character range measured in bytes.
type Span struct {
	Start int
	End   int
}

// Len returns the length of the span in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// TokenizedText is the output of a Tokenizer: the original text with parallel
// slices of token identifiers and the character span each token covers.
// IDs[i] and Spans[i] describe the same token.
type TokenizedText struct {
	Text  string
	IDs   []int
	Spans []Span
}

// Segment is one sentence-level unit of segmented text, with half-open
// character offsets into the text that was segmented.
type Segment struct {
	Text         string
	DocCharStart int
	DocCharEnd   int
}

// SpanKind classifies the unit an AnswerSpan represents.
type SpanKind string

const (
	SpanKindSentence  SpanKind = "sentence"
	SpanKindClause    SpanKind = "clause"
	SpanKindParagraph SpanKind = "paragraph"
)

// AnswerSpan is one unit of the generated answer requesting citation.
// Offsets are absolute character positions in the full answer text.
type AnswerSpan struct {
	Text           string
	CharStart      int
	CharEnd        int
	Kind           SpanKind
	ParagraphIndex int
	SentenceIndex  int
}

// Source is a reference document or a pre-offset chunk of one.
//
// A whole document leaves DocCharStart zero and DocumentText empty. A chunk
// sets DocCharStart to its offset inside the parent document and may carry
// the full parent text in DocumentText; all returned citation offsets are
// absolute in the parent either way.
type Source struct {
	ID           string
	Text         string
	DocCharStart int
	DocumentText string
	Metadata     map[string]any
}

// EffectiveID returns the caller-assigned ID, or a content fingerprint when
// none was assigned.
func (s *Source) EffectiveID() string {
	if s.ID != "" {
		return s.ID
	}
	return SourceIDFromContent(s.Text)
}

// DocCharEnd returns the absolute end offset of this source's text.
func (s *Source) DocCharEnd() int {
	return s.DocCharStart + len(s.Text)
}

// Excerpt returns the text between two absolute character offsets,
// resolving against DocumentText when present and against Text otherwise.
func (s *Source) Excerpt(charStart, charEnd int) string {
	if s.DocumentText != "" {
		return s.DocumentText[charStart:charEnd]
	}
	return s.Text[charStart-s.DocCharStart : charEnd-s.DocCharStart]
}

// Passage is an immutable window of one source used as an alignment target.
// TokenSpans hold absolute offsets into the parent document, so evidence
// positions fall out of the token ranges directly.
type Passage struct {
	SourceIndex  int
	DocCharStart int
	DocCharEnd   int
	Text         string
	TokenIDs     []int
	TokenSpans   []Span
}

// EvidenceSpan is one contiguous character range offered as support,
// carrying the exact substring it covers.
type EvidenceSpan struct {
	CharStart int
	CharEnd   int
	Text      string
}

// Component breakdown keys reported on every citation.
const (
	ComponentAlignmentScore   = "alignment_score"
	ComponentAnswerCoverage   = "answer_coverage"
	ComponentEvidenceCoverage = "evidence_coverage"
	ComponentLexicalScore     = "lexical_score"
	ComponentEmbeddingScore   = "embedding_score"
	ComponentEmbeddingOnly    = "embedding_only"
	ComponentNumEvidenceSpans = "num_evidence_spans"
)

// Citation is one ranked piece of evidence for an answer span.
//
// CharStart/CharEnd delimit the enclosing contiguous evidence range and
// Evidence is exactly that substring of the source document. When multi-span
// evidence is enabled, EvidenceSpans carries the non-contiguous pieces; in
// single-span mode it holds one span equal to the enclosing range.
type Citation struct {
	Score          float64
	SourceID       string
	SourceIndex    int
	CandidateIndex int
	CharStart      int
	CharEnd        int
	Evidence       string
	EvidenceSpans  []EvidenceSpan
	Components     map[string]float64
}

// Status reports how well an answer span is backed by the selected evidence.
type Status string

const (
	// StatusSupported means the best citation clears the supported threshold.
	StatusSupported Status = "supported"
	// StatusPartial means citations exist but none clears the supported threshold.
	StatusPartial Status = "partial"
	// StatusUnsupported means no citation survived filtering.
	StatusUnsupported Status = "unsupported"
)

// SpanResult pairs an answer span with its ranked citations.
type SpanResult struct {
	AnswerSpan AnswerSpan
	Citations  []Citation
	Status     Status
}
