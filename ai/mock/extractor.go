package mock

import (
	"context"
	"strings"

	"github.com/avaxML/cite-right/ai"
)

// MockClaimExtractor is a test double for ai.ClaimExtractor.
// It allows custom behavior injection via function fields.
type MockClaimExtractor struct {
	// ExtractClaimsFunc is called by ExtractClaims if set.
	// If nil, uses default sentence-per-claim behavior.
	ExtractClaimsFunc func(ctx context.Context, answer string) ([]ai.Claim, error)

	callCount int
}

// NewMockClaimExtractor creates a mock claim extractor with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockExtractor().
func NewMockClaimExtractor() *MockClaimExtractor {
	return &MockClaimExtractor{}
}

// ExtractClaims extracts simple mock claims from the answer.
// Default behavior: each sentence becomes one claim quoting itself, in
// answer order, with full confidence.
func (m *MockClaimExtractor) ExtractClaims(ctx context.Context, answer string) ([]ai.Claim, error) {
	m.callCount++

	if m.ExtractClaimsFunc != nil {
		return m.ExtractClaimsFunc(ctx, answer)
	}

	claims := []ai.Claim{}
	for _, sentence := range splitSentences(answer) {
		claims = append(claims, ai.Claim{
			Text:       sentence,
			Quote:      sentence,
			Confidence: 10,
		})
	}
	return claims, nil
}

// CallCount returns the number of times ExtractClaims was called.
func (m *MockClaimExtractor) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockClaimExtractor) Reset() {
	m.callCount = 0
	m.ExtractClaimsFunc = nil
}

// splitSentences cuts text at sentence-ending punctuation. Good enough for
// test fixtures; production extraction is an LLM's job.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
