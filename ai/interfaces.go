package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ClaimExtractor breaks a generated answer into individually checkable
// factual claims.
// Implementations must be thread-safe for concurrent use.
type ClaimExtractor interface {
	// ExtractClaims analyzes an answer and returns its atomic factual
	// claims in the order they appear in the answer. An answer with no
	// checkable content yields an empty slice, not an error.
	ExtractClaims(ctx context.Context, answer string) ([]Claim, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and ClaimExtractor instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// ClaimExtractor returns the claim extraction service.
	// The returned ClaimExtractor is safe for concurrent use.
	ClaimExtractor() ClaimExtractor

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
