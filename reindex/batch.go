package reindex

import (
	"context"
	"fmt"
	"time"

	"github.com/avaxML/cite-right/ai"
)

// BatchEmbedder generates normalized embeddings for batches of text,
// with bounded retry around the embedding call.
type BatchEmbedder struct {
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
	retryable      func(error) bool
}

// NewBatchEmbedder creates a new batch embedder.
// maxRetries: maximum number of attempts per embedding call
// retryBaseDelay: base delay for exponential backoff
// retryable: decides which embedding errors are worth another attempt;
// nil retries everything
func NewBatchEmbedder(embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration, retryable func(error) bool) *BatchEmbedder {
	return &BatchEmbedder{
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
		retryable:      retryable,
	}
}

// Embed returns one unit-length vector per input text.
func (be *BatchEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = be.embedder.EmbedTexts(ctx, texts)
		return err
	}, be.maxRetries, be.retryBaseDelay, be.retryable)
	if err != nil {
		return nil, fmt.Errorf("generate embeddings: %w", err)
	}

	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(texts), len(embeddings))
	}

	for i := range embeddings {
		embeddings[i] = NormalizeVector(embeddings[i])
	}

	return embeddings, nil
}
