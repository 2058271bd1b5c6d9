package ai_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avaxML/cite-right/ai"
	"github.com/avaxML/cite-right/ai/mock"
)

func TestCachedEmbedderEmbedText(t *testing.T) {
	inner := mock.NewMockEmbedder()
	cached := ai.NewCachedEmbedder(inner, time.Minute)
	ctx := context.Background()

	first, err := cached.EmbedText(ctx, "solar output")
	require.NoError(t, err)

	second, err := cached.EmbedText(ctx, "solar output")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.CallCount())
}

func TestCachedEmbedderEmbedTexts(t *testing.T) {
	ctx := context.Background()

	t.Run("embeds only cache misses", func(t *testing.T) {
		inner := mock.NewMockEmbedder()
		cached := ai.NewCachedEmbedder(inner, time.Minute)

		_, err := cached.EmbedText(ctx, "beta")
		require.NoError(t, err)

		var batched []string
		inner.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			batched = texts
			vectors := make([][]float32, len(texts))
			for i, text := range texts {
				vectors[i] = mock.DeterministicVector(text, 8)
			}
			return vectors, nil
		}

		out, err := cached.EmbedTexts(ctx, []string{"alpha", "beta", "gamma"})
		require.NoError(t, err)
		require.Len(t, out, 3)

		assert.Equal(t, []string{"alpha", "gamma"}, batched)
		assert.Equal(t, mock.DeterministicVector("beta", 384), out[1])
		for _, vector := range out {
			assert.NotEmpty(t, vector)
		}
	})

	t.Run("fully cached batch skips the embedder", func(t *testing.T) {
		inner := mock.NewMockEmbedder()
		cached := ai.NewCachedEmbedder(inner, time.Minute)

		_, err := cached.EmbedTexts(ctx, []string{"alpha", "beta"})
		require.NoError(t, err)

		calls := inner.CallCount()
		_, err = cached.EmbedTexts(ctx, []string{"beta", "alpha"})
		require.NoError(t, err)
		assert.Equal(t, calls, inner.CallCount())
	})

	t.Run("short batch from the embedder is an error", func(t *testing.T) {
		inner := mock.NewMockEmbedder()
		inner.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{mock.DeterministicVector(texts[0], 8)}, nil
		}
		cached := ai.NewCachedEmbedder(inner, time.Minute)

		out, err := cached.EmbedTexts(ctx, []string{"alpha", "beta", "gamma"})
		assert.Nil(t, out)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 vectors for 3 texts")
	})
}
