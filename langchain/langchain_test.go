package langchain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/schema"

	"github.com/avaxML/cite-right/cite"
	"github.com/avaxML/cite-right/core"
)

func TestSourcesFromDocuments(t *testing.T) {
	t.Run("whole document", func(t *testing.T) {
		docs := []schema.Document{{
			PageContent: "Mars is red.",
			Metadata:    map[string]any{"source": "notes", "topic": "planets"},
		}}

		sources := SourcesFromDocuments(docs)
		require.Len(t, sources, 1)

		assert.Equal(t, "notes", sources[0].ID)
		assert.Equal(t, "Mars is red.", sources[0].Text)
		assert.Zero(t, sources[0].DocCharStart)
		assert.Empty(t, sources[0].DocumentText)
		assert.Equal(t, docs[0].Metadata, sources[0].Metadata)
	})

	t.Run("chunk with offsets", func(t *testing.T) {
		parent := "Intro filler. Neon glows red."
		docs := []schema.Document{{
			PageContent: "Neon glows red.",
			Metadata: map[string]any{
				"source":         "gases",
				"doc_char_start": 14,
				"document_text":  parent,
			},
		}}

		sources := SourcesFromDocuments(docs)
		require.Len(t, sources, 1)

		assert.Equal(t, "gases", sources[0].ID)
		assert.Equal(t, 14, sources[0].DocCharStart)
		assert.Equal(t, parent, sources[0].DocumentText)
	})

	t.Run("offset type coercion", func(t *testing.T) {
		tests := []struct {
			name  string
			value any
			want  int
		}{
			{"int", 14, 14},
			{"int64", int64(7), 7},
			{"float64 from json", float64(21), 21},
			{"string ignored", "14", 0},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				sources := SourcesFromDocuments([]schema.Document{{
					PageContent: "text",
					Metadata:    map[string]any{"doc_char_start": tt.value},
				}})
				require.Len(t, sources, 1)
				assert.Equal(t, tt.want, sources[0].DocCharStart)
			})
		}
	})

	t.Run("missing metadata", func(t *testing.T) {
		sources := SourcesFromDocuments([]schema.Document{{PageContent: "bare"}})
		require.Len(t, sources, 1)

		assert.Empty(t, sources[0].ID)
		assert.Equal(t, "bare", sources[0].Text)
		assert.Zero(t, sources[0].DocCharStart)
	})

	t.Run("wrong typed id ignored", func(t *testing.T) {
		sources := SourcesFromDocuments([]schema.Document{{
			PageContent: "text",
			Metadata:    map[string]any{"source": 42},
		}})
		require.Len(t, sources, 1)
		assert.Empty(t, sources[0].ID)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, SourcesFromDocuments(nil))
	})
}

func TestDocumentsFromSources(t *testing.T) {
	t.Run("chunk fields become metadata", func(t *testing.T) {
		parent := "Intro filler. Neon glows red."
		sources := []core.Source{{
			ID:           "gases",
			Text:         "Neon glows red.",
			DocCharStart: 14,
			DocumentText: parent,
			Metadata:     map[string]any{"lang": "en"},
		}}

		docs := DocumentsFromSources(sources)
		require.Len(t, docs, 1)

		assert.Equal(t, "Neon glows red.", docs[0].PageContent)
		assert.Equal(t, "gases", docs[0].Metadata["source"])
		assert.Equal(t, 14, docs[0].Metadata["doc_char_start"])
		assert.Equal(t, parent, docs[0].Metadata["document_text"])
		assert.Equal(t, "en", docs[0].Metadata["lang"])
	})

	t.Run("zero fields omitted", func(t *testing.T) {
		docs := DocumentsFromSources([]core.Source{{Text: "Mars is red."}})
		require.Len(t, docs, 1)

		assert.NotContains(t, docs[0].Metadata, "source")
		assert.NotContains(t, docs[0].Metadata, "doc_char_start")
		assert.NotContains(t, docs[0].Metadata, "document_text")
	})

	t.Run("source metadata not mutated", func(t *testing.T) {
		metadata := map[string]any{"lang": "en"}
		DocumentsFromSources([]core.Source{{ID: "x", Text: "t", Metadata: metadata}})

		assert.Equal(t, map[string]any{"lang": "en"}, metadata)
	})
}

func TestRoundTrip(t *testing.T) {
	docs := []schema.Document{{
		PageContent: "Neon glows red.",
		Metadata: map[string]any{
			"source":         "gases",
			"doc_char_start": 14,
			"document_text":  "Intro filler. Neon glows red.",
			"page":           3,
		},
	}}

	back := DocumentsFromSources(SourcesFromDocuments(docs))
	require.Len(t, back, 1)

	assert.Equal(t, docs[0].PageContent, back[0].PageContent)
	assert.Equal(t, docs[0].Metadata, back[0].Metadata)
}

// Chunked documents fed through the adapter must come back with citation
// offsets absolute in the parent document.
func TestAlignConvertedChunk(t *testing.T) {
	aligner, err := cite.New(cite.WithConfig(core.NewConfig(
		core.WithBackend(core.BackendReference),
	)))
	require.NoError(t, err)
	defer aligner.Release()

	parent := "Intro filler. Neon glows red."
	sources := SourcesFromDocuments([]schema.Document{{
		PageContent: "Neon glows red.",
		Metadata: map[string]any{
			"source":         "gases",
			"doc_char_start": 14,
			"document_text":  parent,
		},
	}})

	results, err := aligner.Align(context.Background(), "Neon glows red.", sources)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotEmpty(t, results[0].Citations)

	citation := results[0].Citations[0]
	assert.Equal(t, "gases", citation.SourceID)
	assert.Equal(t, 14, citation.CharStart)
	assert.Equal(t, 28, citation.CharEnd)
	assert.Equal(t, "Neon glows red", citation.Evidence)
}
