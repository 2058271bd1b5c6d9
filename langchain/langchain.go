// Package langchain bridges LangChain documents and alignment sources, so
// corpora loaded or chunked with langchaingo document loaders and text
// splitters can be cited directly.
package langchain

import (
	"github.com/tmc/langchaingo/schema"

	"github.com/avaxML/cite-right/core"
)

// Metadata keys recognized when converting documents.
const (
	// MetadataSource carries the source ID.
	MetadataSource = "source"

	// MetadataDocCharStart carries a chunk's character offset inside its
	// parent document.
	MetadataDocCharStart = "doc_char_start"

	// MetadataDocumentText carries the full parent document text of a
	// chunk.
	MetadataDocumentText = "document_text"
)

// SourcesFromDocuments converts LangChain documents to alignment sources.
// The metadata keys "source", "doc_char_start" and "document_text" populate
// the source ID, chunk offset and parent text; the metadata map itself rides
// along untouched.
func SourcesFromDocuments(docs []schema.Document) []core.Source {
	sources := make([]core.Source, 0, len(docs))
	for _, doc := range docs {
		source := core.Source{
			Text:     doc.PageContent,
			Metadata: doc.Metadata,
		}
		if id, ok := doc.Metadata[MetadataSource].(string); ok {
			source.ID = id
		}
		if start, ok := metadataInt(doc.Metadata[MetadataDocCharStart]); ok {
			source.DocCharStart = start
		}
		if text, ok := doc.Metadata[MetadataDocumentText].(string); ok {
			source.DocumentText = text
		}
		sources = append(sources, source)
	}
	return sources
}

// DocumentsFromSources converts alignment sources back to LangChain
// documents. Source fields win over same-named metadata keys; zero-valued
// fields are omitted, everything else in the metadata is copied through.
func DocumentsFromSources(sources []core.Source) []schema.Document {
	docs := make([]schema.Document, 0, len(sources))
	for _, source := range sources {
		metadata := make(map[string]any, len(source.Metadata)+3)
		for k, v := range source.Metadata {
			metadata[k] = v
		}
		if source.ID != "" {
			metadata[MetadataSource] = source.ID
		}
		if source.DocCharStart != 0 {
			metadata[MetadataDocCharStart] = source.DocCharStart
		}
		if source.DocumentText != "" {
			metadata[MetadataDocumentText] = source.DocumentText
		}
		docs = append(docs, schema.Document{
			PageContent: source.Text,
			Metadata:    metadata,
		})
	}
	return docs
}

// metadataInt accepts the integer types document loaders and JSON
// round-trips produce for offsets.
func metadataInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
