package store

import (
	"context"
	"time"

	"github.com/avaxML/cite-right/core"
)

// Meta describes the state of a stored corpus.
type Meta struct {
	// EmbeddingModel names the model whose vectors the corpus currently
	// carries. Empty until the first embedding pass.
	EmbeddingModel string

	// EmbeddingDim is the dimensionality of the stored vectors.
	EmbeddingDim int

	// UpdatedAt is set by SaveMeta.
	UpdatedAt time.Time
}

// CorpusStore persists reference sources and their embedding vectors.
// Implementations must be thread-safe and support concurrent access.
//
// Vectors are content-addressed: they are keyed by embedding model and the
// fingerprint of the embedded text, never by source ID. Deleting a source
// therefore leaves its vectors cached; Clear removes everything.
type CorpusStore interface {
	// PutSources stores or replaces sources. A source without an ID is
	// stored under its content fingerprint.
	PutSources(ctx context.Context, sources ...core.Source) error

	// GetSource retrieves a single source by ID.
	// Returns ErrNotFound if the source doesn't exist.
	GetSource(ctx context.Context, id string) (core.Source, error)

	// ListSources returns all stored sources ordered by ID.
	ListSources(ctx context.Context) ([]core.Source, error)

	// DeleteSources removes sources by their IDs.
	// Returns ErrNotFound if any source doesn't exist.
	DeleteSources(ctx context.Context, ids ...string) error

	// CountSources returns the number of stored sources.
	CountSources(ctx context.Context) (int, error)

	// ForEachSource streams stored sources in ID order. An error returned
	// by fn stops the walk and propagates to the caller.
	ForEachSource(ctx context.Context, fn func(core.Source) error) error

	// PutVector stores the embedding of a piece of content under a model
	// name.
	PutVector(ctx context.Context, model string, contentID core.ContentID, vector []float32) error

	// GetVector retrieves a stored embedding.
	// Returns ErrNotFound if no vector is stored for the model and content.
	GetVector(ctx context.Context, model string, contentID core.ContentID) ([]float32, error)

	// HasVector reports whether an embedding is stored for the model and
	// content, without reading it.
	HasVector(ctx context.Context, model string, contentID core.ContentID) (bool, error)

	// DeleteVectors removes every vector stored for a model and returns
	// how many were removed.
	DeleteVectors(ctx context.Context, model string) (int, error)

	// SaveMeta persists the corpus metadata, stamping UpdatedAt.
	SaveMeta(ctx context.Context, meta *Meta) error

	// LoadMeta retrieves the corpus metadata.
	// Returns nil, nil if no metadata has been saved yet.
	LoadMeta(ctx context.Context) (*Meta, error)

	// Clear removes all sources, vectors and metadata.
	Clear(ctx context.Context) error

	// Close closes the store and releases resources.
	Close() error
}
