// Package badger implements the corpus store on BadgerDB.
package badger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/avaxML/cite-right/core"
	"github.com/avaxML/cite-right/store"
)

// Store wraps a BadgerDB instance and implements store.CorpusStore.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ store.CorpusStore = (*Store)(nil)

// badgerLoggerAdapter adapts slog.Logger to the badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Open opens a corpus store at the specified directory.
// Creates the directory if it doesn't exist.
func Open(dir string) (store.CorpusStore, error) {
	return open(dir, false)
}

func open(dir string, inMemory bool) (*Store, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(dir)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(dir)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", dir)
		}
		opts = badger.DefaultOptions(dir)
	}

	logger := slog.Default().With("component", "store")
	opts.Logger = &badgerLoggerAdapter{logger: logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:     db,
		logger: logger,
	}, nil
}

// Close closes the underlying BadgerDB database.
func (s *Store) Close() error {
	if s.db.IsClosed() {
		return nil
	}
	return s.db.Close()
}

// withTx executes a function within a BadgerDB transaction.
// The transaction is automatically discarded if fn returns an error.
func (s *Store) withTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	if s.db.IsClosed() {
		return store.ErrClosed
	}
	tx := s.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// PutSources stores or replaces sources.
func (s *Store) PutSources(ctx context.Context, sources ...core.Source) error {
	return s.withTx(func(tx *badger.Txn) error {
		for _, source := range sources {
			source.ID = source.EffectiveID()
			if err := tx.Set(sourceKey(source.ID), store.MarshalSource(source)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetSource retrieves a single source by ID.
func (s *Store) GetSource(ctx context.Context, id string) (core.Source, error) {
	var result core.Source
	err := s.withTx(func(tx *badger.Txn) error {
		source, err := readSource(tx, sourceKey(id))
		if err != nil {
			return err
		}
		if source == nil {
			return fmt.Errorf("%w: source %q", store.ErrNotFound, id)
		}
		result = *source
		return nil
	}, false)
	return result, err
}

// ListSources returns all stored sources ordered by ID.
func (s *Store) ListSources(ctx context.Context) ([]core.Source, error) {
	var results []core.Source
	err := s.ForEachSource(ctx, func(source core.Source) error {
		results = append(results, source)
		return nil
	})
	return results, err
}

// DeleteSources removes sources by their IDs.
func (s *Store) DeleteSources(ctx context.Context, ids ...string) error {
	return s.withTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := sourceKey(id)
			if _, err := tx.Get(key); err != nil {
				if err == badger.ErrKeyNotFound {
					return fmt.Errorf("%w: source %q", store.ErrNotFound, id)
				}
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// CountSources returns the number of stored sources.
func (s *Store) CountSources(ctx context.Context) (int, error) {
	count := 0
	err := s.withTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(sourcePrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// ForEachSource streams stored sources in ID order.
func (s *Store) ForEachSource(ctx context.Context, fn func(core.Source) error) error {
	return s.withTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(sourcePrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var source core.Source
			err := iter.Item().Value(func(val []byte) error {
				var err error
				source, err = store.UnmarshalSource(val)
				return err
			})
			if err != nil {
				return err
			}
			if err := fn(source); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// PutVector stores the embedding of a piece of content under a model name.
func (s *Store) PutVector(ctx context.Context, model string, contentID core.ContentID, vector []float32) error {
	return s.withTx(func(tx *badger.Txn) error {
		if err := tx.Set(vectorKey(model, contentID), store.MarshalVector(vector)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetVector retrieves a stored embedding.
func (s *Store) GetVector(ctx context.Context, model string, contentID core.ContentID) ([]float32, error) {
	var result []float32
	err := s.withTx(func(tx *badger.Txn) error {
		item, err := tx.Get(vectorKey(model, contentID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return fmt.Errorf("%w: vector %s/%d", store.ErrNotFound, model, contentID)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			result, unmarshalErr = store.UnmarshalVector(val)
			return unmarshalErr
		})
	}, false)
	return result, err
}

// HasVector reports whether an embedding is stored for the model and content.
func (s *Store) HasVector(ctx context.Context, model string, contentID core.ContentID) (bool, error) {
	found := false
	err := s.withTx(func(tx *badger.Txn) error {
		_, err := tx.Get(vectorKey(model, contentID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		found = true
		return nil
	}, false)
	return found, err
}

// DeleteVectors removes every vector stored for a model.
func (s *Store) DeleteVectors(ctx context.Context, model string) (int, error) {
	// Collect keys first: deleting while iterating invalidates the iterator.
	var keys [][]byte
	err := s.withTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = vectorModelPrefix(model)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}

	err = s.withTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// SaveMeta persists the corpus metadata.
func (s *Store) SaveMeta(ctx context.Context, meta *store.Meta) error {
	return s.withTx(func(tx *badger.Txn) error {
		meta.UpdatedAt = time.Now().UTC()
		if err := tx.Set([]byte(metaKey), store.MarshalMeta(meta)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadMeta retrieves the corpus metadata.
// Returns nil, nil if no metadata has been saved yet.
func (s *Store) LoadMeta(ctx context.Context) (*store.Meta, error) {
	var meta *store.Meta
	err := s.withTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(metaKey))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			meta, unmarshalErr = store.UnmarshalMeta(val)
			return unmarshalErr
		})
	}, false)
	return meta, err
}

// Clear removes all sources, vectors and metadata.
func (s *Store) Clear(ctx context.Context) error {
	if s.db.IsClosed() {
		return store.ErrClosed
	}
	return s.db.DropAll()
}

// readSource reads a source record from the transaction.
// Returns nil, nil when the key does not exist.
func readSource(tx *badger.Txn, key []byte) (*core.Source, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var source *core.Source
	err = item.Value(func(val []byte) error {
		decoded, unmarshalErr := store.UnmarshalSource(val)
		if unmarshalErr != nil {
			return unmarshalErr
		}
		source = &decoded
		return nil
	})
	return source, err
}
