package badger

import (
	"context"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/lectern-ai/lectern/core"
	"github.com/lectern-ai/lectern/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	return &ChunkRepository{backend: backend}, nil
}

// Close releases repository resources.
func (r *ChunkRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ChunkRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddChunks adds one or more content units to storage.
func (r *ChunkRepository) AddChunks(ctx context.Context, chunks ...*core.ContentUnit) ([]*core.ContentUnit, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			if err := chunk.Validate(); err != nil {
				return err
			}
			if chunk.InsertedAt.IsZero() {
				chunk.InsertedAt = time.Now().UTC()
			}

			value, err := storage.MarshalChunk(chunk)
			if err != nil {
				return err
			}
			if err := tx.Set(makeChunkKey(chunk.Id), value); err != nil {
				return err
			}

			// Course and file indices point back at the primary key.
			if err := tx.Set(makeChunkCourseKey(chunk.CourseID, chunk.Id), storage.MarshalID(chunk.Id)); err != nil {
				return err
			}
			if err := tx.Set(makeChunkFileKey(chunk.FileID, chunk.ChunkIndex), storage.MarshalID(chunk.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return chunks, err
}

// GetChunk retrieves a single content unit by ID.
func (r *ChunkRepository) GetChunk(ctx context.Context, id core.ID) (*core.ContentUnit, error) {
	var result *core.ContentUnit
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readChunk(tx, makeChunkKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetChunksByCourse retrieves all content units of a course, ordered by
// file and chunk index.
func (r *ChunkRepository) GetChunksByCourse(ctx context.Context, courseID int64) ([]*core.ContentUnit, error) {
	var results []*core.ContentUnit
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialChunkCourseKey(courseID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunkID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				chunkID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			chunk, err := readChunk(tx, makeChunkKey(chunkID))
			if err != nil {
				return err
			}
			if chunk != nil {
				results = append(results, chunk)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].FileID != results[j].FileID {
			return results[i].FileID < results[j].FileID
		}
		return results[i].ChunkIndex < results[j].ChunkIndex
	})
	return results, nil
}

// GetChunksByFile retrieves all content units of one uploaded file,
// ordered by chunk index. The file index key embeds the chunk index, so
// iteration order is already correct.
func (r *ChunkRepository) GetChunksByFile(ctx context.Context, fileID string) ([]*core.ContentUnit, error) {
	var results []*core.ContentUnit
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialChunkFileKey(fileID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunkID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				chunkID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			chunk, err := readChunk(tx, makeChunkKey(chunkID))
			if err != nil {
				return err
			}
			if chunk != nil {
				results = append(results, chunk)
			}
		}
		return nil
	}, false)
	return results, err
}

// DeleteChunksByCourse removes all content units of a course along with
// their index entries.
func (r *ChunkRepository) DeleteChunksByCourse(ctx context.Context, courseID int64) (int, error) {
	deleted := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialChunkCourseKey(courseID)
		iter := tx.NewIterator(opts)

		// Collect first, a Badger iterator must not observe its own
		// transaction's deletes.
		var ids []core.ID
		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunkID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				chunkID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				iter.Close()
				return err
			}
			ids = append(ids, chunkID)
		}
		iter.Close()

		for _, id := range ids {
			chunk, err := readChunk(tx, makeChunkKey(id))
			if err != nil {
				return err
			}
			if chunk == nil {
				continue
			}
			if err := tx.Delete(makeChunkFileKey(chunk.FileID, chunk.ChunkIndex)); err != nil {
				return err
			}
			if err := tx.Delete(makeChunkCourseKey(courseID, id)); err != nil {
				return err
			}
			if err := tx.Delete(makeChunkKey(id)); err != nil {
				return err
			}
			deleted++
		}
		return tx.Commit()
	}, true)
	return deleted, err
}

// readChunk reads and deserializes a content unit, nil when absent.
func readChunk(tx *badger.Txn, key []byte) (*core.ContentUnit, error) {
	item, err := tx.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var chunk *core.ContentUnit
	err = item.Value(func(val []byte) error {
		var err error
		chunk, err = storage.UnmarshalChunk(val)
		return err
	})
	return chunk, err
}
