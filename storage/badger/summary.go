package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/lectern-ai/lectern/core"
	"github.com/lectern-ai/lectern/storage"
)

// SummaryRepository implements storage.SummaryRepository for BadgerDB.
type SummaryRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.SummaryRepository = (*SummaryRepository)(nil)

// NewSummaryRepository creates a new SummaryRepository.
func NewSummaryRepository(backend *Backend) (*SummaryRepository, error) {
	idSeq, err := backend.GetSequence(summaryRecordIDSeq)
	if err != nil {
		return nil, err
	}

	return &SummaryRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *SummaryRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *SummaryRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddSummaries adds one or more summaries to storage. Summaries with
// ID=0 get a new sequence ID.
func (r *SummaryRepository) AddSummaries(ctx context.Context, summaries ...*core.Summary) ([]*core.Summary, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, summary := range summaries {
			if summary.Id == 0 {
				nextID, err := r.idSeq.Next()
				if err != nil {
					return err
				}
				// Badger sequences can return 0 on first call, skip it.
				if nextID == 0 {
					nextID, err = r.idSeq.Next()
					if err != nil {
						return err
					}
				}
				summary.Id = core.ID(nextID)
			}
			if summary.InsertedAt.IsZero() {
				summary.InsertedAt = time.Now().UTC()
			}

			value, err := storage.MarshalSummary(summary)
			if err != nil {
				return err
			}
			if err := tx.Set(makeSummaryKey(summary.Id), value); err != nil {
				return err
			}
			if err := tx.Set(makeSummaryFileKey(summary.FileID, summary.ChunkIndex), storage.MarshalID(summary.Id)); err != nil {
				return err
			}
			if err := tx.Set(makeSummaryCourseKey(summary.CourseID, summary.Id), storage.MarshalID(summary.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return summaries, err
}

// GetSummariesByFile retrieves all summaries of one uploaded file in
// chunk order. The file index key embeds the chunk index, so iteration
// order is already correct.
func (r *SummaryRepository) GetSummariesByFile(ctx context.Context, fileID string) ([]*core.Summary, error) {
	var results []*core.Summary
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialSummaryFileKey(fileID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var summaryID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				summaryID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			summary, err := readSummary(tx, makeSummaryKey(summaryID))
			if err != nil {
				return err
			}
			if summary != nil {
				results = append(results, summary)
			}
		}
		return nil
	}, false)
	return results, err
}

// DeleteSummariesByCourse removes all summaries of a course.
func (r *SummaryRepository) DeleteSummariesByCourse(ctx context.Context, courseID int64) (int, error) {
	deleted := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialSummaryCourseKey(courseID)
		iter := tx.NewIterator(opts)

		var ids []core.ID
		for iter.Rewind(); iter.Valid(); iter.Next() {
			var summaryID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				summaryID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				iter.Close()
				return err
			}
			ids = append(ids, summaryID)
		}
		iter.Close()

		for _, id := range ids {
			summary, err := readSummary(tx, makeSummaryKey(id))
			if err != nil {
				return err
			}
			if summary == nil {
				continue
			}
			if err := tx.Delete(makeSummaryFileKey(summary.FileID, summary.ChunkIndex)); err != nil {
				return err
			}
			if err := tx.Delete(makeSummaryCourseKey(courseID, id)); err != nil {
				return err
			}
			if err := tx.Delete(makeSummaryKey(id)); err != nil {
				return err
			}
			deleted++
		}
		return tx.Commit()
	}, true)
	return deleted, err
}

func readSummary(tx *badger.Txn, key []byte) (*core.Summary, error) {
	item, err := tx.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var summary *core.Summary
	err = item.Value(func(val []byte) error {
		var err error
		summary, err = storage.UnmarshalSummary(val)
		return err
	})
	return summary, err
}
