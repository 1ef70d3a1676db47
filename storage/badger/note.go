package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/lectern-ai/lectern/core"
	"github.com/lectern-ai/lectern/storage"
)

// NoteRepository implements storage.NoteRepository for BadgerDB.
type NoteRepository struct {
	backend *Backend
}

var _ storage.NoteRepository = (*NoteRepository)(nil)

// NewNoteRepository creates a new NoteRepository.
func NewNoteRepository(backend *Backend) (*NoteRepository, error) {
	return &NoteRepository{backend: backend}, nil
}

// Close releases repository resources.
func (r *NoteRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *NoteRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddNotes adds one or more notes to storage.
func (r *NoteRepository) AddNotes(ctx context.Context, notes ...*core.Note) ([]*core.Note, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, note := range notes {
			if err := note.Validate(); err != nil {
				return err
			}
			now := time.Now().UTC()
			if note.CreatedAt.IsZero() {
				note.CreatedAt = now
			}
			note.UpdatedAt = now

			value, err := storage.MarshalNote(note)
			if err != nil {
				return err
			}
			if err := tx.Set(makeNoteKey(note.Id), value); err != nil {
				return err
			}
			if err := tx.Set(makeNoteTopicKey(note.TopicID, note.Id), storage.MarshalID(note.Id)); err != nil {
				return err
			}
			if err := tx.Set(makeNoteCourseKey(note.CourseID, note.Id), storage.MarshalID(note.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return notes, err
}

// GetNote retrieves a single note by ID.
func (r *NoteRepository) GetNote(ctx context.Context, id core.ID) (*core.Note, error) {
	var result *core.Note
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readNote(tx, makeNoteKey(id))
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

// GetNotesByTopic retrieves all notes bound to a topic.
func (r *NoteRepository) GetNotesByTopic(ctx context.Context, topicID core.ID) ([]*core.Note, error) {
	return r.notesByIndex(makePartialNoteTopicKey(topicID))
}

// GetNotesByCourse retrieves all notes of a course.
func (r *NoteRepository) GetNotesByCourse(ctx context.Context, courseID int64) ([]*core.Note, error) {
	return r.notesByIndex(makePartialNoteCourseKey(courseID))
}

func (r *NoteRepository) notesByIndex(prefix []byte) ([]*core.Note, error) {
	var results []*core.Note
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var noteID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				noteID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			note, err := readNote(tx, makeNoteKey(noteID))
			if err != nil {
				return err
			}
			if note != nil {
				results = append(results, note)
			}
		}
		return nil
	}, false)
	return results, err
}

// DeleteNotesByCourse removes all notes of a course along with their
// index entries.
func (r *NoteRepository) DeleteNotesByCourse(ctx context.Context, courseID int64) (int, error) {
	deleted := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialNoteCourseKey(courseID)
		iter := tx.NewIterator(opts)

		var ids []core.ID
		for iter.Rewind(); iter.Valid(); iter.Next() {
			var noteID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				noteID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				iter.Close()
				return err
			}
			ids = append(ids, noteID)
		}
		iter.Close()

		for _, id := range ids {
			note, err := readNote(tx, makeNoteKey(id))
			if err != nil {
				return err
			}
			if note == nil {
				continue
			}
			if err := tx.Delete(makeNoteTopicKey(note.TopicID, id)); err != nil {
				return err
			}
			if err := tx.Delete(makeNoteCourseKey(courseID, id)); err != nil {
				return err
			}
			if err := tx.Delete(makeNoteKey(id)); err != nil {
				return err
			}
			deleted++
		}
		return tx.Commit()
	}, true)
	return deleted, err
}

func readNote(tx *badger.Txn, key []byte) (*core.Note, error) {
	item, err := tx.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var note *core.Note
	err = item.Value(func(val []byte) error {
		var err error
		note, err = storage.UnmarshalNote(val)
		return err
	})
	return note, err
}
