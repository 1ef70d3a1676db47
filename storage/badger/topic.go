package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/lectern-ai/lectern/core"
	"github.com/lectern-ai/lectern/storage"
)

// TopicRepository implements storage.TopicRepository for BadgerDB.
type TopicRepository struct {
	backend *Backend
}

var _ storage.TopicRepository = (*TopicRepository)(nil)

// NewTopicRepository creates a new TopicRepository.
func NewTopicRepository(backend *Backend) (*TopicRepository, error) {
	return &TopicRepository{backend: backend}, nil
}

// Close releases repository resources.
func (r *TopicRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *TopicRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddTopics adds one or more topics to storage. Content-based IDs make
// re-adding an existing topic an in-place overwrite.
func (r *TopicRepository) AddTopics(ctx context.Context, topics ...*core.Topic) ([]*core.Topic, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, topic := range topics {
			if err := topic.Validate(); err != nil {
				return err
			}
			now := time.Now().UTC()
			if topic.InsertedAt.IsZero() {
				topic.InsertedAt = now
			}
			topic.UpdatedAt = now

			value, err := storage.MarshalTopic(topic)
			if err != nil {
				return err
			}
			if err := tx.Set(makeTopicKey(topic.Id), value); err != nil {
				return err
			}
			if err := tx.Set(makeTopicCourseKey(topic.CourseID, topic.Id), storage.MarshalID(topic.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return topics, err
}

// GetTopic retrieves a single topic by ID.
func (r *TopicRepository) GetTopic(ctx context.Context, id core.ID) (*core.Topic, error) {
	var result *core.Topic
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readTopic(tx, makeTopicKey(id))
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

// GetTopicsByCourse retrieves all topics of a course.
func (r *TopicRepository) GetTopicsByCourse(ctx context.Context, courseID int64) ([]*core.Topic, error) {
	var results []*core.Topic
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialTopicCourseKey(courseID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var topicID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				topicID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			topic, err := readTopic(tx, makeTopicKey(topicID))
			if err != nil {
				return err
			}
			if topic != nil {
				results = append(results, topic)
			}
		}
		return nil
	}, false)
	return results, err
}

// DeleteTopicsByCourse removes all topics of a course.
func (r *TopicRepository) DeleteTopicsByCourse(ctx context.Context, courseID int64) (int, error) {
	deleted := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialTopicCourseKey(courseID)
		iter := tx.NewIterator(opts)

		var ids []core.ID
		for iter.Rewind(); iter.Valid(); iter.Next() {
			var topicID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				topicID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				iter.Close()
				return err
			}
			ids = append(ids, topicID)
		}
		iter.Close()

		for _, id := range ids {
			if err := tx.Delete(makeTopicCourseKey(courseID, id)); err != nil {
				return err
			}
			if err := tx.Delete(makeTopicKey(id)); err != nil {
				return err
			}
			deleted++
		}
		return tx.Commit()
	}, true)
	return deleted, err
}

func readTopic(tx *badger.Txn, key []byte) (*core.Topic, error) {
	item, err := tx.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var topic *core.Topic
	err = item.Value(func(val []byte) error {
		var err error
		topic, err = storage.UnmarshalTopic(val)
		return err
	})
	return topic, err
}
