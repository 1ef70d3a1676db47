package storage

import (
	"context"

	"github.com/lectern-ai/lectern/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ChunkRepository provides operations for managing content units.
type ChunkRepository interface {
	Repository
	// AddChunks adds one or more content units to storage.
	// Sets InsertedAt if not already set. IDs are content-based and
	// must be populated by the caller.
	AddChunks(ctx context.Context, chunks ...*core.ContentUnit) ([]*core.ContentUnit, error)

	// GetChunk retrieves a single content unit by ID.
	// Returns ErrNotFound if the unit doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.ContentUnit, error)

	// GetChunksByCourse retrieves all content units of a course, ordered
	// by file and chunk index.
	GetChunksByCourse(ctx context.Context, courseID int64) ([]*core.ContentUnit, error)

	// GetChunksByFile retrieves all content units of one uploaded file,
	// ordered by chunk index.
	GetChunksByFile(ctx context.Context, fileID string) ([]*core.ContentUnit, error)

	// DeleteChunksByCourse removes all content units of a course.
	// Returns the number of units deleted; deleting an empty course is
	// not an error.
	DeleteChunksByCourse(ctx context.Context, courseID int64) (int, error)
}

// TopicRepository provides operations for managing extracted topics.
type TopicRepository interface {
	Repository
	// AddTopics adds one or more topics. Uses content-based IDs; adding
	// the same topic twice overwrites in place.
	AddTopics(ctx context.Context, topics ...*core.Topic) ([]*core.Topic, error)

	// GetTopic retrieves a single topic by ID.
	// Returns ErrNotFound if the topic doesn't exist.
	GetTopic(ctx context.Context, id core.ID) (*core.Topic, error)

	// GetTopicsByCourse retrieves all topics of a course.
	GetTopicsByCourse(ctx context.Context, courseID int64) ([]*core.Topic, error)

	// DeleteTopicsByCourse removes all topics of a course.
	DeleteTopicsByCourse(ctx context.Context, courseID int64) (int, error)
}

// NoteRepository provides operations for managing generated notes.
type NoteRepository interface {
	Repository
	// AddNotes adds one or more notes. Sets CreatedAt/UpdatedAt if not
	// already set.
	AddNotes(ctx context.Context, notes ...*core.Note) ([]*core.Note, error)

	// GetNote retrieves a single note by ID.
	// Returns ErrNotFound if the note doesn't exist.
	GetNote(ctx context.Context, id core.ID) (*core.Note, error)

	// GetNotesByTopic retrieves all notes bound to a topic.
	GetNotesByTopic(ctx context.Context, topicID core.ID) ([]*core.Note, error)

	// GetNotesByCourse retrieves all notes of a course.
	GetNotesByCourse(ctx context.Context, courseID int64) ([]*core.Note, error)

	// DeleteNotesByCourse removes all notes of a course.
	DeleteNotesByCourse(ctx context.Context, courseID int64) (int, error)
}

// SummaryRepository provides operations for managing per-chunk summaries.
type SummaryRepository interface {
	Repository
	// AddSummaries adds one or more summaries. For summaries with ID=0,
	// generates new IDs from sequence. Sets InsertedAt if not set.
	AddSummaries(ctx context.Context, summaries ...*core.Summary) ([]*core.Summary, error)

	// GetSummariesByFile retrieves all summaries of one uploaded file,
	// ordered by chunk index.
	GetSummariesByFile(ctx context.Context, fileID string) ([]*core.Summary, error)

	// DeleteSummariesByCourse removes all summaries of a course.
	DeleteSummariesByCourse(ctx context.Context, courseID int64) (int, error)
}
