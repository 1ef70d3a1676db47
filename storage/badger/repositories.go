package badger

import "github.com/lectern-ai/lectern/storage"

// Repositories bundles all repositories over one backend.
type Repositories struct {
	Chunks    storage.ChunkRepository
	Topics    storage.TopicRepository
	Notes     storage.NoteRepository
	Summaries storage.SummaryRepository
}

// NewRepositories creates all repositories over an open backend.
func NewRepositories(backend *Backend) (*Repositories, error) {
	chunks, err := NewChunkRepository(backend)
	if err != nil {
		return nil, err
	}
	topics, err := NewTopicRepository(backend)
	if err != nil {
		chunks.Close()
		return nil, err
	}
	notes, err := NewNoteRepository(backend)
	if err != nil {
		topics.Close()
		chunks.Close()
		return nil, err
	}
	summaries, err := NewSummaryRepository(backend)
	if err != nil {
		notes.Close()
		topics.Close()
		chunks.Close()
		return nil, err
	}

	return &Repositories{
		Chunks:    chunks,
		Topics:    topics,
		Notes:     notes,
		Summaries: summaries,
	}, nil
}

// Close closes all repositories.
func (r *Repositories) Close() error {
	var firstErr error
	for _, c := range []interface{ Close() error }{r.Chunks, r.Topics, r.Notes, r.Summaries} {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
