// Copyright 2026 Lectern AI
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reindex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectern-ai/lectern/ai/mock"
	"github.com/lectern-ai/lectern/core"
	badgerstore "github.com/lectern-ai/lectern/storage/badger"
	"github.com/lectern-ai/lectern/vectorstore"
)

func seedChunks(t *testing.T, repos *badgerstore.Repositories, courseID int64, count int) {
	t.Helper()
	chunks := make([]*core.ContentUnit, count)
	for i := 0; i < count; i++ {
		content := fmt.Sprintf("course %d chunk %d about memory management", courseID, i)
		chunks[i] = &core.ContentUnit{
			Id:         core.IDFromContent(fmt.Sprintf("(%d,file,%d)", courseID, i)),
			Content:    content,
			ChunkIndex: i,
			WordCount:  core.CountWords(content),
			CourseID:   courseID,
			FileID:     fmt.Sprintf("file-%d", courseID),
		}
	}
	_, err := repos.Chunks.AddChunks(context.Background(), chunks...)
	require.NoError(t, err)
}

func testConfig() *Config {
	return &Config{
		BatchSize:      2,
		ReportInterval: 1,
		MaxRetries:     3,
		RetryDelay:     time.Millisecond,
	}
}

func TestRebuilderRun(t *testing.T) {
	repos, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	seedChunks(t, repos, 1, 5)
	seedChunks(t, repos, 2, 3)

	store, err := vectorstore.New(mock.NewEmbedder())
	require.NoError(t, err)

	// Pre-existing index content must be discarded by the rebuild.
	_, err = store.StoreEmbedding(context.Background(), "stale entry", vectorstore.Metadata{CourseID: 9})
	require.NoError(t, err)

	var buf bytes.Buffer
	rebuilder := NewRebuilder(repos.Chunks, store, testConfig(), &buf)
	require.NoError(t, rebuilder.Run(context.Background(), 1, 2))

	assert.Equal(t, 8, store.Count())
	assert.Contains(t, buf.String(), "Starting reindex of 8 chunks")
	assert.Contains(t, buf.String(), "Reindex complete")

	// The stale entry is gone: nothing matches course 9 anymore.
	results := store.Search(mock.DeterministicVector("stale entry", mock.DefaultDimension), []int64{9}, 5)
	assert.Empty(t, results)
}

func TestRebuilderRetriesTransientFailures(t *testing.T) {
	repos, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	seedChunks(t, repos, 1, 4)

	embedder := mock.NewEmbedder()
	calls := 0
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("rate limited")
		}
		vectors := make([][]float32, len(texts))
		for i, text := range texts {
			vectors[i] = mock.DeterministicVector(text, mock.DefaultDimension)
		}
		return vectors, nil
	}

	store, err := vectorstore.New(embedder)
	require.NoError(t, err)

	var buf bytes.Buffer
	rebuilder := NewRebuilder(repos.Chunks, store, testConfig(), &buf)
	require.NoError(t, rebuilder.Run(context.Background(), 1))
	assert.Equal(t, 4, store.Count())
	assert.Greater(t, calls, 2, "first batch should have been retried")
}

func TestRebuilderPersistentFailure(t *testing.T) {
	repos, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	seedChunks(t, repos, 1, 2)

	embedder := mock.NewEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("service down")
	}

	store, err := vectorstore.New(embedder)
	require.NoError(t, err)

	var buf bytes.Buffer
	rebuilder := NewRebuilder(repos.Chunks, store, testConfig(), &buf)
	err = rebuilder.Run(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestRebuilderNoCourses(t *testing.T) {
	repos, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	store, err := vectorstore.New(mock.NewEmbedder())
	require.NoError(t, err)

	var buf bytes.Buffer
	rebuilder := NewRebuilder(repos.Chunks, store, nil, &buf)
	assert.ErrorIs(t, rebuilder.Run(context.Background()), ErrNoCourses)
}

func TestRebuilderEmptyCourse(t *testing.T) {
	repos, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	store, err := vectorstore.New(mock.NewEmbedder())
	require.NoError(t, err)
	_, err = store.StoreEmbedding(context.Background(), "kept", vectorstore.Metadata{CourseID: 1})
	require.NoError(t, err)

	var buf bytes.Buffer
	rebuilder := NewRebuilder(repos.Chunks, store, testConfig(), &buf)
	require.NoError(t, rebuilder.Run(context.Background(), 42))

	assert.Contains(t, buf.String(), "No chunks found")
	assert.Equal(t, 1, store.Count(), "an empty rebuild leaves the index untouched")
}
