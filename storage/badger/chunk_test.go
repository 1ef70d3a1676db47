package badger

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectern-ai/lectern/core"
	"github.com/lectern-ai/lectern/storage"
)

func testRepos(t *testing.T) *Repositories {
	t.Helper()
	repos, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		repos.Close()
		backend.Close()
	})
	return repos
}

func testChunk(courseID int64, fileID string, chunkIndex int) *core.ContentUnit {
	content := fmt.Sprintf("chunk content number %d of file %s", chunkIndex, fileID)
	return &core.ContentUnit{
		Id:           core.IDFromContent(fmt.Sprintf("(%d,%s,%d)", courseID, fileID, chunkIndex)),
		Content:      content,
		ChunkIndex:   chunkIndex,
		ChapterTitle: "Main Content",
		PageNumber:   1,
		WordCount:    core.CountWords(content),
		CourseID:     courseID,
		FileID:       fileID,
	}
}

func TestChunkRepositoryAddAndGet(t *testing.T) {
	repos := testRepos(t)
	ctx := context.Background()

	chunk := testChunk(1, "file-a", 0)
	added, err := repos.Chunks.AddChunks(ctx, chunk)
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.False(t, added[0].InsertedAt.IsZero())

	got, err := repos.Chunks.GetChunk(ctx, chunk.Id)
	require.NoError(t, err)
	assert.Equal(t, chunk.Content, got.Content)
	assert.Equal(t, chunk.CourseID, got.CourseID)
}

func TestChunkRepositoryGetMissing(t *testing.T) {
	repos := testRepos(t)

	_, err := repos.Chunks.GetChunk(context.Background(), core.ID(12345))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestChunkRepositoryRejectsInvalid(t *testing.T) {
	repos := testRepos(t)

	bad := &core.ContentUnit{Content: "", CourseID: 0}
	_, err := repos.Chunks.AddChunks(context.Background(), bad)
	assert.ErrorIs(t, err, core.ErrInvalidContentUnit)
}

func TestChunkRepositoryByCourse(t *testing.T) {
	repos := testRepos(t)
	ctx := context.Background()

	_, err := repos.Chunks.AddChunks(ctx,
		testChunk(1, "file-b", 1),
		testChunk(1, "file-a", 0),
		testChunk(1, "file-a", 1),
		testChunk(2, "file-c", 0),
	)
	require.NoError(t, err)

	chunks, err := repos.Chunks.GetChunksByCourse(ctx, 1)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	// Ordered by file then chunk index.
	assert.Equal(t, "file-a", chunks[0].FileID)
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Equal(t, "file-a", chunks[1].FileID)
	assert.Equal(t, 1, chunks[1].ChunkIndex)
	assert.Equal(t, "file-b", chunks[2].FileID)
}

func TestChunkRepositoryByFile(t *testing.T) {
	repos := testRepos(t)
	ctx := context.Background()

	_, err := repos.Chunks.AddChunks(ctx,
		testChunk(1, "file-a", 2),
		testChunk(1, "file-a", 0),
		testChunk(1, "file-a", 1),
	)
	require.NoError(t, err)

	chunks, err := repos.Chunks.GetChunksByFile(ctx, "file-a")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.ChunkIndex)
	}
}

func TestChunkRepositoryDeleteByCourse(t *testing.T) {
	repos := testRepos(t)
	ctx := context.Background()

	_, err := repos.Chunks.AddChunks(ctx,
		testChunk(1, "file-a", 0),
		testChunk(1, "file-a", 1),
		testChunk(2, "file-b", 0),
	)
	require.NoError(t, err)

	deleted, err := repos.Chunks.DeleteChunksByCourse(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	remaining, err := repos.Chunks.GetChunksByCourse(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	other, err := repos.Chunks.GetChunksByCourse(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, other, 1)

	// Deleting an empty course is not an error.
	deleted, err = repos.Chunks.DeleteChunksByCourse(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
