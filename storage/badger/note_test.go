package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectern-ai/lectern/core"
	"github.com/lectern-ai/lectern/storage"
)

func TestTopicRepositoryRoundTrip(t *testing.T) {
	repos := testRepos(t)
	ctx := context.Background()

	topic := &core.Topic{
		Id:           core.TopicID("Mitosis", 1),
		Title:        "Mitosis",
		Description:  "cell division",
		ChapterTitle: "Cell Biology",
		CourseID:     1,
	}
	_, err := repos.Topics.AddTopics(ctx, topic)
	require.NoError(t, err)

	got, err := repos.Topics.GetTopic(ctx, topic.Id)
	require.NoError(t, err)
	assert.Equal(t, "Mitosis", got.Title)
	assert.False(t, got.InsertedAt.IsZero())

	_, err = repos.Topics.GetTopic(ctx, core.ID(999))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTopicRepositoryByCourseAndDelete(t *testing.T) {
	repos := testRepos(t)
	ctx := context.Background()

	_, err := repos.Topics.AddTopics(ctx,
		&core.Topic{Id: core.TopicID("Mitosis", 1), Title: "Mitosis", CourseID: 1},
		&core.Topic{Id: core.TopicID("Meiosis", 1), Title: "Meiosis", CourseID: 1},
		&core.Topic{Id: core.TopicID("Osmosis", 2), Title: "Osmosis", CourseID: 2},
	)
	require.NoError(t, err)

	topics, err := repos.Topics.GetTopicsByCourse(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, topics, 2)

	deleted, err := repos.Topics.DeleteTopicsByCourse(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	topics, err = repos.Topics.GetTopicsByCourse(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, topics)
}

func TestNoteRepositoryRoundTrip(t *testing.T) {
	repos := testRepos(t)
	ctx := context.Background()

	topicID := core.TopicID("Mitosis", 1)
	note := &core.Note{
		Id:       core.IDFromContent("note-1"),
		TopicID:  topicID,
		CourseID: 1,
		Content:  "- cells divide",
	}
	_, err := repos.Notes.AddNotes(ctx, note)
	require.NoError(t, err)

	got, err := repos.Notes.GetNote(ctx, note.Id)
	require.NoError(t, err)
	assert.Equal(t, "- cells divide", got.Content)
	assert.False(t, got.CreatedAt.IsZero())

	byTopic, err := repos.Notes.GetNotesByTopic(ctx, topicID)
	require.NoError(t, err)
	assert.Len(t, byTopic, 1)

	byCourse, err := repos.Notes.GetNotesByCourse(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, byCourse, 1)
}

func TestNoteRepositoryRejectsUnboundNote(t *testing.T) {
	repos := testRepos(t)

	_, err := repos.Notes.AddNotes(context.Background(),
		&core.Note{Id: core.IDFromContent("bad"), Content: "- orphan"})
	assert.ErrorIs(t, err, core.ErrInvalidNote)
}

func TestNoteRepositoryDeleteByCourse(t *testing.T) {
	repos := testRepos(t)
	ctx := context.Background()

	topicID := core.TopicID("Mitosis", 1)
	_, err := repos.Notes.AddNotes(ctx,
		&core.Note{Id: core.IDFromContent("n1"), TopicID: topicID, CourseID: 1, Content: "- a"},
		&core.Note{Id: core.IDFromContent("n2"), TopicID: topicID, CourseID: 1, Content: "- b"},
	)
	require.NoError(t, err)

	deleted, err := repos.Notes.DeleteNotesByCourse(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	byTopic, err := repos.Notes.GetNotesByTopic(ctx, topicID)
	require.NoError(t, err)
	assert.Empty(t, byTopic)
}

func TestSummaryRepositorySequenceIDs(t *testing.T) {
	repos := testRepos(t)
	ctx := context.Background()

	summaries := []*core.Summary{
		{CourseID: 1, FileID: "file-a", ChunkIndex: 0, Content: "first summary"},
		{CourseID: 1, FileID: "file-a", ChunkIndex: 1, Content: "second summary"},
	}
	added, err := repos.Summaries.AddSummaries(ctx, summaries...)
	require.NoError(t, err)
	assert.NotZero(t, added[0].Id)
	assert.NotZero(t, added[1].Id)
	assert.NotEqual(t, added[0].Id, added[1].Id)

	byFile, err := repos.Summaries.GetSummariesByFile(ctx, "file-a")
	require.NoError(t, err)
	require.Len(t, byFile, 2)
	assert.Equal(t, "first summary", byFile[0].Content)
	assert.Equal(t, "second summary", byFile[1].Content)
}

func TestSummaryRepositoryDeleteByCourse(t *testing.T) {
	repos := testRepos(t)
	ctx := context.Background()

	_, err := repos.Summaries.AddSummaries(ctx,
		&core.Summary{CourseID: 1, FileID: "file-a", ChunkIndex: 0, Content: "s"},
		&core.Summary{CourseID: 2, FileID: "file-b", ChunkIndex: 0, Content: "s"},
	)
	require.NoError(t, err)

	deleted, err := repos.Summaries.DeleteSummariesByCourse(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	remaining, err := repos.Summaries.GetSummariesByFile(ctx, "file-b")
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}
