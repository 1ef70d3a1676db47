package notegen

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectern-ai/lectern/ai/mock"
	"github.com/lectern-ai/lectern/core"
)

func chapterChunks(chapterTitle string, contents ...string) []core.ContentUnit {
	chunks := make([]core.ContentUnit, len(contents))
	for i, content := range contents {
		chunks[i] = core.ContentUnit{
			Id:           core.IDFromContent(content),
			Content:      content,
			ChunkIndex:   i,
			ChapterTitle: chapterTitle,
			PageNumber:   1,
			WordCount:    core.CountWords(content),
			CourseID:     1,
			FileID:       "file-1",
		}
	}
	return chunks
}

const extractionReply = `{"chapters":[{"title":"Cell Biology","topics":[
	{"title":"Mitosis","description":"cell division producing identical cells"},
	{"title":"Meiosis","description":"division producing haploid gametes"}]}]}`

func TestExtractTopics(t *testing.T) {
	completer := mock.NewCompleter(extractionReply)
	p, err := New(completer, nil)
	require.NoError(t, err)

	chapters, err := p.ExtractTopics(context.Background(), "some lecture text about cells")
	require.NoError(t, err)
	require.Len(t, chapters, 1)
	assert.Equal(t, "Cell Biology", chapters[0].Title)
	require.Len(t, chapters[0].Topics, 2)
	assert.Equal(t, "Mitosis", chapters[0].Topics[0].Title)
}

func TestExtractTopicsFencedReply(t *testing.T) {
	completer := mock.NewCompleter("Here you go:\n```json\n" + extractionReply + "\n```")
	p, err := New(completer, nil)
	require.NoError(t, err)

	chapters, err := p.ExtractTopics(context.Background(), "text")
	require.NoError(t, err)
	require.Len(t, chapters, 1)
}

func TestExtractTopicsEmptyChapters(t *testing.T) {
	// An explicitly empty chapters array is a valid reply, not a failure.
	completer := mock.NewCompleter("```json\n{\"chapters\":[]}\n```")
	p, err := New(completer, nil)
	require.NoError(t, err)

	chapters, err := p.ExtractTopics(context.Background(), "text")
	require.NoError(t, err)
	assert.Empty(t, chapters)
}

func TestExtractTopicsFailsFast(t *testing.T) {
	t.Run("not json", func(t *testing.T) {
		completer := mock.NewCompleter("I could not find any structure, sorry.")
		p, err := New(completer, nil)
		require.NoError(t, err)

		_, err = p.ExtractTopics(context.Background(), "text")
		assert.ErrorIs(t, err, ErrTopicExtractionFailed)
	})

	t.Run("missing chapters key", func(t *testing.T) {
		completer := mock.NewCompleter(`{"sections": []}`)
		p, err := New(completer, nil)
		require.NoError(t, err)

		_, err = p.ExtractTopics(context.Background(), "text")
		assert.ErrorIs(t, err, ErrTopicExtractionFailed)
	})
}

func TestExtractTopicsCapsAtSix(t *testing.T) {
	reply := `{"chapters":[{"title":"Big","topics":[
		{"title":"T1","description":"d"},{"title":"T2","description":"d"},
		{"title":"T3","description":"d"},{"title":"T4","description":"d"},
		{"title":"T5","description":"d"},{"title":"T6","description":"d"},
		{"title":"T7","description":"d"},{"title":"T8","description":"d"}]}]}`
	completer := mock.NewCompleter(reply)
	p, err := New(completer, nil)
	require.NoError(t, err)

	chapters, err := p.ExtractTopics(context.Background(), "text")
	require.NoError(t, err)
	assert.Len(t, chapters[0].Topics, 6)
}

func TestGenerateNotesBatchDuplicateTitles(t *testing.T) {
	// Two reply entries sharing a title stay two separate notes.
	completer := mock.NewCompleter(
		`[{"title": "Mitosis", "notes": "- first set"},
		  {"title": "Mitosis", "notes": "- second set"}]`)
	p, err := New(completer, nil)
	require.NoError(t, err)

	notes, err := p.GenerateNotesBatch(context.Background(), "Cell Biology",
		[]Topic{{Title: "Mitosis", Description: "cell division"}}, "", nil)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "Mitosis", notes[0].TopicTitle)
	assert.Equal(t, "Mitosis", notes[1].TopicTitle)
	assert.Equal(t, "- first set", notes[0].Notes)
	assert.Equal(t, "- second set", notes[1].Notes)
}

func TestGenerateNotesBatchListNotes(t *testing.T) {
	completer := mock.NewCompleter(
		`[{"title": "Mitosis", "notes": ["prophase first", "metaphase second"]}]`)
	p, err := New(completer, nil)
	require.NoError(t, err)

	notes, err := p.GenerateNotesBatch(context.Background(), "Cell Biology",
		[]Topic{{Title: "Mitosis", Description: "d"}}, "", nil)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "- prophase first\n- metaphase second", notes[0].Notes)
}

func TestGenerateNotesBatchFallbackOnGarbage(t *testing.T) {
	completer := mock.NewCompleter("Sorry, I can't produce JSON today.")
	p, err := New(completer, nil)
	require.NoError(t, err)

	snippets := map[string]string{
		"Mitosis": "Mitosis is the process by which a cell divides. " +
			"The resulting cells are genetically identical to each other. " +
			"--- Page 3 ---\n" +
			"It proceeds through prophase, metaphase, anaphase and telophase.",
	}
	notes, err := p.GenerateNotesBatch(context.Background(), "Cell Biology",
		[]Topic{{Title: "Mitosis", Description: "cell division"}}, "", snippets)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.True(t, strings.HasPrefix(notes[0].Notes, "- "))
	assert.Contains(t, notes[0].Notes, "Mitosis is the process")
	assert.NotContains(t, notes[0].Notes, "--- Page")
	assert.NotEmpty(t, notes[0].Notes)
}

func TestGenerateNotesBatchPlaceholderWhenNoSnippets(t *testing.T) {
	completer := mock.NewCompleter("not json")
	p, err := New(completer, nil)
	require.NoError(t, err)

	notes, err := p.GenerateNotesBatch(context.Background(), "Cell Biology",
		[]Topic{{Title: "Mitosis", Description: "d"}}, "", nil)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, notesPlaceholder, notes[0].Notes)
}

func TestProcessCourseContent(t *testing.T) {
	completer := mock.NewCompleter(
		extractionReply,
		`[{"title": "Mitosis", "notes": "- cells divide"},
		  {"title": "Meiosis", "notes": "- gametes form"}]`)
	p, err := New(completer, nil)
	require.NoError(t, err)

	chunks := chapterChunks("Cell Biology",
		"Mitosis is the process by which a cell divides into two identical daughters.",
		"Meiosis produces four haploid gametes used in sexual reproduction.")
	notes, err := p.ProcessCourseContent(context.Background(), chunks)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "Cell Biology", notes[0].ChapterTitle)
	assert.Equal(t, "Mitosis", notes[0].TopicTitle)
	assert.Equal(t, "Meiosis", notes[1].TopicTitle)
}

func TestProcessCourseContentFailsFastByDefault(t *testing.T) {
	completer := mock.NewCompleter("definitely not json")
	p, err := New(completer, nil)
	require.NoError(t, err)

	_, err = p.ProcessCourseContent(context.Background(),
		chapterChunks("Cell Biology", "some content here"))
	assert.ErrorIs(t, err, ErrTopicExtractionFailed)
}

func TestProcessCourseContentHeuristicFallback(t *testing.T) {
	// Extraction reply is garbage; the notes reply is valid for the
	// heuristic structure's single topic.
	completer := mock.NewCompleter(
		"definitely not json",
		`[{"title": "Main Content", "notes": "- things happened"}]`)
	p, err := New(completer, nil, WithHeuristicFallback())
	require.NoError(t, err)

	notes, err := p.ProcessCourseContent(context.Background(),
		chapterChunks("Cell Biology", "Cells divide during growth. Division is tightly regulated."))
	require.NoError(t, err)
	require.NotEmpty(t, notes)
	assert.Equal(t, "- things happened", notes[0].Notes)
}

func TestProcessCourseContentNoChunks(t *testing.T) {
	p, err := New(mock.NewCompleter(), nil)
	require.NoError(t, err)
	_, err = p.ProcessCourseContent(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoChunks)
}

func TestProcessCourseContentCancellation(t *testing.T) {
	p, err := New(mock.NewCompleter(extractionReply), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.ProcessCourseContent(ctx, chapterChunks("Cell Biology", "content"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGroupByChapter(t *testing.T) {
	chunks := []core.ContentUnit{
		{Content: "a", ChunkIndex: 0, ChapterTitle: "1. Intro [CS101]"},
		{Content: "b", ChunkIndex: 1, ChapterTitle: "Intro"},
		{Content: "c", ChunkIndex: 2, ChapterTitle: "Advanced Topics"},
	}
	groups := groupByChapter(chunks)
	require.Len(t, groups, 2)
	assert.Equal(t, "Intro", groups[0].title)
	assert.Len(t, groups[0].chunks, 2)
	assert.Equal(t, "Advanced Topics", groups[1].title)
}

func TestBuildRecords(t *testing.T) {
	notes := []StructuredNote{
		{ChapterTitle: "Cell Biology", TopicTitle: "Mitosis", TopicDescription: "d1", Notes: "- a"},
		{ChapterTitle: "Cell Biology", TopicTitle: "Mitosis", TopicDescription: "d2", Notes: "- b"},
	}
	topics, records := BuildRecords(notes, 7)
	require.Len(t, topics, 2)
	require.Len(t, records, 2)
	// Duplicate titles stay separate records with distinct identifiers.
	assert.NotEqual(t, topics[0].Id, topics[1].Id)
	assert.Equal(t, topics[0].Id, records[0].TopicID)
	assert.Equal(t, int64(7), records[0].CourseID)
	assert.Equal(t, "- a", records[0].Content)
}
