package chunker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lectern-ai/lectern/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uniformDocument builds a document of n sentences, each exactly words
// space-separated tokens ending with a period.
func uniformDocument(n, words int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		for w := 0; w < words-1; w++ {
			fmt.Fprintf(&sb, "w%d_%d ", i, w)
		}
		fmt.Fprintf(&sb, "end%d. ", i)
	}
	return sb.String()
}

func TestChunkText(t *testing.T) {
	c := New()

	t.Run("empty input yields zero units", func(t *testing.T) {
		assert.Empty(t, c.ChunkText("", "Intro"))
		assert.Empty(t, c.ChunkText("   \n  ", "Intro"))
	})

	t.Run("chunk indices are dense and zero based", func(t *testing.T) {
		units := c.ChunkText(uniformDocument(120, 25), "Intro")
		require.NotEmpty(t, units)
		for i, unit := range units {
			assert.Equal(t, i, unit.ChunkIndex)
		}
	})

	t.Run("word count matches content", func(t *testing.T) {
		units := c.ChunkText(uniformDocument(50, 25), "Intro")
		require.NotEmpty(t, units)
		for _, unit := range units {
			assert.Equal(t, core.CountWords(unit.Content), unit.WordCount)
		}
	})

	t.Run("oversized single sentence kept whole", func(t *testing.T) {
		small := New(WithTargetWords(10))
		units := small.ChunkText(uniformDocument(1, 40), "Intro")
		require.Len(t, units, 1)
		assert.Equal(t, 40, units[0].WordCount)
	})

	// 2500 words in uniform 25-word sentences with target 1000 must give
	// 3 chunks, the 2nd and 3rd each beginning with the final 3 sentences
	// of the chunk before them.
	t.Run("sliding window overlap", func(t *testing.T) {
		doc := uniformDocument(100, 25)
		units := c.ChunkText(doc, "Intro")
		require.Len(t, units, 3)

		for i := 1; i < len(units); i++ {
			prev := strings.Split(units[i-1].Content, " ")
			tail := strings.Join(prev[len(prev)-75:], " ") // 3 sentences x 25 words
			assert.True(t, strings.HasPrefix(units[i].Content, tail),
				"chunk %d must start with the last 3 sentences of chunk %d", i, i-1)
		}
	})
}

func TestChunkTextPageTracking(t *testing.T) {
	c := New(WithTargetWords(5), WithOverlapSentences(0))
	text := "--- Page 1 ---\nFirst sentence here now. Second sentence here now.\n--- Page 2 ---\nThird sentence here now."

	units := c.ChunkText(text, "")
	require.NotEmpty(t, units)

	assert.Equal(t, 1, units[0].PageNumber)
	last := units[len(units)-1]
	assert.Equal(t, 2, last.PageNumber)
	for _, unit := range units {
		assert.NotContains(t, unit.Content, "--- Page")
	}
}

func TestDetectChapters(t *testing.T) {
	c := New()

	t.Run("chapter headings", func(t *testing.T) {
		text := "Chapter 1: Processes\nA process is a program in execution.\nChapter 2: Threads\nThreads share an address space."
		chapters := c.DetectChapters(text)
		require.Len(t, chapters, 2)
		assert.Equal(t, "Processes", chapters[0].Title)
		assert.Equal(t, "Threads", chapters[1].Title)
		assert.Contains(t, chapters[0].Content, "program in execution")
	})

	t.Run("numbered headings", func(t *testing.T) {
		text := "1. Memory Management\nPaging divides memory.\n2. Virtual Memory\nPages can be swapped."
		chapters := c.DetectChapters(text)
		require.Len(t, chapters, 2)
		assert.Equal(t, "Memory Management", chapters[0].Title)
	})

	t.Run("all caps headings", func(t *testing.T) {
		text := "FILE SYSTEMS\nInodes describe files.\nNETWORKING BASICS\nPackets move between hosts."
		chapters := c.DetectChapters(text)
		require.Len(t, chapters, 2)
		assert.Equal(t, "FILE SYSTEMS", chapters[0].Title)
	})

	t.Run("no headers yields synthetic chapter", func(t *testing.T) {
		text := "just some prose without any heading at all."
		chapters := c.DetectChapters(text)
		require.Len(t, chapters, 1)
		assert.Equal(t, "Main Content", chapters[0].Title)
		assert.Equal(t, text, chapters[0].Content)
	})
}

func TestChunkDocument(t *testing.T) {
	c := New(WithTargetWords(20))
	text := "Chapter 1: One\n" + uniformDocument(4, 10) + "\nChapter 2: Two\n" + uniformDocument(4, 10)

	units := c.ChunkDocument(text, 42, "file-1")
	require.NotEmpty(t, units)

	for i, unit := range units {
		assert.Equal(t, i, unit.ChunkIndex, "indices must stay dense across chapters")
		assert.Equal(t, int64(42), unit.CourseID)
		assert.Equal(t, "file-1", unit.FileID)
		assert.NotZero(t, unit.Id)
	}

	again := c.ChunkDocument(text, 42, "file-1")
	assert.Equal(t, units[0].Id, again[0].Id, "re-chunking the same upload keeps IDs stable")

	titles := make(map[string]bool)
	for _, unit := range units {
		titles[unit.ChapterTitle] = true
	}
	assert.True(t, titles["One"])
	assert.True(t, titles["Two"])
}

func TestExtractText(t *testing.T) {
	c := New()

	t.Run("plain text", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("hello world."), 0644))

		text, err := c.ExtractText(path)
		require.NoError(t, err)
		assert.Equal(t, "hello world.", text)
	})

	t.Run("markdown paragraphs joined", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.md")
		require.NoError(t, os.WriteFile(path, []byte("line one\nline two\n\nnext para"), 0644))

		text, err := c.ExtractText(path)
		require.NoError(t, err)
		assert.Equal(t, "line one line two\nnext para", text)
	})

	t.Run("missing file degrades to placeholder", func(t *testing.T) {
		text, err := c.ExtractText(filepath.Join(t.TempDir(), "missing.txt"))
		assert.ErrorIs(t, err, ErrExtractionFailed)
		assert.Contains(t, text, "could not be extracted")
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := c.ExtractText("archive.zip")
		assert.ErrorIs(t, err, ErrUnsupportedFileType)
	})
}

func TestStats(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, Statistics{}, Stats(nil))
	})

	t.Run("aggregates", func(t *testing.T) {
		units := []core.ContentUnit{
			{Content: "a b c", WordCount: 3, ChapterTitle: "One"},
			{Content: "d e", WordCount: 2, ChapterTitle: "One"},
			{Content: "f", WordCount: 1, ChapterTitle: "Two"},
		}
		stats := Stats(units)
		assert.Equal(t, 3, stats.TotalChunks)
		assert.Equal(t, 6, stats.TotalWords)
		assert.Equal(t, 2.0, stats.AverageChunkSize)
		assert.Equal(t, 2, stats.UniqueChapters)
		assert.Equal(t, []string{"One", "Two"}, stats.Chapters)
	})
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, `a "quoted" - dash`, CleanText("a “quoted” – dash"))
	assert.Equal(t, "spaced out", CleanText("  spaced \t\n out "))
}
