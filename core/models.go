package core

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// TopicID derives the canonical identifier for a topic title within a course.
// Topics are unique per (title, course) pair, so the same title in two
// courses yields two distinct IDs.
func TopicID(title string, courseID int64) ID {
	return IDFromContent(fmt.Sprintf("(%d,%s)", courseID, title))
}

// ContentUnit is an ordered fragment of an ingested document, the atomic
// unit of retrieval. Units are immutable once created.
type ContentUnit struct {
	Id           ID
	Content      string
	ChunkIndex   int    // zero-based, monotonic per source file
	ChapterTitle string // empty when no chapter was detected
	PageNumber   int    // zero when unknown
	WordCount    int
	CourseID     int64
	FileID       string
	InsertedAt   time.Time
}

// CountWords returns the space-separated token count of text.
// ContentUnit.WordCount must always equal CountWords(ContentUnit.Content).
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// Topic is a canonical subject heading extracted from course content.
type Topic struct {
	Id           ID
	Title        string
	Description  string
	ChapterTitle string
	CourseID     int64
	InsertedAt   time.Time
	UpdatedAt    time.Time
}

// Note holds generated study notes bound to exactly one topic and course.
// Content is normalized bullet text, one "- " line per point.
type Note struct {
	Id        ID
	TopicID   ID
	CourseID  int64
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary is a per-chunk summary produced during ingestion.
type Summary struct {
	Id         ID
	CourseID   int64
	FileID     string
	ChunkIndex int
	Content    string
	InsertedAt time.Time
}

// RetrievalResult is a transient projection of a content unit returned by
// similarity search, carrying its score and an optional citation number.
type RetrievalResult struct {
	ID           string
	Content      string
	CourseID     int64
	FileID       string
	ChapterTitle string
	ChunkIndex   int
	PageNumber   int
	Score        float32
	CitationID   int // zero when no citation was assigned
}
