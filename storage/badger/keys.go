package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/lectern-ai/lectern/core"
)

// Key prefixes for different data types
const (
	chunkRecordPrefix   = "chkrec"
	chunkCoursePrefix   = "chkrecc"
	chunkFilePrefix     = "chkrecf"
	topicRecordPrefix   = "toprec"
	topicCoursePrefix   = "toprecc"
	noteRecordPrefix    = "notrec"
	noteTopicPrefix     = "notrect"
	noteCoursePrefix    = "notrecc"
	summaryRecordPrefix = "sumrec"
	summaryFilePrefix   = "sumrecf"
	summaryCoursePrefix = "sumrecc"
	summaryRecordIDSeq  = "sumrecseq"
)

// makeChunkKey generates a key for a content unit by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkRecordPrefix, id))
}

// makeChunkCourseKey generates a composite key for the course index.
// Format: prefix:courseID:id, fixed-width BigEndian so lexicographic
// sort matches numeric order.
func makeChunkCourseKey(courseID int64, id core.ID) []byte {
	return compositeKey(chunkCoursePrefix, uint64(courseID), uint64(id))
}

// makePartialChunkCourseKey generates the iteration prefix for one course.
func makePartialChunkCourseKey(courseID int64) []byte {
	return partialKey(chunkCoursePrefix, uint64(courseID))
}

// makeChunkFileKey generates a composite key for the file index.
// Format: prefix:fileID:chunkIndex
func makeChunkFileKey(fileID string, chunkIndex int) []byte {
	prefix := []byte(chunkFilePrefix + ":" + fileID + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(chunkIndex))
	return buf
}

// makePartialChunkFileKey generates the iteration prefix for one file.
func makePartialChunkFileKey(fileID string) []byte {
	return []byte(chunkFilePrefix + ":" + fileID + ":")
}

// makeTopicKey generates a key for a topic by ID.
func makeTopicKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", topicRecordPrefix, id))
}

func makeTopicCourseKey(courseID int64, id core.ID) []byte {
	return compositeKey(topicCoursePrefix, uint64(courseID), uint64(id))
}

func makePartialTopicCourseKey(courseID int64) []byte {
	return partialKey(topicCoursePrefix, uint64(courseID))
}

// makeNoteKey generates a key for a note by ID.
func makeNoteKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", noteRecordPrefix, id))
}

func makeNoteTopicKey(topicID, noteID core.ID) []byte {
	return compositeKey(noteTopicPrefix, uint64(topicID), uint64(noteID))
}

func makePartialNoteTopicKey(topicID core.ID) []byte {
	return partialKey(noteTopicPrefix, uint64(topicID))
}

func makeNoteCourseKey(courseID int64, id core.ID) []byte {
	return compositeKey(noteCoursePrefix, uint64(courseID), uint64(id))
}

func makePartialNoteCourseKey(courseID int64) []byte {
	return partialKey(noteCoursePrefix, uint64(courseID))
}

// makeSummaryKey generates a key for a summary by ID.
func makeSummaryKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", summaryRecordPrefix, id))
}

// makeSummaryFileKey generates a composite key for the file index.
// Format: prefix:fileID:chunkIndex
func makeSummaryFileKey(fileID string, chunkIndex int) []byte {
	prefix := []byte(summaryFilePrefix + ":" + fileID + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(chunkIndex))
	return buf
}

func makePartialSummaryFileKey(fileID string) []byte {
	return []byte(summaryFilePrefix + ":" + fileID + ":")
}

func makeSummaryCourseKey(courseID int64, id core.ID) []byte {
	return compositeKey(summaryCoursePrefix, uint64(courseID), uint64(id))
}

func makePartialSummaryCourseKey(courseID int64) []byte {
	return partialKey(summaryCoursePrefix, uint64(courseID))
}

// compositeKey builds prefix:a:b with both parts fixed-width BigEndian.
func compositeKey(prefix string, a, b uint64) []byte {
	prefixBytes := []byte(prefix + ":")
	buf := make([]byte, len(prefixBytes)+16)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], a)
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], b)
	return buf
}

// partialKey builds prefix:a for range scans over the composite keys.
func partialKey(prefix string, a uint64) []byte {
	prefixBytes := []byte(prefix + ":")
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], a)
	return buf
}
