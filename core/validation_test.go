package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentUnitValidate(t *testing.T) {
	valid := func() *ContentUnit {
		return &ContentUnit{
			Content:    "The scheduler picks the next runnable process.",
			ChunkIndex: 0,
			WordCount:  7,
			CourseID:   1,
			FileID:     "f1",
		}
	}

	t.Run("valid unit", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("empty content", func(t *testing.T) {
		u := valid()
		u.Content = "   "
		u.WordCount = 0
		err := u.Validate()
		assert.ErrorIs(t, err, ErrInvalidContentUnit)
		assert.ErrorIs(t, err, ErrEmptyContent)
	})

	t.Run("negative chunk index", func(t *testing.T) {
		u := valid()
		u.ChunkIndex = -1
		assert.ErrorIs(t, u.Validate(), ErrNegativeChunkIndex)
	})

	t.Run("word count mismatch", func(t *testing.T) {
		u := valid()
		u.WordCount = 99
		assert.ErrorIs(t, u.Validate(), ErrWordCountMismatch)
	})

	t.Run("missing course", func(t *testing.T) {
		u := valid()
		u.CourseID = 0
		assert.ErrorIs(t, u.Validate(), ErrMissingCourse)
	})
}

func TestTopicValidate(t *testing.T) {
	t.Run("valid topic", func(t *testing.T) {
		topic := &Topic{Title: "Deadlocks", CourseID: 3}
		assert.NoError(t, topic.Validate())
	})

	t.Run("empty title", func(t *testing.T) {
		topic := &Topic{Title: " ", CourseID: 3}
		assert.ErrorIs(t, topic.Validate(), ErrEmptyTopicTitle)
	})
}

func TestNoteValidate(t *testing.T) {
	t.Run("valid note", func(t *testing.T) {
		note := &Note{TopicID: TopicID("Deadlocks", 3), CourseID: 3, Content: "- a point"}
		assert.NoError(t, note.Validate())
	})

	t.Run("unbound note", func(t *testing.T) {
		note := &Note{CourseID: 3}
		assert.ErrorIs(t, note.Validate(), ErrInvalidNote)
	})
}
