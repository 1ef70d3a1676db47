package core

import (
	"errors"
	"strings"
)

// Validate checks that a ContentUnit satisfies the invariants the rest of
// the system relies on. It does not mutate the unit.
func (u *ContentUnit) Validate() error {
	var errs []error

	if strings.TrimSpace(u.Content) == "" {
		errs = append(errs, ErrEmptyContent)
	}
	if u.ChunkIndex < 0 {
		errs = append(errs, ErrNegativeChunkIndex)
	}
	if u.WordCount != CountWords(u.Content) {
		errs = append(errs, ErrWordCountMismatch)
	}
	if u.CourseID == 0 {
		errs = append(errs, ErrMissingCourse)
	}

	if len(errs) > 0 {
		return errors.Join(ErrInvalidContentUnit, errors.Join(errs...))
	}
	return nil
}

// Validate checks Topic invariants.
func (t *Topic) Validate() error {
	var errs []error

	if strings.TrimSpace(t.Title) == "" {
		errs = append(errs, ErrEmptyTopicTitle)
	}
	if t.CourseID == 0 {
		errs = append(errs, ErrMissingCourse)
	}

	if len(errs) > 0 {
		return errors.Join(ErrInvalidTopic, errors.Join(errs...))
	}
	return nil
}

// Validate checks Note invariants. Empty content is allowed only as the
// explicit normalization of a nil value; a note bound to no topic is not.
func (n *Note) Validate() error {
	var errs []error

	if n.TopicID == 0 {
		errs = append(errs, ErrInvalidTopic)
	}
	if n.CourseID == 0 {
		errs = append(errs, ErrMissingCourse)
	}

	if len(errs) > 0 {
		return errors.Join(ErrInvalidNote, errors.Join(errs...))
	}
	return nil
}
