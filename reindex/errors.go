package reindex

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when RetryWithBackoff is called
	// with a non-positive attempt count.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNoCourses is returned when a rebuild is requested for an empty
	// course list.
	ErrNoCourses = errors.New("no courses to reindex")
)
