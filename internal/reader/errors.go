package reader

import "errors"

var (
	// ErrChapterNotFound is returned when a locator does not resolve to a
	// reading-order chapter.
	ErrChapterNotFound = errors.New("reader: chapter not found")

	// ErrInvalidConfig is returned by Open for unusable configuration.
	ErrInvalidConfig = errors.New("reader: invalid configuration")
)
