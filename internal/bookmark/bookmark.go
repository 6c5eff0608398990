// Package bookmark defines reader bookmarks and the policies applied to the
// in-memory bookmark set.
package bookmark

import (
	"fmt"
	"time"

	"github.com/dshills/folio/internal/navigation"
)

// Kind distinguishes user bookmarks from the automatic last-read marker.
type Kind int

const (
	// Explicit bookmarks are created by the reader.
	Explicit Kind = iota
	// LastRead marks the most recent reading position. At most one exists.
	LastRead
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Explicit:
		return "explicit"
	case LastRead:
		return "last-read"
	default:
		return "unknown"
	}
}

// ParseKind parses a kind name.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "explicit":
		return Explicit, nil
	case "last-read":
		return LastRead, nil
	default:
		return 0, fmt.Errorf("bookmark: unknown kind %q", s)
	}
}

// Progress is an optional whole-book progress value in [0,1].
type Progress struct {
	Value float64
	Valid bool
}

// SomeProgress returns a valid progress.
func SomeProgress(v float64) Progress {
	return Progress{Value: v, Valid: true}
}

// Bookmark is a saved position. Bookmarks are not modified after creation
// except for the BeingDeleted flag.
type Bookmark struct {
	Date         time.Time
	Kind         Kind
	Title        string
	Locator      navigation.Locator
	BookProgress Progress
	ExternalID   string
	BeingDeleted bool
}

// Equal reports value equality. BeingDeleted is not compared.
func (b Bookmark) Equal(o Bookmark) bool {
	return b.Date.Equal(o.Date) &&
		b.Kind == o.Kind &&
		b.Title == o.Title &&
		b.Locator == o.Locator &&
		b.BookProgress == o.BookProgress &&
		b.ExternalID == o.ExternalID
}

// MarkDeleting returns a copy flagged as being deleted.
func (b Bookmark) MarkDeleting() Bookmark {
	b.BeingDeleted = true
	return b
}

// ReplaceLastRead drops every LastRead bookmark from set and appends b.
// Explicit bookmarks keep their order. The input slice is not modified.
func ReplaceLastRead(set []Bookmark, b Bookmark) []Bookmark {
	out := make([]Bookmark, 0, len(set)+1)
	for _, existing := range set {
		if existing.Kind != LastRead {
			out = append(out, existing)
		}
	}
	return append(out, b)
}

// Remove returns set without the first bookmark equal to b.
// The boolean reports whether anything was removed.
func Remove(set []Bookmark, b Bookmark) ([]Bookmark, bool) {
	for i, existing := range set {
		if existing.Equal(b) {
			out := make([]Bookmark, 0, len(set)-1)
			out = append(out, set[:i]...)
			return append(out, set[i+1:]...), true
		}
	}
	return set, false
}

// FindLastRead returns the LastRead bookmark in set, if any.
func FindLastRead(set []Bookmark) (Bookmark, bool) {
	for _, b := range set {
		if b.Kind == LastRead {
			return b, true
		}
	}
	return Bookmark{}, false
}
