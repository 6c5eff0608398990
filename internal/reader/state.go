package reader

import (
	"slices"

	"github.com/dshills/folio/internal/bookmark"
	"github.com/dshills/folio/internal/navigation"
	"github.com/dshills/folio/internal/theme"
)

// State is an immutable snapshot of the session. The worker publishes a new
// snapshot for every change; readers never see a partial update.
type State struct {
	ChapterIndex int
	ChapterTitle string
	// Href is the displayed document. It names a resource when OnResource
	// is set.
	Href            navigation.Href
	ChapterProgress float64
	BookProgress    float64
	CurrentPage     int
	PageCount       int
	Bookmarks       []bookmark.Bookmark
	Theme           theme.Theme
	UIVisible       bool
	// Terms are the highlighted search terms.
	Terms      []string
	OnResource bool
}

// Position is the reading position part of a State.
type Position struct {
	ChapterIndex    int
	ChapterProgress float64
	BookProgress    float64
	CurrentPage     int
	PageCount       int
	Locator         navigation.Locator
}

func (st *State) position() Position {
	return Position{
		ChapterIndex:    st.ChapterIndex,
		ChapterProgress: st.ChapterProgress,
		BookProgress:    st.BookProgress,
		CurrentPage:     st.CurrentPage,
		PageCount:       st.PageCount,
		Locator:         navigation.AtProgress(st.Href, st.ChapterProgress),
	}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	st := *s.state.Load()
	st.Bookmarks = slices.Clone(st.Bookmarks)
	st.Terms = slices.Clone(st.Terms)
	return st
}

// Position returns the current reading position.
func (s *Session) Position() Position {
	return s.state.Load().position()
}

// Bookmarks returns the bookmark set.
func (s *Session) Bookmarks() []bookmark.Bookmark {
	return slices.Clone(s.state.Load().Bookmarks)
}

// Theme returns the most recently set theme.
func (s *Session) Theme() theme.Theme {
	return s.state.Load().Theme
}

// UIVisible reports whether the reader chrome is shown.
func (s *Session) UIVisible() bool {
	return s.state.Load().UIVisible
}

// update applies fn to a copy of the state and publishes it. Worker only.
func (s *Session) update(fn func(st *State)) State {
	next := *s.state.Load()
	fn(&next)
	s.state.Store(&next)
	return next
}

func clamp01(v float64) float64 {
	switch {
	case v < 0 || v != v:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
