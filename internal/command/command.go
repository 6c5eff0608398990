// Package command defines the closed set of requests a reading session
// accepts. Commands are plain values; their effects are implemented by the
// session that executes them.
package command

import (
	"github.com/dshills/folio/internal/bookmark"
	"github.com/dshills/folio/internal/navigation"
	"github.com/dshills/folio/internal/theme"
)

// Command is a request submitted to a session.
type Command interface {
	// Name returns a stable identifier used for handler lookup and logging.
	Name() string
	command()
}

// Command names.
const (
	NameRefresh               = "reader.refresh"
	NameOpenChapter           = "reader.openChapter"
	NameOpenPageNext          = "reader.openPageNext"
	NameOpenChapterNext       = "reader.openChapterNext"
	NameOpenPagePrevious      = "reader.openPagePrevious"
	NameOpenChapterPrevious   = "reader.openChapterPrevious"
	NameOpenLink              = "reader.openLink"
	NameSearch                = "reader.search"
	NameCancelSearch          = "reader.cancelSearch"
	NameBookmarkCreate        = "reader.bookmarkCreate"
	NameBookmarkDelete        = "reader.bookmarkDelete"
	NameThemeSet              = "reader.themeSet"
	NameHighlightTerms        = "reader.highlightTerms"
	NameHighlightCurrentTerms = "reader.highlightCurrentTerms"
)

// Refresh reopens the current location and reapplies the latest theme.
type Refresh struct{}

// OpenChapter opens the chapter addressed by Locator.
type OpenChapter struct {
	Locator navigation.Locator
}

// OpenPageNext advances one page, moving to the next chapter at the edge.
type OpenPageNext struct{}

// OpenChapterNext opens the following chapter at its start.
type OpenChapterNext struct{}

// OpenPagePrevious retreats one page, moving to the end of the previous
// chapter at the edge.
type OpenPagePrevious struct{}

// OpenChapterPrevious opens the preceding chapter, at its end if AtEnd.
type OpenChapterPrevious struct {
	AtEnd bool
}

// OpenLink follows a link found in content.
type OpenLink struct {
	URL string
}

// Search highlights occurrences of Query in the current chapter.
type Search struct {
	Query string
}

// CancelSearch clears the active search.
type CancelSearch struct{}

// BookmarkCreate bookmarks the current position.
type BookmarkCreate struct{}

// BookmarkDelete removes Bookmark from the set.
type BookmarkDelete struct {
	Bookmark bookmark.Bookmark
}

// ThemeSet applies Theme.
type ThemeSet struct {
	Theme theme.Theme
}

// HighlightTerms highlights Terms, first removing existing highlights if
// Clear is set.
type HighlightTerms struct {
	Terms []string
	Clear bool
}

// HighlightCurrentTerms reapplies the stored terms.
type HighlightCurrentTerms struct{}

func (Refresh) Name() string               { return NameRefresh }
func (OpenChapter) Name() string           { return NameOpenChapter }
func (OpenPageNext) Name() string          { return NameOpenPageNext }
func (OpenChapterNext) Name() string       { return NameOpenChapterNext }
func (OpenPagePrevious) Name() string      { return NameOpenPagePrevious }
func (OpenChapterPrevious) Name() string   { return NameOpenChapterPrevious }
func (OpenLink) Name() string              { return NameOpenLink }
func (Search) Name() string                { return NameSearch }
func (CancelSearch) Name() string          { return NameCancelSearch }
func (BookmarkCreate) Name() string        { return NameBookmarkCreate }
func (BookmarkDelete) Name() string        { return NameBookmarkDelete }
func (ThemeSet) Name() string              { return NameThemeSet }
func (HighlightTerms) Name() string        { return NameHighlightTerms }
func (HighlightCurrentTerms) Name() string { return NameHighlightCurrentTerms }

func (Refresh) command()               {}
func (OpenChapter) command()           {}
func (OpenPageNext) command()          {}
func (OpenChapterNext) command()       {}
func (OpenPagePrevious) command()      {}
func (OpenChapterPrevious) command()   {}
func (OpenLink) command()              {}
func (Search) command()                {}
func (CancelSearch) command()          {}
func (BookmarkCreate) command()        {}
func (BookmarkDelete) command()        {}
func (ThemeSet) command()              {}
func (HighlightTerms) command()        {}
func (HighlightCurrentTerms) command() {}

// All returns one zero value of every command, in declaration order.
func All() []Command {
	return []Command{
		Refresh{}, OpenChapter{}, OpenPageNext{}, OpenChapterNext{},
		OpenPagePrevious{}, OpenChapterPrevious{}, OpenLink{}, Search{},
		CancelSearch{}, BookmarkCreate{}, BookmarkDelete{}, ThemeSet{},
		HighlightTerms{}, HighlightCurrentTerms{},
	}
}

// TouchesSurface reports whether executing c waits on the rendering surface.
func TouchesSurface(c Command) bool {
	switch c.(type) {
	case Refresh, OpenChapter, OpenPageNext, OpenChapterNext, OpenPagePrevious,
		OpenChapterPrevious, OpenLink, Search, CancelSearch, ThemeSet,
		HighlightTerms, HighlightCurrentTerms:
		return true
	case BookmarkCreate, BookmarkDelete:
		return false
	default:
		panic("command: unknown command type")
	}
}
