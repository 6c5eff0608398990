package events

import (
	"github.com/dshills/folio/internal/bookmark"
	"github.com/dshills/folio/internal/event/topic"
	"github.com/dshills/folio/internal/theme"
)

// Reading state topics.
const (
	// TopicPositionChanged is published after the surface reports a new page.
	TopicPositionChanged topic.Topic = "reader.position.changed"

	// TopicBookmarkCreated is published after an explicit bookmark is added.
	TopicBookmarkCreated topic.Topic = "reader.bookmark.created"

	// TopicBookmarkDeleted is published after a bookmark is removed.
	TopicBookmarkDeleted topic.Topic = "reader.bookmark.deleted"

	// TopicLastReadUpdated is published when the last-read bookmark is replaced.
	TopicLastReadUpdated topic.Topic = "reader.bookmark.lastread"

	// TopicBookmarksLoaded carries the initial bookmark set.
	TopicBookmarksLoaded topic.Topic = "reader.bookmarks.loaded"

	// TopicThemeChanged is published once a theme is fully applied.
	TopicThemeChanged topic.Topic = "reader.theme.changed"

	// TopicCenterTapped is published when the reader taps the page center.
	TopicCenterTapped topic.Topic = "reader.ui.centertapped"

	// TopicSearchCompleted is published after a search ran on a chapter.
	TopicSearchCompleted topic.Topic = "reader.search.completed"

	// TopicSearchCancelled is published when the search is cleared.
	TopicSearchCancelled topic.Topic = "reader.search.cancelled"

	// TopicExternalLink is published for links leaving the publication.
	TopicExternalLink topic.Topic = "reader.link.external"
)

// PositionChanged describes the current reading position.
type PositionChanged struct {
	ChapterIndex int
	ChapterTitle string
	// ChapterProgress is in [0,1].
	ChapterProgress float64
	CurrentPage     int
	PageCount       int
	// BookProgress is in [0,1].
	BookProgress float64
}

// BookmarkCreated carries the new bookmark.
type BookmarkCreated struct {
	Bookmark bookmark.Bookmark
}

// BookmarkDeleted carries the removed bookmark.
type BookmarkDeleted struct {
	Bookmark bookmark.Bookmark
}

// LastReadUpdated carries the replacement last-read bookmark.
type LastReadUpdated struct {
	Bookmark bookmark.Bookmark
}

// BookmarksLoaded carries the bookmark set a session started with.
type BookmarksLoaded struct {
	Bookmarks []bookmark.Bookmark
}

// ThemeChanged carries the applied theme.
type ThemeChanged struct {
	Theme theme.Theme
}

// CenterTapped carries the chrome visibility after the toggle.
type CenterTapped struct {
	UIVisible bool
}

// SearchCompleted reports how many matches a search produced.
type SearchCompleted struct {
	Query   string
	Matches int
}

// SearchCancelled is published when search highlights are cleared.
type SearchCancelled struct{}

// ExternalLinkRequested asks the host to open URL outside the reader.
type ExternalLinkRequested struct {
	URL string
}
