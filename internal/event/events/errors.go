package events

import "github.com/dshills/folio/internal/event/topic"

// Error topics.
const (
	// TopicChapterNonexistent is published when a chapter cannot be opened.
	TopicChapterNonexistent topic.Topic = "reader.error.chapternonexistent"

	// TopicWebViewInaccessible is published when no surface is reachable.
	TopicWebViewInaccessible topic.Topic = "reader.error.webviewinaccessible"
)

// ChapterNonexistent reports a failed chapter open. ChapterIndex is -1 when
// the target was not in the reading order.
type ChapterNonexistent struct {
	ChapterIndex int
	Message      string
}

// WebViewInaccessible reports that the rendering surface could not be used.
type WebViewInaccessible struct {
	Message string
}
