package reader

import (
	"context"
	"slices"
	"time"

	"github.com/dshills/folio/internal/bookmark"
	"github.com/dshills/folio/internal/command"
	"github.com/dshills/folio/internal/event/events"
	"github.com/dshills/folio/internal/navigation"
)

// lastReadThreshold separates a real position from the start of the book.
const lastReadThreshold = 1e-6

func (s *Session) bookmarkCreate(ctx context.Context, _ command.BookmarkCreate) error {
	st := s.state.Load()
	b := bookmark.Bookmark{
		Date:         time.Now(),
		Kind:         bookmark.Explicit,
		Title:        st.ChapterTitle,
		Locator:      navigation.AtProgress(st.Href, st.ChapterProgress),
		BookProgress: bookmark.SomeProgress(st.BookProgress),
	}
	s.update(func(st *State) {
		st.Bookmarks = append(slices.Clone(st.Bookmarks), b)
	})
	publish(ctx, s, events.TopicBookmarkCreated, events.BookmarkCreated{Bookmark: b})
	return nil
}

func (s *Session) bookmarkDelete(ctx context.Context, cmd command.BookmarkDelete) error {
	set, removed := bookmark.Remove(s.state.Load().Bookmarks, cmd.Bookmark)
	if !removed {
		return nil
	}
	s.update(func(st *State) { st.Bookmarks = set })
	publish(ctx, s, events.TopicBookmarkDeleted, events.BookmarkDeleted{Bookmark: cmd.Bookmark})
	return nil
}

// positionReport is a page report from the surface for the document at url.
type positionReport struct {
	url         navigation.Href
	page, count int
}

// positionChanged handles a page report from the surface. It runs on the
// worker between commands. Reports for any document other than the
// committed chapter are stale and dropped.
func (s *Session) positionChanged(ctx context.Context, r positionReport) {
	cur := s.state.Load()
	if cur.OnResource || r.count <= 0 {
		return
	}
	if r.url.Path() != cur.Href.Path() {
		s.log.Debug("dropping position report for %s while on %s", r.url, cur.Href)
		return
	}
	page, count := r.page, r.count

	index := cur.ChapterIndex
	progress := clamp01(float64(page-1) / float64(count))
	book := s.bookProgress(index, progress)
	s.pageCounts[index] = count

	var lastRead *bookmark.Bookmark
	if progress > lastReadThreshold || index != 0 {
		lastRead = &bookmark.Bookmark{
			Date:         time.Now(),
			Kind:         bookmark.LastRead,
			Title:        cur.ChapterTitle,
			Locator:      navigation.AtProgress(cur.Href, progress),
			BookProgress: bookmark.SomeProgress(book),
		}
	}

	st := s.update(func(st *State) {
		st.CurrentPage, st.PageCount = page, count
		st.ChapterProgress = progress
		st.BookProgress = book
		if lastRead != nil {
			st.Bookmarks = bookmark.ReplaceLastRead(st.Bookmarks, *lastRead)
		}
	})

	if lastRead != nil {
		publish(ctx, s, events.TopicLastReadUpdated, events.LastReadUpdated{Bookmark: *lastRead})
	}
	shownPage, shownCount := s.displayPages(index, page, count)
	publish(ctx, s, events.TopicPositionChanged, events.PositionChanged{
		ChapterIndex:    index,
		ChapterTitle:    st.ChapterTitle,
		ChapterProgress: progress,
		CurrentPage:     shownPage,
		PageCount:       shownCount,
		BookProgress:    book,
	})
}

// displayPages converts a chapter page into the configured numbering.
func (s *Session) displayPages(index, page, count int) (int, int) {
	if s.cfg.PageNumbering != WholeBook {
		return page, count
	}
	before, total := 0, 0
	for i := 0; i < s.graph.ChapterCount(); i++ {
		c, ok := s.pageCounts[i]
		if !ok {
			c = count
		}
		if i < index {
			before += c
		}
		total += c
	}
	return before + page, total
}

func (s *Session) centerTapped(ctx context.Context) {
	st := s.update(func(st *State) { st.UIVisible = !st.UIVisible })
	publish(ctx, s, events.TopicCenterTapped, events.CenterTapped{UIVisible: st.UIVisible})
}

// surfaceListener queues surface notifications on the worker. Position
// reports coalesce: only the latest one waiting for the worker is handled.
type surfaceListener struct {
	s *Session
}

func (l surfaceListener) PositionChanged(url string, page, count int) {
	r := &positionReport{url: navigation.Href(url), page: page, count: count}
	if l.s.report.Swap(r) != nil {
		return
	}
	l.s.worker.Do(func(ctx context.Context) {
		if latest := l.s.report.Swap(nil); latest != nil {
			l.s.positionChanged(ctx, *latest)
		}
	})
}

func (l surfaceListener) CenterTapped() {
	l.s.worker.Do(l.s.centerTapped)
}
