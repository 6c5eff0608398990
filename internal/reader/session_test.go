package reader_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/folio/internal/bookmark"
	"github.com/dshills/folio/internal/bridge"
	"github.com/dshills/folio/internal/command"
	"github.com/dshills/folio/internal/event"
	"github.com/dshills/folio/internal/event/events"
	"github.com/dshills/folio/internal/event/topic"
	"github.com/dshills/folio/internal/logging"
	"github.com/dshills/folio/internal/navigation"
	"github.com/dshills/folio/internal/publication"
	"github.com/dshills/folio/internal/reader"
	"github.com/dshills/folio/internal/surface"
	"github.com/dshills/folio/internal/theme"
)

// recorder collects every session event in delivery order.
type recorder struct {
	mu     sync.Mutex
	events []any
}

func (r *recorder) handle(_ context.Context, evt any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *recorder) all() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.events...)
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func payloads[T any](r *recorder) []T {
	var out []T
	for _, e := range r.all() {
		if ev, ok := e.(event.Event[T]); ok {
			out = append(out, ev.Payload)
		}
	}
	return out
}

func topics(r *recorder) []topic.Topic {
	var out []topic.Topic
	for _, e := range r.all() {
		if tp, ok := e.(event.TopicProvider); ok {
			out = append(out, tp.EventTopic())
		}
	}
	return out
}

func chapter(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<html><body><h1 id="top">Chapter %s</h1>`, name)
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&b, `<p id="p%d">Chapter %s paragraph %d</p>`, i, name, i)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

func book() *publication.Publication {
	return &publication.Publication{
		ID:    "book",
		Title: "Test Book",
		ReadingOrder: []publication.Link{
			{Href: "a.xhtml"}, {Href: "b.xhtml"}, {Href: "c.xhtml"},
		},
		Resources: []publication.Link{{Href: "notes.xhtml"}},
		TOC: []publication.Link{
			{Href: "a.xhtml", Title: "One"},
			{Href: "b.xhtml", Title: "Two"},
			{Href: "c.xhtml", Title: "Three"},
		},
		Source: publication.MapSource{
			"a.xhtml":     chapter("A"),
			"b.xhtml":     chapter("B"),
			"c.xhtml":     chapter("C"),
			"notes.xhtml": "<p>Notes</p>",
		},
	}
}

type harness struct {
	session *reader.Session
	surface *surface.Surface
	conn    *bridge.Connector
	rec     *recorder
	sub     event.Subscription
}

type setup struct {
	pub      *publication.Publication
	detached bool
	cfg      func(*reader.Config)
	wrap     func(*surface.Surface) bridge.Surface
}

// stuckSurface loads documents normally but fails set_progress while the
// document named by stuck is displayed.
type stuckSurface struct {
	*surface.Surface
	stuck string

	mu  sync.Mutex
	url string
}

func (s *stuckSurface) Load(url string) error {
	if err := s.Surface.Load(url); err != nil {
		return err
	}
	s.mu.Lock()
	s.url = url
	s.mu.Unlock()
	return nil
}

func (s *stuckSurface) Evaluate(source string) (string, error) {
	s.mu.Lock()
	url := s.url
	s.mu.Unlock()
	if url == s.stuck && strings.Contains(source, ".set_progress(") {
		return "", fmt.Errorf("set_progress refused on %s", url)
	}
	return s.Surface.Evaluate(source)
}

func newHarness(t *testing.T, su setup) *harness {
	t.Helper()
	if su.pub == nil {
		su.pub = book()
	}

	sf, err := surface.New(su.pub.Source, surface.Options{Columns: 40, Rows: 5})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sf.Close() })

	conn := bridge.NewConnector()
	if !su.detached {
		var attached bridge.Surface = sf
		if su.wrap != nil {
			attached = su.wrap(sf)
		}
		conn.Attach(attached)
	}

	bus := event.NewBus()
	require.NoError(t, bus.Start())
	rec := &recorder{}
	sub, err := bus.SubscribeFunc("reader.**", rec.handle, event.WithDeliveryMode(event.DeliverySync))
	require.NoError(t, err)

	cfg := reader.Config{
		Publication:    su.pub,
		BookID:         "book",
		Theme:          theme.Default(),
		ConnectTimeout: time.Second,
		BridgeTimeout:  5 * time.Second,
	}
	if su.cfg != nil {
		su.cfg(&cfg)
	}

	s, err := reader.Open(cfg, reader.Deps{
		Bridge:    bridge.NewSerial(conn, logging.Nop()),
		Connector: conn,
		Bus:       bus,
		Logger:    logging.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	h := &harness{session: s, surface: sf, conn: conn, rec: rec, sub: sub}
	h.settle(t)
	return h
}

// settle waits for queued commands and the surface reports they caused.
func (h *harness) settle(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, h.session.Sync(ctx))
	require.NoError(t, h.session.Sync(ctx))
}

func (h *harness) do(t *testing.T, cmds ...command.Command) {
	t.Helper()
	for _, c := range cmds {
		h.session.Submit(c)
	}
	h.settle(t)
}

func TestOpenShowsFirstChapter(t *testing.T) {
	h := newHarness(t, setup{})

	pos := h.session.Position()
	assert.Equal(t, 0, pos.ChapterIndex)
	assert.Equal(t, 0.0, pos.ChapterProgress)
	assert.Equal(t, navigation.Href("a.xhtml"), pos.Locator.Href)
	assert.Equal(t, "a.xhtml", h.surface.Page().URL)

	loaded := payloads[events.BookmarksLoaded](h.rec)
	require.Len(t, loaded, 1)

	changes := payloads[events.PositionChanged](h.rec)
	require.NotEmpty(t, changes)
	last := changes[len(changes)-1]
	assert.Equal(t, "One", last.ChapterTitle)
	assert.Equal(t, 1, last.CurrentPage)
	assert.Equal(t, h.surface.Page().Count, last.PageCount)

	_, ok := bookmark.FindLastRead(h.session.Bookmarks())
	assert.False(t, ok, "start of book must not produce a last-read bookmark")
}

func TestOpenAtInitialLocator(t *testing.T) {
	loc := navigation.AtEnd("b.xhtml")
	h := newHarness(t, setup{cfg: func(c *reader.Config) { c.InitialLocator = &loc }})

	pos := h.session.Position()
	assert.Equal(t, 1, pos.ChapterIndex)
	assert.Equal(t, pos.PageCount, pos.CurrentPage)
}

func TestOpenAtLastReadBookmark(t *testing.T) {
	lr := bookmark.Bookmark{
		Date:    time.Now(),
		Kind:    bookmark.LastRead,
		Locator: navigation.AtProgress("c.xhtml", 0.5),
	}
	h := newHarness(t, setup{cfg: func(c *reader.Config) { c.Bookmarks = []bookmark.Bookmark{lr} }})

	assert.Equal(t, 2, h.session.Position().ChapterIndex)
	assert.Greater(t, h.session.Position().CurrentPage, 1)
}

func TestChapterSteppingStopsAtLastChapter(t *testing.T) {
	h := newHarness(t, setup{})

	h.do(t, command.OpenChapter{Locator: navigation.AtProgress("a.xhtml", 0.9)})
	pos := h.session.Position()
	require.Equal(t, 0, pos.ChapterIndex)
	assert.Greater(t, pos.ChapterProgress, 0.5)

	h.do(t, command.OpenChapterNext{})
	pos = h.session.Position()
	assert.Equal(t, 1, pos.ChapterIndex)
	assert.Equal(t, 0.0, pos.ChapterProgress)

	h.do(t, command.OpenChapterNext{})
	pos = h.session.Position()
	assert.Equal(t, 2, pos.ChapterIndex)
	assert.Equal(t, 0.0, pos.ChapterProgress)

	h.do(t, command.OpenChapterNext{})
	assert.Equal(t, 2, h.session.Position().ChapterIndex)

	assert.Empty(t, payloads[events.ChapterNonexistent](h.rec))
	assert.Empty(t, payloads[events.CommandFailed](h.rec))
}

func TestPageNextAtChapterEndOpensNextChapter(t *testing.T) {
	h := newHarness(t, setup{})

	h.do(t, command.OpenChapter{Locator: navigation.AtEnd("a.xhtml")})
	pos := h.session.Position()
	require.Equal(t, pos.PageCount, pos.CurrentPage)

	h.do(t, command.OpenPageNext{})
	pos = h.session.Position()
	assert.Equal(t, 1, pos.ChapterIndex)
	assert.Equal(t, 1, pos.CurrentPage)
	assert.Equal(t, "b.xhtml", h.surface.Page().URL)
}

func TestPagePreviousAtChapterStartOpensPreviousEnd(t *testing.T) {
	h := newHarness(t, setup{})

	h.do(t, command.OpenChapter{Locator: navigation.AtProgress("b.xhtml", 0)})
	h.do(t, command.OpenPagePrevious{})

	pos := h.session.Position()
	assert.Equal(t, 0, pos.ChapterIndex)
	assert.Equal(t, pos.PageCount, pos.CurrentPage)
	assert.Equal(t, "a.xhtml", h.surface.Page().URL)
}

func TestPageNextWithinChapter(t *testing.T) {
	h := newHarness(t, setup{})

	h.do(t, command.OpenPageNext{}, command.OpenPageNext{})
	pos := h.session.Position()
	assert.Equal(t, 0, pos.ChapterIndex)
	assert.Equal(t, 3, pos.CurrentPage)
	assert.InDelta(t, 2.0/float64(pos.PageCount), pos.ChapterProgress, 1e-9)
	assert.InDelta(t, pos.ChapterProgress/3, pos.BookProgress, 1e-9)
}

func TestOpenUnknownChapterFails(t *testing.T) {
	h := newHarness(t, setup{})
	before := h.session.Position()
	h.rec.reset()

	h.do(t, command.OpenChapter{Locator: navigation.AtProgress("missing.xhtml", 0)})

	nonexistent := payloads[events.ChapterNonexistent](h.rec)
	require.Len(t, nonexistent, 1)
	assert.Equal(t, -1, nonexistent[0].ChapterIndex)

	failed := payloads[events.CommandFailed](h.rec)
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0].Err, reader.ErrChapterNotFound)
	assert.Equal(t, before, h.session.Position())
}

func TestOpenResourceAsChapterFails(t *testing.T) {
	h := newHarness(t, setup{})
	h.rec.reset()

	h.do(t, command.OpenChapter{Locator: navigation.AtProgress("notes.xhtml", 0)})
	failed := payloads[events.CommandFailed](h.rec)
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0].Err, reader.ErrChapterNotFound)
}

func TestLoadFailureRollsBackPosition(t *testing.T) {
	pub := book()
	pub.ReadingOrder = append(pub.ReadingOrder, publication.Link{Href: "lost.xhtml"})
	h := newHarness(t, setup{pub: pub})

	h.do(t, command.OpenPageNext{})
	before := h.session.Position()
	h.rec.reset()

	h.do(t, command.OpenChapter{Locator: navigation.AtProgress("lost.xhtml", 0)})

	nonexistent := payloads[events.ChapterNonexistent](h.rec)
	require.Len(t, nonexistent, 1)
	assert.Equal(t, 3, nonexistent[0].ChapterIndex)
	assert.Len(t, payloads[events.CommandFailed](h.rec), 1)
	assert.Equal(t, before, h.session.Position())
}

func TestFailedPositioningKeepsPreviousChapter(t *testing.T) {
	h := newHarness(t, setup{wrap: func(sf *surface.Surface) bridge.Surface {
		return &stuckSurface{Surface: sf, stuck: "c.xhtml"}
	}})

	h.do(t, command.OpenChapter{Locator: navigation.AtProgress("b.xhtml", 0.6)})
	before := h.session.Position()
	require.Equal(t, 1, before.ChapterIndex)
	require.Greater(t, before.CurrentPage, 1)
	h.rec.reset()

	h.do(t, command.OpenChapter{Locator: navigation.AtProgress("c.xhtml", 0.5)})

	nonexistent := payloads[events.ChapterNonexistent](h.rec)
	require.Len(t, nonexistent, 1)
	assert.Equal(t, 2, nonexistent[0].ChapterIndex)

	pos := h.session.Position()
	assert.Equal(t, 1, pos.ChapterIndex)
	assert.Equal(t, navigation.Href("b.xhtml"), pos.Locator.Href)
	assert.InDelta(t, before.ChapterProgress, pos.ChapterProgress, 1e-9)
	assert.Equal(t, before.CurrentPage, pos.CurrentPage)
	assert.Equal(t, before.PageCount, pos.PageCount)

	lr, ok := bookmark.FindLastRead(h.session.Bookmarks())
	require.True(t, ok)
	assert.Equal(t, navigation.Href("b.xhtml"), lr.Locator.Href)
	assert.InDelta(t, before.ChapterProgress, lr.Locator.Progress, 1e-9)
	for _, u := range payloads[events.LastReadUpdated](h.rec) {
		assert.Equal(t, navigation.Href("b.xhtml"), u.Bookmark.Locator.Href)
	}
	for _, c := range payloads[events.PositionChanged](h.rec) {
		assert.Equal(t, 1, c.ChapterIndex)
		assert.Equal(t, before.CurrentPage, c.CurrentPage)
	}

	assert.Equal(t, "b.xhtml", h.surface.Page().URL)
	assert.Equal(t, before.CurrentPage, h.surface.Page().Number)
}

func TestQueuedPageTurnsDoNotLeakIntoNextChapter(t *testing.T) {
	h := newHarness(t, setup{})
	h.rec.reset()

	h.do(t, command.OpenPageNext{}, command.OpenPageNext{}, command.OpenChapterNext{})

	pos := h.session.Position()
	require.Equal(t, 1, pos.ChapterIndex)
	require.Equal(t, 1, pos.CurrentPage)

	for _, c := range payloads[events.PositionChanged](h.rec) {
		if c.ChapterIndex == 1 {
			assert.Equal(t, 1, c.CurrentPage, "chapter Two reported a page turned in chapter One")
		}
	}
	for _, u := range payloads[events.LastReadUpdated](h.rec) {
		if u.Bookmark.Locator.Href == "b.xhtml" {
			assert.Zero(t, u.Bookmark.Locator.Progress)
		}
	}
	lr, ok := bookmark.FindLastRead(h.session.Bookmarks())
	require.True(t, ok)
	assert.Equal(t, navigation.Href("b.xhtml"), lr.Locator.Href)
	assert.Zero(t, lr.Locator.Progress)
}

func TestBookmarkCreateThenDelete(t *testing.T) {
	h := newHarness(t, setup{})
	h.rec.reset()

	h.do(t, command.BookmarkCreate{})
	created := payloads[events.BookmarkCreated](h.rec)
	require.Len(t, created, 1)
	assert.Equal(t, bookmark.Explicit, created[0].Bookmark.Kind)
	assert.Equal(t, "One", created[0].Bookmark.Title)
	require.Len(t, h.session.Bookmarks(), 1)

	h.do(t, command.BookmarkDelete{Bookmark: created[0].Bookmark})
	assert.Empty(t, h.session.Bookmarks())

	var order []topic.Topic
	for _, tp := range topics(h.rec) {
		if tp == events.TopicBookmarkCreated || tp == events.TopicBookmarkDeleted {
			order = append(order, tp)
		}
	}
	assert.Equal(t, []topic.Topic{events.TopicBookmarkCreated, events.TopicBookmarkDeleted}, order)

	h.do(t, command.BookmarkDelete{Bookmark: created[0].Bookmark})
	assert.Len(t, payloads[events.BookmarkDeleted](h.rec), 1)
}

func TestLastReadIsReplaced(t *testing.T) {
	h := newHarness(t, setup{})

	h.do(t, command.BookmarkCreate{})
	explicit := h.session.Bookmarks()[0]

	h.do(t, command.OpenChapter{Locator: navigation.AtProgress("b.xhtml", 0)})
	h.do(t, command.OpenPageNext{})
	h.do(t, command.OpenPageNext{})

	set := h.session.Bookmarks()
	var lastReads []bookmark.Bookmark
	for _, b := range set {
		if b.Kind == bookmark.LastRead {
			lastReads = append(lastReads, b)
		}
	}
	require.Len(t, lastReads, 1)
	assert.Equal(t, navigation.Href("b.xhtml"), lastReads[0].Locator.Href)
	assert.InDelta(t, h.session.Position().ChapterProgress, lastReads[0].Locator.Progress, 1e-9)
	assert.True(t, set[0].Equal(explicit))

	assert.NotEmpty(t, payloads[events.LastReadUpdated](h.rec))
}

func TestThemeSetAppliesAllSettings(t *testing.T) {
	h := newHarness(t, setup{})
	h.rec.reset()

	th, err := theme.New(theme.ColorSchemeDark, theme.FontMonospace, 1.5, false)
	require.NoError(t, err)
	h.do(t, command.ThemeSet{Theme: th})

	changed := payloads[events.ThemeChanged](h.rec)
	require.Len(t, changed, 1)
	assert.Equal(t, th, changed[0].Theme)
	assert.Equal(t, th, h.session.Theme())

	page := h.surface.Page()
	assert.Equal(t, "dark", page.ColorScheme)
	assert.Equal(t, "monospace", page.Font)
	assert.Equal(t, 1.5, page.Scale)
}

func TestThemeSetRejectsInvalidSize(t *testing.T) {
	h := newHarness(t, setup{})
	h.rec.reset()

	h.do(t, command.ThemeSet{Theme: theme.Theme{TextSize: 8}})
	assert.Len(t, payloads[events.CommandFailed](h.rec), 1)
	assert.Empty(t, payloads[events.ThemeChanged](h.rec))
	assert.Equal(t, theme.Default(), h.session.Theme())
}

func TestRefreshReappliesTheme(t *testing.T) {
	h := newHarness(t, setup{})
	th, err := theme.New(theme.ColorSchemeSepia, theme.FontSerif, 1, true)
	require.NoError(t, err)
	h.do(t, command.ThemeSet{Theme: th}, command.OpenPageNext{})
	before := h.session.Position()

	h.do(t, command.Refresh{})
	assert.Equal(t, before.ChapterIndex, h.session.Position().ChapterIndex)
	assert.Equal(t, before.CurrentPage, h.session.Position().CurrentPage)
	assert.Equal(t, "sepia", h.surface.Page().ColorScheme)
}

func TestSurfaceCommandsRunLong(t *testing.T) {
	h := newHarness(t, setup{})
	h.rec.reset()

	h.do(t, command.OpenPageNext{})
	assert.Equal(t, []topic.Topic{
		events.TopicCommandStarted,
		events.TopicCommandRunningLong,
	}, topics(h.rec)[:2])
	assert.Contains(t, topics(h.rec), events.TopicCommandSucceeded)

	h.rec.reset()
	h.do(t, command.BookmarkCreate{})
	assert.NotContains(t, topics(h.rec), events.TopicCommandRunningLong)
}

func TestDisconnectedSurface(t *testing.T) {
	h := newHarness(t, setup{detached: true, cfg: func(c *reader.Config) {
		c.ConnectTimeout = 30 * time.Millisecond
	}})

	inaccessible := payloads[events.WebViewInaccessible](h.rec)
	require.Len(t, inaccessible, 1)
	failed := payloads[events.CommandFailed](h.rec)
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0].Err, bridge.ErrSurfaceDisconnected)

	h.do(t, command.BookmarkCreate{})
	assert.Len(t, h.session.Bookmarks(), 1)

	h.conn.Attach(h.surface)
	h.do(t, command.Refresh{})
	assert.Equal(t, "a.xhtml", h.surface.Page().URL)
}

func TestConcurrentSubmissionsRunInOrder(t *testing.T) {
	h := newHarness(t, setup{})
	h.rec.reset()

	const callers, perCaller = 10, 10
	ids := make([][]string, callers)
	var wg sync.WaitGroup
	for c := 0; c < callers; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perCaller; i++ {
				b := bookmark.Bookmark{Title: fmt.Sprintf("caller %d cmd %d", c, i)}
				sub := h.session.Submit(command.BookmarkDelete{Bookmark: b})
				ids[c] = append(ids[c], sub.ID)
			}
		}()
	}
	wg.Wait()
	h.settle(t)

	started := payloads[events.CommandStarted](h.rec)
	require.Len(t, started, callers*perCaller)

	position := make(map[string]int, len(started))
	for i, s := range started {
		position[s.SubmissionID] = i
	}
	for c := range ids {
		for i := 1; i < len(ids[c]); i++ {
			assert.Less(t, position[ids[c][i-1]], position[ids[c][i]])
		}
	}

	executing := false
	for _, tp := range topics(h.rec) {
		switch tp {
		case events.TopicCommandStarted:
			require.False(t, executing, "commands overlapped")
			executing = true
		case events.TopicCommandSucceeded, events.TopicCommandFailed:
			require.True(t, executing)
			executing = false
		}
	}
}

func TestCenterTapTogglesUI(t *testing.T) {
	h := newHarness(t, setup{})
	require.False(t, h.session.UIVisible())

	require.True(t, h.surface.Tap(20))
	h.settle(t)
	assert.True(t, h.session.UIVisible())

	h.surface.Tap(20)
	h.settle(t)
	assert.False(t, h.session.UIVisible())

	taps := payloads[events.CenterTapped](h.rec)
	require.Len(t, taps, 2)
	assert.True(t, taps[0].UIVisible)
	assert.False(t, taps[1].UIVisible)
}

func TestOpenLink(t *testing.T) {
	h := newHarness(t, setup{})
	h.rec.reset()

	h.do(t, command.OpenLink{URL: "https://example.com/x"})
	ext := payloads[events.ExternalLinkRequested](h.rec)
	require.Len(t, ext, 1)
	assert.Equal(t, "https://example.com/x", ext[0].URL)

	h.do(t, command.OpenLink{URL: "c.xhtml#p5"})
	pos := h.session.Position()
	assert.Equal(t, 2, pos.ChapterIndex)
	assert.Greater(t, pos.CurrentPage, 1)

	h.do(t, command.OpenLink{URL: "notes.xhtml"})
	assert.True(t, h.session.Snapshot().OnResource)
	assert.Equal(t, "notes.xhtml", h.surface.Page().URL)
	assert.Equal(t, 2, h.session.Position().ChapterIndex)

	h.do(t, command.OpenLink{URL: "nowhere.xhtml"})
	nonexistent := payloads[events.ChapterNonexistent](h.rec)
	require.Len(t, nonexistent, 1)
	assert.Equal(t, -1, nonexistent[0].ChapterIndex)
}

func TestSearchAndCancel(t *testing.T) {
	h := newHarness(t, setup{})
	h.rec.reset()

	h.do(t, command.Search{Query: "paragraph 3"})
	done := payloads[events.SearchCompleted](h.rec)
	require.Len(t, done, 1)
	assert.Equal(t, 1, done[0].Matches)
	assert.Equal(t, []string{"paragraph 3"}, h.session.Snapshot().Terms)

	h.do(t, command.CancelSearch{})
	assert.Len(t, payloads[events.SearchCancelled](h.rec), 1)
	assert.Empty(t, h.session.Snapshot().Terms)
	for _, ln := range h.surface.Page().Lines {
		assert.Empty(t, ln.Highlights)
	}
}

func TestHighlightTerms(t *testing.T) {
	h := newHarness(t, setup{})

	h.do(t, command.HighlightTerms{Terms: []string{"Chapter"}})
	h.do(t, command.HighlightTerms{Terms: []string{"paragraph", "Chapter"}})
	assert.Equal(t, []string{"Chapter", "paragraph"}, h.session.Snapshot().Terms)
	assert.NotEmpty(t, h.surface.Page().Lines[0].Highlights)

	h.do(t, command.HighlightTerms{Terms: []string{"paragraph"}, Clear: true})
	assert.Equal(t, []string{"paragraph"}, h.session.Snapshot().Terms)
	assert.Empty(t, h.surface.Page().Lines[0].Highlights)

	h.do(t, command.OpenChapterNext{})
	assert.NotEmpty(t, h.surface.Page().Lines[2].Highlights)

	h.do(t, command.HighlightCurrentTerms{})
	assert.Empty(t, payloads[events.CommandFailed](h.rec))
}

func TestWholeBookPageNumbering(t *testing.T) {
	h := newHarness(t, setup{cfg: func(c *reader.Config) { c.PageNumbering = reader.WholeBook }})
	perChapter := h.surface.Page().Count

	h.do(t, command.OpenChapterNext{})
	changes := payloads[events.PositionChanged](h.rec)
	last := changes[len(changes)-1]
	assert.Equal(t, perChapter+1, last.CurrentPage)
	assert.Equal(t, 3*perChapter, last.PageCount)
}

func TestCloseIsIdempotent(t *testing.T) {
	h := newHarness(t, setup{})

	require.NoError(t, h.session.Close())
	require.NoError(t, h.session.Close())

	select {
	case <-h.sub.Done():
	case <-time.After(time.Second):
		t.Fatal("event stream not completed")
	}
	_, attached := h.conn.Current()
	assert.False(t, attached)

	h.rec.reset()
	h.session.Submit(command.BookmarkCreate{})
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, h.rec.all())
}

func TestOpenValidatesInput(t *testing.T) {
	_, err := reader.Open(reader.Config{}, reader.Deps{})
	assert.ErrorIs(t, err, reader.ErrInvalidConfig)

	conn := bridge.NewConnector()
	_, err = reader.Open(reader.Config{Publication: &publication.Publication{}}, reader.Deps{
		Bridge:    bridge.NewSerial(conn, nil),
		Connector: conn,
	})
	assert.Error(t, err)
}
