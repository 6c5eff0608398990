package reader

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dshills/folio/internal/bridge"
	"github.com/dshills/folio/internal/command"
	"github.com/dshills/folio/internal/event/events"
	"github.com/dshills/folio/internal/navigation"
)

// awaitSurface blocks until a surface is attached. A failure is reported
// with a WebViewInaccessible event.
func (s *Session) awaitSurface(ctx context.Context) error {
	if _, err := s.conn.Wait(ctx, s.cfg.ConnectTimeout); err != nil {
		publish(ctx, s, events.TopicWebViewInaccessible, events.WebViewInaccessible{Message: err.Error()})
		return err
	}
	return nil
}

func (s *Session) load(ctx context.Context, href navigation.Href) error {
	f := bridge.WithTimeout(s.bridge.OpenLocation(ctx, string(href)), s.cfg.BridgeTimeout)
	_, err := f.Await(ctx)
	return err
}

func (s *Session) run(ctx context.Context, sc bridge.Script) (bridge.Result, error) {
	return bridge.WithTimeout(s.bridge.RunScript(ctx, sc), s.cfg.BridgeTimeout).Await(ctx)
}

func (s *Session) openChapterCmd(ctx context.Context, cmd command.OpenChapter) error {
	return s.openLocator(ctx, cmd.Locator)
}

// openLocator resolves loc to a reading-order chapter and opens it.
func (s *Session) openLocator(ctx context.Context, loc navigation.Locator) error {
	target, ok := s.graph.FindNavigationNode(loc)
	if !ok {
		return s.chapterNonexistent(ctx, -1, fmt.Errorf("%w: %s", ErrChapterNotFound, loc.Href))
	}
	node, ok := target.ReadingOrder()
	if !ok {
		return s.chapterNonexistent(ctx, -1, fmt.Errorf("%w: %s is not in the reading order", ErrChapterNotFound, loc.Href))
	}
	return s.openChapter(ctx, node, loc, target.ExtraFragment)
}

// openChapter loads node, applies layout and theme, then positions the
// surface. The session position only changes when every step succeeds, so a
// failure leaves the previous position in place.
func (s *Session) openChapter(ctx context.Context, node navigation.ReadingOrderNode, loc navigation.Locator, fragment string) error {
	if err := s.awaitSurface(ctx); err != nil {
		return err
	}

	st := s.state.Load()
	href := node.NavPoint.Locator.Href
	err := s.load(ctx, href)
	loaded := err == nil
	if err == nil {
		_, err = s.run(ctx, bridge.SetLayout{Scrolling: s.cfg.Scrolling})
	}
	if err == nil {
		err = s.applyTheme(ctx, st.Theme)
	}
	var res bridge.Result
	if err == nil {
		switch {
		case fragment != "":
			res, err = s.run(ctx, bridge.ScrollToFragment{ID: fragment})
		case loc.End:
			res, err = s.run(ctx, bridge.LastPage{})
		default:
			res, err = s.run(ctx, bridge.SetProgress{Progress: loc.Progress})
		}
	}
	if err != nil {
		if loaded && st.CurrentPage > 0 {
			s.restore(ctx, st)
		}
		return s.chapterNonexistent(ctx, node.Index, fmt.Errorf("opening %s: %w", href, err))
	}

	if len(st.Terms) > 0 {
		if _, err := s.run(ctx, bridge.HighlightTerms{Terms: st.Terms}); err != nil {
			s.log.Warn("re-applying highlights on %s: %v", href, err)
		}
	}

	progress := loc.Progress
	if res.PageCount > 0 {
		progress = float64(res.Page-1) / float64(res.PageCount)
	}
	s.update(func(st *State) {
		st.ChapterIndex = node.Index
		st.ChapterTitle = node.NavPoint.Title
		st.Href = href
		st.OnResource = false
		st.ChapterProgress = clamp01(progress)
		st.BookProgress = s.bookProgress(node.Index, st.ChapterProgress)
		if res.PageCount > 0 {
			st.CurrentPage, st.PageCount = res.Page, res.PageCount
		}
	})
	s.log.Debug("opened chapter %d (%s)", node.Index, href)
	return nil
}

// restore puts the document of st back on the surface after a failed open
// replaced it.
func (s *Session) restore(ctx context.Context, st *State) {
	err := s.load(ctx, st.Href)
	if err == nil && !st.OnResource {
		_, err = s.run(ctx, bridge.SetProgress{Progress: st.ChapterProgress})
	}
	if err == nil && len(st.Terms) > 0 {
		_, err = s.run(ctx, bridge.HighlightTerms{Terms: st.Terms})
	}
	if err != nil {
		s.log.Warn("restoring %s: %v", st.Href, err)
	}
}

func (s *Session) chapterNonexistent(ctx context.Context, index int, err error) error {
	publish(ctx, s, events.TopicChapterNonexistent, events.ChapterNonexistent{
		ChapterIndex: index,
		Message:      err.Error(),
	})
	return err
}

func (s *Session) bookProgress(index int, chapterProgress float64) float64 {
	return clamp01((float64(index) + chapterProgress) / float64(s.graph.ChapterCount()))
}

func (s *Session) currentChapter() navigation.ReadingOrderNode {
	n, ok := s.graph.Chapter(s.state.Load().ChapterIndex)
	if !ok {
		panic(fmt.Sprintf("reader: chapter index %d out of range", s.state.Load().ChapterIndex))
	}
	return n
}

func (s *Session) openPageNext(ctx context.Context, _ command.OpenPageNext) error {
	if err := s.awaitSurface(ctx); err != nil {
		return err
	}
	res, err := s.run(ctx, bridge.PageNext{})
	if err != nil {
		return err
	}
	if res.Edge == bridge.EdgeEnd {
		return s.openChapterNext(ctx, command.OpenChapterNext{})
	}
	return nil
}

func (s *Session) openPagePrevious(ctx context.Context, _ command.OpenPagePrevious) error {
	if err := s.awaitSurface(ctx); err != nil {
		return err
	}
	res, err := s.run(ctx, bridge.PagePrevious{})
	if err != nil {
		return err
	}
	if res.Edge == bridge.EdgeStart {
		return s.openChapterPrevious(ctx, command.OpenChapterPrevious{AtEnd: true})
	}
	return nil
}

// openChapterNext opens the following chapter at its start. Stepping past
// the last chapter does nothing.
func (s *Session) openChapterNext(ctx context.Context, _ command.OpenChapterNext) error {
	next, ok := s.graph.FindNextNode(s.currentChapter())
	if !ok {
		return nil
	}
	href := next.NavPoint.Locator.Href
	return s.openChapter(ctx, next, navigation.AtProgress(href, 0), "")
}

func (s *Session) openChapterPrevious(ctx context.Context, cmd command.OpenChapterPrevious) error {
	prev, ok := s.graph.FindPreviousNode(s.currentChapter())
	if !ok {
		return nil
	}
	href := prev.NavPoint.Locator.Href
	loc := navigation.AtProgress(href, 0)
	if cmd.AtEnd {
		loc = navigation.AtEnd(href)
	}
	return s.openChapter(ctx, prev, loc, "")
}

// refresh reopens the current position and re-applies the latest theme.
func (s *Session) refresh(ctx context.Context, _ command.Refresh) error {
	st := s.state.Load()
	if st.OnResource {
		if err := s.awaitSurface(ctx); err != nil {
			return err
		}
		if err := s.load(ctx, st.Href); err != nil {
			return err
		}
	} else if err := s.openChapter(ctx, s.currentChapter(), navigation.AtProgress(st.Href, st.ChapterProgress), ""); err != nil {
		return err
	}
	return s.applyTheme(ctx, s.state.Load().Theme)
}

// openLink follows a link found in the displayed document. Links with a
// scheme leave the publication and are handed to the host.
func (s *Session) openLink(ctx context.Context, cmd command.OpenLink) error {
	if isExternal(cmd.URL) {
		publish(ctx, s, events.TopicExternalLink, events.ExternalLinkRequested{URL: cmd.URL})
		return nil
	}

	st := s.state.Load()
	href := st.Href.Resolve(cmd.URL)
	target, ok := s.graph.FindNavigationNode(navigation.AtProgress(href, 0))
	if !ok {
		return s.chapterNonexistent(ctx, -1, fmt.Errorf("%w: %s", ErrChapterNotFound, href))
	}

	switch n := target.Node.(type) {
	case navigation.ReadingOrderNode:
		return s.openChapter(ctx, n, navigation.AtProgress(n.NavPoint.Locator.Href, 0), target.ExtraFragment)
	case navigation.ResourceNode:
		return s.openResource(ctx, n)
	default:
		panic(fmt.Sprintf("reader: unexpected navigation node %T", n))
	}
}

// openResource displays a document outside the reading order. Position
// reports are ignored until the next chapter opens.
func (s *Session) openResource(ctx context.Context, n navigation.ResourceNode) error {
	if err := s.awaitSurface(ctx); err != nil {
		return err
	}
	href := n.NavPoint.Locator.Href
	if err := s.load(ctx, href); err != nil {
		var lerr *bridge.LoadError
		if errors.As(err, &lerr) {
			return s.chapterNonexistent(ctx, -1, err)
		}
		return err
	}
	s.update(func(st *State) {
		st.Href = href
		st.OnResource = true
	})
	return nil
}

func isExternal(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	return err == nil && u.Scheme != ""
}
