package reader

import (
	"github.com/dshills/folio/internal/command"
	"github.com/dshills/folio/internal/dispatcher/handler"
)

// registerHandlers binds every command to its handler. Commands that wait
// on the surface are marked long-running.
func (s *Session) registerHandlers() {
	reg := func(name string, h handler.Handler) {
		var opts []handler.Option
		if touchesSurface(name) {
			opts = append(opts, handler.LongRunning())
		}
		s.worker.RegisterHandler(name, h, opts...)
	}

	reg(command.NameRefresh, handler.Typed(s.refresh))
	reg(command.NameOpenChapter, handler.Typed(s.openChapterCmd))
	reg(command.NameOpenPageNext, handler.Typed(s.openPageNext))
	reg(command.NameOpenChapterNext, handler.Typed(s.openChapterNext))
	reg(command.NameOpenPagePrevious, handler.Typed(s.openPagePrevious))
	reg(command.NameOpenChapterPrevious, handler.Typed(s.openChapterPrevious))
	reg(command.NameOpenLink, handler.Typed(s.openLink))
	reg(command.NameSearch, handler.Typed(s.search))
	reg(command.NameCancelSearch, handler.Typed(s.cancelSearch))
	reg(command.NameBookmarkCreate, handler.Typed(s.bookmarkCreate))
	reg(command.NameBookmarkDelete, handler.Typed(s.bookmarkDelete))
	reg(command.NameThemeSet, handler.Typed(s.themeSet))
	reg(command.NameHighlightTerms, handler.Typed(s.highlightTerms))
	reg(command.NameHighlightCurrentTerms, handler.Typed(s.highlightCurrentTerms))
}

var surfaceCommands = func() map[string]bool {
	m := make(map[string]bool)
	for _, c := range command.All() {
		m[c.Name()] = command.TouchesSurface(c)
	}
	return m
}()

func touchesSurface(name string) bool {
	return surfaceCommands[name]
}
