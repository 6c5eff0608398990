package surface

import (
	"strings"

	"github.com/tidwall/sjson"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/folio/internal/surface/script"
	"github.com/dshills/folio/internal/theme"
)

// module returns the functions of the Lua "reader" table. Each function
// returns a JSON reply string.
func (s *Surface) module() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"page_next":        s.luaPageNext,
		"page_previous":    s.luaPagePrevious,
		"set_progress":     s.luaSetProgress,
		"last_page":        s.luaLastPage,
		"scroll_to":        s.luaScrollTo,
		"set_font":         s.luaSetFont,
		"set_color_scheme": s.luaSetColorScheme,
		"set_text_scale":   s.luaSetTextScale,
		"set_layout":       s.luaSetLayout,
		"highlight":        s.luaHighlight,
		"clear_highlights": s.luaClearHighlights,
		"search":           s.luaSearch,
		"viewport":         s.luaViewport,
	}
}

// reply is a JSON object under construction. Paths are constants, so sjson
// failures cannot occur and are ignored.
type reply string

func (r reply) set(path string, v any) reply {
	out, _ := sjson.Set(string(r), path, v)
	return reply(out)
}

func push(L *lua.LState, r reply) int {
	L.Push(lua.LString(r))
	return 1
}

// withDocument runs fn under the lock, raising a Lua error when nothing is
// loaded.
func (s *Surface) withDocument(L *lua.LState, fn func() reply) int {
	s.mu.Lock()
	if s.layout == nil {
		s.mu.Unlock()
		L.RaiseError("%s", ErrNoDocument.Error())
		return 0
	}
	r := fn()
	s.mu.Unlock()
	return push(L, r)
}

func (s *Surface) positionLocked() reply {
	return reply("{}").set("page", s.page).set("page_count", s.layout.pageCount())
}

func (s *Surface) luaPageNext(L *lua.LState) int {
	return s.withDocument(L, func() reply {
		if s.page >= s.layout.pageCount() {
			return s.positionLocked().set("edge", "end")
		}
		s.goToLocked(s.page + 1)
		return s.positionLocked()
	})
}

func (s *Surface) luaPagePrevious(L *lua.LState) int {
	return s.withDocument(L, func() reply {
		if s.page <= 1 {
			return s.positionLocked().set("edge", "start")
		}
		s.goToLocked(s.page - 1)
		return s.positionLocked()
	})
}

func (s *Surface) luaSetProgress(L *lua.LState) int {
	p := float64(L.CheckNumber(1))
	if p < 0 || p > 1 {
		L.ArgError(1, "progress must be within [0, 1]")
		return 0
	}
	return s.withDocument(L, func() reply {
		s.goToLocked(s.layout.pageForProgress(p))
		return s.positionLocked()
	})
}

func (s *Surface) luaLastPage(L *lua.LState) int {
	return s.withDocument(L, func() reply {
		s.goToLocked(s.layout.pageCount())
		return s.positionLocked()
	})
}

// luaScrollTo moves to the page holding the element with the given id. An
// unknown id leaves the position unchanged.
func (s *Surface) luaScrollTo(L *lua.LState) int {
	id := L.CheckString(1)
	return s.withDocument(L, func() reply {
		b, ok := s.doc.anchors[id]
		if !ok {
			s.log.Debug("fragment %q not found in %s", id, s.url)
			return s.positionLocked()
		}
		s.goToLocked(s.layout.pageOfBlock(b))
		return s.positionLocked()
	})
}

func (s *Surface) luaSetFont(L *lua.LState) int {
	f, err := theme.ParseFont(L.CheckString(1))
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}
	s.mu.Lock()
	s.font = f.String()
	s.mu.Unlock()
	return push(L, "{}")
}

func (s *Surface) luaSetColorScheme(L *lua.LState) int {
	cs, err := theme.ParseColorScheme(L.CheckString(1))
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}
	s.mu.Lock()
	s.scheme = cs.String()
	s.mu.Unlock()
	return push(L, "{}")
}

func (s *Surface) luaSetTextScale(L *lua.LState) int {
	scale := float64(L.CheckNumber(1))
	if err := theme.ValidateTextSize(scale); err != nil {
		L.ArgError(1, err.Error())
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scale == scale {
		return push(L, "{}")
	}
	s.scale = scale
	if s.doc != nil {
		s.relayoutLocked(s.progressLocked())
		return push(L, s.positionLocked())
	}
	return push(L, "{}")
}

func (s *Surface) luaSetLayout(L *lua.LState) int {
	scrolling := L.CheckBool(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scrolling == scrolling {
		return push(L, "{}")
	}
	s.scrolling = scrolling
	if s.doc != nil {
		s.relayoutLocked(s.progressLocked())
		return push(L, s.positionLocked())
	}
	return push(L, "{}")
}

func (s *Surface) luaHighlight(L *lua.LState) int {
	terms := script.Strings(L, 1)
	return s.withDocument(L, func() reply {
		s.terms = terms
		return reply("{}").set("matches", countMatches(s.doc.text(), terms))
	})
}

func (s *Surface) luaClearHighlights(L *lua.LState) int {
	s.mu.Lock()
	s.terms = nil
	s.mu.Unlock()
	return push(L, "{}")
}

// luaSearch highlights query and moves to the page of its first occurrence.
func (s *Surface) luaSearch(L *lua.LState) int {
	query := strings.TrimSpace(L.CheckString(1))
	return s.withDocument(L, func() reply {
		if query == "" {
			s.terms = nil
			return s.positionLocked().set("matches", 0)
		}
		s.terms = []string{query}
		matches := countMatches(s.doc.text(), s.terms)
		if b := s.firstBlockContaining(query); b >= 0 {
			s.goToLocked(s.layout.pageOfBlock(b))
		}
		return s.positionLocked().set("matches", matches)
	})
}

func (s *Surface) firstBlockContaining(query string) int {
	q := strings.ToLower(query)
	for i, b := range s.doc.blocks {
		if strings.Contains(strings.ToLower(b.text), q) {
			return i
		}
	}
	return -1
}

func (s *Surface) luaViewport(L *lua.LState) int {
	s.mu.Lock()
	r := reply("{}").set("width", s.columns).set("height", s.rows)
	s.mu.Unlock()
	return push(L, r)
}
