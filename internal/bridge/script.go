package bridge

import (
	"fmt"
	"strconv"
	"strings"
)

// Script is one operation from the fixed surface vocabulary. Source renders
// it as a Lua chunk calling the surface's reader module.
type Script interface {
	Name() string
	Source() string
	script()
}

// PageNext advances one page.
type PageNext struct{}

// PagePrevious retreats one page.
type PagePrevious struct{}

// SetProgress moves to a fraction of the current chapter.
type SetProgress struct{ Progress float64 }

// LastPage moves to the final page of the current chapter.
type LastPage struct{}

// ScrollToFragment moves to the element with the given id.
type ScrollToFragment struct{ ID string }

// SetFont selects the body font.
type SetFont struct{ Font string }

// SetColorScheme selects the page colors.
type SetColorScheme struct{ Scheme string }

// SetTextScale scales the text size.
type SetTextScale struct{ Scale float64 }

// SetLayout selects paginated or scrolling layout.
type SetLayout struct{ Scrolling bool }

// HighlightTerms highlights every occurrence of each term.
type HighlightTerms struct{ Terms []string }

// ClearHighlights removes all highlights.
type ClearHighlights struct{}

// Search highlights the query and reports the match count.
type Search struct{ Query string }

// ViewportSize reports the surface dimensions.
type ViewportSize struct{}

func (PageNext) Name() string         { return "page_next" }
func (PagePrevious) Name() string     { return "page_previous" }
func (SetProgress) Name() string      { return "set_progress" }
func (LastPage) Name() string         { return "last_page" }
func (ScrollToFragment) Name() string { return "scroll_to" }
func (SetFont) Name() string          { return "set_font" }
func (SetColorScheme) Name() string   { return "set_color_scheme" }
func (SetTextScale) Name() string     { return "set_text_scale" }
func (SetLayout) Name() string        { return "set_layout" }
func (HighlightTerms) Name() string   { return "highlight" }
func (ClearHighlights) Name() string  { return "clear_highlights" }
func (Search) Name() string           { return "search" }
func (ViewportSize) Name() string     { return "viewport" }

func (s PageNext) Source() string         { return call(s) }
func (s PagePrevious) Source() string     { return call(s) }
func (s SetProgress) Source() string      { return call(s, luaNumber(s.Progress)) }
func (s LastPage) Source() string         { return call(s) }
func (s ScrollToFragment) Source() string { return call(s, LuaQuote(s.ID)) }
func (s SetFont) Source() string          { return call(s, LuaQuote(s.Font)) }
func (s SetColorScheme) Source() string   { return call(s, LuaQuote(s.Scheme)) }
func (s SetTextScale) Source() string     { return call(s, luaNumber(s.Scale)) }
func (s SetLayout) Source() string        { return call(s, strconv.FormatBool(s.Scrolling)) }
func (s ClearHighlights) Source() string  { return call(s) }
func (s Search) Source() string           { return call(s, LuaQuote(s.Query)) }
func (s ViewportSize) Source() string     { return call(s) }

func (s HighlightTerms) Source() string {
	quoted := make([]string, len(s.Terms))
	for i, t := range s.Terms {
		quoted[i] = LuaQuote(t)
	}
	return call(s, "{"+strings.Join(quoted, ", ")+"}")
}

func (PageNext) script()         {}
func (PagePrevious) script()     {}
func (SetProgress) script()      {}
func (LastPage) script()         {}
func (ScrollToFragment) script() {}
func (SetFont) script()          {}
func (SetColorScheme) script()   {}
func (SetTextScale) script()     {}
func (SetLayout) script()        {}
func (HighlightTerms) script()   {}
func (ClearHighlights) script()  {}
func (Search) script()           {}
func (ViewportSize) script()     {}

func call(s Script, args ...string) string {
	return fmt.Sprintf("return reader.%s(%s)", s.Name(), strings.Join(args, ", "))
}

func luaNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// LuaQuote renders s as a Lua string literal using only escapes understood
// by Lua 5.1.
func LuaQuote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20 || c == 0x7f:
			fmt.Fprintf(&b, `\%03d`, c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
