package terminal

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/folio/internal/surface"
)

// palette holds the styles for one color scheme.
type palette struct {
	text      tcell.Style
	heading   tcell.Style
	highlight tcell.Style
	status    tcell.Style
}

var palettes = map[string]palette{
	"light": {
		text:      tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite),
		heading:   tcell.StyleDefault.Foreground(tcell.ColorNavy).Background(tcell.ColorWhite).Bold(true),
		highlight: tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow),
		status:    tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorGray),
	},
	"dark": {
		text:      tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorBlack),
		heading:   tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack).Bold(true),
		highlight: tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorOlive),
		status:    tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver),
	},
	"sepia": {
		text:      tcell.StyleDefault.Foreground(tcell.ColorSaddleBrown).Background(tcell.ColorOldLace),
		heading:   tcell.StyleDefault.Foreground(tcell.ColorMaroon).Background(tcell.ColorOldLace).Bold(true),
		highlight: tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorKhaki),
		status:    tcell.StyleDefault.Foreground(tcell.ColorOldLace).Background(tcell.ColorSaddleBrown),
	},
	"high-contrast": {
		text:      tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack),
		heading:   tcell.StyleDefault.Foreground(tcell.ColorYellow).Background(tcell.ColorBlack).Bold(true),
		highlight: tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorAqua),
		status:    tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite),
	},
}

func paletteFor(scheme string) palette {
	if p, ok := palettes[scheme]; ok {
		return p
	}
	return palettes["light"]
}

// Status is the bottom bar.
type Status struct {
	Title        string
	Page, Count  int
	BookProgress float64
	// Visible shows the bar. A prompt or message forces it on.
	Visible bool
	// Prompt is the search text being typed. Prompting shows "/" and the text.
	Prompting bool
	Prompt    string
	// Message is a transient notice such as an error.
	Message string
}

func (s Status) shown() bool {
	return s.Visible || s.Prompting || s.Message != ""
}

func (s Status) left() string {
	switch {
	case s.Prompting:
		return "/" + s.Prompt
	case s.Message != "":
		return s.Message
	default:
		return s.Title
	}
}

func (s Status) right() string {
	if s.Count == 0 {
		return ""
	}
	return fmt.Sprintf("%d/%d  %3.0f%%", s.Page, s.Count, s.BookProgress*100)
}

// View is one frame.
type View struct {
	Page   surface.Page
	Status Status
}

// TextRows returns the rows available to page text on a screen of the
// given height.
func (v View) TextRows(height int) int {
	if v.Status.shown() && height > 1 {
		return height - 1
	}
	return height
}

// Draw paints the frame onto scr and shows it.
func (v View) Draw(scr Screen) {
	width, height := scr.Size()
	pal := paletteFor(v.Page.ColorScheme)

	scr.Clear()
	for y := 0; y < height; y++ {
		fill(scr, y, width, pal.text)
	}

	rows := v.TextRows(height)
	for y, ln := range v.Page.Lines {
		if y >= rows {
			break
		}
		style := pal.text
		if ln.Heading {
			style = pal.heading
		}
		drawLine(scr, y, width, ln, style, pal.highlight)
	}

	if v.Status.shown() && height > 0 {
		y := height - 1
		fill(scr, y, width, pal.status)
		putString(scr, 0, y, width, v.Status.left(), pal.status)
		if r := v.Status.right(); r != "" {
			w := runewidth.StringWidth(r)
			if w < width {
				putString(scr, width-w, y, w, r, pal.status)
			}
		}
	}
	scr.Show()
}

func fill(scr Screen, y, width int, style tcell.Style) {
	for x := 0; x < width; x++ {
		scr.SetContent(x, y, ' ', nil, style)
	}
}

// drawLine paints ln, styling highlighted byte spans.
func drawLine(scr Screen, y, width int, ln surface.Line, style, mark tcell.Style) {
	x := 0
	for i, r := range ln.Text {
		w := runewidth.RuneWidth(r)
		if x+w > width {
			return
		}
		st := style
		if inSpans(i, ln.Highlights) {
			st = mark
		}
		scr.SetContent(x, y, r, nil, st)
		x += w
	}
}

func inSpans(i int, spans []surface.Span) bool {
	for _, sp := range spans {
		if i >= sp.Start && i < sp.End {
			return true
		}
	}
	return false
}

// putString writes s from column x, stopping at limit cells.
func putString(scr Screen, x, y, limit int, s string, style tcell.Style) {
	used := 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if used+w > limit {
			return
		}
		scr.SetContent(x+used, y, r, nil, style)
		used += w
	}
}
