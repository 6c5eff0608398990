// Package surface is a headless rendering surface. It paginates chapter text
// for a fixed character viewport and answers the bridge script vocabulary
// through an embedded Lua engine.
package surface

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dshills/folio/internal/bridge"
	"github.com/dshills/folio/internal/logging"
	"github.com/dshills/folio/internal/publication"
	"github.com/dshills/folio/internal/surface/script"
	"github.com/dshills/folio/internal/theme"
)

// ErrNoDocument is reported by scripts evaluated before the first Load.
var ErrNoDocument = errors.New("surface: no document loaded")

// Options configures a Surface.
type Options struct {
	Columns int
	Rows    int
	// ScriptTimeout bounds each script evaluation.
	ScriptTimeout time.Duration
	Logger        *logging.Logger
}

// DefaultOptions returns an 80x24 viewport.
func DefaultOptions() Options {
	return Options{Columns: 80, Rows: 24, ScriptTimeout: script.DefaultTimeout}
}

// Span is a highlighted byte range within a line.
type Span struct {
	Start, End int
}

// Line is a displayed row.
type Line struct {
	Text       string
	Heading    bool
	Highlights []Span
}

// Page is a snapshot of what the surface currently shows.
type Page struct {
	URL         string
	Number      int
	Count       int
	Lines       []Line
	ColorScheme string
	Font        string
	Scale       float64
	Scrolling   bool
}

// Surface implements bridge.Surface. Load and Evaluate are expected from a
// single goroutine (the bridge). Page, Tap and Resize may be called from any
// goroutine. Listener callbacks are made without holding internal locks.
type Surface struct {
	source publication.Source
	engine *script.Engine
	log    *logging.Logger

	mu        sync.Mutex
	listener  bridge.Listener
	columns   int
	rows      int
	url       string
	doc       *document
	layout    *layout
	page      int
	scale     float64
	scrolling bool
	font      string
	scheme    string
	terms     []string
	pending   bool
}

// New creates a surface reading documents from source.
func New(source publication.Source, opts Options) (*Surface, error) {
	if source == nil {
		return nil, errors.New("surface: nil source")
	}
	if opts.Columns <= 0 || opts.Rows <= 0 {
		return nil, fmt.Errorf("surface: invalid viewport %dx%d", opts.Columns, opts.Rows)
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}

	s := &Surface{
		source:  source,
		engine:  script.New(script.WithTimeout(opts.ScriptTimeout)),
		log:     log.WithComponent("surface"),
		columns: opts.Columns,
		rows:    opts.Rows,
		scale:   1,
		font:    theme.FontSerif.String(),
		scheme:  theme.ColorSchemeLight.String(),
	}
	if err := s.engine.RegisterModule("reader", s.module()); err != nil {
		return nil, err
	}
	return s, nil
}

// SetListener implements bridge.Surface.
func (s *Surface) SetListener(l bridge.Listener) {
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
}

// Load implements bridge.Surface. The new document opens on its first page.
func (s *Surface) Load(url string) error {
	data, err := s.source.Open(url)
	if err != nil {
		return err
	}
	doc, err := parseDocument(publication.CleanHref(url), data)
	if err != nil {
		return fmt.Errorf("%s: %w", url, err)
	}

	s.mu.Lock()
	s.url = url
	s.doc = doc
	s.terms = nil
	s.relayoutLocked(0)
	s.page = 1
	s.pending = true
	count := s.layout.pageCount()
	s.mu.Unlock()

	s.log.Debug("loaded %s (%d blocks, %d pages)", url, len(doc.blocks), count)
	s.notify()
	return nil
}

// Evaluate implements bridge.Surface.
func (s *Surface) Evaluate(source string) (string, error) {
	out, err := s.engine.EvalString(source)
	s.notify()
	return out, err
}

// Resize changes the viewport and keeps the reading progress.
func (s *Surface) Resize(columns, rows int) {
	if columns <= 0 || rows <= 0 {
		return
	}
	s.mu.Lock()
	s.columns, s.rows = columns, rows
	if s.doc != nil {
		s.relayoutLocked(s.progressLocked())
	}
	s.mu.Unlock()
	s.notify()
}

// Tap reports a tap at column. Taps in the middle third notify the listener
// and return true.
func (s *Surface) Tap(column int) bool {
	s.mu.Lock()
	third := s.columns / 3
	center := column >= third && column < s.columns-third
	l := s.listener
	s.mu.Unlock()

	if center && l != nil {
		l.CenterTapped()
	}
	return center
}

// Page returns a snapshot of the visible page.
func (s *Surface) Page() Page {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Page{
		URL:         s.url,
		ColorScheme: s.scheme,
		Font:        s.font,
		Scale:       s.scale,
		Scrolling:   s.scrolling,
	}
	if s.layout == nil {
		return p
	}
	p.Number = s.page
	p.Count = s.layout.pageCount()
	for _, ln := range s.layout.visible(s.page) {
		p.Lines = append(p.Lines, Line{
			Text:       ln.text,
			Heading:    ln.heading,
			Highlights: highlightSpans(ln.text, s.terms),
		})
	}
	return p
}

// Close releases the script engine.
func (s *Surface) Close() error {
	return s.engine.Close()
}

// notify reports a pending position change.
func (s *Surface) notify() {
	s.mu.Lock()
	if !s.pending || s.layout == nil {
		s.mu.Unlock()
		return
	}
	s.pending = false
	l, url, page, count := s.listener, s.url, s.page, s.layout.pageCount()
	s.mu.Unlock()

	if l != nil {
		l.PositionChanged(url, page, count)
	}
}

func (s *Surface) progressLocked() float64 {
	if s.layout == nil {
		return 0
	}
	return float64(s.page-1) / float64(s.layout.pageCount())
}

// relayoutLocked rebuilds the layout and moves to the page matching
// progress.
func (s *Surface) relayoutLocked(progress float64) {
	s.layout = newLayout(s.doc, s.columns, s.rows, s.scale, s.scrolling)
	s.goToLocked(s.layout.pageForProgress(progress))
	s.pending = true
}

func (s *Surface) goToLocked(page int) {
	page = min(max(page, 1), s.layout.pageCount())
	if page != s.page {
		s.page = page
		s.pending = true
	}
}

func countMatches(text string, terms []string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, t := range terms {
		if t = strings.ToLower(t); t != "" {
			n += strings.Count(lower, t)
		}
	}
	return n
}

// highlightSpans finds case-insensitive occurrences of terms in text.
// Lines whose lowercase form changes byte length are left unhighlighted.
func highlightSpans(text string, terms []string) []Span {
	if len(terms) == 0 {
		return nil
	}
	lower := strings.ToLower(text)
	if len(lower) != len(text) {
		return nil
	}
	var spans []Span
	for _, t := range terms {
		t = strings.ToLower(t)
		if t == "" {
			continue
		}
		for off := 0; ; {
			i := strings.Index(lower[off:], t)
			if i < 0 {
				break
			}
			start := off + i
			spans = append(spans, Span{Start: start, End: start + len(t)})
			off = start + len(t)
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return spans
}
