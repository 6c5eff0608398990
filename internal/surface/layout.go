package surface

import (
	"math"
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

// minWrapWidth keeps very large text scales readable.
const minWrapWidth = 8

// progressEpsilon absorbs rounding when a progress computed as
// (page-1)/count is mapped back to a page.
const progressEpsilon = 1e-9

// line is one wrapped row of chapter text.
type line struct {
	text    string
	block   int
	heading bool
}

// layout is a document wrapped to a viewport.
type layout struct {
	lines      []line
	firstLine  []int // block index -> first line
	rows, step int
}

// wrapWidth is the effective column count at scale.
func wrapWidth(columns int, scale float64) int {
	if scale <= 0 {
		scale = 1
	}
	w := int(math.Floor(float64(columns) / scale))
	return max(w, minWrapWidth)
}

func newLayout(doc *document, columns, rows int, scale float64, scrolling bool) *layout {
	l := &layout{
		rows:      max(rows, 1),
		firstLine: make([]int, len(doc.blocks)),
	}
	l.step = l.rows
	if scrolling {
		l.step = max(l.rows/2, 1)
	}

	width := wrapWidth(columns, scale)
	for i, b := range doc.blocks {
		if i > 0 {
			l.lines = append(l.lines, line{block: i})
		}
		l.firstLine[i] = len(l.lines)
		for _, row := range strings.Split(wordwrap.String(b.text, width), "\n") {
			l.lines = append(l.lines, line{text: row, block: i, heading: b.heading})
		}
	}
	return l
}

// pageCount is the number of distinct viewport positions.
func (l *layout) pageCount() int {
	n := len(l.lines)
	if n <= l.rows {
		return 1
	}
	return 1 + (n-l.rows+l.step-1)/l.step
}

// top returns the first line shown on page (1-based).
func (l *layout) top(page int) int {
	return (page - 1) * l.step
}

// pageOfLine returns the page that first shows line i.
func (l *layout) pageOfLine(i int) int {
	p := i/l.step + 1
	return min(max(p, 1), l.pageCount())
}

// pageOfBlock returns the page holding the start of block b. An index past
// the last block maps to the last page.
func (l *layout) pageOfBlock(b int) int {
	if b >= len(l.firstLine) {
		return l.pageCount()
	}
	return l.pageOfLine(l.firstLine[b])
}

// pageForProgress maps a chapter progress in [0,1] to a page.
func (l *layout) pageForProgress(p float64) int {
	count := l.pageCount()
	page := int(math.Floor(p*float64(count)+progressEpsilon)) + 1
	return min(max(page, 1), count)
}

// visible returns the lines of page.
func (l *layout) visible(page int) []line {
	start := min(l.top(page), len(l.lines))
	end := min(start+l.rows, len(l.lines))
	return l.lines[start:end]
}
