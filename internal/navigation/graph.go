package navigation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/folio/internal/publication"
)

// ErrMalformedGraph is returned when graph input violates the reading-order
// invariants. It signals a programming error in the caller, not a
// recoverable condition.
var ErrMalformedGraph = errors.New("navigation: malformed graph")

// Graph is the immutable structural model of a publication: the reading
// order, the auxiliary resources and the flattened table of contents.
//
// A Graph is safe for concurrent use.
type Graph struct {
	readingOrder []ReadingOrderNode
	resources    []ResourceNode
	toc          []TOCEntry
}

// New builds a graph from prepared nodes. Reading-order indices must be
// sorted, unique and contiguous from 0.
func New(readingOrder []ReadingOrderNode, resources []ResourceNode, toc []TOCEntry) (*Graph, error) {
	for i, n := range readingOrder {
		if n.Index != i {
			return nil, fmt.Errorf("%w: reading order node %d has index %d", ErrMalformedGraph, i, n.Index)
		}
	}
	for i, e := range toc {
		if e.Depth < 0 {
			return nil, fmt.Errorf("%w: toc entry %d has negative depth", ErrMalformedGraph, i)
		}
	}

	return &Graph{
		readingOrder: append([]ReadingOrderNode(nil), readingOrder...),
		resources:    append([]ResourceNode(nil), resources...),
		toc:          append([]TOCEntry(nil), toc...),
	}, nil
}

// FromPublication builds the graph of pub. Reading-order and resource links
// without a title inherit one from the table of contents.
func FromPublication(pub *publication.Publication) (*Graph, error) {
	if pub == nil {
		return nil, fmt.Errorf("%w: nil publication", ErrMalformedGraph)
	}

	flat := flattenTOC(pub.TOC)
	toc := make([]TOCEntry, len(flat))
	for i, e := range flat {
		toc[i] = TOCEntry{
			Point: Point{Title: e.link.Title, Locator: AtProgress(Href(e.link.Href), 0)},
			Depth: e.depth,
		}
	}

	readingOrder := make([]ReadingOrderNode, len(pub.ReadingOrder))
	for i, l := range pub.ReadingOrder {
		readingOrder[i] = ReadingOrderNode{NavPoint: pointFor(l, flat), Index: i}
	}

	resources := make([]ResourceNode, len(pub.Resources))
	for i, l := range pub.Resources {
		resources[i] = ResourceNode{NavPoint: pointFor(l, flat)}
	}

	return New(readingOrder, resources, toc)
}

// ReadingOrder returns a copy of the reading-order nodes.
func (g *Graph) ReadingOrder() []ReadingOrderNode {
	return append([]ReadingOrderNode(nil), g.readingOrder...)
}

// Resources returns a copy of the resource nodes.
func (g *Graph) Resources() []ResourceNode {
	return append([]ResourceNode(nil), g.resources...)
}

// TableOfContents returns a copy of the flattened table of contents.
func (g *Graph) TableOfContents() []TOCEntry {
	return append([]TOCEntry(nil), g.toc...)
}

// ChapterCount returns the size of the reading order.
func (g *Graph) ChapterCount() int {
	return len(g.readingOrder)
}

// Chapter returns the reading-order node at index i.
func (g *Graph) Chapter(i int) (ReadingOrderNode, bool) {
	if i < 0 || i >= len(g.readingOrder) {
		return ReadingOrderNode{}, false
	}
	return g.readingOrder[i], true
}

// FindNavigationNode resolves loc to a node. An exact href match is tried
// first; if that fails and the href has a fragment, the match is retried
// without it and the fragment is returned in the target. Progress is never
// considered. A miss is reported with false.
func (g *Graph) FindNavigationNode(loc Locator) (Target, bool) {
	if n, ok := g.findExact(loc.Href); ok {
		return Target{Node: n}, true
	}

	if !loc.Href.HasFragment() {
		return Target{}, false
	}

	n, ok := g.findExact(loc.Href.WithoutFragment())
	if !ok {
		return Target{}, false
	}
	t, err := NewTarget(n, loc.Href.Fragment())
	if err != nil {
		return Target{Node: n}, true
	}
	return t, true
}

func (g *Graph) findExact(href Href) (Node, bool) {
	for _, n := range g.readingOrder {
		if n.NavPoint.Locator.Href == href {
			return n, true
		}
	}
	for _, n := range g.resources {
		if n.NavPoint.Locator.Href == href {
			return n, true
		}
	}
	return nil, false
}

// FindNextNode returns the reading-order node after n. Resource nodes have
// no successor.
func (g *Graph) FindNextNode(n Node) (ReadingOrderNode, bool) {
	switch v := n.(type) {
	case ReadingOrderNode:
		return g.Chapter(v.Index + 1)
	case ResourceNode:
		return ReadingOrderNode{}, false
	default:
		panic(fmt.Sprintf("navigation: unknown node type %T", n))
	}
}

// FindPreviousNode returns the reading-order node before n. Resource nodes
// have no predecessor.
func (g *Graph) FindPreviousNode(n Node) (ReadingOrderNode, bool) {
	switch v := n.(type) {
	case ReadingOrderNode:
		return g.Chapter(v.Index - 1)
	case ResourceNode:
		return ReadingOrderNode{}, false
	default:
		panic(fmt.Sprintf("navigation: unknown node type %T", n))
	}
}

// NextTOCEntry returns the table-of-contents entry following the first
// entry whose point equals p.
func (g *Graph) NextTOCEntry(p Point) (TOCEntry, bool) {
	i := g.tocIndex(p)
	if i < 0 || i+1 >= len(g.toc) {
		return TOCEntry{}, false
	}
	return g.toc[i+1], true
}

// PreviousTOCEntry returns the table-of-contents entry preceding the first
// entry whose point equals p.
func (g *Graph) PreviousTOCEntry(p Point) (TOCEntry, bool) {
	i := g.tocIndex(p)
	if i <= 0 {
		return TOCEntry{}, false
	}
	return g.toc[i-1], true
}

func (g *Graph) tocIndex(p Point) int {
	for i, e := range g.toc {
		if e.Point == p {
			return i
		}
	}
	return -1
}

// flatLink is a TOC link annotated with its depth.
type flatLink struct {
	depth int
	link  publication.Link
}

// flattenTOC walks the TOC tree in pre-order.
func flattenTOC(links []publication.Link) []flatLink {
	var out []flatLink
	var walk func(links []publication.Link, depth int)
	walk = func(links []publication.Link, depth int) {
		for _, l := range links {
			out = append(out, flatLink{depth: depth, link: l})
			walk(l.Children, depth+1)
		}
	}
	walk(links, 0)
	return out
}

func pointFor(l publication.Link, toc []flatLink) Point {
	href := Href(l.Href)
	return Point{Title: titleFor(l, toc), Locator: AtProgress(href, 0)}
}

// titleFor returns the link's own title or the title of the deepest TOC
// entry referring to the same document. A link without a fragment matches
// TOC entries by path; a link with a fragment needs an exact match.
func titleFor(l publication.Link, toc []flatLink) string {
	if strings.TrimSpace(l.Title) != "" {
		return l.Title
	}

	href := Href(l.Href)
	best := -1
	title := ""
	for _, e := range toc {
		entry := Href(e.link.Href)
		var match bool
		if href.HasFragment() {
			match = entry == href
		} else {
			match = entry.Path() == href.Path()
		}
		if !match || strings.TrimSpace(e.link.Title) == "" {
			continue
		}
		if e.depth > best {
			best = e.depth
			title = e.link.Title
		}
	}
	return title
}
