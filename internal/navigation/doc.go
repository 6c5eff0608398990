// Package navigation models the structural layout of a publication.
//
// A Graph holds three immutable views built once from a parsed publication:
//
//   - the reading order: chapters in linear order, each a ReadingOrderNode
//     with a zero-based Index
//   - the resources: documents addressable by href but outside the reading
//     order, each a ResourceNode
//   - the flattened table of contents: a pre-order walk of the TOC tree as
//     (Point, Depth) pairs
//
// # Titles
//
// Reading-order links frequently carry no title while the TOC names the same
// documents. When a graph is built from a publication, untitled links take the
// title of the deepest TOC entry that refers to the same document.
//
// # Resolution
//
// FindNavigationNode maps a Locator to a Target. Misses are ordinary results
// (reported with false), never errors:
//
//	target, ok := graph.FindNavigationNode(navigation.AtProgress("text/ch2.xhtml#note3", 0))
//	if ok {
//	    // target.Node is chapter 2, target.ExtraFragment is "note3"
//	}
//
// Sequential traversal with FindNextNode and FindPreviousNode only applies to
// the reading order; resources have no ordering.
package navigation
