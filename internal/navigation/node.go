package navigation

import (
	"fmt"
	"strings"
)

// Point is a titled location in the publication, produced once per
// structural unit when a Graph is built.
type Point struct {
	Title   string
	Locator Locator
}

// Node is a structural unit of the navigation graph.
//
// The set of implementations is closed: ReadingOrderNode and ResourceNode.
// Code that switches on a Node must handle both and panic otherwise.
type Node interface {
	Point() Point
	node()
}

// ReadingOrderNode is a chapter in the linear reading order.
type ReadingOrderNode struct {
	NavPoint Point

	// Index is the zero-based position in the reading order.
	Index int
}

// Point returns the node's navigation point.
func (n ReadingOrderNode) Point() Point { return n.NavPoint }

func (ReadingOrderNode) node() {}

// ResourceNode is an addressable document outside the reading order.
type ResourceNode struct {
	NavPoint Point
}

// Point returns the node's navigation point.
func (n ResourceNode) Point() Point { return n.NavPoint }

func (ResourceNode) node() {}

// TOCEntry is a flattened table-of-contents entry. Depth is 0 for top level.
type TOCEntry struct {
	Point Point
	Depth int
}

// Target is the result of resolving a locator to a node. ExtraFragment is
// set when the locator matched only after its fragment was stripped.
type Target struct {
	Node          Node
	ExtraFragment string
}

// NewTarget builds a target, validating the fragment invariant: it is
// either empty or non-blank and free of '#'.
func NewTarget(n Node, fragment string) (Target, error) {
	if fragment != "" && (strings.TrimSpace(fragment) == "" || strings.Contains(fragment, "#")) {
		return Target{}, fmt.Errorf("navigation: invalid target fragment %q", fragment)
	}
	return Target{Node: n, ExtraFragment: fragment}, nil
}

// ReadingOrder returns the target's node as a reading-order node.
func (t Target) ReadingOrder() (ReadingOrderNode, bool) {
	switch n := t.Node.(type) {
	case ReadingOrderNode:
		return n, true
	case ResourceNode, nil:
		return ReadingOrderNode{}, false
	default:
		panic(fmt.Sprintf("navigation: unknown node type %T", t.Node))
	}
}
