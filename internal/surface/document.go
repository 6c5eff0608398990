package surface

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// block is one paragraph of chapter text.
type block struct {
	text    string
	heading bool
}

// document is a chapter reduced to paragraphs and fragment anchors.
type document struct {
	blocks  []block
	anchors map[string]int // fragment id -> block index
}

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.Aside: true, atom.Header: true, atom.Footer: true, atom.Nav: true,
	atom.Blockquote: true, atom.Pre: true, atom.Li: true, atom.Dt: true,
	atom.Dd: true, atom.Tr: true, atom.Figcaption: true, atom.Hr: true,
	atom.Br: true, atom.Body: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
}

var headingElements = map[atom.Atom]bool{
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
}

var skippedElements = map[atom.Atom]bool{
	atom.Head: true, atom.Script: true, atom.Style: true, atom.Template: true,
}

// parseDocument converts chapter bytes into a document. Markup is detected by
// extension or a leading '<'; anything else is treated as plain text with
// blank-line separated paragraphs.
func parseDocument(name string, data []byte) (*document, error) {
	if isMarkup(name, data) {
		return parseHTML(data)
	}
	return parseText(string(data)), nil
}

func isMarkup(name string, data []byte) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".html", ".htm", ".xhtml", ".xml":
		return true
	case ".txt":
		return false
	}
	return bytes.HasPrefix(bytes.TrimSpace(data), []byte("<"))
}

func parseText(s string) *document {
	doc := &document{anchors: map[string]int{}}
	for _, para := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n\n") {
		if t := collapse(para); t != "" {
			doc.blocks = append(doc.blocks, block{text: t})
		}
	}
	return doc
}

func parseHTML(data []byte) (*document, error) {
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing markup: %w", err)
	}

	doc := &document{anchors: map[string]int{}}
	var (
		cur     strings.Builder
		heading bool
	)
	flush := func() {
		if t := collapse(cur.String()); t != "" {
			doc.blocks = append(doc.blocks, block{text: t, heading: heading})
		}
		cur.Reset()
		heading = false
	}

	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			cur.WriteString(n.Data)
			return
		case html.ElementNode:
			if skippedElements[n.DataAtom] {
				return
			}
			isBlock := blockElements[n.DataAtom]
			if isBlock {
				flush()
			}
			if id := attr(n, "id"); id != "" {
				if _, seen := doc.anchors[id]; !seen {
					doc.anchors[id] = len(doc.blocks)
				}
			}
			if headingElements[n.DataAtom] {
				heading = true
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				visit(c)
			}
			if isBlock {
				flush()
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(root)
	flush()
	return doc, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key && a.Namespace == "" {
			return a.Val
		}
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// text returns the chapter as a single string, one paragraph per line.
func (d *document) text() string {
	parts := make([]string, len(d.blocks))
	for i, b := range d.blocks {
		parts[i] = b.text
	}
	return strings.Join(parts, "\n")
}
