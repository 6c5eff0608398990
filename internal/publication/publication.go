// Package publication models a parsed publication as seen by the reading
// session: its reading order, table of contents, auxiliary resources and a
// source for chapter content.
//
// Parsing container formats such as EPUB happens elsewhere. This package only
// loads a small manifest (book.yaml or book.toml) that lists the structure of
// an already-extracted book directory.
package publication

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// Link is a reference to a publication document, optionally with a title and
// nested children (used by the table of contents).
type Link struct {
	Href     string `yaml:"href" toml:"href"`
	Title    string `yaml:"title,omitempty" toml:"title,omitempty"`
	Type     string `yaml:"type,omitempty" toml:"type,omitempty"`
	Children []Link `yaml:"children,omitempty" toml:"children,omitempty"`
}

// Publication is a parsed book.
type Publication struct {
	ID           string
	Title        string
	Author       string
	ReadingOrder []Link
	Resources    []Link
	TOC          []Link

	// Source provides the bytes of the documents referenced by the links.
	Source Source
}

// Source provides publication content by href.
type Source interface {
	Open(href string) ([]byte, error)
}

// ErrNotFound is returned by sources when an href has no content.
var ErrNotFound = errors.New("publication: document not found")

// DirSource reads content from a file system rooted at the book directory.
type DirSource struct {
	fsys fs.FS
}

// NewDirSource creates a source over fsys.
func NewDirSource(fsys fs.FS) *DirSource {
	return &DirSource{fsys: fsys}
}

// Open reads the document at href. Fragments are ignored.
func (s *DirSource) Open(href string) ([]byte, error) {
	name := CleanHref(stripFragment(href))
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, href)
		}
		return nil, fmt.Errorf("reading %s: %w", href, err)
	}
	return data, nil
}

// MapSource serves documents from memory.
type MapSource map[string]string

// Open returns the document stored under href (fragment ignored).
func (m MapSource) Open(href string) ([]byte, error) {
	doc, ok := m[stripFragment(href)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, href)
	}
	return []byte(doc), nil
}

// CleanHref normalizes a manifest href: slashes, dot segments and a leading
// "/" are removed while the fragment is preserved.
func CleanHref(href string) string {
	p, frag, hasFrag := strings.Cut(href, "#")
	p = strings.ReplaceAll(p, "\\", "/")
	if p != "" {
		p = strings.TrimPrefix(path.Clean("/"+p), "/")
	}
	if hasFrag {
		return p + "#" + frag
	}
	return p
}

func stripFragment(href string) string {
	p, _, _ := strings.Cut(href, "#")
	return p
}
