package navigation

import (
	"path"
	"strings"
)

// Href is a path-like reference to a publication document with an optional
// "#fragment" suffix.
type Href string

// Path returns the href without its fragment.
func (h Href) Path() string {
	p, _, _ := strings.Cut(string(h), "#")
	return p
}

// Fragment returns the fragment without the leading "#".
func (h Href) Fragment() string {
	_, f, _ := strings.Cut(string(h), "#")
	return f
}

// HasFragment reports whether the href carries a non-empty fragment.
func (h Href) HasFragment() bool {
	return h.Fragment() != ""
}

// WithoutFragment returns the href with any fragment removed.
func (h Href) WithoutFragment() Href {
	return Href(h.Path())
}

// WithFragment returns the href with its fragment replaced by f.
func (h Href) WithFragment(f string) Href {
	if f == "" {
		return h.WithoutFragment()
	}
	return Href(h.Path() + "#" + f)
}

// Resolve interprets rel relative to the directory of h. A rel consisting
// only of a fragment refers to h itself.
//
// Example: "text/ch1.xhtml".Resolve("../images/a.png") -> "images/a.png"
func (h Href) Resolve(rel string) Href {
	relPath, frag, hasFrag := strings.Cut(rel, "#")

	var p string
	switch {
	case relPath == "":
		p = h.Path()
	case strings.HasPrefix(relPath, "/"):
		p = strings.TrimPrefix(path.Clean(relPath), "/")
	default:
		p = strings.TrimPrefix(path.Clean("/"+path.Join(path.Dir(h.Path()), relPath)), "/")
	}

	if hasFrag && frag != "" {
		return Href(p + "#" + frag)
	}
	return Href(p)
}

// String returns the href as a string.
func (h Href) String() string {
	return string(h)
}

// Locator is a position within a publication: a chapter reference plus
// either a fractional progress or the end-of-chapter marker.
// Locators are values; two locators are equal when all fields are equal.
type Locator struct {
	Href Href

	// Progress is the fraction of the chapter read, in [0,1].
	// Ignored when End is set.
	Progress float64

	// End marks the last page of the chapter.
	End bool
}

// AtProgress returns a locator at progress p of href. p is clamped to [0,1].
func AtProgress(href Href, p float64) Locator {
	return Locator{Href: href, Progress: clamp01(p)}
}

// AtEnd returns a locator at the end of href.
func AtEnd(href Href) Locator {
	return Locator{Href: href, End: true}
}

func clamp01(p float64) float64 {
	switch {
	case p < 0 || p != p:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
