package bridge

import (
	"errors"

	"github.com/tidwall/gjson"
)

// Edge reports that a page move hit a chapter boundary.
type Edge int

const (
	EdgeNone Edge = iota
	EdgeStart
	EdgeEnd
)

func (e Edge) String() string {
	switch e {
	case EdgeStart:
		return "start"
	case EdgeEnd:
		return "end"
	default:
		return ""
	}
}

// Result is a decoded script reply. Fields a script does not report are
// zero.
type Result struct {
	Edge      Edge
	Matches   int
	Width     int
	Height    int
	Page      int
	PageCount int
}

// ParseResult decodes a JSON script reply such as
//
//	{"edge":"end","page":4,"page_count":4}
//
// A reply carrying an "error" member is reported as an error.
func ParseResult(reply string) (Result, error) {
	if reply == "" {
		return Result{}, nil
	}
	if !gjson.Valid(reply) {
		return Result{}, ErrMalformedResult
	}
	doc := gjson.Parse(reply)
	if !doc.IsObject() {
		return Result{}, ErrMalformedResult
	}
	if msg := doc.Get("error"); msg.Exists() {
		return Result{}, errors.New(msg.String())
	}

	r := Result{
		Matches:   int(doc.Get("matches").Int()),
		Width:     int(doc.Get("width").Int()),
		Height:    int(doc.Get("height").Int()),
		Page:      int(doc.Get("page").Int()),
		PageCount: int(doc.Get("page_count").Int()),
	}
	switch doc.Get("edge").String() {
	case "start":
		r.Edge = EdgeStart
	case "end":
		r.Edge = EdgeEnd
	}
	return r, nil
}
