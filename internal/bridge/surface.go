package bridge

import "context"

// Surface renders publication content. Implementations are UI-affine: all
// methods are called from a single goroutine.
type Surface interface {
	// Load replaces the displayed content with the resource at url.
	Load(url string) error
	// Evaluate runs a script and returns its JSON reply.
	Evaluate(source string) (string, error)
	// SetListener registers the receiver of surface notifications. A nil
	// listener disables notifications.
	SetListener(l Listener)
}

// Listener receives notifications from a surface.
type Listener interface {
	// PositionChanged reports the 1-based current page and the page count of
	// the document loaded from url.
	PositionChanged(url string, currentPage, pageCount int)
	// CenterTapped reports a tap in the middle of the page.
	CenterTapped()
}

// Bridge issues asynchronous requests to the attached surface.
type Bridge interface {
	OpenLocation(ctx context.Context, url string) *Future[struct{}]
	RunScript(ctx context.Context, s Script) *Future[Result]
	Close() error
}
