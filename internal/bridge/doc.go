// Package bridge is the asynchronous facade between a reading session and
// its rendering surface.
//
// A Surface is UI-affine: it must be driven from exactly one goroutine. The
// Serial bridge owns that goroutine and processes requests one at a time in
// arrival order, handing back a Future for each. The session's worker waits
// on those futures, bounded by WithTimeout, and never touches the surface
// directly.
//
// Surfaces come and go independently of the session. A Connector holds the
// currently attached surface, lets callers Wait for one to appear and
// forwards the surface's position and tap notifications to a single
// Listener.
package bridge
