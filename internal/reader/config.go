package reader

import (
	"time"

	"github.com/dshills/folio/internal/bookmark"
	"github.com/dshills/folio/internal/bridge"
	"github.com/dshills/folio/internal/event"
	"github.com/dshills/folio/internal/logging"
	"github.com/dshills/folio/internal/navigation"
	"github.com/dshills/folio/internal/publication"
	"github.com/dshills/folio/internal/theme"
)

// Default waits.
const (
	DefaultBridgeTimeout  = time.Minute
	DefaultConnectTimeout = 30 * time.Second

	closeTimeout = 5 * time.Second
)

// PageNumbering selects how page numbers are reported.
type PageNumbering int

const (
	// PerChapter numbers pages within the current chapter.
	PerChapter PageNumbering = iota
	// WholeBook numbers pages across the reading order. Page counts of
	// chapters not yet opened are estimated from the current chapter.
	WholeBook
)

// String returns the configuration name of the mode.
func (p PageNumbering) String() string {
	if p == WholeBook {
		return "whole-book"
	}
	return "per-chapter"
}

// Config is consumed once when a session opens.
type Config struct {
	Publication *publication.Publication
	BookID      string
	Theme       theme.Theme
	Bookmarks   []bookmark.Bookmark

	Scrolling     bool
	PageNumbering PageNumbering

	// InitialLocator is opened first. When nil the last-read bookmark is
	// used, then the start of the first chapter.
	InitialLocator *navigation.Locator

	// BridgeTimeout bounds every wait on a bridge future.
	BridgeTimeout time.Duration
	// ConnectTimeout bounds the wait for a surface to attach.
	ConnectTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.BridgeTimeout <= 0 {
		c.BridgeTimeout = DefaultBridgeTimeout
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.Theme == (theme.Theme{}) {
		c.Theme = theme.Default()
	}
	return c
}

// Deps are the collaborators of a session.
type Deps struct {
	Bridge    bridge.Bridge
	Connector *bridge.Connector
	// Bus receives session events. A bus is created when nil. The session
	// stops it on Close.
	Bus    event.Bus
	Logger *logging.Logger
}
