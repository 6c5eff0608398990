// Package reader implements the reading session controller.
//
// A Session owns the reading state of one open publication. Commands are
// submitted from any goroutine and executed one at a time, in submission
// order, on the session's dispatcher worker. Surface notifications (page
// changes, center taps) are queued on the same worker, so all state changes
// happen on a single goroutine. Outcomes are reported only through the event
// bus.
package reader

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/folio/internal/bookmark"
	"github.com/dshills/folio/internal/bridge"
	"github.com/dshills/folio/internal/command"
	"github.com/dshills/folio/internal/dispatcher"
	"github.com/dshills/folio/internal/event"
	"github.com/dshills/folio/internal/event/events"
	"github.com/dshills/folio/internal/event/topic"
	"github.com/dshills/folio/internal/logging"
	"github.com/dshills/folio/internal/navigation"
)

// Session is an open publication.
type Session struct {
	cfg    Config
	graph  *navigation.Graph
	bridge bridge.Bridge
	conn   *bridge.Connector
	bus    event.Bus
	pub    *event.Publisher
	log    *logging.Logger
	worker *dispatcher.Dispatcher

	state  atomic.Pointer[State]
	report atomic.Pointer[positionReport]

	// Worker only.
	pageCounts map[int]int

	closeOnce sync.Once
}

// Open starts a session and submits the initial chapter open.
func Open(cfg Config, deps Deps) (*Session, error) {
	if cfg.Publication == nil {
		return nil, fmt.Errorf("%w: nil publication", ErrInvalidConfig)
	}
	if deps.Bridge == nil || deps.Connector == nil {
		return nil, fmt.Errorf("%w: bridge and connector are required", ErrInvalidConfig)
	}
	cfg = cfg.withDefaults()

	graph, err := navigation.FromPublication(cfg.Publication)
	if err != nil {
		return nil, err
	}
	if graph.ChapterCount() == 0 {
		return nil, fmt.Errorf("%w: empty reading order", ErrInvalidConfig)
	}

	log := deps.Logger
	if log == nil {
		log = logging.Nop()
	}
	log = log.WithComponent("reader").WithField("book", cfg.BookID)

	bus := deps.Bus
	if bus == nil {
		bus = event.NewBus(event.WithLogger(log))
	}
	if !bus.IsRunning() {
		if err := bus.Start(); err != nil {
			return nil, fmt.Errorf("starting event bus: %w", err)
		}
	}

	s := &Session{
		cfg:        cfg,
		graph:      graph,
		bridge:     deps.Bridge,
		conn:       deps.Connector,
		bus:        bus,
		pub:        event.NewPublisher(bus, "reader"),
		log:        log,
		pageCounts: make(map[int]int),
	}

	first, _ := graph.Chapter(0)
	s.state.Store(&State{
		ChapterIndex: 0,
		ChapterTitle: first.NavPoint.Title,
		Href:         first.NavPoint.Locator.Href,
		Bookmarks:    slices.Clone(cfg.Bookmarks),
		Theme:        cfg.Theme,
	})

	s.worker = dispatcher.New(
		dispatcher.DefaultConfig().WithMetrics(),
		dispatcher.WithHooks(s.hooks()),
		dispatcher.WithLogger(log),
	)
	s.registerHandlers()
	s.conn.SetListener(surfaceListener{s: s})
	s.worker.Start()

	publish(context.Background(), s, events.TopicBookmarksLoaded, events.BookmarksLoaded{
		Bookmarks: slices.Clone(cfg.Bookmarks),
	})
	s.worker.Submit(command.OpenChapter{Locator: s.initialLocator()})

	log.Info("session opened (%d chapters)", graph.ChapterCount())
	return s, nil
}

func (s *Session) initialLocator() navigation.Locator {
	if s.cfg.InitialLocator != nil {
		return *s.cfg.InitialLocator
	}
	if lr, ok := bookmark.FindLastRead(s.cfg.Bookmarks); ok {
		return lr.Locator
	}
	first, _ := s.graph.Chapter(0)
	return navigation.AtProgress(first.NavPoint.Locator.Href, 0)
}

// Submit queues cmd. It never fails; after Close the command is dropped.
func (s *Session) Submit(cmd command.Command) dispatcher.Submission {
	return s.worker.Submit(cmd)
}

// Sync waits until everything submitted before the call has executed.
func (s *Session) Sync(ctx context.Context) error {
	return s.worker.Sync(ctx)
}

// Bus returns the session's event bus.
func (s *Session) Bus() event.Bus {
	return s.bus
}

// Graph returns the navigation graph.
func (s *Session) Graph() *navigation.Graph {
	return s.graph
}

// Metrics returns per-command execution metrics.
func (s *Session) Metrics() *dispatcher.Metrics {
	return s.worker.Metrics()
}

// Close stops the worker, releases the surface and the bridge and completes
// the event stream. Failures are logged. Close is idempotent and always
// returns nil.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()

		if err := s.worker.Close(ctx); err != nil {
			s.log.Warn("closing worker: %v", err)
		}
		s.conn.SetListener(nil)
		s.conn.Detach()
		if err := s.bridge.Close(); err != nil {
			s.log.Warn("closing bridge: %v", err)
		}
		if err := s.bus.Stop(ctx); err != nil {
			s.log.Warn("stopping event bus: %v", err)
		}
		s.log.Info("session closed")
	})
	return nil
}

// hooks publish the command lifecycle.
func (s *Session) hooks() dispatcher.Hooks {
	ctx := context.Background()
	return dispatcher.Hooks{
		Started: func(sub dispatcher.Submission) {
			publish(ctx, s, events.TopicCommandStarted, events.CommandStarted{
				SubmissionID: sub.ID, Command: sub.Command,
			})
		},
		RunningLong: func(sub dispatcher.Submission) {
			publish(ctx, s, events.TopicCommandRunningLong, events.CommandRunningLong{
				SubmissionID: sub.ID, Command: sub.Command,
			})
		},
		Finished: func(sub dispatcher.Submission, err error, elapsed time.Duration) {
			if err != nil {
				s.log.Warn("%s failed: %v", sub.Command.Name(), err)
				publish(ctx, s, events.TopicCommandFailed, events.CommandFailed{
					SubmissionID: sub.ID, Command: sub.Command, Err: err, Duration: elapsed,
				})
				return
			}
			publish(ctx, s, events.TopicCommandSucceeded, events.CommandSucceeded{
				SubmissionID: sub.ID, Command: sub.Command, Duration: elapsed,
			})
		},
	}
}

// publish emits a typed event. A stopped bus is logged and ignored.
func publish[T any](ctx context.Context, s *Session, t topic.Topic, payload T) {
	if err := event.Publish(ctx, s.pub, t, payload); err != nil {
		s.log.Debug("publish %s: %v", t, err)
	}
}
