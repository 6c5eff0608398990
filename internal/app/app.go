// Package app wires a reading session to a terminal: configuration,
// logging, bookmark storage, the headless surface and the input loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dshills/folio/internal/bookmark"
	"github.com/dshills/folio/internal/bookmark/store"
	"github.com/dshills/folio/internal/bridge"
	"github.com/dshills/folio/internal/config"
	"github.com/dshills/folio/internal/event"
	"github.com/dshills/folio/internal/logging"
	"github.com/dshills/folio/internal/publication"
	"github.com/dshills/folio/internal/reader"
	"github.com/dshills/folio/internal/surface"
)

// Key repeat limits for navigation and theme keys.
const (
	repeatInterval = 50 * time.Millisecond
	repeatBurst    = 3
)

// Options are the command line settings.
type Options struct {
	// ConfigPath is the TOML file. It is watched for theme changes.
	ConfigPath string
	// BookPath overrides book.path from the configuration.
	BookPath string
	// LogLevel overrides log.level when set.
	LogLevel string
	// Environ replaces the process environment, for tests.
	Environ map[string]string
}

// Application owns every long-lived component of a reading session.
type Application struct {
	opts Options
	cfg  *config.Config
	log  *logging.Logger

	logFile io.Closer

	pub       *publication.Publication
	bookID    string
	store     *store.Store
	persister *store.Persister
	bus       event.Bus
	conn      *bridge.Connector
	surface   *surface.Surface
	session   *reader.Session
	watcher   *config.Watcher
	sub       *event.Subscriber

	limiter *rate.Limiter
	redraw  chan struct{}

	mu sync.Mutex
	ui uiState

	shutdownOnce sync.Once
}

// New loads the configuration and opens the book. The session starts
// immediately; its first chapter opens once Run attaches a display.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:    opts,
		limiter: rate.NewLimiter(rate.Every(repeatInterval), repeatBurst),
		redraw:  make(chan struct{}, 1),
	}
	if err := app.bootstrap(); err != nil {
		app.Shutdown()
		return nil, err
	}
	return app, nil
}

// bootstrap initializes components in dependency order.
func (app *Application) bootstrap() error {
	var loadOpts []config.Option
	if app.opts.Environ != nil {
		loadOpts = append(loadOpts, config.WithEnvironment(app.opts.Environ))
	}

	// 1. Configuration
	cfg, err := config.Load(app.opts.ConfigPath, loadOpts...)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	if app.opts.BookPath != "" {
		cfg.Book.Path = app.opts.BookPath
	}
	if app.opts.LogLevel != "" {
		cfg.Log.Level = app.opts.LogLevel
	}
	if cfg.Book.Path == "" {
		return &InitError{Component: "config", Err: errors.New("no book path given")}
	}
	app.cfg = cfg

	// 2. Logging
	if err := app.openLog(); err != nil {
		return &InitError{Component: "log", Err: err}
	}

	// 3. Publication
	app.pub, err = publication.Load(cfg.Book.Path)
	if err != nil {
		return &InitError{Component: "publication", Err: err}
	}
	app.bookID = cfg.Book.ID
	if app.bookID == "" {
		app.bookID = app.pub.ID
	}

	// 4. Bookmark storage
	app.store, err = store.Open(cfg.Storage.Path, app.log)
	if err != nil {
		return &InitError{Component: "bookmark store", Err: err}
	}
	marks, err := app.store.Load(context.Background(), app.bookID)
	if err != nil {
		return &InitError{Component: "bookmark store", Err: err}
	}

	// 5. Event bus and persistence
	app.bus = event.NewBus(event.WithLogger(app.log))
	if err := app.bus.Start(); err != nil {
		return &InitError{Component: "event bus", Err: err}
	}
	app.persister, err = store.NewPersister(app.store, app.bus, app.bookID, app.log)
	if err != nil {
		return &InitError{Component: "persister", Err: err}
	}

	// 6. Surface and bridge
	app.surface, err = surface.New(app.pub.Source, surface.Options{
		Columns: surface.DefaultOptions().Columns,
		Rows:    surface.DefaultOptions().Rows,
		Logger:  app.log,
	})
	if err != nil {
		return &InitError{Component: "surface", Err: err}
	}
	app.conn = bridge.NewConnector()

	// 7. Session
	rcfg, err := app.sessionConfig(marks)
	if err != nil {
		return &InitError{Component: "session", Err: err}
	}
	app.session, err = reader.Open(rcfg, reader.Deps{
		Bridge:    bridge.NewSerial(app.conn, app.log),
		Connector: app.conn,
		Bus:       app.bus,
		Logger:    app.log,
	})
	if err != nil {
		return &InitError{Component: "session", Err: err}
	}

	// 8. Event subscriptions
	if err := app.subscribe(); err != nil {
		return &InitError{Component: "subscriptions", Err: err}
	}

	// 9. Config watcher
	if app.opts.ConfigPath != "" {
		app.watcher, err = config.Watch(app.opts.ConfigPath, app.configReloaded,
			config.WithWatchLogger(app.log),
			config.WithLoadOptions(loadOpts...))
		if err != nil {
			app.log.Warn("config watcher disabled: %v", err)
		}
	}

	app.log.Info("opened %q (%s) with %d bookmarks", app.pub.Title, app.bookID, len(marks))
	return nil
}

func (app *Application) openLog() error {
	if app.cfg.Log.File == "" {
		app.log = logging.Nop()
		return nil
	}
	f, err := os.OpenFile(app.cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	lc := app.cfg.Log.Logging()
	lc.Output = f
	app.log = logging.New(lc)
	app.logFile = f
	return nil
}

func (app *Application) sessionConfig(marks []bookmark.Bookmark) (reader.Config, error) {
	th, err := app.cfg.Theme.Theme()
	if err != nil {
		return reader.Config{}, err
	}
	numbering, err := app.cfg.Reader.Numbering()
	if err != nil {
		return reader.Config{}, err
	}
	return reader.Config{
		Publication:    app.pub,
		BookID:         app.bookID,
		Theme:          th,
		Bookmarks:      marks,
		Scrolling:      app.cfg.Reader.Scrolling,
		PageNumbering:  numbering,
		BridgeTimeout:  app.cfg.Bridge.Timeout.Duration,
		ConnectTimeout: app.cfg.Bridge.ConnectTimeout.Duration,
	}, nil
}

// Session returns the reading session.
func (app *Application) Session() *reader.Session {
	return app.session
}

// Surface returns the headless surface.
func (app *Application) Surface() *surface.Surface {
	return app.surface
}

// Shutdown releases every component in reverse order. It is safe to call
// more than once and on a partially initialized application.
func (app *Application) Shutdown() {
	app.shutdownOnce.Do(func() {
		if app.watcher != nil {
			if err := app.watcher.Close(); err != nil {
				app.log.Warn("closing config watcher: %v", err)
			}
		}
		if app.sub != nil {
			if err := app.sub.Close(); err != nil {
				app.log.Warn("closing position subscription: %v", err)
			}
		}
		if app.session != nil {
			// Stops the bus after draining pending bookmark writes.
			if err := app.session.Close(); err != nil {
				app.log.Warn("closing reading session: %v", err)
			}
		} else if app.bus != nil {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			if err := app.bus.Stop(ctx); err != nil {
				app.log.Warn("stopping event bus: %v", err)
			}
			cancel()
		}
		if app.persister != nil {
			if err := app.persister.Close(); err != nil {
				app.log.Warn("closing bookmark persister: %v", err)
			}
		}
		if app.surface != nil {
			if err := app.surface.Close(); err != nil {
				app.log.Warn("closing surface: %v", err)
			}
		}
		if app.store != nil {
			if err := app.store.Close(); err != nil {
				app.log.Warn("closing bookmark store: %v", err)
			}
		}
		app.log.Info("shutdown complete")
		if app.logFile != nil {
			if err := app.logFile.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "closing log file: %v\n", err)
			}
		}
	})
}
