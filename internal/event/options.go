package event

import "github.com/dshills/folio/internal/logging"

// BusOption configures a bus.
type BusOption func(*busConfig)

type busConfig struct {
	panicHandler PanicHandler
	logger       *logging.Logger
}

func defaultBusConfig() busConfig {
	return busConfig{logger: logging.Nop()}
}

// WithPanicHandler sets a function notified of recovered handler panics.
func WithPanicHandler(h PanicHandler) BusOption {
	return func(c *busConfig) {
		c.panicHandler = h
	}
}

// WithLogger sets the logger used for handler failures.
func WithLogger(l *logging.Logger) BusOption {
	return func(c *busConfig) {
		if l != nil {
			c.logger = l
		}
	}
}
