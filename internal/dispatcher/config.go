package dispatcher

import "github.com/dshills/folio/internal/logging"

// Config configures the dispatcher.
type Config struct {
	// EnableMetrics records per-command timing.
	EnableMetrics bool

	// RecoverFromPanic converts handler panics into ErrPanic errors. When
	// disabled a panicking handler crashes the worker.
	RecoverFromPanic bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		EnableMetrics:    false,
		RecoverFromPanic: true,
	}
}

// WithMetrics enables metrics collection.
func (c Config) WithMetrics() Config {
	c.EnableMetrics = true
	return c
}

// WithPanicRecovery sets panic recovery.
func (c Config) WithPanicRecovery(enabled bool) Config {
	c.RecoverFromPanic = enabled
	return c
}

// Option configures collaborators.
type Option func(*Dispatcher)

// WithHooks installs lifecycle hooks.
func WithHooks(h Hooks) Option {
	return func(d *Dispatcher) {
		d.hooks = h
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}
