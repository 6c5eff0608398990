// Package config loads reader settings.
//
// Settings are resolved in order of increasing precedence: built-in
// defaults, a TOML file, then FOLIO_* environment variables. For example
// theme.text_size may be overridden with FOLIO_THEME_TEXT_SIZE.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/folio/internal/logging"
	"github.com/dshills/folio/internal/reader"
	"github.com/dshills/folio/internal/theme"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "FOLIO_"

// Duration is a time.Duration written as a string such as "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config holds every setting.
type Config struct {
	Book    BookConfig    `toml:"book" envPrefix:"BOOK_"`
	Theme   ThemeConfig   `toml:"theme" envPrefix:"THEME_"`
	Reader  ReaderConfig  `toml:"reader" envPrefix:"READER_"`
	Bridge  BridgeConfig  `toml:"bridge" envPrefix:"BRIDGE_"`
	Storage StorageConfig `toml:"storage" envPrefix:"STORAGE_"`
	Log     LogConfig     `toml:"log" envPrefix:"LOG_"`
}

// BookConfig locates the publication.
type BookConfig struct {
	// Path is the extracted book directory holding book.yaml or book.toml.
	Path string `toml:"path" env:"PATH"`
	// ID overrides the manifest identifier used for bookmarks.
	ID string `toml:"id" env:"ID"`
}

// ThemeConfig is the initial theme.
type ThemeConfig struct {
	ColorScheme  string  `toml:"color_scheme" env:"COLOR_SCHEME"`
	Font         string  `toml:"font" env:"FONT"`
	TextSize     float64 `toml:"text_size" env:"TEXT_SIZE"`
	PublisherCSS bool    `toml:"publisher_css" env:"PUBLISHER_CSS"`
}

// ReaderConfig selects the layout.
type ReaderConfig struct {
	Scrolling bool `toml:"scrolling" env:"SCROLLING"`
	// PageNumbering is "per-chapter" or "whole-book".
	PageNumbering string `toml:"page_numbering" env:"PAGE_NUMBERING"`
}

// BridgeConfig bounds waits on the rendering surface.
type BridgeConfig struct {
	Timeout        Duration `toml:"timeout" env:"TIMEOUT"`
	ConnectTimeout Duration `toml:"connect_timeout" env:"CONNECT_TIMEOUT"`
}

// StorageConfig locates the bookmark database.
type StorageConfig struct {
	Path string `toml:"path" env:"PATH"`
}

// LogConfig configures the log file.
type LogConfig struct {
	Level  string `toml:"level" env:"LEVEL"`
	Format string `toml:"format" env:"FORMAT"`
	// File receives log output. Empty disables logging.
	File string `toml:"file" env:"FILE"`
}

// Default returns the built-in settings.
func Default() *Config {
	t := theme.Default()
	return &Config{
		Theme: ThemeConfig{
			ColorScheme:  t.ColorScheme.String(),
			Font:         t.Font.String(),
			TextSize:     t.TextSize,
			PublisherCSS: t.PublisherCSS,
		},
		Reader: ReaderConfig{PageNumbering: reader.PerChapter.String()},
		Bridge: BridgeConfig{
			Timeout:        Duration{reader.DefaultBridgeTimeout},
			ConnectTimeout: Duration{reader.DefaultConnectTimeout},
		},
		Storage: StorageConfig{Path: "folio.db"},
		Log:     LogConfig{Level: "info", Format: string(logging.FormatJSON)},
	}
}

type options struct {
	environ map[string]string
}

// Option configures Load.
type Option func(*options)

// WithEnvironment replaces the process environment, for tests.
func WithEnvironment(environ map[string]string) Option {
	return func(o *options) {
		o.environ = environ
	}
}

// Load resolves the configuration. A missing file is not an error; an
// empty path skips the file layer.
func Load(path string, opts ...Option) (*Config, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	envOpts := env.Options{Prefix: EnvPrefix}
	if o.environ != nil {
		envOpts.Environment = o.environ
	}
	if err := env.ParseWithOptions(cfg, envOpts); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		perr := &ParseError{Path: path, Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return perr
	}
	return nil
}

// Validate checks every setting.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Theme.Theme(); err != nil {
		errs = append(errs, &FieldError{Field: "theme", Message: err.Error()})
	}
	if _, err := c.Reader.Numbering(); err != nil {
		errs = append(errs, &FieldError{Field: "reader.page_numbering", Message: err.Error()})
	}
	if c.Bridge.Timeout.Duration <= 0 {
		errs = append(errs, &FieldError{Field: "bridge.timeout", Message: "must be positive"})
	}
	if c.Bridge.ConnectTimeout.Duration <= 0 {
		errs = append(errs, &FieldError{Field: "bridge.connect_timeout", Message: "must be positive"})
	}
	switch logging.Format(c.Log.Format) {
	case logging.FormatJSON, logging.FormatConsole:
	default:
		errs = append(errs, &FieldError{Field: "log.format", Message: fmt.Sprintf("unknown format %q", c.Log.Format)})
	}
	return errors.Join(errs...)
}

// Theme converts the settings into a validated theme.
func (t ThemeConfig) Theme() (theme.Theme, error) {
	cs, err := theme.ParseColorScheme(t.ColorScheme)
	if err != nil {
		return theme.Theme{}, err
	}
	f, err := theme.ParseFont(t.Font)
	if err != nil {
		return theme.Theme{}, err
	}
	return theme.New(cs, f, t.TextSize, t.PublisherCSS)
}

// Numbering parses the page numbering mode.
func (r ReaderConfig) Numbering() (reader.PageNumbering, error) {
	switch r.PageNumbering {
	case "", reader.PerChapter.String():
		return reader.PerChapter, nil
	case reader.WholeBook.String():
		return reader.WholeBook, nil
	default:
		return 0, fmt.Errorf("unknown page numbering %q", r.PageNumbering)
	}
}

// Logging returns the logger settings. The output is left for the caller.
func (l LogConfig) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(l.Level)
	cfg.Format = logging.Format(l.Format)
	return cfg
}
