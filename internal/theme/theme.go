// Package theme defines the reader's visual settings.
package theme

import (
	"errors"
	"fmt"
	"strings"
)

// Text size bounds. The upper bound is exclusive.
const (
	MinTextSize = 0.7
	MaxTextSize = 8.0
)

// ErrInvalidArgument is returned for out-of-range theme values.
var ErrInvalidArgument = errors.New("theme: invalid argument")

// ColorScheme is the page color scheme.
type ColorScheme int

const (
	ColorSchemeLight ColorScheme = iota
	ColorSchemeDark
	ColorSchemeSepia
	ColorSchemeHighContrast
)

var colorSchemeNames = map[ColorScheme]string{
	ColorSchemeLight:        "light",
	ColorSchemeDark:         "dark",
	ColorSchemeSepia:        "sepia",
	ColorSchemeHighContrast: "high-contrast",
}

// String returns the scheme name used in configuration and scripts.
func (c ColorScheme) String() string {
	if s, ok := colorSchemeNames[c]; ok {
		return s
	}
	return "unknown"
}

// Next cycles to the following scheme.
func (c ColorScheme) Next() ColorScheme {
	return (c + 1) % ColorScheme(len(colorSchemeNames))
}

// ParseColorScheme parses a scheme name (case-insensitive).
func ParseColorScheme(s string) (ColorScheme, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for c, name := range colorSchemeNames {
		if name == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown color scheme %q", ErrInvalidArgument, s)
}

// Font is the body font family.
type Font int

const (
	FontSerif Font = iota
	FontSansSerif
	FontMonospace
	FontOpenDyslexic
)

var fontNames = map[Font]string{
	FontSerif:        "serif",
	FontSansSerif:    "sans-serif",
	FontMonospace:    "monospace",
	FontOpenDyslexic: "open-dyslexic",
}

// String returns the font name used in configuration and scripts.
func (f Font) String() string {
	if s, ok := fontNames[f]; ok {
		return s
	}
	return "unknown"
}

// ParseFont parses a font name (case-insensitive).
func ParseFont(s string) (Font, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, name := range fontNames {
		if name == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown font %q", ErrInvalidArgument, s)
}

// Theme is an immutable set of visual settings.
type Theme struct {
	ColorScheme  ColorScheme
	Font         Font
	TextSize     float64
	PublisherCSS bool
}

// New validates and returns a theme. TextSize must lie in [0.7, 8.0).
func New(cs ColorScheme, font Font, textSize float64, publisherCSS bool) (Theme, error) {
	if err := ValidateTextSize(textSize); err != nil {
		return Theme{}, err
	}
	if _, ok := colorSchemeNames[cs]; !ok {
		return Theme{}, fmt.Errorf("%w: color scheme %d", ErrInvalidArgument, int(cs))
	}
	if _, ok := fontNames[font]; !ok {
		return Theme{}, fmt.Errorf("%w: font %d", ErrInvalidArgument, int(font))
	}
	return Theme{ColorScheme: cs, Font: font, TextSize: textSize, PublisherCSS: publisherCSS}, nil
}

// Default returns the light serif theme at normal size.
func Default() Theme {
	return Theme{ColorScheme: ColorSchemeLight, Font: FontSerif, TextSize: 1.0, PublisherCSS: true}
}

// ValidateTextSize checks the half-open text size range.
func ValidateTextSize(size float64) error {
	if !(size >= MinTextSize && size < MaxTextSize) {
		return fmt.Errorf("%w: text size %v outside [%v, %v)", ErrInvalidArgument, size, MinTextSize, MaxTextSize)
	}
	return nil
}

// WithTextSize returns a copy with a new validated text size.
func (t Theme) WithTextSize(size float64) (Theme, error) {
	return New(t.ColorScheme, t.Font, size, t.PublisherCSS)
}

// WithColorScheme returns a copy with a different color scheme.
func (t Theme) WithColorScheme(cs ColorScheme) (Theme, error) {
	return New(cs, t.Font, t.TextSize, t.PublisherCSS)
}

// WithFont returns a copy with a different font.
func (t Theme) WithFont(f Font) (Theme, error) {
	return New(t.ColorScheme, f, t.TextSize, t.PublisherCSS)
}
