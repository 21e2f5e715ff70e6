package ascii

import (
	"time"
	"unicode/utf8"

	"github.com/matzehuels/asciifolio/pkg/errors"
)

// Default values mirror the portfolio page.
const (
	DefaultCols             = 200
	DefaultFontPx           = 3.2
	DefaultMobileFontPx     = 2.6
	DefaultCharAspect       = 1.2
	DefaultRamp             = " .:-=+*#%@&▒░"
	DefaultPadding          = 24.0
	DefaultMobileBreakpoint = 600.0
	DefaultDebounce         = 150 * time.Millisecond
)

// Config holds the render settings. It is a plain value: callers pass it by
// value into every render so no two renders share mutable settings.
type Config struct {
	// Cols is the column count used when a job does not override it.
	Cols int `toml:"cols" yaml:"cols"`

	// FontPx is the glyph cell size on desktop viewports.
	FontPx float64 `toml:"font_px" yaml:"font_px"`

	// MobileFontPx is the glyph cell size at or below MobileBreakpoint.
	MobileFontPx float64 `toml:"mobile_font_px" yaml:"mobile_font_px"`

	// CharAspect compensates for glyphs being taller than wide.
	CharAspect float64 `toml:"char_aspect" yaml:"char_aspect"`

	// Ramp lists glyphs from lightest-appearing to densest.
	Ramp string `toml:"ramp" yaml:"ramp"`

	// Padding is kept free on every side of the viewport.
	Padding float64 `toml:"padding" yaml:"padding"`

	// MobileBreakpoint is the widest viewport treated as mobile.
	MobileBreakpoint float64 `toml:"mobile_breakpoint" yaml:"mobile_breakpoint"`

	// Debounce is the quiet period before a resize triggers a re-render.
	Debounce time.Duration `toml:"debounce" yaml:"debounce"`
}

// DefaultConfig returns the portfolio defaults.
func DefaultConfig() Config {
	return Config{
		Cols:             DefaultCols,
		FontPx:           DefaultFontPx,
		MobileFontPx:     DefaultMobileFontPx,
		CharAspect:       DefaultCharAspect,
		Ramp:             DefaultRamp,
		Padding:          DefaultPadding,
		MobileBreakpoint: DefaultMobileBreakpoint,
		Debounce:         DefaultDebounce,
	}
}

// WithDefaults fills zero fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.Cols == 0 {
		c.Cols = d.Cols
	}
	if c.FontPx == 0 {
		c.FontPx = d.FontPx
	}
	if c.MobileFontPx == 0 {
		c.MobileFontPx = d.MobileFontPx
	}
	if c.CharAspect == 0 {
		c.CharAspect = d.CharAspect
	}
	if c.Ramp == "" {
		c.Ramp = d.Ramp
	}
	if c.MobileBreakpoint == 0 {
		c.MobileBreakpoint = d.MobileBreakpoint
	}
	if c.Debounce == 0 {
		c.Debounce = d.Debounce
	}
	return c
}

// Validate checks that the settings can produce a grid.
func (c Config) Validate() error {
	if c.Cols < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "cols must be at least 1, got %d", c.Cols)
	}
	if !positive(c.FontPx) || !positive(c.MobileFontPx) {
		return errors.New(errors.ErrCodeInvalidConfig, "font sizes must be positive (font_px %g, mobile_font_px %g)", c.FontPx, c.MobileFontPx)
	}
	if !positive(c.CharAspect) {
		return errors.New(errors.ErrCodeInvalidConfig, "char_aspect must be positive, got %g", c.CharAspect)
	}
	if !utf8.ValidString(c.Ramp) || utf8.RuneCountInString(c.Ramp) < 2 {
		return errors.New(errors.ErrCodeInvalidConfig, "ramp needs at least 2 glyphs, got %q", c.Ramp)
	}
	if c.Padding < 0 || !finite(c.Padding) {
		return errors.New(errors.ErrCodeInvalidConfig, "padding must be a non-negative number, got %g", c.Padding)
	}
	if !finite(c.MobileBreakpoint) {
		return errors.New(errors.ErrCodeInvalidConfig, "mobile_breakpoint must be a number, got %g", c.MobileBreakpoint)
	}
	if c.Debounce < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "debounce cannot be negative, got %s", c.Debounce)
	}
	return nil
}

// fontPx picks the cell size for the device class.
func (c Config) fontPx(mobile bool) float64 {
	if mobile {
		return c.MobileFontPx
	}
	return c.FontPx
}
