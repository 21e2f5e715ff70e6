package filter

import (
	"math"
	"time"

	"github.com/matzehuels/asciifolio/pkg/errors"
)

// Config holds the widget timing and bar measurement tolerances.
type Config struct {
	// Initial is the filter applied once, without animation, at start.
	Initial string `toml:"initial" yaml:"initial"`

	// Duration is the length of the exit, enter and reflow animations.
	Duration time.Duration `toml:"duration" yaml:"duration"`

	// CleanupMargin is added to Duration before a ghost is removed.
	CleanupMargin time.Duration `toml:"cleanup_margin" yaml:"cleanup_margin"`

	// WrapTolerance is how far below the first control the last one must
	// sit for the bar to count as wrapping.
	WrapTolerance float64 `toml:"wrap_tolerance" yaml:"wrap_tolerance"`

	// RowTolerance is the largest vertical offset from the first control
	// still counted as the first row.
	RowTolerance float64 `toml:"row_tolerance" yaml:"row_tolerance"`

	// RowSlack is added to the first row height of a collapsed bar.
	RowSlack float64 `toml:"row_slack" yaml:"row_slack"`
}

// DefaultConfig returns the portfolio defaults.
func DefaultConfig() Config {
	return Config{
		Initial:       Highlights,
		Duration:      300 * time.Millisecond,
		CleanupMargin: 60 * time.Millisecond,
		WrapTolerance: 10,
		RowTolerance:  15,
	}
}

// Validate checks durations and tolerances.
func (c Config) Validate() error {
	if err := errors.ValidateFilterKey(Normalize(c.Initial)); err != nil {
		return err
	}
	if c.Duration < 0 || c.CleanupMargin < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "filter durations cannot be negative (duration %s, cleanup_margin %s)", c.Duration, c.CleanupMargin)
	}
	for _, v := range []float64{c.WrapTolerance, c.RowTolerance, c.RowSlack} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeInvalidConfig, "filter bar tolerances must be non-negative numbers, got %g", v)
		}
	}
	return nil
}
