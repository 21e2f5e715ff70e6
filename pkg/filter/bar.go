package filter

import (
	"math"
	"sync"
)

// Toggle labels.
const (
	LabelMore = "more"
	LabelLess = "less"
)

// Box is a control's vertical extent relative to the top of the bar.
type Box struct {
	Top, Height float64
}

// Measure is the bar's unconstrained layout, taken with its height limit
// removed.
type Measure struct {
	Controls      []Box
	ContentHeight float64
}

// BarState is what the bar should look like for a measurement.
type BarState struct {
	Wrapping      bool
	Expanded      bool
	ToggleVisible bool
	Clip          bool
	Unbounded     bool
	MaxHeight     float64
	ToggleLabel   string
}

// Bar is the collapsible filter control bar. It starts collapsed.
type Bar struct {
	wrapTolerance float64
	rowTolerance  float64
	rowSlack      float64

	mu       sync.Mutex
	expanded bool
}

// NewBar creates a collapsed bar using cfg's tolerances.
func NewBar(cfg Config) *Bar {
	return &Bar{
		wrapTolerance: cfg.WrapTolerance,
		rowTolerance:  cfg.RowTolerance,
		rowSlack:      cfg.RowSlack,
	}
}

// Expanded reports whether the bar shows every row.
func (b *Bar) Expanded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.expanded
}

// Toggle flips between collapsed and expanded.
func (b *Bar) Toggle() {
	b.mu.Lock()
	b.expanded = !b.expanded
	b.mu.Unlock()
}

// Wrapping reports whether the last control sits on a lower row than the
// first.
func (b *Bar) Wrapping(m Measure) bool {
	if len(m.Controls) == 0 {
		return false
	}
	first, last := m.Controls[0], m.Controls[len(m.Controls)-1]
	return last.Top > first.Top+b.wrapTolerance
}

// InFirstRow reports whether control i shares the first control's row.
func (b *Bar) InFirstRow(m Measure, i int) bool {
	if i < 0 || i >= len(m.Controls) {
		return false
	}
	return math.Abs(m.Controls[i].Top-m.Controls[0].Top) < b.rowTolerance
}

// FirstRowHeight is the lowest bottom edge among the leading controls that
// share the first row.
func (b *Bar) FirstRowHeight(m Measure) float64 {
	var height float64
	for i, c := range m.Controls {
		if !b.InFirstRow(m, i) {
			break
		}
		height = math.Max(height, c.Top+c.Height)
	}
	return height
}

// Layout computes the bar state for m.
func (b *Bar) Layout(m Measure) BarState {
	expanded := b.Expanded()
	if !b.Wrapping(m) {
		return BarState{Expanded: expanded, Unbounded: true}
	}
	if expanded {
		return BarState{
			Wrapping:      true,
			Expanded:      true,
			ToggleVisible: true,
			MaxHeight:     m.ContentHeight,
			ToggleLabel:   LabelLess,
		}
	}
	return BarState{
		Wrapping:      true,
		ToggleVisible: true,
		Clip:          true,
		MaxHeight:     b.FirstRowHeight(m) + b.rowSlack,
		ToggleLabel:   LabelMore,
	}
}
