package ascii

import "math"

// Viewport is the visible area a grid must fit into.
type Viewport struct {
	Width, Height float64
}

// IsMobile reports whether the viewport is at or below the breakpoint width.
func (v Viewport) IsMobile(breakpoint float64) bool {
	return v.Width <= breakpoint
}

// Fit returns the uniform scale that makes natural fit inside vp minus
// padding on every side. Grids are shrunk, never enlarged: the base scale is
// clamped at 1 before extra is applied. Non-positive or non-finite available
// space yields 0.
func Fit(natural Size, vp Viewport, padding, extra float64) float64 {
	if !positive(natural.W) || !positive(natural.H) {
		return 0
	}
	availW := vp.Width - 2*padding
	availH := vp.Height - 2*padding
	if !positive(availW) || !positive(availH) {
		return 0
	}
	s := math.Min(math.Min(availW/natural.W, availH/natural.H), 1)
	if extra > 0 && extra < 1 {
		s *= extra
	}
	return s
}

// positive reports whether v is a finite number above zero.
func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// finite reports whether v is neither NaN nor infinite.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
