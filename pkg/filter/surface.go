package filter

import "time"

// Class names the widget toggles.
const (
	ClassLeaving  = "leaving"
	ClassEntering = "entering"
	ClassGhost    = "leaving-clone"
	ClassActive   = "active"
)

// Rect is a box relative to the items grid, including any transform.
type Rect struct {
	X, Y, W, H float64
}

// Surface is the layout the widget animates. Ids name items or ghosts.
// Operations on ids that no longer exist are no-ops.
type Surface interface {
	// Rect returns the current box of a displayed item or ghost.
	Rect(id string) (Rect, bool)

	// Displayed reports whether the item takes part in the flow.
	Displayed(id string) bool

	// SetDisplayed adds the item to, or removes it from, the flow.
	SetDisplayed(id string, shown bool)

	// Ghost places a non-interactive copy of the item at the given rect,
	// outside the flow, and returns its id.
	Ghost(id string, at Rect) (string, bool)

	// RemoveGhost deletes a ghost. It reports false if it was already gone.
	RemoveGhost(ghostID string) bool

	AddClass(id, class string)
	RemoveClass(id, class string)

	// SetTransform translates the element by (dx, dy), animating from the
	// current translation over transition. Zero transition applies it at
	// once; (0, 0) clears it.
	SetTransform(id string, dx, dy float64, transition time.Duration)
}
