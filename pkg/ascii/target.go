package ascii

// Target receives render output. Implementations wrap a wrapper element that
// holds the glyph cells and the container sized to the scaled result.
type Target interface {
	// SetReady toggles the visible state. The renderer clears it before
	// loading and sets it one frame after the grid is in place.
	SetReady(ready bool)

	// SetCells replaces every cell of the wrapper and lays them out Cols
	// columns wide.
	SetCells(g Grid)

	// NaturalSize measures the unscaled wrapper.
	NaturalSize() Size

	// SetScale applies a uniform scale anchored at the top-left corner.
	SetScale(scale float64)

	// SetContainerSize sizes the container to the scaled wrapper.
	SetContainerSize(s Size)
}
