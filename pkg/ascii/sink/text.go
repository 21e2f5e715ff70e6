package sink

import (
	"sync"

	"github.com/matzehuels/asciifolio/pkg/ascii"
)

// TextTarget keeps the latest grid in memory for terminal output.
type TextTarget struct {
	mu        sync.Mutex
	ready     bool
	grid      ascii.Grid
	scale     float64
	container ascii.Size
}

var _ ascii.Target = (*TextTarget)(nil)

// NewTextTarget creates an empty target.
func NewTextTarget() *TextTarget {
	return &TextTarget{scale: 1}
}

func (t *TextTarget) SetReady(ready bool) {
	t.mu.Lock()
	t.ready = ready
	t.mu.Unlock()
}

func (t *TextTarget) SetCells(g ascii.Grid) {
	t.mu.Lock()
	t.grid = g
	t.mu.Unlock()
}

func (t *TextTarget) NaturalSize() ascii.Size {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.grid.NaturalSize()
}

func (t *TextTarget) SetScale(scale float64) {
	t.mu.Lock()
	t.scale = scale
	t.mu.Unlock()
}

func (t *TextTarget) SetContainerSize(s ascii.Size) {
	t.mu.Lock()
	t.container = s
	t.mu.Unlock()
}

// Ready reports whether the last render has settled.
func (t *TextTarget) Ready() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ready
}

// Grid returns the unscaled grid.
func (t *TextTarget) Grid() ascii.Grid {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.grid
}

// Scale returns the applied scale.
func (t *TextTarget) Scale() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scale
}

// Lines returns the unscaled grid rows.
func (t *TextTarget) Lines() []string {
	return t.Grid().Lines()
}

// ScaledLines returns the grid shrunk by the applied scale with
// nearest-neighbor sampling, the terminal equivalent of a CSS scale.
func (t *TextTarget) ScaledLines() []string {
	t.mu.Lock()
	g, scale := t.grid, t.scale
	t.mu.Unlock()

	if g.Cols == 0 || g.Rows == 0 || scale <= 0 {
		return nil
	}
	if scale >= 1 {
		return g.Lines()
	}
	cols := max(1, int(float64(g.Cols)*scale))
	rows := max(1, int(float64(g.Rows)*scale))
	lines := make([]string, 0, rows)
	buf := make([]rune, cols)
	for y := 0; y < rows; y++ {
		sy := min(g.Rows-1, int((float64(y)+0.5)/scale))
		for x := 0; x < cols; x++ {
			sx := min(g.Cols-1, int((float64(x)+0.5)/scale))
			buf[x] = g.At(sx, sy).Glyph
		}
		lines = append(lines, string(buf))
	}
	return lines
}
