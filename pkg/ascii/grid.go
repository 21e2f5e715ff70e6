package ascii

import (
	"image"
	"math"
	"strings"

	"golang.org/x/image/draw"
)

// Cell is one rendered glyph and the font size it was rendered at.
type Cell struct {
	Glyph  rune
	FontPx float64
}

// Grid is a full render result, cells in row-major order.
type Grid struct {
	Cols       int
	Rows       int
	FontPx     float64
	CharAspect float64
	Cells      []Cell
}

// Size is a width/height pair in CSS pixels.
type Size struct {
	W, H float64
}

// Rows derives the row count for cols columns of an imgW×imgH image,
// compensating for glyphs being charAspect times taller than wide.
// The result is at least 1.
func Rows(cols, imgW, imgH int, charAspect float64) int {
	if cols < 1 || imgW <= 0 || imgH <= 0 || charAspect <= 0 {
		return 1
	}
	rows := int(math.Round(float64(cols) * (float64(imgH) / float64(imgW)) / charAspect))
	return max(1, rows)
}

// Sample resamples img to exactly cols×rows pixels in a single bilinear draw.
func Sample(img image.Image, cols, rows int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, cols, rows))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// BuildGrid converts img into a cols-wide glyph grid using cfg's ramp and
// glyph aspect correction.
func BuildGrid(img image.Image, cfg Config, cols int, fontPx float64) Grid {
	b := img.Bounds()
	rows := Rows(cols, b.Dx(), b.Dy(), cfg.CharAspect)
	px := Sample(img, cols, rows)
	ramp := []rune(cfg.Ramp)

	cells := make([]Cell, 0, cols*rows)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			c := px.NRGBAAt(x, y)
			idx := SymbolIndex(Brightness(c.R, c.G, c.B), len(ramp))
			cells = append(cells, Cell{Glyph: ramp[idx], FontPx: fontPx})
		}
	}
	return Grid{
		Cols:       cols,
		Rows:       rows,
		FontPx:     fontPx,
		CharAspect: cfg.CharAspect,
		Cells:      cells,
	}
}

// NaturalSize is the unscaled layout size of the grid: each column is fontPx
// wide and each row fontPx×CharAspect tall.
func (g Grid) NaturalSize() Size {
	return Size{
		W: float64(g.Cols) * g.FontPx,
		H: float64(g.Rows) * g.FontPx * g.CharAspect,
	}
}

// At returns the cell at column x, row y.
func (g Grid) At(x, y int) Cell {
	return g.Cells[y*g.Cols+x]
}

// Lines returns one string per row.
func (g Grid) Lines() []string {
	lines := make([]string, 0, g.Rows)
	var sb strings.Builder
	for y := 0; y < g.Rows; y++ {
		sb.Reset()
		for _, c := range g.Cells[y*g.Cols : (y+1)*g.Cols] {
			sb.WriteRune(c.Glyph)
		}
		lines = append(lines, sb.String())
	}
	return lines
}

// String joins Lines with newlines.
func (g Grid) String() string {
	return strings.Join(g.Lines(), "\n")
}
