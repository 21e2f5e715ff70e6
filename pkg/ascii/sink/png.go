package sink

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/asciifolio/pkg/ascii"
	"github.com/matzehuels/asciifolio/pkg/errors"
	"github.com/matzehuels/asciifolio/pkg/fonts"
)

// DefaultPixelRatio renders PNGs at twice the CSS pixel size.
const DefaultPixelRatio = 2

// ImageTarget draws the grid as glyphs on a raster. Glyphs are drawn at face
// resolution, one cell per glyph, then resampled to the scaled container
// size, which also applies the glyph aspect correction.
type ImageTarget struct {
	Foreground color.Color
	Background color.Color
	PixelRatio float64

	mu        sync.Mutex
	grid      ascii.Grid
	scale     float64
	container ascii.Size
}

var _ ascii.Target = (*ImageTarget)(nil)

// NewImageTarget creates a target drawing dark glyphs on white.
func NewImageTarget() *ImageTarget {
	return &ImageTarget{
		Foreground: color.Black,
		Background: color.White,
		PixelRatio: DefaultPixelRatio,
		scale:      1,
	}
}

func (t *ImageTarget) SetReady(bool) {}

func (t *ImageTarget) SetCells(g ascii.Grid) {
	t.mu.Lock()
	t.grid = g
	t.mu.Unlock()
}

func (t *ImageTarget) NaturalSize() ascii.Size {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.grid.NaturalSize()
}

func (t *ImageTarget) SetScale(scale float64) {
	t.mu.Lock()
	t.scale = scale
	t.mu.Unlock()
}

func (t *ImageTarget) SetContainerSize(s ascii.Size) {
	t.mu.Lock()
	t.container = s
	t.mu.Unlock()
}

// Image draws the current grid at container size times PixelRatio.
func (t *ImageTarget) Image() (*image.RGBA, error) {
	t.mu.Lock()
	g, size := t.grid, t.container
	t.mu.Unlock()

	ratio := t.PixelRatio
	if ratio <= 0 {
		ratio = 1
	}
	w := int(math.Round(size.W * ratio))
	h := int(math.Round(size.H * ratio))
	if len(g.Cells) == 0 || w < 1 || h < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nothing to draw: %dx%d grid in %gx%g container", g.Cols, g.Rows, size.W, size.H)
	}

	glyphs := t.drawGlyphs(g)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), glyphs, glyphs.Bounds(), draw.Src, nil)
	return dst, nil
}

// EncodePNG writes Image as PNG.
func (t *ImageTarget) EncodePNG(w io.Writer) error {
	img, err := t.Image()
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

func (t *ImageTarget) drawGlyphs(g ascii.Grid) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, g.Cols*fonts.CellWidth, g.Rows*fonts.CellHeight))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(t.Background), image.Point{}, draw.Src)

	face := fonts.MonoOrBasic(fonts.DefaultSize)
	ascent := face.Metrics().Ascent.Ceil()
	d := &font.Drawer{Dst: canvas, Src: image.NewUniform(t.Foreground), Face: face}

	for y := 0; y < g.Rows; y++ {
		for x := 0; x < g.Cols; x++ {
			r := g.At(x, y).Glyph
			if r == ' ' {
				continue
			}
			cell := image.Rect(x*fonts.CellWidth, y*fonts.CellHeight, (x+1)*fonts.CellWidth, (y+1)*fonts.CellHeight)
			if !fonts.Covers(face, r) {
				t.shade(canvas, cell, r)
				continue
			}
			d.Dot = fixed.P(cell.Min.X, cell.Min.Y+ascent)
			d.DrawString(string(r))
		}
	}
	return canvas
}

// shade fills cell with a flat tone for glyphs the face lacks.
func (t *ImageTarget) shade(dst *image.RGBA, cell image.Rectangle, r rune) {
	alpha := uint8(128)
	switch r {
	case '░':
		alpha = 64
	case '▓':
		alpha = 192
	case '█':
		alpha = 255
	}
	mask := image.NewUniform(color.Alpha{A: alpha})
	draw.DrawMask(dst, cell, image.NewUniform(t.Foreground), image.Point{}, mask, image.Point{}, draw.Over)
}
