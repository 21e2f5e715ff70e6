// Package fonts provides the glyph faces used for raster output.
//
// The faces come from Go Mono (golang.org/x/image/font/gofont), which covers
// the block shade glyphs of the default density ramp, so no font files
// need to ship alongside the binary.
package fonts

import (
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
)

// CellWidth and CellHeight are the pixel size of one glyph cell at
// DefaultSize.
const (
	CellWidth  = 8
	CellHeight = 14

	// DefaultSize is the face size in points at 72 DPI.
	DefaultSize = 13
)

// Parsed font is cached after the first access.
var (
	monoFont    *opentype.Font
	monoFontErr error
	monoOnce    sync.Once
)

func parsedMono() (*opentype.Font, error) {
	monoOnce.Do(func() {
		monoFont, monoFontErr = opentype.Parse(gomono.TTF)
	})
	return monoFont, monoFontErr
}

// Mono returns a Go Mono face at size points. Faces are not safe for
// concurrent use; create one per goroutine.
func Mono(size float64) (font.Face, error) {
	f, err := parsedMono()
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// MonoOrBasic returns Mono at size, falling back to the built-in 7×13
// bitmap face if the embedded font cannot be parsed.
func MonoOrBasic(size float64) font.Face {
	if face, err := Mono(size); err == nil {
		return face
	}
	return basicfont.Face7x13
}

// Covers reports whether face has a glyph for r.
func Covers(face font.Face, r rune) bool {
	_, ok := face.GlyphAdvance(r)
	return ok
}
