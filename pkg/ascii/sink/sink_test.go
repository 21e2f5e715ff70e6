package sink

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/matzehuels/asciifolio/pkg/ascii"
	"github.com/matzehuels/asciifolio/pkg/document"
	"github.com/matzehuels/asciifolio/pkg/schedule"
)

const page = `<!doctype html><html><body>
<div id="container" class="art"><div id="art-wrapper"></div></div>
<div id="container-2"><div id="art-wrapper-2" style="color: red"></div></div>
</body></html>`

type staticLoader struct{ img image.Image }

func (l staticLoader) Load(context.Context, string) (image.Image, error) { return l.img, nil }

func gray(w, h int, y uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = y
	}
	return img
}

func parsePage(t *testing.T) *DOM {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatalf("NewDocumentFromReader() error = %v", err)
	}
	return NewDOM(doc)
}

func TestDOMTargetRender(t *testing.T) {
	dom := parsePage(t)
	sched := schedule.NewManual()
	r := ascii.NewRenderer(staticLoader{gray(40, 20, 0)}, sched, nil)

	cfg := ascii.DefaultConfig()
	cfg.Cols = 10
	job := dom.Bind(ascii.Job{ID: "tree", Image: "tree.png"}, "art-wrapper", "container")
	out, err := r.Render(context.Background(), cfg, job, ascii.Viewport{Width: 1280, Height: 800})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	doc := dom.Document()
	wrapper := doc.Find("#art-wrapper")
	if got, want := wrapper.Find(".symbol").Length(), out.Grid.Cols*out.Grid.Rows; got != want {
		t.Errorf("symbol count = %d, want %d", got, want)
	}
	if got := document.StyleOf(wrapper.Find(".symbol").First(), "font-size"); got != "3.2px" {
		t.Errorf("symbol font-size = %q, want 3.2px", got)
	}
	if got := document.StyleOf(wrapper, "grid-template-columns"); got != "repeat(10, 3.2px)" {
		t.Errorf("grid-template-columns = %q", got)
	}
	if got := document.StyleOf(wrapper, "transform-origin"); got != "top left" {
		t.Errorf("transform-origin = %q, want top left", got)
	}
	if got := document.StyleOf(wrapper, "transform"); got != "none" {
		t.Errorf("transform = %q, want none for an unscaled grid", got)
	}
	container := doc.Find("#container")
	if got := document.StyleOf(container, "width"); got != "32px" {
		t.Errorf("container width = %q, want 32px", got)
	}
	if container.HasClass(ReadyClass) {
		t.Error("container ready before next frame")
	}
	sched.Frame()
	if !container.HasClass(ReadyClass) {
		t.Error("container not ready after next frame")
	}
	if !container.HasClass("art") {
		t.Error("existing classes should be preserved")
	}
}

func TestDOMTargetScaled(t *testing.T) {
	dom := parsePage(t)
	r := ascii.NewRenderer(staticLoader{gray(100, 100, 255)}, schedule.NewManual(), nil)
	cfg := ascii.DefaultConfig()
	cfg.CharAspect = 1
	cfg.Padding = 0
	cfg.Cols = 100
	cfg.MobileBreakpoint = 100

	// 100 cols × 3.2px = 320px natural width in a 160px viewport.
	job := dom.Bind(ascii.Job{ID: "m", Image: "m.png"}, "art-wrapper-2", "container-2")
	if _, err := r.Render(context.Background(), cfg, job, ascii.Viewport{Width: 160, Height: 1000}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	wrapper := dom.Document().Find("#art-wrapper-2")
	if got := document.StyleOf(wrapper, "transform"); got != "scale(0.5)" {
		t.Errorf("transform = %q, want scale(0.5)", got)
	}
	if got := document.StyleOf(wrapper, "color"); got != "red" {
		t.Errorf("color = %q, existing styles should be preserved", got)
	}
	if got := document.StyleOf(dom.Document().Find("#container-2"), "height"); got != "160px" {
		t.Errorf("container height = %q, want 160px", got)
	}
}

func TestDOMBindMissing(t *testing.T) {
	dom := parsePage(t)
	tests := []struct {
		name               string
		wrapper, container string
	}{
		{"missing wrapper", "nope", "container"},
		{"missing container", "art-wrapper", "nope"},
		{"malformed id", "art wrapper", "container"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := dom.Bind(ascii.Job{ID: "x", Target: NewTextTarget()}, tt.wrapper, tt.container)
			if job.Target != nil {
				t.Errorf("Bind() Target = %v, want nil", job.Target)
			}
		})
	}
}

func TestTextTargetScaledLines(t *testing.T) {
	target := NewTextTarget()
	cells := make([]ascii.Cell, 0, 16)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			g := '.'
			if x >= 2 {
				g = '#'
			}
			cells = append(cells, ascii.Cell{Glyph: g})
		}
	}
	target.SetCells(ascii.Grid{Cols: 4, Rows: 4, FontPx: 1, CharAspect: 1, Cells: cells})

	target.SetScale(1)
	if got := len(target.ScaledLines()); got != 4 {
		t.Errorf("ScaledLines() at scale 1 = %d rows, want 4", got)
	}
	target.SetScale(0.5)
	got := target.ScaledLines()
	if len(got) != 2 || got[0] != ".#" || got[1] != ".#" {
		t.Errorf("ScaledLines() at scale 0.5 = %q, want [.# .#]", got)
	}
	target.SetScale(0)
	if got := target.ScaledLines(); got != nil {
		t.Errorf("ScaledLines() at scale 0 = %q, want nil", got)
	}
}

func TestImageTargetPNG(t *testing.T) {
	target := NewImageTarget()
	r := ascii.NewRenderer(staticLoader{gray(60, 30, 0)}, schedule.NewManual(), nil)
	cfg := ascii.DefaultConfig()
	cfg.Cols = 20
	cfg.CharAspect = 1
	cfg.Padding = 0

	if _, err := r.Render(context.Background(), cfg, ascii.Job{ID: "p", Image: "p.png", Target: target}, ascii.Viewport{Width: 1000, Height: 1000}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	var buf bytes.Buffer
	if err := target.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG() error = %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	// 20 cols × 3.2px × 2 = 128, 10 rows × 3.2px × 2 = 64.
	if b := img.Bounds(); b.Dx() != 128 || b.Dy() != 64 {
		t.Errorf("bounds = %v, want 128x64", b)
	}
	// A black source maps to the densest glyph, so the output is not blank.
	blank := true
	for y := 0; y < img.Bounds().Dy() && blank; y++ {
		for x := 0; x < img.Bounds().Dx(); x++ {
			if c := color.GrayModel.Convert(img.At(x, y)).(color.Gray); c.Y < 250 {
				blank = false
				break
			}
		}
	}
	if blank {
		t.Error("rendered PNG is blank")
	}
}

func TestImageTargetEmpty(t *testing.T) {
	if err := NewImageTarget().EncodePNG(&bytes.Buffer{}); err == nil {
		t.Error("EncodePNG() on an empty target should fail")
	}
}
