package sink

import (
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/matzehuels/asciifolio/pkg/ascii"
	"github.com/matzehuels/asciifolio/pkg/document"
	"github.com/matzehuels/asciifolio/pkg/errors"
)

// ReadyClass marks a container whose grid is laid out and scaled.
const ReadyClass = "is-ready"

// DOM serializes mutations of one HTML document. Targets resolved from the
// same DOM may be rendered concurrently.
type DOM struct {
	mu  sync.Mutex
	doc *goquery.Document
}

// NewDOM wraps doc.
func NewDOM(doc *goquery.Document) *DOM {
	return &DOM{doc: doc}
}

// Document returns the wrapped document. Callers must not mutate it while
// renders are running.
func (d *DOM) Document() *goquery.Document {
	return d.doc
}

// Target resolves the wrapper and container elements by id. It reports false
// if either is missing or an id is malformed.
func (d *DOM) Target(wrapperID, containerID string) (*DOMTarget, bool) {
	if errors.ValidateElementID(wrapperID) != nil || errors.ValidateElementID(containerID) != nil {
		return nil, false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	wrapper := d.doc.Find("#" + wrapperID).First()
	container := d.doc.Find("#" + containerID).First()
	if wrapper.Length() == 0 || container.Length() == 0 {
		return nil, false
	}
	return &DOMTarget{dom: d, wrapper: wrapper, container: container}, true
}

// Bind attaches the resolved target to job. A job whose elements are absent
// keeps a nil Target, which the renderer skips.
func (d *DOM) Bind(job ascii.Job, wrapperID, containerID string) ascii.Job {
	job.Target = nil
	if t, ok := d.Target(wrapperID, containerID); ok {
		job.Target = t
	}
	return job
}

// DOMTarget renders into a wrapper element (the glyph grid) inside a
// container element (sized to the scaled grid).
type DOMTarget struct {
	dom       *DOM
	wrapper   *goquery.Selection
	container *goquery.Selection
	natural   ascii.Size
}

var _ ascii.Target = (*DOMTarget)(nil)

// SetReady toggles the ready class on the container.
func (t *DOMTarget) SetReady(ready bool) {
	t.dom.mu.Lock()
	defer t.dom.mu.Unlock()
	if ready {
		t.container.AddClass(ReadyClass)
	} else {
		t.container.RemoveClass(ReadyClass)
	}
}

// SetCells replaces the wrapper's children with one div per glyph.
func (t *DOMTarget) SetCells(g ascii.Grid) {
	var sb strings.Builder
	sb.Grow(len(g.Cells) * 48)
	for _, c := range g.Cells {
		fmt.Fprintf(&sb, `<div class="symbol" style="font-size: %s">%s</div>`, document.Px(c.FontPx), html.EscapeString(string(c.Glyph)))
	}

	t.dom.mu.Lock()
	defer t.dom.mu.Unlock()
	t.wrapper.SetHtml(sb.String())
	document.SetStyle(t.wrapper, "grid-template-columns", fmt.Sprintf("repeat(%d, %s)", g.Cols, document.Px(g.FontPx)))
	t.natural = g.NaturalSize()
}

// NaturalSize returns the unscaled grid size.
func (t *DOMTarget) NaturalSize() ascii.Size {
	t.dom.mu.Lock()
	defer t.dom.mu.Unlock()
	return t.natural
}

// SetScale sets a top-left anchored scale transform on the wrapper.
func (t *DOMTarget) SetScale(scale float64) {
	t.dom.mu.Lock()
	defer t.dom.mu.Unlock()
	transform := "none"
	if scale != 1 {
		transform = "scale(" + document.Num(scale) + ")"
	}
	document.SetStyle(t.wrapper, "transform", transform)
	document.SetStyle(t.wrapper, "transform-origin", "top left")
}

// SetContainerSize sets the container's width and height.
func (t *DOMTarget) SetContainerSize(s ascii.Size) {
	t.dom.mu.Lock()
	defer t.dom.mu.Unlock()
	document.SetStyle(t.container, "width", document.Px(s.W))
	document.SetStyle(t.container, "height", document.Px(s.H))
}
