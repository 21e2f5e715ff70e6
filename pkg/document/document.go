// Package document reads and rewrites the portfolio page.
//
// The page is consumed as fixed external markup: project items are
// ".project-item" elements carrying data-tags and data-highlight, filter
// controls are "[data-filter]" elements, and ASCII art is rendered into
// wrapper/container pairs located by id.
package document

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/matzehuels/asciifolio/pkg/errors"
	"github.com/matzehuels/asciifolio/pkg/filter"
)

// Selectors for the portfolio markup.
const (
	ItemSelector    = ".project-item"
	ControlSelector = "[data-filter]"
	headings        = "h1, h2, h3, h4, h5, h6"
)

// Control is one filter button.
type Control struct {
	Key   string
	Label string
}

// Page is a parsed portfolio document.
type Page struct {
	doc      *goquery.Document
	items    []filter.Item
	itemSels []*goquery.Selection
	controls []Control
	ctrlSels []*goquery.Selection
}

// Parse reads an HTML document. Items without an id are assigned
// "item-N" (1-based) so they can be addressed later.
func Parse(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse page")
	}
	p := &Page{doc: doc}

	doc.Find(ItemSelector).Each(func(i int, s *goquery.Selection) {
		id := strings.TrimSpace(s.AttrOr("id", ""))
		if id == "" {
			id = fmt.Sprintf("item-%d", i+1)
			s.SetAttr("id", id)
		}
		p.items = append(p.items, filter.Item{
			ID:        id,
			Title:     itemTitle(s),
			Tags:      filter.ParseTags(s.AttrOr("data-tags", "")),
			Highlight: filter.ParseHighlight(s.AttrOr("data-highlight", "")),
		})
		p.itemSels = append(p.itemSels, s)
	})

	doc.Find(ControlSelector).Each(func(_ int, s *goquery.Selection) {
		p.controls = append(p.controls, Control{
			Key:   filter.Normalize(s.AttrOr("data-filter", "")),
			Label: strings.Join(strings.Fields(s.Text()), " "),
		})
		p.ctrlSels = append(p.ctrlSels, s)
	})
	return p, nil
}

func itemTitle(s *goquery.Selection) string {
	if t, ok := s.Attr("data-title"); ok && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t)
	}
	return strings.Join(strings.Fields(s.Find(headings).First().Text()), " ")
}

// Document returns the underlying document.
func (p *Page) Document() *goquery.Document {
	return p.doc
}

// Items returns the project items in document order.
func (p *Page) Items() []filter.Item {
	return p.items
}

// Controls returns the filter controls in document order.
func (p *Page) Controls() []Control {
	return p.controls
}

// ControlKeys returns the filter key of each control.
func (p *Page) ControlKeys() []string {
	keys := make([]string, len(p.controls))
	for i, c := range p.controls {
		keys[i] = c.Key
	}
	return keys
}

// Has reports whether an element with the given id exists.
func (p *Page) Has(id string) bool {
	if errors.ValidateElementID(id) != nil {
		return false
	}
	return p.doc.Find("#"+id).Length() > 0
}

// ApplyFilter hides the items f does not select and marks the first
// control for f active. It returns the ids left visible. A page without
// items or controls is left untouched.
func (p *Page) ApplyFilter(f string) []string {
	if len(p.items) == 0 || len(p.controls) == 0 {
		return nil
	}
	f = filter.Normalize(f)

	var visible []string
	for i, it := range p.items {
		if filter.Selects(f, it) {
			SetStyle(p.itemSels[i], "display", "")
			visible = append(visible, it.ID)
		} else {
			SetStyle(p.itemSels[i], "display", "none")
		}
	}

	marked := false
	for i, c := range p.controls {
		p.ctrlSels[i].RemoveClass(filter.ClassActive)
		if !marked && strings.EqualFold(c.Key, f) {
			p.ctrlSels[i].AddClass(filter.ClassActive)
			marked = true
		}
	}
	return visible
}

// HTML serializes the document.
func (p *Page) HTML() (string, error) {
	return p.doc.Html()
}
