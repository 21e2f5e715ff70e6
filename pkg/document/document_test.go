package document

import (
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/asciifolio/pkg/errors"
	"github.com/matzehuels/asciifolio/pkg/filter"
)

const portfolioHTML = `<!doctype html>
<html><body>
<div id="projectFilters">
  <button class="filter-btn" data-filter="all">All</button>
  <button class="filter-btn" data-filter="highlights">
    Highlights
  </button>
  <button class="filter-btn" data-filter="go">Go</button>
  <button class="filter-btn" data-filter="">Everything</button>
</div>
<div class="projects-grid">
  <div class="project-item" id="tower" data-tags="go, viz" data-highlight="TRUE"><h3>Stack  Tower</h3></div>
  <div class="project-item" data-tags="rust" data-title="Borrow"><h3>ignored</h3></div>
  <div class="project-item" data-tags="Go web" style="color: blue"><h4>Site</h4></div>
</div>
<div id="container"><div id="art-wrapper"></div></div>
</body></html>`

func parse(t *testing.T) *Page {
	t.Helper()
	p, err := Parse(strings.NewReader(portfolioHTML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return p
}

func TestParse(t *testing.T) {
	p := parse(t)
	want := []filter.Item{
		{ID: "tower", Title: "Stack Tower", Tags: []string{"go", "viz"}, Highlight: true},
		{ID: "item-2", Title: "Borrow", Tags: []string{"rust"}},
		{ID: "item-3", Title: "Site", Tags: []string{"go", "web"}},
	}
	if got := p.Items(); !reflect.DeepEqual(got, want) {
		t.Errorf("Items() = %+v, want %+v", got, want)
	}
	wantControls := []Control{{"all", "All"}, {"highlights", "Highlights"}, {"go", "Go"}, {"all", "Everything"}}
	if got := p.Controls(); !reflect.DeepEqual(got, wantControls) {
		t.Errorf("Controls() = %+v, want %+v", got, wantControls)
	}
	if !p.Has("art-wrapper") || p.Has("art-wrapper-2") || p.Has("not an id") {
		t.Error("Has() mismatch")
	}
}

func TestApplyFilter(t *testing.T) {
	tests := []struct {
		filter  string
		visible []string
		active  string
	}{
		{"highlights", []string{"tower"}, "highlights"},
		{"go", []string{"tower", "item-3"}, "go"},
		{"GO", []string{"tower", "item-3"}, "go"},
		{"", []string{"tower", "item-2", "item-3"}, "all"},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			p := parse(t)
			if got := p.ApplyFilter(tt.filter); !reflect.DeepEqual(got, tt.visible) {
				t.Errorf("ApplyFilter() = %v, want %v", got, tt.visible)
			}
			active := p.Document().Find(".filter-btn.active")
			if active.Length() != 1 {
				t.Fatalf("active controls = %d, want 1", active.Length())
			}
			if got := active.AttrOr("data-filter", ""); got != tt.active {
				t.Errorf("active control = %q, want %q", got, tt.active)
			}
		})
	}
}

func TestApplyFilterStyles(t *testing.T) {
	p := parse(t)
	p.ApplyFilter("rust")
	doc := p.Document()
	if got := StyleOf(doc.Find("#tower"), "display"); got != "none" {
		t.Errorf("tower display = %q, want none", got)
	}
	if got := StyleOf(doc.Find("#item-3"), "color"); got != "blue" {
		t.Errorf("item-3 color = %q, existing styles should survive", got)
	}

	p.ApplyFilter("all")
	if got := StyleOf(doc.Find("#tower"), "display"); got != "" {
		t.Errorf("tower display = %q, want cleared", got)
	}
	html, err := p.HTML()
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	if !strings.Contains(html, `id="item-2"`) {
		t.Error("HTML() should carry generated item ids")
	}
}

func TestApplyFilterWithoutControls(t *testing.T) {
	p, err := Parse(strings.NewReader(`<div class="project-item" data-tags="go"></div>`))
	if err != nil {
		t.Fatal(err)
	}
	if got := p.ApplyFilter("rust"); got != nil {
		t.Errorf("ApplyFilter() = %v, want nil", got)
	}
	if _, ok := p.Document().Find(".project-item").Attr("style"); ok {
		t.Error("page without controls should be left untouched")
	}
}

func TestParseNeverFailsOnSoup(t *testing.T) {
	if _, err := Parse(strings.NewReader("<<<not html")); errors.GetCode(err) != "" {
		t.Errorf("Parse() error = %v, want lenient parsing", err)
	}
}
