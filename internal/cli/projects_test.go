package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/asciifolio/pkg/document"
	"github.com/matzehuels/asciifolio/pkg/errors"
	"github.com/matzehuels/asciifolio/pkg/filter"
)

var testControls = []document.Control{
	{Key: "all", Label: "All"},
	{Key: "highlights", Label: "Highlights"},
	{Key: "go", Label: "Go"},
	{Key: "web", Label: "Web"},
}

func TestLayoutBar(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		wantRows [][]int
	}{
		{"single row", 72, [][]int{{0, 1, 2, 3}}},
		{"wraps", 22, [][]int{{0}, {1, 2}, {3}}},
		{"one per row", 1, [][]int{{0}, {1}, {2}, {3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := layoutBar(testControls, tt.width)
			if len(l.rows) != len(tt.wantRows) {
				t.Fatalf("layoutBar() rows = %v, want %v", l.rows, tt.wantRows)
			}
			for r := range l.rows {
				if !equalInts(l.rows[r], tt.wantRows[r]) {
					t.Errorf("row %d = %v, want %v", r, l.rows[r], tt.wantRows[r])
				}
			}
			wantHeight := float64((len(tt.wantRows)-1)*barRowPx + barButtonPx)
			if l.measure.ContentHeight != wantHeight {
				t.Errorf("ContentHeight = %g, want %g", l.measure.ContentHeight, wantHeight)
			}
		})
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestVisibleRows(t *testing.T) {
	l := layoutBar(testControls, 22)
	bar := filter.NewBar(filter.DefaultConfig())

	if got := l.visibleRows(bar.Layout(l.measure)); got != 1 {
		t.Errorf("collapsed visibleRows() = %d, want 1", got)
	}
	bar.Toggle()
	if got := l.visibleRows(bar.Layout(l.measure)); got != 3 {
		t.Errorf("expanded visibleRows() = %d, want 3", got)
	}

	single := layoutBar(testControls, 72)
	if got := single.visibleRows(filter.NewBar(filter.DefaultConfig()).Layout(single.measure)); got != 1 {
		t.Errorf("single-row visibleRows() = %d, want 1", got)
	}
}

func testItems() []filter.Item {
	return []filter.Item{
		{ID: "p1", Title: "Tower", Tags: []string{"go", "cli"}, Highlight: true},
		{ID: "p2", Title: "Site", Tags: []string{"web"}},
		{ID: "p3", Title: "Server", Tags: []string{"go", "web"}},
	}
}

func TestProjectsModelInitialFilter(t *testing.T) {
	m := newProjectsModel(filter.DefaultConfig(), testItems(), testControls)

	if got := m.widget.Active(); got != filter.Highlights {
		t.Errorf("Active() = %q, want %q", got, filter.Highlights)
	}
	if got := strings.Join(m.widget.Visible(), ","); got != "p1" {
		t.Errorf("Visible() = %s, want p1", got)
	}
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want the highlights control", m.cursor)
	}
	if v := m.View(); !strings.Contains(v, "Tower") || strings.Contains(v, "Site") {
		t.Errorf("View() does not match the initial filter:\n%s", v)
	}
}

func TestProjectsModelSelect(t *testing.T) {
	m := newProjectsModel(filter.DefaultConfig(), testItems(), testControls)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("4")})
	if got := m.widget.Active(); got != "web" {
		t.Fatalf("Active() = %q, want web", got)
	}
	if got := strings.Join(m.widget.Visible(), ","); got != "p2,p3" {
		t.Errorf("Visible() = %s, want p2,p3", got)
	}
	if len(m.last.Exited) != 1 || len(m.last.Entered) != 2 {
		t.Errorf("last transition = %+v, want 2 entered and 1 exited", m.last)
	}
	if got := m.surface.Ghosts(); got != 1 {
		t.Fatalf("Ghosts() = %d, want 1", got)
	}

	// The ghost goes once the fade and cleanup margin have passed.
	for i := 0; i < 30; i++ {
		m.Update(frameMsg(time.Now()))
	}
	if got := m.surface.Ghosts(); got != 0 {
		t.Errorf("Ghosts() after cleanup = %d, want 0", got)
	}
	if m.surface.Animating() {
		t.Error("surface still animating after cleanup")
	}
}

func TestProjectsModelCursor(t *testing.T) {
	m := newProjectsModel(filter.DefaultConfig(), testItems(), testControls)

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.widget.Active(); got != "go" {
		t.Errorf("Active() after right+enter = %q, want go", got)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.cursor != 3 {
		t.Errorf("cursor after wrapping left = %d, want 3", m.cursor)
	}
}

func TestProjectsModelNarrowBar(t *testing.T) {
	m := newProjectsModel(filter.DefaultConfig(), testItems(), testControls)
	m.Update(tea.WindowSizeMsg{Width: 30, Height: 24})

	if state := m.widget.Bar().Layout(m.bar.measure); !state.Clip || state.ToggleLabel != filter.LabelMore {
		t.Fatalf("collapsed state = %+v", state)
	}
	if v := m.View(); strings.Contains(v, "[ Web ]") || !strings.Contains(v, filter.LabelMore) {
		t.Errorf("collapsed bar shows hidden rows:\n%s", v)
	}

	// Selecting a control outside the first row expands the bar.
	m.selectControl(3)
	if !m.widget.Bar().Expanded() {
		t.Error("bar not expanded by selecting a hidden control")
	}
	if v := m.View(); !strings.Contains(v, "[ Web ]") || !strings.Contains(v, filter.LabelLess) {
		t.Errorf("expanded bar missing rows:\n%s", v)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	if m.widget.Bar().Expanded() {
		t.Error("m did not collapse the bar")
	}
}

func TestPrintProjectTable(t *testing.T) {
	var buf bytes.Buffer
	if err := printProjectTable(&buf, testItems(), "go"); err != nil {
		t.Fatalf("printProjectTable() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Tower", "Site", "Server", "go, cli", "★"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestRunProjectsMissingPage(t *testing.T) {
	cfg := testSite(t)
	err := runProjects(context.Background(), cfg, filepath.Join(t.TempDir(), "nope.html"), &projectsOpts{list: true})
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("runProjects() error = %v, want NOT_FOUND", err)
	}
}

func TestRunProjectsInvalidFilter(t *testing.T) {
	cfg := testSite(t)
	err := runProjects(context.Background(), cfg, cfg.Server.Page, &projectsOpts{filter: "a,b", list: true})
	if !errors.Is(err, errors.ErrCodeInvalidFilter) {
		t.Errorf("runProjects() error = %v, want INVALID_FILTER", err)
	}
}

func TestShadeFor(t *testing.T) {
	tests := []struct {
		opacity   float64
		highlight bool
		want      int
	}{
		{0, false, shadeNone},
		{0.2, false, shadeFaint},
		{0.5, true, shadeHalf},
		{1, false, shadeFull},
		{1, true, shadeHighlight},
	}
	for _, tt := range tests {
		if got := shadeFor(tt.opacity, tt.highlight); got != tt.want {
			t.Errorf("shadeFor(%g, %v) = %d, want %d", tt.opacity, tt.highlight, got, tt.want)
		}
	}
}

func TestCanvasCard(t *testing.T) {
	cv := newCanvas(12, 4)
	cv.card(filter.Rect{X: 0, Y: 0, W: 12, H: 4}, shadeFull, "Tower", "go cli")
	lines := strings.Split(strings.TrimRight(cv.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("canvas has %d lines, want 4", len(lines))
	}
	if !strings.Contains(lines[0], "╭") || !strings.Contains(lines[3], "╯") {
		t.Errorf("card border missing:\n%s", cv.String())
	}
	if !strings.Contains(lines[1], "Tower") {
		t.Errorf("card title missing:\n%s", cv.String())
	}
	if !strings.Contains(lines[2], "#go") {
		t.Errorf("card tags missing:\n%s", cv.String())
	}

	hidden := newCanvas(12, 4)
	hidden.card(filter.Rect{W: 12, H: 4}, shadeNone, "Tower", "")
	if strings.TrimSpace(hidden.String()) != "" {
		t.Error("fully transparent card drawn")
	}
}
