package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/asciifolio/pkg/config"
	"github.com/matzehuels/asciifolio/pkg/document"
	"github.com/matzehuels/asciifolio/pkg/errors"
	"github.com/matzehuels/asciifolio/pkg/filter"
	"github.com/matzehuels/asciifolio/pkg/schedule"
)

// Card grid in terminal cells.
const (
	cardWidth  = 28
	cardHeight = 4
	cardGap    = 1
)

// Filter bar measurements in CSS pixels, so the bar's pixel tolerances
// apply unchanged: each row of buttons is barRowPx apart.
const (
	barRowPx    = 30
	barButtonPx = 24
)

// projectsChromeRows are the header and footer lines.
const projectsChromeRows = 2

// projectsOpts holds the command-line flags for the projects command.
type projectsOpts struct {
	filter string
	list   bool
}

// projectsCommand creates the interactive project filter.
func (c *CLI) projectsCommand() *cobra.Command {
	opts := projectsOpts{}

	cmd := &cobra.Command{
		Use:   "projects [page]",
		Short: "Filter portfolio projects interactively",
		Long: `Read the project items and filter controls of a portfolio page and filter
them in the terminal. Leaving projects fade out in place, entering projects
fade in, and the rest slide to their new positions.

The page defaults to the configured server page.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			path := cfg.Server.Page
			if len(args) == 1 {
				path = args[0]
			}
			ctx := withLogger(cmd.Context(), c.Logger)
			return runProjects(ctx, cfg, path, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.filter, "filter", "", "initial filter (default from config)")
	cmd.Flags().BoolVar(&opts.list, "list", false, "print the projects as a table and exit")

	return cmd
}

func runProjects(ctx context.Context, cfg config.Config, path string, opts *projectsOpts) error {
	logger := loggerFromContext(ctx)

	page, err := loadPage(path)
	if err != nil {
		return err
	}
	fc := cfg.Filter
	if opts.filter != "" {
		if err := errors.ValidateFilterKey(opts.filter); err != nil {
			return err
		}
		fc.Initial = opts.filter
	}

	items, controls := page.Items(), page.Controls()
	logger.Debug("page loaded", "path", path, "items", len(items), "controls", len(controls))
	if len(items) == 0 || len(controls) == 0 {
		printInfo("No project items or filter controls in %s", path)
		return nil
	}

	if opts.list {
		return printProjectTable(os.Stdout, items, fc.Initial)
	}

	m := newProjectsModel(fc, items, controls)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func loadPage(path string) (*document.Page, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "page %s", path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return document.Parse(f)
}

// printProjectTable lists the items and whether key shows them.
func printProjectTable(w io.Writer, items []filter.Item, key string) error {
	key = filter.Normalize(key)
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, len(items))
	for _, it := range items {
		star := ""
		if it.Highlight {
			star = "★"
		}
		shown := "—"
		if filter.Selects(key, it) {
			shown = iconSuccess
		}
		rows = append(rows, []string{it.ID, it.Title, strings.Join(it.Tags, ", "), star, shown})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Title", "Tags", "★", key).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < len(items) && !filter.Selects(key, items[row]) {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			if col == 1 {
				return StyleValue
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// =============================================================================
// Filter bar layout
// =============================================================================

// barLayout places the controls in wrapping rows of a given width.
type barLayout struct {
	measure filter.Measure
	rows    [][]int // control indices per row
}

func controlLabel(c document.Control) string {
	if c.Label != "" {
		return c.Label
	}
	return c.Key
}

// buttonWidth is the rendered width of "[ label ]" plus a separating space.
func buttonWidth(label string) int {
	return lipgloss.Width(label) + 5
}

func layoutBar(controls []document.Control, width int) barLayout {
	var l barLayout
	x, row := 0, 0
	for i, c := range controls {
		w := buttonWidth(controlLabel(c))
		if x > 0 && x+w > width {
			row++
			x = 0
		}
		if row == len(l.rows) {
			l.rows = append(l.rows, nil)
		}
		l.rows[row] = append(l.rows[row], i)
		l.measure.Controls = append(l.measure.Controls, filter.Box{
			Top:    float64(row * barRowPx),
			Height: barButtonPx,
		})
		x += w
	}
	if len(l.rows) > 0 {
		l.measure.ContentHeight = float64((len(l.rows)-1)*barRowPx + barButtonPx)
	}
	return l
}

// visibleRows is the number of button rows the bar state leaves visible.
func (l barLayout) visibleRows(state filter.BarState) int {
	if !state.Clip {
		return len(l.rows)
	}
	n := 0
	for r := range l.rows {
		if float64(r*barRowPx+barButtonPx) > state.MaxHeight {
			break
		}
		n++
	}
	return max(1, n)
}

// =============================================================================
// projectsModel - Animated project filter
// =============================================================================

// projectsModel runs the filter widget over a FlowSurface. Frame ticks step
// the scheduler and the surface tweens together.
type projectsModel struct {
	items    map[string]filter.Item
	controls []document.Control
	sched    *schedule.Manual
	surface  *filter.FlowSurface
	widget   *filter.Widget

	cursor        int
	width, height int
	bar           barLayout
	last          filter.Transition
}

func newProjectsModel(cfg filter.Config, items []filter.Item, controls []document.Control) *projectsModel {
	ids := make([]string, len(items))
	byID := make(map[string]filter.Item, len(items))
	for i, it := range items {
		ids[i] = it.ID
		byID[it.ID] = it
	}
	keys := make([]string, len(controls))
	for i, c := range controls {
		keys[i] = c.Key
	}

	sched := schedule.NewManual()
	surface := filter.NewFlowSurface(filter.FlowConfig{
		Width:      80,
		CellWidth:  cardWidth,
		CellHeight: cardHeight,
		Gap:        cardGap,
		Fade:       cfg.Duration,
	}, ids)
	widget := filter.NewWidget(cfg, items, keys, surface, sched, nil)
	widget.Init()

	m := &projectsModel{
		items:    byID,
		controls: controls,
		sched:    sched,
		surface:  surface,
		widget:   widget,
		width:    80,
		height:   24,
	}
	m.cursor = max(0, widget.ActiveControl())
	m.bar = layoutBar(controls, m.barWidth())
	return m
}

// barWidth leaves room for the toggle label.
func (m *projectsModel) barWidth() int {
	return max(1, m.width-lipgloss.Width(filter.LabelMore)-4)
}

func (m *projectsModel) Init() tea.Cmd {
	return frameTick()
}

func (m *projectsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.surface.SetWidth(float64(m.width))
		m.bar = layoutBar(m.controls, m.barWidth())
	case frameMsg:
		m.step()
		return m, frameTick()
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l", "tab":
			m.cursor = (m.cursor + 1) % len(m.controls)
		case "left", "h", "shift+tab":
			m.cursor = (m.cursor - 1 + len(m.controls)) % len(m.controls)
		case "enter", " ":
			m.selectControl(m.cursor)
		case "m":
			m.widget.Bar().Toggle()
		default:
			if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
				if i := int(key[0] - '1'); i < len(m.controls) {
					m.cursor = i
					m.selectControl(i)
				}
			}
		}
	}
	return m, nil
}

// step advances one display frame.
func (m *projectsModel) step() {
	m.sched.Frame()
	m.sched.Advance(schedule.FrameInterval)
	m.surface.Advance(schedule.FrameInterval)
}

func (m *projectsModel) selectControl(i int) {
	if tr, _, ok := m.widget.Select(i, m.bar.measure); ok {
		m.last = tr
	}
}

func (m *projectsModel) View() string {
	var b strings.Builder

	active := m.widget.Active()
	b.WriteString(StyleTitle.Render("Projects"))
	b.WriteString("  ")
	b.WriteString(StyleHighlight.Render(active))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d/%d shown", len(m.widget.Visible()), len(m.items))))
	b.WriteString("\n")

	barRows := m.renderBar(&b)

	gridRows := max(0, m.height-projectsChromeRows-barRows)
	b.WriteString(m.renderGrid(m.width, gridRows))

	b.WriteString(StyleDim.Render("←/→ move · ⏎ filter · m more/less · q quit"))
	if m.last.To != "" {
		b.WriteString(StyleDim.Render(fmt.Sprintf("   +%d −%d ↔%d",
			len(m.last.Entered), len(m.last.Exited), len(m.last.Moved))))
	}
	return b.String()
}

var (
	buttonStyle       = lipgloss.NewStyle().Foreground(colorGray)
	buttonActiveStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	buttonCursorStyle = lipgloss.NewStyle().Underline(true)
)

// renderBar writes the visible button rows and returns how many it wrote.
func (m *projectsModel) renderBar(b *strings.Builder) int {
	state := m.widget.Bar().Layout(m.bar.measure)
	rows := m.bar.visibleRows(state)
	activeIdx := m.widget.ActiveControl()

	for r := 0; r < rows; r++ {
		var line []string
		for _, i := range m.bar.rows[r] {
			style := buttonStyle
			if i == activeIdx {
				style = buttonActiveStyle
			}
			if i == m.cursor {
				style = style.Inherit(buttonCursorStyle)
			}
			line = append(line, style.Render("[ "+controlLabel(m.controls[i])+" ]"))
		}
		b.WriteString(strings.Join(line, " "))
		if state.ToggleVisible && r == rows-1 {
			b.WriteString("  " + styleCommand.Render(state.ToggleLabel))
		}
		b.WriteString("\n")
	}
	return rows
}

// renderGrid draws the surface snapshot into a w×h canvas. Ghosts are drawn
// beneath items.
func (m *projectsModel) renderGrid(w, h int) string {
	cv := newCanvas(w, h)
	snap := m.surface.Snapshot()
	for pass := 0; pass < 2; pass++ {
		for _, p := range snap {
			if p.Ghost != (pass == 0) {
				continue
			}
			it := m.items[p.Source]
			cv.card(p.Rect, shadeFor(p.Opacity, it.Highlight), it.Title, strings.Join(it.Tags, " "))
		}
	}
	return cv.String()
}

// =============================================================================
// Canvas
// =============================================================================

// Shades map opacity to a foreground color.
const (
	shadeNone = iota
	shadeFaint
	shadeHalf
	shadeFull
	shadeHighlight
)

var shadeStyles = [...]lipgloss.Style{
	shadeNone:      lipgloss.NewStyle(),
	shadeFaint:     lipgloss.NewStyle().Foreground(colorDim),
	shadeHalf:      lipgloss.NewStyle().Foreground(colorGray),
	shadeFull:      lipgloss.NewStyle().Foreground(colorWhite),
	shadeHighlight: lipgloss.NewStyle().Foreground(colorCyan),
}

func shadeFor(opacity float64, highlight bool) int {
	switch {
	case opacity <= 0.05:
		return shadeNone
	case opacity < 0.4:
		return shadeFaint
	case opacity < 0.75:
		return shadeHalf
	case highlight:
		return shadeHighlight
	default:
		return shadeFull
	}
}

type canvas struct {
	w, h  int
	runes [][]rune
	shade [][]int
}

func newCanvas(w, h int) *canvas {
	cv := &canvas{w: w, h: h}
	for y := 0; y < h; y++ {
		cv.runes = append(cv.runes, []rune(strings.Repeat(" ", max(0, w))))
		cv.shade = append(cv.shade, make([]int, max(0, w)))
	}
	return cv
}

func (cv *canvas) put(x, y int, r rune, shade int) {
	if x < 0 || y < 0 || x >= cv.w || y >= cv.h {
		return
	}
	cv.runes[y][x] = r
	cv.shade[y][x] = shade
}

func (cv *canvas) text(x, y int, s string, limit, shade int) {
	for i, r := range []rune(s) {
		if i >= limit {
			break
		}
		cv.put(x+i, y, r, shade)
	}
}

// card draws a bordered card with a title line and a tag line.
func (cv *canvas) card(r filter.Rect, shade int, title, tags string) {
	if shade == shadeNone {
		return
	}
	x0, y0 := int(math.Round(r.X)), int(math.Round(r.Y))
	w, h := int(r.W), int(r.H)
	if w < 4 || h < 2 {
		return
	}
	for x := 1; x < w-1; x++ {
		cv.put(x0+x, y0, '─', shade)
		cv.put(x0+x, y0+h-1, '─', shade)
	}
	for y := 1; y < h-1; y++ {
		cv.put(x0, y0+y, '│', shade)
		cv.put(x0+w-1, y0+y, '│', shade)
		for x := 1; x < w-1; x++ {
			cv.put(x0+x, y0+y, ' ', shade)
		}
	}
	cv.put(x0, y0, '╭', shade)
	cv.put(x0+w-1, y0, '╮', shade)
	cv.put(x0, y0+h-1, '╰', shade)
	cv.put(x0+w-1, y0+h-1, '╯', shade)

	inner := w - 4
	if h > 2 {
		cv.text(x0+2, y0+1, title, inner, shade)
	}
	if h > 3 && tags != "" {
		cv.text(x0+2, y0+2, "#"+strings.ReplaceAll(tags, " ", " #"), inner, min(shade, shadeHalf))
	}
}

// String renders each row, styling runs of equal shade together.
func (cv *canvas) String() string {
	var b strings.Builder
	for y := 0; y < cv.h; y++ {
		start := 0
		for x := 1; x <= cv.w; x++ {
			if x < cv.w && cv.shade[y][x] == cv.shade[y][start] {
				continue
			}
			run := string(cv.runes[y][start:x])
			if s := cv.shade[y][start]; s == shadeNone {
				b.WriteString(run)
			} else {
				b.WriteString(shadeStyles[s].Render(run))
			}
			start = x
		}
		b.WriteString("\n")
	}
	return b.String()
}
