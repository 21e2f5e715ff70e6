package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/asciifolio/pkg/ascii"
	"github.com/matzehuels/asciifolio/pkg/ascii/sink"
	"github.com/matzehuels/asciifolio/pkg/config"
	"github.com/matzehuels/asciifolio/pkg/errors"
	"github.com/matzehuels/asciifolio/pkg/schedule"
)

const (
	// terminalCharAspect is the height-to-width ratio of a terminal cell.
	terminalCharAspect = 2.0

	// viewChromeRows are the header and footer lines around the art.
	viewChromeRows = 2
)

// viewOpts holds the command-line flags for the view command.
type viewOpts struct {
	targets    []string
	cols       int
	charAspect float64
	noCache    bool
}

// viewCommand creates the interactive ASCII view.
func (c *CLI) viewCommand() *cobra.Command {
	opts := viewOpts{charAspect: terminalCharAspect}

	cmd := &cobra.Command{
		Use:   "view [image]",
		Short: "Show ASCII art that follows the terminal size",
		Long: `Show the configured targets, or a single image, as ASCII art in the terminal.

The art is fitted to the window and re-rendered once resizing settles. Use
tab to cycle between targets.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ctx := withLogger(cmd.Context(), c.Logger)
			return runView(ctx, cfg, args, &opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.targets, "target", "t", nil, "configured target id(s) to show (default all)")
	cmd.Flags().IntVar(&opts.cols, "cols", 0, "columns for every target (default from config)")
	cmd.Flags().Float64Var(&opts.charAspect, "char-aspect", opts.charAspect, "height-to-width ratio of a terminal cell")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the image source cache")

	return cmd
}

func runView(ctx context.Context, cfg config.Config, args []string, opts *viewOpts) error {
	root := cfg.Server.Assets
	var targets []config.Target
	if len(args) == 1 {
		dir, src, err := splitImageArg(args[0])
		if err != nil {
			return err
		}
		root = dir
		targets = []config.Target{{ID: imageTargetID(src), Image: src}}
	} else {
		var err error
		if targets, err = selectTargets(cfg.Targets, opts.targets); err != nil {
			return err
		}
	}
	if len(targets) == 0 {
		return errors.New(errors.ErrCodeTargetNotFound, "no targets to show")
	}
	if opts.cols > 0 {
		for i := range targets {
			targets[i].Cols = opts.cols
			targets[i].MobileCols = 0
		}
	}

	loader, store, err := newLoader(ctx, cfg, root, opts.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	m := newViewModel(ctx, terminalConfig(cfg.Render, opts.charAspect), loader, targets)
	defer m.close()

	loggerFromContext(ctx).Debug("starting view", "targets", len(targets))
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// terminalConfig adapts render settings to terminal cells: one glyph per
// cell, no padding, and a single font size so a column is always one cell.
func terminalConfig(cfg ascii.Config, charAspect float64) ascii.Config {
	cfg.CharAspect = charAspect
	cfg.MobileFontPx = cfg.FontPx
	cfg.Padding = 0
	return cfg
}

// terminalViewport converts a terminal size to the viewport the renderer
// fits into. Width w fits exactly w glyphs.
func terminalViewport(w, h int, cfg ascii.Config) ascii.Viewport {
	rows := max(0, h-viewChromeRows)
	return ascii.Viewport{
		Width:  float64(w) * cfg.FontPx,
		Height: float64(rows) * cfg.FontPx * cfg.CharAspect,
	}
}

// =============================================================================
// viewModel - Resizable ASCII view
// =============================================================================

type frameMsg time.Time

type renderedMsg struct{}

func frameTick() tea.Cmd {
	return tea.Tick(schedule.FrameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// viewModel drives the responsive renderer from bubbletea. The scheduler is
// stepped on every frame tick, so debounce timers and next-frame callbacks
// run on the update goroutine.
type viewModel struct {
	cfg        ascii.Config
	sched      *schedule.Manual
	responsive *ascii.Responsive
	ids        []string
	texts      []*sink.TextTarget

	current       int
	width, height int
	started       bool

	mu       sync.Mutex
	outcomes map[string]ascii.Outcome
}

func newViewModel(ctx context.Context, cfg ascii.Config, loader ascii.Loader, targets []config.Target) *viewModel {
	m := &viewModel{
		cfg:      cfg,
		sched:    schedule.NewManual(),
		outcomes: make(map[string]ascii.Outcome),
	}
	jobs := make([]ascii.Job, len(targets))
	for i, t := range targets {
		text := sink.NewTextTarget()
		m.ids = append(m.ids, t.ID)
		m.texts = append(m.texts, text)
		jobs[i] = t.Job()
		jobs[i].Target = text
	}
	renderer := ascii.NewRenderer(loader, m.sched, nil)
	m.responsive = ascii.NewResponsive(ctx, renderer, m.sched, cfg, jobs, m.record)
	return m
}

// record keeps the latest current outcome per target.
func (m *viewModel) record(outcomes []ascii.Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range outcomes {
		if o.Stale || o.Skipped {
			continue
		}
		m.outcomes[o.ID] = o
	}
}

func (m *viewModel) outcome(id string) (ascii.Outcome, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.outcomes[id]
	return o, ok
}

func (m *viewModel) close() {
	m.responsive.Stop()
	m.responsive.Wait()
}

func (m *viewModel) Init() tea.Cmd {
	return frameTick()
}

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		vp := terminalViewport(m.width, m.height, m.cfg)
		if !m.started {
			m.started = true
			return m, m.start(vp)
		}
		m.responsive.Resize(vp)
	case frameMsg:
		m.sched.Frame()
		m.sched.Advance(schedule.FrameInterval)
		return m, frameTick()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "right", "l":
			m.current = (m.current + 1) % len(m.ids)
		case "shift+tab", "left", "h":
			m.current = (m.current - 1 + len(m.ids)) % len(m.ids)
		case "r":
			if m.started {
				m.responsive.Resize(m.responsive.Viewport())
			}
		}
	}
	return m, nil
}

// start renders the first pass off the update goroutine.
func (m *viewModel) start(vp ascii.Viewport) tea.Cmd {
	return func() tea.Msg {
		m.responsive.Start(vp)
		return renderedMsg{}
	}
}

func (m *viewModel) View() string {
	if !m.started {
		return StyleDim.Render("measuring terminal...")
	}

	id := m.ids[m.current]
	text := m.texts[m.current]

	var b strings.Builder
	b.WriteString(StyleTitle.Render(appName))
	b.WriteString("  ")
	b.WriteString(StyleHighlight.Render(id))
	if len(m.ids) > 1 {
		b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.current+1, len(m.ids))))
	}
	b.WriteString("  ")

	o, ok := m.outcome(id)
	switch {
	case !ok:
		b.WriteString(StyleDim.Render("rendering..."))
	case o.Err != nil:
		b.WriteString(styleIconError.Render(iconError + " " + errors.UserMessage(o.Err)))
	default:
		status := describeOutcome(o)
		if !text.Ready() {
			status += " · settling"
		}
		b.WriteString(StyleDim.Render(status))
	}
	b.WriteString("\n")

	lines := text.ScaledLines()
	if rows := m.height - viewChromeRows; rows >= 0 && len(lines) > rows {
		lines = lines[:rows]
	}
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(StyleDim.Render("tab next · r re-render · q quit"))
	return b.String()
}
