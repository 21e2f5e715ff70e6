package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/asciifolio/pkg/ascii"
	"github.com/matzehuels/asciifolio/pkg/ascii/sink"
	"github.com/matzehuels/asciifolio/pkg/config"
	"github.com/matzehuels/asciifolio/pkg/errors"
	"github.com/matzehuels/asciifolio/pkg/schedule"
)

// Output formats.
const (
	formatText = "txt"  // glyph rows scaled to the viewport
	formatPNG  = "png"  // glyphs drawn on a raster
	formatHTML = "html" // the portfolio page with targets rendered in place

	stdoutPath = "-"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string   // output file, base path or directory; "-" for stdout
	formats []string // output formats: "txt", "png", "html"
	targets []string // configured target ids; empty means all
	width   float64  // viewport width in CSS pixels
	height  float64  // viewport height in CSS pixels
	cols    int      // column override applied to every target
	filter  string   // filter applied to the page for html output
	noCache bool     // bypass the image source cache
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render [image]",
		Short: "Render images as ASCII art",
		Long: `Render the configured targets, or a single image file or URL, as ASCII art.

Text output holds the glyph rows scaled to fit the viewport. PNG output draws
the glyphs on a raster at twice the CSS pixel size. HTML output rewrites the
portfolio page with every target rendered into its wrapper and the initial
project filter applied.`,
		Example: `  # Render every configured target to txt files
  asciifolio render

  # Render one image to stdout at 80 columns
  asciifolio render photo.jpg --cols 80 -o -

  # Prerender the portfolio page for a phone-sized viewport
  asciifolio render -f html --width 390 --height 844 -o site/index.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ctx := withLogger(cmd.Context(), c.Logger)
			return runRender(ctx, cfg, args, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, base path or directory (- for stdout)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): txt (default), png, html (comma-separated)")
	cmd.Flags().StringSliceVarP(&opts.targets, "target", "t", nil, "configured target id(s) to render (default all)")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "viewport width (default from config)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "viewport height (default from config)")
	cmd.Flags().IntVar(&opts.cols, "cols", 0, "columns for every target (default from config)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "project filter for html output (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the image source cache")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["txt"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatText}
	}
	return strings.Split(s, ",")
}

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{formatText: true, formatPNG: true, formatHTML: true}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be 'txt', 'png', or 'html')", f)
		}
	}
	return nil
}

// selectTargets picks the configured targets named by ids, in config order.
func selectTargets(all []config.Target, ids []string) ([]config.Target, error) {
	if len(ids) == 0 {
		return slices.Clone(all), nil
	}
	var out []config.Target
	for _, t := range all {
		if slices.Contains(ids, t.ID) {
			out = append(out, t)
		}
	}
	for _, id := range ids {
		if !slices.ContainsFunc(out, func(t config.Target) bool { return t.ID == id }) {
			return nil, errors.New(errors.ErrCodeTargetNotFound, "unknown target: %s", id)
		}
	}
	return out, nil
}

// imageTargetID names an ad-hoc target after its file.
func imageTargetID(src string) string {
	base := filepath.Base(src)
	if id := strings.TrimSuffix(base, filepath.Ext(base)); id != "" && id != "." && id != "/" {
		return id
	}
	return "image"
}

// basePath derives an output path for one target and format. A path with an
// extension is a base path; anything else is a directory.
func basePath(output, id, format string, n int) string {
	switch {
	case output == stdoutPath:
		return stdoutPath
	case output == "":
		return id + "." + format
	case filepath.Ext(output) != "":
		base := strings.TrimSuffix(output, filepath.Ext(output))
		if n == 1 {
			return base + "." + format
		}
		return fmt.Sprintf("%s_%s.%s", base, id, format)
	default:
		return filepath.Join(output, id+"."+format)
	}
}

// runRender renders the selected targets to every requested format.
func runRender(ctx context.Context, cfg config.Config, args []string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	vp := cfg.Server.Viewport()
	if opts.width > 0 {
		vp.Width = opts.width
	}
	if opts.height > 0 {
		vp.Height = opts.height
	}

	root := cfg.Server.Assets
	var targets []config.Target
	if len(args) == 1 {
		if slices.Contains(opts.formats, formatHTML) {
			return errors.New(errors.ErrCodeInvalidInput, "html output renders the configured targets; drop the image argument")
		}
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

	logger.Debug("rendering", "targets", len(targets), "formats", opts.formats, "width", vp.Width, "height", vp.Height)
	prog := newProgress(logger)
	for _, format := range opts.formats {
		if format == formatHTML {
			cfg.Targets = targets
			err = renderHTML(ctx, cfg, loader, vp, opts)
		} else {
			err = renderFiles(ctx, cfg.Render, loader, targets, vp, format, opts.output)
		}
		if err != nil {
			return err
		}
	}
	prog.done(fmt.Sprintf("Rendered %d target(s)", len(targets)))
	return nil
}

// =============================================================================
// File Targets
// =============================================================================

// fileTarget is a render target that can be written out once settled.
type fileTarget interface {
	ascii.Target
	writeTo(w io.Writer) error
}

type textFile struct{ *sink.TextTarget }

func (t textFile) writeTo(w io.Writer) error {
	for _, line := range t.ScaledLines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

type pngFile struct{ *sink.ImageTarget }

func (t pngFile) writeTo(w io.Writer) error {
	return t.EncodePNG(w)
}

func newFileTarget(format string) fileTarget {
	if format == formatPNG {
		return pngFile{sink.NewImageTarget()}
	}
	return textFile{sink.NewTextTarget()}
}

// renderFiles renders each target into its own file. A failing target is
// reported and skipped; the command fails only if every target failed.
func renderFiles(ctx context.Context, cfg ascii.Config, loader ascii.Loader, targets []config.Target, vp ascii.Viewport, format, output string) error {
	logger := loggerFromContext(ctx)

	sched := schedule.NewManual()
	renderer := ascii.NewRenderer(loader, sched, logger)

	jobs := make([]ascii.Job, len(targets))
	files := make([]fileTarget, len(targets))
	for i, t := range targets {
		files[i] = newFileTarget(format)
		jobs[i] = t.Job()
		jobs[i].Target = files[i]
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %d target(s) as %s...", len(targets), format))
	if output != stdoutPath {
		spinner.Start()
	}
	outcomes := renderer.RenderAll(ctx, cfg, jobs, vp)
	sched.Settle(schedule.FrameInterval, maxSettleFrames)
	spinner.Stop()
	if spinner.Cancelled() {
		return ctx.Err()
	}

	failed := 0
	for i, o := range outcomes {
		if o.Err != nil {
			failed++
			logger.Debug("render failed", "target", o.ID, "err", o.Err)
			printError("%s  %s", o.ID, errors.UserMessage(o.Err))
			continue
		}
		path := basePath(output, o.ID, format, len(targets))
		if err := writeFile(path, files[i]); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		if path != stdoutPath {
			printSuccess("%s  %s", StyleValue.Render(o.ID), StyleDim.Render(describeOutcome(o)))
			printFile(path)
		}
	}
	if failed > 0 && failed == len(outcomes) {
		return errors.New(errors.ErrCodeInternal, "all %d target(s) failed to render", failed)
	}
	return nil
}

func writeFile(path string, t fileTarget) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if err := t.writeTo(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// renderHTML prerenders the portfolio page.
func renderHTML(ctx context.Context, cfg config.Config, loader ascii.Loader, vp ascii.Viewport, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	res, err := prerenderPageFile(ctx, cfg, loader, cfg.Server.Page, opts.filter, vp)
	if err != nil {
		return err
	}
	for _, o := range res.Outcomes {
		switch {
		case o.Skipped:
			printWarning("%s: wrapper or container not found in %s", o.ID, cfg.Server.Page)
		case o.Err != nil:
			logger.Error("render failed", "target", o.ID, "err", o.Err)
		default:
			logger.Debug("rendered", "target", o.ID, "cols", o.Grid.Cols, "rows", o.Grid.Rows, "scale", o.Scale)
		}
	}

	path := opts.output
	if path != stdoutPath && filepath.Ext(path) == "" {
		path = filepath.Join(path, "index.html")
	}
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(out, res.HTML); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if path != stdoutPath {
		printSuccess("Page prerendered with filter %s", StyleHighlight.Render(res.Filter))
		printDetail("%d project(s) visible", len(res.Visible))
		printFile(path)
	}
	return nil
}

// describeOutcome summarizes a successful render.
func describeOutcome(o ascii.Outcome) string {
	return fmt.Sprintf("%d×%d glyphs, scale %.3f", o.Grid.Cols, o.Grid.Rows, o.Scale)
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for path, creating parent directories.
// "-" is stdout.
func openOutput(path string) (io.WriteCloser, error) {
	if path == stdoutPath {
		return nopCloser{os.Stdout}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}
