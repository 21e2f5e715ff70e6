package cli

import (
	"context"
	"io"
	"os"

	"github.com/matzehuels/asciifolio/pkg/ascii"
	"github.com/matzehuels/asciifolio/pkg/ascii/sink"
	"github.com/matzehuels/asciifolio/pkg/config"
	"github.com/matzehuels/asciifolio/pkg/document"
	"github.com/matzehuels/asciifolio/pkg/schedule"
)

// pageResult is a prerendered portfolio page.
type pageResult struct {
	HTML     string
	Filter   string
	Visible  []string
	Outcomes []ascii.Outcome
}

// prerenderPage applies the filter to the page's project items and renders
// every configured target into its wrapper/container pair. Targets whose
// elements are absent are skipped. An empty filter uses the configured
// initial filter.
func prerenderPage(ctx context.Context, cfg config.Config, loader ascii.Loader, r io.Reader, filterKey string, vp ascii.Viewport) (*pageResult, error) {
	page, err := document.Parse(r)
	if err != nil {
		return nil, err
	}
	if filterKey == "" {
		filterKey = cfg.Filter.Initial
	}
	visible := page.ApplyFilter(filterKey)

	dom := sink.NewDOM(page.Document())
	jobs := make([]ascii.Job, 0, len(cfg.Targets))
	for _, t := range cfg.Targets {
		jobs = append(jobs, dom.Bind(t.Job(), t.Wrapper, t.Container))
	}

	sched := schedule.NewManual()
	renderer := ascii.NewRenderer(loader, sched, loggerFromContext(ctx))
	outcomes := renderer.RenderAll(ctx, cfg.Render, jobs, vp)
	sched.Settle(schedule.FrameInterval, maxSettleFrames)

	html, err := page.HTML()
	if err != nil {
		return nil, err
	}
	return &pageResult{
		HTML:     html,
		Filter:   filterKey,
		Visible:  visible,
		Outcomes: outcomes,
	}, nil
}

// prerenderPageFile is prerenderPage on a file.
func prerenderPageFile(ctx context.Context, cfg config.Config, loader ascii.Loader, path, filterKey string, vp ascii.Viewport) (*pageResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return prerenderPage(ctx, cfg, loader, f, filterKey, vp)
}
