package ascii

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/asciifolio/pkg/errors"
	"github.com/matzehuels/asciifolio/pkg/observability"
	"github.com/matzehuels/asciifolio/pkg/schedule"
)

// Job describes one render target.
type Job struct {
	// ID names the target in logs and keys its render generation.
	ID string

	// Image is a file path or http(s) URL.
	Image string

	// Cols overrides Config.Cols when non-zero.
	Cols int

	// MobileCols replaces Cols on mobile viewports when non-zero.
	MobileCols int

	// ExtraScale further shrinks the fitted grid. Zero means 1.
	ExtraScale float64

	// Target receives the output. A nil target makes the job a no-op.
	Target Target
}

// Validate checks the job's overrides.
func (j Job) Validate() error {
	if j.Cols < 0 || j.MobileCols < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "target %s: column overrides cannot be negative", j.ID)
	}
	if j.ExtraScale < 0 || j.ExtraScale > 1 || math.IsNaN(j.ExtraScale) {
		return errors.New(errors.ErrCodeInvalidConfig, "target %s: extra scale must be in (0, 1], got %g", j.ID, j.ExtraScale)
	}
	return nil
}

func (j Job) columns(cfg Config, mobile bool) int {
	cols := cfg.Cols
	if j.Cols > 0 {
		cols = j.Cols
	}
	if mobile && j.MobileCols > 0 {
		cols = j.MobileCols
	}
	return cols
}

func (j Job) extraScale() float64 {
	if j.ExtraScale == 0 {
		return 1
	}
	return j.ExtraScale
}

// Outcome reports what a render did.
type Outcome struct {
	ID      string
	Grid    Grid
	Scale   float64
	Skipped bool // target missing, nothing touched
	Stale   bool // superseded by a newer render of the same target
	Err     error
}

// Renderer runs the image-to-glyph pipeline against render targets.
//
// Each job ID carries a generation counter. A render that is superseded while
// it waits on its image drops its result, so only the most recently started
// render for a target ever touches it after loading. The stale check and the
// target writes run under a per-target lock, so a render that passed the
// check finishes writing before a newer one can check.
type Renderer struct {
	loader Loader
	sched  schedule.Scheduler
	logger *log.Logger

	mu    sync.Mutex
	gens  map[string]uint64
	apply map[string]*sync.Mutex
}

// NewRenderer creates a renderer. A nil logger discards output.
func NewRenderer(loader Loader, sched schedule.Scheduler, logger *log.Logger) *Renderer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Renderer{
		loader: loader,
		sched:  sched,
		logger: logger,
		gens:   make(map[string]uint64),
		apply:  make(map[string]*sync.Mutex),
	}
}

// applyLock returns the mutex guarding writes to target id.
func (r *Renderer) applyLock(id string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.apply[id]
	if !ok {
		m = &sync.Mutex{}
		r.apply[id] = m
	}
	return m
}

func (r *Renderer) begin(id string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gens[id]++
	return r.gens[id]
}

func (r *Renderer) current(id string, gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gens[id] == gen
}

// Render runs the full pipeline for one job. Load failures are logged, leave
// the target ready and empty-handed, and are returned for logging only.
func (r *Renderer) Render(ctx context.Context, cfg Config, job Job, vp Viewport) (Outcome, error) {
	out := Outcome{ID: job.ID}
	if job.Target == nil {
		r.logger.Debug("render target missing, skipping", "target", job.ID)
		out.Skipped = true
		return out, nil
	}
	if err := cfg.Validate(); err != nil {
		out.Err = err
		return out, err
	}
	if err := job.Validate(); err != nil {
		out.Err = err
		return out, err
	}

	gen := r.begin(job.ID)
	hooks := observability.Render()
	start := time.Now()
	hooks.OnRenderStart(ctx, job.ID, job.Image)

	t := job.Target
	t.SetReady(false)

	img, err := r.loader.Load(ctx, job.Image)

	lock := r.applyLock(job.ID)
	lock.Lock()
	defer lock.Unlock()
	if !r.current(job.ID, gen) {
		r.logger.Debug("render superseded", "target", job.ID, "src", job.Image)
		hooks.OnRenderStale(ctx, job.ID)
		out.Stale = true
		return out, nil
	}
	if err != nil {
		r.logger.Error("failed to load image", "target", job.ID, "src", job.Image, "err", err)
		t.SetReady(true)
		hooks.OnRenderComplete(ctx, job.ID, 0, time.Since(start), err)
		out.Err = err
		return out, err
	}

	mobile := vp.IsMobile(cfg.MobileBreakpoint)
	grid := BuildGrid(img, cfg, job.columns(cfg, mobile), cfg.fontPx(mobile))

	t.SetCells(grid)
	t.SetScale(1)
	natural := t.NaturalSize()
	scale := Fit(natural, vp, cfg.Padding, job.extraScale())
	t.SetScale(scale)
	t.SetContainerSize(Size{W: natural.W * scale, H: natural.H * scale})

	r.sched.NextFrame(func() {
		if r.current(job.ID, gen) {
			t.SetReady(true)
		}
	})

	r.logger.Debug("rendered",
		"target", job.ID,
		"cols", grid.Cols,
		"rows", grid.Rows,
		"scale", fmt.Sprintf("%.3f", scale),
		"mobile", mobile)
	hooks.OnRenderComplete(ctx, job.ID, len(grid.Cells), time.Since(start), nil)

	out.Grid = grid
	out.Scale = scale
	return out, nil
}

// RenderAll renders every job concurrently. Each job settles on its own: a
// failure or panic in one never affects the others. Outcomes keep job order.
func (r *Renderer) RenderAll(ctx context.Context, cfg Config, jobs []Job, vp Viewport) []Outcome {
	outcomes := make([]Outcome, len(jobs))
	var g errgroup.Group
	for i, job := range jobs {
		g.Go(func() error {
			defer func() {
				if p := recover(); p != nil {
					err := errors.New(errors.ErrCodeInternal, "render %s panicked: %v", job.ID, p)
					r.logger.Error("render panicked", "target", job.ID, "err", err)
					outcomes[i] = Outcome{ID: job.ID, Err: err}
				}
			}()
			outcomes[i], _ = r.Render(ctx, cfg, job, vp)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}
