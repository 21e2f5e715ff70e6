package ascii

import (
	"context"
	"sync"

	"github.com/matzehuels/asciifolio/pkg/schedule"
)

// Responsive re-renders a fixed set of jobs whenever the viewport settles.
// Resize bursts collapse into one render after the configured debounce.
type Responsive struct {
	ctx      context.Context
	renderer *Renderer
	cfg      Config
	jobs     []Job
	onRender func([]Outcome)

	debouncer *schedule.Debouncer
	inflight  sync.WaitGroup

	mu       sync.Mutex
	viewport Viewport
}

// NewResponsive wires jobs to a debounced resize trigger. onRender, if not
// nil, receives the outcomes of every completed pass.
func NewResponsive(ctx context.Context, r *Renderer, sched schedule.Scheduler, cfg Config, jobs []Job, onRender func([]Outcome)) *Responsive {
	rs := &Responsive{
		ctx:      ctx,
		renderer: r,
		cfg:      cfg,
		jobs:     jobs,
		onRender: onRender,
	}
	rs.debouncer = schedule.NewDebouncer(sched, cfg.Debounce, rs.fire)
	return rs
}

// Start renders immediately at vp and returns the outcomes.
func (rs *Responsive) Start(vp Viewport) []Outcome {
	rs.setViewport(vp)
	outcomes := rs.renderer.RenderAll(rs.ctx, rs.cfg, rs.jobs, vp)
	if rs.onRender != nil {
		rs.onRender(outcomes)
	}
	return outcomes
}

// Resize records the new viewport and restarts the debounce window.
func (rs *Responsive) Resize(vp Viewport) {
	rs.setViewport(vp)
	rs.debouncer.Trigger()
}

// Viewport returns the last recorded viewport.
func (rs *Responsive) Viewport() Viewport {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.viewport
}

// Wait blocks until renders started by settled resizes finish.
func (rs *Responsive) Wait() {
	rs.inflight.Wait()
}

// Stop cancels a pending resize render.
func (rs *Responsive) Stop() {
	rs.debouncer.Stop()
}

func (rs *Responsive) setViewport(vp Viewport) {
	rs.mu.Lock()
	rs.viewport = vp
	rs.mu.Unlock()
}

// fire runs off the scheduler goroutine so decoding never blocks timers.
func (rs *Responsive) fire() {
	vp := rs.Viewport()
	rs.inflight.Add(1)
	go func() {
		defer rs.inflight.Done()
		outcomes := rs.renderer.RenderAll(rs.ctx, rs.cfg, rs.jobs, vp)
		if rs.onRender != nil {
			rs.onRender(outcomes)
		}
	}()
}
