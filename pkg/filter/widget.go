package filter

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/asciifolio/pkg/observability"
	"github.com/matzehuels/asciifolio/pkg/schedule"
)

// Transition summarizes one filter change. Ids keep item order.
type Transition struct {
	From, To string
	Entered  []string
	Exited   []string
	Moved    []string
}

// Widget owns the active filter for a fixed list of items and controls.
// Apply and Select must be called from the goroutine that steps the
// scheduler, like DOM event handlers on the UI thread.
type Widget struct {
	cfg      Config
	items    []Item
	controls []string
	surface  Surface
	sched    schedule.Scheduler
	bar      *Bar
	logger   *log.Logger

	mu     sync.Mutex
	active string
}

// NewWidget creates a widget. controls lists the filter key of each control
// in bar order. A nil logger discards output.
func NewWidget(cfg Config, items []Item, controls []string, surface Surface, sched schedule.Scheduler, logger *log.Logger) *Widget {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	keys := make([]string, len(controls))
	for i, c := range controls {
		keys[i] = Normalize(c)
	}
	return &Widget{
		cfg:      cfg,
		items:    items,
		controls: keys,
		surface:  surface,
		sched:    sched,
		bar:      NewBar(cfg),
		logger:   logger,
	}
}

// Init shows exactly the items the initial filter selects, without
// animation.
func (w *Widget) Init() {
	initial := Normalize(w.cfg.Initial)
	for _, it := range w.items {
		w.surface.SetDisplayed(it.ID, Selects(initial, it))
	}
	w.setActive(initial)
	w.logger.Debug("filter initialized", "filter", initial, "items", len(w.items))
}

// Active returns the current filter key.
func (w *Widget) Active() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

func (w *Widget) setActive(f string) {
	w.mu.Lock()
	w.active = f
	w.mu.Unlock()
}

// Items returns the widget's items.
func (w *Widget) Items() []Item {
	return w.items
}

// Controls returns the normalized filter key of each control.
func (w *Widget) Controls() []string {
	return w.controls
}

// ActiveControl returns the index of the first control whose key is the
// active filter, or -1.
func (w *Widget) ActiveControl() int {
	active := w.Active()
	for i, c := range w.controls {
		if c == active {
			return i
		}
	}
	return -1
}

// Bar returns the widget's filter bar.
func (w *Widget) Bar() *Bar {
	return w.bar
}

// Visible returns the ids of displayed items in item order.
func (w *Widget) Visible() []string {
	var ids []string
	for _, it := range w.items {
		if w.surface.Displayed(it.ID) {
			ids = append(ids, it.ID)
		}
	}
	return ids
}

// Select handles a click on control i given the bar's current measurement.
// A collapsed, wrapping bar is expanded first when the control is outside
// the visible first row. It reports false for an unknown control.
func (w *Widget) Select(i int, m Measure) (Transition, BarState, bool) {
	if i < 0 || i >= len(w.controls) {
		return Transition{}, w.bar.Layout(m), false
	}
	if !w.bar.Expanded() && w.bar.Wrapping(m) && !w.bar.InFirstRow(m, i) {
		w.bar.Toggle()
		w.logger.Debug("filter bar expanded for selection", "control", i)
	}
	state := w.bar.Layout(m)
	return w.Apply(w.controls[i]), state, true
}

// Apply switches to filter, animating exits, entrances and reflow.
func (w *Widget) Apply(filter string) Transition {
	filter = Normalize(filter)
	tr := Transition{From: w.Active(), To: filter}

	// Capture.
	first := make(map[string]Rect)
	for _, it := range w.items {
		if !w.surface.Displayed(it.ID) {
			continue
		}
		if r, ok := w.surface.Rect(it.ID); ok {
			first[it.ID] = r
		}
	}

	// Exit.
	for _, it := range w.items {
		if Selects(filter, it) || !w.surface.Displayed(it.ID) {
			continue
		}
		if r, ok := first[it.ID]; ok {
			w.ghost(it.ID, r)
		}
		w.surface.SetDisplayed(it.ID, false)
		tr.Exited = append(tr.Exited, it.ID)
	}

	// Enter.
	for _, it := range w.items {
		if !Selects(filter, it) || w.surface.Displayed(it.ID) {
			continue
		}
		w.surface.AddClass(it.ID, ClassEntering)
		w.surface.SetDisplayed(it.ID, true)
		tr.Entered = append(tr.Entered, it.ID)
	}

	// Reflow.
	visible := w.Visible()
	for _, id := range visible {
		a, ok := first[id]
		if !ok {
			continue
		}
		b, ok := w.surface.Rect(id)
		if !ok {
			continue
		}
		dx, dy := a.X-b.X, a.Y-b.Y
		if dx == 0 && dy == 0 {
			continue
		}
		w.surface.SetTransform(id, dx, dy, 0)
		w.sched.NextFrame(func() {
			w.surface.SetTransform(id, 0, 0, w.cfg.Duration)
		})
		tr.Moved = append(tr.Moved, id)
	}
	w.sched.NextFrame(func() {
		for _, id := range visible {
			w.surface.RemoveClass(id, ClassEntering)
		}
	})

	w.setActive(filter)
	w.logger.Debug("filter applied",
		"from", tr.From,
		"to", tr.To,
		"entered", len(tr.Entered),
		"exited", len(tr.Exited),
		"moved", len(tr.Moved))
	observability.Filter().OnTransition(tr.From, tr.To, len(tr.Entered), len(tr.Exited), len(tr.Moved))
	return tr
}

// ghost animates a leaving copy of id and schedules its removal.
func (w *Widget) ghost(id string, at Rect) {
	gid, ok := w.surface.Ghost(id, at)
	if !ok {
		return
	}
	w.surface.AddClass(gid, ClassGhost)
	w.sched.NextFrame(func() {
		w.surface.AddClass(gid, ClassLeaving)
	})
	w.sched.After(w.cfg.Duration+w.cfg.CleanupMargin, func() {
		if !w.surface.RemoveGhost(gid) {
			w.logger.Debug("ghost already gone", "ghost", gid, "item", id)
		}
	})
}
