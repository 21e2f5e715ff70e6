package filter

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// FlowConfig sizes a FlowSurface grid.
type FlowConfig struct {
	Width      float64 // container width
	CellWidth  float64
	CellHeight float64
	Gap        float64

	// Fade is the opacity animation length for entering and leaving.
	Fade time.Duration
}

// DefaultFlowConfig matches a three-column card grid.
func DefaultFlowConfig() FlowConfig {
	return FlowConfig{
		Width:      960,
		CellWidth:  300,
		CellHeight: 180,
		Gap:        30,
		Fade:       300 * time.Millisecond,
	}
}

// Placed is a snapshot of one item or ghost as it currently appears.
type Placed struct {
	ID      string
	Source  string // item id; equals ID for items
	Ghost   bool
	Rect    Rect
	Opacity float64
	Classes []string
}

// FlowSurface is an in-memory Surface laying displayed items out in a
// left-to-right wrapping grid. Transforms and fades are tweened; call
// Advance to step them. It is safe for concurrent use.
type FlowSurface struct {
	mu     sync.Mutex
	cfg    FlowConfig
	order  []string
	nodes  map[string]*flowNode
	ghosts map[string]*flowNode
}

type flowNode struct {
	id      string
	source  string
	shown   bool
	at      Rect // ghosts only
	classes map[string]bool

	tx, ty  float64
	opacity float64
	anims   []*tweenGroup
}

// tweenGroup animates float fields of a node together.
type tweenGroup struct {
	tweens []*gween.Tween
	fields []*float64
}

func (g *tweenGroup) update(dt float32) bool {
	done := true
	for i, tw := range g.tweens {
		v, finished := tw.Update(dt)
		*g.fields[i] = float64(v)
		if !finished {
			done = false
		}
	}
	return done
}

// animate tweens fields of n to the target values over d. A non-positive
// d assigns them at once.
func (n *flowNode) animate(d time.Duration, fn ease.TweenFunc, fields []*float64, to []float64) {
	if d <= 0 {
		for i, f := range fields {
			*f = to[i]
		}
		return
	}
	g := &tweenGroup{fields: fields}
	for i, f := range fields {
		g.tweens = append(g.tweens, gween.New(float32(*f), float32(to[i]), float32(d.Seconds()), fn))
	}
	n.anims = append(n.anims, g)
}

// NewFlowSurface creates a surface holding ids in flow order, all displayed.
func NewFlowSurface(cfg FlowConfig, ids []string) *FlowSurface {
	s := &FlowSurface{
		cfg:    cfg,
		order:  append([]string(nil), ids...),
		nodes:  make(map[string]*flowNode, len(ids)),
		ghosts: make(map[string]*flowNode),
	}
	for _, id := range ids {
		s.nodes[id] = &flowNode{id: id, source: id, shown: true, opacity: 1, classes: map[string]bool{}}
	}
	return s
}

// SetWidth changes the container width, reflowing instantly.
func (s *FlowSurface) SetWidth(w float64) {
	s.mu.Lock()
	s.cfg.Width = w
	s.mu.Unlock()
}

// Config returns the current grid settings.
func (s *FlowSurface) Config() FlowConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// perRowLocked is the number of cells that fit on one row.
func (s *FlowSurface) perRowLocked() int {
	step := s.cfg.CellWidth + s.cfg.Gap
	if step <= 0 {
		return 1
	}
	return max(1, int(math.Floor((s.cfg.Width+s.cfg.Gap)/step)))
}

// slotLocked returns the untransformed box of a displayed item.
func (s *FlowSurface) slotLocked(id string) (Rect, bool) {
	perRow := s.perRowLocked()
	i := 0
	for _, oid := range s.order {
		n := s.nodes[oid]
		if !n.shown {
			continue
		}
		if oid == id {
			col, row := i%perRow, i/perRow
			return Rect{
				X: float64(col) * (s.cfg.CellWidth + s.cfg.Gap),
				Y: float64(row) * (s.cfg.CellHeight + s.cfg.Gap),
				W: s.cfg.CellWidth,
				H: s.cfg.CellHeight,
			}, true
		}
		i++
	}
	return Rect{}, false
}

func (s *FlowSurface) lookupLocked(id string) *flowNode {
	if n, ok := s.nodes[id]; ok {
		return n
	}
	return s.ghosts[id]
}

// Rect returns the visual box of an item or ghost, transform included.
func (s *FlowSurface) Rect(id string) (Rect, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rectLocked(id)
}

func (s *FlowSurface) rectLocked(id string) (Rect, bool) {
	if g, ok := s.ghosts[id]; ok {
		r := g.at
		r.X += g.tx
		r.Y += g.ty
		return r, true
	}
	n, ok := s.nodes[id]
	if !ok || !n.shown {
		return Rect{}, false
	}
	r, _ := s.slotLocked(id)
	r.X += n.tx
	r.Y += n.ty
	return r, true
}

func (s *FlowSurface) Displayed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	return ok && n.shown
}

func (s *FlowSurface) SetDisplayed(id string, shown bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.nodes[id]; ok {
		n.shown = shown
	}
}

// Ghost copies the item's classes onto a new out-of-flow node.
func (s *FlowSurface) Ghost(id string, at Rect) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return "", false
	}
	g := &flowNode{
		id:      uuid.NewString(),
		source:  id,
		at:      at,
		opacity: n.opacity,
		classes: make(map[string]bool, len(n.classes)),
	}
	for c := range n.classes {
		g.classes[c] = true
	}
	s.ghosts[g.id] = g
	return g.id, true
}

func (s *FlowSurface) RemoveGhost(ghostID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ghosts[ghostID]; !ok {
		return false
	}
	delete(s.ghosts, ghostID)
	return true
}

// AddClass sets a class. "entering" hides the element at once; "leaving"
// fades it out.
func (s *FlowSurface) AddClass(id, class string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.lookupLocked(id)
	if n == nil || n.classes[class] {
		return
	}
	n.classes[class] = true
	switch class {
	case ClassEntering:
		n.opacity = 0
	case ClassLeaving:
		n.animate(s.cfg.Fade, ease.Linear, []*float64{&n.opacity}, []float64{0})
	}
}

// RemoveClass clears a class. Removing "entering" fades the element in.
func (s *FlowSurface) RemoveClass(id, class string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.lookupLocked(id)
	if n == nil || !n.classes[class] {
		return
	}
	delete(n.classes, class)
	if class == ClassEntering {
		n.animate(s.cfg.Fade, ease.Linear, []*float64{&n.opacity}, []float64{1})
	}
}

// HasClass reports whether the item or ghost has class.
func (s *FlowSurface) HasClass(id, class string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.lookupLocked(id)
	return n != nil && n.classes[class]
}

func (s *FlowSurface) SetTransform(id string, dx, dy float64, transition time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.lookupLocked(id)
	if n == nil {
		return
	}
	// A new transform replaces any running translation.
	kept := n.anims[:0]
	for _, a := range n.anims {
		if a.fields[0] != &n.tx {
			kept = append(kept, a)
		}
	}
	n.anims = kept
	n.animate(transition, ease.OutCubic, []*float64{&n.tx, &n.ty}, []float64{dx, dy})
}

// Transform returns the current translation of an item or ghost.
func (s *FlowSurface) Transform(id string) (dx, dy float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.lookupLocked(id); n != nil {
		return n.tx, n.ty
	}
	return 0, 0
}

// Opacity returns the current opacity of an item or ghost.
func (s *FlowSurface) Opacity(id string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.lookupLocked(id); n != nil {
		return n.opacity
	}
	return 0
}

// Ghosts returns the number of live ghosts.
func (s *FlowSurface) Ghosts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ghosts)
}

// Animating reports whether any tween is still running.
func (s *FlowSurface) Animating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.nodes {
		if len(n.anims) > 0 {
			return true
		}
	}
	for _, g := range s.ghosts {
		if len(g.anims) > 0 {
			return true
		}
	}
	return false
}

// Advance steps every running tween by dt.
func (s *FlowSurface) Advance(dt time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	step := float32(dt.Seconds())
	advance := func(n *flowNode) {
		kept := n.anims[:0]
		for _, a := range n.anims {
			if !a.update(step) {
				kept = append(kept, a)
			}
		}
		n.anims = kept
	}
	for _, n := range s.nodes {
		advance(n)
	}
	for _, g := range s.ghosts {
		advance(g)
	}
}

// Snapshot returns every displayed item in flow order followed by ghosts
// ordered by position.
func (s *FlowSurface) Snapshot() []Placed {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Placed
	for _, id := range s.order {
		n := s.nodes[id]
		if !n.shown {
			continue
		}
		r, _ := s.rectLocked(id)
		out = append(out, placed(n, r, false))
	}
	ghosts := make([]Placed, 0, len(s.ghosts))
	for id, g := range s.ghosts {
		r, _ := s.rectLocked(id)
		ghosts = append(ghosts, placed(g, r, true))
	}
	sort.Slice(ghosts, func(i, j int) bool {
		if ghosts[i].Rect.Y != ghosts[j].Rect.Y {
			return ghosts[i].Rect.Y < ghosts[j].Rect.Y
		}
		return ghosts[i].Rect.X < ghosts[j].Rect.X
	})
	return append(out, ghosts...)
}

func placed(n *flowNode, r Rect, ghost bool) Placed {
	classes := make([]string, 0, len(n.classes))
	for c := range n.classes {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	return Placed{
		ID:      n.id,
		Source:  n.source,
		Ghost:   ghost,
		Rect:    r,
		Opacity: n.opacity,
		Classes: classes,
	}
}

var _ Surface = (*FlowSurface)(nil)
