// Package dnd keeps the ordering of a sortable list consistent while it is
// being dragged around. It knows nothing about pointer events: callers feed
// it the gesture (start, move, drop, cancel) and item geometry.
package dnd

import (
	"errors"
	"math"
	"sync"
	"time"
)

// FlashDuration is how long a dropped item stays highlighted.
const FlashDuration = 550 * time.Millisecond

var (
	ErrNotDragging     = errors.New("no drag in progress")
	ErrAlreadyDragging = errors.New("a drag is already in progress")
	ErrUnknownItem     = errors.New("unknown item")
)

type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

type stopper interface {
	Stop() bool
}

// Engine is the drag state machine of one sortable list.
type Engine struct {
	mu sync.Mutex

	items []string
	rects map[string]Rect

	state    State
	active   string
	snapshot []string
	preview  []string

	flashIndex int
	flashTimer stopper
	flashGen   int

	onCommit  func(from, to int)
	afterFunc func(d time.Duration, f func()) stopper
}

// New creates an idle engine over ids. onCommit is called after every drop
// that changed the position of the dragged item.
func New(ids []string, onCommit func(from, to int)) *Engine {
	return &Engine{
		items:      append([]string(nil), ids...),
		rects:      make(map[string]Rect),
		flashIndex: -1,
		onCommit:   onCommit,
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
	}
}

// SetItems replaces the list after a change made outside a gesture.
// A drag in progress is cancelled.
func (e *Engine) SetItems(ids []string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reset()
	e.items = append([]string(nil), ids...)
	for id := range e.rects {
		if indexOf(e.items, id) < 0 {
			delete(e.rects, id)
		}
	}
}

func (e *Engine) Measure(id string, r Rect) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rects[id] = r
}

func (e *Engine) Items() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Dragging {
		return append([]string(nil), e.preview...)
	}
	return append([]string(nil), e.items...)
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// IsDragging is true only for the item being dragged.
func (e *Engine) IsDragging(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == Dragging && e.active == id
}

// Flashing returns the index highlighted after the last drop, if any.
func (e *Engine) Flashing() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.flashIndex, e.flashIndex >= 0
}

func (e *Engine) Start(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Dragging {
		return ErrAlreadyDragging
	}
	if indexOf(e.items, id) < 0 {
		return ErrUnknownItem
	}

	e.state = Dragging
	e.active = id
	e.snapshot = append([]string(nil), e.items...)
	e.preview = append([]string(nil), e.items...)
	return nil
}

// Move takes the current center of the dragged item and returns the live
// preview ordering. The item lands at the index of whichever measured item
// center is closest; its own original slot counts, so moving back restores
// the starting order.
func (e *Engine) Move(center Point) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Dragging {
		return nil, ErrNotDragging
	}

	over := ""
	best := math.Inf(1)
	for _, id := range e.snapshot {
		r, ok := e.rects[id]
		if !ok {
			continue
		}
		if d := distance(center, r.Center()); d < best {
			best = d
			over = id
		}
	}
	if over != "" {
		from := indexOf(e.snapshot, e.active)
		to := indexOf(e.snapshot, over)
		e.preview = Move(e.snapshot, from, to)
	}
	return append([]string(nil), e.preview...), nil
}

// Drop commits the preview ordering and returns the move it made.
func (e *Engine) Drop() (from, to int, err error) {
	e.mu.Lock()
	if e.state != Dragging {
		e.mu.Unlock()
		return 0, 0, ErrNotDragging
	}

	from = indexOf(e.snapshot, e.active)
	to = indexOf(e.preview, e.active)
	e.items = e.preview
	e.reset()
	e.flash(to)
	commit := e.onCommit
	e.mu.Unlock()

	if from != to && commit != nil {
		commit(from, to)
	}
	return from, to, nil
}

// Cancel abandons the gesture and restores the order it started from.
func (e *Engine) Cancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Dragging {
		return ErrNotDragging
	}
	e.items = e.snapshot
	e.reset()
	return nil
}

func (e *Engine) reset() {
	e.state = Idle
	e.active = ""
	e.snapshot = nil
	e.preview = nil
}

// flash must be called with mu held.
func (e *Engine) flash(index int) {
	if e.flashTimer != nil {
		e.flashTimer.Stop()
	}
	e.flashGen++
	gen := e.flashGen
	e.flashIndex = index
	e.flashTimer = e.afterFunc(FlashDuration, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.flashGen == gen {
			e.flashIndex = -1
			e.flashTimer = nil
		}
	})
}

func indexOf(ids []string, id string) int {
	for i, x := range ids {
		if x == id {
			return i
		}
	}
	return -1
}
