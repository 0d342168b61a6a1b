package canvas

import (
	"fmt"
	"sync"
)

// EventKind is the pointer phase of a TouchEvent.
type EventKind int

const (
	EventDown EventKind = iota
	EventMove
	EventUp
)

func (k EventKind) String() string {
	switch k {
	case EventDown:
		return "down"
	case EventMove:
		return "move"
	case EventUp:
		return "up"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// ParseEventKind accepts "down", "move" and "up".
func ParseEventKind(s string) (EventKind, error) {
	switch s {
	case "down":
		return EventDown, nil
	case "move":
		return EventMove, nil
	case "up":
		return EventUp, nil
	default:
		return 0, fmt.Errorf("unknown pointer event %q", s)
	}
}

// TouchEvent is a pointer sample in display pixels relative to the canvas
// origin. Page is the key of the page that was active when it was captured.
type TouchEvent struct {
	Kind EventKind
	X, Y float64
	Page string
}

// InputQueue buffers pointer events between the input handlers and the
// render loop. Producers may call from any goroutine; Drain has a single consumer.
type InputQueue struct {
	mu     sync.Mutex
	events []TouchEvent
	down   bool
	page   string // page the current stroke started on
}

// NewInputQueue returns an empty queue.
func NewInputQueue() *InputQueue {
	return &InputQueue{}
}

// Down starts a stroke. It is ignored while a pointer is already down, so a
// single pointer never produces overlapping strokes.
func (q *InputQueue) Down(x, y float64, page string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.down {
		return false
	}
	q.down = true
	q.page = page
	q.events = append(q.events, TouchEvent{Kind: EventDown, X: x, Y: y, Page: page})
	return true
}

// Move extends the current stroke on the page it started on; ignored when no
// pointer is down.
func (q *InputQueue) Move(x, y float64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.down {
		return false
	}
	q.events = append(q.events, TouchEvent{Kind: EventMove, X: x, Y: y, Page: q.page})
	return true
}

// Up ends the current stroke on the page it started on; ignored when no
// pointer is down.
func (q *InputQueue) Up(x, y float64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.down {
		return false
	}
	q.events = append(q.events, TouchEvent{Kind: EventUp, X: x, Y: y, Page: q.page})
	q.down = false
	q.page = ""
	return true
}

// Push dispatches on kind. page only tags a down event; the rest of a stroke
// stays on the page its down was captured on.
func (q *InputQueue) Push(kind EventKind, x, y float64, page string) bool {
	switch kind {
	case EventDown:
		return q.Down(x, y, page)
	case EventMove:
		return q.Move(x, y)
	case EventUp:
		return q.Up(x, y)
	}
	return false
}

// Leave handles pointer leave/cancel: the pointer is no longer down and
// nothing is queued.
func (q *InputQueue) Leave() {
	q.mu.Lock()
	q.down = false
	q.page = ""
	q.mu.Unlock()
}

// PointerDown reports whether a stroke is in progress.
func (q *InputQueue) PointerDown() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.down
}

// Len returns the number of queued events.
func (q *InputQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Drain removes and returns every queued event in FIFO order.
func (q *InputQueue) Drain() []TouchEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.events
	q.events = nil
	return out
}
