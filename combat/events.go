package combat

import "github.com/jakecoffman/cp"

type EventKind string

const (
	EventHealthChanged EventKind = "health_changed"
	EventDeath         EventKind = "death"
	EventMoved         EventKind = "moved"
	EventBuffAdded     EventKind = "buff_added"
	EventRegionBroken  EventKind = "region_broken"
	EventDodged        EventKind = "dodged"
	EventTrailRemoved  EventKind = "trail_removed"
)

// Event is emitted by actors and effects and drained by whoever drives the
// battle.
type Event struct {
	Kind  EventKind
	Actor ActorID
	Old   float64
	New   float64
	From  cp.Vector
	To    cp.Vector
	Note  string
}

// EventQueue is a simple FIFO queue. A nil queue drops everything.
type EventQueue struct {
	items []Event
}

func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}
