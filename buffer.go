package bufbus

import (
	"time"
)

// buffer is a named, in-memory accumulation of not-yet-dispatched events
// sharing one context value.
type buffer struct {
	// id is the caller-supplied key, a string or an int.
	id any

	// context is the caller-supplied auxiliary value, already
	// shallow-copied at creation.
	context any

	// createdAt is when the buffer was created.
	createdAt time.Time

	// lastActivityAt is bumped on every buffered emission and drives the
	// maintenance TTL check.
	lastActivityAt time.Time

	// order records event names in first-use order; flush replays names in
	// this order.
	order []string

	// events maps event name to the accumulated argument lists, one per
	// emission, in append order.
	events map[string][][]any
}

// newBuffer creates an empty buffer. The context must already be
// shallow-copied by the caller.
func newBuffer(id, context any, now time.Time) *buffer {
	return &buffer{
		id:             id,
		context:        context,
		createdAt:      now,
		lastActivityAt: now,
		events:         make(map[string][][]any),
	}
}

// append records one emission of the event. The argument slice is copied so
// the buffer owns its storage.
func (b *buffer) append(eventName string, args []any, now time.Time) {
	list := make([]any, len(args))
	copy(list, args)

	if _, seen := b.events[eventName]; !seen {
		b.order = append(b.order, eventName)
	}
	b.events[eventName] = append(b.events[eventName], list)
	b.lastActivityAt = now
}

// snapshot returns a one-level copy of the events mapping. The inner
// argument lists are shared; the buffer never mutates a list after append,
// so the snapshot is stable across re-entrant emitter calls.
func (b *buffer) snapshot() map[string][][]any {
	out := make(map[string][][]any, len(b.events))
	for name, lists := range b.events {
		out[name] = lists
	}
	return out
}

// validBufferID reports whether id is an accepted buffer key.
func validBufferID(id any) bool {
	switch id.(type) {
	case string, int:
		return true
	default:
		return false
	}
}
