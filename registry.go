package bufbus

import (
	"github.com/google/uuid"
)

// registration is one subscription entry: a boxed handler plus a unique
// token used by unsubscribe closures for targeted removal.
type registration struct {
	id      string
	handler *Handler
}

// registry maps event names to ordered registration lists and performs
// immediate synchronous emission.
type registry struct {
	handlers map[string][]*registration
}

// newRegistry creates an empty subscription registry.
func newRegistry() *registry {
	return &registry{
		handlers: make(map[string][]*registration),
	}
}

// subscribe appends a registration for the event, creating the list if
// absent. Duplicate handlers are allowed and kept as separate entries.
func (r *registry) subscribe(eventName string, h *Handler) (*registration, error) {
	if eventName == "" {
		return nil, ErrInvalidEventName
	}
	if h == nil {
		return nil, ErrNilHandler
	}

	reg := &registration{
		id:      uuid.NewString(),
		handler: h,
	}
	r.handlers[eventName] = append(r.handlers[eventName], reg)
	return reg, nil
}

// unsubscribe removes the first registration for the event whose handler
// matches h by identity. Returns false when the event or handler is unknown.
func (r *registry) unsubscribe(eventName string, h *Handler) bool {
	regs := r.handlers[eventName]
	for i, reg := range regs {
		if reg.handler == h {
			r.remove(eventName, i)
			return true
		}
	}
	return false
}

// removeRegistration removes the registration with the given token from the
// event's list. Returns false when it is no longer present, which makes
// unsubscribe closures idempotent.
func (r *registry) removeRegistration(eventName, regID string) bool {
	regs := r.handlers[eventName]
	for i, reg := range regs {
		if reg.id == regID {
			r.remove(eventName, i)
			return true
		}
	}
	return false
}

// unsubscribeAll drops the entire registration list for the event.
// A later subscribe recreates it.
func (r *registry) unsubscribeAll(eventName string) {
	delete(r.handlers, eventName)
}

// remove deletes index i from the event's list, dropping the list entirely
// when it empties.
func (r *registry) remove(eventName string, i int) {
	regs := r.handlers[eventName]
	regs = append(regs[:i], regs[i+1:]...)
	if len(regs) == 0 {
		delete(r.handlers, eventName)
		return
	}
	r.handlers[eventName] = regs
}

// emit invokes every handler registered for the event, in registration
// order, with the given positional arguments. Dispatch iterates a snapshot
// of the list taken here: handlers subscribed during dispatch are not
// invoked for this emission, handlers unsubscribed during dispatch still
// are. Returns the number of handlers invoked.
func (r *registry) emit(eventName string, args []any) int {
	regs := r.handlers[eventName]
	if len(regs) == 0 {
		return 0
	}

	snapshot := make([]*registration, len(regs))
	copy(snapshot, regs)

	for _, reg := range snapshot {
		reg.handler.invoke(args)
	}
	return len(snapshot)
}

// handlerCount returns the number of registrations for the event.
func (r *registry) handlerCount(eventName string) int {
	return len(r.handlers[eventName])
}
