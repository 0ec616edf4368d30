package bufbus

// Handler is a boxed event callback.
//
// Handlers are compared by identity: the same *Handler subscribed to an event
// twice is called twice per emission and must be unsubscribed twice to be
// fully removed. Boxing the function gives closures a stable identity, which
// raw func values do not have in Go.
type Handler struct {
	fn func(args ...any)
}

// NewHandler boxes fn as a Handler.
func NewHandler(fn func(args ...any)) *Handler {
	return &Handler{fn: fn}
}

// invoke calls the boxed function with the given positional arguments.
func (h *Handler) invoke(args []any) {
	h.fn(args...)
}
