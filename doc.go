// Package bufbus provides an in-process publish/subscribe event emitter with
// transactional buffering.
//
// Events emitted into a named buffer are queued instead of being dispatched
// immediately. They are delivered to subscribers only when the buffer is
// flushed, or discarded (with a lifecycle notification) when the buffer is
// cleaned. This lets a caller accumulate the events of one logical unit of
// work and release them all at once, or abandon them as a group.
//
// # Architecture
//
// The emitter is built from two cooperating components:
//
//	┌─────────────────────────────────────────────┐
//	│                  Emitter                    │
//	│                                             │
//	│  ┌────────────────┐   ┌──────────────────┐  │
//	│  │ Subscription   │   │  Buffer manager  │  │
//	│  │ registry       │   │  - named buffers │  │
//	│  │ - ordered      │◄──┤  - flush/clean   │  │
//	│  │   handler      │   │    dispatch      │  │
//	│  │   lists        │   │  - TTL eviction  │  │
//	│  └────────────────┘   └──────────────────┘  │
//	└─────────────────────────────────────────────┘
//
// The subscription registry maps event names to ordered handler lists and
// performs immediate (unbuffered) emission. The buffer manager owns the named
// buffers, accumulates per-event argument lists, and replays them through the
// registry on flush.
//
// # Buffers
//
// A buffer is identified by a caller-supplied string or int key, unique among
// live buffers. Each buffer carries a caller-supplied context value that is
// shallow-copied at creation and again at each read, and is appended as the
// final argument of every buffered event delivered during that buffer's
// flush.
//
//	emitter := bufbus.New()
//	emitter.Subscribe("order.line", bufbus.NewHandler(func(args ...any) {
//	    line, ctx := args[0], args[1]
//	    fmt.Println(line, ctx)
//	}))
//
//	emitter.CreateBuffer("checkout-42", map[string]any{"user": "ada"})
//	emitter.EmitBuffered("checkout-42", "order.line", "widget")
//	emitter.EmitBuffered("checkout-42", "order.line", "gadget")
//	emitter.Flush("checkout-42") // dispatches both lines, then drops the buffer
//
// # Lifecycle Events
//
// Every flush fires the reserved EventBufferFlush event exactly once, and
// every clean fires EventBufferClean exactly once, before any other dispatch.
// Lifecycle handlers receive three positional arguments: the buffer id, the
// buffer context, and the full accumulated events mapping.
//
// # Dispatch Semantics
//
// Dispatch is synchronous and runs in the caller's goroutine. Handlers run in
// registration order. Emit iterates a snapshot of the handler list taken when
// the emission starts: a handler subscribed during dispatch is not invoked
// for that emission, and a handler unsubscribed during dispatch is still
// invoked. A panicking handler is not contained; the panic propagates to the
// caller and aborts the remaining dispatch in that loop.
//
// Flush takes one immutable snapshot of the buffer before dispatching, so
// handlers that call back into the emitter mid-flush cannot change what that
// flush delivers.
//
// # Maintenance
//
// Abandoned buffers are evicted by a probabilistic maintenance pass that runs
// inside CreateBuffer: with the configured percentage chance, every live
// buffer idle longer than the configured TTL is removed via the clean path.
// Maintenance failures are logged and swallowed; they never surface through
// CreateBuffer. The random source and the clock are injectable for
// deterministic tests (WithRandSource, WithClock).
//
// # Thread Safety
//
// An Emitter is NOT safe for concurrent use. All operations are synchronous
// and re-entrant: handlers may call back into the emitter during dispatch,
// which an internal lock would deadlock. Callers in concurrent programs must
// serialize access to an Emitter externally.
package bufbus
