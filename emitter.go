package bufbus

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/dshills/bufbus/internal/shallow"
)

// Reserved lifecycle event names.
const (
	// EventBufferFlush fires exactly once per Flush, before any buffered
	// event is dispatched.
	EventBufferFlush = "BUFFER:flush"

	// EventBufferClean fires exactly once per CleanBuffer (including
	// maintenance evictions).
	EventBufferClean = "BUFFER:clean"
)

// Emitter is a publish/subscribe event emitter with transactional buffering.
//
// An Emitter is not safe for concurrent use; see the package documentation
// for the threading model.
type Emitter struct {
	registry *registry
	buffers  map[any]*buffer

	ttl               time.Duration
	maintenanceChance int

	clk       clock.Clock
	randFloat func() float64

	logger *zap.Logger
	// defaultLogger is true while running on the no-op default; SetDebug
	// replaces it with a development logger on first enable.
	defaultLogger bool
	debug         bool
}

// New creates an Emitter with the given options.
func New(opts ...Option) *Emitter {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &Emitter{
		registry:          newRegistry(),
		buffers:           make(map[any]*buffer),
		ttl:               cfg.ttl,
		maintenanceChance: cfg.maintenanceChance,
		clk:               cfg.clk,
		randFloat:         cfg.randFloat,
		logger:            cfg.logger,
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
		e.defaultLogger = true
	}
	return e
}

// SetDebug enables or disables debug logging of emitter operations. When no
// logger was injected with WithLogger, the first enable installs a zap
// development logger.
func (e *Emitter) SetDebug(enabled bool) {
	e.debug = enabled
	if enabled && e.defaultLogger {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return
		}
		e.logger = logger
		e.defaultLogger = false
	}
}

// Subscribe registers the handler for the event and returns an idempotent
// unsubscribe function that removes exactly this registration.
func (e *Emitter) Subscribe(eventName string, h *Handler) (func(), error) {
	reg, err := e.registry.subscribe(eventName, h)
	if err != nil {
		return nil, err
	}
	e.debugLog("subscribed",
		zap.String("event", eventName),
		zap.String("registration", reg.id),
	)

	return func() {
		if e.registry.removeRegistration(eventName, reg.id) {
			e.debugLog("unsubscribed",
				zap.String("event", eventName),
				zap.String("registration", reg.id),
			)
		}
	}, nil
}

// SubscribeMultiple registers the same handler for each event name, in
// order. The returned function unsubscribes from all of them, in order, and
// is idempotent.
func (e *Emitter) SubscribeMultiple(eventNames []string, h *Handler) (func(), error) {
	// Validate up front so a bad name cannot leave a partial subscription.
	if h == nil {
		return nil, ErrNilHandler
	}
	for _, name := range eventNames {
		if name == "" {
			return nil, ErrInvalidEventName
		}
	}

	unsubs := make([]func(), 0, len(eventNames))
	for _, name := range eventNames {
		unsub, err := e.Subscribe(name, h)
		if err != nil {
			return nil, err
		}
		unsubs = append(unsubs, unsub)
	}

	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}, nil
}

// Unsubscribe removes the first registration of the handler for the event,
// matched by identity. It is a no-op when the event or handler is unknown.
func (e *Emitter) Unsubscribe(eventName string, h *Handler) {
	if e.registry.unsubscribe(eventName, h) {
		e.debugLog("unsubscribed", zap.String("event", eventName))
	}
}

// UnsubscribeMultiple removes the handler from each event name; missing
// entries are skipped.
func (e *Emitter) UnsubscribeMultiple(eventNames []string, h *Handler) {
	for _, name := range eventNames {
		e.Unsubscribe(name, h)
	}
}

// UnsubscribeAll drops every registration for each named event. A later
// Subscribe recreates the list.
func (e *Emitter) UnsubscribeAll(eventNames ...string) {
	for _, name := range eventNames {
		e.registry.unsubscribeAll(name)
		e.debugLog("unsubscribed all", zap.String("event", name))
	}
}

// Emit dispatches the event immediately and synchronously to every handler
// registered for it, in registration order. Emitting an event with no
// subscribers is a no-op.
func (e *Emitter) Emit(eventName string, args ...any) {
	n := e.registry.emit(eventName, args)
	e.debugLog("emitted",
		zap.String("event", eventName),
		zap.Int("handlers", n),
	)
}

// HandlerCount returns the number of live registrations for the event.
func (e *Emitter) HandlerCount(eventName string) int {
	return e.registry.handlerCount(eventName)
}

// CreateBuffer creates a named buffer that accumulates events until it is
// flushed or cleaned. The id must be a string or an int and must not collide
// with a live buffer. The context value is shallow-copied before storage.
//
// Every call first runs the probabilistic maintenance check, which may evict
// stale buffers as a side effect.
func (e *Emitter) CreateBuffer(id, context any) error {
	if !validBufferID(id) {
		return fmt.Errorf("create buffer %v: %w", id, ErrInvalidBufferID)
	}

	e.maybeMaintain()

	if _, exists := e.buffers[id]; exists {
		return fmt.Errorf("create buffer %v: %w", id, ErrBufferExists)
	}

	e.buffers[id] = newBuffer(id, shallow.Copy(context), e.clk.Now())
	e.debugLog("buffer created", zap.Any("buffer", id))
	return nil
}

// EmitBuffered appends one argument list for the event to the named buffer.
// No dispatch occurs; the subscription registry is untouched until Flush.
func (e *Emitter) EmitBuffered(id any, eventName string, args ...any) error {
	buf, ok := e.buffers[id]
	if !ok {
		return fmt.Errorf("emit %q on buffer %v: %w", eventName, id, ErrBufferNotFound)
	}

	buf.append(eventName, args, e.clk.Now())
	e.debugLog("buffered",
		zap.Any("buffer", id),
		zap.String("event", eventName),
	)
	return nil
}

// Flush replays the buffer's accumulated events through the registry and
// deletes the buffer.
//
// Dispatch order: EventBufferFlush fires once with (id, context, events);
// then each buffered event name in first-use order, each argument list in
// append order, with the shallow-copied context appended as the final
// argument. Accumulated entries for names with no subscribers are silently
// dropped. Dispatch always completes before deletion is attempted; the
// return value reports whether deletion removed an entry.
func (e *Emitter) Flush(id any) (bool, error) {
	buf, ok := e.buffers[id]
	if !ok {
		return false, fmt.Errorf("flush buffer %v: %w", id, ErrBufferNotFound)
	}

	// One immutable snapshot for the whole dispatch. Handlers that call
	// back into the emitter mid-flush cannot change what this flush
	// delivers.
	order := append([]string(nil), buf.order...)
	events := buf.snapshot()

	e.registry.emit(EventBufferFlush, []any{buf.id, shallow.Copy(buf.context), events})

	for _, name := range order {
		for _, list := range events[name] {
			args := make([]any, 0, len(list)+1)
			args = append(args, list...)
			args = append(args, shallow.Copy(buf.context))
			e.registry.emit(name, args)
		}
	}

	_, live := e.buffers[id]
	delete(e.buffers, id)
	e.debugLog("buffer flushed",
		zap.Any("buffer", id),
		zap.Int("events", len(order)),
	)
	return live, nil
}

// CleanBuffer deletes the buffer without replaying its accumulated events.
// EventBufferClean fires once with the same (id, context, events) shape as
// flush. The return value reports whether deletion removed an entry.
func (e *Emitter) CleanBuffer(id any) (bool, error) {
	buf, ok := e.buffers[id]
	if !ok {
		return false, fmt.Errorf("clean buffer %v: %w", id, ErrBufferNotFound)
	}

	e.registry.emit(EventBufferClean, []any{buf.id, shallow.Copy(buf.context), buf.snapshot()})

	_, live := e.buffers[id]
	delete(e.buffers, id)
	e.debugLog("buffer cleaned", zap.Any("buffer", id))
	return live, nil
}

// LiveBuffers returns the number of currently live buffers.
func (e *Emitter) LiveBuffers() int {
	return len(e.buffers)
}

// debugLog writes an operation log when debug logging is enabled.
func (e *Emitter) debugLog(msg string, fields ...zap.Field) {
	if e.debug {
		e.logger.Debug(msg, fields...)
	}
}
