package bufbus

import (
	"go.uber.org/zap"
)

// maybeMaintain draws against the configured chance and, on a hit, runs a
// maintenance pass. Called from CreateBuffer only.
func (e *Emitter) maybeMaintain() {
	if e.maintenanceChance <= 0 {
		return
	}
	if e.randFloat()*100 >= float64(e.maintenanceChance) {
		return
	}
	e.maintain()
}

// maintain evicts every buffer idle longer than the TTL via the clean path,
// so lifecycle subscribers are notified but no buffered events are replayed.
//
// Failures are contained here: a panicking clean handler or a failed
// eviction is logged and swallowed, never surfaced to the CreateBuffer call
// that triggered the pass.
func (e *Emitter) maintain() {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("maintenance pass aborted", zap.Any("panic", r))
		}
	}()

	// Collect first: CleanBuffer dispatches handlers that may create or
	// delete buffers, so the map must not be ranged while evicting.
	var stale []any
	for id, buf := range e.buffers {
		if e.clk.Since(buf.lastActivityAt) > e.ttl {
			stale = append(stale, id)
		}
	}

	for _, id := range stale {
		if _, err := e.CleanBuffer(id); err != nil {
			e.logger.Warn("stale buffer eviction failed",
				zap.Any("buffer", id),
				zap.Error(err),
			)
			continue
		}
		e.debugLog("stale buffer evicted", zap.Any("buffer", id))
	}
}
