package bufbus

import (
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

// always is a rand source that guarantees the maintenance check fires.
func always() float64 { return 0 }

// never is a rand source that guarantees the maintenance check is skipped
// for any chance below 100.
func never() float64 { return 0.9999 }

func TestEmitter_Maintenance_EvictsStaleViaCleanPath(t *testing.T) {
	mock := clock.NewMock()
	e := New(
		WithTTL(time.Minute),
		WithMaintenanceChance(100),
		WithClock(mock),
		WithRandSource(always),
	)

	cleaned := &recorder{}
	perEvent := &recorder{}
	if _, err := e.Subscribe(EventBufferClean, cleaned.handler()); err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}
	if _, err := e.Subscribe("foo", perEvent.handler()); err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}

	if err := e.CreateBuffer("stale", nil); err != nil {
		t.Fatalf("CreateBuffer() failed: %v", err)
	}
	if err := e.EmitBuffered("stale", "foo", 1); err != nil {
		t.Fatalf("EmitBuffered() failed: %v", err)
	}

	mock.Add(2 * time.Minute)

	// The create triggers a pass that evicts the stale buffer.
	if err := e.CreateBuffer("fresh", nil); err != nil {
		t.Fatalf("CreateBuffer() failed: %v", err)
	}

	if len(cleaned.calls) != 1 {
		t.Fatalf("expected 1 clean lifecycle call, got %d", len(cleaned.calls))
	}
	if cleaned.calls[0][0] != "stale" {
		t.Errorf("expected eviction of buffer stale, got %v", cleaned.calls[0][0])
	}
	if len(perEvent.calls) != 0 {
		t.Errorf("expected no per-event dispatch on eviction, got %d calls", len(perEvent.calls))
	}

	if _, err := e.Flush("stale"); !errors.Is(err, ErrBufferNotFound) {
		t.Errorf("expected ErrBufferNotFound after eviction, got %v", err)
	}
	if _, err := e.Flush("fresh"); err != nil {
		t.Errorf("expected the fresh buffer to survive, got %v", err)
	}
}

func TestEmitter_Maintenance_FreshBufferSurvives(t *testing.T) {
	mock := clock.NewMock()
	e := New(
		WithTTL(time.Minute),
		WithMaintenanceChance(100),
		WithClock(mock),
		WithRandSource(always),
	)

	if err := e.CreateBuffer("young", nil); err != nil {
		t.Fatalf("CreateBuffer() failed: %v", err)
	}

	mock.Add(30 * time.Second)

	if err := e.CreateBuffer("other", nil); err != nil {
		t.Fatalf("CreateBuffer() failed: %v", err)
	}
	if _, err := e.Flush("young"); err != nil {
		t.Errorf("expected buffer within TTL to survive the pass, got %v", err)
	}
}

func TestEmitter_Maintenance_ActivityResetsIdleTime(t *testing.T) {
	mock := clock.NewMock()
	e := New(
		WithTTL(time.Minute),
		WithMaintenanceChance(100),
		WithClock(mock),
		WithRandSource(always),
	)

	if err := e.CreateBuffer("busy", nil); err != nil {
		t.Fatalf("CreateBuffer() failed: %v", err)
	}

	// Keep the buffer active across what would otherwise be two full TTLs.
	mock.Add(45 * time.Second)
	if err := e.EmitBuffered("busy", "tick"); err != nil {
		t.Fatalf("EmitBuffered() failed: %v", err)
	}
	mock.Add(45 * time.Second)

	if err := e.CreateBuffer("trigger", nil); err != nil {
		t.Fatalf("CreateBuffer() failed: %v", err)
	}
	if _, err := e.Flush("busy"); err != nil {
		t.Errorf("expected recently-active buffer to survive, got %v", err)
	}
}

func TestEmitter_Maintenance_ChanceZeroNeverRuns(t *testing.T) {
	mock := clock.NewMock()
	e := New(
		WithTTL(time.Minute),
		WithMaintenanceChance(0),
		WithClock(mock),
		WithRandSource(always),
	)

	if err := e.CreateBuffer("stale", nil); err != nil {
		t.Fatalf("CreateBuffer() failed: %v", err)
	}
	mock.Add(time.Hour)

	if err := e.CreateBuffer("trigger", nil); err != nil {
		t.Fatalf("CreateBuffer() failed: %v", err)
	}
	if _, err := e.Flush("stale"); err != nil {
		t.Errorf("expected stale buffer to survive with maintenance disabled, got %v", err)
	}
}

func TestEmitter_Maintenance_DrawAboveChanceSkipsPass(t *testing.T) {
	mock := clock.NewMock()
	e := New(
		WithTTL(time.Minute),
		WithMaintenanceChance(10),
		WithClock(mock),
		WithRandSource(never),
	)

	if err := e.CreateBuffer("stale", nil); err != nil {
		t.Fatalf("CreateBuffer() failed: %v", err)
	}
	mock.Add(time.Hour)

	if err := e.CreateBuffer("trigger", nil); err != nil {
		t.Fatalf("CreateBuffer() failed: %v", err)
	}
	if _, err := e.Flush("stale"); err != nil {
		t.Errorf("expected stale buffer to survive a losing draw, got %v", err)
	}
}

func TestEmitter_Maintenance_PanicContained(t *testing.T) {
	mock := clock.NewMock()
	e := New(
		WithTTL(time.Minute),
		WithMaintenanceChance(100),
		WithClock(mock),
		WithRandSource(always),
	)

	// A clean handler that panics must not break the triggering create.
	if _, err := e.Subscribe(EventBufferClean, NewHandler(func(args ...any) {
		panic("lifecycle handler failure")
	})); err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}

	if err := e.CreateBuffer("stale", nil); err != nil {
		t.Fatalf("CreateBuffer() failed: %v", err)
	}
	mock.Add(time.Hour)

	if err := e.CreateBuffer("fresh", nil); err != nil {
		t.Errorf("expected CreateBuffer to succeed despite maintenance panic, got %v", err)
	}
	if _, err := e.Flush("fresh"); err != nil {
		t.Errorf("expected the new buffer to be live, got %v", err)
	}
}
