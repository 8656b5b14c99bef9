package socketio

import (
	"sync/atomic"
	"testing"
	"time"
)

func newCountingDebouncer() (*BroadcastDebouncer, *int32, *int32) {
	var stateCalls, queueCalls int32
	d := NewBroadcastDebouncer(50*time.Millisecond,
		func() { atomic.AddInt32(&stateCalls, 1) },
		func() { atomic.AddInt32(&queueCalls, 1) },
	)
	return d, &stateCalls, &queueCalls
}

func TestDebouncerRapidStateChangesCollapseToOne(t *testing.T) {
	d, stateCalls, queueCalls := newCountingDebouncer()
	defer d.Stop()

	for i := 0; i < 10; i++ {
		d.Trigger(ChangeState)
	}

	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt32(stateCalls); got != 1 {
		t.Errorf("expected 1 state callback, got %d", got)
	}
	if got := atomic.LoadInt32(queueCalls); got != 0 {
		t.Errorf("expected 0 queue callbacks, got %d", got)
	}
}

func TestDebouncerSpacedChangesWithinWindow(t *testing.T) {
	d, stateCalls, _ := newCountingDebouncer()
	defer d.Stop()

	for i := 0; i < 20; i++ {
		d.Trigger(ChangeState)
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt32(stateCalls); got != 1 {
		t.Errorf("expected 1 state callback, got %d", got)
	}
}

func TestDebouncerQueueTriggersBothStateAndQueue(t *testing.T) {
	d, stateCalls, queueCalls := newCountingDebouncer()
	defer d.Stop()

	d.Trigger(ChangeState)
	d.Trigger(ChangeQueue)
	d.Trigger(ChangeState)

	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt32(stateCalls); got != 1 {
		t.Errorf("expected 1 state callback, got %d", got)
	}
	if got := atomic.LoadInt32(queueCalls); got != 1 {
		t.Errorf("expected 1 queue callback, got %d", got)
	}
}

func TestDebouncerSeparateWindowsFireIndependently(t *testing.T) {
	d, stateCalls, _ := newCountingDebouncer()
	defer d.Stop()

	d.Trigger(ChangeState)
	time.Sleep(100 * time.Millisecond)
	d.Trigger(ChangeState)
	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt32(stateCalls); got != 2 {
		t.Errorf("expected 2 state callbacks for separate windows, got %d", got)
	}
}

func TestDebouncerStopPreventsCallbacks(t *testing.T) {
	d, stateCalls, _ := newCountingDebouncer()

	d.Trigger(ChangeState)
	d.Stop()
	d.Trigger(ChangeQueue)

	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt32(stateCalls); got != 0 {
		t.Errorf("expected 0 state callbacks after stop, got %d", got)
	}
}
