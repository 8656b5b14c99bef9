package socketio

import (
	"sync"
	"time"
)

// Change says what part of the session changed.
type Change int

const (
	ChangeState Change = iota
	// ChangeQueue implies a state change too, since the position moves.
	ChangeQueue
)

// BroadcastDebouncer collapses rapid session changes into batched
// broadcasts. Changes within one window produce at most one state and
// one queue broadcast.
type BroadcastDebouncer struct {
	window        time.Duration
	stateCallback func()
	queueCallback func()

	mu           sync.Mutex
	pendingState bool
	pendingQueue bool
	timer        *time.Timer
	stopped      bool
}

// NewBroadcastDebouncer creates a debouncer with the given window.
func NewBroadcastDebouncer(window time.Duration, stateCallback, queueCallback func()) *BroadcastDebouncer {
	return &BroadcastDebouncer{
		window:        window,
		stateCallback: stateCallback,
		queueCallback: queueCallback,
	}
}

// Trigger records a change. Callbacks run once the window elapses
// without further triggers.
func (d *BroadcastDebouncer) Trigger(c Change) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pendingState = true
	if c == ChangeQueue {
		d.pendingQueue = true
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.flush)
}

func (d *BroadcastDebouncer) flush() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	doState := d.pendingState
	doQueue := d.pendingQueue
	d.pendingState = false
	d.pendingQueue = false
	d.mu.Unlock()

	// Queue first so clients can resolve the new position.
	if doQueue && d.queueCallback != nil {
		d.queueCallback()
	}
	if doState && d.stateCallback != nil {
		d.stateCallback()
	}
}

// Stop prevents any further callbacks from firing.
func (d *BroadcastDebouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pendingState = false
	d.pendingQueue = false
}
