// Package progress holds the shared state between a running aggregation
// and whatever renders it (TUI or plain log lines).
package progress

import "sync"

// Snapshot is a point-in-time copy of run progress, safe to use after
// the tracker moves on.
type Snapshot struct {
	Step    string // pipeline phase ("searching", "enriching", "saving")
	Percent int    // 0-100, never decreases
	Current string // listing currently being processed
	Added   int    // records saved so far
	Done    bool
}

// Tracker is a thread-safe progress sink. The aggregator writes to it
// from its worker goroutines; consumers poll Snapshot from their own.
type Tracker struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewTracker returns a tracker at zero progress.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Update records a progress step. Percent is clamped to [0, 100] and
// never moves backwards, so out-of-order updates from concurrent
// workers cannot make the bar jump back.
func (t *Tracker) Update(step string, percent int, current string, added int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if percent > 100 {
		percent = 100
	}
	if percent > t.snap.Percent {
		t.snap.Percent = percent
	}
	t.snap.Step = step
	t.snap.Current = current
	t.snap.Added = added
}

// Finish marks the run complete and pins the bar at 100.
func (t *Tracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.Percent = 100
	t.snap.Done = true
}

// Snapshot returns a copy of the current progress state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}
