// Package progress provides an optional completed-sample tracker for the
// SLQ driver: a thread-safe Roaring bitmap of finished sample indices plus
// a cooperative stop flag, so a caller running n_v in the billions across
// a distributed set of driver instances can checkpoint, resume, or ask a
// running driver to wind down between chunks.
package progress

import (
	"sync"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"
)

// Tracker records which sample indices have completed and exposes a
// cooperative stop flag. A nil *Tracker is a valid, inert tracker.
type Tracker struct {
	mu    sync.Mutex
	done  *roaring.Bitmap
	stop  atomic.Bool
	total int
}

// New creates a Tracker expecting up to total samples.
func New(total int) *Tracker {
	return &Tracker{done: roaring.New(), total: total}
}

// MarkDone records sample i as complete.
func (t *Tracker) MarkDone(i int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.done.Add(uint32(i))
	t.mu.Unlock()
}

// Count returns the number of completed samples recorded so far.
func (t *Tracker) Count() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return int(t.done.GetCardinality())
}

// Done reports whether sample i has been recorded as complete.
func (t *Tracker) Done(i int) bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done.Contains(uint32(i))
}

// Snapshot returns a copy of the completed-sample bitmap, safe to persist
// or ship to another process for resume.
func (t *Tracker) Snapshot() *roaring.Bitmap {
	if t == nil {
		return roaring.New()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done.Clone()
}

// Stop requests that the driver stop dispatching new chunks. In-flight
// chunks still run to completion; this does not cancel a matvec or
// reducer call in progress.
func (t *Tracker) Stop() {
	if t == nil {
		return
	}
	t.stop.Store(true)
}

// Stopped reports whether Stop has been called.
func (t *Tracker) Stopped() bool {
	if t == nil {
		return false
	}
	return t.stop.Load()
}
