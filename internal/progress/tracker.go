// Package progress tracks the mutable progress state of one transfer.
// The state is published as immutable snapshots; all mutation goes through a
// linearizable read-modify-write so concurrent updaters never lose a delta.
package progress

import (
	"sync/atomic"

	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/transfertypes"
)

// Tracker owns the current progress snapshot of a single transfer.
// It is created per transfer and safe for concurrent use.
type Tracker struct {
	snap atomic.Pointer[transfertypes.Snapshot]
}

// NewTracker creates a tracker starting from the given snapshot.
func NewTracker(initial transfertypes.Snapshot) *Tracker {
	t := &Tracker{}
	t.snap.Store(&initial)
	return t
}

// Snapshot returns the latest snapshot. It never blocks and remains valid
// after the transfer has reached its terminal state.
func (t *Tracker) Snapshot() transfertypes.Snapshot {
	return *t.snap.Load()
}

// UpdateAndGet atomically applies the mutator to a builder seeded from the
// current snapshot, publishes the result, and returns it. The mutator must be
// a pure function of the builder: it may run more than once when updates race.
func (t *Tracker) UpdateAndGet(mutate func(*transfertypes.SnapshotBuilder)) transfertypes.Snapshot {
	for {
		cur := t.snap.Load()
		b := cur.ToBuilder()
		mutate(b)
		next := b.Build()
		if t.snap.CompareAndSwap(cur, &next) {
			return next
		}
	}
}
