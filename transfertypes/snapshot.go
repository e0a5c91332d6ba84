package transfertypes

// Snapshot is an immutable point-in-time view of a transfer's progress.
// Snapshots are safe to share across goroutines; a new Snapshot is published
// for every progress update.
type Snapshot struct {
	transferred int64
	total       int64
	hasTotal    bool
}

// TransferredBytes returns the number of bytes transferred so far.
// The value is monotonically non-decreasing across the lifetime of one transfer.
func (s Snapshot) TransferredBytes() int64 {
	return s.transferred
}

// TotalBytes returns the total size of the transfer and whether it is known.
// For uploads the total is typically known up front; for downloads it becomes
// known once the response headers arrive.
func (s Snapshot) TotalBytes() (int64, bool) {
	return s.total, s.hasTotal
}

// RemainingBytes returns the number of bytes left to transfer, if the total
// size is known.
func (s Snapshot) RemainingBytes() (int64, bool) {
	if !s.hasTotal {
		return 0, false
	}
	return s.total - s.transferred, true
}

// RatioTransferred returns the fraction of the transfer completed, in [0, 1],
// if the total size is known. A zero-byte transfer reports 1.
func (s Snapshot) RatioTransferred() (float64, bool) {
	if !s.hasTotal {
		return 0, false
	}
	if s.total == 0 {
		return 1, true
	}
	return float64(s.transferred) / float64(s.total), true
}

// ToBuilder returns a builder initialized from this snapshot.
func (s Snapshot) ToBuilder() *SnapshotBuilder {
	return &SnapshotBuilder{snap: s}
}

// SnapshotBuilder constructs a new Snapshot from an existing one plus a set of
// mutations. Mutators enforce the snapshot invariants: the transferred byte
// count never decreases, and the total size is set at most once.
type SnapshotBuilder struct {
	snap Snapshot
}

// TransferredBytes returns the transferred byte count currently held by the builder.
func (b *SnapshotBuilder) TransferredBytes() int64 {
	return b.snap.transferred
}

// AddTransferredBytes increases the transferred byte count by n.
// Negative deltas are ignored.
func (b *SnapshotBuilder) AddTransferredBytes(n int64) *SnapshotBuilder {
	if n > 0 {
		b.snap.transferred += n
	}
	return b
}

// SetTotalBytes records the total transfer size. Once set, subsequent calls
// are ignored.
func (b *SnapshotBuilder) SetTotalBytes(total int64) *SnapshotBuilder {
	if !b.snap.hasTotal && total >= 0 {
		b.snap.total = total
		b.snap.hasTotal = true
	}
	return b
}

// Build returns the resulting immutable Snapshot.
func (b *SnapshotBuilder) Build() Snapshot {
	return b.snap
}
