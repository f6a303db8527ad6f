package gesture

import "sync/atomic"

// Latest is a single-slot holder for the most recent snapshot. A producer
// overwrites it at its own rate and the simulation reads it once per tick.
// Neither side ever blocks; stale snapshots are simply replaced.
type Latest struct {
	v   atomic.Pointer[Snapshot]
	seq atomic.Uint64
}

// Store publishes s, replacing any snapshot not yet read.
func (l *Latest) Store(s Snapshot) {
	l.v.Store(&s)
	l.seq.Add(1)
}

// Load returns the most recent snapshot, or Neutral before the first Store.
func (l *Latest) Load() Snapshot {
	if p := l.v.Load(); p != nil {
		return *p
	}
	return Neutral()
}

// Seq returns the number of snapshots stored so far.
func (l *Latest) Seq() uint64 {
	return l.seq.Load()
}
