// Package dashboard holds the current statement and its derived views.
package dashboard

import (
	"sync/atomic"
	"time"

	"bankdash/internal/aggregate"
	"bankdash/internal/core"
)

// Snapshot is an immutable, fully derived view of one load. Callers must
// not modify the slices it exposes.
type Snapshot struct {
	Version      uint64
	Source       string
	LoadedAt     time.Time
	Transactions []core.Transaction
	// Supplied is the summary reported by the supplier; Report.Summary is
	// the one derived from Transactions and is what gets displayed.
	Supplied core.FinancialSummary
	Report   aggregate.Report
}

// Summary returns the derived summary.
func (s *Snapshot) Summary() core.FinancialSummary { return s.Report.Summary }

// Store publishes snapshots atomically; readers never see a partial load.
type Store struct {
	current atomic.Pointer[Snapshot]
	version atomic.Uint64
}

func NewStore() *Store { return &Store{} }

// Current returns the latest snapshot, or nil before the first load.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Publish stamps snap with the next version and makes it current.
func (s *Store) Publish(snap *Snapshot) *Snapshot {
	snap.Version = s.version.Add(1)
	s.current.Store(snap)
	return snap
}

// Version returns the version of the current snapshot, 0 before the first load.
func (s *Store) Version() uint64 {
	if snap := s.current.Load(); snap != nil {
		return snap.Version
	}
	return 0
}
