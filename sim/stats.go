package sim

import "sync/atomic"

// Stats are the world's atomic counters. Stage goroutines write directly
// to the atomics; Snapshot gives a consistent-enough read for display and
// tests without stopping the world.
type Stats struct {
	Ticks          atomic.Uint64
	SegmentsBuilt  atomic.Uint64
	SegmentsPruned atomic.Uint64
	ForksOpened    atomic.Uint64
	ForksResolved  atomic.Uint64
	HazardsSpawned atomic.Uint64
	Contacts       atomic.Uint64
	Crashes        atomic.Uint64
	Despawns       atomic.Uint64
	LaneReassigns  atomic.Uint64
}

// StatsSnapshot is a plain-value copy for serialization
type StatsSnapshot struct {
	Ticks          uint64 `json:"ticks"`
	SegmentsBuilt  uint64 `json:"segmentsBuilt"`
	SegmentsPruned uint64 `json:"segmentsPruned"`
	ForksOpened    uint64 `json:"forksOpened"`
	ForksResolved  uint64 `json:"forksResolved"`
	HazardsSpawned uint64 `json:"hazardsSpawned"`
	Contacts       uint64 `json:"contacts"`
	Crashes        uint64 `json:"crashes"`
	Despawns       uint64 `json:"despawns"`
	LaneReassigns  uint64 `json:"laneReassigns"`
	GenRetries     uint64 `json:"genRetries"`
	GenFallbacks   uint64 `json:"genFallbacks"`
}

func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Ticks:          s.Ticks.Load(),
		SegmentsBuilt:  s.SegmentsBuilt.Load(),
		SegmentsPruned: s.SegmentsPruned.Load(),
		ForksOpened:    s.ForksOpened.Load(),
		ForksResolved:  s.ForksResolved.Load(),
		HazardsSpawned: s.HazardsSpawned.Load(),
		Contacts:       s.Contacts.Load(),
		Crashes:        s.Crashes.Load(),
		Despawns:       s.Despawns.Load(),
		LaneReassigns:  s.LaneReassigns.Load(),
	}
}
