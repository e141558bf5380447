package track

import (
	"sync"
)

// Arena is the append-only segment store. Segments are addressed by their
// monotonically increasing index; pruned or discarded indices simply report
// not-found, which callers handle per the dangling-reference policy.
//
// Writes (Append, Remove, PruneBefore) happen only in the generator stage;
// the controller and resolver stages read concurrently. The RWMutex
// guarantees no reader ever observes a partially constructed segment.
type Arena struct {
	mu    sync.RWMutex
	first uint64
	segs  []*Segment
}

func NewArena() *Arena {
	return &Arena{}
}

// NextIndex returns the index the next appended segment will receive
func (a *Arena) NextIndex() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.first + uint64(len(a.segs))
}

// Append stores a fully constructed segment. The segment's Index must equal
// NextIndex; the deterministic index sequence is the seeding contract.
func (a *Arena) Append(s *Segment) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.segs) == 0 && a.first == 0 {
		a.first = s.Index
	}
	a.segs = append(a.segs, s)
}

// Get returns the segment at index, or not-found if pruned or never built
func (a *Arena) Get(index uint64) (*Segment, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if index < a.first {
		return nil, false
	}
	i := index - a.first
	if i >= uint64(len(a.segs)) {
		return nil, false
	}
	s := a.segs[i]
	if s == nil {
		return nil, false
	}
	return s, true
}

// Remove discards one segment in place (losing fork branch).
// The index stays consumed; Get reports not-found.
func (a *Arena) Remove(index uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if index < a.first {
		return
	}
	i := index - a.first
	if i < uint64(len(a.segs)) {
		a.segs[i] = nil
	}
}

// PruneBefore destroys segments that end before the trailing distance.
// Returns how many were dropped.
func (a *Arena) PruneBefore(trailDist float64) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	dropped := 0
	for len(a.segs) > 0 {
		s := a.segs[0]
		if s != nil && s.EndDist() >= trailDist {
			break
		}
		a.segs[0] = nil
		a.segs = a.segs[1:]
		a.first++
		dropped++
	}
	return dropped
}

// Live returns the number of stored (non-removed) segments
func (a *Arena) Live() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	n := 0
	for _, s := range a.segs {
		if s != nil {
			n++
		}
	}
	return n
}

// Each calls fn for every live segment in index order
func (a *Arena) Each(fn func(*Segment)) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, s := range a.segs {
		if s != nil {
			fn(s)
		}
	}
}
