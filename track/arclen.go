package track

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// arcSampleCount is the number of chord intervals in the lookup table
const arcSampleCount = 16

// arcTable is a monotonic t <-> distance mapping built from 16 chord samples.
// Uniform in t, so t -> distance is a direct index and distance -> t is a
// binary search over the cumulative column.
type arcTable struct {
	cum [arcSampleCount + 1]float64
}

// buildArc caches the chord-sum arc table. Called once at construction,
// after every other segment field is set.
func (s *Segment) buildArc() {
	var ts [arcSampleCount + 1]float64
	floats.Span(ts[:], 0, 1)

	prev := s.Point(0)
	s.arc.cum[0] = 0
	for i := 1; i <= arcSampleCount; i++ {
		p := s.Point(ts[i])
		s.arc.cum[i] = s.arc.cum[i-1] + p.Sub(prev).Len()
		prev = p
	}
}

func (a *arcTable) total() float64 {
	return a.cum[arcSampleCount]
}

// distanceAt maps parameter t to arc distance with linear interpolation
func (a *arcTable) distanceAt(t float64) float64 {
	scaled := t * arcSampleCount
	i := int(scaled)
	if i >= arcSampleCount {
		return a.cum[arcSampleCount]
	}
	frac := scaled - float64(i)
	return a.cum[i] + (a.cum[i+1]-a.cum[i])*frac
}

// paramAt maps arc distance to parameter t, clamped to [0,1]
func (a *arcTable) paramAt(dist float64) float64 {
	if dist <= 0 {
		return 0
	}
	if dist >= a.total() {
		return 1
	}
	// First knot with cum >= dist; cum is monotonic by construction
	i := sort.Search(arcSampleCount+1, func(k int) bool {
		return a.cum[k] >= dist
	})
	if i == 0 {
		return 0
	}
	span := a.cum[i] - a.cum[i-1]
	if span <= 0 {
		return float64(i) / arcSampleCount
	}
	frac := (dist - a.cum[i-1]) / span
	return (float64(i-1) + frac) / arcSampleCount
}
