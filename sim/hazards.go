package sim

import (
	"math"

	"github.com/voidlane/nightrunner/core"
	"github.com/voidlane/nightrunner/track"
	"github.com/voidlane/nightrunner/vmath"
)

// hazardSalt decorrelates hazard placement from segment geometry so both
// draw from the same seed without sharing a stream
const hazardSalt = 0xb1a5ed0b57ac1e5

// spawnHazards scatters obstacles over a freshly generated segment.
// Placement is a pure function of the segment seed, so rebuilding the same
// track replays the same hazards.
func (w *World) spawnHazards(seg *track.Segment, difficulty float64) {
	if seg.Kind == track.KindFork {
		return // Fork throats stay clean so the branch choice is drivable
	}
	rng := vmath.NewFastRand(seg.Seed ^ hazardSalt)

	maxCount := 1 + int(difficulty*2)
	count := rng.Intn(maxCount + 1)
	for i := 0; i < count; i++ {
		t := rng.Range(0.1, 0.9)
		laneSpan := w.tun.LaneCount
		laneIdx := rng.Intn(laneSpan) - laneSpan/2
		lane := track.Lane{Seg: seg, Index: laneIdx, Width: w.tun.LaneWidth}

		severity := math.Min(1, rng.Range(0.2, 0.7)+0.3*difficulty)
		kind := rollKind(rng.Intn(10), difficulty)

		w.hazards = append(w.hazards, core.Hazard{
			ID:         w.nextHazard,
			Segment:    seg.Index,
			Pos:        lane.Center(t),
			TrackDist:  seg.StartDist + seg.DistanceAt(t),
			Severity:   severity,
			MassFactor: rng.Range(0.2, 1.2),
			Kind:       kind,
		})
		w.nextHazard++
		w.stats.HazardsSpawned.Add(1)
	}
}

// rollKind maps the kind roll to a damage kind; lethal hazards appear only
// once the difficulty ramp is past the early stretch
func rollKind(roll int, difficulty float64) core.DamageKind {
	switch {
	case roll == 0 && difficulty > 0.3:
		return core.DamageLethal
	case roll <= 4:
		return core.DamageMechanical
	default:
		return core.DamageCosmetic
	}
}

// pruneHazards drops hazards behind the trailing window, preserving order
func (w *World) pruneHazards(trail float64) {
	kept := w.hazards[:0]
	for _, h := range w.hazards {
		if h.TrackDist >= trail {
			kept = append(kept, h)
		}
	}
	w.hazards = kept
}

// dropHazardsOn removes hazards placed on a discarded fork branch
func (w *World) dropHazardsOn(segIndex uint64) {
	kept := w.hazards[:0]
	for _, h := range w.hazards {
		if h.Segment != segIndex {
			kept = append(kept, h)
		}
	}
	w.hazards = kept
}
