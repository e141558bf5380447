package track

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/voidlane/nightrunner/parameter"
	"github.com/voidlane/nightrunner/vmath"
)

// Fork describes an unresolved branch pair. The choice of branch is made
// externally (lead agent position past the commit point); the generator
// only exposes the commit distance and performs the despawn.
type Fork struct {
	Parent     uint64
	Left       uint64
	Right      uint64
	CommitDist float64
}

// Generator builds Hermite segments ahead of the lead agent.
// It is the only writer of the arena; per-segment randomness is a pure
// function of (globalSeed, segment index), so regenerating any index is
// reproducible and wall-clock time never enters the pipeline.
type Generator struct {
	tun        *parameter.Tuning
	globalSeed uint64
	arena      *Arena

	tail     uint64 // Chain tail segment index
	openFork *Fork

	retries   uint64
	fallbacks uint64
}

// NewGenerator bootstraps the arena with a straight root segment at the
// origin heading +X and returns the generator owning it.
func NewGenerator(tun *parameter.Tuning, globalSeed uint64, arena *Arena) *Generator {
	g := &Generator{tun: tun, globalSeed: globalSeed, arena: arena}

	root := &Segment{
		Index:    arena.NextIndex(),
		Kind:     KindStraight,
		Seed:     vmath.SegmentSeed(globalSeed, arena.NextIndex()),
		Start:    mgl64.Vec3{},
		End:      mgl64.Vec3{tun.SegmentLenMax, 0, 0},
		StartTan: mgl64.Vec3{tun.SegmentLenMax, 0, 0},
		EndTan:   mgl64.Vec3{tun.SegmentLenMax, 0, 0},
	}
	root.buildArc()
	arena.Append(root)
	g.tail = root.Index
	return g
}

// Frontier returns the cumulative distance covered by the chain tail
func (g *Generator) Frontier() float64 {
	if s, ok := g.arena.Get(g.tail); ok {
		return s.EndDist()
	}
	return 0
}

// OpenFork returns the unresolved fork, or nil
func (g *Generator) OpenFork() *Fork {
	return g.openFork
}

// Retries and Fallbacks expose curvature-constraint counters
func (g *Generator) Retries() uint64   { return g.retries }
func (g *Generator) Fallbacks() uint64 { return g.fallbacks }

// Extend appends segments until the frontier reaches target distance.
// Generation pauses at an unresolved fork; callers resolve it first.
// Returns the newly appended segments in order.
func (g *Generator) Extend(target, difficulty float64) []*Segment {
	difficulty = mgl64.Clamp(vmath.Sanitize(difficulty, 0), 0, 1)

	var added []*Segment
	for g.openFork == nil && g.Frontier() < target {
		prev, ok := g.arena.Get(g.tail)
		if !ok {
			return added
		}

		index := g.arena.NextIndex()
		rng := vmath.NewFastRand(vmath.SegmentSeed(g.globalSeed, index))
		roll := rng.Intn(16)

		if roll == 0 && difficulty > 0.25 {
			left, right := g.generateFork(prev, difficulty)
			added = append(added, left, right)
			continue
		}

		seg := g.generateSegment(prev.End, prev.EndTan, prev.EndDist(), difficulty, index, rng, roll)
		g.arena.Append(seg)
		g.tail = seg.Index
		added = append(added, seg)
	}
	return added
}

// ResolveFork despawns the losing branch and continues the chain from the
// kept child. No-op when no fork is open.
func (g *Generator) ResolveFork(keepLeft bool) (kept, discarded uint64, ok bool) {
	f := g.openFork
	if f == nil {
		return 0, 0, false
	}
	kept, discarded = f.Left, f.Right
	if !keepLeft {
		kept, discarded = f.Right, f.Left
	}
	g.arena.Remove(discarded)
	g.tail = kept
	g.openFork = nil
	return kept, discarded, true
}

// generateSegment builds one segment under the curvature bound.
// On violation the sampled yaw delta is halved and the build retried;
// after GenAttempts the segment degrades to straight. Never panics, never
// blocks: the straight fallback always satisfies the bound.
func (g *Generator) generateSegment(
	start, startTan mgl64.Vec3,
	startDist, difficulty float64,
	index uint64,
	rng *vmath.FastRand,
	roll int,
) *Segment {
	length := rng.Range(g.tun.SegmentLenMin, g.tun.SegmentLenMax)
	yaw := rng.Range(-1, 1) * g.tun.YawDeltaMax * difficulty
	alpha := rng.Range(g.tun.TangentAlphaMin, g.tun.TangentAlphaMax)

	kappaMax := 1 / g.tun.MinTurnRadius
	for attempt := 0; attempt < g.tun.GenAttempts; attempt++ {
		seg := buildSegment(start, startTan, startDist, length, yaw, alpha, index)
		if seg.MaxCurvature() <= kappaMax {
			seg.Difficulty = difficulty
			seg.Seed = vmath.SegmentSeed(g.globalSeed, index)
			seg.Kind = classify(yaw, roll, difficulty)
			return seg
		}
		g.retries++
		yaw *= 0.5
	}

	g.fallbacks++
	seg := buildSegment(start, startTan, startDist, length, 0, alpha, index)
	seg.Difficulty = difficulty
	seg.Seed = vmath.SegmentSeed(g.globalSeed, index)
	seg.Kind = KindStraight
	return seg
}

// generateFork duplicates the parent tangent into two children whose yaw
// diverges by ±forkYawDelta and whose lateral separation grows as spread*t^2
func (g *Generator) generateFork(prev *Segment, difficulty float64) (left, right *Segment) {
	leftIdx := g.arena.NextIndex()

	build := func(index uint64, side float64) *Segment {
		rng := vmath.NewFastRand(vmath.SegmentSeed(g.globalSeed, index))
		length := rng.Range(g.tun.SegmentLenMin, g.tun.SegmentLenMax)
		alpha := rng.Range(g.tun.TangentAlphaMin, g.tun.TangentAlphaMax)
		yaw := side * g.tun.ForkYawDelta

		kappaMax := 1 / g.tun.MinTurnRadius
		for attempt := 0; attempt < g.tun.GenAttempts; attempt++ {
			seg := buildSegment(prev.End, prev.EndTan, prev.EndDist(), length, yaw, alpha, index)
			seg.ForkSpread = side * g.tun.ForkSpread
			seg.buildArc() // Rebuild: fork offset changes the chords
			if seg.MaxCurvature() <= kappaMax {
				seg.Difficulty = difficulty
				seg.Seed = vmath.SegmentSeed(g.globalSeed, index)
				seg.Kind = KindFork
				return seg
			}
			g.retries++
			yaw *= 0.5
		}
		g.fallbacks++
		seg := buildSegment(prev.End, prev.EndTan, prev.EndDist(), length, 0, alpha, index)
		seg.ForkSpread = side * g.tun.ForkSpread
		seg.buildArc()
		seg.Difficulty = difficulty
		seg.Seed = vmath.SegmentSeed(g.globalSeed, index)
		seg.Kind = KindFork
		return seg
	}

	left = build(leftIdx, -1)
	g.arena.Append(left)
	right = build(leftIdx+1, 1)
	g.arena.Append(right)

	g.openFork = &Fork{
		Parent:     prev.Index,
		Left:       left.Index,
		Right:      right.Index,
		CommitDist: left.CommitDist(g.tun.ForkCommitSep),
	}
	return left, right
}

// buildSegment constructs the Hermite piece for one yaw/length/alpha sample
func buildSegment(start, startTan mgl64.Vec3, startDist, length, yaw, alpha float64, index uint64) *Segment {
	dir := startTan
	if l := dir.Len(); l > vmath.Epsilon {
		dir = dir.Mul(1 / l)
	} else {
		dir = mgl64.Vec3{1, 0, 0}
	}

	endDir := mgl64.Rotate3DY(yaw).Mul3x1(dir)
	chord := dir.Add(endDir)
	if l := chord.Len(); l > vmath.Epsilon {
		chord = chord.Mul(1 / l)
	} else {
		chord = dir
	}

	seg := &Segment{
		Index:     index,
		Start:     start,
		End:       start.Add(chord.Mul(length)),
		StartTan:  dir.Mul(alpha * length),
		EndTan:    endDir.Mul(alpha * length),
		StartDist: startDist,
	}
	seg.buildArc()
	return seg
}

// classify tags the segment kind from the yaw magnitude and the kind roll
func classify(yaw float64, roll int, difficulty float64) Kind {
	switch {
	case roll == 1 && difficulty > 0.4:
		return KindTunnel
	case roll == 2 && difficulty > 0.3:
		return KindOverpass
	case math.Abs(yaw) < 0.05:
		return KindStraight
	default:
		return KindCurve
	}
}
