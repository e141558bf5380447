package sim

import (
	"math"
	"runtime"
	"sync"

	"github.com/voidlane/nightrunner/collision"
	"github.com/voidlane/nightrunner/core"
	"github.com/voidlane/nightrunner/crash"
	"github.com/voidlane/nightrunner/event"
	"github.com/voidlane/nightrunner/motion"
	"github.com/voidlane/nightrunner/parameter"
	"github.com/voidlane/nightrunner/track"
)

// difficultyRampDist is the track distance over which difficulty climbs
// from 0 to 1
const difficultyRampDist = 5000.0

// parallelMinAgents gates the worker fan-out; below this the per-goroutine
// overhead exceeds the stage cost
const parallelMinAgents = 8

// World owns the whole simulation: arena, generator, per-tick stages and
// the agent/hazard populations. Step runs the stages in a fixed order so
// every tick is a pure function of (seed, prior state, inputs).
type World struct {
	tun   *parameter.Tuning
	arena *track.Arena
	gen   *track.Generator
	ctrl  *motion.Controller
	res   *collision.Resolver
	arb   *crash.Arbiter
	queue *event.Queue

	tick        uint64
	nextAgentID core.AgentID
	agents      []*core.Agent
	intents     map[core.AgentID]core.AutopilotIntent
	hazards     []core.Hazard
	nextHazard  core.HazardID

	contacts [][]collision.Event // Per-agent scratch, reused across ticks

	stats Stats
}

// NewWorld builds a world from a tuning snapshot and a global seed.
// The root segment and the initial generation window are built eagerly so
// the first Step already has track under every agent.
func NewWorld(tun *parameter.Tuning, seed uint64) *World {
	arena := track.NewArena()
	w := &World{
		tun:         tun,
		arena:       arena,
		gen:         track.NewGenerator(tun, seed, arena),
		ctrl:        motion.NewController(tun),
		res:         collision.NewResolver(tun),
		arb:         crash.NewArbiter(tun),
		queue:       event.NewQueue(),
		nextAgentID: 1,
		nextHazard:  1,
		intents:     make(map[core.AgentID]core.AutopilotIntent),
	}
	w.extendTrack(tun.GenerateAhead, 0)
	return w
}

// SpawnAgent places an agent at the lane center nearest trackDist.
// Returns false when no live segment covers that distance.
func (w *World) SpawnAgent(role core.Role, trackDist float64, laneIndex int) (*core.Agent, bool) {
	seg := w.segmentAt(trackDist)
	if seg == nil {
		return nil, false
	}
	a := core.NewAgent(w.nextAgentID, role, core.LaneRef{Segment: seg.Index, Lane: laneIndex}, w.tun.SpeedFloor)
	w.nextAgentID++

	a.SegDist = trackDist - seg.StartDist
	a.TrackDist = trackDist
	lane := track.Lane{Seg: seg, Index: laneIndex, Width: w.tun.LaneWidth}
	t := seg.ParamAt(a.SegDist)
	a.Pos = lane.Center(t)
	fwd := seg.Direction(t)
	a.Heading = math.Atan2(fwd.Z(), fwd.X())

	w.agents = append(w.agents, a)
	return a, true
}

// SetIntent records the autopilot intent for an agent. Call between steps
// only; the controller stage reads intents concurrently.
func (w *World) SetIntent(id core.AgentID, intent core.AutopilotIntent) {
	w.intents[id] = intent
}

// SetTargetLane requests a lane change; the controller applies it at the
// next segment boundary
func (w *World) SetTargetLane(id core.AgentID, lane int) {
	if a := w.agentByID(id); a != nil {
		a.TargetLane = lane
	}
}

// AddHazard places an external hazard (scripted set pieces, debris drops)
func (w *World) AddHazard(h core.Hazard) core.HazardID {
	h.ID = w.nextHazard
	w.nextHazard++
	w.hazards = append(w.hazards, h)
	return h.ID
}

func (w *World) Tick() uint64           { return w.tick }
func (w *World) Agents() []*core.Agent  { return w.agents }
func (w *World) Hazards() []core.Hazard { return w.hazards }
func (w *World) Arena() *track.Arena    { return w.arena }
func (w *World) Stats() StatsSnapshot {
	s := w.stats.Snapshot()
	s.GenRetries = w.gen.Retries()
	s.GenFallbacks = w.gen.Fallbacks()
	return s
}
func (w *World) CrashState(id core.AgentID) crash.State {
	return w.arb.StateOf(id)
}

// Player returns the first player-controlled-capable agent, or nil
func (w *World) Player() *core.Agent {
	for _, a := range w.agents {
		if a.Role == core.RolePlayer {
			return a
		}
	}
	return nil
}

// Events drains the pending simulation events in FIFO order
func (w *World) Events() []event.Event {
	return w.queue.Consume()
}

// ContinueRun resets an agent's damage and snaps it back onto its lane
// center with clean dynamics. Crash machine state is untouched; a run
// continued mid-recovery still finishes the stability window.
func (w *World) ContinueRun(id core.AgentID) bool {
	a := w.agentByID(id)
	if a == nil {
		return false
	}
	a.Damage.Reset()
	a.YawOffset = 0
	a.YawRate = 0
	a.SlipAngle = 0
	a.LateralVel = 0
	a.ForwardVel = w.tun.SpeedFloor

	if seg, ok := w.arena.Get(a.Lane.Segment); ok {
		lane := track.Lane{Seg: seg, Index: a.Lane.Lane, Width: w.tun.LaneWidth}
		t := seg.ParamAt(a.SegDist)
		a.Pos = lane.Center(t)
		fwd := seg.Direction(t)
		a.Heading = math.Atan2(fwd.Z(), fwd.X())
		a.LatOffset = 0
	}
	return true
}

// Step advances the world one fixed tick. Stage order is strict:
// generator, controller, resolver, arbiter, then lifecycle. The player
// input applies to whichever agents the player currently controls.
func (w *World) Step(playerIn core.ControlInput) {
	w.tick++
	lead := w.leadAgent()

	// Generator stage: fork commitment, extension, trailing-window prune
	w.generatorStage(lead)

	// Controller stage: independent per agent, arena is read-only here
	w.forEachAgent(func(i int, a *core.Agent) {
		in := w.inputFor(a, playerIn)
		h := collision.Degrade(a.Damage)
		w.ctrl.Advance(a, w.arena, in, h, w.tun.Dt)
	})

	// Resolver stage: agents mutate only themselves, hazards are read-only
	w.growContacts()
	w.forEachAgent(func(i int, a *core.Agent) {
		w.contacts[i] = w.res.Resolve(a, w.arena, w.hazards)
		if n := len(w.contacts[i]); n > 0 {
			w.stats.Contacts.Add(uint64(n))
		}
	})

	// Arbiter stage: serial, stable agent order
	for i, a := range w.agents {
		if ev := w.arb.Evaluate(a, worstImpact(w.contacts[i])); ev != nil {
			w.stats.Crashes.Add(1)
			w.queue.Push(event.Crash(w.tick, ev))
		}
	}

	w.despawnTrailing(lead)
	w.stats.Ticks.Add(1)
}

// generatorStage keeps the track window around the lead agent
func (w *World) generatorStage(lead *core.Agent) {
	leadDist := 0.0
	if lead != nil {
		leadDist = lead.TrackDist
	}

	// Commit an open fork once the lead is past the commit point
	if f := w.gen.OpenFork(); f != nil && lead != nil && lead.TrackDist > f.CommitDist {
		keepLeft := lead.Lane.Segment != f.Right
		if kept, discarded, ok := w.gen.ResolveFork(keepLeft); ok {
			w.stats.ForksResolved.Add(1)
			w.queue.Push(event.ForkCommitted(w.tick, kept, keepLeft))
			w.dropHazardsOn(discarded)
		}
	}

	difficulty := math.Min(1, leadDist/difficultyRampDist)
	w.extendTrack(leadDist+w.tun.GenerateAhead, difficulty)

	// Trailing window
	trail := leadDist - w.tun.TrailBehind
	if dropped := w.arena.PruneBefore(trail); dropped > 0 {
		w.stats.SegmentsPruned.Add(uint64(dropped))
	}
	w.pruneHazards(trail)

	w.reassignDangling()
}

func (w *World) extendTrack(target, difficulty float64) {
	hadFork := w.gen.OpenFork() != nil
	added := w.gen.Extend(target, difficulty)
	for _, seg := range added {
		w.stats.SegmentsBuilt.Add(1)
		w.queue.Push(event.SegmentSpawned(w.tick, seg.Index))
		w.spawnHazards(seg, difficulty)
	}
	if !hadFork && w.gen.OpenFork() != nil {
		w.stats.ForksOpened.Add(1)
		w.queue.Push(event.ForkOpened(w.tick, w.gen.OpenFork().Parent))
	}
}

// reassignDangling puts pruned-lane agents back onto the live segment
// covering their track distance
func (w *World) reassignDangling() {
	for _, a := range w.agents {
		if !a.NeedsLane {
			continue
		}
		seg := w.nearestSegment(a)
		if seg == nil {
			continue
		}
		a.Lane.Segment = seg.Index
		a.SegDist = math.Min(math.Max(0, a.TrackDist-seg.StartDist), seg.Length())
		a.NeedsLane = false
		w.stats.LaneReassigns.Add(1)
	}
}

// segmentAt returns the live segment whose arc range covers dist, or nil
func (w *World) segmentAt(dist float64) *track.Segment {
	var found *track.Segment
	w.arena.Each(func(s *track.Segment) {
		if found == nil && s.StartDist <= dist && dist <= s.EndDist() {
			found = s
		}
	})
	return found
}

// nearestSegment picks the live segment for a dangling agent: the one
// covering its track distance, breaking fork ties by world proximity
func (w *World) nearestSegment(a *core.Agent) *track.Segment {
	var best *track.Segment
	bestSq := math.Inf(1)
	w.arena.Each(func(s *track.Segment) {
		if a.TrackDist < s.StartDist || a.TrackDist > s.EndDist() {
			return
		}
		t := s.ParamAt(a.TrackDist - s.StartDist)
		d := a.Pos.Sub(s.Point(t)).LenSqr()
		if d < bestSq {
			best, bestSq = s, d
		}
	})
	if best != nil {
		return best
	}
	// Behind the window entirely: snap to the oldest live segment
	w.arena.Each(func(s *track.Segment) {
		if best == nil {
			best = s
		}
	})
	return best
}

// despawnTrailing removes non-player agents that fell out of the window
func (w *World) despawnTrailing(lead *core.Agent) {
	if lead == nil {
		return
	}
	trail := lead.TrackDist - w.tun.TrailBehind
	kept := w.agents[:0]
	for _, a := range w.agents {
		if a.Role != core.RolePlayer && a.TrackDist < trail {
			w.arb.Forget(a.ID)
			delete(w.intents, a.ID)
			w.queue.Push(event.AgentDespawned(w.tick, a.ID))
			w.stats.Despawns.Add(1)
			continue
		}
		kept = append(kept, a)
	}
	for i := len(kept); i < len(w.agents); i++ {
		w.agents[i] = nil
	}
	w.agents = kept
}

// inputFor resolves the single authoritative input stream for an agent
func (w *World) inputFor(a *core.Agent, playerIn core.ControlInput) core.ControlInput {
	if a.Control == core.ControlPlayer && a.Has(core.CapPlayerInput) {
		return playerIn
	}
	intent, ok := w.intents[a.ID]
	if ok {
		a.TargetLane = intent.LanePreference // Retarget lands at the next boundary
	}
	if intent.TargetSpeed <= 0 {
		intent.TargetSpeed = w.tun.SpeedRef
	}
	if w.arb.StateOf(a.ID) != crash.StateDriving {
		intent.TargetSpeed = w.tun.RecoverySpeed
	}
	return motion.Translate(intent, a, w.tun)
}

// leadAgent anchors the generation window: the player when present,
// otherwise the farthest agent
func (w *World) leadAgent() *core.Agent {
	if p := w.Player(); p != nil {
		return p
	}
	var lead *core.Agent
	for _, a := range w.agents {
		if lead == nil || a.TrackDist > lead.TrackDist {
			lead = a
		}
	}
	return lead
}

func (w *World) agentByID(id core.AgentID) *core.Agent {
	for _, a := range w.agents {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (w *World) growContacts() {
	for len(w.contacts) < len(w.agents) {
		w.contacts = append(w.contacts, nil)
	}
}

// worstImpact reduces a tick's contacts to the single most energetic one
func worstImpact(events []collision.Event) crash.Impact {
	var worst crash.Impact
	best := 0.0
	for _, ev := range events {
		if ev.Impulse > best {
			best = ev.Impulse
			worst = crash.Impact{Severity: ev.Severity, Speed: ev.ImpactSpeed}
		}
	}
	return worst
}

// forEachAgent fans the stage across workers when the population is large
// enough. Stages are per-agent independent, so chunk assignment does not
// affect the result.
func (w *World) forEachAgent(fn func(i int, a *core.Agent)) {
	n := len(w.agents)
	if n < parallelMinAgents {
		for i, a := range w.agents {
			fn(i, a)
		}
		return
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i, w.agents[i])
			}
		}(start, end)
	}
	wg.Wait()
}
