package crash

import (
	"math"

	"github.com/voidlane/nightrunner/core"
	"github.com/voidlane/nightrunner/parameter"
)

// State is the per-agent crash machine: Driving → Crashing → Recovering → Driving
type State uint8

const (
	StateDriving State = iota
	StateCrashing
	StateRecovering
)

func (s State) String() string {
	switch s {
	case StateDriving:
		return "driving"
	case StateCrashing:
		return "crashing"
	case StateRecovering:
		return "recovering"
	}
	return "unknown"
}

// Reason records which predicate fired the crash
type Reason uint8

const (
	ReasonLethalImpact Reason = iota // Lethal hazard at speed
	ReasonStructural                 // Accumulated damage past the limit
	ReasonCompound                   // Spin + stall + heavy damage together
)

func (r Reason) String() string {
	switch r {
	case ReasonLethalImpact:
		return "lethal-impact"
	case ReasonStructural:
		return "structural"
	case ReasonCompound:
		return "compound"
	}
	return "unknown"
}

// Impact summarizes the worst contact an agent took this tick.
// Zero value means no contact.
type Impact struct {
	Severity float64
	Speed    float64
}

// CrashEvent is emitted once, on the tick the machine enters Crashing.
// External scoring and UI consume it from the event queue.
type CrashEvent struct {
	Agent  core.AgentID
	Reason Reason
	Speed  float64
	Damage float64
}

type agentState struct {
	state       State
	holdLeft    int
	stableTicks int
}

// Arbiter evaluates the three crash predicates every tick and drives the
// transition into autopilot recovery. There is no hard reset of world state
// anywhere in here: the vehicle keeps rolling on its lane throughout.
type Arbiter struct {
	tun    *parameter.Tuning
	agents map[core.AgentID]*agentState
}

func NewArbiter(tun *parameter.Tuning) *Arbiter {
	return &Arbiter{tun: tun, agents: make(map[core.AgentID]*agentState)}
}

// StateOf returns the machine state for an agent (Driving if never seen)
func (ar *Arbiter) StateOf(id core.AgentID) State {
	if st, ok := ar.agents[id]; ok {
		return st.state
	}
	return StateDriving
}

// Forget drops per-agent machine state after a despawn
func (ar *Arbiter) Forget(id core.AgentID) {
	delete(ar.agents, id)
}

// Evaluate advances one agent's machine by one tick.
// Runs after the resolver so it observes post-damage state; control
// authority switches happen here and only here, at tick boundaries.
// Returns the crash event on the transition tick, else nil.
func (ar *Arbiter) Evaluate(a *core.Agent, imp Impact) *CrashEvent {
	st, ok := ar.agents[a.ID]
	if !ok {
		st = &agentState{state: StateDriving}
		ar.agents[a.ID] = st
	}

	// The crash flag marks only the transition tick; it is what licenses
	// the one-tick exemption from the velocity floor.
	a.CrashFlag = false

	switch st.state {
	case StateDriving:
		reason, crashed := ar.predicates(a, imp)
		if !crashed {
			return nil
		}
		st.state = StateCrashing
		st.holdLeft = ar.tun.CrashHoldTicks
		a.CrashFlag = true
		a.Control = core.ControlAutopilot
		return &CrashEvent{
			Agent:  a.ID,
			Reason: reason,
			Speed:  a.ForwardVel,
			Damage: a.Damage.Total,
		}

	case StateCrashing:
		st.holdLeft--
		if st.holdLeft <= 0 {
			st.state = StateRecovering
			st.stableTicks = 0
		}

	case StateRecovering:
		if math.Abs(a.YawOffset) < ar.tun.YawStable {
			st.stableTicks++
		} else {
			st.stableTicks = 0 // Stability window restarts on a wobble
		}
		if st.stableTicks >= ar.tun.RecoveryTicks {
			st.state = StateDriving
			if ar.tun.HandbackToPlayer && a.Has(core.CapPlayerInput) {
				a.Control = core.ControlPlayer
			}
		}
	}
	return nil
}

// predicates checks the three independent crash conditions.
// Any single one fires the transition.
func (ar *Arbiter) predicates(a *core.Agent, imp Impact) (Reason, bool) {
	// (A) lethal hazard at speed
	if imp.Severity > ar.tun.LethalSeverity && imp.Speed > ar.tun.CrashImpactSpeed {
		return ReasonLethalImpact, true
	}

	// (B) accumulated structural failure
	if a.Damage.Total > ar.tun.DamageMax {
		return ReasonStructural, true
	}

	// (C) compound failure: spun out, stalled at the floor, and already
	// heavily damaged. Spin alone, with no damage, never crashes.
	if math.Abs(a.YawOffset) > ar.tun.YawFail &&
		a.ForwardVel <= ar.tun.SpeedFloor+ar.tun.StallTolerance &&
		a.Damage.Total > ar.tun.CompoundDamageFrac*ar.tun.DamageMax {
		return ReasonCompound, true
	}

	return 0, false
}
