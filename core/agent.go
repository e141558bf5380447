package core

import (
	"github.com/go-gl/mathgl/mgl64"
)

// AgentID is a stable identifier assigned at spawn, monotonically increasing
type AgentID uint64

// Role tags the single agent shape; behavior differences are data, not types
type Role uint8

const (
	RolePlayer Role = iota
	RoleTraffic
	RoleEmergency
)

// Capability is a bitmask of optional agent behaviors
type Capability uint8

const (
	CapPlayerInput Capability = 1 << iota
	CapAutopilotIntent
	CapSirenPressure
)

// ControlSource identifies which input stream controls the agent.
// Exactly one source is authoritative per tick; the crash arbiter switches
// it at tick boundaries only.
type ControlSource uint8

const (
	ControlPlayer ControlSource = iota
	ControlAutopilot
)

// LaneRef addresses a lane by arena segment index plus signed lane number
// (0 = centerline, negative = left). The arena owns the segment; a pruned
// index reports not-found and the agent is flagged for reassignment.
type LaneRef struct {
	Segment uint64
	Lane    int
}

// Agent is the one dynamic-vehicle shape: player, traffic and emergency
// vehicles differ only in Role, Caps and who feeds their input.
type Agent struct {
	ID   AgentID
	Role Role
	Caps Capability

	// World state
	Pos     mgl64.Vec3
	Heading float64 // World yaw of the velocity frame, radians

	// Lane-relative state
	Lane       LaneRef
	TargetLane int
	TrackDist  float64 // Arc distance along the track, monotonic
	SegDist    float64 // Arc distance into the active segment
	LatOffset  float64 // Last valid lateral offset from lane center
	NeedsLane  bool    // Active lane was pruned; reassign next generator pass

	// Velocities
	ForwardVel float64
	LateralVel float64

	// Steering
	SteerAngle  float64
	SteerTarget float64

	// Drift state
	YawOffset float64 // Yaw relative to lane direction
	YawRate   float64
	SlipAngle float64

	Damage DamageState

	// Authority
	Control   ControlSource
	CrashFlag bool // Set only on the tick the crash transition fires
}

// NewAgent returns an agent at the floor speed on the given lane
func NewAgent(id AgentID, role Role, lane LaneRef, floorSpeed float64) *Agent {
	caps := CapAutopilotIntent
	control := ControlAutopilot
	if role == RolePlayer {
		caps |= CapPlayerInput
		control = ControlPlayer
	}
	if role == RoleEmergency {
		caps |= CapSirenPressure
	}
	return &Agent{
		ID:         id,
		Role:       role,
		Caps:       caps,
		Lane:       lane,
		TargetLane: lane.Lane,
		ForwardVel: floorSpeed,
		Control:    control,
	}
}

// Velocity returns the world-space velocity from the lane frame axes
func (a *Agent) Velocity(forward, right mgl64.Vec3) mgl64.Vec3 {
	return forward.Mul(a.ForwardVel).Add(right.Mul(a.LateralVel))
}

// Has reports whether the agent carries a capability
func (a *Agent) Has(c Capability) bool {
	return a.Caps&c != 0
}
