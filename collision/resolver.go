package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/voidlane/nightrunner/core"
	"github.com/voidlane/nightrunner/parameter"
	"github.com/voidlane/nightrunner/track"
	"github.com/voidlane/nightrunner/vmath"
)

// Event is the transient record of one contact. Produced during the
// resolver stage, consumed immediately by damage application and by the
// crash arbiter the same tick; never persisted.
type Event struct {
	Agent       core.AgentID
	Hazard      core.HazardID
	Normal      mgl64.Vec3
	ImpactSpeed float64
	Impulse     float64
	Severity    float64
	Kind        core.DamageKind
}

// Resolver detects agent-vs-hazard overlap and converts it into velocity
// response plus directional damage. It mutates only the agent it is given,
// so the sim runs it concurrently across agents against read-only hazards.
type Resolver struct {
	tun *parameter.Tuning
}

func NewResolver(tun *parameter.Tuning) *Resolver {
	return &Resolver{tun: tun}
}

// Resolve runs both detection phases for one agent against the hazard set,
// applies impulse response and damage, and returns the contact events.
func (r *Resolver) Resolve(a *core.Agent, arena *track.Arena, hazards []core.Hazard) []Event {
	fwd, right := r.agentFrame(a, arena)

	var events []Event
	broadSq := r.tun.BroadPhaseRadius * r.tun.BroadPhaseRadius
	for i := range hazards {
		h := &hazards[i]

		// Broad phase: squared-distance cull, no sqrt
		delta := a.Pos.Sub(h.Pos)
		if delta.LenSqr() > broadSq {
			continue
		}

		if !r.boxOverlap(delta, fwd, right, h) {
			continue
		}

		ev, hit := r.impact(a, h, delta, fwd, right)
		if !hit {
			continue
		}
		r.applyResponse(a, ev, h, fwd, right)
		r.applyDamage(a, ev, fwd, right)
		events = append(events, ev)
	}
	return events
}

// agentFrame returns the lane-frame axes at the agent. A dangling lane
// reference falls back to the heading direction, matching the controller's
// coast behavior, so detection keeps working while reassignment is pending.
func (r *Resolver) agentFrame(a *core.Agent, arena *track.Arena) (fwd, right mgl64.Vec3) {
	if seg, ok := arena.Get(a.Lane.Segment); ok {
		t := seg.ParamAt(a.SegDist)
		return seg.Direction(t), seg.Right(t)
	}
	fwd = mgl64.Vec3{math.Cos(a.Heading), 0, math.Sin(a.Heading)}
	right = fwd.Cross(track.Up)
	if l := right.Len(); l > vmath.Epsilon {
		right = right.Mul(1 / l)
	} else {
		right = mgl64.Vec3{0, 0, 1}
	}
	return fwd, right
}

// boxOverlap is the narrow phase: box test in the agent's lane frame
func (r *Resolver) boxOverlap(delta, fwd, right mgl64.Vec3, h *core.Hazard) bool {
	half := r.tun.HazardHalfExtent * (0.5 + h.MassFactor)
	if math.Abs(delta.Dot(fwd)) > r.tun.AgentHalfLength+half {
		return false
	}
	return math.Abs(delta.Dot(right)) <= r.tun.AgentHalfWidth+half
}

// impact computes the contact normal and impact speed.
// v_impact = max(0, -V·N): glancing or separating contacts yield zero and
// are discarded below the minimum threshold.
func (r *Resolver) impact(a *core.Agent, h *core.Hazard, delta, fwd, right mgl64.Vec3) (Event, bool) {
	dist := delta.Len()
	var n mgl64.Vec3
	if dist > vmath.Epsilon {
		n = delta.Mul(1 / dist)
	} else {
		n = fwd.Mul(-1) // Coincident centers: treat as head-on
	}

	vel := a.Velocity(fwd, right)
	vImpact := math.Max(0, -vel.Dot(n))
	if vImpact < r.tun.ImpactThreshold {
		return Event{}, false
	}

	return Event{
		Agent:       a.ID,
		Hazard:      h.ID,
		Normal:      n,
		ImpactSpeed: vImpact,
		Impulse:     r.tun.ImpulseGain * vImpact * (0.5 + h.Severity),
		Severity:    h.Severity,
		Kind:        h.Kind,
	}, true
}

// applyResponse decomposes the impulse into the lane frame and applies the
// velocity change plus a yaw kick. Forward velocity is re-clamped to the
// floor immediately: an impulse never takes the agent below v_min.
func (r *Resolver) applyResponse(a *core.Agent, ev Event, h *core.Hazard, fwd, right mgl64.Vec3) {
	mVirtual := r.tun.VirtualMassBase + h.MassFactor

	iFwd := ev.Impulse * ev.Normal.Dot(fwd)
	iLat := ev.Impulse * ev.Normal.Dot(right)

	a.LateralVel += iLat / mVirtual
	a.ForwardVel -= math.Abs(iFwd) / mVirtual
	if a.ForwardVel < r.tun.SpeedFloor {
		a.ForwardVel = r.tun.SpeedFloor
	}

	a.YawRate += r.tun.YawKickGain * iLat / (a.ForwardVel + parameter.YawKickEpsilon)
}
