package motion

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/voidlane/nightrunner/core"
	"github.com/voidlane/nightrunner/parameter"
	"github.com/voidlane/nightrunner/track"
	"github.com/voidlane/nightrunner/vmath"
)

// Controller advances one agent per tick: lane-relative offset, the
// critically damped lateral spring, yaw/drift dynamics, longitudinal
// integration, and the forward-velocity floor as the final write.
//
// Per-agent work is independent; the sim runs Advance concurrently
// across agents against a read-only arena.
type Controller struct {
	tun *parameter.Tuning
}

func NewController(tun *parameter.Tuning) *Controller {
	return &Controller{tun: tun}
}

// Advance runs one fixed-dt integration step for the agent.
// h carries the damage-degraded gain scales computed by the resolver.
func (c *Controller) Advance(a *core.Agent, arena *track.Arena, in core.ControlInput, h core.Handling, dt float64) {
	in = in.Sanitized()
	c.sanitizeAgent(a)

	seg, ok := arena.Get(a.Lane.Segment)
	if !ok {
		// Dangling lane: hold the last valid offset, coast straight along
		// the current heading, and flag for reassignment. Never a failure.
		a.NeedsLane = true
		c.coast(a, dt)
		return
	}

	lane := track.Lane{Seg: seg, Index: a.Lane.Lane, Width: c.tun.LaneWidth}
	center, fwd, right := lane.Frame(a.SegDist)

	// Lateral offset in the lane frame
	x := a.Pos.Sub(center).Dot(right)
	xdot := a.LateralVel

	m := c.modulation(a, in)
	omega := c.tun.LaneOmega * h.OmegaScale
	half := c.tun.HalfGroupWidth() * seg.WidthScale(parameter.TunnelWidthScale)
	aLat := c.lateralAccel(x, xdot, m, omega)
	aLat += c.edgeAccel(x+lane.Offset(), half)

	// Steering state tracks the commanded angle, not a snap
	a.SteerTarget = in.Steer
	blend := math.Min(1, steerRate*dt)
	a.SteerAngle += (a.SteerTarget - a.SteerAngle) * blend

	c.integrateYaw(a, in, h, dt)

	a.LateralVel += aLat * dt

	// Longitudinal
	accel := in.Throttle*c.tun.ThrottleAccel - in.Brake*c.tun.BrakeDecel - c.tun.LinearDrag*a.ForwardVel
	if in.Handbrake {
		accel -= c.tun.HandbrakeDrag
	}
	a.ForwardVel += accel * dt
	if a.ForwardVel > c.tun.SpeedMax {
		a.ForwardVel = c.tun.SpeedMax
	}

	// Position integration in the lane frame
	a.Pos = a.Pos.Add(fwd.Mul(a.ForwardVel * dt)).Add(right.Mul(a.LateralVel * dt))
	a.SegDist += a.ForwardVel * dt
	a.TrackDist += a.ForwardVel * dt
	a.LatOffset = x
	a.Heading = math.Atan2(fwd.Z(), fwd.X()) + a.YawOffset

	c.crossSegmentBoundary(a, arena, seg)

	// Hard invariant: the floor clamp is the last write to forward
	// velocity this stage. Only the crash transition may go below.
	if !a.CrashFlag && a.ForwardVel < c.tun.SpeedFloor {
		a.ForwardVel = c.tun.SpeedFloor
	}
}

// steerRate is the tracking rate of the steering state toward its target
const steerRate = 8.0

// modulation composes the four magnetism multipliers from §controller math:
// counter-steer releases the spring, autopilot tightens it, speed scales it,
// handbrake nearly frees the tail.
func (c *Controller) modulation(a *core.Agent, in core.ControlInput) float64 {
	mInput := 1 - math.Abs(in.Steer)
	mAuto := 1.0
	if a.Control == core.ControlAutopilot {
		mAuto = parameter.AutoMod
	}
	mSpeed := mgl64.Clamp(math.Sqrt(math.Max(0, a.ForwardVel)/c.tun.SpeedRef),
		parameter.SpeedModMin, parameter.SpeedModMax)
	mHandbrake := 1.0
	if in.Handbrake {
		mHandbrake = parameter.HandbrakeMod
	}
	return mInput * mAuto * mSpeed * mHandbrake
}

// lateralAccel is the critically damped lane spring: a = m*(-ω²x - 2ω·ẋ)
func (c *Controller) lateralAccel(x, xdot, m, omega float64) float64 {
	return m * (-omega*omega*x - 2*omega*xdot)
}

// edgeAccel repels from the lane-group boundary once the offset from the
// group centerline exceeds the soft edge (85% of half group width)
func (c *Controller) edgeAccel(groupOffset, half float64) float64 {
	soft := c.tun.SoftEdgeFrac * half
	over := math.Abs(groupOffset) - soft
	if over <= 0 {
		return 0
	}
	return -vmath.Sign(groupOffset) * c.tun.EdgeGain * over * over
}

// crossSegmentBoundary walks the agent onto the next segment, carrying
// the overshoot distance. Fork pairs are picked by lateral position;
// lane retargeting lands at boundaries only.
func (c *Controller) crossSegmentBoundary(a *core.Agent, arena *track.Arena, seg *track.Segment) {
	for a.SegDist > seg.Length() {
		next, ok := c.nextSegment(a, arena, seg)
		if !ok {
			// Frontier not generated yet or lane pruned under us:
			// clamp and wait for the next generator pass.
			a.SegDist = seg.Length()
			a.NeedsLane = true
			return
		}
		a.SegDist -= seg.Length()
		a.Lane.Segment = next.Index
		a.Lane.Lane = c.clampLane(a.TargetLane)
		seg = next
	}
}

// nextSegment resolves the successor, skipping removed fork branches.
// When both fork children are live the agent's lateral side picks one.
func (c *Controller) nextSegment(a *core.Agent, arena *track.Arena, seg *track.Segment) (*track.Segment, bool) {
	first, okFirst := arena.Get(seg.Index + 1)
	second, okSecond := arena.Get(seg.Index + 2)

	forkPair := okFirst && okSecond &&
		first.Kind == track.KindFork && second.Kind == track.KindFork &&
		math.Abs(first.StartDist-second.StartDist) < vmath.Epsilon

	if forkPair {
		if a.LatOffset < 0 {
			return first, true // Left child is generated first
		}
		return second, true
	}
	if okFirst {
		return first, true
	}
	if okSecond && math.Abs(second.StartDist-seg.EndDist()) < 1e-6 {
		// Successor index was a discarded fork branch
		return second, true
	}
	return nil, false
}

func (c *Controller) clampLane(lane int) int {
	max := (c.tun.LaneCount - 1) / 2
	if lane > max {
		return max
	}
	if lane < -max {
		return -max
	}
	return lane
}

// coast moves a lane-less agent straight ahead at its current heading
func (c *Controller) coast(a *core.Agent, dt float64) {
	dir := mgl64.Vec3{math.Cos(a.Heading), 0, math.Sin(a.Heading)}
	a.Pos = a.Pos.Add(dir.Mul(a.ForwardVel * dt))
	a.TrackDist += a.ForwardVel * dt
	if !a.CrashFlag && a.ForwardVel < c.tun.SpeedFloor {
		a.ForwardVel = c.tun.SpeedFloor
	}
}

// sanitizeAgent clamps runaway numeric state at the controller boundary
// so malformed external writes cannot propagate through integration
func (c *Controller) sanitizeAgent(a *core.Agent) {
	a.ForwardVel = mgl64.Clamp(vmath.Sanitize(a.ForwardVel, c.tun.SpeedFloor), 0, 2*c.tun.SpeedMax)
	a.LateralVel = mgl64.Clamp(vmath.Sanitize(a.LateralVel, 0), -c.tun.SpeedMax, c.tun.SpeedMax)
	a.YawRate = mgl64.Clamp(vmath.Sanitize(a.YawRate, 0), -20, 20)
	a.YawOffset = vmath.WrapAngle(vmath.Sanitize(a.YawOffset, 0))
}
