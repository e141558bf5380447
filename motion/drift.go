package motion

import (
	"math"

	"github.com/voidlane/nightrunner/core"
	"github.com/voidlane/nightrunner/vmath"
)

// integrateYaw advances the drift model:
//
//	ψ̈ = τ_steer + τ_drift - c_ψ·ψ̇
//	τ_steer = k_s·steer·(v_f/v_ref)
//	τ_drift = k_d·sign(steer)·sqrt(v_f)   (handbrake only)
//
// The slip angle β = ψ - atan(v_l/v_f) couples yaw back into lateral
// velocity, which is what makes a held drift carry the tail outward.
func (c *Controller) integrateYaw(a *core.Agent, in core.ControlInput, h core.Handling, dt float64) {
	steerGain := c.tun.SteerGain * h.SteerScale

	tauSteer := steerGain * a.SteerAngle * (a.ForwardVel / c.tun.SpeedRef)
	tauDrift := 0.0
	if in.Handbrake {
		tauDrift = c.tun.DriftGain * vmath.Sign(in.Steer) * math.Sqrt(math.Max(0, a.ForwardVel))
	}

	yawAccel := tauSteer + tauDrift - c.tun.YawDamping*a.YawRate
	a.YawRate += yawAccel * dt
	a.YawOffset = vmath.WrapAngle(a.YawOffset + a.YawRate*dt)

	// Slip couples facing-vs-travel mismatch into lateral velocity
	vf := math.Max(a.ForwardVel, vmath.Epsilon)
	a.SlipAngle = vmath.WrapAngle(a.YawOffset - math.Atan(a.LateralVel/vf))

	slipGain := c.tun.SlipGain * h.SlipScale
	a.LateralVel += slipGain * math.Sin(a.SlipAngle) * a.ForwardVel * dt
}
