package motion

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/voidlane/nightrunner/core"
	"github.com/voidlane/nightrunner/parameter"
	"github.com/voidlane/nightrunner/vmath"
)

// Translate converts an autopilot intent into the same ControlInput contract
// the player uses. Traffic AI and crash recovery both drive through this:
// identical controller math, with lane magnetism doing the lateral work and
// only gentle yaw correction on the wheel.
func Translate(intent core.AutopilotIntent, a *core.Agent, tun *parameter.Tuning) core.ControlInput {
	target := vmath.Sanitize(intent.TargetSpeed, tun.SpeedFloor)
	if target < tun.SpeedFloor {
		target = tun.SpeedFloor
	}

	speedErr := target - a.ForwardVel
	throttle := mgl64.Clamp(speedErr*autoThrottleGain, 0, 1)
	brake := mgl64.Clamp(-speedErr*autoBrakeGain, 0, 1)

	// Keep the wheel nearly centered: m_input stays near 1 and the
	// tightened autopilot spring (m_auto) recenters the lane offset
	steer := mgl64.Clamp(-a.YawOffset*autoYawGain-a.YawRate*autoYawRateGain,
		-autoSteerLimit, autoSteerLimit)

	return core.ControlInput{
		Steer:    steer,
		Throttle: throttle,
		Brake:    brake,
	}
}

const (
	autoThrottleGain = 0.5
	autoBrakeGain    = 0.25
	autoYawGain      = 0.8
	autoYawRateGain  = 0.2
	autoSteerLimit   = 0.3
)
