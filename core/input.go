package core

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/voidlane/nightrunner/vmath"
)

// ControlInput is the per-tick command for one agent. Player input arrives
// raw from the device layer; autopilot input is synthesized from an intent.
// Either way it passes through Sanitized before integration.
type ControlInput struct {
	Steer     float64 // [-1, 1]
	Throttle  float64 // [0, 1]
	Brake     float64 // [0, 1]
	Handbrake bool
}

// Sanitized clamps ranges and strips NaN/Inf at the controller boundary.
// Malformed device input degrades to neutral, never propagates.
func (in ControlInput) Sanitized() ControlInput {
	return ControlInput{
		Steer:     mgl64.Clamp(vmath.Sanitize(in.Steer, 0), -1, 1),
		Throttle:  mgl64.Clamp(vmath.Sanitize(in.Throttle, 0), 0, 1),
		Brake:     mgl64.Clamp(vmath.Sanitize(in.Brake, 0), 0, 1),
		Handbrake: in.Handbrake,
	}
}

// AutopilotIntent is the high-level command the traffic AI (or the crash
// recovery autopilot) writes through the same controller contract.
type AutopilotIntent struct {
	TargetSpeed    float64
	LanePreference int
}
