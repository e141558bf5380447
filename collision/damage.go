package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/voidlane/nightrunner/core"
)

// applyDamage distributes impact energy across the four panels by the
// contact direction. Weights are normalized to sum to 1, so Total grows by
// exactly the impact energy and stays monotonic.
func (r *Resolver) applyDamage(a *core.Agent, ev Event, fwd, right mgl64.Vec3) {
	energy := r.tun.DamageGain * ev.ImpactSpeed * ev.ImpactSpeed * ev.Severity * ev.Kind.EnergyScale()

	// Contact direction: from agent toward hazard
	d := ev.Normal.Mul(-1)
	wFront := math.Max(0, d.Dot(fwd))
	wRear := math.Max(0, -d.Dot(fwd))
	wRight := math.Max(0, d.Dot(right))
	wLeft := math.Max(0, -d.Dot(right))

	sum := wFront + wRear + wLeft + wRight
	if sum < 1e-9 {
		wFront, sum = 1, 1
	}
	a.Damage.Accumulate(energy, wFront/sum, wRear/sum, wLeft/sum, wRight/sum)
}

// Degrade maps accumulated panel damage to continuous handling scales.
// Never a step function: every point of damage costs a little control.
func Degrade(d core.DamageState) core.Handling {
	return core.Handling{
		SteerScale: 1 - 0.4*d.Front,
		OmegaScale: 1 - 0.5*d.Side(),
		SlipScale:  1 + 0.6*d.Rear,
	}
}
