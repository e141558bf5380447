package core

// DamageState tracks directional panel damage plus a monotonic total.
// Panels saturate at 1.0 for handling degradation; Total keeps accumulating
// so structural failure (crash predicate B) is reachable past saturation.
type DamageState struct {
	Front float64
	Rear  float64
	Left  float64
	Right float64
	Total float64
}

// Accumulate adds directional damage energy. Weights must be normalized by
// the caller; Total grows by the full energy regardless of panel saturation.
func (d *DamageState) Accumulate(energy, wFront, wRear, wLeft, wRight float64) {
	d.Front = saturate(d.Front + energy*wFront)
	d.Rear = saturate(d.Rear + energy*wRear)
	d.Left = saturate(d.Left + energy*wLeft)
	d.Right = saturate(d.Right + energy*wRight)
	d.Total += energy
}

// Side returns the combined left/right panel damage used for ω degradation
func (d *DamageState) Side() float64 {
	return (d.Left + d.Right) / 2
}

// Reset clears all damage. Only the external continue/save action calls this;
// it is the single exception to Total's monotonicity.
func (d *DamageState) Reset() {
	*d = DamageState{}
}

func saturate(x float64) float64 {
	if x > 1 {
		return 1
	}
	return x
}
