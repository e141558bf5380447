package core

// Handling is the continuous gain degradation derived from damage.
// The collision resolver owns the computation; the motion controller
// multiplies its gains by these scales every tick. All three start at 1
// and degrade smoothly, never as a step function.
type Handling struct {
	SteerScale float64 // Degrades with front damage
	OmegaScale float64 // Degrades with side damage
	SlipScale  float64 // Grows with rear damage (looser tail)
}

// NominalHandling is the undamaged baseline
func NominalHandling() Handling {
	return Handling{SteerScale: 1, OmegaScale: 1, SlipScale: 1}
}
