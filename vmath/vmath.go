package vmath

import (
	"math"
)

// Float64 scalar helpers shared by the track, motion and collision packages.
// The simulation is float64-native end to end; determinism comes from pure
// seeded generation (rand.go), not from fixed-point arithmetic.

// Epsilon is the degeneracy threshold for lengths and divisors
const Epsilon = 1e-9

// Lerp interpolates linearly between a and b by t in [0,1]
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Sign returns -1, 0, or 1
func Sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	if x > 0 {
		return 1
	}
	return 0
}

// Sanitize replaces NaN/Inf with the fallback value
// Applied at every external input boundary so bad values never enter integration
func Sanitize(x, fallback float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return fallback
	}
	return x
}

// WrapAngle wraps an angle to (-π, π]
func WrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// NearZero reports whether |x| is below the degeneracy threshold
func NearZero(x float64) bool {
	return math.Abs(x) < Epsilon
}
