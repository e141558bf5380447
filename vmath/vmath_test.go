package vmath

import (
	"math"
	"testing"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		in       float64
		fallback float64
		want     float64
	}{
		{1.5, 0, 1.5},
		{math.NaN(), 0, 0},
		{math.Inf(1), 2, 2},
		{math.Inf(-1), -1, -1},
		{0, 9, 0},
	}
	for _, c := range cases {
		if got := Sanitize(c.in, c.fallback); got != c.want {
			t.Errorf("Sanitize(%v, %v) = %v, want %v", c.in, c.fallback, got, c.want)
		}
	}
}

func TestWrapAngle(t *testing.T) {
	if got := WrapAngle(3 * math.Pi); math.Abs(got-math.Pi) > 1e-12 {
		t.Errorf("WrapAngle(3π) = %v, want π", got)
	}
	if got := WrapAngle(-3 * math.Pi); math.Abs(got-math.Pi) > 1e-12 {
		t.Errorf("WrapAngle(-3π) = %v, want π", got)
	}
	if got := WrapAngle(0.5); got != 0.5 {
		t.Errorf("WrapAngle(0.5) = %v", got)
	}
}

func TestFastRandDeterministic(t *testing.T) {
	a := NewFastRand(42)
	b := NewFastRand(42)
	for i := 0; i < 1000; i++ {
		if a.Next() != b.Next() {
			t.Fatalf("same seed diverged at step %d", i)
		}
	}
}

func TestFastRandRange(t *testing.T) {
	r := NewFastRand(7)
	for i := 0; i < 10000; i++ {
		v := r.Range(-0.25, 0.25)
		if v < -0.25 || v >= 0.25 {
			t.Fatalf("Range out of bounds: %v", v)
		}
	}
}

func TestSegmentSeedPure(t *testing.T) {
	for idx := uint64(0); idx < 64; idx++ {
		if SegmentSeed(99, idx) != SegmentSeed(99, idx) {
			t.Fatalf("SegmentSeed not pure at index %d", idx)
		}
	}
	// Adjacent indices must not collide
	seen := map[uint64]uint64{}
	for idx := uint64(0); idx < 4096; idx++ {
		s := SegmentSeed(1234, idx)
		if prev, ok := seen[s]; ok {
			t.Fatalf("seed collision between index %d and %d", prev, idx)
		}
		seen[s] = idx
	}
}
