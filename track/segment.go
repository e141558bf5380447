package track

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/voidlane/nightrunner/vmath"
)

// Up is the world up axis; the track bends around it
var Up = mgl64.Vec3{0, 1, 0}

// Kind tags a segment for external mesh/ambience consumers and for the
// few gameplay differences the core owns (tunnels narrow the drivable group)
type Kind uint8

const (
	KindStraight Kind = iota
	KindCurve
	KindTunnel
	KindOverpass
	KindFork
)

func (k Kind) String() string {
	switch k {
	case KindStraight:
		return "straight"
	case KindCurve:
		return "curve"
	case KindTunnel:
		return "tunnel"
	case KindOverpass:
		return "overpass"
	case KindFork:
		return "fork"
	}
	return "unknown"
}

// Segment is one piecewise cubic Hermite piece of the track.
// Immutable once built; lanes and agents reference it by arena index.
type Segment struct {
	Index      uint64
	Kind       Kind
	Difficulty float64
	Seed       uint64

	Start, End         mgl64.Vec3
	StartTan, EndTan   mgl64.Vec3

	// StartDist is the cumulative track distance at t=0
	StartDist float64

	// ForkSpread is nonzero on fork children: an extra lateral offset of
	// ForkSpread*t^2 along the right vector. Sign selects the branch side.
	ForkSpread float64

	arc arcTable
}

// Hermite basis: S(t) = h00*P0 + h10*T0 + h01*P1 + h11*T1
func hermiteBasis(t float64) (h00, h10, h01, h11 float64) {
	t2 := t * t
	t3 := t2 * t
	return 2*t3 - 3*t2 + 1, t3 - 2*t2 + t, -2*t3 + 3*t2, t3 - t2
}

// basePoint evaluates the Hermite curve without the fork offset
func (s *Segment) basePoint(t float64) mgl64.Vec3 {
	h00, h10, h01, h11 := hermiteBasis(t)
	return s.Start.Mul(h00).
		Add(s.StartTan.Mul(h10)).
		Add(s.End.Mul(h01)).
		Add(s.EndTan.Mul(h11))
}

// Point returns the segment centerline position at parameter t in [0,1]
func (s *Segment) Point(t float64) mgl64.Vec3 {
	t = clampParam(t)
	p := s.basePoint(t)
	if s.ForkSpread != 0 {
		p = p.Add(s.Right(t).Mul(s.ForkSpread * t * t))
	}
	return p
}

// Derivative returns S'(t)
func (s *Segment) Derivative(t float64) mgl64.Vec3 {
	t = clampParam(t)
	t2 := t * t
	return s.Start.Mul(6*t2 - 6*t).
		Add(s.StartTan.Mul(3*t2 - 4*t + 1)).
		Add(s.End.Mul(-6*t2 + 6*t)).
		Add(s.EndTan.Mul(3*t2 - 2*t))
}

// second returns S''(t)
func (s *Segment) second(t float64) mgl64.Vec3 {
	return s.Start.Mul(12*t - 6).
		Add(s.StartTan.Mul(6*t - 4)).
		Add(s.End.Mul(-12*t + 6)).
		Add(s.EndTan.Mul(6*t - 2))
}

// Direction returns the unit forward vector F(t).
// Degenerate derivatives fall back to the start tangent, then +X.
func (s *Segment) Direction(t float64) mgl64.Vec3 {
	d := s.Derivative(t)
	if l := d.Len(); l > vmath.Epsilon {
		return d.Mul(1 / l)
	}
	if l := s.StartTan.Len(); l > vmath.Epsilon {
		return s.StartTan.Mul(1 / l)
	}
	return mgl64.Vec3{1, 0, 0}
}

// Right returns the unit right vector R(t) = normalize(F(t) x up)
func (s *Segment) Right(t float64) mgl64.Vec3 {
	r := s.Direction(t).Cross(Up)
	if l := r.Len(); l > vmath.Epsilon {
		return r.Mul(1 / l)
	}
	return mgl64.Vec3{0, 0, 1}
}

// Curvature returns κ(t) = |S' x S''| / |S'|^3
func (s *Segment) Curvature(t float64) float64 {
	d1 := s.Derivative(clampParam(t))
	speed := d1.Len()
	if speed < vmath.Epsilon {
		return 0
	}
	d2 := s.second(clampParam(t))
	return d1.Cross(d2).Len() / (speed * speed * speed)
}

// MaxCurvature samples curvature at the arc knots and returns the peak
func (s *Segment) MaxCurvature() float64 {
	peak := 0.0
	for i := 0; i <= arcSampleCount; i++ {
		if k := s.Curvature(float64(i) / arcSampleCount); k > peak {
			peak = k
		}
	}
	return peak
}

// Length returns the cached chord-sum arc length
func (s *Segment) Length() float64 {
	return s.arc.total()
}

// EndDist returns the cumulative track distance at t=1
func (s *Segment) EndDist() float64 {
	return s.StartDist + s.arc.total()
}

// DistanceAt converts spline parameter to arc distance into the segment
func (s *Segment) DistanceAt(t float64) float64 {
	return s.arc.distanceAt(clampParam(t))
}

// ParamAt converts arc distance into the segment to spline parameter, O(log n)
func (s *Segment) ParamAt(dist float64) float64 {
	return s.arc.paramAt(dist)
}

// WidthScale narrows the drivable lane group inside tunnels
func (s *Segment) WidthScale(tunnelScale float64) float64 {
	if s.Kind == KindTunnel {
		return tunnelScale
	}
	return 1
}

// CommitParam returns the parameter at which a fork child's lateral
// separation reaches commitSep, or 1 if it never does within the segment
func (s *Segment) CommitParam(commitSep float64) float64 {
	spread := math.Abs(s.ForkSpread)
	if spread < vmath.Epsilon {
		return 1
	}
	t := math.Sqrt(commitSep / spread)
	return clampParam(t)
}

// CommitDist returns the cumulative track distance of the commit point
func (s *Segment) CommitDist(commitSep float64) float64 {
	return s.StartDist + s.DistanceAt(s.CommitParam(commitSep))
}

func clampParam(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
