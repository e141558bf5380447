package track

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Lane is a derived spline: the parent centerline offset by index*width
// along the right vector at each sample. Lanes are values, not stored
// entities; they are as immutable as their parent segment.
type Lane struct {
	Seg   *Segment
	Index int // 0 = centerline, negative = left
	Width float64
}

// Offset returns the constant lateral offset from the segment centerline
func (l Lane) Offset() float64 {
	return float64(l.Index) * l.Width
}

// Center returns the lane centerline position at parameter t
func (l Lane) Center(t float64) mgl64.Vec3 {
	return l.Seg.Point(t).Add(l.Seg.Right(t).Mul(l.Offset()))
}

// Frame samples the lane at an arc distance into the segment and returns
// the centerline point plus the forward/right axes of the lane frame.
// This is the one geometry query the motion controller makes per tick.
func (l Lane) Frame(segDist float64) (center, forward, right mgl64.Vec3) {
	t := l.Seg.ParamAt(segDist)
	forward = l.Seg.Direction(t)
	right = l.Seg.Right(t)
	center = l.Seg.Point(t).Add(right.Mul(l.Offset()))
	return center, forward, right
}
