package profile

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// NewPolygon returns a closed regular polygon of unit circumradius whose
// first vertex is (0, 1). Fewer than 3 sides are raised to 3.
func NewPolygon(sides int) *Profile {
	if sides < 3 {
		sides = 3
	}
	p := New(sides + 1)
	walk(p, mgl64.Vec2{0, 1}, 2*math.Pi/float64(sides), sides)

	p.points = append(p.points, p.points[0])
	p.closed = true
	p.ComputeBox()
	p.angle = 360
	return p
}

// NewArch returns a circular arc of unit radius spanning angle degrees,
// symmetric about +Y. A full 360 degree arch has segments vertices,
// anything shorter has segments+1. The first vertex is repeated at the
// end only if closed is set.
//
// The angle is clamped into (0, 360]: non-positive and NaN spans become
// 1 degree.
func NewArch(segments int, angle float64, closed bool) *Profile {
	if segments < 1 {
		segments = 1
	}
	switch {
	case math.IsNaN(angle) || angle <= 0:
		angle = 1
	case angle > 360:
		angle = 360
	}

	vertices := segments + 1
	if angle == 360 {
		vertices = segments
	}
	capacity := vertices
	if closed {
		capacity++
	}

	p := New(capacity)
	rad := mgl64.DegToRad(angle)
	start := mgl64.Vec2{math.Sin(rad / 2), math.Cos(rad / 2)}
	walk(p, start, rad/float64(segments), vertices)

	if closed {
		p.points = append(p.points, p.points[0])
		p.closed = true
	}
	p.ComputeBox()
	p.angle = angle
	return p
}

// walk appends n points starting at start, each one the previous rotated
// by step radians. The rotation matrix is built once and reapplied.
func walk(p *Profile, start mgl64.Vec2, step float64, n int) {
	rot := mgl64.Rotate2D(step)
	v := start
	for i := 0; i < n; i++ {
		p.points = append(p.points, mgl64.Vec3{v.X(), v.Y(), 0})
		v = rot.Mul2x1(v)
	}
}
