// Package profile defines the 2D generatrix curves that the sweepers
// extrude into surfaces. A Profile is an ordered, fixed-capacity list of
// points in the z = 0 plane, optionally closed by repeating its first
// point.
package profile

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	// ErrCapacityExceeded is returned when a point is added to a full profile.
	ErrCapacityExceeded = errors.New("profile: capacity exceeded")
	// ErrEmptyProfile is returned when closing a profile with no points.
	ErrEmptyProfile = errors.New("profile: no points")
)

// Box is the planar wrapping box of a profile.
type Box struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Scale returns the box scaled independently along x and y.
func (b Box) Scale(sx, sy float64) Box {
	return Box{Width: b.Width * sx, Height: b.Height * sy}
}

// Profile is a generatrix curve. It is populated once, by a factory or by
// Add/Close followed by ComputeBox, and read-only afterwards.
type Profile struct {
	points []mgl64.Vec3
	closed bool
	box    Box
	angle  float64
}

// New returns an empty profile that can hold capacity points, including
// the closing point if Close will be called.
func New(capacity int) *Profile {
	if capacity < 0 {
		capacity = 0
	}
	return &Profile{points: make([]mgl64.Vec3, 0, capacity)}
}

// Add appends a point on the z = 0 plane.
func (p *Profile) Add(x, y float64) error {
	if len(p.points) == cap(p.points) {
		return fmt.Errorf("add (%g, %g) to profile of capacity %d: %w", x, y, cap(p.points), ErrCapacityExceeded)
	}
	p.points = append(p.points, mgl64.Vec3{x, y, 0})
	return nil
}

// Close repeats the first point at the end of the profile and marks it
// closed. Closing an already closed profile does nothing.
func (p *Profile) Close() error {
	if p.closed {
		return nil
	}
	if len(p.points) == 0 {
		return ErrEmptyProfile
	}
	if len(p.points) == cap(p.points) {
		return fmt.Errorf("close profile of capacity %d: %w", cap(p.points), ErrCapacityExceeded)
	}
	p.points = append(p.points, p.points[0])
	p.closed = true
	return nil
}

// ComputeBox recomputes the wrapping box from the points added so far.
func (p *Profile) ComputeBox() {
	n := p.Count()
	if n == 0 {
		p.box = Box{}
		return
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, v := range p.points[:n] {
		minX = math.Min(minX, v.X())
		minY = math.Min(minY, v.Y())
		maxX = math.Max(maxX, v.X())
		maxY = math.Max(maxY, v.Y())
	}
	p.box = Box{Width: maxX - minX, Height: maxY - minY}
}

// Capacity returns the number of points the profile can hold.
func (p *Profile) Capacity() int { return cap(p.points) }

// Count returns the number of added points, excluding the closing point.
func (p *Profile) Count() int {
	if p.closed {
		return len(p.points) - 1
	}
	return len(p.points)
}

// RingSize returns the number of vertices a sweep ring built from this
// profile has: Count plus one when closed.
func (p *Profile) RingSize() int { return len(p.points) }

// At returns the i-th stored point. The closing point is at index Count().
func (p *Profile) At(i int) mgl64.Vec3 { return p.points[i] }

// Points returns a copy of every stored point, closing point included.
func (p *Profile) Points() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(p.points))
	copy(out, p.points)
	return out
}

// Closed reports whether Close has been called.
func (p *Profile) Closed() bool { return p.closed }

// Box returns the wrapping box as of the last ComputeBox.
func (p *Profile) Box() Box { return p.box }

// Angle returns the angular span, in degrees, the profile was generated
// from: the arc span for arches and 360 for polygons.
func (p *Profile) Angle() float64 { return p.angle }
