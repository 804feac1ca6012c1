package graph

import (
	"github.com/chazu/gyre/pkg/profile"
	"github.com/chazu/gyre/pkg/sweep"
	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a 3-component vector used for positions and rotations.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ---------------------------------------------------------------------------
// Sweeps
// ---------------------------------------------------------------------------

// SpiralData is a part produced by sweeping a profile along a spiral.
// Created by the (spiral ...) Lisp form.
type SpiralData struct {
	Profile profile.Spec       `json:"profile"`
	Params  sweep.SpiralParams `json:"params"`
}

func (SpiralData) nodeData() {}

// TwistData is a part produced by a linear twisted sweep.
// Created by the (twist ...) Lisp form.
type TwistData struct {
	Profile profile.Spec      `json:"profile"`
	Params  sweep.TwistParams `json:"params"`
}

func (TwistData) nodeData() {}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData represents a spatial transformation applied to a child node.
// Created by the (place ...) Lisp form.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
	Rotation    *Vec3 `json:"rotation,omitempty"` // Euler angles in degrees
}

func (TransformData) nodeData() {}

// Matrix returns the local transform: rotate X, then Y, then Z, then
// translate.
func (d TransformData) Matrix() mgl64.Mat4 {
	m := mgl64.Ident4()
	if d.Translation != nil {
		m = mgl64.Translate3D(d.Translation.X, d.Translation.Y, d.Translation.Z)
	}
	if d.Rotation != nil {
		r := d.Rotation
		m = m.Mul4(mgl64.HomogRotate3DZ(mgl64.DegToRad(r.Z))).
			Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(r.Y))).
			Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(r.X)))
	}
	return m
}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData represents a logical grouping of parts.
// Created by the (assembly ...) Lisp form.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}
