package sweep

import (
	"math"

	"github.com/chazu/gyre/pkg/mesh"
	"github.com/chazu/gyre/pkg/profile"
	"github.com/go-gl/mathgl/mgl64"
)

// spiralAxis is the axis the spiral winds around.
var spiralAxis = mgl64.Vec3{0, 1, 0}

// SpiralParams are the inputs of a spiral sweep.
type SpiralParams struct {
	InitialLength       float64 `json:"initialLength"`       // w_e, [2*boxWidth, 100]
	ScaleX              float64 `json:"scaleX"`              // s_x, [0, inf)
	ScaleY              float64 `json:"scaleY"`              // s_y, [0, inf)
	Rotations           float64 `json:"rotations"`           // r_e, [0.1, 100]
	SegmentsPerRotation int     `json:"segmentsPerRotation"` // n_se, [3, 40]
	DeltaHeight         float64 `json:"deltaHeight"`         // delta_he per turn, [r_e>1 ? boxHeight : 0, 10]
	DeltaWidth          float64 `json:"deltaWidth"`          // delta_we per turn, [r_e>1 ? boxWidth : 0, 10]
	Lid                 bool    `json:"lid"`
}

// DefaultSpiral returns the parameters used when a design leaves them unset.
func DefaultSpiral() SpiralParams {
	return SpiralParams{
		InitialLength:       1,
		ScaleX:              1,
		ScaleY:              1,
		Rotations:           2,
		SegmentsPerRotation: 40,
		DeltaHeight:         5,
		DeltaWidth:          2,
	}
}

// Clamp returns p with every field forced into its domain for a profile
// with the given wrapping box. The lid is dropped when there is no drift,
// since a flat spiral has nothing to cap.
func (p SpiralParams) Clamp(box profile.Box) SpiralParams {
	p.ScaleX = clamp(p.ScaleX, 0, math.Inf(1))
	p.ScaleY = clamp(p.ScaleY, 0, math.Inf(1))
	p.Rotations = clamp(p.Rotations, 0.1, 100)
	p.SegmentsPerRotation = clampInt(p.SegmentsPerRotation, 3, 40)

	box = box.Scale(p.ScaleX, p.ScaleY)
	p.InitialLength = clamp(p.InitialLength, 2*box.Width, 100)
	var minHeight, minWidth float64
	if p.Rotations > 1 {
		minHeight, minWidth = box.Height, box.Width
	}
	p.DeltaHeight = clamp(p.DeltaHeight, minHeight, 10)
	p.DeltaWidth = clamp(p.DeltaWidth, minWidth, 10)

	if p.DeltaHeight == 0 && p.DeltaWidth == 0 {
		p.Lid = false
	}
	return p
}

// rings returns n_re, the number of step intervals: whole turns (at least
// one) times the segments per turn.
func (p SpiralParams) rings() int {
	turns := max(int(math.Floor(p.Rotations+0.5)), 1)
	return turns * p.SegmentsPerRotation
}

// Layout returns the topology of a spiral over prof after clamping.
func (p SpiralParams) Layout(prof *profile.Profile) Layout {
	p = p.Clamp(prof.Box())
	return Layout{RingSize: prof.RingSize(), Steps: p.rings() + 1, Lid: p.Lid}
}

// Spiral sweeps prof along an expanding helix around +Y. The returned
// mesh belongs to the caller.
func Spiral(prof *profile.Profile, params SpiralParams) (*mesh.Mesh, error) {
	n, err := ringSize(prof)
	if err != nil {
		return nil, err
	}
	params = params.Clamp(prof.Box())
	box := prof.Box().Scale(params.ScaleX, params.ScaleY)

	nre := params.rings()
	l := Layout{RingSize: n, Steps: nre + 1, Lid: params.Lid}
	m := l.allocate()

	s := spiralStep{
		params: params,
		rings:  float64(nre),
		offset: (params.InitialLength - box.Width) / 2,
	}
	for k := 0; k < l.Steps; k++ {
		trs, rot := s.at(k)
		base := l.ring(k)
		for i := 0; i < n; i++ {
			pt := prof.At(i)
			m.Positions[base+i] = mgl64.TransformCoordinate(s.translation(k).Add(pt), trs)
			m.Normals[base+i] = mgl64.TransformNormal(pt, rot)
		}
	}

	buildTriangles(m, l)
	if l.Lid {
		buildLids(m, l, lidOrientation(360*params.Rotations, spiralAxis))
	}
	return m, nil
}

// spiralStep evaluates the per-step transform of a spiral. It holds no
// state that changes between steps.
type spiralStep struct {
	params SpiralParams
	rings  float64 // n_re
	offset float64 // d_e
}

// translation is the offset added to every profile point at step k before
// the rotation and scale.
func (s spiralStep) translation(k int) mgl64.Vec3 {
	f := float64(k) / s.rings
	return mgl64.Vec3{
		s.offset + s.params.Rotations*s.params.DeltaWidth*f,
		s.params.Rotations * s.params.DeltaHeight * f,
		0,
	}
}

// at returns the position matrix (rotation and scale, no translation) and
// the normal matrix (rotation only) of step k.
func (s spiralStep) at(k int) (trs, rot mgl64.Mat4) {
	deg := 360 * s.params.Rotations * float64(k) / s.rings
	r := mgl64.QuatRotate(mgl64.DegToRad(deg), spiralAxis)
	trs = stepTRS(mgl64.Vec3{}, r, mgl64.Vec3{s.params.ScaleX, s.params.ScaleY, 1})
	rot = stepTRS(mgl64.Vec3{}, r, mgl64.Vec3{1, 1, 1})
	return trs, rot
}
