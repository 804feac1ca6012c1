package sweep

import (
	"github.com/chazu/gyre/pkg/mesh"
	"github.com/chazu/gyre/pkg/profile"
	"github.com/go-gl/mathgl/mgl64"
)

// twistAxis is the axis the twist sweep travels along.
var twistAxis = mgl64.Vec3{0, 0, 1}

// TwistParams are the inputs of a twist sweep.
type TwistParams struct {
	Length           float64 `json:"length"`     // l_v, [1, 50]
	OffsetX          float64 `json:"offsetX"`    // o_wv, [-boxWidth, boxWidth]
	OffsetY          float64 `json:"offsetY"`    // o_hv, [-boxHeight, boxHeight]
	Segments         int     `json:"segments"`   // n_sv, [1, 50]
	ScaleBegin       float64 `json:"scaleBegin"` // s_bv, [0.1, 5]
	ScaleEnd         float64 `json:"scaleEnd"`   // s_ev, [0.1, 5]
	Twist            float64 `json:"twist"`      // r_v in turns, [-2, 2]
	Lid              bool    `json:"lid"`
	RecomputeNormals bool    `json:"recomputeNormals"`
}

// DefaultTwist returns the parameters used when a design leaves them unset.
func DefaultTwist() TwistParams {
	return TwistParams{
		Length:     1,
		Segments:   20,
		ScaleBegin: 2,
		ScaleEnd:   2,
	}
}

// Clamp returns p with every field forced into its domain for a profile
// with the given wrapping box.
func (p TwistParams) Clamp(box profile.Box) TwistParams {
	p.ScaleBegin = clamp(p.ScaleBegin, 0.1, 5)
	p.ScaleEnd = clamp(p.ScaleEnd, 0.1, 5)
	p.Length = clamp(p.Length, 1, 50)
	p.Segments = clampInt(p.Segments, 1, 50)
	p.Twist = clamp(p.Twist, -2, 2)

	box = box.Scale(p.ScaleBegin, p.ScaleBegin)
	p.OffsetX = clamp(p.OffsetX, -box.Width, box.Width)
	p.OffsetY = clamp(p.OffsetY, -box.Height, box.Height)
	return p
}

// Layout returns the topology of a twist over prof after clamping.
func (p TwistParams) Layout(prof *profile.Profile) Layout {
	p = p.Clamp(prof.Box())
	return Layout{RingSize: prof.RingSize(), Steps: p.Segments + 1, Lid: p.Lid}
}

// Twist sweeps prof along +Z, scaling it linearly from ScaleBegin to
// ScaleEnd and rotating it by Twist full turns. The returned mesh belongs
// to the caller.
func Twist(prof *profile.Profile, params TwistParams) (*mesh.Mesh, error) {
	n, err := ringSize(prof)
	if err != nil {
		return nil, err
	}
	params = params.Clamp(prof.Box())

	l := Layout{RingSize: n, Steps: params.Segments + 1, Lid: params.Lid}
	m := l.allocate()

	for k := 0; k < l.Steps; k++ {
		trs, rot := twistStep(params, k)
		base := l.ring(k)
		for i := 0; i < n; i++ {
			pt := prof.At(i)
			m.Positions[base+i] = mgl64.TransformCoordinate(pt, trs)
			m.Normals[base+i] = mgl64.TransformNormal(pt, rot)
		}
	}

	buildTriangles(m, l)
	if l.Lid {
		buildLids(m, l, lidOrientation(360*params.Twist, twistAxis))
	}
	if params.RecomputeNormals {
		m.RecomputeNormals()
	}
	return m, nil
}

// twistStep returns the position and normal matrices of step k.
func twistStep(p TwistParams, k int) (trs, rot mgl64.Mat4) {
	f := float64(k) / float64(p.Segments)
	s := p.ScaleBegin + (p.ScaleEnd-p.ScaleBegin)*f
	t := mgl64.Vec3{p.OffsetX, p.OffsetY, p.Length * f}
	r := mgl64.QuatRotate(mgl64.DegToRad(360*p.Twist*f), twistAxis)

	trs = stepTRS(t, r, mgl64.Vec3{s, s, 1})
	rot = stepTRS(mgl64.Vec3{}, r, mgl64.Vec3{1, 1, 1})
	return trs, rot
}
