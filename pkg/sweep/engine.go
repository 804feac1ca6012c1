// Package sweep turns a profile into a triangle mesh by repeating it along
// a path. Two paths are provided: Spiral, which winds the profile around
// the Y axis while drifting outwards and upwards, and Twist, which pushes
// it along Z while scaling and rotating it.
//
// Every sweep runs the same pipeline: clamp the parameters into their
// domain, size the buffers, fill one ring of vertices per step, stitch
// neighbouring rings into triangles and optionally cap both ends. Out of
// range parameters are never an error; they are clamped.
package sweep

import (
	"errors"
	"math"

	"github.com/chazu/gyre/pkg/mesh"
	"github.com/chazu/gyre/pkg/profile"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrDegenerateProfile is returned when a profile has fewer than two ring
// vertices and so cannot span a surface.
var ErrDegenerateProfile = errors.New("sweep: profile needs at least 2 points")

// capNormal is the flat normal of the first lid before orientation.
var capNormal = mgl64.Vec3{0, 0, 1}

// Layout describes the topology of a sweep: how many vertices a ring has,
// how many rings there are and whether both ends are capped. All buffer
// sizes derive from it.
type Layout struct {
	RingSize int  // n_p: profile points, plus one if the profile is closed
	Steps    int  // n_steps: number of rings
	Lid      bool // cap both ends
}

// SweepTriangles is the number of triangles joining consecutive rings.
func (l Layout) SweepTriangles() int {
	return 2 * (l.RingSize - 1) * (l.Steps - 1)
}

// LidTriangles is the number of triangles in both caps together.
func (l Layout) LidTriangles() int {
	return 2 * l.RingSize
}

// TriangleCount is the total number of triangles in the mesh.
func (l Layout) TriangleCount() int {
	if l.Lid {
		return l.SweepTriangles() + l.LidTriangles()
	}
	return l.SweepTriangles()
}

// VertexCount is the total number of vertices in the mesh. With lids the
// two boundary rings are duplicated and each gets a cap point.
func (l Layout) VertexCount() int {
	if l.Lid {
		return l.RingSize*(l.Steps+2) + 2
	}
	return l.RingSize * l.Steps
}

// ring returns the index of the first vertex of ring g.
func (l Layout) ring(g int) int {
	return g * l.RingSize
}

// allocate returns an exactly sized, zeroed mesh for l.
func (l Layout) allocate() *mesh.Mesh {
	return mesh.New(l.VertexCount(), l.TriangleCount())
}

// buildTriangles stitches every pair of consecutive rings. Each quad
// between ring g and g+1 is split along the same diagonal.
func buildTriangles(m *mesh.Mesh, l Layout) {
	t := 0
	for g := 0; g < l.Steps-1; g++ {
		i := l.ring(g)
		j := i + l.RingSize
		for v := 0; v < l.RingSize-1; v, i, j = v+1, i+1, j+1 {
			k := i + 1
			m.Triangles[t] = mesh.Triangle{uint32(i), uint32(j), uint32(k)}
			m.Triangles[t+1] = mesh.Triangle{uint32(k), uint32(j), uint32(j + 1)}
			t += 2
		}
	}
}

// buildLids caps the first and last rings. Each boundary ring is copied
// after the swept vertices and followed by a cap point at the centre of
// the copy's bounding box; the copy is then fanned around the cap point.
// The first cap faces +Z, the second faces +Z transformed by orient.
func buildLids(m *mesh.Mesh, l Layout, orient mgl64.Mat4) {
	n := l.RingSize
	boundaries := [2]int{l.ring(0), l.ring(l.Steps - 1)}
	start := l.ring(l.Steps)
	t := l.SweepTriangles()
	normal := capNormal

	for _, src := range boundaries {
		lo := mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
		hi := mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
		for v := 0; v < n; v++ {
			p := m.Positions[src+v]
			for a := 0; a < 3; a++ {
				lo[a] = math.Min(lo[a], p[a])
				hi[a] = math.Max(hi[a], p[a])
			}
			m.Positions[start+v] = p
			m.Normals[start+v] = normal
		}
		centre := start + n
		m.Positions[centre] = lo.Add(hi).Mul(0.5)
		m.Normals[centre] = normal

		for v := 0; v < n; v++ {
			a := start + v
			b := start + (v+1)%n
			m.Triangles[t] = mesh.Triangle{uint32(a), uint32(b), uint32(centre)}
			t++
		}

		start = centre + 1
		normal = mgl64.TransformNormal(normal, orient)
	}
}

// ringSize validates p and returns its ring size.
func ringSize(p *profile.Profile) (int, error) {
	if p == nil || p.RingSize() < 2 {
		return 0, ErrDegenerateProfile
	}
	return p.RingSize(), nil
}

// clamp limits v to [lo, hi]. When the bounds cross the lower one wins, so
// clamping a clamped value never moves it. NaN maps to lo.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

// stepTRS builds the translate-rotate-scale matrix of one sweep step.
func stepTRS(t mgl64.Vec3, r mgl64.Quat, s mgl64.Vec3) mgl64.Mat4 {
	return mgl64.Translate3D(t.X(), t.Y(), t.Z()).
		Mul4(r.Mat4()).
		Mul4(mgl64.Scale3D(s.X(), s.Y(), s.Z()))
}

// lidOrientation is the full sweep rotation about axis with every axis
// mirrored, used to turn the second cap's normal.
func lidOrientation(deg float64, axis mgl64.Vec3) mgl64.Mat4 {
	r := mgl64.QuatRotate(mgl64.DegToRad(deg), axis)
	return stepTRS(mgl64.Vec3{}, r, mgl64.Vec3{-1, -1, -1})
}
