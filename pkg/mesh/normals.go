package mesh

import "github.com/go-gl/mathgl/mgl64"

// degenerateArea is the cross-product length below which a face is
// treated as having no usable normal.
const degenerateArea = 1e-12

// FaceNormal returns the unit normal of triangle t following its winding,
// or the zero vector for a degenerate triangle.
func (m *Mesh) FaceNormal(t Triangle) mgl64.Vec3 {
	a, b, c := m.Positions[t[0]], m.Positions[t[1]], m.Positions[t[2]]
	n := b.Sub(a).Cross(c.Sub(a))
	l := n.Len()
	if l < degenerateArea {
		return mgl64.Vec3{}
	}
	return n.Mul(1 / l)
}

// RecomputeNormals replaces every vertex normal with the normalised
// average of the unit normals of the faces that use it. Vertices that no
// non-degenerate face touches get a zero normal.
func (m *Mesh) RecomputeNormals() {
	acc := make([]mgl64.Vec3, len(m.Positions))
	for _, t := range m.Triangles {
		n := m.FaceNormal(t)
		for _, idx := range t {
			acc[idx] = acc[idx].Add(n)
		}
	}
	for i, n := range acc {
		if l := n.Len(); l > degenerateArea {
			n = n.Mul(1 / l)
		} else {
			n = mgl64.Vec3{}
		}
		m.Normals[i] = n
	}
}
