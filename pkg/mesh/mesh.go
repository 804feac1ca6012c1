// Package mesh holds the indexed triangle meshes produced by the sweepers.
// A Mesh is a plain value owned by whoever generated it; nothing else keeps
// a reference to its buffers.
package mesh

import (
	"errors"
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
)

// Triangle is three indices into a mesh's vertex list.
type Triangle [3]uint32

// Mesh is an indexed triangle mesh with one normal per vertex.
type Mesh struct {
	Positions []mgl64.Vec3 `json:"positions"`
	Normals   []mgl64.Vec3 `json:"normals"`
	Triangles []Triangle   `json:"triangles"`
	PartName  string       `json:"partName"`
}

// New allocates a mesh sized for exactly vertices vertices and triangles
// triangles. The buffers are zeroed and never grow.
func New(vertices, triangles int) *Mesh {
	return &Mesh{
		Positions: make([]mgl64.Vec3, vertices),
		Normals:   make([]mgl64.Vec3, vertices),
		Triangles: make([]Triangle, triangles),
	}
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Positions) == 0
}

// ErrInvalidMesh is wrapped by every Validate failure.
var ErrInvalidMesh = errors.New("invalid mesh")

// Validate checks the index contract renderers and exporters rely on:
// normals parallel to positions, and every triangle referencing three
// distinct in-range vertices. Geometric quality is not checked.
func (m *Mesh) Validate() error {
	if len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("%w: %d normals for %d positions", ErrInvalidMesh, len(m.Normals), len(m.Positions))
	}
	n := uint32(len(m.Positions))
	for t, tri := range m.Triangles {
		for _, idx := range tri {
			if idx >= n {
				return fmt.Errorf("%w: triangle %d index %d out of range [0,%d)", ErrInvalidMesh, t, idx, n)
			}
		}
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[0] == tri[2] {
			return fmt.Errorf("%w: triangle %d repeats a vertex %v", ErrInvalidMesh, t, tri)
		}
	}
	return nil
}

// Transform applies m to every position and the rotational part of m to
// every normal, in place.
func (m *Mesh) Transform(mat mgl64.Mat4) {
	for i, p := range m.Positions {
		m.Positions[i] = mgl64.TransformCoordinate(p, mat)
	}
	for i, n := range m.Normals {
		m.Normals[i] = mgl64.TransformNormal(n, mat)
	}
}

// Bounds returns the axis-aligned bounding box of the mesh positions.
// An empty mesh has a zero box.
func (m *Mesh) Bounds() sdf.Box3 {
	if len(m.Positions) == 0 {
		return sdf.Box3{}
	}
	lo := toV3(m.Positions[0])
	hi := lo
	for _, p := range m.Positions[1:] {
		v := toV3(p)
		lo = lo.Min(v)
		hi = hi.Max(v)
	}
	return sdf.Box3{Min: lo, Max: hi}
}

// Flatten returns the mesh as flat arrays suitable for GPU buffers and
// JSON: 3 floats per vertex, 3 floats per normal, 3 indices per triangle.
func (m *Mesh) Flatten() (vertices, normals []float32, indices []uint32) {
	vertices = make([]float32, 0, len(m.Positions)*3)
	normals = make([]float32, 0, len(m.Normals)*3)
	indices = make([]uint32, 0, len(m.Triangles)*3)
	for _, p := range m.Positions {
		vertices = append(vertices, float32(p.X()), float32(p.Y()), float32(p.Z()))
	}
	for _, n := range m.Normals {
		normals = append(normals, float32(n.X()), float32(n.Y()), float32(n.Z()))
	}
	for _, t := range m.Triangles {
		indices = append(indices, t[0], t[1], t[2])
	}
	return vertices, normals, indices
}

// SDFTriangles converts the mesh into sdfx triangles for the sdfx
// renderers and file writers.
func (m *Mesh) SDFTriangles() []*sdf.Triangle3 {
	out := make([]*sdf.Triangle3, len(m.Triangles))
	for i, t := range m.Triangles {
		out[i] = &sdf.Triangle3{
			toV3(m.Positions[t[0]]),
			toV3(m.Positions[t[1]]),
			toV3(m.Positions[t[2]]),
		}
	}
	return out
}

func toV3(v mgl64.Vec3) v3.Vec {
	return v3.Vec{X: v.X(), Y: v.Y(), Z: v.Z()}
}
