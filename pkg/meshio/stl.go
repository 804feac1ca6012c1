package meshio

import (
	"errors"
	"fmt"

	"github.com/chazu/gyre/pkg/mesh"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
)

// ErrNoTriangles is returned when there is nothing to write.
var ErrNoTriangles = errors.New("meshio: no triangles")

// SaveSTL writes meshes to path as a single binary STL file.
func SaveSTL(path string, meshes ...*mesh.Mesh) error {
	var tris []*sdf.Triangle3
	for _, m := range meshes {
		tris = append(tris, m.SDFTriangles()...)
	}
	if len(tris) == 0 {
		return ErrNoTriangles
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("meshio: save %s: %w", path, err)
	}
	return nil
}
