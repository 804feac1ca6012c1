// Package meshio writes swept meshes to interchange formats.
package meshio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/chazu/gyre/pkg/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

// OBJOptions controls Wavefront OBJ output.
type OBJOptions struct {
	Normals bool // emit vn records and v//vn face references
}

// WriteOBJ writes meshes as one Wavefront OBJ stream. Each mesh gets an
// "o" record named after its part. Face indices are 1-based and offset so
// that later objects reference their own vertices.
func WriteOBJ(w io.Writer, opts OBJOptions, meshes ...*mesh.Mesh) error {
	bw := bufio.NewWriter(w)
	base := 1
	for i, m := range meshes {
		name := m.PartName
		if name == "" {
			name = "part" + strconv.Itoa(i)
		}
		fmt.Fprintf(bw, "o %s\n", name)
		for _, p := range m.Positions {
			writeVec(bw, "v", p)
		}
		if opts.Normals {
			for _, n := range m.Normals {
				writeVec(bw, "vn", n)
			}
		}
		for _, t := range m.Triangles {
			a, b, c := base+int(t[0]), base+int(t[1]), base+int(t[2])
			if opts.Normals {
				fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
			} else {
				fmt.Fprintf(bw, "f %d %d %d\n", a, b, c)
			}
		}
		base += m.VertexCount()
	}
	return bw.Flush()
}

func writeVec(w *bufio.Writer, tag string, v mgl64.Vec3) {
	w.WriteString(tag)
	for _, c := range v {
		w.WriteByte(' ')
		w.WriteString(strconv.FormatFloat(c, 'g', -1, 64))
	}
	w.WriteByte('\n')
}
