package meshio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/gyre/pkg/mesh"
)

// Format is an export file format.
type Format string

const (
	FormatOBJ Format = "obj"
	FormatSTL Format = "stl"
)

// ParseFormat accepts a format name in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatOBJ, FormatSTL:
		return f, nil
	}
	return "", fmt.Errorf("meshio: unknown format %q (want obj or stl)", s)
}

// Exporter writes meshes into Dir, one file per mesh. A part placed more
// than once gets a numeric suffix from its second file on (coil.obj,
// coil-2.obj) so instances never overwrite each other.
type Exporter struct {
	Dir    string
	Format Format
	OBJ    OBJOptions

	used map[string]bool
}

// Save writes m and returns the path written.
func (e *Exporter) Save(m *mesh.Mesh) (string, error) {
	path := filepath.Join(e.Dir, e.claim(m.PartName))
	switch e.Format {
	case FormatSTL:
		return path, SaveSTL(path, m)
	case FormatOBJ:
		file, err := os.Create(path)
		if err != nil {
			return "", fmt.Errorf("meshio: %w", err)
		}
		if err := WriteOBJ(file, e.OBJ, m); err != nil {
			file.Close()
			return "", fmt.Errorf("meshio: write %s: %w", path, err)
		}
		return path, file.Close()
	}
	return "", fmt.Errorf("meshio: unknown format %q", e.Format)
}

// claim returns the first unused file name for part.
func (e *Exporter) claim(part string) string {
	if e.used == nil {
		e.used = make(map[string]bool)
	}
	base := baseName(part)
	name := base + "." + string(e.Format)
	for i := 2; e.used[name]; i++ {
		name = fmt.Sprintf("%s-%d.%s", base, i, e.Format)
	}
	e.used[name] = true
	return name
}

// FileName turns a part name into a file name with the format's
// extension. Characters outside [A-Za-z0-9._-] become underscores.
func FileName(part string, f Format) string {
	return baseName(part) + "." + string(f)
}

func baseName(part string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			return r
		}
		return '_'
	}, part)
	if clean == "" {
		clean = "part"
	}
	return clean
}
