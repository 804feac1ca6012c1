package tessellate_test

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/gyre/pkg/graph"
	"github.com/chazu/gyre/pkg/profile"
	"github.com/chazu/gyre/pkg/sweep"
	"github.com/chazu/gyre/pkg/tessellate"
	"github.com/go-gl/mathgl/mgl64"
)

func vec3Equal(a, b mgl64.Vec3, tolerance float64) bool {
	return math.Abs(a.X()-b.X()) < tolerance &&
		math.Abs(a.Y()-b.Y()) < tolerance &&
		math.Abs(a.Z()-b.Z()) < tolerance
}

// makeTwist creates a twist sweep node over a polygon.
func makeTwist(name string, sides int, params sweep.TwistParams) *graph.Node {
	return &graph.Node{
		Kind: graph.NodeSweep,
		Name: name,
		Data: graph.TwistData{
			Profile: profile.Spec{Kind: profile.KindPolygon, Sides: sides},
			Params:  params,
		},
	}
}

// makeSpiral creates a spiral sweep node over the default arch.
func makeSpiral(name string) *graph.Node {
	return &graph.Node{
		Kind: graph.NodeSweep,
		Name: name,
		Data: graph.SpiralData{
			Profile: profile.DefaultArch,
			Params:  sweep.DefaultSpiral(),
		},
	}
}

// makePlace creates a transform node with a translation and rotation.
func makePlace(at, rotate *graph.Vec3, children ...graph.NodeID) *graph.Node {
	return &graph.Node{
		Kind:     graph.NodeTransform,
		Children: children,
		Data:     graph.TransformData{Translation: at, Rotation: rotate},
	}
}

// makeGroup creates a group node with children.
func makeGroup(name string, children ...graph.NodeID) *graph.Node {
	return &graph.Node{
		Kind:     graph.NodeGroup,
		Name:     name,
		Children: children,
		Data:     graph.GroupData{Description: name},
	}
}

// unitTwist is a one-segment twist with no scale or rotation.
func unitTwist() sweep.TwistParams {
	return sweep.TwistParams{Length: 1, Segments: 1, ScaleBegin: 1, ScaleEnd: 1}
}

func TestSingleTwist(t *testing.T) {
	g := graph.New()
	g.AddRoot(g.AddNode(makeTwist("bar", 5, unitTwist())))

	meshes, err := tessellate.Tessellate(g)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}

	m := meshes[0]
	if m.PartName != "bar" {
		t.Errorf("expected PartName %q, got %q", "bar", m.PartName)
	}
	if m.VertexCount() != 12 || m.TriangleCount() != 10 {
		t.Errorf("counts = %d/%d, want 12/10", m.VertexCount(), m.TriangleCount())
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestTwoParts(t *testing.T) {
	g := graph.New()
	g.AddRoot(g.AddNode(makeTwist("shaft", 6, sweep.DefaultTwist())))
	g.AddRoot(g.AddNode(makeSpiral("coil")))

	meshes, err := tessellate.Tessellate(g)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(meshes))
	}

	names := map[string]bool{}
	for _, m := range meshes {
		if m.IsEmpty() {
			t.Error("mesh should not be empty")
		}
		names[m.PartName] = true
	}
	if !names["shaft"] {
		t.Error("missing mesh for shaft")
	}
	if !names["coil"] {
		t.Error("missing mesh for coil")
	}
}

func TestPartWithTransform(t *testing.T) {
	g := graph.New()
	bar := g.AddNode(makeTwist("bar", 4, unitTwist()))
	g.AddRoot(g.AddNode(makePlace(&graph.Vec3{X: 200, Y: 100, Z: 50}, nil, bar)))

	meshes, err := tessellate.Tessellate(g)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}

	// The first square vertex (0,1,0) lands at the placement offset plus
	// one in Y; the second ring sits one unit higher.
	m := meshes[0]
	if got := m.Positions[0]; !vec3Equal(got, mgl64.Vec3{200, 101, 50}, 1e-9) {
		t.Errorf("vertex 0 = %v, want (200,101,50)", got)
	}
	if got := m.Positions[5]; !vec3Equal(got, mgl64.Vec3{200, 101, 51}, 1e-9) {
		t.Errorf("vertex 5 = %v, want (200,101,51)", got)
	}
	// Translation leaves normals alone.
	if got := m.Normals[0]; !vec3Equal(got, mgl64.Vec3{0, 1, 0}, 1e-9) {
		t.Errorf("normal 0 = %v, want (0,1,0)", got)
	}
}

func TestRotationRotatesNormals(t *testing.T) {
	g := graph.New()
	bar := g.AddNode(makeTwist("bar", 4, unitTwist()))
	g.AddRoot(g.AddNode(makePlace(nil, &graph.Vec3{X: 0, Y: 0, Z: 90}, bar)))

	meshes, err := tessellate.Tessellate(g)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	m := meshes[0]
	if got := m.Positions[0]; !vec3Equal(got, mgl64.Vec3{-1, 0, 0}, 1e-9) {
		t.Errorf("vertex 0 = %v, want (-1,0,0)", got)
	}
	if got := m.Normals[0]; !vec3Equal(got, mgl64.Vec3{-1, 0, 0}, 1e-9) {
		t.Errorf("normal 0 = %v, want (-1,0,0)", got)
	}
}

func TestNestedTransformsCompose(t *testing.T) {
	g := graph.New()
	bar := g.AddNode(makeTwist("bar", 4, unitTwist()))
	inner := g.AddNode(makePlace(&graph.Vec3{X: 10}, nil, bar))
	// Outer rotation applies to the inner translation: +X becomes +Y.
	g.AddRoot(g.AddNode(makePlace(&graph.Vec3{Z: 5}, &graph.Vec3{Z: 90}, inner)))

	meshes, err := tessellate.Tessellate(g)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	// (0,1,0) + (10,0,0) = (10,1,0), rotated to (-1,10,0), lifted to z=5.
	if got := meshes[0].Positions[0]; !vec3Equal(got, mgl64.Vec3{-1, 10, 5}, 1e-9) {
		t.Errorf("vertex 0 = %v, want (-1,10,5)", got)
	}
}

func TestSharedPartPlacedTwice(t *testing.T) {
	g := graph.New()
	bar := g.AddNode(makeTwist("bar", 3, unitTwist()))
	left := g.AddNode(makePlace(&graph.Vec3{X: -5}, nil, bar))
	right := g.AddNode(makePlace(&graph.Vec3{X: 5}, nil, bar))
	g.AddRoot(g.AddNode(makeGroup("pair", left, right)))

	meshes, err := tessellate.Tessellate(g)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(meshes))
	}
	dx := meshes[1].Positions[0].X() - meshes[0].Positions[0].X()
	if math.Abs(dx-10) > 1e-9 {
		t.Errorf("instances are %g apart in X, want 10", dx)
	}
	// The second transform must not leak into siblings.
	if got := meshes[0].Positions[0]; !vec3Equal(got, mgl64.Vec3{-5, 1, 0}, 1e-9) {
		t.Errorf("first instance vertex 0 = %v, want (-5,1,0)", got)
	}
}

func TestAnonymousPartName(t *testing.T) {
	g := graph.New()
	n := makeTwist("", 3, unitTwist())
	g.AddRoot(g.AddNode(n))

	meshes, err := tessellate.Tessellate(g)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if meshes[0].PartName != "#0" {
		t.Errorf("PartName = %q, want #0", meshes[0].PartName)
	}
}

func TestDefaultsRecomputeNormals(t *testing.T) {
	g := graph.New()
	g.Defaults.RecomputeNormals = true
	g.AddRoot(g.AddNode(makeTwist("bar", 8, sweep.DefaultTwist())))

	meshes, err := tessellate.Tessellate(g)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	// Analytic normals of a scale-2 profile are unscaled profile points of
	// length 1; recomputed ones are unit too but no longer radial on the
	// seam. Check unit length and that the sweep was smoothed at all.
	analytic, err := tessellate.Sweep(g.Get(0), graph.Defaults{})
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	differs := false
	for i, n := range meshes[0].Normals {
		if math.Abs(n.Len()-1) > 1e-9 {
			t.Fatalf("normal %d has length %g", i, n.Len())
		}
		if !vec3Equal(n, analytic.Normals[i], 1e-9) {
			differs = true
		}
	}
	if !differs {
		t.Error("graph default did not recompute normals")
	}
}

func TestEmptyGraph(t *testing.T) {
	meshes, err := tessellate.Tessellate(graph.New())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 0 {
		t.Errorf("expected 0 meshes, got %d", len(meshes))
	}

	meshes, err = tessellate.Tessellate(nil)
	if err != nil || meshes != nil {
		t.Errorf("Tessellate(nil) = %v, %v", meshes, err)
	}
}

func TestBadSweepData(t *testing.T) {
	g := graph.New()
	g.AddRoot(g.AddNode(&graph.Node{Kind: graph.NodeSweep, Name: "bad", Data: graph.GroupData{}}))

	_, err := tessellate.Tessellate(g)
	if err == nil || !strings.Contains(err.Error(), "unsupported data type") {
		t.Errorf("expected unsupported data error, got %v", err)
	}
}

func TestUnknownProfileKind(t *testing.T) {
	g := graph.New()
	g.AddRoot(g.AddNode(&graph.Node{
		Kind: graph.NodeSweep,
		Data: graph.TwistData{Profile: profile.Spec{Kind: 9}, Params: sweep.DefaultTwist()},
	}))

	if _, err := tessellate.Tessellate(g); err == nil {
		t.Error("expected error for unknown profile kind")
	}
}
