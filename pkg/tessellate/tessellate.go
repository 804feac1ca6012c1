// Package tessellate walks a design graph and produces triangle meshes
// with the sweepers. One mesh is produced per part instance.
package tessellate

import (
	"fmt"

	"github.com/chazu/gyre/pkg/graph"
	"github.com/chazu/gyre/pkg/mesh"
	"github.com/chazu/gyre/pkg/sweep"
	"github.com/go-gl/mathgl/mgl64"
)

// transformStack accumulates spatial transforms during graph traversal.
// The top of the stack is the product of every pushed local transform.
type transformStack struct {
	frames []mgl64.Mat4
}

func newTransformStack() *transformStack {
	return &transformStack{frames: []mgl64.Mat4{mgl64.Ident4()}}
}

func (ts *transformStack) push(local mgl64.Mat4) {
	ts.frames = append(ts.frames, ts.top().Mul4(local))
}

func (ts *transformStack) pop() {
	if len(ts.frames) > 1 {
		ts.frames = ts.frames[:len(ts.frames)-1]
	}
}

// top returns the accumulated transform.
func (ts *transformStack) top() mgl64.Mat4 {
	return ts.frames[len(ts.frames)-1]
}

// Tessellate walks the design graph from its roots and produces one
// triangle mesh per reachable sweep. A part placed twice yields two
// meshes. The tessellator is read-only and never mutates the graph.
func Tessellate(g *graph.DesignGraph) ([]*mesh.Mesh, error) {
	if g == nil {
		return nil, nil
	}

	var meshes []*mesh.Mesh
	ts := newTransformStack()

	for _, rootID := range g.Roots {
		root := g.Get(rootID)
		if root == nil {
			continue
		}
		collected, err := walkNode(g, root, ts)
		if err != nil {
			return nil, fmt.Errorf("tessellate: error walking root %s: %w", rootID.Short(), err)
		}
		meshes = append(meshes, collected...)
	}

	return meshes, nil
}

// walkNode recursively traverses a node and its children, collecting meshes.
func walkNode(g *graph.DesignGraph, n *graph.Node, ts *transformStack) ([]*mesh.Mesh, error) {
	switch n.Kind {
	case graph.NodeSweep:
		return handleSweep(g, n, ts)

	case graph.NodeTransform:
		return handleTransform(g, n, ts)

	case graph.NodeGroup:
		return handleGroup(g, n, ts)

	default:
		return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

// Sweep runs the sweeper a sweep node describes and returns its mesh in
// the part's own frame.
func Sweep(n *graph.Node, d graph.Defaults) (*mesh.Mesh, error) {
	switch data := n.Data.(type) {
	case graph.SpiralData:
		prof, err := data.Profile.Build()
		if err != nil {
			return nil, err
		}
		return sweep.Spiral(prof, data.Params)

	case graph.TwistData:
		prof, err := data.Profile.Build()
		if err != nil {
			return nil, err
		}
		params := data.Params
		params.RecomputeNormals = params.RecomputeNormals || d.RecomputeNormals
		return sweep.Twist(prof, params)
	}
	return nil, fmt.Errorf("sweep node %s has unsupported data type %T", n.ID.Short(), n.Data)
}

// handleSweep creates geometry for a sweep node.
func handleSweep(g *graph.DesignGraph, n *graph.Node, ts *transformStack) ([]*mesh.Mesh, error) {
	m, err := Sweep(n, g.Defaults)
	if err != nil {
		return nil, fmt.Errorf("tessellate: sweep failed for node %s: %w", n.ID.Short(), err)
	}

	if xf := ts.top(); xf != mgl64.Ident4() {
		m.Transform(xf)
	}

	// Set the part name: prefer the node's Name, fall back to short ID.
	m.PartName = n.Label()

	return []*mesh.Mesh{m}, nil
}

// handleTransform pushes the transform, recurses into children, then pops.
func handleTransform(g *graph.DesignGraph, n *graph.Node, ts *transformStack) ([]*mesh.Mesh, error) {
	td, ok := n.Data.(graph.TransformData)
	if !ok {
		return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}

	ts.push(td.Matrix())
	defer ts.pop()

	var meshes []*mesh.Mesh
	for _, child := range g.Children(n) {
		collected, err := walkNode(g, child, ts)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, collected...)
	}
	return meshes, nil
}

// handleGroup recurses into children transparently.
func handleGroup(g *graph.DesignGraph, n *graph.Node, ts *transformStack) ([]*mesh.Mesh, error) {
	var meshes []*mesh.Mesh
	for _, child := range g.Children(n) {
		collected, err := walkNode(g, child, ts)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, collected...)
	}
	return meshes, nil
}
