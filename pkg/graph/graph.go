package graph

import "fmt"

// Defaults contains graph-wide settings applied during tessellation.
type Defaults struct {
	RecomputeNormals bool `json:"recomputeNormals"` // force smoothing on every twist
}

// DesignGraph is the top-level immutable data structure produced by Lisp evaluation.
// It is never mutated in place; each evaluation produces a new graph.
// Nodes live in an arena indexed by NodeID.
type DesignGraph struct {
	Nodes     []*Node           `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"nameIndex"`
	Defaults  Defaults          `json:"defaults"`
}

// New creates an empty DesignGraph with default settings.
func New() *DesignGraph {
	return &DesignGraph{
		NameIndex: make(map[string]NodeID),
	}
}

// AddNode appends n to the arena, sets n.ID and returns it. It does not
// check for duplicate names; Validate reports those.
func (g *DesignGraph) AddNode(n *Node) NodeID {
	n.ID = NodeID(len(g.Nodes))
	g.Nodes = append(g.Nodes, n)
	if n.Name != "" {
		g.NameIndex[n.Name] = n.ID
	}
	return n.ID
}

// AddRoot registers a node ID as a root of the graph.
func (g *DesignGraph) AddRoot(id NodeID) {
	g.Roots = append(g.Roots, id)
}

// Lookup returns the node with the given user-assigned name, or nil.
func (g *DesignGraph) Lookup(name string) *Node {
	id, ok := g.NameIndex[name]
	if !ok {
		return nil
	}
	return g.Get(id)
}

// MustLookup returns the node with the given name, or panics.
func (g *DesignGraph) MustLookup(name string) *Node {
	n := g.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("graph: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (g *DesignGraph) Get(id NodeID) *Node {
	if !id.Valid() || int(id) >= len(g.Nodes) {
		return nil
	}
	return g.Nodes[id]
}

// Has reports whether id addresses a node of g.
func (g *DesignGraph) Has(id NodeID) bool {
	return g.Get(id) != nil
}

// Parts returns all sweep nodes in arena order.
func (g *DesignGraph) Parts() []*Node {
	var parts []*Node
	for _, n := range g.Nodes {
		if n.Kind == NodeSweep {
			parts = append(parts, n)
		}
	}
	return parts
}

// Children returns the child nodes of the given node.
func (g *DesignGraph) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := g.Get(cid); c != nil {
			children = append(children, c)
		}
	}
	return children
}

// NodeCount returns the total number of nodes.
func (g *DesignGraph) NodeCount() int {
	return len(g.Nodes)
}
