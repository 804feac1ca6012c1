package graph

import "fmt"

// NodeID is a handle into a DesignGraph's node arena.
type NodeID int32

// NoNode is the handle of no node.
const NoNode NodeID = -1

// Valid reports whether id could address a node.
func (id NodeID) Valid() bool { return id >= 0 }

// Short returns a compact printable form of the handle.
func (id NodeID) Short() string {
	if !id.Valid() {
		return "#none"
	}
	return fmt.Sprintf("#%d", int32(id))
}

// NodeKind enumerates the types of nodes in the design graph.
type NodeKind int

const (
	NodeSweep     NodeKind = iota // swept part (spiral, twist)
	NodeTransform                 // spatial transformation (place)
	NodeGroup                     // logical grouping (assembly)
)

func (k NodeKind) String() string {
	switch k {
	case NodeSweep:
		return "sweep"
	case NodeTransform:
		return "transform"
	case NodeGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Node is the fundamental element of the design graph.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data"`
}

// Label returns the node's name, or its handle if it has none.
func (n *Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID.Short()
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}
