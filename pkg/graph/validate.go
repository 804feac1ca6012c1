package graph

import (
	"fmt"

	"github.com/chazu/gyre/pkg/profile"
	"github.com/chazu/gyre/pkg/sweep"
)

// LargeMeshVertices is the vertex count above which a sweep draws a
// warning.
const LargeMeshVertices = 200_000

// ValidationSeverity indicates whether a validation finding blocks evaluation
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks evaluation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (NoNode if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if !e.NodeID.Valid() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	NodeID  NodeID
	Message string
}

// ValidationResult bundles errors (blocking) and warnings (advisory).
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether the result holds no blocking errors.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Validate runs the structural checks on the design graph and returns
// every finding. An empty slice means the graph is valid. This function is
// read-only and never mutates the graph.
func Validate(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(g)...)
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateNames(g)...)
	errs = append(errs, validateRoots(g)...)
	errs = append(errs, validateSweeps(g)...)
	return errs
}

// ValidateAll runs Validate and the mesh budget check and returns a
// ValidationResult with separated errors and warnings.
func ValidateAll(g *DesignGraph) ValidationResult {
	findings := Validate(g)
	findings = append(findings, validateMeshBudget(g)...)

	var result ValidationResult
	for _, e := range findings {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{
				NodeID:  e.NodeID,
				Message: e.Message,
			})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	return result
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = in current DFS path, black (2) = fully explored.
func validateDAG(g *DesignGraph) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make([]int, len(g.Nodes))
	var errs []ValidationError

	var visit func(id NodeID) bool // returns true if cycle found
	visit = func(id NodeID) bool {
		node := g.Get(id)
		if node == nil {
			// Dangling reference; handled by validateReferences.
			return false
		}
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray
		for _, childID := range node.Children {
			if visit(childID) {
				return true
			}
		}
		color[id] = black
		return false
	}

	for i := range g.Nodes {
		if color[i] == white && visit(NodeID(i)) {
			// One cycle error is sufficient.
			break
		}
	}
	return errs
}

// validateReferences checks that every child handle addresses a node and
// that transforms wrap something.
func validateReferences(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		for _, childID := range node.Children {
			if !g.Has(childID) {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("child reference %s does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}
		if node.Kind == NodeTransform && len(node.Children) == 0 {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  "transform has no children",
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// validateNames checks that the NameIndex is injective (no two nodes share the
// same name) and that every entry in NameIndex points to an existing node.
func validateNames(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for name, id := range g.NameIndex {
		if !g.Has(id) {
			errs = append(errs, ValidationError{
				NodeID:   NoNode,
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		}
	}

	seen := make(map[string]int)
	for _, node := range g.Nodes {
		if node.Name != "" {
			seen[node.Name]++
		}
	}
	for name, count := range seen {
		if count > 1 {
			errs = append(errs, ValidationError{
				NodeID:   NoNode,
				Message:  fmt.Sprintf("duplicate name %q assigned to %d nodes", name, count),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateRoots checks that every root ID references an existing node and
// warns about orphan nodes (nodes unreachable from any root).
func validateRoots(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, rid := range g.Roots {
		if !g.Has(rid) {
			errs = append(errs, ValidationError{
				NodeID:   NoNode,
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
		}
	}
	if len(g.Nodes) == 0 {
		return errs
	}

	reachable := make([]bool, len(g.Nodes))
	queue := make([]NodeID, 0, len(g.Roots))
	for _, rid := range g.Roots {
		if g.Has(rid) && !reachable[rid] {
			reachable[rid] = true
			queue = append(queue, rid)
		}
	}
	for len(queue) > 0 {
		node := g.Get(queue[0])
		queue = queue[1:]
		for _, childID := range node.Children {
			if g.Has(childID) && !reachable[childID] {
				reachable[childID] = true
				queue = append(queue, childID)
			}
		}
	}

	for i, node := range g.Nodes {
		if !reachable[i] {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("node %q is not reachable from any root (orphan)", node.Label()),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// validateSweeps checks that sweep nodes are leaves carrying sweep data
// with a buildable profile.
func validateSweeps(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	add := func(n *Node, sev ValidationSeverity, format string, args ...any) {
		errs = append(errs, ValidationError{
			NodeID:   n.ID,
			Message:  fmt.Sprintf(format, args...),
			Severity: sev,
		})
	}

	for _, node := range g.Nodes {
		if node.Kind != NodeSweep {
			continue
		}
		if len(node.Children) > 0 {
			add(node, SeverityError, "sweep has %d children, want none", len(node.Children))
		}

		var spec profile.Spec
		switch d := node.Data.(type) {
		case SpiralData:
			spec = d.Profile
		case TwistData:
			spec = d.Profile
		default:
			add(node, SeverityError, "sweep carries %T, want spiral or twist data", node.Data)
			continue
		}

		switch spec.Kind {
		case profile.KindPolygon:
			if spec.Sides < 3 {
				add(node, SeverityWarning, "polygon with %d sides is raised to 3", spec.Sides)
			}
		case profile.KindArch:
			if spec.Segments < 1 {
				add(node, SeverityWarning, "arch with %d segments is raised to 1", spec.Segments)
			}
			if spec.Angle <= 0 || spec.Angle > 360 {
				add(node, SeverityWarning, "arch angle %g is outside (0, 360]", spec.Angle)
			}
		default:
			add(node, SeverityError, "unknown profile kind %s", spec.Kind)
		}
	}
	return errs
}

// validateMeshBudget warns about sweeps whose mesh would be very large.
func validateMeshBudget(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	for _, node := range g.Parts() {
		l, ok := layoutOf(node)
		if !ok {
			continue
		}
		if v := l.VertexCount(); v > LargeMeshVertices {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("sweep %q produces %d vertices", node.Label(), v),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// layoutOf returns the mesh topology a sweep node would produce.
func layoutOf(n *Node) (sweep.Layout, bool) {
	switch d := n.Data.(type) {
	case SpiralData:
		prof, err := d.Profile.Build()
		if err != nil {
			return sweep.Layout{}, false
		}
		return d.Params.Layout(prof), true
	case TwistData:
		prof, err := d.Profile.Build()
		if err != nil {
			return sweep.Layout{}, false
		}
		return d.Params.Layout(prof), true
	}
	return sweep.Layout{}, false
}
