// Package graph defines the design graph for Gyre.
// The design graph is an immutable DAG of swept parts, transforms and
// groups produced by evaluating a design. Nodes live in an arena and are
// addressed by integer handles, so no node owns another.
package graph
