package main

import (
	"log"

	"github.com/chazu/gyre/pkg/engine"
	"github.com/chazu/gyre/pkg/mesh"
	"github.com/chazu/gyre/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App evaluates designs into meshes. It is the layer a viewer or the
// command line talks to.
type App struct {
	engine *engine.Engine
	logger *log.Logger

	// recomputeNormals smooths every twist regardless of the design.
	recomputeNormals bool
}

// MeshData is the JSON-serializable mesh format sent to viewers.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of evaluating a design.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates a new App with a default engine that logs through the
// standard logger.
func NewApp() *App {
	return &App{
		engine: engine.NewEngine(),
		logger: log.Default(),
	}
}

// Build evaluates source and tessellates the resulting graph. The meshes
// are nil whenever the result carries errors.
func (a *App) Build(source string) ([]*mesh.Mesh, EvalResult) {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the Lisp source into a validated design graph.
	res, err := a.engine.Check(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		a.logger.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return nil, result
	}

	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{
			Line:    w.Line,
			Col:     w.Col,
			Message: w.Message,
		})
	}

	// Step 2: Convert eval and validation errors.
	if !res.OK() {
		for _, e := range res.Errors {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return nil, result
	}

	// Step 3: Sweep every placed part.
	if a.recomputeNormals {
		res.Graph.Defaults.RecomputeNormals = true
	}
	meshes, err := tessellate.Tessellate(res.Graph)
	if err != nil {
		a.logger.Printf("Tessellate error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return nil, result
	}

	// Step 4: Flatten meshes for viewers.
	for i, m := range meshes {
		vertices, normals, indices := m.Flatten()
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: vertices,
			Normals:  normals,
			Indices:  indices,
			PartName: m.PartName,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}

	return meshes, result
}

// Evaluate takes Lisp source and returns mesh data + errors.
func (a *App) Evaluate(source string) EvalResult {
	_, result := a.Build(source)
	return result
}
