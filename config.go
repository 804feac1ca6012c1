package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/chazu/gyre/pkg/engine"
	"github.com/chazu/gyre/pkg/meshio"
)

// Config holds gyre command configuration.
type Config struct {
	Input            string        `env:"GYRE_INPUT"`
	OutDir           string        `env:"GYRE_OUT_DIR"            envDefault:"."`
	Format           string        `env:"GYRE_FORMAT"             envDefault:"obj"`
	Timeout          time.Duration `env:"GYRE_EVAL_TIMEOUT"       envDefault:"5s"`
	Verbose          bool          `env:"GYRE_VERBOSE"`
	RecomputeNormals bool          `env:"GYRE_RECOMPUTE_NORMALS"`
	OBJNormals       bool          `env:"GYRE_OBJ_NORMALS"`
}

// ParseConfig reads the environment, then flags, into a Config. A single
// positional argument is taken as the input file.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&cfg.Input, "in", cfg.Input, "path to design file")
	fs.StringVar(&cfg.OutDir, "out", cfg.OutDir, "directory for exported meshes")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "export format (obj or stl)")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "evaluation timeout")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable verbose logging")
	fs.BoolVar(&cfg.RecomputeNormals, "smooth", cfg.RecomputeNormals, "recompute normals on every twist")
	fs.BoolVar(&cfg.OBJNormals, "normals", cfg.OBJNormals, "write vertex normals into OBJ files")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 && cfg.Input == "" {
		cfg.Input = fs.Arg(0)
	}
	return cfg, nil
}

// Run evaluates the configured design and writes one file per part.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if cfg.Input == "" {
		return errors.New("design file is required")
	}
	format, err := meshio.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	source, err := os.ReadFile(cfg.Input)
	if err != nil {
		return fmt.Errorf("read design: %w", err)
	}

	logger := log.New(errOut, "", 0)
	app := &App{
		engine:           &engine.Engine{Timeout: cfg.Timeout},
		logger:           logger,
		recomputeNormals: cfg.RecomputeNormals,
	}
	meshes, result := app.Build(string(source))
	for _, w := range result.Warnings {
		logger.Printf("warning: %s", w.Message)
	}
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			if e.Line > 0 {
				logger.Printf("error: line %d: %s", e.Line, e.Message)
			} else {
				logger.Printf("error: %s", e.Message)
			}
		}
		return fmt.Errorf("%s: %d errors", cfg.Input, len(result.Errors))
	}

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	exporter := &meshio.Exporter{
		Dir:    cfg.OutDir,
		Format: format,
		OBJ:    meshio.OBJOptions{Normals: cfg.OBJNormals},
	}
	for _, m := range meshes {
		if err := ctx.Err(); err != nil {
			return err
		}
		path, err := exporter.Save(m)
		if err != nil {
			return err
		}
		if cfg.Verbose {
			size := m.Bounds().Size()
			logger.Printf("%s: %d vertices, %d triangles, extent %.3g x %.3g x %.3g",
				m.PartName, m.VertexCount(), m.TriangleCount(), size.X, size.Y, size.Z)
		}
		fmt.Fprintln(out, path)
	}
	return nil
}
