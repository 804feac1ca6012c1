package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("gyre", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.OutDir != "." {
		t.Fatalf("expected default out dir, got %q", cfg.OutDir)
	}
	if cfg.Format != "obj" {
		t.Fatalf("expected default format obj, got %q", cfg.Format)
	}
	if cfg.Timeout != 5*time.Second {
		t.Fatalf("expected default timeout 5s, got %s", cfg.Timeout)
	}
	if cfg.Verbose || cfg.RecomputeNormals {
		t.Fatal("expected verbose and smooth to default to false")
	}
}

func TestParseConfigFlags(t *testing.T) {
	fs := flag.NewFlagSet("gyre", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, []string{"-out", "build", "-format", "stl", "-timeout", "2s", "-smooth", "design.gyre"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Input != "design.gyre" {
		t.Fatalf("expected positional input, got %q", cfg.Input)
	}
	if cfg.OutDir != "build" || cfg.Format != "stl" {
		t.Fatalf("unexpected out/format: %q %q", cfg.OutDir, cfg.Format)
	}
	if cfg.Timeout != 2*time.Second {
		t.Fatalf("expected timeout 2s, got %s", cfg.Timeout)
	}
	if !cfg.RecomputeNormals {
		t.Fatal("expected -smooth to set recompute normals")
	}
}

func TestParseConfigEnv(t *testing.T) {
	t.Setenv("GYRE_FORMAT", "stl")
	t.Setenv("GYRE_INPUT", "env.gyre")
	fs := flag.NewFlagSet("gyre", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, []string{"other.gyre"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Format != "stl" {
		t.Fatalf("expected format from env, got %q", cfg.Format)
	}
	if cfg.Input != "env.gyre" {
		t.Fatalf("positional argument should not override env input, got %q", cfg.Input)
	}
}

func TestParseConfigBadDuration(t *testing.T) {
	t.Setenv("GYRE_EVAL_TIMEOUT", "soon")
	fs := flag.NewFlagSet("gyre", flag.ContinueOnError)

	if _, err := ParseConfig(fs, nil); err == nil {
		t.Fatal("expected error for bad GYRE_EVAL_TIMEOUT")
	}
}

func TestRunRequiresInput(t *testing.T) {
	err := Run(context.Background(), Config{Format: "obj"}, nil, nil)
	if err == nil || !strings.Contains(err.Error(), "design file is required") {
		t.Fatalf("expected missing input error, got %v", err)
	}
}

func TestRunRejectsFormat(t *testing.T) {
	err := Run(context.Background(), Config{Input: "x.gyre", Format: "ply"}, nil, nil)
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func writeDesign(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "design.gyre")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("write design: %v", err)
	}
	return path
}

func TestRunWritesParts(t *testing.T) {
	for _, format := range []string{"obj", "stl"} {
		t.Run(format, func(t *testing.T) {
			input := writeDesign(t, `
(defpart "rod" (twist (polygon 4)))
(defpart "coil" (spiral))
`)
			outDir := filepath.Join(t.TempDir(), "out")
			var out, errOut bytes.Buffer

			cfg := Config{Input: input, OutDir: outDir, Format: format, Timeout: 5 * time.Second, Verbose: true}
			if err := Run(context.Background(), cfg, &out, &errOut); err != nil {
				t.Fatalf("run: %v (log: %s)", err, errOut.String())
			}

			paths := strings.Fields(out.String())
			if len(paths) != 2 {
				t.Fatalf("expected 2 output paths, got %q", out.String())
			}
			for _, want := range []string{"rod." + format, "coil." + format} {
				path := filepath.Join(outDir, want)
				info, err := os.Stat(path)
				if err != nil {
					t.Fatalf("missing %s: %v", want, err)
				}
				if info.Size() == 0 {
					t.Fatalf("%s is empty", want)
				}
			}
			if !strings.Contains(errOut.String(), "rod:") {
				t.Fatalf("expected verbose counts in log, got %q", errOut.String())
			}
		})
	}
}

func TestRunReportsErrors(t *testing.T) {
	input := writeDesign(t, `(assembly "a" (part "missing"))`)
	var errOut bytes.Buffer

	cfg := Config{Input: input, OutDir: t.TempDir(), Format: "obj", Timeout: 5 * time.Second}
	err := Run(context.Background(), cfg, nil, &errOut)
	if err == nil {
		t.Fatal("expected error for bad design")
	}
	if !strings.Contains(errOut.String(), "missing") {
		t.Fatalf("expected logged error to name the part, got %q", errOut.String())
	}
}

func TestRunLogsWarnings(t *testing.T) {
	input := writeDesign(t, `(defpart "p" (twist (polygon 2)))`)
	var errOut bytes.Buffer

	cfg := Config{Input: input, OutDir: t.TempDir(), Format: "obj", Timeout: 5 * time.Second}
	if err := Run(context.Background(), cfg, nil, &errOut); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(errOut.String(), "warning:") {
		t.Fatalf("expected a warning line, got %q", errOut.String())
	}
}

func TestRunCancelled(t *testing.T) {
	input := writeDesign(t, `(defpart "p" (twist))`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := Config{Input: input, OutDir: t.TempDir(), Format: "obj", Timeout: 5 * time.Second}
	if err := Run(ctx, cfg, nil, nil); err == nil {
		t.Fatal("expected context error")
	}
}

func TestRunKeepsEveryInstance(t *testing.T) {
	input := writeDesign(t, `
(defpart "bar" (twist (polygon 4) :scale-begin 1 :scale-end 1))
(assembly "pair"
  (place (part "bar") :at (vec3 -5 0 0))
  (place (part "bar") :at (vec3 5 0 0)))
`)
	outDir := t.TempDir()
	var out bytes.Buffer

	cfg := Config{Input: input, OutDir: outDir, Format: "obj", Timeout: 5 * time.Second}
	if err := Run(context.Background(), cfg, &out, nil); err != nil {
		t.Fatalf("run: %v", err)
	}

	paths := strings.Fields(out.String())
	if len(paths) != 2 || paths[0] == paths[1] {
		t.Fatalf("expected two distinct output paths, got %q", out.String())
	}
	first, err := os.ReadFile(filepath.Join(outDir, "bar.obj"))
	if err != nil {
		t.Fatalf("read first instance: %v", err)
	}
	second, err := os.ReadFile(filepath.Join(outDir, "bar-2.obj"))
	if err != nil {
		t.Fatalf("read second instance: %v", err)
	}
	if !strings.Contains(string(first), "\nv -5 1 0\n") {
		t.Errorf("first instance not at x=-5:\n%s", first)
	}
	if !strings.Contains(string(second), "\nv 5 1 0\n") {
		t.Errorf("second instance not at x=5:\n%s", second)
	}
}

func TestRunOBJNormals(t *testing.T) {
	input := writeDesign(t, `(defpart "p" (twist (polygon 3)))`)

	for _, normals := range []bool{false, true} {
		outDir := t.TempDir()
		cfg := Config{Input: input, OutDir: outDir, Format: "obj", Timeout: 5 * time.Second, OBJNormals: normals}
		if err := Run(context.Background(), cfg, nil, nil); err != nil {
			t.Fatalf("run: %v", err)
		}
		data, err := os.ReadFile(filepath.Join(outDir, "p.obj"))
		if err != nil {
			t.Fatalf("read output: %v", err)
		}
		if got := strings.Contains(string(data), "\nvn "); got != normals {
			t.Errorf("normals=%t: vn records present = %t", normals, got)
		}
		if got := strings.Contains(string(data), "//"); got != normals {
			t.Errorf("normals=%t: normal-indexed faces present = %t", normals, got)
		}
	}
}

func TestParseConfigNormalsFlag(t *testing.T) {
	fs := flag.NewFlagSet("gyre", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-normals"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if !cfg.OBJNormals {
		t.Fatal("expected -normals to enable OBJ normals")
	}

	t.Setenv("GYRE_OBJ_NORMALS", "true")
	cfg, err = ParseConfig(flag.NewFlagSet("gyre", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if !cfg.OBJNormals {
		t.Fatal("expected GYRE_OBJ_NORMALS to enable OBJ normals")
	}
}
