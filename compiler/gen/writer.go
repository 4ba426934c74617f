package gen

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"

	"github.com/syssam/strata/compiler/load"
)

// PackageFile is the name of the registry file.
const PackageFile = "strata.go"

// Generator writes the package described by an entity spec.
type Generator struct {
	cfg  *Config
	spec *load.Spec

	mu      sync.Mutex
	metrics Metrics
}

// Metrics tracks generation output.
type Metrics struct {
	FilesGenerated int
	TotalBytes     int64
	Files          []string
}

// New returns a generator for spec.
func New(spec *load.Spec, opts ...Option) (*Generator, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg, spec: spec}, nil
}

// Metrics returns the generation metrics. File names are sorted.
func (g *Generator) Metrics() Metrics {
	g.mu.Lock()
	defer g.mu.Unlock()
	m := g.metrics
	m.Files = append([]string(nil), m.Files...)
	slices.Sort(m.Files)
	return m
}

// fileTask is a single file to render.
type fileTask struct {
	name   string
	render func() *jen.File
}

// Generate writes one file per entity plus the registry file, in
// parallel.
func (g *Generator) Generate(ctx context.Context) error {
	if err := os.MkdirAll(g.cfg.Target, 0o755); err != nil {
		return fmt.Errorf("gen: create output directory: %w", err)
	}
	files := make([]fileTask, 0, len(g.spec.Entities)+1)
	for _, e := range g.spec.Entities {
		e := e
		files = append(files, fileTask{name: fileName(e), render: func() *jen.File { return g.genEntity(e) }})
	}
	files = append(files, fileTask{name: PackageFile, render: g.genPackage})

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.Workers)
	for _, f := range files {
		f := f
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return g.generateFile(f)
			}
		})
	}
	return eg.Wait()
}

func (g *Generator) generateFile(f fileTask) error {
	var buf bytes.Buffer
	if err := f.render().Render(&buf); err != nil {
		return &GenerateError{File: f.name, Cause: err}
	}
	path := filepath.Join(g.cfg.Target, f.name)
	formatted, err := imports.Process(path, buf.Bytes(), nil)
	if err != nil {
		// Keep the unformatted source next to the target for debugging.
		_ = os.WriteFile(path+".error", buf.Bytes(), 0o644)
		return &GenerateError{File: f.name, Cause: err}
	}
	if err := os.WriteFile(path, formatted, 0o644); err != nil {
		return &GenerateError{File: f.name, Cause: err}
	}
	g.mu.Lock()
	g.metrics.FilesGenerated++
	g.metrics.TotalBytes += int64(len(formatted))
	g.metrics.Files = append(g.metrics.Files, f.name)
	g.mu.Unlock()
	return nil
}
