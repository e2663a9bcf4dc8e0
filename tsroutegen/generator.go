// Package tsroutegen turns a populated declaration registry into the three
// coupled artifacts: the validator module, the OpenAPI document and the
// route-wiring module.
//
// Generation is all-or-nothing: every artifact is rendered in memory and
// the sink is written only after all of them succeeded.
package tsroutegen

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/broady/tsroute/tsroutegen/ir"
	"github.com/broady/tsroute/tsroutegen/openapi"
	"github.com/broady/tsroute/tsroutegen/registry"
	"github.com/broady/tsroute/tsroutegen/routes"
	"github.com/broady/tsroute/tsroutegen/sink"
	"github.com/broady/tsroute/tsroutegen/synth"
	"github.com/broady/tsroute/tsroutegen/validation"
)

// Source performs the first analysis pass: it declares every type,
// controller and router in the registry and returns the decorated
// endpoints to connect.
type Source interface {
	Populate(reg *registry.Registry) ([]*registry.Endpoint, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(reg *registry.Registry) ([]*registry.Endpoint, error)

// Populate calls f(reg).
func (f SourceFunc) Populate(reg *registry.Registry) ([]*registry.Endpoint, error) {
	return f(reg)
}

// Bundle is the in-memory result of one generation run.
type Bundle struct {
	Registry   *registry.Registry
	Synthesis  *synth.Result
	Validators *validation.Module
	Document   *openapi.Document

	// DocumentJSON is the encoded document, as written to Files.
	DocumentJSON []byte

	// DocsPath is where the document is served, under the router prefix.
	DocsPath string

	// Files holds the rendered artifacts in the order validators,
	// document, routes.
	Files []sink.File
}

// Warnings returns every warning recorded during the run.
func (b *Bundle) Warnings() []ir.Warning {
	return b.Registry.Warnings()
}

// Build runs the whole pipeline in memory. A fatal error aborts the run
// and no bundle is returned.
func Build(ctx context.Context, src Source, cfg *Config) (*Bundle, error) {
	cfg = applyConfigDefaults(cfg)
	logger := cfg.Logger

	reg := registry.New(registry.WithLogger(logger))
	endpoints, err := src.Populate(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to populate registry: %w", err)
	}
	connected := reg.ConnectEndpoints(endpoints)
	if reg.Router() == nil && len(reg.Controllers()) > 0 {
		reg.Warn(ir.Warning{
			Code:    ir.CodeMissingRouter,
			Message: "no router declared; controllers are mounted at the root",
		})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := synth.Synthesize(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize schemas: %w", err)
	}
	logger.Debug("synthesized schemas",
		"endpoints", connected,
		"types", len(reg.Types()),
		"relevant", len(res.Order))

	mod, err := validation.Build(res)
	if err != nil {
		return nil, fmt.Errorf("failed to build validators: %w", err)
	}
	validators, err := validation.Emit(mod, validation.EmitOptions{
		Header:          cfg.Header,
		ValidatorModule: cfg.ValidatorModule,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to emit validators: %w", err)
	}

	doc, err := openapi.Emit(reg, res, openapi.Config{
		Title:       cfg.Title,
		Description: cfg.Description,
		Version:     cfg.Version,
		Servers:     cfg.Servers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to emit document: %w", err)
	}
	docJSON, err := openapi.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	if cfg.CheckDocument {
		for _, w := range openapi.Check(ctx, docJSON) {
			reg.Warn(w)
		}
	}

	routesDir := path.Dir(cfg.Files.Routes)
	documentModule, err := relativeModule(routesDir, cfg.Files.Document)
	if err != nil {
		return nil, err
	}
	routesJS, err := routes.Emit(reg, routes.Options{
		Header:          cfg.Header,
		OutDir:          filepath.Join(cfg.OutDir, filepath.FromSlash(routesDir)),
		FrameworkModule: cfg.FrameworkModule,
		ResponsesModule: cfg.ResponsesModule,
		DocumentModule:  documentModule,
		DocsPath:        cfg.DocsPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to emit routes: %w", err)
	}

	return &Bundle{
		Registry:     reg,
		Synthesis:    res,
		Validators:   mod,
		Document:     doc,
		DocumentJSON: docJSON,
		DocsPath:     cfg.DocsPath,
		Files: []sink.File{
			{Path: cfg.Files.Validators, Content: validators},
			{Path: cfg.Files.Document, Content: docJSON},
			{Path: cfg.Files.Routes, Content: routesJS},
		},
	}, nil
}

// relativeModule returns the require path of target (with extension) from dir.
func relativeModule(dir, target string) (string, error) {
	rel, err := filepath.Rel(filepath.FromSlash(dir), filepath.FromSlash(target))
	if err != nil {
		return "", fmt.Errorf("document module: %w", err)
	}
	rel = filepath.ToSlash(rel)
	if rel[0] != '.' {
		rel = "./" + rel
	}
	return rel, nil
}

// GeneratedFile describes one written artifact.
type GeneratedFile struct {
	Path string
	Size int
}

// GenerateResult is the outcome of Generate.
type GenerateResult struct {
	Bundle   *Bundle
	Files    []GeneratedFile
	Warnings []ir.Warning
}

// Generate builds the bundle and writes its files to out. Nothing is
// written when any stage fails.
func Generate(ctx context.Context, src Source, out sink.OutputSink, cfg *Config) (*GenerateResult, error) {
	if out == nil {
		return nil, fmt.Errorf("output sink is required")
	}
	b, err := Build(ctx, src, cfg)
	if err != nil {
		return nil, err
	}
	if err := out.WriteFiles(ctx, b.Files); err != nil {
		return nil, fmt.Errorf("failed to write artifacts: %w", err)
	}

	logger := applyConfigDefaults(cfg).Logger
	result := &GenerateResult{Bundle: b, Warnings: b.Warnings()}
	for _, f := range b.Files {
		result.Files = append(result.Files, GeneratedFile{Path: f.Path, Size: len(f.Content)})
		logger.Info("wrote artifact", "path", f.Path, "size", humanize.Bytes(uint64(len(f.Content))))
	}
	return result, nil
}

// Generator provides a fluent API for code generation.
//
// Example:
//
//	tsroutegen.FromSource(manifest).
//	    Title("Widget API").
//	    CheckDocument().
//	    ToDir(ctx, "./gen")
type Generator struct {
	src Source
	cfg Config
}

// FromSource creates a Generator reading declarations from src.
func FromSource(src Source) *Generator {
	return &Generator{src: src}
}

// Project sets the project name.
func (g *Generator) Project(name string) *Generator {
	g.cfg.Project = name
	return g
}

// Title sets the document title.
func (g *Generator) Title(title string) *Generator {
	g.cfg.Title = title
	return g
}

// Version sets the document version.
func (g *Generator) Version(v string) *Generator {
	g.cfg.Version = v
	return g
}

// Description sets the leading paragraph of the document description.
func (g *Generator) Description(d string) *Generator {
	g.cfg.Description = d
	return g
}

// Server adds a server entry to the document.
func (g *Generator) Server(url, description string) *Generator {
	g.cfg.Servers = append(g.cfg.Servers, openapi.Server{URL: url, Description: description})
	return g
}

// Files overrides the artifact file names. Empty names keep their default.
func (g *Generator) Files(f Files) *Generator {
	g.cfg.Files = f
	return g
}

// DocsPath sets where the document is served under the router prefix.
func (g *Generator) DocsPath(p string) *Generator {
	g.cfg.DocsPath = p
	return g
}

// ResponsesModule sets the module the route handlers forward outcomes to.
func (g *Generator) ResponsesModule(m string) *Generator {
	g.cfg.ResponsesModule = m
	return g
}

// FrameworkModule sets the module providing Router().
func (g *Generator) FrameworkModule(m string) *Generator {
	g.cfg.FrameworkModule = m
	return g
}

// Header sets the comment emitted at the top of generated JavaScript.
func (g *Generator) Header(h string) *Generator {
	g.cfg.Header = h
	return g
}

// CheckDocument enables the OpenAPI compliance check.
func (g *Generator) CheckDocument() *Generator {
	g.cfg.CheckDocument = true
	return g
}

// Logger sets the logger for warnings and progress.
func (g *Generator) Logger(l *slog.Logger) *Generator {
	g.cfg.Logger = l
	return g
}

// Config returns a copy of the accumulated configuration.
func (g *Generator) Config() Config {
	return g.cfg
}

// Build runs the pipeline in memory without writing anything.
func (g *Generator) Build(ctx context.Context) (*Bundle, error) {
	return Build(ctx, g.src, &g.cfg)
}

// ToDir generates files to the specified directory.
func (g *Generator) ToDir(ctx context.Context, dir string) (*GenerateResult, error) {
	g.cfg.OutDir = dir
	return Generate(ctx, g.src, sink.NewFilesystemSink(dir), &g.cfg)
}

// ToSink generates files to out. OutDir is still used to compute the
// controller require paths.
func (g *Generator) ToSink(ctx context.Context, out sink.OutputSink) (*GenerateResult, error) {
	return Generate(ctx, g.src, out, &g.cfg)
}
