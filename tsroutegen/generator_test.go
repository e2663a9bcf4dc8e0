package tsroutegen

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/broady/tsroute/tsroutegen/ir"
	"github.com/broady/tsroute/tsroutegen/registry"
	"github.com/broady/tsroute/tsroutegen/sink"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// widgets declares a router mounted at /api with one Widgets controller.
func widgets(extra ...func(*registry.Registry) error) Source {
	return SourceFunc(func(reg *registry.Registry) ([]*registry.Endpoint, error) {
		if _, err := reg.DeclareRouter("Api", "src/api.ts", ir.Documentation{Summary: "Widget API."}); err != nil {
			return nil, err
		}
		if err := reg.AttachDecoratorArgs("Api", []ir.DecoratorArg{{Kind: ir.ArgString, Value: "api"}}); err != nil {
			return nil, err
		}
		if _, err := reg.DeclareController("Widgets", "src/widgets.ts", ir.Documentation{Summary: "Manage widgets."}); err != nil {
			return nil, err
		}
		if err := reg.AttachDecoratorArgs("Widgets", []ir.DecoratorArg{{Kind: ir.ArgString, Value: "widgets"}}); err != nil {
			return nil, err
		}
		if _, err := reg.DeclareType("Widget", []*registry.Member{
			{Name: "id", Type: ir.Number()},
			{Name: "name", Type: ir.String()},
		}, ir.Documentation{}); err != nil {
			return nil, err
		}
		for _, fn := range extra {
			if err := fn(reg); err != nil {
				return nil, err
			}
		}
		return []*registry.Endpoint{
			{
				Controller: "Widgets", Method: "list", Verb: registry.VerbGet, Path: "list",
				Returns: ir.Ref("Promise", ir.ArrayOf(ir.Ref("Widget"))),
			},
			{
				Controller: "Widgets", Method: "remove", Verb: registry.VerbDelete, Path: "remove",
				Params: []registry.Param{{Name: "id", Type: ir.Number(), Tags: []ir.DocTag{{Name: "minimum", Value: "1"}}}},
			},
		}, nil
	})
}

func TestApplyConfigDefaults(t *testing.T) {
	tests := []struct {
		name  string
		input *Config
		check func(*Config) bool
	}{
		{
			name:  "empty config gets defaults",
			input: &Config{},
			check: func(c *Config) bool {
				return c.Files.Validators == "validators.js" &&
					c.Files.Document == "openapi.json" &&
					c.Files.Routes == "routes.js" &&
					c.Title == "API" &&
					c.Version == "1.0.0" &&
					c.DocsPath == "docs" &&
					c.Logger != nil
			},
		},
		{
			name:  "title from project",
			input: &Config{Project: "widget-shop"},
			check: func(c *Config) bool { return c.Title == "Widget Shop" },
		},
		{
			name: "explicit values preserved",
			input: &Config{
				Project:  "widget-shop",
				Title:    "Widgets",
				Version:  "2.0.0",
				DocsPath: "openapi",
				Files:    Files{Routes: "server/routes.js"},
			},
			check: func(c *Config) bool {
				return c.Title == "Widgets" &&
					c.Version == "2.0.0" &&
					c.DocsPath == "openapi" &&
					c.Files.Routes == "server/routes.js" &&
					c.Files.Document == "openapi.json"
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := *tt.input
			got := applyConfigDefaults(tt.input)
			if !tt.check(got) {
				t.Errorf("applyConfigDefaults() = %+v", got)
			}
			if tt.input.Title != before.Title || tt.input.Files != before.Files {
				t.Error("applyConfigDefaults() mutated its input")
			}
		})
	}
}

func TestApplyConfigDefaults_Nil(t *testing.T) {
	got := applyConfigDefaults(nil)
	if got.Files.Routes != DefaultRoutesFile || got.DocsPath != "docs" || got.Logger == nil {
		t.Errorf("applyConfigDefaults(nil) = %+v", got)
	}
}

func TestProjectTitle(t *testing.T) {
	tests := map[string]string{
		"":               "API",
		"widgets":        "Widgets",
		"widget-shop":    "Widget Shop",
		"my_cool.api":    "My Cool Api",
		"  spaced  out ": "Spaced Out",
	}
	for in, want := range tests {
		if got := projectTitle(in); got != want {
			t.Errorf("projectTitle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuild(t *testing.T) {
	b, err := Build(context.Background(), widgets(), &Config{OutDir: "gen", Logger: discard})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	var paths []string
	for _, f := range b.Files {
		paths = append(paths, f.Path)
	}
	if got := strings.Join(paths, ","); got != "validators.js,openapi.json,routes.js" {
		t.Errorf("file order = %s", got)
	}

	for _, p := range []string{"/api/widgets/list", "/api/widgets/remove"} {
		if _, ok := b.Document.Paths[p]; !ok {
			t.Errorf("document missing path %s", p)
		}
	}
	if b.Document.Components == nil || b.Document.Components.Schemas["Widget"] == nil {
		t.Error("document missing Widget component")
	}

	remove, ok := b.Validators.Endpoint("Widgets.remove")
	if !ok {
		t.Fatal("no validator for Widgets.remove")
	}
	if ok, err := remove.Validate(remove.ArgsToSchema([]any{2})); !ok {
		t.Errorf("Validate(id=2) = false, %v", err)
	}
	if ok, _ := remove.Validate(remove.ArgsToSchema([]any{0})); ok {
		t.Error("Validate(id=0) = true, want minimum violation")
	}

	routesJS := string(b.Files[2].Content)
	for _, want := range []string{
		`require("./openapi.json")`,
		`require("../src/widgets").Widgets`,
		`app.use("/api/widgets", widgetsRouter);`,
		`app.get("/api/docs"`,
	} {
		if !strings.Contains(routesJS, want) {
			t.Errorf("routes.js missing %s\n%s", want, routesJS)
		}
	}
	if !strings.Contains(string(b.Files[0].Content), "Widgets.remove") {
		t.Error("validators.js missing Widgets.remove")
	}
	if len(b.Warnings()) != 0 {
		t.Errorf("Warnings() = %v, want none", b.Warnings())
	}
}

func TestBuild_NestedRoutesFile(t *testing.T) {
	cfg := &Config{OutDir: "gen", Files: Files{Routes: "server/routes.js"}, Logger: discard}
	b, err := Build(context.Background(), widgets(), cfg)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	routesJS := string(b.Files[2].Content)
	if !strings.Contains(routesJS, `require("../openapi.json")`) {
		t.Errorf("routes.js does not require the document relative to its directory:\n%s", routesJS)
	}
	if !strings.Contains(routesJS, `require("../../src/widgets")`) {
		t.Errorf("routes.js does not require the controller relative to its directory:\n%s", routesJS)
	}
}

func TestBuild_Warnings(t *testing.T) {
	src := SourceFunc(func(reg *registry.Registry) ([]*registry.Endpoint, error) {
		if _, err := reg.DeclareController("Widgets", "src/widgets.ts", ir.Documentation{}); err != nil {
			return nil, err
		}
		return []*registry.Endpoint{
			{Controller: "Widgets", Method: "list", Verb: registry.VerbGet, Path: "list"},
			{Controller: "Gadgets", Method: "stray", Verb: registry.VerbPost, Path: "stray"},
		}, nil
	})
	b, err := Build(context.Background(), src, &Config{Logger: discard})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	codes := map[ir.ErrorCode]bool{}
	for _, w := range b.Warnings() {
		codes[w.Code] = true
	}
	for _, want := range []ir.ErrorCode{ir.CodeUnattachedEndpoint, ir.CodeMissingRouter} {
		if !codes[want] {
			t.Errorf("missing %s warning in %v", want, b.Warnings())
		}
	}
	if _, ok := b.Document.Paths["/Widgets/list"]; !ok {
		t.Errorf("paths = %v, want /Widgets/list", b.Document.Paths)
	}
}

func TestBuild_CheckDocument(t *testing.T) {
	b, err := Build(context.Background(), widgets(), &Config{CheckDocument: true, Logger: discard})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	for _, w := range b.Warnings() {
		if w.Code == ir.CodeDocumentCompliance {
			t.Errorf("unexpected compliance warning: %s", w.Message)
		}
	}
}

func TestGenerate_FatalWritesNothing(t *testing.T) {
	tests := []struct {
		name string
		src  Source
		want error
	}{
		{
			name: "undefined type",
			src: SourceFunc(func(reg *registry.Registry) ([]*registry.Endpoint, error) {
				eps, err := widgets().Populate(reg)
				return append(eps, &registry.Endpoint{
					Controller: "Widgets", Method: "create", Verb: registry.VerbPost, Path: "create",
					Params: []registry.Param{{Name: "g", Type: ir.Ref("Gadget")}},
				}), err
			}),
			want: &ir.Error{Code: ir.CodeUndefinedType, Name: "Gadget"},
		},
		{
			name: "duplicate declaration",
			src: widgets(func(reg *registry.Registry) error {
				_, err := reg.DeclareType("Widgets", nil, ir.Documentation{})
				return err
			}),
			want: ir.ErrDuplicateDeclaration,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := sink.NewMemorySink()
			_, err := Generate(context.Background(), tt.src, out, &Config{Logger: discard})
			if !errors.Is(err, tt.want) {
				t.Fatalf("Generate() error = %v, want %v", err, tt.want)
			}
			if paths := out.Paths(); len(paths) != 0 {
				t.Errorf("sink received %v after a fatal error", paths)
			}
		})
	}
}

func TestGenerate_PopulateError(t *testing.T) {
	boom := errors.New("boom")
	src := SourceFunc(func(*registry.Registry) ([]*registry.Endpoint, error) { return nil, boom })
	_, err := Generate(context.Background(), src, sink.NewMemorySink(), &Config{Logger: discard})
	if !errors.Is(err, boom) {
		t.Errorf("Generate() error = %v, want wrapping boom", err)
	}
}

func TestGenerate_RequiresSink(t *testing.T) {
	if _, err := Generate(context.Background(), widgets(), nil, &Config{}); err == nil {
		t.Error("Generate() with nil sink succeeded")
	}
}

func TestGenerate_NilConfig(t *testing.T) {
	out := sink.NewMemorySink()
	result, err := Generate(context.Background(), widgets(), out, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(result.Files) != 3 {
		t.Fatalf("len(Files) = %d, want 3", len(result.Files))
	}
	if got := result.Bundle.Document.Info.Version; got != "1.0.0" {
		t.Errorf("Info.Version = %q, want default 1.0.0", got)
	}
	if len(out.Get(DefaultRoutesFile)) == 0 {
		t.Errorf("sink has no %s", DefaultRoutesFile)
	}
}

func TestGenerator_ToSink(t *testing.T) {
	out := sink.NewMemorySink()
	result, err := FromSource(widgets()).
		Project("widget-shop").
		Version("0.3.0").
		Server("https://api.example.com", "production").
		Logger(discard).
		ToSink(context.Background(), out)
	if err != nil {
		t.Fatalf("ToSink() error = %v", err)
	}
	if len(result.Files) != 3 {
		t.Fatalf("len(Files) = %d, want 3", len(result.Files))
	}
	for _, f := range result.Files {
		if got := len(out.Get(f.Path)); got != f.Size || got == 0 {
			t.Errorf("%s: sink has %d bytes, result reports %d", f.Path, got, f.Size)
		}
	}
	doc := result.Bundle.Document
	if doc.Info.Title != "Widget Shop" || doc.Info.Version != "0.3.0" {
		t.Errorf("Info = %+v", doc.Info)
	}
	if len(doc.Servers) != 1 || doc.Servers[0].URL != "https://api.example.com" {
		t.Errorf("Servers = %+v", doc.Servers)
	}
	if !strings.Contains(doc.Info.Description, "Widgets: Manage widgets.") {
		t.Errorf("Description = %q", doc.Info.Description)
	}
}

func TestGenerator_ToDir(t *testing.T) {
	dir := t.TempDir()
	_, err := FromSource(widgets()).Logger(discard).ToDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("ToDir() error = %v", err)
	}
	for _, name := range []string{"validators.js", "openapi.json", "routes.js"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestRelativeModule(t *testing.T) {
	tests := []struct {
		dir, target, want string
	}{
		{".", "openapi.json", "./openapi.json"},
		{"server", "openapi.json", "../openapi.json"},
		{".", "docs/openapi.json", "./docs/openapi.json"},
		{"server", "server/openapi.json", "./openapi.json"},
	}
	for _, tt := range tests {
		got, err := relativeModule(tt.dir, tt.target)
		if err != nil {
			t.Fatalf("relativeModule(%q, %q) error = %v", tt.dir, tt.target, err)
		}
		if got != tt.want {
			t.Errorf("relativeModule(%q, %q) = %q, want %q", tt.dir, tt.target, got, tt.want)
		}
	}
}
