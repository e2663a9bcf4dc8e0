package tsroute

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/broady/tsroute/tsroutegen"
	"github.com/broady/tsroute/tsroutegen/ir"
	"github.com/broady/tsroute/tsroutegen/registry"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// widgetSource declares a router mounted at /api with one Widgets
// controller covering every verb.
var widgetSource = tsroutegen.SourceFunc(func(reg *registry.Registry) ([]*registry.Endpoint, error) {
	if _, err := reg.DeclareRouter("Api", "src/api.ts", ir.Documentation{}); err != nil {
		return nil, err
	}
	if err := reg.AttachDecoratorArgs("Api", []ir.DecoratorArg{{Kind: ir.ArgString, Value: "api"}}); err != nil {
		return nil, err
	}
	if _, err := reg.DeclareController("Widgets", "src/widgets.ts", ir.Documentation{}); err != nil {
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
	id := registry.Param{Name: "id", Type: ir.Number(), Tags: []ir.DocTag{{Name: "minimum", Value: "1"}}}
	return []*registry.Endpoint{
		{
			Controller: "Widgets", Method: "list", Verb: registry.VerbGet, Path: "list",
			Params:  []registry.Param{{Name: "limit", Type: ir.Number(), Tags: []ir.DocTag{{Name: "minimum", Value: "1"}}}},
			Returns: ir.Ref("Promise", ir.ArrayOf(ir.Ref("Widget"))),
		},
		{
			Controller: "Widgets", Method: "create", Verb: registry.VerbPost, Path: "create",
			Params:  []registry.Param{{Name: "widget", Type: ir.Ref("Widget")}},
			Returns: ir.Ref("Widget"),
		},
		{
			Controller: "Widgets", Method: "rename", Verb: registry.VerbPut, Path: "rename",
			Params:  []registry.Param{id, {Name: "name", Type: ir.String()}},
			Returns: ir.Ref("Widget"),
		},
		{
			Controller: "Widgets", Method: "remove", Verb: registry.VerbDelete, Path: "remove",
			Params:  []registry.Param{id},
			Returns: ir.Ref("Promise", ir.Undefined()),
		},
		{
			Controller: "Widgets", Method: "tagged", Verb: registry.VerbGet, Path: "tagged",
			Params:  []registry.Param{{Name: "tags", Type: ir.ArrayOf(ir.String())}, {Name: "strict", Type: ir.Boolean()}},
			Returns: ir.ArrayOf(ir.String()),
		},
		{
			Controller: "Widgets", Method: "ping", Verb: registry.VerbAll, Path: "ping",
			Returns: ir.String(),
		},
	}, nil
})

func testBundle(t *testing.T) *tsroutegen.Bundle {
	t.Helper()
	b, err := tsroutegen.Build(context.Background(), widgetSource, &tsroutegen.Config{
		OutDir: "gen",
		Title:  "Widgets",
		Logger: discard,
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return b
}

func testApp(t *testing.T) *App {
	t.Helper()
	return NewApp(testBundle(t)).WithLogger(discard)
}

// echo returns its arguments as the result.
func echo(ctx context.Context, args map[string]any) (any, error) {
	return args, nil
}
