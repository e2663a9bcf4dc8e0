package synth

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/tsroute/tsroutegen/ir"
	"github.com/broady/tsroute/tsroutegen/registry"
	"github.com/broady/tsroute/tsroutegen/schema"
)

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	return registry.New(registry.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func declare(t *testing.T, reg *registry.Registry, name string, members ...*registry.Member) *registry.TypeDecl {
	t.Helper()
	d, err := reg.DeclareType(name, members, ir.Documentation{})
	require.NoError(t, err)
	return d
}

func member(name string, typ ir.TypeNode) *registry.Member {
	return &registry.Member{Name: name, Type: typ}
}

func toJSON(t *testing.T, f *schema.Fragment) string {
	t.Helper()
	if f == nil {
		return "null"
	}
	data, err := json.Marshal(f)
	require.NoError(t, err)
	return string(data)
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		node ir.TypeNode
		want string
	}{
		{"string", ir.String(), `{"type":"string"}`},
		{"number", ir.Number(), `{"type":"number"}`},
		{"boolean", ir.Boolean(), `{"type":"boolean"}`},
		{"null", ir.Null(), `{"type":"null"}`},
		{"object keyword", ir.Object(), `{"type":"object"}`},
		{"any", ir.Any(), `{}`},
		{"undefined", ir.Undefined(), `null`},
		{"symbol", ir.Symbol(), `null`},
		{"function", ir.Function(), `null`},
		{"array of string", ir.ArrayOf(ir.String()), `{"type":"array","items":{"type":"string"}}`},
		{"Array<T>", ir.Ref("Array", ir.Number()), `{"type":"array","items":{"type":"number"}}`},
		{"Object builtin", ir.Ref("Object"), `{"type":"object"}`},
		{"String builtin", ir.Ref("String"), `{"type":"string"}`},
		{"Number builtin", ir.Ref("Number"), `{"type":"number"}`},
		{"Boolean builtin", ir.Ref("Boolean"), `{"type":"boolean"}`},
		{"reference", ir.Ref("Widget"), `{"$ref":"#/definitions/Widget"}`},
		{"union", ir.UnionOf(ir.String(), ir.Number()), `{"oneOf":[{"type":"string"},{"type":"number"}]}`},
		{"union skips no-schema members", ir.UnionOf(ir.String(), ir.Undefined()), `{"oneOf":[{"type":"string"}]}`},
		{"union of no-schema members", ir.UnionOf(ir.Undefined(), ir.Function()), `null`},
		{"string literal", ir.Lit("red"), `{"type":"string","oneOf":[{"format":"red"}]}`},
		{"number literal", ir.Lit(float64(4)), `{"type":"number","oneOf":[{"format":"4"}]}`},
		{"boolean literal", ir.Lit(true), `{"type":"boolean","oneOf":[{"format":"true"}]}`},
		{"description", ir.WithDoc(ir.String(), ir.Documentation{Summary: "Display name."}), `{"type":"string","description":"Display name."}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTranslator(newRegistry(t))
			got, err := tr.Translate(tt.node, nil, Options{})
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, toJSON(t, got))
		})
	}
}

func TestTranslate_DocRoot(t *testing.T) {
	tr := NewTranslator(newRegistry(t))
	got, err := tr.Translate(ir.ArrayOf(ir.Ref("Widget")), nil, Options{DocRoot: "#/components/schemas"})
	require.NoError(t, err)
	assert.Equal(t, "#/components/schemas/Widget", got.Items.Ref)
}

func TestTranslate_UnknownLiteral(t *testing.T) {
	tr := NewTranslator(newRegistry(t))
	_, err := tr.Translate(ir.Lit(nil), nil, Options{Owner: "Widget.color"})
	assert.ErrorIs(t, err, ir.ErrUnknownLiteral)
}

func TestTranslate_UnsupportedNil(t *testing.T) {
	tr := NewTranslator(newRegistry(t))
	_, err := tr.Translate(nil, nil, Options{})
	assert.ErrorIs(t, err, ir.ErrUnsupportedType)
}

func TestTranslate_ExpandRefs(t *testing.T) {
	reg := newRegistry(t)
	declare(t, reg, "Widget",
		member("id", ir.Number()),
		member("name", ir.String()),
		&registry.Member{Name: "tags", Type: ir.ArrayOf(ir.String()), Optional: true},
		member("onClick", ir.Function()),
	)
	tr := NewTranslator(reg)

	got, err := tr.Translate(ir.ArrayOf(ir.Ref("Widget")), nil, Options{ExpandRefs: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "array",
		"items": {
			"type": "object",
			"properties": {
				"id": {"type": "number"},
				"name": {"type": "string"},
				"tags": {"type": "array", "items": {"type": "string"}}
			},
			"required": ["id", "name"]
		}
	}`, toJSON(t, got))
}

func TestTranslate_ExpandRefsUndefined(t *testing.T) {
	tr := NewTranslator(newRegistry(t))
	_, err := tr.Translate(ir.Ref("Gadget"), nil, Options{ExpandRefs: true})
	assert.ErrorIs(t, err, &ir.Error{Code: ir.CodeUndefinedType, Name: "Gadget"})
}

func TestTranslate_ExpandRefsCycleFallsBackToRef(t *testing.T) {
	reg := newRegistry(t)
	declare(t, reg, "Node",
		member("value", ir.String()),
		&registry.Member{Name: "children", Type: ir.ArrayOf(ir.Ref("Node")), Optional: true},
	)
	tr := NewTranslator(reg)

	got, err := tr.Translate(ir.Ref("Node"), nil, Options{ExpandRefs: true, DocRoot: "#/components/schemas"})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "object",
		"properties": {
			"value": {"type": "string"},
			"children": {"type": "array", "items": {"$ref": "#/components/schemas/Node"}}
		},
		"required": ["value"]
	}`, toJSON(t, got))
}

func TestTranslate_ExpandRefsSiblingsBothInlined(t *testing.T) {
	reg := newRegistry(t)
	declare(t, reg, "Point", member("x", ir.Number()))
	declare(t, reg, "Line", member("from", ir.Ref("Point")), member("to", ir.Ref("Point")))
	tr := NewTranslator(reg)

	got, err := tr.Translate(ir.Ref("Line"), nil, Options{ExpandRefs: true})
	require.NoError(t, err)
	for _, p := range []string{"from", "to"} {
		assert.Equal(t, "object", got.Properties[p].Type, "property %s should be inlined", p)
	}
}

func TestTranslate_DeclAndMemberDocs(t *testing.T) {
	reg := newRegistry(t)
	_, err := reg.DeclareType("Widget", []*registry.Member{
		{Name: "id", Type: ir.Number(), Doc: ir.Documentation{Summary: "Unique id."}},
	}, ir.Documentation{Summary: "A widget."})
	require.NoError(t, err)

	got, err := NewTranslator(reg).Translate(ir.Ref("Widget"), nil, Options{ExpandRefs: true})
	require.NoError(t, err)
	assert.Equal(t, "A widget.", got.Description)
	assert.Equal(t, "Unique id.", got.Properties["id"].Description)
}

func TestUnwrapPromise(t *testing.T) {
	assert.Equal(t, "Widget[]", ir.Describe(UnwrapPromise(ir.Ref("Promise", ir.ArrayOf(ir.Ref("Widget"))))))
	assert.Nil(t, UnwrapPromise(ir.Ref("Promise")))
	assert.Equal(t, "string", ir.Describe(UnwrapPromise(ir.String())))
}

func TestTranslate_Promise(t *testing.T) {
	reg := newRegistry(t)
	declare(t, reg, "Job", member("id", ir.Number()))
	tr := NewTranslator(reg)

	tests := []struct {
		name string
		node ir.TypeNode
		opts Options
		want string
	}{
		{"primitive", ir.Ref("Promise", ir.Boolean()), Options{}, `{"type":"boolean"}`},
		{"nested", ir.Ref("Promise", ir.Ref("Promise", ir.String())), Options{}, `{"type":"string"}`},
		{"reference", ir.Ref("Promise", ir.Ref("Job")), Options{}, `{"$ref":"#/definitions/Job"}`},
		{"expanded", ir.Ref("Promise", ir.Ref("Job")), Options{ExpandRefs: true}, `{"type":"object","properties":{"id":{"type":"number"}},"required":["id"]}`},
		{"bare", ir.Ref("Promise"), Options{}, `null`},
		{"void", ir.Ref("Promise", ir.Undefined()), Options{}, `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tr.Translate(tt.node, nil, tt.opts)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, toJSON(t, got))
		})
	}
}

func TestTranslate_PromiseTagsApplyToResolved(t *testing.T) {
	tr := NewTranslator(newRegistry(t))
	got, err := tr.Translate(ir.Ref("Promise", ir.Number()), []ir.DocTag{{Name: "minimum", Value: "0"}}, Options{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"number","minimum":0}`, toJSON(t, got))
}
