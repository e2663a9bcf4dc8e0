package validation

import (
	"fmt"
	"strconv"

	"github.com/broady/tsroute/tsroutegen/jsast"
)

// EmitOptions configures the JavaScript validator module.
type EmitOptions struct {
	// Header is emitted as a leading comment.
	Header string

	// ValidatorModule is the module providing the JSON Schema compiler.
	// Defaults to "ajv".
	ValidatorModule string
}

// Emit renders the validator module. It exports an object keyed by
// "Controller.method" whose values hold the composed schema, a positional
// argument mapper and a compiled validate function.
func Emit(m *Module, opts EmitOptions) ([]byte, error) {
	if opts.ValidatorModule == "" {
		opts.ValidatorModule = "ajv"
	}
	var body []jsast.Stmt
	if opts.Header != "" {
		body = append(body, jsast.Comment(opts.Header))
	}
	body = append(body,
		jsast.Directive("use strict"),
		jsast.Blank{},
		jsast.Const{Name: "Ajv", Value: jsast.CallOf(jsast.Ident("require"), jsast.String(opts.ValidatorModule))},
		jsast.Const{Name: "ajv", Value: jsast.New{Ctor: jsast.Ident("Ajv"), Args: []jsast.Expr{&jsast.Object{Props: []jsast.Prop{
			{Key: "strict", Value: jsast.JSON{Value: false}},
			{Key: "validateFormats", Value: jsast.JSON{Value: false}},
		}}}}},
		jsast.Const{Name: "definitions", Value: jsast.JSON{Value: m.definitions}},
	)

	exports := &jsast.Object{}
	for i, ep := range m.endpoints {
		name := "schema" + strconv.Itoa(i)
		body = append(body,
			jsast.Blank{},
			jsast.Comment(ep.Key),
			jsast.Const{Name: name, Value: jsast.CallOf(jsast.Dot("Object", "assign"),
				jsast.JSON{Value: ep.Object},
				&jsast.Object{Props: []jsast.Prop{{Key: "definitions", Value: jsast.Ident("definitions")}}},
			)},
		)
		exports.Props = append(exports.Props, jsast.Prop{Key: ep.Key, Value: &jsast.Object{Props: []jsast.Prop{
			{Key: "schema", Value: jsast.Ident(name)},
			{Key: "argsToSchema", Value: argsMapper(ep.Params)},
			{Key: "validate", Value: jsast.CallOf(jsast.Dot("ajv", "compile"), jsast.Ident(name))},
		}}})
	}
	body = append(body, jsast.Blank{}, jsast.Assign{Target: jsast.Dot("module", "exports"), Value: exports})

	out, err := jsast.Render(&jsast.Program{Body: body})
	if err != nil {
		return nil, fmt.Errorf("render validator module: %w", err)
	}
	return out, nil
}

// argsMapper builds (args) => ({ a: args[0], b: args[1] }).
func argsMapper(params []string) jsast.Expr {
	obj := &jsast.Object{}
	for i, p := range params {
		obj.Props = append(obj.Props, jsast.Prop{
			Key:   p,
			Value: jsast.Index{X: jsast.Ident("args"), Index: jsast.JSON{Value: i}},
		})
	}
	return &jsast.Arrow{Params: []string{"args"}, Result: obj}
}
