// Package validation builds per-endpoint parameter validators from a
// synthesis result: an in-process module compiled with jsonschema, and the
// equivalent JavaScript module for the generated routes.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/broady/tsroute/tsroutegen/schema"
	"github.com/broady/tsroute/tsroutegen/synth"
)

// Endpoint validates the named arguments of one endpoint.
type Endpoint struct {
	// Key is "Controller.method".
	Key string

	// Params are the parameter names in positional order.
	Params []string

	// Object is the object schema of the parameters without definitions.
	Object *schema.Fragment

	// Schema is Object composed with the shared definitions.
	Schema *schema.Fragment

	compiled *jsonschema.Schema
}

// ArgsToSchema maps positional arguments to a named object.
// Missing trailing arguments are left out; extra arguments are ignored.
func (e *Endpoint) ArgsToSchema(args []any) map[string]any {
	out := make(map[string]any, len(e.Params))
	for i, name := range e.Params {
		if i >= len(args) {
			break
		}
		out[name] = args[i]
	}
	return out
}

// Validate reports whether v satisfies the endpoint schema. When it does
// not, the error is a *jsonschema.ValidationError describing why.
func (e *Endpoint) Validate(v any) (bool, error) {
	doc, err := normalize(v)
	if err != nil {
		return false, err
	}
	if err := e.compiled.Validate(doc); err != nil {
		return false, err
	}
	return true, nil
}

// normalize converts v into the generic JSON value tree the validator walks.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return doc, nil
}

// Violation is one failed schema constraint.
type Violation struct {
	Path    string `json:"path"`
	Keyword string `json:"keyword"`
	Message string `json:"message"`
}

// Violations flattens a validation error into the constraints that failed.
// It returns nil for errors that are not schema violations.
func Violations(err error) []Violation {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil
	}
	var out []Violation
	for _, be := range ve.BasicOutput().Errors {
		if be.KeywordLocation == "" || be.Error == "" {
			continue
		}
		path := be.InstanceLocation
		if path == "" {
			path = "/"
		}
		out = append(out, Violation{Path: path, Keyword: be.KeywordLocation, Message: be.Error})
	}
	return out
}

// Module is the set of endpoint validators for one generation run.
type Module struct {
	endpoints   []*Endpoint
	byKey       map[string]*Endpoint
	definitions map[string]*schema.Fragment
}

// Build composes and compiles a validator for every endpoint in res.
func Build(res *synth.Result) (*Module, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020

	m := &Module{
		byKey:       make(map[string]*Endpoint),
		definitions: res.Definitions,
	}
	for _, es := range res.Endpoints {
		ep := &Endpoint{
			Key:    es.Endpoint.Key(),
			Object: es.Object(),
		}
		for _, p := range es.Params {
			ep.Params = append(ep.Params, p.Name)
		}
		ep.Schema = ep.Object.Clone()
		if len(res.Definitions) > 0 {
			ep.Schema.Definitions = make(map[string]*schema.Fragment, len(res.Definitions))
			for name, d := range res.Definitions {
				ep.Schema.Definitions[name] = d.Clone()
			}
		}

		data, err := schema.Encode(ep.Schema, "")
		if err != nil {
			return nil, fmt.Errorf("encode schema for %s: %w", ep.Key, err)
		}
		url := "mem://tsroute/" + ep.Key + ".json"
		if err := c.AddResource(url, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema for %s: %w", ep.Key, err)
		}
		ep.compiled, err = c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile schema for %s: %w", ep.Key, err)
		}
		m.endpoints = append(m.endpoints, ep)
		m.byKey[ep.Key] = ep
	}
	return m, nil
}

// Endpoint returns the validator for a "Controller.method" key.
func (m *Module) Endpoint(key string) (*Endpoint, bool) {
	ep, ok := m.byKey[key]
	return ep, ok
}

// Endpoints returns every validator in endpoint order.
func (m *Module) Endpoints() []*Endpoint {
	return m.endpoints
}
