package synth

import (
	"fmt"

	"github.com/broady/tsroute/tsroutegen/ir"
	"github.com/broady/tsroute/tsroutegen/registry"
	"github.com/broady/tsroute/tsroutegen/schema"
)

// ParamSchema is a translated endpoint parameter.
type ParamSchema struct {
	Name string

	// Schema is nil when the parameter type has no schema.
	Schema *schema.Fragment
}

// EndpointSchema is the translated signature of one endpoint.
type EndpointSchema struct {
	Endpoint *registry.Endpoint
	Params   []ParamSchema

	// Result is the return type with Promise unwrapped; nil for no content.
	Result ir.TypeNode
}

// Result is the outcome of synthesis: per-endpoint schemas and the frozen
// definitions of every relevant declaration.
type Result struct {
	Endpoints []*EndpointSchema

	// Definitions maps relevant declaration names to object schemas whose
	// references point under DefinitionsRoot.
	Definitions map[string]*schema.Fragment

	// Order lists the keys of Definitions in declaration order.
	Order []string

	// Marked lists relevant names in the order they were reached.
	Marked []string

	translator *Translator
}

// Synthesize runs the translation and relevance pass over a fully populated
// registry and freezes the definitions map. Any error is fatal to the run.
func Synthesize(reg *registry.Registry) (*Result, error) {
	t := NewTranslator(reg)
	p := NewPropagator(reg)
	res := &Result{
		Definitions: make(map[string]*schema.Fragment),
		translator:  t,
	}

	for _, ep := range reg.Endpoints() {
		es, err := synthesizeEndpoint(t, p, ep)
		if err != nil {
			return nil, fmt.Errorf("endpoint %s: %w", ep.Key(), err)
		}
		res.Endpoints = append(res.Endpoints, es)
	}

	for _, decl := range reg.Types() {
		for _, m := range decl.Members {
			f, err := t.Translate(m.Type, m.Tags, Options{Owner: decl.Name + "." + m.Name})
			if err != nil {
				return nil, fmt.Errorf("type %s.%s: %w", decl.Name, m.Name, err)
			}
			m.Resolved = f
		}
	}

	for _, decl := range reg.Relevant() {
		def, err := objectSchema(decl, func(m *registry.Member) (*schema.Fragment, error) {
			return m.Resolved.Clone(), nil
		})
		if err != nil {
			return nil, err
		}
		decl.Definition = def
		res.Definitions[decl.Name] = def
		res.Order = append(res.Order, decl.Name)
	}
	res.Marked = p.Marked()
	return res, nil
}

func synthesizeEndpoint(t *Translator, p *Propagator, ep *registry.Endpoint) (*EndpointSchema, error) {
	es := &EndpointSchema{Endpoint: ep}
	for _, param := range ep.Params {
		if err := p.Mark(param.Type); err != nil {
			return nil, fmt.Errorf("parameter %s: %w", param.Name, err)
		}
		f, err := t.Translate(param.Type, param.Tags, Options{Owner: ep.Key() + "(" + param.Name + ")"})
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", param.Name, err)
		}
		es.Params = append(es.Params, ParamSchema{Name: param.Name, Schema: f})
	}
	if ep.Returns != nil {
		es.Result = UnwrapPromise(ep.Returns)
		if err := p.Mark(es.Result); err != nil {
			return nil, fmt.Errorf("return type: %w", err)
		}
	}
	return es, nil
}

// Definition returns the frozen definition for name.
func (r *Result) Definition(name string) (*schema.Fragment, bool) {
	d, ok := r.Definitions[name]
	return d, ok
}

// Rebased returns a copy of the definitions with references moved under root.
func (r *Result) Rebased(root string) map[string]*schema.Fragment {
	out := make(map[string]*schema.Fragment, len(r.Definitions))
	for name, d := range r.Definitions {
		out[name] = schema.Rebase(d, DefinitionsRoot, root)
	}
	return out
}

// Expand translates node with references inlined. References that would
// recurse into a declaration already being expanded point under docRoot.
func (r *Result) Expand(node ir.TypeNode, docRoot string) (*schema.Fragment, error) {
	if node == nil {
		return nil, nil
	}
	return r.translator.Translate(node, nil, Options{DocRoot: docRoot, ExpandRefs: true})
}

// Find returns the endpoint schema for a "Controller.method" key.
func (r *Result) Find(key string) (*EndpointSchema, bool) {
	for _, es := range r.Endpoints {
		if es.Endpoint.Key() == key {
			return es, true
		}
	}
	return nil, false
}

// Object returns the parameter object schema of the endpoint: one property
// per parameter with a schema, every parameter name required.
func (es *EndpointSchema) Object() *schema.Fragment {
	obj := schema.Type("object")
	for _, p := range es.Params {
		obj.Required = append(obj.Required, p.Name)
		if p.Schema == nil {
			continue
		}
		if obj.Properties == nil {
			obj.Properties = make(map[string]*schema.Fragment)
		}
		obj.Properties[p.Name] = p.Schema.Clone()
	}
	return obj
}
