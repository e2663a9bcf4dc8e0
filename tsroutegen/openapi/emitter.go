package openapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/broady/tsroute/tsroutegen/ir"
	"github.com/broady/tsroute/tsroutegen/registry"
	"github.com/broady/tsroute/tsroutegen/schema"
	"github.com/broady/tsroute/tsroutegen/synth"
)

// ComponentsRoot is the reference root of shared schemas in the document.
const ComponentsRoot = "#/components/schemas"

const jsonContent = "application/json"

// Config holds the document preamble.
type Config struct {
	Title       string
	Description string
	Version     string
	Servers     []Server
}

// Emit builds the document for every connected endpoint in reg.
// Response schemas are fully expanded so each path is self-contained;
// only references closing a cycle point into components.
func Emit(reg *registry.Registry, res *synth.Result, cfg Config) (*Document, error) {
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}
	doc := &Document{
		OpenAPI: Version,
		Info: Info{
			Title:       cfg.Title,
			Description: describe(reg, cfg.Description),
			Version:     cfg.Version,
		},
		Servers: cfg.Servers,
		Paths:   make(map[string]*PathItem),
	}

	for _, c := range reg.Controllers() {
		if len(c.Endpoints) == 0 {
			continue
		}
		doc.Tags = append(doc.Tags, Tag{Name: c.Name, Description: c.Doc.Summary})
	}

	for _, es := range res.Endpoints {
		ep := es.Endpoint
		op, err := operation(res, es)
		if err != nil {
			return nil, err
		}
		path := reg.EndpointPath(ep)
		item, ok := doc.Paths[path]
		if !ok {
			item = &PathItem{}
			doc.Paths[path] = item
		}
		slot := item.slot(ep.Verb)
		if *slot != nil {
			reg.Warn(ir.Warning{
				Code:    ir.CodeDuplicateRoute,
				Name:    ep.Key(),
				Message: "route " + strings.ToUpper(string(ep.Verb)) + " " + path + " already documented by " + (*slot).OperationID,
			})
		}
		*slot = op
	}

	if len(res.Definitions) > 0 {
		doc.Components = &Components{Schemas: res.Rebased(ComponentsRoot)}
	}
	return doc, nil
}

// slot returns the operation field for verb. The all verb is documented under post.
func (p *PathItem) slot(v registry.Verb) **Operation {
	switch v {
	case registry.VerbGet:
		return &p.Get
	case registry.VerbPut:
		return &p.Put
	case registry.VerbDelete:
		return &p.Delete
	default:
		return &p.Post
	}
}

func operation(res *synth.Result, es *synth.EndpointSchema) (*Operation, error) {
	ep := es.Endpoint
	op := &Operation{
		OperationID: ep.Method,
		Summary:     ep.Doc.Summary,
		Tags:        []string{ep.Controller},
		Deprecated:  ep.Doc.Deprecated != nil,
		Responses:   make(Responses),
	}
	if body := strings.TrimSpace(ep.Doc.Body); body != "" && body != strings.TrimSpace(ep.Doc.Summary) {
		op.Description = body
	}

	switch ep.Verb.Location() {
	case registry.LocationQuery:
		for _, p := range es.Params {
			s := &schema.Fragment{}
			if p.Schema != nil {
				s = schema.Rebase(p.Schema, synth.DefinitionsRoot, ComponentsRoot)
			}
			op.Parameters = append(op.Parameters, Parameter{Name: p.Name, In: "query", Required: true, Schema: s})
		}
	case registry.LocationBody:
		if len(es.Params) > 0 {
			op.RequestBody = &RequestBody{
				Required: true,
				Content: map[string]MediaType{
					jsonContent: {Schema: schema.Rebase(es.Object(), synth.DefinitionsRoot, ComponentsRoot)},
				},
			}
		}
	}

	result, err := res.Expand(es.Result, ComponentsRoot)
	if err != nil {
		return nil, err
	}
	if result == nil {
		op.Responses[strconv.Itoa(http.StatusNoContent)] = &Response{Description: http.StatusText(http.StatusNoContent)}
	} else {
		op.Responses[strconv.Itoa(http.StatusOK)] = &Response{
			Description: http.StatusText(http.StatusOK),
			Content:     map[string]MediaType{jsonContent: {Schema: result}},
		}
	}
	return op, nil
}

// describe assembles the document description from the configured text,
// the router documentation and each documented controller.
func describe(reg *registry.Registry, extra string) string {
	var parts []string
	if s := strings.TrimSpace(extra); s != "" {
		parts = append(parts, s)
	}
	if rt := reg.Router(); rt != nil {
		if s := rt.Doc.Text(); s != "" {
			parts = append(parts, s)
		}
	}
	for _, c := range reg.Controllers() {
		if s := c.Doc.Text(); s != "" {
			parts = append(parts, c.Name+": "+s)
		}
	}
	return strings.Join(parts, "\n\n")
}
