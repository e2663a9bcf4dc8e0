package registry

import (
	"fmt"
	"strings"

	"github.com/broady/tsroute/tsroutegen/ir"
)

// Verb is the HTTP verb an endpoint is registered for.
type Verb string

const (
	VerbGet    Verb = "get"
	VerbPost   Verb = "post"
	VerbPut    Verb = "put"
	VerbDelete Verb = "delete"
	VerbAll    Verb = "all"
)

// ParseVerb normalizes a verb decorator name. "del" is accepted for delete.
func ParseVerb(name string) (Verb, error) {
	switch strings.ToLower(name) {
	case "get":
		return VerbGet, nil
	case "post":
		return VerbPost, nil
	case "put":
		return VerbPut, nil
	case "del", "delete":
		return VerbDelete, nil
	case "all":
		return VerbAll, nil
	}
	return "", fmt.Errorf("unknown verb %q", name)
}

// Location is where an endpoint's arguments are read from.
type Location string

const (
	LocationQuery Location = "query"
	LocationBody  Location = "body"
)

// Location returns query for get and put, body for everything else.
func (v Verb) Location() Location {
	switch v {
	case VerbGet, VerbPut:
		return LocationQuery
	default:
		return LocationBody
	}
}

// Param is a positional endpoint parameter.
type Param struct {
	Name string
	Type ir.TypeNode
	Tags []ir.DocTag
}

// Endpoint is a decorated method exposed as an HTTP route.
type Endpoint struct {
	// Controller is the name of the owning controller class.
	Controller string

	// Method is the decorated method name.
	Method string

	Doc  ir.Documentation
	Verb Verb

	// Path is the path segment, from the decorator argument or the method name.
	Path string

	Params []Param

	// Returns is the declared return type. Nil means no content.
	Returns ir.TypeNode

	Source ir.Source
}

// Key returns the validator key "Controller.method".
func (e *Endpoint) Key() string {
	return e.Controller + "." + e.Method
}

// JoinPath joins path segments into an absolute URL path, collapsing
// redundant slashes. Empty segments are skipped.
func JoinPath(segments ...string) string {
	var parts []string
	for _, s := range segments {
		for _, p := range strings.Split(s, "/") {
			if p != "" {
				parts = append(parts, p)
			}
		}
	}
	return "/" + strings.Join(parts, "/")
}

// RouterPath returns the mount prefix of the router, or "/" without a router.
func (r *Registry) RouterPath() string {
	if r.router == nil {
		return "/"
	}
	return JoinPath(r.router.Path)
}

// ControllerPath returns the full mount path of a controller.
func (r *Registry) ControllerPath(c *Controller) string {
	return JoinPath(r.RouterPath(), c.Path)
}

// EndpointPath returns the full URL path of an endpoint:
// /<router-prefix>/<controller-path>/<endpoint-path>.
func (r *Registry) EndpointPath(e *Endpoint) string {
	c, ok := r.controllers[e.Controller]
	if !ok {
		return JoinPath(r.RouterPath(), e.Path)
	}
	return JoinPath(r.ControllerPath(c), e.Path)
}
