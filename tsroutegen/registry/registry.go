// Package registry implements the declaration registry: the symbol table of
// type declarations, controllers and the router built during the first
// analysis pass and read by schema synthesis and the artifact emitters.
//
// A Registry is owned by a single generation run. It is not safe for
// concurrent use; the two-pass structure (declare everything, then resolve)
// is enforced by sequencing.
package registry

import (
	"log/slog"

	"github.com/broady/tsroute/tsroutegen/ir"
	"github.com/broady/tsroute/tsroutegen/schema"
)

// Member is a named member of a type declaration.
type Member struct {
	Name     string
	Type     ir.TypeNode
	Optional bool
	Doc      ir.Documentation
	Tags     []ir.DocTag

	// Resolved is the translated schema of Type, filled during synthesis.
	// It stays nil when the member type has no schema.
	Resolved *schema.Fragment
}

// TypeDecl is a declared interface, class or type alias.
type TypeDecl struct {
	Name    string
	Members []*Member
	Doc     ir.Documentation
	Source  ir.Source

	// Relevant is set once the declaration is reachable from an endpoint signature.
	Relevant bool

	// Definition is the frozen object schema, set only for relevant declarations.
	Definition *schema.Fragment
}

// Member returns the member with the given name, or nil.
func (d *TypeDecl) Member(name string) *Member {
	for _, m := range d.Members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Mount is the shape shared by controllers and the router: a named class
// mounted at a path prefix.
type Mount struct {
	Name string
	File string
	Doc  ir.Documentation

	// Path is the path prefix, from the decorator argument or the class name.
	Path string
}

// Controller is a class decorated as a controller.
type Controller struct {
	Mount
	Endpoints []*Endpoint
}

// Router is the singleton class whose path prefix mounts every controller.
type Router struct {
	Mount
}

const (
	kindType       = "type"
	kindController = "controller"
	kindRouter     = "router"
)

// Registry is the table of named declarations for one generation run.
type Registry struct {
	names       map[string]string // name -> kind, one namespace for all kinds
	types       map[string]*TypeDecl
	typeOrder   []*TypeDecl
	controllers map[string]*Controller
	ctrlOrder   []*Controller
	router      *Router
	routers     []*Router
	warnings    []ir.Warning
	logger      *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger warnings are reported to.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		names:       make(map[string]string),
		types:       make(map[string]*TypeDecl),
		controllers: make(map[string]*Controller),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

func (r *Registry) claim(name, kind string) error {
	if name == "" {
		return ir.Errorf(ir.CodeUnsupportedType, "", "%s declaration without a name", kind)
	}
	if prev, ok := r.names[name]; ok {
		if prev == kind {
			return ir.Errorf(ir.CodeDuplicateDeclaration, name, "%s already declared", kind)
		}
		return ir.Errorf(ir.CodeDuplicateDeclaration, name, "%s name collides with declared %s", kind, prev)
	}
	r.names[name] = kind
	return nil
}

// DeclareType registers a type declaration.
// It fails with a duplicate_declaration error if the name is already present.
func (r *Registry) DeclareType(name string, members []*Member, doc ir.Documentation) (*TypeDecl, error) {
	if err := r.claim(name, kindType); err != nil {
		return nil, err
	}
	d := &TypeDecl{Name: name, Members: members, Doc: doc}
	r.types[name] = d
	r.typeOrder = append(r.typeOrder, d)
	return d, nil
}

// DeclareController registers a controller class. Its path defaults to the class name.
func (r *Registry) DeclareController(name, file string, doc ir.Documentation) (*Controller, error) {
	if err := r.claim(name, kindController); err != nil {
		return nil, err
	}
	c := &Controller{Mount: Mount{Name: name, File: file, Doc: doc, Path: name}}
	r.controllers[name] = c
	r.ctrlOrder = append(r.ctrlOrder, c)
	return c, nil
}

// DeclareRouter registers a router class. Only the first router declared is
// used for mounting; later ones are kept and reported as duplicate_router warnings.
func (r *Registry) DeclareRouter(name, file string, doc ir.Documentation) (*Router, error) {
	if err := r.claim(name, kindRouter); err != nil {
		return nil, err
	}
	rt := &Router{Mount: Mount{Name: name, File: file, Doc: doc, Path: name}}
	r.routers = append(r.routers, rt)
	if r.router == nil {
		r.router = rt
		return rt, nil
	}
	r.Warn(ir.Warning{
		Code:    ir.CodeDuplicateRouter,
		Name:    name,
		Message: "only router " + r.router.Name + " is used for mounting",
		Source:  &ir.Source{File: file},
	})
	return rt, nil
}

// AttachDecoratorArgs records the decorator arguments of a controller or
// router. The first literal argument becomes the path prefix; non-literal
// arguments are dropped with a warning.
func (r *Registry) AttachDecoratorArgs(name string, args []ir.DecoratorArg) error {
	var m *Mount
	if c, ok := r.controllers[name]; ok {
		m = &c.Mount
	} else {
		for _, rt := range r.routers {
			if rt.Name == name {
				m = &rt.Mount
			}
		}
	}
	if m == nil {
		return ir.Errorf(ir.CodeUnresolvedDecorator, name, "decorator arguments for an undeclared controller or router")
	}
	if path, ok := r.PathArg(name, args); ok {
		m.Path = path
	}
	return nil
}

// PathArg returns the first literal argument of a decorator application.
// Non-literal arguments are reported as warnings against owner.
func (r *Registry) PathArg(owner string, args []ir.DecoratorArg) (string, bool) {
	var (
		path  string
		found bool
	)
	for _, a := range args {
		if !a.IsLiteral() {
			r.Warn(ir.Warning{
				Code:    ir.CodeNonLiteralDecoratorArg,
				Name:    owner,
				Message: "dropped non-literal decorator argument " + a.Value,
			})
			continue
		}
		if !found {
			path, found = a.Value, true
		}
	}
	return path, found
}

// ConnectEndpoints appends each endpoint to its owning controller.
// Endpoints whose controller was never declared are dropped with an
// unattached_endpoint warning. It returns the number of endpoints connected.
func (r *Registry) ConnectEndpoints(endpoints []*Endpoint) int {
	n := 0
	for _, ep := range endpoints {
		c, ok := r.controllers[ep.Controller]
		if !ok {
			w := ir.Warning{
				Code:    ir.CodeUnattachedEndpoint,
				Name:    ep.Method,
				Message: "decorated method is not inside a controller class; endpoint dropped",
			}
			if !ep.Source.IsZero() {
				src := ep.Source
				w.Source = &src
			}
			r.Warn(w)
			continue
		}
		c.Endpoints = append(c.Endpoints, ep)
		n++
	}
	return n
}

// Warn records a non-fatal issue and logs it.
func (r *Registry) Warn(w ir.Warning) {
	r.warnings = append(r.warnings, w)
	attrs := []any{"code", string(w.Code), "name", w.Name}
	if w.Source != nil && w.Source.File != "" {
		attrs = append(attrs, "file", w.Source.File)
	}
	r.logger.Warn(w.Message, attrs...)
}

// Warnings returns the warnings recorded so far, in order.
func (r *Registry) Warnings() []ir.Warning {
	return r.warnings
}

// Type looks up a type declaration by name.
func (r *Registry) Type(name string) (*TypeDecl, bool) {
	d, ok := r.types[name]
	return d, ok
}

// Types returns every type declaration in declaration order.
func (r *Registry) Types() []*TypeDecl {
	return r.typeOrder
}

// Relevant returns the relevant type declarations in declaration order.
func (r *Registry) Relevant() []*TypeDecl {
	var out []*TypeDecl
	for _, d := range r.typeOrder {
		if d.Relevant {
			out = append(out, d)
		}
	}
	return out
}

// Controller looks up a controller by name.
func (r *Registry) Controller(name string) (*Controller, bool) {
	c, ok := r.controllers[name]
	return c, ok
}

// Controllers returns every controller in declaration order.
func (r *Registry) Controllers() []*Controller {
	return r.ctrlOrder
}

// Router returns the router used for mounting, or nil if none was declared.
func (r *Registry) Router() *Router {
	return r.router
}

// Endpoints returns every connected endpoint, grouped by controller in
// declaration order.
func (r *Registry) Endpoints() []*Endpoint {
	var out []*Endpoint
	for _, c := range r.ctrlOrder {
		out = append(out, c.Endpoints...)
	}
	return out
}
