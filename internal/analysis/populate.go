package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/broady/tsroute/tsroutegen/ir"
	"github.com/broady/tsroute/tsroutegen/registry"
)

const (
	decoratorController = "controller"
	decoratorRouter     = "router"
)

// classDecorator reports whether name marks a class as controller or router.
func classDecorator(name string) bool {
	switch strings.ToLower(name) {
	case decoratorController, decoratorRouter:
		return true
	}
	return false
}

type mount struct {
	name string
	args []ir.DecoratorArg
}

// Populate declares every type, controller and router of the manifest in
// reg, attaches their decorator arguments, and returns the decorated
// methods and functions as endpoints. Endpoints outside a controller keep
// their enclosing class name (or none) and are dropped by the registry.
func (m *Manifest) Populate(reg *registry.Registry) ([]*registry.Endpoint, error) {
	var (
		mounts    []mount
		endpoints []*registry.Endpoint
	)
	for _, f := range m.Files {
		for _, d := range f.Declarations {
			src := ir.Source{File: f.Path, Line: d.Line}
			switch d.Kind {
			case KindType:
				if err := declareType(reg, d, src); err != nil {
					return nil, err
				}
			case KindClass:
				mt, eps, err := declareClass(reg, f.Path, d)
				if err != nil {
					return nil, err
				}
				if mt != nil {
					mounts = append(mounts, *mt)
				}
				endpoints = append(endpoints, eps...)
			case KindFunction:
				ep, err := endpoint(reg, "", f.Path, Method{
					Name: d.Name, Doc: d.Doc, Line: d.Line,
					Decorators: d.Decorators, Params: d.Params, Returns: d.Returns,
				})
				if err != nil {
					return nil, err
				}
				if ep != nil {
					endpoints = append(endpoints, ep)
				}
			}
		}
	}

	// Decorator arguments are attached once every class is declared.
	for _, mt := range mounts {
		if err := reg.AttachDecoratorArgs(mt.name, mt.args); err != nil {
			return nil, err
		}
	}
	return endpoints, nil
}

func declareType(reg *registry.Registry, d Declaration, src ir.Source) error {
	doc, _ := ParseDoc(d.Doc)
	members := make([]*registry.Member, 0, len(d.Members))
	for _, m := range d.Members {
		t, err := decodeType(m.Type)
		if err != nil {
			return located(err, d.Name+"."+m.Name, src)
		}
		mdoc, tags := ParseDoc(m.Doc)
		members = append(members, &registry.Member{
			Name:     m.Name,
			Type:     t,
			Optional: m.Optional,
			Doc:      mdoc,
			Tags:     tags,
		})
	}
	decl, err := reg.DeclareType(d.Name, members, doc)
	if err != nil {
		return located(err, d.Name, src)
	}
	decl.Source = src
	return nil
}

func declareClass(reg *registry.Registry, file string, d Declaration) (*mount, []*registry.Endpoint, error) {
	src := ir.Source{File: file, Line: d.Line}
	doc, _ := ParseDoc(d.Doc)

	var mt *mount
	for _, dec := range d.Decorators {
		name := strings.ToLower(dec.Name)
		if _, err := registry.ParseVerb(name); err == nil {
			return nil, nil, located(ir.Errorf(ir.CodeUnresolvedDecorator, d.Name, "@%s applies to methods, not classes", dec.Name), d.Name, src)
		}
		if !classDecorator(name) {
			continue
		}
		if mt != nil {
			return nil, nil, located(ir.Errorf(ir.CodeUnresolvedDecorator, d.Name, "class carries more than one controller or router decorator"), d.Name, src)
		}
		var err error
		if name == decoratorController {
			_, err = reg.DeclareController(d.Name, file, doc)
		} else {
			_, err = reg.DeclareRouter(d.Name, file, doc)
		}
		if err != nil {
			return nil, nil, located(err, d.Name, src)
		}
		mt = &mount{name: d.Name}
		for _, a := range dec.Args {
			mt.args = append(mt.args, a.DecoratorArg())
		}
	}

	var endpoints []*registry.Endpoint
	for _, meth := range d.Methods {
		ep, err := endpoint(reg, d.Name, file, meth)
		if err != nil {
			return nil, nil, err
		}
		if ep != nil {
			endpoints = append(endpoints, ep)
		}
	}
	return mt, endpoints, nil
}

// endpoint builds the endpoint of a verb-decorated method, or returns nil
// for an undecorated one. The first verb decorator wins.
func endpoint(reg *registry.Registry, class, file string, meth Method) (*registry.Endpoint, error) {
	src := ir.Source{File: file, Line: meth.Line}
	owner := meth.Name
	if class != "" {
		owner = class + "." + meth.Name
	}

	var (
		verb    registry.Verb
		verbDec *Decorator
	)
	for i, dec := range meth.Decorators {
		if classDecorator(dec.Name) {
			return nil, located(ir.Errorf(ir.CodeUnresolvedDecorator, owner, "@%s applies to classes, not methods", dec.Name), owner, src)
		}
		v, err := registry.ParseVerb(dec.Name)
		if err != nil || verbDec != nil {
			continue
		}
		verb, verbDec = v, &meth.Decorators[i]
	}
	if verbDec == nil {
		return nil, nil
	}

	doc, _ := ParseDoc(meth.Doc)
	ep := &registry.Endpoint{
		Controller: class,
		Method:     meth.Name,
		Doc:        doc,
		Verb:       verb,
		Path:       meth.Name,
		Source:     src,
	}
	args := make([]ir.DecoratorArg, 0, len(verbDec.Args))
	for _, a := range verbDec.Args {
		args = append(args, a.DecoratorArg())
	}
	if p, ok := reg.PathArg(owner, args); ok {
		ep.Path = p
	}

	for _, p := range meth.Params {
		t, err := decodeType(p.Type)
		if err != nil {
			return nil, located(err, owner+"("+p.Name+")", src)
		}
		_, tags := ParseDoc(p.Doc)
		ep.Params = append(ep.Params, registry.Param{Name: p.Name, Type: t, Tags: tags})
	}
	if len(meth.Returns) > 0 && string(meth.Returns) != "null" {
		t, err := decodeType(meth.Returns)
		if err != nil {
			return nil, located(err, owner, src)
		}
		ep.Returns = t
	}
	return ep, nil
}

func decodeType(raw json.RawMessage) (ir.TypeNode, error) {
	return ir.DecodeNode(raw)
}

// located attaches a source position to generation errors that lack one.
func located(err error, name string, src ir.Source) error {
	if e, ok := err.(*ir.Error); ok {
		if e.Source == nil {
			e.Source = &src
		}
		if e.Name == "" {
			e.Name = name
		}
		return e
	}
	return fmt.Errorf("%s:%d: %s: %w", src.File, src.Line, name, err)
}
