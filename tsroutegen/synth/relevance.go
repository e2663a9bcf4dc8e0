package synth

import (
	"fmt"

	"github.com/broady/tsroute/tsroutegen/ir"
	"github.com/broady/tsroute/tsroutegen/registry"
)

// Propagator marks declarations reachable from endpoint signatures as relevant.
// It keeps a visited set per run so cyclic graphs terminate and repeated
// marking is a no-op.
type Propagator struct {
	reg     *registry.Registry
	visited map[string]bool
	order   []string
}

// NewPropagator creates a propagator over reg.
func NewPropagator(reg *registry.Registry) *Propagator {
	return &Propagator{reg: reg, visited: make(map[string]bool)}
}

// Mark marks every declaration reachable from node, transitively through
// members, array elements, union members and type arguments. Builtin
// references (Array, Promise, Object, String, Number, Boolean) are never
// looked up; only their arguments are walked.
// Must only be called once every declaration has been registered.
func (p *Propagator) Mark(node ir.TypeNode) error {
	switch n := node.(type) {
	case *ir.Array:
		return p.Mark(n.Element)
	case *ir.Union:
		for _, m := range n.Members {
			if err := p.Mark(m); err != nil {
				return err
			}
		}
	case *ir.Reference:
		return p.markRef(n)
	}
	return nil
}

func (p *Propagator) markRef(n *ir.Reference) error {
	for _, a := range n.Args {
		if err := p.Mark(a); err != nil {
			return err
		}
	}
	if isArrayName(n.Name) || n.Name == "Promise" {
		return nil
	}
	if _, ok := builtinPrimitives[n.Name]; ok {
		return nil
	}
	decl, ok := p.reg.Type(n.Name)
	if !ok {
		return ir.Errorf(ir.CodeUndefinedType, n.Name, "referenced type is not declared")
	}
	if p.visited[n.Name] {
		return nil
	}
	p.visited[n.Name] = true
	decl.Relevant = true
	p.order = append(p.order, n.Name)
	for _, m := range decl.Members {
		if err := p.Mark(m.Type); err != nil {
			return fmt.Errorf("%s.%s: %w", decl.Name, m.Name, err)
		}
	}
	return nil
}

// Marked returns the names marked so far, in the order they were first reached.
func (p *Propagator) Marked() []string {
	return p.order
}
