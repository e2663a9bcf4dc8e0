// Package synth translates type nodes into JSON Schema fragments, marks the
// declarations reachable from endpoint signatures and freezes the shared
// definitions map the artifact emitters read.
package synth

import (
	"fmt"
	"slices"

	"github.com/broady/tsroute/tsroutegen/ir"
	"github.com/broady/tsroute/tsroutegen/registry"
	"github.com/broady/tsroute/tsroutegen/schema"
)

// DefinitionsRoot is the reference root of the shared definitions map.
const DefinitionsRoot = "#/definitions"

// Options controls a single translation.
type Options struct {
	// DocRoot is the prefix of emitted references. Defaults to DefinitionsRoot.
	DocRoot string

	// ExpandRefs inlines referenced declarations instead of emitting $ref.
	// A reference back into a declaration that is already being expanded
	// is emitted as $ref so cyclic graphs terminate.
	ExpandRefs bool

	// Owner names what is being translated, for warnings.
	Owner string

	// quiet drops malformed tag warnings already reported for the same member.
	quiet bool
}

func (o Options) root() string {
	if o.DocRoot == "" {
		return DefinitionsRoot
	}
	return o.DocRoot
}

// Translator maps type nodes to schema fragments against a registry.
type Translator struct {
	reg *registry.Registry
}

// NewTranslator creates a translator resolving references in reg.
func NewTranslator(reg *registry.Registry) *Translator {
	return &Translator{reg: reg}
}

// Translate returns the schema fragment for node with tags applied.
// A nil fragment with a nil error means the node has no schema
// (undefined, symbol, function) and callers must skip it.
func (t *Translator) Translate(node ir.TypeNode, tags []ir.DocTag, opts Options) (*schema.Fragment, error) {
	return t.translate(node, tags, opts, nil)
}

func (t *Translator) translate(node ir.TypeNode, tags []ir.DocTag, opts Options, stack []string) (*schema.Fragment, error) {
	f, err := t.base(node, opts, stack)
	if err != nil || f == nil {
		return nil, err
	}
	t.applyTags(f, tags, opts)
	if doc := node.Doc().Text(); doc != "" {
		f.Description = doc
	}
	return f, nil
}

func (t *Translator) base(node ir.TypeNode, opts Options, stack []string) (*schema.Fragment, error) {
	switch n := node.(type) {
	case *ir.Primitive:
		return primitive(n.Keyword), nil
	case *ir.Array:
		return t.array(n.Element, opts, stack)
	case *ir.Reference:
		return t.reference(n, opts, stack)
	case *ir.Union:
		var oneOf []*schema.Fragment
		for _, m := range n.Members {
			mf, err := t.translate(m, nil, opts, stack)
			if err != nil {
				return nil, err
			}
			if mf != nil {
				oneOf = append(oneOf, mf)
			}
		}
		if len(oneOf) == 0 {
			return nil, nil
		}
		return &schema.Fragment{OneOf: oneOf}, nil
	case *ir.Literal:
		typ, ok := n.TypeOf()
		if !ok {
			return nil, ir.Errorf(ir.CodeUnknownLiteral, opts.Owner, "literal value cannot be resolved")
		}
		return &schema.Fragment{Type: typ, OneOf: []*schema.Fragment{{Format: n.Format()}}}, nil
	case nil:
		return nil, ir.Errorf(ir.CodeUnsupportedType, opts.Owner, "missing type node")
	}
	return nil, ir.Errorf(ir.CodeUnsupportedType, opts.Owner, "no schema mapping for %s", node.Kind())
}

func primitive(k ir.Keyword) *schema.Fragment {
	switch k {
	case ir.KeywordString, ir.KeywordNumber, ir.KeywordBoolean, ir.KeywordNull, ir.KeywordObject:
		return schema.Type(k.String())
	case ir.KeywordAny:
		return &schema.Fragment{}
	}
	// undefined, symbol, function
	return nil
}

func (t *Translator) array(elem ir.TypeNode, opts Options, stack []string) (*schema.Fragment, error) {
	f := schema.Type("array")
	if elem == nil {
		return f, nil
	}
	items, err := t.translate(elem, nil, opts, stack)
	if err != nil {
		return nil, err
	}
	f.Items = items
	return f, nil
}

// builtinPrimitives are global constructor names that translate like their keywords.
var builtinPrimitives = map[string]ir.Keyword{
	"Object":  ir.KeywordObject,
	"String":  ir.KeywordString,
	"Number":  ir.KeywordNumber,
	"Boolean": ir.KeywordBoolean,
}

func isArrayName(name string) bool {
	return name == "Array" || name == "ReadonlyArray"
}

func (t *Translator) reference(n *ir.Reference, opts Options, stack []string) (*schema.Fragment, error) {
	if isArrayName(n.Name) {
		var elem ir.TypeNode
		if len(n.Args) > 0 {
			elem = n.Args[0]
		}
		return t.array(elem, opts, stack)
	}
	if k, ok := builtinPrimitives[n.Name]; ok {
		return primitive(k), nil
	}
	if n.Name == "Promise" {
		if len(n.Args) == 0 {
			return nil, nil
		}
		return t.translate(n.Args[0], nil, opts, stack)
	}
	if !opts.ExpandRefs {
		return schema.Ref(opts.root(), n.Name), nil
	}
	decl, ok := t.reg.Type(n.Name)
	if !ok {
		return nil, ir.Errorf(ir.CodeUndefinedType, n.Name, "referenced type is not declared")
	}
	if slices.Contains(stack, n.Name) {
		return schema.Ref(opts.root(), n.Name), nil
	}
	return t.object(decl, opts, append(stack, n.Name))
}

// object inlines a declaration by translating each member.
func (t *Translator) object(decl *registry.TypeDecl, opts Options, stack []string) (*schema.Fragment, error) {
	return objectSchema(decl, func(m *registry.Member) (*schema.Fragment, error) {
		mopts := opts
		mopts.Owner = decl.Name + "." + m.Name
		mopts.quiet = true
		return t.translate(m.Type, m.Tags, mopts, stack)
	})
}

// objectSchema assembles the object definition of decl from per-member
// fragments. Members without a schema are omitted.
func objectSchema(decl *registry.TypeDecl, member func(*registry.Member) (*schema.Fragment, error)) (*schema.Fragment, error) {
	f := schema.Type("object")
	for _, m := range decl.Members {
		mf, err := member(m)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", decl.Name, m.Name, err)
		}
		if mf == nil {
			continue
		}
		if doc := m.Doc.Text(); doc != "" {
			mf.Description = doc
		}
		if f.Properties == nil {
			f.Properties = make(map[string]*schema.Fragment)
		}
		f.Properties[m.Name] = mf
		if !m.Optional {
			f.Required = append(f.Required, m.Name)
		}
	}
	if doc := decl.Doc.Text(); doc != "" {
		f.Description = doc
	}
	return f, nil
}

// UnwrapPromise returns T for Promise<T>, nil for a bare Promise, and n otherwise.
func UnwrapPromise(n ir.TypeNode) ir.TypeNode {
	ref, ok := n.(*ir.Reference)
	if !ok || ref.Name != "Promise" {
		return n
	}
	if len(ref.Args) == 0 {
		return nil
	}
	return ref.Args[0]
}
