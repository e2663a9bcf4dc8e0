// Package schema defines the JSON Schema fragment tree produced by the
// translator and consumed by every artifact emitter.
package schema

import (
	"sort"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Fragment is a JSON-Schema-shaped node.
// A Fragment with only Ref set points at a shared definition.
type Fragment struct {
	Ref         string               `json:"$ref,omitempty"`
	Type        string               `json:"type,omitempty"`
	Description string               `json:"description,omitempty"`
	Format      string               `json:"format,omitempty"`
	Minimum     *float64             `json:"minimum,omitempty"`
	Maximum     *float64             `json:"maximum,omitempty"`
	Items       *Fragment            `json:"items,omitempty"`
	Properties  map[string]*Fragment `json:"properties,omitempty"`
	Required    []string             `json:"required,omitempty"`
	OneOf       []*Fragment          `json:"oneOf,omitempty"`

	// Definitions is only set on composed schemas that carry their own
	// copy of the shared definitions map.
	Definitions map[string]*Fragment `json:"definitions,omitempty"`
}

// Type constructs a fragment for a JSON Schema type name.
func Type(name string) *Fragment {
	return &Fragment{Type: name}
}

// Ref constructs a reference fragment.
func Ref(root, name string) *Fragment {
	return &Fragment{Ref: root + "/" + name}
}

// Float returns a pointer to v, for Minimum and Maximum.
func Float(v float64) *float64 {
	return &v
}

// IsRef reports whether f is a bare reference.
func (f *Fragment) IsRef() bool {
	return f != nil && f.Ref != ""
}

// Clone returns a deep copy of f.
func (f *Fragment) Clone() *Fragment {
	if f == nil {
		return nil
	}
	c := *f
	if f.Minimum != nil {
		c.Minimum = Float(*f.Minimum)
	}
	if f.Maximum != nil {
		c.Maximum = Float(*f.Maximum)
	}
	c.Items = f.Items.Clone()
	c.Properties = cloneMap(f.Properties)
	c.Definitions = cloneMap(f.Definitions)
	if f.Required != nil {
		c.Required = append([]string(nil), f.Required...)
	}
	if f.OneOf != nil {
		c.OneOf = make([]*Fragment, len(f.OneOf))
		for i, o := range f.OneOf {
			c.OneOf[i] = o.Clone()
		}
	}
	return &c
}

func cloneMap(m map[string]*Fragment) map[string]*Fragment {
	if m == nil {
		return nil
	}
	c := make(map[string]*Fragment, len(m))
	for k, v := range m {
		c[k] = v.Clone()
	}
	return c
}

// Walk calls fn for f and every fragment nested below it, parents first.
func Walk(f *Fragment, fn func(*Fragment)) {
	if f == nil {
		return
	}
	fn(f)
	Walk(f.Items, fn)
	for _, k := range sortedKeys(f.Properties) {
		Walk(f.Properties[k], fn)
	}
	for _, o := range f.OneOf {
		Walk(o, fn)
	}
	for _, k := range sortedKeys(f.Definitions) {
		Walk(f.Definitions[k], fn)
	}
}

// Rebase returns a copy of f with every reference under the from root
// rewritten to the to root.
func Rebase(f *Fragment, from, to string) *Fragment {
	c := f.Clone()
	prefix := from + "/"
	Walk(c, func(n *Fragment) {
		if strings.HasPrefix(n.Ref, prefix) {
			n.Ref = to + "/" + strings.TrimPrefix(n.Ref, prefix)
		}
	})
	return c
}

// RefName returns the definition name a reference under root points at.
func RefName(ref, root string) (string, bool) {
	name, ok := strings.CutPrefix(ref, root+"/")
	return name, ok && name != ""
}

// Refs returns the sorted set of definition names referenced under root.
func Refs(f *Fragment, root string) []string {
	seen := make(map[string]bool)
	Walk(f, func(n *Fragment) {
		if name, ok := RefName(n.Ref, root); ok {
			seen[name] = true
		}
	})
	return sortedKeys(seen)
}

// Encode renders v as deterministic JSON. Map keys are sorted so repeated
// runs produce byte-identical artifacts.
func Encode(v any, indent string) ([]byte, error) {
	opts := []json.Options{json.Deterministic(true)}
	if indent != "" {
		opts = append(opts, jsontext.WithIndent(indent))
	}
	return json.Marshal(v, opts...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
