// Package analysis reads the declaration manifest produced by the source
// analyzer and replays it into a declaration registry.
//
// The manifest is JSON or YAML:
//
//	files:
//	  - path: src/widgets.ts
//	    declarations:
//	      - kind: class
//	        name: Widgets
//	        doc: "/** Manage widgets. */"
//	        decorators:
//	          - name: controller
//	            args: [{kind: string, value: widgets}]
//	        methods:
//	          - name: list
//	            decorators: [{name: get}]
//	            returns: {kind: reference, name: Promise, args: [{kind: array, element: {kind: reference, name: Widget}}]}
//
// Type annotations use the node encoding of the ir package.
package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/broady/tsroute/tsroutegen/ir"
)

// Declaration kinds.
const (
	KindType     = "type"
	KindClass    = "class"
	KindFunction = "function"
)

// Manifest is the serialized declaration tree of one project.
type Manifest struct {
	Files []File `json:"files" validate:"dive"`
}

// File holds the declarations of one source file in source order.
type File struct {
	Path         string        `json:"path" validate:"required"`
	Declarations []Declaration `json:"declarations" validate:"dive"`
}

// Declaration is a top-level type, class or function.
type Declaration struct {
	Kind string `json:"kind" validate:"required,oneof=type class function"`
	Name string `json:"name" validate:"required"`
	Doc  string `json:"doc,omitempty"`
	Line int    `json:"line,omitempty" validate:"gte=0"`

	// Members of a type declaration.
	Members []Member `json:"members,omitempty" validate:"dive"`

	Decorators []Decorator `json:"decorators,omitempty" validate:"dive"`

	// Methods of a class.
	Methods []Method `json:"methods,omitempty" validate:"dive"`

	// Params and Returns of a function.
	Params  []Param         `json:"params,omitempty" validate:"dive"`
	Returns json.RawMessage `json:"returns,omitempty"`
}

// Member is a property of a type declaration.
type Member struct {
	Name     string          `json:"name" validate:"required"`
	Type     json.RawMessage `json:"type" validate:"required"`
	Optional bool            `json:"optional,omitempty"`
	Doc      string          `json:"doc,omitempty"`
}

// Method is a class method.
type Method struct {
	Name       string          `json:"name" validate:"required"`
	Doc        string          `json:"doc,omitempty"`
	Line       int             `json:"line,omitempty" validate:"gte=0"`
	Decorators []Decorator     `json:"decorators,omitempty" validate:"dive"`
	Params     []Param         `json:"params,omitempty" validate:"dive"`
	Returns    json.RawMessage `json:"returns,omitempty"`
}

// Param is a positional parameter. Doc tags in Doc constrain its schema.
type Param struct {
	Name string          `json:"name" validate:"required"`
	Type json.RawMessage `json:"type" validate:"required"`
	Doc  string          `json:"doc,omitempty"`
}

// Decorator is one decorator application.
type Decorator struct {
	Name string `json:"name" validate:"required"`
	Args []Arg  `json:"args,omitempty" validate:"dive"`
}

// Arg is a decorator argument. Value may be written as a string or a number.
type Arg struct {
	Kind  string   `json:"kind" validate:"required,oneof=string number identifier expression"`
	Value argValue `json:"value"`
}

type argValue string

func (v *argValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = argValue(s)
		return nil
	}
	*v = argValue(data)
	return nil
}

// DecoratorArg converts a to its ir form.
func (a Arg) DecoratorArg() ir.DecoratorArg {
	var kind ir.ArgKind
	switch a.Kind {
	case "string":
		kind = ir.ArgString
	case "number":
		kind = ir.ArgNumber
	case "identifier":
		kind = ir.ArgIdentifier
	default:
		kind = ir.ArgExpression
	}
	return ir.DecoratorArg{Kind: kind, Value: string(a.Value)}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads and decodes a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Decode parses a JSON or YAML manifest and validates its structure.
func Decode(data []byte) (*Manifest, error) {
	// JSON is a subset of YAML; decode generically, then into the typed
	// tree so raw type nodes keep their JSON encoding.
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if generic == nil {
		return nil, fmt.Errorf("parse manifest: empty document")
	}
	canonical, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	var m Manifest
	dec := json.NewDecoder(bytes.NewReader(canonical))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the manifest structure.
func (m *Manifest) Validate() error {
	err := validate.Struct(m)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("invalid manifest: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %s", strings.TrimPrefix(fe.Namespace(), "Manifest."), fe.Tag()))
	}
	return fmt.Errorf("invalid manifest: %s", strings.Join(msgs, "; "))
}
