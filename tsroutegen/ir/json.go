package ir

import (
	"encoding/json"
	"fmt"
)

// JSON serialization for type nodes.
// All nodes carry a "kind" field for type discrimination; primitives use
// their keyword as the kind.

type docJSON struct {
	Summary    string  `json:"summary,omitempty"`
	Body       string  `json:"body,omitempty"`
	Deprecated *string `json:"deprecated,omitempty"`
}

func encodeDoc(d Documentation) *docJSON {
	if d.IsZero() {
		return nil
	}
	return &docJSON{Summary: d.Summary, Body: d.Body, Deprecated: d.Deprecated}
}

// MarshalJSON implements json.Marshaler for Primitive.
func (n *Primitive) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind string   `json:"kind"`
		Doc  *docJSON `json:"doc,omitempty"`
	}{
		Kind: n.Keyword.String(),
		Doc:  encodeDoc(n.Docs),
	})
}

// MarshalJSON implements json.Marshaler for Array.
func (n *Array) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind    string   `json:"kind"`
		Element TypeNode `json:"element"`
		Doc     *docJSON `json:"doc,omitempty"`
	}{
		Kind:    "array",
		Element: n.Element,
		Doc:     encodeDoc(n.Docs),
	})
}

// MarshalJSON implements json.Marshaler for Reference.
func (n *Reference) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind string     `json:"kind"`
		Name string     `json:"name"`
		Args []TypeNode `json:"args,omitempty"`
		Doc  *docJSON   `json:"doc,omitempty"`
	}{
		Kind: "reference",
		Name: n.Name,
		Args: n.Args,
		Doc:  encodeDoc(n.Docs),
	})
}

// MarshalJSON implements json.Marshaler for Union.
func (n *Union) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind    string     `json:"kind"`
		Members []TypeNode `json:"members"`
		Doc     *docJSON   `json:"doc,omitempty"`
	}{
		Kind:    "union",
		Members: n.Members,
		Doc:     encodeDoc(n.Docs),
	})
}

// MarshalJSON implements json.Marshaler for Literal.
func (n *Literal) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind  string   `json:"kind"`
		Value any      `json:"value,omitempty"`
		Doc   *docJSON `json:"doc,omitempty"`
	}{
		Kind:  "literal",
		Value: n.Value,
		Doc:   encodeDoc(n.Docs),
	})
}

type rawNode struct {
	Kind    string            `json:"kind"`
	Element json.RawMessage   `json:"element"`
	Name    string            `json:"name"`
	Args    []json.RawMessage `json:"args"`
	Members []json.RawMessage `json:"members"`
	Value   any               `json:"value"`
	Doc     *docJSON          `json:"doc"`
}

// DecodeNode decodes a JSON encoded type node.
// Unknown kinds fail with an UnsupportedType error.
func DecodeNode(data []byte) (TypeNode, error) {
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode type node: %w", err)
	}
	var n TypeNode
	switch raw.Kind {
	case "array":
		if len(raw.Element) == 0 {
			return nil, Errorf(CodeUnsupportedType, "", "array node without element")
		}
		elem, err := DecodeNode(raw.Element)
		if err != nil {
			return nil, err
		}
		n = ArrayOf(elem)
	case "reference":
		if raw.Name == "" {
			return nil, Errorf(CodeUnsupportedType, "", "reference node without name")
		}
		args, err := decodeNodes(raw.Args)
		if err != nil {
			return nil, err
		}
		n = Ref(raw.Name, args...)
	case "union":
		members, err := decodeNodes(raw.Members)
		if err != nil {
			return nil, err
		}
		n = UnionOf(members...)
	case "literal":
		n = Lit(raw.Value)
	default:
		kw, ok := ParseKeyword(raw.Kind)
		if !ok {
			return nil, Errorf(CodeUnsupportedType, raw.Kind, "no schema mapping for type node kind")
		}
		n = &Primitive{Keyword: kw}
	}
	if raw.Doc != nil {
		n = WithDoc(n, Documentation{Summary: raw.Doc.Summary, Body: raw.Doc.Body, Deprecated: raw.Doc.Deprecated})
	}
	return n, nil
}

func decodeNodes(raws []json.RawMessage) ([]TypeNode, error) {
	if len(raws) == 0 {
		return nil, nil
	}
	nodes := make([]TypeNode, len(raws))
	for i, r := range raws {
		n, err := DecodeNode(r)
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	return nodes, nil
}
