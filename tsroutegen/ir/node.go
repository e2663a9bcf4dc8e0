package ir

import (
	"strconv"
	"strings"
)

// NodeKind identifies the variant of a type node.
type NodeKind int

const (
	KindPrimitive NodeKind = iota // Keyword type (string, number, ...)
	KindArray                     // T[]
	KindReference                 // Name<Args...>
	KindUnion                     // A | B | ...
	KindLiteral                   // "a", 1, true
)

// String returns the string representation of the node kind.
func (k NodeKind) String() string {
	switch k {
	case KindPrimitive:
		return "Primitive"
	case KindArray:
		return "Array"
	case KindReference:
		return "Reference"
	case KindUnion:
		return "Union"
	case KindLiteral:
		return "Literal"
	default:
		return "Unknown"
	}
}

// TypeNode is a type annotation produced by the source analyzer.
// Nodes are immutable once constructed.
type TypeNode interface {
	// Kind returns the node kind for type switching.
	Kind() NodeKind

	// Doc returns the documentation of the symbol the node was read from.
	Doc() Documentation

	// Ensure only types in this package can implement TypeNode.
	sealed()
}

type nodeBase struct {
	Docs Documentation
}

func (b nodeBase) Doc() Documentation { return b.Docs }
func (nodeBase) sealed()              {}

// Keyword is a primitive type keyword.
type Keyword int

const (
	KeywordString Keyword = iota
	KeywordNumber
	KeywordBoolean
	KeywordNull
	KeywordUndefined
	KeywordSymbol
	KeywordObject
	KeywordAny
	KeywordFunction
)

var keywordNames = [...]string{
	KeywordString:    "string",
	KeywordNumber:    "number",
	KeywordBoolean:   "boolean",
	KeywordNull:      "null",
	KeywordUndefined: "undefined",
	KeywordSymbol:    "symbol",
	KeywordObject:    "object",
	KeywordAny:       "any",
	KeywordFunction:  "function",
}

// String returns the keyword as written in source.
func (k Keyword) String() string {
	if int(k) >= 0 && int(k) < len(keywordNames) {
		return keywordNames[k]
	}
	return "unknown"
}

// ParseKeyword returns the keyword for name. "unknown" and "void" are accepted
// as aliases of any and undefined.
func ParseKeyword(name string) (Keyword, bool) {
	switch name {
	case "unknown":
		return KeywordAny, true
	case "void":
		return KeywordUndefined, true
	}
	for i, n := range keywordNames {
		if n == name {
			return Keyword(i), true
		}
	}
	return 0, false
}

// Primitive is a keyword type.
type Primitive struct {
	nodeBase
	Keyword Keyword
}

// Kind returns KindPrimitive.
func (*Primitive) Kind() NodeKind { return KindPrimitive }

// Array is an array-of(T) node.
type Array struct {
	nodeBase
	Element TypeNode
}

// Kind returns KindArray.
func (*Array) Kind() NodeKind { return KindArray }

// Reference names a declared or builtin type, optionally with type arguments.
type Reference struct {
	nodeBase
	Name string
	Args []TypeNode
}

// Kind returns KindReference.
func (*Reference) Kind() NodeKind { return KindReference }

// Union is a union of member types.
type Union struct {
	nodeBase
	Members []TypeNode
}

// Kind returns KindUnion.
func (*Union) Kind() NodeKind { return KindUnion }

// Literal is a literal type. Value is a string, float64 or bool once resolved;
// a nil Value means the analyzer could not resolve the literal.
type Literal struct {
	nodeBase
	Value any
}

// Kind returns KindLiteral.
func (*Literal) Kind() NodeKind { return KindLiteral }

// TypeOf returns the JavaScript typeof of the literal value.
func (l *Literal) TypeOf() (string, bool) {
	switch l.Value.(type) {
	case string:
		return "string", true
	case float64, float32, int, int64, int32:
		return "number", true
	case bool:
		return "boolean", true
	default:
		return "", false
	}
}

// Format returns the literal value rendered as text.
func (l *Literal) Format() string {
	switch v := l.Value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Keyword constructors.
func String() *Primitive    { return &Primitive{Keyword: KeywordString} }
func Number() *Primitive    { return &Primitive{Keyword: KeywordNumber} }
func Boolean() *Primitive   { return &Primitive{Keyword: KeywordBoolean} }
func Null() *Primitive      { return &Primitive{Keyword: KeywordNull} }
func Undefined() *Primitive { return &Primitive{Keyword: KeywordUndefined} }
func Symbol() *Primitive    { return &Primitive{Keyword: KeywordSymbol} }
func Object() *Primitive    { return &Primitive{Keyword: KeywordObject} }
func Any() *Primitive       { return &Primitive{Keyword: KeywordAny} }
func Function() *Primitive  { return &Primitive{Keyword: KeywordFunction} }

// ArrayOf returns an array node with the given element type.
func ArrayOf(element TypeNode) *Array {
	return &Array{Element: element}
}

// Ref returns a reference node.
func Ref(name string, args ...TypeNode) *Reference {
	return &Reference{Name: name, Args: args}
}

// UnionOf returns a union node.
func UnionOf(members ...TypeNode) *Union {
	return &Union{Members: members}
}

// Lit returns a literal node.
func Lit(value any) *Literal {
	return &Literal{Value: value}
}

// WithDoc returns a copy of n carrying doc.
func WithDoc(n TypeNode, doc Documentation) TypeNode {
	switch n := n.(type) {
	case *Primitive:
		c := *n
		c.Docs = doc
		return &c
	case *Array:
		c := *n
		c.Docs = doc
		return &c
	case *Reference:
		c := *n
		c.Docs = doc
		return &c
	case *Union:
		c := *n
		c.Docs = doc
		return &c
	case *Literal:
		c := *n
		c.Docs = doc
		return &c
	}
	return n
}

// Describe renders n in source notation, for messages.
func Describe(n TypeNode) string {
	var b strings.Builder
	describe(&b, n)
	return b.String()
}

func describe(b *strings.Builder, n TypeNode) {
	switch n := n.(type) {
	case nil:
		b.WriteString("<nil>")
	case *Primitive:
		b.WriteString(n.Keyword.String())
	case *Array:
		_, isUnion := n.Element.(*Union)
		if isUnion {
			b.WriteByte('(')
		}
		describe(b, n.Element)
		if isUnion {
			b.WriteByte(')')
		}
		b.WriteString("[]")
	case *Reference:
		b.WriteString(n.Name)
		if len(n.Args) > 0 {
			b.WriteByte('<')
			for i, a := range n.Args {
				if i > 0 {
					b.WriteString(", ")
				}
				describe(b, a)
			}
			b.WriteByte('>')
		}
	case *Union:
		for i, m := range n.Members {
			if i > 0 {
				b.WriteString(" | ")
			}
			describe(b, m)
		}
	case *Literal:
		if s, ok := n.Value.(string); ok {
			b.WriteString(strconv.Quote(s))
		} else if n.Value == nil {
			b.WriteString("<unresolved literal>")
		} else {
			b.WriteString(n.Format())
		}
	}
}
