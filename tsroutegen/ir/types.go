// Package ir defines the intermediate representation handed from the source
// analyzer to the schema synthesis engine: type annotation nodes, documentation
// comments, decorator arguments and the error taxonomy shared by every phase.
package ir

import "strings"

// Documentation holds a symbol's own documentation comment.
type Documentation struct {
	// Summary is the first sentence or paragraph.
	Summary string

	// Body is the complete documentation text, including the summary.
	// May contain multiple paragraphs separated by blank lines.
	Body string

	// Deprecated is non-nil if the symbol is marked deprecated.
	// The string value is the deprecation message (may be empty).
	Deprecated *string
}

// IsZero returns true if the documentation is empty.
func (d Documentation) IsZero() bool {
	return d.Summary == "" && d.Body == "" && d.Deprecated == nil
}

// Text returns the full documentation text, falling back to the summary.
func (d Documentation) Text() string {
	if body := strings.TrimSpace(d.Body); body != "" {
		return body
	}
	return strings.TrimSpace(d.Summary)
}

// DocTag is a structured documentation tag such as "@minimum 0" or "@type {integer}".
type DocTag struct {
	// Name is the tag name without the leading "@".
	Name string

	// Value is the raw text following the tag name.
	Value string

	// TypeExpr is the braced type expression, if the tag carried one ("integer" for "{integer}").
	TypeExpr string
}

// Source represents source code location information.
type Source struct {
	File   string
	Line   int
	Column int
}

// IsZero returns true if the source location is empty.
func (s Source) IsZero() bool {
	return s.File == "" && s.Line == 0 && s.Column == 0
}

// Warning represents a non-fatal issue encountered during generation.
type Warning struct {
	// Code is a machine-readable warning identifier.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Source is the location that triggered the warning, if applicable.
	Source *Source

	// Name is the declaration or endpoint that triggered the warning, if applicable.
	Name string
}

// ArgKind classifies a decorator argument as reported by the source analyzer.
type ArgKind int

const (
	ArgString     ArgKind = iota // "'/widgets'"
	ArgNumber                    // "42"
	ArgIdentifier                // "WIDGETS_PATH"
	ArgExpression                // anything else: calls, arrow functions, templates
)

// String returns the string representation of the argument kind.
func (k ArgKind) String() string {
	switch k {
	case ArgString:
		return "string"
	case ArgNumber:
		return "number"
	case ArgIdentifier:
		return "identifier"
	case ArgExpression:
		return "expression"
	default:
		return "unknown"
	}
}

// DecoratorArg is one argument of a decorator application.
type DecoratorArg struct {
	Kind ArgKind

	// Value is the literal text: the unquoted string, the number as written,
	// the identifier name, or the source text of an expression.
	Value string
}

// IsLiteral reports whether the argument can be used as a path override.
func (a DecoratorArg) IsLiteral() bool {
	return a.Kind == ArgString || a.Kind == ArgNumber || a.Kind == ArgIdentifier
}
