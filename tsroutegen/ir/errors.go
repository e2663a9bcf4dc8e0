package ir

import "fmt"

// ErrorCode identifies a kind of generation failure or warning.
type ErrorCode string

const (
	// Fatal: the shared schema graph would be wrong, the run aborts.
	CodeDuplicateDeclaration ErrorCode = "duplicate_declaration"
	CodeUndefinedType        ErrorCode = "undefined_type"
	CodeUnknownLiteral       ErrorCode = "unknown_literal"
	CodeUnsupportedType      ErrorCode = "unsupported_type"
	CodeUnresolvedDecorator  ErrorCode = "unresolved_decorator"

	// Non-fatal: reported as warnings, generation continues.
	CodeMalformedDocTag        ErrorCode = "malformed_doc_tag"
	CodeUnattachedEndpoint     ErrorCode = "unattached_endpoint"
	CodeNonLiteralDecoratorArg ErrorCode = "non_literal_decorator_arg"
	CodeDuplicateRouter        ErrorCode = "duplicate_router"
	CodeMissingRouter          ErrorCode = "missing_router"
	CodeDuplicateRoute         ErrorCode = "duplicate_route"
	CodeDocumentCompliance     ErrorCode = "document_compliance"
)

// Fatal reports whether errors of this kind abort generation.
func (c ErrorCode) Fatal() bool {
	switch c {
	case CodeDuplicateDeclaration, CodeUndefinedType, CodeUnknownLiteral,
		CodeUnsupportedType, CodeUnresolvedDecorator:
		return true
	}
	return false
}

// Error is a generation error carrying its kind and the offending name.
type Error struct {
	Code    ErrorCode
	Name    string
	Message string
	Source  *Source
}

// Sentinels for errors.Is matching by kind.
var (
	ErrDuplicateDeclaration = &Error{Code: CodeDuplicateDeclaration}
	ErrUndefinedType        = &Error{Code: CodeUndefinedType}
	ErrUnknownLiteral       = &Error{Code: CodeUnknownLiteral}
	ErrUnsupportedType      = &Error{Code: CodeUnsupportedType}
	ErrUnresolvedDecorator  = &Error{Code: CodeUnresolvedDecorator}
	ErrMalformedDocTag      = &Error{Code: CodeMalformedDocTag}
)

// Errorf creates a new Error with a formatted message.
func Errorf(code ErrorCode, name, format string, args ...any) *Error {
	return &Error{Code: code, Name: name, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	msg := string(e.Code)
	if e.Name != "" {
		msg += " " + e.Name
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Source != nil && e.Source.File != "" {
		msg = fmt.Sprintf("%s:%d: %s", e.Source.File, e.Source.Line, msg)
	}
	return msg
}

// Is matches errors of the same code. A target with a Name also requires
// the names to match.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Name == "" || t.Name == e.Name)
}

// Warning converts the error into a warning record.
func (e *Error) Warning() Warning {
	return Warning{Code: e.Code, Message: e.Message, Source: e.Source, Name: e.Name}
}
