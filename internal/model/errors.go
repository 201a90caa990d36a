// Package model holds the immutable value types exchanged between the
// grammar engine's pipeline stages: parsed fields and nodes, records,
// parse results, and the closed error-kind taxonomy.
package model

import "fmt"

// ErrorKind is the closed set of error sources (spec.md §7).
type ErrorKind string

const (
	ErrGrammarSyntax           ErrorKind = "GrammarSyntax"
	ErrGrammarSemantic         ErrorKind = "GrammarSemantic"
	ErrUnsupportedFeature      ErrorKind = "UnsupportedFeature"
	ErrInvalidOffset           ErrorKind = "InvalidOffset"
	ErrFileNotFound            ErrorKind = "FileNotFound"
	ErrFieldOutOfBounds        ErrorKind = "FieldOutOfBounds"
	ErrLengthUnresolved        ErrorKind = "LengthUnresolved"
	ErrLengthExceedsCap        ErrorKind = "LengthExceedsCap"
	ErrStrideUnknown           ErrorKind = "StrideUnknown"
	ErrInvalidChunkLength      ErrorKind = "InvalidChunkLength"
	ErrDiscriminatorUnresolvable ErrorKind = "DiscriminatorUnresolvable"
	ErrOverlap                 ErrorKind = "Overlap"
	ErrDecodeFailure           ErrorKind = "DecodeFailure"
)

// Fatal reports whether an error of this kind aborts the operation that
// produced it, rather than attaching to a node and letting the parser
// continue (spec.md §7's Fatal? column).
func (k ErrorKind) Fatal() bool {
	switch k {
	case ErrGrammarSyntax, ErrGrammarSemantic, ErrUnsupportedFeature,
		ErrInvalidOffset, ErrFileNotFound:
		return true
	default:
		return false
	}
}

// ParseError is a single diagnostic: every error carries a message, a
// dotted path, and the absolute offset where applicable (spec.md §7).
type ParseError struct {
	Kind    ErrorKind
	Message string
	Path    string
	Offset  int64
	HasOffset bool
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	if e.HasOffset {
		return fmt.Sprintf("%s: %s (at %s, offset %d)", e.Kind, e.Message, e.Path, e.Offset)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (at %s)", e.Kind, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError builds a ParseError without an offset.
func NewError(kind ErrorKind, path, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Message: fmt.Sprintf(format, args...), Path: path}
}

// NewErrorAt builds a ParseError with an absolute offset attached.
func NewErrorAt(kind ErrorKind, path string, offset int64, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Message: fmt.Sprintf(format, args...), Path: path, Offset: offset, HasOffset: true}
}
