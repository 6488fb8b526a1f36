package literal

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/geoknoesis/rdfbind/rdf"
)

var (
	// ErrInvalidLexical is returned when a lexical form is not valid for its datatype.
	ErrInvalidLexical = errors.New("literal: invalid lexical form")
	// ErrUnsupportedType is returned for Go types with no literal mapping.
	ErrUnsupportedType = errors.New("literal: unsupported type")
)

// Error gives the value, literal and target involved in a codec failure.
type Error struct {
	Value   any
	Literal rdf.Literal
	Target  reflect.Type
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Target != nil:
		return fmt.Sprintf("decode %s into %s: %v", e.Literal, e.Target, e.Err)
	case e.Value != nil:
		return fmt.Sprintf("encode %T: %v", e.Value, e.Err)
	default:
		return fmt.Sprintf("literal %s: %v", e.Literal, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func invalid(l rdf.Literal, target reflect.Type, format string, args ...any) error {
	return &Error{Literal: l, Target: target, Err: fmt.Errorf("%w: "+format, append([]any{ErrInvalidLexical}, args...)...)}
}
