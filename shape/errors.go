package shape

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrInvalidPredicate is returned when a predicate does not end with
	// its property name.
	ErrInvalidPredicate = errors.New("shape: predicate does not end with property name")
	// ErrUnregistered is returned for types with no shape.
	ErrUnregistered = errors.New("shape: type not registered")
	// ErrDuplicate is returned when a type or predicate is declared twice.
	ErrDuplicate = errors.New("shape: duplicate declaration")
	// ErrAbstract is returned when an abstract shape is instantiated.
	ErrAbstract = errors.New("shape: type cannot be instantiated")
	// ErrInvalidValue is returned when a value does not fit a property.
	ErrInvalidValue = errors.New("shape: value does not fit property")
)

// Error describes a malformed or inconsistent shape.
type Error struct {
	Type     reflect.Type
	Property string
	Err      error
}

func (e *Error) Error() string {
	if e.Property != "" {
		return fmt.Sprintf("%s.%s: %v", typeName(e.Type), e.Property, e.Err)
	}
	return fmt.Sprintf("%s: %v", typeName(e.Type), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
