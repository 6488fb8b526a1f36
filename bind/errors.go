package bind

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrorCode classifies engine failures.
type ErrorCode string

const (
	// ErrCodeShape indicates malformed or inconsistent shape metadata.
	ErrCodeShape ErrorCode = "SHAPE_ERROR"
	// ErrCodeRelativeURI indicates a relative URI while relative URIs are disabled.
	ErrCodeRelativeURI ErrorCode = "RELATIVE_URI"
	// ErrCodeLiteral indicates a literal invalid for its datatype.
	ErrCodeLiteral ErrorCode = "LITERAL_ERROR"
	// ErrCodeCardinality indicates too many or too few values.
	ErrCodeCardinality ErrorCode = "CARDINALITY_ERROR"
	// ErrCodeInstantiation indicates a resolved type cannot be constructed.
	ErrCodeInstantiation ErrorCode = "INSTANTIATION_ERROR"
	// ErrCodeLookup indicates a link target was not found.
	ErrCodeLookup ErrorCode = "LOOKUP_ERROR"
	// ErrCodeDepthExceeded indicates the recursion ceiling was reached.
	ErrCodeDepthExceeded ErrorCode = "DEPTH_EXCEEDED"
)

var (
	ErrShape         = errors.New("bind: invalid shape")
	ErrRelativeURI   = errors.New("bind: relative URI")
	ErrLiteral       = errors.New("bind: invalid literal")
	ErrCardinality   = errors.New("bind: cardinality violated")
	ErrInstantiation = errors.New("bind: cannot instantiate type")
	ErrLookup        = errors.New("bind: link target not found")
	ErrDepthExceeded = errors.New("bind: maximum depth exceeded")
)

var sentinels = map[ErrorCode]error{
	ErrCodeShape:         ErrShape,
	ErrCodeRelativeURI:   ErrRelativeURI,
	ErrCodeLiteral:       ErrLiteral,
	ErrCodeCardinality:   ErrCardinality,
	ErrCodeInstantiation: ErrInstantiation,
	ErrCodeLookup:        ErrLookup,
	ErrCodeDepthExceeded: ErrDepthExceeded,
}

// Error carries the type, accessor and value involved in a failure.
type Error struct {
	Code     ErrorCode
	Type     reflect.Type
	Accessor string
	Value    any
	Err      error
}

func (e *Error) Error() string {
	var msg strings.Builder
	if s, ok := sentinels[e.Code]; ok {
		msg.WriteString(s.Error())
	} else {
		msg.WriteString("bind: " + string(e.Code))
	}
	if e.Type != nil {
		msg.WriteString(": ")
		msg.WriteString(e.Type.String())
		if e.Accessor != "" {
			msg.WriteString(".")
			msg.WriteString(e.Accessor)
		}
	}
	if e.Value != nil {
		fmt.Fprintf(&msg, " (value %v)", e.Value)
	}
	if e.Err != nil {
		msg.WriteString(": ")
		msg.WriteString(e.Err.Error())
	}
	return msg.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's code.
func (e *Error) Is(target error) bool {
	return target != nil && sentinels[e.Code] == target
}

// Code returns the error code of err, or "" when err is not an engine error.
func Code(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func newError(code ErrorCode, t reflect.Type, accessor string, value any, err error) *Error {
	return &Error{Code: code, Type: t, Accessor: accessor, Value: value, Err: err}
}
