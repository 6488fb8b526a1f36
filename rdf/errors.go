package rdf

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrorCode represents a programmatic error code for error handling.
type ErrorCode string

const (
	// ErrCodeUnsupportedFormat indicates an unsupported format.
	ErrCodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	// ErrCodeLineTooLong indicates a line exceeded the configured limit.
	ErrCodeLineTooLong ErrorCode = "LINE_TOO_LONG"
	// ErrCodeParseError indicates a general parse error.
	ErrCodeParseError ErrorCode = "PARSE_ERROR"
	// ErrCodeIOError indicates an I/O error.
	ErrCodeIOError ErrorCode = "IO_ERROR"
	// ErrCodeContextCanceled indicates the context was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
	// ErrCodeInvalidIRI indicates an invalid IRI was encountered.
	ErrCodeInvalidIRI ErrorCode = "INVALID_IRI"
)

var (
	// ErrUnsupportedFormat indicates an unsupported format.
	ErrUnsupportedFormat = errors.New("unsupported RDF format")
	// ErrLineTooLong indicates a line exceeded the configured limit.
	ErrLineTooLong = errors.New("rdf: line exceeds configured limit")
	// ErrInvalidIRI indicates a malformed IRI.
	ErrInvalidIRI = errors.New("rdf: invalid IRI")
	// ErrWriterClosed is returned by writes after Close.
	ErrWriterClosed = errors.New("rdf: writer closed")
)

// Code returns the error code for an error, or ErrCodeParseError if unknown.
// Returns empty string for nil errors or io.EOF (which is not an error condition).
func Code(err error) ErrorCode {
	if err == nil || err == io.EOF {
		return ""
	}

	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return ErrCodeUnsupportedFormat
	case errors.Is(err, ErrLineTooLong):
		return ErrCodeLineTooLong
	case errors.Is(err, ErrInvalidIRI):
		return ErrCodeInvalidIRI
	case isContextError(err):
		return ErrCodeContextCanceled
	}

	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return ErrCodeParseError
	}
	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return ErrCodeIOError
	}
	return ErrCodeParseError
}

// ParseError provides structured context for parse failures.
type ParseError struct {
	Format    Format // Syntax being read
	Statement string // Offending line
	Line      int    // 1-based line number (0 if unknown)
	Column    int    // 1-based column number (0 if unknown)
	Err       error  // Underlying error
}

func (e *ParseError) Error() string {
	var msg strings.Builder
	msg.WriteString(string(e.Format))
	if e.Line > 0 {
		if e.Column > 0 {
			fmt.Fprintf(&msg, ":%d:%d", e.Line, e.Column)
		} else {
			fmt.Fprintf(&msg, ":%d", e.Line)
		}
	}
	msg.WriteString(": ")
	msg.WriteString(e.Err.Error())
	if excerpt := e.excerpt(); excerpt != "" {
		msg.WriteString("\n  ")
		msg.WriteString(excerpt)
	}
	return msg.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// excerpt shows the statement around the error column with a caret under it.
func (e *ParseError) excerpt() string {
	const window = 40
	if e.Statement == "" {
		return ""
	}
	if e.Column <= 0 {
		if len(e.Statement) > 2*window {
			return e.Statement[:2*window] + "..."
		}
		return e.Statement
	}
	pos := min(e.Column-1, len(e.Statement))
	start := max(pos-window, 0)
	end := min(pos+window, len(e.Statement))
	text := e.Statement[start:end]
	caret := pos - start
	if start > 0 {
		text = "..." + text
		caret += 3
	}
	if end < len(e.Statement) {
		text += "..."
	}
	return text + "\n  " + strings.Repeat(" ", caret) + "^"
}

// IOError wraps failures of the underlying reader or writer.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string { return "rdf: " + e.Op + ": " + e.Err.Error() }

func (e *IOError) Unwrap() error { return e.Err }

func wrapIOError(op string, err error) error {
	if err == nil || err == io.EOF {
		return err
	}
	return &IOError{Op: op, Err: err}
}
