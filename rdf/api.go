package rdf

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Reader streams RDF triples from an input.
type Reader interface {
	Next() (Triple, error)
	Close() error
}

// Writer streams RDF triples to an output.
type Writer interface {
	Write(Triple) error
	Flush() error
	Close() error
}

// Options configures readers and writers.
type Options struct {
	// MaxLineBytes bounds a single input line; 0 disables the limit.
	MaxLineBytes int
	// Prefixes are emitted as @prefix lines and used to abbreviate IRIs (Turtle only).
	Prefixes map[string]string
	// BaseIRI is emitted as @base (Turtle only).
	BaseIRI string
}

// Option mutates Options.
type Option func(*Options)

// OptMaxLineBytes sets the per-line input limit.
func OptMaxLineBytes(n int) Option {
	return func(o *Options) { o.MaxLineBytes = n }
}

// OptPrefixes sets the prefix table used by the Turtle writer.
func OptPrefixes(prefixes map[string]string) Option {
	return func(o *Options) { o.Prefixes = prefixes }
}

// OptBaseIRI sets the base IRI written by the Turtle writer.
func OptBaseIRI(base string) Option {
	return func(o *Options) { o.BaseIRI = base }
}

func defaultOptions() Options {
	return Options{MaxLineBytes: 1 << 20}
}

func buildOptions(opts []Option) Options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// NewReader returns a reader for a line-based format.
func NewReader(r io.Reader, format Format, opts ...Option) (Reader, error) {
	switch format {
	case FormatNTriples, FormatNQuads:
		return newLineReader(r, format, buildOptions(opts)), nil
	default:
		return nil, fmt.Errorf("%w: cannot read %q", ErrUnsupportedFormat, format)
	}
}

// NewWriter returns a writer for format.
func NewWriter(w io.Writer, format Format, opts ...Option) (Writer, error) {
	o := buildOptions(opts)
	switch format {
	case FormatNTriples, FormatNQuads:
		return newLineWriter(w), nil
	case FormatTurtle:
		return newTurtleWriter(w, o), nil
	default:
		return nil, fmt.Errorf("%w: cannot write %q", ErrUnsupportedFormat, format)
	}
}

// ReadAll reads every triple from r, checking ctx between statements.
func ReadAll(ctx context.Context, r io.Reader, format Format, opts ...Option) ([]Triple, error) {
	reader, err := NewReader(r, format, opts...)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var triples []Triple
	for {
		if err := ctx.Err(); err != nil {
			return triples, err
		}
		t, err := reader.Next()
		if err == io.EOF {
			return triples, nil
		}
		if err != nil {
			return triples, err
		}
		triples = append(triples, t)
	}
}

// WriteAll writes triples to w in format and flushes.
func WriteAll(w io.Writer, format Format, triples []Triple, opts ...Option) error {
	writer, err := NewWriter(w, format, opts...)
	if err != nil {
		return err
	}
	for _, t := range triples {
		if err := writer.Write(t); err != nil {
			_ = writer.Close()
			return err
		}
	}
	return writer.Close()
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
