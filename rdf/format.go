package rdf

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies RDF serialization formats.
type Format string

const (
	FormatTurtle   Format = "turtle"
	FormatNTriples Format = "ntriples"
	FormatNQuads   Format = "nquads"
	FormatJSONLD   Format = "jsonld"
)

// ParseFormat normalizes a format string.
func ParseFormat(value string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "turtle", "ttl":
		return FormatTurtle, true
	case "ntriples", "nt", "n-triples":
		return FormatNTriples, true
	case "nquads", "nq", "n-quads":
		return FormatNQuads, true
	case "jsonld", "json-ld", "json":
		return FormatJSONLD, true
	default:
		return "", false
	}
}

// FormatFromPath infers format from a filename extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttl":
		return FormatTurtle, nil
	case ".nt":
		return FormatNTriples, nil
	case ".nq":
		return FormatNQuads, nil
	case ".jsonld", ".json":
		return FormatJSONLD, nil
	default:
		return "", fmt.Errorf("%w: no format for path %q", ErrUnsupportedFormat, path)
	}
}

// FormatFromContentType infers format from a media type, ignoring parameters.
func FormatFromContentType(contentType string) (Format, error) {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch mediaType {
	case "text/turtle", "application/x-turtle":
		return FormatTurtle, nil
	case "application/n-triples", "text/plain":
		return FormatNTriples, nil
	case "application/n-quads":
		return FormatNQuads, nil
	case "application/ld+json":
		return FormatJSONLD, nil
	default:
		return "", fmt.Errorf("%w: no format for content type %q", ErrUnsupportedFormat, contentType)
	}
}

// ContentType returns the registered media type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatTurtle:
		return "text/turtle"
	case FormatNTriples:
		return "application/n-triples"
	case FormatNQuads:
		return "application/n-quads"
	case FormatJSONLD:
		return "application/ld+json"
	default:
		return ""
	}
}
