package rdf

import (
	"fmt"
	"net/url"
	"strings"
)

// IsAbsoluteIRI reports whether iri carries a scheme.
func IsAbsoluteIRI(iri string) bool {
	if iri == "" {
		return false
	}
	parsed, err := url.Parse(iri)
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && isScheme(parsed.Scheme)
}

// ValidateIRI checks that iri is syntactically usable as a graph node name.
// Relative references are accepted; use IsAbsoluteIRI to require a scheme.
func ValidateIRI(iri string) error {
	if iri == "" {
		return fmt.Errorf("%w: empty IRI", ErrInvalidIRI)
	}
	parsed, err := url.Parse(iri)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidIRI, err)
	}
	if parsed.Scheme != "" && !isScheme(parsed.Scheme) {
		return fmt.Errorf("%w: bad scheme in %q", ErrInvalidIRI, iri)
	}
	if strings.HasPrefix(iri, "//") {
		return fmt.Errorf("%w: network-path reference without scheme: %s", ErrInvalidIRI, iri)
	}
	for i, r := range iri {
		if r < 0x20 || r == '<' || r == '>' || r == '"' || r == ' ' {
			return fmt.Errorf("%w: invalid character %q at position %d in %s", ErrInvalidIRI, r, i, iri)
		}
	}
	return nil
}

// SplitIRI splits iri into a namespace ending in '#', '/' or ':' and the
// local name that follows it. The local name is empty when no split point
// leaves a valid local name.
func SplitIRI(iri string) (namespace, local string) {
	idx := strings.LastIndexAny(iri, "#/:")
	if idx < 0 || idx == len(iri)-1 {
		return iri, ""
	}
	candidate := iri[idx+1:]
	// Shrink the local name until it starts with a name-start character.
	for candidate != "" && !isQNameLocal(candidate) {
		candidate = candidate[1:]
	}
	if candidate == "" {
		return iri, ""
	}
	return iri[:len(iri)-len(candidate)], candidate
}

func isScheme(scheme string) bool {
	for i, r := range scheme {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && ((r >= '0' && r <= '9') || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return scheme != ""
}
