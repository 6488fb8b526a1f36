package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/geoknoesis/rdfbind/graph"
	"github.com/geoknoesis/rdfbind/graph/ldgraph"
	"github.com/geoknoesis/rdfbind/graph/memgraph"
	"github.com/geoknoesis/rdfbind/graph/quadgraph"
	"github.com/geoknoesis/rdfbind/rdf"
)

// stdio is the path naming standard input or output.
const stdio = "-"

var backends = map[string]graph.Backend{
	"mem":    memgraph.New(),
	"quad":   quadgraph.New(),
	"jsonld": ldgraph.New(),
}

// decoders are tried in order for an input format.
var decoders = []graph.Serializer{memgraph.New(), quadgraph.New(), ldgraph.New()}

func backendByName(name string) (graph.Backend, error) {
	b, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend %q (want mem, quad or jsonld)", name)
	}
	return b, nil
}

// resolveFormat prefers an explicit flag value over the path extension.
func resolveFormat(flag, path string) (rdf.Format, error) {
	if flag != "" {
		if f, ok := rdf.ParseFormat(flag); ok {
			return f, nil
		}
		if strings.Contains(flag, "/") {
			return rdf.FormatFromContentType(flag)
		}
		return "", fmt.Errorf("%w: %q", rdf.ErrUnsupportedFormat, flag)
	}
	if path == stdio {
		return rdf.FormatNTriples, nil
	}
	return rdf.FormatFromPath(path)
}

func decoderFor(f rdf.Format) (graph.Serializer, error) {
	for _, s := range decoders {
		if graph.SupportsFormat(s, f) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: no backend reads %s", rdf.ErrUnsupportedFormat, f)
}

// encoderFor picks the backend that writes f.
func encoderFor(f rdf.Format) (graph.Serializer, error) {
	switch f {
	case rdf.FormatJSONLD:
		return ldgraph.New(), nil
	case rdf.FormatNTriples, rdf.FormatNQuads, rdf.FormatTurtle:
		return memgraph.New(), nil
	default:
		return nil, fmt.Errorf("%w: no backend writes %s", rdf.ErrUnsupportedFormat, f)
	}
}

func readGraph(ctx context.Context, path string, f rdf.Format) (graph.Graph, error) {
	dec, err := decoderFor(f)
	if err != nil {
		return nil, err
	}
	var r io.Reader = os.Stdin
	if path != stdio {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		r = file
	}
	g, err := dec.Decode(ctx, r, f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return g, nil
}

func writeGraph(path string, stdout io.Writer, g graph.Graph, f rdf.Format) (err error) {
	enc, err := encoderFor(f)
	if err != nil {
		return err
	}
	w := stdout
	if path != stdio {
		file, ferr := os.Create(path)
		if ferr != nil {
			return ferr
		}
		defer func() {
			if cerr := file.Close(); err == nil {
				err = cerr
			}
		}()
		w = file
	}
	if err := enc.Encode(w, g, f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// bindPrefixes adds the configured namespaces to g without overriding
// prefixes the graph already carries.
func bindPrefixes(g graph.Graph, namespaces map[string]string) {
	existing := g.Prefixes()
	for prefix, ns := range namespaces {
		if _, ok := existing[prefix]; ok {
			continue
		}
		if _, bound := g.Prefix(ns); bound {
			continue
		}
		g.SetPrefix(prefix, ns)
	}
}
