package ldgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/piprate/json-gold/ld"

	"github.com/geoknoesis/rdfbind/graph"
	"github.com/geoknoesis/rdfbind/rdf"
)

// Formats lists the syntaxes the backend reads.
func (Backend) Formats() []rdf.Format {
	return []rdf.Format{rdf.FormatJSONLD, rdf.FormatNQuads, rdf.FormatNTriples}
}

// Encode writes g as compacted JSON-LD or as N-Quads. Graphs from other
// backends are copied into a dataset first.
func (b Backend) Encode(w io.Writer, g graph.Graph, format rdf.Format) error {
	lg, ok := g.(*Graph)
	if !ok {
		lg = NewGraph()
		if err := graph.Copy(lg, g); err != nil {
			return err
		}
	}
	switch format {
	case rdf.FormatNQuads, rdf.FormatNTriples:
		nquads, err := serializeNQuads(lg.dataset)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, nquads)
		return err
	case rdf.FormatJSONLD:
		doc, err := b.compact(lg)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	default:
		return fmt.Errorf("%w: ldgraph cannot write %q", graph.ErrUnsupportedFormat, format)
	}
}

// Decode reads JSON-LD or N-Quads into a new graph. Named graphs are merged.
func (b Backend) Decode(ctx context.Context, r io.Reader, format rdf.Format) (graph.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch format {
	case rdf.FormatNQuads, rdf.FormatNTriples:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		ds, err := (&ld.NQuadRDFSerializer{}).Parse(string(data))
		if err != nil {
			return nil, fmt.Errorf("ldgraph: %w", err)
		}
		return FromDataset(ds)
	case rdf.FormatJSONLD:
		var doc any
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("ldgraph: %w", err)
		}
		result, err := ld.NewJsonLdProcessor().ToRDF(doc, b.options())
		if err != nil {
			return nil, fmt.Errorf("ldgraph: %w", err)
		}
		ds, ok := result.(*ld.RDFDataset)
		if !ok {
			return nil, fmt.Errorf("ldgraph: unexpected ToRDF result %T", result)
		}
		g, err := FromDataset(ds)
		if err != nil {
			return nil, err
		}
		for prefix, ns := range contextPrefixes(doc) {
			g.SetPrefix(prefix, ns)
		}
		return g, nil
	default:
		return nil, fmt.Errorf("%w: ldgraph cannot read %q", graph.ErrUnsupportedFormat, format)
	}
}

func (b Backend) options() *ld.JsonLdOptions {
	return ld.NewJsonLdOptions(b.Base)
}

// compact turns the dataset into JSON-LD compacted against the graph's prefixes.
func (b Backend) compact(g *Graph) (any, error) {
	nquads, err := serializeNQuads(g.dataset)
	if err != nil {
		return nil, err
	}
	proc := ld.NewJsonLdProcessor()
	opts := b.options()
	opts.Format = "application/n-quads"
	expanded, err := proc.FromRDF(nquads, opts)
	if err != nil {
		return nil, fmt.Errorf("ldgraph: %w", err)
	}
	ctx := map[string]any{}
	for prefix, ns := range g.prefixes {
		ctx[prefix] = ns
	}
	compacted, err := proc.Compact(expanded, map[string]any{"@context": ctx}, b.options())
	if err != nil {
		return nil, fmt.Errorf("ldgraph: %w", err)
	}
	return compacted, nil
}

func serializeNQuads(ds *ld.RDFDataset) (string, error) {
	out, err := (&ld.NQuadRDFSerializer{}).Serialize(ds)
	if err != nil {
		return "", fmt.Errorf("ldgraph: %w", err)
	}
	nquads, ok := out.(string)
	if !ok {
		return "", fmt.Errorf("ldgraph: unexpected N-Quads result %T", out)
	}
	return nquads, nil
}

// contextPrefixes extracts simple prefix definitions from a top-level @context.
func contextPrefixes(doc any) map[string]string {
	top, ok := doc.(map[string]any)
	if !ok {
		return nil
	}
	ctx, ok := top["@context"].(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := map[string]string{}
	for _, k := range keys {
		ns, ok := ctx[k].(string)
		if !ok || len(k) == 0 || k[0] == '@' || !rdf.IsAbsoluteIRI(ns) {
			continue
		}
		out[k] = ns
	}
	return out
}

var _ graph.Serializer = Backend{}
