package rdf

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

// turtleWriter groups consecutive triples sharing a subject with ';'.
type turtleWriter struct {
	writer  *bufio.Writer
	opts    Options
	err     error
	started bool
	subject Term
}

func newTurtleWriter(w io.Writer, opts Options) *turtleWriter {
	return &turtleWriter{writer: bufio.NewWriter(w), opts: opts}
}

func (e *turtleWriter) Write(t Triple) error {
	if e.err != nil {
		return e.err
	}
	if !e.started {
		if err := e.writeHeader(); err != nil {
			return err
		}
	}
	if t.S == nil || t.P.Value == "" || t.O == nil {
		return fmt.Errorf("turtle: missing statement fields")
	}
	var line string
	switch {
	case e.subject != nil && e.subject == t.S:
		line = " ;\n    " + e.renderPredicate(t.P) + " " + e.render(t.O)
	case e.subject != nil:
		line = " .\n" + e.render(t.S) + " " + e.renderPredicate(t.P) + " " + e.render(t.O)
	default:
		line = e.render(t.S) + " " + e.renderPredicate(t.P) + " " + e.render(t.O)
	}
	e.subject = t.S
	return e.write(line)
}

func (e *turtleWriter) Flush() error {
	if e.err != nil {
		return e.err
	}
	if err := e.writer.Flush(); err != nil {
		e.err = wrapIOError("flush", err)
	}
	return e.err
}

func (e *turtleWriter) Close() error {
	if e.err != nil {
		return e.err
	}
	if e.subject != nil {
		if err := e.write(" .\n"); err != nil {
			return err
		}
		e.subject = nil
	}
	if err := e.Flush(); err != nil {
		return err
	}
	e.err = ErrWriterClosed
	return nil
}

func (e *turtleWriter) write(s string) error {
	if _, err := e.writer.WriteString(s); err != nil {
		e.err = wrapIOError("write", err)
	}
	return e.err
}

func (e *turtleWriter) writeHeader() error {
	e.started = true
	if e.opts.BaseIRI != "" {
		if err := e.write("@base " + renderIRI(IRI{Value: e.opts.BaseIRI}) + " .\n"); err != nil {
			return err
		}
	}
	for _, prefix := range sortedPrefixKeys(e.opts.Prefixes) {
		if err := e.write("@prefix " + prefix + ": " + renderIRI(IRI{Value: e.opts.Prefixes[prefix]}) + " .\n"); err != nil {
			return err
		}
	}
	if len(e.opts.Prefixes) > 0 || e.opts.BaseIRI != "" {
		return e.write("\n")
	}
	return nil
}

func (e *turtleWriter) renderPredicate(p IRI) string {
	if p == RDFType {
		return "a"
	}
	return e.renderIRI(p)
}

func (e *turtleWriter) renderIRI(iri IRI) string {
	if qname, ok := abbreviateQName(iri.Value, e.opts.Prefixes); ok {
		return qname
	}
	return renderIRI(iri)
}

func (e *turtleWriter) render(term Term) string {
	switch value := term.(type) {
	case IRI:
		return e.renderIRI(value)
	case Literal:
		return renderLiteral(value, e.renderIRI)
	default:
		return renderTerm(term)
	}
}

func sortedPrefixKeys(prefixes map[string]string) []string {
	keys := make([]string, 0, len(prefixes))
	for key := range prefixes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// abbreviateQName picks the longest matching namespace whose remainder is a
// valid local name.
func abbreviateQName(iri string, prefixes map[string]string) (string, bool) {
	bestNS := ""
	bestPrefix := ""
	found := false
	for prefix, ns := range prefixes {
		local, ok := strings.CutPrefix(iri, ns)
		if !ok || !isQNameLocal(local) {
			continue
		}
		if len(ns) > len(bestNS) || (len(ns) == len(bestNS) && prefix < bestPrefix) {
			bestNS = ns
			bestPrefix = prefix
			found = true
		}
	}
	if !found {
		return "", false
	}
	return bestPrefix + ":" + iri[len(bestNS):], true
}
