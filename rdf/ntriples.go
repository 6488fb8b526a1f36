package rdf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

type lineReader struct {
	reader *bufio.Reader
	format Format
	opts   Options
	line   int
	err    error
}

func newLineReader(r io.Reader, format Format, opts Options) *lineReader {
	return &lineReader{reader: bufio.NewReader(r), format: format, opts: opts}
}

func (d *lineReader) Next() (Triple, error) {
	if d.err != nil {
		return Triple{}, d.err
	}
	for {
		raw, err := d.readLine()
		if err != nil {
			d.err = err
			return Triple{}, err
		}
		d.line++
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		triple, err := parseLine(line, d.format)
		if err != nil {
			var cerr *cursorError
			col := 0
			if errors.As(err, &cerr) {
				col = cerr.pos + 1
			}
			d.err = &ParseError{Format: d.format, Statement: line, Line: d.line, Column: col, Err: err}
			return Triple{}, d.err
		}
		return triple, nil
	}
}

func (d *lineReader) Close() error { return nil }

func (d *lineReader) readLine() (string, error) {
	line, err := d.reader.ReadString('\n')
	if d.opts.MaxLineBytes > 0 && len(line) > d.opts.MaxLineBytes {
		return "", &ParseError{Format: d.format, Line: d.line + 1, Err: ErrLineTooLong}
	}
	if err != nil {
		if err == io.EOF && len(line) > 0 {
			return line, nil
		}
		return "", wrapIOError("read", err)
	}
	return line, nil
}

// parseLine parses one statement. N-Quads graph labels are accepted and dropped.
func parseLine(line string, format Format) (Triple, error) {
	c := &ntCursor{input: line}
	subject, err := c.parseTerm(false)
	if err != nil {
		return Triple{}, err
	}
	predicate, err := c.parseIRI()
	if err != nil {
		return Triple{}, err
	}
	object, err := c.parseTerm(true)
	if err != nil {
		return Triple{}, err
	}
	c.skipWS()
	if c.pos < len(c.input) && c.input[c.pos] != '.' {
		if format != FormatNQuads {
			return Triple{}, c.errorf("graph term not allowed in %s", format)
		}
		if _, err := c.parseTerm(false); err != nil {
			return Triple{}, err
		}
	}
	if !c.consume('.') {
		return Triple{}, c.errorf("expected '.' at end of statement")
	}
	c.skipWS()
	if c.pos < len(c.input) && c.input[c.pos] != '#' {
		return Triple{}, c.errorf("unexpected content after '.'")
	}
	return Triple{S: subject, P: predicate, O: object}, nil
}

type ntCursor struct {
	input string
	pos   int
}

type cursorError struct {
	pos int
	msg string
}

func (e *cursorError) Error() string { return e.msg }

func (c *ntCursor) errorf(format string, args ...any) error {
	return &cursorError{pos: c.pos, msg: fmt.Sprintf(format, args...)}
}

func (c *ntCursor) skipWS() {
	for c.pos < len(c.input) {
		switch c.input[c.pos] {
		case ' ', '\t', '\r', '\n':
			c.pos++
		default:
			return
		}
	}
}

func (c *ntCursor) consume(ch byte) bool {
	c.skipWS()
	if c.pos < len(c.input) && c.input[c.pos] == ch {
		c.pos++
		return true
	}
	return false
}

func (c *ntCursor) parseTerm(allowLiteral bool) (Term, error) {
	c.skipWS()
	if c.pos >= len(c.input) {
		return nil, c.errorf("unexpected end of line")
	}
	switch {
	case c.input[c.pos] == '<':
		return c.parseIRI()
	case strings.HasPrefix(c.input[c.pos:], "_:"):
		return c.parseBlankNode()
	case c.input[c.pos] == '"':
		if !allowLiteral {
			return nil, c.errorf("literal not allowed here")
		}
		return c.parseLiteral()
	default:
		return nil, c.errorf("unexpected token %q", c.input[c.pos])
	}
}

func (c *ntCursor) parseIRI() (IRI, error) {
	if !c.consume('<') {
		return IRI{}, c.errorf("expected IRI")
	}
	var b strings.Builder
	for c.pos < len(c.input) && c.input[c.pos] != '>' {
		if c.input[c.pos] == '\\' {
			r, err := c.parseUnicodeEscape()
			if err != nil {
				return IRI{}, err
			}
			b.WriteRune(r)
			continue
		}
		ch := c.input[c.pos]
		if ch == ' ' || ch == '<' || ch == '"' {
			return IRI{}, c.errorf("invalid character %q in IRI", ch)
		}
		b.WriteByte(ch)
		c.pos++
	}
	if c.pos >= len(c.input) {
		return IRI{}, c.errorf("unterminated IRI")
	}
	c.pos++
	return IRI{Value: b.String()}, nil
}

func (c *ntCursor) parseBlankNode() (BlankNode, error) {
	c.pos += 2
	start := c.pos
	for c.pos < len(c.input) && !isTermDelimiter(c.input[c.pos]) {
		c.pos++
	}
	// A trailing '.' belongs to the statement, not the label.
	for c.pos > start && c.input[c.pos-1] == '.' {
		c.pos--
	}
	if start == c.pos {
		return BlankNode{}, c.errorf("blank node id missing")
	}
	return BlankNode{ID: c.input[start:c.pos]}, nil
}

func (c *ntCursor) parseLiteral() (Literal, error) {
	if !c.consume('"') {
		return Literal{}, c.errorf("expected literal")
	}
	var b strings.Builder
	closed := false
	for c.pos < len(c.input) {
		ch := c.input[c.pos]
		if ch == '"' {
			c.pos++
			closed = true
			break
		}
		if ch != '\\' {
			b.WriteByte(ch)
			c.pos++
			continue
		}
		if c.pos+1 >= len(c.input) {
			return Literal{}, c.errorf("unterminated escape")
		}
		switch next := c.input[c.pos+1]; next {
		case 'u', 'U':
			r, err := c.parseUnicodeEscape()
			if err != nil {
				return Literal{}, err
			}
			b.WriteRune(r)
			continue
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case '"', '\'', '\\':
			b.WriteByte(next)
		default:
			return Literal{}, c.errorf("invalid escape \\%c", next)
		}
		c.pos += 2
	}
	if !closed {
		return Literal{}, c.errorf("unterminated literal")
	}
	lexical := b.String()
	if strings.HasPrefix(c.input[c.pos:], "@") {
		c.pos++
		start := c.pos
		for c.pos < len(c.input) && !isTermDelimiter(c.input[c.pos]) {
			c.pos++
		}
		if start == c.pos {
			return Literal{}, c.errorf("empty language tag")
		}
		return Literal{Lexical: lexical, Lang: c.input[start:c.pos]}, nil
	}
	if strings.HasPrefix(c.input[c.pos:], "^^") {
		c.pos += 2
		dt, err := c.parseIRI()
		if err != nil {
			return Literal{}, err
		}
		return Literal{Lexical: lexical, Datatype: dt}, nil
	}
	return Literal{Lexical: lexical}, nil
}

// parseUnicodeEscape reads \uXXXX or \UXXXXXXXX at the cursor.
func (c *ntCursor) parseUnicodeEscape() (rune, error) {
	if c.pos+1 >= len(c.input) {
		return 0, c.errorf("unterminated escape")
	}
	width := 0
	switch c.input[c.pos+1] {
	case 'u':
		width = 4
	case 'U':
		width = 8
	default:
		return 0, c.errorf("invalid escape \\%c", c.input[c.pos+1])
	}
	start := c.pos + 2
	if start+width > len(c.input) {
		return 0, c.errorf("short unicode escape")
	}
	v, err := strconv.ParseUint(c.input[start:start+width], 16, 32)
	if err != nil || !utf8.ValidRune(rune(v)) {
		return 0, c.errorf("invalid unicode escape")
	}
	c.pos = start + width
	return rune(v), nil
}

func isTermDelimiter(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n':
		return true
	default:
		return false
	}
}

type lineWriter struct {
	writer *bufio.Writer
	err    error
}

func newLineWriter(w io.Writer) *lineWriter {
	return &lineWriter{writer: bufio.NewWriter(w)}
}

func (e *lineWriter) Write(t Triple) error {
	if e.err != nil {
		return e.err
	}
	if t.S == nil || t.P.Value == "" || t.O == nil {
		return fmt.Errorf("ntriples: missing statement fields")
	}
	if _, err := e.writer.WriteString(t.String() + " .\n"); err != nil {
		e.err = wrapIOError("write", err)
	}
	return e.err
}

func (e *lineWriter) Flush() error {
	if e.err != nil {
		return e.err
	}
	if err := e.writer.Flush(); err != nil {
		e.err = wrapIOError("flush", err)
	}
	return e.err
}

func (e *lineWriter) Close() error {
	if err := e.Flush(); err != nil {
		return err
	}
	e.err = ErrWriterClosed
	return nil
}

func renderIRI(iri IRI) string {
	return "<" + escapeIRI(iri.Value) + ">"
}

func renderTerm(term Term) string {
	switch value := term.(type) {
	case IRI:
		return renderIRI(value)
	case BlankNode:
		return value.String()
	case Literal:
		return renderLiteral(value, renderIRI)
	default:
		return ""
	}
}

func renderLiteral(l Literal, iri func(IRI) string) string {
	quoted := `"` + escapeLiteral(l.Lexical) + `"`
	switch {
	case l.Lang != "":
		return quoted + "@" + l.Lang
	case l.Datatype.Value != "" && l.Datatype != XSDString:
		return quoted + "^^" + iri(l.Datatype)
	default:
		return quoted
	}
}

func escapeLiteral(s string) string {
	if !strings.ContainsAny(s, "\"\\\n\r\t") {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func escapeIRI(s string) string {
	if !strings.ContainsAny(s, "<>\"{}|^`\\ ") {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '<', '>', '"', '{', '}', '|', '^', '`', '\\', ' ':
			fmt.Fprintf(&b, `\u%04X`, r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
