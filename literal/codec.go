// Package literal converts between Go scalar values and RDF literals.
//
// Encoding picks the XML Schema datatype from the Go type; decoding parses
// the lexical form by its datatype and then converts the natural value to
// the requested Go type.
package literal

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/geoknoesis/rdfbind/rdf"
	"github.com/geoknoesis/rdfbind/resource"
)

// Hint carries shape metadata that affects how a value is encoded.
type Hint struct {
	// XMLLiteral emits strings with the rdf:XMLLiteral datatype.
	XMLLiteral bool
	// Datatype is the datatype declared for the property, if any.
	Datatype string
}

// Codec encodes and decodes literals. The zero value is ready to use.
type Codec struct {
	// InferFromShape narrows time values to xsd:date when the hint asks for it.
	InferFromShape bool
	// Lenient decodes invalid lexical forms into resource.Unparseable.
	Lenient bool
}

const dateLayout = "2006-01-02"

var (
	timeType        = reflect.TypeOf(time.Time{})
	bigIntType      = reflect.TypeOf((*big.Int)(nil))
	bigFloatType    = reflect.TypeOf((*big.Float)(nil))
	literalType     = reflect.TypeOf(rdf.Literal{})
	xmlLiteralType  = reflect.TypeOf(resource.XMLLiteral(""))
	unparseableType = reflect.TypeOf(resource.Unparseable{})
)

// Supports reports whether values of t can be encoded as literals.
func Supports(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer && t != bigIntType && t != bigFloatType {
		t = t.Elem()
	}
	switch t {
	case timeType, bigIntType, bigFloatType, literalType, xmlLiteralType, unparseableType:
		return true
	}
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// Encode converts v to a literal.
func (c Codec) Encode(v any, h Hint) (rdf.Literal, error) {
	switch x := v.(type) {
	case nil:
		return rdf.Literal{}, &Error{Err: fmt.Errorf("%w: nil", ErrUnsupportedType)}
	case string:
		if h.XMLLiteral {
			return rdf.NewTypedLiteral(x, rdf.RDFXMLLiteral), nil
		}
		return rdf.NewPlainLiteral(x), nil
	case resource.XMLLiteral:
		return rdf.NewTypedLiteral(string(x), rdf.RDFXMLLiteral), nil
	case bool:
		if x {
			return rdf.NewTypedLiteral("true", rdf.XSDBoolean), nil
		}
		return rdf.NewTypedLiteral("false", rdf.XSDBoolean), nil
	case int:
		return rdf.NewTypedLiteral(formatSigned(x), rdf.XSDInteger), nil
	case int64:
		return rdf.NewTypedLiteral(formatSigned(x), rdf.XSDLong), nil
	case int32:
		return rdf.NewTypedLiteral(formatSigned(x), rdf.XSDInt), nil
	case int16:
		return rdf.NewTypedLiteral(formatSigned(x), rdf.XSDShort), nil
	case int8:
		return rdf.NewTypedLiteral(formatSigned(x), rdf.XSDByte), nil
	case uint:
		return rdf.NewTypedLiteral(formatUnsigned(x), rdf.XSDNonNegativeInteger), nil
	case uint64:
		return rdf.NewTypedLiteral(formatUnsigned(x), rdf.XSDUnsignedLong), nil
	case uint32:
		return rdf.NewTypedLiteral(formatUnsigned(x), rdf.XSDUnsignedInt), nil
	case uint16:
		return rdf.NewTypedLiteral(formatUnsigned(x), rdf.XSDUnsignedShort), nil
	case uint8:
		return rdf.NewTypedLiteral(formatUnsigned(x), rdf.XSDUnsignedByte), nil
	case float32:
		return rdf.NewTypedLiteral(formatFloat(x, 32), rdf.XSDFloat), nil
	case float64:
		return rdf.NewTypedLiteral(formatFloat(x, 64), rdf.XSDDouble), nil
	case *big.Int:
		if x == nil {
			break
		}
		return rdf.NewTypedLiteral(x.String(), rdf.XSDInteger), nil
	case *big.Float:
		if x == nil || x.IsInf() {
			break
		}
		return rdf.NewTypedLiteral(x.Text('f', -1), rdf.XSDDecimal), nil
	case time.Time:
		return c.encodeTime(x, h), nil
	case rdf.Literal:
		return encodeLiteral(x)
	case resource.Unparseable:
		if x.Datatype == "" {
			return rdf.NewPlainLiteral(x.Lexical), nil
		}
		return rdf.NewTypedLiteral(x.Lexical, rdf.IRI{Value: x.Datatype}), nil
	}
	return c.encodeReflect(v, h)
}

func (c Codec) encodeTime(t time.Time, h Hint) rdf.Literal {
	if c.InferFromShape && h.Datatype == rdf.XSDDate.Value {
		return rdf.NewTypedLiteral(t.UTC().Format(dateLayout), rdf.XSDDate)
	}
	return rdf.NewTypedLiteral(t.Format(time.RFC3339Nano), rdf.XSDDateTime)
}

func encodeLiteral(l rdf.Literal) (rdf.Literal, error) {
	if l.Lang == "" {
		return l, nil
	}
	tag, err := language.Parse(l.Lang)
	if err != nil {
		return rdf.Literal{}, &Error{Value: l, Err: fmt.Errorf("%w: language tag %q: %v", ErrInvalidLexical, l.Lang, err)}
	}
	return rdf.NewLangLiteral(l.Lexical, tag.String()), nil
}

// encodeReflect handles pointers and named scalar types.
func (c Codec) encodeReflect(v any, h Hint) (rdf.Literal, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return rdf.Literal{}, &Error{Value: v, Err: fmt.Errorf("%w: nil pointer", ErrUnsupportedType)}
		}
		return c.Encode(rv.Elem().Interface(), h)
	}
	var base reflect.Type
	switch rv.Kind() {
	case reflect.String:
		base = reflect.TypeOf("")
	case reflect.Bool:
		base = reflect.TypeOf(false)
	case reflect.Int:
		base = reflect.TypeOf(int(0))
	case reflect.Int8:
		base = reflect.TypeOf(int8(0))
	case reflect.Int16:
		base = reflect.TypeOf(int16(0))
	case reflect.Int32:
		base = reflect.TypeOf(int32(0))
	case reflect.Int64:
		base = reflect.TypeOf(int64(0))
	case reflect.Uint:
		base = reflect.TypeOf(uint(0))
	case reflect.Uint8:
		base = reflect.TypeOf(uint8(0))
	case reflect.Uint16:
		base = reflect.TypeOf(uint16(0))
	case reflect.Uint32:
		base = reflect.TypeOf(uint32(0))
	case reflect.Uint64:
		base = reflect.TypeOf(uint64(0))
	case reflect.Float32:
		base = reflect.TypeOf(float32(0))
	case reflect.Float64:
		base = reflect.TypeOf(float64(0))
	}
	if base == nil || rv.Type() == base {
		return rdf.Literal{}, &Error{Value: v, Err: fmt.Errorf("%w: %T", ErrUnsupportedType, v)}
	}
	return c.Encode(rv.Convert(base).Interface(), h)
}

// Natural decodes l into the Go value that encodes back to the same datatype.
// Unknown datatypes and language-tagged strings come back as rdf.Literal.
func (c Codec) Natural(l rdf.Literal) (any, error) {
	if l.Lang != "" {
		return l, nil
	}
	lex := l.Lexical
	trimmed := strings.TrimSpace(lex)
	switch l.Datatype {
	case rdf.IRI{}, rdf.XSDString:
		return lex, nil
	case rdf.RDFXMLLiteral:
		return resource.XMLLiteral(lex), nil
	case rdf.XSDBoolean:
		switch trimmed {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
		return nil, invalid(l, nil, "%q", lex)
	case rdf.XSDFloat:
		f, ok := parseFloat(trimmed, 32)
		if !ok {
			return nil, invalid(l, nil, "%q", lex)
		}
		return float32(f), nil
	case rdf.XSDDouble:
		f, ok := parseFloat(trimmed, 64)
		if !ok {
			return nil, invalid(l, nil, "%q", lex)
		}
		return f, nil
	case rdf.XSDDecimal:
		f, ok := parseDecimal(trimmed)
		if !ok {
			return nil, invalid(l, nil, "%q", lex)
		}
		return f, nil
	case rdf.XSDDateTime:
		t, ok := parseDateTime(trimmed)
		if !ok {
			return nil, invalid(l, nil, "%q", lex)
		}
		return t, nil
	case rdf.XSDDate:
		t, ok := parseDate(trimmed)
		if !ok {
			return nil, invalid(l, nil, "%q", lex)
		}
		return t, nil
	}
	if isIntegerType(l.Datatype) {
		n, ok := parseInteger(trimmed)
		if !ok {
			return nil, invalid(l, nil, "%q", lex)
		}
		v, ok := integerValue(l.Datatype, n)
		if !ok {
			return nil, invalid(l, nil, "%s out of range", lex)
		}
		return v, nil
	}
	return l, nil
}

func isIntegerType(dt rdf.IRI) bool {
	switch dt {
	case rdf.XSDInteger, rdf.XSDLong, rdf.XSDInt, rdf.XSDShort, rdf.XSDByte,
		rdf.XSDNonNegativeInteger, rdf.XSDUnsignedLong, rdf.XSDUnsignedInt,
		rdf.XSDUnsignedShort, rdf.XSDUnsignedByte:
		return true
	}
	return false
}

func integerValue(dt rdf.IRI, n *big.Int) (any, bool) {
	switch dt {
	case rdf.XSDInteger:
		if v, ok := fitsSigned[int](n); ok {
			return v, true
		}
		return n, true
	case rdf.XSDLong:
		return fitsSigned[int64](n)
	case rdf.XSDInt:
		return fitsSigned[int32](n)
	case rdf.XSDShort:
		return fitsSigned[int16](n)
	case rdf.XSDByte:
		return fitsSigned[int8](n)
	case rdf.XSDNonNegativeInteger:
		if n.Sign() < 0 {
			return nil, false
		}
		if v, ok := fitsUnsigned[uint](n); ok {
			return v, true
		}
		return n, true
	case rdf.XSDUnsignedLong:
		return fitsUnsigned[uint64](n)
	case rdf.XSDUnsignedInt:
		return fitsUnsigned[uint32](n)
	case rdf.XSDUnsignedShort:
		return fitsUnsigned[uint16](n)
	case rdf.XSDUnsignedByte:
		return fitsUnsigned[uint8](n)
	}
	return nil, false
}

func parseDateTime(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02T15:04:05.999999999", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{dateLayout, "2006-01-02Z07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Decode converts l into a value assignable to target. A nil target or an
// interface target receives the natural value.
func (c Codec) Decode(l rdf.Literal, target reflect.Type) (any, error) {
	if target == nil || target.Kind() == reflect.Interface {
		v, err := c.Natural(l)
		if err != nil && c.Lenient {
			return resource.Unparseable{Lexical: l.Lexical, Datatype: l.Datatype.Value}, nil
		}
		if err != nil || target == nil || reflect.TypeOf(v).AssignableTo(target) {
			return v, err
		}
		return nil, &Error{Literal: l, Target: target, Err: ErrUnsupportedType}
	}
	switch target {
	case literalType:
		return l, nil
	case xmlLiteralType:
		return resource.XMLLiteral(l.Lexical), nil
	case unparseableType:
		return resource.Unparseable{Lexical: l.Lexical, Datatype: l.Datatype.Value}, nil
	}
	if target.Kind() == reflect.String {
		return reflect.ValueOf(l.Lexical).Convert(target).Interface(), nil
	}
	if target.Kind() == reflect.Pointer && target != bigIntType && target != bigFloatType {
		v, err := c.Decode(l, target.Elem())
		if err != nil {
			return nil, err
		}
		p := reflect.New(target.Elem())
		p.Elem().Set(reflect.ValueOf(v))
		return p.Interface(), nil
	}
	natural, err := c.Natural(l)
	if err != nil {
		var le *Error
		if errors.As(err, &le) {
			le.Target = target
		}
		return nil, err
	}
	v, ok := convert(natural, target)
	if !ok {
		return nil, &Error{Literal: l, Target: target, Err: fmt.Errorf("%w: %T", ErrUnsupportedType, natural)}
	}
	return v, nil
}

// convert narrows a natural value to target, checking numeric range.
func convert(natural any, target reflect.Type) (any, bool) {
	nv := reflect.ValueOf(natural)
	if nv.Type() == target {
		return natural, true
	}
	switch target {
	case timeType:
		return nil, false
	case bigIntType:
		if n, ok := asBigInt(natural); ok {
			return n, true
		}
		return nil, false
	case bigFloatType:
		if n, ok := asBigInt(natural); ok {
			return new(big.Float).SetInt(n), true
		}
		switch f := natural.(type) {
		case float32:
			return big.NewFloat(float64(f)), !math.IsInf(float64(f), 0) && !math.IsNaN(float64(f))
		case float64:
			return big.NewFloat(f), !math.IsInf(f, 0) && !math.IsNaN(f)
		}
		return nil, false
	}
	out := reflect.New(target).Elem()
	switch target.Kind() {
	case reflect.Bool:
		if b, ok := natural.(bool); ok {
			out.SetBool(b)
			return out.Interface(), true
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := asBigInt(natural)
		if !ok || !n.IsInt64() || out.OverflowInt(n.Int64()) {
			return nil, false
		}
		out.SetInt(n.Int64())
		return out.Interface(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := asBigInt(natural)
		if !ok || n.Sign() < 0 || !n.IsUint64() || out.OverflowUint(n.Uint64()) {
			return nil, false
		}
		out.SetUint(n.Uint64())
		return out.Interface(), true
	case reflect.Float32, reflect.Float64:
		var f float64
		switch x := natural.(type) {
		case float32:
			f = float64(x)
		case float64:
			f = x
		case *big.Float:
			f, _ = x.Float64()
		default:
			n, ok := asBigInt(natural)
			if !ok {
				return nil, false
			}
			f, _ = new(big.Float).SetInt(n).Float64()
		}
		out.SetFloat(f)
		return out.Interface(), true
	}
	if nv.Type().ConvertibleTo(target) && nv.Kind() == target.Kind() {
		return nv.Convert(target).Interface(), true
	}
	return nil, false
}

func asBigInt(v any) (*big.Int, bool) {
	switch x := v.(type) {
	case *big.Int:
		return x, true
	case int, int8, int16, int32, int64:
		return big.NewInt(reflect.ValueOf(x).Int()), true
	case uint, uint8, uint16, uint32, uint64:
		return new(big.Int).SetUint64(reflect.ValueOf(x).Uint()), true
	}
	return nil, false
}
