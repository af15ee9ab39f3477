// Package value defines the dynamic JSON value model shared by the shape
// engine: a tagged union over the six JSON kinds with order-preserving
// objects, canonical field paths, and a depth-first leaf walker.
package value

import (
	"bytes"
	"sort"
	"strconv"
	"strings"

	"github.com/elliotchance/orderedmap/v2"
)

// Kind identifies which variant of the JSON union a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the structural kind name (numbers are not split into
// integer/number here; see Value.TypeName for that).
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Number holds a JSON number as its original literal, preserving exactly
// what the decoder saw. Integer-ness is decided from the literal so that
// "7" is an integer while "7.0" and "7e0" are not, matching the upstream
// decoder conventions this tool replaces.
type Number string

// Int64 parses the literal as a signed 64-bit integer.
func (n Number) Int64() (int64, error) {
	return strconv.ParseInt(string(n), 10, 64)
}

// Float64 parses the literal as a 64-bit float.
func (n Number) Float64() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// IsInt reports whether the literal denotes an integer. Literals that
// overflow int64 but consist only of digits still count as integers.
func (n Number) IsInt() bool {
	if _, err := n.Int64(); err == nil {
		return true
	}
	s := string(n)
	if strings.HasPrefix(s, "-") {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (n Number) String() string { return string(n) }

// Object is an insertion-ordered string-to-Value map. Document key order is
// preserved through ingestion; canonical output sorts keys at emission time.
type Object = orderedmap.OrderedMap[string, Value]

// NewObject returns an empty ordered object.
func NewObject() *Object {
	return orderedmap.NewOrderedMap[string, Value]()
}

// Value is a tagged union over the JSON kinds. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	num  Number
	str  string
	arr  []Value
	obj  *Object
}

// NullValue returns the JSON null.
func NullValue() Value { return Value{kind: KindNull} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// NumberValue wraps a numeric literal.
func NumberValue(n Number) Value { return Value{kind: KindNumber, num: n} }

// IntValue wraps an int64 as a numeric literal.
func IntValue(i int64) Value {
	return Value{kind: KindNumber, num: Number(strconv.FormatInt(i, 10))}
}

// FloatValue wraps a float64 as a numeric literal.
func FloatValue(f float64) Value {
	return Value{kind: KindNumber, num: Number(strconv.FormatFloat(f, 'g', -1, 64))}
}

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// ArrayValue wraps a slice of values. The slice is not copied.
func ArrayValue(items []Value) Value { return Value{kind: KindArray, arr: items} }

// ObjectValue wraps an ordered object. The map is not copied.
func ObjectValue(o *Object) Value { return Value{kind: KindObject, obj: o} }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is JSON null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean payload. Valid only for KindBool.
func (v Value) Bool() bool { return v.b }

// Number returns the numeric payload. Valid only for KindNumber.
func (v Value) Number() Number { return v.num }

// Str returns the string payload. Valid only for KindString.
func (v Value) Str() string { return v.str }

// Items returns the element slice. Valid only for KindArray.
func (v Value) Items() []Value { return v.arr }

// Object returns the ordered key/value map. Valid only for KindObject.
func (v Value) Object() *Object { return v.obj }

// Len returns the element count for arrays and the key count for objects,
// and 0 for every other kind.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return v.obj.Len()
	default:
		return 0
	}
}

// TypeName returns the profile/schema type name for the value: one of
// null, boolean, integer, number, string, array, object.
func (v Value) TypeName() string {
	if v.kind == KindNumber {
		if v.num.IsInt() {
			return "integer"
		}
		return "number"
	}
	return v.kind.String()
}

// Equal reports deep structural equality. Numbers compare by literal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.num == o.num
	case KindString:
		return v.str == o.str
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if v.obj.Len() != o.obj.Len() {
			return false
		}
		for el := v.obj.Front(); el != nil; el = el.Next() {
			ov, ok := o.obj.Get(el.Key)
			if !ok || !el.Value.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

// MarshalJSON renders the canonical encoding: object keys sorted
// lexicographically, no incidental whitespace, number literals verbatim.
// This is the byte form the emitter and the truncation hashes rely on.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.appendCanonical(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// AppendCanonical writes the canonical encoding into buf.
func (v Value) AppendCanonical(buf *bytes.Buffer) error {
	return v.appendCanonical(buf)
}

func (v Value) appendCanonical(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		if len(v.num) == 0 {
			buf.WriteString("0")
		} else {
			buf.WriteString(string(v.num))
		}
	case KindString:
		appendQuoted(buf, v.str)
	case KindArray:
		buf.WriteByte('[')
		for i, el := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := el.appendCanonical(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		keys := v.obj.Keys()
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			appendQuoted(buf, k)
			buf.WriteByte(':')
			child, _ := v.obj.Get(k)
			if err := child.appendCanonical(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

const hexDigits = "0123456789abcdef"

// appendQuoted writes s as a JSON string. Only the characters JSON
// requires escaping for are escaped; in particular <, > and & pass
// through untouched so canonical bytes do not depend on HTML-escaping
// conventions.
func appendQuoted(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			buf.WriteString(`\"`)
		case c == '\\':
			buf.WriteString(`\\`)
		case c == '\n':
			buf.WriteString(`\n`)
		case c == '\r':
			buf.WriteString(`\r`)
		case c == '\t':
			buf.WriteString(`\t`)
		case c < 0x20:
			buf.WriteString(`\u00`)
			buf.WriteByte(hexDigits[c>>4])
			buf.WriteByte(hexDigits[c&0xf])
		default:
			buf.WriteByte(c)
		}
	}
	buf.WriteByte('"')
}

// String returns the canonical JSON text, for logs and test failures.
func (v Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return "<invalid value>"
	}
	return string(b)
}
