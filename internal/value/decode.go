package value

import (
	"fmt"
	"io"
	"strings"

	gojson "github.com/goccy/go-json"
)

// Decoder reads a stream of JSON documents from r, preserving object key
// order and numeric literals exactly as they appear on the wire.
type Decoder struct {
	dec *gojson.Decoder
}

// NewDecoder returns a Decoder over r.
func NewDecoder(r io.Reader) *Decoder {
	d := gojson.NewDecoder(r)
	d.UseNumber()
	return &Decoder{dec: d}
}

// More reports whether another top-level document follows in the stream.
func (d *Decoder) More() bool { return d.dec.More() }

// Decode reads the next top-level document. It returns io.EOF once the
// input is exhausted.
func (d *Decoder) Decode() (Value, error) {
	tok, err := d.dec.Token()
	if err != nil {
		return Value{}, err
	}
	return d.value(tok)
}

func (d *Decoder) value(tok gojson.Token) (Value, error) {
	switch t := tok.(type) {
	case gojson.Delim:
		switch t {
		case '{':
			return d.object()
		case '[':
			return d.array()
		default:
			return Value{}, fmt.Errorf("unexpected delimiter %q", t.String())
		}
	case nil:
		return NullValue(), nil
	case bool:
		return BoolValue(t), nil
	case gojson.Number:
		return NumberValue(Number(t)), nil
	case string:
		return StringValue(t), nil
	default:
		return Value{}, fmt.Errorf("unexpected token %v (%T)", tok, tok)
	}
}

func (d *Decoder) object() (Value, error) {
	obj := NewObject()
	for {
		tok, err := d.dec.Token()
		if err != nil {
			return Value{}, eofIsUnexpected(err)
		}
		if delim, ok := tok.(gojson.Delim); ok && delim == '}' {
			return ObjectValue(obj), nil
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("object key is %T, want string", tok)
		}
		vtok, err := d.dec.Token()
		if err != nil {
			return Value{}, eofIsUnexpected(err)
		}
		v, err := d.value(vtok)
		if err != nil {
			return Value{}, err
		}
		obj.Set(key, v)
	}
}

func (d *Decoder) array() (Value, error) {
	items := []Value{}
	for {
		if !d.dec.More() {
			if _, err := d.dec.Token(); err != nil {
				return Value{}, eofIsUnexpected(err)
			}
			return ArrayValue(items), nil
		}
		tok, err := d.dec.Token()
		if err != nil {
			return Value{}, eofIsUnexpected(err)
		}
		v, err := d.value(tok)
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
	}
}

func eofIsUnexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// BeginArray consumes the opening bracket of a top-level array document.
// After it succeeds, call Element until it returns io.EOF.
func (d *Decoder) BeginArray() error {
	tok, err := d.dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(gojson.Delim); !ok || delim != '[' {
		return fmt.Errorf("document is not an array")
	}
	return nil
}

// Element decodes the next element of an array opened with BeginArray.
// It returns io.EOF once the closing bracket has been consumed, so the
// elements of a large array stream without buffering the whole document.
func (d *Decoder) Element() (Value, error) {
	if !d.dec.More() {
		if _, err := d.dec.Token(); err != nil {
			return Value{}, eofIsUnexpected(err)
		}
		return Value{}, io.EOF
	}
	tok, err := d.dec.Token()
	if err != nil {
		return Value{}, eofIsUnexpected(err)
	}
	return d.value(tok)
}

// Parse decodes exactly one JSON document from s.
func Parse(s string) (Value, error) {
	d := NewDecoder(strings.NewReader(s))
	v, err := d.Decode()
	if err != nil {
		return Value{}, fmt.Errorf("parse value: %w", err)
	}
	if d.More() {
		return Value{}, fmt.Errorf("parse value: trailing data after document")
	}
	return v, nil
}

// MustParse is Parse for fixtures; it panics on malformed input.
func MustParse(s string) Value {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}
