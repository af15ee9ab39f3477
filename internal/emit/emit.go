// Package emit shapes finalized engine state into the three output
// artifacts and encodes them canonically: keys in lexicographic order,
// no incidental whitespace, no HTML escaping. Struct fields below are
// declared in sorted JSON-name order on purpose; together with sorted
// map keys this is what makes two runs over the same input byte-identical.
package emit

import (
	"bytes"
	"unicode/utf8"

	gojson "github.com/goccy/go-json"

	"github.com/dbsmedya/goshape/internal/sample"
	"github.com/dbsmedya/goshape/internal/schema"
	"github.com/dbsmedya/goshape/internal/stats"
	"github.com/dbsmedya/goshape/internal/value"
)

// Profile is the per-field statistics artifact.
type Profile struct {
	Fields      map[string]*ProfileField `json:"fields"`
	RecordCount int64                    `json:"record_count"`
}

// ProfileField is one field's summary inside the profile.
type ProfileField struct {
	Cardinality  *uint64       `json:"cardinality,omitempty"`
	Count        int64         `json:"count"`
	Examples     []value.Value `json:"examples"`
	Nulls        int64         `json:"nulls"`
	Numeric      *NumericStats `json:"numeric,omitempty"`
	StringLength *LengthBlock  `json:"string_length,omitempty"`
	Type         []string      `json:"type"`
}

// NumericStats carries min/avg/max for numeric observations.
type NumericStats struct {
	Avg float64 `json:"avg"`
	Max float64 `json:"max"`
	Min float64 `json:"min"`
}

// LengthBlock carries min/avg/max string lengths in runes.
type LengthBlock struct {
	Avg float64 `json:"avg"`
	Max int64   `json:"max"`
	Min int64   `json:"min"`
}

// PreviewSlot is one sampled record in the preview artifact.
type PreviewSlot struct {
	Index  int64       `json:"index"`
	Record value.Value `json:"record"`
}

// SchemaNode is the emitted JSON Schema subset.
type SchemaNode struct {
	Enum       []string               `json:"enum,omitempty"`
	Format     string                 `json:"format,omitempty"`
	Items      *SchemaNode            `json:"items,omitempty"`
	Properties map[string]*SchemaNode `json:"properties,omitempty"`
	Required   []string               `json:"required,omitempty"`
	Type       any                    `json:"type,omitempty"`
}

// Artifacts bundles all three outputs for the combined document.
type Artifacts struct {
	Preview []PreviewSlot `json:"preview"`
	Profile *Profile      `json:"profile"`
	Schema  *SchemaNode   `json:"schema"`
}

// BuildProfile converts finalized aggregator state into the profile
// document. Example strings longer than maxStringChars are shortened with
// an ellipsis; maxStringChars <= 0 keeps them whole.
func BuildProfile(fields map[value.Path]*stats.FieldStats, recordCount int64, maxStringChars int) *Profile {
	out := &Profile{
		Fields:      make(map[string]*ProfileField, len(fields)),
		RecordCount: recordCount,
	}
	for p, fs := range fields {
		out.Fields[p.String()] = buildField(fs, maxStringChars)
	}
	return out
}

func buildField(fs *stats.FieldStats, maxStringChars int) *ProfileField {
	f := &ProfileField{
		Count:    fs.Count(),
		Examples: []value.Value{},
		Nulls:    fs.Nulls(),
		Type:     fs.Types(),
	}
	for _, ex := range fs.Examples() {
		f.Examples = append(f.Examples, shortenExample(ex, maxStringChars))
	}
	if d := fs.Distinct(); d != nil {
		n := d.Count()
		f.Cardinality = &n
	}
	if num := fs.Numeric(); num != nil && num.N() > 0 {
		f.Numeric = &NumericStats{
			Avg: num.Mean(),
			Max: num.Max(),
			Min: num.Min(),
		}
	}
	if sl := fs.StringLen(); sl != nil && sl.N() > 0 {
		f.StringLength = &LengthBlock{
			Avg: sl.Avg(),
			Max: sl.Max(),
			Min: sl.Min(),
		}
	}
	return f
}

// BuildPreview converts reservoir slots into the preview artifact.
func BuildPreview(slots []sample.Slot) []PreviewSlot {
	out := make([]PreviewSlot, len(slots))
	for i, s := range slots {
		out[i] = PreviewSlot{Index: s.Index, Record: s.Record}
	}
	return out
}

// BuildSchema converts the finalized schema tree into its emitted form.
func BuildSchema(root *schema.Node) *SchemaNode {
	if root == nil {
		return &SchemaNode{}
	}
	out := &SchemaNode{}
	switch types := root.Types(); len(types) {
	case 0:
	case 1:
		out.Type = types[0]
	default:
		out.Type = types
	}
	if f := root.Format(); f != "" {
		out.Format = f
	}
	if e := root.Enum(); len(e) > 0 {
		out.Enum = e
	}
	if req := root.Required(); len(req) > 0 {
		out.Required = req
	}
	if names := root.PropertyNames(); len(names) > 0 {
		out.Properties = make(map[string]*SchemaNode, len(names))
		for _, k := range names {
			out.Properties[k] = BuildSchema(root.Property(k))
		}
	}
	if items := root.Items(); items != nil {
		child := BuildSchema(items)
		if !child.empty() {
			out.Items = child
		}
	}
	return out
}

func (s *SchemaNode) empty() bool {
	return s.Type == nil && s.Format == "" && len(s.Enum) == 0 &&
		len(s.Required) == 0 && len(s.Properties) == 0 && s.Items == nil
}

// Encode renders any artifact document in canonical compact form.
func Encode(doc any) ([]byte, error) {
	return encode(doc, "")
}

// EncodePretty renders with two-space indentation for human eyes; pretty
// output is outside the canonical byte guarantee.
func EncodePretty(doc any) ([]byte, error) {
	return encode(doc, "  ")
}

func encode(doc any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := gojson.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func shortenExample(v value.Value, maxChars int) value.Value {
	if maxChars <= 0 || v.Kind() != value.KindString {
		return v
	}
	s := v.Str()
	if utf8.RuneCountInString(s) <= maxChars {
		return v
	}
	runes := []rune(s)
	return value.StringValue(string(runes[:maxChars]) + "…")
}
