// Package render formats shape artifacts for terminals. It produces an
// aligned field table from the profile, a schema tree and the sampled
// preview records.
package render

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"

	"github.com/dbsmedya/goshape/internal/emit"
	"github.com/dbsmedya/goshape/internal/value"
)

// Widest the EXAMPLES cell may grow before it is cut.
const maxExampleCell = 48

var tableHeader = []string{"FIELD", "TYPE", "COUNT", "NULLS", "DISTINCT", "STATS", "EXAMPLES"}

// Text renders artifacts as a human-readable report.
type Text struct {
	out      io.Writer
	colorize bool
}

// NewText returns a renderer writing to out. Column widths are computed
// on unstyled strings, so enabling colorize never skews the alignment.
func NewText(out io.Writer, colorize bool) *Text {
	return &Text{out: out, colorize: colorize}
}

// Render writes the full report: record count, field table, schema tree
// and preview. Sections with nothing to show are omitted.
func (t *Text) Render(art *emit.Artifacts) error {
	var b strings.Builder

	b.WriteString(t.bold(fmt.Sprintf("Records: %d", art.Profile.RecordCount)))
	b.WriteString("\n")

	if len(art.Profile.Fields) > 0 {
		b.WriteString("\n")
		b.WriteString(t.bold("Fields:"))
		b.WriteString("\n")
		t.writeTable(&b, art.Profile)
	}

	if art.Schema != nil && !emptySchema(art.Schema) {
		b.WriteString("\n")
		b.WriteString(t.bold("Schema:"))
		b.WriteString("\n")
		t.writeSchema(&b, art.Schema)
	}

	if len(art.Preview) > 0 {
		b.WriteString("\n")
		b.WriteString(t.bold("Preview:"))
		b.WriteString("\n")
		for _, slot := range art.Preview {
			fmt.Fprintf(&b, "  [%d] %s\n", slot.Index, slot.Record.String())
		}
	}

	_, err := io.WriteString(t.out, b.String())
	return err
}

func (t *Text) writeTable(b *strings.Builder, p *emit.Profile) {
	paths := make([]string, 0, len(p.Fields))
	for path := range p.Fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	rows := make([][]string, 0, len(paths))
	for _, path := range paths {
		rows = append(rows, fieldRow(path, p.Fields[path]))
	}

	widths := make([]int, len(tableHeader))
	for i, h := range tableHeader {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	b.WriteString("  " + joinRow(tableHeader, widths, nil) + "\n")
	for _, row := range rows {
		b.WriteString("  " + joinRow(row, widths, t.cyanFn()) + "\n")
	}
}

// joinRow pads every cell but the last to its column width. style, when
// set, is applied to the already padded first cell.
func joinRow(cells []string, widths []int, style func(string) string) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		if i < len(cells)-1 {
			cell = runewidth.FillRight(cell, widths[i])
		}
		if i == 0 && style != nil {
			cell = style(cell)
		}
		parts[i] = cell
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}

func fieldRow(path string, f *emit.ProfileField) []string {
	return []string{
		path,
		strings.Join(f.Type, "|"),
		strconv.FormatInt(f.Count, 10),
		strconv.FormatInt(f.Nulls, 10),
		cardinalityCell(f.Cardinality),
		statsCell(f),
		examplesCell(f.Examples),
	}
}

func cardinalityCell(c *uint64) string {
	if c == nil {
		return "-"
	}
	return strconv.FormatUint(*c, 10)
}

func statsCell(f *emit.ProfileField) string {
	var parts []string
	if f.Numeric != nil {
		parts = append(parts, fmt.Sprintf("%s..%s avg %s", num(f.Numeric.Min), num(f.Numeric.Max), num(f.Numeric.Avg)))
	}
	if f.StringLength != nil {
		parts = append(parts, fmt.Sprintf("len %d..%d", f.StringLength.Min, f.StringLength.Max))
	}
	return strings.Join(parts, ", ")
}

func examplesCell(examples []value.Value) string {
	if len(examples) == 0 {
		return ""
	}
	parts := make([]string, len(examples))
	for i, ex := range examples {
		parts[i] = ex.String()
	}
	return runewidth.Truncate(strings.Join(parts, ", "), maxExampleCell, "…")
}

func num(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

func (t *Text) writeSchema(b *strings.Builder, root *emit.SchemaNode) {
	b.WriteString("  " + schemaLabel(root, false) + "\n")
	t.writeChildren(b, root, "  ")
}

type schemaEntry struct {
	name     string
	node     *emit.SchemaNode
	required bool
}

func (t *Text) writeChildren(b *strings.Builder, node *emit.SchemaNode, prefix string) {
	names := make([]string, 0, len(node.Properties))
	for name := range node.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	required := make(map[string]bool, len(node.Required))
	for _, name := range node.Required {
		required[name] = true
	}

	entries := make([]schemaEntry, 0, len(names)+1)
	for _, name := range names {
		entries = append(entries, schemaEntry{name: name, node: node.Properties[name], required: required[name]})
	}
	if node.Items != nil {
		entries = append(entries, schemaEntry{name: "[]", node: node.Items})
	}

	for i, e := range entries {
		branch, cont := "├─ ", "│  "
		if i == len(entries)-1 {
			branch, cont = "└─ ", "   "
		}
		b.WriteString(prefix + branch + t.cyan(e.name) + ": " + schemaLabel(e.node, e.required) + "\n")
		t.writeChildren(b, e.node, prefix+cont)
	}
}

func schemaLabel(n *emit.SchemaNode, required bool) string {
	label := typeNames(n.Type)
	var notes []string
	if required {
		notes = append(notes, "required")
	}
	if n.Format != "" {
		notes = append(notes, "format="+n.Format)
	}
	if len(n.Enum) > 0 {
		notes = append(notes, enumNote(n.Enum))
	}
	if len(notes) > 0 {
		label += " (" + strings.Join(notes, ", ") + ")"
	}
	return label
}

func typeNames(t any) string {
	switch v := t.(type) {
	case nil:
		return "unknown"
	case string:
		return v
	case []string:
		return strings.Join(v, "|")
	default:
		return fmt.Sprint(v)
	}
}

func enumNote(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = strconv.Quote(v)
	}
	return runewidth.Truncate("enum "+strings.Join(quoted, ","), 40, "…")
}

func emptySchema(s *emit.SchemaNode) bool {
	return s.Type == nil && len(s.Properties) == 0 && s.Items == nil
}

func (t *Text) bold(s string) string {
	if !t.colorize {
		return s
	}
	return color.Bold.Sprint(s)
}

func (t *Text) cyan(s string) string {
	if !t.colorize {
		return s
	}
	return color.Cyan.Sprint(s)
}

func (t *Text) cyanFn() func(string) string {
	if !t.colorize {
		return nil
	}
	return t.cyan
}
