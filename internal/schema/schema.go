// Package schema infers the union shape of a record stream: per-position
// type sets, object properties with required-key tracking, a single
// collapsed element shape per array, string enum candidates, and string
// format hints. The builder's state merges as a monoid so shards of a
// stream can be combined without changing the result.
package schema

import (
	"sort"

	"github.com/dbsmedya/goshape/internal/value"
)

// Config carries the builder knobs.
type Config struct {
	// EnumLimit is the most distinct string values retained as enum
	// candidates before the set is discarded.
	EnumLimit int
	// MaxDepth stops descent below this many container levels; 0 means
	// unlimited. Capped subtrees contribute a bare type observation.
	MaxDepth int
	// FormatThreshold is the fraction of string examples that must match
	// a format before it is assigned.
	FormatThreshold float64
}

// Node is one position in the inferred schema tree. Nodes are mutated
// only through Builder and are read-only after Finalize.
type Node struct {
	types       map[string]struct{}
	properties  map[string]*Node
	presence    map[string]int64
	objectCount int64
	items       *Node
	enum        *enumTracker
	format      string
}

func newNode() *Node {
	return &Node{types: make(map[string]struct{})}
}

// Types returns the observed type names at this position, sorted.
func (n *Node) Types() []string {
	out := make([]string, 0, len(n.types))
	for t := range n.types {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// HasType reports whether name is in the type union.
func (n *Node) HasType(name string) bool {
	_, ok := n.types[name]
	return ok
}

// PropertyNames returns the known object keys, sorted.
func (n *Node) PropertyNames() []string {
	out := make([]string, 0, len(n.properties))
	for k := range n.properties {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Property returns the child node for an object key, or nil.
func (n *Node) Property(name string) *Node { return n.properties[name] }

// Items returns the collapsed array element node, or nil.
func (n *Node) Items() *Node { return n.items }

// Required returns the keys present in every object observed at this
// position, sorted. A key's presence count can only trail the object
// count once a single sample omitted it, so required-ness moves in one
// direction: true to false.
func (n *Node) Required() []string {
	if n.objectCount == 0 {
		return nil
	}
	var out []string
	for k, c := range n.presence {
		if c == n.objectCount {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Format returns the assigned format hint, or "".
func (n *Node) Format() string { return n.format }

// Enum returns the retained enum candidates, sorted, or nil once the
// distinct count exceeded the limit (or no strings were seen).
func (n *Node) Enum() []string {
	if n.enum == nil {
		return nil
	}
	return n.enum.candidates()
}

// Builder accumulates records into a schema tree.
type Builder struct {
	cfg  Config
	root *Node
}

// NewBuilder returns an empty builder.
func NewBuilder(cfg Config) *Builder {
	if cfg.EnumLimit < 1 {
		cfg.EnumLimit = 1
	}
	if cfg.FormatThreshold <= 0 || cfg.FormatThreshold > 1 {
		cfg.FormatThreshold = 0.95
	}
	return &Builder{cfg: cfg, root: newNode()}
}

// Add folds one record into the tree.
func (b *Builder) Add(v value.Value) {
	b.addValue(b.root, v, 0)
}

func (b *Builder) addValue(n *Node, v value.Value, depth int) {
	switch v.Kind() {
	case value.KindNull, value.KindBool, value.KindNumber:
		n.types[v.TypeName()] = struct{}{}
	case value.KindString:
		n.types["string"] = struct{}{}
		if n.enum == nil {
			n.enum = newEnumTracker(b.cfg.EnumLimit)
		}
		n.enum.observe(v.Str())
	case value.KindArray:
		n.types["array"] = struct{}{}
		if b.cfg.MaxDepth > 0 && depth >= b.cfg.MaxDepth {
			return
		}
		if len(v.Items()) == 0 {
			return
		}
		if n.items == nil {
			n.items = newNode()
		}
		for _, el := range v.Items() {
			b.addValue(n.items, el, depth+1)
		}
	case value.KindObject:
		n.types["object"] = struct{}{}
		if b.cfg.MaxDepth > 0 && depth >= b.cfg.MaxDepth {
			return
		}
		n.objectCount++
		if n.properties == nil {
			n.properties = make(map[string]*Node)
			n.presence = make(map[string]int64)
		}
		for el := v.Object().Front(); el != nil; el = el.Next() {
			n.presence[el.Key]++
			child, ok := n.properties[el.Key]
			if !ok {
				child = newNode()
				n.properties[el.Key] = child
			}
			b.addValue(child, el.Value, depth+1)
		}
	}
}

// Merge folds another builder's tree into this one.
func (b *Builder) Merge(other *Builder) {
	if other == nil {
		return
	}
	mergeNode(b.root, other.root, b.cfg)
}

func mergeNode(dst, src *Node, cfg Config) {
	for t := range src.types {
		dst.types[t] = struct{}{}
	}
	dst.objectCount += src.objectCount
	if src.presence != nil {
		if dst.presence == nil {
			dst.presence = make(map[string]int64)
			dst.properties = make(map[string]*Node)
		}
		for k, c := range src.presence {
			dst.presence[k] += c
		}
	}
	for k, sn := range src.properties {
		dn, ok := dst.properties[k]
		if !ok {
			dn = newNode()
			dst.properties[k] = dn
		}
		mergeNode(dn, sn, cfg)
	}
	if src.items != nil {
		if dst.items == nil {
			dst.items = newNode()
		}
		mergeNode(dst.items, src.items, cfg)
	}
	if src.enum != nil {
		if dst.enum == nil {
			dst.enum = newEnumTracker(cfg.EnumLimit)
		}
		dst.enum.merge(src.enum)
	}
}

// Finalize assigns format hints from the aggregator's string examples and
// returns the root node. stringExamples maps field paths to their sampled
// strings; nil disables format detection. The builder must not be added
// to afterwards.
func (b *Builder) Finalize(stringExamples map[value.Path][]string) *Node {
	if stringExamples != nil {
		b.assignFormats(b.root, value.Root, stringExamples)
	}
	return b.root
}

func (b *Builder) assignFormats(n *Node, p value.Path, examples map[value.Path][]string) {
	if n.HasType("string") {
		n.format = detectFormat(examples[p], b.cfg.FormatThreshold)
	}
	for k, child := range n.properties {
		b.assignFormats(child, p.Child(k), examples)
	}
	if n.items != nil {
		b.assignFormats(n.items, p.Elem(), examples)
	}
}
