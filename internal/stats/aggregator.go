// Package stats implements the per-field statistics aggregator: for every
// field path it maintains counts, the observed type set, running numeric
// and string-length moments, a distinct-value counter, and a bounded
// example sample. All state merges as a commutative monoid so shards of a
// stream aggregated independently combine into the same result.
package stats

import (
	"encoding/binary"
	"hash/fnv"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/dbsmedya/goshape/internal/value"
)

// Stored example strings are bounded so one pathological record cannot
// pin arbitrary memory; 1024 runes is far beyond anything format
// detection needs to see.
const maxExampleRunes = 1024

// Config carries the aggregator knobs. Zero values are not defaulted
// here; the config package owns defaults.
type Config struct {
	// Seed keys the example-selection hash.
	Seed int64
	// ExampleCap bounds examples kept per field.
	ExampleCap int
	// DistinctThreshold is the exact-counting ceiling before the
	// distinct counter downgrades to a sketch.
	DistinctThreshold int
}

// FieldStats is the mergeable summary for one field path. It is mutated
// only through Aggregator.Observe and read-only once finalized.
type FieldStats struct {
	count    int64
	nulls    int64
	types    map[string]struct{}
	numeric  *Welford
	strLen   *LengthStats
	distinct *Distinct
	examples *Examples
}

func newFieldStats(cfg Config) *FieldStats {
	return &FieldStats{
		types:    make(map[string]struct{}),
		examples: NewExamples(cfg.ExampleCap),
	}
}

// Count returns non-null observations.
func (fs *FieldStats) Count() int64 { return fs.count }

// Nulls returns null observations.
func (fs *FieldStats) Nulls() int64 { return fs.nulls }

// Types returns the observed type names, sorted.
func (fs *FieldStats) Types() []string {
	out := make([]string, 0, len(fs.types))
	for t := range fs.types {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Numeric returns the numeric moments, or nil if no number was observed.
func (fs *FieldStats) Numeric() *Welford { return fs.numeric }

// StringLen returns the length moments, or nil if no string was observed.
func (fs *FieldStats) StringLen() *LengthStats { return fs.strLen }

// Distinct returns the distinct counter, or nil if no scalar was observed.
func (fs *FieldStats) Distinct() *Distinct { return fs.distinct }

// Examples returns the kept example values in stream order.
func (fs *FieldStats) Examples() []value.Value { return fs.examples.Values() }

// StringExamples returns kept examples that are strings, in stream order.
func (fs *FieldStats) StringExamples() []string {
	var out []string
	for _, v := range fs.examples.Values() {
		if v.Kind() == value.KindString {
			out = append(out, v.Str())
		}
	}
	return out
}

func (fs *FieldStats) merge(other *FieldStats, cfg Config) error {
	fs.count += other.count
	fs.nulls += other.nulls
	for t := range other.types {
		fs.types[t] = struct{}{}
	}
	if other.numeric != nil {
		if fs.numeric == nil {
			fs.numeric = &Welford{}
		}
		fs.numeric.Merge(other.numeric)
	}
	if other.strLen != nil {
		if fs.strLen == nil {
			fs.strLen = &LengthStats{}
		}
		fs.strLen.Merge(other.strLen)
	}
	if other.distinct != nil {
		if fs.distinct == nil {
			fs.distinct = NewDistinct(cfg.DistinctThreshold)
		}
		if err := fs.distinct.Merge(other.distinct); err != nil {
			return err
		}
	}
	fs.examples.Merge(other.examples)
	return nil
}

// Aggregator owns all FieldStats for one stream (or one shard of it).
type Aggregator struct {
	cfg    Config
	fields map[value.Path]*FieldStats
}

// New returns an empty aggregator.
func New(cfg Config) *Aggregator {
	if cfg.ExampleCap < 1 {
		cfg.ExampleCap = 1
	}
	if cfg.DistinctThreshold < 1 {
		cfg.DistinctThreshold = 1
	}
	return &Aggregator{
		cfg:    cfg,
		fields: make(map[value.Path]*FieldStats),
	}
}

// Observe folds one leaf into the path's stats. record is the original
// record index and ordinal the leaf's position within its record; together
// with the seed they key example selection, so example choice depends only
// on stream position, never on timing.
func (a *Aggregator) Observe(p value.Path, v value.Value, record int64, ordinal int) {
	fs := a.field(p)
	switch v.Kind() {
	case value.KindNull:
		fs.nulls++
		fs.types["null"] = struct{}{}
		return
	case value.KindObject, value.KindArray:
		// Depth-capped subtree: a single opaque type observation.
		fs.count++
		fs.types[v.TypeName()] = struct{}{}
		return
	}

	fs.count++
	fs.types[v.TypeName()] = struct{}{}
	if fs.distinct == nil {
		fs.distinct = NewDistinct(a.cfg.DistinctThreshold)
	}
	fs.distinct.Observe(scalarKey(v))

	switch v.Kind() {
	case value.KindNumber:
		if f, err := v.Number().Float64(); err == nil {
			if fs.numeric == nil {
				fs.numeric = &Welford{}
			}
			fs.numeric.Observe(f)
		}
	case value.KindString:
		if fs.strLen == nil {
			fs.strLen = &LengthStats{}
		}
		fs.strLen.Observe(int64(utf8.RuneCountInString(v.Str())))
	}

	fs.examples.Offer(exampleRank(a.cfg.Seed, p, record, ordinal), record, ordinal, boundExample(v))
}

// Finalize returns the per-path stats map. The aggregator must not be
// observed into afterwards.
func (a *Aggregator) Finalize() map[value.Path]*FieldStats {
	return a.fields
}

// Merge folds another aggregator's state into this one, path by path.
func (a *Aggregator) Merge(other *Aggregator) error {
	for p, ofs := range other.fields {
		if err := a.field(p).merge(ofs, a.cfg); err != nil {
			return err
		}
	}
	return nil
}

// Paths returns every observed path, sorted.
func (a *Aggregator) Paths() []value.Path {
	out := make([]value.Path, 0, len(a.fields))
	for p := range a.fields {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (a *Aggregator) field(p value.Path) *FieldStats {
	fs, ok := a.fields[p]
	if !ok {
		fs = newFieldStats(a.cfg)
		a.fields[p] = fs
	}
	return fs
}

// scalarKey gives each scalar a canonical distinct-count identity. Numbers
// key on their parsed value so "1.0" and "1" collapse; the literal is the
// fallback for literals outside float64 range.
func scalarKey(v value.Value) string {
	switch v.Kind() {
	case value.KindBool:
		if v.Bool() {
			return "b:true"
		}
		return "b:false"
	case value.KindNumber:
		f, err := v.Number().Float64()
		if err != nil {
			return "n:" + string(v.Number())
		}
		return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
	case value.KindString:
		return "s:" + v.Str()
	default:
		return ""
	}
}

func exampleRank(seed int64, p value.Path, record int64, ordinal int) uint64 {
	f := fnv.New64a()
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(seed))
	f.Write(b[:])
	f.Write([]byte(p))
	binary.BigEndian.PutUint64(b[:], uint64(record))
	f.Write(b[:])
	binary.BigEndian.PutUint64(b[:], uint64(int64(ordinal)))
	f.Write(b[:])
	return f.Sum64()
}

func boundExample(v value.Value) value.Value {
	if v.Kind() != value.KindString {
		return v
	}
	s := v.Str()
	if utf8.RuneCountInString(s) <= maxExampleRunes {
		return v
	}
	runes := []rune(s)
	return value.StringValue(string(runes[:maxExampleRunes]))
}
