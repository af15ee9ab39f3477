package stats

import (
	"sort"

	"github.com/dbsmedya/goshape/internal/value"
)

// exampleEntry is one candidate example with its selection rank. Entries
// order by (rank, record, ordinal); the record/ordinal tiebreak makes the
// order total even on the off chance two ranks collide.
type exampleEntry struct {
	rank   uint64
	record int64
	ord    int
	val    value.Value
}

func (e exampleEntry) before(o exampleEntry) bool {
	if e.rank != o.rank {
		return e.rank < o.rank
	}
	if e.record != o.record {
		return e.record < o.record
	}
	return e.ord < o.ord
}

// Examples keeps the capacity lowest-ranked example values seen at a
// field. Ranks come from a seeded hash of the leaf position, so the kept
// set is a uniform sample that is reproducible for a fixed seed and, unlike
// slot-replacement reservoirs, merges across stream shards: the union of
// two kept sets re-truncated to capacity equals what a single pass over
// both shards would have kept.
type Examples struct {
	capacity int
	entries  []exampleEntry
}

// NewExamples returns an empty reservoir holding up to capacity values.
func NewExamples(capacity int) *Examples {
	if capacity < 1 {
		capacity = 1
	}
	return &Examples{capacity: capacity}
}

// Offer proposes one value; it is kept if its rank is among the lowest
// seen so far.
func (e *Examples) Offer(rank uint64, record int64, ord int, v value.Value) {
	entry := exampleEntry{rank: rank, record: record, ord: ord, val: v}
	if len(e.entries) == e.capacity && !entry.before(e.entries[len(e.entries)-1]) {
		return
	}
	pos := sort.Search(len(e.entries), func(i int) bool {
		return entry.before(e.entries[i])
	})
	e.entries = append(e.entries, exampleEntry{})
	copy(e.entries[pos+1:], e.entries[pos:])
	e.entries[pos] = entry
	if len(e.entries) > e.capacity {
		e.entries = e.entries[:e.capacity]
	}
}

// Merge folds other's kept entries into e.
func (e *Examples) Merge(other *Examples) {
	if other == nil {
		return
	}
	for _, entry := range other.entries {
		e.Offer(entry.rank, entry.record, entry.ord, entry.val)
	}
}

// Len returns how many examples are currently kept.
func (e *Examples) Len() int { return len(e.entries) }

// Values returns the kept examples in stream order.
func (e *Examples) Values() []value.Value {
	sorted := make([]exampleEntry, len(e.entries))
	copy(sorted, e.entries)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].record != sorted[j].record {
			return sorted[i].record < sorted[j].record
		}
		return sorted[i].ord < sorted[j].ord
	})
	out := make([]value.Value, len(sorted))
	for i, entry := range sorted {
		out[i] = entry.val
	}
	return out
}
