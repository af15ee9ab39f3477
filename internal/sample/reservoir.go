// Package sample selects the preview records: a fixed-capacity uniform
// reservoir over a stream of unknown length, driven by an explicitly
// seeded PRNG so a fixed (seed, stream) pair always keeps the same
// records.
package sample

import (
	"math/rand"
	"sort"

	"github.com/dbsmedya/goshape/internal/value"
)

// TruncateFunc shrinks a record before it is stored in a slot, bounding
// the memory each admitted record can hold.
type TruncateFunc func(value.Value) value.Value

// Slot is one sampled record tagged with its original stream index.
type Slot struct {
	Index  int64
	Record value.Value
}

// Reservoir implements Algorithm R: the first capacity records are kept
// unconditionally, after which the record at index i replaces a uniformly
// random slot with probability capacity/(i+1). The PRNG is owned by the
// reservoir and advances once per offered record past the fill phase, so
// selection depends only on seed and stream order.
type Reservoir struct {
	capacity int
	rng      *rand.Rand
	trunc    TruncateFunc
	slots    []Slot
}

// NewReservoir returns a reservoir of the given capacity. trunc may be
// nil to store records as offered.
func NewReservoir(capacity int, seed int64, trunc TruncateFunc) *Reservoir {
	return &Reservoir{
		capacity: capacity,
		rng:      rand.New(rand.NewSource(seed)),
		trunc:    trunc,
	}
}

// Offer presents the record at 0-based stream index and reports whether
// it entered the reservoir. Records must arrive in stream order, once
// each; admitted records are truncated before they are stored.
func (r *Reservoir) Offer(index int64, record value.Value) bool {
	if r.capacity <= 0 {
		return false
	}
	if len(r.slots) < r.capacity {
		r.slots = append(r.slots, Slot{Index: index, Record: r.shrink(record)})
		return true
	}
	j := r.rng.Int63n(index + 1)
	if j < int64(r.capacity) {
		r.slots[j] = Slot{Index: index, Record: r.shrink(record)}
		return true
	}
	return false
}

// Len returns how many slots are filled.
func (r *Reservoir) Len() int { return len(r.slots) }

// Snapshot returns the current sample ordered by original stream index.
// It is valid after any prefix of the stream.
func (r *Reservoir) Snapshot() []Slot {
	out := make([]Slot, len(r.slots))
	copy(out, r.slots)
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

func (r *Reservoir) shrink(record value.Value) value.Value {
	if r.trunc == nil {
		return record
	}
	return r.trunc(record)
}
