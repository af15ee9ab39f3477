package schema

import "sort"

// enumTracker retains the exact distinct string set at a node while it
// stays within the configured limit. The first value pushing it past the
// limit discards the set for good; a discarded tracker never collects
// again, so enum output can only narrow, never flap.
type enumTracker struct {
	limit     int
	values    map[string]struct{}
	discarded bool
}

func newEnumTracker(limit int) *enumTracker {
	return &enumTracker{
		limit:  limit,
		values: make(map[string]struct{}),
	}
}

func (e *enumTracker) observe(s string) {
	if e.discarded {
		return
	}
	e.values[s] = struct{}{}
	if len(e.values) > e.limit {
		e.discard()
	}
}

func (e *enumTracker) merge(other *enumTracker) {
	if other == nil {
		return
	}
	if other.discarded {
		e.discard()
		return
	}
	if e.discarded {
		return
	}
	for v := range other.values {
		e.values[v] = struct{}{}
	}
	if len(e.values) > e.limit {
		e.discard()
	}
}

func (e *enumTracker) discard() {
	e.discarded = true
	e.values = nil
}

// candidates returns the sorted retained set, or nil once discarded.
func (e *enumTracker) candidates() []string {
	if e.discarded || len(e.values) == 0 {
		return nil
	}
	out := make([]string, 0, len(e.values))
	for v := range e.values {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
