package truncate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SamplePattern says how many array elements to keep from the front,
// middle and back when an array is cut down for preview.
type SamplePattern struct {
	First int
	Mid   int
	Last  int
}

// Total returns the number of elements the pattern keeps at most.
func (p SamplePattern) Total() int { return p.First + p.Mid + p.Last }

// ParsePattern parses the "first=1,mid=1,last=1" form. Every part must be
// one of first/mid/last with a non-negative count, and the pattern must
// keep at least one element.
func ParsePattern(s string) (SamplePattern, error) {
	var out SamplePattern
	if strings.TrimSpace(s) == "" {
		return out, fmt.Errorf("empty array sample pattern")
	}
	for _, part := range strings.Split(s, ",") {
		key, val, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			return out, fmt.Errorf("pattern part %q: want key=count", part)
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return out, fmt.Errorf("pattern part %q: %w", part, err)
		}
		if n < 0 {
			return out, fmt.Errorf("pattern part %q: negative count", part)
		}
		switch key {
		case "first":
			out.First = n
		case "mid":
			out.Mid = n
		case "last":
			out.Last = n
		default:
			return out, fmt.Errorf("pattern part %q: unknown key", part)
		}
	}
	if out.Total() == 0 {
		return out, fmt.Errorf("array sample pattern keeps nothing")
	}
	return out, nil
}

// keepIndices returns the sorted, de-duplicated element indices the
// pattern retains for an array of n elements. Picks are positional, so the
// same array always keeps the same elements.
func (p SamplePattern) keepIndices(n int) []int {
	seen := make(map[int]bool, p.Total())
	var out []int
	add := func(i int) {
		if i >= 0 && i < n && !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}
	for i := 0; i < p.First; i++ {
		add(i)
	}
	start := (n - p.Mid) / 2
	for i := 0; i < p.Mid; i++ {
		add(start + i)
	}
	for i := n - p.Last; i < n; i++ {
		add(i)
	}
	sort.Ints(out)
	return out
}
