// Package truncate cuts values down to preview size without losing their
// identity: long strings keep a prefix plus a SHA-256 of the full
// original, arrays keep a positional sample with a skipped count and a
// digest of the whole, and containers past the depth cap collapse to a
// marker that still names their keys. Truncation is a pure function of
// (value, policy), safe to call from any number of goroutines.
package truncate

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"unicode/utf8"

	"github.com/dbsmedya/goshape/internal/value"
)

const (
	// ellipsisKey marks every inline annotation object.
	ellipsisKey = "…"
	// depthExceededMarker replaces containers pruned by the depth cap.
	depthExceededMarker = "<depth-exceeded>"
	// binaryMinRunes is the shortest string the base64 heuristic
	// considers; below it the alphabet test is meaningless.
	binaryMinRunes = 64
)

// Policy carries the truncation knobs. MaxStringChars <= 0 disables
// string truncation and MaxDepth <= 0 disables depth pruning.
type Policy struct {
	MaxStringChars  int
	Pattern         SamplePattern
	MaxDepth        int
	BinaryThreshold float64
}

// DefaultPolicy returns the stock preview policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxStringChars:  24,
		Pattern:         SamplePattern{First: 1, Mid: 1, Last: 1},
		MaxDepth:        3,
		BinaryThreshold: 0.98,
	}
}

// Truncate returns a truncated copy of v with annotations inlined at
// every cut position. v itself is never modified.
func Truncate(v value.Value, p Policy) value.Value {
	return truncateAt(v, p, 0)
}

func truncateAt(v value.Value, p Policy, depth int) value.Value {
	switch v.Kind() {
	case value.KindString:
		return truncateString(v.Str(), p)
	case value.KindArray:
		if p.MaxDepth > 0 && depth >= p.MaxDepth {
			return depthExceededArray(v)
		}
		return truncateArray(v, p, depth)
	case value.KindObject:
		if p.MaxDepth > 0 && depth >= p.MaxDepth {
			return depthExceededObject(v)
		}
		out := value.NewObject()
		for el := v.Object().Front(); el != nil; el = el.Next() {
			out.Set(el.Key, truncateAt(el.Value, p, depth+1))
		}
		return value.ObjectValue(out)
	default:
		return v
	}
}

func truncateString(s string, p Policy) value.Value {
	if p.MaxStringChars <= 0 {
		return value.StringValue(s)
	}
	n := utf8.RuneCountInString(s)
	if n <= p.MaxStringChars {
		return value.StringValue(s)
	}

	runes := []rune(s)
	sum := sha256.Sum256([]byte(s))

	ann := value.NewObject()
	ann.Set(ellipsisKey, value.StringValue(string(runes[:p.MaxStringChars])+"…"))
	ann.Set("len", value.IntValue(int64(n)))
	ann.Set("sha256", value.StringValue(hex.EncodeToString(sum[:])))
	if looksBinary(runes, p.BinaryThreshold) {
		ann.Set("binary", value.BoolValue(true))
	}
	return value.ObjectValue(ann)
}

func truncateArray(v value.Value, p Policy, depth int) value.Value {
	items := v.Items()
	if p.Pattern.Total() <= 0 || len(items) <= p.Pattern.Total() {
		out := make([]value.Value, len(items))
		for i, el := range items {
			out[i] = truncateAt(el, p, depth+1)
		}
		return value.ArrayValue(out)
	}

	keep := p.Pattern.keepIndices(len(items))
	kept := make([]value.Value, len(keep))
	for i, idx := range keep {
		kept[i] = truncateAt(items[idx], p, depth+1)
	}

	ann := value.NewObject()
	ann.Set(ellipsisKey, value.ArrayValue(kept))
	ann.Set("len", value.IntValue(int64(len(items))))
	ann.Set("skipped", value.IntValue(int64(len(items)-len(keep))))
	ann.Set("sha256", value.StringValue(canonicalDigest(v)))
	return value.ObjectValue(ann)
}

func depthExceededObject(v value.Value) value.Value {
	keys := v.Object().Keys()
	keyVals := make([]value.Value, len(keys))
	for i, k := range sortedCopy(keys) {
		keyVals[i] = value.StringValue(k)
	}

	ann := value.NewObject()
	ann.Set(ellipsisKey, value.StringValue(depthExceededMarker))
	ann.Set("keys", value.ArrayValue(keyVals))
	return value.ObjectValue(ann)
}

func depthExceededArray(v value.Value) value.Value {
	ann := value.NewObject()
	ann.Set(ellipsisKey, value.StringValue(depthExceededMarker))
	ann.Set("len", value.IntValue(int64(v.Len())))
	return value.ObjectValue(ann)
}

// canonicalDigest hashes the canonical encoding of the original value, so
// equal values always produce equal digests no matter where they appear.
func canonicalDigest(v value.Value) string {
	var buf bytes.Buffer
	if err := v.AppendCanonical(&buf); err != nil {
		return ""
	}
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

// looksBinary reports whether the string is plausibly base64-coded
// binary: long enough to judge, with at least threshold of its characters
// drawn from the base64 alphabet.
func looksBinary(runes []rune, threshold float64) bool {
	if threshold <= 0 || len(runes) <= binaryMinRunes {
		return false
	}
	inAlphabet := 0
	for _, r := range runes {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			inAlphabet++
		case r == '+' || r == '/' || r == '=':
			inAlphabet++
		}
	}
	return float64(inAlphabet)/float64(len(runes)) >= threshold
}

func sortedCopy(keys []string) []string {
	out := make([]string, len(keys))
	copy(out, keys)
	sort.Strings(out)
	return out
}
