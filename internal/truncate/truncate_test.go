package truncate

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/goshape/internal/value"
)

func getKey(t *testing.T, v value.Value, key string) value.Value {
	t.Helper()
	require.Equal(t, value.KindObject, v.Kind(), "want annotation object, got %s", v)
	child, ok := v.Object().Get(key)
	require.True(t, ok, "annotation %s missing key %q", v, key)
	return child
}

func hasKey(v value.Value, key string) bool {
	if v.Kind() != value.KindObject {
		return false
	}
	_, ok := v.Object().Get(key)
	return ok
}

func TestLongStringTruncation(t *testing.T) {
	long := strings.Repeat("a", 1000)
	got := Truncate(value.StringValue(long), DefaultPolicy())

	prefix := getKey(t, got, "…")
	assert.Equal(t, strings.Repeat("a", 24)+"…", prefix.Str())

	length := getKey(t, got, "len")
	assert.Equal(t, value.Number("1000"), length.Number())

	sum := sha256.Sum256([]byte(long))
	digest := getKey(t, got, "sha256")
	assert.Len(t, digest.Str(), 64)
	assert.Equal(t, hex.EncodeToString(sum[:]), digest.Str())
}

func TestShortStringUntouched(t *testing.T) {
	got := Truncate(value.StringValue("short"), DefaultPolicy())
	assert.Equal(t, value.KindString, got.Kind())
	assert.Equal(t, "short", got.Str())
}

func TestStringTruncationCountsRunes(t *testing.T) {
	p := DefaultPolicy()
	p.MaxStringChars = 3

	got := Truncate(value.StringValue("héllö wörld"), p)
	prefix := getKey(t, got, "…")
	assert.Equal(t, "hél…", prefix.Str())
	length := getKey(t, got, "len")
	assert.Equal(t, value.Number("11"), length.Number())
}

func TestReferentialIdentity(t *testing.T) {
	long := strings.Repeat("payload-", 200)
	a := Truncate(value.StringValue(long), DefaultPolicy())
	b := Truncate(value.StringValue(long), DefaultPolicy())
	assert.Equal(t, getKey(t, a, "sha256").Str(), getKey(t, b, "sha256").Str())

	other := Truncate(value.StringValue(long+"x"), DefaultPolicy())
	assert.NotEqual(t, getKey(t, a, "sha256").Str(), getKey(t, other, "sha256").Str())
}

func TestArraySampling(t *testing.T) {
	items := make([]string, 50)
	for i := range items {
		items[i] = fmt.Sprintf("%d", i)
	}
	arr := value.MustParse("[" + strings.Join(items, ",") + "]")

	got := Truncate(arr, DefaultPolicy())

	kept := getKey(t, got, "…")
	require.Equal(t, value.KindArray, kept.Kind())
	require.Len(t, kept.Items(), 3)
	assert.Equal(t, value.Number("0"), kept.Items()[0].Number())
	assert.Equal(t, value.Number("24"), kept.Items()[1].Number())
	assert.Equal(t, value.Number("49"), kept.Items()[2].Number())

	assert.Equal(t, value.Number("50"), getKey(t, got, "len").Number())
	assert.Equal(t, value.Number("47"), getKey(t, got, "skipped").Number())
	assert.Len(t, getKey(t, got, "sha256").Str(), 64)
}

func TestArrayIdentity(t *testing.T) {
	arr := value.MustParse(`[1, 2, 3, 4, 5]`)
	sameElsewhere := value.MustParse(`[1, 2, 3, 4, 5]`)
	different := value.MustParse(`[1, 2, 3, 4, 6]`)

	p := DefaultPolicy()
	p.Pattern = SamplePattern{First: 1}

	a := getKey(t, Truncate(arr, p), "sha256").Str()
	b := getKey(t, Truncate(sameElsewhere, p), "sha256").Str()
	c := getKey(t, Truncate(different, p), "sha256").Str()
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestSmallArrayUntouched(t *testing.T) {
	got := Truncate(value.MustParse(`[1, 2, 3]`), DefaultPolicy())
	require.Equal(t, value.KindArray, got.Kind())
	assert.Equal(t, 3, got.Len())
}

func TestArrayElementsStillTruncated(t *testing.T) {
	long := strings.Repeat("z", 100)
	got := Truncate(value.MustParse(fmt.Sprintf(`[%q, %q]`, long, long)), DefaultPolicy())

	require.Equal(t, value.KindArray, got.Kind())
	for _, el := range got.Items() {
		assert.True(t, hasKey(el, "sha256"), "kept element should carry its own annotation")
	}
}

func TestDepthPruningObject(t *testing.T) {
	v := value.MustParse(`{"a": {"b": {"z": 1, "k": {"deep": true}, "a": 2}}}`)
	got := Truncate(v, DefaultPolicy())

	a := getKey(t, got, "a")
	b := getKey(t, a, "b")
	// a.b sits at depth 2 and survives, everything below it at depth 3
	// does not descend further: scalars stay, containers collapse.
	assert.Equal(t, value.Number("1"), getKey(t, b, "z").Number())

	k := getKey(t, b, "k")
	assert.Equal(t, depthExceededMarker, getKey(t, k, "…").Str())
	keys := getKey(t, k, "keys")
	require.Equal(t, value.KindArray, keys.Kind())
	require.Len(t, keys.Items(), 1)
	assert.Equal(t, "deep", keys.Items()[0].Str())
}

func TestDepthPruningKeysSorted(t *testing.T) {
	p := DefaultPolicy()
	p.MaxDepth = 1
	got := Truncate(value.MustParse(`{"o": {"zeta": 1, "alpha": 2, "mike": 3}}`), p)

	o := getKey(t, got, "o")
	keys := getKey(t, o, "keys")
	var names []string
	for _, k := range keys.Items() {
		names = append(names, k.Str())
	}
	assert.Equal(t, []string{"alpha", "mike", "zeta"}, names)
}

func TestDepthPruningArray(t *testing.T) {
	p := DefaultPolicy()
	p.MaxDepth = 1
	got := Truncate(value.MustParse(`{"a": [1, 2, 3, 4]}`), p)

	a := getKey(t, got, "a")
	assert.Equal(t, depthExceededMarker, getKey(t, a, "…").Str())
	assert.Equal(t, value.Number("4"), getKey(t, a, "len").Number())
}

func TestBinaryHeuristic(t *testing.T) {
	blob := strings.Repeat("QUJDREVGRw==", 10)
	got := Truncate(value.StringValue(blob), DefaultPolicy())
	bin := getKey(t, got, "binary")
	assert.True(t, bin.Bool())

	prose := strings.Repeat("plain words with spaces ", 5)
	got = Truncate(value.StringValue(prose), DefaultPolicy())
	assert.False(t, hasKey(got, "binary"))

	short := "QUJD"
	got = Truncate(value.StringValue(short), DefaultPolicy())
	assert.Equal(t, value.KindString, got.Kind(), "short base64 is left alone entirely")
}

func TestTruncateIsPure(t *testing.T) {
	src := `{"s": "` + strings.Repeat("x", 100) + `", "a": [1,2,3,4,5,6,7,8], "o": {"p": {"q": {"r": 1}}}}`
	v := value.MustParse(src)
	_ = Truncate(v, DefaultPolicy())
	assert.True(t, v.Equal(value.MustParse(src)), "input value must not be modified")
}

func TestTruncateDeterministic(t *testing.T) {
	v := value.MustParse(`{"s": "` + strings.Repeat("x", 100) + `", "a": [1,2,3,4,5,6,7,8]}`)
	a := Truncate(v, DefaultPolicy())
	b := Truncate(v, DefaultPolicy())
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.String(), b.String())
}

func TestParsePattern(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    SamplePattern
		wantErr bool
	}{
		{"default form", "first=1,mid=1,last=1", SamplePattern{1, 1, 1}, false},
		{"spaced", "first=2, last=3", SamplePattern{First: 2, Last: 3}, false},
		{"first only", "first=5", SamplePattern{First: 5}, false},
		{"empty", "", SamplePattern{}, true},
		{"unknown key", "front=1", SamplePattern{}, true},
		{"not a number", "first=x", SamplePattern{}, true},
		{"negative", "first=-1", SamplePattern{}, true},
		{"keeps nothing", "first=0,mid=0,last=0", SamplePattern{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePattern(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeepIndicesOverlap(t *testing.T) {
	p := SamplePattern{First: 1, Mid: 1, Last: 10}
	got := p.keepIndices(12)
	// Blocks overlap; indices must stay unique and sorted.
	seen := make(map[int]bool)
	last := -1
	for _, i := range got {
		assert.False(t, seen[i], "duplicate index %d", i)
		assert.Greater(t, i, last)
		seen[i] = true
		last = i
	}
}
