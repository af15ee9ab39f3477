package value

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberIsInt(t *testing.T) {
	tests := []struct {
		name    string
		literal string
		want    bool
	}{
		{"plain integer", "7", true},
		{"negative integer", "-42", true},
		{"zero", "0", true},
		{"decimal point", "7.0", false},
		{"exponent", "7e0", false},
		{"fraction", "3.14", false},
		{"negative fraction", "-0.5", false},
		{"beyond int64", "92233720368547758089", true},
		{"negative beyond int64", "-92233720368547758089", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Number(tt.literal).IsInt())
		})
	}
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"null", NullValue(), "null"},
		{"bool", BoolValue(true), "boolean"},
		{"integer", NumberValue("12"), "integer"},
		{"float", NumberValue("12.5"), "number"},
		{"string", StringValue("x"), "string"},
		{"array", ArrayValue(nil), "array"},
		{"object", ObjectValue(NewObject()), "object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.TypeName())
		})
	}
}

func TestParsePreservesKeyOrderAndLiterals(t *testing.T) {
	v, err := Parse(`{"zeta": 1.50, "alpha": 2, "mid": {"b": true, "a": null}}`)
	require.NoError(t, err)
	require.Equal(t, KindObject, v.Kind())

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, v.Object().Keys())

	zeta, ok := v.Object().Get("zeta")
	require.True(t, ok)
	assert.Equal(t, Number("1.50"), zeta.Number())
	assert.Equal(t, "number", zeta.TypeName())

	alpha, ok := v.Object().Get("alpha")
	require.True(t, ok)
	assert.Equal(t, "integer", alpha.TypeName())
}

func TestParseDuplicateKeysLastWins(t *testing.T) {
	v, err := Parse(`{"a": 1, "a": 2}`)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Len())
	a, _ := v.Object().Get("a")
	assert.Equal(t, Number("2"), a.Number())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"trailing data", `{"a": 1} {"b": 2}`},
		{"truncated object", `{"a": `},
		{"truncated array", `[1, 2`},
		{"bare garbage", `{nope}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestDecoderStream(t *testing.T) {
	d := NewDecoder(strings.NewReader("{\"a\":1}\n{\"a\":2}\n"))

	first, err := d.Decode()
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, first.String())

	second, err := d.Decode()
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, second.String())

	_, err = d.Decode()
	assert.Equal(t, io.EOF, err)
}

func TestDecoderArrayElements(t *testing.T) {
	d := NewDecoder(strings.NewReader(`[{"a":1}, 2, "three"]`))
	require.NoError(t, d.BeginArray())

	var got []string
	for {
		v, err := d.Element()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, v.String())
	}
	assert.Equal(t, []string{`{"a":1}`, "2", `"three"`}, got)
}

func TestDecoderBeginArrayRejectsObject(t *testing.T) {
	d := NewDecoder(strings.NewReader(`{"a":1}`))
	assert.Error(t, d.BeginArray())
}

func TestDecoderElementTruncatedArray(t *testing.T) {
	d := NewDecoder(strings.NewReader(`[1, 2`))
	require.NoError(t, d.BeginArray())

	_, err := d.Element()
	require.NoError(t, err)
	_, err = d.Element()
	require.NoError(t, err)
	_, err = d.Element()
	assert.Error(t, err)
	assert.NotEqual(t, io.EOF, err)
}

func TestCanonicalMarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "keys sorted recursively",
			input: `{"b": {"z": 1, "a": 2}, "a": [3, {"y": 4, "x": 5}]}`,
			want:  `{"a":[3,{"x":5,"y":4}],"b":{"a":2,"z":1}}`,
		},
		{
			name:  "number literals survive",
			input: `{"n": 1.50, "m": 1e3}`,
			want:  `{"m":1e3,"n":1.50}`,
		},
		{
			name:  "string escaping",
			input: `{"s": "line\nbreak \"q\""}`,
			want:  `{"s":"line\nbreak \"q\""}`,
		},
		{
			name:  "no html escaping",
			input: `{"m": "<marker> & co"}`,
			want:  `{"m":"<marker> & co"}`,
		},
		{
			name:  "unicode passes through",
			input: `{"u": "héllö … ∞"}`,
			want:  `{"u":"héllö … ∞"}`,
		},
		{
			name:  "empty containers",
			input: `{"a": [], "o": {}}`,
			want:  `{"a":[],"o":{}}`,
		},
		{
			name:  "scalar root",
			input: `true`,
			want:  `true`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := MustParse(tt.input)
			b, err := v.MarshalJSON()
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(b))
		})
	}
}

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"same object different key order", `{"a":1,"b":2}`, `{"b":2,"a":1}`, true},
		{"different number literal", `{"a":1}`, `{"a":1.0}`, false},
		{"nested equal", `{"a":[{"x":null}]}`, `{"a":[{"x":null}]}`, true},
		{"array length differs", `[1,2]`, `[1,2,3]`, false},
		{"kind differs", `1`, `"1"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MustParse(tt.a).Equal(MustParse(tt.b)))
		})
	}
}

func TestPathForms(t *testing.T) {
	assert.Equal(t, "$", Root.String())
	assert.Equal(t, "user", Root.Child("user").String())
	assert.Equal(t, "user.name", Root.Child("user").Child("name").String())
	assert.Equal(t, "user.tags[]", Root.Child("user").Child("tags").Elem().String())
	assert.Equal(t, "items[].id", Root.Child("items").Elem().Child("id").String())
	assert.Equal(t, "m[][]", Root.Child("m").Elem().Elem().String())
	assert.Equal(t, "[]", Root.Elem().String())
}

type leaf struct {
	path string
	typ  string
}

func collectLeaves(t *testing.T, input string, maxDepth int) []leaf {
	t.Helper()
	var got []leaf
	Walk(MustParse(input), maxDepth, func(p Path, v Value) {
		got = append(got, leaf{path: p.String(), typ: v.TypeName()})
	})
	return got
}

func TestWalkLeaves(t *testing.T) {
	got := collectLeaves(t, `{"user": {"name": "ada", "tags": ["x", "y"]}, "n": 3, "gone": null}`, 0)

	want := []leaf{
		{"user.name", "string"},
		{"user.tags[]", "string"},
		{"user.tags[]", "string"},
		{"n", "integer"},
		{"gone", "null"},
	}
	assert.Equal(t, want, got)
}

func TestWalkRootScalar(t *testing.T) {
	assert.Equal(t, []leaf{{"$", "integer"}}, collectLeaves(t, `7`, 0))
	assert.Equal(t, []leaf{{"$", "null"}}, collectLeaves(t, `null`, 0))
}

func TestWalkDepthCap(t *testing.T) {
	input := `{"a": {"b": {"c": {"d": 1}}}, "top": 0}`

	t.Run("capped container becomes opaque", func(t *testing.T) {
		got := collectLeaves(t, input, 3)
		want := []leaf{
			{"a.b.c", "object"},
			{"top", "integer"},
		}
		assert.Equal(t, want, got)
	})

	t.Run("unlimited reaches the bottom", func(t *testing.T) {
		got := collectLeaves(t, input, 0)
		want := []leaf{
			{"a.b.c.d", "integer"},
			{"top", "integer"},
		}
		assert.Equal(t, want, got)
	})

	t.Run("capped array opaque", func(t *testing.T) {
		got := collectLeaves(t, `{"a": {"b": [[1]]}}`, 2)
		assert.Equal(t, []leaf{{"a.b", "array"}}, got)
	})
}
