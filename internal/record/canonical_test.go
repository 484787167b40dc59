package record

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    Value
		expected string
	}{
		{"null", Null{}, "null"},
		{"string", String("hello"), `"hello"`},
		{"empty string", String(""), `""`},
		{"int", Int(42), "42"},
		{"negative int", Int(-100), "-100"},
		{"max int64", Int(math.MaxInt64), "9223372036854775807"},
		{"float", Float(7.5), "7.5"},
		{"integral float", Float(42), "42.0"},
		{"large float", Float(1e21), "1e+21"},
		{"bool true", Bool(true), "true"},
		{"bool false", Bool(false), "false"},
		{"empty array", Array{}, "[]"},
		{"empty object", Object{}, "{}"},
		{"array", Array{Int(1), String("x")}, `[1,"x"]`},
		{"object", Object{"b": Int(1), "a": Int(2)}, `{"a":2,"b":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Marshal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(out))
		})
	}
}

func TestMarshal_NoHTMLEscaping(t *testing.T) {
	out, err := Marshal(String("<a&b>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a&b>"`, string(out))
}

func TestMarshal_RejectsNaNAndInf(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := Marshal(Object{"x": Float(f)})
		assert.Error(t, err)
	}
}

func TestMarshal_RoundTripPreservesTypes(t *testing.T) {
	rec := Record{
		"id":    String("inv-1"),
		"total": Float(42),
		"qty":   Int(3),
		"lines": Array{Object{"sku": String("A")}},
	}

	data, err := Marshal(rec)
	require.NoError(t, err)

	back, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, rec, back)
}

func TestMarshal_Deterministic(t *testing.T) {
	rec := Record{"z": Int(1), "a": Int(2), "m": Object{"y": Int(1), "b": Int(2)}}

	first, err := Marshal(rec)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Marshal(rec)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, `{"a":2,"m":{"b":2,"y":1},"z":1}`, string(first))
}

func TestMarshalNormalized_AppliesNFC(t *testing.T) {
	composed := String("caf\u00e9")
	decomposed := String("cafe\u0301")

	a, err := MarshalNormalized(composed)
	require.NoError(t, err)
	b, err := MarshalNormalized(decomposed)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// Plain Marshal keeps the original text.
	raw, err := Marshal(decomposed)
	require.NoError(t, err)
	assert.NotEqual(t, a, raw)
}

func TestMarshal_RejectsInvalidUTF8(t *testing.T) {
	tests := []struct {
		name  string
		input Value
	}{
		{"string", String("a\xff")},
		{"object key", Object{"a\xfe": Int(1)}},
		{"nested value", Object{"lines": Array{Object{"sku": String("\xc3")}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Marshal(tt.input)
			assert.ErrorContains(t, err, "not valid UTF-8")
		})
	}
}
