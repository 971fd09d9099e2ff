package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_Basic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"negative int64", int64(-100), "-100"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"empty array", []any{}, "[]"},
		{"empty object", map[string]any{}, "{}"},
		{"nested", map[string]any{"name": "main", "calls": []any{}}, `{"calls":[],"name":"main"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Marshal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(out))
		})
	}
}

func TestMarshal_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{"null", nil},
		{"float", 1.5},
		{"nested float", map[string]any{"x": []any{float32(2)}}},
		{"struct", struct{}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Marshal(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestMarshal_UTF16KeyOrder(t *testing.T) {
	// U+10000 encodes as a surrogate pair (0xD800...), which sorts before
	// U+E000 in UTF-16 but after it in UTF-8.
	obj := map[string]any{
		"\uE000":     1,
		"\U00010000": 2,
	}

	out, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U00010000\":2,\"\uE000\":1}", string(out))
}

func TestMarshal_NFC(t *testing.T) {
	out, err := Marshal("e\u0301")
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(out))
}

func TestMarshal_NoHTMLEscape(t *testing.T) {
	out, err := Marshal("<a&b>")
	require.NoError(t, err)
	assert.Equal(t, `"<a&b>"`, string(out))
}

func TestMarshal_LineSeparatorsLiteral(t *testing.T) {
	out, err := Marshal("a\u2028b\u2029c")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(out))
}

func TestMarshal_EscapedBackslashBeforeU2028Kept(t *testing.T) {
	// A literal backslash followed by the text u2028.
	out, err := Marshal(`\u2028`)
	require.NoError(t, err)
	assert.Equal(t, `"\\u2028"`, string(out))
}

func TestHashWithDomain(t *testing.T) {
	data := []byte(`{"a":1}`)

	h1 := HashWithDomain("calltree/a", data)
	h2 := HashWithDomain("calltree/a", data)
	h3 := HashWithDomain("calltree/b", data)

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
}

func TestHashWithDomain_SeparatorPreventsCollision(t *testing.T) {
	assert.NotEqual(t,
		HashWithDomain("ab", []byte("c")),
		HashWithDomain("a", []byte("bc")))
}
