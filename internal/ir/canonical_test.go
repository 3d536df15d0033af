package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"negative int64", int64(-100), "-100"},
		{"flag", FlagCamera, "201"},
		{"bool", true, "true"},
		{"empty array", []any{}, "[]"},
		{"empty object", map[string]any{}, "{}"},
		{"tokens", []string{"draw", "a"}, `["draw","a"]`},
		{"flag set", NewFlagSet(FlagDraw), "[22]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalInstruction(t *testing.T) {
	inst := Instruction{
		Tokens: []string{"layer", "a", "camera"},
		Flags:  NewFlagSet(FlagCamera, FlagLayer),
	}

	result, err := MarshalCanonical(inst)
	require.NoError(t, err)
	assert.Equal(t, `{"flags":[20,201],"tokens":["layer","a","camera"]}`, string(result))
}

func TestMarshalCanonicalEmptyInstruction(t *testing.T) {
	result, err := MarshalCanonical(Instruction{})
	require.NoError(t, err)
	assert.Equal(t, `{"flags":[],"tokens":[]}`, string(result))
}

func TestMarshalCanonicalEdit(t *testing.T) {
	e := Edit{Seq: 3, Op: OpDelete, Index: 1}

	result, err := MarshalCanonical(e)
	require.NoError(t, err)
	assert.Equal(t, `{"index":1,"op":"delete","seq":3}`, string(result))
}

func TestMarshalCanonicalUTF16Ordering(t *testing.T) {
	// U+10000 encodes as a surrogate pair starting 0xD800, which sorts
	// before 0xE000 in UTF-16 even though its UTF-8 bytes sort after.
	obj := map[string]any{
		"\uE000":     1,
		"\U00010000": 2,
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U00010000\":2,\"\uE000\":1}", string(result))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical("<a & b>")
	require.NoError(t, err)
	assert.Equal(t, `"<a & b>"`, string(result))
}

func TestMarshalCanonicalEscapes(t *testing.T) {
	result, err := MarshalCanonical("a\"b\\c\nd\x01\u2028")
	require.NoError(t, err)
	assert.Equal(t, `"a\"b\\c\nd\u0001`+"\u2028"+`"`, string(result))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// "e" + combining acute accent normalizes to U+00E9
	result, err := MarshalCanonical("e\u0301")
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(result))
}

func TestMarshalCanonicalRejectsFloatAndNull(t *testing.T) {
	_, err := MarshalCanonical(1.5)
	assert.Error(t, err)

	_, err = MarshalCanonical(nil)
	assert.Error(t, err)

	_, err = MarshalCanonical([]any{"ok", 2.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "array[1]")
}
