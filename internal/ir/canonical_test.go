package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    IRValue
		expected string
	}{
		{"string", IRString("hello"), `"hello"`},
		{"int", IRInt(-100), "-100"},
		{"bool", IRBool(false), "false"},
		{"null", IRNull{}, "null"},
		{"empty array", IRArray{}, "[]"},
		{"empty object", IRObject{}, "{}"},
		{"nested", IRObject{"z": IRObject{"b": IRInt(1), "a": IRInt(2)}, "a": IRInt(3)}, `{"a":3,"z":{"a":2,"b":1}}`},
		{"no html escape", IRString("a<b&c>d"), `"a<b&c>d"`},
		{"line separator kept", IRString("x\u2028y"), "\"x\u2028y\""},
		{"escaped backslash", IRString(`\u2028`), `"\\u2028"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// "e" + combining acute accent normalizes to U+00E9.
	result, err := MarshalCanonical(IRString("e\u0301"))
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(result))
}

func TestFingerprint(t *testing.T) {
	a := IRObject{"node": IRString("constant"), "value": IRInt(1)}
	b := IRObject{"value": IRInt(1), "node": IRString("constant")}

	fa, err := Fingerprint(DomainTree, a)
	require.NoError(t, err)
	assert.Len(t, fa, 64)
	assert.Equal(t, fa, MustFingerprint(DomainTree, b))
	assert.NotEqual(t, fa, MustFingerprint(DomainSchema, a), "domains separate fingerprints")
}
