package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dynq/internal/expr"
)

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenize_Punctuation(t *testing.T) {
	toks, err := Tokenize("! != % & && ( ) * + , - . / : < <= <> = == > >= ? [ ] | ||")
	require.NoError(t, err)
	assert.Equal(t, []Kind{
		Exclamation, ExclamationEqual, Percent, Amphersand, DoubleAmphersand,
		OpenParen, CloseParen, Asterisk, Plus, Comma, Minus, Dot, Slash, Colon,
		LessThan, LessThanEqual, LessGreater, Equal, DoubleEqual, GreaterThan,
		GreaterThanEqual, Question, OpenBracket, CloseBracket, Bar, DoubleBar, End,
	}, kinds(toks))
}

func TestTokenize_Expression(t *testing.T) {
	toks, err := Tokenize(`Age > 20 and Name == "Bob"`)
	require.NoError(t, err)
	assert.Equal(t, []Token{
		{Kind: Identifier, Text: "Age", Pos: 0},
		{Kind: GreaterThan, Text: ">", Pos: 4},
		{Kind: IntegerLiteral, Text: "20", Pos: 6},
		{Kind: Identifier, Text: "and", Pos: 9},
		{Kind: Identifier, Text: "Name", Pos: 13},
		{Kind: DoubleEqual, Text: "==", Pos: 18},
		{Kind: StringLiteral, Text: `"Bob"`, Pos: 21},
		{Kind: End, Text: "", Pos: 26},
	}, toks)
}

func TestTokenize_NonASCIIOffsets(t *testing.T) {
	toks, err := Tokenize(`Name == "é" and`)
	require.NoError(t, err)
	assert.Equal(t, []Token{
		{Kind: Identifier, Text: "Name", Pos: 0},
		{Kind: DoubleEqual, Text: "==", Pos: 5},
		{Kind: StringLiteral, Text: `"é"`, Pos: 8},
		{Kind: Identifier, Text: "and", Pos: 12},
		{Kind: End, Text: "", Pos: 15},
	}, toks)
}

func TestTokenize_Numbers(t *testing.T) {
	testCases := []struct {
		src  string
		kind Kind
		text string
	}{
		{"42", IntegerLiteral, "42"},
		{"3.14", RealLiteral, "3.14"},
		{"1e10", RealLiteral, "1e10"},
		{"2.5E-3", RealLiteral, "2.5E-3"},
		{"1.5F", RealLiteral, "1.5F"},
		{"7f", IntegerLiteral, "7f"},
	}
	for _, tc := range testCases {
		t.Run(tc.src, func(t *testing.T) {
			tok, err := New(tc.src).Next()
			require.NoError(t, err)
			assert.Equal(t, tc.kind, tok.Kind)
			assert.Equal(t, tc.text, tok.Text)
		})
	}
}

func TestTokenize_Identifiers(t *testing.T) {
	toks, err := Tokenize("@0 _x it2 Größe")
	require.NoError(t, err)
	assert.Equal(t, []string{"@0", "_x", "it2", "Größe", ""}, func() []string {
		var out []string
		for _, tk := range toks {
			out = append(out, tk.Text)
		}
		return out
	}())
}

func TestTokenize_Quoted(t *testing.T) {
	toks, err := Tokenize(`"say ""hi""" 'a' ''''`)
	require.NoError(t, err)
	assert.Equal(t, []Kind{StringLiteral, CharLiteral, CharLiteral, End}, kinds(toks))
	assert.Equal(t, `say "hi"`, Unquote(toks[0].Text))
	assert.Equal(t, "a", Unquote(toks[1].Text))
	assert.Equal(t, "'", Unquote(toks[2].Text))
}

func TestTokenize_Errors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		msg  string
		pos  int
	}{
		{"unterminated string", `Name == "Bob`, "Unterminated string literal", 12},
		{"unterminated char", `'a`, "Unterminated string literal", 2},
		{"char too long", `x == 'ab'`, "Character literal must contain exactly one character", 5},
		{"empty char", `''`, "Character literal must contain exactly one character", 0},
		{"digit after dot", "1.x", "Digit expected", 2},
		{"digit in exponent", "1e+", "Digit expected", 3},
		{"unknown character", "a # b", "Syntax error '#'", 2},
		{"unterminated after non-ASCII", `"é" + "naïve`, "Unterminated string literal", 12},
		{"unknown after non-ASCII", `'ü' # 1`, "Syntax error '#'", 4},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Tokenize(tc.src)
			require.Error(t, err)
			pe, ok := expr.AsParseError(err)
			require.True(t, ok)
			assert.Equal(t, tc.msg, pe.Message)
			assert.Equal(t, tc.pos, pe.Pos)
		})
	}
}

func TestLexer_EndIsSticky(t *testing.T) {
	l := New("  ")
	for i := 0; i < 3; i++ {
		tok, err := l.Next()
		require.NoError(t, err)
		assert.Equal(t, End, tok.Kind)
		assert.Equal(t, 2, tok.Pos)
	}
}

func TestTokenize_OffsetsNonDecreasing(t *testing.T) {
	toks, err := Tokenize(`iif(a.b[1] >= 2, "x", 'y') || !c`)
	require.NoError(t, err)
	for i := 1; i < len(toks); i++ {
		assert.GreaterOrEqual(t, toks[i].Pos, toks[i-1].Pos)
	}
}
