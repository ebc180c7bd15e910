package lexer

import "fmt"

// Kind identifies the category of a Token.
type Kind uint8

const (
	End Kind = iota
	Identifier
	StringLiteral
	CharLiteral
	IntegerLiteral
	RealLiteral
	Exclamation      // !
	ExclamationEqual // !=
	Percent          // %
	Amphersand       // &
	DoubleAmphersand // &&
	OpenParen        // (
	CloseParen       // )
	Asterisk         // *
	Plus             // +
	Comma            // ,
	Minus            // -
	Dot              // .
	Slash            // /
	Colon            // :
	LessThan         // <
	LessThanEqual    // <=
	LessGreater      // <>
	Equal            // =
	DoubleEqual      // ==
	GreaterThan      // >
	GreaterThanEqual // >=
	Question         // ?
	OpenBracket      // [
	CloseBracket     // ]
	Bar              // |
	DoubleBar        // ||
)

var kindNames = [...]string{
	End:              "end",
	Identifier:       "identifier",
	StringLiteral:    "string literal",
	CharLiteral:      "character literal",
	IntegerLiteral:   "integer literal",
	RealLiteral:      "real literal",
	Exclamation:      "!",
	ExclamationEqual: "!=",
	Percent:          "%",
	Amphersand:       "&",
	DoubleAmphersand: "&&",
	OpenParen:        "(",
	CloseParen:       ")",
	Asterisk:         "*",
	Plus:             "+",
	Comma:            ",",
	Minus:            "-",
	Dot:              ".",
	Slash:            "/",
	Colon:            ":",
	LessThan:         "<",
	LessThanEqual:    "<=",
	LessGreater:      "<>",
	Equal:            "=",
	DoubleEqual:      "==",
	GreaterThan:      ">",
	GreaterThanEqual: ">=",
	Question:         "?",
	OpenBracket:      "[",
	CloseBracket:     "]",
	Bar:              "|",
	DoubleBar:        "||",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Token is one lexical unit. Pos is the character offset of its first
// character.
type Token struct {
	Kind Kind
	Text string
	Pos  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q @%d", t.Kind, t.Text, t.Pos)
}
