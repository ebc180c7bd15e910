// Package lexer splits expression source text into tokens.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/roach88/dynq/internal/expr"
)

// Lexer produces tokens on demand. It is not safe for concurrent use.
type Lexer struct {
	src string
	pos int  // byte offset of ch
	off int  // character offset of ch
	ch  rune // current character, or -1 at end of input
	w   int  // byte width of ch
}

// New returns a Lexer positioned at the start of src.
func New(src string) *Lexer {
	l := &Lexer{src: src}
	l.read()
	return l
}

const eof = -1

func (l *Lexer) read() {
	if l.pos >= len(l.src) {
		l.ch, l.w = eof, 0
		return
	}
	l.ch, l.w = utf8.DecodeRuneInString(l.src[l.pos:])
}

func (l *Lexer) advance() {
	if l.w > 0 {
		l.pos += l.w
		l.off++
	}
	l.read()
}

func isDigit(c rune) bool { return c >= '0' && c <= '9' }

// Next scans the next token. After End it keeps returning End.
func (l *Lexer) Next() (Token, error) {
	for l.ch != eof && unicode.IsSpace(l.ch) {
		l.advance()
	}
	start, off := l.pos, l.off
	kind, err := l.scan(start, off)
	if err != nil {
		return Token{}, err
	}
	return Token{Kind: kind, Text: l.src[start:l.pos], Pos: off}, nil
}

// twoChar consumes c plus an optional second character.
func (l *Lexer) twoChar(single Kind, pairs map[rune]Kind) Kind {
	l.advance()
	if k, ok := pairs[l.ch]; ok {
		l.advance()
		return k
	}
	return single
}

func (l *Lexer) scan(start, off int) (Kind, error) {
	switch c := l.ch; c {
	case eof:
		return End, nil
	case '!':
		return l.twoChar(Exclamation, map[rune]Kind{'=': ExclamationEqual}), nil
	case '%':
		l.advance()
		return Percent, nil
	case '&':
		return l.twoChar(Amphersand, map[rune]Kind{'&': DoubleAmphersand}), nil
	case '(':
		l.advance()
		return OpenParen, nil
	case ')':
		l.advance()
		return CloseParen, nil
	case '*':
		l.advance()
		return Asterisk, nil
	case '+':
		l.advance()
		return Plus, nil
	case ',':
		l.advance()
		return Comma, nil
	case '-':
		l.advance()
		return Minus, nil
	case '.':
		l.advance()
		return Dot, nil
	case '/':
		l.advance()
		return Slash, nil
	case ':':
		l.advance()
		return Colon, nil
	case '<':
		return l.twoChar(LessThan, map[rune]Kind{'=': LessThanEqual, '>': LessGreater}), nil
	case '=':
		return l.twoChar(Equal, map[rune]Kind{'=': DoubleEqual}), nil
	case '>':
		return l.twoChar(GreaterThan, map[rune]Kind{'=': GreaterThanEqual}), nil
	case '?':
		l.advance()
		return Question, nil
	case '[':
		l.advance()
		return OpenBracket, nil
	case ']':
		l.advance()
		return CloseBracket, nil
	case '|':
		return l.twoChar(Bar, map[rune]Kind{'|': DoubleBar}), nil
	case '"', '\'':
		return l.scanQuoted(start, off, c)
	}

	switch {
	case unicode.IsLetter(l.ch) || l.ch == '@' || l.ch == '_':
		for {
			l.advance()
			if !(unicode.IsLetter(l.ch) || unicode.IsDigit(l.ch) || l.ch == '_') {
				return Identifier, nil
			}
		}
	case isDigit(l.ch):
		return l.scanNumber()
	}
	return End, expr.Errorf(off, "Syntax error '%c'", l.ch)
}

// scanQuoted reads a quoted literal. A doubled quote inside the literal
// stands for one quote character.
func (l *Lexer) scanQuoted(start, off int, quote rune) (Kind, error) {
	for {
		l.advance()
		for l.ch != eof && l.ch != quote {
			l.advance()
		}
		if l.ch == eof {
			return End, expr.Errorf(l.off, "Unterminated string literal")
		}
		l.advance()
		if l.ch != quote {
			break
		}
	}
	if quote == '\'' {
		if utf8.RuneCountInString(Unquote(l.src[start:l.pos])) != 1 {
			return End, expr.Errorf(off, "Character literal must contain exactly one character")
		}
		return CharLiteral, nil
	}
	return StringLiteral, nil
}

func (l *Lexer) scanNumber() (Kind, error) {
	kind := IntegerLiteral
	l.skipDigits()
	if l.ch == '.' {
		kind = RealLiteral
		l.advance()
		if err := l.requireDigit(); err != nil {
			return End, err
		}
		l.skipDigits()
	}
	if l.ch == 'E' || l.ch == 'e' {
		kind = RealLiteral
		l.advance()
		if l.ch == '+' || l.ch == '-' {
			l.advance()
		}
		if err := l.requireDigit(); err != nil {
			return End, err
		}
		l.skipDigits()
	}
	if l.ch == 'F' || l.ch == 'f' {
		l.advance()
	}
	return kind, nil
}

func (l *Lexer) skipDigits() {
	for isDigit(l.ch) {
		l.advance()
	}
}

func (l *Lexer) requireDigit() error {
	if !isDigit(l.ch) {
		return expr.Errorf(l.off, "Digit expected")
	}
	return nil
}

// Tokenize scans all of src, including the final End token.
func Tokenize(src string) ([]Token, error) {
	l := New(src)
	var out []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.Kind == End {
			return out, nil
		}
	}
}

// Unquote strips the surrounding quotes of a string or character literal
// and collapses doubled quotes.
func Unquote(text string) string {
	if len(text) < 2 {
		return text
	}
	quote := text[:1]
	return strings.ReplaceAll(text[1:len(text)-1], quote+quote, quote)
}
