// Package parser compiles expression text into typed expression trees.
//
// The grammar, from lowest to highest precedence:
//
//	expression     = or [ "?" expression ":" expression ]
//	or             = and { ( "||" | "or" ) and }
//	and            = comparison { ( "&&" | "and" ) comparison }
//	comparison     = additive { ( "=" | "==" | "!=" | "<>" | "<" | "<=" | ">" | ">=" ) additive }
//	additive       = multiplicative { ( "+" | "-" | "&" ) multiplicative }
//	multiplicative = unary { ( "*" | "/" | "%" | "mod" ) unary }
//	unary          = ( "-" | "!" | "not" ) unary | primary
//	primary        = start { "." member | "[" arguments "]" }
//
// Keywords, type names and operator words are case-insensitive. Parsing
// stops at the first error; there is no recovery.
package parser

import (
	"io"
	"log/slog"

	"github.com/roach88/dynq/internal/expr"
	"github.com/roach88/dynq/internal/lexer"
	"github.com/roach88/dynq/internal/overload"
	"github.com/roach88/dynq/internal/record"
	"github.com/roach88/dynq/internal/symbols"
	"github.com/roach88/dynq/internal/types"
)

// Config describes the environment of one compile call.
type Config struct {
	// Params are the lambda parameters. A single parameter with an empty
	// name is the implicit "it".
	Params []*expr.Parameter

	// Values are bound as @0, @1, .... A trailing map[string]any is
	// consulted by name for identifiers that match nothing else.
	Values []any

	// ResultType, if set, is the type the expression must promote to.
	ResultType *types.Type

	// Types are host types addressable by name, like the predefined ones.
	// Their methods may be invoked from expression text.
	Types []*types.Type

	// Registry types Go values bound through Values. Defaults to
	// types.Default().
	Registry *types.Registry

	// Records caches projection record types. Defaults to record.Shared().
	// Types created by a compile are added only if the compile succeeds.
	Records *record.Cache

	// Logger receives debug events. Defaults to a discarding logger.
	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.Registry == nil {
		c.Registry = types.Default()
	}
	if c.Records == nil {
		c.Records = record.Shared()
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

// Ordering is one key of an ordering list.
type Ordering struct {
	Selector  expr.Expr
	Ascending bool
}

type parser struct {
	src string
	cfg Config
	lex *lexer.Lexer
	tok lexer.Token
	env *symbols.Env

	records *record.Pending
}

func newParser(src string, cfg Config) (*parser, error) {
	p := &parser{src: src, cfg: cfg.withDefaults(), lex: lexer.New(src), env: symbols.New()}
	p.records = p.cfg.Records.Stage()
	if err := p.env.AddParameters(cfg.Params); err != nil {
		return nil, err
	}
	for _, t := range cfg.Types {
		if err := p.env.Add(t.Name(), t); err != nil {
			return nil, err
		}
	}
	if err := p.env.AddValues(cfg.Values); err != nil {
		return nil, err
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	return p, nil
}

// ParseExpression compiles src. If cfg.ResultType is set the result is
// promoted to it.
func ParseExpression(src string, cfg Config) (expr.Expr, error) {
	return compile(src, cfg, func(p *parser) (expr.Expr, error) {
		return p.parse(cfg.ResultType)
	})
}

// ParseLambda compiles src as the body of a lambda over cfg.Params.
func ParseLambda(src string, cfg Config) (*expr.Lambda, error) {
	body, err := ParseExpression(src, cfg)
	if err != nil {
		return nil, err
	}
	return &expr.Lambda{Params: cfg.Params, Body: body}, nil
}

// ParseOrdering compiles a comma-separated list of ordering keys, each
// optionally followed by asc, ascending, desc or descending.
func ParseOrdering(src string, cfg Config) ([]Ordering, error) {
	return compile(src, cfg, (*parser).parseOrdering)
}

// compile runs one parse and publishes the record types it staged. If
// another compile registered records in the meantime the staged names
// are stale and the parse is repeated.
func compile[T any](src string, cfg Config, run func(*parser) (T, error)) (T, error) {
	var zero T
	for {
		p, err := newParser(src, cfg)
		if err != nil {
			return zero, p.failed(src, cfg, err)
		}
		out, err := run(p)
		if err != nil {
			return zero, p.failed(src, cfg, err)
		}
		if p.records.Commit() {
			return out, nil
		}
		p.cfg.Logger.Debug("record cache changed during compile, retrying", "source", src)
	}
}

// failed logs a compile failure. p may be nil.
func (p *parser) failed(src string, cfg Config, err error) error {
	logger := cfg.Logger
	if p != nil {
		logger = p.cfg.Logger
	}
	if logger != nil {
		logger.Debug("compile failed", "source", src, "error", err)
	}
	return err
}

func (p *parser) parse(resultType *types.Type) (expr.Expr, error) {
	pos := p.tok.Pos
	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if resultType != nil {
		promoted := overload.Promote(e, resultType, true)
		if promoted == nil {
			return nil, expr.Errorf(pos, msgExpressionTypeMismatch, resultType)
		}
		e = promoted
	}
	if err := p.expect(lexer.End, msgSyntaxError); err != nil {
		return nil, err
	}
	return e, nil
}

func (p *parser) parseOrdering() ([]Ordering, error) {
	var out []Ordering
	for {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		asc := true
		switch {
		case p.identIs("asc") || p.identIs("ascending"):
			if err := p.next(); err != nil {
				return nil, err
			}
		case p.identIs("desc") || p.identIs("descending"):
			if err := p.next(); err != nil {
				return nil, err
			}
			asc = false
		}
		out = append(out, Ordering{Selector: e, Ascending: asc})
		if !p.is(lexer.Comma) {
			break
		}
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(lexer.End, msgSyntaxError); err != nil {
		return nil, err
	}
	return out, nil
}

// next advances to the following token.
func (p *parser) next() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) is(k lexer.Kind) bool { return p.tok.Kind == k }

// identIs reports whether the current token is the identifier word,
// ignoring case.
func (p *parser) identIs(word string) bool {
	return p.tok.Kind == lexer.Identifier && types.SameName(p.tok.Text, word)
}

func (p *parser) expect(k lexer.Kind, msg string) error {
	if p.tok.Kind != k {
		return expr.Errorf(p.tok.Pos, "%s", msg)
	}
	return nil
}

// identifier returns the current identifier without a leading '@'.
func (p *parser) identifier() (string, error) {
	if err := p.expect(lexer.Identifier, msgIdentifierExpected); err != nil {
		return "", err
	}
	id := p.tok.Text
	if len(id) > 1 && id[0] == '@' {
		id = id[1:]
	}
	return id, nil
}
