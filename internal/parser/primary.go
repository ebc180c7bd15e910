package parser

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/roach88/dynq/internal/expr"
	"github.com/roach88/dynq/internal/lexer"
	"github.com/roach88/dynq/internal/members"
	"github.com/roach88/dynq/internal/overload"
	"github.com/roach88/dynq/internal/record"
	"github.com/roach88/dynq/internal/symbols"
	"github.com/roach88/dynq/internal/types"
)

// primary = start { "." member | "[" arguments "]" }
func (p *parser) parsePrimary() (expr.Expr, error) {
	e, err := p.parsePrimaryStart()
	if err != nil {
		return nil, err
	}
	for {
		switch p.tok.Kind {
		case lexer.Dot:
			if err := p.next(); err != nil {
				return nil, err
			}
			e, err = p.parseMemberAccess(nil, e)
		case lexer.OpenBracket:
			e, err = p.parseElementAccess(e)
		default:
			return e, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (p *parser) parsePrimaryStart() (expr.Expr, error) {
	switch p.tok.Kind {
	case lexer.Identifier:
		return p.parseIdentifier()
	case lexer.StringLiteral:
		return p.parseStringLiteral()
	case lexer.CharLiteral:
		return p.parseCharLiteral()
	case lexer.IntegerLiteral:
		return p.parseIntegerLiteral()
	case lexer.RealLiteral:
		return p.parseRealLiteral()
	case lexer.OpenParen:
		return p.parseParenExpression()
	}
	return nil, expr.Errorf(p.tok.Pos, msgExpressionExpected)
}

// literal returns the current token as a deferred literal and advances.
func (p *parser) literal(v any, t *types.Type) (expr.Expr, error) {
	c := &expr.Constant{Value: v, Typ: t, Literal: p.tok.Text}
	if err := p.next(); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *parser) parseStringLiteral() (expr.Expr, error) {
	return p.literal(lexer.Unquote(p.tok.Text), types.StringType)
}

func (p *parser) parseCharLiteral() (expr.Expr, error) {
	r := []rune(lexer.Unquote(p.tok.Text))[0]
	c := &expr.Constant{Value: r, Typ: types.CharType}
	if err := p.next(); err != nil {
		return nil, err
	}
	return c, nil
}

// parseIntegerLiteral types an integer literal as the first of Int32,
// UInt32, Int64 and UInt64 that holds it. Negative literals are Int32 or
// Int64.
func (p *parser) parseIntegerLiteral() (expr.Expr, error) {
	text := p.tok.Text
	if strings.HasPrefix(text, "-") {
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, expr.Errorf(p.tok.Pos, msgInvalidIntegerLiteral, text)
		}
		if i >= math.MinInt32 {
			return p.literal(int32(i), types.Int32Type)
		}
		return p.literal(i, types.Int64Type)
	}
	u, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return nil, expr.Errorf(p.tok.Pos, msgInvalidIntegerLiteral, text)
	}
	switch {
	case u <= math.MaxInt32:
		return p.literal(int32(u), types.Int32Type)
	case u <= math.MaxUint32:
		return p.literal(uint32(u), types.Uint32Type)
	case u <= math.MaxInt64:
		return p.literal(int64(u), types.Int64Type)
	}
	return p.literal(u, types.Uint64Type)
}

// parseRealLiteral types a real literal as Double, or Single with an F
// suffix.
func (p *parser) parseRealLiteral() (expr.Expr, error) {
	text := p.tok.Text
	if last := text[len(text)-1]; last == 'F' || last == 'f' {
		f, err := strconv.ParseFloat(text[:len(text)-1], 32)
		if err != nil {
			return nil, expr.Errorf(p.tok.Pos, msgInvalidRealLiteral, text)
		}
		return p.literal(float32(f), types.Float32Type)
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, expr.Errorf(p.tok.Pos, msgInvalidRealLiteral, text)
	}
	return p.literal(f, types.Float64Type)
}

func (p *parser) parseParenExpression() (expr.Expr, error) {
	if err := p.expect(lexer.OpenParen, msgOpenParenExpected); err != nil {
		return nil, err
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.CloseParen, msgCloseParenOrOperator); err != nil {
		return nil, err
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	return e, nil
}

// parseIdentifier resolves, in order: keywords and predefined type names,
// declared symbols and named values, then a member of "it".
func (p *parser) parseIdentifier() (expr.Expr, error) {
	tok := p.tok
	if v, ok := symbols.LookupKeyword(tok.Text); ok {
		switch k := v.(type) {
		case *types.Type:
			return p.parseTypeAccess(k)
		case symbols.Keyword:
			switch k {
			case symbols.It:
				return p.parseIt()
			case symbols.Iif:
				return p.parseIif()
			case symbols.NewKeyword:
				return p.parseNew()
			case symbols.True:
				return p.consume(&expr.Constant{Value: true, Typ: types.BoolType})
			case symbols.False:
				return p.consume(&expr.Constant{Value: false, Typ: types.BoolType})
			case symbols.Null:
				return p.consume(&expr.Constant{Typ: types.NullType})
			}
		}
	}
	if v, ok := p.env.Lookup(tok.Text); ok {
		switch x := v.(type) {
		case *types.Type:
			return p.parseTypeAccess(x)
		case *expr.Lambda:
			return p.parseLambdaInvocation(x)
		case expr.Expr:
			return p.consume(x)
		default:
			c, err := p.constantOf(tok, x)
			if err != nil {
				return nil, err
			}
			return p.consume(c)
		}
	}
	if it := p.env.It(); it != nil {
		return p.parseMemberAccess(nil, it)
	}
	return nil, expr.Errorf(tok.Pos, msgUnknownIdentifier, tok.Text)
}

// consume consumes the current token and returns e.
func (p *parser) consume(e expr.Expr) (expr.Expr, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	return e, nil
}

// constantOf types an external value through the registry.
func (p *parser) constantOf(tok lexer.Token, v any) (expr.Expr, error) {
	if v == nil {
		return &expr.Constant{Typ: types.NullType}, nil
	}
	rt := reflect.TypeOf(v)
	t, err := p.cfg.Registry.TypeOf(rt)
	if err != nil {
		return nil, expr.Errorf(tok.Pos, msgUnsupportedValue, tok.Text, rt)
	}
	val, err := p.cfg.Registry.Value(v, t)
	if err != nil {
		return nil, expr.Errorf(tok.Pos, msgUnsupportedValue, tok.Text, rt)
	}
	return &expr.Constant{Value: val, Typ: t}, nil
}

func (p *parser) parseIt() (expr.Expr, error) {
	it := p.env.It()
	if it == nil {
		return nil, expr.Errorf(p.tok.Pos, msgNoItInScope)
	}
	return p.consume(it)
}

// parseIif parses iif(test, a, b), which is test ? a : b.
func (p *parser) parseIif() (expr.Expr, error) {
	pos := p.tok.Pos
	if err := p.next(); err != nil {
		return nil, err
	}
	args, err := p.parseArgumentList()
	if err != nil {
		return nil, err
	}
	if len(args) != 3 {
		return nil, expr.Errorf(pos, msgIifRequiresThreeArgs)
	}
	return conditional(args[0], args[1], args[2], pos)
}

// parseNew parses new(e1 as Name1, e2, ...). A field without an as-clause
// must be a member access and takes the member's name.
func (p *parser) parseNew() (expr.Expr, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	if err := p.expect(lexer.OpenParen, msgOpenParenExpected); err != nil {
		return nil, err
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	var (
		schema record.Schema
		fields []expr.Field
	)
	for {
		pos := p.tok.Pos
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		var name string
		if p.identIs("as") {
			if err := p.next(); err != nil {
				return nil, err
			}
			if name, err = p.identifier(); err != nil {
				return nil, err
			}
			if err := p.next(); err != nil {
				return nil, err
			}
		} else {
			ma, ok := e.(*expr.MemberAccess)
			if !ok {
				return nil, expr.Errorf(pos, msgMissingAsClause)
			}
			name = ma.Member.Name
		}
		if schema.Index(name) >= 0 {
			return nil, expr.Errorf(pos, msgDuplicateField, name)
		}
		schema = append(schema, record.Field{Name: name, Type: e.Type()})
		fields = append(fields, expr.Field{Name: name, Value: e})
		if !p.is(lexer.Comma) {
			break
		}
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(lexer.CloseParen, msgCloseParenOrComma); err != nil {
		return nil, err
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	return &expr.New{Record: p.records.GetOrCreate(schema), Fields: fields}, nil
}

// parseLambdaInvocation applies a lambda bound as an external value.
func (p *parser) parseLambdaInvocation(l *expr.Lambda) (expr.Expr, error) {
	pos := p.tok.Pos
	if err := p.next(); err != nil {
		return nil, err
	}
	args, err := p.parseArgumentList()
	if err != nil {
		return nil, err
	}
	params := make([]types.Param, len(l.Params))
	for i, lp := range l.Params {
		params[i] = types.P(lp.Name, lp.Typ)
	}
	r := overload.FindBest([]overload.Candidate{{Params: params}}, args)
	if !r.OK() {
		return nil, expr.Errorf(pos, msgArgsIncompatibleWithLambda)
	}
	return &expr.Invoke{Lambda: l, Args: r.Args}, nil
}

// parseTypeAccess parses what follows a type name: an optional "?" for the
// nullable form, then a constructor call, an explicit conversion or a
// static member.
func (p *parser) parseTypeAccess(t *types.Type) (expr.Expr, error) {
	pos := p.tok.Pos
	if err := p.next(); err != nil {
		return nil, err
	}
	if p.is(lexer.Question) {
		if !t.IsValueType() || t.IsNullable() {
			return nil, expr.Errorf(pos, msgTypeHasNoNullableForm, t)
		}
		t = types.NullableOf(t)
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	if p.is(lexer.OpenParen) {
		args, err := p.parseArgumentList()
		if err != nil {
			return nil, err
		}
		r := members.FindConstructor(t, args)
		switch r.Count {
		case 0:
			if len(args) == 1 {
				return conversion(args[0], t, pos)
			}
			return nil, expr.Errorf(pos, msgNoMatchingConstructor, t)
		case 1:
			return &expr.Call{Method: r.Member, Args: r.Args}, nil
		default:
			return nil, expr.Errorf(pos, msgAmbiguousConstructor, t)
		}
	}
	if err := p.expect(lexer.Dot, msgDotOrOpenParenExpected); err != nil {
		return nil, err
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	return p.parseMemberAccess(t, nil)
}

// conversion builds the explicit conversion T(e). Conversions between
// numeric, character and enum types are checked.
func conversion(e expr.Expr, t *types.Type, pos int) (expr.Expr, error) {
	et := e.Type()
	if et == t {
		return e, nil
	}
	if isNull(e) {
		if t.CanBeNull() {
			return &expr.Constant{Typ: t}, nil
		}
		return nil, expr.Errorf(pos, msgCannotConvertValue, et, t)
	}
	if et.IsValueType() && t.IsValueType() {
		if (et.IsNullable() || t.IsNullable()) && et.NonNullable() == t.NonNullable() {
			return &expr.Unary{Op: expr.Convert, Operand: e, Typ: t}, nil
		}
		if scalar(et) && scalar(t) {
			return &expr.Unary{Op: expr.ConvertChecked, Operand: e, Typ: t}, nil
		}
	}
	if types.AssignableFrom(et, t) || types.AssignableFrom(t, et) || et.IsInterface() || t.IsInterface() {
		return &expr.Unary{Op: expr.Convert, Operand: e, Typ: t}, nil
	}
	return nil, expr.Errorf(pos, msgCannotConvertValue, et, t)
}

// scalar reports whether t, ignoring a nullable wrapper, is numeric, Char
// or an enum.
func scalar(t *types.Type) bool {
	n := t.NonNullable()
	return n.IsNumeric() || n.Kind() == types.Char || n.Kind() == types.Enum
}

// parseMemberAccess parses a member of instance, or a static member of t
// when instance is nil.
func (p *parser) parseMemberAccess(t *types.Type, instance expr.Expr) (expr.Expr, error) {
	if instance != nil {
		t = instance.Type()
	}
	pos := p.tok.Pos
	name, err := p.identifier()
	if err != nil {
		return nil, err
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	if !p.is(lexer.OpenParen) {
		m := members.FindPropertyOrField(t, name, instance == nil)
		if m == nil {
			return nil, expr.Errorf(pos, msgUnknownPropertyOrField, name, t)
		}
		return &expr.MemberAccess{Target: targetOf(instance, m), Member: m}, nil
	}
	if instance != nil {
		if elem, ok := members.ElementType(t); ok {
			return p.parseAggregate(instance, elem, name, pos)
		}
	}
	args, err := p.parseArgumentList()
	if err != nil {
		return nil, err
	}
	r := members.FindMethod(t, name, instance == nil, args)
	switch r.Count {
	case 0:
		return nil, expr.Errorf(pos, msgNoApplicableMethod, name, t)
	case 1:
		m := r.Member
		if !members.IsAccessible(m.Owner, p.cfg.Types...) {
			return nil, expr.Errorf(pos, msgMethodsAreInaccessible, m.Owner)
		}
		if m.Type == nil || m.Type == types.VoidType {
			return nil, expr.Errorf(pos, msgMethodIsVoid, name, m.Owner)
		}
		return &expr.Call{Target: targetOf(instance, m), Method: m, Args: r.Args}, nil
	}
	return nil, expr.Errorf(pos, msgAmbiguousMethod, name, t)
}

// targetOf drops the instance of a static member reached through a value.
func targetOf(instance expr.Expr, m *types.Member) expr.Expr {
	if m.Static {
		return nil
	}
	return instance
}

// parseAggregate parses the argument list of a sequence aggregate with a
// fresh "it" bound to the element. The outer "it" is restored once the
// list closes.
func (p *parser) parseAggregate(source expr.Expr, elem *types.Type, name string, pos int) (expr.Expr, error) {
	inner := &expr.Parameter{Typ: elem}
	restore := p.env.PushIt(inner)
	args, err := p.parseArgumentList()
	restore()
	if err != nil {
		return nil, err
	}
	r, ok := members.FindAggregate(name, elem, args)
	if !ok {
		return nil, expr.Errorf(pos, msgNoApplicableAggregate, name)
	}
	agg := &expr.Aggregate{Op: r.Op, Source: source, Typ: r.Type}
	if r.Selector != nil {
		agg.Selector = &expr.Lambda{Params: []*expr.Parameter{inner}, Body: r.Selector}
	}
	return agg, nil
}

// parseElementAccess parses e[args]. Arrays take a single integer index;
// other types resolve an indexer.
func (p *parser) parseElementAccess(e expr.Expr) (expr.Expr, error) {
	pos := p.tok.Pos
	if err := p.expect(lexer.OpenBracket, msgOpenBracketExpected); err != nil {
		return nil, err
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	args, err := p.parseArguments()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.CloseBracket, msgCloseBracketOrComma); err != nil {
		return nil, err
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	t := e.Type()
	if t.Kind() == types.Array {
		if t.Rank() != 1 || len(args) != 1 {
			return nil, expr.Errorf(pos, msgCannotIndexMultiDimArray)
		}
		index := overload.Promote(args[0], types.Int32Type, true)
		if index == nil {
			return nil, expr.Errorf(pos, msgInvalidIndex)
		}
		return &expr.Index{Target: e, Args: []expr.Expr{index}}, nil
	}
	r := members.FindIndexer(t, args)
	switch r.Count {
	case 0:
		return nil, expr.Errorf(pos, msgNoApplicableIndexer, t)
	case 1:
		return &expr.Index{Target: e, Indexer: r.Member, Args: r.Args}, nil
	}
	return nil, expr.Errorf(pos, msgAmbiguousIndexer, t)
}

// parseArgumentList parses "(" [ arguments ] ")".
func (p *parser) parseArgumentList() ([]expr.Expr, error) {
	if err := p.expect(lexer.OpenParen, msgOpenParenExpected); err != nil {
		return nil, err
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	var args []expr.Expr
	if !p.is(lexer.CloseParen) {
		var err error
		if args, err = p.parseArguments(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(lexer.CloseParen, msgCloseParenOrComma); err != nil {
		return nil, err
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) parseArguments() ([]expr.Expr, error) {
	var args []expr.Expr
	for {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, e)
		if !p.is(lexer.Comma) {
			return args, nil
		}
		if err := p.next(); err != nil {
			return nil, err
		}
	}
}
