package parser

import (
	"github.com/roach88/dynq/internal/expr"
	"github.com/roach88/dynq/internal/lexer"
	"github.com/roach88/dynq/internal/overload"
	"github.com/roach88/dynq/internal/types"
)

// expression = or [ "?" expression ":" expression ]
func (p *parser) parseExpression() (expr.Expr, error) {
	pos := p.tok.Pos
	e, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if !p.is(lexer.Question) {
		return e, nil
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	then, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.Colon, msgColonExpected); err != nil {
		return nil, err
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	els, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return conditional(e, then, els, pos)
}

// conditional unifies the branch types: exactly one branch must promote to
// the type of the other.
func conditional(test, a, b expr.Expr, pos int) (expr.Expr, error) {
	if test.Type() != types.BoolType {
		return nil, expr.Errorf(pos, msgFirstExprMustBeBool)
	}
	if a.Type() != b.Type() {
		var aAsB, bAsA expr.Expr
		if !isNull(b) {
			aAsB = overload.Promote(a, b.Type(), true)
		}
		if !isNull(a) {
			bAsA = overload.Promote(b, a.Type(), true)
		}
		switch {
		case aAsB != nil && bAsA == nil:
			a = aAsB
		case bAsA != nil && aAsB == nil:
			b = bAsA
		case aAsB != nil:
			return nil, expr.Errorf(pos, msgBothTypesConvertToOther, a.Type(), b.Type())
		default:
			return nil, expr.Errorf(pos, msgNeitherTypeConvertsToOther, a.Type(), b.Type())
		}
	}
	return &expr.Conditional{Test: test, Then: a, Else: b}, nil
}

func isNull(e expr.Expr) bool {
	c, ok := e.(*expr.Constant)
	return ok && c.IsNull()
}

func (p *parser) parseLogicalOr() (expr.Expr, error) {
	left, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.is(lexer.DoubleBar) || p.identIs("or") {
		op := p.tok
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		if left, right, err = operands(overload.Logical, op, left, right); err != nil {
			return nil, err
		}
		left = &expr.Binary{Op: expr.Or, Left: left, Right: right, Typ: left.Type()}
	}
	return left, nil
}

func (p *parser) parseLogicalAnd() (expr.Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.is(lexer.DoubleAmphersand) || p.identIs("and") {
		op := p.tok
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		if left, right, err = operands(overload.Logical, op, left, right); err != nil {
			return nil, err
		}
		left = &expr.Binary{Op: expr.And, Left: left, Right: right, Typ: left.Type()}
	}
	return left, nil
}

var comparisonOps = map[lexer.Kind]expr.BinaryOp{
	lexer.Equal:            expr.Equal,
	lexer.DoubleEqual:      expr.Equal,
	lexer.ExclamationEqual: expr.NotEqual,
	lexer.LessGreater:      expr.NotEqual,
	lexer.LessThan:         expr.Less,
	lexer.LessThanEqual:    expr.LessEqual,
	lexer.GreaterThan:      expr.Greater,
	lexer.GreaterThanEqual: expr.GreaterEqual,
}

func (p *parser) parseComparison() (expr.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := comparisonOps[p.tok.Kind]
		if !ok {
			return left, nil
		}
		tok := p.tok
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		equality := op == expr.Equal || op == expr.NotEqual
		lt, rt := left.Type(), right.Type()
		switch {
		case equality && !lt.IsValueType() && !rt.IsValueType():
			if lt != rt {
				switch {
				case types.AssignableFrom(lt, rt):
					right = overload.Promote(right, lt, true)
				case types.AssignableFrom(rt, lt):
					left = overload.Promote(left, rt, true)
				default:
					return nil, incompatible(tok, left, right)
				}
			}
		case lt.IsEnum() || rt.IsEnum():
			if lt != rt {
				if e := overload.Promote(right, lt, true); e != nil {
					right = e
				} else if e := overload.Promote(left, rt, true); e != nil {
					left = e
				} else {
					return nil, incompatible(tok, left, right)
				}
			}
		default:
			cat := overload.Relational
			if equality {
				cat = overload.Equality
			}
			if left, right, err = operands(cat, tok, left, right); err != nil {
				return nil, err
			}
		}
		left = compare(op, left, right)
	}
}

// compare builds a comparison. Strings compare through String.Compare
// against zero.
func compare(op expr.BinaryOp, left, right expr.Expr) expr.Expr {
	if left.Type() == types.StringType && right.Type() == types.StringType {
		left = &expr.Call{Method: types.StringCompare, Args: []expr.Expr{left, right}}
		right = &expr.Constant{Value: int32(0), Typ: types.Int32Type}
	}
	return &expr.Binary{Op: op, Left: left, Right: right, Typ: types.BoolType}
}

func (p *parser) parseAdditive() (expr.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.is(lexer.Plus) || p.is(lexer.Minus) || p.is(lexer.Amphersand) {
		op := p.tok
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		switch {
		case op.Kind == lexer.Amphersand,
			op.Kind == lexer.Plus && (left.Type() == types.StringType || right.Type() == types.StringType):
			left = &expr.Binary{Op: expr.Concat, Left: left, Right: right, Typ: types.StringType}
		case op.Kind == lexer.Plus:
			if left, right, err = operands(overload.Add, op, left, right); err != nil {
				return nil, err
			}
			left = &expr.Binary{Op: expr.Add, Left: left, Right: right, Typ: left.Type()}
		default:
			if left, right, err = operands(overload.Subtract, op, left, right); err != nil {
				return nil, err
			}
			left = &expr.Binary{Op: expr.Subtract, Left: left, Right: right, Typ: differenceType(left, right)}
		}
	}
	return left, nil
}

// differenceType is TimeSpan for the difference of two dates and the left
// operand type otherwise.
func differenceType(left, right expr.Expr) *types.Type {
	lt := left.Type()
	if lt.NonNullable() == types.DateTimeType && right.Type().NonNullable() == types.DateTimeType {
		if lt.IsNullable() {
			return types.NullableOf(types.TimeSpanType)
		}
		return types.TimeSpanType
	}
	return lt
}

var multiplicativeOps = map[lexer.Kind]expr.BinaryOp{
	lexer.Asterisk: expr.Multiply,
	lexer.Slash:    expr.Divide,
	lexer.Percent:  expr.Modulo,
}

func (p *parser) parseMultiplicative() (expr.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := multiplicativeOps[p.tok.Kind]
		if p.identIs("mod") {
			op, ok = expr.Modulo, true
		}
		if !ok {
			return left, nil
		}
		tok := p.tok
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if left, right, err = operands(overload.Arithmetic, tok, left, right); err != nil {
			return nil, err
		}
		left = &expr.Binary{Op: op, Left: left, Right: right, Typ: left.Type()}
	}
}

// unary = ( "-" | "!" | "not" ) unary | primary
//
// A minus directly before a numeric literal becomes part of the literal
// text, so -2147483648 is an Int32.
func (p *parser) parseUnary() (expr.Expr, error) {
	if !p.is(lexer.Minus) && !p.is(lexer.Exclamation) && !p.identIs("not") {
		return p.parsePrimary()
	}
	op := p.tok
	if err := p.next(); err != nil {
		return nil, err
	}
	if op.Kind == lexer.Minus && (p.is(lexer.IntegerLiteral) || p.is(lexer.RealLiteral)) {
		p.tok.Text = "-" + p.tok.Text
		p.tok.Pos = op.Pos
		return p.parsePrimary()
	}
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	cat, uop := overload.Not, expr.Not
	if op.Kind == lexer.Minus {
		cat, uop = overload.Negate, expr.Negate
	}
	r := overload.ResolveOperator(cat, operand)
	if !r.OK() {
		return nil, expr.Errorf(op.Pos, msgIncompatibleOperand, op.Text, operand.Type())
	}
	return &expr.Unary{Op: uop, Operand: r.Args[0], Typ: r.Args[0].Type()}, nil
}

// operands promotes both sides of a binary operator to its resolved
// signature.
func operands(cat overload.Category, op lexer.Token, left, right expr.Expr) (expr.Expr, expr.Expr, error) {
	r := overload.ResolveOperator(cat, left, right)
	if !r.OK() {
		return nil, nil, incompatible(op, left, right)
	}
	return r.Args[0], r.Args[1], nil
}

func incompatible(op lexer.Token, left, right expr.Expr) error {
	return expr.Errorf(op.Pos, msgIncompatibleOperands, op.Text, left.Type(), right.Type())
}
