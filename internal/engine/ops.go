package engine

import (
	"math"
	"time"

	"github.com/cockroachdb/apd/v3"

	"github.com/roach88/dynq/internal/expr"
	"github.com/roach88/dynq/internal/types"
)

func (s *scope) unary(x *expr.Unary) (any, error) {
	v, err := s.eval(x.Operand)
	if err != nil {
		return nil, err
	}
	switch x.Op {
	case expr.Convert, expr.ConvertChecked:
		out, err := types.ConvertValue(v, x.Typ, x.Op == expr.ConvertChecked)
		if err != nil {
			return nil, classify(err, ErrCodeInvalidCast)
		}
		return out, nil
	}
	if v == nil {
		return nil, nil
	}
	if x.Op == expr.Not {
		b, _ := v.(bool)
		return !b, nil
	}
	return negate(v)
}

func negate(v any) (any, error) {
	switch n := v.(type) {
	case int32:
		return -n, nil
	case int64:
		return -n, nil
	case float32:
		return -n, nil
	case float64:
		return -n, nil
	case *apd.Decimal:
		return new(apd.Decimal).Neg(n), nil
	case time.Duration:
		return -n, nil
	}
	return nil, newError(ErrCodeUnsupported, "cannot negate %T", v)
}

func (s *scope) binary(x *expr.Binary) (any, error) {
	switch x.Op {
	case expr.And, expr.Or:
		return s.logical(x)
	}
	l, err := s.eval(x.Left)
	if err != nil {
		return nil, err
	}
	r, err := s.eval(x.Right)
	if err != nil {
		return nil, err
	}
	switch x.Op {
	case expr.Equal:
		return types.EqualValues(l, r), nil
	case expr.NotEqual:
		return !types.EqualValues(l, r), nil
	case expr.Less, expr.LessEqual, expr.Greater, expr.GreaterEqual:
		return relational(x.Op, l, r)
	case expr.Concat:
		return concat(l, x.Left.Type()) + concat(r, x.Right.Type()), nil
	}
	if l == nil || r == nil {
		return nil, nil
	}
	return arith(x.Op, l, r)
}

func concat(v any, t *types.Type) string {
	if v == nil {
		return ""
	}
	return types.FormatValue(v, t)
}

// logical short-circuits on a decided left operand. Over nullable
// booleans, false and true dominate null for and and or respectively.
func (s *scope) logical(x *expr.Binary) (any, error) {
	l, err := s.eval(x.Left)
	if err != nil {
		return nil, err
	}
	decided := x.Op == expr.Or
	if b, ok := l.(bool); ok && b == decided {
		return decided, nil
	}
	r, err := s.eval(x.Right)
	if err != nil {
		return nil, err
	}
	if b, ok := r.(bool); ok && b == decided {
		return decided, nil
	}
	if l == nil || r == nil {
		return nil, nil
	}
	return !decided, nil
}

func relational(op expr.BinaryOp, l, r any) (any, error) {
	if l == nil || r == nil {
		return false, nil
	}
	c, err := types.CompareValues(l, r)
	if err != nil {
		return nil, newError(ErrCodeUnsupported, "%v", err)
	}
	switch op {
	case expr.Less:
		return c < 0, nil
	case expr.LessEqual:
		return c <= 0, nil
	case expr.Greater:
		return c > 0, nil
	}
	return c >= 0, nil
}

// arith applies an arithmetic operator to two non-null operands of the
// same resolved type, or to the date and time pairs the operator tables
// allow.
func arith(op expr.BinaryOp, l, r any) (any, error) {
	switch a := l.(type) {
	case int32:
		return intOp(op, a, r.(int32), math.MinInt32)
	case int64:
		return intOp(op, a, r.(int64), math.MinInt64)
	case uint32:
		return intOp(op, a, r.(uint32), 0)
	case uint64:
		return intOp(op, a, r.(uint64), 0)
	case float32:
		return floatOp(op, a, r.(float32))
	case float64:
		return floatOp(op, a, r.(float64))
	case *apd.Decimal:
		return decimalOp(op, a, r.(*apd.Decimal))
	case time.Time:
		switch b := r.(type) {
		case time.Duration:
			if op == expr.Subtract {
				return a.Add(-b), nil
			}
			return a.Add(b), nil
		case time.Time:
			return a.Sub(b), nil
		}
	case time.Duration:
		if b, ok := r.(time.Duration); ok {
			if op == expr.Subtract {
				return a - b, nil
			}
			return a + b, nil
		}
	}
	return nil, newError(ErrCodeUnsupported, "operator %s not defined on %T and %T", op, l, r)
}

type integer interface {
	~int32 | ~int64 | ~uint32 | ~uint64
}

// intOp wraps on overflow. Division by zero fails, and so does dividing
// the minimum signed value by -1.
func intOp[T integer](op expr.BinaryOp, a, b, lowest T) (any, error) {
	switch op {
	case expr.Add:
		return a + b, nil
	case expr.Subtract:
		return a - b, nil
	case expr.Multiply:
		return a * b, nil
	case expr.Divide, expr.Modulo:
		if b == 0 {
			return nil, newError(ErrCodeDivideByZero, "attempted to divide by zero")
		}
		if lowest != 0 && a == lowest && b == ^T(0) {
			if op == expr.Modulo {
				return T(0), nil
			}
			return nil, newError(ErrCodeOverflow, "%v", types.ErrOverflow)
		}
		if op == expr.Divide {
			return a / b, nil
		}
		return a % b, nil
	}
	return nil, newError(ErrCodeUnsupported, "operator %s not defined on integers", op)
}

func floatOp[T float32 | float64](op expr.BinaryOp, a, b T) (any, error) {
	switch op {
	case expr.Add:
		return a + b, nil
	case expr.Subtract:
		return a - b, nil
	case expr.Multiply:
		return a * b, nil
	case expr.Divide:
		return a / b, nil
	case expr.Modulo:
		return T(math.Mod(float64(a), float64(b))), nil
	}
	return nil, newError(ErrCodeUnsupported, "operator %s not defined on floats", op)
}

// trimQuotient drops the trailing zeros a full-precision division leaves,
// keeping integral quotients at exponent zero.
func trimQuotient(d *apd.Decimal) {
	d.Reduce(d)
	if d.Exponent > 0 {
		_, _ = types.DecimalContext.Quantize(d, d, 0)
	}
}

func decimalOp(op expr.BinaryOp, a, b *apd.Decimal) (any, error) {
	d := new(apd.Decimal)
	var err error
	switch op {
	case expr.Add:
		_, err = types.DecimalContext.Add(d, a, b)
	case expr.Subtract:
		_, err = types.DecimalContext.Sub(d, a, b)
	case expr.Multiply:
		_, err = types.DecimalContext.Mul(d, a, b)
	case expr.Divide, expr.Modulo:
		if b.IsZero() {
			return nil, newError(ErrCodeDivideByZero, "attempted to divide by zero")
		}
		if op == expr.Divide {
			if _, err = types.DecimalContext.Quo(d, a, b); err == nil {
				trimQuotient(d)
			}
		} else {
			_, err = types.DecimalContext.Rem(d, a, b)
		}
	default:
		return nil, newError(ErrCodeUnsupported, "operator %s not defined on decimals", op)
	}
	if err != nil {
		return nil, &RuntimeError{Code: ErrCodeOverflow, Message: err.Error(), Err: err}
	}
	return d, nil
}
