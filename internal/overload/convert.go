package overload

import (
	"github.com/roach88/dynq/internal/expr"
	"github.com/roach88/dynq/internal/lexer"
	"github.com/roach88/dynq/internal/types"
)

// ladder lists, per source kind, the kinds it widens to implicitly. Each
// kind widens to itself.
var ladder = map[types.Kind][]types.Kind{
	types.Int8:    {types.Int8, types.Int16, types.Int32, types.Int64, types.Float32, types.Float64, types.Decimal},
	types.Uint8:   {types.Uint8, types.Int16, types.Uint16, types.Int32, types.Uint32, types.Int64, types.Uint64, types.Float32, types.Float64, types.Decimal},
	types.Int16:   {types.Int16, types.Int32, types.Int64, types.Float32, types.Float64, types.Decimal},
	types.Uint16:  {types.Uint16, types.Int32, types.Uint32, types.Int64, types.Uint64, types.Float32, types.Float64, types.Decimal},
	types.Int32:   {types.Int32, types.Int64, types.Float32, types.Float64, types.Decimal},
	types.Uint32:  {types.Uint32, types.Int64, types.Uint64, types.Float32, types.Float64, types.Decimal},
	types.Int64:   {types.Int64, types.Float32, types.Float64, types.Decimal},
	types.Uint64:  {types.Uint64, types.Float32, types.Float64, types.Decimal},
	types.Float32: {types.Float32, types.Float64},
}

// IsCompatible reports whether a value of type src converts implicitly to
// dst.
//
// Reference targets accept assignable sources. Value targets follow the
// promotion ladder, each rung also reaching the nullable form of the
// target. A nullable source never converts to a non-nullable target; enums
// and the remaining value types convert only to themselves.
func IsCompatible(src, dst *types.Type) bool {
	if src == dst {
		return true
	}
	if !dst.IsValueType() {
		return types.AssignableFrom(dst, src)
	}
	st, tt := src.NonNullable(), dst.NonNullable()
	if st != src && tt == dst {
		return false
	}
	if st.Kind() == types.Enum || tt.Kind() == types.Enum {
		return st == tt
	}
	for _, k := range ladder[st.Kind()] {
		if k == tt.Kind() {
			return true
		}
	}
	return st == tt
}

// Promote converts e to type t, or returns nil if it cannot be converted
// implicitly.
//
// Deferred literals are re-typed from their source text: integer literals
// parse directly as the numeric target, real literals parse as Decimal, and
// string literals resolve enum member names. The null literal becomes a
// typed null for reference and nullable targets. Other compatible
// expressions are wrapped in a conversion when t is a value type or exact
// is set.
func Promote(e expr.Expr, t *types.Type, exact bool) expr.Expr {
	if e.Type() == t {
		return e
	}
	if c, ok := e.(*expr.Constant); ok {
		if c.IsNull() {
			if t.CanBeNull() {
				return &expr.Constant{Typ: t}
			}
		} else if c.Literal != "" {
			if v, ok := retype(c, t.NonNullable()); ok {
				return &expr.Constant{Value: v, Typ: t}
			}
		}
	}
	if IsCompatible(e.Type(), t) {
		if t.IsValueType() || exact {
			return &expr.Unary{Op: expr.Convert, Operand: e, Typ: t}
		}
		return e
	}
	return nil
}

// retype re-parses the source text of a literal as target.
func retype(c *expr.Constant, target *types.Type) (any, bool) {
	switch c.Typ.Kind() {
	case types.Int32, types.Uint32, types.Int64, types.Uint64:
		if target.Kind() == types.Enum {
			v, ok := types.ParseNumber(c.Literal, target.Elem())
			if !ok {
				return nil, false
			}
			return enumValue(v), true
		}
		return types.ParseNumber(c.Literal, target)
	case types.Float64:
		if target.Kind() == types.Decimal {
			return types.ParseNumber(c.Literal, target)
		}
	case types.String:
		if target.Kind() == types.Enum {
			v, ok := target.EnumValue(lexer.Unquote(c.Literal))
			return v, ok
		}
	}
	return nil, false
}

// enumValue widens an underlying integer to the int64 enum representation.
func enumValue(v any) int64 {
	switch x := v.(type) {
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	}
	return 0
}
