package overload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dynq/internal/expr"
	"github.com/roach88/dynq/internal/types"
)

var (
	color = types.NewEnum("Color", nil,
		types.EnumMember{Name: "Red", Value: 0},
		types.EnumMember{Name: "Green", Value: 1})
	nint = types.NullableOf(types.Int32Type)
)

func param(name string, t *types.Type) *expr.Parameter {
	return &expr.Parameter{Name: name, Typ: t}
}

func intLit(text string) *expr.Constant {
	v, _ := types.ParseNumber(text, types.Int32Type)
	return &expr.Constant{Value: v, Typ: types.Int32Type, Literal: text}
}

func TestIsCompatible(t *testing.T) {
	testCases := []struct {
		name     string
		src, dst *types.Type
		want     bool
	}{
		{"identity", types.Int32Type, types.Int32Type, true},
		{"widening", types.Int32Type, types.Int64Type, true},
		{"to nullable", types.Int32Type, types.NullableOf(types.Int64Type), true},
		{"nullable to value", nint, types.Int32Type, false},
		{"nullable widening", nint, types.NullableOf(types.Float64Type), true},
		{"narrowing", types.Int64Type, types.Int32Type, false},
		{"signed to unsigned", types.Int32Type, types.Uint32Type, false},
		{"byte to uint16", types.Uint8Type, types.Uint16Type, true},
		{"single to double", types.Float32Type, types.Float64Type, true},
		{"double to decimal", types.Float64Type, types.DecimalType, false},
		{"char to int", types.CharType, types.Int32Type, false},
		{"enum to int", color, types.Int32Type, false},
		{"enum identity nullable", color, types.NullableOf(color), true},
		{"value to object", types.Int32Type, types.ObjectType, true},
		{"string to object", types.StringType, types.ObjectType, true},
		{"int to string", types.Int32Type, types.StringType, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsCompatible(tc.src, tc.dst))
		})
	}
}

func TestPromote(t *testing.T) {
	t.Run("identity returns same node", func(t *testing.T) {
		p := param("x", types.Int32Type)
		assert.Same(t, p, Promote(p, types.Int32Type, false))
	})

	t.Run("value widening converts", func(t *testing.T) {
		got := Promote(param("x", types.Int32Type), types.Int64Type, false)
		u, ok := got.(*expr.Unary)
		require.True(t, ok)
		assert.Equal(t, expr.Convert, u.Op)
		assert.Same(t, types.Int64Type, u.Type())
	})

	t.Run("reference keeps node unless exact", func(t *testing.T) {
		p := param("s", types.StringType)
		assert.Same(t, p, Promote(p, types.ObjectType, false))
		_, ok := Promote(p, types.ObjectType, true).(*expr.Unary)
		assert.True(t, ok)
	})

	t.Run("null literal", func(t *testing.T) {
		null := &expr.Constant{Typ: types.NullType}
		got := Promote(null, nint, false)
		require.NotNil(t, got)
		assert.Same(t, nint, got.Type())
		assert.Nil(t, Promote(null, types.Int32Type, false))
	})

	t.Run("integer literal re-typed", func(t *testing.T) {
		got := Promote(intLit("200"), types.Uint8Type, false)
		c, ok := got.(*expr.Constant)
		require.True(t, ok)
		assert.Equal(t, uint8(200), c.Value)
		assert.Empty(t, c.Literal, "promoted constants are not re-typed again")
		assert.Nil(t, Promote(intLit("300"), types.Uint8Type, false))
	})

	t.Run("real literal to decimal", func(t *testing.T) {
		lit := &expr.Constant{Value: 0.1, Typ: types.Float64Type, Literal: "0.1"}
		c, ok := Promote(lit, types.DecimalType, false).(*expr.Constant)
		require.True(t, ok)
		assert.Equal(t, "0.1", types.FormatValue(c.Value, types.DecimalType))
	})

	t.Run("string literal to enum", func(t *testing.T) {
		lit := &expr.Constant{Value: "green", Typ: types.StringType, Literal: `"green"`}
		c, ok := Promote(lit, color, true).(*expr.Constant)
		require.True(t, ok)
		assert.Equal(t, int64(1), c.Value)
		bad := &expr.Constant{Value: "blue", Typ: types.StringType, Literal: `"blue"`}
		assert.Nil(t, Promote(bad, color, true))
	})

	t.Run("incompatible", func(t *testing.T) {
		assert.Nil(t, Promote(param("s", types.StringType), types.Int32Type, false))
	})
}

func TestCompareConversions(t *testing.T) {
	assert.Equal(t, 0, CompareConversions(types.Int32Type, types.Int64Type, types.Int64Type))
	assert.Equal(t, 1, CompareConversions(types.Int32Type, types.Int32Type, types.Int64Type))
	assert.Equal(t, -1, CompareConversions(types.Int32Type, types.Float64Type, types.Int32Type))
	assert.Equal(t, 1, CompareConversions(types.Int16Type, types.Int64Type, types.Float64Type))
	assert.Equal(t, 1, CompareConversions(types.Uint8Type, types.Int16Type, types.Uint16Type), "signed preferred")
	assert.Equal(t, -1, CompareConversions(types.Uint8Type, types.Uint16Type, types.Int16Type))
}

func TestFindBest(t *testing.T) {
	cands := []Candidate{
		{Params: []types.Param{types.P("a", types.Int64Type)}},
		{Params: []types.Param{types.P("a", types.Int32Type)}},
		{Params: []types.Param{types.P("a", types.Float64Type)}},
	}

	t.Run("exact match wins", func(t *testing.T) {
		r := FindBest(cands, []expr.Expr{param("x", types.Int32Type)})
		require.True(t, r.OK())
		assert.Equal(t, 1, r.Index)
	})

	t.Run("closest widening wins", func(t *testing.T) {
		r := FindBest(cands, []expr.Expr{param("x", types.Int16Type)})
		require.True(t, r.OK())
		assert.Equal(t, 1, r.Index)
	})

	t.Run("none applicable", func(t *testing.T) {
		r := FindBest(cands, []expr.Expr{param("x", types.StringType)})
		assert.Equal(t, 0, r.Count)
		assert.False(t, r.OK())
	})

	t.Run("arity must match", func(t *testing.T) {
		r := FindBest(cands, []expr.Expr{param("x", types.Int32Type), param("y", types.Int32Type)})
		assert.Equal(t, 0, r.Count)
	})

	t.Run("out parameters rejected", func(t *testing.T) {
		out := []Candidate{{Params: []types.Param{{Name: "a", Type: types.Int32Type, Out: true}}}}
		assert.Equal(t, 0, FindBest(out, []expr.Expr{param("x", types.Int32Type)}).Count)
	})

	t.Run("ambiguous", func(t *testing.T) {
		amb := []Candidate{
			{Params: []types.Param{types.P("a", types.Int64Type), types.P("b", types.Int32Type)}},
			{Params: []types.Param{types.P("a", types.Int32Type), types.P("b", types.Int64Type)}},
		}
		r := FindBest(amb, []expr.Expr{param("x", types.Int32Type), param("y", types.Int32Type)})
		assert.Equal(t, 2, r.Count)
	})
}

func TestResolveOperator(t *testing.T) {
	testCases := []struct {
		name      string
		cat       Category
		args      []expr.Expr
		wantCount int
		wantType  *types.Type
	}{
		{"int plus int", Arithmetic, []expr.Expr{param("a", types.Int32Type), param("b", types.Int32Type)}, 1, types.Int32Type},
		{"int plus long", Arithmetic, []expr.Expr{param("a", types.Int32Type), param("b", types.Int64Type)}, 1, types.Int64Type},
		{"uint plus int", Arithmetic, []expr.Expr{param("a", types.Uint32Type), param("b", types.Int32Type)}, 1, types.Int64Type},
		{"byte plus byte", Arithmetic, []expr.Expr{param("a", types.Uint8Type), param("b", types.Uint8Type)}, 1, types.Int32Type},
		{"nullable lifts", Arithmetic, []expr.Expr{param("a", nint), param("b", types.Int32Type)}, 1, nint},
		{"literal adapts", Arithmetic, []expr.Expr{param("a", types.Uint64Type), intLit("1")}, 1, types.Uint64Type},
		{"datetime minus datetime", Subtract, []expr.Expr{param("a", types.DateTimeType), param("b", types.DateTimeType)}, 1, types.DateTimeType},
		{"datetime plus timespan", Add, []expr.Expr{param("a", types.DateTimeType), param("b", types.TimeSpanType)}, 1, types.DateTimeType},
		{"bool equality", Equality, []expr.Expr{param("a", types.BoolType), param("b", types.BoolType)}, 1, types.BoolType},
		{"string relational", Relational, []expr.Expr{param("a", types.StringType), param("b", types.StringType)}, 1, types.StringType},
		{"bool relational", Relational, []expr.Expr{param("a", types.BoolType), param("b", types.BoolType)}, 0, nil},
		{"logical", Logical, []expr.Expr{param("a", types.BoolType), param("b", types.NullableOf(types.BoolType))}, 1, types.NullableOf(types.BoolType)},
		{"negate short", Negate, []expr.Expr{param("a", types.Int16Type)}, 1, types.Int32Type},
		{"negate uint", Negate, []expr.Expr{param("a", types.Uint32Type)}, 1, types.Int64Type},
		{"not int", Not, []expr.Expr{param("a", types.Int32Type)}, 0, nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := ResolveOperator(tc.cat, tc.args...)
			assert.Equal(t, tc.wantCount, r.Count)
			if tc.wantType != nil {
				require.True(t, r.OK())
				assert.Same(t, tc.wantType, r.Args[0].Type())
			}
		})
	}
}
