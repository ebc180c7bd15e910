package queryir

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dynq/internal/expr"
	"github.com/roach88/dynq/internal/ir"
	"github.com/roach88/dynq/internal/parser"
	"github.com/roach88/dynq/internal/record"
	"github.com/roach88/dynq/internal/testutil"
	"github.com/roach88/dynq/internal/types"
)

func personLambda(t *testing.T, src string, result *types.Type) (*expr.Lambda, *expr.Parameter) {
	t.Helper()
	r := testutil.Registry(t)
	it := testutil.It(t, r)
	l, err := parser.ParseLambda(src, parser.Config{
		Params:     []*expr.Parameter{it},
		Registry:   r,
		Records:    record.NewCache(),
		ResultType: result,
	})
	require.NoError(t, err)
	return l, it
}

func lowerWhere(t *testing.T, src string) (*Select, error) {
	t.Helper()
	l, it := personLambda(t, src, types.BoolType)
	return Lower(Request{Table: "people", Element: it.Typ, Where: l})
}

// render writes predicates and operands as S-expressions.
func render(n any) string {
	switch x := n.(type) {
	case *Compare:
		op := x.Op.String()
		if x.Nulls != NullUnknown {
			op += "/" + x.Nulls.String()
		}
		return fmt.Sprintf("(%s %s %s)", op, render(x.Left), render(x.Right))
	case *And:
		return renderList("and", x.Predicates)
	case *Or:
		return renderList("or", x.Predicates)
	case *Not:
		return "(not " + render(x.Predicate) + ")"
	case *IsNull:
		if x.Negated {
			return "(not-null? " + render(x.Operand) + ")"
		}
		return "(null? " + render(x.Operand) + ")"
	case *Truth:
		return "(truth " + render(x.Operand) + ")"
	case *Match:
		return fmt.Sprintf("(%s %s %s)", x.Kind, render(x.Operand), render(x.Pattern))
	case *Column:
		return x.Name
	case *Literal:
		b, _ := ir.MarshalIRValue(x.Value)
		return string(b)
	case *Arith:
		return fmt.Sprintf("(%s %s %s)", x.Op, render(x.Left), render(x.Right))
	case *Negate:
		return "(- " + render(x.Operand) + ")"
	case *Call:
		parts := []string{string(x.Func)}
		for _, a := range x.Args {
			parts = append(parts, render(a))
		}
		return "(" + strings.Join(parts, " ") + ")"
	case *Case:
		return fmt.Sprintf("(case %s %s %s)", render(x.When), render(x.Then), render(x.Else))
	}
	return fmt.Sprintf("<%T>", n)
}

func renderList(name string, preds []Predicate) string {
	parts := []string{name}
	for _, p := range preds {
		parts = append(parts, render(p))
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func TestColumns(t *testing.T) {
	r := testutil.Registry(t)
	person := testutil.TypeOf[testutil.Person](t, r)

	var names []string
	for _, c := range Columns(person) {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"ID", "Name", "Age", "Score", "Balance", "Color", "Born"}, names)
}

func TestIsScalar(t *testing.T) {
	r := testutil.Registry(t)

	assert.True(t, IsScalar(types.Int32Type))
	assert.True(t, IsScalar(types.NullableOf(types.Float64Type)))
	assert.True(t, IsScalar(types.GuidType))
	assert.True(t, IsScalar(testutil.TypeOf[testutil.Color](t, r)))
	assert.False(t, IsScalar(testutil.TypeOf[testutil.Address](t, r)))
	assert.False(t, IsScalar(types.ArrayOf(types.StringType, 1)))
	assert.False(t, IsScalar(nil))
}

func TestLower_Filter(t *testing.T) {
	testCases := []struct {
		src  string
		want string
	}{
		{`Age > 20 and Name == "Bob"`, `(and (> Age 20) (IS Name "Bob"))`},
		{`Age > 20 or Age < 10 or Name = "x"`, `(or (> Age 20) (< Age 10) (IS Name "x"))`},
		{`Age > 1 and (Age < 5 and Age != 3)`, `(and (> Age 1) (< Age 5) (<> Age 3))`},
		{"not (Age >= 30)", "(not (>= Age 30))"},
		{"Score > 50", `(>/false Score "50")`},
		{"Score == null", "(null? Score)"},
		{"null != Score", "(not-null? Score)"},
		{"Score.HasValue", "(not-null? Score)"},
		{`Name > "Bob"`, `(>/lowest Name "Bob")`},
		{`Name.StartsWith("B")`, `(prefix Name "B")`},
		{`Name.EndsWith("b")`, `(suffix Name "b")`},
		{`Name.Contains("o")`, `(contains Name "o")`},
		{`Name.ToUpper() == "BOB"`, `(IS (UPPER Name) "BOB")`},
		{"Name.Length > 3", "(> (LENGTH Name) 3)"},
		{"Age + 3000000000 > 0", "(> (+ Age 3000000000) 0)"},
		{"Age / 4.0 > 4.5", `(> (/ (REAL Age) "4") "4.5")`},
		{"Int32(Score.Value) > 90", "(> (INTEGER Score) 90)"},
		{`Color == "Blue"`, "(= Color 2)"},
		{`ID == Guid("1b4e28ba-2fa1-41d2-883f-0016d3cca427")`, `(= ID "1b4e28ba-2fa1-41d2-883f-0016d3cca427")`},
		{"Born > DateTime(1995, 1, 1)", `(> Born "1995-01-01T00:00:00.000000000Z")`},
		{"iif(Age > 30, Age, 0) > 10", "(> (case (> Age 30) Age 0) 10)"},
		{"-Age < -5", "(< (- Age) -5)"},
		{`Name & Age == "Bob25"`, `(IS (|| Name Age) "Bob25")`},
		{"Balance > 100", `(> Balance "100")`},
		{"Age > Int32.MaxValue - 1", "(> Age (- 2147483647 1))"},
		{"true", "(truth true)"},
	}

	for _, tc := range testCases {
		t.Run(tc.src, func(t *testing.T) {
			sel, err := lowerWhere(t, tc.src)
			require.NoError(t, err)
			assert.Equal(t, "people", sel.From)
			assert.Equal(t, tc.want, render(sel.Filter))
		})
	}
}

func TestLower_Unsupported(t *testing.T) {
	testCases := []struct {
		src  string
		want string
	}{
		{"Orders.Any()", "aggregate Any is not supported"},
		{`Home.City == "Oslo"`, "member City is not a column of the element"},
		{"Home == null", "member Home of type Address is not a column"},
		{`Tags[0] == "a"`, "expression has no SQL equivalent"},
		{`Name.Substring(1) == "ob"`, "method Substring has no SQL equivalent"},
		{"Born.Year > 2000", "member Year is not a column of the element"},
		{`Guid("nope") == ID`, "invalid UUID length: 4"},
	}

	for _, tc := range testCases {
		t.Run(tc.src, func(t *testing.T) {
			_, err := lowerWhere(t, tc.src)
			require.Error(t, err)
			assert.True(t, IsLowerError(err))
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLower_AllColumns(t *testing.T) {
	sel, err := lowerWhere(t, "Age > 20")
	require.NoError(t, err)

	var names []string
	for _, b := range sel.Bindings {
		names = append(names, b.As)
	}
	assert.Equal(t, []string{"ID", "Name", "Age", "Score", "Balance", "Color", "Born"}, names)
	assert.Empty(t, sel.OrderBy)
}

func TestLower_Projection(t *testing.T) {
	proj, it := personLambda(t, "new(Name, Age * 2 as Twice)", nil)
	sel, err := Lower(Request{Table: "people", Element: it.Typ, Select: proj})
	require.NoError(t, err)
	require.Len(t, sel.Bindings, 2)
	assert.Equal(t, "Name", sel.Bindings[0].As)
	assert.Equal(t, "Name", render(sel.Bindings[0].Expr))
	assert.Equal(t, "Twice", sel.Bindings[1].As)
	assert.Equal(t, "(* Age 2)", render(sel.Bindings[1].Expr))
	assert.Nil(t, sel.Filter)

	single, it := personLambda(t, "Name", nil)
	sel, err = Lower(Request{Table: "people", Element: it.Typ, Select: single})
	require.NoError(t, err)
	require.Len(t, sel.Bindings, 1)
	assert.Equal(t, "Name", sel.Bindings[0].As)
}

func TestLower_OrderBy(t *testing.T) {
	r := testutil.Registry(t)
	it := testutil.It(t, r)
	keys, err := parser.ParseOrdering("Age desc, Name.ToLower()", parser.Config{
		Params:   []*expr.Parameter{it},
		Registry: r,
	})
	require.NoError(t, err)

	sel, err := Lower(Request{Table: "people", Element: it.Typ, OrderBy: keys, Param: it})
	require.NoError(t, err)
	require.Len(t, sel.OrderBy, 2)
	assert.Equal(t, "Age", render(sel.OrderBy[0].Expr))
	assert.True(t, sel.OrderBy[0].Descending)
	assert.Equal(t, "(LOWER Name)", render(sel.OrderBy[1].Expr))
	assert.False(t, sel.OrderBy[1].Descending)

	keys, err = parser.ParseOrdering("Orders.Count()", parser.Config{
		Params:   []*expr.Parameter{it},
		Registry: r,
	})
	require.NoError(t, err)
	_, err = Lower(Request{Table: "people", Element: it.Typ, OrderBy: keys, Param: it})
	require.Error(t, err)
	assert.True(t, IsLowerError(err))
	assert.Contains(t, err.Error(), "order key")
}

func TestLower_RequestErrors(t *testing.T) {
	l, it := personLambda(t, "Age", nil)

	_, err := Lower(Request{Element: it.Typ, Where: l})
	require.Error(t, err)
	assert.Equal(t, "cannot lower: table name is required", err.Error())

	_, err = Lower(Request{Table: "people", Element: it.Typ, Where: l})
	require.Error(t, err)
	assert.Equal(t, "cannot lower (. it Age): filter must be Boolean, not Int32", err.Error())
}

func TestNewLiteral(t *testing.T) {
	testCases := []struct {
		name  string
		value any
		typ   *types.Type
		want  ir.IRValue
	}{
		{"null", nil, types.NullableOf(types.Int32Type), ir.IRNull{}},
		{"bool", true, types.BoolType, ir.IRBool(true)},
		{"char", 'x', types.CharType, ir.IRString("x")},
		{"int16", int16(-3), types.Int16Type, ir.IRInt(-3)},
		{"uint32", uint32(7), types.Uint32Type, ir.IRInt(7)},
		{"double", 0.25, types.Float64Type, ir.IRString("0.25")},
		{"single", float32(1.5), types.Float32Type, ir.IRString("1.5")},
		{"nullable double", 2.0, types.NullableOf(types.Float64Type), ir.IRString("2")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lit, err := NewLiteral(tc.value, tc.typ)
			require.NoError(t, err)
			assert.Equal(t, tc.want, lit.Value)
			assert.Same(t, tc.typ, lit.Type)
		})
	}

	_, err := NewLiteral(uint64(1)<<63, types.Uint64Type)
	require.Error(t, err)
	_, err = NewLiteral("x", types.Int32Type)
	require.Error(t, err)
}
