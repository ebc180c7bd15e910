package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/dynq/internal/ir"
	"github.com/roach88/dynq/internal/types"
)

var (
	ageCol   = &Column{Name: "Age", Type: types.Int32Type}
	nameCol  = &Column{Name: "Name", Type: types.StringType}
	scoreCol = &Column{Name: "Score", Type: types.NullableOf(types.Float64Type)}
)

func intLit(i int64) *Literal {
	return &Literal{Value: ir.IRInt(i), Type: types.Int32Type}
}

func TestValidate_Portable(t *testing.T) {
	q := &Select{
		From:     "people",
		Bindings: []Binding{{Expr: nameCol, As: "Name"}, {Expr: &Arith{Op: Add, Left: ageCol, Right: intLit(1), Type: types.Int32Type}, As: "Next"}},
		Filter: &And{Predicates: []Predicate{
			&Compare{Op: Gt, Left: ageCol, Right: intLit(20)},
			&Not{Predicate: &Match{Kind: Prefix, Operand: nameCol, Pattern: &Literal{Value: ir.IRString("B"), Type: types.StringType}}},
		}},
		OrderBy: []OrderKey{{Expr: ageCol, Descending: true}},
	}

	result := Validate(q)
	assert.True(t, result.IsPortable)
	assert.Empty(t, result.Warnings)
}

func TestValidate_Warnings(t *testing.T) {
	bindings := []Binding{{Expr: ageCol, As: "Age"}}
	testCases := []struct {
		name string
		q    Query
		want []string
	}{
		{
			name: "select star",
			q:    &Select{From: "people"},
			want: []string{"Empty bindings (SELECT *) - portable fragment requires explicit field selection"},
		},
		{
			name: "or",
			q: &Select{From: "people", Bindings: bindings, Filter: &Or{Predicates: []Predicate{
				&Compare{Op: Lt, Left: ageCol, Right: intLit(10)},
				&Compare{Op: Gt, Left: ageCol, Right: intLit(60)},
			}}},
			want: []string{"OR predicate with 2 branches - portable fragment requires conjunctions"},
		},
		{
			name: "null-safe equality",
			q: &Select{From: "people", Bindings: bindings, Filter: &Compare{
				Op: Is, Left: nameCol, Right: &Literal{Value: ir.IRString("Bob"), Type: types.StringType},
			}},
			want: []string{`Null-safe comparison column 'Name' IS "Bob" - portable fragment requires non-null operands`},
		},
		{
			name: "lifted comparison",
			q: &Select{From: "people", Bindings: bindings, Filter: &Compare{
				Op: Gt, Left: scoreCol, Right: &Literal{Value: ir.IRString("50"), Type: scoreCol.Type}, Nulls: NullFalse,
			}},
			want: []string{`Comparison column 'Score' > "50" treats NULL as false - portable fragment requires non-null operands`},
		},
		{
			name: "null test",
			q:    &Select{From: "people", Bindings: bindings, Filter: &IsNull{Operand: scoreCol}},
			want: []string{"column 'Score' tested for NULL - portable fragment requires explicit values"},
		},
		{
			name: "division",
			q: &Select{From: "people", Bindings: []Binding{
				{Expr: &Arith{Op: Div, Left: ageCol, Right: intLit(2), Type: types.Int32Type}, As: "Half"},
			}},
			want: []string{"Operator / - division by zero yields NULL instead of an error"},
		},
		{
			name: "case mapping",
			q: &Select{From: "people", Bindings: []Binding{
				{Expr: &Call{Func: FnUpper, Args: []Operand{nameCol}, Type: types.StringType}, As: "Upper"},
			}},
			want: []string{"Function UPPER - SQLite maps ASCII characters only"},
		},
		{
			name: "decimal literal",
			q: &Select{From: "people", Bindings: bindings, Filter: &Compare{
				Op: Gt, Left: &Column{Name: "Balance", Type: types.DecimalType},
				Right: &Literal{Value: ir.IRString("100.25"), Type: types.DecimalType},
			}},
			want: []string{"Decimal literal 100.25 - portable fragment stores decimals as REAL"},
		},
		{
			name: "float concatenation",
			q: &Select{From: "people", Bindings: []Binding{
				{Expr: &Arith{Op: Concat, Left: nameCol, Right: scoreCol, Type: types.StringType}, As: "Label"},
			}},
			want: []string{"Concatenation of column 'Score' - text form of Double? differs between backends"},
		},
		{
			name: "nil query",
			q:    nil,
			want: []string{"nil query - portable fragment requires valid query nodes"},
		},
		{
			name: "typed nil select",
			q:    (*Select)(nil),
			want: []string{"nil query - portable fragment requires valid query nodes"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := Validate(tc.q)
			assert.False(t, result.IsPortable)
			assert.Equal(t, tc.want, result.Warnings)
		})
	}
}

func TestValidate_AccumulatesWarnings(t *testing.T) {
	q := &Select{
		From: "people",
		Filter: &Or{Predicates: []Predicate{
			&IsNull{Operand: scoreCol},
			&Compare{Op: Eq, Left: &Arith{Op: Mod, Left: ageCol, Right: intLit(2), Type: types.Int32Type}, Right: intLit(0)},
		}},
	}

	result := Validate(q)
	assert.False(t, result.IsPortable)
	assert.Len(t, result.Warnings, 4)
	assert.Contains(t, result.Warnings[0], "Empty bindings")
	assert.Contains(t, result.Warnings[1], "OR predicate")
	assert.Contains(t, result.Warnings[2], "tested for NULL")
	assert.Contains(t, result.Warnings[3], "Operator %")
}
