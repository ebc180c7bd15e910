package overload

import (
	"github.com/roach88/dynq/internal/expr"
	"github.com/roach88/dynq/internal/types"
)

// Category names an operator signature table.
type Category uint8

const (
	Logical Category = iota
	Arithmetic
	Relational
	Equality
	Add
	Subtract
	Negate
	Not
)

func (c Category) String() string {
	switch c {
	case Logical:
		return "logical"
	case Arithmetic:
		return "arithmetic"
	case Relational:
		return "relational"
	case Equality:
		return "equality"
	case Add:
		return "add"
	case Subtract:
		return "subtract"
	case Negate:
		return "negate"
	case Not:
		return "not"
	}
	return "category?"
}

func unary(ts ...*types.Type) []Candidate {
	out := make([]Candidate, 0, 2*len(ts))
	for _, t := range ts {
		out = append(out, Candidate{Params: []types.Param{types.P("x", t)}})
	}
	for _, t := range ts {
		out = append(out, Candidate{Params: []types.Param{types.P("x", types.NullableOf(t))}})
	}
	return out
}

func pairs(ts ...*types.Type) []Candidate {
	out := make([]Candidate, 0, 2*len(ts))
	for _, t := range ts {
		out = append(out, pair(t, t))
	}
	for _, t := range ts {
		n := types.NullableOf(t)
		out = append(out, pair(n, n))
	}
	return out
}

func pair(a, b *types.Type) Candidate {
	return Candidate{Params: []types.Param{types.P("x", a), types.P("y", b)}}
}

// Each table lists its own signatures; layers inherits the tables a
// category extends, most specific first.
var (
	logicalTable    = pairs(types.BoolType)
	arithmeticTable = pairs(types.Int32Type, types.Uint32Type, types.Int64Type, types.Uint64Type,
		types.Float32Type, types.Float64Type, types.DecimalType)
	relationalTable = append([]Candidate{pair(types.StringType, types.StringType)},
		pairs(types.CharType, types.DateTimeType, types.TimeSpanType)...)
	equalityTable = pairs(types.BoolType, types.GuidType)
	addTable      = []Candidate{
		pair(types.DateTimeType, types.TimeSpanType),
		pair(types.TimeSpanType, types.TimeSpanType),
		pair(types.NullableOf(types.DateTimeType), types.NullableOf(types.TimeSpanType)),
		pair(types.NullableOf(types.TimeSpanType), types.NullableOf(types.TimeSpanType)),
	}
	subtractTable = pairs(types.DateTimeType)
	negateTable   = unary(types.Int32Type, types.Int64Type, types.Float32Type, types.Float64Type, types.DecimalType)
	notTable      = unary(types.BoolType)

	layers = map[Category][][]Candidate{
		Logical:    {logicalTable},
		Arithmetic: {arithmeticTable},
		Relational: {relationalTable, arithmeticTable},
		Equality:   {equalityTable, relationalTable, arithmeticTable},
		Add:        {addTable, arithmeticTable},
		Subtract:   {subtractTable, addTable, arithmeticTable},
		Negate:     {negateTable},
		Not:        {notTable},
	}
)

// Signatures returns the candidate layers of a category, most specific
// first.
func Signatures(c Category) [][]Candidate {
	return layers[c]
}

// ResolveOperator resolves an operator application. Layers are searched
// in order and the first layer with an applicable candidate decides.
func ResolveOperator(c Category, args ...expr.Expr) Result {
	for _, layer := range layers[c] {
		if r := FindBest(layer, args); r.Count != 0 {
			return r
		}
	}
	return Result{Index: -1}
}
