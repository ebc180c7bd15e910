package members

import (
	"github.com/roach88/dynq/internal/expr"
	"github.com/roach88/dynq/internal/overload"
	"github.com/roach88/dynq/internal/types"
)

// aggregate is one sequence operator and its selector signatures. An empty
// parameter list is the argument-less form.
type aggregate struct {
	op    expr.AggregateOp
	cands []overload.Candidate
}

func sel(ts ...*types.Type) []overload.Candidate {
	out := make([]overload.Candidate, len(ts))
	for i, t := range ts {
		if t == nil {
			out[i] = overload.Candidate{}
			continue
		}
		out[i] = overload.Candidate{Params: []types.Param{types.P("selector", t)}}
	}
	return out
}

var numericSelectors = []*types.Type{
	types.Int32Type, types.NullableOf(types.Int32Type),
	types.Int64Type, types.NullableOf(types.Int64Type),
	types.Float32Type, types.NullableOf(types.Float32Type),
	types.Float64Type, types.NullableOf(types.Float64Type),
	types.DecimalType, types.NullableOf(types.DecimalType),
}

var aggregates = []aggregate{
	{expr.Where, sel(types.BoolType)},
	{expr.Any, sel(nil, types.BoolType)},
	{expr.All, sel(types.BoolType)},
	{expr.Count, sel(nil, types.BoolType)},
	{expr.Min, sel(types.ObjectType)},
	{expr.Max, sel(types.ObjectType)},
	{expr.Sum, sel(numericSelectors...)},
	{expr.Average, sel(numericSelectors...)},
}

// averageOf maps a Sum/Average selector type to the Average result type.
var averageOf = map[*types.Type]*types.Type{
	types.Int32Type:                     types.Float64Type,
	types.NullableOf(types.Int32Type):   types.NullableOf(types.Float64Type),
	types.Int64Type:                     types.Float64Type,
	types.NullableOf(types.Int64Type):   types.NullableOf(types.Float64Type),
	types.Float32Type:                   types.Float32Type,
	types.NullableOf(types.Float32Type): types.NullableOf(types.Float32Type),
	types.Float64Type:                   types.Float64Type,
	types.NullableOf(types.Float64Type): types.NullableOf(types.Float64Type),
	types.DecimalType:                   types.DecimalType,
	types.NullableOf(types.DecimalType): types.NullableOf(types.DecimalType),
}

// AggregateResolution is a resolved sequence aggregate. Selector is nil for
// the argument-less forms.
type AggregateResolution struct {
	Op       expr.AggregateOp
	Selector expr.Expr
	Type     *types.Type
}

// FindAggregate resolves the aggregate called name over a sequence of elem.
// args were parsed with the element bound as "it". It reports false if name
// is not an aggregate or no signature applies.
func FindAggregate(name string, elem *types.Type, args []expr.Expr) (AggregateResolution, bool) {
	for _, a := range aggregates {
		if !types.SameName(a.op.String(), name) {
			continue
		}
		r := overload.FindBest(a.cands, args)
		if !r.OK() {
			return AggregateResolution{}, false
		}
		out := AggregateResolution{Op: a.op}
		if len(r.Args) == 1 {
			out.Selector = r.Args[0]
		}
		switch a.op {
		case expr.Where:
			out.Type = types.SequenceOf(elem)
		case expr.Any, expr.All:
			out.Type = types.BoolType
		case expr.Count:
			out.Type = types.Int32Type
		case expr.Min, expr.Max:
			out.Type = args[0].Type()
		case expr.Sum:
			out.Type = a.cands[r.Index].Params[0].Type
		case expr.Average:
			out.Type = averageOf[a.cands[r.Index].Params[0].Type]
		}
		return out, true
	}
	return AggregateResolution{}, false
}

// IsAggregate reports whether name is a sequence aggregate.
func IsAggregate(name string) bool {
	for _, a := range aggregates {
		if types.SameName(a.op.String(), name) {
			return true
		}
	}
	return false
}
