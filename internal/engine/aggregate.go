package engine

import (
	"reflect"

	"github.com/cockroachdb/apd/v3"

	"github.com/roach88/dynq/internal/expr"
	"github.com/roach88/dynq/internal/types"
)

// items returns the elements of a sequence value.
func items(v any) ([]any, bool) {
	if xs, ok := v.([]any); ok {
		return xs, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func (s *scope) aggregate(x *expr.Aggregate) (any, error) {
	src, err := s.eval(x.Source)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, newError(ErrCodeNullReference, "cannot apply %s to a null sequence", x.Op)
	}
	elems, ok := items(src)
	if !ok {
		return nil, newError(ErrCodeUnsupported, "%T is not a sequence", src)
	}
	if x.Selector == nil {
		switch x.Op {
		case expr.Any:
			return len(elems) > 0, nil
		case expr.Count:
			return int32(len(elems)), nil
		}
		return nil, newError(ErrCodeUnsupported, "%s requires an argument", x.Op)
	}

	selected := make([]any, 0, len(elems))
	for _, el := range elems {
		if err := s.ctx.Err(); err != nil {
			return nil, err
		}
		v, err := s.invoke(x.Selector, el)
		if err != nil {
			return nil, err
		}
		switch x.Op {
		case expr.Any:
			if v == true {
				return true, nil
			}
			continue
		case expr.All:
			if v != true {
				return false, nil
			}
			continue
		}
		selected = append(selected, v)
	}

	switch x.Op {
	case expr.Any:
		return false, nil
	case expr.All:
		return true, nil
	case expr.Where:
		out := []any{}
		for i, v := range selected {
			if v == true {
				out = append(out, elems[i])
			}
		}
		return out, nil
	case expr.Count:
		var n int32
		for _, v := range selected {
			if v == true {
				n++
			}
		}
		return n, nil
	case expr.Min, expr.Max:
		return extreme(x, selected)
	case expr.Sum:
		return sum(x.Typ, selected)
	case expr.Average:
		return average(x, selected)
	}
	return nil, newError(ErrCodeUnsupported, "aggregate %s", x.Op)
}

// extreme returns the least or greatest non-null value.
func extreme(x *expr.Aggregate, values []any) (any, error) {
	var best any
	for _, v := range values {
		if v == nil {
			continue
		}
		if best == nil {
			best = v
			continue
		}
		c, err := types.CompareValues(v, best)
		if err != nil {
			return nil, newError(ErrCodeUnsupported, "%v", err)
		}
		if (x.Op == expr.Min && c < 0) || (x.Op == expr.Max && c > 0) {
			best = v
		}
	}
	if best == nil && !x.Typ.CanBeNull() {
		return nil, newError(ErrCodeEmptySequence, "sequence contains no elements")
	}
	return best, nil
}

// sum adds the non-null values with overflow checking. The sum of no
// values is zero.
func sum(t *types.Type, values []any) (any, error) {
	acc, err := types.ConvertValue(int32(0), t.NonNullable(), false)
	if err != nil {
		return nil, classify(err, ErrCodeInvalidCast)
	}
	for _, v := range values {
		if v == nil {
			continue
		}
		if acc, err = checkedAdd(acc, v); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func checkedAdd(a, b any) (any, error) {
	switch x := a.(type) {
	case int32:
		y := b.(int32)
		if s := x + y; (y > 0 && s < x) || (y < 0 && s > x) {
			return nil, newError(ErrCodeOverflow, "%v", types.ErrOverflow)
		}
	case int64:
		y := b.(int64)
		if s := x + y; (y > 0 && s < x) || (y < 0 && s > x) {
			return nil, newError(ErrCodeOverflow, "%v", types.ErrOverflow)
		}
	}
	return arith(expr.Add, a, b)
}

// average divides the sum of the non-null values by their count. Integral
// values average as Double.
func average(x *expr.Aggregate, values []any) (any, error) {
	var present []any
	for _, v := range values {
		if v != nil {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		if x.Typ.CanBeNull() {
			return nil, nil
		}
		return nil, newError(ErrCodeEmptySequence, "sequence contains no elements")
	}
	n := len(present)
	switch present[0].(type) {
	case *apd.Decimal:
		total, err := sum(types.DecimalType, present)
		if err != nil {
			return nil, err
		}
		return decimalOp(expr.Divide, total.(*apd.Decimal), apd.New(int64(n), 0))
	case float32:
		var total float64
		for _, v := range present {
			total += float64(v.(float32))
		}
		return float32(total / float64(n)), nil
	}
	var total float64
	for _, v := range present {
		f, err := types.ConvertValue(v, types.Float64Type, false)
		if err != nil {
			return nil, classify(err, ErrCodeInvalidCast)
		}
		total += f.(float64)
	}
	return total / float64(n), nil
}
