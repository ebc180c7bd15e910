package querysql

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"

	"github.com/roach88/dynq/internal/ir"
	"github.com/roach88/dynq/internal/queryir"
	"github.com/roach88/dynq/internal/types"
)

// Storage classes by value kind:
//
//	Bool, integers, Enum, TimeSpan (nanoseconds)  INTEGER
//	Float32, Float64, Decimal                     REAL
//	String, Char, Guid, DateTime (queryir.TimeLayout, UTC)  TEXT

// ColumnType returns the SQLite column type storing values of t.
func ColumnType(t *types.Type) string {
	switch k := t.NonNullable().Kind(); {
	case k == types.Float32 || k == types.Float64 || k == types.Decimal:
		return "REAL"
	case k == types.Bool || k == types.Enum || k == types.TimeSpan || k.IsNumeric():
		return "INTEGER"
	}
	return "TEXT"
}

// LiteralParam converts a literal to a SQL parameter.
func LiteralParam(l *queryir.Literal) (any, error) {
	switch val := l.Value.(type) {
	case ir.IRNull:
		return nil, nil
	case ir.IRBool:
		if val {
			return int64(1), nil
		}
		return int64(0), nil
	case ir.IRInt:
		return int64(val), nil
	case ir.IRString:
		if l.Type != nil && ColumnType(l.Type) == "REAL" {
			f, err := strconv.ParseFloat(string(val), 64)
			if err != nil {
				return nil, fmt.Errorf("literal %q of type %s: %w", string(val), l.Type, err)
			}
			return f, nil
		}
		return string(val), nil
	case ir.IRArray:
		return nil, fmt.Errorf("IRArray cannot be used as SQL parameter directly")
	case ir.IRObject:
		return nil, fmt.Errorf("IRObject cannot be used as SQL parameter directly")
	default:
		return nil, fmt.Errorf("unsupported IRValue type for SQL parameter: %T", l.Value)
	}
}

// ArgIR converts a SQL parameter for export. REAL parameters become
// decimal strings.
func ArgIR(v any) ir.IRValue {
	switch x := v.(type) {
	case nil:
		return ir.IRNull{}
	case int64:
		return ir.IRInt(x)
	case float64:
		return ir.IRString(strconv.FormatFloat(x, 'g', -1, 64))
	case string:
		return ir.IRString(x)
	}
	return ir.IRString(fmt.Sprint(v))
}

// Param encodes a runtime value of type t for storage.
func Param(v any, t *types.Type) (any, error) {
	if v == nil {
		if !t.CanBeNull() {
			return nil, fmt.Errorf("null is not a value of %s", t)
		}
		return nil, nil
	}
	switch x := v.(type) {
	case bool:
		if x {
			return int64(1), nil
		}
		return int64(0), nil
	case string:
		return x, nil
	case time.Time:
		return x.UTC().Format(queryir.TimeLayout), nil
	case time.Duration:
		return int64(x), nil
	case uuid.UUID:
		return x.String(), nil
	case *apd.Decimal:
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("decimal %s: %w", x, err)
		}
		return f, nil
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, fmt.Errorf("%d does not fit in a 64-bit SQL integer", x)
		}
		return int64(x), nil
	}
	if t.NonNullable().Kind() == types.Char {
		if r, ok := v.(rune); ok {
			return string(r), nil
		}
	}
	i, err := types.ConvertValue(v, types.Int64Type, false)
	if err != nil {
		return nil, fmt.Errorf("%T is not a SQL value of type %s", v, t)
	}
	return i, nil
}

// Scan decodes a value read from SQLite into the runtime form of t.
func Scan(raw any, t *types.Type) (any, error) {
	if raw == nil {
		return nil, nil
	}
	if b, ok := raw.([]byte); ok {
		raw = string(b)
	}
	switch t.NonNullable().Kind() {
	case types.DateTime:
		if s, ok := raw.(string); ok {
			return time.Parse(queryir.TimeLayout, s)
		}
	case types.TimeSpan:
		if i, ok := raw.(int64); ok {
			return time.Duration(i), nil
		}
	case types.Char:
		if s, ok := raw.(string); ok {
			r := []rune(s)
			if len(r) != 1 {
				return nil, fmt.Errorf("%q is not a single character", s)
			}
			return r[0], nil
		}
	}
	return types.ConvertValue(raw, t, false)
}
