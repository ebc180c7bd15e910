package queryir

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"

	"github.com/roach88/dynq/internal/ir"
	"github.com/roach88/dynq/internal/types"
)

// TimeLayout is the text form of DateTime values in SQL. It is fixed width
// so that text order is time order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// IsScalar reports whether values of t fit in one SQL column.
func IsScalar(t *types.Type) bool {
	if t == nil {
		return false
	}
	switch k := t.NonNullable().Kind(); k {
	case types.Bool, types.Char, types.String, types.DateTime, types.TimeSpan, types.Guid, types.Enum:
		return true
	default:
		return k.IsNumeric()
	}
}

// Columns lists the scalar fields and properties of t, base type members
// first. Members hidden by a derived member of the same name are skipped.
func Columns(t *types.Type) []*Column {
	var cols []*Column
	seen := map[string]bool{}
	var walk func(*types.Type)
	walk = func(t *types.Type) {
		for _, b := range t.Bases() {
			walk(b)
		}
		for _, m := range t.Members() {
			if m.Static || (m.Kind != types.Field && m.Kind != types.Property) || !IsScalar(m.Type) {
				continue
			}
			key := types.FoldName(m.Name)
			if seen[key] {
				for _, c := range cols {
					if types.SameName(c.Name, m.Name) {
						c.Type = m.Type
					}
				}
				continue
			}
			seen[key] = true
			cols = append(cols, &Column{Name: m.Name, Type: m.Type})
		}
	}
	walk(t)
	return cols
}

// NewLiteral converts a canonical runtime value of type t to a Literal.
func NewLiteral(v any, t *types.Type) (*Literal, error) {
	if v == nil {
		return &Literal{Value: ir.IRNull{}, Type: t}, nil
	}
	value, err := irValue(v, t.NonNullable())
	if err != nil {
		return nil, err
	}
	return &Literal{Value: value, Type: t}, nil
}

func irValue(v any, t *types.Type) (ir.IRValue, error) {
	switch k := t.Kind(); {
	case k == types.Bool:
		if b, ok := v.(bool); ok {
			return ir.IRBool(b), nil
		}
	case k == types.Char:
		if r, ok := v.(rune); ok {
			return ir.IRString(string(r)), nil
		}
	case k == types.String:
		if s, ok := v.(string); ok {
			return ir.IRString(s), nil
		}
	case k == types.Enum:
		if i, ok := v.(int64); ok {
			return ir.IRInt(i), nil
		}
	case k == types.Uint64:
		if u, ok := v.(uint64); ok {
			if u > math.MaxInt64 {
				return nil, fmt.Errorf("%d does not fit in a 64-bit SQL integer", u)
			}
			return ir.IRInt(int64(u)), nil
		}
	case k == types.Float32:
		if f, ok := v.(float32); ok {
			return ir.IRString(strconv.FormatFloat(float64(f), 'g', -1, 32)), nil
		}
	case k == types.Float64:
		if f, ok := v.(float64); ok {
			return ir.IRString(strconv.FormatFloat(f, 'g', -1, 64)), nil
		}
	case k == types.Decimal:
		if d, ok := v.(*apd.Decimal); ok {
			return ir.IRString(d.String()), nil
		}
	case k.IsNumeric():
		i, err := types.ConvertValue(v, types.Int64Type, false)
		if err != nil {
			return nil, err
		}
		return ir.IRInt(i.(int64)), nil
	case k == types.DateTime:
		if d, ok := v.(time.Time); ok {
			return ir.IRString(d.UTC().Format(TimeLayout)), nil
		}
	case k == types.TimeSpan:
		if d, ok := v.(time.Duration); ok {
			return ir.IRInt(int64(d)), nil
		}
	case k == types.Guid:
		if g, ok := v.(uuid.UUID); ok {
			return ir.IRString(g.String()), nil
		}
	}
	return nil, fmt.Errorf("%T is not a SQL value of type %s", v, t)
}
