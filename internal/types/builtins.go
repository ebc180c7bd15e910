package types

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/araddon/dateparse"
	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
)

type callFunc = func(target any, args []any) (any, error)

func inst(name string, ret *Type, fn callFunc, params ...Param) *Member {
	return &Member{Name: name, Kind: Method, Type: ret, Params: params, Call: fn}
}

func stat(name string, ret *Type, fn func(args []any) (any, error), params ...Param) *Member {
	return &Member{Name: name, Kind: Method, Type: ret, Params: params, Static: true,
		Call: func(_ any, args []any) (any, error) { return fn(args) }}
}

func prop(name string, t *Type, get func(v any) (any, error)) *Member {
	return &Member{Name: name, Kind: Property, Type: t, Get: get}
}

func staticProp(name string, t *Type, get func() any) *Member {
	return &Member{Name: name, Kind: Property, Type: t, Static: true,
		Get: func(any) (any, error) { return get(), nil }}
}

func constant(name string, t *Type, v any) *Member {
	return &Member{Name: name, Kind: Field, Type: t, Static: true,
		Get: func(any) (any, error) { return v, nil }}
}

func ctor(owner *Type, fn func(args []any) (any, error), params ...Param) *Member {
	return &Member{Name: owner.name, Kind: Constructor, Type: owner, Params: params,
		Call: func(_ any, args []any) (any, error) { return fn(args) }}
}

func as[T any](v any) (T, error) {
	x, ok := v.(T)
	if !ok {
		var zero T
		if v == nil {
			return zero, ErrNilTarget
		}
		return zero, fmt.Errorf("expected %T, got %T", zero, v)
	}
	return x, nil
}

func objectMembers() []*Member {
	return []*Member{
		inst("ToString", StringType, func(v any, _ []any) (any, error) {
			if v == nil {
				return nil, ErrNilTarget
			}
			return FormatValue(v, nil), nil
		}),
		inst("Equals", BoolType, func(v any, a []any) (any, error) {
			if v == nil {
				return nil, ErrNilTarget
			}
			return EqualValues(v, a[0]), nil
		}, P("obj", ObjectType)),
	}
}

func boolMembers() []*Member {
	return []*Member{
		inst("ToString", StringType, func(v any, _ []any) (any, error) { return FormatValue(v, BoolType), nil }),
		stat("Parse", BoolType, func(a []any) (any, error) {
			s, err := as[string](a[0])
			if err != nil {
				return nil, err
			}
			return ConvertValue(s, BoolType, true)
		}, P("value", StringType)),
	}
}

func charMembers() []*Member {
	pred := func(name string, f func(rune) bool) *Member {
		return stat(name, BoolType, func(a []any) (any, error) {
			r, err := as[rune](a[0])
			if err != nil {
				return nil, err
			}
			return f(r), nil
		}, P("c", CharType))
	}
	mapper := func(name string, f func(rune) rune) *Member {
		return stat(name, CharType, func(a []any) (any, error) {
			r, err := as[rune](a[0])
			if err != nil {
				return nil, err
			}
			return f(r), nil
		}, P("c", CharType))
	}
	return []*Member{
		inst("ToString", StringType, func(v any, _ []any) (any, error) { return FormatValue(v, CharType), nil }),
		pred("IsDigit", unicode.IsDigit),
		pred("IsLetter", unicode.IsLetter),
		pred("IsLetterOrDigit", func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }),
		pred("IsWhiteSpace", unicode.IsSpace),
		pred("IsUpper", unicode.IsUpper),
		pred("IsLower", unicode.IsLower),
		mapper("ToUpper", unicode.ToUpper),
		mapper("ToLower", unicode.ToLower),
	}
}

// CompareStrings orders strings ordinally; null sorts before any string.
func CompareStrings(a, b any) (int, error) {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0, nil
		case a == nil:
			return -1, nil
		}
		return 1, nil
	}
	return CompareValues(a, b)
}

func runeIndex(s string, byteIdx int) int32 {
	if byteIdx < 0 {
		return -1
	}
	return int32(utf8.RuneCountInString(s[:byteIdx]))
}

func substring(s string, start, length int) (string, error) {
	r := []rune(s)
	if start < 0 || start > len(r) {
		return "", fmt.Errorf("startIndex %d is out of range", start)
	}
	if length < 0 || start+length > len(r) {
		return "", fmt.Errorf("length %d is out of range", length)
	}
	return string(r[start : start+length]), nil
}

func stringMembers() []*Member {
	unary := func(name string, f func(string) string) *Member {
		return inst(name, StringType, func(v any, _ []any) (any, error) {
			s, err := as[string](v)
			if err != nil {
				return nil, err
			}
			return f(s), nil
		})
	}
	test := func(name string, f func(s, sub string) bool) *Member {
		return inst(name, BoolType, func(v any, a []any) (any, error) {
			s, err := as[string](v)
			if err != nil {
				return nil, err
			}
			sub, err := as[string](a[0])
			if err != nil {
				return nil, err
			}
			return f(s, sub), nil
		}, P("value", StringType))
	}
	return []*Member{
		prop("Length", Int32Type, func(v any) (any, error) {
			s, err := as[string](v)
			if err != nil {
				return nil, err
			}
			return int32(utf8.RuneCountInString(s)), nil
		}),
		{Name: "Chars", Kind: Indexer, Type: CharType, Params: []Param{P("index", Int32Type)},
			Call: func(v any, a []any) (any, error) {
				s, err := as[string](v)
				if err != nil {
					return nil, err
				}
				r := []rune(s)
				i := int(a[0].(int32))
				if i < 0 || i >= len(r) {
					return nil, fmt.Errorf("index %d was outside the bounds of the string", i)
				}
				return r[i], nil
			}},
		test("Contains", strings.Contains),
		test("StartsWith", strings.HasPrefix),
		test("EndsWith", strings.HasSuffix),
		test("Equals", func(s, o string) bool { return s == o }),
		unary("ToUpper", strings.ToUpper),
		unary("ToLower", strings.ToLower),
		unary("Trim", strings.TrimSpace),
		unary("TrimStart", func(s string) string { return strings.TrimLeftFunc(s, unicode.IsSpace) }),
		unary("TrimEnd", func(s string) string { return strings.TrimRightFunc(s, unicode.IsSpace) }),
		unary("ToString", func(s string) string { return s }),
		inst("IndexOf", Int32Type, func(v any, a []any) (any, error) {
			s, err := as[string](v)
			if err != nil {
				return nil, err
			}
			sub, err := as[string](a[0])
			if err != nil {
				return nil, err
			}
			return runeIndex(s, strings.Index(s, sub)), nil
		}, P("value", StringType)),
		inst("IndexOf", Int32Type, func(v any, a []any) (any, error) {
			s, err := as[string](v)
			if err != nil {
				return nil, err
			}
			return runeIndex(s, strings.IndexRune(s, a[0].(rune))), nil
		}, P("value", CharType)),
		inst("Substring", StringType, func(v any, a []any) (any, error) {
			s, err := as[string](v)
			if err != nil {
				return nil, err
			}
			start := int(a[0].(int32))
			return substring(s, start, utf8.RuneCountInString(s)-start)
		}, P("startIndex", Int32Type)),
		inst("Substring", StringType, func(v any, a []any) (any, error) {
			s, err := as[string](v)
			if err != nil {
				return nil, err
			}
			return substring(s, int(a[0].(int32)), int(a[1].(int32)))
		}, P("startIndex", Int32Type), P("length", Int32Type)),
		inst("Replace", StringType, func(v any, a []any) (any, error) {
			s, err := as[string](v)
			if err != nil {
				return nil, err
			}
			old, err := as[string](a[0])
			if err != nil {
				return nil, err
			}
			if old == "" {
				return nil, fmt.Errorf("string cannot be of zero length")
			}
			repl, _ := a[1].(string)
			return strings.ReplaceAll(s, old, repl), nil
		}, P("oldValue", StringType), P("newValue", StringType)),
		inst("CompareTo", Int32Type, func(v any, a []any) (any, error) {
			if v == nil {
				return nil, ErrNilTarget
			}
			c, err := CompareStrings(v, a[0])
			return int32(c), err
		}, P("strB", StringType)),
		stat("Compare", Int32Type, func(a []any) (any, error) {
			c, err := CompareStrings(a[0], a[1])
			return int32(c), err
		}, P("strA", StringType), P("strB", StringType)),
		stat("IsNullOrEmpty", BoolType, func(a []any) (any, error) {
			s, _ := a[0].(string)
			return s == "", nil
		}, P("value", StringType)),
		stat("IsNullOrWhiteSpace", BoolType, func(a []any) (any, error) {
			s, _ := a[0].(string)
			return strings.TrimSpace(s) == "", nil
		}, P("value", StringType)),
		stat("Concat", StringType, func(a []any) (any, error) {
			return FormatValue(a[0], nil) + FormatValue(a[1], nil), nil
		}, P("str0", StringType), P("str1", StringType)),
		constant("Empty", StringType, ""),
	}
}

func numericMembers(t *Type) []*Member {
	ms := []*Member{
		inst("ToString", StringType, func(v any, _ []any) (any, error) { return FormatValue(v, t), nil }),
		inst("CompareTo", Int32Type, func(v any, a []any) (any, error) {
			c, err := CompareValues(v, a[0])
			return int32(c), err
		}, P("value", t)),
		inst("Equals", BoolType, func(v any, a []any) (any, error) {
			return EqualValues(v, a[0]), nil
		}, P("obj", t)),
		stat("Parse", t, func(a []any) (any, error) {
			s, err := as[string](a[0])
			if err != nil {
				return nil, err
			}
			return ConvertValue(s, t, true)
		}, P("s", StringType)),
	}
	switch k := t.kind; {
	case k.IsSignedIntegral():
		ms = append(ms,
			constant("MaxValue", t, castSigned(maxInt[k], k)),
			constant("MinValue", t, castSigned(minInt[k], k)))
	case k.IsUnsignedIntegral():
		ms = append(ms,
			constant("MaxValue", t, castUnsigned(maxUint[k], k)),
			constant("MinValue", t, castUnsigned(0, k)))
	case k == Float32:
		ms = append(ms,
			constant("MaxValue", t, float32(math.MaxFloat32)),
			constant("MinValue", t, float32(-math.MaxFloat32)))
	case k == Float64:
		ms = append(ms,
			constant("MaxValue", t, math.MaxFloat64),
			constant("MinValue", t, -math.MaxFloat64))
	case k == Decimal:
		maxDec, _, _ := apd.NewFromString("79228162514264337593543950335")
		minDec, _, _ := apd.NewFromString("-79228162514264337593543950335")
		ms = append(ms,
			constant("MaxValue", t, maxDec),
			constant("MinValue", t, minDec),
			constant("Zero", t, apd.New(0, 0)),
			constant("One", t, apd.New(1, 0)))
	}
	return ms
}

// DayOfWeekType is the enum returned by DateTime.DayOfWeek.
var DayOfWeekType = NewEnum("DayOfWeek", Int32Type,
	EnumMember{"Sunday", 0}, EnumMember{"Monday", 1}, EnumMember{"Tuesday", 2},
	EnumMember{"Wednesday", 3}, EnumMember{"Thursday", 4}, EnumMember{"Friday", 5},
	EnumMember{"Saturday", 6})

var (
	minDateTime = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	maxDateTime = time.Date(9999, time.December, 31, 23, 59, 59, 999999900, time.UTC)
)

func newDate(y, mo, d, h, mi, s int) (time.Time, error) {
	t := time.Date(y, time.Month(mo), d, h, mi, s, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != mo || t.Day() != d || t.Hour() != h || t.Minute() != mi || t.Second() != s {
		return time.Time{}, fmt.Errorf("year, month, and day parameters describe an unrepresentable DateTime")
	}
	return t, nil
}

func ints(a []any) []int {
	out := make([]int, len(a))
	for i, v := range a {
		out[i] = int(v.(int32))
	}
	return out
}

func fractional(unit time.Duration) func(float64) time.Duration {
	return func(f float64) time.Duration { return time.Duration(math.Round(f * float64(unit))) }
}

func dateTimeMembers() []*Member {
	D := DateTimeType
	part := func(name string, f func(time.Time) int) *Member {
		return prop(name, Int32Type, func(v any) (any, error) {
			t, err := as[time.Time](v)
			if err != nil {
				return nil, err
			}
			return int32(f(t)), nil
		})
	}
	add := func(name string, unit time.Duration) *Member {
		toDur := fractional(unit)
		return inst(name, D, func(v any, a []any) (any, error) {
			t, err := as[time.Time](v)
			if err != nil {
				return nil, err
			}
			return t.Add(toDur(a[0].(float64))), nil
		}, P("value", Float64Type))
	}
	return []*Member{
		part("Year", time.Time.Year),
		part("Month", func(t time.Time) int { return int(t.Month()) }),
		part("Day", time.Time.Day),
		part("Hour", time.Time.Hour),
		part("Minute", time.Time.Minute),
		part("Second", time.Time.Second),
		part("Millisecond", func(t time.Time) int { return t.Nanosecond() / int(time.Millisecond) }),
		part("DayOfYear", time.Time.YearDay),
		prop("DayOfWeek", DayOfWeekType, func(v any) (any, error) {
			t, err := as[time.Time](v)
			if err != nil {
				return nil, err
			}
			return int64(t.Weekday()), nil
		}),
		prop("Date", D, func(v any) (any, error) {
			t, err := as[time.Time](v)
			if err != nil {
				return nil, err
			}
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()), nil
		}),
		prop("TimeOfDay", TimeSpanType, func(v any) (any, error) {
			t, err := as[time.Time](v)
			if err != nil {
				return nil, err
			}
			return t.Sub(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())), nil
		}),
		prop("Ticks", Int64Type, func(v any) (any, error) {
			t, err := as[time.Time](v)
			if err != nil {
				return nil, err
			}
			return int64(t.Sub(minDateTime) / 100), nil
		}),
		staticProp("Now", D, func() any { return time.Now() }),
		staticProp("UtcNow", D, func() any { return time.Now().UTC() }),
		staticProp("Today", D, func() any {
			n := time.Now()
			return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, n.Location())
		}),
		constant("MinValue", D, minDateTime),
		constant("MaxValue", D, maxDateTime),
		add("AddDays", 24*time.Hour),
		add("AddHours", time.Hour),
		add("AddMinutes", time.Minute),
		add("AddSeconds", time.Second),
		add("AddMilliseconds", time.Millisecond),
		inst("AddMonths", D, func(v any, a []any) (any, error) {
			t, err := as[time.Time](v)
			if err != nil {
				return nil, err
			}
			return t.AddDate(0, int(a[0].(int32)), 0), nil
		}, P("months", Int32Type)),
		inst("AddYears", D, func(v any, a []any) (any, error) {
			t, err := as[time.Time](v)
			if err != nil {
				return nil, err
			}
			return t.AddDate(int(a[0].(int32)), 0, 0), nil
		}, P("value", Int32Type)),
		inst("Add", D, func(v any, a []any) (any, error) {
			t, err := as[time.Time](v)
			if err != nil {
				return nil, err
			}
			return t.Add(a[0].(time.Duration)), nil
		}, P("value", TimeSpanType)),
		inst("Subtract", TimeSpanType, func(v any, a []any) (any, error) {
			t, err := as[time.Time](v)
			if err != nil {
				return nil, err
			}
			return t.Sub(a[0].(time.Time)), nil
		}, P("value", D)),
		inst("Subtract", D, func(v any, a []any) (any, error) {
			t, err := as[time.Time](v)
			if err != nil {
				return nil, err
			}
			return t.Add(-a[0].(time.Duration)), nil
		}, P("value", TimeSpanType)),
		inst("ToString", StringType, func(v any, _ []any) (any, error) { return FormatValue(v, D), nil }),
		inst("CompareTo", Int32Type, func(v any, a []any) (any, error) {
			c, err := CompareValues(v, a[0])
			return int32(c), err
		}, P("value", D)),
		stat("Parse", D, func(a []any) (any, error) {
			s, err := as[string](a[0])
			if err != nil {
				return nil, err
			}
			return dateparse.ParseAny(s)
		}, P("s", StringType)),
		stat("IsLeapYear", BoolType, func(a []any) (any, error) {
			y := int(a[0].(int32))
			return y%4 == 0 && (y%100 != 0 || y%400 == 0), nil
		}, P("year", Int32Type)),
		stat("DaysInMonth", Int32Type, func(a []any) (any, error) {
			n := ints(a)
			if n[1] < 1 || n[1] > 12 {
				return nil, fmt.Errorf("month must be between one and twelve")
			}
			return int32(time.Date(n[0], time.Month(n[1])+1, 0, 0, 0, 0, 0, time.UTC).Day()), nil
		}, P("year", Int32Type), P("month", Int32Type)),
		ctor(D, func(a []any) (any, error) {
			n := ints(a)
			return newDate(n[0], n[1], n[2], 0, 0, 0)
		}, P("year", Int32Type), P("month", Int32Type), P("day", Int32Type)),
		ctor(D, func(a []any) (any, error) {
			n := ints(a)
			return newDate(n[0], n[1], n[2], n[3], n[4], n[5])
		}, P("year", Int32Type), P("month", Int32Type), P("day", Int32Type),
			P("hour", Int32Type), P("minute", Int32Type), P("second", Int32Type)),
	}
}

func timeSpanMembers() []*Member {
	T := TimeSpanType
	part := func(name string, unit, mod time.Duration) *Member {
		return prop(name, Int32Type, func(v any) (any, error) {
			d, err := as[time.Duration](v)
			if err != nil {
				return nil, err
			}
			if mod > 0 {
				d %= mod
			}
			return int32(d / unit), nil
		})
	}
	total := func(name string, unit time.Duration) *Member {
		return prop(name, Float64Type, func(v any) (any, error) {
			d, err := as[time.Duration](v)
			if err != nil {
				return nil, err
			}
			return float64(d) / float64(unit), nil
		})
	}
	from := func(name string, unit time.Duration) *Member {
		toDur := fractional(unit)
		return stat(name, T, func(a []any) (any, error) { return toDur(a[0].(float64)), nil }, P("value", Float64Type))
	}
	day := 24 * time.Hour
	return []*Member{
		part("Days", day, 0),
		part("Hours", time.Hour, day),
		part("Minutes", time.Minute, time.Hour),
		part("Seconds", time.Second, time.Minute),
		part("Milliseconds", time.Millisecond, time.Second),
		total("TotalDays", day),
		total("TotalHours", time.Hour),
		total("TotalMinutes", time.Minute),
		total("TotalSeconds", time.Second),
		total("TotalMilliseconds", time.Millisecond),
		prop("Ticks", Int64Type, func(v any) (any, error) {
			d, err := as[time.Duration](v)
			if err != nil {
				return nil, err
			}
			return int64(d / 100), nil
		}),
		constant("Zero", T, time.Duration(0)),
		constant("MaxValue", T, time.Duration(math.MaxInt64)),
		constant("MinValue", T, time.Duration(math.MinInt64)),
		from("FromDays", day),
		from("FromHours", time.Hour),
		from("FromMinutes", time.Minute),
		from("FromSeconds", time.Second),
		from("FromMilliseconds", time.Millisecond),
		stat("FromTicks", T, func(a []any) (any, error) { return time.Duration(a[0].(int64) * 100), nil }, P("value", Int64Type)),
		stat("Parse", T, func(a []any) (any, error) {
			s, err := as[string](a[0])
			if err != nil {
				return nil, err
			}
			return time.ParseDuration(s)
		}, P("s", StringType)),
		inst("Add", T, func(v any, a []any) (any, error) {
			d, err := as[time.Duration](v)
			if err != nil {
				return nil, err
			}
			return d + a[0].(time.Duration), nil
		}, P("ts", T)),
		inst("Subtract", T, func(v any, a []any) (any, error) {
			d, err := as[time.Duration](v)
			if err != nil {
				return nil, err
			}
			return d - a[0].(time.Duration), nil
		}, P("ts", T)),
		inst("Negate", T, func(v any, _ []any) (any, error) {
			d, err := as[time.Duration](v)
			return -d, err
		}),
		inst("Duration", T, func(v any, _ []any) (any, error) {
			d, err := as[time.Duration](v)
			if d < 0 {
				d = -d
			}
			return d, err
		}),
		inst("ToString", StringType, func(v any, _ []any) (any, error) { return FormatValue(v, T), nil }),
		inst("CompareTo", Int32Type, func(v any, a []any) (any, error) {
			c, err := CompareValues(v, a[0])
			return int32(c), err
		}, P("value", T)),
		ctor(T, func(a []any) (any, error) {
			n := ints(a)
			return time.Duration(n[0])*time.Hour + time.Duration(n[1])*time.Minute + time.Duration(n[2])*time.Second, nil
		}, P("hours", Int32Type), P("minutes", Int32Type), P("seconds", Int32Type)),
		ctor(T, func(a []any) (any, error) {
			n := ints(a)
			return time.Duration(n[0])*day + time.Duration(n[1])*time.Hour + time.Duration(n[2])*time.Minute + time.Duration(n[3])*time.Second, nil
		}, P("days", Int32Type), P("hours", Int32Type), P("minutes", Int32Type), P("seconds", Int32Type)),
		ctor(T, func(a []any) (any, error) {
			return time.Duration(a[0].(int64) * 100), nil
		}, P("ticks", Int64Type)),
	}
}

func guidMembers() []*Member {
	G := GuidType
	parse := func(a []any) (any, error) {
		s, err := as[string](a[0])
		if err != nil {
			return nil, err
		}
		return uuid.Parse(s)
	}
	return []*Member{
		constant("Empty", G, uuid.Nil),
		stat("NewGuid", G, func([]any) (any, error) { return uuid.New(), nil }),
		stat("Parse", G, parse, P("input", StringType)),
		inst("ToString", StringType, func(v any, _ []any) (any, error) { return FormatValue(v, G), nil }),
		inst("Equals", BoolType, func(v any, a []any) (any, error) { return EqualValues(v, a[0]), nil }, P("g", G)),
		ctor(G, parse, P("g", StringType)),
	}
}

func decimalOp(name string, f func(d, x *apd.Decimal) error) func(a []any) (any, error) {
	return func(a []any) (any, error) {
		x, err := as[*apd.Decimal](a[0])
		if err != nil {
			return nil, err
		}
		d := new(apd.Decimal)
		if err := f(d, x); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return d, nil
	}
}

func roundContext(mode apd.Rounder) *apd.Context {
	c := *DecimalContext
	c.Rounding = mode
	return &c
}

func mathMembers() []*Member {
	f1 := func(name string, f func(float64) float64) *Member {
		return stat(name, Float64Type, func(a []any) (any, error) { return f(a[0].(float64)), nil }, P("d", Float64Type))
	}
	var ms []*Member
	ms = append(ms,
		constant("PI", Float64Type, math.Pi),
		constant("E", Float64Type, math.E),
		f1("Sqrt", math.Sqrt),
		f1("Log", math.Log),
		f1("Log10", math.Log10),
		f1("Exp", math.Exp),
		f1("Sin", math.Sin),
		f1("Cos", math.Cos),
		f1("Tan", math.Tan),
		f1("Floor", math.Floor),
		f1("Ceiling", math.Ceil),
		f1("Truncate", math.Trunc),
		f1("Round", math.RoundToEven),
		stat("Pow", Float64Type, func(a []any) (any, error) {
			return math.Pow(a[0].(float64), a[1].(float64)), nil
		}, P("x", Float64Type), P("y", Float64Type)),
		stat("Round", Float64Type, func(a []any) (any, error) {
			p := math.Pow(10, float64(a[1].(int32)))
			return math.RoundToEven(a[0].(float64)*p) / p, nil
		}, P("value", Float64Type), P("digits", Int32Type)),
		stat("Floor", DecimalType, decimalOp("Floor", func(d, x *apd.Decimal) error {
			_, err := DecimalContext.Floor(d, x)
			return err
		}), P("d", DecimalType)),
		stat("Ceiling", DecimalType, decimalOp("Ceiling", func(d, x *apd.Decimal) error {
			_, err := DecimalContext.Ceil(d, x)
			return err
		}), P("d", DecimalType)),
		stat("Truncate", DecimalType, decimalOp("Truncate", func(d, x *apd.Decimal) error {
			_, err := truncContext.RoundToIntegralValue(d, x)
			return err
		}), P("d", DecimalType)),
		stat("Round", DecimalType, decimalOp("Round", func(d, x *apd.Decimal) error {
			_, err := roundContext(apd.RoundHalfEven).RoundToIntegralValue(d, x)
			return err
		}), P("d", DecimalType)),
		stat("Round", DecimalType, func(a []any) (any, error) {
			x, err := as[*apd.Decimal](a[0])
			if err != nil {
				return nil, err
			}
			d := new(apd.Decimal)
			_, err = roundContext(apd.RoundHalfEven).Quantize(d, x, -a[1].(int32))
			return d, err
		}, P("d", DecimalType), P("decimals", Int32Type)),
	)
	for _, t := range []*Type{Int32Type, Int64Type, Float32Type, Float64Type, DecimalType} {
		t := t
		ms = append(ms,
			stat("Abs", t, func(a []any) (any, error) { return numericAbs(a[0], t) }, P("value", t)),
			stat("Sign", Int32Type, func(a []any) (any, error) {
				c, err := CompareValues(a[0], apd.New(0, 0))
				return int32(c), err
			}, P("value", t)))
	}
	for _, t := range []*Type{Int32Type, Uint32Type, Int64Type, Uint64Type, Float32Type, Float64Type, DecimalType} {
		t := t
		pick := func(name string, want int) *Member {
			return stat(name, t, func(a []any) (any, error) {
				c, err := CompareValues(a[0], a[1])
				if err != nil {
					return nil, err
				}
				if c == want || c == 0 {
					return a[0], nil
				}
				return a[1], nil
			}, P("val1", t), P("val2", t))
		}
		ms = append(ms, pick("Max", 1), pick("Min", -1))
	}
	return ms
}

func numericAbs(v any, t *Type) (any, error) {
	switch x := v.(type) {
	case int32:
		if x == math.MinInt32 {
			return nil, overflow(Int32)
		}
		if x < 0 {
			return -x, nil
		}
		return x, nil
	case int64:
		if x == math.MinInt64 {
			return nil, overflow(Int64)
		}
		if x < 0 {
			return -x, nil
		}
		return x, nil
	case float32:
		return float32(math.Abs(float64(x))), nil
	case float64:
		return math.Abs(x), nil
	case *apd.Decimal:
		return new(apd.Decimal).Abs(x), nil
	}
	return nil, cannotConvert(v, t)
}

func convertMembers() []*Member {
	to := func(name string, t *Type) *Member {
		return stat(name, t, func(a []any) (any, error) {
			v := a[0]
			if t.kind.IsIntegral() {
				v = roundHalfEven(v)
			}
			if v == nil {
				return ConvertValue(int64(0), t, true)
			}
			return ConvertValue(v, t, true)
		}, P("value", ObjectType))
	}
	return []*Member{
		to("ToBoolean", BoolType),
		to("ToByte", Uint8Type),
		to("ToSByte", Int8Type),
		to("ToInt16", Int16Type),
		to("ToUInt16", Uint16Type),
		to("ToInt32", Int32Type),
		to("ToUInt32", Uint32Type),
		to("ToInt64", Int64Type),
		to("ToUInt64", Uint64Type),
		to("ToSingle", Float32Type),
		to("ToDouble", Float64Type),
		to("ToDecimal", DecimalType),
		to("ToChar", CharType),
		to("ToDateTime", DateTimeType),
		stat("ToString", StringType, func(a []any) (any, error) { return FormatValue(a[0], nil), nil }, P("value", ObjectType)),
		stat("ToString", StringType, func(a []any) (any, error) { return FormatValue(a[0], CharType), nil }, P("value", CharType)),
	}
}

// roundHalfEven rounds floating point and decimal values to the nearest
// integer, ties to even, before integral conversion.
func roundHalfEven(v any) any {
	switch x := v.(type) {
	case float32:
		return math.RoundToEven(float64(x))
	case float64:
		return math.RoundToEven(x)
	case *apd.Decimal:
		d := new(apd.Decimal)
		if _, err := roundContext(apd.RoundHalfEven).RoundToIntegralValue(d, x); err == nil {
			return d
		}
	}
	return v
}
