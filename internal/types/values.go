package types

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
)

// DecimalContext is the arithmetic context for Decimal values.
var DecimalContext = apd.BaseContext.WithPrecision(34)

var truncContext = func() *apd.Context {
	c := *DecimalContext
	c.Rounding = apd.RoundDown
	return &c
}()

// Equaler is implemented by values with structural equality.
type Equaler interface {
	Equal(other any) bool
}

// Hasher is implemented by values with a structural hash.
type Hasher interface {
	Hash() uint64
}

// ParseNumber parses text directly as a value of the numeric type t,
// ignoring a nullable wrapper. It reports false if t is not numeric or the
// text is out of range.
func ParseNumber(text string, t *Type) (any, bool) {
	k := t.NonNullable().kind
	switch {
	case k.IsSignedIntegral():
		i, err := strconv.ParseInt(text, 10, bitSize(k))
		if err != nil {
			return nil, false
		}
		return castSigned(i, k), true
	case k.IsUnsignedIntegral():
		u, err := strconv.ParseUint(text, 10, bitSize(k))
		if err != nil {
			return nil, false
		}
		return castUnsigned(u, k), true
	case k == Float32:
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return nil, false
		}
		return float32(f), true
	case k == Float64:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, false
		}
		return f, true
	case k == Decimal:
		if strings.ContainsAny(text, "eE") {
			return nil, false
		}
		d, _, err := apd.NewFromString(text)
		if err != nil {
			return nil, false
		}
		return d, true
	}
	return nil, false
}

func bitSize(k Kind) int {
	switch k {
	case Int8, Uint8:
		return 8
	case Int16, Uint16:
		return 16
	case Int32, Uint32:
		return 32
	}
	return 64
}

func castSigned(i int64, k Kind) any {
	switch k {
	case Int8:
		return int8(i)
	case Int16:
		return int16(i)
	case Int32:
		return int32(i)
	}
	return i
}

func castUnsigned(u uint64, k Kind) any {
	switch k {
	case Uint8:
		return uint8(u)
	case Uint16:
		return uint16(u)
	case Uint32:
		return uint32(u)
	}
	return u
}

type numClass uint8

const (
	numSigned numClass = iota + 1
	numUnsigned
	numFloat
	numDecimal
)

// number is a value widened to its numeric class.
type number struct {
	class numClass
	i     int64
	u     uint64
	f     float64
	d     *apd.Decimal
}

func toNumber(v any) (number, bool) {
	switch n := v.(type) {
	case int8:
		return number{class: numSigned, i: int64(n)}, true
	case int16:
		return number{class: numSigned, i: int64(n)}, true
	case int32:
		return number{class: numSigned, i: int64(n)}, true
	case int64:
		return number{class: numSigned, i: n}, true
	case int:
		return number{class: numSigned, i: int64(n)}, true
	case uint8:
		return number{class: numUnsigned, u: uint64(n)}, true
	case uint16:
		return number{class: numUnsigned, u: uint64(n)}, true
	case uint32:
		return number{class: numUnsigned, u: uint64(n)}, true
	case uint64:
		return number{class: numUnsigned, u: n}, true
	case uint:
		return number{class: numUnsigned, u: uint64(n)}, true
	case float32:
		return number{class: numFloat, f: float64(n)}, true
	case float64:
		return number{class: numFloat, f: n}, true
	case *apd.Decimal:
		return number{class: numDecimal, d: n}, true
	}
	return number{}, false
}

func (n number) decimal() *apd.Decimal {
	switch n.class {
	case numSigned:
		return apd.New(n.i, 0)
	case numUnsigned:
		d, _, _ := apd.NewFromString(strconv.FormatUint(n.u, 10))
		return d
	case numFloat:
		d, _ := new(apd.Decimal).SetFloat64(n.f)
		return d
	}
	return n.d
}

func (n number) float() float64 {
	switch n.class {
	case numSigned:
		return float64(n.i)
	case numUnsigned:
		return float64(n.u)
	case numDecimal:
		f, _ := n.d.Float64()
		return f
	}
	return n.f
}

// ErrOverflow is wrapped by every checked arithmetic or conversion failure.
var ErrOverflow = errors.New("arithmetic operation resulted in an overflow")

func overflow(to Kind) error {
	return fmt.Errorf("%w converting to %s", ErrOverflow, Primitive(to))
}

// integral reduces n to an integer, truncating towards zero. ok is false if
// the value does not fit in 64 bits.
func (n number) integral() (i int64, u uint64, neg bool, ok bool) {
	switch n.class {
	case numSigned:
		return n.i, uint64(n.i), n.i < 0, true
	case numUnsigned:
		return int64(n.u), n.u, false, true
	case numFloat:
		f := math.Trunc(n.f)
		if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxUint64 {
			return 0, 0, false, false
		}
		if f < 0 {
			return int64(f), uint64(int64(f)), true, true
		}
		if f >= math.MaxInt64 {
			return int64(uint64(f)), uint64(f), false, true
		}
		return int64(f), uint64(f), false, true
	case numDecimal:
		var t apd.Decimal
		if _, err := truncContext.RoundToIntegralValue(&t, n.d); err != nil {
			return 0, 0, false, false
		}
		if t.Negative {
			x, err := t.Int64()
			return x, uint64(x), true, err == nil
		}
		u, err := strconv.ParseUint(t.Text('f'), 10, 64)
		return int64(u), u, false, err == nil
	}
	return 0, 0, false, false
}

func fromNumber(n number, k Kind, checked bool) (any, error) {
	switch {
	case k.IsSignedIntegral():
		i, u, neg, ok := n.integral()
		alwaysChecked := n.class == numDecimal
		if !ok {
			return nil, overflow(k)
		}
		if checked || alwaysChecked {
			if !neg && u > uint64(maxInt[k]) {
				return nil, overflow(k)
			}
			if neg && i < minInt[k] {
				return nil, overflow(k)
			}
		}
		return castSigned(i, k), nil
	case k.IsUnsignedIntegral():
		_, u, neg, ok := n.integral()
		alwaysChecked := n.class == numDecimal
		if !ok {
			return nil, overflow(k)
		}
		if checked || alwaysChecked {
			if neg || u > maxUint[k] {
				return nil, overflow(k)
			}
		}
		return castUnsigned(u, k), nil
	case k == Float32:
		return float32(n.float()), nil
	case k == Float64:
		return n.float(), nil
	case k == Decimal:
		if n.class == numFloat && (math.IsNaN(n.f) || math.IsInf(n.f, 0)) {
			return nil, overflow(k)
		}
		return n.decimal(), nil
	}
	return nil, fmt.Errorf("%s is not numeric", Primitive(k))
}

// ConvertValue converts v to the representation of type to. A checked
// conversion fails on integer overflow instead of wrapping.
func ConvertValue(v any, to *Type, checked bool) (any, error) {
	if v == nil {
		if to.CanBeNull() {
			return nil, nil
		}
		return nil, fmt.Errorf("null cannot be converted to %s", to)
	}
	t := to.NonNullable()
	switch t.kind {
	case Object, Interface, Null, Array, Sequence, Record, Static:
		return v, nil
	case Enum:
		if s, ok := v.(string); ok {
			if ev, ok := t.EnumValue(strings.TrimSpace(s)); ok {
				return ev, nil
			}
			return nil, fmt.Errorf("requested value %q was not found in %s", s, t)
		}
		n, ok := toNumber(v)
		if !ok {
			return nil, cannotConvert(v, t)
		}
		return fromNumber(n, Int64, checked)
	case Bool:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			pb, err := strconv.ParseBool(strings.TrimSpace(b))
			if err != nil {
				return nil, fmt.Errorf("string %q was not recognized as a valid Boolean", b)
			}
			return pb, nil
		}
		if n, ok := toNumber(v); ok {
			return n.float() != 0, nil
		}
		return nil, cannotConvert(v, t)
	case Char:
		if s, ok := v.(string); ok {
			r := []rune(s)
			if len(r) != 1 {
				return nil, fmt.Errorf("string must be exactly one character long")
			}
			return r[0], nil
		}
		n, ok := toNumber(v)
		if !ok {
			return nil, cannotConvert(v, t)
		}
		c, err := fromNumber(n, Uint16, checked)
		if err != nil {
			return nil, err
		}
		return rune(c.(uint16)), nil
	case String:
		return FormatValue(v, nil), nil
	case DateTime:
		switch d := v.(type) {
		case time.Time:
			return d, nil
		case string:
			return dateparse.ParseAny(d)
		}
		return nil, cannotConvert(v, t)
	case TimeSpan:
		switch d := v.(type) {
		case time.Duration:
			return d, nil
		case string:
			return time.ParseDuration(d)
		}
		return nil, cannotConvert(v, t)
	case Guid:
		switch g := v.(type) {
		case uuid.UUID:
			return g, nil
		case string:
			return uuid.Parse(g)
		}
		return nil, cannotConvert(v, t)
	}
	if !t.kind.IsNumeric() {
		return nil, cannotConvert(v, t)
	}
	switch s := v.(type) {
	case string:
		if r, ok := ParseNumber(strings.TrimSpace(s), t); ok {
			return r, nil
		}
		return nil, fmt.Errorf("input string %q was not in a correct format", s)
	case bool:
		if s {
			return fromNumber(number{class: numSigned, i: 1}, t.kind, checked)
		}
		return fromNumber(number{class: numSigned}, t.kind, checked)
	}
	n, ok := toNumber(v)
	if !ok {
		return nil, cannotConvert(v, t)
	}
	return fromNumber(n, t.kind, checked)
}

func cannotConvert(v any, t *Type) error {
	return fmt.Errorf("unable to cast value of type %T to %s", v, t)
}

// FormatValue renders v the way ToString does. t selects the rendering of
// kinds that share a Go representation (Char, Enum) and may be nil.
func FormatValue(v any, t *Type) string {
	if v == nil {
		return ""
	}
	if t != nil {
		switch nt := t.NonNullable(); nt.kind {
		case Char:
			if r, ok := v.(rune); ok {
				return string(r)
			}
		case Enum:
			if i, ok := v.(int64); ok {
				if name := nt.EnumName(i); name != "" {
					return name
				}
			}
		}
	}
	switch x := v.(type) {
	case string:
		return x
	case bool:
		if x {
			return "True"
		}
		return "False"
	case float32:
		return strconv.FormatFloat(float64(x), 'G', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'G', -1, 64)
	case *apd.Decimal:
		return x.Text('f')
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case time.Duration:
		return FormatTimeSpan(x)
	case uuid.UUID:
		return x.String()
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

// FormatTimeSpan renders d as [-][d.]hh:mm:ss[.fffffff].
func FormatTimeSpan(d time.Duration) string {
	var b strings.Builder
	if d < 0 {
		b.WriteByte('-')
		d = -d
	}
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	if days > 0 {
		fmt.Fprintf(&b, "%d.", days)
	}
	fmt.Fprintf(&b, "%02d:%02d:%02d", h, m, s)
	if ticks := d / 100; ticks > 0 {
		fmt.Fprintf(&b, ".%07d", ticks)
	}
	return b.String()
}

// CompareValues orders two non-null values of compatible types. Strings
// compare ordinally.
func CompareValues(a, b any) (int, error) {
	if na, ok := toNumber(a); ok {
		nb, ok := toNumber(b)
		if !ok {
			return 0, fmt.Errorf("cannot compare %T with %T", a, b)
		}
		return compareNumbers(na, nb), nil
	}
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y), nil
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0, nil
			case !x:
				return -1, nil
			}
			return 1, nil
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y), nil
		}
	case time.Duration:
		if y, ok := b.(time.Duration); ok {
			return cmpOrdered(x, y), nil
		}
	case uuid.UUID:
		if y, ok := b.(uuid.UUID); ok {
			return bytes.Compare(x[:], y[:]), nil
		}
	}
	return 0, fmt.Errorf("cannot compare %T with %T", a, b)
}

// cmpOrdered orders NaN before every other float and equal to itself.
func cmpOrdered[T int64 | uint64 | float64 | time.Duration](x, y T) int {
	return cmp.Compare(x, y)
}

func compareNumbers(a, b number) int {
	if a.class == numDecimal || b.class == numDecimal {
		return a.decimal().Cmp(b.decimal())
	}
	if a.class == numFloat || b.class == numFloat {
		return cmpOrdered(a.float(), b.float())
	}
	switch {
	case a.class == numSigned && b.class == numSigned:
		return cmpOrdered(a.i, b.i)
	case a.class == numUnsigned && b.class == numUnsigned:
		return cmpOrdered(a.u, b.u)
	case a.class == numSigned:
		if a.i < 0 {
			return -1
		}
		return cmpOrdered(uint64(a.i), b.u)
	}
	if b.i < 0 {
		return 1
	}
	return cmpOrdered(a.u, uint64(b.i))
}

// EqualValues reports whether a and b are equal. Two nils are equal; nil
// never equals a non-nil value.
func EqualValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if e, ok := a.(Equaler); ok {
		return e.Equal(b)
	}
	if c, err := CompareValues(a, b); err == nil {
		return c == 0
	}
	ta := reflect.TypeOf(a)
	if ta == reflect.TypeOf(b) && ta.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// HashValue returns a hash consistent with EqualValues for values of the
// same type. nil hashes to zero.
func HashValue(v any) uint64 {
	if v == nil {
		return 0
	}
	if h, ok := v.(Hasher); ok {
		return h.Hash()
	}
	var key string
	if n, ok := toNumber(v); ok && n.class == numDecimal {
		var r apd.Decimal
		r.Reduce(n.d)
		key = r.Text('f')
	} else if ok && n.class == numFloat {
		key = floatKey(v, n.f)
	} else if t, ok := v.(time.Time); ok {
		key = strconv.FormatInt(t.UnixNano(), 10)
	} else {
		key = fmt.Sprintf("%T:%v", v, v)
	}
	h := fnv.New64a()
	h.Write([]byte(key))
	return h.Sum64()
}

// floatKey folds negative zero into zero and every NaN into one key.
func floatKey(v any, f float64) string {
	switch {
	case math.IsNaN(f):
		return fmt.Sprintf("%T:NaN", v)
	case f == 0:
		f = 0
	}
	return fmt.Sprintf("%T:%v", v, f)
}

// HashString returns the hash of a name, used for record schema keys.
func HashString(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}
