package types

import (
	"math"
	"reflect"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
)

// Predefined types. Their methods form the allow-list of invocable code.
var (
	VoidType     = newType("Void", Void)
	NullType     = newType("null", Null)
	ObjectType   = newType("Object", Object)
	BoolType     = newType("Boolean", Bool).WithGoType(reflect.TypeFor[bool]())
	CharType     = newType("Char", Char).WithGoType(reflect.TypeFor[rune]())
	StringType   = newType("String", String).WithGoType(reflect.TypeFor[string]())
	Int8Type     = newType("SByte", Int8).WithGoType(reflect.TypeFor[int8]())
	Uint8Type    = newType("Byte", Uint8).WithGoType(reflect.TypeFor[uint8]())
	Int16Type    = newType("Int16", Int16).WithGoType(reflect.TypeFor[int16]())
	Uint16Type   = newType("UInt16", Uint16).WithGoType(reflect.TypeFor[uint16]())
	Int32Type    = newType("Int32", Int32).WithGoType(reflect.TypeFor[int32]())
	Uint32Type   = newType("UInt32", Uint32).WithGoType(reflect.TypeFor[uint32]())
	Int64Type    = newType("Int64", Int64).WithGoType(reflect.TypeFor[int64]())
	Uint64Type   = newType("UInt64", Uint64).WithGoType(reflect.TypeFor[uint64]())
	Float32Type  = newType("Single", Float32).WithGoType(reflect.TypeFor[float32]())
	Float64Type  = newType("Double", Float64).WithGoType(reflect.TypeFor[float64]())
	DecimalType  = newType("Decimal", Decimal).WithGoType(reflect.TypeFor[*apd.Decimal]())
	DateTimeType = newType("DateTime", DateTime).WithGoType(reflect.TypeFor[time.Time]())
	TimeSpanType = newType("TimeSpan", TimeSpan).WithGoType(reflect.TypeFor[time.Duration]())
	GuidType     = newType("Guid", Guid).WithGoType(reflect.TypeFor[uuid.UUID]())
	MathType     = newType("Math", Static)
	ConvertType  = newType("Convert", Static)
)

// Predefined lists the allow-listed types in keyword-table order.
var Predefined = []*Type{
	ObjectType,
	BoolType,
	CharType,
	StringType,
	Int8Type,
	Uint8Type,
	Int16Type,
	Uint16Type,
	Int32Type,
	Uint32Type,
	Int64Type,
	Uint64Type,
	Float32Type,
	Float64Type,
	DecimalType,
	DateTimeType,
	TimeSpanType,
	GuidType,
	MathType,
	ConvertType,
}

// IsPredefined reports whether t is one of the allow-listed types.
func IsPredefined(t *Type) bool {
	for _, p := range Predefined {
		if p == t {
			return true
		}
	}
	return false
}

// Primitive returns the predefined type of a kind.
func Primitive(k Kind) *Type {
	switch k {
	case Bool:
		return BoolType
	case Char:
		return CharType
	case String:
		return StringType
	case Int8:
		return Int8Type
	case Uint8:
		return Uint8Type
	case Int16:
		return Int16Type
	case Uint16:
		return Uint16Type
	case Int32:
		return Int32Type
	case Uint32:
		return Uint32Type
	case Int64:
		return Int64Type
	case Uint64:
		return Uint64Type
	case Float32:
		return Float32Type
	case Float64:
		return Float64Type
	case Decimal:
		return DecimalType
	case DateTime:
		return DateTimeType
	case TimeSpan:
		return TimeSpanType
	case Guid:
		return GuidType
	case Object:
		return ObjectType
	}
	return nil
}

// LookupPredefined finds a predefined type by name, ignoring case.
func LookupPredefined(name string) *Type {
	for _, p := range Predefined {
		if SameName(p.name, name) {
			return p
		}
	}
	return nil
}

// StringCompare is String.Compare(String, String), the ordinal three-way
// comparison string relational operators are rewritten to.
var StringCompare *Member

func init() {
	ObjectType.desc = NewMemberSet(ObjectType, objectMembers())
	BoolType.desc = NewMemberSet(BoolType, boolMembers())
	CharType.desc = NewMemberSet(CharType, charMembers())
	StringType.desc = NewMemberSet(StringType, stringMembers())
	for _, t := range []*Type{Int8Type, Uint8Type, Int16Type, Uint16Type, Int32Type, Uint32Type, Int64Type, Uint64Type, Float32Type, Float64Type, DecimalType} {
		t.desc = NewMemberSet(t, numericMembers(t))
	}
	DateTimeType.desc = NewMemberSet(DateTimeType, dateTimeMembers())
	TimeSpanType.desc = NewMemberSet(TimeSpanType, timeSpanMembers())
	GuidType.desc = NewMemberSet(GuidType, guidMembers())
	MathType.desc = NewMemberSet(MathType, mathMembers())
	ConvertType.desc = NewMemberSet(ConvertType, convertMembers())

	for _, m := range StringType.Members() {
		if m.Name == "Compare" && m.Static {
			StringCompare = m
			break
		}
	}
}

// numeric limits per kind, shared by MaxValue/MinValue and range checks.
var (
	minInt = map[Kind]int64{Int8: math.MinInt8, Int16: math.MinInt16, Int32: math.MinInt32, Int64: math.MinInt64}
	maxInt = map[Kind]int64{Int8: math.MaxInt8, Int16: math.MaxInt16, Int32: math.MaxInt32, Int64: math.MaxInt64}
	maxUint = map[Kind]uint64{Uint8: math.MaxUint8, Uint16: math.MaxUint16, Uint32: math.MaxUint32, Uint64: math.MaxUint64}
)
