package types

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
)

var nextTypeID atomic.Uint64

// Type describes a type known to the compiler.
//
// Types are compared by identity. Once a Type has been handed to the
// compiler it must not be modified; Bind exists only so that recursive
// descriptors can refer to the type they describe.
type Type struct {
	id     uint64
	name   string
	kind   Kind
	elem   *Type
	rank   int
	enum   []EnumMember
	desc   Descriptor
	goType reflect.Type
}

// EnumMember is a named constant of an enumeration type.
type EnumMember struct {
	Name  string
	Value int64
}

func newType(name string, kind Kind) *Type {
	return &Type{id: nextTypeID.Add(1), name: name, kind: kind}
}

// NewObject creates a reference type with the given name. Members are
// attached with Bind.
func NewObject(name string) *Type {
	return newType(name, Object)
}

// NewInterface creates an interface type with the given name. Its descriptor
// Bases are the interfaces it extends.
func NewInterface(name string) *Type {
	return newType(name, Interface)
}

// NewRecord creates a record type. Used by package record.
func NewRecord(name string, d Descriptor) *Type {
	t := newType(name, Record)
	t.desc = d
	return t
}

// NewEnum creates an enumeration type backed by an integral type.
func NewEnum(name string, underlying *Type, members ...EnumMember) *Type {
	if underlying == nil {
		underlying = Int32Type
	}
	t := newType(name, Enum)
	t.elem = underlying
	t.enum = append([]EnumMember(nil), members...)
	return t
}

// Bind attaches a descriptor to a type created with NewObject or
// NewInterface. It panics if the type already has one.
func (t *Type) Bind(d Descriptor) *Type {
	if t.desc != nil {
		panic(fmt.Sprintf("types: descriptor already bound for %s", t.name))
	}
	t.desc = d
	return t
}

// WithGoType records the Go type values of t are represented with.
func (t *Type) WithGoType(rt reflect.Type) *Type {
	t.goType = rt
	return t
}

// ID returns a process-unique identifier for t.
func (t *Type) ID() uint64 { return t.id }

// Kind returns the kind of t.
func (t *Type) Kind() Kind { return t.kind }

// Name returns the short name of t.
func (t *Type) Name() string { return t.name }

// Elem returns the underlying type of a nullable, the element type of an
// array or sequence, or the integral type backing an enum.
func (t *Type) Elem() *Type { return t.elem }

// Rank returns the number of dimensions of an array type.
func (t *Type) Rank() int { return t.rank }

// EnumMembers returns the named constants of an enum type.
func (t *Type) EnumMembers() []EnumMember { return t.enum }

// Descriptor returns the member descriptor of t, if any.
func (t *Type) Descriptor() Descriptor { return t.desc }

// GoType returns the Go type used to represent values of t, if known.
func (t *Type) GoType() reflect.Type { return t.goType }

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.kind {
	case Nullable:
		return t.elem.String() + "?"
	case Array:
		if t.rank > 1 {
			return t.elem.String() + "[" + strings.Repeat(",", t.rank-1) + "]"
		}
		return t.elem.String() + "[]"
	case Sequence:
		return "IEnumerable<" + t.elem.String() + ">"
	}
	return t.name
}

// IsValueType reports whether values of t are copied by value and can never
// be null unless wrapped in a nullable.
func (t *Type) IsValueType() bool {
	switch t.kind {
	case Bool, Char, DateTime, TimeSpan, Guid, Enum, Nullable:
		return true
	}
	return t.kind.IsNumeric()
}

// IsNullable reports whether t is a nullable wrapper.
func (t *Type) IsNullable() bool { return t.kind == Nullable }

// NonNullable strips a nullable wrapper.
func (t *Type) NonNullable() *Type {
	if t.kind == Nullable {
		return t.elem
	}
	return t
}

// IsEnum reports whether t, ignoring a nullable wrapper, is an enum.
func (t *Type) IsEnum() bool { return t.NonNullable().kind == Enum }

// IsNumeric reports whether t, ignoring a nullable wrapper, is numeric.
func (t *Type) IsNumeric() bool { return t.NonNullable().kind.IsNumeric() }

// IsSignedIntegral reports whether t, ignoring a nullable wrapper, is a
// signed integer type.
func (t *Type) IsSignedIntegral() bool { return t.NonNullable().kind.IsSignedIntegral() }

// IsUnsignedIntegral reports whether t, ignoring a nullable wrapper, is an
// unsigned integer type.
func (t *Type) IsUnsignedIntegral() bool { return t.NonNullable().kind.IsUnsignedIntegral() }

// IsInterface reports whether t is an interface type.
func (t *Type) IsInterface() bool { return t.kind == Interface }

// CanBeNull reports whether null is a valid value of t.
func (t *Type) CanBeNull() bool { return !t.IsValueType() || t.kind == Nullable }

// Members returns the members declared directly on t.
func (t *Type) Members() []*Member {
	if t.desc == nil {
		return nil
	}
	return t.desc.Members()
}

// Bases returns the direct base types of t. For interfaces these are the
// interfaces it extends.
func (t *Type) Bases() []*Type {
	if t.desc == nil {
		return nil
	}
	return t.desc.Bases()
}

// ElementType reports the element type of an enumerable type. Strings are
// not treated as enumerable.
func (t *Type) ElementType() (*Type, bool) {
	switch t.kind {
	case Array, Sequence:
		return t.elem, true
	case Object, Interface:
		if e, ok := t.desc.(Enumerable); ok && e.ElementType() != nil {
			return e.ElementType(), true
		}
	}
	return nil, false
}

// EnumValue looks up an enum member by name, ignoring case.
func (t *Type) EnumValue(name string) (int64, bool) {
	for _, m := range t.enum {
		if SameName(m.Name, name) {
			return m.Value, true
		}
	}
	return 0, false
}

// EnumName returns the member name for v, or "" if none matches.
func (t *Type) EnumName(v int64) string {
	for _, m := range t.enum {
		if m.Value == v {
			return m.Name
		}
	}
	return ""
}

type compositeKey struct {
	kind Kind
	elem *Type
	rank int
}

var (
	compositeMu sync.Mutex
	composites  = map[compositeKey]*Type{}
)

func composite(kind Kind, elem *Type, rank int, build func(*Type)) *Type {
	key := compositeKey{kind: kind, elem: elem, rank: rank}
	compositeMu.Lock()
	defer compositeMu.Unlock()
	if t, ok := composites[key]; ok {
		return t
	}
	t := newType("", kind)
	t.elem = elem
	t.rank = rank
	build(t)
	composites[key] = t
	return t
}

// NullableOf returns the nullable wrapper of a value type. Reference types
// and nullable types are returned unchanged.
func NullableOf(t *Type) *Type {
	if !t.IsValueType() || t.kind == Nullable {
		return t
	}
	return composite(Nullable, t, 0, func(n *Type) {
		n.name = t.name + "?"
		n.desc = &MemberSet{members: []*Member{
			{Name: "HasValue", Kind: Property, Type: BoolType, Owner: n, Get: func(v any) (any, error) { return v != nil, nil }},
			{Name: "Value", Kind: Property, Type: t, Owner: n, Get: nullableValue},
		}}
	})
}

func nullableValue(v any) (any, error) {
	if v == nil {
		return nil, fmt.Errorf("nullable object must have a value")
	}
	return v, nil
}

// ArrayOf returns the array type with the given element type and rank.
func ArrayOf(elem *Type, rank int) *Type {
	if rank < 1 {
		rank = 1
	}
	return composite(Array, elem, rank, func(a *Type) {
		a.name = elem.name + "[]"
		a.desc = &MemberSet{members: []*Member{
			{Name: "Length", Kind: Property, Type: Int32Type, Owner: a, Get: func(v any) (any, error) {
				rv := reflect.ValueOf(v)
				if !rv.IsValid() {
					return nil, ErrNilTarget
				}
				return int32(rv.Len()), nil
			}},
		}}
	})
}

// SequenceOf returns the enumerable sequence type of elem.
func SequenceOf(elem *Type) *Type {
	return composite(Sequence, elem, 0, func(s *Type) {
		s.name = "IEnumerable<" + elem.name + ">"
		s.desc = &MemberSet{}
	})
}

// AssignableFrom reports whether a value of type src can be used where dst
// is expected without conversion.
func AssignableFrom(dst, src *Type) bool {
	if dst == src {
		return true
	}
	if src.kind == Null {
		return dst.CanBeNull()
	}
	if dst == ObjectType {
		return true
	}
	if dst.kind == Sequence {
		if e, ok := src.ElementType(); ok && e == dst.elem {
			return true
		}
	}
	if dst.kind != Object && dst.kind != Interface {
		return false
	}
	seen := map[*Type]bool{}
	var walk func(t *Type) bool
	walk = func(t *Type) bool {
		for _, b := range t.Bases() {
			if b == dst {
				return true
			}
			if !seen[b] {
				seen[b] = true
				if walk(b) {
					return true
				}
			}
		}
		return false
	}
	return walk(src)
}
