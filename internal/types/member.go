package types

import "errors"

// ErrNilTarget is returned by member accessors invoked on a null value.
var ErrNilTarget = errors.New("object reference not set to an instance")

// IsNilTarget reports whether err was caused by accessing a member of a
// null value.
func IsNilTarget(err error) bool {
	return errors.Is(err, ErrNilTarget)
}

// MemberKind classifies a Member.
type MemberKind uint8

const (
	Field MemberKind = iota
	Property
	Method
	Indexer
	Constructor
)

func (k MemberKind) String() string {
	switch k {
	case Field:
		return "field"
	case Property:
		return "property"
	case Method:
		return "method"
	case Indexer:
		return "indexer"
	case Constructor:
		return "constructor"
	}
	return "member"
}

// Member describes a field, property, method, indexer or constructor.
//
// Get implements fields and properties; Call implements methods, indexers
// and constructors. Static members receive a nil target.
type Member struct {
	Name   string
	Kind   MemberKind
	Type   *Type // value type, or return type for invocable members
	Params []Param
	Static bool
	Owner  *Type

	Get  func(target any) (any, error)
	Call func(target any, args []any) (any, error)
}

// IsInvocable reports whether the member takes an argument list.
func (m *Member) IsInvocable() bool {
	return m.Kind == Method || m.Kind == Indexer || m.Kind == Constructor
}

// Param is one formal parameter of an invocable member.
type Param struct {
	Name string
	Type *Type
	Out  bool
}

// Descriptor is the capability a host supplies to describe a type.
type Descriptor interface {
	// Members lists the members declared directly on the type.
	Members() []*Member
	// Bases lists the direct base types in lookup order. For interfaces,
	// the interfaces the type extends.
	Bases() []*Type
}

// Enumerable is implemented by descriptors of types that can be iterated.
type Enumerable interface {
	ElementType() *Type
}

// MemberSet is a fixed Descriptor.
type MemberSet struct {
	members []*Member
	bases   []*Type
	elem    *Type
}

// NewMemberSet builds a descriptor from a member list and base types.
// Members without an Owner are assigned owner.
func NewMemberSet(owner *Type, members []*Member, bases ...*Type) *MemberSet {
	for _, m := range members {
		if m.Owner == nil {
			m.Owner = owner
		}
	}
	return &MemberSet{members: members, bases: bases}
}

// WithElement marks the described type as enumerable over elem.
func (s *MemberSet) WithElement(elem *Type) *MemberSet {
	s.elem = elem
	return s
}

func (s *MemberSet) Members() []*Member { return s.members }

func (s *MemberSet) Bases() []*Type { return s.bases }

func (s *MemberSet) ElementType() *Type { return s.elem }

// P is shorthand for an input Param.
func P(name string, t *Type) Param {
	return Param{Name: name, Type: t}
}
