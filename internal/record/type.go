package record

import (
	"fmt"
	"strings"

	"github.com/roach88/dynq/internal/expr"
	"github.com/roach88/dynq/internal/ir"
	"github.com/roach88/dynq/internal/types"
)

// Type is the descriptor of a synthesized record type. It exposes one
// read-only property per field and a positional constructor.
type Type struct {
	typ     *types.Type
	schema  Schema
	members []*types.Member
	ctor    *types.Member
}

func newType(name string, s Schema) *Type {
	rt := &Type{schema: append(Schema(nil), s...)}
	rt.typ = types.NewRecord(name, rt)
	params := make([]types.Param, len(s))
	for i, f := range rt.schema {
		i := i
		rt.members = append(rt.members, &types.Member{
			Name:  f.Name,
			Kind:  types.Property,
			Type:  f.Type,
			Owner: rt.typ,
			Get: func(v any) (any, error) {
				rv, ok := v.(*Value)
				if !ok || rv == nil {
					return nil, fmt.Errorf("%s: not a record value: %T", name, v)
				}
				return rv.values[i], nil
			},
		})
		params[i] = types.P(f.Name, f.Type)
	}
	rt.ctor = &types.Member{
		Name:   name,
		Kind:   types.Constructor,
		Type:   rt.typ,
		Params: params,
		Owner:  rt.typ,
		Call: func(_ any, args []any) (any, error) {
			return rt.New(args...)
		},
	}
	rt.members = append(rt.members, rt.ctor)
	return rt
}

// Of returns the record descriptor of t, if t is a synthesized record type.
func Of(t *types.Type) (*Type, bool) {
	rt, ok := t.Descriptor().(*Type)
	return rt, ok
}

// Type returns the compiler type described by rt.
func (rt *Type) Type() *types.Type { return rt.typ }

// Schema returns the field list. Callers must not modify it.
func (rt *Type) Schema() Schema { return rt.schema }

// Constructor returns the positional constructor member.
func (rt *Type) Constructor() *types.Member { return rt.ctor }

func (rt *Type) Members() []*types.Member { return rt.members }

func (rt *Type) Bases() []*types.Type { return nil }

// New constructs a record value from field values in schema order.
func (rt *Type) New(values ...any) (*Value, error) {
	if len(values) != len(rt.schema) {
		return nil, fmt.Errorf("%s: expected %d values, got %d", rt.typ.Name(), len(rt.schema), len(values))
	}
	return &Value{rt: rt, values: append([]any(nil), values...)}, nil
}

// Value is an instance of a record type.
type Value struct {
	rt     *Type
	values []any
}

// RecordType returns the record type of v.
func (v *Value) RecordType() *Type { return v.rt }

// Len returns the number of fields.
func (v *Value) Len() int { return len(v.values) }

// Get returns the value of the i-th field.
func (v *Value) Get(i int) any { return v.values[i] }

// Field returns the value of the field called name.
func (v *Value) Field(name string) (any, bool) {
	i := v.rt.schema.Index(name)
	if i < 0 {
		return nil, false
	}
	return v.values[i], true
}

// Equal reports whether other is a value of the same record type whose
// fields all compare equal. Two zero-field values of the same type are
// equal.
func (v *Value) Equal(other any) bool {
	o, ok := other.(*Value)
	if !ok || o == nil || o.rt != v.rt {
		return false
	}
	for i := range v.values {
		if !types.EqualValues(v.values[i], o.values[i]) {
			return false
		}
	}
	return true
}

// Hash XORs the hashes of all fields. A zero-field value hashes to zero.
func (v *Value) Hash() uint64 {
	var h uint64
	for _, x := range v.values {
		h ^= types.HashValue(x)
	}
	return h
}

// String renders v as {Name=value, ...}.
func (v *Value) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range v.rt.schema {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteByte('=')
		b.WriteString(types.FormatValue(v.values[i], f.Type))
	}
	b.WriteByte('}')
	return b.String()
}

// Dump converts v to an IRObject keyed by field name.
func (v *Value) Dump() ir.IRObject {
	obj := ir.IRObject{}
	for i, f := range v.rt.schema {
		obj[f.Name] = expr.DumpValue(v.values[i], f.Type)
	}
	return obj
}
