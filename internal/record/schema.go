// Package record synthesizes structural record types for projections.
//
// A projection such as new(Age as A, Name) has the schema
// [(A, Int32), (Name, String)]. Each distinct schema maps to exactly one
// record type for the lifetime of a Cache, so two projections with the same
// fields in the same order produce the same *types.Type and their values
// compare structurally. Field order is significant.
package record

import (
	"strings"

	"github.com/roach88/dynq/internal/types"
)

// Field is one named, typed slot of a schema.
type Field struct {
	Name string
	Type *types.Type
}

// Schema is an ordered list of fields.
type Schema []Field

// Equal reports whether s and o have the same names and types at every
// position. Names compare exactly.
func (s Schema) Equal(o Schema) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i].Name != o[i].Name || s[i].Type != o[i].Type {
			return false
		}
	}
	return true
}

// Hash combines each field's name hash and type hash with XOR.
func (s Schema) Hash() uint64 {
	var h uint64
	for _, f := range s {
		h ^= types.HashString(f.Name) ^ typeHash(f.Type)
	}
	return h
}

// typeHash spreads a type ID over 64 bits (splitmix64 finalizer).
func typeHash(t *types.Type) uint64 {
	x := t.ID()
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// Index returns the position of the field called name, or -1.
func (s Schema) Index(name string) int {
	for i, f := range s {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func (s Schema) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range s {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteByte(':')
		b.WriteString(f.Type.String())
	}
	b.WriteByte('}')
	return b.String()
}
