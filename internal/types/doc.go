// Package types provides the type model the expression compiler reasons about.
//
// A Type is an immutable descriptor identified by pointer. Predefined types
// (Int32, String, DateTime, ...) are package-level singletons; composite
// types (nullable wrappers, arrays, sequences) are interned so that the same
// composition always yields the same *Type.
//
// Host types are described through the Descriptor capability interface: a
// member list (properties, fields, methods, indexers, constructors) and an
// ordered list of base types. The compiler never inspects Go values
// directly; Registry adapts Go structs to descriptors via reflection and
// package schema builds map-backed descriptors from schema files.
//
// Runtime value representation per kind:
//
//	Bool      bool             Char      rune
//	String    string           Int8..Uint64  int8 .. uint64
//	Float32   float32          Float64   float64
//	Decimal   *apd.Decimal     DateTime  time.Time
//	TimeSpan  time.Duration    Guid      uuid.UUID
//	Enum      int64            Nullable  nil or the underlying value
//
// Member implementations (Get/Call) receive and return values in this
// representation.
package types
