package types

// Kind classifies a Type.
type Kind uint8

const (
	Invalid Kind = iota
	Void
	Null
	Object
	Interface
	Bool
	Char
	String
	Int8
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
	Float32
	Float64
	Decimal
	DateTime
	TimeSpan
	Guid
	Enum
	Nullable
	Array
	Sequence
	Record
	Static
)

var kindNames = [...]string{
	Invalid:   "invalid",
	Void:      "void",
	Null:      "null",
	Object:    "object",
	Interface: "interface",
	Bool:      "bool",
	Char:      "char",
	String:    "string",
	Int8:      "int8",
	Uint8:     "uint8",
	Int16:     "int16",
	Uint16:    "uint16",
	Int32:     "int32",
	Uint32:    "uint32",
	Int64:     "int64",
	Uint64:    "uint64",
	Float32:   "float32",
	Float64:   "float64",
	Decimal:   "decimal",
	DateTime:  "datetime",
	TimeSpan:  "timespan",
	Guid:      "guid",
	Enum:      "enum",
	Nullable:  "nullable",
	Array:     "array",
	Sequence:  "sequence",
	Record:    "record",
	Static:    "static",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// IsSignedIntegral reports whether k is a signed integer kind.
func (k Kind) IsSignedIntegral() bool {
	switch k {
	case Int8, Int16, Int32, Int64:
		return true
	}
	return false
}

// IsUnsignedIntegral reports whether k is an unsigned integer kind.
func (k Kind) IsUnsignedIntegral() bool {
	switch k {
	case Uint8, Uint16, Uint32, Uint64:
		return true
	}
	return false
}

// IsIntegral reports whether k is any integer kind.
func (k Kind) IsIntegral() bool {
	return k.IsSignedIntegral() || k.IsUnsignedIntegral()
}

// IsNumeric reports whether k is an integer, floating point or decimal kind.
func (k Kind) IsNumeric() bool {
	switch k {
	case Float32, Float64, Decimal:
		return true
	}
	return k.IsIntegral()
}
