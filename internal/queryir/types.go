package queryir

import (
	"github.com/roach88/dynq/internal/ir"
	"github.com/roach88/dynq/internal/types"
)

// Query represents an abstract query in the QueryIR.
//
// This is a sealed interface - only types in this package implement it.
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Predicate represents a filter condition.
//
// This is a sealed interface - only types in this package implement it.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Operand represents a scalar value computed per row.
//
// This is a sealed interface - only types in this package implement it.
type Operand interface {
	// ValueType returns the static type of the operand.
	ValueType() *types.Type
	operandNode() // Marker method - seals interface to this package
}

// Select represents table access with filtering and ordering.
//
// Semantics:
//
//	SELECT <bindings> FROM <from> WHERE <filter> ORDER BY <order>
//
// Bindings are explicit; Lower fills them with every scalar column of the
// element type when no projection is given. Rows with equal OrderBy keys
// keep their insertion order.
type Select struct {
	From     string
	Bindings []Binding
	Filter   Predicate // nil = no filter
	OrderBy  []OrderKey
}

func (*Select) queryNode() {}

// Binding names one output column.
type Binding struct {
	Expr Operand
	As   string
}

// OrderKey is one ORDER BY term. Nulls order first ascending and last
// descending.
type OrderKey struct {
	Expr       Operand
	Descending bool
}

// CompareOp identifies a comparison.
type CompareOp uint8

const (
	Eq CompareOp = iota
	Ne
	Lt
	Le
	Gt
	Ge
	// Is is null-safe equality: NULL IS NULL is true.
	Is
	// IsNot is null-safe inequality.
	IsNot
)

var compareNames = [...]string{
	Eq:    "=",
	Ne:    "<>",
	Lt:    "<",
	Le:    "<=",
	Gt:    ">",
	Ge:    ">=",
	Is:    "IS",
	IsNot: "IS NOT",
}

func (op CompareOp) String() string {
	if int(op) < len(compareNames) {
		return compareNames[op]
	}
	return "?"
}

// NullHandling selects how a comparison with a NULL operand resolves.
type NullHandling uint8

const (
	// NullUnknown keeps the SQL result: the comparison is unknown.
	NullUnknown NullHandling = iota
	// NullFalse makes the comparison false, including under Not.
	NullFalse
	// NullLowest orders NULL before every value, as ordinal string
	// comparison does.
	NullLowest
)

func (h NullHandling) String() string {
	switch h {
	case NullUnknown:
		return "unknown"
	case NullFalse:
		return "false"
	case NullLowest:
		return "lowest"
	}
	return "nulls?"
}

// Compare compares two operands.
type Compare struct {
	Op          CompareOp
	Left, Right Operand
	Nulls       NullHandling
}

func (*Compare) predicateNode() {}

// And represents a conjunction of predicates (empty = always true).
type And struct {
	Predicates []Predicate
}

func (*And) predicateNode() {}

// Or represents a disjunction of predicates (empty = always false).
type Or struct {
	Predicates []Predicate
}

func (*Or) predicateNode() {}

// Not negates a predicate.
type Not struct {
	Predicate Predicate
}

func (*Not) predicateNode() {}

// IsNull tests an operand for NULL.
type IsNull struct {
	Operand Operand
	Negated bool
}

func (*IsNull) predicateNode() {}

// Truth tests a Boolean operand.
type Truth struct {
	Operand Operand
}

func (*Truth) predicateNode() {}

// MatchKind selects the substring test of a Match.
type MatchKind uint8

const (
	Prefix MatchKind = iota
	Suffix
	Contains
)

func (k MatchKind) String() string {
	switch k {
	case Prefix:
		return "prefix"
	case Suffix:
		return "suffix"
	case Contains:
		return "contains"
	}
	return "match?"
}

// Match is a case-sensitive substring test of Operand against Pattern.
type Match struct {
	Kind    MatchKind
	Operand Operand
	Pattern Operand
}

func (*Match) predicateNode() {}

// Column references a column of the source table.
type Column struct {
	Name string
	Type *types.Type
}

func (c *Column) ValueType() *types.Type { return c.Type }
func (*Column) operandNode()             {}

// Literal is a constant. Value is IRNull for NULL, IRString for text and
// for the decimal text of floating point and decimal constants.
type Literal struct {
	Value ir.IRValue
	Type  *types.Type
}

func (l *Literal) ValueType() *types.Type { return l.Type }
func (*Literal) operandNode()             {}

// ArithOp identifies an arithmetic operator.
type ArithOp uint8

const (
	Add ArithOp = iota
	Sub
	Mul
	Div
	Mod
	// Concat joins the text forms of both operands.
	Concat
)

var arithNames = [...]string{
	Add:    "+",
	Sub:    "-",
	Mul:    "*",
	Div:    "/",
	Mod:    "%",
	Concat: "||",
}

func (op ArithOp) String() string {
	if int(op) < len(arithNames) {
		return arithNames[op]
	}
	return "?"
}

// Arith applies an arithmetic operator.
type Arith struct {
	Op          ArithOp
	Left, Right Operand
	Type        *types.Type
}

func (a *Arith) ValueType() *types.Type { return a.Type }
func (*Arith) operandNode()             {}

// Negate is arithmetic negation.
type Negate struct {
	Operand Operand
}

func (n *Negate) ValueType() *types.Type { return n.Operand.ValueType() }
func (*Negate) operandNode()             {}

// Func names a scalar function.
type Func string

const (
	FnUpper   Func = "UPPER"
	FnLower   Func = "LOWER"
	FnTrim    Func = "TRIM"
	FnLength  Func = "LENGTH"
	FnInteger Func = "INTEGER" // truncating cast
	FnReal    Func = "REAL"    // cast to floating point
)

// Call applies a scalar function.
type Call struct {
	Func Func
	Args []Operand
	Type *types.Type
}

func (c *Call) ValueType() *types.Type { return c.Type }
func (*Call) operandNode()             {}

// Case selects Then or Else by When.
type Case struct {
	When       Predicate
	Then, Else Operand
}

func (c *Case) ValueType() *types.Type { return c.Then.ValueType() }
func (*Case) operandNode()             {}
