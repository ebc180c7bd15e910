package expr

import (
	"github.com/roach88/dynq/internal/types"
)

// Expr is a node of a compiled expression tree.
//
// This is a sealed interface - only types in this package implement it.
// Consumers (the evaluator, the SQL lowering, the formatter) switch over the
// concrete node types exhaustively.
type Expr interface {
	// Type returns the static type of the node.
	Type() *types.Type
	exprNode() // Marker method - seals interface to this package
}

// Constant is a literal or folded value.
//
// Literal keeps the source text of numeric and string literals so that
// promotion can re-type them directly instead of converting the value. A
// constant produced by promotion has no Literal.
type Constant struct {
	Value   any
	Typ     *types.Type
	Literal string
}

func (c *Constant) Type() *types.Type { return c.Typ }
func (*Constant) exprNode()            {}

// IsNull reports whether c is the untyped null literal.
func (c *Constant) IsNull() bool { return c.Typ.Kind() == types.Null }

// Parameter is a named input of the expression. The implicit element
// parameter has an empty Name and is written "it".
type Parameter struct {
	Name string
	Typ  *types.Type
}

func (p *Parameter) Type() *types.Type { return p.Typ }
func (*Parameter) exprNode()            {}

// MemberAccess reads a field or property. Target is nil for static members.
type MemberAccess struct {
	Target Expr
	Member *types.Member
}

func (m *MemberAccess) Type() *types.Type { return m.Member.Type }
func (*MemberAccess) exprNode()            {}

// Call invokes a method or constructor. Target is nil for static methods
// and constructors.
type Call struct {
	Target Expr
	Method *types.Member
	Args   []Expr
}

func (c *Call) Type() *types.Type { return c.Method.Type }
func (*Call) exprNode()            {}

// UnaryOp identifies a unary operator.
type UnaryOp uint8

const (
	Negate UnaryOp = iota
	Not
	// Convert is an unchecked conversion to the node type.
	Convert
	// ConvertChecked fails on integer overflow.
	ConvertChecked
)

func (op UnaryOp) String() string {
	switch op {
	case Negate:
		return "neg"
	case Not:
		return "not"
	case Convert:
		return "convert"
	case ConvertChecked:
		return "convert!"
	}
	return "unary?"
}

// Unary applies a unary operator. For conversions Typ is the target type.
type Unary struct {
	Op      UnaryOp
	Operand Expr
	Typ     *types.Type
}

func (u *Unary) Type() *types.Type { return u.Typ }
func (*Unary) exprNode()            {}

// BinaryOp identifies a binary operator.
type BinaryOp uint8

const (
	Or BinaryOp = iota
	And
	Equal
	NotEqual
	Less
	LessEqual
	Greater
	GreaterEqual
	Add
	Subtract
	Multiply
	Divide
	Modulo
	// Concat joins the string forms of both operands.
	Concat
)

var binaryNames = [...]string{
	Or:           "or",
	And:          "and",
	Equal:        "eq",
	NotEqual:     "ne",
	Less:         "lt",
	LessEqual:    "le",
	Greater:      "gt",
	GreaterEqual: "ge",
	Add:          "add",
	Subtract:     "sub",
	Multiply:     "mul",
	Divide:       "div",
	Modulo:       "mod",
	Concat:       "concat",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryNames) {
		return binaryNames[op]
	}
	return "binary?"
}

// IsComparison reports whether op yields a Boolean from two operands of
// the same type.
func (op BinaryOp) IsComparison() bool {
	return op >= Equal && op <= GreaterEqual
}

// Binary applies a binary operator. Both operands have been promoted to the
// operand types of the resolved signature.
type Binary struct {
	Op          BinaryOp
	Left, Right Expr
	Typ         *types.Type
}

func (b *Binary) Type() *types.Type { return b.Typ }
func (*Binary) exprNode()            {}

// Conditional selects Then or Else by Test. Both branches have the same
// type.
type Conditional struct {
	Test, Then, Else Expr
}

func (c *Conditional) Type() *types.Type { return c.Then.Type() }
func (*Conditional) exprNode()            {}

// Invoke applies a lambda supplied as an external value.
type Invoke struct {
	Lambda *Lambda
	Args   []Expr
}

func (i *Invoke) Type() *types.Type { return i.Lambda.Type() }
func (*Invoke) exprNode()            {}

// Index reads an element. Indexer is nil for array element access.
type Index struct {
	Target  Expr
	Indexer *types.Member
	Args    []Expr
}

func (i *Index) Type() *types.Type {
	if i.Indexer != nil {
		return i.Indexer.Type
	}
	return i.Target.Type().Elem()
}
func (*Index) exprNode() {}

// Field is one named value of a New record.
type Field struct {
	Name  string
	Value Expr
}

// New constructs a value of a synthesized record type.
type New struct {
	Record *types.Type
	Fields []Field
}

func (n *New) Type() *types.Type { return n.Record }
func (*New) exprNode()            {}

// Lambda is an expression closed over its parameters. Its Type is the type
// of the body.
type Lambda struct {
	Params []*Parameter
	Body   Expr
}

func (l *Lambda) Type() *types.Type { return l.Body.Type() }
func (*Lambda) exprNode()            {}

// AggregateOp identifies a sequence aggregate.
type AggregateOp uint8

const (
	Where AggregateOp = iota
	Any
	All
	Count
	Min
	Max
	Sum
	Average
)

var aggregateNames = [...]string{
	Where:   "Where",
	Any:     "Any",
	All:     "All",
	Count:   "Count",
	Min:     "Min",
	Max:     "Max",
	Sum:     "Sum",
	Average: "Average",
}

func (op AggregateOp) String() string {
	if int(op) < len(aggregateNames) {
		return aggregateNames[op]
	}
	return "aggregate?"
}

// Aggregate applies a sequence operator to Source. Selector is nil for the
// argument-less forms of Any and Count.
type Aggregate struct {
	Op       AggregateOp
	Source   Expr
	Selector *Lambda
	Typ      *types.Type
}

func (a *Aggregate) Type() *types.Type { return a.Typ }
func (*Aggregate) exprNode()            {}
