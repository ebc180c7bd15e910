package queryir

import (
	"errors"
	"fmt"

	"github.com/roach88/dynq/internal/expr"
	"github.com/roach88/dynq/internal/ir"
	"github.com/roach88/dynq/internal/parser"
	"github.com/roach88/dynq/internal/types"
)

// LowerError reports an expression node with no QueryIR equivalent.
type LowerError struct {
	Message string
	Node    string // expr.Format of the node
}

func (e *LowerError) Error() string {
	if e.Node == "" {
		return "cannot lower: " + e.Message
	}
	return fmt.Sprintf("cannot lower %s: %s", e.Node, e.Message)
}

// IsLowerError reports whether err is or wraps a *LowerError.
func IsLowerError(err error) bool {
	var le *LowerError
	return errors.As(err, &le)
}

func unsupported(n expr.Expr, format string, args ...any) error {
	return &LowerError{Message: fmt.Sprintf(format, args...), Node: expr.Format(n)}
}

// Request describes one query over a table whose rows are values of
// Element.
type Request struct {
	Table   string
	Element *types.Type

	// Where is a Boolean lambda over one element parameter. Optional.
	Where *expr.Lambda

	// Select is a projection over one element parameter. A New body binds
	// one column per record field. Optional: every scalar column of
	// Element is selected when nil.
	Select *expr.Lambda

	// OrderBy keys refer to Param.
	OrderBy []parser.Ordering
	Param   *expr.Parameter
}

// Lower translates a request into a Select.
func Lower(r Request) (*Select, error) {
	if r.Table == "" {
		return nil, &LowerError{Message: "table name is required"}
	}
	l := &lowerer{elem: map[*expr.Parameter]bool{}}
	for _, lam := range []*expr.Lambda{r.Where, r.Select} {
		if lam == nil {
			continue
		}
		if len(lam.Params) != 1 {
			return nil, &LowerError{Message: fmt.Sprintf("lambda must have one parameter, got %d", len(lam.Params))}
		}
		l.elem[lam.Params[0]] = true
	}
	if r.Param != nil {
		l.elem[r.Param] = true
	}

	sel := &Select{From: r.Table}
	if r.Select != nil {
		bindings, err := l.bindings(r.Select.Body)
		if err != nil {
			return nil, err
		}
		sel.Bindings = bindings
	} else if r.Element != nil {
		for _, c := range Columns(r.Element) {
			sel.Bindings = append(sel.Bindings, Binding{Expr: c, As: c.Name})
		}
	}

	if r.Where != nil {
		if r.Where.Type().NonNullable() != types.BoolType {
			return nil, unsupported(r.Where.Body, "filter must be Boolean, not %s", r.Where.Type())
		}
		p, err := l.predicate(r.Where.Body)
		if err != nil {
			return nil, err
		}
		sel.Filter = p
	}

	for _, o := range r.OrderBy {
		op, err := l.operand(o.Selector)
		if err != nil {
			return nil, fmt.Errorf("order key: %w", err)
		}
		sel.OrderBy = append(sel.OrderBy, OrderKey{Expr: op, Descending: !o.Ascending})
	}
	return sel, nil
}

type lowerer struct {
	elem map[*expr.Parameter]bool
}

func (l *lowerer) bindings(body expr.Expr) ([]Binding, error) {
	if n, ok := body.(*expr.New); ok {
		out := make([]Binding, 0, len(n.Fields))
		for _, f := range n.Fields {
			op, err := l.operand(f.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, Binding{Expr: op, As: f.Name})
		}
		return out, nil
	}
	op, err := l.operand(body)
	if err != nil {
		return nil, err
	}
	name := "Value"
	if m, ok := body.(*expr.MemberAccess); ok {
		name = m.Member.Name
	}
	return []Binding{{Expr: op, As: name}}, nil
}

var compareOps = map[expr.BinaryOp]CompareOp{
	expr.Equal:        Eq,
	expr.NotEqual:     Ne,
	expr.Less:         Lt,
	expr.LessEqual:    Le,
	expr.Greater:      Gt,
	expr.GreaterEqual: Ge,
}

func (l *lowerer) predicate(e expr.Expr) (Predicate, error) {
	switch x := e.(type) {
	case *expr.Binary:
		switch {
		case x.Op == expr.And || x.Op == expr.Or:
			return l.junction(x)
		case x.Op.IsComparison():
			if a, b, ok := stringCompare(x); ok {
				return l.compare(x.Op, a, b, true)
			}
			return l.compare(x.Op, x.Left, x.Right, false)
		}
	case *expr.Unary:
		if x.Op == expr.Not {
			p, err := l.predicate(x.Operand)
			if err != nil {
				return nil, err
			}
			return &Not{Predicate: p}, nil
		}
	case *expr.MemberAccess:
		if x.Member.Name == "HasValue" && x.Target != nil && x.Target.Type().IsNullable() {
			op, err := l.operand(x.Target)
			if err != nil {
				return nil, err
			}
			return &IsNull{Operand: op, Negated: true}, nil
		}
	case *expr.Call:
		if kind, ok := matchKind(x); ok {
			target, err := l.operand(x.Target)
			if err != nil {
				return nil, err
			}
			pattern, err := l.operand(x.Args[0])
			if err != nil {
				return nil, err
			}
			return &Match{Kind: kind, Operand: target, Pattern: pattern}, nil
		}
	}
	if e.Type().NonNullable() != types.BoolType {
		return nil, unsupported(e, "%s is not a condition", e.Type())
	}
	op, err := l.operand(e)
	if err != nil {
		return nil, err
	}
	return &Truth{Operand: op}, nil
}

// junction flattens nested chains of the same logical operator.
func (l *lowerer) junction(x *expr.Binary) (Predicate, error) {
	var preds []Predicate
	var collect func(e expr.Expr) error
	collect = func(e expr.Expr) error {
		if b, ok := e.(*expr.Binary); ok && b.Op == x.Op {
			if err := collect(b.Left); err != nil {
				return err
			}
			return collect(b.Right)
		}
		p, err := l.predicate(e)
		if err != nil {
			return err
		}
		preds = append(preds, p)
		return nil
	}
	if err := collect(x); err != nil {
		return nil, err
	}
	if x.Op == expr.And {
		return &And{Predicates: preds}, nil
	}
	return &Or{Predicates: preds}, nil
}

// stringCompare recognizes String.Compare(a, b) op 0.
func stringCompare(x *expr.Binary) (a, b expr.Expr, ok bool) {
	call, isCall := x.Left.(*expr.Call)
	if !isCall || call.Method != types.StringCompare || len(call.Args) != 2 {
		return nil, nil, false
	}
	zero, isConst := x.Right.(*expr.Constant)
	if !isConst || zero.Value != int32(0) {
		return nil, nil, false
	}
	return call.Args[0], call.Args[1], true
}

func isNullConstant(e expr.Expr) bool {
	c, ok := e.(*expr.Constant)
	return ok && c.Value == nil
}

func (l *lowerer) compare(op expr.BinaryOp, a, b expr.Expr, ordinal bool) (Predicate, error) {
	eq := op == expr.Equal || op == expr.NotEqual
	if eq && (isNullConstant(a) || isNullConstant(b)) {
		other := a
		if isNullConstant(a) {
			other = b
		}
		if isNullConstant(other) {
			return &Truth{Operand: &Literal{Value: ir.IRBool(op == expr.Equal), Type: types.BoolType}}, nil
		}
		o, err := l.operand(other)
		if err != nil {
			return nil, err
		}
		return &IsNull{Operand: o, Negated: op == expr.NotEqual}, nil
	}

	left, err := l.operand(a)
	if err != nil {
		return nil, err
	}
	right, err := l.operand(b)
	if err != nil {
		return nil, err
	}
	c := &Compare{Op: compareOps[op], Left: left, Right: right}
	nullable := a.Type().CanBeNull() || b.Type().CanBeNull()
	switch {
	case !nullable:
	case eq && op == expr.Equal:
		c.Op = Is
	case eq:
		c.Op = IsNot
	case ordinal:
		c.Nulls = NullLowest
	default:
		c.Nulls = NullFalse
	}
	return c, nil
}

func matchKind(x *expr.Call) (MatchKind, bool) {
	if x.Target == nil || x.Method.Owner != types.StringType || len(x.Args) != 1 {
		return 0, false
	}
	switch x.Method.Name {
	case "StartsWith":
		return Prefix, true
	case "EndsWith":
		return Suffix, true
	case "Contains":
		return Contains, true
	}
	return 0, false
}

var arithOps = map[expr.BinaryOp]ArithOp{
	expr.Add:      Add,
	expr.Subtract: Sub,
	expr.Multiply: Mul,
	expr.Divide:   Div,
	expr.Modulo:   Mod,
	expr.Concat:   Concat,
}

var stringFuncs = map[string]Func{
	"ToUpper": FnUpper,
	"ToLower": FnLower,
	"Trim":    FnTrim,
}

func (l *lowerer) operand(e expr.Expr) (Operand, error) {
	switch x := e.(type) {
	case *expr.Constant:
		lit, err := NewLiteral(x.Value, x.Typ)
		if err != nil {
			return nil, unsupported(e, "%v", err)
		}
		return lit, nil

	case *expr.Parameter:
		return nil, unsupported(e, "the element itself is not a column")

	case *expr.MemberAccess:
		return l.member(x)

	case *expr.Call:
		if lit, ok, err := fold(x); ok {
			return lit, err
		}
		if name, ok := stringFuncs[x.Method.Name]; ok && x.Target != nil && x.Method.Owner == types.StringType && len(x.Args) == 0 {
			target, err := l.operand(x.Target)
			if err != nil {
				return nil, err
			}
			return &Call{Func: name, Args: []Operand{target}, Type: x.Type()}, nil
		}
		return nil, unsupported(e, "method %s has no SQL equivalent", x.Method.Name)

	case *expr.Unary:
		switch x.Op {
		case expr.Negate:
			o, err := l.operand(x.Operand)
			if err != nil {
				return nil, err
			}
			return &Negate{Operand: o}, nil
		case expr.Convert, expr.ConvertChecked:
			return l.convert(x)
		}

	case *expr.Binary:
		op, ok := arithOps[x.Op]
		if !ok {
			break
		}
		if op != Concat && !x.Typ.IsNumeric() {
			return nil, unsupported(e, "%s arithmetic has no SQL equivalent", x.Typ)
		}
		if op == Concat {
			for _, side := range []expr.Expr{x.Left, x.Right} {
				switch side.Type().NonNullable().Kind() {
				case types.DateTime, types.TimeSpan, types.Enum:
					return nil, unsupported(e, "text form of %s has no SQL equivalent", side.Type())
				}
			}
		}
		left, err := l.operand(x.Left)
		if err != nil {
			return nil, err
		}
		right, err := l.operand(x.Right)
		if err != nil {
			return nil, err
		}
		return &Arith{Op: op, Left: left, Right: right, Type: x.Typ}, nil

	case *expr.Conditional:
		when, err := l.predicate(x.Test)
		if err != nil {
			return nil, err
		}
		then, err := l.operand(x.Then)
		if err != nil {
			return nil, err
		}
		els, err := l.operand(x.Else)
		if err != nil {
			return nil, err
		}
		return &Case{When: when, Then: then, Else: els}, nil

	case *expr.Aggregate:
		return nil, unsupported(e, "aggregate %s is not supported", x.Op)
	}
	return nil, unsupported(e, "expression has no SQL equivalent")
}

// fold evaluates a static call or constructor whose arguments are all
// constants.
func fold(x *expr.Call) (Operand, bool, error) {
	if x.Target != nil || x.Method.Call == nil {
		return nil, false, nil
	}
	args := make([]any, len(x.Args))
	for i, a := range x.Args {
		c, ok := a.(*expr.Constant)
		if !ok {
			return nil, false, nil
		}
		args[i] = c.Value
	}
	v, err := x.Method.Call(nil, args)
	if err != nil {
		return nil, true, unsupported(x, "%v", err)
	}
	lit, err := NewLiteral(v, x.Type())
	if err != nil {
		return nil, true, unsupported(x, "%v", err)
	}
	return lit, true, nil
}

func (l *lowerer) member(x *expr.MemberAccess) (Operand, error) {
	m := x.Member
	if x.Target == nil || m.Static {
		if m.Get == nil {
			return nil, unsupported(x, "static member %s has no value", m.Name)
		}
		v, err := m.Get(nil)
		if err != nil {
			return nil, unsupported(x, "%v", err)
		}
		return l.operand(&expr.Constant{Value: v, Typ: m.Type})
	}
	if p, ok := x.Target.(*expr.Parameter); ok && l.elem[p] {
		if !IsScalar(m.Type) {
			return nil, unsupported(x, "member %s of type %s is not a column", m.Name, m.Type)
		}
		return &Column{Name: m.Name, Type: m.Type}, nil
	}
	switch {
	case m.Name == "Length" && x.Target.Type().NonNullable() == types.StringType:
		o, err := l.operand(x.Target)
		if err != nil {
			return nil, err
		}
		return &Call{Func: FnLength, Args: []Operand{o}, Type: types.Int32Type}, nil
	case m.Name == "Value" && x.Target.Type().IsNullable():
		return l.operand(x.Target)
	}
	return nil, unsupported(x, "member %s is not a column of the element", m.Name)
}

func (l *lowerer) convert(x *expr.Unary) (Operand, error) {
	o, err := l.operand(x.Operand)
	if err != nil {
		return nil, err
	}
	from, to := numericKind(x.Operand.Type()), numericKind(x.Typ)
	switch {
	case x.Operand.Type().NonNullable() == x.Typ.NonNullable():
		return o, nil
	case from == 0 || to == 0:
		return nil, unsupported(x, "conversion from %s to %s has no SQL equivalent", x.Operand.Type(), x.Typ)
	case isIntegral(to) && !isIntegral(from):
		return &Call{Func: FnInteger, Args: []Operand{o}, Type: x.Typ}, nil
	case !isIntegral(to) && isIntegral(from):
		return &Call{Func: FnReal, Args: []Operand{o}, Type: x.Typ}, nil
	}
	return o, nil
}

// numericKind returns the numeric kind of t, the integral kind backing an
// enum, or 0.
func numericKind(t *types.Type) types.Kind {
	t = t.NonNullable()
	if t.Kind() == types.Enum {
		t = t.Elem()
	}
	if t.Kind().IsNumeric() {
		return t.Kind()
	}
	return 0
}

func isIntegral(k types.Kind) bool {
	return k.IsSignedIntegral() || k.IsUnsignedIntegral()
}
