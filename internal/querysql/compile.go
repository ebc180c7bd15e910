package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/dynq/internal/ir"
	"github.com/roach88/dynq/internal/queryir"
	"github.com/roach88/dynq/internal/types"
)

// SQLCompiler compiles QueryIR to parameterized SQL for SQLite.
//
// Every query ends its ORDER BY with the rowid so that rows with equal keys
// come back in insertion order. Literal values are always bound as
// parameters and never interpolated.
type SQLCompiler struct {
	// Tiebreaker is the final ORDER BY term. Defaults to "rowid ASC".
	Tiebreaker string
}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{Tiebreaker: "rowid ASC"}
}

// Compile converts a QueryIR query to parameterized SQL.
// Returns (sql, params, error) tuple.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	switch query := q.(type) {
	case nil:
		return "", nil, fmt.Errorf("cannot compile nil query")
	case *queryir.Select:
		if query == nil {
			return "", nil, fmt.Errorf("cannot compile nil query")
		}
		return c.compileSelect(query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

// builder accumulates SQL text and its parameters in placeholder order.
type builder struct {
	sb     strings.Builder
	params []any
}

func (b *builder) write(parts ...string) {
	for _, p := range parts {
		b.sb.WriteString(p)
	}
}

func (c *SQLCompiler) compileSelect(q *queryir.Select) (string, []any, error) {
	if q.From == "" {
		return "", nil, fmt.Errorf("select has no table")
	}
	b := &builder{}
	b.write("SELECT ")
	if err := c.compileBindings(b, q.Bindings); err != nil {
		return "", nil, fmt.Errorf("compile bindings: %w", err)
	}
	b.write(" FROM ", QuoteIdent(q.From))

	if q.Filter != nil {
		b.write(" WHERE ")
		if err := c.compilePredicate(b, q.Filter); err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
	}

	b.write(" ORDER BY ")
	for _, k := range q.OrderBy {
		if err := c.compileOperand(b, k.Expr); err != nil {
			return "", nil, fmt.Errorf("compile order key: %w", err)
		}
		if k.Expr.ValueType() != nil && k.Expr.ValueType().NonNullable().Kind() == types.String {
			b.write(" COLLATE BINARY")
		}
		if k.Descending {
			b.write(" DESC, ")
		} else {
			b.write(" ASC, ")
		}
	}
	b.write(c.stableOrderKey())

	return b.sb.String(), b.params, nil
}

// stableOrderKey returns the final ORDER BY term.
func (c *SQLCompiler) stableOrderKey() string {
	if c.Tiebreaker == "" {
		return "rowid ASC"
	}
	return c.Tiebreaker
}

// compileBindings writes the SELECT column list in binding order. A column
// bound under its own name needs no alias.
func (c *SQLCompiler) compileBindings(b *builder, bindings []queryir.Binding) error {
	if len(bindings) == 0 {
		b.write("*")
		return nil
	}
	for i, bind := range bindings {
		if i > 0 {
			b.write(", ")
		}
		if col, ok := bind.Expr.(*queryir.Column); ok && col.Name == bind.As {
			b.write(QuoteIdent(col.Name))
			continue
		}
		if err := c.compileOperand(b, bind.Expr); err != nil {
			return fmt.Errorf("binding %s: %w", bind.As, err)
		}
		b.write(" AS ", QuoteIdent(bind.As))
	}
	return nil
}

func (c *SQLCompiler) compilePredicate(b *builder, p queryir.Predicate) error {
	switch pred := p.(type) {
	case *queryir.Compare:
		return c.compileCompare(b, pred)
	case *queryir.And:
		return c.compileJunction(b, pred.Predicates, " AND ", "1 = 1")
	case *queryir.Or:
		return c.compileJunction(b, pred.Predicates, " OR ", "1 = 0")
	case *queryir.Not:
		b.write("NOT (")
		if err := c.compilePredicate(b, pred.Predicate); err != nil {
			return err
		}
		b.write(")")
		return nil
	case *queryir.IsNull:
		if err := c.compileOperand(b, pred.Operand); err != nil {
			return err
		}
		if pred.Negated {
			b.write(" IS NOT NULL")
		} else {
			b.write(" IS NULL")
		}
		return nil
	case *queryir.Truth:
		return c.compileOperand(b, pred.Operand)
	case *queryir.Match:
		return c.compileMatch(b, pred)
	default:
		return fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (c *SQLCompiler) compileJunction(b *builder, preds []queryir.Predicate, sep, empty string) error {
	if len(preds) == 0 {
		b.write(empty)
		return nil
	}
	b.write("(")
	for i, p := range preds {
		if i > 0 {
			b.write(sep)
		}
		if err := c.compilePredicate(b, p); err != nil {
			return err
		}
	}
	b.write(")")
	return nil
}

// compileCompare writes a comparison. NullFalse wraps the comparison in
// COALESCE(..., 0). NullLowest falls back to comparing the operands'
// non-null flags, which orders NULL before any value and equal to NULL.
func (c *SQLCompiler) compileCompare(b *builder, cmp *queryir.Compare) error {
	plain := func() error {
		if err := c.compileOperand(b, cmp.Left); err != nil {
			return err
		}
		b.write(" ", cmp.Op.String(), " ")
		return c.compileOperand(b, cmp.Right)
	}
	switch cmp.Nulls {
	case queryir.NullUnknown:
		return plain()
	case queryir.NullFalse:
		b.write("COALESCE(")
		if err := plain(); err != nil {
			return err
		}
		b.write(", 0)")
		return nil
	case queryir.NullLowest:
		b.write("COALESCE(")
		if err := plain(); err != nil {
			return err
		}
		b.write(", (")
		if err := c.compileOperand(b, cmp.Left); err != nil {
			return err
		}
		b.write(" IS NOT NULL) ", cmp.Op.String(), " (")
		if err := c.compileOperand(b, cmp.Right); err != nil {
			return err
		}
		b.write(" IS NOT NULL))")
		return nil
	}
	return fmt.Errorf("unsupported null handling: %s", cmp.Nulls)
}

// compileMatch writes a case-sensitive substring test. LIKE and GLOB are
// avoided: LIKE folds ASCII case and both treat pattern characters
// specially.
func (c *SQLCompiler) compileMatch(b *builder, m *queryir.Match) error {
	switch m.Kind {
	case queryir.Prefix, queryir.Contains:
		b.write("instr(")
		if err := c.compileOperand(b, m.Operand); err != nil {
			return err
		}
		b.write(", ")
		if err := c.compileOperand(b, m.Pattern); err != nil {
			return err
		}
		if m.Kind == queryir.Prefix {
			b.write(") = 1")
		} else {
			b.write(") > 0")
		}
		return nil
	case queryir.Suffix:
		b.write("substr(")
		if err := c.compileOperand(b, m.Operand); err != nil {
			return err
		}
		b.write(", length(")
		if err := c.compileOperand(b, m.Operand); err != nil {
			return err
		}
		b.write(") - length(")
		if err := c.compileOperand(b, m.Pattern); err != nil {
			return err
		}
		b.write(") + 1) = ")
		return c.compileOperand(b, m.Pattern)
	}
	return fmt.Errorf("unsupported match kind: %s", m.Kind)
}

func (c *SQLCompiler) compileOperand(b *builder, o queryir.Operand) error {
	switch op := o.(type) {
	case *queryir.Column:
		b.write(QuoteIdent(op.Name))
	case *queryir.Literal:
		v, err := LiteralParam(op)
		if err != nil {
			return fmt.Errorf("convert value: %w", err)
		}
		b.write("?")
		b.params = append(b.params, v)
	case *queryir.Arith:
		b.write("(")
		if err := c.concatOperand(b, op, op.Left); err != nil {
			return err
		}
		b.write(" ", op.Op.String(), " ")
		if err := c.concatOperand(b, op, op.Right); err != nil {
			return err
		}
		b.write(")")
	case *queryir.Negate:
		b.write("-(")
		if err := c.compileOperand(b, op.Operand); err != nil {
			return err
		}
		b.write(")")
	case *queryir.Call:
		return c.compileCall(b, op)
	case *queryir.Case:
		b.write("CASE WHEN ")
		if err := c.compilePredicate(b, op.When); err != nil {
			return err
		}
		b.write(" THEN ")
		if err := c.compileOperand(b, op.Then); err != nil {
			return err
		}
		b.write(" ELSE ")
		if err := c.compileOperand(b, op.Else); err != nil {
			return err
		}
		b.write(" END")
	default:
		return fmt.Errorf("unsupported operand type: %T", o)
	}
	return nil
}

// concatOperand writes one side of an arithmetic operator. Concatenation
// treats NULL as the empty string and spells booleans as True and False.
func (c *SQLCompiler) concatOperand(b *builder, a *queryir.Arith, side queryir.Operand) error {
	if a.Op != queryir.Concat {
		return c.compileOperand(b, side)
	}
	t := side.ValueType()
	if t != nil && t.NonNullable().Kind() == types.Bool {
		b.write("CASE WHEN ")
		if err := c.compileOperand(b, side); err != nil {
			return err
		}
		b.write(" IS NULL THEN '' WHEN ")
		if err := c.compileOperand(b, side); err != nil {
			return err
		}
		b.write(" THEN 'True' ELSE 'False' END")
		return nil
	}
	if lit, ok := side.(*queryir.Literal); ok {
		if _, null := lit.Value.(ir.IRNull); !null {
			return c.compileOperand(b, side)
		}
	}
	if t == nil || t.CanBeNull() {
		b.write("COALESCE(")
		if err := c.compileOperand(b, side); err != nil {
			return err
		}
		b.write(", '')")
		return nil
	}
	return c.compileOperand(b, side)
}

func (c *SQLCompiler) compileCall(b *builder, call *queryir.Call) error {
	switch call.Func {
	case queryir.FnInteger, queryir.FnReal:
		if len(call.Args) != 1 {
			return fmt.Errorf("%s takes one argument, got %d", call.Func, len(call.Args))
		}
		b.write("CAST(")
		if err := c.compileOperand(b, call.Args[0]); err != nil {
			return err
		}
		b.write(" AS ", string(call.Func), ")")
		return nil
	case queryir.FnUpper, queryir.FnLower, queryir.FnTrim, queryir.FnLength:
		b.write(string(call.Func), "(")
		for i, a := range call.Args {
			if i > 0 {
				b.write(", ")
			}
			if err := c.compileOperand(b, a); err != nil {
				return err
			}
		}
		b.write(")")
		return nil
	}
	return fmt.Errorf("unsupported function: %s", call.Func)
}

// QuoteIdent quotes an identifier for SQLite.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
