package queryir

import (
	"fmt"

	"github.com/roach88/dynq/internal/ir"
	"github.com/roach88/dynq/internal/types"
)

// ValidationResult contains portability analysis of a query.
//
// The portable fragment is the subset of QueryIR whose SQL result matches
// the in-memory evaluator on every backend. Queries outside this fragment
// still execute with the SQLite backend.
type ValidationResult struct {
	// IsPortable indicates if the query uses only portable fragment features.
	IsPortable bool

	// Warnings lists non-portable features used in the query.
	// Empty when IsPortable is true.
	Warnings []string
}

// Validate checks if a query conforms to the portable fragment rules.
//
// Portable fragment rules:
//  1. Explicit bindings - no implicit SELECT of every column
//  2. No OR predicates
//  3. No NULL-aware comparisons (IS, lifted or null-lowest comparisons)
//  4. No division or modulo (SQL yields NULL where the evaluator fails)
//  5. No UPPER/LOWER/TRIM (SQLite maps ASCII only)
//  6. No decimal literals (decimals are stored as REAL)
//  7. No concatenation of floating point values
//
// Validate is a pure function with no side effects.
func Validate(query Query) ValidationResult {
	v := &validator{
		warnings: []string{},
	}
	v.validateQuery(query)

	return ValidationResult{
		IsPortable: len(v.warnings) == 0,
		Warnings:   v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
}

// addWarning appends a warning message.
func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case *Select:
		if query == nil {
			v.addWarning("nil query - portable fragment requires valid query nodes")
			return
		}
		v.validateSelect(query)
	case nil:
		v.addWarning("nil query - portable fragment requires valid query nodes")
	default:
		v.addWarning("Unknown query type: %T - portability cannot be verified", q)
	}
}

func (v *validator) validateSelect(sel *Select) {
	// Rule 1
	if len(sel.Bindings) == 0 {
		v.addWarning("Empty bindings (SELECT *) - portable fragment requires explicit field selection")
	}
	for _, b := range sel.Bindings {
		v.validateOperand(b.Expr)
	}
	if sel.Filter != nil {
		v.validatePredicate(sel.Filter)
	}
	for _, k := range sel.OrderBy {
		v.validateOperand(k.Expr)
	}
}

func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case nil:
	case *Compare:
		// Rule 3
		switch {
		case pred.Op == Is || pred.Op == IsNot:
			v.addWarning("Null-safe comparison %s %s %s - portable fragment requires non-null operands",
				describe(pred.Left), pred.Op, describe(pred.Right))
		case pred.Nulls != NullUnknown:
			v.addWarning("Comparison %s %s %s treats NULL as %s - portable fragment requires non-null operands",
				describe(pred.Left), pred.Op, describe(pred.Right), pred.Nulls)
		}
		v.validateOperand(pred.Left)
		v.validateOperand(pred.Right)
	case *And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case *Or:
		// Rule 2
		v.addWarning("OR predicate with %d branches - portable fragment requires conjunctions", len(pred.Predicates))
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case *Not:
		v.validatePredicate(pred.Predicate)
	case *IsNull:
		v.addWarning("%s tested for NULL - portable fragment requires explicit values", describe(pred.Operand))
		v.validateOperand(pred.Operand)
	case *Truth:
		v.validateOperand(pred.Operand)
	case *Match:
		v.validateOperand(pred.Operand)
		v.validateOperand(pred.Pattern)
	default:
		v.addWarning("Unknown predicate type: %T - portability cannot be verified", p)
	}
}

func (v *validator) validateOperand(o Operand) {
	switch op := o.(type) {
	case *Column:
	case *Literal:
		// Rule 6
		if op.Type != nil && op.Type.NonNullable().Kind() == types.Decimal {
			if s, ok := op.Value.(ir.IRString); ok {
				v.addWarning("Decimal literal %s - portable fragment stores decimals as REAL", string(s))
			}
		}
	case *Arith:
		// Rules 4 and 7
		if op.Op == Div || op.Op == Mod {
			v.addWarning("Operator %s - division by zero yields NULL instead of an error", op.Op)
		}
		if op.Op == Concat {
			for _, side := range []Operand{op.Left, op.Right} {
				if k := side.ValueType().NonNullable().Kind(); k == types.Float32 || k == types.Float64 || k == types.Decimal {
					v.addWarning("Concatenation of %s - text form of %s differs between backends", describe(side), side.ValueType())
				}
			}
		}
		v.validateOperand(op.Left)
		v.validateOperand(op.Right)
	case *Negate:
		v.validateOperand(op.Operand)
	case *Call:
		// Rule 5
		switch op.Func {
		case FnUpper, FnLower, FnTrim:
			v.addWarning("Function %s - SQLite maps ASCII characters only", op.Func)
		}
		for _, a := range op.Args {
			v.validateOperand(a)
		}
	case *Case:
		v.validatePredicate(op.When)
		v.validateOperand(op.Then)
		v.validateOperand(op.Else)
	default:
		v.addWarning("Unknown operand type: %T - portability cannot be verified", o)
	}
}

// describe renders an operand for warnings.
func describe(o Operand) string {
	switch op := o.(type) {
	case *Column:
		return fmt.Sprintf("column '%s'", op.Name)
	case *Literal:
		b, err := ir.MarshalIRValue(op.Value)
		if err != nil {
			return "literal"
		}
		return string(b)
	case *Call:
		return string(op.Func) + "(...)"
	}
	return "expression"
}
