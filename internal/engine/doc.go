// Package engine evaluates compiled expression trees over Go values.
//
// Values use the canonical representation of package types: Int32 is an
// int32, Decimal an *apd.Decimal, an enum an int64, an array a []any, and
// a null nullable is nil. Host objects are passed as the Go values their
// types were reflected from and are read through member accessors.
//
// Semantics:
//
// Integer arithmetic is unchecked and wraps, except that integral and
// decimal division by zero fail. Explicit numeric conversions are checked.
// Operators on nullable operands are lifted: arithmetic with a null
// operand yields null, relational comparisons with a null operand are
// false, and two nulls are equal. Logical and/or over nullable booleans
// follow three-valued logic.
//
// Every Eval call runs single-threaded against its own scope and step
// quota; an Evaluator may be shared between goroutines.
package engine
