// Package expr defines the typed expression tree produced by the parser.
//
// Every node reports its static type. Trees are immutable once built and
// are consumed by the evaluator (package engine), the SQL lowering (package
// queryir) and the formatters in this package.
//
// NODES:
//
//	Constant      literal or folded value, optionally with its source text
//	Parameter     named input, or the implicit element "it"
//	MemberAccess  field or property read
//	Call          method or constructor call
//	Unary         negate, not, checked and unchecked conversion
//	Binary        logical, comparison, arithmetic and concatenation
//	Conditional   iif(test, a, b) and test ? a : b
//	Invoke        application of an externally supplied Lambda
//	Index         array element or indexer access
//	New           construction of a synthesized record
//	Lambda        body closed over parameters
//	Aggregate     Where/Any/All/Count/Min/Max/Sum/Average over a sequence
//
// Compile failures are reported as *ParseError, rendered as
// "<message> (at index <offset>)".
package expr
