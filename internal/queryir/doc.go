// Package queryir provides an abstract query intermediate representation
// (IR) for compiled dynq expressions.
//
// QueryIR is the boundary between compiled expression trees and backend
// query engines. Lower translates a predicate lambda, an optional
// projection and a list of ordering keys into a Select; package querysql
// renders a Select as parameterized SQLite SQL.
//
//	[expression text] → [expr tree] → [Query IR] → [SQL backend]
//
// Only the part of the expression language a relational engine can
// evaluate row by row is lowered: member access on the element parameter
// (a column), literals, arithmetic, comparisons, logical operators,
// conditionals and a handful of string members. Aggregates, indexers,
// lambda invocation and nested member access fail with a *LowerError.
//
// SEALED INTERFACES:
//
// Query, Predicate and Operand are sealed interfaces using the marker
// method pattern. Only types in this package can implement them, so
// backends can switch over the concrete types exhaustively:
//
//	switch p := pred.(type) {
//	case *Compare:
//	case *And:
//	...
//	}
//
// NULL SEMANTICS:
//
// The evaluator treats null == null as true, a relational comparison of
// nullable numbers with a null operand as false, and orders a null string
// before every other string. Lower keeps those results in SQL: equality
// with an operand that can be null becomes IS / IS NOT, and relational
// comparisons carry a NullHandling the backend resolves unknown results
// with.
//
// PORTABILITY:
//
// Validate reports the features whose SQL result can differ from the
// in-memory evaluator or that a non-SQLite backend would need to rewrite:
// OR predicates, NULL-aware comparisons, division, ASCII-only case
// mapping, decimal literals and implicit SELECT of every column. Queries
// with warnings still execute.
//
// LITERALS:
//
// Literal values use ir.IRValue (no floats). Floating point and decimal
// literals are carried as their decimal text together with their type, so
// a Select renders byte-identically across runs.
package queryir
