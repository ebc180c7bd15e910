// Package overload implements implicit conversion and overload resolution.
//
// Every operator application and every method, constructor and indexer
// call goes through FindBest:
//
//  1. Applicability: same arity, no output-only parameter, and every
//     argument Promote-s to its parameter type.
//  2. Dominance: a candidate is dropped when another one is at least as
//     good for every argument and strictly better for one, per
//     CompareConversions.
//  3. One survivor is a match; none is "no applicable"; several are
//     ambiguous.
//
// Operator tables are closed and layered: Equality extends Relational
// which extends Arithmetic, and Subtract extends Add which extends
// Arithmetic. ResolveOperator stops at the first layer that has any
// applicable candidate.
//
// PROMOTION LADDER:
//
//	SByte   -> Int16 Int32 Int64 Single Double Decimal
//	Byte    -> Int16 UInt16 Int32 UInt32 Int64 UInt64 Single Double Decimal
//	Int16   -> Int32 Int64 Single Double Decimal
//	UInt16  -> Int32 UInt32 Int64 UInt64 Single Double Decimal
//	Int32   -> Int64 Single Double Decimal
//	UInt32  -> Int64 UInt64 Single Double Decimal
//	Int64   -> Single Double Decimal
//	UInt64  -> Single Double Decimal
//	Single  -> Double
//
// Each rung also reaches the nullable form of its target.
package overload
