// Package ir provides the canonical JSON value layer used to export
// compiled expression trees, record schemas and evaluation results.
//
// ir imports nothing internal. Producers (expr.Dump, the evaluator, the
// CLI) convert into IRValue; everything leaving the process as JSON goes
// through MarshalCanonical so that two structurally equal trees produce
// byte-identical documents and the same Fingerprint.
//
// Key design constraints:
//   - NO float types (use decimal strings) so documents are deterministic
//   - Object keys sorted by UTF-16 code units (RFC 8785)
//   - Strings NFC normalized at the serialization boundary
//   - All JSON tags use snake_case
package ir
