package types

import "golang.org/x/text/cases"

// FoldName returns the case-folded form of an identifier. Identifiers,
// member names and enum member names match case-insensitively.
func FoldName(s string) string {
	// A Caser is stateful, so each call gets its own.
	return cases.Fold().String(s)
}

// SameName reports whether two identifiers are equal under case folding.
func SameName(a, b string) bool {
	return a == b || FoldName(a) == FoldName(b)
}
