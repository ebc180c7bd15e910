package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an expectation fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Case     string
	Field    string // expectation that failed
	Expected string
	Actual   string
	Tree     string // compiled tree, for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s.%s\n", e.Case, e.Field)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.Tree != "" {
		fmt.Fprintf(&buf, "  Tree: %s\n", e.Tree)
	}
	return buf.String()
}

// EvaluateExpect checks the expectations of c against its result.
// Returns one error per failed expectation.
func EvaluateExpect(c Case, cr *CaseResult) []error {
	fail := func(field, expected, actual string) error {
		return &AssertionError{Case: c.Name, Field: field, Expected: expected, Actual: actual, Tree: cr.Tree}
	}
	e := c.Expect

	if e.Error != "" {
		var errs []error
		if cr.Error == "" {
			errs = append(errs, fail("error", fmt.Sprintf("error containing %q", e.Error), "no error"))
		} else if !strings.Contains(cr.Error, e.Error) {
			errs = append(errs, fail("error", fmt.Sprintf("error containing %q", e.Error), cr.Error))
		}
		if e.Position != nil && (cr.Stage != StageCompile || cr.Position != *e.Position) {
			errs = append(errs, fail("position", fmt.Sprintf("compile error at %d", *e.Position),
				fmt.Sprintf("%s error at %d", cr.Stage, cr.Position)))
		}
		return errs
	}

	// Any failure is unexpected from here on.
	if cr.Error != "" {
		return []error{fail(cr.Stage, "no error", cr.Error)}
	}

	var errs []error
	if e.Type != "" && e.Type != cr.Type {
		errs = append(errs, fail("type", e.Type, cr.Type))
	}
	if e.Tree != "" && e.Tree != cr.Tree {
		errs = append(errs, fail("tree", e.Tree, cr.Tree))
	}
	if e.Rows != nil && !slices.Equal(e.Rows, cr.Rows) {
		errs = append(errs, fail("rows", fmt.Sprint(e.Rows), fmt.Sprint(cr.Rows)))
	}
	if e.Values != nil && !slices.Equal(e.Values, cr.Values) {
		errs = append(errs, fail("values", fmt.Sprint(e.Values), fmt.Sprint(cr.Values)))
	}
	if e.SQL != "" && e.SQL != cr.SQL {
		errs = append(errs, fail("sql", e.SQL, cr.SQL))
	}
	return errs
}
