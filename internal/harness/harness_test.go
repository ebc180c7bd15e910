package harness

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Scenarios(t *testing.T) {
	paths, err := FindScenarios("testdata/scenarios")
	require.NoError(t, err)

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, strings.Join(result.Errors, "\n"))
			assert.Len(t, result.Cases, len(scenario.Cases))
		})
	}
}

func TestRun_SQLCrossCheck(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/people_filters.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, strings.Join(result.Errors, "\n"))

	adults := result.Cases[0]
	assert.Equal(t, []string{"Alice", "Bob"}, adults.Rows)
	assert.Equal(t, adults.Rows, adults.SQLRows)
	assert.Equal(t, []any{int64(21)}, adults.Args)
	assert.Empty(t, adults.Warnings)

	bad := result.Cases[3]
	assert.Equal(t, StageCompile, bad.Stage)
	assert.Equal(t, 4, bad.Position)
	assert.Empty(t, bad.SQL)
}

func TestRun_Stages(t *testing.T) {
	path := writeScenario(t, `
name: stages
description: "Failures at each stage"
schema: schema.yaml
type: Item
data: data.yaml
key: Name
table: items
cases:
  - name: compile
    expr: "Qty +"
    expect:
      error: "Expression expected"
      position: 5
  - name: eval
    expr: "10 / (Qty - 1) > 0"
    expect:
      error: "divide by zero"
  - name: lower
    expr: 'Qty.ToString() == "1"'
    expect:
      error: "cannot lower"
  - name: ok
    expr: "Qty % 2 == 1"
    expect:
      rows: [a, b]
`)
	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	stages := make([]string, len(result.Cases))
	for i, c := range result.Cases {
		stages[i] = c.Stage
	}
	assert.Equal(t, []string{StageCompile, StageEval, StageLower, ""}, stages)
	assert.True(t, result.Pass, strings.Join(result.Errors, "\n"))
}

func TestRun_FailedExpectations(t *testing.T) {
	path := writeScenario(t, `
name: failing
description: "Every expectation is wrong"
schema: schema.yaml
type: Item
data: data.yaml
key: Name
cases:
  - name: rows
    expr: "Qty > 2"
    expect:
      type: Int32
      rows: [a]
  - name: values
    expr: "Qty * 2"
    expect:
      values: ["2", "11"]
  - name: missing error
    expr: "Qty"
    expect:
      error: "boom"
  - name: unexpected error
    expr: "Qty >"
    expect:
      type: Boolean
`)
	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "Assertion failed: rows.type")
	assert.Contains(t, result.Errors[1], "Assertion failed: rows.rows")
	assert.Contains(t, result.Errors[2], "Assertion failed: values.values")
	assert.Contains(t, result.Errors[3], "Assertion failed: missing error.error")
	assert.Contains(t, result.Errors[4], "Assertion failed: unexpected error.compile")
}

func TestRun_MissingType(t *testing.T) {
	path := writeScenario(t, `
name: missing
description: "Unknown element type"
schema: schema.yaml
type: Widget
cases:
  - name: a
    expr: "true"
`)
	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	_, err = Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to resolve type")
}

func TestEvaluateExpect(t *testing.T) {
	pos := 3
	testCases := []struct {
		name   string
		expect Expect
		result CaseResult
		fields []string
	}{
		{
			name:   "all match",
			expect: Expect{Type: "Boolean", Tree: "true", Rows: []string{"a"}},
			result: CaseResult{Type: "Boolean", Tree: "true", Rows: []string{"a"}},
		},
		{
			name:   "empty rows match none",
			expect: Expect{Rows: []string{}},
			result: CaseResult{Rows: []string{}},
		},
		{
			name:   "error and position",
			expect: Expect{Error: "Syntax", Position: &pos},
			result: CaseResult{Error: "Syntax error (at index 3)", Stage: StageCompile, Position: 3},
		},
		{
			name:   "position from eval stage",
			expect: Expect{Error: "boom", Position: &pos},
			result: CaseResult{Error: "boom", Stage: StageEval},
			fields: []string{"position"},
		},
		{
			name:   "wrong tree and sql",
			expect: Expect{Tree: "a", SQL: "SELECT 1"},
			result: CaseResult{Tree: "b", SQL: "SELECT 2"},
			fields: []string{"tree", "sql"},
		},
		{
			name:   "unexpected failure",
			expect: Expect{Type: "Int32"},
			result: CaseResult{Error: "SQLite returned [a], evaluator matched []", Stage: StageSQL},
			fields: []string{"sql"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			errs := EvaluateExpect(Case{Name: "c", Expect: tc.expect}, &tc.result)
			var fields []string
			for _, err := range errs {
				var ae *AssertionError
				require.ErrorAs(t, err, &ae)
				fields = append(fields, ae.Field)
			}
			assert.Equal(t, tc.fields, fields)
		})
	}
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{Case: "adults", Field: "rows", Expected: "[a]", Actual: "[b]", Tree: "(gt (. it Qty) 2:Int32)"}
	assert.Equal(t, "Assertion failed: adults.rows\n  Expected: [a]\n  Actual: [b]\n  Tree: (gt (. it Qty) 2:Int32)\n", err.Error())
}
