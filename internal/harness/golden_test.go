package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dynq/internal/ir"
)

// To regenerate golden files:
//
//	go test ./internal/harness -run TestRunWithGolden -update
func TestRunWithGolden_PeopleFilters(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/people_filters.yaml")
	require.NoError(t, err)

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass)
}

func TestSnapshot_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/people_filters.yaml")
	require.NoError(t, err)

	var outputs [][]byte
	for range 3 {
		result, err := Run(scenario)
		require.NoError(t, err)
		snapshot := Snapshot{ScenarioName: scenario.Name, Cases: result.Cases}
		data, err := ir.MarshalCanonical(snapshot.toIR())
		require.NoError(t, err)
		outputs = append(outputs, data)
	}
	assert.Equal(t, outputs[0], outputs[1])
	assert.Equal(t, outputs[1], outputs[2])
}

func TestSnapshot_OmitsEmptyFields(t *testing.T) {
	snapshot := Snapshot{
		ScenarioName: "s",
		Cases: []CaseResult{
			{Name: "values", Type: "Int32", Tree: "1:Int32", Values: []string{"1"}},
			{Name: "sql", Type: "Boolean", Tree: "true", SQL: "SELECT 1", Args: []any{nil, "x", 2.5}},
			{Name: "bad", Error: "Syntax error (at index 0)", Stage: StageCompile},
			{Name: "eval", Error: "boom", Stage: StageEval, Position: 7},
		},
	}
	data, err := ir.MarshalCanonical(snapshot.toIR())
	require.NoError(t, err)
	assert.Equal(t, `{"cases":[`+
		`{"name":"values","tree":"1:Int32","type":"Int32","values":["1"]},`+
		`{"args":[null,"x","2.5"],"name":"sql","sql":"SELECT 1","tree":"true","type":"Boolean"},`+
		`{"error":"Syntax error (at index 0)","name":"bad","position":0,"stage":"compile"},`+
		`{"error":"boom","name":"eval","stage":"eval"}`+
		`],"scenario_name":"s"}`, string(data))
}
