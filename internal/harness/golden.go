package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/dynq/internal/ir"
	"github.com/roach88/dynq/internal/querysql"
)

// Snapshot captures everything a scenario produced.
// It is serialized with ir.MarshalCanonical for deterministic comparison.
type Snapshot struct {
	ScenarioName string
	Cases        []CaseResult
}

func stringList(ss []string) ir.IRValue {
	if len(ss) == 0 {
		return nil
	}
	arr := make(ir.IRArray, len(ss))
	for i, s := range ss {
		arr[i] = ir.IRString(s)
	}
	return arr
}

func optString(s string) ir.IRValue {
	if s == "" {
		return nil
	}
	return ir.IRString(s)
}

// toIR converts a Snapshot to an IR document. Empty fields are omitted.
func (s *Snapshot) toIR() ir.IRObject {
	cases := make(ir.IRArray, len(s.Cases))
	for i, c := range s.Cases {
		var args ir.IRValue
		if c.SQL != "" {
			arr := make(ir.IRArray, len(c.Args))
			for j, a := range c.Args {
				arr[j] = querysql.ArgIR(a)
			}
			args = arr
		}
		var pos ir.IRValue
		if c.Stage == StageCompile {
			pos = ir.IRInt(c.Position)
		}
		cases[i] = ir.NewIRObject(
			ir.O("name", ir.IRString(c.Name)),
			ir.O("type", optString(c.Type)),
			ir.O("tree", optString(c.Tree)),
			ir.O("error", optString(c.Error)),
			ir.O("stage", optString(c.Stage)),
			ir.O("position", pos),
			ir.O("rows", stringList(c.Rows)),
			ir.O("values", stringList(c.Values)),
			ir.O("sql", optString(c.SQL)),
			ir.O("args", args),
			ir.O("warnings", stringList(c.Warnings)),
		)
	}
	return ir.NewIRObject(
		ir.O("scenario_name", ir.IRString(s.ScenarioName)),
		ir.O("cases", cases),
	)
}

// Marshal renders the snapshot as canonical JSON, the golden file format.
func (s *Snapshot) Marshal() ([]byte, error) {
	return ir.MarshalCanonical(s.toIR())
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file. The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := Snapshot{ScenarioName: scenarioName, Cases: result.Cases}
	data, err := snapshot.Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
