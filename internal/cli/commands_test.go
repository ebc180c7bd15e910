package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrder(t *testing.T) {
	out, _, code := runCLI(t, person("order", "Age desc, name")...)
	require.Equal(t, ExitSuccess, code, out)
	assert.Equal(t, "(. it Age) desc Int32\n(. it Name) asc String\n", out)

	out, _, code = runCLI(t, person("order", "Orders.Count() descending", "--format", "json")...)
	require.Equal(t, ExitSuccess, code, out)
	keys, ok := decodeResponse(t, out).Data.([]any)
	require.True(t, ok)
	require.Len(t, keys, 1)
	assert.Equal(t, false, keys[0].(map[string]any)["ascending"])

	out, _, code = runCLI(t, person("order", "Age sideways")...)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, out, "Error ["+ErrCodeParse+"]")
}

func TestSQL(t *testing.T) {
	out, _, code := runCLI(t, person("sql", "Age >= 21 and Score == null", "--table", "people", "--select", "new(Name)")...)
	require.Equal(t, ExitSuccess, code, out)
	assert.Equal(t, `SELECT "Name" FROM "people" WHERE ("Age" >= ? AND "Score" IS NULL) ORDER BY rowid ASC`+"\n"+
		"  ?1 = 21\n"+
		"warning: column 'Score' tested for NULL - portable fragment requires explicit values\n", out)
}

func TestSQL_DefaultSelection(t *testing.T) {
	out, _, code := runCLI(t, person("sql", "true", "--table", "people", "--order-by", "Name desc")...)
	require.Equal(t, ExitSuccess, code, out)
	assert.Contains(t, out, `SELECT "Name", "Age", "Score", "Favorite", "Born" FROM "people" WHERE ? `+
		`ORDER BY "Name" COLLATE BINARY DESC, rowid ASC`)
}

func TestSQL_JSON(t *testing.T) {
	out, _, code := runCLI(t, person("sql", `Name.StartsWith("A")`, "--table", "people", "--select", "new(Name)", "--format", "json")...)
	require.Equal(t, ExitSuccess, code, out)

	data := decodeResponse(t, out).Data.(map[string]any)
	assert.Equal(t, `SELECT "Name" FROM "people" WHERE instr("Name", ?) = 1 ORDER BY rowid ASC`, data["sql"])
	assert.Equal(t, []any{"A"}, data["args"])
	assert.NotContains(t, data, "warnings")
}

func TestSQL_Errors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		code string
	}{
		{"not boolean", person("sql", "Age + 1", "--table", "people"), ErrCodeParse},
		{"no sql form", person("sql", `Tags.Any(it == "admin")`, "--table", "people"), ErrCodeLower},
		{"bad ordering", person("sql", "true", "--table", "people", "--order-by", "Tags"), ErrCodeLower},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, _, code := runCLI(t, tc.args...)
			assert.Equal(t, ExitCommandError, code)
			assert.Contains(t, out, "Error ["+tc.code+"]")
		})
	}
}

func TestEval_Filter(t *testing.T) {
	out, _, code := runCLI(t, person("eval", "Age >= 21", "--data", peopleData, "--select", "new(Name, Age)", "--order-by", "Age")...)
	require.Equal(t, ExitSuccess, code, out)
	assert.Equal(t, "Name   Age\nBob    25\nAlice  34\n(2 row(s))\n", out)
}

func TestEval_DefaultSelection(t *testing.T) {
	out, _, code := runCLI(t, person("eval", "Favorite == Color.Blue", "--data", peopleData, "--format", "json")...)
	require.Equal(t, ExitSuccess, code, out)

	data := decodeResponse(t, out).Data.(map[string]any)
	assert.Equal(t, []any{"Name", "Age", "Score", "Favorite", "Born"}, data["columns"])
	rows := data["rows"].([]any)
	require.Len(t, rows, 1)
	row := rows[0].([]any)
	assert.Equal(t, "Alice", row[0])
	assert.Equal(t, float64(34), row[1])
	assert.Equal(t, "Blue", row[3])
}

func TestEval_Projection(t *testing.T) {
	out, _, code := runCLI(t, person("eval", "Orders.Sum(Total)", "--data", peopleData)...)
	require.Equal(t, ExitSuccess, code, out)
	assert.Equal(t, "Value\n50.5\n0\n12\n(3 row(s))\n", out)

	out, _, code = runCLI(t, person("eval", "new(Name, Tags.Count() as Tags)", "--data", peopleData, "--order-by", "Name desc")...)
	require.Equal(t, ExitSuccess, code, out)
	assert.Equal(t, "Name   Tags\nCarol  2\nBob    0\nAlice  1\n(3 row(s))\n", out)

	out, _, code = runCLI(t, person("eval", "Tags", "--data", peopleData)...)
	require.Equal(t, ExitSuccess, code, out)
	assert.Equal(t, "Value\n[admin]\n[]\n[ops, admin]\n(3 row(s))\n", out)
}

func TestEval_Errors(t *testing.T) {
	out, _, code := runCLI(t, person("eval", "Score.Value > 0", "--data", peopleData)...)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, out, "Error ["+ErrCodeEval+"]")
	assert.Contains(t, out, "nullable object must have a value")

	out, _, code = runCLI(t, person("eval", "Age", "--data", peopleData, "--max-steps", "1")...)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, out, "Error ["+ErrCodeEval+"]")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("- name: 7\n  age: old\n"), 0644))
	out, _, code = runCLI(t, person("eval", "true", "--data", bad)...)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, out, "Error [E110]")
}

func TestQuery(t *testing.T) {
	db := filepath.Join(t.TempDir(), "people.db")

	out, _, code := runCLI(t, person("query", "Age >= 21", "--db", db, "--table", "people",
		"--load", peopleData, "--select", "new(Name)")...)
	require.Equal(t, ExitSuccess, code, out)
	assert.Equal(t, "Name\nAlice\nBob\n(2 row(s))\n", out)

	// The table persists; no reload needed.
	out, _, code = runCLI(t, person("query", "Score == null or Favorite == Color.Red", "--db", db, "--table", "people",
		"--select", "new(Name, Score)", "--order-by", "Name desc", "--format", "json")...)
	require.Equal(t, ExitSuccess, code, out)
	data := decodeResponse(t, out).Data.(map[string]any)
	assert.Equal(t, []any{"Name", "Score"}, data["columns"])
	assert.Equal(t, []any{
		[]any{"Carol", "72"},
		[]any{"Bob", nil},
	}, data["rows"])
}

func TestQuery_Errors(t *testing.T) {
	db := filepath.Join(t.TempDir(), "empty.db")

	out, _, code := runCLI(t, person("query", "true", "--db", db, "--table", "people")...)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, out, "Error ["+ErrCodeStore+"]")

	out, _, code = runCLI(t, person("query", "Tags.Count() > 0", "--db", db, "--table", "people")...)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, out, "Error ["+ErrCodeLower+"]")
}

func TestTest_Scenarios(t *testing.T) {
	out, _, code := runCLI(t, "test", scenariosDir)
	require.Equal(t, ExitSuccess, code, out)
	assert.Contains(t, out, "✓ people_filters\n")
	assert.Contains(t, out, "✓ people_more\n")
	assert.Contains(t, out, "Test Summary: 2 passed, 0 failed, 2 total")

	out, _, code = runCLI(t, "test", scenariosDir, "--filter", "people_f*", "--format", "json")
	require.Equal(t, ExitSuccess, code, out)
	data := decodeResponse(t, out).Data.(map[string]any)
	assert.Equal(t, float64(1), data["total"])
}

func TestTest_GoldenUpdate(t *testing.T) {
	schemaPath, err := filepath.Abs(peopleSchema)
	require.NoError(t, err)
	dir := t.TempDir()
	scenario := fmt.Sprintf(`
name: tiny
description: "One compile case"
schema: %s
type: Person
cases:
  - name: adult
    expr: "Age >= 21"
    expect:
      type: Boolean
`, schemaPath)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tiny.yaml"), []byte(scenario), 0644))

	out, _, code := runCLI(t, "test", dir, "--update")
	require.Equal(t, ExitSuccess, code, out)
	assert.Contains(t, out, "✓ tiny (golden updated)")

	golden, err := os.ReadFile(filepath.Join(dir, "golden", "tiny.golden"))
	require.NoError(t, err)
	assert.Equal(t, `{"cases":[{"name":"adult","tree":"(ge (. it Age) 21:Int32)","type":"Boolean"}],"scenario_name":"tiny"}`, string(golden))

	out, _, code = runCLI(t, "test", dir)
	require.Equal(t, ExitSuccess, code, out)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "tiny.golden"), []byte("{}"), 0644))
	out, _, code = runCLI(t, "test", dir)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, out, "does not match golden file")
}

func TestTest_Failures(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: broken\n"), 0644))

	out, _, code := runCLI(t, "test", dir, "--format", "json")
	assert.Equal(t, ExitFailure, code)
	resp := decodeResponse(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)

	_, stderr, code := runCLI(t, "test", filepath.Join(dir, "nope"))
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "scenarios directory not found")

	empty := t.TempDir()
	out, _, code = runCLI(t, "test", empty)
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "No scenarios found.")
}
