package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
types:
  Item:
    fields:
      Name: String
      Qty: Int32
`

const testData = `
- { name: a, qty: 1 }
- { name: b, qty: 5 }
`

// writeScenario writes a schema, a data file and the given scenario body
// into a temp dir and returns the scenario path.
func writeScenario(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema.yaml"), []byte(testSchema), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.yaml"), []byte(testData), 0644))
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: items
description: "Item filters"
schema: schema.yaml
type: Item
data: data.yaml
key: Name
table: items
cases:
  - name: big
    expr: "Qty > 2"
    order_by: "Name desc"
    expect:
      rows: [b]
      sql: 'SELECT "Name" FROM "items" WHERE "Qty" > ? ORDER BY "Name" COLLATE BINARY DESC, rowid ASC'
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "items", scenario.Name)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "schema.yaml"), scenario.Schema)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "data.yaml"), scenario.Data)
	require.Len(t, scenario.Cases, 1)
	assert.Equal(t, "Name desc", scenario.Cases[0].OrderBy)
	assert.Equal(t, []string{"b"}, scenario.Cases[0].Expect.Rows)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, `
name: items
description: "typo"
schema: schema.yaml
type: Item
case:
  - name: a
    expr: "true"
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_Invalid(t *testing.T) {
	head := `
name: items
description: "d"
schema: schema.yaml
type: Item
`
	testCases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "missing name",
			body: "description: d\nschema: schema.yaml\ntype: Item\ncases: [{name: a, expr: 'true'}]\n",
			want: "name is required",
		},
		{
			name: "missing type",
			body: "name: n\ndescription: d\nschema: schema.yaml\ncases: [{name: a, expr: 'true'}]\n",
			want: "type is required",
		},
		{
			name: "schema not found",
			body: "name: n\ndescription: d\nschema: nope.yaml\ntype: Item\ncases: [{name: a, expr: 'true'}]\n",
			want: "schema file not found",
		},
		{
			name: "no cases",
			body: head,
			want: "cases list is required",
		},
		{
			name: "table without data",
			body: head + "table: t\ncases: [{name: a, expr: 'true'}]\n",
			want: "table requires data",
		},
		{
			name: "duplicate case",
			body: head + "cases: [{name: a, expr: 'true'}, {name: a, expr: 'false'}]\n",
			want: `cases[1]: duplicate name "a"`,
		},
		{
			name: "missing expr",
			body: head + "cases: [{name: a}]\n",
			want: "cases[0]: expr is required",
		},
		{
			name: "error with tree",
			body: head + "cases: [{name: a, expr: 'x', expect: {error: e, tree: t}}]\n",
			want: "error cannot be combined",
		},
		{
			name: "position without error",
			body: head + "cases: [{name: a, expr: 'x', expect: {position: 1}}]\n",
			want: "position requires error",
		},
		{
			name: "rows without data",
			body: head + "key: Name\ncases: [{name: a, expr: 'true', expect: {rows: [a]}}]\n",
			want: "rows and values require scenario data",
		},
		{
			name: "rows without key",
			body: head + "data: data.yaml\ncases: [{name: a, expr: 'true', expect: {rows: [a]}}]\n",
			want: "rows require a scenario key",
		},
		{
			name: "sql without table",
			body: head + "cases: [{name: a, expr: 'true', expect: {sql: 'SELECT 1'}}]\n",
			want: "sql requires a scenario table",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tc.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestFindScenarios(t *testing.T) {
	paths, err := FindScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, "people_filters.yaml", filepath.Base(paths[0]))
	assert.Equal(t, "people_more.yaml", filepath.Base(paths[1]))

	for _, p := range paths {
		t.Run(filepath.Base(p), func(t *testing.T) {
			_, err := LoadScenario(p)
			require.NoError(t, err)
		})
	}
}
