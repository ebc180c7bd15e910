package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance scenario: expressions compiled against
// one schema type and checked against sample rows.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema is the schema file declaring Type. Relative paths are
	// resolved from the scenario file.
	Schema string `yaml:"schema"`

	// Type is the element type, a type expression resolved by the schema.
	Type string `yaml:"type"`

	// Data is an optional YAML file of Type values.
	Data string `yaml:"data,omitempty"`

	// Key labels matched rows in expectations, e.g. "Name".
	// Required when any case expects rows.
	Key string `yaml:"key,omitempty"`

	// Table, when set, loads Data into an in-memory SQLite table and runs
	// every filter case there too. Results must agree with the evaluator.
	Table string `yaml:"table,omitempty"`

	Cases []Case `yaml:"cases"`
}

// Case is one expression of a scenario.
type Case struct {
	Name string `yaml:"name"`
	Expr string `yaml:"expr"`

	// Result is the type the expression must promote to.
	Result string `yaml:"result,omitempty"`

	// OrderBy is an ordering list applied to matched rows.
	OrderBy string `yaml:"order_by,omitempty"`

	Expect Expect `yaml:"expect"`
}

// Expect lists the checks of a case. Empty fields are not checked.
type Expect struct {
	// Type is the static type of the compiled expression.
	Type string `yaml:"type,omitempty"`

	// Tree is the formatted expression tree.
	Tree string `yaml:"tree,omitempty"`

	// Error is a substring of the compile or evaluation error.
	Error string `yaml:"error,omitempty"`

	// Position is the character offset of a compile error.
	Position *int `yaml:"position,omitempty"`

	// Rows are the Key labels of the rows a Boolean expression matches,
	// in order.
	Rows []string `yaml:"rows,omitempty"`

	// Values are the formatted results of a non-Boolean expression, one
	// per data row.
	Values []string `yaml:"values,omitempty"`

	// SQL is the statement the filter lowers to.
	SQL string `yaml:"sql,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// Schema and data paths are resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "case:" vs "cases:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	scenario.Schema = resolve(base, scenario.Schema)
	scenario.Data = resolve(base, scenario.Data)

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// FindScenarios returns the .yaml files of dir in name order.
func FindScenarios(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Schema == "" {
		return fmt.Errorf("schema is required")
	}
	if _, err := os.Stat(s.Schema); os.IsNotExist(err) {
		return fmt.Errorf("schema file not found: %s", s.Schema)
	}
	if s.Type == "" {
		return fmt.Errorf("type is required")
	}
	if s.Data != "" {
		if _, err := os.Stat(s.Data); os.IsNotExist(err) {
			return fmt.Errorf("data file not found: %s", s.Data)
		}
	}
	if s.Table != "" && s.Data == "" {
		return fmt.Errorf("table requires data")
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	names := map[string]bool{}
	for i, c := range s.Cases {
		if err := validateCase(s, i, &c); err != nil {
			return err
		}
		if names[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate name %q", i, c.Name)
		}
		names[c.Name] = true
	}
	return nil
}

func validateCase(s *Scenario, index int, c *Case) error {
	if c.Name == "" {
		return fmt.Errorf("cases[%d]: name is required", index)
	}
	if c.Expr == "" {
		return fmt.Errorf("cases[%d]: expr is required", index)
	}
	e := c.Expect
	if e.Error != "" && (e.Type != "" || e.Tree != "" || e.Rows != nil || e.Values != nil || e.SQL != "") {
		return fmt.Errorf("cases[%d]: error cannot be combined with other expectations", index)
	}
	if e.Position != nil && e.Error == "" {
		return fmt.Errorf("cases[%d]: position requires error", index)
	}
	if (e.Rows != nil || e.Values != nil) && s.Data == "" {
		return fmt.Errorf("cases[%d]: rows and values require scenario data", index)
	}
	if e.Rows != nil && s.Key == "" {
		return fmt.Errorf("cases[%d]: rows require a scenario key", index)
	}
	if e.Rows != nil && e.Values != nil {
		return fmt.Errorf("cases[%d]: rows and values are exclusive", index)
	}
	if e.SQL != "" && s.Table == "" {
		return fmt.Errorf("cases[%d]: sql requires a scenario table", index)
	}
	return nil
}
