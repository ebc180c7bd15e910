package harness

// Stage names where a case failed.
const (
	StageCompile = "compile"
	StageEval    = "eval"
	StageLower   = "lower"
	StageSQL     = "sql"
)

// CaseResult is what running one case produced.
type CaseResult struct {
	Name string `json:"name"`

	// Type and Tree are set when the expression compiled.
	Type string `json:"type,omitempty"`
	Tree string `json:"tree,omitempty"`

	// Error is the first failure; Stage says where it happened.
	// Position is only meaningful for compile errors.
	Error    string `json:"error,omitempty"`
	Stage    string `json:"stage,omitempty"`
	Position int    `json:"position,omitempty"`

	Rows   []string `json:"rows,omitempty"`
	Values []string `json:"values,omitempty"`

	// SQL, Args and Warnings describe the lowered filter.
	SQL      string   `json:"sql,omitempty"`
	Args     []any    `json:"args,omitempty"`
	Warnings []string `json:"warnings,omitempty"`

	// SQLRows are the Key labels SQLite returned.
	SQLRows []string `json:"sql_rows,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation held.
	Pass bool `json:"pass"`

	Cases []CaseResult `json:"cases"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
