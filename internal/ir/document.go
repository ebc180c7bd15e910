package ir

// CompileDocument is the JSON form of a compiled expression.
type CompileDocument struct {
	Source      string   `json:"source"`
	Type        string   `json:"type"`
	Tree        IRObject `json:"tree"`
	Fingerprint string   `json:"fingerprint"`
	IRVersion   string   `json:"ir_version"`
}

// OrderingDocument is one key of a compiled ordering list.
type OrderingDocument struct {
	Tree      IRObject `json:"tree"`
	Ascending bool     `json:"ascending"`
}

// SQLDocument is the JSON form of a lowered query.
type SQLDocument struct {
	SQL      string    `json:"sql"`
	Args     []IRValue `json:"args"`
	Warnings []string  `json:"warnings,omitempty"`
}

// RowsDocument carries evaluation or query results.
type RowsDocument struct {
	Columns []string  `json:"columns"`
	Rows    []IRArray `json:"rows"`
}
