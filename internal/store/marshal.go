package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/dynq/internal/ir"
	"github.com/roach88/dynq/internal/queryir"
)

// ColumnInfo describes a stored column by name and dynq type name.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// columnsIR converts columns to the catalog document form.
func columnsIR(cols []*queryir.Column) ir.IRArray {
	arr := make(ir.IRArray, len(cols))
	for i, c := range cols {
		arr[i] = ir.NewIRObject(
			ir.O("name", ir.IRString(c.Name)),
			ir.O("type", ir.IRString(c.Type.String())),
		)
	}
	return arr
}

// marshalColumns converts columns to canonical JSON TEXT for the catalog
// and returns the schema fingerprint alongside.
func marshalColumns(typeName string, cols []*queryir.Column) (string, string, error) {
	arr := columnsIR(cols)
	data, err := ir.MarshalCanonical(arr)
	if err != nil {
		return "", "", fmt.Errorf("marshal columns: %w", err)
	}
	fp, err := ir.Fingerprint(ir.DomainSchema, ir.NewIRObject(
		ir.O("type", ir.IRString(typeName)),
		ir.O("columns", arr),
	))
	if err != nil {
		return "", "", fmt.Errorf("fingerprint columns: %w", err)
	}
	return string(data), fp, nil
}

// unmarshalColumns parses the catalog columns document.
func unmarshalColumns(data string) ([]ColumnInfo, error) {
	var cols []ColumnInfo
	if err := json.Unmarshal([]byte(data), &cols); err != nil {
		return nil, fmt.Errorf("unmarshal columns: %w", err)
	}
	if cols == nil {
		cols = []ColumnInfo{}
	}
	return cols, nil
}
