package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/roach88/dynq/internal/expr"
	"github.com/roach88/dynq/internal/ir"
	"github.com/roach88/dynq/internal/record"
	"github.com/roach88/dynq/internal/types"
)

// table is a result set with the type of every column.
type table struct {
	columns []string
	types   []*types.Type
	rows    [][]any
}

// tabulate spreads projected values into columns. Record values get one
// column per field; anything else is a single Value column.
func tabulate(values []any, t *types.Type) *table {
	if rt, ok := record.Of(t); ok {
		s := rt.Schema()
		tb := &table{columns: make([]string, len(s)), types: make([]*types.Type, len(s)), rows: [][]any{}}
		for i, f := range s {
			tb.columns[i], tb.types[i] = f.Name, f.Type
		}
		for _, v := range values {
			row := make([]any, len(s))
			if rv, ok := v.(*record.Value); ok {
				for i := range s {
					row[i] = rv.Get(i)
				}
			}
			tb.rows = append(tb.rows, row)
		}
		return tb
	}
	tb := &table{columns: []string{"Value"}, types: []*types.Type{t}, rows: [][]any{}}
	for _, v := range values {
		tb.rows = append(tb.rows, []any{v})
	}
	return tb
}

func (tb *table) document() ir.RowsDocument {
	doc := ir.RowsDocument{Columns: tb.columns, Rows: make([]ir.IRArray, len(tb.rows))}
	for i, row := range tb.rows {
		arr := make(ir.IRArray, len(row))
		for j, v := range row {
			arr[j] = expr.DumpValue(v, tb.types[j])
		}
		doc.Rows[i] = arr
	}
	return doc
}

// writeText prints the table with aligned columns and a row count.
func (tb *table) writeText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(tb.columns, "\t"))
	for _, row := range tb.rows {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = formatCell(v, tb.types[j])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "(%d row(s))\n", len(tb.rows))
	return err
}

func formatCell(v any, t *types.Type) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = formatCell(item, t.Elem())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return types.FormatValue(v, t)
}

// output writes the table in the formatter's format.
func (tb *table) output(formatter *OutputFormatter) error {
	if formatter.Format == "json" {
		return formatter.Success(tb.document())
	}
	return tb.writeText(formatter.Writer)
}
