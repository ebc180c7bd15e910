package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/dynq/internal/queryir"
	"github.com/roach88/dynq/internal/querysql"
)

// TableInfo is the catalog entry of a row table.
type TableInfo struct {
	Name        string
	TypeName    string
	Columns     []ColumnInfo
	Fingerprint string
	Seq         int64
}

// Result holds the rows of a query in binding order. Values are in the
// runtime form of each binding's type.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Table returns the catalog entry for name.
func (s *Store) Table(ctx context.Context, name string) (*TableInfo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT name, type_name, columns, fingerprint, seq
		FROM dynq_tables
		WHERE name = ?
	`, name)
	info, err := scanTable(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("table %s does not exist", name)
	}
	if err != nil {
		return nil, err
	}
	return info, nil
}

// Tables lists the catalog in creation order.
//
// Returns an empty slice (not nil) when no tables exist.
func (s *Store) Tables(ctx context.Context) ([]*TableInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, type_name, columns, fingerprint, seq
		FROM dynq_tables
		ORDER BY seq ASC, name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	tables := []*TableInfo{}
	for rows.Next() {
		info, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return tables, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTable(row scanner) (*TableInfo, error) {
	var info TableInfo
	var cols string
	if err := row.Scan(&info.Name, &info.TypeName, &cols, &info.Fingerprint, &info.Seq); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan table: %w", err)
	}
	parsed, err := unmarshalColumns(cols)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", info.Name, err)
	}
	info.Columns = parsed
	return &info, nil
}

// Query compiles sel with querysql and runs it. Every binding of sel must
// be explicit so that values can be decoded by type.
func (s *Store) Query(ctx context.Context, sel *queryir.Select) (*Result, error) {
	if sel == nil {
		return nil, fmt.Errorf("query: nil select")
	}
	if len(sel.Bindings) == 0 {
		return nil, fmt.Errorf("query %s: no bindings", sel.From)
	}
	query, args, err := querysql.NewSQLCompiler().Compile(sel)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", sel.From, err)
	}
	s.logger.Debug("store query", "sql", query, "args", args)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", sel.From, err)
	}
	defer rows.Close()

	res := &Result{Columns: make([]string, len(sel.Bindings)), Rows: [][]any{}}
	for i, b := range sel.Bindings {
		res.Columns[i] = b.As
	}
	raw := make([]any, len(sel.Bindings))
	dest := make([]any, len(sel.Bindings))
	for i := range raw {
		dest[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out := make([]any, len(raw))
		for i, v := range raw {
			out[i], err = querysql.Scan(v, sel.Bindings[i].Expr.ValueType())
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", res.Columns[i], err)
			}
		}
		res.Rows = append(res.Rows, out)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return res, nil
}
