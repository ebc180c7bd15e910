package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roach88/dynq/internal/members"
	"github.com/roach88/dynq/internal/queryir"
	"github.com/roach88/dynq/internal/querysql"
	"github.com/roach88/dynq/internal/types"
)

// CreateTable creates a table holding values of t, one column per scalar
// field or property (see queryir.Columns). Creating a table that already
// exists with the same columns is a no-op; different columns are an error.
func (s *Store) CreateTable(ctx context.Context, name string, t *types.Type) (*TableInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("create table: name is required")
	}
	cols := queryir.Columns(t)
	if len(cols) == 0 {
		return nil, fmt.Errorf("create table %s: %s has no scalar members", name, t)
	}
	colsJSON, fp, err := marshalColumns(t.String(), cols)
	if err != nil {
		return nil, fmt.Errorf("create table %s: %w", name, err)
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		var existing string
		err := tx.QueryRowContext(ctx, `SELECT fingerprint FROM dynq_tables WHERE name = ?`, name).Scan(&existing)
		switch {
		case err == nil:
			if existing != fp {
				return fmt.Errorf("table %s exists with a different schema", name)
			}
			return nil
		case err != sql.ErrNoRows:
			return fmt.Errorf("read catalog: %w", err)
		}

		if _, err := tx.ExecContext(ctx, createTableSQL(name, cols)); err != nil {
			return fmt.Errorf("create: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO dynq_tables (name, type_name, columns, fingerprint, seq)
			VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM dynq_tables))
		`, name, t.String(), colsJSON, fp)
		if err != nil {
			return fmt.Errorf("write catalog: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create table %s: %w", name, err)
	}
	s.logger.Debug("store table", "name", name, "type", t.String(), "columns", len(cols))
	return s.Table(ctx, name)
}

// createTableSQL renders the DDL for a row table. Columns whose type cannot
// hold null are NOT NULL.
func createTableSQL(name string, cols []*queryir.Column) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		def := querysql.QuoteIdent(c.Name) + " " + querysql.ColumnType(c.Type)
		if !c.Type.CanBeNull() {
			def += " NOT NULL"
		}
		defs[i] = def
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", querysql.QuoteIdent(name), strings.Join(defs, ", "))
}

// Insert appends rows, values of t, to a table created for t. Rows are
// written in one transaction; either all are stored or none.
func (s *Store) Insert(ctx context.Context, table string, t *types.Type, rows []any) (int, error) {
	cols := queryir.Columns(t)
	getters := make([]*types.Member, len(cols))
	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		m := members.FindPropertyOrField(t, c.Name, false)
		if m == nil || m.Get == nil {
			return 0, fmt.Errorf("insert into %s: %s has no readable member %s", table, t, c.Name)
		}
		getters[i] = m
		names[i] = querysql.QuoteIdent(c.Name)
		marks[i] = "?"
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		querysql.QuoteIdent(table), strings.Join(names, ", "), strings.Join(marks, ", "))

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("prepare: %w", err)
		}
		defer stmt.Close()

		for n, row := range rows {
			args := make([]any, len(getters))
			for i, m := range getters {
				v, err := m.Get(row)
				if err != nil {
					return fmt.Errorf("row %d: %s: %w", n, m.Name, err)
				}
				args[i], err = querysql.Param(v, cols[i].Type)
				if err != nil {
					return fmt.Errorf("row %d: %s: %w", n, m.Name, err)
				}
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("row %d: %w", n, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", table, err)
	}
	s.logger.Debug("store insert", "table", table, "rows", len(rows))
	return len(rows), nil
}
