package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/dynq/internal/schema"
	"github.com/roach88/dynq/internal/store"
	"github.com/roach88/dynq/internal/types"
)

// QueryCommandOptions holds flags for the query command.
type QueryCommandOptions struct {
	*RootOptions
	TargetOptions
	QueryOptions
	DB   string // SQLite database path
	Load string // YAML rows appended to the table before querying
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryCommandOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <filter>",
		Short: "Run a filter against a SQLite table",
		Long: `Lower a Boolean filter to SQL and run it against a table of element rows.

With --load, the table is created if needed and the rows of the file are
appended before the query runs.

Examples:
  dynq query 'Age >= 21' --db people.db --table people --load people_data.yaml \
    --schema people.yaml --type Person
  dynq query 'Score == null' --select 'new(Name)' --db people.db --table people \
    --schema people.yaml --type Person --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	opts.TargetOptions.bind(cmd)
	opts.QueryOptions.bind(cmd)
	cmd.Flags().StringVar(&opts.DB, "db", "", "path to SQLite database")
	cmd.Flags().StringVar(&opts.Load, "load", "", "YAML rows to append to the table first")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runQuery(opts *QueryCommandOptions, filter string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)
	logger := opts.newLogger(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	tgt, err := loadTarget(&opts.TargetOptions, logger)
	if err != nil {
		return fail(formatter, err)
	}
	sel, err := lowerQuery(tgt, &opts.QueryOptions, filter)
	if err != nil {
		return fail(formatter, err)
	}

	st, err := store.Open(opts.DB, store.WithLogger(logger))
	if err != nil {
		return fail(formatter, &storeError{err})
	}
	defer st.Close()

	if opts.Load != "" {
		n, err := loadTable(ctx, st, opts.Table, tgt.elem, opts.Load)
		if err != nil {
			return fail(formatter, err)
		}
		formatter.VerboseLog("Appended %d row(s) to %s", n, opts.Table)
	}

	res, err := st.Query(ctx, sel)
	if err != nil {
		return fail(formatter, &storeError{err})
	}

	tb := &table{columns: res.Columns, types: make([]*types.Type, len(sel.Bindings)), rows: res.Rows}
	for i, b := range sel.Bindings {
		tb.types[i] = b.Expr.ValueType()
	}
	return tb.output(formatter)
}

// loadTable creates table for t if needed and appends the rows of path.
func loadTable(ctx context.Context, st *store.Store, table string, t *types.Type, path string) (int, error) {
	rows, err := schema.LoadRows(path, t)
	if err != nil {
		return 0, err
	}
	if _, err := st.CreateTable(ctx, table, t); err != nil {
		return 0, &storeError{err}
	}
	n, err := st.Insert(ctx, table, t, rows)
	if err != nil {
		return 0, &storeError{fmt.Errorf("load %s: %w", path, err)}
	}
	return n, nil
}
