package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/dynq/internal/ir"
	"github.com/roach88/dynq/internal/queryir"
	"github.com/roach88/dynq/internal/querysql"
	"github.com/roach88/dynq/internal/types"
)

// SQLOptions holds flags for the sql command.
type SQLOptions struct {
	*RootOptions
	TargetOptions
	QueryOptions
}

// QueryOptions shape a lowered query.
type QueryOptions struct {
	Table   string
	OrderBy string
	Select  string
}

func (o *QueryOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Table, "table", "", "table holding the element rows")
	cmd.Flags().StringVar(&o.OrderBy, "order-by", "", "ordering list, e.g. 'Age desc, Name'")
	cmd.Flags().StringVar(&o.Select, "select", "", "projection, e.g. 'new(Name, Age)' (default: every scalar column)")
	_ = cmd.MarkFlagRequired("table")
}

// NewSQLCommand creates the sql command.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SQLOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sql <filter>",
		Short: "Lower a filter to a SQLite statement",
		Long: `Compile a Boolean filter and lower it, with an optional ordering and
projection, to a parameterized SQLite SELECT statement.

Constructs the portable fragment does not cover are reported as warnings.
Filters with no SQL form fail with ` + ErrCodeLower + `.

Examples:
  dynq sql 'Age > 20 and Score == null' --schema people.yaml --type Person --table people
  dynq sql 'true' --order-by 'Name desc' --select 'new(Name)' --schema people.yaml --type Person --table people`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(opts, args[0], cmd)
		},
	}

	opts.TargetOptions.bind(cmd)
	opts.QueryOptions.bind(cmd)
	return cmd
}

// lowerQuery compiles the filter, ordering and projection of a query and
// lowers them to a Select over table.
func lowerQuery(tgt *target, q *QueryOptions, filter string) (*queryir.Select, error) {
	where, err := tgt.lambda(filter, types.BoolType)
	if err != nil {
		return nil, err
	}
	keys, err := tgt.ordering(q.OrderBy)
	if err != nil {
		return nil, err
	}
	sel, err := tgt.selection(q.Select)
	if err != nil {
		return nil, err
	}
	return queryir.Lower(queryir.Request{
		Table:   q.Table,
		Element: tgt.elem,
		Where:   where,
		Select:  sel,
		OrderBy: keys,
		Param:   tgt.it,
	})
}

func runSQL(opts *SQLOptions, filter string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)

	tgt, err := loadTarget(&opts.TargetOptions, opts.newLogger(cmd))
	if err != nil {
		return fail(formatter, err)
	}
	sel, err := lowerQuery(tgt, &opts.QueryOptions, filter)
	if err != nil {
		return fail(formatter, err)
	}
	query, args, err := querysql.NewSQLCompiler().Compile(sel)
	if err != nil {
		return fail(formatter, err)
	}
	warnings := queryir.Validate(sel).Warnings

	doc := ir.SQLDocument{SQL: query, Args: make([]ir.IRValue, len(args)), Warnings: warnings}
	for i, a := range args {
		doc.Args[i] = querysql.ArgIR(a)
	}
	if formatter.Format == "json" {
		return formatter.Success(doc)
	}

	w := formatter.Writer
	fmt.Fprintln(w, query)
	for i, a := range args {
		if a == nil {
			a = "NULL"
		}
		fmt.Fprintf(w, "  ?%d = %v\n", i+1, a)
	}
	for _, warn := range warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
	return nil
}
