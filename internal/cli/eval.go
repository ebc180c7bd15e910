package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/dynq/internal/engine"
	"github.com/roach88/dynq/internal/schema"
	"github.com/roach88/dynq/internal/types"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	TargetOptions
	Data     string // YAML rows of the element type
	OrderBy  string
	Select   string
	MaxSteps int
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluate an expression over YAML rows",
		Long: `Evaluate an expression over every row of a data file.

A Boolean expression filters the rows, which are then ordered by --order-by
and projected with --select (default: every scalar column). Any other
expression is projected once per row.

Examples:
  dynq eval 'Age > 20' --schema people.yaml --type Person --data people_data.yaml
  dynq eval 'new(Name, Orders.Sum(Total) as Spent)' --order-by 'Name desc' \
    --schema people.yaml --type Person --data people_data.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], cmd)
		},
	}

	opts.TargetOptions.bind(cmd)
	cmd.Flags().StringVar(&opts.Data, "data", "", "YAML file holding a sequence of element values")
	cmd.Flags().StringVar(&opts.OrderBy, "order-by", "", "ordering list applied before projection")
	cmd.Flags().StringVar(&opts.Select, "select", "", "projection of filtered rows")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", engine.DefaultMaxSteps, "node evaluation quota per row (0 disables)")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func runEval(opts *EvalOptions, source string, cmd *cobra.Command) error {
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
	rows, err := schema.LoadRows(opts.Data, tgt.elem)
	if err != nil {
		return fail(formatter, err)
	}
	formatter.VerboseLog("Loaded %d row(s) from %s", len(rows), opts.Data)

	l, err := tgt.lambda(source, nil)
	if err != nil {
		return fail(formatter, err)
	}
	keys, err := tgt.ordering(opts.OrderBy)
	if err != nil {
		return fail(formatter, err)
	}

	ev := engine.New(engine.WithLogger(logger), engine.WithMaxSteps(opts.MaxSteps))
	proj := l
	if l.Type() == types.BoolType {
		if rows, err = ev.Filter(ctx, l, rows); err != nil {
			return fail(formatter, err)
		}
		if proj, err = tgt.selection(opts.Select); err != nil {
			return fail(formatter, err)
		}
		formatter.VerboseLog("%d row(s) matched", len(rows))
	}
	if keys != nil {
		if rows, err = ev.Sort(ctx, tgt.it, keys, rows); err != nil {
			return fail(formatter, err)
		}
	}
	values, err := ev.Project(ctx, proj, rows)
	if err != nil {
		return fail(formatter, err)
	}
	return tabulate(values, proj.Type()).output(formatter)
}
