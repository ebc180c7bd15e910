package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/dynq/internal/expr"
	"github.com/roach88/dynq/internal/ir"
)

// OrderOptions holds flags for the order command.
type OrderOptions struct {
	*RootOptions
	TargetOptions
}

// NewOrderCommand creates the order command.
func NewOrderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OrderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "order <ordering>",
		Short: "Compile an ordering list",
		Long: `Compile a comma-separated ordering list, each key optionally followed
by asc, ascending, desc or descending.

Examples:
  dynq order 'Age desc, Name' --schema people.yaml --type Person`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrder(opts, args[0], cmd)
		},
	}

	opts.TargetOptions.bind(cmd)
	return cmd
}

func runOrder(opts *OrderOptions, source string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)

	tgt, err := loadTarget(&opts.TargetOptions, opts.newLogger(cmd))
	if err != nil {
		return fail(formatter, err)
	}
	keys, err := tgt.ordering(source)
	if err != nil {
		return fail(formatter, err)
	}

	if formatter.Format == "json" {
		docs := make([]ir.OrderingDocument, len(keys))
		for i, k := range keys {
			docs[i] = ir.OrderingDocument{Tree: expr.Dump(k.Selector), Ascending: k.Ascending}
		}
		return formatter.Success(docs)
	}
	for _, k := range keys {
		dir := "asc"
		if !k.Ascending {
			dir = "desc"
		}
		fmt.Fprintf(formatter.Writer, "%s %s %s\n", expr.Format(k.Selector), dir, k.Selector.Type())
	}
	return nil
}
