package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/dynq/internal/expr"
	"github.com/roach88/dynq/internal/ir"
	"github.com/roach88/dynq/internal/types"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	TargetOptions
	Result string // result type expression
	Lambda bool   // dump the enclosing lambda, not just its body
	Output string // output file path
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <expression>",
		Short: "Compile an expression to a typed tree",
		Long: `Compile an expression against a schema type and print its static type,
expression tree and content fingerprint.

The tree is printed as an s-expression in text format and as a canonical
document in JSON format. Equal trees have equal fingerprints.

Examples:
  dynq compile 'Age > 20 and Name.StartsWith("B")' --schema people.yaml --type Person
  dynq compile 'Age' --result Int64 --schema people.yaml --type Person --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	opts.TargetOptions.bind(cmd)
	cmd.Flags().StringVar(&opts.Result, "result", "", "type the expression must promote to")
	cmd.Flags().BoolVar(&opts.Lambda, "lambda", false, "include the lambda and its parameter in the tree")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the JSON document to a file")

	return cmd
}

func runCompile(opts *CompileOptions, source string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)
	logger := opts.newLogger(cmd)

	tgt, err := loadTarget(&opts.TargetOptions, logger)
	if err != nil {
		return fail(formatter, err)
	}
	var resultType *types.Type
	if opts.Result != "" {
		if resultType, err = tgt.schema.Lookup(opts.Result); err != nil {
			return fail(formatter, err)
		}
	}

	l, err := tgt.lambda(source, resultType)
	if err != nil {
		return fail(formatter, err)
	}
	formatter.VerboseLog("Compiled %q to %s", source, l.Type())

	var root expr.Expr = l.Body
	if opts.Lambda {
		root = l
	}
	doc, err := compileDocument(source, root)
	if err != nil {
		return fail(formatter, err)
	}

	if opts.Output != "" {
		if err := writeJSONFile(opts.Output, doc); err != nil {
			return formatter.Fail(ErrCodeWriteFailed, fmt.Errorf("writing output file: %w", err), nil)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(doc)
	}
	w := formatter.Writer
	fmt.Fprintf(w, "Type: %s\n", doc.Type)
	fmt.Fprintf(w, "Tree: %s\n", expr.Format(root))
	fmt.Fprintf(w, "Fingerprint: %s\n", doc.Fingerprint)
	if opts.Output != "" {
		fmt.Fprintf(w, "Wrote compiled tree to %s\n", opts.Output)
	}
	return nil
}

// compileDocument builds the exported form of a compiled tree.
func compileDocument(source string, root expr.Expr) (*ir.CompileDocument, error) {
	tree := expr.Dump(root)
	fp, err := ir.Fingerprint(ir.DomainTree, tree)
	if err != nil {
		return nil, err
	}
	return &ir.CompileDocument{
		Source:      source,
		Type:        root.Type().String(),
		Tree:        tree,
		Fingerprint: fp,
		IRVersion:   ir.IRVersion,
	}, nil
}

// writeJSONFile writes v as indented JSON.
func writeJSONFile(filename string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling document: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
