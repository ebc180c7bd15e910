package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/dynq/internal/engine"
	"github.com/roach88/dynq/internal/expr"
	"github.com/roach88/dynq/internal/parser"
	"github.com/roach88/dynq/internal/queryir"
	"github.com/roach88/dynq/internal/record"
	"github.com/roach88/dynq/internal/schema"
	"github.com/roach88/dynq/internal/types"
)

// TargetOptions name the element type expressions are compiled against.
type TargetOptions struct {
	Schema string // schema file or CUE directory
	Type   string // element type expression
}

func (o *TargetOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Schema, "schema", "", "schema file (.yaml, .cue) or CUE directory")
	cmd.Flags().StringVar(&o.Type, "type", "", "element type, e.g. Person")
	_ = cmd.MarkFlagRequired("schema")
	_ = cmd.MarkFlagRequired("type")
}

// target is a loaded element type and the implicit "it" over it.
type target struct {
	schema  *schema.Schema
	elem    *types.Type
	it      *expr.Parameter
	records *record.Cache
	logger  *slog.Logger
}

func loadTarget(o *TargetOptions, logger *slog.Logger) (*target, error) {
	sch, err := schema.Load(o.Schema)
	if err != nil {
		return nil, err
	}
	elem, err := sch.Lookup(o.Type)
	if err != nil {
		return nil, err
	}
	logger.Debug("schema loaded", "path", o.Schema, "types", len(sch.Types()), "element", elem.String())
	return &target{
		schema:  sch,
		elem:    elem,
		it:      &expr.Parameter{Typ: elem},
		records: record.NewCache(record.WithLogger(logger)),
		logger:  logger,
	}, nil
}

func (t *target) config() parser.Config {
	return parser.Config{
		Params:  []*expr.Parameter{t.it},
		Types:   t.schema.Types(),
		Records: t.records,
		Logger:  t.logger,
	}
}

// lambda compiles src over "it", promoted to resultType when it is set.
func (t *target) lambda(src string, resultType *types.Type) (*expr.Lambda, error) {
	cfg := t.config()
	cfg.ResultType = resultType
	return parser.ParseLambda(src, cfg)
}

func (t *target) ordering(src string) ([]parser.Ordering, error) {
	if src == "" {
		return nil, nil
	}
	return parser.ParseOrdering(src, t.config())
}

// selection compiles src as a projection, or every scalar column of the
// element when src is empty.
func (t *target) selection(src string) (*expr.Lambda, error) {
	if src == "" {
		cols := queryir.Columns(t.elem)
		if len(cols) == 0 {
			return nil, fmt.Errorf("%s has no scalar members; pass --select", t.elem)
		}
		fields := make([]string, len(cols))
		for i, c := range cols {
			fields[i] = fmt.Sprintf("it.%s as %s", c.Name, c.Name)
		}
		src = "new(" + strings.Join(fields, ", ") + ")"
	}
	return t.lambda(src, nil)
}

// errorCode maps an error to the code reported for it.
func errorCode(err error) string {
	if code, ok := schema.ErrorCode(err); ok {
		return code
	}
	if _, ok := expr.AsParseError(err); ok {
		return ErrCodeParse
	}
	if queryir.IsLowerError(err) {
		return ErrCodeLower
	}
	if _, ok := engine.ErrorCode(err); ok || engine.IsStepsExceededError(err) {
		return ErrCodeEval
	}
	var storeErr *storeError
	if errors.As(err, &storeErr) {
		return ErrCodeStore
	}
	return ErrCodeGeneric
}

// storeError marks database failures.
type storeError struct{ err error }

func (e *storeError) Error() string { return e.err.Error() }
func (e *storeError) Unwrap() error { return e.err }

// fail reports err through the formatter and returns the exit error of the
// command. Parse errors carry their position as details.
func fail(formatter *OutputFormatter, err error) error {
	code := errorCode(err)
	var details any
	if pe, ok := expr.AsParseError(err); ok {
		details = map[string]int{"position": pe.Pos}
	}
	return formatter.Fail(code, err, details)
}
