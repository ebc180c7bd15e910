package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/dynq/internal/expr"
	"github.com/roach88/dynq/internal/types"
)

// Evaluator executes compiled trees.
type Evaluator struct {
	maxSteps int
	registry *types.Registry
	logger   *slog.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithMaxSteps sets the node evaluation quota per call. Zero disables it.
//
// Default: DefaultMaxSteps.
func WithMaxSteps(maxSteps int) Option {
	return func(e *Evaluator) {
		e.maxSteps = maxSteps
	}
}

// WithRegistry sets the registry used to normalize arguments. Defaults to
// types.Default().
func WithRegistry(r *types.Registry) Option {
	return func(e *Evaluator) {
		e.registry = r
	}
}

// WithLogger sets the logger for evaluation failures.
func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = l
	}
}

// New creates an Evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		maxSteps: DefaultMaxSteps,
		registry: types.Default(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Eval invokes l with args, one per parameter. Arguments are normalized to
// the canonical representation of the parameter types, so host code may
// pass an int where an Int32 is expected.
func (e *Evaluator) Eval(ctx context.Context, l *expr.Lambda, args ...any) (any, error) {
	if len(args) != len(l.Params) {
		return nil, fmt.Errorf("lambda takes %d arguments, got %d", len(l.Params), len(args))
	}
	s := e.newScope(ctx)
	for i, p := range l.Params {
		v, err := e.normalize(args[i], p.Typ)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		s.bind(p, v)
	}
	v, err := s.eval(l.Body)
	if err != nil {
		e.logger.Debug("evaluation failed", "expr", expr.Format(l), "error", err)
		return nil, err
	}
	return v, nil
}

// EvalExpr evaluates e with the given parameter bindings.
func (e *Evaluator) EvalExpr(ctx context.Context, x expr.Expr, bindings map[*expr.Parameter]any) (any, error) {
	s := e.newScope(ctx)
	for p, v := range bindings {
		nv, err := e.normalize(v, p.Typ)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", p.Name, err)
		}
		s.bind(p, nv)
	}
	v, err := s.eval(x)
	if err != nil {
		e.logger.Debug("evaluation failed", "expr", expr.Format(x), "error", err)
		return nil, err
	}
	return v, nil
}

// Filter returns the items for which pred, a lambda over one parameter,
// is true.
func (e *Evaluator) Filter(ctx context.Context, pred *expr.Lambda, items []any) ([]any, error) {
	if len(pred.Params) != 1 || pred.Type().NonNullable() != types.BoolType {
		return nil, fmt.Errorf("filter requires a boolean lambda over one parameter")
	}
	var out []any
	for i, it := range items {
		v, err := e.Eval(ctx, pred, it)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		if b, _ := v.(bool); b {
			out = append(out, it)
		}
	}
	return out, nil
}

// Project maps every item through sel, a lambda over one parameter.
func (e *Evaluator) Project(ctx context.Context, sel *expr.Lambda, items []any) ([]any, error) {
	out := make([]any, len(items))
	for i, it := range items {
		v, err := e.Eval(ctx, sel, it)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func (e *Evaluator) normalize(v any, t *types.Type) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch t.NonNullable().Kind() {
	case types.Object, types.Interface, types.Record, types.Sequence:
		return v, nil
	}
	return e.registry.Value(v, t)
}
