package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/dynq/internal/engine"
	"github.com/roach88/dynq/internal/expr"
	"github.com/roach88/dynq/internal/parser"
	"github.com/roach88/dynq/internal/queryir"
	"github.com/roach88/dynq/internal/querysql"
	"github.com/roach88/dynq/internal/record"
	"github.com/roach88/dynq/internal/schema"
	"github.com/roach88/dynq/internal/store"
	"github.com/roach88/dynq/internal/types"
)

// Harness runs the cases of one scenario.
type Harness struct {
	scenario *Scenario
	schema   *schema.Schema
	elem     *types.Type
	rows     []any
	store    *store.Store
	eval     *engine.Evaluator
	records  *record.Cache
	logger   *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario gets a fresh record cache and, when it names a table, a
// fresh in-memory database, so results do not depend on run order.
//
// Execution flow:
// 1. Load the schema and data rows
// 2. Create and fill the table, if any
// 3. Compile, evaluate and lower every case
// 4. Check expectations
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with debug events sent to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	sch, err := schema.Load(scenario.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	elem, err := sch.Lookup(scenario.Type)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve type: %w", err)
	}

	h := &Harness{
		scenario: scenario,
		schema:   sch,
		elem:     elem,
		eval:     engine.New(engine.WithLogger(logger)),
		records:  record.NewCache(record.WithLogger(logger)),
		logger:   logger,
	}

	if scenario.Data != "" {
		h.rows, err = schema.LoadRows(scenario.Data, elem)
		if err != nil {
			return nil, fmt.Errorf("failed to load data: %w", err)
		}
	}

	ctx := context.Background()
	if scenario.Table != "" {
		st, err := store.Open(":memory:", store.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory store: %w", err)
		}
		defer st.Close()
		if _, err := st.CreateTable(ctx, scenario.Table, elem); err != nil {
			return nil, fmt.Errorf("failed to create table: %w", err)
		}
		if _, err := st.Insert(ctx, scenario.Table, elem, h.rows); err != nil {
			return nil, fmt.Errorf("failed to insert rows: %w", err)
		}
		h.store = st
	}

	result := NewResult()
	for _, c := range scenario.Cases {
		cr, err := h.runCase(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", c.Name, err)
		}
		result.Cases = append(result.Cases, *cr)
		for _, aerr := range EvaluateExpect(c, cr) {
			result.AddError(aerr.Error())
		}
	}
	return result, nil
}

func (h *Harness) config(it *expr.Parameter) parser.Config {
	return parser.Config{
		Params:  []*expr.Parameter{it},
		Types:   h.schema.Types(),
		Records: h.records,
		Logger:  h.logger,
	}
}

// runCase returns an error only for harness failures; compile and
// evaluation failures are recorded in the CaseResult.
func (h *Harness) runCase(ctx context.Context, c Case) (*CaseResult, error) {
	cr := &CaseResult{Name: c.Name}
	it := &expr.Parameter{Typ: h.elem}
	cfg := h.config(it)
	if c.Result != "" {
		rt, err := h.schema.Lookup(c.Result)
		if err != nil {
			return nil, fmt.Errorf("result type: %w", err)
		}
		cfg.ResultType = rt
	}

	l, err := parser.ParseLambda(c.Expr, cfg)
	if err != nil {
		cr.Error, cr.Stage = err.Error(), StageCompile
		if pe, ok := expr.AsParseError(err); ok {
			cr.Position = pe.Pos
		}
		return cr, nil
	}
	cr.Type = l.Type().String()
	cr.Tree = expr.Format(l.Body)

	var keys []parser.Ordering
	if c.OrderBy != "" {
		keys, err = parser.ParseOrdering(c.OrderBy, h.config(it))
		if err != nil {
			cr.Error, cr.Stage = err.Error(), StageCompile
			return cr, nil
		}
	}

	if h.rows == nil {
		return cr, nil
	}
	isFilter := l.Type().NonNullable() == types.BoolType
	if isFilter && h.scenario.Key != "" {
		if err := h.filter(ctx, cr, l, it, keys); err != nil {
			return nil, err
		}
		return cr, nil
	}
	if !isFilter {
		h.project(ctx, cr, l, it, keys)
	}
	return cr, nil
}

func (h *Harness) filter(ctx context.Context, cr *CaseResult, l *expr.Lambda, it *expr.Parameter, keys []parser.Ordering) error {
	key, err := parser.ParseLambda(h.scenario.Key, h.config(it))
	if err != nil {
		return fmt.Errorf("key: %w", err)
	}

	matched, err := h.eval.Filter(ctx, l, h.rows)
	if err == nil && keys != nil {
		matched, err = h.eval.Sort(ctx, it, keys, matched)
	}
	if err != nil {
		cr.Error, cr.Stage = err.Error(), StageEval
		return nil
	}
	labels, err := h.eval.Project(ctx, key, matched)
	if err != nil {
		return fmt.Errorf("key: %w", err)
	}
	cr.Rows = formatAll(labels, key.Type())

	if h.store == nil {
		return nil
	}
	sel, err := queryir.Lower(queryir.Request{
		Table: h.scenario.Table, Element: h.elem,
		Where: l, Select: key, OrderBy: keys, Param: it,
	})
	if err != nil {
		if queryir.IsLowerError(err) {
			cr.Error, cr.Stage = err.Error(), StageLower
			return nil
		}
		return err
	}
	cr.Warnings = queryir.Validate(sel).Warnings
	query, args, err := querysql.NewSQLCompiler().Compile(sel)
	if err != nil {
		return fmt.Errorf("compile sql: %w", err)
	}
	cr.SQL, cr.Args = query, args

	res, err := h.store.Query(ctx, sel)
	if err != nil {
		cr.Error, cr.Stage = err.Error(), StageSQL
		return nil
	}
	sqlLabels := make([]any, len(res.Rows))
	for i, row := range res.Rows {
		sqlLabels[i] = row[0]
	}
	cr.SQLRows = formatAll(sqlLabels, key.Type())
	if !slices.Equal(cr.Rows, cr.SQLRows) {
		cr.Error, cr.Stage = fmt.Sprintf("SQLite returned %v, evaluator matched %v", cr.SQLRows, cr.Rows), StageSQL
	}
	return nil
}

func (h *Harness) project(ctx context.Context, cr *CaseResult, l *expr.Lambda, it *expr.Parameter, keys []parser.Ordering) {
	items := h.rows
	var err error
	if keys != nil {
		items, err = h.eval.Sort(ctx, it, keys, items)
	}
	var values []any
	if err == nil {
		values, err = h.eval.Project(ctx, l, items)
	}
	if err != nil {
		cr.Error, cr.Stage = err.Error(), StageEval
		return
	}
	cr.Values = formatAll(values, l.Type())
}

func formatAll(values []any, t *types.Type) []string {
	out := make([]string, len(values))
	for i, v := range values {
		if v == nil {
			out[i] = "null"
			continue
		}
		out[i] = types.FormatValue(v, t)
	}
	return out
}
