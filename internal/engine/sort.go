package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/dynq/internal/expr"
	"github.com/roach88/dynq/internal/parser"
	"github.com/roach88/dynq/internal/types"
)

// Sort orders items by keys, each evaluated with param bound to the item.
// The sort is stable and nulls order first.
func (e *Evaluator) Sort(ctx context.Context, param *expr.Parameter, keys []parser.Ordering, items []any) ([]any, error) {
	type row struct {
		item any
		keys []any
	}
	rows := make([]row, len(items))
	for i, it := range items {
		rows[i].item = it
		rows[i].keys = make([]any, len(keys))
		for k, key := range keys {
			v, err := e.EvalExpr(ctx, key.Selector, map[*expr.Parameter]any{param: it})
			if err != nil {
				return nil, fmt.Errorf("item %d key %d: %w", i, k, err)
			}
			rows[i].keys[k] = v
		}
	}

	var cmpErr error
	slices.SortStableFunc(rows, func(a, b row) int {
		for k, key := range keys {
			c, err := compareKeys(a.keys[k], b.keys[k])
			if err != nil && cmpErr == nil {
				cmpErr = err
			}
			if !key.Ascending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
	if cmpErr != nil {
		return nil, newError(ErrCodeUnsupported, "%v", cmpErr)
	}

	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r.item
	}
	return out, nil
}

func compareKeys(a, b any) (int, error) {
	switch {
	case a == nil && b == nil:
		return 0, nil
	case a == nil:
		return -1, nil
	case b == nil:
		return 1, nil
	}
	return types.CompareValues(a, b)
}
