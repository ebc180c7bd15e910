package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dynq/internal/testutil"
)

func TestQuota_Check(t *testing.T) {
	q := newQuota(2)
	require.NoError(t, q.check())
	require.NoError(t, q.check())

	err := q.check()
	require.Error(t, err)
	var se *StepsExceededError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 3, se.Steps)
	assert.Equal(t, 2, se.Limit)
	assert.Equal(t, "evaluation exceeded max steps quota: 3 steps > 2 limit", err.Error())
}

func TestQuota_Disabled(t *testing.T) {
	q := newQuota(0)
	for i := 0; i < 100; i++ {
		require.NoError(t, q.check())
	}
}

func TestEval_StepsExceeded(t *testing.T) {
	l, r := compile(t, "Orders.Sum(Total) + Orders.Sum(Qty)")
	person := testutil.People(t)[bob]

	_, err := New(WithRegistry(r), WithMaxSteps(5)).Eval(context.Background(), l, person)
	require.Error(t, err)
	assert.True(t, IsStepsExceededError(err))
	assert.True(t, IsStepsExceededError(fmt.Errorf("wrapped: %w", err)))

	_, err = New(WithRegistry(r), WithMaxSteps(0)).Eval(context.Background(), l, person)
	require.NoError(t, err)
}
