package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/dynq/internal/testutil"
	"github.com/roach88/dynq/internal/types"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// peopleStore returns a store with testutil.People in table "people".
func peopleStore(t *testing.T, r *types.Registry) *Store {
	t.Helper()
	s := createTestStore(t)
	person := testutil.TypeOf[testutil.Person](t, r)
	ctx := context.Background()

	_, err := s.CreateTable(ctx, "people", person)
	require.NoError(t, err)

	var rows []any
	for _, p := range testutil.People(t) {
		rows = append(rows, p)
	}
	n, err := s.Insert(ctx, "people", person, rows)
	require.NoError(t, err)
	require.Equal(t, len(rows), n)
	return s
}
