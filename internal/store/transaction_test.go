package store

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInTransactionBeginFailure(t *testing.T) {
	t.Parallel()

	// A closed pool cannot begin a transaction, so fn must never run and
	// the failure must carry the transaction sentinel.
	db, err := sql.Open("pgx", "")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	called := false
	err = RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, ErrTransactionFailed)
	assert.False(t, called)
}
