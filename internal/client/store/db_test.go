package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func TestOpen_AppliesMigrations(t *testing.T) {
	db, err := Open(context.Background(), "file:storetest?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`INSERT INTO metadata(key, value) VALUES('k', 'v')`)
	require.NoError(t, err)

	var v string
	require.NoError(t, db.QueryRow(`SELECT value FROM metadata WHERE key='k'`).Scan(&v))
	require.Equal(t, "v", v)
}

func TestOpen_IsIdempotent(t *testing.T) {
	ctx := context.Background()

	db, err := Open(ctx, "file:storetest2?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// Re-running migrations on the same database must be a no-op.
	db2, err := Open(ctx, "file:storetest2?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db2.Close() })
}
