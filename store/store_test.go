package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-leaderboard-cache/pkg/testsupport"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db := testsupport.OpenSQLite(t)
	require.NoError(t, CreateSchema(context.Background(), db))
	testsupport.Seed(t, db, testsupport.LoadDataset(t, "campus.json"))
	return db
}

func strPtr(s string) *string { return &s }

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("mysql", "dsn", 0)
	assert.Error(t, err)
}

func TestOpen_SQLite(t *testing.T) {
	db, err := Open(DriverSQLite, "file:open_test?mode=memory&cache=shared", 1)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, CreateSchema(ctx, db))
	// Creating twice is a no-op.
	require.NoError(t, CreateSchema(ctx, db))

	user, err := NewUserStore(db).GetUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, user)
}
