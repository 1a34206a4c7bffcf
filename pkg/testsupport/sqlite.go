package testsupport

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-leaderboard-cache/model"
)

var sqliteSeq atomic.Int64

// OpenSQLite opens a private in-memory SQLite database that lives until the
// test ends. A single connection keeps every query on the same database.
func OpenSQLite(t testing.TB) *bun.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb_%d?mode=memory&cache=shared", sqliteSeq.Add(1))
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })
	return db
}

// Dataset is a JSON seed for a database or a MemoryStore.
type Dataset struct {
	Users        []model.User        `json:"users"`
	Challenges   []model.Challenge   `json:"challenges"`
	Rewards      []model.Reward      `json:"rewards"`
	Completions  []model.Completion  `json:"completions"`
	Transactions []model.Transaction `json:"transactions"`
}

// LoadDataset reads a Dataset from testdata.
func LoadDataset(t testing.TB, filename string) Dataset {
	t.Helper()

	var ds Dataset
	LoadFixtureJSON(t, FixturePath(filename), &ds)
	return ds
}

// Seed inserts every non-empty table of ds. The schema must already exist.
func Seed(t testing.TB, db *bun.DB, ds Dataset) {
	t.Helper()

	ctx := context.Background()
	tables := []struct {
		name  string
		rows  any
		empty bool
	}{
		{"users", &ds.Users, len(ds.Users) == 0},
		{"challenges", &ds.Challenges, len(ds.Challenges) == 0},
		{"rewards", &ds.Rewards, len(ds.Rewards) == 0},
		{"completions", &ds.Completions, len(ds.Completions) == 0},
		{"transactions", &ds.Transactions, len(ds.Transactions) == 0},
	}
	for _, table := range tables {
		if table.empty {
			continue
		}
		if _, err := db.NewInsert().Model(table.rows).Exec(ctx); err != nil {
			t.Fatalf("failed to seed %s: %v", table.name, err)
		}
	}
}
