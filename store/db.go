// Package store implements the service capabilities on top of bun. Postgres
// (lib/pq) is the production database; SQLite (mattn/go-sqlite3) is used by
// tests and local runs.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-leaderboard-cache/model"
	"github.com/goliatone/go-leaderboard-cache/pkg/apperrors"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Open connects to the database and wraps it with the matching bun dialect.
func Open(driver, dsn string, maxOpenConns int) (*bun.DB, error) {
	sqldb, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, apperrors.NewStoreError("open", err)
	}
	if maxOpenConns > 0 {
		sqldb.SetMaxOpenConns(maxOpenConns)
	}

	switch driver {
	case DriverPostgres:
		return bun.NewDB(sqldb, pgdialect.New()), nil
	case DriverSQLite:
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	default:
		sqldb.Close()
		return nil, fmt.Errorf("store: unsupported driver %q", driver)
	}
}

// CreateSchema creates the tables if they do not exist yet.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	tables := []struct {
		model       any
		foreignKeys []string
	}{
		{model: (*model.User)(nil)},
		{model: (*model.Challenge)(nil)},
		{model: (*model.Reward)(nil)},
		{
			model: (*model.Completion)(nil),
			foreignKeys: []string{
				`("user_id") REFERENCES "users" ("user_id") ON DELETE CASCADE`,
				`("challenge_name") REFERENCES "challenges" ("name") ON DELETE CASCADE`,
			},
		},
		{
			model: (*model.Transaction)(nil),
			foreignKeys: []string{
				`("user_id") REFERENCES "users" ("user_id") ON DELETE CASCADE`,
				`("reward_name") REFERENCES "rewards" ("name") ON DELETE CASCADE`,
			},
		},
	}

	for _, table := range tables {
		q := db.NewCreateTable().Model(table.model).IfNotExists()
		for _, fk := range table.foreignKeys {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return apperrors.NewStoreError("create schema", err)
		}
	}
	return nil
}
