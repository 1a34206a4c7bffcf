package store

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-leaderboard-cache/model"
	"github.com/goliatone/go-leaderboard-cache/pkg/apperrors"
)

// Entity CRUD goes through go-repository-bun. Aggregates, the ranking query,
// conflict-aware upserts and the conditional stock update use bun directly.

func noUUID[T any](T) uuid.UUID { return uuid.Nil }

func keepUUID[T any](T, uuid.UUID) {}

func newUserRepository(db *bun.DB) repository.Repository[*model.User] {
	return repository.NewRepository[*model.User](db, repository.ModelHandlers[*model.User]{
		NewRecord:     func() *model.User { return &model.User{} },
		GetID:         noUUID[*model.User],
		SetID:         keepUUID[*model.User],
		GetIdentifier: func() string { return "user_id" },
	})
}

func newChallengeRepository(db *bun.DB) repository.Repository[*model.Challenge] {
	return repository.NewRepository[*model.Challenge](db, repository.ModelHandlers[*model.Challenge]{
		NewRecord:     func() *model.Challenge { return &model.Challenge{} },
		GetID:         noUUID[*model.Challenge],
		SetID:         keepUUID[*model.Challenge],
		GetIdentifier: func() string { return "name" },
	})
}

func newRewardRepository(db *bun.DB) repository.Repository[*model.Reward] {
	return repository.NewRepository[*model.Reward](db, repository.ModelHandlers[*model.Reward]{
		NewRecord:     func() *model.Reward { return &model.Reward{} },
		GetID:         noUUID[*model.Reward],
		SetID:         keepUUID[*model.Reward],
		GetIdentifier: func() string { return "name" },
	})
}

func newTransactionRepository(db *bun.DB) repository.Repository[*model.Transaction] {
	return repository.NewRepository[*model.Transaction](db, repository.ModelHandlers[*model.Transaction]{
		NewRecord: func() *model.Transaction { return &model.Transaction{} },
		GetID: func(t *model.Transaction) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *model.Transaction, id uuid.UUID) {
			t.ID = id
		},
		GetIdentifier: func() string { return "id" },
	})
}

func whereEq(column string, value any) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("? = ?", bun.Ident(column), value)
	}
}

func orderBy(column string) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("? ASC", bun.Ident(column))
	}
}

// setColumn writes value to column of the record's own row. Explicit SET
// clauses also write nil values.
func setColumn(column string, value any) repository.UpdateCriteria {
	return func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("? = ?", bun.Ident(column), value).WherePK()
	}
}

// findOne returns the record matching criteria, or nil when there is none.
func findOne[T any](ctx context.Context, repo repository.Repository[*T], db bun.IDB, op string, criteria ...repository.SelectCriteria) (*T, error) {
	criteria = append(criteria, func(q *bun.SelectQuery) *bun.SelectQuery { return q.Limit(1) })
	records, _, err := repo.ListTx(ctx, db, criteria...)
	if err != nil {
		return nil, apperrors.NewStoreError(op, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// listAll returns every record ordered by column. Never nil.
func listAll[T any](ctx context.Context, repo repository.Repository[*T], op, column string) ([]T, error) {
	records, _, err := repo.List(ctx, orderBy(column))
	if err != nil {
		return nil, apperrors.NewStoreError(op, err)
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		out = append(out, *r)
	}
	return out, nil
}
