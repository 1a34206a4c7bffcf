package store

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-leaderboard-cache/model"
	"github.com/goliatone/go-leaderboard-cache/pkg/apperrors"
	"github.com/goliatone/go-leaderboard-cache/service"
)

var _ service.UserService = (*UserStore)(nil)

type UserStore struct {
	db    *bun.DB
	users repository.Repository[*model.User]
}

func NewUserStore(db *bun.DB) *UserStore {
	return &UserStore{db: db, users: newUserRepository(db)}
}

func (s *UserStore) findUser(ctx context.Context, db bun.IDB, userID string) (*model.User, error) {
	return findOne(ctx, s.users, db, "get user", whereEq("user_id", userID))
}

// GetOrCreateUser inserts the user unless it already exists. Concurrent
// callers agree on a single creator through the conflict clause, which is
// also how the created flag is known.
func (s *UserStore) GetOrCreateUser(ctx context.Context, userID, name string) (*model.User, bool, error) {
	existing, err := s.findUser(ctx, s.db, userID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	res, err := s.db.NewInsert().
		Model(&model.User{UserID: userID, Name: name}).
		On("CONFLICT (user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, false, apperrors.NewStoreError("create user", err)
	}
	n, _ := res.RowsAffected()

	user, err := s.findUser(ctx, s.db, userID)
	if err != nil {
		return nil, false, err
	}
	return user, n == 1, nil
}

func (s *UserStore) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return s.findUser(ctx, s.db, userID)
}

func (s *UserStore) UpdateDorm(ctx context.Context, userID string, dorm *string) (*model.User, error) {
	var updated *model.User
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err := s.findUser(ctx, tx, userID)
		if err != nil || user == nil {
			return err
		}
		user.Dorm = dorm
		if _, err := s.users.UpdateTx(ctx, tx, user, setColumn("dorm", dorm)); err != nil {
			return apperrors.NewStoreError("update dorm", err)
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
