package store

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-leaderboard-cache/model"
	"github.com/goliatone/go-leaderboard-cache/pkg/apperrors"
	"github.com/goliatone/go-leaderboard-cache/service"
)

var _ service.RewardService = (*RewardStore)(nil)

type RewardStore struct {
	db      *bun.DB
	rewards repository.Repository[*model.Reward]
}

func NewRewardStore(db *bun.DB) *RewardStore {
	return &RewardStore{db: db, rewards: newRewardRepository(db)}
}

func (s *RewardStore) GetAllRewards(ctx context.Context) ([]model.Reward, error) {
	return listAll(ctx, s.rewards, "get all rewards", "name")
}

func (s *RewardStore) GetRewardByName(ctx context.Context, name string) (*model.Reward, error) {
	return s.findReward(ctx, s.db, name)
}

func (s *RewardStore) findReward(ctx context.Context, db bun.IDB, name string) (*model.Reward, error) {
	return findOne(ctx, s.rewards, db, "get reward", whereEq("name", name))
}

func (s *RewardStore) UpsertRewardsBatch(ctx context.Context, rewards []model.Reward) (int, error) {
	if len(rewards) == 0 {
		return 0, nil
	}

	_, err := s.db.NewInsert().
		Model(&rewards).
		On("CONFLICT (name) DO UPDATE").
		Set("cost = EXCLUDED.cost").
		Set("stock = EXCLUDED.stock").
		Set("trade_limit = EXCLUDED.trade_limit").
		Exec(ctx)
	if err != nil {
		return 0, apperrors.NewStoreError("upsert rewards", err)
	}
	return len(rewards), nil
}

// DecrementStock takes amount units out of stock. The update only applies
// while enough stock remains, so concurrent purchases cannot oversell.
func (s *RewardStore) DecrementStock(ctx context.Context, name string, amount int) (*model.Reward, error) {
	var result *model.Reward
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		reward, err := s.findReward(ctx, tx, name)
		if err != nil || reward == nil {
			return err
		}
		if !reward.TracksStock() {
			result = reward
			return nil
		}

		res, err := tx.NewUpdate().
			Model((*model.Reward)(nil)).
			Set("stock = stock - ?", amount).
			Where("name = ?", name).
			Where("stock >= ?", amount).
			Exec(ctx)
		if err != nil {
			return apperrors.NewStoreError("decrement stock", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return &apperrors.ErrInsufficientStock{
				Reward:    name,
				Requested: amount,
				Available: reward.Stock,
			}
		}

		result, err = s.findReward(ctx, tx, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *RewardStore) IncrementStock(ctx context.Context, name string, amount int) (*model.Reward, error) {
	var result *model.Reward
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		reward, err := s.findReward(ctx, tx, name)
		if err != nil || reward == nil {
			return err
		}
		if !reward.TracksStock() {
			result = reward
			return nil
		}

		_, err = tx.NewUpdate().
			Model((*model.Reward)(nil)).
			Set("stock = stock + ?", amount).
			Where("name = ?", name).
			Exec(ctx)
		if err != nil {
			return apperrors.NewStoreError("increment stock", err)
		}

		result, err = s.findReward(ctx, tx, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
