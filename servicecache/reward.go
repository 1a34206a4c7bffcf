package servicecache

import (
	"context"

	"github.com/goliatone/go-leaderboard-cache/cache"
	"github.com/goliatone/go-leaderboard-cache/model"
	"github.com/goliatone/go-leaderboard-cache/service"
)

var _ service.RewardService = (*CachedRewardService)(nil)

// CachedRewardService decorates a RewardService with caching.
type CachedRewardService struct {
	inner service.RewardService
	cache *cache.Manager
}

func NewRewardService(inner service.RewardService, manager *cache.Manager) *CachedRewardService {
	return &CachedRewardService{inner: inner, cache: manager}
}

func (s *CachedRewardService) GetAllRewards(ctx context.Context) ([]model.Reward, error) {
	return s.cache.AllRewardsSlot().GetOrFetch(ctx, func(ctx context.Context) ([]model.Reward, error) {
		return s.inner.GetAllRewards(ctx)
	})
}

// GetRewardByName caches missing rewards as nil.
func (s *CachedRewardService) GetRewardByName(ctx context.Context, name string) (*model.Reward, error) {
	return s.cache.RewardByNameSlot(name).GetOrFetch(ctx, func(ctx context.Context) (*model.Reward, error) {
		return s.inner.GetRewardByName(ctx, name)
	})
}

// UpsertRewardsBatch also clears the leaderboard since cost feeds coins spent.
func (s *CachedRewardService) UpsertRewardsBatch(ctx context.Context, rewards []model.Reward) (int, error) {
	n, err := s.inner.UpsertRewardsBatch(ctx, rewards)
	if err == nil && n > 0 {
		s.cache.InvalidateRewards()
		s.cache.InvalidateLeaderboard()
	}
	return n, err
}

func (s *CachedRewardService) DecrementStock(ctx context.Context, name string, amount int) (*model.Reward, error) {
	reward, err := s.inner.DecrementStock(ctx, name, amount)
	if err == nil && reward != nil {
		s.cache.InvalidateRewards()
	}
	return reward, err
}

func (s *CachedRewardService) IncrementStock(ctx context.Context, name string, amount int) (*model.Reward, error) {
	reward, err := s.inner.IncrementStock(ctx, name, amount)
	if err == nil && reward != nil {
		s.cache.InvalidateRewards()
	}
	return reward, err
}
