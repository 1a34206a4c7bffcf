package servicecache

import (
	"context"

	"github.com/goliatone/go-leaderboard-cache/cache"
	"github.com/goliatone/go-leaderboard-cache/model"
	"github.com/goliatone/go-leaderboard-cache/service"
)

var _ service.LeaderboardService = (*CachedLeaderboardService)(nil)

// CachedLeaderboardService caches ranked pages by (limit, afterRank) and
// positions by user.
type CachedLeaderboardService struct {
	inner service.LeaderboardService
	cache *cache.Manager
}

func NewLeaderboardService(inner service.LeaderboardService, manager *cache.Manager) *CachedLeaderboardService {
	return &CachedLeaderboardService{inner: inner, cache: manager}
}

func (s *CachedLeaderboardService) GetLeaderboardPage(ctx context.Context, limit int, afterRank *int64) ([]model.LeaderboardEntry, error) {
	return s.cache.LeaderboardPageSlot(limit, afterRank).GetOrFetch(ctx, func(ctx context.Context) ([]model.LeaderboardEntry, error) {
		return s.inner.GetLeaderboardPage(ctx, limit, afterRank)
	})
}

// GetUserLeaderboardPosition does not cache the not-found error of an
// unranked user.
func (s *CachedLeaderboardService) GetUserLeaderboardPosition(ctx context.Context, userID string) (int64, error) {
	return s.cache.UserPositionSlot(userID).GetOrFetch(ctx, func(ctx context.Context) (int64, error) {
		return s.inner.GetUserLeaderboardPosition(ctx, userID)
	})
}
