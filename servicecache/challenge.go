package servicecache

import (
	"context"

	"github.com/goliatone/go-leaderboard-cache/cache"
	"github.com/goliatone/go-leaderboard-cache/model"
	"github.com/goliatone/go-leaderboard-cache/service"
)

var _ service.ChallengeService = (*CachedChallengeService)(nil)

// CachedChallengeService decorates a ChallengeService with caching.
type CachedChallengeService struct {
	inner service.ChallengeService
	cache *cache.Manager
}

// NewChallengeService wraps inner with the partitions owned by manager.
func NewChallengeService(inner service.ChallengeService, manager *cache.Manager) *CachedChallengeService {
	return &CachedChallengeService{inner: inner, cache: manager}
}

func (s *CachedChallengeService) GetAllChallenges(ctx context.Context) ([]model.Challenge, error) {
	return s.cache.AllChallengesSlot().GetOrFetch(ctx, func(ctx context.Context) ([]model.Challenge, error) {
		return s.inner.GetAllChallenges(ctx)
	})
}

// GetChallengeByName caches missing challenges as nil.
func (s *CachedChallengeService) GetChallengeByName(ctx context.Context, name string) (*model.Challenge, error) {
	return s.cache.ChallengeByNameSlot(name).GetOrFetch(ctx, func(ctx context.Context) (*model.Challenge, error) {
		return s.inner.GetChallengeByName(ctx, name)
	})
}

func (s *CachedChallengeService) GetTotalChallengesByCategory(ctx context.Context) (map[string]int, error) {
	return s.cache.ChallengeCountsSlot().GetOrFetch(ctx, func(ctx context.Context) (map[string]int, error) {
		return s.inner.GetTotalChallengesByCategory(ctx)
	})
}

func (s *CachedChallengeService) GetTotalChallengeCount(ctx context.Context) (int, error) {
	return s.cache.TotalChallengeCountSlot().GetOrFetch(ctx, func(ctx context.Context) (int, error) {
		return s.inner.GetTotalChallengeCount(ctx)
	})
}

// UpdateChallengeGeolocation also drops joined completion rows, which embed
// the challenge.
func (s *CachedChallengeService) UpdateChallengeGeolocation(ctx context.Context, name string, latitude, longitude, accuracy float64) (*model.Challenge, error) {
	challenge, err := s.inner.UpdateChallengeGeolocation(ctx, name, latitude, longitude, accuracy)
	if err == nil && challenge != nil {
		s.cache.InvalidateChallenges()
		s.cache.InvalidateCompletionDetails()
	}
	return challenge, err
}

// UpsertChallengesBatch clears everything: coin values feed every user
// aggregate and the leaderboard.
func (s *CachedChallengeService) UpsertChallengesBatch(ctx context.Context, challenges []model.Challenge) (int, error) {
	n, err := s.inner.UpsertChallengesBatch(ctx, challenges)
	if err == nil && n > 0 {
		s.cache.InvalidateAll()
	}
	return n, err
}
