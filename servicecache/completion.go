package servicecache

import (
	"context"
	"time"

	"github.com/goliatone/go-leaderboard-cache/cache"
	"github.com/goliatone/go-leaderboard-cache/model"
	"github.com/goliatone/go-leaderboard-cache/service"
)

var _ service.CompletionService = (*CachedCompletionService)(nil)

// CachedCompletionService decorates a CompletionService with caching.
type CachedCompletionService struct {
	inner service.CompletionService
	cache *cache.Manager
}

func NewCompletionService(inner service.CompletionService, manager *cache.Manager) *CachedCompletionService {
	return &CachedCompletionService{inner: inner, cache: manager}
}

func (s *CachedCompletionService) GetUserCompletionMap(ctx context.Context, userID string) (map[string]time.Time, error) {
	return s.cache.UserCompletionsSlot(userID).GetOrFetch(ctx, func(ctx context.Context) (map[string]time.Time, error) {
		return s.inner.GetUserCompletionMap(ctx, userID)
	})
}

// CompletionExists answers from the cached completion map when there is
// one. Otherwise it asks the inner service without populating the map.
func (s *CachedCompletionService) CompletionExists(ctx context.Context, userID, challengeName string) (bool, error) {
	if completed, ok := s.cache.GetUserCompletions(userID); ok {
		_, found := completed[challengeName]
		return found, nil
	}
	return s.inner.CompletionExists(ctx, userID, challengeName)
}

func (s *CachedCompletionService) GetUserCompletionsByCategory(ctx context.Context, userID string) (map[string]int, error) {
	return s.cache.UserCompletionsByCategorySlot(userID).GetOrFetch(ctx, func(ctx context.Context) (map[string]int, error) {
		return s.inner.GetUserCompletionsByCategory(ctx, userID)
	})
}

func (s *CachedCompletionService) GetUserCompletionCount(ctx context.Context, userID string) (int, error) {
	return s.cache.UserCompletionCountSlot(userID).GetOrFetch(ctx, func(ctx context.Context) (int, error) {
		return s.inner.GetUserCompletionCount(ctx, userID)
	})
}

func (s *CachedCompletionService) GetUserRecentActivityDays(ctx context.Context, userID string, days int) ([]time.Time, error) {
	return s.cache.UserRecentActivitySlot(userID, days).GetOrFetch(ctx, func(ctx context.Context) ([]time.Time, error) {
		return s.inner.GetUserRecentActivityDays(ctx, userID, days)
	})
}

func (s *CachedCompletionService) GetUserTotalCoinsEarned(ctx context.Context, userID string) (int, error) {
	return s.cache.UserCoinsEarnedSlot(userID).GetOrFetch(ctx, func(ctx context.Context) (int, error) {
		return s.inner.GetUserTotalCoinsEarned(ctx, userID)
	})
}

func (s *CachedCompletionService) GetUserCompletionsWithChallenges(ctx context.Context, userID string) ([]model.CompletionWithChallenge, error) {
	return s.cache.UserCompletionsWithChallengesSlot(userID).GetOrFetch(ctx, func(ctx context.Context) ([]model.CompletionWithChallenge, error) {
		return s.inner.GetUserCompletionsWithChallenges(ctx, userID)
	})
}

// GetUserCompletionWithChallenge returns nil straight away when the cached
// completion map shows the challenge was never completed.
func (s *CachedCompletionService) GetUserCompletionWithChallenge(ctx context.Context, userID, challengeName string) (*model.CompletionWithChallenge, error) {
	if completed, ok := s.cache.GetUserCompletions(userID); ok {
		if _, found := completed[challengeName]; !found {
			return nil, nil
		}
	}
	return s.inner.GetUserCompletionWithChallenge(ctx, userID, challengeName)
}

func (s *CachedCompletionService) CreateCompletion(ctx context.Context, userID, challengeName string, s3Link, note *string) (*model.Completion, error) {
	completion, err := s.inner.CreateCompletion(ctx, userID, challengeName, s3Link, note)
	if err == nil {
		s.cache.InvalidateUserData(userID)
		s.cache.InvalidateLeaderboard()
	}
	return completion, err
}

func (s *CachedCompletionService) UpdateCompletionNote(ctx context.Context, userID, challengeName string, note *string) (*model.Completion, error) {
	completion, err := s.inner.UpdateCompletionNote(ctx, userID, challengeName, note)
	if err == nil && completion != nil {
		s.cache.InvalidateUserData(userID)
	}
	return completion, err
}

func (s *CachedCompletionService) UpdateCompletionPhoto(ctx context.Context, userID, challengeName string, s3Link *string) (*model.Completion, error) {
	completion, err := s.inner.UpdateCompletionPhoto(ctx, userID, challengeName, s3Link)
	if err == nil && completion != nil {
		s.cache.InvalidateUserData(userID)
	}
	return completion, err
}
