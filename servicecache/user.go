package servicecache

import (
	"context"

	"github.com/goliatone/go-leaderboard-cache/cache"
	"github.com/goliatone/go-leaderboard-cache/model"
	"github.com/goliatone/go-leaderboard-cache/service"
)

var _ service.UserService = (*CachedUserService)(nil)

// CachedUserService keeps the leaderboard in step with the user population.
// Users are ranked even without activity, and name and dorm are part of
// every leaderboard row.
type CachedUserService struct {
	inner service.UserService
	cache *cache.Manager
}

func NewUserService(inner service.UserService, manager *cache.Manager) *CachedUserService {
	return &CachedUserService{inner: inner, cache: manager}
}

func (s *CachedUserService) GetOrCreateUser(ctx context.Context, userID, name string) (*model.User, bool, error) {
	user, created, err := s.inner.GetOrCreateUser(ctx, userID, name)
	if err == nil && created {
		s.cache.InvalidateLeaderboard()
	}
	return user, created, err
}

func (s *CachedUserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return s.inner.GetUser(ctx, userID)
}

func (s *CachedUserService) UpdateDorm(ctx context.Context, userID string, dorm *string) (*model.User, error) {
	user, err := s.inner.UpdateDorm(ctx, userID, dorm)
	if err == nil && user != nil {
		s.cache.InvalidateLeaderboard()
	}
	return user, err
}
