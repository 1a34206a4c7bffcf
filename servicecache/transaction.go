package servicecache

import (
	"context"

	"github.com/goliatone/go-leaderboard-cache/cache"
	"github.com/goliatone/go-leaderboard-cache/model"
	"github.com/goliatone/go-leaderboard-cache/service"
)

var _ service.TransactionService = (*CachedTransactionService)(nil)

// CachedTransactionService invalidates spending-derived entries when
// transactions are created or cancelled. Its reads are not cached.
type CachedTransactionService struct {
	inner service.TransactionService
	cache *cache.Manager
}

func NewTransactionService(inner service.TransactionService, manager *cache.Manager) *CachedTransactionService {
	return &CachedTransactionService{inner: inner, cache: manager}
}

func (s *CachedTransactionService) CreateTransaction(ctx context.Context, userID, rewardName string, count int) (*model.Transaction, error) {
	tx, err := s.inner.CreateTransaction(ctx, userID, rewardName, count)
	if err == nil {
		s.cache.InvalidateUserData(userID)
		s.cache.InvalidateLeaderboard()
	}
	return tx, err
}

// DeleteTransaction invalidates the data of the transaction's owner.
func (s *CachedTransactionService) DeleteTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	tx, err := s.inner.DeleteTransaction(ctx, id)
	if err == nil && tx != nil {
		s.cache.InvalidateUserData(tx.UserID)
		s.cache.InvalidateLeaderboard()
	}
	return tx, err
}

func (s *CachedTransactionService) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	return s.inner.GetTransactionByID(ctx, id)
}

// UpdateTransactionStatus does not invalidate: pending and complete
// transactions count the same towards coins spent.
func (s *CachedTransactionService) UpdateTransactionStatus(ctx context.Context, id, status string) (*model.Transaction, error) {
	return s.inner.UpdateTransactionStatus(ctx, id, status)
}

func (s *CachedTransactionService) GetUserTotalCounts(ctx context.Context, userID string) (map[string]int, error) {
	return s.inner.GetUserTotalCounts(ctx, userID)
}

func (s *CachedTransactionService) GetUserTotalCoinsSpent(ctx context.Context, userID string) (int, error) {
	return s.inner.GetUserTotalCoinsSpent(ctx, userID)
}

func (s *CachedTransactionService) GetUserRewardTransactions(ctx context.Context, userID, rewardName string) ([]model.Transaction, error) {
	return s.inner.GetUserRewardTransactions(ctx, userID, rewardName)
}
