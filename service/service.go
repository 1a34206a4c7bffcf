// Package service declares the data-access capabilities of the challenge
// backend. The store package provides the database-backed implementations
// and the servicecache package wraps each capability with caching.
package service

import (
	"context"
	"time"

	"github.com/goliatone/go-leaderboard-cache/model"
)

// ChallengeService looks up and maintains challenges.
type ChallengeService interface {
	GetAllChallenges(ctx context.Context) ([]model.Challenge, error)
	// GetChallengeByName returns nil when no challenge has that name.
	GetChallengeByName(ctx context.Context, name string) (*model.Challenge, error)
	// UpdateChallengeGeolocation returns nil when no challenge has that name.
	UpdateChallengeGeolocation(ctx context.Context, name string, latitude, longitude, accuracy float64) (*model.Challenge, error)
	GetTotalChallengesByCategory(ctx context.Context) (map[string]int, error)
	GetTotalChallengeCount(ctx context.Context) (int, error)
	UpsertChallengesBatch(ctx context.Context, challenges []model.Challenge) (int, error)
}

// CompletionService tracks which challenges each user has completed.
type CompletionService interface {
	// GetUserCompletionMap maps challenge name to completion time.
	GetUserCompletionMap(ctx context.Context, userID string) (map[string]time.Time, error)
	CreateCompletion(ctx context.Context, userID, challengeName string, s3Link, note *string) (*model.Completion, error)
	CompletionExists(ctx context.Context, userID, challengeName string) (bool, error)
	GetUserCompletionsByCategory(ctx context.Context, userID string) (map[string]int, error)
	GetUserCompletionCount(ctx context.Context, userID string) (int, error)
	// GetUserRecentActivityDays returns the distinct UTC days, as midnight
	// timestamps in ascending order, on which the user completed a challenge
	// within the last days days.
	GetUserRecentActivityDays(ctx context.Context, userID string, days int) ([]time.Time, error)
	GetUserTotalCoinsEarned(ctx context.Context, userID string) (int, error)
	GetUserCompletionsWithChallenges(ctx context.Context, userID string) ([]model.CompletionWithChallenge, error)
	// GetUserCompletionWithChallenge returns nil when the user has not
	// completed the challenge.
	GetUserCompletionWithChallenge(ctx context.Context, userID, challengeName string) (*model.CompletionWithChallenge, error)
	UpdateCompletionNote(ctx context.Context, userID, challengeName string, note *string) (*model.Completion, error)
	UpdateCompletionPhoto(ctx context.Context, userID, challengeName string, s3Link *string) (*model.Completion, error)
}

// RewardService looks up rewards and adjusts their stock.
type RewardService interface {
	GetAllRewards(ctx context.Context) ([]model.Reward, error)
	GetRewardByName(ctx context.Context, name string) (*model.Reward, error)
	UpsertRewardsBatch(ctx context.Context, rewards []model.Reward) (int, error)
	// DecrementStock returns nil when the reward does not exist. Rewards with
	// untracked stock are returned unchanged.
	DecrementStock(ctx context.Context, name string, amount int) (*model.Reward, error)
	IncrementStock(ctx context.Context, name string, amount int) (*model.Reward, error)
}

// TransactionService records coin spending on rewards.
type TransactionService interface {
	CreateTransaction(ctx context.Context, userID, rewardName string, count int) (*model.Transaction, error)
	// DeleteTransaction cancels a transaction and returns the removed row, or
	// nil when nothing matched.
	DeleteTransaction(ctx context.Context, id string) (*model.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, id, status string) (*model.Transaction, error)
	// GetUserTotalCounts maps reward name to the number of units purchased.
	GetUserTotalCounts(ctx context.Context, userID string) (map[string]int, error)
	GetUserTotalCoinsSpent(ctx context.Context, userID string) (int, error)
	GetUserRewardTransactions(ctx context.Context, userID, rewardName string) ([]model.Transaction, error)
}

// UserService manages the ranked user population.
type UserService interface {
	// GetOrCreateUser reports whether the user was created by this call.
	GetOrCreateUser(ctx context.Context, userID, name string) (*model.User, bool, error)
	GetUser(ctx context.Context, userID string) (*model.User, error)
	UpdateDorm(ctx context.Context, userID string, dorm *string) (*model.User, error)
}

// LeaderboardService ranks users by net coins.
type LeaderboardService interface {
	// GetLeaderboardPage returns up to limit rows ranked strictly after
	// afterRank, or from the top when afterRank is nil.
	GetLeaderboardPage(ctx context.Context, limit int, afterRank *int64) ([]model.LeaderboardEntry, error)
	// GetUserLeaderboardPosition fails with *apperrors.ErrNotFound when the
	// user is not ranked.
	GetUserLeaderboardPosition(ctx context.Context, userID string) (int64, error)
}
