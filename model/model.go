// Package model holds the persisted entities and the derived leaderboard row.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Transaction statuses.
const (
	TransactionPending  = "pending"
	TransactionComplete = "complete"
)

// UntrackedStock marks a reward whose stock is not counted.
const UntrackedStock = -1

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	UserID string  `bun:"user_id,pk" json:"user_id"`
	Name   string  `bun:"name,notnull" json:"name"`
	Dorm   *string `bun:"dorm" json:"dorm,omitempty"`
}

type Challenge struct {
	bun.BaseModel `bun:"table:challenges,alias:ch"`

	Name             string    `bun:"name,pk" json:"name"`
	Category         string    `bun:"category,notnull" json:"category"`
	Location         string    `bun:"location,notnull" json:"location"`
	ScottyCoins      int       `bun:"scotty_coins,notnull" json:"scotty_coins"`
	MapsLink         *string   `bun:"maps_link" json:"maps_link,omitempty"`
	Tagline          string    `bun:"tagline,notnull" json:"tagline"`
	Description      string    `bun:"description,notnull" json:"description"`
	MoreInfoLink     *string   `bun:"more_info_link" json:"more_info_link,omitempty"`
	UnlockTimestamp  time.Time `bun:"unlock_timestamp,notnull" json:"unlock_timestamp"`
	Secret           string    `bun:"secret,notnull" json:"-"`
	Latitude         *float64  `bun:"latitude" json:"latitude,omitempty"`
	Longitude        *float64  `bun:"longitude" json:"longitude,omitempty"`
	LocationAccuracy *float64  `bun:"location_accuracy" json:"location_accuracy,omitempty"`
}

// Completion records a user finishing a challenge. A user completes a given
// challenge at most once.
type Completion struct {
	bun.BaseModel `bun:"table:completions,alias:c"`

	UserID        string    `bun:"user_id,pk" json:"user_id"`
	ChallengeName string    `bun:"challenge_name,pk" json:"challenge_name"`
	Timestamp     time.Time `bun:"timestamp,notnull" json:"timestamp"`
	S3Link        *string   `bun:"s3_link" json:"s3_link,omitempty"`
	Note          *string   `bun:"note" json:"note,omitempty"`
}

// CompletionWithChallenge pairs a completion with the challenge it refers to.
type CompletionWithChallenge struct {
	Completion Completion `json:"completion"`
	Challenge  Challenge  `json:"challenge"`
}

type Reward struct {
	bun.BaseModel `bun:"table:rewards,alias:r"`

	Name       string `bun:"name,pk" json:"name"`
	Cost       int    `bun:"cost,notnull" json:"cost"`
	Stock      int    `bun:"stock,notnull" json:"stock"`
	TradeLimit int    `bun:"trade_limit,notnull" json:"trade_limit"`
}

// TracksStock reports whether the reward has a finite stock.
func (r Reward) TracksStock() bool {
	return r.Stock != UntrackedStock
}

// Transaction is a spend of coins on a reward. Pending and complete
// transactions both count towards coins spent.
type Transaction struct {
	bun.BaseModel `bun:"table:transactions,alias:t"`

	ID         uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	UserID     string    `bun:"user_id,notnull" json:"user_id"`
	RewardName string    `bun:"reward_name,notnull" json:"reward_name"`
	Count      int       `bun:"count,notnull" json:"count"`
	Timestamp  time.Time `bun:"timestamp,notnull" json:"timestamp"`
	Status     string    `bun:"status,notnull,default:'pending'" json:"status"`
}

// LeaderboardEntry is a ranked user. It is computed, never stored.
type LeaderboardEntry struct {
	Rank                int64   `bun:"rank" json:"rank"`
	UserID              string  `bun:"user_id" json:"user_id"`
	Name                string  `bun:"name" json:"name"`
	Dorm                *string `bun:"dorm" json:"dorm"`
	CoinsEarned         int64   `bun:"coins_earned" json:"coins_earned"`
	CoinsSpent          int64   `bun:"coins_spent" json:"coins_spent"`
	ChallengesCompleted int64   `bun:"challenges_completed" json:"challenges_completed"`
}

// NetCoins is earned minus spent.
func (e LeaderboardEntry) NetCoins() int64 {
	return e.CoinsEarned - e.CoinsSpent
}
