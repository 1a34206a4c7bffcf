package cache

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-leaderboard-cache/internal/cacheinfra"
)

// Store backends.
const (
	BackendSturdyc = cacheinfra.BackendSturdyc
	BackendLRU     = cacheinfra.BackendLRU
)

// Partition names.
const (
	PartitionChallenges                    = "challenges"
	PartitionChallengeByName               = "challenge_by_name"
	PartitionChallengeCounts               = "challenge_counts"
	PartitionTotalChallengeCount           = "total_challenge_count"
	PartitionUserCompletions               = "user_completions"
	PartitionUserCompletionCounts          = "user_completion_counts"
	PartitionUserCoinsEarned               = "user_coins_earned"
	PartitionUserCompletionsByCategory     = "user_completions_by_category"
	PartitionUserCompletionsWithChallenges = "user_completions_with_challenges"
	PartitionUserRecentActivity            = "user_recent_activity"
	PartitionRewards                       = "rewards"
	PartitionRewardByName                  = "reward_by_name"
	PartitionLeaderboardPages              = "leaderboard_pages"
	PartitionUserPositions                 = "user_positions"
)

// DefaultCapacities holds the capacity of every partition. Listing-style
// partitions hold a handful of entries, per-user partitions one per active user.
var DefaultCapacities = map[string]int{
	PartitionChallenges:                    10,
	PartitionChallengeByName:               1000,
	PartitionChallengeCounts:               10,
	PartitionTotalChallengeCount:           1,
	PartitionUserCompletions:               10000,
	PartitionUserCompletionCounts:          10000,
	PartitionUserCoinsEarned:               10000,
	PartitionUserCompletionsByCategory:     10000,
	PartitionUserCompletionsWithChallenges: 10000,
	PartitionUserRecentActivity:            10000,
	PartitionRewards:                       10,
	PartitionRewardByName:                  100,
	PartitionLeaderboardPages:              100,
	PartitionUserPositions:                 10000,
}

// Config exposes cache configuration options for consumers of the cache package.
type Config struct {
	Backend            string        `mapstructure:"backend"`
	NumShards          int           `mapstructure:"num_shards"`
	TTL                time.Duration `mapstructure:"ttl"`
	EvictionPercentage int           `mapstructure:"eviction_percentage"`
	EvictionInterval   time.Duration `mapstructure:"eviction_interval"`
	// MaxKeyLength hashes longer keys. Zero keeps keys verbatim.
	MaxKeyLength int `mapstructure:"max_key_length"`
	// Capacities overrides DefaultCapacities per partition name.
	Capacities map[string]int `mapstructure:"capacities"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	infra := cacheinfra.DefaultConfig()
	return Config{
		Backend:            infra.Backend,
		NumShards:          infra.NumShards,
		TTL:                infra.TTL,
		EvictionPercentage: infra.EvictionPercentage,
		EvictionInterval:   infra.EvictionInterval,
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	sharded := c.Backend == BackendSturdyc
	return validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.Required, validation.In(BackendSturdyc, BackendLRU)),
		validation.Field(&c.NumShards, validation.When(sharded, validation.Required, validation.Min(1))),
		validation.Field(&c.TTL, validation.When(sharded, validation.Required, validation.Min(time.Millisecond))),
		validation.Field(&c.EvictionPercentage, validation.When(sharded, validation.Required, validation.Min(1), validation.Max(100))),
		validation.Field(&c.EvictionInterval, validation.Min(time.Duration(0))),
		validation.Field(&c.MaxKeyLength, validation.Min(0)),
		validation.Field(&c.Capacities, validation.By(validateCapacities)),
	)
}

func validateCapacities(value interface{}) error {
	capacities, _ := value.(map[string]int)
	for name, capacity := range capacities {
		if _, ok := DefaultCapacities[name]; !ok {
			return fmt.Errorf("unknown partition %q", name)
		}
		if capacity < 1 {
			return fmt.Errorf("partition %q capacity must be at least 1", name)
		}
	}
	return nil
}

// Capacity returns the configured capacity for the named partition.
func (c Config) Capacity(name string) int {
	if capacity, ok := c.Capacities[name]; ok {
		return capacity
	}
	return DefaultCapacities[name]
}

func (c Config) toInternal(name string) cacheinfra.Config {
	return cacheinfra.Config{
		Backend:            c.Backend,
		Capacity:           c.Capacity(name),
		NumShards:          c.NumShards,
		TTL:                c.TTL,
		EvictionPercentage: c.EvictionPercentage,
		EvictionInterval:   c.EvictionInterval,
	}
}
