package cacheinfra

import "time"

// Supported store backends.
const (
	BackendSturdyc = "sturdyc"
	BackendLRU     = "lru"
)

// minShardCapacity keeps small partitions from being split into shards
// that cannot hold a single eviction batch.
const minShardCapacity = 16

// Config holds the settings for a single partition store.
type Config struct {
	// Backend selects the store implementation. Default: sturdyc
	Backend string

	// Capacity defines the maximum number of entries that the store can hold.
	// Must be greater than 0.
	Capacity int

	// NumShards is the upper bound on sturdyc shards. The effective shard
	// count shrinks for small capacities. Ignored by the lru backend.
	NumShards int

	// TTL bounds how long an entry may stay resident. It is a memory backstop,
	// entries are expected to leave through explicit invalidation.
	// Ignored by the lru backend.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of a full shard is
	// evicted on insert. Must be between 1-100. Ignored by the lru backend.
	EvictionPercentage int

	// EvictionInterval sets how often expired entries are swept.
	// Zero value uses the backend default.
	EvictionInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults for most partitions.
func DefaultConfig() Config {
	return Config{
		Backend:            BackendSturdyc,
		Capacity:           10000,
		NumShards:          256,
		TTL:                24 * time.Hour,
		EvictionPercentage: 10,
	}
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendSturdyc, BackendLRU:
	default:
		return &ConfigError{Field: "Backend", Message: "must be one of sturdyc, lru"}
	}

	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}

	if c.Backend == BackendLRU {
		return nil
	}

	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}

	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}

	if c.EvictionInterval < 0 {
		return &ConfigError{Field: "EvictionInterval", Message: "must be non-negative"}
	}

	return nil
}

// Shards returns the shard count used for the configured capacity.
func (c Config) Shards() int {
	shards := c.Capacity / minShardCapacity
	if shards < 1 {
		shards = 1
	}
	if shards > c.NumShards {
		shards = c.NumShards
	}
	return shards
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}
