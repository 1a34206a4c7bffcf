// Package cache provides the partitioned in-memory cache that shields the
// challenge store and the leaderboard ranking query.
//
// # Overview
//
// A Manager owns one Partition per cached query shape: all challenges,
// challenge by name, per user completion maps, leaderboard pages, user
// positions and so on. Each partition has its own capacity and key space.
// Values are stored exactly as the wrapped call returned them, including nil
// pointers for absent entities, which are cached hits rather than misses.
//
// # Basic Usage
//
//	manager, err := cache.NewManager(cache.DefaultConfig(), cache.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//
//	page, err := manager.LeaderboardPageSlot(20, nil).GetOrFetch(ctx, func(ctx context.Context) ([]model.LeaderboardEntry, error) {
//		return inner.GetLeaderboardPage(ctx, 20, nil)
//	})
//
// The typed accessors (GetRewardByName, SetRewardByName, ...) expose the same
// slots without the fetch step.
//
// # Invalidation
//
// Entries never go stale by time alone. Writers call one of the coarse
// invalidation groups after a successful mutation:
//
//   - InvalidateChallenges: challenge listings, lookups and counts
//   - InvalidateRewards: reward listing and lookups
//   - InvalidateLeaderboard: every page and every user position
//   - InvalidateUserData: every entry keyed by one user, plus all recent activity
//   - InvalidateCompletionDetails: joined completion rows of every user
//   - InvalidateAll: everything
//
// # Key Serialization
//
// Keys are "<namespace>:<arg>:<arg>". A nil leaderboard cursor serializes as 0,
// so the first page has one key. When Config.MaxKeyLength is set, longer keys
// are replaced by "<namespace>:xxh:<digest>" using xxhash.
//
// # Backends
//
// Config.Backend selects sturdyc (sharded, percentage eviction, default) or
// lru (hashicorp golang-lru, strict least recently used). Config.TTL only
// bounds memory for the sturdyc backend; an expired entry is a miss.
//
// # Metrics
//
// WithRegisterer exports hit, miss, eviction and invalidation counters plus a
// lazily collected entry gauge, all labelled by partition.
package cache
