// Package servicecache provides cached decorators for the service capabilities.
//
// # Overview
//
// Each decorator wraps an inner implementation of one service interface and
// shares a single cache.Manager with the other decorators. Reads go through
// the cache; writes go to the inner service and then invalidate the cache
// groups their result can affect.
//
// # Basic Usage
//
//	manager, err := cache.NewManager(cache.DefaultConfig())
//	if err != nil {
//		return err
//	}
//
//	challenges := servicecache.NewChallengeService(store.NewChallengeStore(db), manager)
//	rewards := servicecache.NewRewardService(store.NewRewardStore(db), manager)
//
//	// Use exactly like the inner services
//	all, err := challenges.GetAllChallenges(ctx)
//
// # Caching Behavior
//
// Reads follow a read-through pattern:
//
//  1. Check the partition for the serialized key
//  2. On a hit, return the cached value as is
//  3. On a miss, call the inner service
//  4. Store a successful result, including nil lookups
//  5. Return the result to the caller
//
// Cached values carry no freshness check. They stay valid until an
// invalidation removes them or the backend evicts them for capacity.
//
// # Invalidation
//
// Mutations delegate first and only invalidate after a meaningful success:
// a non-nil result, a positive batch count or a created row. Errors from the
// inner service never invalidate and are returned unchanged.
//
//   - UpsertChallengesBatch: everything
//   - UpdateChallengeGeolocation: challenges and joined completion rows
//   - CreateCompletion: the user's data and the leaderboard
//   - UpdateCompletionNote, UpdateCompletionPhoto: the user's data
//   - DecrementStock, IncrementStock: rewards
//   - UpsertRewardsBatch: rewards and the leaderboard
//   - CreateTransaction, DeleteTransaction: the owner's data and the leaderboard
//   - GetOrCreateUser (when created), UpdateDorm: the leaderboard
//
// Invalidation runs after the write commits, so a concurrent reader can
// briefly repopulate an entry with the pre-write value. Callers accept that
// window.
//
// # Pass-through Operations
//
// Transaction lookups, status updates and GetUser reach the inner service on
// every call.
package servicecache
