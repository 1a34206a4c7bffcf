package cache

import "context"

// KeySerializer builds a cache key from a namespace + arbitrary args.
// It is responsible for producing stable keys across calls.
type KeySerializer interface {
	SerializeKey(namespace string, args ...any) string
}

// FetchFn is the function signature a partition expects when fetching from the source of truth.
type FetchFn[V any] func(ctx context.Context) (V, error)

// Partition is an independently sized and keyed cache for one query shape.
// Values may be nil pointers, which are cached as "confirmed absent" and
// reported as hits. None of the operations fail.
type Partition[V any] interface {
	Name() string
	Capacity() int
	Get(key string) (V, bool)
	Set(key string, value V)
	// GetOrFetch returns the cached value or runs fetchFn and caches a
	// successful result. Errors are returned unchanged and never cached.
	GetOrFetch(ctx context.Context, key string, fetchFn FetchFn[V]) (V, error)
	Invalidate(key string)
	InvalidateAll()
	Len() int
}

// Slot addresses a single key within a partition.
type Slot[V any] struct {
	partition Partition[V]
	key       string
}

// Key returns the serialized cache key.
func (s Slot[V]) Key() string {
	return s.key
}

// Get returns a copy of the cached value and whether the key was present.
func (s Slot[V]) Get() (V, bool) {
	return s.partition.Get(s.key)
}

// Set stores a copy of value.
func (s Slot[V]) Set(value V) {
	s.partition.Set(s.key, value)
}

// Invalidate drops the entry.
func (s Slot[V]) Invalidate() {
	s.partition.Invalidate(s.key)
}

// GetOrFetch is the read-through entry point used by the cached services.
func (s Slot[V]) GetOrFetch(ctx context.Context, fetchFn FetchFn[V]) (V, error) {
	return s.partition.GetOrFetch(ctx, s.key, fetchFn)
}
