package cacheinfra

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// lruStore is a strict LRU store without expiry.
type lruStore[V any] struct {
	cache   *lru.Cache[string, V]
	onEvict func()
}

// NewLRUStore creates a store backed by hashicorp/golang-lru.
func NewLRUStore[V any](cfg Config, opts Options) (*lruStore[V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cache, err := lru.New[string, V](cfg.Capacity)
	if err != nil {
		return nil, err
	}
	return &lruStore[V]{cache: cache, onEvict: opts.OnEvict}, nil
}

func (s *lruStore[V]) Get(key string) (V, bool) {
	return s.cache.Get(key)
}

// Set adds the entry, reporting an eviction when the oldest entry made room.
func (s *lruStore[V]) Set(key string, value V) {
	if evicted := s.cache.Add(key, value); evicted && s.onEvict != nil {
		s.onEvict()
	}
}

func (s *lruStore[V]) GetOrFetch(ctx context.Context, key string, fetchFn FetchFn[V]) (V, error) {
	if value, ok := s.cache.Get(key); ok {
		return value, nil
	}

	value, err := fetchFn(ctx)
	if err != nil {
		var zero V
		return zero, err
	}
	s.Set(key, value)
	return value, nil
}

func (s *lruStore[V]) Delete(key string) {
	s.cache.Remove(key)
}

func (s *lruStore[V]) Purge() {
	s.cache.Purge()
}

func (s *lruStore[V]) Len() int {
	return s.cache.Len()
}

func (s *lruStore[V]) Keys() []string {
	return s.cache.Keys()
}
