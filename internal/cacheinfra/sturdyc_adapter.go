package cacheinfra

import (
	"context"

	"github.com/viccon/sturdyc"
)

// sturdycStore wraps a sturdyc client providing caching behaviour.
type sturdycStore[V any] struct {
	client *sturdyc.Client[V]
}

// NewSturdycStore creates a new sturdyc backed store.
//
// The constructor translates Config parameters to sturdyc initialization:
// Capacity, Shards(), TTL and EvictionPercentage go to sturdyc.New(),
// EvictionInterval is applied as an option.
//
// Version compatibility note: This implementation assumes sturdyc v1.x API.
func NewSturdycStore[V any](cfg Config) (*sturdycStore[V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var options []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}

	client := sturdyc.New[V](
		cfg.Capacity,
		cfg.Shards(),
		cfg.TTL,
		cfg.EvictionPercentage,
		options...,
	)

	return &sturdycStore[V]{client: client}, nil
}

func (s *sturdycStore[V]) Get(key string) (V, bool) {
	return s.client.Get(key)
}

func (s *sturdycStore[V]) Set(key string, value V) {
	s.client.Set(key, value)
}

// GetOrFetch delegates to sturdyc, which also collapses concurrent misses
// for the same key into a single fetch.
func (s *sturdycStore[V]) GetOrFetch(ctx context.Context, key string, fetchFn FetchFn[V]) (V, error) {
	return s.client.GetOrFetch(ctx, key, func(ctx context.Context) (V, error) {
		return fetchFn(ctx)
	})
}

// Delete removes a single entry from the store.
func (s *sturdycStore[V]) Delete(key string) {
	s.client.Delete(key)
}

// Purge removes every resident entry.
func (s *sturdycStore[V]) Purge() {
	for _, key := range s.client.ScanKeys() {
		s.client.Delete(key)
	}
}

func (s *sturdycStore[V]) Len() int {
	return s.client.Size()
}

func (s *sturdycStore[V]) Keys() []string {
	return s.client.ScanKeys()
}
