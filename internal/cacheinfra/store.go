package cacheinfra

import "context"

// FetchFn loads a value from the source of truth on a miss.
type FetchFn[V any] func(ctx context.Context) (V, error)

// Store is a bounded, concurrency safe in-memory map for one partition.
// None of its operations fail.
type Store[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V)
	// GetOrFetch returns the resident value or calls fetchFn and stores its
	// result. Errors from fetchFn are returned and never stored.
	GetOrFetch(ctx context.Context, key string, fetchFn FetchFn[V]) (V, error)
	Delete(key string)
	Purge()
	Len() int
	Keys() []string
}

// Options carries optional hooks shared by the backends.
type Options struct {
	// OnEvict is called once per entry removed to make room for another.
	OnEvict func()
}

// NewStore builds the store selected by cfg.Backend.
func NewStore[V any](cfg Config, opts Options) (Store[V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Backend == BackendLRU {
		store, err := NewLRUStore[V](cfg, opts)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	store, err := NewSturdycStore[V](cfg)
	if err != nil {
		return nil, err
	}
	return store, nil
}
