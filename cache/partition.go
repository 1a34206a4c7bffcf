package cache

import (
	"context"

	"github.com/goliatone/go-leaderboard-cache/internal/cacheinfra"
	"github.com/puzpuzpuz/xsync/v3"
)

// PartitionStats is a point in time snapshot of a partition.
type PartitionStats struct {
	Name          string
	Capacity      int
	Len           int
	Hits          int64
	Misses        int64
	Evictions     int64
	Invalidations int64
}

// partitionHandle is the type-erased view the manager keeps of each partition.
type partitionHandle interface {
	Name() string
	InvalidateAll()
	Stats() PartitionStats
}

// instrumentedPartition counts hits, misses and evictions around a store.
type instrumentedPartition[V any] struct {
	name          string
	capacity      int
	store         cacheinfra.Store[V]
	clone         CloneFunc[V]
	metrics       *Metrics
	hits          *xsync.Counter
	misses        *xsync.Counter
	evictions     *xsync.Counter
	invalidations *xsync.Counter
}

func newPartition[V any](name string, cfg Config, metrics *Metrics, clone CloneFunc[V]) (*instrumentedPartition[V], error) {
	p := &instrumentedPartition[V]{
		name:          name,
		capacity:      cfg.Capacity(name),
		clone:         clone,
		metrics:       metrics,
		hits:          xsync.NewCounter(),
		misses:        xsync.NewCounter(),
		evictions:     xsync.NewCounter(),
		invalidations: xsync.NewCounter(),
	}

	store, err := cacheinfra.NewStore[V](cfg.toInternal(name), cacheinfra.Options{OnEvict: p.recordEviction})
	if err != nil {
		return nil, err
	}
	p.store = store
	return p, nil
}

func (p *instrumentedPartition[V]) Name() string {
	return p.name
}

func (p *instrumentedPartition[V]) Capacity() int {
	return p.capacity
}

func (p *instrumentedPartition[V]) copy(value V) V {
	if p.clone == nil {
		return value
	}
	return p.clone(value)
}

func (p *instrumentedPartition[V]) Get(key string) (V, bool) {
	value, ok := p.store.Get(key)
	if ok {
		p.recordHit()
	} else {
		p.recordMiss()
	}
	return p.copy(value), ok
}

func (p *instrumentedPartition[V]) Set(key string, value V) {
	p.store.Set(key, p.copy(value))
}

func (p *instrumentedPartition[V]) GetOrFetch(ctx context.Context, key string, fetchFn FetchFn[V]) (V, error) {
	fetched := false
	value, err := p.store.GetOrFetch(ctx, key, func(ctx context.Context) (V, error) {
		fetched = true
		return fetchFn(ctx)
	})
	if fetched {
		p.recordMiss()
	} else if err == nil {
		p.recordHit()
	}
	if err != nil {
		return value, err
	}
	return p.copy(value), nil
}

func (p *instrumentedPartition[V]) Invalidate(key string) {
	p.store.Delete(key)
}

func (p *instrumentedPartition[V]) InvalidateAll() {
	p.store.Purge()
	p.invalidations.Inc()
	if p.metrics != nil {
		p.metrics.InvalidationsTotal.WithLabelValues(p.name).Inc()
	}
}

func (p *instrumentedPartition[V]) Len() int {
	return p.store.Len()
}

func (p *instrumentedPartition[V]) Stats() PartitionStats {
	return PartitionStats{
		Name:          p.name,
		Capacity:      p.capacity,
		Len:           p.store.Len(),
		Hits:          p.hits.Value(),
		Misses:        p.misses.Value(),
		Evictions:     p.evictions.Value(),
		Invalidations: p.invalidations.Value(),
	}
}

func (p *instrumentedPartition[V]) recordHit() {
	p.hits.Inc()
	if p.metrics != nil {
		p.metrics.HitsTotal.WithLabelValues(p.name).Inc()
	}
}

func (p *instrumentedPartition[V]) recordMiss() {
	p.misses.Inc()
	if p.metrics != nil {
		p.metrics.MissesTotal.WithLabelValues(p.name).Inc()
	}
}

func (p *instrumentedPartition[V]) recordEviction() {
	p.evictions.Inc()
	if p.metrics != nil {
		p.metrics.EvictionsTotal.WithLabelValues(p.name).Inc()
	}
}
