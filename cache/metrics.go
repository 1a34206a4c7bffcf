package cache

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the partition level Prometheus collectors. Every series
// carries a "partition" label.
type Metrics struct {
	HitsTotal          *prometheus.CounterVec
	MissesTotal        *prometheus.CounterVec
	EvictionsTotal     *prometheus.CounterVec
	InvalidationsTotal *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg. Collectors
// already present on reg are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		HitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_partition_hits_total",
			Help: "Total number of cache hits per partition.",
		}, []string{"partition"}),
		MissesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_partition_misses_total",
			Help: "Total number of cache misses per partition.",
		}, []string{"partition"}),
		EvictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_partition_evictions_total",
			Help: "Total number of entries evicted to respect partition capacity.",
		}, []string{"partition"}),
		InvalidationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_partition_invalidations_total",
			Help: "Total number of explicit partition invalidations.",
		}, []string{"partition"}),
	}

	var err error
	if m.HitsTotal, err = register(reg, m.HitsTotal); err != nil {
		return nil, err
	}
	if m.MissesTotal, err = register(reg, m.MissesTotal); err != nil {
		return nil, err
	}
	if m.EvictionsTotal, err = register(reg, m.EvictionsTotal); err != nil {
		return nil, err
	}
	if m.InvalidationsTotal, err = register(reg, m.InvalidationsTotal); err != nil {
		return nil, err
	}
	return m, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

// entriesCollector lazily reports the resident entry count of every
// partition at scrape time.
type entriesCollector struct {
	desc  *prometheus.Desc
	stats func() []PartitionStats
}

func newEntriesCollector(stats func() []PartitionStats) *entriesCollector {
	return &entriesCollector{
		desc: prometheus.NewDesc(
			"cache_partition_entries",
			"Current number of entries in the partition.",
			[]string{"partition"},
			nil,
		),
		stats: stats,
	}
}

func (c *entriesCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *entriesCollector) Collect(ch chan<- prometheus.Metric) {
	for _, s := range c.stats() {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(s.Len), s.Name)
	}
}
