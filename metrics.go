package gom

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// opStats counts facade operations since process start. Counters survive
// Reset so they stay monotonic, as Prometheus requires.
type opStats struct {
	register atomic.Uint64
	remove   atomic.Uint64
	exists   atomic.Uint64
	apply    atomic.Uint64
	with     atomic.Uint64
	replace  atomic.Uint64
}

var stats opStats

type collector struct {
	ops     *prometheus.Desc
	types   *prometheus.Desc
	entries *prometheus.Desc
}

// NewCollector returns a prometheus.Collector exposing registry statistics:
// per-operation counters and gauges for the live type and entry counts. The
// registry does not register it anywhere; add it to a registerer you own.
func NewCollector() prometheus.Collector {
	return &collector{
		ops: prometheus.NewDesc(
			"gom_operations_total",
			"Registry facade operations executed, by operation.",
			[]string{"op"}, nil,
		),
		types: prometheus.NewDesc(
			"gom_types",
			"Type buckets currently allocated.",
			nil, nil,
		),
		entries: prometheus.NewDesc(
			"gom_entries",
			"Live entries across all type buckets.",
			nil, nil,
		),
	}
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.ops
	ch <- c.types
	ch <- c.entries
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	counts := []struct {
		op string
		n  uint64
	}{
		{"register", stats.register.Load()},
		{"remove", stats.remove.Load()},
		{"exists", stats.exists.Load()},
		{"apply", stats.apply.Load()},
		{"with", stats.with.Load()},
		{"replace", stats.replace.Load()},
	}
	for _, count := range counts {
		ch <- prometheus.MustNewConstMetric(c.ops, prometheus.CounterValue, float64(count.n), count.op)
	}

	buckets, slots := globalTable().size()
	ch <- prometheus.MustNewConstMetric(c.types, prometheus.GaugeValue, float64(buckets))
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(slots))
}
