// Package metrics exposes the collector's activity as Prometheus metrics,
// fed directly by package gc at well-defined points (cycle end, atomic
// phase end, finalizer run) rather than hand-rolled counters.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector implements prometheus.Collector by wrapping a fixed set of
// gauges/counters/histogram the scheduler updates directly.
type Collector struct {
	CyclesTotal     prometheus.Counter
	BytesLive       prometheus.Gauge
	DebtBytes       prometheus.Gauge
	PauseSeconds    prometheus.Histogram
	FinalizersTotal prometheus.Counter
}

func New(namespace string) *Collector {
	return &Collector{
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "gc_cycles_total",
			Help: "Completed collection cycles (pause through callfin).",
		}),
		BytesLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "gc_bytes_live",
			Help: "Estimated live bytes as of the last atomic phase.",
		}),
		DebtBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "gc_debt_bytes",
			Help: "Bytes allocated since the last debt charge (GCdebt).",
		}),
		PauseSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "gc_pause_seconds",
			Help:    "Wall-clock duration of each atomic phase.",
			Buckets: prometheus.ExponentialBuckets(0.00005, 2, 12),
		}),
		FinalizersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "gc_finalizers_run_total",
			Help: "Finalizers invoked by the finalizer driver.",
		}),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(c, ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.CyclesTotal.Collect(ch)
	c.BytesLive.Collect(ch)
	c.DebtBytes.Collect(ch)
	c.PauseSeconds.Collect(ch)
	c.FinalizersTotal.Collect(ch)
}
