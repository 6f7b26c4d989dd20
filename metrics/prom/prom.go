// Package prom exports pool metrics to Prometheus.
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/YosefMac/Xapiand"
)

// Collector implements xapiand.MetricsCollector with Prometheus metrics.
type Collector struct {
	opLatency *prometheus.HistogramVec
	opens     *prometheus.CounterVec
	reopens   *prometheus.CounterVec
	rebuilds  *prometheus.CounterVec
	skipped   *prometheus.CounterVec
}

var _ xapiand.MetricsCollector = (*Collector)(nil)

// New creates a Collector and registers its metrics with reg.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "xapiand_operation_latency_seconds",
			Help:    "Latency of pool operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "status"}),
		opens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xapiand_shard_opens_total",
			Help: "Shard open and connect attempts",
		}, []string{"kind", "status"}),
		reopens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xapiand_reopens_total",
			Help: "Composite refreshes by final state",
		}, []string{"state"}),
		rebuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xapiand_rebuilds_total",
			Help: "Composites recreated after a failed refresh",
		}, []string{"status"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xapiand_writes_skipped_total",
			Help: "Writes skipped because the shard was unavailable",
		}, []string{"op"}),
	}
	reg.MustRegister(c.opLatency, c.opens, c.reopens, c.rebuilds, c.skipped)
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (c *Collector) RecordOpen(kind xapiand.EndpointKind, d time.Duration, err error) {
	c.opens.WithLabelValues(kind.String(), status(err)).Inc()
	c.opLatency.WithLabelValues("open", status(err)).Observe(d.Seconds())
}

func (c *Collector) RecordReopen(state xapiand.ReopenState, d time.Duration, err error) {
	c.reopens.WithLabelValues(state.String()).Inc()
	c.opLatency.WithLabelValues("reopen", status(err)).Observe(d.Seconds())
}

func (c *Collector) RecordRebuild(d time.Duration, err error) {
	c.rebuilds.WithLabelValues(status(err)).Inc()
	c.opLatency.WithLabelValues("rebuild", status(err)).Observe(d.Seconds())
}

func (c *Collector) RecordIndex(d time.Duration, skipped bool, err error) {
	if skipped {
		c.skipped.WithLabelValues("index").Inc()
		return
	}
	c.opLatency.WithLabelValues("index", status(err)).Observe(d.Seconds())
}

func (c *Collector) RecordDelete(d time.Duration, skipped bool, err error) {
	if skipped {
		c.skipped.WithLabelValues("delete").Inc()
		return
	}
	c.opLatency.WithLabelValues("delete", status(err)).Observe(d.Seconds())
}

func (c *Collector) RecordCommit(d time.Duration, err error) {
	c.opLatency.WithLabelValues("commit", status(err)).Observe(d.Seconds())
}
