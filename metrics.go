package xapiand

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// metrics/prom package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordOpen is called after each attempt to open or connect to a shard.
	RecordOpen(kind EndpointKind, duration time.Duration, err error)

	// RecordReopen is called after each refresh of a composite database.
	// state is where the refresh ended.
	RecordReopen(state ReopenState, duration time.Duration, err error)

	// RecordRebuild is called when a refresh recreates a composite. The
	// refresh that triggered it is recorded separately by RecordReopen.
	RecordRebuild(duration time.Duration, err error)

	// RecordIndex is called after each index operation. skipped is true when
	// the shard was unavailable.
	RecordIndex(duration time.Duration, skipped bool, err error)

	// RecordDelete is called after each delete operation.
	RecordDelete(duration time.Duration, skipped bool, err error)

	// RecordCommit is called after each commit.
	RecordCommit(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordOpen(EndpointKind, time.Duration, error)  {}
func (NoopMetricsCollector) RecordReopen(ReopenState, time.Duration, error) {}
func (NoopMetricsCollector) RecordRebuild(time.Duration, error)             {}
func (NoopMetricsCollector) RecordIndex(time.Duration, bool, error)         {}
func (NoopMetricsCollector) RecordDelete(time.Duration, bool, error)        {}
func (NoopMetricsCollector) RecordCommit(time.Duration, error)              {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	OpenCount         atomic.Int64
	OpenErrors        atomic.Int64
	ReopenCount       atomic.Int64
	ReopenErrors      atomic.Int64
	Rebuilds          atomic.Int64
	RebuildErrors     atomic.Int64
	PartialRecoveries atomic.Int64
	IndexCount        atomic.Int64
	IndexErrors       atomic.Int64
	IndexSkipped      atomic.Int64
	IndexTotalNanos   atomic.Int64
	DeleteCount       atomic.Int64
	DeleteErrors      atomic.Int64
	DeleteSkipped     atomic.Int64
	CommitCount       atomic.Int64
	CommitErrors      atomic.Int64
	CommitTotalNanos  atomic.Int64
}

// RecordOpen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOpen(kind EndpointKind, duration time.Duration, err error) {
	b.OpenCount.Add(1)
	if err != nil {
		b.OpenErrors.Add(1)
	}
}

// RecordReopen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReopen(state ReopenState, duration time.Duration, err error) {
	b.ReopenCount.Add(1)
	if err != nil {
		b.ReopenErrors.Add(1)
	}
	if state == ReopenPartiallyRecovered {
		b.PartialRecoveries.Add(1)
	}
}

// RecordRebuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRebuild(duration time.Duration, err error) {
	b.Rebuilds.Add(1)
	if err != nil {
		b.RebuildErrors.Add(1)
	}
}

// RecordIndex implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIndex(duration time.Duration, skipped bool, err error) {
	b.IndexCount.Add(1)
	b.IndexTotalNanos.Add(duration.Nanoseconds())
	if skipped {
		b.IndexSkipped.Add(1)
	}
	if err != nil {
		b.IndexErrors.Add(1)
	}
}

// RecordDelete implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDelete(duration time.Duration, skipped bool, err error) {
	b.DeleteCount.Add(1)
	if skipped {
		b.DeleteSkipped.Add(1)
	}
	if err != nil {
		b.DeleteErrors.Add(1)
	}
}

// RecordCommit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCommit(duration time.Duration, err error) {
	b.CommitCount.Add(1)
	b.CommitTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.CommitErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		OpenCount:         b.OpenCount.Load(),
		OpenErrors:        b.OpenErrors.Load(),
		ReopenCount:       b.ReopenCount.Load(),
		ReopenErrors:      b.ReopenErrors.Load(),
		Rebuilds:          b.Rebuilds.Load(),
		RebuildErrors:     b.RebuildErrors.Load(),
		PartialRecoveries: b.PartialRecoveries.Load(),
		IndexCount:        b.IndexCount.Load(),
		IndexErrors:       b.IndexErrors.Load(),
		IndexSkipped:      b.IndexSkipped.Load(),
		IndexAvgNanos:     avg(b.IndexTotalNanos.Load(), b.IndexCount.Load()),
		DeleteCount:       b.DeleteCount.Load(),
		DeleteErrors:      b.DeleteErrors.Load(),
		DeleteSkipped:     b.DeleteSkipped.Load(),
		CommitCount:       b.CommitCount.Load(),
		CommitErrors:      b.CommitErrors.Load(),
		CommitAvgNanos:    avg(b.CommitTotalNanos.Load(), b.CommitCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	OpenCount         int64
	OpenErrors        int64
	ReopenCount       int64
	ReopenErrors      int64
	Rebuilds          int64
	RebuildErrors     int64
	PartialRecoveries int64
	IndexCount        int64
	IndexErrors       int64
	IndexSkipped      int64
	IndexAvgNanos     int64
	DeleteCount       int64
	DeleteErrors      int64
	DeleteSkipped     int64
	CommitCount       int64
	CommitErrors      int64
	CommitAvgNanos    int64
}
