package prom

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YosefMac/Xapiand"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.RecordOpen(xapiand.EndpointLocal, time.Millisecond, nil)
	c.RecordOpen(xapiand.EndpointRemote, time.Millisecond, errors.New("refused"))
	c.RecordReopen(xapiand.ReopenPartiallyRecovered, time.Millisecond, nil)
	c.RecordRebuild(time.Millisecond, nil)
	c.RecordIndex(time.Millisecond, true, nil)
	c.RecordIndex(time.Millisecond, false, nil)
	c.RecordDelete(time.Millisecond, false, nil)
	c.RecordCommit(time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.opens.WithLabelValues("remote", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.reopens.WithLabelValues("partially_recovered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rebuilds.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.skipped.WithLabelValues("index")))

	n, err := testutil.GatherAndCount(reg, "xapiand_operation_latency_seconds")
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}
