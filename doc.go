// Package xapiand is the index-access layer of the xapiand search daemon.
//
// It presents shards, local directories or shards served by other
// processes, as one logical database, and turns the documents decoded by the
// ingestion layer into engine documents.
//
// # Endpoints
//
// An Endpoint names one shard. Endpoint sets are ordered; the position of an
// endpoint is the index of its shard in the composite database:
//
//	set := xapiand.ResolveEndpoints(
//	    []string{"/var/lib/xapiand/users/shard0"},
//	    []xapiand.RemoteLocation{{Host: "10.0.0.2", Port: 8890}},
//	    5*time.Second,
//	)
//
// # Pool
//
// A Pool opens shards lazily and keeps one handle per endpoint and intent:
//
//	pool := xapiand.NewPool(xapiand.WithLogLevel(slog.LevelInfo))
//	defer pool.Close()
//
//	c, err := pool.Database(ctx, set, false)
//	if err != nil {
//	    return err
//	}
//	n, err := c.Database().DocCount(ctx)
//
// Read-only databases are refreshed on every Database call. When a shard
// has gone away the composite is rebuilt around the shards that still work
// and only the failed shard is opened again.
//
// # Writing
//
// Writes go to exactly one shard:
//
//	res, err := pool.Index(ctx, set[0], &xapiand.Document{
//	    ID:     xapiand.TextID("Q42"),
//	    Values: map[string]any{"title": "Hello", "year": 2024},
//	    Texts:  []xapiand.Text{{Text: "Hello world", Language: xapiand.Ptr("english")}},
//	}, true)
//
// Index does not fail when the shard cannot be opened; it reports
// IndexResult.Skipped instead so that ingestion keeps going.
//
// # Slots
//
// Values are stored under Slot(name), the low 32 bits of the MD5 digest of
// the lower-cased, trimmed name. Slot numbers are shared with existing
// indices and must not change.
package xapiand
