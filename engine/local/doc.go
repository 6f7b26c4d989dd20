// Package local stores shards on disk.
//
// Each shard directory holds a single Bolt file with four buckets: documents
// keyed by id, roaring-bitmap posting lists keyed by term, spelling
// frequencies and counters. Document payloads may be compressed with LZ4 or
// ZSTD.
//
//	e := local.New(local.WithCompression(local.CompressionZSTD))
//	defer e.Close()
//
//	w, err := e.OpenWritable(ctx, "/var/lib/xapiand/users/shard0")
//	if err != nil {
//		return err
//	}
//	defer w.Close()
//
// Writes are visible to readers at once. They become durable on Commit unless
// WithSyncOnWrite is set.
package local
