// Package testutil provides testing utilities for xapiand.
//
// This package is intended for use in tests and benchmarks only.
//
// # In-Memory Shards
//
// MemoryDatabase implements engine.WritableDatabase without touching disk
// and lets a test inject reopen failures:
//
//	db := testutil.NewMemoryDatabase("shard0")
//	db.FailReopen(engine.ErrDatabaseOpening)
//
// # Random Text
//
//	rng := testutil.NewRNG(seed)
//	text := rng.Sentence(12)
package testutil
