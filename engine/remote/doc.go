// Package remote reaches shards held by another process.
//
// A shard server exposes one database through NewHandler; Dial returns a
// Client that implements engine.WritableDatabase against it. Bodies are
// MessagePack. Failures to reach the server surface as engine.ErrNetwork so
// callers treat them like a handle that has to be opened again.
//
// cmd/shardd serves a local shard this way.
package remote
