// Package engine defines the storage boundary of a search shard.
//
// A shard is reached through a Database (read) or WritableDatabase handle.
// Handles come from an implementation package:
//
//   - local: an on-disk shard backed by Bolt
//   - remote: a shard served by another process over HTTP
//
// # Documents
//
// A Document holds values by numeric slot, terms with within-document
// frequency (wdf) and optional positions, and an opaque payload:
//
//	doc := engine.NewDocument()
//	doc.AddValue(slot, []byte("value"))
//	doc.AddBooleanTerm("Qdoc-17")
//	doc.AddPosting("hello", 1, 1)
//	doc.SetData(payload)
//	id, err := db.ReplaceDocument(ctx, engine.TermRef("Qdoc-17"), doc)
//
// Free text goes through a TermGenerator, which tokenizes, optionally stems,
// and optionally queues spelling data on the document. The shard applies it
// in the same write as the document.
//
// # Composite Databases
//
// MultiDatabase aggregates shard handles into one read view with interleaved
// document ids.
//
// # Errors
//
// Implementations wrap the sentinel errors of this package so callers can
// classify failures with errors.Is. IsOpenFailure groups the errors after
// which a handle has to be opened again.
package engine
