package engine

import "context"

// Database is a read handle on one shard.
//
// Implementations must be safe for concurrent use.
type Database interface {
	// Reopen refreshes the handle so it observes the latest committed data.
	// A handle that cannot be refreshed reports an error for which
	// IsOpenFailure is true.
	Reopen(ctx context.Context) error

	// Close releases the handle. Further calls fail with ErrDatabaseClosed.
	Close() error

	// DocCount returns the number of documents.
	DocCount(ctx context.Context) (uint32, error)

	// TermDocs returns the ids of documents indexed by term, ascending.
	TermDocs(ctx context.Context, term string) ([]DocID, error)

	// Document loads a document. Missing documents yield ErrDocNotFound.
	Document(ctx context.Context, id DocID) (*Document, error)
}

// WritableDatabase is a handle that accepts changes.
//
// Changes are visible to readers as soon as the call returns; Commit makes
// them durable.
type WritableDatabase interface {
	Database

	// ReplaceDocument stores doc under ref. For a term reference the lowest
	// document indexed by the term is replaced and any others are deleted;
	// when no document has the term a new id is assigned. The id of the
	// stored document is returned.
	ReplaceDocument(ctx context.Context, ref DocRef, doc *Document) (DocID, error)

	// DeleteDocument removes the documents ref points at. ErrDocNotFound is
	// returned when there were none.
	DeleteDocument(ctx context.Context, ref DocRef) error

	// AddSpelling records word in the spelling dictionary.
	AddSpelling(ctx context.Context, word string, freqinc uint32) error

	// Commit forces pending changes to stable storage.
	Commit(ctx context.Context) error
}

// SpellingReader is implemented by databases that expose spelling data.
type SpellingReader interface {
	SpellingFrequency(ctx context.Context, word string) (uint32, error)
}
