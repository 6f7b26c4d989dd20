package xapiand

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidIndex matches every failure to open or reach a shard.
	ErrInvalidIndex = errors.New("invalid index")

	// ErrNoEndpoints is returned when a database is requested for an empty
	// endpoint set.
	ErrNoEndpoints = errors.New("no endpoints")

	// ErrPoolClosed is returned by a Pool after Close.
	ErrPoolClosed = errors.New("pool closed")
)

// IndexLockedError indicates another writer holds the shard.
//
// The underlying engine error can be accessed via errors.Unwrap.
type IndexLockedError struct {
	Path  string
	cause error
}

func (e *IndexLockedError) Error() string {
	return fmt.Sprintf("unable to lock index at %s", e.Path)
}

func (e *IndexLockedError) Unwrap() error { return e.cause }

func (e *IndexLockedError) Is(target error) bool { return target == ErrInvalidIndex }

// IndexOpenError indicates a shard that is missing or cannot be opened.
type IndexOpenError struct {
	Path  string
	cause error
}

func (e *IndexOpenError) Error() string {
	return fmt.Sprintf("unable to open index at %s", e.Path)
}

func (e *IndexOpenError) Unwrap() error { return e.cause }

func (e *IndexOpenError) Is(target error) bool { return target == ErrInvalidIndex }

// IndexUnavailableError indicates any other failure to open a local shard,
// or a remote shard that cannot be reached. Location is a path or host:port.
type IndexUnavailableError struct {
	Location string
	Remote   bool
	cause    error
}

func (e *IndexUnavailableError) Error() string {
	if e.Remote {
		return fmt.Sprintf("unable to connect to index at %s", e.Location)
	}
	return fmt.Sprintf("unable to use index at %s", e.Location)
}

func (e *IndexUnavailableError) Unwrap() error { return e.cause }

func (e *IndexUnavailableError) Is(target error) bool { return target == ErrInvalidIndex }

// FieldError describes a document field that was skipped during translation.
// It is reported as a warning; the rest of the document is still indexed.
type FieldError struct {
	Kind   string // "value", "term" or "text"
	Name   string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("ignored document %s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("ignored document %s %q: %s", e.Kind, e.Name, e.Reason)
}

// ReplaceError is returned when the shard rejects a document. Nothing was
// written; the caller decides whether to fix and retry or drop it.
type ReplaceError struct {
	Endpoint Endpoint
	ID       DocumentID
	cause    error
}

func (e *ReplaceError) Error() string {
	return fmt.Sprintf("replacing document %s in %s: %v", e.ID, e.Endpoint, e.cause)
}

func (e *ReplaceError) Unwrap() error { return e.cause }
