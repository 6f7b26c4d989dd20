package engine

import "errors"

var (
	// ErrDatabase is the generic engine failure for a shard.
	ErrDatabase = errors.New("database error")

	// ErrDatabaseLock is returned when another writer holds the shard.
	ErrDatabaseLock = errors.New("database locked")

	// ErrDatabaseOpening is returned when a shard exists but cannot be opened
	// (corrupt, wrong version, vanished while open).
	ErrDatabaseOpening = errors.New("unable to open database")

	// ErrDatabaseNotFound is returned when no index exists at a location.
	ErrDatabaseNotFound = errors.New("database not found")

	// ErrDatabaseClosed is returned by operations on a closed handle.
	ErrDatabaseClosed = errors.New("database closed")

	// ErrNetwork is returned when a remote shard cannot be reached.
	ErrNetwork = errors.New("network error")

	// ErrInvalidArgument is returned when a document or reference is rejected.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDocNotFound is returned when a referenced document does not exist.
	ErrDocNotFound = errors.New("document not found")

	// ErrReadOnly is returned when a write reaches a read-only handle.
	ErrReadOnly = errors.New("database is read-only")
)

// IsOpenFailure reports whether err means the handle is no longer usable and
// has to be opened again.
func IsOpenFailure(err error) bool {
	return errors.Is(err, ErrDatabaseOpening) ||
		errors.Is(err, ErrDatabaseNotFound) ||
		errors.Is(err, ErrDatabaseClosed) ||
		errors.Is(err, ErrNetwork)
}
