package remote

import (
	"errors"
	"fmt"

	"github.com/YosefMac/Xapiand/engine"
)

// ContentType is the media type of request and response bodies.
const ContentType = "application/msgpack"

type PingResponse struct {
	Writable bool   `msgpack:"writable"`
	Path     string `msgpack:"path,omitempty"`
}

type DocCountResponse struct {
	Count uint32 `msgpack:"count"`
}

type TermDocsRequest struct {
	Term string `msgpack:"term"`
}

type TermDocsResponse struct {
	IDs []engine.DocID `msgpack:"ids"`
}

type ReplaceRequest struct {
	Ref engine.DocRef    `msgpack:"ref"`
	Doc *engine.Document `msgpack:"doc"`
}

type ReplaceResponse struct {
	ID engine.DocID `msgpack:"id"`
}

type DeleteRequest struct {
	Ref engine.DocRef `msgpack:"ref"`
}

type SpellingRequest struct {
	Word    string `msgpack:"word"`
	FreqInc uint32 `msgpack:"freqinc"`
}

type SpellingResponse struct {
	Frequency uint32 `msgpack:"freq"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Kind    string `msgpack:"kind"`
	Message string `msgpack:"message"`
}

// Error kinds carried over the wire.
const (
	kindDatabase    = "database"
	kindLock        = "lock"
	kindOpening     = "opening"
	kindNotFound    = "not_found"
	kindClosed      = "closed"
	kindInvalid     = "invalid_argument"
	kindDocNotFound = "doc_not_found"
	kindReadOnly    = "read_only"
)

var kinds = []struct {
	kind string
	err  error
}{
	{kindLock, engine.ErrDatabaseLock},
	{kindOpening, engine.ErrDatabaseOpening},
	{kindNotFound, engine.ErrDatabaseNotFound},
	{kindClosed, engine.ErrDatabaseClosed},
	{kindInvalid, engine.ErrInvalidArgument},
	{kindDocNotFound, engine.ErrDocNotFound},
	{kindReadOnly, engine.ErrReadOnly},
}

func errorKind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return kindDatabase
}

// toError turns an error response back into an engine error.
func (r *ErrorResponse) toError() error {
	for _, k := range kinds {
		if k.kind == r.Kind {
			return fmt.Errorf("remote: %w: %s", k.err, r.Message)
		}
	}
	return fmt.Errorf("remote: %w: %s", engine.ErrDatabase, r.Message)
}
