package xapiand

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/YosefMac/Xapiand/engine"
	"github.com/YosefMac/Xapiand/engine/local"
	"github.com/YosefMac/Xapiand/engine/remote"
)

// Opener opens shards. Writable handles must implement
// engine.WritableDatabase.
type Opener interface {
	// OpenLocal opens the shard at path. A writable open creates the shard
	// when it does not exist.
	OpenLocal(ctx context.Context, path string, writable bool) (engine.Database, error)

	// ConnectRemote connects to the shard served at host:port, giving up
	// after timeout.
	ConnectRemote(ctx context.Context, host string, port int, timeout time.Duration, writable bool) (engine.Database, error)
}

// EngineOpener opens local shards with engine/local and connects to remote
// ones with engine/remote.
type EngineOpener struct {
	local *local.Engine
}

var _ Opener = (*EngineOpener)(nil)

// NewEngineOpener creates an EngineOpener.
func NewEngineOpener(optFns ...local.Option) *EngineOpener {
	return &EngineOpener{local: local.New(optFns...)}
}

// OpenLocal implements Opener. A read-only open of a shard that does not exist
// yet creates it first, so readers can start before the first writer.
func (o *EngineOpener) OpenLocal(ctx context.Context, path string, writable bool) (engine.Database, error) {
	if writable {
		w, err := o.local.OpenWritable(ctx, path)
		if err != nil {
			return nil, err
		}
		return w, nil
	}
	db, err := o.local.Open(ctx, path)
	if errors.Is(err, engine.ErrDatabaseNotFound) {
		w, werr := o.local.OpenWritable(ctx, path)
		if werr != nil {
			return nil, werr
		}
		if werr := w.Close(); werr != nil {
			return nil, werr
		}
		db, err = o.local.Open(ctx, path)
	}
	if err != nil {
		return nil, err
	}
	return db, nil
}

// ConnectRemote implements Opener.
func (o *EngineOpener) ConnectRemote(ctx context.Context, host string, port int, timeout time.Duration, writable bool) (engine.Database, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	c, err := remote.Dial(ctx, host, port, timeout, writable)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Close closes every local shard file the opener still holds.
func (o *EngineOpener) Close() error {
	return o.local.Close()
}

// openShard opens ep and classifies the failure.
func openShard(ctx context.Context, o Opener, ep Endpoint, writable bool) (engine.Database, error) {
	if ep.IsRemote() {
		db, err := o.ConnectRemote(ctx, ep.Host(), ep.Port(), ep.Timeout(), writable)
		if err != nil {
			return nil, &IndexUnavailableError{
				Location: net.JoinHostPort(ep.Host(), strconv.Itoa(ep.Port())),
				Remote:   true,
				cause:    err,
			}
		}
		return db, nil
	}
	db, err := o.OpenLocal(ctx, ep.Path(), writable)
	if err != nil {
		return nil, classifyOpenError(ep.Path(), err)
	}
	return db, nil
}

func classifyOpenError(path string, err error) error {
	switch {
	case errors.Is(err, engine.ErrDatabaseLock):
		return &IndexLockedError{Path: path, cause: err}
	case errors.Is(err, engine.ErrDatabaseOpening), errors.Is(err, engine.ErrDatabaseNotFound):
		return &IndexOpenError{Path: path, cause: err}
	default:
		return &IndexUnavailableError{Location: path, cause: err}
	}
}
