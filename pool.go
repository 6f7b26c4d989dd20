package xapiand

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/YosefMac/Xapiand/engine"
)

type shardKey struct {
	endpoint string
	writable bool
}

type compositeKey struct {
	set      string
	writable bool
}

// Pool hands out shard handles and composite databases. A handle is opened
// at most once per endpoint and intent and then shared by every caller until
// it fails or the pool is closed.
//
// Create one Pool per process and pass it to whatever serves requests.
// A Pool is safe for concurrent use.
type Pool struct {
	opts   options
	opener Opener
	owned  io.Closer

	shards     *registry[shardKey, engine.Database]
	composites *registry[compositeKey, *Composite]

	// Bounds concurrent opens across the whole pool.
	openSem *semaphore.Weighted
	closed  atomic.Bool
}

// PoolStats reports what a Pool holds.
type PoolStats struct {
	Shards     int
	Composites int
}

// NewPool creates a Pool.
func NewPool(optFns ...Option) *Pool {
	opts := applyOptions(optFns)
	p := &Pool{
		opts:       opts,
		opener:     opts.opener,
		shards:     newRegistry[shardKey, engine.Database](),
		composites: newRegistry[compositeKey, *Composite](),
		openSem:    semaphore.NewWeighted(int64(opts.openConcurrency)),
	}
	if p.opener == nil {
		eo := NewEngineOpener(opts.localOptions...)
		p.opener = eo
		p.owned = eo
	}
	return p
}

// Database returns the composite database over set. Read-only composites are
// refreshed first so they observe the latest committed data.
func (p *Pool) Database(ctx context.Context, set EndpointSet, writable bool) (*Composite, error) {
	if p.closed.Load() {
		return nil, ErrPoolClosed
	}
	c, err := p.composite(ctx, set, writable)
	if err != nil {
		p.opts.logger.WithEndpoints(set).ErrorContext(ctx, "database unavailable", "error", err)
		return nil, err
	}
	if writable {
		return c, nil
	}
	c, _, err = p.Reopen(ctx, c)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// shard returns the handle for ep, opening it if needed.
func (p *Pool) shard(ctx context.Context, ep Endpoint, writable bool) (engine.Database, error) {
	if p.closed.Load() {
		return nil, ErrPoolClosed
	}
	key := shardKey{endpoint: ep.Key(), writable: writable}
	db, _, err := p.shards.getOrCreate(key, func() (engine.Database, error) {
		if err := p.openSem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer p.openSem.Release(1)

		start := time.Now()
		db, err := openShard(ctx, p.opener, ep, writable)
		p.opts.metricsCollector.RecordOpen(ep.Kind(), time.Since(start), err)
		p.opts.logger.LogOpen(ctx, ep, writable, err)
		return db, err
	})
	return db, err
}

// writableShard returns the writable handle for ep.
func (p *Pool) writableShard(ctx context.Context, ep Endpoint) (engine.WritableDatabase, error) {
	db, err := p.shard(ctx, ep, true)
	if err != nil {
		return nil, err
	}
	w, ok := db.(engine.WritableDatabase)
	if !ok {
		return nil, &IndexUnavailableError{Location: ep.String(), Remote: ep.IsRemote(), cause: engine.ErrReadOnly}
	}
	return w, nil
}

// evictShard drops db from the registry and closes it, unless the key has
// already moved on to another handle.
func (p *Pool) evictShard(ep Endpoint, writable bool, db engine.Database) {
	key := shardKey{endpoint: ep.Key(), writable: writable}
	if p.shards.removeIf(key, func(v engine.Database) bool { return v == db }) {
		_ = db.Close()
	}
}

// Stats returns the number of open shards and composites.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Shards:     p.shards.len(),
		Composites: p.composites.len(),
	}
}

// Close closes every shard handle. Composites returned earlier become
// unusable.
func (p *Pool) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	p.composites.drain()
	var errs []error
	for _, db := range p.shards.drain() {
		if err := db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.owned != nil {
		if err := p.owned.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
