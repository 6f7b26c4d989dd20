package xapiand

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/YosefMac/Xapiand/engine"
)

// ReopenState is where a refresh of a composite ended up.
type ReopenState int

const (
	// ReopenFresh means the composite observes the latest data with all its
	// handles intact.
	ReopenFresh ReopenState = iota
	// ReopenStale is a composite about to be refreshed.
	ReopenStale
	// ReopenDegraded means the cheap refresh failed.
	ReopenDegraded
	// ReopenRebuilt means the composite was recreated around the handles
	// that still worked.
	ReopenRebuilt
	// ReopenPartiallyRecovered means individual failed shards were opened
	// again and swapped in.
	ReopenPartiallyRecovered
)

func (s ReopenState) String() string {
	switch s {
	case ReopenFresh:
		return "fresh"
	case ReopenStale:
		return "stale"
	case ReopenDegraded:
		return "degraded"
	case ReopenRebuilt:
		return "rebuilt"
	case ReopenPartiallyRecovered:
		return "partially_recovered"
	default:
		return "unknown"
	}
}

// Reopen refreshes c so that it observes the latest committed data.
//
// A cheap refresh of the aggregate is tried first. If it fails because a
// shard cannot be used, the composite is recreated around its current
// handles. Then every shard is refreshed on its own and only the shards that
// still fail are opened again. The returned composite replaces c.
func (p *Pool) Reopen(ctx context.Context, c *Composite) (*Composite, ReopenState, error) {
	start := time.Now()
	c, state, err := p.reopen(ctx, c)
	p.opts.metricsCollector.RecordReopen(state, time.Since(start), err)
	p.opts.logger.LogReopen(ctx, c.endpoints, state, err)
	return c, state, err
}

func (p *Pool) reopen(ctx context.Context, c *Composite) (*Composite, ReopenState, error) {
	state := ReopenStale
	err := c.Database().Reopen(ctx)
	if err != nil {
		if !engine.IsOpenFailure(err) {
			return c, state, err
		}
		state = ReopenDegraded
		start := time.Now()
		c, err = p.rebuild(ctx, c)
		p.opts.metricsCollector.RecordRebuild(time.Since(start), err)
		if err != nil {
			return c, state, err
		}
		state = ReopenRebuilt
	}

	replaced, err := p.recoverSlots(ctx, c)
	switch {
	case replaced:
		state = ReopenPartiallyRecovered
	case state == ReopenStale:
		state = ReopenFresh
	}
	return c, state, err
}

// rebuild evicts old from the pool and creates its replacement seeded with
// old's handles, then fills the slots that are still empty.
func (p *Pool) rebuild(ctx context.Context, old *Composite) (*Composite, error) {
	key := compositeKey{set: old.endpoints.Key(), writable: old.writable}
	p.composites.removeIf(key, func(c *Composite) bool { return c == old })

	handles, recipes := old.snapshot()
	c, _, err := p.composites.getOrCreate(key, func() (*Composite, error) {
		return newComposite(old.endpoints, old.writable, handles, recipes), nil
	})
	if err != nil {
		return old, err
	}
	if err := p.assemble(ctx, c); err != nil {
		return c, err
	}
	return c, nil
}

// recoverSlots refreshes every populated slot of c. A slot whose shard can no
// longer be used is evicted from the shard registry and opened again; only
// that slot changes. A slot that cannot be opened is left empty.
func (p *Pool) recoverSlots(ctx context.Context, c *Composite) (replaced bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.handles)
	fresh := make([]engine.Database, n)
	swapped := make([]bool, n)
	errs := make([]error, n)

	var g errgroup.Group
	for i, h := range c.handles {
		if h == nil {
			continue
		}
		ep, r := c.endpoints[i], c.recipes[i]
		if r == nil {
			r = p.recipe(ep, c.writable)
			c.recipes[i] = r
		}
		g.Go(func() error {
			cause := h.Reopen(ctx)
			if cause == nil {
				return nil
			}
			if !engine.IsOpenFailure(cause) {
				errs[i] = cause
				return nil
			}
			p.evictShard(ep, c.writable, h)
			db, err := r(ctx)
			p.opts.logger.LogSlotRecovery(ctx, ep, i, cause, err)
			fresh[i], swapped[i] = db, true
			return nil
		})
	}
	_ = g.Wait()

	for i := range swapped {
		if swapped[i] {
			c.handles[i] = fresh[i]
			replaced = true
		}
	}
	if replaced {
		c.publishLocked()
	}
	return replaced, errors.Join(errs...)
}
