package xapiand

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/YosefMac/Xapiand/engine"
)

// recipe opens the shard of one composite slot again.
type recipe func(ctx context.Context) (engine.Database, error)

// Composite is a logical database made of one shard per endpoint.
//
// Slots follow the order of the endpoint set. A slot is nil until its shard
// has been opened. The aggregated view is replaced, never mutated, so a
// *engine.MultiDatabase obtained from Database stays consistent; fetch it
// again after a refresh.
type Composite struct {
	endpoints EndpointSet
	writable  bool

	mu      sync.Mutex
	handles []engine.Database
	recipes []recipe

	agg atomic.Pointer[engine.MultiDatabase]
}

func newComposite(set EndpointSet, writable bool, handles []engine.Database, recipes []recipe) *Composite {
	c := &Composite{
		endpoints: append(EndpointSet(nil), set...),
		writable:  writable,
		handles:   make([]engine.Database, len(set)),
		recipes:   make([]recipe, len(set)),
	}
	copy(c.handles, handles)
	copy(c.recipes, recipes)
	c.publishLocked()
	return c
}

// Endpoints returns the endpoints the composite was built from.
func (c *Composite) Endpoints() EndpointSet {
	return append(EndpointSet(nil), c.endpoints...)
}

// Writable reports whether the composite was opened for writing.
func (c *Composite) Writable() bool { return c.writable }

// Database returns the aggregated view over the populated slots.
func (c *Composite) Database() *engine.MultiDatabase {
	return c.agg.Load()
}

// Handles returns the current slot handles. Empty slots are nil.
func (c *Composite) Handles() []engine.Database {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]engine.Database(nil), c.handles...)
}

// Handle returns the handle in slot i, or nil.
func (c *Composite) Handle(i int) engine.Database {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handles[i]
}

func (c *Composite) snapshot() ([]engine.Database, []recipe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]engine.Database(nil), c.handles...), append([]recipe(nil), c.recipes...)
}

func (c *Composite) publishLocked() {
	c.agg.Store(engine.NewMultiDatabase(c.handles...))
}

// assemble opens every empty slot of c. Slots already holding a handle are
// left alone, so calling it again only retries the slots that failed. The
// first failure in slot order is returned after all other slots were tried.
func (p *Pool) assemble(ctx context.Context, c *Composite) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	errs := make([]error, len(c.endpoints))
	opened := make([]engine.Database, len(c.endpoints))
	var g errgroup.Group
	g.SetLimit(p.opts.openConcurrency)
	for i, ep := range c.endpoints {
		if c.handles[i] != nil {
			continue
		}
		if c.recipes[i] == nil {
			c.recipes[i] = p.recipe(ep, c.writable)
		}
		r := c.recipes[i]
		g.Go(func() error {
			opened[i], errs[i] = r(ctx)
			return nil
		})
	}
	_ = g.Wait()

	changed := false
	for i, db := range opened {
		if db != nil {
			c.handles[i] = db
			changed = true
		}
	}
	if changed {
		c.publishLocked()
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// recipe returns the function that opens ep through the shard registry.
func (p *Pool) recipe(ep Endpoint, writable bool) recipe {
	return func(ctx context.Context) (engine.Database, error) {
		return p.shard(ctx, ep, writable)
	}
}

// composite resolves the composite for set and fills its empty slots.
func (p *Pool) composite(ctx context.Context, set EndpointSet, writable bool) (*Composite, error) {
	if len(set) == 0 {
		return nil, ErrNoEndpoints
	}
	key := compositeKey{set: set.Key(), writable: writable}
	c, _, err := p.composites.getOrCreate(key, func() (*Composite, error) {
		return newComposite(set, writable, nil, nil), nil
	})
	if err != nil {
		return nil, err
	}
	if err := p.assemble(ctx, c); err != nil {
		return c, err
	}
	return c, nil
}
