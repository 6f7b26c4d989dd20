package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// MultiDatabase presents several shards as one database.
//
// Document ids are interleaved: local id l of shard i (of n) appears as
// (l-1)*n + i + 1. A MultiDatabase is built once and then only read; build a
// new one to change its shards.
type MultiDatabase struct {
	dbs []Database
}

var _ Database = (*MultiDatabase)(nil)

// NewMultiDatabase creates a MultiDatabase over dbs.
func NewMultiDatabase(dbs ...Database) *MultiDatabase {
	m := &MultiDatabase{}
	for _, db := range dbs {
		m.AddDatabase(db)
	}
	return m
}

// AddDatabase attaches db as the next shard. Nil handles are ignored.
func (m *MultiDatabase) AddDatabase(db Database) {
	if db == nil {
		return
	}
	m.dbs = append(m.dbs, db)
}

// Databases returns the attached shards in order.
func (m *MultiDatabase) Databases() []Database {
	out := make([]Database, len(m.dbs))
	copy(out, m.dbs)
	return out
}

// Len returns the number of attached shards.
func (m *MultiDatabase) Len() int { return len(m.dbs) }

// Reopen reopens every shard. All shards are attempted; the failures are
// joined.
func (m *MultiDatabase) Reopen(ctx context.Context) error {
	var errs []error
	for i, db := range m.dbs {
		if err := db.Reopen(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shard %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Close does nothing: the shards are owned by whoever attached them.
func (m *MultiDatabase) Close() error { return nil }

// DocCount sums the document counts of all shards.
func (m *MultiDatabase) DocCount(ctx context.Context) (uint32, error) {
	var total uint32
	for i, db := range m.dbs {
		n, err := db.DocCount(ctx)
		if err != nil {
			return 0, fmt.Errorf("shard %d: %w", i, err)
		}
		total += n
	}
	return total, nil
}

// TermDocs merges the postings of term across shards, in global id order.
func (m *MultiDatabase) TermDocs(ctx context.Context, term string) ([]DocID, error) {
	n := len(m.dbs)
	var out []DocID
	for i, db := range m.dbs {
		ids, err := db.TermDocs(ctx, term)
		if err != nil {
			return nil, fmt.Errorf("shard %d: %w", i, err)
		}
		for _, id := range ids {
			out = append(out, m.globalID(id, i, n))
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out, nil
}

// Document loads a document by global id.
func (m *MultiDatabase) Document(ctx context.Context, id DocID) (*Document, error) {
	if id == 0 || len(m.dbs) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrDocNotFound, id)
	}
	shard, local := m.Locate(id)
	return m.dbs[shard].Document(ctx, local)
}

// Locate maps a global id to the shard index and the shard-local id.
func (m *MultiDatabase) Locate(id DocID) (shard int, local DocID) {
	n := DocID(len(m.dbs))
	return int((id - 1) % n), (id-1)/n + 1
}

func (m *MultiDatabase) globalID(local DocID, shard, n int) DocID {
	return (local-1)*DocID(n) + DocID(shard) + 1
}
