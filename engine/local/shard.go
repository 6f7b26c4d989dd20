package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"go.etcd.io/bbolt"

	"github.com/YosefMac/Xapiand/engine"
)

// Shard is a handle on an on-disk shard.
type Shard struct {
	e        *Engine
	f        *file
	writable bool
	closed   atomic.Bool
}

var (
	_ engine.WritableDatabase = (*Shard)(nil)
	_ engine.SpellingReader   = (*Shard)(nil)
)

// Path returns the shard directory.
func (s *Shard) Path() string { return s.f.dir }

// Writable reports whether the handle accepts changes.
func (s *Shard) Writable() bool { return s.writable }

func (s *Shard) String() string { return s.f.dir }

// Reopen checks the shard is still usable. Bolt transactions always see the
// latest committed state, so there is nothing to refresh otherwise.
func (s *Shard) Reopen(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed.Load() {
		return fmt.Errorf("local: %s: %w", s.f.dir, engine.ErrDatabaseClosed)
	}
	if _, err := os.Stat(s.f.path); err != nil {
		return fmt.Errorf("local: %s: %w: %w", s.f.dir, engine.ErrDatabaseOpening, err)
	}
	return s.view(func(tx *bbolt.Tx) error { return nil })
}

// Close releases the handle.
func (s *Shard) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.e.release(s.f)
}

func (s *Shard) DocCount(ctx context.Context) (uint32, error) {
	var n uint32
	err := s.view(func(tx *bbolt.Tx) error {
		n = getUint32(tx.Bucket(bucketMeta), keyDocCount)
		return nil
	})
	return n, err
}

func (s *Shard) TermDocs(ctx context.Context, term string) ([]engine.DocID, error) {
	var ids []engine.DocID
	err := s.view(func(tx *bbolt.Tx) error {
		bm, err := loadPostings(tx.Bucket(bucketPostings), term)
		if err != nil {
			return err
		}
		ids = toDocIDs(bm)
		return nil
	})
	return ids, err
}

func (s *Shard) Document(ctx context.Context, id engine.DocID) (*engine.Document, error) {
	var doc *engine.Document
	err := s.view(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketDocs)
		var v []byte
		if b != nil {
			v = b.Get(docKey(id))
		}
		if v == nil {
			return fmt.Errorf("%w: %d", engine.ErrDocNotFound, id)
		}
		var err error
		doc, err = decodeDoc(v)
		return err
	})
	return doc, err
}

// SpellingFrequency returns how often word was recorded for spelling.
func (s *Shard) SpellingFrequency(ctx context.Context, word string) (uint32, error) {
	var n uint32
	err := s.view(func(tx *bbolt.Tx) error {
		n = getUint32(tx.Bucket(bucketSpelling), []byte(word))
		return nil
	})
	return n, err
}

func (s *Shard) ReplaceDocument(ctx context.Context, ref engine.DocRef, doc *engine.Document) (engine.DocID, error) {
	if err := ref.Validate(); err != nil {
		return 0, err
	}
	if err := doc.Validate(); err != nil {
		return 0, err
	}
	rec, err := encodeDoc(doc, s.e.opts.compression)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", engine.ErrDatabase, err)
	}

	var id engine.DocID
	err = s.update(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		postings := tx.Bucket(bucketPostings)
		last := engine.DocID(getUint32(meta, keyLastDocID))

		id = ref.ID
		if ref.IsTerm() {
			bm, err := loadPostings(postings, ref.Term)
			if err != nil {
				return err
			}
			if bm.IsEmpty() {
				id = last + 1
			} else {
				id = engine.DocID(bm.Minimum())
				for _, other := range toDocIDs(bm)[1:] {
					if _, err := removeDoc(tx, other); err != nil {
						return err
					}
				}
			}
		}
		if _, err := removeDoc(tx, id); err != nil {
			return err
		}

		if err := tx.Bucket(bucketDocs).Put(docKey(id), rec); err != nil {
			return err
		}
		for term := range doc.Terms {
			bm, err := loadPostings(postings, term)
			if err != nil {
				return err
			}
			bm.Add(uint32(id))
			if err := storePostings(postings, term, bm); err != nil {
				return err
			}
		}
		if err := putUint32(meta, keyDocCount, getUint32(meta, keyDocCount)+1); err != nil {
			return err
		}
		if err := addSpellings(tx.Bucket(bucketSpelling), doc.Spellings); err != nil {
			return err
		}
		if id > last {
			return putUint32(meta, keyLastDocID, uint32(id))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Shard) DeleteDocument(ctx context.Context, ref engine.DocRef) error {
	if err := ref.Validate(); err != nil {
		return err
	}
	return s.update(func(tx *bbolt.Tx) error {
		ids := []engine.DocID{ref.ID}
		if ref.IsTerm() {
			bm, err := loadPostings(tx.Bucket(bucketPostings), ref.Term)
			if err != nil {
				return err
			}
			ids = toDocIDs(bm)
		}
		deleted := false
		for _, id := range ids {
			ok, err := removeDoc(tx, id)
			if err != nil {
				return err
			}
			deleted = deleted || ok
		}
		if !deleted {
			return fmt.Errorf("%w: %s", engine.ErrDocNotFound, ref)
		}
		return nil
	})
}

func (s *Shard) AddSpelling(ctx context.Context, word string, freqinc uint32) error {
	if err := engine.ValidateSpelling(word); err != nil {
		return err
	}
	return s.update(func(tx *bbolt.Tx) error {
		return addSpellings(tx.Bucket(bucketSpelling), map[string]uint32{word: freqinc})
	})
}

func addSpellings(b *bbolt.Bucket, words map[string]uint32) error {
	for w, inc := range words {
		if err := putUint32(b, []byte(w), getUint32(b, []byte(w))+inc); err != nil {
			return err
		}
	}
	return nil
}

// Commit flushes written pages to stable storage.
func (s *Shard) Commit(ctx context.Context) error {
	if !s.writable {
		return fmt.Errorf("local: %s: %w", s.f.dir, engine.ErrReadOnly)
	}
	if s.closed.Load() {
		return fmt.Errorf("local: %s: %w", s.f.dir, engine.ErrDatabaseClosed)
	}
	s.f.commitMu.Lock()
	defer s.f.commitMu.Unlock()
	if err := s.f.bdb.Sync(); err != nil {
		return classify(s.f.dir, err)
	}
	return nil
}

// removeDoc deletes a stored document and its postings. It reports whether
// the document existed.
func removeDoc(tx *bbolt.Tx, id engine.DocID) (bool, error) {
	docs := tx.Bucket(bucketDocs)
	v := docs.Get(docKey(id))
	if v == nil {
		return false, nil
	}
	old, err := decodeDoc(v)
	if err != nil {
		return false, err
	}
	postings := tx.Bucket(bucketPostings)
	for term := range old.Terms {
		bm, err := loadPostings(postings, term)
		if err != nil {
			return false, err
		}
		bm.Remove(uint32(id))
		if err := storePostings(postings, term, bm); err != nil {
			return false, err
		}
	}
	if err := docs.Delete(docKey(id)); err != nil {
		return false, err
	}
	meta := tx.Bucket(bucketMeta)
	if n := getUint32(meta, keyDocCount); n > 0 {
		if err := putUint32(meta, keyDocCount, n-1); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (s *Shard) view(fn func(*bbolt.Tx) error) error {
	if s.closed.Load() {
		return fmt.Errorf("local: %s: %w", s.f.dir, engine.ErrDatabaseClosed)
	}
	return s.wrap(s.f.bdb.View(fn))
}

func (s *Shard) update(fn func(*bbolt.Tx) error) error {
	if !s.writable {
		return fmt.Errorf("local: %s: %w", s.f.dir, engine.ErrReadOnly)
	}
	if s.closed.Load() {
		return fmt.Errorf("local: %s: %w", s.f.dir, engine.ErrDatabaseClosed)
	}
	return s.wrap(s.f.bdb.Update(fn))
}

// wrap leaves engine errors alone and classifies Bolt's.
func (s *Shard) wrap(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{
		engine.ErrDocNotFound, engine.ErrInvalidArgument, engine.ErrDatabase,
		engine.ErrReadOnly, engine.ErrDatabaseClosed,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return classify(s.f.dir, err)
}
