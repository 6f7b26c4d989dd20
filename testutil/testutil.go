package testutil

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/YosefMac/Xapiand/engine"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

var words = []string{
	"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel",
	"india", "juliet", "kilo", "lima", "mike", "november", "oscar", "papa",
}

// Sentence returns n pseudo-random words separated by spaces.
func (r *RNG) Sentence(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = words[r.Intn(len(words))]
	}
	return strings.Join(parts, " ")
}

// MemoryDatabase is an in-memory engine.WritableDatabase with failure
// injection, for tests of code that sits above the engine.
type MemoryDatabase struct {
	Name string

	mu       sync.Mutex
	docs     map[engine.DocID]*engine.Document
	postings map[string]map[engine.DocID]struct{}
	spelling map[string]uint32
	lastID   engine.DocID
	closed   bool

	// ReopenErr, when set, is returned by Reopen.
	ReopenErr atomic.Pointer[error]

	Reopens atomic.Int64
	Commits atomic.Int64
}

var (
	_ engine.WritableDatabase = (*MemoryDatabase)(nil)
	_ engine.SpellingReader   = (*MemoryDatabase)(nil)
)

// NewMemoryDatabase returns an empty database.
func NewMemoryDatabase(name string) *MemoryDatabase {
	return &MemoryDatabase{
		Name:     name,
		docs:     make(map[engine.DocID]*engine.Document),
		postings: make(map[string]map[engine.DocID]struct{}),
		spelling: make(map[string]uint32),
	}
}

// FailReopen makes every following Reopen return err. Nil clears it.
func (m *MemoryDatabase) FailReopen(err error) {
	if err == nil {
		m.ReopenErr.Store(nil)
		return
	}
	m.ReopenErr.Store(&err)
}

func (m *MemoryDatabase) String() string { return "memory:" + m.Name }

func (m *MemoryDatabase) Reopen(ctx context.Context) error {
	m.Reopens.Add(1)
	if p := m.ReopenErr.Load(); p != nil {
		return *p
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("%s: %w", m, engine.ErrDatabaseClosed)
	}
	return nil
}

func (m *MemoryDatabase) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MemoryDatabase) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MemoryDatabase) DocCount(ctx context.Context) (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return uint32(len(m.docs)), nil
}

func (m *MemoryDatabase) TermDocs(ctx context.Context, term string) ([]engine.DocID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.termDocsLocked(term), nil
}

func (m *MemoryDatabase) termDocsLocked(term string) []engine.DocID {
	ids := make([]engine.DocID, 0, len(m.postings[term]))
	for id := range m.postings[term] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *MemoryDatabase) Document(ctx context.Context, id engine.DocID) (*engine.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", engine.ErrDocNotFound, id)
	}
	return doc, nil
}

func (m *MemoryDatabase) ReplaceDocument(ctx context.Context, ref engine.DocRef, doc *engine.Document) (engine.DocID, error) {
	if err := ref.Validate(); err != nil {
		return 0, err
	}
	if err := doc.Validate(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	id := ref.ID
	if ref.IsTerm() {
		existing := m.termDocsLocked(ref.Term)
		if len(existing) > 0 {
			id = existing[0]
			for _, other := range existing[1:] {
				m.removeLocked(other)
			}
		} else {
			m.lastID++
			id = m.lastID
		}
	}
	m.removeLocked(id)
	stored := *doc
	stored.Spellings = nil
	m.docs[id] = &stored
	for w, inc := range doc.Spellings {
		m.spelling[w] += inc
	}
	for term := range doc.Terms {
		if m.postings[term] == nil {
			m.postings[term] = make(map[engine.DocID]struct{})
		}
		m.postings[term][id] = struct{}{}
	}
	if id > m.lastID {
		m.lastID = id
	}
	return id, nil
}

func (m *MemoryDatabase) removeLocked(id engine.DocID) bool {
	doc, ok := m.docs[id]
	if !ok {
		return false
	}
	for term := range doc.Terms {
		delete(m.postings[term], id)
		if len(m.postings[term]) == 0 {
			delete(m.postings, term)
		}
	}
	delete(m.docs, id)
	return true
}

func (m *MemoryDatabase) DeleteDocument(ctx context.Context, ref engine.DocRef) error {
	if err := ref.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := []engine.DocID{ref.ID}
	if ref.IsTerm() {
		ids = m.termDocsLocked(ref.Term)
	}
	deleted := false
	for _, id := range ids {
		if m.removeLocked(id) {
			deleted = true
		}
	}
	if !deleted {
		return fmt.Errorf("%w: %s", engine.ErrDocNotFound, ref)
	}
	return nil
}

func (m *MemoryDatabase) AddSpelling(ctx context.Context, word string, freqinc uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spelling[word] += freqinc
	return nil
}

func (m *MemoryDatabase) SpellingFrequency(ctx context.Context, word string) (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.spelling[word], nil
}

func (m *MemoryDatabase) Commit(ctx context.Context) error {
	m.Commits.Add(1)
	return nil
}
