package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"github.com/YosefMac/Xapiand/engine"
)

// FileName is the name of the Bolt file inside a shard directory.
const FileName = "shard.db"

type options struct {
	lockTimeout time.Duration
	compression CompressionType
	noSync      bool
	mmapSize    int
}

// Option configures an Engine.
type Option func(*options)

// WithLockTimeout bounds how long opening a shard waits for another process
// holding its file lock. Default: 1s.
func WithLockTimeout(d time.Duration) Option {
	return func(o *options) {
		o.lockTimeout = d
	}
}

// WithCompression selects the codec for document payloads written from now
// on. Existing documents keep their codec.
func WithCompression(c CompressionType) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithSyncOnWrite makes every write durable on return instead of on Commit.
func WithSyncOnWrite() Option {
	return func(o *options) {
		o.noSync = false
	}
}

// WithInitialMmapSize sets Bolt's initial mmap size.
func WithInitialMmapSize(n int) Option {
	return func(o *options) {
		o.mmapSize = n
	}
}

// Engine opens on-disk shards. Each shard directory holds one Bolt file.
//
// Bolt allows a file to be opened once per process, so handles on the same
// path share one file; the file is closed when its last handle is. Other
// processes reach a shard through the remote package.
type Engine struct {
	opts options

	mu    sync.Mutex
	files map[string]*file
}

type file struct {
	dir  string
	path string
	bdb  *bbolt.DB
	refs int

	commitMu sync.Mutex
}

// New creates an Engine.
func New(optFns ...Option) *Engine {
	o := options{
		lockTimeout: time.Second,
		noSync:      true,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	return &Engine{
		opts:  o,
		files: make(map[string]*file),
	}
}

// Open opens the shard at dir for reading. A directory without a shard
// yields engine.ErrDatabaseNotFound.
func (e *Engine) Open(ctx context.Context, dir string) (*Shard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("local: %s: %w: %w", dir, engine.ErrDatabase, err)
	}
	if _, err := os.Stat(filepath.Join(dir, FileName)); err != nil {
		return nil, classify(dir, err)
	}
	f, err := e.acquire(dir, false)
	if err != nil {
		return nil, err
	}
	return &Shard{e: e, f: f}, nil
}

// OpenWritable opens the shard at dir for writing, creating it if needed.
func (e *Engine) OpenWritable(ctx context.Context, dir string) (*Shard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("local: %s: %w: %w", dir, engine.ErrDatabase, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("local: %s: %w: %w", dir, engine.ErrDatabase, err)
	}
	f, err := e.acquire(dir, true)
	if err != nil {
		return nil, err
	}
	return &Shard{e: e, f: f, writable: true}, nil
}

// Close closes every open file. Handles become unusable.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	var errs []error
	for dir, f := range e.files {
		if err := f.bdb.Close(); err != nil {
			errs = append(errs, fmt.Errorf("local: %s: %w", dir, err))
		}
		delete(e.files, dir)
	}
	return errors.Join(errs...)
}

func (e *Engine) acquire(dir string, create bool) (*file, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if f, ok := e.files[dir]; ok {
		f.refs++
		return f, nil
	}

	path := filepath.Join(dir, FileName)
	bopt := &bbolt.Options{
		Timeout:      e.opts.lockTimeout,
		NoSync:       e.opts.noSync,
		FreelistType: bbolt.FreelistMapType,
	}
	if e.opts.mmapSize > 0 {
		bopt.InitialMmapSize = e.opts.mmapSize
	}
	bdb, err := bbolt.Open(path, 0o644, bopt)
	if err != nil {
		return nil, classify(dir, err)
	}
	if create {
		err = bdb.Update(func(tx *bbolt.Tx) error {
			for _, name := range allBuckets {
				if _, err := tx.CreateBucketIfNotExists(name); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			_ = bdb.Close()
			return nil, classify(dir, err)
		}
	}

	f := &file{dir: dir, path: path, bdb: bdb, refs: 1}
	e.files[dir] = f
	return f, nil
}

func (e *Engine) release(f *file) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	f.refs--
	if f.refs > 0 {
		return nil
	}
	if cur, ok := e.files[f.dir]; ok && cur == f {
		delete(e.files, f.dir)
	}
	return f.bdb.Close()
}

func classify(dir string, err error) error {
	switch {
	case errors.Is(err, bbolt.ErrTimeout):
		return fmt.Errorf("local: %s: %w: %w", dir, engine.ErrDatabaseLock, err)
	case errors.Is(err, bbolt.ErrInvalid),
		errors.Is(err, bbolt.ErrVersionMismatch),
		errors.Is(err, bbolt.ErrChecksum),
		errors.Is(err, bbolt.ErrDatabaseNotOpen):
		return fmt.Errorf("local: %s: %w: %w", dir, engine.ErrDatabaseOpening, err)
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("local: %s: %w", dir, engine.ErrDatabaseNotFound)
	default:
		return fmt.Errorf("local: %s: %w: %w", dir, engine.ErrDatabase, err)
	}
}
