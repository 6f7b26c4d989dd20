package xapiand

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/YosefMac/Xapiand/engine"
)

// IndexResult describes the outcome of Index.
type IndexResult struct {
	// DocID is the engine document number the document was stored under.
	DocID engine.DocID

	// Skipped is true when the shard could not be opened. Nothing was
	// written and Reason holds the open failure.
	Skipped bool
	Reason  error

	// Warnings lists the fields that were left out, as *FieldError.
	Warnings []error
}

// Index stores doc in the shard at ep, replacing the document with the same
// id. With commit set the change is durable when Index returns.
//
// A shard that cannot be opened is logged and reported through
// IndexResult.Skipped with a nil error, so ingestion keeps going while one
// shard is down. The next call tries to open it again.
func (p *Pool) Index(ctx context.Context, ep Endpoint, doc *Document, commit bool) (IndexResult, error) {
	if doc == nil {
		return IndexResult{}, fmt.Errorf("%w: nil document", engine.ErrInvalidArgument)
	}
	start := time.Now()
	res, err := p.index(ctx, ep, doc, commit)
	p.opts.metricsCollector.RecordIndex(time.Since(start), res.Skipped, err)
	if !res.Skipped {
		p.opts.logger.LogIndex(ctx, ep, doc.ID, uint32(res.DocID), err)
	}
	return res, err
}

func (p *Pool) index(ctx context.Context, ep Endpoint, doc *Document, commit bool) (IndexResult, error) {
	db, err := p.writableShard(ctx, ep)
	if err != nil {
		if errors.Is(err, ErrInvalidIndex) {
			p.opts.logger.LogSkipped(ctx, "index", ep, err)
			return IndexResult{Skipped: true, Reason: err}, nil
		}
		return IndexResult{}, err
	}

	edoc, warnings, err := Translate(ctx, doc, db)
	for _, w := range warnings {
		p.opts.logger.LogField(ctx, w)
	}
	res := IndexResult{Warnings: warnings}
	if err != nil {
		return res, p.writeFailed(ep, db, fmt.Errorf("indexing text: %w", err))
	}

	id, err := db.ReplaceDocument(ctx, doc.ID.ref(), edoc)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidArgument) {
			return res, &ReplaceError{Endpoint: ep, ID: doc.ID, cause: err}
		}
		return res, p.writeFailed(ep, db, err)
	}
	res.DocID = id

	if commit {
		if err := p.commit(ctx, ep, db); err != nil {
			return res, err
		}
	}
	return res, nil
}

// Delete removes the document with id from the shard at ep. It reports
// whether a document was removed; a missing document is not an error. A
// shard that cannot be opened is logged and reported as (false, nil).
func (p *Pool) Delete(ctx context.Context, ep Endpoint, id DocumentID, commit bool) (bool, error) {
	start := time.Now()
	deleted, skipped, err := p.delete(ctx, ep, id, commit)
	p.opts.metricsCollector.RecordDelete(time.Since(start), skipped, err)
	if !skipped {
		p.opts.logger.LogDelete(ctx, ep, id, err)
	}
	return deleted, err
}

func (p *Pool) delete(ctx context.Context, ep Endpoint, id DocumentID, commit bool) (deleted, skipped bool, err error) {
	db, err := p.writableShard(ctx, ep)
	if err != nil {
		if errors.Is(err, ErrInvalidIndex) {
			p.opts.logger.LogSkipped(ctx, "delete", ep, err)
			return false, true, nil
		}
		return false, false, err
	}

	err = db.DeleteDocument(ctx, id.ref())
	switch {
	case err == nil:
		deleted = true
	case errors.Is(err, engine.ErrDocNotFound):
	default:
		return false, false, p.writeFailed(ep, db, err)
	}

	if commit {
		if err := p.commit(ctx, ep, db); err != nil {
			return deleted, false, err
		}
	}
	return deleted, false, nil
}

// Commit makes the changes written to the shard at ep durable. A shard that
// cannot be opened is logged and skipped.
func (p *Pool) Commit(ctx context.Context, ep Endpoint) error {
	db, err := p.writableShard(ctx, ep)
	if err != nil {
		if errors.Is(err, ErrInvalidIndex) {
			p.opts.logger.LogSkipped(ctx, "commit", ep, err)
			return nil
		}
		return err
	}
	return p.commit(ctx, ep, db)
}

func (p *Pool) commit(ctx context.Context, ep Endpoint, db engine.WritableDatabase) error {
	start := time.Now()
	err := db.Commit(ctx)
	if err != nil {
		err = p.writeFailed(ep, db, err)
	}
	p.opts.metricsCollector.RecordCommit(time.Since(start), err)
	p.opts.logger.LogCommit(ctx, ep, err)
	return err
}

// writeFailed evicts the writable handle of ep when err means it is no
// longer usable, so the next write opens the shard again.
func (p *Pool) writeFailed(ep Endpoint, db engine.WritableDatabase, err error) error {
	if engine.IsOpenFailure(err) {
		p.evictShard(ep, true, db)
	}
	return fmt.Errorf("%s: %w", ep, err)
}
