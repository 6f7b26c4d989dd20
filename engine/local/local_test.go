package local

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"

	"github.com/YosefMac/Xapiand/engine"
)

func newDoc(id string, terms ...string) *engine.Document {
	doc := engine.NewDocument()
	doc.AddBooleanTerm(id)
	for _, term := range terms {
		doc.AddTerm(term, 1)
	}
	doc.SetData([]byte(id))
	return doc
}

func TestOpenWritable_Creates(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "users", "shard0")
	e := New()
	defer e.Close()

	w, err := e.OpenWritable(ctx, dir)
	require.NoError(t, err)
	defer w.Close()

	assert.True(t, w.Writable())
	assert.FileExists(t, filepath.Join(dir, FileName))

	n, err := w.DocCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpen_Missing(t *testing.T) {
	e := New()
	defer e.Close()

	_, err := e.Open(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.ErrorIs(t, err, engine.ErrDatabaseNotFound)
	assert.True(t, engine.IsOpenFailure(err))
}

func TestOpen_Corrupt(t *testing.T) {
	dir := t.TempDir()
	garbage := bytes.Repeat([]byte("not a bolt file "), 512)
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), garbage, 0o644))

	e := New()
	defer e.Close()

	_, err := e.Open(context.Background(), dir)
	require.ErrorIs(t, err, engine.ErrDatabaseOpening)
}

func TestOpen_Locked(t *testing.T) {
	dir := t.TempDir()
	other, err := bbolt.Open(filepath.Join(dir, FileName), 0o644, nil)
	require.NoError(t, err)
	defer other.Close()

	e := New(WithLockTimeout(50 * time.Millisecond))
	defer e.Close()

	_, err = e.OpenWritable(context.Background(), dir)
	require.ErrorIs(t, err, engine.ErrDatabaseLock)
	assert.False(t, engine.IsOpenFailure(err))
}

func TestShard_SharedFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	e := New()
	defer e.Close()

	w, err := e.OpenWritable(ctx, dir)
	require.NoError(t, err)
	r, err := e.Open(ctx, dir)
	require.NoError(t, err)
	defer r.Close()

	_, err = w.ReplaceDocument(ctx, engine.TermRef("Qa"), newDoc("Qa"))
	require.NoError(t, err)

	n, err := r.DocCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), n)

	// The reader keeps the file open after the writer goes away.
	require.NoError(t, w.Close())
	require.NoError(t, r.Reopen(ctx))

	_, err = r.ReplaceDocument(ctx, engine.TermRef("Qb"), newDoc("Qb"))
	require.ErrorIs(t, err, engine.ErrReadOnly)
}

func TestShard_ReplaceByTerm(t *testing.T) {
	ctx := context.Background()
	e := New()
	defer e.Close()
	w, err := e.OpenWritable(ctx, t.TempDir())
	require.NoError(t, err)
	defer w.Close()

	id1, err := w.ReplaceDocument(ctx, engine.TermRef("Q42"), newDoc("Q42", "apple"))
	require.NoError(t, err)
	id2, err := w.ReplaceDocument(ctx, engine.TermRef("Q42"), newDoc("Q42", "pear"))
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	n, err := w.DocCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), n)

	ids, err := w.TermDocs(ctx, "apple")
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = w.TermDocs(ctx, "pear")
	require.NoError(t, err)
	assert.Equal(t, []engine.DocID{id1}, ids)

	other, err := w.ReplaceDocument(ctx, engine.TermRef("Q43"), newDoc("Q43"))
	require.NoError(t, err)
	assert.Equal(t, id1+1, other)
}

func TestShard_ReplaceByID(t *testing.T) {
	ctx := context.Background()
	e := New()
	defer e.Close()
	w, err := e.OpenWritable(ctx, t.TempDir())
	require.NoError(t, err)
	defer w.Close()

	id, err := w.ReplaceDocument(ctx, engine.IDRef(7), newDoc("Q7"))
	require.NoError(t, err)
	assert.Equal(t, engine.DocID(7), id)

	// Ids allocated for terms continue after the highest explicit id.
	next, err := w.ReplaceDocument(ctx, engine.TermRef("Qx"), newDoc("Qx"))
	require.NoError(t, err)
	assert.Equal(t, engine.DocID(8), next)
}

func TestShard_Positions(t *testing.T) {
	ctx := context.Background()
	e := New()
	defer e.Close()
	w, err := e.OpenWritable(ctx, t.TempDir())
	require.NoError(t, err)
	defer w.Close()

	doc := engine.NewDocument()
	doc.AddPosting("hello", 3, 1)
	doc.AddPosting("hello", 1, 1)
	doc.AddValue(5, []byte{0x01, 0x02})
	id, err := w.ReplaceDocument(ctx, engine.TermRef("hello"), doc)
	require.NoError(t, err)

	got, err := w.Document(ctx, id)
	require.NoError(t, err)
	entry, ok := got.Term("hello")
	require.True(t, ok)
	assert.Equal(t, uint32(2), entry.Wdf)
	assert.Equal(t, []uint32{1, 3}, entry.Positions)
	assert.Equal(t, []byte{0x01, 0x02}, got.Value(5))
}

func TestShard_CompressedPayload(t *testing.T) {
	for _, c := range []CompressionType{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			ctx := context.Background()
			e := New(WithCompression(c))
			defer e.Close()
			w, err := e.OpenWritable(ctx, t.TempDir())
			require.NoError(t, err)
			defer w.Close()

			data := bytes.Repeat([]byte(`{"name":"xapiand","tags":["a","b"]}`), 40)
			doc := newDoc("Qz")
			doc.SetData(data)
			id, err := w.ReplaceDocument(ctx, engine.TermRef("Qz"), doc)
			require.NoError(t, err)

			got, err := w.Document(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, data, got.Data)
		})
	}
}

func TestShard_Delete(t *testing.T) {
	ctx := context.Background()
	e := New()
	defer e.Close()
	w, err := e.OpenWritable(ctx, t.TempDir())
	require.NoError(t, err)
	defer w.Close()

	id, err := w.ReplaceDocument(ctx, engine.TermRef("Q1"), newDoc("Q1", "fruit"))
	require.NoError(t, err)

	require.NoError(t, w.DeleteDocument(ctx, engine.TermRef("Q1")))
	_, err = w.Document(ctx, id)
	require.ErrorIs(t, err, engine.ErrDocNotFound)

	ids, err := w.TermDocs(ctx, "fruit")
	require.NoError(t, err)
	assert.Empty(t, ids)

	err = w.DeleteDocument(ctx, engine.TermRef("Q1"))
	require.ErrorIs(t, err, engine.ErrDocNotFound)

	err = w.DeleteDocument(ctx, engine.TermRef(""))
	require.ErrorIs(t, err, engine.ErrInvalidArgument)
}

func TestShard_SpellingAndCommit(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	e := New()
	w, err := e.OpenWritable(ctx, dir)
	require.NoError(t, err)

	require.NoError(t, w.AddSpelling(ctx, "hello", 1))
	require.NoError(t, w.AddSpelling(ctx, "hello", 2))
	_, err = w.ReplaceDocument(ctx, engine.TermRef("Q1"), newDoc("Q1"))
	require.NoError(t, err)
	require.NoError(t, w.Commit(ctx))
	require.NoError(t, w.Close())
	require.NoError(t, e.Close())

	e2 := New()
	defer e2.Close()
	r, err := e2.Open(ctx, dir)
	require.NoError(t, err)
	defer r.Close()

	freq, err := r.SpellingFrequency(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, uint32(3), freq)

	n, err := r.DocCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), n)

	require.ErrorIs(t, r.Commit(ctx), engine.ErrReadOnly)
}

func TestShard_ReplaceAppliesSpellings(t *testing.T) {
	ctx := context.Background()
	e := New()
	defer e.Close()
	w, err := e.OpenWritable(ctx, t.TempDir())
	require.NoError(t, err)
	defer w.Close()

	doc := newDoc("Q1")
	doc.AddSpelling("zebra", 2)
	_, err = w.ReplaceDocument(ctx, engine.TermRef("Q1"), doc)
	require.NoError(t, err)

	freq, err := w.SpellingFrequency(ctx, "zebra")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), freq)

	stored, err := w.Document(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, stored.Spellings)
}

func TestShard_RejectedDocumentLeavesSpelling(t *testing.T) {
	ctx := context.Background()
	e := New()
	defer e.Close()
	w, err := e.OpenWritable(ctx, t.TempDir())
	require.NoError(t, err)
	defer w.Close()

	doc := newDoc("Q1", strings.Repeat("x", engine.MaxTermLength+1))
	doc.AddSpelling("zebra", 1)
	_, err = w.ReplaceDocument(ctx, engine.TermRef("Q1"), doc)
	require.ErrorIs(t, err, engine.ErrInvalidArgument)

	bad := newDoc("Q2")
	bad.AddSpelling("", 1)
	_, err = w.ReplaceDocument(ctx, engine.TermRef("Q2"), bad)
	require.ErrorIs(t, err, engine.ErrInvalidArgument)

	freq, err := w.SpellingFrequency(ctx, "zebra")
	require.NoError(t, err)
	assert.Zero(t, freq)
}

func TestShard_Closed(t *testing.T) {
	ctx := context.Background()
	e := New()
	defer e.Close()
	w, err := e.OpenWritable(ctx, t.TempDir())
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	err = w.Reopen(ctx)
	require.ErrorIs(t, err, engine.ErrDatabaseClosed)
	assert.True(t, engine.IsOpenFailure(err))
}

func TestShard_ReopenAfterRemoval(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	e := New()
	defer e.Close()
	r, err := e.OpenWritable(ctx, dir)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, os.Remove(filepath.Join(dir, FileName)))
	err = r.Reopen(ctx)
	require.ErrorIs(t, err, engine.ErrDatabaseOpening)
}

func TestCompression_SmallAndIncompressible(t *testing.T) {
	out, applied, err := compressPayload([]byte("short"), CompressionZSTD)
	require.NoError(t, err)
	assert.Equal(t, CompressionNone, applied)
	assert.Equal(t, []byte("short"), out)

	c, err := ParseCompression("lz4")
	require.NoError(t, err)
	assert.Equal(t, CompressionLZ4, c)
	_, err = ParseCompression("brotli")
	require.Error(t, err)
}

func TestDecompress_CorruptHeader(t *testing.T) {
	huge := binary.AppendUvarint(nil, 1<<62)
	huge = append(huge, "block"...)
	for _, c := range []CompressionType{CompressionLZ4, CompressionZSTD} {
		_, err := decompressPayload(huge, c)
		require.Error(t, err, c.String())
	}

	// Within the global bound but far beyond what five LZ4 bytes can expand to.
	inflated := binary.AppendUvarint(nil, 1<<29)
	inflated = append(inflated, "block"...)
	_, err := decompressPayload(inflated, CompressionLZ4)
	require.Error(t, err)
}

func TestDecodeDoc_CorruptPayload(t *testing.T) {
	payload := binary.AppendUvarint(nil, 1<<62)
	b, err := msgpack.Marshal(&docRecord{Data: payload, Codec: CompressionZSTD})
	require.NoError(t, err)

	_, err = decodeDoc(b)
	require.ErrorIs(t, err, engine.ErrDatabase)
}
