package engine_test

import (
	"context"
	"testing"

	"github.com/YosefMac/Xapiand/engine"
	"github.com/YosefMac/Xapiand/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addDoc(t *testing.T, db engine.WritableDatabase, id string, terms ...string) {
	t.Helper()
	doc := engine.NewDocument()
	doc.AddBooleanTerm(id)
	for _, term := range terms {
		doc.AddTerm(term, 1)
	}
	doc.SetData([]byte(id))
	_, err := db.ReplaceDocument(context.Background(), engine.TermRef(id), doc)
	require.NoError(t, err)
}

func TestMultiDatabase_Interleaving(t *testing.T) {
	ctx := context.Background()
	a := testutil.NewMemoryDatabase("a")
	b := testutil.NewMemoryDatabase("b")
	addDoc(t, a, "a1", "shared")
	addDoc(t, a, "a2")
	addDoc(t, b, "b1", "shared")

	m := engine.NewMultiDatabase(a, nil, b)
	require.Equal(t, 2, m.Len())

	n, err := m.DocCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), n)

	ids, err := m.TermDocs(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, []engine.DocID{1, 2}, ids)

	// a2 is local id 2 on shard 0 of 2: global 3.
	doc, err := m.Document(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte("a2"), doc.Data)

	shard, local := m.Locate(2)
	assert.Equal(t, 1, shard)
	assert.Equal(t, engine.DocID(1), local)

	_, err = m.Document(ctx, 0)
	require.ErrorIs(t, err, engine.ErrDocNotFound)
}

func TestMultiDatabase_ReopenJoinsFailures(t *testing.T) {
	ctx := context.Background()
	a := testutil.NewMemoryDatabase("a")
	b := testutil.NewMemoryDatabase("b")
	b.FailReopen(engine.ErrNetwork)

	m := engine.NewMultiDatabase(a, b)
	err := m.Reopen(ctx)
	require.ErrorIs(t, err, engine.ErrNetwork)
	assert.True(t, engine.IsOpenFailure(err))
	assert.Equal(t, int64(1), a.Reopens.Load())
	assert.Equal(t, int64(1), b.Reopens.Load())

	b.FailReopen(nil)
	require.NoError(t, m.Reopen(ctx))
}
