package testutil

import (
	"context"
	"testing"

	"github.com/YosefMac/Xapiand/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRNG_Deterministic(t *testing.T) {
	a := NewRNG(7).Sentence(8)
	b := NewRNG(7).Sentence(8)
	assert.Equal(t, a, b)
}

func TestMemoryDatabase_ReplaceByTerm(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryDatabase("t")

	doc := engine.NewDocument()
	doc.AddBooleanTerm("Qa")
	id1, err := db.ReplaceDocument(ctx, engine.TermRef("Qa"), doc)
	require.NoError(t, err)

	doc2 := engine.NewDocument()
	doc2.AddBooleanTerm("Qa")
	doc2.SetData([]byte("v2"))
	id2, err := db.ReplaceDocument(ctx, engine.TermRef("Qa"), doc2)
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	n, err := db.DocCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), n)

	require.NoError(t, db.DeleteDocument(ctx, engine.TermRef("Qa")))
	require.ErrorIs(t, db.DeleteDocument(ctx, engine.TermRef("Qa")), engine.ErrDocNotFound)
}

func TestMemoryDatabase_FailReopen(t *testing.T) {
	db := NewMemoryDatabase("t")
	db.FailReopen(engine.ErrNetwork)
	require.ErrorIs(t, db.Reopen(context.Background()), engine.ErrNetwork)
	db.FailReopen(nil)
	require.NoError(t, db.Reopen(context.Background()))
	assert.Equal(t, int64(2), db.Reopens.Load())
}
