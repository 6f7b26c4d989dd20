package engine_test

import (
	"testing"

	"github.com/YosefMac/Xapiand/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_TermsAndPostings(t *testing.T) {
	doc := engine.NewDocument()
	doc.AddTerm("plain", 2)
	doc.AddTerm("plain", 1)
	doc.AddPosting("pos", 7, 1)
	doc.AddPosting("pos", 3, 1)
	doc.AddPosting("pos", 7, 1)
	doc.AddBooleanTerm("Qid")

	e, ok := doc.Term("plain")
	require.True(t, ok)
	assert.Equal(t, uint32(3), e.Wdf)
	assert.Empty(t, e.Positions)

	e, ok = doc.Term("pos")
	require.True(t, ok)
	assert.Equal(t, uint32(3), e.Wdf)
	assert.Equal(t, []uint32{3, 7}, e.Positions)

	e, ok = doc.Term("Qid")
	require.True(t, ok)
	assert.Zero(t, e.Wdf)

	assert.Equal(t, []string{"Qid", "plain", "pos"}, doc.TermList())
}

func TestDocument_Values(t *testing.T) {
	doc := &engine.Document{}
	doc.AddValue(9, []byte("a"))
	doc.AddValue(9, []byte("b"))
	assert.Equal(t, []byte("b"), doc.Value(9))
	assert.Nil(t, doc.Value(10))
}

func TestDocument_Validate(t *testing.T) {
	doc := engine.NewDocument()
	doc.AddTerm("", 1)
	require.ErrorIs(t, doc.Validate(), engine.ErrInvalidArgument)

	doc = engine.NewDocument()
	long := make([]byte, engine.MaxTermLength+1)
	for i := range long {
		long[i] = 'x'
	}
	doc.AddTerm(string(long), 1)
	require.ErrorIs(t, doc.Validate(), engine.ErrInvalidArgument)
}

func TestDocRef(t *testing.T) {
	assert.True(t, engine.TermRef("x").IsTerm())
	assert.False(t, engine.IDRef(3).IsTerm())
	assert.Equal(t, `"x"`, engine.TermRef("x").String())
	assert.Equal(t, "#3", engine.IDRef(3).String())

	require.ErrorIs(t, engine.TermRef("").Validate(), engine.ErrInvalidArgument)
	require.NoError(t, engine.IDRef(3).Validate())
}

func TestIsOpenFailure(t *testing.T) {
	assert.True(t, engine.IsOpenFailure(engine.ErrNetwork))
	assert.True(t, engine.IsOpenFailure(engine.ErrDatabaseOpening))
	assert.True(t, engine.IsOpenFailure(engine.ErrDatabaseClosed))
	assert.False(t, engine.IsOpenFailure(engine.ErrDatabaseLock))
	assert.False(t, engine.IsOpenFailure(engine.ErrInvalidArgument))
}
