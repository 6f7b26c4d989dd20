package xapiand

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YosefMac/Xapiand/engine"
	"github.com/YosefMac/Xapiand/serialise"
	"github.com/YosefMac/Xapiand/testutil"
)

func TestTranslate_Values(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewMemoryDatabase("t")

	out, warnings, err := Translate(ctx, &Document{
		ID: TextID("Q1"),
		Values: map[string]any{
			"  Year ":  2024,
			"active":   true,
			"-bad":     "x",
			"9lives":   "x",
			"empty":    nil,
		},
	}, db)
	require.NoError(t, err)

	assert.Equal(t, serialise.Sortable(2024), out.Value(Slot("year")))
	assert.Equal(t, []byte("t"), out.Value(Slot("active")))
	assert.Len(t, out.Values, 2)

	require.Len(t, warnings, 3)
	for _, w := range warnings {
		var fe *FieldError
		require.ErrorAs(t, w, &fe)
		assert.Equal(t, "value", fe.Kind)
	}
}

func TestTranslate_ValueNamesCheckedByPrefix(t *testing.T) {
	out, warnings, err := Translate(context.Background(), &Document{
		ID:     TextID("Q1"),
		Values: map[string]any{"created-at": "2024-01-01", "Geo.Lat": "40.4"},
	}, testutil.NewMemoryDatabase("t"))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, []byte("2024-01-01"), out.Value(Slot("created-at")))
	assert.Equal(t, []byte("40.4"), out.Value(Slot("geo.lat")))
}

func TestTranslate_ValueNameCollision(t *testing.T) {
	out, _, err := Translate(context.Background(), &Document{
		ID:     TextID("Q1"),
		Values: map[string]any{"  Title": "first", "title": "second"},
	}, testutil.NewMemoryDatabase("t"))
	require.NoError(t, err)

	assert.Len(t, out.Values, 1)
	assert.Equal(t, []byte("second"), out.Value(Slot("title")))
}

func TestTranslate_ID(t *testing.T) {
	t.Run("TextualIDIsBooleanTerm", func(t *testing.T) {
		out, _, err := Translate(context.Background(), &Document{ID: TextID("Q42")}, testutil.NewMemoryDatabase("t"))
		require.NoError(t, err)

		e, ok := out.Term("Q42")
		require.True(t, ok)
		assert.Zero(t, e.Wdf)
		assert.Empty(t, e.Positions)
	})

	t.Run("NumericIDAddsNoTerm", func(t *testing.T) {
		out, _, err := Translate(context.Background(), &Document{ID: NumericID(7)}, testutil.NewMemoryDatabase("t"))
		require.NoError(t, err)
		assert.Empty(t, out.Terms)
	})
}

func TestTranslate_Terms(t *testing.T) {
	out, warnings, err := Translate(context.Background(), &Document{
		ID: TextID("Q1"),
		Terms: []Term{
			{Text: "Café"},
			{Text: "Hello", Weight: Ptr(uint32(3)), Prefix: "XT", Position: Ptr(uint32(5))},
			{Text: ""},
			{Text: nil},
			{Text: struct{}{}},
		},
	}, testutil.NewMemoryDatabase("t"))
	require.NoError(t, err)
	require.Len(t, warnings, 1)

	plain, ok := out.Term("cafe")
	require.True(t, ok)
	assert.Equal(t, uint32(1), plain.Wdf)
	assert.Empty(t, plain.Positions)

	posting, ok := out.Term("XThello")
	require.True(t, ok)
	assert.Equal(t, uint32(3), posting.Wdf)
	assert.Equal(t, []uint32{5}, posting.Positions)

	// The id term plus the two valid terms.
	assert.Len(t, out.Terms, 3)
}

func TestTranslate_Texts(t *testing.T) {
	ctx := context.Background()

	t.Run("DefaultsApply", func(t *testing.T) {
		db := testutil.NewMemoryDatabase("t")
		out, _, err := Translate(ctx, &Document{
			ID:        TextID("Q1"),
			Texts:     []Text{{Text: "Running dogs"}},
			Language:  "english",
			Spelling:  true,
			Positions: true,
		}, db)
		require.NoError(t, err)

		e, ok := out.Term("running")
		require.True(t, ok)
		assert.Equal(t, []uint32{1}, e.Positions)

		_, ok = out.Term(engine.StemPrefix + "run")
		assert.True(t, ok)

		assert.Equal(t, uint32(1), out.Spellings["dogs"])
		freq, err := db.SpellingFrequency(ctx, "dogs")
		require.NoError(t, err)
		assert.Zero(t, freq, "applied on replace only")
	})

	t.Run("EntryOverridesDefaults", func(t *testing.T) {
		db := testutil.NewMemoryDatabase("t")
		out, _, err := Translate(ctx, &Document{
			ID: TextID("Q1"),
			Texts: []Text{{
				Text:      "Running dogs",
				Language:  Ptr(""),
				Spelling:  Ptr(false),
				Positions: Ptr(false),
			}},
			Language:  "english",
			Spelling:  true,
			Positions: true,
		}, db)
		require.NoError(t, err)

		e, ok := out.Term("running")
		require.True(t, ok)
		assert.Empty(t, e.Positions)

		_, ok = out.Term(engine.StemPrefix + "run")
		assert.False(t, ok)

		assert.Empty(t, out.Spellings)
	})

	t.Run("UnknownLanguageIndexesUnstemmed", func(t *testing.T) {
		out, warnings, err := Translate(ctx, &Document{
			ID:    TextID("Q1"),
			Texts: []Text{{Text: "hello", Language: Ptr("klingon")}},
		}, testutil.NewMemoryDatabase("t"))
		require.NoError(t, err)
		require.Len(t, warnings, 1)

		_, ok := out.Term("hello")
		assert.True(t, ok)
	})

	t.Run("PrefixAndWeight", func(t *testing.T) {
		out, _, err := Translate(ctx, &Document{
			ID:    TextID("Q1"),
			Texts: []Text{{Text: "Ñandú", Prefix: "XA", Weight: Ptr(uint32(2))}},
		}, testutil.NewMemoryDatabase("t"))
		require.NoError(t, err)

		e, ok := out.Term("XAnandu")
		require.True(t, ok)
		assert.Equal(t, uint32(2), e.Wdf)
	})
}

func TestTranslate_Data(t *testing.T) {
	out, _, err := Translate(context.Background(), &Document{
		ID:   TextID("Q1"),
		Data: []byte(`{"hello":"world"}`),
	}, testutil.NewMemoryDatabase("t"))
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"hello":"world"}`), out.Data)
}

func TestTranslate_RandomTexts(t *testing.T) {
	rng := testutil.NewRNG(42)
	doc := &Document{ID: TextID("Q1"), Spelling: true, Positions: true}
	counts := make(map[string]uint32)
	total := 0
	for i := 0; i < 8; i++ {
		text := rng.Sentence(1 + rng.Intn(12))
		doc.Texts = append(doc.Texts, Text{Text: text})
		for _, w := range strings.Fields(text) {
			counts[w]++
			total++
		}
	}

	out, warnings, err := Translate(context.Background(), doc, testutil.NewMemoryDatabase("t"))
	require.NoError(t, err)
	require.Empty(t, warnings)

	seen := make(map[uint32]bool)
	for w, n := range counts {
		e, ok := out.Term(w)
		require.True(t, ok, "seed %d: %s", rng.Seed(), w)
		assert.Equal(t, n, e.Wdf, w)
		assert.Len(t, e.Positions, int(n), w)
		for _, pos := range e.Positions {
			assert.False(t, seen[pos], "position %d used twice", pos)
			seen[pos] = true
		}
	}
	assert.Len(t, seen, total)
	assert.Equal(t, counts, out.Spellings)
}
