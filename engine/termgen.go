package engine

import (
	"context"
	"errors"

	"github.com/YosefMac/Xapiand/internal/analysis"
)

// TermGeneratorFlags modify what a TermGenerator records.
type TermGeneratorFlags uint8

const (
	// FlagSpelling queues unprefixed words on the document for the
	// database's spelling dictionary.
	FlagSpelling TermGeneratorFlags = 1 << iota
)

// StemPrefix marks stemmed terms.
const StemPrefix = "Z"

// TermGenerator turns free text into document terms.
//
// Every word becomes a term (with a position when indexing with positions).
// When a stemmer is set, non-numeric words additionally yield a stemmed term
// "Z"+prefix+stem without positions. Positions continue across calls so that
// consecutive fields do not produce false phrase matches at their boundaries.
type TermGenerator struct {
	db      WritableDatabase
	doc     *Document
	stemmer analysis.Stemmer
	flags   TermGeneratorFlags
	termpos uint32
}

// NewTermGenerator creates a TermGenerator with no document attached.
func NewTermGenerator() *TermGenerator {
	return &TermGenerator{}
}

// SetDatabase binds the shard the document is written to. Spelling data is
// only recorded while a shard is bound.
func (g *TermGenerator) SetDatabase(db WritableDatabase) { g.db = db }

// SetDocument binds the document that receives terms and resets positions.
func (g *TermGenerator) SetDocument(doc *Document) {
	g.doc = doc
	g.termpos = 0
}

// SetStemmer enables stemming for language. An empty language disables it.
func (g *TermGenerator) SetStemmer(language string) error {
	if language == "" {
		g.stemmer = nil
		return nil
	}
	s, err := analysis.NewStemmer(language)
	if err != nil {
		return err
	}
	g.stemmer = s
	return nil
}

// SetFlags replaces the generator's flags.
func (g *TermGenerator) SetFlags(flags TermGeneratorFlags) { g.flags = flags }

// IndexText indexes text with positional information.
func (g *TermGenerator) IndexText(ctx context.Context, text string, wdfinc uint32, prefix string) error {
	return g.index(ctx, text, wdfinc, prefix, true)
}

// IndexTextWithoutPositions indexes text without positional information.
func (g *TermGenerator) IndexTextWithoutPositions(ctx context.Context, text string, wdfinc uint32, prefix string) error {
	return g.index(ctx, text, wdfinc, prefix, false)
}

func (g *TermGenerator) index(ctx context.Context, text string, wdfinc uint32, prefix string, positions bool) error {
	if g.doc == nil {
		return errors.New("termgenerator: no document set")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	spelling := g.flags&FlagSpelling != 0 && prefix == "" && g.db != nil
	for _, w := range analysis.Words(text) {
		g.termpos++
		term := prefix + w.Text
		if len(term) > MaxTermLength {
			continue
		}
		if positions {
			g.doc.AddPosting(term, g.termpos, wdfinc)
		} else {
			g.doc.AddTerm(term, wdfinc)
		}
		if g.stemmer != nil && !w.Numeric {
			if stem := g.stemmer.Stem(w.Text); stem != "" {
				g.doc.AddTerm(StemPrefix+prefix+stem, wdfinc)
			}
		}
		if spelling && !w.Numeric && len(w.Text) <= MaxTermLength {
			g.doc.AddSpelling(w.Text, 1)
		}
	}
	// Leave a gap so phrases do not match across separate calls.
	g.termpos += 100
	return nil
}
