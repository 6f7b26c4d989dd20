package xapiand

import (
	"strconv"

	"github.com/YosefMac/Xapiand/engine"
)

// DocumentID identifies a document. A textual id is stored as a boolean term
// so that indexing the same id again replaces the document. A numeric id
// addresses an engine document number directly.
type DocumentID struct {
	term string
	num  engine.DocID
}

// TextID returns a textual document id.
func TextID(id string) DocumentID { return DocumentID{term: id} }

// NumericID returns an id addressing engine document number id.
func NumericID(id engine.DocID) DocumentID { return DocumentID{num: id} }

// IsText reports whether the id is textual.
func (id DocumentID) IsText() bool { return id.num == 0 }

func (id DocumentID) String() string {
	if id.IsText() {
		return strconv.Quote(id.term)
	}
	return "#" + strconv.FormatUint(uint64(id.num), 10)
}

func (id DocumentID) ref() engine.DocRef {
	if id.IsText() {
		return engine.TermRef(id.term)
	}
	return engine.IDRef(id.num)
}

// Document is a write request as decoded by the ingestion layer.
//
// Language, Spelling and Positions are the defaults for texts that leave
// them unset.
type Document struct {
	ID     DocumentID
	Values map[string]any
	Terms  []Term
	Texts  []Text
	Data   []byte

	Language  string
	Spelling  bool
	Positions bool
}

// Term is a single term to index. Text is serialised like a value before
// it is normalized, so numbers and dates index the same way they sort.
type Term struct {
	Text     any
	Weight   *uint32 // default 1
	Prefix   string
	Position *uint32 // nil indexes without position
}

// Text is free text run through the term generator.
type Text struct {
	Text      string
	Weight    *uint32 // default 1
	Prefix    string
	Language  *string
	Spelling  *bool
	Positions *bool
}

// Ptr returns a pointer to v, for the optional fields of Term and Text.
func Ptr[T any](v T) *T { return &v }

type resolvedTerm struct {
	text     any
	weight   uint32
	prefix   string
	position *uint32
}

func (t Term) resolve() resolvedTerm {
	r := resolvedTerm{text: t.Text, weight: 1, prefix: t.Prefix, position: t.Position}
	if t.Weight != nil {
		r.weight = *t.Weight
	}
	return r
}

type resolvedText struct {
	text      string
	weight    uint32
	prefix    string
	language  string
	spelling  bool
	positions bool
}

func (t Text) resolve(doc *Document) resolvedText {
	r := resolvedText{
		text:      t.Text,
		weight:    1,
		prefix:    t.Prefix,
		language:  doc.Language,
		spelling:  doc.Spelling,
		positions: doc.Positions,
	}
	if t.Weight != nil {
		r.weight = *t.Weight
	}
	if t.Language != nil {
		r.language = *t.Language
	}
	if t.Spelling != nil {
		r.spelling = *t.Spelling
	}
	if t.Positions != nil {
		r.positions = *t.Positions
	}
	return r
}
