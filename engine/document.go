package engine

import (
	"fmt"
	"sort"
	"strconv"
)

// DocID is a document number inside one shard. Zero is never a valid id.
type DocID uint32

// MaxTermLength is the longest term a shard accepts.
const MaxTermLength = 245

// DocRef addresses a document either by a unique id term or by DocID.
type DocRef struct {
	Term string `msgpack:"t,omitempty"`
	ID   DocID  `msgpack:"i,omitempty"`
}

// TermRef references the documents indexed by term.
func TermRef(term string) DocRef { return DocRef{Term: term} }

// IDRef references the document with the given id.
func IDRef(id DocID) DocRef { return DocRef{ID: id} }

// IsTerm reports whether r references by term.
func (r DocRef) IsTerm() bool { return r.ID == 0 }

// Validate rejects empty, oversized and zero references.
func (r DocRef) Validate() error {
	if r.IsTerm() {
		if r.Term == "" {
			return fmt.Errorf("%w: empty id term", ErrInvalidArgument)
		}
		if len(r.Term) > MaxTermLength {
			return fmt.Errorf("%w: id term longer than %d bytes", ErrInvalidArgument, MaxTermLength)
		}
	}
	return nil
}

func (r DocRef) String() string {
	if r.IsTerm() {
		return strconv.Quote(r.Term)
	}
	return "#" + strconv.FormatUint(uint64(r.ID), 10)
}

// TermEntry describes one term of a document.
type TermEntry struct {
	Wdf       uint32   `msgpack:"w"`
	Positions []uint32 `msgpack:"p,omitempty"`
}

// Document is the engine's unit of storage: values by slot, terms with
// within-document frequency and positions, and an opaque payload.
//
// Spellings are increments for the shard's spelling dictionary. They are
// applied together with the document by ReplaceDocument and are not stored
// with it.
//
// A Document is not safe for concurrent mutation.
type Document struct {
	Values    map[uint32][]byte    `msgpack:"v,omitempty"`
	Terms     map[string]TermEntry `msgpack:"t,omitempty"`
	Data      []byte               `msgpack:"d,omitempty"`
	Spellings map[string]uint32    `msgpack:"s,omitempty"`
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{
		Values: make(map[uint32][]byte),
		Terms:  make(map[string]TermEntry),
	}
}

// AddValue stores value in slot, replacing what was there.
func (d *Document) AddValue(slot uint32, value []byte) {
	if d.Values == nil {
		d.Values = make(map[uint32][]byte)
	}
	d.Values[slot] = value
}

// Value returns the value in slot, or nil.
func (d *Document) Value(slot uint32) []byte {
	return d.Values[slot]
}

// AddBooleanTerm adds term with a within-document frequency of zero.
func (d *Document) AddBooleanTerm(term string) {
	d.AddTerm(term, 0)
}

// AddTerm adds term, increasing its within-document frequency by wdfinc.
func (d *Document) AddTerm(term string, wdfinc uint32) {
	if d.Terms == nil {
		d.Terms = make(map[string]TermEntry)
	}
	e := d.Terms[term]
	e.Wdf += wdfinc
	d.Terms[term] = e
}

// AddPosting adds an occurrence of term at pos.
func (d *Document) AddPosting(term string, pos uint32, wdfinc uint32) {
	if d.Terms == nil {
		d.Terms = make(map[string]TermEntry)
	}
	e := d.Terms[term]
	e.Wdf += wdfinc
	i := sort.Search(len(e.Positions), func(i int) bool { return e.Positions[i] >= pos })
	if i == len(e.Positions) || e.Positions[i] != pos {
		e.Positions = append(e.Positions, 0)
		copy(e.Positions[i+1:], e.Positions[i:])
		e.Positions[i] = pos
	}
	d.Terms[term] = e
}

// Term returns the entry for term.
func (d *Document) Term(term string) (TermEntry, bool) {
	e, ok := d.Terms[term]
	return e, ok
}

// TermList returns the document's terms in byte order.
func (d *Document) TermList() []string {
	out := make([]string, 0, len(d.Terms))
	for t := range d.Terms {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// AddSpelling queues freqinc occurrences of word for the spelling dictionary.
func (d *Document) AddSpelling(word string, freqinc uint32) {
	if d.Spellings == nil {
		d.Spellings = make(map[string]uint32)
	}
	d.Spellings[word] += freqinc
}

// SetData sets the document's opaque payload.
func (d *Document) SetData(data []byte) {
	d.Data = data
}

// Validate rejects documents the storage layer cannot index.
func (d *Document) Validate() error {
	for t := range d.Terms {
		if t == "" {
			return fmt.Errorf("%w: empty term", ErrInvalidArgument)
		}
		if len(t) > MaxTermLength {
			return fmt.Errorf("%w: term %.20q... longer than %d bytes", ErrInvalidArgument, t, MaxTermLength)
		}
	}
	for w := range d.Spellings {
		if err := ValidateSpelling(w); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSpelling rejects words the spelling dictionary cannot hold.
func ValidateSpelling(word string) error {
	if word == "" || len(word) > MaxTermLength {
		return fmt.Errorf("%w: spelling word %.20q", ErrInvalidArgument, word)
	}
	return nil
}
