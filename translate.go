package xapiand

import (
	"context"
	"fmt"
	"slices"

	"github.com/YosefMac/Xapiand/engine"
	"github.com/YosefMac/Xapiand/serialise"
)

// Translate builds the engine document for doc. db is the shard the document
// is written to. Spelling data for texts that ask for it is queued on the
// result and reaches db only when the document is replaced.
//
// Fields that cannot be translated are skipped and reported as *FieldError
// warnings. err is set for a nil doc or a cancelled ctx.
func Translate(ctx context.Context, doc *Document, db engine.WritableDatabase) (out *engine.Document, warnings []error, err error) {
	if doc == nil {
		return nil, nil, fmt.Errorf("%w: nil document", engine.ErrInvalidArgument)
	}
	out = engine.NewDocument()

	names := make([]string, 0, len(doc.Values))
	for name := range doc.Values {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		normalized, ok := NormalizeValueName(name)
		if !ok {
			warnings = append(warnings, &FieldError{Kind: "value", Name: name, Reason: "invalid name"})
			continue
		}
		b, err := serialise.Value(doc.Values[name])
		if err != nil {
			warnings = append(warnings, &FieldError{Kind: "value", Name: name, Reason: err.Error()})
			continue
		}
		out.AddValue(Slot(normalized), b)
	}

	if doc.ID.IsText() && doc.ID.term != "" {
		out.AddBooleanTerm(doc.ID.term)
	}

	for i, t := range doc.Terms {
		r := t.resolve()
		if isEmpty(r.text) {
			continue
		}
		b, err := serialise.Value(r.text)
		if err != nil {
			warnings = append(warnings, &FieldError{Kind: "term", Name: fmt.Sprintf("#%d", i), Reason: err.Error()})
			continue
		}
		term := r.prefix + string(serialise.NormalizeBytes(b))
		if r.position == nil {
			out.AddTerm(term, r.weight)
		} else {
			out.AddPosting(term, *r.position, r.weight)
		}
	}

	var gen *engine.TermGenerator
	for i, t := range doc.Texts {
		r := t.resolve(doc)
		if r.text == "" {
			continue
		}
		if gen == nil {
			gen = engine.NewTermGenerator()
			gen.SetDatabase(db)
			gen.SetDocument(out)
		}
		if err := gen.SetStemmer(r.language); err != nil {
			warnings = append(warnings, &FieldError{Kind: "text", Name: fmt.Sprintf("#%d", i), Reason: err.Error()})
			_ = gen.SetStemmer("")
		}
		var flags engine.TermGeneratorFlags
		if r.spelling {
			flags |= engine.FlagSpelling
		}
		gen.SetFlags(flags)

		text := serialise.Normalize(r.text)
		if r.positions {
			err = gen.IndexText(ctx, text, r.weight, r.prefix)
		} else {
			err = gen.IndexTextWithoutPositions(ctx, text, r.weight, r.prefix)
		}
		if err != nil {
			return nil, warnings, err
		}
	}

	if len(doc.Data) > 0 {
		out.SetData(doc.Data)
	}
	return out, warnings, nil
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []byte:
		return len(t) == 0
	}
	return false
}
