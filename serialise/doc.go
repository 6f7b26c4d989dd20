// Package serialise canonicalizes document values before they are handed to
// the search engine.
//
// Numbers, dates, coordinates and booleans have type-specific encodings so
// that two writers storing the same logical value produce identical bytes.
// Numbers use a sortable 8-byte encoding: comparing encoded values byte-wise
// gives the same result as comparing the numbers.
//
//	b, _ := serialise.Value(42)          // sortable float
//	b, _ = serialise.Value(time.Now())   // sortable seconds
//	s := serialise.Normalize("Ça Va")    // "ca va"
package serialise
