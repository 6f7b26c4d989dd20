// Package analysis splits free text into words and reduces words to stems.
package analysis

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2/analysis"
	bleveunicode "github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/snowballstem"
	"github.com/blevesearch/snowballstem/danish"
	"github.com/blevesearch/snowballstem/dutch"
	"github.com/blevesearch/snowballstem/english"
	"github.com/blevesearch/snowballstem/finnish"
	"github.com/blevesearch/snowballstem/french"
	"github.com/blevesearch/snowballstem/german"
	"github.com/blevesearch/snowballstem/italian"
	"github.com/blevesearch/snowballstem/norwegian"
	"github.com/blevesearch/snowballstem/portuguese"
	"github.com/blevesearch/snowballstem/russian"
	"github.com/blevesearch/snowballstem/spanish"
	"github.com/blevesearch/snowballstem/swedish"
)

// Word is one token of analysed text.
type Word struct {
	Text    string
	Numeric bool
}

var tokenizer = bleveunicode.NewUnicodeTokenizer()

// Words tokenizes text on Unicode word boundaries and lower-cases the result.
// Punctuation and whitespace are dropped.
func Words(text string) []Word {
	stream := tokenizer.Tokenize([]byte(text))
	words := make([]Word, 0, len(stream))
	for _, tok := range stream {
		if len(tok.Term) == 0 {
			continue
		}
		words = append(words, Word{
			Text:    strings.ToLower(string(tok.Term)),
			Numeric: tok.Type == analysis.Numeric,
		})
	}
	return words
}

// Stemmer reduces a word to its stem.
type Stemmer interface {
	Stem(word string) string
	Language() string
}

type snowball struct {
	language string
	stem     func(*snowballstem.Env) bool
}

func (s snowball) Stem(word string) string {
	env := snowballstem.NewEnv(word)
	s.stem(env)
	return env.Current()
}

func (s snowball) Language() string { return s.language }

var stemmers = map[string]snowball{
	"danish":     {"danish", danish.Stem},
	"dutch":      {"dutch", dutch.Stem},
	"english":    {"english", english.Stem},
	"finnish":    {"finnish", finnish.Stem},
	"french":     {"french", french.Stem},
	"german":     {"german", german.Stem},
	"italian":    {"italian", italian.Stem},
	"norwegian":  {"norwegian", norwegian.Stem},
	"portuguese": {"portuguese", portuguese.Stem},
	"russian":    {"russian", russian.Stem},
	"spanish":    {"spanish", spanish.Stem},
	"swedish":    {"swedish", swedish.Stem},
}

var isoCodes = map[string]string{
	"da": "danish",
	"nl": "dutch",
	"en": "english",
	"fi": "finnish",
	"fr": "french",
	"de": "german",
	"it": "italian",
	"no": "norwegian",
	"nb": "norwegian",
	"pt": "portuguese",
	"ru": "russian",
	"es": "spanish",
	"sv": "swedish",
}

// NewStemmer returns the stemmer for a language given by English name
// ("english") or ISO 639-1 code ("en").
func NewStemmer(language string) (Stemmer, error) {
	lang := strings.ToLower(strings.TrimSpace(language))
	if name, ok := isoCodes[lang]; ok {
		lang = name
	}
	s, ok := stemmers[lang]
	if !ok {
		return nil, fmt.Errorf("analysis: no stemmer for language %q", language)
	}
	return s, nil
}
