package resolver

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxQueryLength bounds the normalized query, in runes.
const MaxQueryLength = 200

// Languages are searched in this order; the second is only tried when the
// first yields nothing.
var Languages = []string{"pt", "en"}

var markup = strings.NewReplacer("<", "", ">", "", "{", "", "}", "", `"`, "")

// Query is a normalized card search.
type Query struct {
	text  string
	words []string
}

// NewQuery trims the raw text, strips markup characters and double quotes
// and collapses whitespace. Empty or oversized input is rejected with ErrValidation.
func NewQuery(raw string) (Query, error) {
	words := strings.Fields(markup.Replace(raw))
	if len(words) == 0 {
		return Query{}, fmt.Errorf("%w: empty query", ErrValidation)
	}
	text := strings.Join(words, " ")
	if utf8.RuneCountInString(text) > MaxQueryLength {
		return Query{}, fmt.Errorf("%w: query longer than %d characters", ErrValidation, MaxQueryLength)
	}
	return Query{text: text, words: words}, nil
}

// Text returns the normalized query.
func (q Query) Text() string {
	return q.text
}

// SingleWord reports whether the query is one word.
func (q Query) SingleWord() bool {
	return len(q.words) == 1
}

// Term returns the name search term: a single word is wrapped in wildcards
// for substring matching, a phrase is quoted for phrase matching.
func (q Query) Term() string {
	if q.SingleWord() {
		return "*" + q.words[0] + "*"
	}
	return `"` + q.text + `"`
}

// Languages returns the search language order.
func (q Query) Languages() []string {
	return Languages
}
