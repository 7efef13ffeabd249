package textnorm

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Language is the language used for collation of tags and facet values.
var Language = language.French

// Collator orders strings the way a French reader expects: accented letters
// sort next to their base letter. A Collator is not safe for concurrent use.
type Collator struct {
	c *collate.Collator
}

func NewCollator() *Collator {
	return &Collator{c: collate.New(Language)}
}

// Compare returns -1, 0 or 1. Strings that collate equal fall back to byte
// order so that the result is a total order.
func (c *Collator) Compare(a, b string) int {
	if r := c.c.CompareString(a, b); r != 0 {
		return r
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// SortStrings sorts values in place using a fresh collator.
func SortStrings(values []string) {
	c := NewCollator()
	sort.SliceStable(values, func(i, j int) bool {
		return c.Compare(values[i], values[j]) < 0
	})
}
