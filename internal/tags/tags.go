// Package tags derives the topic vocabulary offered to users from the raw,
// noisy per-exercise topic lists.
package tags

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/arawak/annales/internal/catalog"
	"github.com/arawak/annales/internal/textnorm"
)

const (
	DefaultMaxLength = 28
	DefaultMaxWords  = 4
)

// DefaultDenylist holds boilerplate prefixes left behind by topic extraction.
// Entries are compared against the normalized tag.
var DefaultDenylist = []string{
	"cet exercice",
	"sur la",
	"sur les",
	"deux parties",
	"principalement",
	"utilise la structure",
	"logique booleenne",
}

type Mode int

const (
	// Filtered keeps only tags passing IsUseful. Used by the browse page.
	Filtered Mode = iota
	// Unfiltered keeps every non-empty tag. Used by the combo tag picker.
	Unfiltered
)

func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "filtered":
		return Filtered, true
	case "unfiltered", "all":
		return Unfiltered, true
	}
	return Filtered, false
}

func (m Mode) String() string {
	if m == Unfiltered {
		return "unfiltered"
	}
	return "filtered"
}

type Options struct {
	Mode Mode
	// Denylist overrides DefaultDenylist when non-nil.
	Denylist []string
	// MaxLength is the longest accepted tag in characters.
	MaxLength int
	// MaxWords rejects tags with this many words or more.
	MaxWords int
}

// Entry is one vocabulary tag with the number of exercises carrying it.
type Entry struct {
	Tag       string `json:"tag"`
	Frequency int    `json:"frequency"`
}

type Curator struct {
	mode      Mode
	denylist  []string
	maxLength int
	maxWords  int
}

func New(opts Options) *Curator {
	deny := opts.Denylist
	if deny == nil {
		deny = DefaultDenylist
	}
	c := &Curator{
		mode:      opts.Mode,
		maxLength: opts.MaxLength,
		maxWords:  opts.MaxWords,
	}
	if c.maxLength <= 0 {
		c.maxLength = DefaultMaxLength
	}
	if c.maxWords <= 0 {
		c.maxWords = DefaultMaxWords
	}
	for _, d := range deny {
		if n := textnorm.Normalize(d); n != "" {
			c.denylist = append(c.denylist, n)
		}
	}
	return c
}

// IsUseful reports whether tag looks like a topic rather than a sentence
// fragment.
func (c *Curator) IsUseful(tag string) bool {
	s := strings.TrimSpace(tag)
	if s == "" {
		return false
	}
	if utf8.RuneCountInString(s) > c.maxLength {
		return false
	}
	low := textnorm.Normalize(s)
	for _, prefix := range c.denylist {
		if strings.HasPrefix(low, prefix) {
			return false
		}
	}
	if strings.ContainsAny(s, "()") {
		return false
	}
	if len(strings.Fields(s)) >= c.maxWords {
		return false
	}
	return true
}

func (c *Curator) keep(tag string) bool {
	if c.mode == Unfiltered {
		return tag != ""
	}
	return c.IsUseful(tag)
}

// RankEntries counts trimmed tags over all exercises and orders them by
// descending frequency, then French collation.
func (c *Curator) RankEntries(exercises []catalog.Exercise) []Entry {
	freq := make(map[string]int)
	for i := range exercises {
		for _, t := range exercises[i].Topics {
			tag := strings.TrimSpace(t)
			if !c.keep(tag) {
				continue
			}
			freq[tag]++
		}
	}

	entries := make([]Entry, 0, len(freq))
	for tag, n := range freq {
		entries = append(entries, Entry{Tag: tag, Frequency: n})
	}
	coll := textnorm.NewCollator()
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Frequency != entries[j].Frequency {
			return entries[i].Frequency > entries[j].Frequency
		}
		return coll.Compare(entries[i].Tag, entries[j].Tag) < 0
	})
	return entries
}

// Rank returns the tags of RankEntries without their counts.
func (c *Curator) Rank(exercises []catalog.Exercise) []string {
	entries := c.RankEntries(exercises)
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Tag
	}
	return out
}

// Search keeps the vocabulary entries whose normalized form contains the
// normalized query, preserving vocabulary order.
func Search(vocab []Entry, query string) []Entry {
	q := textnorm.Normalize(query)
	if q == "" {
		return vocab
	}
	var out []Entry
	for _, e := range vocab {
		if strings.Contains(textnorm.Normalize(e.Tag), q) {
			out = append(out, e)
		}
	}
	return out
}
