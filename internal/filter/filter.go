// Package filter decides which exercises satisfy a set of user filters and
// which of their topics are shown.
package filter

import (
	"strings"

	"github.com/arawak/annales/internal/catalog"
	"github.com/arawak/annales/internal/textnorm"
)

// DefaultLimit caps the number of exercises returned for display.
const DefaultLimit = 400

const haystackSep = " | "

// Spec is the filter state for one query. Empty fields do not filter.
type Spec struct {
	TextQuery      string
	Year           string
	Session        string
	Points         string
	SelectedTags   map[string]struct{}
	StrictTagsOnly bool
}

// TagSet builds a selection set from tags, trimming each one.
func TagSet(tags ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		set[t] = struct{}{}
	}
	return set
}

func (s *Spec) strict() bool {
	return s != nil && s.StrictTagsOnly && len(s.SelectedTags) > 0
}

// Matches reports whether ex passes every filter in spec.
func Matches(ex *catalog.Exercise, spec *Spec) bool {
	if spec == nil {
		return true
	}
	if spec.Year != "" && ex.Year.String() != spec.Year {
		return false
	}
	if spec.Session != "" && ex.Session != spec.Session {
		return false
	}
	if spec.Points != "" && ex.Points.String() != spec.Points {
		return false
	}

	if len(spec.SelectedTags) > 0 {
		topics := topicSet(ex.Topics)
		for t := range spec.SelectedTags {
			if _, ok := topics[t]; !ok {
				return false
			}
		}
		if spec.StrictTagsOnly {
			for t := range topics {
				if _, ok := spec.SelectedTags[t]; !ok {
					return false
				}
			}
		}
	}

	q := textnorm.Normalize(spec.TextQuery)
	if q == "" {
		return true
	}
	return strings.Contains(textnorm.Normalize(haystack(ex)), q)
}

func topicSet(topics []string) map[string]struct{} {
	set := make(map[string]struct{}, len(topics))
	for _, t := range topics {
		set[strings.TrimSpace(t)] = struct{}{}
	}
	return set
}

func haystack(ex *catalog.Exercise) string {
	return strings.Join([]string{
		ex.Session,
		ex.SubjectLabel,
		ex.Code,
		"exercice " + ex.Exercise.String(),
		ex.Points.String() + " points",
		strings.Join(ex.Topics, " "),
		ex.Raw,
	}, haystackSep)
}

// VisibleTopics returns the topics to display for ex. In strict mode only the
// selected ones are kept, in their original order.
func VisibleTopics(ex *catalog.Exercise, spec *Spec) []string {
	if !spec.strict() {
		return ex.Topics
	}
	out := make([]string, 0, len(ex.Topics))
	for _, t := range ex.Topics {
		if _, ok := spec.SelectedTags[strings.TrimSpace(t)]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Match is an exercise that passed the filters, with its catalog position.
type Match struct {
	Index         int
	Exercise      *catalog.Exercise
	VisibleTopics []string
}

// Result holds the full match count and the first matches in catalog order.
type Result struct {
	Count int
	Items []Match
}

// Apply runs Matches over exercises in order. Count reports every match;
// Items stops at limit. A limit <= 0 keeps everything.
func Apply(exercises []catalog.Exercise, spec *Spec, limit int) Result {
	var res Result
	for i := range exercises {
		ex := &exercises[i]
		if !Matches(ex, spec) {
			continue
		}
		res.Count++
		if limit > 0 && len(res.Items) >= limit {
			continue
		}
		res.Items = append(res.Items, Match{Index: i, Exercise: ex, VisibleTopics: VisibleTopics(ex, spec)})
	}
	return res
}
