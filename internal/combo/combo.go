// Package combo builds requests for the external combo generator and reads
// its answers.
package combo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/arawak/annales/internal/catalog"
)

const DefaultK = 3

var (
	ErrInvalidK = errors.New("invalid number of exercises")
	ErrNoTags   = errors.New("no tags selected")
)

// RejectedError is a generator refusal. Message is shown to the user as is.
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	return e.Message
}

// Request asks the generator for K exercises jointly covering Tags.
type Request struct {
	Tags               []string `json:"tags"`
	K                  int      `json:"k"`
	AvoidSameSubject   bool     `json:"avoid_same_subject"`
	OnlySelectedTopics bool     `json:"only_selected_topics"`
}

// BuildRequest keeps tags in the caller's order, dropping blanks and
// repeats.
func BuildRequest(selected []string, k int, avoidSameSubject, onlySelectedTopics bool) Request {
	seen := make(map[string]struct{}, len(selected))
	list := make([]string, 0, len(selected))
	for _, t := range selected {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		list = append(list, t)
	}
	return Request{
		Tags:               list,
		K:                  k,
		AvoidSameSubject:   avoidSameSubject,
		OnlySelectedTopics: onlySelectedTopics,
	}
}

// Validate rejects requests that should not reach the generator.
func (r Request) Validate() error {
	if len(r.Tags) == 0 {
		return ErrNoTags
	}
	if r.K <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidK, r.K)
	}
	return nil
}

// ParseK reads the requested exercise count from user input.
func ParseK(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultK, nil
	}
	k, err := strconv.Atoi(s)
	if err != nil || k <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidK, s)
	}
	return k, nil
}

// GeneratedExercise is a catalog exercise annotated by the generator.
type GeneratedExercise struct {
	catalog.Exercise
	TopicsUsed  []string `json:"topics_used,omitempty"`
	TopicsOther []string `json:"topics_other,omitempty"`
}

// DisplayTopics returns topics_used when present, the full topics otherwise.
func (g *GeneratedExercise) DisplayTopics() []string {
	if len(g.TopicsUsed) > 0 {
		return g.TopicsUsed
	}
	return g.Topics
}

// Response is a successful generator answer.
type Response struct {
	RequestedTags []string            `json:"requested_tags"`
	CoveredTags   []string            `json:"covered_tags"`
	MissingTags   []string            `json:"missing_tags"`
	Count         int                 `json:"count"`
	Exercises     []GeneratedExercise `json:"exercises"`
}

// Summary renders the coverage line, e.g. "Couverts: 2/3 · Manquants: sql".
func (r *Response) Summary() string {
	s := fmt.Sprintf("Couverts: %d/%d", len(r.CoveredTags), len(r.RequestedTags))
	if len(r.MissingTags) > 0 {
		s += " · Manquants: " + strings.Join(r.MissingTags, ", ")
	}
	return s
}

// ErrorBody is the generator's non-success payload.
type ErrorBody struct {
	Error string `json:"error"`
}
