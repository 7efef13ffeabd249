// Package session holds the browsing state of one user: the current filters,
// the tag selection and the tag list display toggles.
package session

import (
	"strings"

	"github.com/arawak/annales/internal/filter"
	"github.com/arawak/annales/internal/tags"
)

const (
	// BrowseTagLimit is the number of tags shown before "show more".
	BrowseTagLimit = 40
	// PickerTagLimit is the number of tags shown by the combo tag picker.
	PickerTagLimit = 120
)

// Controller is not safe for concurrent use; each session owns one.
type Controller struct {
	TextQuery string
	Year      string
	Session   string
	Points    string
	Strict    bool

	selected    []string
	selectedSet map[string]struct{}
	showAllTags bool
	tagQuery    string
}

// New returns an empty controller. The zero value is ready to use as well.
func New() *Controller {
	return &Controller{}
}

// Select adds tags to the selection in pick order, ignoring blanks and
// duplicates.
func (c *Controller) Select(tagList ...string) {
	for _, t := range tagList {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := c.selectedSet[t]; ok {
			continue
		}
		if c.selectedSet == nil {
			c.selectedSet = make(map[string]struct{})
		}
		c.selectedSet[t] = struct{}{}
		c.selected = append(c.selected, t)
	}
}

func (c *Controller) IsSelected(tag string) bool {
	_, ok := c.selectedSet[tag]
	return ok
}

// Selected returns the selection in the order tags were picked.
func (c *Controller) Selected() []string {
	out := make([]string, len(c.selected))
	copy(out, c.selected)
	return out
}

// Spec snapshots the current filters.
func (c *Controller) Spec() *filter.Spec {
	sel := make(map[string]struct{}, len(c.selectedSet))
	for t := range c.selectedSet {
		sel[t] = struct{}{}
	}
	return &filter.Spec{
		TextQuery:      c.TextQuery,
		Year:           c.Year,
		Session:        c.Session,
		Points:         c.Points,
		SelectedTags:   sel,
		StrictTagsOnly: c.Strict,
	}
}

// SetTagQuery changes the tag search box and collapses the tag list.
func (c *Controller) SetTagQuery(q string) {
	c.tagQuery = q
	c.showAllTags = false
}

func (c *Controller) SetShowAllTags(v bool) { c.showAllTags = v }

// TagPage is the visible slice of the vocabulary.
type TagPage struct {
	Items  []tags.Entry
	Hidden int
}

// TagPage filters vocab by the tag search box and applies limit unless the
// list is expanded.
func (c *Controller) TagPage(vocab []tags.Entry, limit int) TagPage {
	base := tags.Search(vocab, c.tagQuery)
	if c.showAllTags || limit <= 0 || len(base) <= limit {
		return TagPage{Items: base}
	}
	return TagPage{Items: base[:limit], Hidden: len(base) - limit}
}
