package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arawak/annales/internal/catalog"
	"github.com/arawak/annales/internal/filter"
	"github.com/arawak/annales/internal/tags"
)

func TestSelectKeepsPickOrder(t *testing.T) {
	c := New()
	c.Select("sql", " graphes ", "piles", "graphes", "  ")
	assert.Equal(t, []string{"sql", "graphes", "piles"}, c.Selected())
	assert.True(t, c.IsSelected("graphes"))
	assert.False(t, c.IsSelected("arbres"))
}

func TestZeroValueController(t *testing.T) {
	var c Controller
	assert.False(t, c.IsSelected("graphes"))
	assert.Empty(t, c.Selected())
	assert.Equal(t, &filter.Spec{SelectedTags: map[string]struct{}{}}, c.Spec())

	c.Select("graphes")
	assert.True(t, c.IsSelected("graphes"))
	assert.Equal(t, filter.TagSet("graphes"), c.Spec().SelectedTags)
	assert.Len(t, c.TagPage(vocab(3), 2).Items, 2)
}

func TestSpecIsASnapshot(t *testing.T) {
	c := New()
	c.Year = "2022"
	c.Strict = true
	c.Select("sql", "sql", "graphes")

	spec := c.Spec()
	c.Select("arbres")

	assert.Equal(t, "2022", spec.Year)
	assert.True(t, spec.StrictTagsOnly)
	assert.Equal(t, filter.TagSet("sql", "graphes"), spec.SelectedTags)
}

func TestSessionsAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.Select("sql")
	ex := catalog.Exercise{Topics: []string{"graphes"}}
	assert.False(t, filter.Matches(&ex, a.Spec()))
	assert.True(t, filter.Matches(&ex, b.Spec()))
}

func vocab(n int) []tags.Entry {
	out := make([]tags.Entry, n)
	for i := range out {
		out[i] = tags.Entry{Tag: fmt.Sprintf("tag%03d", i), Frequency: n - i}
	}
	return out
}

func TestTagPageLimitAndShowAll(t *testing.T) {
	c := New()
	v := vocab(55)

	page := c.TagPage(v, BrowseTagLimit)
	require.Len(t, page.Items, 40)
	assert.Equal(t, 15, page.Hidden)

	c.SetShowAllTags(true)
	page = c.TagPage(v, BrowseTagLimit)
	assert.Len(t, page.Items, 55)
	assert.Zero(t, page.Hidden)

	// typing in the tag search box collapses the list again
	c.SetTagQuery("TAG0")
	page = c.TagPage(v, BrowseTagLimit)
	assert.Len(t, page.Items, 40)
	assert.Equal(t, 15, page.Hidden)

	c.SetTagQuery("tag05")
	page = c.TagPage(v, BrowseTagLimit)
	assert.Len(t, page.Items, 5)
	assert.Zero(t, page.Hidden)
}
