package tags

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arawak/annales/internal/catalog"
)

func TestIsUseful(t *testing.T) {
	c := New(Options{})
	cases := map[string]bool{
		"graphes":                       true,
		"arbres binaires":               true,
		"bases de données":              true,
		"abc def ghij klmnopqrst":       false, // 4 words
		"programmation orientée objet":  true,  // exactly 28 characters
		"programmation orientée objets": false,
		"poo (objets)":                  false,
		"piles)":                        false,
		"Cet exercice porte":            false,
		"Sur les graphes":               false,
		"Logique booléenne":             false,
		"":                              false,
		"   ":                           false,
	}
	for in, expect := range cases {
		if got := c.IsUseful(in); got != expect {
			t.Fatalf("IsUseful(%q) = %v, expected %v", in, got, expect)
		}
	}
}

func TestIsUsefulThreeWordTag(t *testing.T) {
	c := New(Options{})
	tag := "parcours en largeurs"
	require.Len(t, []rune(tag), 20)
	require.Len(t, strings.Fields(tag), 3)
	assert.True(t, c.IsUseful(tag))
}

func TestIsUsefulLengthBoundary(t *testing.T) {
	c := New(Options{})
	assert.True(t, c.IsUseful(strings.Repeat("a", 28)))
	assert.False(t, c.IsUseful(strings.Repeat("a", 29)))
	// accented characters count once
	assert.True(t, c.IsUseful(strings.Repeat("é", 28)))
}

func TestCustomDenylist(t *testing.T) {
	c := New(Options{Denylist: []string{"Mainly"}})
	assert.False(t, c.IsUseful("mainly graphs"))
	assert.True(t, c.IsUseful("cet exercice"))
}

func exercisesWith(topics ...[]string) []catalog.Exercise {
	out := make([]catalog.Exercise, len(topics))
	for i, t := range topics {
		out[i].Topics = t
	}
	return out
}

func TestRankFiltered(t *testing.T) {
	exs := exercisesWith(
		[]string{"graphes", " sql ", "Cet exercice porte sur"},
		[]string{"sql", "récursivité", "arbres"},
		[]string{"sql", "graphes", "piles (LIFO)"},
		[]string{"élagage", "Graphes"},
		nil,
	)
	got := New(Options{Mode: Filtered}).Rank(exs)
	expect := []string{"sql", "graphes", "arbres", "élagage", "Graphes", "récursivité"}
	if diff := cmp.Diff(expect, got); diff != "" {
		t.Fatalf("rank mismatch (-want +got):\n%s", diff)
	}
}

func TestRankUnfilteredKeepsNoise(t *testing.T) {
	exs := exercisesWith(
		[]string{"piles (LIFO)", "sql", "  "},
		[]string{"piles (LIFO)"},
	)
	got := New(Options{Mode: Unfiltered}).RankEntries(exs)
	expect := []Entry{{Tag: "piles (LIFO)", Frequency: 2}, {Tag: "sql", Frequency: 1}}
	if diff := cmp.Diff(expect, got); diff != "" {
		t.Fatalf("rank mismatch (-want +got):\n%s", diff)
	}
}

func TestRankIsDeterministic(t *testing.T) {
	exs := exercisesWith(
		[]string{"b", "a", "é", "e", "c"},
		[]string{"c", "d"},
		[]string{"a"},
	)
	expect := []string{"a", "c", "b", "d", "e", "é"}
	c := New(Options{})
	for i := 0; i < 20; i++ {
		require.Equal(t, expect, c.Rank(exs))
	}
	// every tag of a ranked vocabulary has frequency 1, so collation alone orders it
	require.Equal(t, []string{"a", "b", "c", "d", "e", "é"}, c.Rank(exercisesWith(expect)))
}

func TestSearch(t *testing.T) {
	vocab := []Entry{{Tag: "récursivité", Frequency: 3}, {Tag: "graphes", Frequency: 2}, {Tag: "Arbres récursifs", Frequency: 1}}
	got := Search(vocab, "RECURS")
	require.Len(t, got, 2)
	assert.Equal(t, "récursivité", got[0].Tag)
	assert.Equal(t, "Arbres récursifs", got[1].Tag)
	assert.Len(t, Search(vocab, "  "), 3)
	assert.Empty(t, Search(vocab, "sql"))
}

func TestParseMode(t *testing.T) {
	m, ok := ParseMode("unfiltered")
	assert.True(t, ok)
	assert.Equal(t, Unfiltered, m)
	m, ok = ParseMode("")
	assert.True(t, ok)
	assert.Equal(t, Filtered, m)
	_, ok = ParseMode("bogus")
	assert.False(t, ok)
}

func TestLoadDenylist(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deny.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- this exercise\n- about the\n"), 0o600))

	list, err := LoadDenylist(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"this exercise", "about the"}, list)

	require.NoError(t, os.WriteFile(path, []byte("- ok\n- \"  \"\n"), 0o600))
	_, err = LoadDenylist(path)
	assert.Error(t, err)

	_, err = LoadDenylist(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
