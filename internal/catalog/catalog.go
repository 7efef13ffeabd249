// Package catalog holds the exercise catalog: the data model, the sources it
// is loaded from and the read-only Catalog value handed to the filters.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/arawak/annales/internal/textnorm"
)

var ErrLoad = errors.New("catalog load failed")

// Source yields the full exercise list. It is called once at startup.
type Source interface {
	Load(ctx context.Context) ([]Exercise, error)
}

// Catalog is the immutable exercise list for the lifetime of a process.
type Catalog struct {
	exercises []Exercise
}

func New(exercises []Exercise) *Catalog {
	cp := make([]Exercise, len(exercises))
	copy(cp, exercises)
	return &Catalog{exercises: cp}
}

// Load builds a Catalog from src. Any failure is wrapped in ErrLoad.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	exercises, err := src.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrLoad) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return New(exercises), nil
}

// Exercises returns the exercises in load order. Callers must not modify it.
func (c *Catalog) Exercises() []Exercise {
	if c == nil {
		return nil
	}
	return c.exercises
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.exercises)
}

// At returns the exercise at load position i.
func (c *Catalog) At(i int) (Exercise, bool) {
	if c == nil || i < 0 || i >= len(c.exercises) {
		return Exercise{}, false
	}
	return c.exercises[i], true
}

// Facets lists the distinct values offered by the year, session and points
// selectors.
type Facets struct {
	Years    []string `json:"years"`
	Sessions []string `json:"sessions"`
	Points   []string `json:"points"`
}

func (c *Catalog) Facets() Facets {
	var years, sessions, points []string
	for _, ex := range c.Exercises() {
		years = append(years, ex.Year.String())
		sessions = append(sessions, ex.Session)
		points = append(points, ex.Points.String())
	}
	return Facets{
		Years:    uniqSorted(years),
		Sessions: uniqSorted(sessions),
		Points:   uniqSorted(points),
	}
}

func uniqSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	textnorm.SortStrings(out)
	return out
}

// FileSource reads a JSON array of exercises from disk.
type FileSource struct {
	Path string
}

func (f FileSource) Load(_ context.Context) ([]Exercise, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrLoad, f.Path, err)
	}
	defer file.Close()
	exercises, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return exercises, nil
}

// Decode parses a JSON array of exercises.
func Decode(r io.Reader) ([]Exercise, error) {
	var exercises []Exercise
	if err := json.NewDecoder(r).Decode(&exercises); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrLoad, err)
	}
	return exercises, nil
}
