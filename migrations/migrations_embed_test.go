package migrations

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedMigrationsPresent(t *testing.T) {
	entries, err := fs.ReadDir(FS, ".")
	if err != nil {
		t.Fatalf("read embed: %v", err)
	}
	if len(entries) == 0 {
		t.Fatalf("no migrations embedded")
	}
}

func TestEveryUpHasADown(t *testing.T) {
	entries, err := fs.ReadDir(FS, ".")
	if err != nil {
		t.Fatalf("read embed: %v", err)
	}
	names := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		names[e.Name()] = struct{}{}
	}
	for name := range names {
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		down := strings.TrimSuffix(name, ".up.sql") + ".down.sql"
		if _, ok := names[down]; !ok {
			t.Fatalf("migration %s has no %s", name, down)
		}
	}
}

func TestTagNamesAreCaseSensitive(t *testing.T) {
	data, err := fs.ReadFile(FS, "000001_catalog.up.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if !strings.Contains(string(data), "utf8mb4_bin") {
		t.Fatalf("tag.name must use a binary collation so tags are matched exactly")
	}
}

func TestTopicOccurrencesKeyedByPosition(t *testing.T) {
	data, err := fs.ReadFile(FS, "000001_catalog.up.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if !strings.Contains(string(data), "PRIMARY KEY (exercise_id, position)") {
		t.Fatalf("exercise_tag must keep one row per topic occurrence")
	}
}
