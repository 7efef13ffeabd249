package docs

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeDoc(t *testing.T, root, rel, body string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestRelative(t *testing.T) {
	cases := map[string]string{
		"downloads/NSI/2024/sujet.pdf": "NSI/2024/sujet.pdf",
		"NSI/2024/sujet.pdf":           "NSI/2024/sujet.pdf",
		"downloads\\NSI\\a.pdf":        "NSI/a.pdf",
		"./downloads/NSI/x.pdf":        "NSI/x.pdf",
		"downloads/../downloads/b.pdf": "b.pdf",
		"downloads/":                   "",
		"../../etc/passwd":             "etc/passwd",
		"":                             "",
		"  ":                           "",
	}
	for in, expect := range cases {
		if got := Relative(in); got != expect {
			t.Fatalf("relative %q => %q, expected %q", in, got, expect)
		}
	}
}

func TestResolvePrefersLocal(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "NSI/2024/sujet.pdf", "%PDF")
	r := NewResolver(root)

	loc, err := r.Resolve("downloads/NSI/2024/sujet.pdf", "https://example.org/sujet.pdf")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !loc.Local || loc.URL != "/pdf/NSI/2024/sujet.pdf" {
		t.Fatalf("unexpected location: %+v", loc)
	}
}

func TestResolveFallsBack(t *testing.T) {
	r := NewResolver(t.TempDir())

	loc, err := r.Resolve("downloads/NSI/missing.pdf", "https://example.org/sujet.pdf")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if loc.Local || loc.URL != "https://example.org/sujet.pdf" {
		t.Fatalf("unexpected location: %+v", loc)
	}

	if _, err := r.Resolve("", ""); !errors.Is(err, ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
	if _, err := r.Resolve("downloads/NSI/missing.pdf", " "); !errors.Is(err, ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
}

func TestResolveIgnoresDirectories(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "NSI/2024/sujet.pdf", "%PDF")
	r := NewResolver(root)
	if _, err := r.Resolve("NSI/2024", ""); !errors.Is(err, ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved for a directory, got %v", err)
	}
}

func TestOpen(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "a/b.pdf", "content")
	r := NewResolver(root)

	f, info, err := r.Open("a/b.pdf")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	data, _ := io.ReadAll(f)
	if string(data) != "content" || info.Size() != 7 {
		t.Fatalf("unexpected file content %q size %d", data, info.Size())
	}

	if _, _, err := r.Open("a/missing.pdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPathForStaysUnderRoot(t *testing.T) {
	r := NewResolver("/srv/annales")
	p, err := r.PathFor("../../etc/passwd")
	if err != nil {
		t.Fatalf("path for: %v", err)
	}
	if p != filepath.FromSlash("/srv/annales/etc/passwd") {
		t.Fatalf("unexpected path: %s", p)
	}
}

func TestIsReadable(t *testing.T) {
	if err := NewResolver(t.TempDir()).IsReadable(); err != nil {
		t.Fatalf("expected readable: %v", err)
	}
	if err := NewResolver(filepath.Join(t.TempDir(), "nope")).IsReadable(); err == nil {
		t.Fatalf("expected error for missing root")
	}
}
