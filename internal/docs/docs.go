// Package docs resolves subject and correction documents against the local
// mirror, falling back to the publisher's URL.
package docs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// PublicPrefix is the URL prefix under which the mirror is served.
const PublicPrefix = "/pdf/"

var (
	ErrUnresolved = errors.New("document not found locally and no fallback link")
	ErrNotFound   = errors.New("document not found")
	ErrOutsideDir = errors.New("path escapes mirror root")
)

// Location is where a document can be opened.
type Location struct {
	URL   string `json:"url"`
	Local bool   `json:"local"`
}

// Resolver handles filesystem lookups in the mirror.
type Resolver struct {
	root string
}

func NewResolver(root string) *Resolver {
	return &Resolver{root: root}
}

// Resolve prefers the local mirror copy of localFile and falls back to
// fallbackURL.
func (r *Resolver) Resolve(localFile, fallbackURL string) (Location, error) {
	if rel := Relative(localFile); rel != "" {
		if _, err := r.stat(rel); err == nil {
			return Location{URL: PublicPrefix + rel, Local: true}, nil
		}
	}
	if u := strings.TrimSpace(fallbackURL); u != "" {
		return Location{URL: u}, nil
	}
	return Location{}, ErrUnresolved
}

// Relative turns a catalog path such as "downloads/NSI/2024/x.pdf" into the
// slash separated path relative to the mirror root.
func Relative(localFile string) string {
	p := strings.TrimSpace(strings.ReplaceAll(localFile, "\\", "/"))
	if p == "" {
		return ""
	}
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if p == "downloads" {
		return ""
	}
	return strings.TrimPrefix(p, "downloads/")
}

// PathFor maps a mirror-relative path to the filesystem.
func (r *Resolver) PathFor(rel string) (string, error) {
	clean := path.Clean("/" + rel)
	full := filepath.Join(r.root, filepath.FromSlash(clean))
	root := filepath.Clean(r.root)
	if full != root && !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", ErrOutsideDir
	}
	return full, nil
}

func (r *Resolver) stat(rel string) (os.FileInfo, error) {
	full, err := r.PathFor(rel)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(full)
	if err != nil {
		return nil, ErrNotFound
	}
	if !info.Mode().IsRegular() {
		return nil, ErrNotFound
	}
	return info, nil
}

// Open opens a mirrored document for serving.
func (r *Resolver) Open(rel string) (*os.File, os.FileInfo, error) {
	info, err := r.stat(rel)
	if err != nil {
		return nil, nil, err
	}
	full, _ := r.PathFor(rel)
	f, err := os.Open(full)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", rel, err)
	}
	return f, info, nil
}

// IsReadable checks that the mirror root exists and can be listed.
func (r *Resolver) IsReadable() error {
	info, err := os.Stat(r.root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", r.root)
	}
	f, err := os.Open(r.root)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Readdirnames(1)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
