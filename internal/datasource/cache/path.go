// Package cache implements the read-through file cache that fronts all
// metadata fetches. Every fetched URL maps deterministically onto a path
// below a base directory: the URL's path segments become nested
// subdirectories and the final segment becomes the file name. Cached entries
// never expire; the Census Bureau's metadata documents are immutable once
// published, so a file on disk is always authoritative.
package cache

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// PathError reports a URL whose shape cannot be mapped onto the cache layout.
// It is structural, not transient: retrying the same URL cannot succeed.
type PathError struct {
	URL    string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("cache path for %q: %s", e.URL, e.Reason)
}

// Path locates one cached document below the cache base directory.
type Path struct {
	// Dir is the directory holding the cache file, base directory included.
	Dir string

	// File is the cache file name, always containing a "." so that plain
	// directories and cache files cannot collide.
	File string
}

// FullPath returns the complete path to the cache file.
func (p Path) FullPath() string {
	return filepath.Join(p.Dir, p.File)
}

// FromURL derives the cache location for u under baseDir. The URL must have
// at least one path segment and its final segment must look like a file name
// (contain a "."); anything else is a PathError. The derivation is pure: no
// filesystem access happens here.
func FromURL(u *url.URL, baseDir string) (Path, error) {
	trimmed := strings.Trim(u.EscapedPath(), "/")
	if trimmed == "" {
		return Path{}, &PathError{URL: u.String(), Reason: "URL has no path segments"}
	}

	segments := strings.Split(trimmed, "/")
	file := segments[len(segments)-1]
	if !strings.Contains(file, ".") {
		return Path{}, &PathError{
			URL:    u.String(),
			Reason: fmt.Sprintf("last path segment %q has no file extension (e.g. .json)", file),
		}
	}

	parts := append([]string{baseDir}, segments[:len(segments)-1]...)
	return Path{Dir: filepath.Join(parts...), File: file}, nil
}
