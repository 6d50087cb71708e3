// Package fileset expands the schema and query file arguments of the
// CLI. Arguments are glob patterns evaluated against a filesystem; a
// pattern that matches nothing is an error so typos in file names do
// not silently shrink the checked set.
package fileset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ErrNoPatterns indicates that Resolve was invoked without any glob patterns.
var ErrNoPatterns = errors.New("fileset: no patterns provided")

// PatternError wraps syntax issues reported while evaluating a glob pattern.
type PatternError struct {
	Pattern string
	Err     error
}

func (e PatternError) Error() string {
	return fmt.Sprintf("invalid glob pattern %q: %v", e.Pattern, e.Err)
}

func (e PatternError) Unwrap() error { return e.Err }

// NoMatchError lists the patterns that yielded no files.
type NoMatchError struct {
	Patterns []string
}

func (e NoMatchError) Error() string {
	return "patterns matched no files: " + strings.Join(e.Patterns, ", ")
}

// Resolver evaluates glob patterns against an fs.FS and rewrites each
// match through a join function, so callers get paths they can open.
type Resolver struct {
	fsys fs.FS
	join func(name string) string
}

// NewResolver wraps a filesystem without path rewriting. Tests pass an
// fstest.MapFS here.
func NewResolver(fsys fs.FS) Resolver {
	return Resolver{fsys: fsys, join: func(name string) string { return name }}
}

// NewOSResolver roots a resolver at base and rewrites matches to
// absolute OS paths.
func NewOSResolver(base string) (Resolver, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return Resolver{}, fmt.Errorf("resolve base %q: %w", base, err)
	}
	info, err := os.Stat(absBase)
	if err != nil {
		return Resolver{}, fmt.Errorf("stat base %q: %w", absBase, err)
	}
	if !info.IsDir() {
		return Resolver{}, fmt.Errorf("base %q is not a directory", absBase)
	}
	return Resolver{
		fsys: os.DirFS(absBase),
		join: func(name string) string {
			if filepath.IsAbs(name) {
				return filepath.Clean(name)
			}
			return filepath.Join(absBase, filepath.FromSlash(name))
		},
	}, nil
}

// Resolve expands every pattern and returns the union of matches,
// sorted and de-duplicated. All non-matching patterns are collected
// into a single NoMatchError.
func (r Resolver) Resolve(patterns []string) ([]string, error) {
	if r.fsys == nil {
		return nil, errors.New("fileset: resolver has no filesystem")
	}
	if len(patterns) == 0 {
		return nil, ErrNoPatterns
	}

	var paths, missing []string
	for _, pattern := range patterns {
		matches, err := fs.Glob(r.fsys, filepath.ToSlash(pattern))
		if err != nil {
			return nil, PatternError{Pattern: pattern, Err: err}
		}
		if len(matches) == 0 {
			missing = append(missing, pattern)
			continue
		}
		for _, match := range matches {
			paths = append(paths, r.join(match))
		}
	}
	if len(missing) > 0 {
		return nil, NoMatchError{Patterns: missing}
	}

	slices.Sort(paths)
	return slices.Compact(paths), nil
}

// ResolveDir expands a directory argument to every .sql file under it,
// recursively. The directory must exist; an empty directory yields a
// NoMatchError.
func (r Resolver) ResolveDir(dir string) ([]string, error) {
	if r.fsys == nil {
		return nil, errors.New("fileset: resolver has no filesystem")
	}
	root := filepath.ToSlash(filepath.Clean(dir))
	var paths []string
	err := fs.WalkDir(r.fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".sql") {
			paths = append(paths, r.join(path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, NoMatchError{Patterns: []string{dir}}
	}
	slices.Sort(paths)
	return paths, nil
}
