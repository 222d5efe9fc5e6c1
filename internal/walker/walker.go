// Package walker enumerates the entries of a directory tree whose names end
// with a given extension, compared case-insensitively rune by rune. Paths are produced
// lazily, one at a time, so very large trees never sit in memory.
package walker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrDirectoryUnavailable reports a root that is missing, unreadable, or not a directory.
var ErrDirectoryUnavailable = errors.New("directory unavailable")

// Walker produces candidate paths below a root directory.
type Walker struct {
	root        string
	suffix      string
	suffixRunes int
	exclude     []string
	onSkip      func(path string, err error)
}

// Option configures a Walker.
type Option func(*Walker)

// WithExcludeDirs skips directories whose base name matches one of names,
// ignoring case. Skipped directories are neither yielded nor descended into.
func WithExcludeDirs(names ...string) Option {
	return func(w *Walker) {
		for _, name := range names {
			name = strings.Trim(strings.TrimSpace(name), `/\`)
			if name == "" {
				continue
			}
			w.exclude = append(w.exclude, name)
		}
	}
}

// WithSkipHook registers a callback for entries that could not be read during traversal.
func WithSkipHook(fn func(path string, err error)) Option {
	return func(w *Walker) {
		w.onSkip = fn
	}
}

// New checks that root is a readable directory and returns a Walker
// matching names that end in "."+ext. A leading dot on ext is ignored.
func New(root, ext string, opts ...Option) (*Walker, error) {
	if err := checkRoot(root); err != nil {
		return nil, err
	}

	w := &Walker{root: root}
	w.suffix = "." + strings.TrimPrefix(ext, ".")
	w.suffixRunes = utf8.RuneCountInString(w.suffix)

	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func checkRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrDirectoryUnavailable, root)
	}

	dir, err := os.Open(root)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}
	defer dir.Close()

	if _, err := dir.ReadDir(1); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}
	return nil
}

// Root returns the directory the walker starts from.
func (w *Walker) Root() string {
	return w.root
}

// matches reports whether a base name ends in the extension. Runes are
// compared with simple case folding, like find -iname: "ß" never equals "ss".
func (w *Walker) matches(name string) bool {
	i := len(name)
	for n := 0; n < w.suffixRunes; n++ {
		if i == 0 {
			return false
		}
		_, size := utf8.DecodeLastRuneInString(name[:i])
		i -= size
	}
	return strings.EqualFold(name[i:], w.suffix)
}

// Candidates returns the matching paths in traversal order: depth-first,
// lexical within each directory. Symlinks are reported but not followed.
// Unreadable entries are skipped and the walk continues. Stopping the
// range loop stops the walk, and so does cancelling ctx; callers check
// ctx.Err() afterwards to tell a cancelled walk from a finished one.
func (w *Walker) Candidates(ctx context.Context) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				w.skip(path, err)
				return nil
			}

			if d.IsDir() && path != w.root && w.excluded(d.Name()) {
				return filepath.SkipDir
			}

			if w.matches(d.Name()) && !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Walker) excluded(name string) bool {
	for _, ex := range w.exclude {
		if strings.EqualFold(name, ex) {
			return true
		}
	}
	return false
}

func (w *Walker) skip(path string, err error) {
	if w.onSkip != nil {
		w.onSkip(path, err)
	}
}
