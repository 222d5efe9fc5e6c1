package walker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates files (relative paths, forward slashes) under a temp root.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func collect(w *Walker) []string {
	return slices.Collect(w.Candidates(context.Background()))
}

func rel(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		r, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(r))
	}
	return out
}

func TestNew_RootUnavailable(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "plain.md")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	tests := []struct {
		name string
		root string
	}{
		{name: "missing", root: filepath.Join(root, "does-not-exist")},
		{name: "regular file", root: file},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := New(tt.root, "md")
			require.ErrorIs(t, err, ErrDirectoryUnavailable)
			assert.Nil(t, w)
		})
	}
}

func TestMatchesExtension(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		file string
		want bool
	}{
		{name: "lower", ext: "md", file: "x.md", want: true},
		{name: "upper", ext: "md", file: "x.MD", want: true},
		{name: "mixed", ext: "md", file: "x.Md", want: true},
		{name: "upper extension argument", ext: "MD", file: "x.md", want: true},
		{name: "leading dot tolerated", ext: ".md", file: "x.md", want: true},
		{name: "other extension", ext: "md", file: "x.txt", want: false},
		{name: "suffix without dot", ext: "md", file: "readmd", want: false},
		{name: "longer extension", ext: "md", file: "x.mdx", want: false},
		{name: "double extension", ext: "md", file: "x.txt.md", want: true},
		{name: "bare dotfile", ext: "md", file: ".md", want: true},
		{name: "unicode fold", ext: "äö", file: "x.ÄÖ", want: true},
		{name: "kelvin sign folds to k", ext: "k", file: "x.\u212a", want: true},
		{name: "sharp s is not ss", ext: "ss", file: "x.ß", want: false},
		{name: "ss is not sharp s", ext: "ß", file: "x.ss", want: false},
		{name: "name shorter than extension", ext: "markdown", file: "md", want: false},
	}

	root := t.TempDir()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := New(root, tt.ext)
			require.NoError(t, err)
			assert.Equal(t, tt.want, w.matches(tt.file))
		})
	}
}

func TestCandidates_FiltersRecursively(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.md":            "",
		"b.MD":            "",
		"c.txt":           "",
		"sub/d.Md":        "",
		"sub/deep/e.md":   "",
		"sub/deep/f.json": "",
	})

	w, err := New(root, "md")
	require.NoError(t, err)

	got := rel(t, root, collect(w))
	assert.ElementsMatch(t, []string{"a.md", "b.MD", "sub/d.Md", "sub/deep/e.md"}, got)
}

func TestCandidates_IncludesMatchingDirectories(t *testing.T) {
	root := writeTree(t, map[string]string{
		"notes.md/inner.md": "",
	})

	w, err := New(root, "md")
	require.NoError(t, err)

	assert.Equal(t, []string{"notes.md", "notes.md/inner.md"}, rel(t, root, collect(w)))
}

func TestCandidates_DeterministicOrder(t *testing.T) {
	root := writeTree(t, map[string]string{
		"z.md":     "",
		"a.md":     "",
		"m/b.md":   "",
		"m/a.md":   "",
		"c/x/y.md": "",
	})

	w, err := New(root, "md")
	require.NoError(t, err)

	first := collect(w)
	second := collect(w)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"a.md", "c/x/y.md", "m/a.md", "m/b.md", "z.md"}, rel(t, root, first))
}

func TestCandidates_ExcludeDirs(t *testing.T) {
	root := writeTree(t, map[string]string{
		"keep.md":              "",
		".git/HEAD.md":         "",
		"Node_Modules/pkg.md":  "",
		"docs/node_modules.md": "",
	})

	w, err := New(root, "md", WithExcludeDirs(".git", "node_modules", " "))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"keep.md", "docs/node_modules.md"}, rel(t, root, collect(w)))
}

func TestCandidates_StopEarly(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.md": "",
		"b.md": "",
		"c.md": "",
	})

	w, err := New(root, "md")
	require.NoError(t, err)

	var seen []string
	for path := range w.Candidates(context.Background()) {
		seen = append(seen, path)
		if len(seen) == 2 {
			break
		}
	}
	assert.Len(t, seen, 2)
}

func TestCandidates_EmptyTree(t *testing.T) {
	w, err := New(t.TempDir(), "md")
	require.NoError(t, err)
	assert.Empty(t, collect(w))
}

func TestCandidates_Cancelled(t *testing.T) {
	files := make(map[string]string)
	for i := range 200 {
		files[fmt.Sprintf("dir%d/f%d.md", i%10, i)] = ""
	}
	root := writeTree(t, files)

	w, err := New(root, "md")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Empty(t, slices.Collect(w.Candidates(ctx)))
}

func TestCandidates_CancelledMidWalk(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.md": "",
		"b.md": "",
		"c.md": "",
	})

	w, err := New(root, "md")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var seen []string
	for path := range w.Candidates(ctx) {
		seen = append(seen, path)
		cancel()
	}
	assert.Len(t, seen, 1)
}
