//go:build !windows

package search

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_SkipsUnreadableFiles(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	root := writeTree(t, map[string]string{
		"a-locked.md":      "query",
		"b-query-named.md": "secret",
		"c.md":             "query again",
	})
	require.NoError(t, os.Chmod(filepath.Join(root, "a-locked.md"), 0o000))
	require.NoError(t, os.Chmod(filepath.Join(root, "b-query-named.md"), 0o000))

	var logs bytes.Buffer
	got, sum := run(t, Request{Root: root, Query: "query", Extension: "md"}, Options{Logger: log.New(&logs, "", 0)})

	assert.Equal(t, []string{
		filepath.Join(root, "b-query-named.md"),
		filepath.Join(root, "c.md"),
	}, got)
	assert.Equal(t, 1, sum.Skipped)
	assert.Contains(t, logs.String(), "a-locked.md")
}
