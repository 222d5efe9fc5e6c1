package search

import (
	"errors"
	"log"
)

// ErrInvalidRequest is returned when a required request field is empty.
var ErrInvalidRequest = errors.New("invalid request")

// Request represents a single search invocation
type Request struct {
	// Root is the directory the search starts from.
	Root string
	// Query is the literal substring looked for in names and contents.
	Query string
	// Extension filters candidates by name suffix, ignoring case ("md", not ".md").
	Extension string
}

// Options contains configuration for search operations
type Options struct {
	Encoding    string
	BufferSize  int
	ExcludeDirs []string
	// Color highlights the base name of each printed path.
	Color bool
	// Logger receives warnings about skipped entries; nil discards them.
	Logger *log.Logger
}

// Summary counts what a Run saw.
type Summary struct {
	Candidates int
	Matches    int
	NameHits   int
	Skipped    int
}
