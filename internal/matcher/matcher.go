// Package matcher decides whether a candidate path matches a query, first by
// its base name and then by its decoded text content.
package matcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/f4ah6o/ffg-go/internal/decode"
)

// DefaultBufferSize is the chunk size used when reading file contents.
const DefaultBufferSize = 8192

// Result describes why a path matched, if it did.
type Result int

const (
	// NoMatch means neither the name nor the contents contain the query.
	NoMatch Result = iota
	// NameMatch means the base name contains the query; contents were not read.
	NameMatch
	// ContentMatch means the decoded contents contain the query.
	ContentMatch
)

func (r Result) String() string {
	switch r {
	case NameMatch:
		return "name"
	case ContentMatch:
		return "content"
	default:
		return "none"
	}
}

// Matched reports whether the path should be emitted.
func (r Result) Matched() bool {
	return r != NoMatch
}

// Matcher tests paths against a literal, case-sensitive query.
type Matcher struct {
	query   string
	needle  []byte
	bufSize int
	decoder *decode.Decoder
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithBufferSize sets the read chunk size. Non-positive sizes are ignored.
func WithBufferSize(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.bufSize = n
		}
	}
}

// WithDecoder sets the charset decoder for file contents.
func WithDecoder(d *decode.Decoder) Option {
	return func(m *Matcher) {
		if d != nil {
			m.decoder = d
		}
	}
}

// New creates a Matcher for query. Contents are decoded as UTF-8 unless
// WithDecoder says otherwise.
func New(query string, opts ...Option) (*Matcher, error) {
	if query == "" {
		return nil, errors.New("query must not be empty")
	}

	m := &Matcher{
		query:   query,
		needle:  []byte(query),
		bufSize: DefaultBufferSize,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.decoder == nil {
		d, err := decode.Lookup(decode.DefaultCharset)
		if err != nil {
			return nil, err
		}
		m.decoder = d
	}
	return m, nil
}

// Match applies the name check, then the regular-file check, then the
// content check. A non-nil error always comes with NoMatch and means the
// file could not be read; callers treat it as a non-match unless it is
// ctx.Err(), which is returned as soon as ctx is cancelled mid-read.
func (m *Matcher) Match(ctx context.Context, path string) (Result, error) {
	if strings.Contains(filepath.Base(path), m.query) {
		return NameMatch, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return NoMatch, err
	}
	if !info.Mode().IsRegular() {
		return NoMatch, nil
	}

	found, err := m.contains(ctx, path)
	if err != nil {
		return NoMatch, err
	}
	if found {
		return ContentMatch, nil
	}
	return NoMatch, nil
}

// contains streams the decoded file through a window holding the last
// len(query)-1 bytes of earlier text plus the current chunk, so a query that
// straddles chunk boundaries is still found.
func (m *Matcher) contains(ctx context.Context, path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	r := m.decoder.NewReader(f)
	buf := make([]byte, m.bufSize)
	keep := len(m.needle) - 1
	window := make([]byte, 0, keep+m.bufSize)

	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		n, err := r.Read(buf)
		if n > 0 {
			window = append(window, buf[:n]...)
			if bytes.Contains(window, m.needle) {
				return true, nil
			}
			if len(window) > keep {
				copy(window, window[len(window)-keep:])
				window = window[:keep]
			}
		}
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("read %s: %w", path, err)
		}
	}
}
