// Package search ties the walker and the matcher together and prints every
// matching path as soon as it is found.
package search

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/f4ah6o/ffg-go/internal/decode"
	"github.com/f4ah6o/ffg-go/internal/matcher"
	"github.com/f4ah6o/ffg-go/internal/walker"
)

// Validate checks that every field of the request is set.
func (r Request) Validate() error {
	switch {
	case r.Root == "":
		return fmt.Errorf("%w: directory is required", ErrInvalidRequest)
	case r.Query == "":
		return fmt.Errorf("%w: query is required", ErrInvalidRequest)
	case r.Extension == "" || r.Extension == ".":
		return fmt.Errorf("%w: extension is required", ErrInvalidRequest)
	}
	return nil
}

// Searcher runs one request. It is not safe for concurrent use.
type Searcher struct {
	req     Request
	walker  *walker.Walker
	matcher *matcher.Matcher
	logger  *log.Logger
	color   bool
	skipped int
}

// New validates req and prepares the walker and matcher. A root that cannot
// be listed yields an error wrapping walker.ErrDirectoryUnavailable.
func New(req Request, opts Options) (*Searcher, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	dec, err := decode.Lookup(opts.Encoding)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	s := &Searcher{
		req:    req,
		logger: logger,
		color:  opts.Color,
	}
	logger.Printf("Decoding contents as %s", dec.Name())

	s.walker, err = walker.New(req.Root, req.Extension,
		walker.WithExcludeDirs(opts.ExcludeDirs...),
		walker.WithSkipHook(s.skip),
	)
	if err != nil {
		return nil, err
	}

	s.matcher, err = matcher.New(req.Query,
		matcher.WithBufferSize(opts.BufferSize),
		matcher.WithDecoder(dec),
	)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Searcher) skip(path string, err error) {
	s.skipped++
	s.logger.Printf("%s skipping %s: %v", colorWarning.Sprint("Warning:"), path, err)
}

// Run walks the tree and writes each matching path to out, one per line, in
// discovery order. Unreadable entries are skipped. Cancelling ctx stops the
// walk and any file read in progress; Run then returns ctx.Err().
func (s *Searcher) Run(ctx context.Context, out io.Writer) (Summary, error) {
	p := newPrinter(out, s.color)
	s.skipped = 0
	var sum Summary

	for path := range s.walker.Candidates(ctx) {
		sum.Candidates++

		res, err := s.matcher.Match(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			s.skip(path, err)
			continue
		}
		if !res.Matched() {
			continue
		}

		sum.Matches++
		if res == matcher.NameMatch {
			sum.NameHits++
		}
		if err := p.print(path, res); err != nil {
			sum.Skipped = s.skipped
			return sum, fmt.Errorf("failed to write result: %w", err)
		}
	}

	sum.Skipped = s.skipped
	if err := ctx.Err(); err != nil {
		s.logger.Printf("Interrupted after %d candidates: %d matches", sum.Candidates, sum.Matches)
		return sum, err
	}
	s.logger.Printf("Searched %d candidates under %s: %d matches (%d by name), %d skipped",
		sum.Candidates, s.walker.Root(), sum.Matches, sum.NameHits, sum.Skipped)
	return sum, nil
}
