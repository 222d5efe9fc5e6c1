// Package decode provides lossy text decoding for file contents.
// Byte sequences that do not form valid text are dropped rather than
// replaced, so a match test never sees replacement characters it did not ask for.
package decode

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// DefaultCharset is the charset assumed for file contents.
const DefaultCharset = "utf-8"

// ErrUnknownCharset is returned by Lookup for names htmlindex does not know.
var ErrUnknownCharset = errors.New("unknown charset")

// Decoder turns raw bytes of one charset into UTF-8 text, dropping
// anything that cannot be decoded.
type Decoder struct {
	name string
	enc  encoding.Encoding
}

// Lookup resolves a WHATWG charset label ("utf-8", "latin1", "shift_jis", ...).
// An empty name selects DefaultCharset.
func Lookup(name string) (*Decoder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultCharset
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
	}

	canonical, err := htmlindex.Name(enc)
	if err != nil {
		canonical = strings.ToLower(name)
	}

	return &Decoder{name: canonical, enc: enc}, nil
}

// Name returns the canonical charset name.
func (d *Decoder) Name() string {
	return d.name
}

// Transformer returns a fresh transformer producing valid UTF-8.
// Transformers are stateful; use one per stream.
func (d *Decoder) Transformer() transform.Transformer {
	if d.name == DefaultCharset {
		return DropInvalidUTF8()
	}
	// Legacy decoders substitute U+FFFD for undecodable input; strip it afterwards.
	return transform.Chain(d.enc.NewDecoder(), runes.Remove(runes.Predicate(isReplacement)))
}

// NewReader wraps r so that reads return decoded text.
func (d *Decoder) NewReader(r io.Reader) io.Reader {
	return transform.NewReader(r, d.Transformer())
}

func isReplacement(r rune) bool {
	return r == utf8.RuneError
}

// DropInvalidUTF8 returns a transformer that copies valid UTF-8 through and
// drops every byte that does not start a valid sequence. Incomplete sequences
// at the end of a buffer are held back until more input arrives.
func DropInvalidUTF8() transform.Transformer {
	return dropInvalid{}
}

type dropInvalid struct{ transform.NopResetter }

func (dropInvalid) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		if c < utf8.RuneSelf {
			if nDst >= len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = c
			nDst++
			nSrc++
			continue
		}

		if !atEOF && !utf8.FullRune(src[nSrc:]) {
			return nDst, nSrc, transform.ErrShortSrc
		}

		r, size := utf8.DecodeRune(src[nSrc:])
		if r == utf8.RuneError && size == 1 {
			nSrc++
			continue
		}
		if nDst+size > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		copy(dst[nDst:], src[nSrc:nSrc+size])
		nDst += size
		nSrc += size
	}
	return nDst, nSrc, nil
}
