package search

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/f4ah6o/ffg-go/internal/matcher"
)

var (
	// ANSI colors for terminal output
	colorWarning = color.New(color.FgYellow)
)

// printer writes one path per line straight to w, so results show up as
// soon as they are found.
type printer struct {
	w       io.Writer
	name    *color.Color
	content *color.Color
}

// newPrinter highlights base names when colored is set, regardless of what
// fatih/color detects for os.Stdout; callers decide.
func newPrinter(w io.Writer, colored bool) *printer {
	p := &printer{w: w}
	if colored {
		p.name = color.New(color.FgHiMagenta, color.Bold)
		p.name.EnableColor()
		p.content = color.New(color.FgCyan)
		p.content.EnableColor()
	}
	return p
}

func (p *printer) print(path string, res matcher.Result) error {
	if p.name == nil {
		_, err := fmt.Fprintln(p.w, path)
		return err
	}

	dir, base := filepath.Split(path)
	c := p.content
	if res == matcher.NameMatch {
		c = p.name
	}
	_, err := fmt.Fprintf(p.w, "%s%s\n", dir, c.Sprint(base))
	return err
}
