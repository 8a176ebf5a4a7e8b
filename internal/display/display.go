package display

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/benoitkugler/turtlesvg/interpret"
	"golang.org/x/net/html"
	"golang.org/x/term"
)

const (
	red   = "\x1b[31m"
	reset = "\x1b[0m"
)

// Display shows the textual part of execution results:
// the log of a successful run or the reported error.
type Display struct {
	out   io.Writer
	color bool
	html  bool
}

type Option func(*Display)

// WithColor prints errors in red.
func WithColor(color bool) Option {
	return func(d *Display) {
		d.color = color
	}
}

// WithHTML writes HTML fragments instead of plain text.
func WithHTML() Option {
	return func(d *Display) {
		d.html = true
	}
}

func New(out io.Writer, opts ...Option) *Display {
	d := &Display{out: out}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// IsColorTerminal reports whether `f` is a terminal accepting colors.
func IsColorTerminal(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("CI") != "" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Log shows the output of a successful run.
func (d *Display) Log(text string) error {
	var err error
	switch {
	case d.html:
		_, err = fmt.Fprintf(d.out, "<pre class=\"log\">%s</pre>\n", html.EscapeString(text))
	case text == "":
		return nil
	default:
		_, err = fmt.Fprintln(d.out, strings.TrimSuffix(text, "\n"))
	}
	return err
}

// Error shows the error reported by the execution service.
func (d *Display) Error(text string) error {
	var err error
	switch {
	case d.html:
		_, err = fmt.Fprintf(d.out, "<div class=\"error\">%s</div>\n", interpret.ErrorHTML(text))
	case d.color:
		_, err = fmt.Fprintln(d.out, red+strings.TrimSuffix(text, "\n")+reset)
	default:
		_, err = fmt.Fprintln(d.out, strings.TrimSuffix(text, "\n"))
	}
	return err
}
