package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"latebind/internal/diag"
)

// Pretty prints one line per diagnostic:
//
//	<subject>: <SEV> <CODE>: <Message>
//
// followed by indented notes. Expects bag.Sort() to have run.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) {
	paint := func(c *color.Color, s string) string {
		if !opts.Color {
			return s
		}
		c.EnableColor()
		return c.Sprint(s)
	}
	items := bag.Items()
	if opts.Max > 0 && opts.Max < len(items) {
		items = items[:opts.Max]
	}
	for _, d := range items {
		sev := paint(severityColor(d.Severity), d.Severity.String())
		fmt.Fprintf(w, "%s: %s %s: %s\n", paint(color.New(color.Bold), d.Subject), sev, d.Code.ID(), d.Message)
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s\n", paint(color.New(color.FgYellow), "note:"), n)
		}
	}
	if hidden := bag.Len() - len(items); hidden > 0 {
		fmt.Fprintf(w, "... and %d more\n", hidden)
	}
}

func severityColor(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return color.New(color.FgRed, color.Bold)
	case diag.SevWarning:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgCyan)
	}
}
