package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/stackbt/pkg/domain"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Profile returns the color profile for f: Ascii when f is not a terminal.
func Profile(f *os.File) termenv.Profile {
	if !term.IsTerminal(int(f.Fd())) {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// Printer writes one line per tick with the result and the active path.
type Printer struct {
	w       io.Writer
	profile termenv.Profile
}

// NewPrinter creates a Printer for w using profile for colors.
func NewPrinter(w io.Writer, profile termenv.Profile) *Printer {
	return &Printer{w: w, profile: profile}
}

// Tick prints the result of tick n and the path left on the stack.
func (p *Printer) Tick(n uint64, r domain.Result, path []domain.FrameInfo) {
	status := p.profile.String(fmt.Sprintf("%-18s", r.String())).Foreground(p.profile.Color(statusColor(r)))
	if r.IsComplete() || r.IsAborted() {
		status = status.Bold()
	}
	line := fmt.Sprintf("%4d  %s", n, status)
	if trail := FormatPath(path); trail != "" {
		line += "  " + p.profile.String(trail).Faint().String()
	}
	fmt.Fprintln(p.w, line)
}

// Error prints a configuration error.
func (p *Printer) Error(err error) {
	fmt.Fprintln(p.w, p.profile.String("error: "+err.Error()).Foreground(p.profile.Color("#ef4444")).Bold())
}

func statusColor(r domain.Result) string {
	switch {
	case r.Succeeded():
		return "#22c55e"
	case r.Failed():
		return "#ef4444"
	case r.IsAborted():
		return "#f59e0b"
	default:
		return "#818cf8"
	}
}

// FormatPath renders a frame path as "root > child[state] > leaf", with
// nested branches in braces separated by "|".
func FormatPath(path []domain.FrameInfo) string {
	parts := make([]string, 0, len(path))
	for _, f := range path {
		s := f.Name
		if f.State != "" {
			s += "[" + f.State + "]"
		}
		if len(f.Branches) > 0 {
			branches := make([]string, 0, len(f.Branches))
			for _, b := range f.Branches {
				branches = append(branches, FormatPath(b))
			}
			s += " {" + strings.Join(branches, " | ") + "}"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " > ")
}
