// Package output prints search results either as bare lines or as
// per-file banners with numbered lines
package output

import (
	"fmt"
	"io"

	"github.com/UnendingLoop/minigrep/internal/model"
)

// NoResults is printed once when no source produced a match
const NoResults = "¯\\_(ツ)_/¯"

type Printer struct {
	w        io.Writer
	numbered bool
	found    int
}

func NewPrinter(w io.Writer, numbered bool) *Printer {
	return &Printer{w: w, numbered: numbered}
}

func (p *Printer) Numbered() bool {
	return p.numbered
}

// PrintLines writes every line verbatim
func (p *Printer) PrintLines(lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(p.w, line); err != nil {
			return err
		}
	}
	p.found += len(lines)
	return nil
}

// PrintMatches writes the source banner followed by "<n>: <line>" per match.
// In plain mode only the lines are written.
func (p *Printer) PrintMatches(source string, matches []model.Match) error {
	if !p.numbered {
		for _, m := range matches {
			if _, err := fmt.Fprintln(p.w, m.Line); err != nil {
				return err
			}
		}
		p.found += len(matches)
		return nil
	}

	if _, err := fmt.Fprintf(p.w, "\n%s\n\n", source); err != nil {
		return err
	}
	for _, m := range matches {
		if _, err := fmt.Fprintf(p.w, "%d: %s\n", m.LineNumber, m.Line); err != nil {
			return err
		}
	}
	p.found += len(matches)
	return nil
}

// Found is the number of lines printed so far
func (p *Printer) Found() int {
	return p.found
}

// Finish prints NoResults if nothing was found
func (p *Printer) Finish() error {
	if p.Found() > 0 {
		return nil
	}
	_, err := fmt.Fprintln(p.w, NoResults)
	return err
}
