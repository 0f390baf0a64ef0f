package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// progressPrinter renders conversion progress. On a terminal it rewrites a
// single line; otherwise each value gets its own line.
type progressPrinter struct {
	out     io.Writer
	label   string
	live    bool
	printed bool
	width   int
}

func newProgressPrinter(out io.Writer, label string) *progressPrinter {
	return &progressPrinter{out: out, label: label, live: isTerminal(out)}
}

func (p *progressPrinter) update(value float64) {
	if value < 0 {
		return
	}
	line := fmt.Sprintf("%s %3.0f%%", p.label, value)
	if !p.live {
		fmt.Fprintln(p.out, line)
		return
	}
	pad := ""
	if len(line) < p.width {
		pad = strings.Repeat(" ", p.width-len(line))
	}
	fmt.Fprint(p.out, "\r"+line+pad)
	p.width = len(line)
	p.printed = true
}

// finish terminates the live line so later output starts on a fresh line.
func (p *progressPrinter) finish() {
	if p.live && p.printed {
		fmt.Fprintln(p.out)
	}
	p.printed = false
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
