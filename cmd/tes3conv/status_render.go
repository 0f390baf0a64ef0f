package main

import (
	"fmt"
	"io"
	"strings"

	"tes3conv/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusError
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiBlue  = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

// statusLine is one labelled entry in a status section.
type statusLine struct {
	Label   string
	Kind    statusKind
	Message string
}

// checkLines converts preflight results into status lines.
func checkLines(results []preflight.Result) []statusLine {
	lines := make([]statusLine, 0, len(results))
	for _, r := range results {
		kind := statusOK
		if !r.Passed {
			kind = statusError
		}
		lines = append(lines, statusLine{Label: r.Name, Kind: kind, Message: r.Detail})
	}
	return lines
}

// writeStatusSection prints a titled block of status lines.
func writeStatusSection(out io.Writer, title string, lines []statusLine, colorize bool) {
	heading := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(heading))
	if colorize {
		heading = ansiBlue + heading + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	fmt.Fprintln(out, heading)
	fmt.Fprintln(out, rule)
	for _, line := range lines {
		fmt.Fprintln(out, line.render(colorize))
	}
}

func (l statusLine) render(colorize bool) string {
	status := fmt.Sprintf("[%s]", l.Kind.label())
	if l.Message != "" {
		status += " " + l.Message
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, l.Label+":", status)
	if colorize {
		if color := l.Kind.color(); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func (k statusKind) label() string {
	switch k {
	case statusOK:
		return "OK"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func (k statusKind) color() string {
	switch k {
	case statusOK:
		return ansiGreen
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}
