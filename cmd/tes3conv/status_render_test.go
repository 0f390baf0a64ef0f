package main

import (
	"bytes"
	"strings"
	"testing"

	"tes3conv/internal/preflight"
)

func TestStatusLineRender(t *testing.T) {
	line := statusLine{Label: "Log directory", Kind: statusOK, Message: "/tmp (read/write ok)"}
	got := line.render(false)
	if !strings.HasPrefix(got, "  Log directory:") {
		t.Fatalf("unexpected prefix: %q", got)
	}
	if !strings.HasSuffix(got, "[OK] /tmp (read/write ok)") {
		t.Fatalf("unexpected suffix: %q", got)
	}

	colored := line.render(true)
	if !strings.HasPrefix(colored, ansiGreen) || !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("expected green colorized line, got %q", colored)
	}

	bare := statusLine{Label: "X", Kind: statusError}.render(false)
	if !strings.HasSuffix(bare, "[ERROR]") {
		t.Fatalf("message-less line should end with the status, got %q", bare)
	}
}

func TestWriteStatusSection(t *testing.T) {
	var buf bytes.Buffer
	lines := checkLines([]preflight.Result{
		{Name: "Log directory", Passed: true, Detail: "ok"},
		{Name: "History directory", Passed: false, Detail: "missing"},
	})
	writeStatusSection(&buf, "Checks", lines, false)
	out := buf.String()
	for _, want := range []string{"== Checks ==", "[OK] ok", "[ERROR] missing"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}
