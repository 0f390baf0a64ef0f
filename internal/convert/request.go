package convert

import (
	"strings"
	"time"

	"tes3conv/internal/services"
)

// Request describes one conversion. It is consumed once and never persisted
// by the pipeline.
type Request struct {
	InputPath string
	Direction Direction
	// Localize rewrites Cyrillic text between its native and 1C forms.
	Localize bool
	// Compact emits single-line JSON. Ignored for ToBinary.
	Compact bool
	// Overwrite allows replacing an existing output file.
	Overwrite bool
}

func (r Request) validate() error {
	if strings.TrimSpace(r.InputPath) == "" {
		return services.Wrap(services.ErrValidation, "validate", "check request", "input path is empty", nil)
	}
	if r.Direction != ToText && r.Direction != ToBinary {
		return services.Wrap(services.ErrValidation, "validate", "check request", "unknown direction "+r.Direction.String(), nil)
	}
	return nil
}

// Result describes a finished conversion, successful or not.
type Result struct {
	RequestID  string
	InputPath  string
	OutputPath string
	// BackupPath is set when an existing output was copied aside first.
	BackupPath string
	Direction  Direction
	Localized  bool
	Compact    bool
	// Progress holds every value handed to the sink, in order.
	Progress   []float64
	StartedAt  time.Time
	FinishedAt time.Time
	// SinkDetached is set when the sink rejected the final 100 after the
	// output was written.
	SinkDetached bool
}

// Duration reports how long the conversion ran.
func (r Result) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
