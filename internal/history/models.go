package history

import (
	"strconv"
	"strings"
	"time"
)

// Status records whether a conversion succeeded.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Entry is one journal row.
type Entry struct {
	ID           int64
	RequestID    string
	InputPath    string
	OutputPath   string
	BackupPath   string
	Direction    string
	Localized    bool
	Compact      bool
	Status       Status
	ErrorKind    string
	ErrorMessage string
	Progress     []float64
	StartedAt    time.Time
	FinishedAt   time.Time
	Duration     time.Duration
}

// Filter narrows Recent queries. Zero values match everything.
type Filter struct {
	Status    Status
	Direction string
	Limit     int
}

// Stats summarizes the journal.
type Stats struct {
	Total     int
	Succeeded int
	Failed    int
	ByKind    map[string]int
}

func formatProgress(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

func parseProgress(raw string) []float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			continue
		}
		values = append(values, v)
	}
	return values
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
