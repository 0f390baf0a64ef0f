package logging

import (
	"context"
	"log/slog"

	"tes3conv/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldDirection is the standardized structured logging key for conversion directions.
	FieldDirection = "direction"
	// FieldInputPath is the standardized structured logging key for the file being converted.
	FieldInputPath = "input"
	// FieldRequestID is the standardized structured logging key for per-conversion identifiers.
	FieldRequestID = "request_id"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint carries the next step a user should take after a failure.
	FieldErrorHint = "error_hint"
	// FieldErrorKind carries the classified failure category.
	FieldErrorKind = "error_kind"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRequestID, rid))
	}
	if direction, ok := services.DirectionFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldDirection, direction))
	}
	if path, ok := services.InputPathFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldInputPath, path))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
