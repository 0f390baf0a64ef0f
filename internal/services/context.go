package services

import "context"

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	stageKey     contextKey = "stage"
	directionKey contextKey = "direction"
	inputKey     contextKey = "input_path"
)

// WithRequestID annotates context with a conversion correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithDirection annotates context with the conversion direction label.
func WithDirection(ctx context.Context, direction string) context.Context {
	if direction == "" {
		return ctx
	}
	return context.WithValue(ctx, directionKey, direction)
}

// DirectionFromContext returns the conversion direction label if present.
func DirectionFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(directionKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithInputPath annotates context with the file being converted.
func WithInputPath(ctx context.Context, path string) context.Context {
	if path == "" {
		return ctx
	}
	return context.WithValue(ctx, inputKey, path)
}

// InputPathFromContext returns the file being converted if present.
func InputPathFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(inputKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
