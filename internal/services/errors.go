package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFileExists    = errors.New("file exists")
	ErrIO            = errors.New("i/o error")
	ErrDecode        = errors.New("decode error")
	ErrEncode        = errors.New("encode error")
	ErrSink          = errors.New("progress sink error")
	ErrConfiguration = errors.New("configuration error")
	ErrValidation    = errors.New("validation error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind maps an error to a stable label used in logs and the conversion journal.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, ErrFileExists):
		return "file_exists"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrEncode):
		return "encode"
	case errors.Is(err, ErrSink):
		return "sink"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrIO):
		return "io"
	default:
		return "unknown"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "conversion failure"
	}
	return strings.Join(parts, ": ")
}
