package plugin

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed marks plugin bytes or JSON text that cannot be decoded.
	ErrMalformed = errors.New("malformed plugin data")
	// ErrInvalidObjectSet marks an object set that cannot be written.
	ErrInvalidObjectSet = errors.New("invalid object set")
)

// DecodeError reports where decoding a binary plugin failed.
type DecodeError struct {
	Path   string
	Offset int64
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("decode plugin %s at offset %d: %v", e.Path, e.Offset, e.Err)
	}
	return fmt.Sprintf("decode plugin at offset %d: %v", e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func malformed(offset int64, format string, args ...any) error {
	return &DecodeError{Offset: offset, Err: fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))}
}
