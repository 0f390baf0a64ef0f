package plugin

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// JSON is the text codec for object sets.
type JSON struct{}

// Encode serializes set. Pretty output uses two-space indentation; HTML
// escaping is disabled so plugin text stays readable.
func (JSON) Encode(set ObjectSet, compact bool) (string, error) {
	if set == nil {
		set = ObjectSet{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if !compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(set); err != nil {
		return "", fmt.Errorf("encode object set: %w", err)
	}
	return buf.String(), nil
}

// Decode parses text produced by Encode (or edited by hand). Syntax errors,
// unknown keys, trailing data and structurally invalid sets wrap ErrMalformed.
func (JSON) Decode(text string) (ObjectSet, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()

	var set ObjectSet
	if err := dec.Decode(&set); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, describeJSONError(text, err))
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after object set", ErrMalformed)
	}
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return set, nil
}

func describeJSONError(text string, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := position(text, syntaxErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := position(text, typeErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}
	return err
}

func position(text string, offset int64) (int, int) {
	if offset > int64(len(text)) {
		offset = int64(len(text))
	}
	prefix := text[:offset]
	line := strings.Count(prefix, "\n") + 1
	col := int(offset) - strings.LastIndexByte(prefix, '\n')
	return line, col
}
