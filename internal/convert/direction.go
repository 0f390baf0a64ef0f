package convert

import (
	"fmt"
	"strings"
)

// Direction selects which way a conversion runs.
type Direction int

const (
	// ToText converts a binary plugin into JSON.
	ToText Direction = iota
	// ToBinary converts JSON into a binary plugin.
	ToBinary
)

// Fixed output extensions.
const (
	TextExtension   = "json"
	BinaryExtension = "esp"
)

// String returns the stable label used in logs and the history journal.
func (d Direction) String() string {
	switch d {
	case ToText:
		return "to_text"
	case ToBinary:
		return "to_binary"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Label returns a human-readable description of the direction.
func (d Direction) Label() string {
	switch d {
	case ToText:
		return "ESP/ESM -> JSON"
	case ToBinary:
		return "JSON -> ESP"
	default:
		return d.String()
	}
}

// Extension returns the extension given to outputs of this direction.
func (d Direction) Extension() string {
	if d == ToBinary {
		return BinaryExtension
	}
	return TextExtension
}

// ParseDirection maps a user supplied name onto a Direction. Stored labels
// ("to_text", "to_binary") are accepted as well.
func ParseDirection(value string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "json", "text", "to_text", "to-json":
		return ToText, nil
	case "esp", "plugin", "binary", "to_binary", "to-esp":
		return ToBinary, nil
	default:
		return 0, fmt.Errorf("unknown direction %q (want json or esp)", value)
	}
}

// DetectDirection picks the direction from an input path: JSON inputs become
// plugins, anything else is treated as a plugin to dump.
func DetectDirection(path string) Direction {
	_, _, ext := splitPath(path)
	if strings.EqualFold(ext, TextExtension) {
		return ToBinary
	}
	return ToText
}

// OutputPath derives the output file for input by replacing its extension
// with the one for dir, or appending it when input has none. Both '/' and '\'
// separate path components so Windows paths derive the same way on every
// platform. No filesystem access is performed.
func OutputPath(input string, dir Direction) string {
	parent, stem, _ := splitPath(input)
	return parent + stem + "." + dir.Extension()
}

// splitPath breaks path into the directory prefix (with its trailing
// separator), the file stem, and the extension without its dot. A name whose
// only dot is the leading one has no extension.
func splitPath(path string) (parent, stem, ext string) {
	cut := strings.LastIndexAny(path, `/\`) + 1
	parent, name := path[:cut], path[cut:]
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 {
		return parent, name, ""
	}
	return parent, name[:dot], name[dot+1:]
}
