package localize

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Direction selects which way text is rewritten.
type Direction int

const (
	// Legacy rewrites native Cyrillic into the legacy stand-ins.
	Legacy Direction = iota
	// Native rewrites legacy stand-ins back into Cyrillic.
	Native
)

func (d Direction) String() string {
	switch d {
	case Legacy:
		return "legacy"
	case Native:
		return "native"
	default:
		return "unknown"
	}
}

// ToLegacy replaces every mapped Cyrillic rune with its legacy stand-in.
// Unmapped runes pass through, so the rune count never changes.
func ToLegacy(text string) string {
	return strings.Map(legacyRune, text)
}

// ToNative is the inverse of ToLegacy.
func ToNative(text string) string {
	return strings.Map(nativeRune, text)
}

// Rewrite applies the rewrite selected by dir.
func Rewrite(dir Direction, text string) string {
	if dir == Native {
		return ToNative(text)
	}
	return ToLegacy(text)
}

// Transformer returns a streaming transformer performing the same rewrite as
// Rewrite. Invalid UTF-8 is replaced with U+FFFD, as runes.Map does.
func Transformer(dir Direction) transform.Transformer {
	if dir == Native {
		return runes.Map(nativeRune)
	}
	return runes.Map(legacyRune)
}

func legacyRune(r rune) rune {
	if m, ok := nativeToLegacy[r]; ok {
		return m
	}
	return r
}

func nativeRune(r rune) rune {
	if m, ok := legacyToNative[r]; ok {
		return m
	}
	return r
}
