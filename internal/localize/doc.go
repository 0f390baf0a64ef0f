// Package localize rewrites text between native Cyrillic and the legacy "1C"
// stand-in characters expected by localized plugin tooling.
//
// Each Cyrillic letter maps to the Latin-1 code point that shares its
// Windows-1251 byte value (А is 0xC0, so it becomes À). The mapping is fixed
// at package initialisation and never changes, so the rewrite helpers are safe
// for concurrent use.
package localize
