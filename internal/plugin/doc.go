// Package plugin reads and writes TES3 plugin archives (.esp/.esm) and their
// JSON representation.
//
// A plugin is a flat sequence of records. Each record carries a four-byte tag,
// a payload size, an opaque header word, and flags, followed by sub-records
// that are themselves tag/size/payload triples. The codec keeps every record
// and sub-record in file order and never interprets payloads beyond deciding
// whether they read as text in the configured single-byte encoding, so a
// load/save cycle reproduces the original bytes.
//
// Text payloads surface in JSON as strings; everything else is carried as
// base64 data. Windows-1251 is the default encoding because localized
// Morrowind content is authored in it.
package plugin
