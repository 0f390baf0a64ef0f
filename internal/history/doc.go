// Package history keeps a SQLite journal of conversions.
//
// Every conversion the pipeline finishes, successful or not, becomes one row
// holding the request ID, paths, direction, options, progress sequence, error
// classification and timings. The CLI reads it back for the history command
// and prunes old rows on startup.
//
// Schema changes bump schemaVersion in schema.go; users delete the database to
// adopt the new schema.
package history
