// Package services defines shared utilities consumed by the conversion
// pipeline, the batch runner, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp request IDs, stage names, directions, and
//     input paths for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (file exists, I/O, decode, encode, sink) for diagnostics and the
//     conversion journal.
//
// Use these helpers when adding pipeline stages so error classification and
// log shape stay uniform.
package services
