// Package preflight provides readiness checks for the filesystem paths and
// settings tes3conv depends on.
//
// These checks run in two contexts:
//   - The batch runner checks every output directory before starting workers,
//     so a read-only or full disk fails fast instead of once per file.
//   - The CLI "tes3conv doctor" command runs RunAll to display overall health.
//
// Checks never modify the filesystem.
package preflight
