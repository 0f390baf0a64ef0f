// Package batch converts many plugins at once on a bounded worker pool.
//
// Expand turns file and directory arguments into Items. Runner.Run checks
// every output directory through preflight, then converts each Item on the
// shared convert.Pipeline while holding a cross-process lock on its output
// path. Failures are collected per item; one failing plugin never stops the
// rest of the batch.
package batch
