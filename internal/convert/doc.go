// Package convert runs single-file conversions between binary TES3 plugins and
// their JSON text form.
//
// A Pipeline validates a Request, runs the direction's stages in order, and
// reports coarse progress to a ProgressSink: 33 after the input is read, 66
// after JSON is decoded (binary direction only), 100 once the output file is
// written, or a single -1 on failure. Optional localization rewrites Cyrillic
// text between its native form and the 1C form on the text side.
//
// The pipeline is synchronous. Start runs one conversion on its own goroutine
// and exposes progress as a channel; the batch package fans many requests out
// to a worker pool.
package convert
