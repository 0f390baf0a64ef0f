// Package main hosts the tes3conv CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into conversions
// between binary TES3 plugins and their JSON form, batch runs over many
// plugins, plugin inspection, journal queries, and configuration scaffolding.
// It centralizes configuration resolution, logger construction, and journal
// housekeeping so subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
