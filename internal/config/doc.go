// Package config loads, normalizes, and validates tes3conv configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TES3CONV_PLUGIN_ENCODING. The Config type centralizes every knob the CLI
// needs: conversion defaults, the history journal, and log output.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
