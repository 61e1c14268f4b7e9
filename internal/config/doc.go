// Package config loads, normalizes, and validates tubecast configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files (or JSON when the path ends in .json), and honours environment
// fallbacks for storage credentials. The Config type centralizes every knob
// the CLI and pipeline need so the history ledger, error log, and download
// directories are injected from one place instead of being fixed globals.
package config
