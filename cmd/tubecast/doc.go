// Package main provides the tubecast command-line interface.
//
// The CLI converts a YouTube playlist into a podcast feed hosted on
// S3-compatible object storage. `tubecast convert` drives the conversion
// pipeline through an interactive terminal UI, or through line-oriented output
// when stdout is not a terminal or --plain is set. Supporting commands inspect
// the conversion history and error log, check external dependencies, send a
// test notification, and create or validate the configuration file.
//
// Configuration is loaded once per invocation through commandContext; commands
// annotated with skipConfigLoad (config init) run without it.
package main
